// Package state holds the in-memory snapshot of one provisioning run
// (C10): the frozen Configuration, the ordered list of recipe ids in
// execution order, and a mapping from recipe id to RecipeState. The
// whole thing round-trips through JSON so an external scheduler can
// persist it across the kexec handoff.
package state

import (
	"github.com/koitococo/infraplan/config"
	"github.com/koitococo/infraplan/plugin/pkgmgr"
	"github.com/koitococo/infraplan/plugin/reboot"
	"github.com/koitococo/infraplan/plugin/sysconf"
	"github.com/koitococo/infraplan/plugin/sysdeploy"
)

// PluginState is the "done?" projection every plugin state must expose
// (§3), so the recipe engine can report idempotence without knowing the
// concrete plugin.
type PluginState interface {
	Done() bool
}

// RecipeState is one recipe's snapshot: its id and display name, the
// effective Globals computed once at construction, and its plugin's
// config/state pair.
type RecipeState struct {
	ID               string
	DisplayName      string
	EffectiveGlobals config.Globals
	PluginConfig     config.PluginConfig
	PluginState      PluginState
}

// State is the full snapshot of a run. Recipes may list the same id
// more than once (§9 open question a): States is keyed by id, so
// duplicate ids alias to whichever RecipeState was constructed last.
// The recipe engine visits that one RecipeState once per occurrence in
// Recipes; since the occurrences share one plugin state, an occurrence
// whose state already reports Done is skipped.
type State struct {
	Config  config.Configuration
	Recipes []string
	States  map[string]RecipeState
}

// New builds a State from a Configuration: one RecipeState per recipe,
// in declaration order, with effective Globals merged once and a fresh
// zero-value plugin state for the recipe's plugin kind.
func New(cfg config.Configuration) State {
	s := State{
		Config:  cfg,
		Recipes: make([]string, 0, len(cfg.Recipes)),
		States:  make(map[string]RecipeState, len(cfg.Recipes)),
	}
	for _, r := range cfg.Recipes {
		s.Recipes = append(s.Recipes, r.ID)
		s.States[r.ID] = RecipeState{
			ID:               r.ID,
			DisplayName:      r.DisplayName(),
			EffectiveGlobals: cfg.Global.Merge(r.Overrides),
			PluginConfig:     r.Plugin,
			PluginState:      freshPluginState(r.Plugin),
		}
	}
	return s
}

// freshPluginState returns a zero-value plugin state for cfg's concrete
// type, matching the dispatch-by-match design used throughout the
// plugin set (§9: "no open extensibility is required").
func freshPluginState(cfg config.PluginConfig) PluginState {
	switch c := cfg.(type) {
	case *config.SystemDeployerConfig:
		return &sysdeploy.State{}
	case *config.PackageManagerConfig:
		return &pkgmgr.State{}
	case *config.SystemReconfiguratorConfig:
		return &sysconf.State{Done: make([]bool, len(c.Items))}
	case *config.RebootConfig:
		return &reboot.State{}
	default:
		return nil
	}
}
