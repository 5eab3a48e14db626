package state

import (
	"encoding/json"
	"fmt"

	"github.com/koitococo/infraplan/config"
	"github.com/koitococo/infraplan/errs"
	"github.com/koitococo/infraplan/plugin/pkgmgr"
	"github.com/koitococo/infraplan/plugin/reboot"
	"github.com/koitococo/infraplan/plugin/sysconf"
	"github.com/koitococo/infraplan/plugin/sysdeploy"
)

// UnmarshalJSON is the inverse of MarshalJSON: each RecipeState's
// plugin_config and plugin_state are decoded per its `use`
// discriminator into the matching plugin's concrete types.
func (s *State) UnmarshalJSON(data []byte) error {
	var raw jsonState
	if err := json.Unmarshal(data, &raw); err != nil {
		return &errs.ConfigError{Path: "<state>", Reason: err.Error()}
	}

	out := State{
		Config:  raw.Config,
		Recipes: raw.Recipes,
		States:  make(map[string]RecipeState, len(raw.States)),
	}
	for id, rs := range raw.States {
		pluginConfig, err := config.DecodePluginJSON(rs.Use, rs.PluginConfig)
		if err != nil {
			return err
		}
		pluginState, err := decodeJSONPluginState(rs.Use, rs.PluginState)
		if err != nil {
			return err
		}
		out.States[id] = RecipeState{
			ID:               rs.ID,
			DisplayName:      rs.DisplayName,
			EffectiveGlobals: rs.EffectiveGlobals,
			PluginConfig:     pluginConfig,
			PluginState:      pluginState,
		}
	}
	*s = out
	return nil
}

func decodeJSONPluginState(use string, raw json.RawMessage) (PluginState, error) {
	switch use {
	case "sys_deploy":
		st := &sysdeploy.State{}
		if err := json.Unmarshal(raw, st); err != nil {
			return nil, &errs.ConfigError{Path: "states.plugin_state", Reason: err.Error()}
		}
		return st, nil

	case "pkgmgr":
		st := &pkgmgr.State{}
		if err := json.Unmarshal(raw, st); err != nil {
			return nil, &errs.ConfigError{Path: "states.plugin_state", Reason: err.Error()}
		}
		return st, nil

	case "sysconf":
		st := &sysconf.State{}
		if err := json.Unmarshal(raw, st); err != nil {
			return nil, &errs.ConfigError{Path: "states.plugin_state", Reason: err.Error()}
		}
		return st, nil

	case "reboot":
		st := &reboot.State{}
		if err := json.Unmarshal(raw, st); err != nil {
			return nil, &errs.ConfigError{Path: "states.plugin_state", Reason: err.Error()}
		}
		return st, nil

	default:
		return nil, &errs.ConfigError{Path: "states.use", Reason: fmt.Sprintf("unknown plugin %s", use)}
	}
}
