// Package recipe implements the recipe engine (C9): ordered invocation
// of a State's recipes, dispatching each to its plugin by matching on
// the closed {SystemDeployer, PackageManager, SystemReconfigurator,
// Reboot} tagged union, and aborting the whole pipeline on the first
// error.
package recipe

import (
	"fmt"

	"github.com/koitococo/infraplan/config"
	"github.com/koitococo/infraplan/errs"
	"github.com/koitococo/infraplan/logutil"
	"github.com/koitococo/infraplan/plugin/pkgmgr"
	"github.com/koitococo/infraplan/plugin/reboot"
	"github.com/koitococo/infraplan/plugin/sysconf"
	"github.com/koitococo/infraplan/plugin/sysdeploy"
	"github.com/koitococo/infraplan/state"
)

// Invoke walks s.Recipes in declaration order, dispatching each id's
// RecipeState to its plugin. A recipe whose plugin reports Done is
// skipped without re-validation (§4.9 idempotence). Any error aborts
// the remainder of the pipeline.
func Invoke(s *state.State) error {
	for _, id := range s.Recipes {
		rs, ok := s.States[id]
		if !ok {
			return &errs.Invariant{Reason: "recipe id " + id + " has no matching state"}
		}
		if rs.PluginState != nil && rs.PluginState.Done() {
			logutil.Log.Debugf("recipe %s (%s) already done, skipping", id, rs.DisplayName)
			continue
		}

		logutil.Log.Infof("invoking recipe %s (%s)", id, rs.DisplayName)
		if err := invokeOne(rs); err != nil {
			return fmt.Errorf("recipe %s: %w", id, err)
		}
	}
	return nil
}

func invokeOne(rs state.RecipeState) error {
	switch cfg := rs.PluginConfig.(type) {
	case *config.SystemDeployerConfig:
		st, ok := rs.PluginState.(*sysdeploy.State)
		if !ok {
			return &errs.Invariant{Reason: "sys_deploy plugin state has the wrong type"}
		}
		return sysdeploy.Invoke(cfg, st, rs.EffectiveGlobals)

	case *config.PackageManagerConfig:
		st, ok := rs.PluginState.(*pkgmgr.State)
		if !ok {
			return &errs.Invariant{Reason: "pkgmgr plugin state has the wrong type"}
		}
		return pkgmgr.Invoke(cfg, st, rs.EffectiveGlobals)

	case *config.SystemReconfiguratorConfig:
		st, ok := rs.PluginState.(*sysconf.State)
		if !ok {
			return &errs.Invariant{Reason: "sysconf plugin state has the wrong type"}
		}
		return sysconf.Invoke(cfg, st, rs.EffectiveGlobals)

	case *config.RebootConfig:
		st, ok := rs.PluginState.(*reboot.State)
		if !ok {
			return &errs.Invariant{Reason: "reboot plugin state has the wrong type"}
		}
		return reboot.Invoke(cfg, st)

	default:
		return &errs.Invariant{Reason: fmt.Sprintf("unsupported plugin config %T", rs.PluginConfig)}
	}
}
