// Package pkgmgr implements the pkgmgr plugin (§4.8): update package
// lists, conditionally upgrade, then install and remove the configured
// packages, dispatching to the pinned flag set for the effective
// distro_hint's package manager.
package pkgmgr

import (
	"github.com/koitococo/infraplan/config"
	"github.com/koitococo/infraplan/errs"
	"github.com/koitococo/infraplan/osutil"
)

// runFn is overridden in tests.
var runFn = osutil.RunChecked

// State is the pkgmgr plugin's persisted state: at-most-once execution
// per run (§3).
type State struct {
	Applied bool `json:"applied"`
}

// Done reports whether this plugin's work is complete.
func (s *State) Done() bool { return s.Applied }

// commands is one distro's package-manager flag set (§6). updateList is
// nil when the distro has no separate list-refresh step (dnf folds it
// into upgrade).
type commands struct {
	updateList []string
	upgrade    []string
	install    func(pkgs []string) []string
	remove     func(pkgs []string) []string
}

func commandsFor(d config.Distro) (commands, bool) {
	switch d {
	case config.DistroDebian, config.DistroUbuntu:
		return commands{
			updateList: []string{"apt-get", "update"},
			upgrade:    []string{"apt-get", "upgrade", "-y"},
			install: func(pkgs []string) []string {
				return append([]string{"apt-get", "install", "-y", "--no-install-recommends", "--no-install-suggests", "--allow-downgrades"}, pkgs...)
			},
			remove: func(pkgs []string) []string {
				return append([]string{"apt-get", "autoremove", "-y", "--purge"}, pkgs...)
			},
		}, true

	case config.DistroFedora:
		return commands{
			upgrade: []string{"dnf", "upgrade", "-y"},
			install: func(pkgs []string) []string {
				return append([]string{"dnf", "install", "-y"}, pkgs...)
			},
			remove: func(pkgs []string) []string {
				return append([]string{"dnf", "remove", "-y"}, pkgs...)
			},
		}, true

	case config.DistroArch:
		return commands{
			updateList: []string{"pacman", "-Sy"},
			upgrade:    []string{"pacman", "-Su", "--noconfirm"},
			install: func(pkgs []string) []string {
				return append([]string{"pacman", "-S", "--noconfirm"}, pkgs...)
			},
			remove: func(pkgs []string) []string {
				return append([]string{"pacman", "-Rns", "--noconfirm"}, pkgs...)
			},
		}, true

	case config.DistroAlpine:
		return commands{
			updateList: []string{"apk", "update"},
			upgrade:    []string{"apk", "upgrade", "--no-progress"},
			install: func(pkgs []string) []string {
				return append([]string{"apk", "add", "--no-progress"}, pkgs...)
			},
			remove: func(pkgs []string) []string {
				return append([]string{"apk", "del", "--no-progress"}, pkgs...)
			},
		}, true

	default:
		return commands{}, false
	}
}

// Invoke runs update -> (upgrade iff cfg.WantsUpgrade) -> install ->
// remove for the effective distro_hint's package manager. A missing
// distro_hint is a fatal ConfigError (§4.8: "requires a distro_hint").
func Invoke(cfg *config.PackageManagerConfig, state *State, globals config.Globals) error {
	if state.Applied {
		return nil
	}
	if globals.DistroHint == nil {
		return &errs.ConfigError{Path: "global.distro_hint", Reason: "pkgmgr requires a distro_hint"}
	}
	cmds, ok := commandsFor(*globals.DistroHint)
	if !ok {
		return &errs.ConfigError{Path: "global.distro_hint", Reason: "unsupported distro " + string(*globals.DistroHint)}
	}

	if cmds.updateList != nil {
		if _, err := runFn(cmds.updateList, osutil.RunOpts{}); err != nil {
			return err
		}
	}
	if cfg.WantsUpgrade() {
		if _, err := runFn(cmds.upgrade, osutil.RunOpts{}); err != nil {
			return err
		}
	}
	if len(cfg.Install) > 0 {
		if _, err := runFn(cmds.install(cfg.Install), osutil.RunOpts{}); err != nil {
			return err
		}
	}
	if len(cfg.Remove) > 0 {
		if _, err := runFn(cmds.remove(cfg.Remove), osutil.RunOpts{}); err != nil {
			return err
		}
	}

	state.Applied = true
	return nil
}
