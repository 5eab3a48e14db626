// Package reboot implements the reboot/kexec plugin (§4.8): a thin
// adapter over the kexec loader (C7).
package reboot

import (
	"github.com/koitococo/infraplan/config"
	"github.com/koitococo/infraplan/errs"
	"github.com/koitococo/infraplan/kexecutil"
)

// These are overridden in tests; a real kexec handoff cannot be
// exercised by a test suite.
var (
	discoverFn       = kexecutil.Discover
	composeCmdlineFn = kexecutil.ComposeCmdline
	loadFn           = kexecutil.Load
)

// State is the reboot plugin's persisted state (§3): once true, a
// successful or failed handoff is never retried within a run.
type State struct {
	Loaded bool `json:"loaded"`
}

// Done reports whether a kexec load has already been attempted.
func (s *State) Done() bool { return s.Loaded }

// Invoke discovers the kernel/initramfs pair, composes the cmdline, and
// hands off via kexec. On success this does not return to the caller;
// on a discovery/compose error the state is left unchanged so the
// recipe can be retried, but once the handoff itself is attempted the
// state is marked Loaded regardless of outcome (§4.7).
func Invoke(cfg *config.RebootConfig, state *State) error {
	if state.Loaded {
		return nil
	}
	if cfg.Type != "kexec" {
		return &errs.ConfigError{Path: "recipe.with.type", Reason: "unsupported reboot type " + cfg.Type}
	}
	if cfg.Linux != "" && cfg.Initrd == "" {
		return &errs.Invariant{Reason: "No initramfs specified"}
	}

	in := kexecutil.Inputs{Linux: cfg.Linux, Initrd: cfg.Initrd, Root: cfg.Root, Append: cfg.Append}

	linux, initrd, err := discoverFn(in)
	if err != nil {
		return err
	}
	cmdline, err := composeCmdlineFn(in)
	if err != nil {
		return err
	}

	state.Loaded = true
	return loadFn(linux, initrd, cmdline)
}
