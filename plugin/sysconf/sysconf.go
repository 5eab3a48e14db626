// Package sysconf implements the sysconf plugin (§4.8): an ordered list
// of independent sub-items (user, apt_repo, netplan), each with its own
// "done" flag so a partially-applied sysconf recipe resumes exactly
// where it left off.
package sysconf

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/koitococo/infraplan/chroot"
	"github.com/koitococo/infraplan/config"
	"github.com/koitococo/infraplan/errs"
	"github.com/koitococo/infraplan/osutil"
)

// These are overridden in tests.
var (
	runFn       = osutil.RunChecked
	chrootRunFn = chroot.Run
)

// State is the sysconf plugin's persisted state: one boolean per
// sub-item, in declaration order (§3).
type State struct {
	Done []bool `json:"done"`
}

// Done reports whether every sub-item has completed.
func (s *State) Done() bool {
	for _, d := range s.Done {
		if !d {
			return false
		}
	}
	return true
}

// Invoke processes cfg.Items in order, skipping any whose Done flag is
// already set. State.Done is resized to match cfg.Items on first use.
func Invoke(cfg *config.SystemReconfiguratorConfig, state *State, globals config.Globals) error {
	if len(state.Done) != len(cfg.Items) {
		resized := make([]bool, len(cfg.Items))
		copy(resized, state.Done)
		state.Done = resized
	}

	for i, item := range cfg.Items {
		if state.Done[i] {
			continue
		}
		if err := invokeItem(item); err != nil {
			return err
		}
		state.Done[i] = true
	}
	return nil
}

func invokeItem(item config.SysConfItem) error {
	switch it := item.(type) {
	case *config.UserItem:
		return invokeUser(it)
	case *config.AptRepoItem:
		return invokeAptRepo(it)
	case *config.NetplanItem:
		return nil
	default:
		return &errs.ConfigError{Path: "recipe.with.items", Reason: fmt.Sprintf("unsupported sysconf item %T", item)}
	}
}

// invokeUser creates every user but root, then batches non-empty
// passwords through a single chpasswd invocation (§4.8).
func invokeUser(it *config.UserItem) error {
	var passwordLines []string
	for _, u := range it.Users {
		if u.Name == "root" {
			continue
		}
		argv := []string{"useradd", u.Name, "-m", "-s", "/bin/bash"}
		for _, g := range u.Groups {
			argv = append(argv, "-G", g)
		}
		if err := runUseradd(argv, it.Chroot); err != nil {
			return err
		}
		if u.Password != "" {
			passwordLines = append(passwordLines, u.Name+":"+u.Password)
		}
	}
	if len(passwordLines) == 0 {
		return nil
	}

	argv := []string{"chpasswd"}
	if it.Chroot != "" {
		argv = append(argv, "--root", it.Chroot)
	}
	stdin := []byte(strings.Join(passwordLines, "\n") + "\n")
	_, err := runFn(argv, osutil.RunOpts{Stdin: stdin})
	return err
}

func runUseradd(argv []string, chrootPath string) error {
	if chrootPath != "" {
		_, err := chrootRunFn(chrootPath, argv)
		return err
	}
	_, err := runFn(argv, osutil.RunOpts{})
	return err
}

// invokeAptRepo writes one sources file, skipping the write when the
// file already exists and Overwrite is not explicitly true (§4.8).
func invokeAptRepo(it *config.AptRepoItem) error {
	path := aptRepoPath(it)

	if _, err := os.Stat(path); err == nil && !it.WantsOverwrite() {
		return nil
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return &errs.IOFailed{Op: "mkdir " + filepath.Dir(path), Err: err}
	}

	content := fmt.Sprintf("deb %s %s %s\n", it.BaseURL, it.Distro, strings.Join(it.Components, " "))
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		return &errs.IOFailed{Op: "write " + path, Err: err}
	}
	return nil
}

// aptRepoPath resolves the sources file for it, defaulting to the host
// root ("/") when it.Chroot is unset.
func aptRepoPath(it *config.AptRepoItem) string {
	root := it.Chroot
	if root == "" {
		root = "/"
	}
	if it.Name == "" {
		return filepath.Join(root, "etc", "apt", "sources.list")
	}
	return filepath.Join(root, "etc", "apt", "sources.list.d", it.Name+".list")
}
