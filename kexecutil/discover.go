// Package kexecutil implements the kexec loader (§4.7): kernel and
// initramfs discovery under a new root, kernel cmdline composition from
// its fstab and GRUB defaults, and the kexec_file_load/reboot syscall
// handoff itself.
package kexecutil

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/koitococo/infraplan/errs"
)

// Inputs are the kexec loader's parameters; Linux/Initrd are explicit
// overrides, Root is mandatory, Append overrides GRUB cmdline
// composition entirely when set.
type Inputs struct {
	Linux  string
	Initrd string
	Root   string
	Append string
}

// Discover resolves the kernel and initramfs paths per Inputs: explicit
// Linux/Initrd win outright (and a partial pair is a fatal error);
// otherwise <Root>/boot is searched, first for literal vmlinuz/vmlinux
// with a matching initrd.img/initramfs.img, then for a
// vmlinu[xz]-<suffix> pattern with a matching initrd-<suffix>.img or
// initramfs-<suffix>.img.
func Discover(in Inputs) (linux, initrd string, err error) {
	if (in.Linux != "") != (in.Initrd != "") {
		return "", "", &errs.Invariant{Reason: "linux and initrd must be specified together"}
	}
	if in.Linux != "" {
		return in.Linux, in.Initrd, nil
	}

	bootDir := filepath.Join(in.Root, "boot")
	entries, err := listBootSortedDescending(bootDir)
	if err != nil {
		return "", "", err
	}

	for _, name := range entries {
		if name == "vmlinuz" || name == "vmlinux" {
			if sib := firstExisting(bootDir, "initrd.img", "initramfs.img"); sib != "" {
				return filepath.Join(bootDir, name), sib, nil
			}
		}
	}

	for _, name := range entries {
		suffix, ok := kernelSuffix(name)
		if !ok {
			continue
		}
		if sib := firstExisting(bootDir, "initrd-"+suffix+".img", "initramfs-"+suffix+".img"); sib != "" {
			return filepath.Join(bootDir, name), sib, nil
		}
	}

	return "", "", &errs.ConfigError{Path: "root", Reason: "no kernel/initramfs pair found under " + bootDir}
}

// kernelSuffix matches vmlinu[xz]-<suffix> and returns <suffix>.
func kernelSuffix(name string) (string, bool) {
	for _, prefix := range []string{"vmlinuz-", "vmlinux-"} {
		if strings.HasPrefix(name, prefix) {
			suffix := strings.TrimPrefix(name, prefix)
			if suffix != "" {
				return suffix, true
			}
		}
	}
	return "", false
}

func listBootSortedDescending(bootDir string) ([]string, error) {
	matches, err := doublestar.Glob(os.DirFS(bootDir), "*")
	if err != nil {
		return nil, &errs.IOFailed{Op: "glob " + bootDir, Err: err}
	}
	names := make([]string, 0, len(matches))
	for _, m := range matches {
		resolved, err := filepath.EvalSymlinks(filepath.Join(bootDir, m))
		if err != nil {
			continue
		}
		names = append(names, filepath.Base(resolved))
	}
	sort.Sort(sort.Reverse(sort.StringSlice(names)))
	return names, nil
}

func firstExisting(dir string, names ...string) string {
	for _, n := range names {
		p := filepath.Join(dir, n)
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}
