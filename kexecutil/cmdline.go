package kexecutil

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/mvo5/goconfigparser"

	"github.com/koitococo/infraplan/errs"
	"github.com/koitococo/infraplan/fstab"
)

// ComposeCmdline builds the kernel command line for the new root: a
// root=/[rootflags=...] ro prefix derived from its fstab, followed by
// either in.Append verbatim or GRUB_CMDLINE_LINUX +
// GRUB_CMDLINE_LINUX_DEFAULT from <root>/etc/default/grub.
func ComposeCmdline(in Inputs) (string, error) {
	fstabPath := filepath.Join(in.Root, "etc", "fstab")
	table, err := fstab.ParseFile(fstabPath)
	if err != nil {
		return "", err
	}
	rootEntry, ok := table.RootEntry()
	if !ok {
		return "", &errs.Invariant{Reason: "no / entry in " + fstabPath}
	}

	prefix := "root=" + rootEntry.Device
	if !strings.EqualFold(rootEntry.Options, "defaults") {
		prefix += " rootflags=" + rootEntry.Options
	}
	prefix += " ro"

	if in.Append != "" {
		return prefix + " " + in.Append, nil
	}

	grubExtra, err := grubCmdlineDefaults(filepath.Join(in.Root, "etc", "default", "grub"))
	if err != nil {
		return "", err
	}
	if grubExtra == "" {
		return prefix, nil
	}
	return prefix + " " + grubExtra, nil
}

func grubCmdlineDefaults(path string) (string, error) {
	if _, err := os.Stat(path); err != nil {
		return "", nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return "", &errs.IOFailed{Op: "read " + path, Err: err}
	}

	cfg := goconfigparser.New()
	cfg.AllowNoSectionHeader = true
	if err := cfg.ReadString(string(data)); err != nil {
		return "", &errs.ConfigError{Path: path, Reason: err.Error()}
	}

	var parts []string
	for _, key := range []string{"GRUB_CMDLINE_LINUX", "GRUB_CMDLINE_LINUX_DEFAULT"} {
		v, err := cfg.Get("", key)
		if err != nil {
			continue
		}
		v = strings.Trim(v, `"`)
		if v != "" {
			parts = append(parts, v)
		}
	}
	return strings.Join(parts, " "), nil
}
