// Package sysdeploy implements the sys_deploy/tar plugin (§4.8): lay
// down a fresh root filesystem onto a disk and, on Ubuntu, regenerate
// the bootloader and initramfs inside the freshly installed chroot.
package sysdeploy

import (
	"github.com/koitococo/infraplan/chroot"
	"github.com/koitococo/infraplan/config"
	"github.com/koitococo/infraplan/diskprep"
	"github.com/koitococo/infraplan/errs"
	"github.com/koitococo/infraplan/extract"
	"github.com/koitococo/infraplan/logutil"
)

const (
	exeUpdateInitramfs = "update-initramfs"
	exeGrubInstall     = "grub-install"
	exeUpdateGrub      = "update-grub"
)

// These are overridden in tests so Invoke can be exercised without
// touching real disks, networks, or chroots.
var (
	diskprepPrepareFn = diskprep.Prepare
	writeFstabFn      = diskprep.WriteFstab
	extractFn         = extract.Extract
	chrootPrepareFn   = chroot.Prepare
	chrootRunFn       = chroot.Run
	chrootCleanupFn   = chroot.Cleanup
)

// State is the sys_deploy plugin's persisted state (§3): once Applied,
// a second Invoke is a no-op.
type State struct {
	Applied bool `json:"applied"`
}

// Done reports whether this plugin's work is complete.
func (s *State) Done() bool { return s.Applied }

// Invoke runs prepare_disk -> extract_tarball -> write_fstab ->
// postinst in order, then marks state Applied.
func Invoke(cfg *config.SystemDeployerConfig, state *State, globals config.Globals) error {
	if state.Applied {
		return nil
	}
	if cfg.Type != "tar" {
		return &errs.ConfigError{Path: "recipe.with.type", Reason: "unsupported sys_deploy type " + cfg.Type}
	}

	useMdev, useUdev := mdevUdevFor(globals.DistroHint)

	paths, err := diskprepPrepareFn(diskprep.Options{
		Disk:        cfg.Disk,
		UseMdev:     useMdev,
		UseUdev:     useUdev,
		TargetMount: cfg.Mount,
	})
	if err != nil {
		return err
	}

	if err := extractFn(extract.Options{
		URL:         cfg.URL,
		Destination: cfg.Mount,
		Compression: extract.Compression(cfg.Compression),
	}); err != nil {
		return err
	}

	if err := writeFstabFn(cfg.Mount, paths); err != nil {
		return err
	}

	if err := postinst(cfg.Mount, globals.DistroHint); err != nil {
		return err
	}

	state.Applied = true
	return nil
}

// mdevUdevFor derives (use_mdev, use_udev) from the effective
// distro_hint: Alpine uses mdev, the systemd-family distros use udev,
// an absent or unrecognized hint uses neither.
func mdevUdevFor(hint *config.Distro) (useMdev, useUdev bool) {
	if hint == nil {
		return false, false
	}
	switch *hint {
	case config.DistroAlpine:
		return true, false
	case config.DistroArch, config.DistroDebian, config.DistroFedora, config.DistroUbuntu:
		return false, true
	default:
		return false, false
	}
}

// postinst regenerates the initramfs and reinstalls GRUB inside the new
// root's chroot. Non-Ubuntu distros are a warn-and-skip: this engine
// has no pinned bootloader recipe for them yet.
func postinst(target string, hint *config.Distro) error {
	if hint == nil || *hint != config.DistroUbuntu {
		logutil.Log.Warnf("sys_deploy: postinst skipped for distro hint %v", hint)
		return nil
	}

	if err := chrootPrepareFn(target); err != nil {
		return err
	}
	defer chrootCleanupFn(target)

	steps := [][]string{
		{exeUpdateInitramfs, "-c", "-k", "all"},
		{exeGrubInstall, "--efi-directory=/boot/efi", "--recheck"},
		{exeUpdateGrub},
	}
	for _, argv := range steps {
		if _, err := chrootRunFn(target, argv); err != nil {
			return err
		}
	}
	return nil
}
