// Package chroot manages the virtual filesystem bindings a chroot needs
// to run anything useful inside it (package managers, bootloader
// installers, initramfs generators), and runs commands inside that
// chroot without forking the whole calling process into it.
package chroot

import (
	"path/filepath"

	"github.com/koitococo/infraplan/logutil"
	"github.com/koitococo/infraplan/mount"
	"github.com/koitococo/infraplan/osutil"
)

type bind struct {
	path   string
	source string
	fstype string
}

// binds is the virtual filesystem list prepare_chroot mounts, in the
// order a chroot needs them available: tmp and run first so anything
// mounted later can use them as scratch space, then the kernel
// interfaces, then /dev and its sub-mounts, then EFI variables last
// since only UEFI postinst steps need them.
var binds = []bind{
	{"tmp", "tmpfs", "tmpfs"},
	{"run", "tmpfs", "tmpfs"},
	{"proc", "proc", "proc"},
	{"sys", "sysfs", "sysfs"},
	{"dev", "devtmpfs", "devtmpfs"},
	{"dev/pts", "devpts", "devpts"},
	{"dev/shm", "tmpfs", "tmpfs"},
	{"sys/firmware/efi", "efivarfs", "efivarfs"},
}

// Prepare binds every entry in binds under target, in order. Each
// mount.Mount call is idempotent: an entry that is already mounted is
// unmounted and mounted again, so calling Prepare on an
// already-prepared target does not fail.
func Prepare(target string) error {
	for _, b := range binds {
		if err := mount.Mount(b.source, filepath.Join(target, b.path), b.fstype, false); err != nil {
			return err
		}
	}
	return nil
}

// Cleanup unmounts the same list in reverse order. A failure is logged
// and swallowed so the loop always makes maximum progress; Cleanup
// never returns an error.
func Cleanup(target string) {
	for i := len(binds) - 1; i >= 0; i-- {
		path := filepath.Join(target, binds[i].path)
		if err := mount.Unmount(path); err != nil {
			logutil.Log.Warnf("cleanup: failed to unmount %s: %v", path, err)
		}
	}
}

// Run executes argv inside the chroot rooted at target. Prepare must
// have been called first.
func Run(target string, argv []string) (osutil.Result, error) {
	return osutil.RunChecked(argv, osutil.RunOpts{Chroot: target})
}
