// Package mount provides thin, idempotent wrappers over mount(2) and
// umount(2), plus the subtree-recursive unmount the disk-prep protocol
// and chroot lifecycle both depend on.
package mount

import (
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/sys/unix"

	"github.com/koitococo/infraplan/errs"
	"github.com/koitococo/infraplan/fstab"
	"github.com/koitococo/infraplan/logutil"
)

// legacyMagic is the historical magic-number flag mount(2) accepted in
// its flags argument before the kernel stopped requiring it; some older
// userspaces still pass it for wire compatibility.
const legacyMagic = 0xC0ED0000

// mountFn/unmountFn/liveFn are overridden in tests so this package's
// logic can be exercised without calling into the kernel.
var (
	mountFn   = unix.Mount
	unmountFn = func(target string, flags int) error { return unix.Unmount(target, flags) }
	liveFn    = fstab.Live
)

// MockSyscalls replaces the mount/unmount/live-table primitives for the
// duration of a test and returns a restore function.
func MockSyscalls(mount func(source, target, fstype string, flags uintptr, data string) error, unmount func(target string, flags int) error, live func() (fstab.Table, error)) (restore func()) {
	oldMount, oldUnmount, oldLive := mountFn, unmountFn, liveFn
	if mount != nil {
		mountFn = mount
	}
	if unmount != nil {
		unmountFn = unmount
	}
	if live != nil {
		liveFn = live
	}
	return func() {
		mountFn, unmountFn, liveFn = oldMount, oldUnmount, oldLive
	}
}

// Mount creates target (and its parents), unmounts it first if it is
// already a mountpoint, then mounts source on it as fstype. When
// legacyFlags is set the historical magic-number flag set is ORed in.
func Mount(source, target, fstype string, legacyFlags bool) error {
	if err := os.MkdirAll(target, 0755); err != nil {
		return &errs.IOFailed{Op: "mkdir " + target, Err: err}
	}

	live, err := liveFn()
	if err != nil {
		return &errs.IOFailed{Op: "read mount table", Err: err}
	}
	if live.IsMountpoint(target) {
		logutil.Log.Infof("%s is already a mountpoint, unmounting first", target)
		if err := Unmount(target); err != nil {
			return err
		}
	}

	var flags uintptr
	if legacyFlags {
		flags = legacyMagic
	}

	logutil.Log.Infof("mounting %s on %s as %s", source, target, fstype)
	if err := mountFn(source, target, fstype, flags, ""); err != nil {
		return &errs.SyscallFailed{Syscall: "mount", Errno: err}
	}
	return nil
}

// Unmount is a plain umount(2) of target.
func Unmount(target string) error {
	logutil.Log.Infof("unmounting %s", target)
	if err := unmountFn(target, 0); err != nil {
		return &errs.SyscallFailed{Syscall: "umount", Errno: err}
	}
	return nil
}

// UnmountAll unmounts every live mountpoint under subtree, deepest
// (reverse declaration order) first, stopping at the first error so a
// parent is never unmounted before its children.
func UnmountAll(subtree string) error {
	live, err := liveFn()
	if err != nil {
		return &errs.IOFailed{Op: "read mount table", Err: err}
	}
	subtree = filepath.Clean(subtree)

	for i := len(live) - 1; i >= 0; i-- {
		mp := filepath.Clean(live[i].MountPoint)
		if mp != subtree && !strings.HasPrefix(mp, subtree+"/") {
			continue
		}
		if err := Unmount(mp); err != nil {
			return err
		}
	}
	return nil
}
