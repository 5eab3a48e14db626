package kexecutil

import (
	"os"

	"golang.org/x/sys/unix"

	"github.com/koitococo/infraplan/errs"
)

// kexecFileLoadFn and rebootFn are overridden in tests; real kexecs and
// reboots are not something a test suite can safely exercise.
var (
	kexecFileLoadFn = unix.KexecFileLoad
	rebootFn        = unix.Reboot
)

// Load opens kernel and initrd, invokes kexec_file_load with cmdline,
// and on success immediately reboots into the loaded image via
// LINUX_REBOOT_CMD_KEXEC. It only returns on failure: the errno is
// wrapped as a fatal SyscallFailed, and the caller is expected to mark
// the recipe's loaded flag true regardless so a failed handoff is not
// retried forever.
func Load(kernel, initrd, cmdline string) error {
	kernelFd, err := os.Open(kernel)
	if err != nil {
		return &errs.IOFailed{Op: "open kernel " + kernel, Err: err}
	}
	defer kernelFd.Close()

	initrdFd, err := os.Open(initrd)
	if err != nil {
		return &errs.IOFailed{Op: "open initrd " + initrd, Err: err}
	}
	defer initrdFd.Close()

	if err := kexecFileLoadFn(int(kernelFd.Fd()), int(initrdFd.Fd()), cmdline, 0); err != nil {
		return &errs.SyscallFailed{Syscall: "kexec_file_load", Errno: err}
	}

	if err := rebootFn(unix.LINUX_REBOOT_CMD_KEXEC); err != nil {
		return &errs.SyscallFailed{Syscall: "reboot", Errno: err}
	}
	return nil
}
