package kexecutil

// KexecFileLoadFn and RebootFn let tests substitute the syscalls Load
// invokes, since a test suite cannot safely kexec or reboot the host.
var (
	KexecFileLoadFn = &kexecFileLoadFn
	RebootFn        = &rebootFn
)
