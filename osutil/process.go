// Package osutil wraps the single external-process entry point every
// other component in this repository uses to shell out: one call per
// command, full output capture, and chroot handled as a pre-exec
// attribute on the child rather than forking the whole process into the
// target root. This mirrors the teacher's (snapd) osutil conventions for
// running external commands and capturing output.
package osutil

import (
	"bytes"
	"os/exec"
	"syscall"

	"github.com/koitococo/infraplan/errs"
	"github.com/koitococo/infraplan/logutil"
)

// fixedChrootPath is used for any command run inside a chroot, matching
// a minimal, predictable PATH regardless of what the target root ships.
const fixedChrootPath = "PATH=/usr/local/bin:/usr/sbin:/usr/bin:/sbin:/bin"

// RunOpts configures a single command invocation.
type RunOpts struct {
	// Env, when non-empty, is the child's whole environment; when empty
	// the child inherits this process's environment. Under Chroot the
	// child gets fixedChrootPath followed by Env.
	Env []string
	// Stdin, when non-nil, is written to the child's standard input.
	Stdin []byte
	// Chroot, when set, is an absolute path the child chroots into
	// (via a pre-exec SysProcAttr) before exec, with its working
	// directory reset to "/" inside the new root.
	Chroot string
}

// Result is the full captured outcome of a command run.
type Result struct {
	ExitCode int
	Stdout   string
	Stderr   string
}

// Run executes argv[0] with argv[1:] as arguments and returns its full
// captured output. A missing exit code (process killed by a signal) maps
// to -1. Failure to spawn the process at all is returned as an error
// distinct from a non-zero exit, which is reported via Result.ExitCode.
func Run(argv []string, opts RunOpts) (Result, error) {
	logutil.Log.Debugf("running command: %v", argv)

	cmd := exec.Command(argv[0], argv[1:]...)
	if opts.Chroot != "" {
		cmd.Dir = "/"
		cmd.Env = append([]string{fixedChrootPath}, opts.Env...)
		cmd.SysProcAttr = &syscall.SysProcAttr{Chroot: opts.Chroot}
	} else if len(opts.Env) > 0 {
		cmd.Env = opts.Env
	}
	if opts.Stdin != nil {
		cmd.Stdin = bytes.NewReader(opts.Stdin)
	}

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	// Cmd.Run drains Stdout/Stderr concurrently with writing Stdin
	// whenever any of them is not an *os.File, which is the case here;
	// this is what keeps a chatty child from deadlocking on a full
	// pipe buffer while we're still feeding its stdin.
	runErr := cmd.Run()

	res := Result{Stdout: stdout.String(), Stderr: stderr.String(), ExitCode: -1}
	if runErr == nil {
		res.ExitCode = 0
		return res, nil
	}

	var exitErr *exec.ExitError
	if ok := asExitError(runErr, &exitErr); ok {
		res.ExitCode = exitErr.ExitCode()
		return res, nil
	}

	logutil.Log.Errorf("failed to spawn %v: %v", argv, runErr)
	return res, &errs.IOFailed{Op: "spawn " + argv[0], Err: runErr}
}

func asExitError(err error, target **exec.ExitError) bool {
	if ee, ok := err.(*exec.ExitError); ok {
		*target = ee
		return true
	}
	return false
}
