package extract

import (
	"archive/tar"
	"io"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/sys/unix"

	"github.com/koitococo/infraplan/errs"
)

const xattrPrefix = "SCHILY.xattr."

// untar unpacks every entry in tr under destination per the
// non-negotiable policy (§4.5): external symlinks allowed, conflicts
// overwritten, mtime/permissions/ownership/xattrs all preserved. The
// two trailing zero blocks tar.Reader consumes internally are never
// treated as a premature end of archive, satisfying "do not ignore zero
// blocks" without any extra bookkeeping here.
func untar(tr *tar.Reader, destination string) error {
	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return &errs.IOFailed{Op: "read tar entry", Err: err}
		}

		target := filepath.Join(destination, hdr.Name)
		if err := extractEntry(tr, hdr, target, destination); err != nil {
			return err
		}
	}
}

func extractEntry(tr *tar.Reader, hdr *tar.Header, target, destination string) error {
	isSymlink := hdr.Typeflag == tar.TypeSymlink

	switch hdr.Typeflag {
	case tar.TypeDir:
		if err := os.MkdirAll(target, os.FileMode(hdr.Mode)); err != nil {
			return &errs.IOFailed{Op: "mkdir " + target, Err: err}
		}
	case tar.TypeSymlink:
		// External (absolute, or relative-escaping) symlink targets
		// are written as-is: allow_external_symlinks.
		os.Remove(target)
		if err := os.Symlink(hdr.Linkname, target); err != nil {
			return &errs.IOFailed{Op: "symlink " + target, Err: err}
		}
	case tar.TypeLink:
		os.Remove(target)
		linkTarget := filepath.Join(destination, hdr.Linkname)
		if err := os.Link(linkTarget, target); err != nil {
			return &errs.IOFailed{Op: "hardlink " + target, Err: err}
		}
	case tar.TypeReg:
		if err := os.MkdirAll(filepath.Dir(target), 0755); err != nil {
			return &errs.IOFailed{Op: "mkdir " + filepath.Dir(target), Err: err}
		}
		os.Remove(target) // overwrite on conflict
		f, err := os.OpenFile(target, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, os.FileMode(hdr.Mode))
		if err != nil {
			return &errs.IOFailed{Op: "create " + target, Err: err}
		}
		if _, err := io.Copy(f, tr); err != nil {
			f.Close()
			return &errs.IOFailed{Op: "write " + target, Err: err}
		}
		if err := f.Close(); err != nil {
			return &errs.IOFailed{Op: "close " + target, Err: err}
		}
	default:
		// Device nodes, fifos and the like: these tarballs are root
		// filesystem trees, not device trees, so anything unrecognized
		// is skipped rather than rejected.
		return nil
	}

	if err := unix.Lchown(target, hdr.Uid, hdr.Gid); err != nil {
		return &errs.SyscallFailed{Syscall: "lchown " + target, Errno: err}
	}
	if !isSymlink {
		if err := os.Chmod(target, os.FileMode(hdr.Mode)); err != nil {
			return &errs.IOFailed{Op: "chmod " + target, Err: err}
		}
		if err := os.Chtimes(target, hdr.ModTime, hdr.ModTime); err != nil {
			return &errs.IOFailed{Op: "chtimes " + target, Err: err}
		}
	}

	for key, value := range hdr.PAXRecords {
		if !strings.HasPrefix(key, xattrPrefix) {
			continue
		}
		name := strings.TrimPrefix(key, xattrPrefix)
		if err := unix.Setxattr(target, name, []byte(value), 0); err != nil {
			return &errs.SyscallFailed{Syscall: "setxattr " + name, Errno: err}
		}
	}
	return nil
}
