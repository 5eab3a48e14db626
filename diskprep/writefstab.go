package diskprep

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/koitococo/infraplan/errs"
)

// WriteFstab writes the three-line fstab the disk-prep protocol mandates
// into <target>/etc/fstab.
func WriteFstab(target string, paths PartUUIDPaths) error {
	rootUUID := filepath.Base(paths.Root)
	bootUUID := filepath.Base(paths.Boot)
	espUUID := filepath.Base(paths.ESP)

	content := fmt.Sprintf(
		"PARTUUID=%s / ext4 defaults 0 1\n"+
			"PARTUUID=%s /boot ext4 defaults 0 2\n"+
			"PARTUUID=%s  /boot/efi vfat defaults 0 2\n",
		rootUUID, bootUUID, espUUID,
	)

	etcDir := filepath.Join(target, "etc")
	if err := os.MkdirAll(etcDir, 0755); err != nil {
		return &errs.IOFailed{Op: "mkdir " + etcDir, Err: err}
	}
	fstabPath := filepath.Join(etcDir, "fstab")
	if err := os.WriteFile(fstabPath, []byte(content), 0644); err != nil {
		return &errs.IOFailed{Op: "write " + fstabPath, Err: err}
	}
	return nil
}
