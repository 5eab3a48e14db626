// Package diskprep implements the disk-prep protocol (§4.4): unmount
// conflicts, lay down a fixed GPT scheme, wait for the kernel to settle
// the new partition device nodes, format, and mount root/boot/ESP in
// the order that guarantees every mountpoint directory exists before it
// is needed. Grounded on the teacher's gadget/install partitioning code
// and cmd/snap-bootstrap's device-node settle handling, generalized from
// snapd's gadget-defined layout to infraplan's fixed three-partition
// scheme.
package diskprep

import (
	"encoding/json"
	"fmt"
	"path/filepath"

	"github.com/koitococo/infraplan/errs"
	"github.com/koitococo/infraplan/fstab"
	"github.com/koitococo/infraplan/logutil"
	"github.com/koitococo/infraplan/mount"
	"github.com/koitococo/infraplan/osutil"
)

const (
	exeParted    = "parted"
	exePartprobe = "partprobe"
	exeMdev      = "mdev"
	exeUdevadm   = "udevadm"
	exeMkfsVfat  = "mkfs.vfat"
	exeMkfsExt4  = "mkfs.ext4"
)

// runFn is overridden in tests to record/synthesize command behavior
// without touching real hardware.
var runFn = osutil.RunChecked

// Options configures one run of the disk-prep protocol.
type Options struct {
	Disk        string
	UseMdev     bool
	UseUdev     bool
	TargetMount string
}

// partedOutput mirrors the "parted --script <disk> print -j" JSON schema;
// only the fields the protocol needs are decoded.
type partedOutput struct {
	Disk struct {
		Partitions []struct {
			UUID string `json:"uuid"`
		} `json:"partitions"`
	} `json:"disk"`
}

// PartUUIDPaths are the three by-partuuid device paths, in partition
// order (ESP, boot, root).
type PartUUIDPaths struct {
	ESP  string
	Boot string
	Root string
}

// Prepare runs the full disk-prep protocol against opts.Disk, mounting
// the result under opts.TargetMount. It does not write /etc/fstab;
// WriteFstab does that with the returned paths.
func Prepare(opts Options) (PartUUIDPaths, error) {
	var zero PartUUIDPaths

	logutil.Log.Infof("preparing disk %s for mount at %s", opts.Disk, opts.TargetMount)

	live, err := fstab.Live()
	if err != nil {
		return zero, &errs.IOFailed{Op: "read mount table", Err: err}
	}
	if live.IsMountpoint(opts.TargetMount) {
		if err := mount.UnmountAll(opts.TargetMount); err != nil {
			return zero, err
		}
	}
	for _, m := range live.FindMountpointsByDevice(opts.Disk) {
		if err := mount.UnmountAll(m.MountPoint); err != nil {
			return zero, err
		}
	}

	if err := createPartitionTable(opts.Disk); err != nil {
		return zero, err
	}
	if err := refreshPartitionTable(opts.Disk, opts.UseMdev, opts.UseUdev); err != nil {
		return zero, err
	}

	uuids, err := readPartitionUUIDs(opts.Disk)
	if err != nil {
		return zero, err
	}

	paths := PartUUIDPaths{
		ESP:  partuuidPath(uuids[0]),
		Boot: partuuidPath(uuids[1]),
		Root: partuuidPath(uuids[2]),
	}

	for _, p := range []string{paths.ESP, paths.Boot, paths.Root} {
		if err := waitForReady(p); err != nil {
			return zero, err
		}
	}

	if err := formatEFI(paths.ESP); err != nil {
		return zero, err
	}
	if err := formatExt4(paths.Boot, "boot", []string{"^metadata_csum_seed", "^orphan_file"}); err != nil {
		return zero, err
	}
	if err := formatExt4(paths.Root, "root", []string{"^orphan_file"}); err != nil {
		return zero, err
	}

	if err := mount.Mount(paths.Root, opts.TargetMount, "ext4", false); err != nil {
		return zero, err
	}
	bootTarget := filepath.Join(opts.TargetMount, "boot")
	if err := mount.Mount(paths.Boot, bootTarget, "ext4", false); err != nil {
		return zero, err
	}
	efiTarget := filepath.Join(opts.TargetMount, "boot", "efi")
	if err := mount.Mount(paths.ESP, efiTarget, "vfat", false); err != nil {
		return zero, err
	}

	return paths, nil
}

func partuuidPath(uuid string) string {
	return filepath.Join("/dev/disk/by-partuuid", uuid)
}

func createPartitionTable(disk string) error {
	argv := []string{
		exeParted, disk, "--script", "--fix", "--align", "optimal",
		"mklabel", "gpt",
		"mkpart", "primary", "fat32", "1MiB", "512MiB",
		"mkpart", "primary", "ext4", "512MiB", "2048MiB",
		"mkpart", "primary", "ext4", "2048MiB", "100%",
		"set", "1", "esp", "on",
	}
	_, err := runFn(argv, osutil.RunOpts{})
	return err
}

func refreshPartitionTable(disk string, useMdev, useUdev bool) error {
	if _, err := runFn([]string{exePartprobe, disk}, osutil.RunOpts{}); err != nil {
		return err
	}
	if useMdev {
		if _, err := runFn([]string{exeMdev, "-s"}, osutil.RunOpts{}); err != nil {
			return err
		}
	}
	if useUdev {
		if _, err := runFn([]string{exeUdevadm, "trigger", "--type=all", "--settle"}, osutil.RunOpts{}); err != nil {
			return err
		}
	}
	return nil
}

func readPartitionUUIDs(disk string) ([]string, error) {
	res, err := runFn([]string{exeParted, disk, "--script", "print", "-j"}, osutil.RunOpts{})
	if err != nil {
		return nil, err
	}
	var parsed partedOutput
	if err := json.Unmarshal([]byte(res.Stdout), &parsed); err != nil {
		return nil, &errs.IOFailed{Op: "parse parted json", Err: err}
	}
	if len(parsed.Disk.Partitions) != 3 {
		return nil, &errs.Invariant{Reason: fmt.Sprintf("expected 3 partitions on %s, found %d", disk, len(parsed.Disk.Partitions))}
	}
	uuids := make([]string, 3)
	for i, p := range parsed.Disk.Partitions {
		uuids[i] = p.UUID
	}
	return uuids, nil
}

func formatEFI(part string) error {
	_, err := runFn([]string{exeMkfsVfat, "-F", "32", "-n", "EFI", part}, osutil.RunOpts{})
	return err
}

func formatExt4(part, label string, disabledFeatures []string) error {
	argv := []string{exeMkfsExt4, "-L", label}
	for _, f := range disabledFeatures {
		argv = append(argv, "-O", f)
	}
	argv = append(argv, part)
	_, err := runFn(argv, osutil.RunOpts{})
	return err
}
