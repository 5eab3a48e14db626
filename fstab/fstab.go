// Package fstab parses the live kernel mount table and fstab-format
// files, and answers the fuzzy by-device mountpoint queries the
// disk-prep protocol needs before it can safely repartition a disk.
package fstab

import (
	"bufio"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// Entry is one fstab-format row: device, mount point, filesystem type,
// mount options, dump frequency, fsck pass.
type Entry struct {
	Device     string
	MountPoint string
	FsType     string
	Options    string
	Dump       int
	Pass       int
}

// Table is an ordered list of fstab entries, in file/source order.
type Table []Entry

// ProcMounts is the live kernel mount table, read fresh on every call.
const ProcMounts = "/proc/self/mounts"

// Live parses the live kernel mount table.
func Live() (Table, error) {
	return ParseFile(ProcMounts)
}

// ParseFile reads and parses an fstab-format file (the live mount table
// or an installed system's /etc/fstab or /etc/default/grub-adjacent
// fstab file). A missing file is an error; malformed content never is.
func ParseFile(path string) (Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return Parse(f), nil
}

// Parse reads fstab-format lines from r. Blank lines and lines whose
// first non-space character is '#' are skipped; any line that does not
// split into exactly six whitespace-separated fields is silently
// dropped rather than treated as an error. dump/pass default to -1 when
// they fail to parse as integers.
func Parse(r io.Reader) Table {
	var table Table
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := scanner.Text()
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(trimmed, "#") {
			continue
		}
		fields := strings.Fields(trimmed)
		if len(fields) != 6 {
			continue
		}
		table = append(table, Entry{
			Device:     fields[0],
			MountPoint: fields[1],
			FsType:     fields[2],
			Options:    fields[3],
			Dump:       atoiOrDefault(fields[4], -1),
			Pass:       atoiOrDefault(fields[5], -1),
		})
	}
	return table
}

func atoiOrDefault(s string, def int) int {
	n, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return n
}

// IsMountpoint reports whether any entry in the table has MountPoint p,
// after canonicalizing both sides with filepath.Clean.
func (t Table) IsMountpoint(p string) bool {
	p = filepath.Clean(p)
	for _, e := range t {
		if filepath.Clean(e.MountPoint) == p {
			return true
		}
	}
	return false
}

// FindMountpointsByDevice returns every entry whose device matches dev.
// When dev ends in a digit (e.g. "/dev/sda1") only an exact match
// counts. Otherwise dev is treated as a whole-disk name and the match is
// a prefix match against "<dev><digit>...", so "/dev/sda" finds
// "/dev/sda1" through "/dev/sdaN" but not an unrelated "/dev/sdab".
func (t Table) FindMountpointsByDevice(dev string) Table {
	dev = filepath.Clean(dev)
	exactOnly := len(dev) > 0 && isDigit(dev[len(dev)-1])

	var out Table
	for _, e := range t {
		device := filepath.Clean(e.Device)
		if device == dev {
			out = append(out, e)
			continue
		}
		if !exactOnly && strings.HasPrefix(device, dev) && len(device) > len(dev) && isDigit(device[len(dev)]) {
			out = append(out, e)
		}
	}
	return out
}

// RootEntry returns the entry whose MountPoint is "/", if any.
func (t Table) RootEntry() (Entry, bool) {
	for _, e := range t {
		if filepath.Clean(e.MountPoint) == "/" {
			return e, true
		}
	}
	return Entry{}, false
}

func isDigit(b byte) bool { return b >= '0' && b <= '9' }
