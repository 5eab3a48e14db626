package chroot_test

import (
	"testing"

	. "gopkg.in/check.v1"

	"github.com/koitococo/infraplan/chroot"
	"github.com/koitococo/infraplan/fstab"
	"github.com/koitococo/infraplan/mount"
)

func Test(t *testing.T) { TestingT(t) }

type chrootSuite struct{}

var _ = Suite(&chrootSuite{})

func (s *chrootSuite) TestPrepareMountsInOrder(c *C) {
	var targets []string
	restore := mount.MockSyscalls(
		func(source, target, fstype string, flags uintptr, data string) error {
			targets = append(targets, target)
			return nil
		},
		nil,
		func() (fstab.Table, error) { return nil, nil },
	)
	defer restore()

	root := c.MkDir()
	c.Assert(chroot.Prepare(root), IsNil)
	c.Check(targets, DeepEquals, []string{
		root + "/tmp",
		root + "/run",
		root + "/proc",
		root + "/sys",
		root + "/dev",
		root + "/dev/pts",
		root + "/dev/shm",
		root + "/sys/firmware/efi",
	})
}

func (s *chrootSuite) TestCleanupUnmountsInReverseAndSwallowsErrors(c *C) {
	var unmounted []string
	restore := mount.MockSyscalls(
		nil,
		func(target string, flags int) error {
			unmounted = append(unmounted, target)
			if target == "/r/sys" {
				return &mockUnmountError{}
			}
			return nil
		},
		func() (fstab.Table, error) { return nil, nil },
	)
	defer restore()

	chroot.Cleanup("/r")
	c.Check(unmounted, DeepEquals, []string{
		"/r/sys/firmware/efi",
		"/r/dev/shm",
		"/r/dev/pts",
		"/r/dev",
		"/r/sys",
		"/r/proc",
		"/r/run",
		"/r/tmp",
	})
}

type mockUnmountError struct{}

func (e *mockUnmountError) Error() string { return "mock unmount failure" }
