package sysconf_test

import (
	"os"
	"path/filepath"
	"testing"

	. "gopkg.in/check.v1"

	"github.com/koitococo/infraplan/config"
	"github.com/koitococo/infraplan/osutil"
	"github.com/koitococo/infraplan/plugin/sysconf"
	"github.com/koitococo/infraplan/testutil"
)

func Test(t *testing.T) { TestingT(t) }

type sysconfSuite struct {
	testutil.BaseTest
}

var _ = Suite(&sysconfSuite{})

func (s *sysconfSuite) mockRun(calls *[][]string) {
	oldRun := *sysconf.RunFn
	*sysconf.RunFn = func(argv []string, opts osutil.RunOpts) (osutil.Result, error) {
		entry := append([]string{}, argv...)
		if opts.Stdin != nil {
			entry = append(entry, "stdin="+string(opts.Stdin))
		}
		*calls = append(*calls, entry)
		return osutil.Result{}, nil
	}
	s.AddCleanup(func() { *sysconf.RunFn = oldRun })

	oldChrootRun := *sysconf.ChrootRunFn
	*sysconf.ChrootRunFn = func(target string, argv []string) (osutil.Result, error) {
		*calls = append(*calls, append([]string{"chroot:" + target}, argv...))
		return osutil.Result{}, nil
	}
	s.AddCleanup(func() { *sysconf.ChrootRunFn = oldChrootRun })
}

func (s *sysconfSuite) TestInvokeUserWithPasswordInChroot(c *C) {
	var calls [][]string
	s.mockRun(&calls)

	cfg := &config.SystemReconfiguratorConfig{
		Items: []config.SysConfItem{
			&config.UserItem{
				Users:  []config.UserSpec{{Name: "ubuntu", Password: "pw", Groups: []string{"sudo"}}},
				Chroot: "/mnt",
			},
		},
	}
	state := &sysconf.State{}

	c.Assert(sysconf.Invoke(cfg, state, config.Globals{}), IsNil)
	c.Check(calls, DeepEquals, [][]string{
		{"chroot:/mnt", "useradd", "ubuntu", "-m", "-s", "/bin/bash", "-G", "sudo"},
		{"chpasswd", "--root", "/mnt", "stdin=ubuntu:pw\n"},
	})
	c.Check(state.Done, DeepEquals, []bool{true})
}

func (s *sysconfSuite) TestInvokeUserSkipsRoot(c *C) {
	var calls [][]string
	s.mockRun(&calls)

	cfg := &config.SystemReconfiguratorConfig{
		Items: []config.SysConfItem{
			&config.UserItem{Users: []config.UserSpec{{Name: "root", Password: "x"}}},
		},
	}
	c.Assert(sysconf.Invoke(cfg, &sysconf.State{}, config.Globals{}), IsNil)
	c.Check(calls, HasLen, 0)
}

func (s *sysconfSuite) TestInvokeUserWithoutPasswordSkipsChpasswd(c *C) {
	var calls [][]string
	s.mockRun(&calls)

	cfg := &config.SystemReconfiguratorConfig{
		Items: []config.SysConfItem{
			&config.UserItem{Users: []config.UserSpec{{Name: "alice"}}},
		},
	}
	c.Assert(sysconf.Invoke(cfg, &sysconf.State{}, config.Globals{}), IsNil)
	c.Check(calls, DeepEquals, [][]string{
		{"useradd", "alice", "-m", "-s", "/bin/bash"},
	})
}

func (s *sysconfSuite) TestInvokeAptRepoOverwriteGate(c *C) {
	dir := c.MkDir()
	path := filepath.Join(dir, "etc", "apt", "sources.list.d", "ubuntu-archive.list")
	c.Assert(os.MkdirAll(filepath.Dir(path), 0755), IsNil)
	c.Assert(os.WriteFile(path, []byte("stale\n"), 0644), IsNil)

	cfg := &config.SystemReconfiguratorConfig{
		Items: []config.SysConfItem{
			&config.AptRepoItem{
				Name: "ubuntu-archive", BaseURL: "http://a.u.c/u", Distro: "focal",
				Components: []string{"main", "universe"}, Chroot: dir,
			},
		},
	}
	c.Assert(sysconf.Invoke(cfg, &sysconf.State{}, config.Globals{}), IsNil)

	data, err := os.ReadFile(path)
	c.Assert(err, IsNil)
	c.Check(string(data), Equals, "stale\n")
}

func (s *sysconfSuite) TestInvokeAptRepoOverwriteTrueRewrites(c *C) {
	dir := c.MkDir()
	path := filepath.Join(dir, "etc", "apt", "sources.list.d", "ubuntu-archive.list")
	c.Assert(os.MkdirAll(filepath.Dir(path), 0755), IsNil)
	c.Assert(os.WriteFile(path, []byte("stale\n"), 0644), IsNil)

	overwrite := true
	cfg := &config.SystemReconfiguratorConfig{
		Items: []config.SysConfItem{
			&config.AptRepoItem{
				Name: "ubuntu-archive", BaseURL: "http://a.u.c/u", Distro: "focal",
				Components: []string{"main", "universe"}, Chroot: dir, Overwrite: &overwrite,
			},
		},
	}
	c.Assert(sysconf.Invoke(cfg, &sysconf.State{}, config.Globals{}), IsNil)

	data, err := os.ReadFile(path)
	c.Assert(err, IsNil)
	c.Check(string(data), Equals, "deb http://a.u.c/u focal main universe\n")
}

func (s *sysconfSuite) TestInvokeAptRepoNoNameUsesSourcesList(c *C) {
	dir := c.MkDir()
	cfg := &config.SystemReconfiguratorConfig{
		Items: []config.SysConfItem{
			&config.AptRepoItem{BaseURL: "http://a.u.c/u", Distro: "focal", Components: []string{"main"}, Chroot: dir},
		},
	}
	c.Assert(sysconf.Invoke(cfg, &sysconf.State{}, config.Globals{}), IsNil)

	data, err := os.ReadFile(filepath.Join(dir, "etc", "apt", "sources.list"))
	c.Assert(err, IsNil)
	c.Check(string(data), Equals, "deb http://a.u.c/u focal main\n")
}

func (s *sysconfSuite) TestAptRepoPathDefaultsToHostRootWhenChrootEmpty(c *C) {
	c.Check(sysconf.AptRepoPath(&config.AptRepoItem{Name: "ubuntu-archive"}), Equals,
		filepath.Join("/", "etc", "apt", "sources.list.d", "ubuntu-archive.list"))
	c.Check(sysconf.AptRepoPath(&config.AptRepoItem{}), Equals,
		filepath.Join("/", "etc", "apt", "sources.list"))
}

func (s *sysconfSuite) TestInvokeNetplanFlipsDoneOnFirstCall(c *C) {
	cfg := &config.SystemReconfiguratorConfig{Items: []config.SysConfItem{&config.NetplanItem{}}}
	state := &sysconf.State{}
	c.Assert(sysconf.Invoke(cfg, state, config.Globals{}), IsNil)
	c.Check(state.Done, DeepEquals, []bool{true})
}

func (s *sysconfSuite) TestInvokeSkipsItemsAlreadyDone(c *C) {
	var calls [][]string
	s.mockRun(&calls)

	cfg := &config.SystemReconfiguratorConfig{
		Items: []config.SysConfItem{
			&config.UserItem{Users: []config.UserSpec{{Name: "alice", Password: "pw"}}},
			&config.NetplanItem{},
		},
	}
	state := &sysconf.State{Done: []bool{true, false}}

	c.Assert(sysconf.Invoke(cfg, state, config.Globals{}), IsNil)
	c.Check(calls, HasLen, 0)
	c.Check(state.Done, DeepEquals, []bool{true, true})
}
