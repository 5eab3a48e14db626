package config_test

import (
	"encoding/json"
	"os"
	"testing"

	. "gopkg.in/check.v1"
	"gopkg.in/yaml.v3"

	"github.com/koitococo/infraplan/config"
)

func Test(t *testing.T) { TestingT(t) }

type configSuite struct{}

var _ = Suite(&configSuite{})

func ubuntu() config.Distro { return config.DistroUbuntu }
func alpine() config.Distro { return config.DistroAlpine }

func sampleConfig() config.Configuration {
	trueVal := true
	return config.Configuration{
		StatePath: "/var/lib/infraplan/state.json",
		Global:    config.Globals{DistroHint: ptr(ubuntu())},
		Recipes: []config.Recipe{
			{
				ID:   "deploy",
				Name: "Deploy rootfs",
				Plugin: &config.SystemDeployerConfig{
					Type: "tar", URL: "https://e.local/u.tar.zstd",
					Compression: "zstd", Disk: "/dev/sda", Mount: "/mnt",
				},
			},
			{
				ID:        "packages",
				Overrides: config.Globals{DistroHint: ptr(alpine())},
				Plugin: &config.PackageManagerConfig{
					Install: []string{"vim"}, Remove: []string{"nano"}, Update: &trueVal,
				},
			},
			{
				ID: "users",
				Plugin: &config.SystemReconfiguratorConfig{
					Items: []config.SysConfItem{
						&config.UserItem{
							Users:  []config.UserSpec{{Name: "ubuntu", Password: "pw", Groups: []string{"sudo"}}},
							Chroot: "/mnt",
						},
						&config.AptRepoItem{
							Name: "ubuntu-archive", BaseURL: "http://a.u.c/u", Distro: "focal",
							Components: []string{"main", "universe"},
						},
						&config.NetplanItem{},
					},
				},
			},
			{
				ID: "reboot",
				Plugin: &config.RebootConfig{
					Type: "kexec", Root: "/mnt", Append: "quiet splash",
				},
			},
		},
	}
}

func ptr[T any](v T) *T { return &v }

func (s *configSuite) TestJSONRoundTrip(c *C) {
	orig := sampleConfig()
	data, err := json.Marshal(orig)
	c.Assert(err, IsNil)

	var got config.Configuration
	c.Assert(json.Unmarshal(data, &got), IsNil)
	c.Check(got, DeepEquals, orig)
}

func (s *configSuite) TestYAMLRoundTrip(c *C) {
	orig := sampleConfig()
	data, err := yaml.Marshal(orig)
	c.Assert(err, IsNil)

	var got config.Configuration
	c.Assert(yaml.Unmarshal(data, &got), IsNil)
	c.Check(got, DeepEquals, orig)
}

func (s *configSuite) TestMergeOverrideWins(c *C) {
	g := config.Globals{DistroHint: ptr(ubuntu())}
	o := config.Globals{DistroHint: ptr(alpine())}
	merged := g.Merge(o)
	c.Check(*merged.DistroHint, Equals, alpine())
}

func (s *configSuite) TestMergeFallsThroughToOuter(c *C) {
	g := config.Globals{DistroHint: ptr(ubuntu())}
	o := config.Globals{}
	merged := g.Merge(o)
	c.Check(*merged.DistroHint, Equals, ubuntu())
}

func (s *configSuite) TestMergeNullOnBoth(c *C) {
	merged := config.Globals{}.Merge(config.Globals{})
	c.Check(merged.DistroHint, IsNil)
}

func (s *configSuite) TestLoadRejectsUnknownExtension(c *C) {
	dir := c.MkDir()
	path := dir + "/config.toml"
	c.Assert(os.WriteFile(path, []byte("x"), 0644), IsNil)

	_, err := config.Load(path)
	c.Assert(err, ErrorMatches, ".*unsupported file extension.*")
}
