package state_test

import (
	"encoding/json"
	"testing"

	. "gopkg.in/check.v1"

	"github.com/koitococo/infraplan/config"
	"github.com/koitococo/infraplan/plugin/sysconf"
	"github.com/koitococo/infraplan/plugin/sysdeploy"
	"github.com/koitococo/infraplan/state"
)

func Test(t *testing.T) { TestingT(t) }

type stateSuite struct{}

var _ = Suite(&stateSuite{})

func ptr[T any](v T) *T { return &v }

func sampleConfig() config.Configuration {
	return config.Configuration{
		StatePath: "/var/lib/infraplan/state.json",
		Global:    config.Globals{DistroHint: ptr(config.DistroUbuntu)},
		Recipes: []config.Recipe{
			{
				ID:   "deploy",
				Name: "Deploy rootfs",
				Plugin: &config.SystemDeployerConfig{
					Type: "tar", URL: "https://e.local/u.tar.zstd", Compression: "zstd",
					Disk: "/dev/sda", Mount: "/mnt",
				},
			},
			{
				ID: "users",
				Plugin: &config.SystemReconfiguratorConfig{
					Items: []config.SysConfItem{
						&config.UserItem{Users: []config.UserSpec{{Name: "ubuntu", Password: "pw"}}},
					},
				},
			},
		},
	}
}

func (s *stateSuite) TestNewComputesEffectiveGlobalsAndFreshState(c *C) {
	st := state.New(sampleConfig())

	c.Check(st.Recipes, DeepEquals, []string{"deploy", "users"})
	c.Assert(st.States, HasLen, 2)

	deploy := st.States["deploy"]
	c.Check(deploy.DisplayName, Equals, "Deploy rootfs")
	c.Check(*deploy.EffectiveGlobals.DistroHint, Equals, config.DistroUbuntu)
	deployState, ok := deploy.PluginState.(*sysdeploy.State)
	c.Assert(ok, Equals, true)
	c.Check(deployState.Applied, Equals, false)

	users := st.States["users"]
	c.Check(users.DisplayName, Equals, "users")
	usersState, ok := users.PluginState.(*sysconf.State)
	c.Assert(ok, Equals, true)
	c.Check(usersState.Done, DeepEquals, []bool{false})
}

func (s *stateSuite) TestDuplicateRecipeIDsLaterWinsInMapButBothExecute(c *C) {
	cfg := config.Configuration{
		Recipes: []config.Recipe{
			{ID: "x", Plugin: &config.PackageManagerConfig{Install: []string{"a"}}},
			{ID: "x", Plugin: &config.PackageManagerConfig{Install: []string{"b"}}},
		},
	}
	st := state.New(cfg)

	c.Check(st.Recipes, DeepEquals, []string{"x", "x"})
	c.Assert(st.States, HasLen, 1)
	pc := st.States["x"].PluginConfig.(*config.PackageManagerConfig)
	c.Check(pc.Install, DeepEquals, []string{"b"})
}

func (s *stateSuite) TestLegacyYAMLRoundTrip(c *C) {
	st := state.New(sampleConfig())
	st.States["deploy"].PluginState.(*sysdeploy.State).Applied = true

	data, err := state.MarshalLegacyYAML(st)
	c.Assert(err, IsNil)

	got, err := state.UnmarshalLegacyYAML(data)
	c.Assert(err, IsNil)
	c.Check(got, DeepEquals, st.Legacy())
	c.Check(got.Done["deploy"], Equals, true)
	c.Check(got.Done["users"], Equals, false)
}

func (s *stateSuite) TestJSONRoundTrip(c *C) {
	orig := state.New(sampleConfig())
	orig.States["deploy"].PluginState.(*sysdeploy.State).Applied = true

	data, err := json.Marshal(orig)
	c.Assert(err, IsNil)

	var got state.State
	c.Assert(json.Unmarshal(data, &got), IsNil)
	c.Check(got, DeepEquals, orig)
}
