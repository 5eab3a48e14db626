// Package config decodes the declarative provisioning document (JSON or
// YAML) into the in-memory Configuration the recipe engine consumes:
// a Globals block, an ordered list of Recipes, and one plugin
// configuration per recipe drawn from the closed tagged union
// {SystemDeployer, PackageManager, SystemReconfigurator, Reboot}.
package config

// Distro is one of the distro_hint values the plugin set knows how to
// special-case.
type Distro string

const (
	DistroUbuntu Distro = "ubuntu"
	DistroDebian Distro = "debian"
	DistroFedora Distro = "fedora"
	DistroArch   Distro = "arch"
	DistroAlpine Distro = "alpine"
)

// Globals carries the optional, overridable hints every recipe can see.
type Globals struct {
	DistroHint *Distro `json:"distro_hint,omitempty" yaml:"distro_hint,omitempty"`
}

// Merge computes the effective Globals for a recipe: per field, o
// (recipe.overrides) wins over g (the outer Globals); a nil field on o
// falls through to g; nil on both stays nil.
func (g Globals) Merge(o Globals) Globals {
	merged := g
	if o.DistroHint != nil {
		merged.DistroHint = o.DistroHint
	}
	return merged
}

// PluginConfig is the closed tagged union a Recipe's `with:` payload
// decodes into. Use is the recipe-level discriminator (sys_deploy,
// pkgmgr, sysconf, reboot); it is also exposed per value for callers
// that only hold the interface.
type PluginConfig interface {
	Use() string
}

// Recipe is one declared unit of work: an id, an optional display name
// (defaults to id), an optional partial-Globals override, and exactly
// one plugin configuration.
type Recipe struct {
	ID        string
	Name      string
	Overrides Globals
	Plugin    PluginConfig
}

// DisplayName returns Name if set, else ID.
func (r Recipe) DisplayName() string {
	if r.Name != "" {
		return r.Name
	}
	return r.ID
}

// Configuration is the declarative input: an optional persisted-state
// path, an optional Globals block, and an ordered Recipe list.
type Configuration struct {
	StatePath string
	Global    Globals
	Recipes   []Recipe
}
