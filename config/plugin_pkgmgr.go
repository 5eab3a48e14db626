package config

// PackageManagerConfig is the pkgmgr plugin's payload. Update defaults
// to true (nil means "do upgrade") per §4.8's "update ≠ false" rule.
type PackageManagerConfig struct {
	Install []string `json:"install,omitempty" yaml:"install,omitempty"`
	Remove  []string `json:"remove,omitempty" yaml:"remove,omitempty"`
	Update  *bool    `json:"update,omitempty" yaml:"update,omitempty"`
}

func (c *PackageManagerConfig) Use() string { return "pkgmgr" }

// WantsUpgrade reports whether the upgrade step should run: default-on,
// skipped only when Update is explicitly false.
func (c *PackageManagerConfig) WantsUpgrade() bool {
	return c.Update == nil || *c.Update
}
