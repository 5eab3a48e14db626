package config

import (
	"gopkg.in/yaml.v3"

	"github.com/koitococo/infraplan/errs"
)

type yamlRecipe struct {
	ID        string       `yaml:"id"`
	Name      string       `yaml:"name,omitempty"`
	Overrides *jsonGlobals `yaml:"overrides,omitempty"`
	Use       string       `yaml:"use"`
	With      yaml.Node    `yaml:"with"`
}

type yamlConfiguration struct {
	StatePath string       `yaml:"state_path,omitempty"`
	Global    *jsonGlobals `yaml:"global,omitempty"`
	Recipes   []yamlRecipe `yaml:"recipe"`
}

// UnmarshalYAML mirrors UnmarshalJSON's two-pass tagged-union decode,
// using a yaml.Node to defer the `with` payload until the `use`
// discriminator is known.
func (c *Configuration) UnmarshalYAML(value *yaml.Node) error {
	var raw yamlConfiguration
	if err := value.Decode(&raw); err != nil {
		return &errs.ConfigError{Path: "<config>", Reason: err.Error()}
	}

	cfg := Configuration{
		StatePath: raw.StatePath,
		Global:    raw.Global.toGlobals(),
	}
	for _, rr := range raw.Recipes {
		plugin, err := decodeYAMLPlugin(rr.Use, &rr.With)
		if err != nil {
			return err
		}
		cfg.Recipes = append(cfg.Recipes, Recipe{
			ID:        rr.ID,
			Name:      rr.Name,
			Overrides: rr.Overrides.toGlobals(),
			Plugin:    plugin,
		})
	}
	*c = cfg
	return nil
}

func decodeYAMLPlugin(use string, with *yaml.Node) (PluginConfig, error) {
	switch use {
	case "sys_deploy":
		p := &SystemDeployerConfig{}
		if err := with.Decode(p); err != nil {
			return nil, &errs.ConfigError{Path: "recipe.with", Reason: err.Error()}
		}
		if p.Type != "tar" {
			return nil, &errs.ConfigError{Path: "recipe.with.type", Reason: "unsupported sys_deploy type " + p.Type}
		}
		return p, nil

	case "pkgmgr":
		p := &PackageManagerConfig{}
		if err := with.Decode(p); err != nil {
			return nil, &errs.ConfigError{Path: "recipe.with", Reason: err.Error()}
		}
		return p, nil

	case "sysconf":
		var raw struct {
			Items []yaml.Node `yaml:"items"`
		}
		if err := with.Decode(&raw); err != nil {
			return nil, &errs.ConfigError{Path: "recipe.with", Reason: err.Error()}
		}
		items := make([]SysConfItem, 0, len(raw.Items))
		for i := range raw.Items {
			item, err := decodeYAMLSysConfItem(&raw.Items[i])
			if err != nil {
				return nil, err
			}
			items = append(items, item)
		}
		return &SystemReconfiguratorConfig{Items: items}, nil

	case "reboot":
		p := &RebootConfig{}
		if err := with.Decode(p); err != nil {
			return nil, &errs.ConfigError{Path: "recipe.with", Reason: err.Error()}
		}
		if p.Type != "kexec" {
			return nil, &errs.ConfigError{Path: "recipe.with.type", Reason: "unsupported reboot type " + p.Type}
		}
		return p, nil

	default:
		return nil, &errs.ConfigError{Path: "recipe.use", Reason: "unknown plugin " + use}
	}
}

func decodeYAMLSysConfItem(node *yaml.Node) (SysConfItem, error) {
	var disc struct {
		Type string `yaml:"type"`
	}
	if err := node.Decode(&disc); err != nil {
		return nil, &errs.ConfigError{Path: "recipe.with.items", Reason: err.Error()}
	}

	switch disc.Type {
	case "user":
		p := &UserItem{}
		if err := node.Decode(p); err != nil {
			return nil, &errs.ConfigError{Path: "recipe.with.items", Reason: err.Error()}
		}
		return p, nil

	case "apt_repo":
		p := &AptRepoItem{}
		if err := node.Decode(p); err != nil {
			return nil, &errs.ConfigError{Path: "recipe.with.items", Reason: err.Error()}
		}
		return p, nil

	case "netplan":
		return &NetplanItem{}, nil

	default:
		return nil, &errs.ConfigError{Path: "recipe.with.items.type", Reason: "unknown sysconf item " + disc.Type}
	}
}
