package config

import (
	"encoding/json"

	"github.com/koitococo/infraplan/errs"
)

type jsonConfiguration struct {
	StatePath string       `json:"state_path,omitempty"`
	Global    *jsonGlobals `json:"global,omitempty"`
	Recipes   []jsonRecipe `json:"recipe"`
}

type jsonGlobals struct {
	DistroHint *Distro `json:"distro_hint,omitempty" yaml:"distro_hint,omitempty"`
}

func (g *jsonGlobals) toGlobals() Globals {
	if g == nil {
		return Globals{}
	}
	return Globals{DistroHint: g.DistroHint}
}

type jsonRecipe struct {
	ID        string          `json:"id"`
	Name      string          `json:"name,omitempty"`
	Overrides *jsonGlobals    `json:"overrides,omitempty"`
	Use       string          `json:"use"`
	With      json.RawMessage `json:"with"`
}

// UnmarshalJSON implements the two-pass tagged-union decode: first the
// envelope (use/with) plus the scalar recipe fields, then With is
// re-decoded per the `use` discriminator straight into the concrete
// plugin config type (and, for sysconf, a further per-item `type`
// discriminator).
func (c *Configuration) UnmarshalJSON(data []byte) error {
	var raw jsonConfiguration
	if err := json.Unmarshal(data, &raw); err != nil {
		return &errs.ConfigError{Path: "<config>", Reason: err.Error()}
	}

	cfg := Configuration{
		StatePath: raw.StatePath,
		Global:    raw.Global.toGlobals(),
	}
	for _, rr := range raw.Recipes {
		plugin, err := decodeJSONPlugin(rr.Use, rr.With)
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

// DecodePluginJSON decodes a recipe's `with:` payload per its `use`
// discriminator. Exported so the state package can decode a persisted
// RecipeState's plugin_config the same way Configuration does.
func DecodePluginJSON(use string, with json.RawMessage) (PluginConfig, error) {
	return decodeJSONPlugin(use, with)
}

func decodeJSONPlugin(use string, with json.RawMessage) (PluginConfig, error) {
	switch use {
	case "sys_deploy":
		p := &SystemDeployerConfig{}
		if err := json.Unmarshal(with, p); err != nil {
			return nil, &errs.ConfigError{Path: "recipe.with", Reason: err.Error()}
		}
		if p.Type != "tar" {
			return nil, &errs.ConfigError{Path: "recipe.with.type", Reason: "unsupported sys_deploy type " + p.Type}
		}
		return p, nil

	case "pkgmgr":
		p := &PackageManagerConfig{}
		if err := json.Unmarshal(with, p); err != nil {
			return nil, &errs.ConfigError{Path: "recipe.with", Reason: err.Error()}
		}
		return p, nil

	case "sysconf":
		var raw struct {
			Items []json.RawMessage `json:"items"`
		}
		if err := json.Unmarshal(with, &raw); err != nil {
			return nil, &errs.ConfigError{Path: "recipe.with", Reason: err.Error()}
		}
		items := make([]SysConfItem, 0, len(raw.Items))
		for _, r := range raw.Items {
			item, err := decodeJSONSysConfItem(r)
			if err != nil {
				return nil, err
			}
			items = append(items, item)
		}
		return &SystemReconfiguratorConfig{Items: items}, nil

	case "reboot":
		p := &RebootConfig{}
		if err := json.Unmarshal(with, p); err != nil {
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

func decodeJSONSysConfItem(raw json.RawMessage) (SysConfItem, error) {
	var disc struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(raw, &disc); err != nil {
		return nil, &errs.ConfigError{Path: "recipe.with.items", Reason: err.Error()}
	}

	switch disc.Type {
	case "user":
		p := &UserItem{}
		if err := json.Unmarshal(raw, p); err != nil {
			return nil, &errs.ConfigError{Path: "recipe.with.items", Reason: err.Error()}
		}
		return p, nil

	case "apt_repo":
		p := &AptRepoItem{}
		if err := json.Unmarshal(raw, p); err != nil {
			return nil, &errs.ConfigError{Path: "recipe.with.items", Reason: err.Error()}
		}
		return p, nil

	case "netplan":
		return &NetplanItem{}, nil

	default:
		return nil, &errs.ConfigError{Path: "recipe.with.items.type", Reason: "unknown sysconf item " + disc.Type}
	}
}
