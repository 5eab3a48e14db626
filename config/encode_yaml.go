package config

import "gopkg.in/yaml.v3"

// MarshalYAML mirrors MarshalJSON for the YAML codec.
func (c Configuration) MarshalYAML() (interface{}, error) {
	raw := yamlConfigurationOut{
		StatePath: c.StatePath,
		Global:    globalsToJSON(c.Global),
	}
	for _, r := range c.Recipes {
		raw.Recipes = append(raw.Recipes, yamlRecipeOut{
			ID:        r.ID,
			Name:      r.Name,
			Overrides: globalsToJSON(r.Overrides),
			Use:       r.Plugin.Use(),
			With:      r.Plugin,
		})
	}
	return raw, nil
}

type yamlConfigurationOut struct {
	StatePath string          `yaml:"state_path,omitempty"`
	Global    *jsonGlobals    `yaml:"global,omitempty"`
	Recipes   []yamlRecipeOut `yaml:"recipe"`
}

type yamlRecipeOut struct {
	ID        string       `yaml:"id"`
	Name      string       `yaml:"name,omitempty"`
	Overrides *jsonGlobals `yaml:"overrides,omitempty"`
	Use       string       `yaml:"use"`
	With      PluginConfig `yaml:"with"`
}
