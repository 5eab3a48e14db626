package config

import "encoding/json"

// MarshalJSON is the inverse of UnmarshalJSON: each recipe's concrete
// plugin config is marshaled as-is under `with`, with `use` restored
// from PluginConfig.Use().
func (c Configuration) MarshalJSON() ([]byte, error) {
	raw := jsonConfiguration{
		StatePath: c.StatePath,
		Global:    globalsToJSON(c.Global),
	}
	for _, r := range c.Recipes {
		with, err := json.Marshal(r.Plugin)
		if err != nil {
			return nil, err
		}
		raw.Recipes = append(raw.Recipes, jsonRecipe{
			ID:        r.ID,
			Name:      r.Name,
			Overrides: globalsToJSON(r.Overrides),
			Use:       r.Plugin.Use(),
			With:      with,
		})
	}
	return json.Marshal(raw)
}

func globalsToJSON(g Globals) *jsonGlobals {
	if g.DistroHint == nil {
		return nil
	}
	return &jsonGlobals{DistroHint: g.DistroHint}
}
