package state

import (
	"encoding/json"

	"github.com/koitococo/infraplan/config"
)

type jsonRecipeState struct {
	ID               string          `json:"id"`
	DisplayName      string          `json:"display_name"`
	EffectiveGlobals config.Globals  `json:"effective_globals"`
	Use              string          `json:"use"`
	PluginConfig     json.RawMessage `json:"plugin_config"`
	PluginState      json.RawMessage `json:"plugin_state"`
}

type jsonState struct {
	Config  config.Configuration       `json:"config"`
	Recipes []string                   `json:"recipes"`
	States  map[string]jsonRecipeState `json:"states"`
}

// MarshalJSON lays out the persisted state as {config, recipes, states}
// (§6), with each RecipeState's plugin config/state marshaled under its
// own `use` discriminator alongside everything else.
func (s State) MarshalJSON() ([]byte, error) {
	raw := jsonState{
		Config:  s.Config,
		Recipes: s.Recipes,
		States:  make(map[string]jsonRecipeState, len(s.States)),
	}
	for id, rs := range s.States {
		pc, err := json.Marshal(rs.PluginConfig)
		if err != nil {
			return nil, err
		}
		ps, err := json.Marshal(rs.PluginState)
		if err != nil {
			return nil, err
		}
		raw.States[id] = jsonRecipeState{
			ID:               rs.ID,
			DisplayName:      rs.DisplayName,
			EffectiveGlobals: rs.EffectiveGlobals,
			Use:              rs.PluginConfig.Use(),
			PluginConfig:     pc,
			PluginState:      ps,
		}
	}
	return json.Marshal(raw)
}
