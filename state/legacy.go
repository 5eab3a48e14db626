package state

import yaml "gopkg.in/yaml.v2"

// LegacySummary is a flattened, YAMLv2-compatible view of a State's
// completion status: just the ids in execution order and a done/not
// flag per id. It exists for older tooling around this project that
// only ever understood yaml.v2 and cares about "is recipe X done",
// never the full plugin config/state shape.
type LegacySummary struct {
	Recipes []string        `yaml:"recipes"`
	Done    map[string]bool `yaml:"done"`
}

// Legacy projects s into a LegacySummary.
func (s State) Legacy() LegacySummary {
	done := make(map[string]bool, len(s.States))
	for id, rs := range s.States {
		done[id] = rs.PluginState != nil && rs.PluginState.Done()
	}
	return LegacySummary{Recipes: s.Recipes, Done: done}
}

// MarshalLegacyYAML serializes s's LegacySummary via yaml.v2.
func MarshalLegacyYAML(s State) ([]byte, error) {
	return yaml.Marshal(s.Legacy())
}

// UnmarshalLegacyYAML parses a LegacySummary via yaml.v2.
func UnmarshalLegacyYAML(data []byte) (LegacySummary, error) {
	var l LegacySummary
	err := yaml.Unmarshal(data, &l)
	return l, err
}
