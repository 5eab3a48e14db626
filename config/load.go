package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/koitococo/infraplan/errs"
)

// Load reads path and decodes it as a Configuration per its extension:
// .json as JSON, .yaml/.yml as YAML. Any other extension is a
// ConfigError.
func Load(path string) (Configuration, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Configuration{}, &errs.IOFailed{Op: "read " + path, Err: err}
	}

	var cfg Configuration
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".json":
		if err := json.Unmarshal(data, &cfg); err != nil {
			return Configuration{}, err
		}
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Configuration{}, err
		}
	default:
		return Configuration{}, &errs.ConfigError{Path: path, Reason: "unsupported file extension " + ext}
	}
	return cfg, nil
}
