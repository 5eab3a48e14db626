package config

import (
	"encoding/json"

	"gopkg.in/yaml.v3"
)

// SysConfItem is one sub-item of a sysconf recipe; each carries its own
// independent "done" flag in the plugin state (§3).
type SysConfItem interface {
	Use() string
}

// SystemReconfiguratorConfig is the sysconf plugin's payload: an
// ordered list of independent sub-items.
type SystemReconfiguratorConfig struct {
	Items []SysConfItem `json:"items" yaml:"items"`
}

func (c *SystemReconfiguratorConfig) Use() string { return "sysconf" }

// MarshalJSON injects each item's `type` discriminator (absent from the
// concrete item structs themselves, since it's derived from Use())
// alongside its other fields.
func (c *SystemReconfiguratorConfig) MarshalJSON() ([]byte, error) {
	items := make([]json.RawMessage, 0, len(c.Items))
	for _, item := range c.Items {
		merged, err := mergeTypeJSON(item)
		if err != nil {
			return nil, err
		}
		items = append(items, merged)
	}
	return json.Marshal(struct {
		Items []json.RawMessage `json:"items"`
	}{items})
}

func mergeTypeJSON(item SysConfItem) (json.RawMessage, error) {
	raw, err := json.Marshal(item)
	if err != nil {
		return nil, err
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil, err
	}
	typeVal, err := json.Marshal(item.Use())
	if err != nil {
		return nil, err
	}
	fields["type"] = typeVal
	return json.Marshal(fields)
}

// MarshalYAML mirrors MarshalJSON for the YAML codec.
func (c *SystemReconfiguratorConfig) MarshalYAML() (interface{}, error) {
	items := make([]map[string]interface{}, 0, len(c.Items))
	for _, item := range c.Items {
		raw, err := yaml.Marshal(item)
		if err != nil {
			return nil, err
		}
		var m map[string]interface{}
		if err := yaml.Unmarshal(raw, &m); err != nil {
			return nil, err
		}
		m["type"] = item.Use()
		items = append(items, m)
	}
	return struct {
		Items []map[string]interface{} `yaml:"items"`
	}{items}, nil
}

// UserSpec is one account to create.
type UserSpec struct {
	Name     string   `json:"name" yaml:"name"`
	Password string   `json:"password,omitempty" yaml:"password,omitempty"`
	Groups   []string `json:"groups,omitempty" yaml:"groups,omitempty"`
}

// UserItem creates a batch of accounts, optionally inside a chroot.
type UserItem struct {
	Users  []UserSpec `json:"users" yaml:"users"`
	Chroot string     `json:"chroot,omitempty" yaml:"chroot,omitempty"`
}

func (i *UserItem) Use() string { return "user" }

// AptRepoItem writes one apt sources.list(.d) file.
type AptRepoItem struct {
	Name       string   `json:"name,omitempty" yaml:"name,omitempty"`
	BaseURL    string   `json:"base_url" yaml:"base_url"`
	Distro     string   `json:"distro" yaml:"distro"`
	Components []string `json:"components" yaml:"components"`
	Overwrite  *bool    `json:"overwrite,omitempty" yaml:"overwrite,omitempty"`
	Chroot     string   `json:"chroot,omitempty" yaml:"chroot,omitempty"`
}

func (i *AptRepoItem) Use() string { return "apt_repo" }

// WantsOverwrite reports whether an existing file should be replaced;
// defaults to false.
func (i *AptRepoItem) WantsOverwrite() bool {
	return i.Overwrite != nil && *i.Overwrite
}

// NetplanItem is a deferred stub (§9 open question b): its "done" flag
// flips on first invocation without any concrete network
// configuration being written.
type NetplanItem struct{}

func (i *NetplanItem) Use() string { return "netplan" }
