package api

import "gopkg.in/yaml.v3"

// Manifest is the optional YAML file describing a run: what to upload and
// who to ping. CLI flags override individual fields.
type Manifest struct {
	RunName      string       `yaml:"run_name"`
	Project      string       `yaml:"project"`
	ContainerURL string       `yaml:"container_url"`
	Targets      []TargetSpec `yaml:"targets"`
	Folders      []string     `yaml:"folders"`
	Ping         []PingSpec   `yaml:"ping"`
	Invalidate   bool         `yaml:"invalidate"`
	Forced       bool         `yaml:"forced"`
}

func ParseManifest(content []byte) (*Manifest, error) {
	var m Manifest
	if err := yaml.Unmarshal(content, &m); err != nil {
		return nil, err
	}
	return &m, nil
}
