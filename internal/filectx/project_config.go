package filectx

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// ProjectConfigName is the per-project settings file, relative to the root.
const ProjectConfigName = ".coda.yaml"

// ProjectConfig is the checked-in, per-project configuration.
type ProjectConfig struct {
	ReadOnly []string `yaml:"read_only"`
	Editable []string `yaml:"editable"`
	Lint     struct {
		Enable   bool     `yaml:"enable"`
		Commands []string `yaml:"commands"`
	} `yaml:"lint"`
}

// LoadProjectConfig reads .coda.yaml from the project root. A missing file
// is not an error; it yields the zero config.
func LoadProjectConfig(root string) (*ProjectConfig, error) {
	data, err := os.ReadFile(filepath.Join(root, ProjectConfigName))
	if err != nil {
		if os.IsNotExist(err) {
			return &ProjectConfig{}, nil
		}
		return nil, fmt.Errorf("read %s: %w", ProjectConfigName, err)
	}

	var cfg ProjectConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", ProjectConfigName, err)
	}
	return &cfg, nil
}

// ApplyProjectConfig registers the config's file lists on the provider.
func ApplyProjectConfig(p *Provider, cfg *ProjectConfig) error {
	for _, path := range cfg.ReadOnly {
		if err := p.AddReadOnly(path); err != nil {
			return err
		}
	}
	for _, path := range cfg.Editable {
		if err := p.AddEditable(path); err != nil {
			return err
		}
	}
	return nil
}
