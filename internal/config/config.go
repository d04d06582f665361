package config

import (
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// ProjectConfig holds project-level settings loaded from sizelens.yml.
type ProjectConfig struct {
	ReportPath    string `yaml:"reportPath,omitempty"`
	DBPath        string `yaml:"dbPath,omitempty"`
	MCPAddr       string `yaml:"mcpAddr,omitempty"`
	Watch         bool   `yaml:"watch,omitempty"`
	DebounceMS    int    `yaml:"debounceMs,omitempty"`
	ExportDepth   int    `yaml:"exportDepth,omitempty"`
	Verbose       bool   `yaml:"verbose,omitempty"`
	NoInteractive bool   `yaml:"noInteractive,omitempty"`
}

// Load attempts to read sizelens.yml or sizelens.yaml from the given
// directory. Returns a zero-value config (not an error) if no config file
// exists.
func Load(dir string) (*ProjectConfig, error) {
	for _, name := range []string{"sizelens.yml", "sizelens.yaml"} {
		path := filepath.Join(dir, name)
		data, err := os.ReadFile(path)
		if err != nil {
			continue
		}
		var cfg ProjectConfig
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, err
		}
		return &cfg, nil
	}
	return &ProjectConfig{}, nil
}
