// Package config loads optional run defaults from a .cargo-hack.yaml file
// next to the workspace root manifest. Flags set on the command line win
// over file values.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/ryoqun/cargo-hack/internal/ui"
)

// FileName is the defaults file looked up in the workspace root.
const FileName = ".cargo-hack.yaml"

// Config holds defaults applied when the corresponding flag is unset.
type Config struct {
	Color                 string   `yaml:"color,omitempty"`
	Exclude               []string `yaml:"exclude,omitempty"`
	Features              []string `yaml:"features,omitempty"`
	IgnorePrivate         bool     `yaml:"ignore-private,omitempty"`
	IgnoreUnknownFeatures bool     `yaml:"ignore-unknown-features,omitempty"`
}

// Load reads the defaults file in dir. A missing file yields a zero Config.
func Load(dir string) (*Config, error) {
	path := filepath.Join(dir, FileName)
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return &Config{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}
	return Parse(path, data)
}

// Parse parses and validates defaults-file content.
func Parse(path string, data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}
	if cfg.Color != "" {
		if _, err := ui.ParseColor(cfg.Color); err != nil {
			return nil, fmt.Errorf("config %s: %w", path, err)
		}
	}
	return &cfg, nil
}
