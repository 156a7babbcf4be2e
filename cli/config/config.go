// Package config provides the per-project configuration file of the preppy CLI.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// Version is the config file format version
const Version = "1"

// FileName is the config file looked up in the project root
const FileName = ".preppy.yaml"

// Viper keys shared with the command flags
const (
	KeySourcemap    = "sourcemap"
	KeyOutputFolder = "output_folder"
	KeySizes        = "sizes"
	KeyVerbose      = "verbose"
	KeyQuiet        = "quiet"
)

// Config represents the project configuration file
type Config struct {
	// Version of the config file format
	Version string `yaml:"version"`

	// Defaults for build runs; command line flags and environment win
	Defaults Defaults `yaml:"defaults,omitempty"`
}

// Defaults contains default settings for builds
type Defaults struct {
	// Sourcemap emits linked source maps next to every artifact
	Sourcemap bool `yaml:"sourcemap,omitempty"`

	// OutputFolder synthesizes conventional output names below this folder
	OutputFolder string `yaml:"output_folder,omitempty"`

	// Sizes prints the size line of every artifact; nil means true
	Sizes *bool `yaml:"sizes,omitempty"`
}

// DefaultPath returns the config file path for the project at root
func DefaultPath(root string) string {
	return filepath.Join(root, FileName)
}

// New creates a configuration holding the built-in defaults
func New() *Config {
	sizes := true
	return &Config{
		Version:  Version,
		Defaults: Defaults{Sizes: &sizes},
	}
}

// Load reads configuration from path
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path) //nolint:gosec // path is chosen by the user
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("config file not found at %s - run 'preppy config init' to create one: %w", path, os.ErrNotExist)
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := New()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}
	if cfg.Version != "" && cfg.Version != Version {
		return nil, fmt.Errorf("unsupported config file version %q (expected %q)", cfg.Version, Version)
	}

	return cfg, nil
}

// LoadOrDefault reads configuration or returns the built-in defaults when
// the file does not exist
func LoadOrDefault(path string) (*Config, error) {
	cfg, err := Load(path)
	if errors.Is(err, os.ErrNotExist) {
		return New(), nil
	}
	return cfg, err
}

// Save writes the configuration to path
func (c *Config) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0750); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// SizesEnabled reports whether size lines are printed
func (c *Config) SizesEnabled() bool {
	return c.Defaults.Sizes == nil || *c.Defaults.Sizes
}

// ApplyDefaults registers the file values as viper defaults, so bound flags
// and environment variables override them
func (c *Config) ApplyDefaults(v *viper.Viper) {
	v.SetDefault(KeySourcemap, c.Defaults.Sourcemap)
	v.SetDefault(KeyOutputFolder, c.Defaults.OutputFolder)
	v.SetDefault(KeySizes, c.SizesEnabled())
}

// Set updates the value named by key ("defaults.sourcemap" and so on)
func (c *Config) Set(key, value string) error {
	switch strings.ToLower(key) {
	case "defaults." + KeySourcemap:
		c.Defaults.Sourcemap = parseBool(value)
	case "defaults." + KeyOutputFolder:
		c.Defaults.OutputFolder = value
	case "defaults." + KeySizes:
		enabled := parseBool(value)
		c.Defaults.Sizes = &enabled
	default:
		return fmt.Errorf("unknown configuration key: %s", key)
	}
	return nil
}

// Get returns the value named by key
func (c *Config) Get(key string) (string, error) {
	switch strings.ToLower(key) {
	case "version":
		return c.Version, nil
	case "defaults." + KeySourcemap:
		return fmt.Sprint(c.Defaults.Sourcemap), nil
	case "defaults." + KeyOutputFolder:
		return c.Defaults.OutputFolder, nil
	case "defaults." + KeySizes:
		return fmt.Sprint(c.SizesEnabled()), nil
	default:
		return "", fmt.Errorf("unknown configuration key: %s", key)
	}
}

func parseBool(value string) bool {
	return value == "true" || value == "1"
}
