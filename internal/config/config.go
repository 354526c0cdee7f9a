package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// ErrNotFound is returned when no config file exists in any known location.
var ErrNotFound = errors.New("could not find config file in known locations")

// Config represents the YAML configuration holding command defaults
type Config struct {
	Version int            `yaml:"version"`
	Sum     SumOptions     `yaml:"sum"`
	Check   CheckOptions   `yaml:"check"`
	Inspect InspectOptions `yaml:"inspect"`
}

// SumOptions are the defaults for the sum command
type SumOptions struct {
	Workers  int  `yaml:"workers"`
	Tag      bool `yaml:"tag"`
	Binary   bool `yaml:"binary"`
	Progress bool `yaml:"progress"`
	Verbose  bool `yaml:"verbose"`
}

// CheckOptions are the defaults for the check command
type CheckOptions struct {
	Workers int  `yaml:"workers"`
	Strict  bool `yaml:"strict"`
	Quiet   bool `yaml:"quiet"`
	Warn    bool `yaml:"warn"`
}

// InspectOptions are the defaults for the inspect command
type InspectOptions struct {
	Rounds        bool   `yaml:"rounds"`
	ScheduleBlock int    `yaml:"schedule_block"`
	OutputFormat  string `yaml:"output_format"`
}

// Default returns the configuration used when no file is found.
func Default() *Config {
	return &Config{
		Version: 1,
		Inspect: InspectOptions{
			ScheduleBlock: -1,
			OutputFormat:  "text",
		},
	}
}

// FindConfigFile searches for a config file in known locations
func FindConfigFile(explicitPath string) (string, error) {
	if explicitPath != "" {
		if _, err := os.Stat(explicitPath); err != nil {
			return "", fmt.Errorf("could not use config file %q: %w", explicitPath, err)
		}
		return explicitPath, nil
	}

	locations := []string{
		"shabrr.yaml", // current directory
	}

	// add user home directory locations
	if home, err := os.UserHomeDir(); err == nil {
		locations = append(locations,
			filepath.Join(home, ".config", "shabrr", "config.yaml"), // ~/.config/shabrr/
			filepath.Join(home, ".shabrr", "config.yaml"),           // ~/.shabrr/
		)
	}

	// find first existing config file
	for _, loc := range locations {
		if _, err := os.Stat(loc); err == nil {
			return loc, nil
		}
	}

	return "", ErrNotFound
}

// Load loads the config from a file, filling unset fields with defaults
func Load(configPath string) (*Config, error) {
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("could not read config: %w", err)
	}

	config := Default()
	config.Version = 0
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("could not parse config: %w", err)
	}

	if config.Version != 1 {
		return nil, fmt.Errorf("unsupported config version: %d", config.Version)
	}

	if err := config.validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// LoadDefault finds and loads the config file. A missing file is not an
// error unless explicitPath names it.
func LoadDefault(explicitPath string) (*Config, error) {
	path, err := FindConfigFile(explicitPath)
	if errors.Is(err, ErrNotFound) {
		return Default(), nil
	}
	if err != nil {
		return nil, err
	}
	return Load(path)
}

func (c *Config) validate() error {
	if c.Sum.Workers < 0 {
		return fmt.Errorf("sum.workers must not be negative, got %d", c.Sum.Workers)
	}
	if c.Check.Workers < 0 {
		return fmt.Errorf("check.workers must not be negative, got %d", c.Check.Workers)
	}
	switch c.Inspect.OutputFormat {
	case "text", "json":
	default:
		return fmt.Errorf("inspect.output_format must be 'text' or 'json', got %q", c.Inspect.OutputFormat)
	}
	return nil
}
