// Package config holds the configuration for the Gromacs wrapper: which
// external tools get wrapped, how their executables are named, which extra
// scripts are registered, and the execution limits applied when a tool runs.
//
// Malformed tool lists are rejected here, at load time, so the registry and
// command layers can assume clean input.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the top-level configuration.
type Config struct {
	Tools     ToolsConfig     `yaml:"tools"`
	Scripts   []ScriptEntry   `yaml:"scripts"`
	Execution ExecutionConfig `yaml:"execution"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// ScriptEntry describes an arbitrary external script to wrap alongside the
// Gromacs tools. Path is the executable path, Name the registry name, and
// Description a short help text.
type ScriptEntry struct {
	Path        string `yaml:"path"`
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
}

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		Tools:     DefaultToolsConfig(),
		Scripts:   nil,
		Execution: DefaultExecutionConfig(),
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// Load reads configuration from a YAML file, applies environment overrides
// and validates the result. A missing file yields the defaults.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			cfg.applyEnvOverrides()
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.applyEnvOverrides()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Save writes the configuration to a YAML file.
func (c *Config) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	return nil
}

// applyEnvOverrides applies environment variable overrides.
func (c *Config) applyEnvOverrides() {
	if suffix, ok := os.LookupEnv("GMXWRAP_SUFFIX"); ok {
		c.Tools.Suffix = suffix
	}
	if timeout := os.Getenv("GMXWRAP_TIMEOUT"); timeout != "" {
		c.Execution.DefaultTimeout = timeout
	}
	if level := os.Getenv("GMXWRAP_LOG_LEVEL"); level != "" {
		c.Logging.Level = level
	}
}

// Validate checks the configuration for problems that would otherwise
// surface as confusing registry errors later.
func (c *Config) Validate() error {
	seen := make(map[string]bool)
	for _, group := range c.Tools.Groups {
		for _, name := range group {
			if name == "" {
				return fmt.Errorf("empty tool name in tool groups")
			}
			if seen[name] {
				return fmt.Errorf("duplicate tool name %q in tool groups", name)
			}
			seen[name] = true
		}
	}

	scripts := make(map[string]bool)
	for _, s := range c.Scripts {
		if s.Path == "" {
			return fmt.Errorf("script %q has no path", s.Name)
		}
		if s.Name == "" {
			return fmt.Errorf("script %q has no name", s.Path)
		}
		if scripts[s.Name] {
			return fmt.Errorf("duplicate script name %q", s.Name)
		}
		scripts[s.Name] = true
	}

	if _, err := time.ParseDuration(c.Execution.DefaultTimeout); c.Execution.DefaultTimeout != "" && err != nil {
		return fmt.Errorf("invalid default_timeout %q: %w", c.Execution.DefaultTimeout, err)
	}

	return nil
}

// GetExecutionTimeout returns the default execution timeout as a duration.
func (c *Config) GetExecutionTimeout() time.Duration {
	d, err := time.ParseDuration(c.Execution.DefaultTimeout)
	if err != nil {
		return 30 * time.Minute
	}
	return d
}
