package config

// ExecutionConfig configures how external tools are executed.
type ExecutionConfig struct {
	// DefaultTimeout for a single tool invocation (Go duration string).
	// Simulations can legitimately run for a long time.
	DefaultTimeout string `yaml:"default_timeout"`

	// WorkingDirectory for tool invocations ("." if empty).
	WorkingDirectory string `yaml:"working_directory"`

	// AllowedEnvVars are passed through from the parent environment.
	AllowedEnvVars []string `yaml:"allowed_env_vars"`

	// MaxOutputBytes caps captured stdout/stderr per stream.
	MaxOutputBytes int64 `yaml:"max_output_bytes"`
}

// DefaultExecutionConfig returns sensible execution defaults.
func DefaultExecutionConfig() ExecutionConfig {
	return ExecutionConfig{
		DefaultTimeout:   "30m",
		WorkingDirectory: ".",
		AllowedEnvVars: []string{
			"PATH", "HOME", "USER", "LANG", "LC_ALL", "TMPDIR",
			"GMXLIB", "GMXDATA", "GMXBIN", "LD_LIBRARY_PATH",
		},
		MaxOutputBytes: 10 * 1024 * 1024,
	}
}
