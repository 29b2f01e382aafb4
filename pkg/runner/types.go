// Package runner is the lowest-level execution layer of the wrapper: it
// takes a fully assembled command line, runs the external binary, and
// returns a structured result. All argument marshaling and Gromacs
// semantics live above it in pkg/gmx.
//
// Execution is synchronous and blocking; cancellation and deadlines come
// from the caller's context or the configured timeout. The runner imposes
// no retry policy.
package runner

import (
	"time"
)

// Command is the input specification for an execution.
type Command struct {
	// Binary is the executable to run (e.g. "mdrun_mpi", "make_ndx").
	Binary string `json:"binary"`

	// Arguments are the command-line arguments.
	Arguments []string `json:"arguments"`

	// WorkingDirectory is the directory to execute in.
	// If empty, the runner's default working directory is used.
	WorkingDirectory string `json:"working_directory,omitempty"`

	// Environment variables to set (KEY=VALUE format), merged with the
	// runner's allowed environment.
	Environment []string `json:"environment,omitempty"`

	// Stdin provides input to the command's standard input. Gromacs
	// tools read interactive group selections from stdin.
	Stdin string `json:"stdin,omitempty"`

	// Limits specifies per-invocation resource constraints.
	Limits *Limits `json:"limits,omitempty"`

	// RequestID uniquely identifies this execution for the audit trail.
	// Filled in by the runner when empty.
	RequestID string `json:"request_id,omitempty"`
}

// CommandString returns the full command line for display and logging.
func (c Command) CommandString() string {
	s := c.Binary
	for _, arg := range c.Arguments {
		s += " " + arg
	}
	return s
}

// Limits defines constraints on a single execution.
type Limits struct {
	// Timeout is the maximum wall time. Zero means the runner default.
	Timeout time.Duration `json:"timeout,omitempty"`

	// MaxOutputBytes limits captured stdout and stderr per stream.
	// Zero means the runner default.
	MaxOutputBytes int64 `json:"max_output_bytes,omitempty"`
}

// Result is the structured outcome of an execution.
type Result struct {
	// Success indicates the execution infrastructure worked. A command
	// that ran and exited non-zero still has Success=true; its status is
	// in ExitCode.
	Success bool `json:"success"`

	// ExitCode is the command's exit code (-1 if unavailable).
	ExitCode int `json:"exit_code"`

	// Stdout is the captured standard output.
	Stdout string `json:"stdout"`

	// Stderr is the captured standard error.
	Stderr string `json:"stderr"`

	// Duration is how long the command ran.
	Duration time.Duration `json:"duration"`

	// StartedAt and FinishedAt bracket the execution.
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`

	// Killed indicates the command was forcibly terminated.
	Killed bool `json:"killed"`

	// KillReason explains why the command was killed.
	KillReason string `json:"kill_reason,omitempty"`

	// Truncated indicates output was cut at the size limit.
	Truncated bool `json:"truncated"`

	// TruncatedBytes counts the discarded output bytes.
	TruncatedBytes int64 `json:"truncated_bytes,omitempty"`

	// Error holds the infrastructure-level error message, if any.
	Error string `json:"error,omitempty"`
}

// IsError reports an infrastructure failure (binary missing, fork failed).
func (r *Result) IsError() bool {
	return !r.Success || r.Error != ""
}

// IsNonZeroExit reports that the command ran but returned non-zero.
func (r *Result) IsNonZeroExit() bool {
	return r.Success && r.ExitCode != 0
}

// Output returns stdout and stderr joined for display.
func (r *Result) Output() string {
	if r.Stderr == "" {
		return r.Stdout
	}
	if r.Stdout == "" {
		return r.Stderr
	}
	return r.Stdout + "\n" + r.Stderr
}

// AuditEventType categorizes audit events.
type AuditEventType string

const (
	AuditEventStart    AuditEventType = "start"
	AuditEventComplete AuditEventType = "complete"
	AuditEventKilled   AuditEventType = "killed"
	AuditEventError    AuditEventType = "error"
)

// AuditEvent records one execution lifecycle event.
type AuditEvent struct {
	Type      AuditEventType `json:"type"`
	Timestamp time.Time      `json:"timestamp"`
	Command   Command        `json:"command"`
	Result    *Result        `json:"result,omitempty"`
	RequestID string         `json:"request_id"`
}

// Config configures a runner.
type Config struct {
	// DefaultWorkingDir is used when Command.WorkingDirectory is empty.
	DefaultWorkingDir string

	// DefaultTimeout applies when the command carries no timeout.
	DefaultTimeout time.Duration

	// MaxTimeout caps all timeout values (0 = uncapped).
	MaxTimeout time.Duration

	// AllowedEnvironment lists environment variables passed through from
	// the parent process.
	AllowedEnvironment []string

	// MaxOutputBytes caps output capture per stream.
	MaxOutputBytes int64

	// AuditCallback receives each execution event (optional).
	AuditCallback func(AuditEvent)
}

// DefaultConfig returns runner defaults suitable for Gromacs tools.
func DefaultConfig() Config {
	return Config{
		DefaultWorkingDir: ".",
		DefaultTimeout:    30 * time.Minute,
		MaxOutputBytes:    10 * 1024 * 1024,
		AllowedEnvironment: []string{
			"PATH", "HOME", "USER", "LANG", "LC_ALL", "TMPDIR",
			"GMXLIB", "GMXDATA", "GMXBIN", "LD_LIBRARY_PATH",
		},
	}
}

// merge fills command defaults from the config. Command settings win.
func (c Config) merge(cmd Command) Command {
	out := cmd

	if out.WorkingDirectory == "" {
		out.WorkingDirectory = c.DefaultWorkingDir
	}

	if out.Limits == nil {
		out.Limits = &Limits{}
	} else {
		limits := *out.Limits
		out.Limits = &limits
	}
	if out.Limits.Timeout == 0 {
		out.Limits.Timeout = c.DefaultTimeout
	}
	if out.Limits.MaxOutputBytes == 0 {
		out.Limits.MaxOutputBytes = c.MaxOutputBytes
	}

	if c.MaxTimeout > 0 && out.Limits.Timeout > c.MaxTimeout {
		out.Limits.Timeout = c.MaxTimeout
	}

	return out
}
