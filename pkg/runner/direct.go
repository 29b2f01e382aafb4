package runner

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/CTCNano/GromacsWrapper/internal/logging"
)

// Direct executes commands on the host via os/exec with no sandboxing.
type Direct struct {
	mu     sync.RWMutex
	config Config
}

// NewDirect creates a runner with default config.
func NewDirect() *Direct {
	return NewDirectWithConfig(DefaultConfig())
}

// NewDirectWithConfig creates a runner with custom config.
func NewDirectWithConfig(config Config) *Direct {
	return &Direct{config: config}
}

// SetAuditCallback sets the callback for execution events.
func (d *Direct) SetAuditCallback(callback func(AuditEvent)) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.config.AuditCallback = callback
}

func (d *Direct) emitAudit(event AuditEvent) {
	d.mu.RLock()
	callback := d.config.AuditCallback
	d.mu.RUnlock()

	if callback != nil {
		callback(event)
	}
}

// Validate checks whether the command can be executed at all.
func (d *Direct) Validate(cmd Command) error {
	if cmd.Binary == "" {
		return fmt.Errorf("binary is required")
	}
	return nil
}

// Run executes a command and returns its structured result. An error is
// returned only for invalid input; execution failures are reported through
// the result so callers can inspect exit codes and captured output.
func (d *Direct) Run(ctx context.Context, cmd Command) (*Result, error) {
	if err := d.Validate(cmd); err != nil {
		return nil, err
	}

	d.mu.RLock()
	cmd = d.config.merge(cmd)
	d.mu.RUnlock()

	if cmd.RequestID == "" {
		cmd.RequestID = uuid.NewString()
	}

	log := logging.L().With(
		zap.String("binary", cmd.Binary),
		zap.String("request_id", cmd.RequestID))
	log.Debug("Executing command",
		zap.Strings("args", cmd.Arguments),
		zap.String("dir", cmd.WorkingDirectory),
		zap.Duration("timeout", cmd.Limits.Timeout))

	result := &Result{ExitCode: -1}

	d.emitAudit(AuditEvent{
		Type:      AuditEventStart,
		Timestamp: time.Now(),
		Command:   cmd,
		RequestID: cmd.RequestID,
	})

	execCtx, cancel := context.WithTimeout(ctx, cmd.Limits.Timeout)
	defer cancel()

	execCmd := exec.CommandContext(execCtx, cmd.Binary, cmd.Arguments...)
	execCmd.Dir = cmd.WorkingDirectory
	execCmd.Env = d.buildEnvironment(cmd.Environment)

	if cmd.Stdin != "" {
		execCmd.Stdin = strings.NewReader(cmd.Stdin)
	}

	var stdoutBuf, stderrBuf bytes.Buffer
	stdoutLimited := &limitedWriter{w: &stdoutBuf, max: cmd.Limits.MaxOutputBytes}
	stderrLimited := &limitedWriter{w: &stderrBuf, max: cmd.Limits.MaxOutputBytes}
	execCmd.Stdout = stdoutLimited
	execCmd.Stderr = stderrLimited

	result.StartedAt = time.Now()
	err := execCmd.Run()
	result.FinishedAt = time.Now()
	result.Duration = result.FinishedAt.Sub(result.StartedAt)

	result.Stdout = stdoutBuf.String()
	result.Stderr = stderrBuf.String()

	if stdoutLimited.truncated || stderrLimited.truncated {
		result.Truncated = true
		result.TruncatedBytes = stdoutLimited.discarded + stderrLimited.discarded
		log.Warn("Command output truncated",
			zap.Int64("discarded_bytes", result.TruncatedBytes))
	}

	switch {
	case err == nil:
		result.Success = true
		result.ExitCode = 0

	case execCtx.Err() == context.DeadlineExceeded:
		result.Killed = true
		result.KillReason = fmt.Sprintf("timeout after %s", cmd.Limits.Timeout)
		result.Success = true // infrastructure worked, command was killed
		log.Warn("Command killed on timeout", zap.Duration("timeout", cmd.Limits.Timeout))
		d.emitAudit(AuditEvent{
			Type:      AuditEventKilled,
			Timestamp: time.Now(),
			Command:   cmd,
			Result:    result,
			RequestID: cmd.RequestID,
		})
		return result, nil

	case execCtx.Err() == context.Canceled:
		result.Killed = true
		result.KillReason = "context canceled"
		result.Success = true
		d.emitAudit(AuditEvent{
			Type:      AuditEventKilled,
			Timestamp: time.Now(),
			Command:   cmd,
			Result:    result,
			RequestID: cmd.RequestID,
		})
		return result, nil

	default:
		if exitErr, ok := err.(*exec.ExitError); ok {
			result.Success = true // command ran, just returned non-zero
			result.ExitCode = exitErr.ExitCode()
			log.Debug("Command exited non-zero", zap.Int("exit_code", result.ExitCode))
		} else {
			result.Success = false
			result.Error = err.Error()
			log.Error("Command failed to run", zap.Error(err))
			d.emitAudit(AuditEvent{
				Type:      AuditEventError,
				Timestamp: time.Now(),
				Command:   cmd,
				Result:    result,
				RequestID: cmd.RequestID,
			})
			return result, nil
		}
	}

	d.emitAudit(AuditEvent{
		Type:      AuditEventComplete,
		Timestamp: time.Now(),
		Command:   cmd,
		Result:    result,
		RequestID: cmd.RequestID,
	})

	log.Debug("Command completed",
		zap.Int("exit_code", result.ExitCode),
		zap.Duration("duration", result.Duration),
		zap.Int("stdout_bytes", len(result.Stdout)))

	return result, nil
}

// buildEnvironment assembles the child environment from the allow-list
// plus command-specific variables.
func (d *Direct) buildEnvironment(cmdEnv []string) []string {
	d.mu.RLock()
	allowed := d.config.AllowedEnvironment
	d.mu.RUnlock()

	env := make([]string, 0, len(allowed)+len(cmdEnv))
	for _, key := range allowed {
		if val := os.Getenv(key); val != "" {
			env = append(env, fmt.Sprintf("%s=%s", key, val))
		}
	}
	return append(env, cmdEnv...)
}

// limitedWriter is an io.Writer that caps total bytes written.
type limitedWriter struct {
	w         io.Writer
	max       int64
	written   int64
	truncated bool
	discarded int64
}

func (lw *limitedWriter) Write(p []byte) (int, error) {
	n := len(p)

	if lw.written >= lw.max {
		lw.truncated = true
		lw.discarded += int64(n)
		return n, nil // pretend we wrote it
	}

	remaining := lw.max - lw.written
	if int64(n) > remaining {
		lw.truncated = true
		lw.discarded += int64(n) - remaining
		written, err := lw.w.Write(p[:remaining])
		lw.written += int64(written)
		return n, err // report full length to avoid short-write errors
	}

	written, err := lw.w.Write(p)
	lw.written += int64(written)
	return written, err
}
