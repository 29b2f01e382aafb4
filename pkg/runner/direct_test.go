package runner

import (
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestDirect_Run(t *testing.T) {
	d := NewDirect()

	result, err := d.Run(context.Background(), Command{
		Binary:    "echo",
		Arguments: []string{"hello"},
	})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if !result.Success {
		t.Errorf("expected success, got failure: %s", result.Error)
	}
	if result.ExitCode != 0 {
		t.Errorf("expected exit code 0, got %d", result.ExitCode)
	}
	if !strings.Contains(result.Output(), "hello") {
		t.Errorf("expected output to contain 'hello', got: %s", result.Output())
	}
}

func TestDirect_Stdin(t *testing.T) {
	d := NewDirect()

	result, err := d.Run(context.Background(), Command{
		Binary: "cat",
		Stdin:  "q\n",
	})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if result.Stdout != "q\n" {
		t.Errorf("expected stdin echoed back, got %q", result.Stdout)
	}
}

func TestDirect_Timeout(t *testing.T) {
	d := NewDirect()

	cmd := Command{
		Binary:    "sleep",
		Arguments: []string{"10"},
		Limits:    &Limits{Timeout: 300 * time.Millisecond},
	}

	start := time.Now()
	result, err := d.Run(context.Background(), cmd)
	elapsed := time.Since(start)

	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if !result.Killed {
		t.Errorf("expected command to be killed")
	}
	if !strings.Contains(result.KillReason, "timeout") {
		t.Errorf("expected kill reason to mention timeout, got: %s", result.KillReason)
	}
	if elapsed > 2*time.Second {
		t.Errorf("timeout didn't work, elapsed: %v", elapsed)
	}
}

func TestDirect_NonZeroExit(t *testing.T) {
	d := NewDirect()

	result, err := d.Run(context.Background(), Command{
		Binary:    "sh",
		Arguments: []string{"-c", "exit 3"},
	})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if !result.Success {
		t.Errorf("expected success=true for non-zero exit, got: %s", result.Error)
	}
	if result.ExitCode != 3 {
		t.Errorf("expected exit code 3, got %d", result.ExitCode)
	}
	if !result.IsNonZeroExit() {
		t.Errorf("expected IsNonZeroExit")
	}
}

func TestDirect_MissingBinary(t *testing.T) {
	d := NewDirect()

	result, err := d.Run(context.Background(), Command{
		Binary: "no_such_gromacs_tool_zz",
	})
	if err != nil {
		t.Fatalf("Run returned error instead of result: %v", err)
	}
	if result.Success {
		t.Errorf("expected failure for missing binary")
	}
	if result.Error == "" {
		t.Errorf("expected error message for missing binary")
	}
	if !result.IsError() {
		t.Errorf("expected IsError")
	}
}

func TestDirect_EmptyBinary(t *testing.T) {
	d := NewDirect()
	if _, err := d.Run(context.Background(), Command{}); err == nil {
		t.Fatal("expected validation error for empty binary")
	}
}

func TestDirect_WorkingDirectory(t *testing.T) {
	d := NewDirect()
	dir := t.TempDir()

	result, err := d.Run(context.Background(), Command{
		Binary:           "pwd",
		WorkingDirectory: dir,
	})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	got, err := filepath.EvalSymlinks(strings.TrimSpace(result.Stdout))
	if err != nil {
		t.Fatalf("EvalSymlinks: %v", err)
	}
	want, err := filepath.EvalSymlinks(dir)
	if err != nil {
		t.Fatalf("EvalSymlinks: %v", err)
	}
	if got != want {
		t.Errorf("expected working dir %q, got %q", want, got)
	}
}

func TestDirect_OutputTruncation(t *testing.T) {
	d := NewDirectWithConfig(Config{
		DefaultWorkingDir:  ".",
		DefaultTimeout:     10 * time.Second,
		MaxOutputBytes:     64,
		AllowedEnvironment: []string{"PATH"},
	})

	result, err := d.Run(context.Background(), Command{
		Binary:    "sh",
		Arguments: []string{"-c", "yes | head -c 4096"},
	})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if !result.Truncated {
		t.Errorf("expected output to be truncated")
	}
	if len(result.Stdout) != 64 {
		t.Errorf("expected 64 captured bytes, got %d", len(result.Stdout))
	}
	if result.TruncatedBytes == 0 {
		t.Errorf("expected discarded byte count")
	}
}

func TestDirect_EnvironmentAllowList(t *testing.T) {
	t.Setenv("GMXLIB", "/opt/gromacs/share/top")
	t.Setenv("GMXWRAP_SECRET", "do-not-leak")

	d := NewDirect()

	result, err := d.Run(context.Background(), Command{
		Binary:    "env",
		Arguments: nil,
	})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if !strings.Contains(result.Stdout, "GMXLIB=/opt/gromacs/share/top") {
		t.Errorf("expected GMXLIB to pass through, got:\n%s", result.Stdout)
	}
	if strings.Contains(result.Stdout, "GMXWRAP_SECRET") {
		t.Errorf("unlisted variable leaked into child environment")
	}
}

func TestDirect_AuditEvents(t *testing.T) {
	d := NewDirect()

	var events []AuditEvent
	d.SetAuditCallback(func(e AuditEvent) { events = append(events, e) })

	_, err := d.Run(context.Background(), Command{Binary: "true"})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if len(events) != 2 {
		t.Fatalf("expected start+complete events, got %d", len(events))
	}
	if events[0].Type != AuditEventStart || events[1].Type != AuditEventComplete {
		t.Errorf("unexpected event sequence: %v, %v", events[0].Type, events[1].Type)
	}
	if events[0].RequestID == "" || events[0].RequestID != events[1].RequestID {
		t.Errorf("expected matching request IDs, got %q and %q",
			events[0].RequestID, events[1].RequestID)
	}
}

func TestConfig_Merge(t *testing.T) {
	cfg := Config{
		DefaultWorkingDir: "/work",
		DefaultTimeout:    time.Minute,
		MaxTimeout:        2 * time.Minute,
		MaxOutputBytes:    100,
	}

	t.Run("fills defaults", func(t *testing.T) {
		merged := cfg.merge(Command{Binary: "mdrun"})
		if merged.WorkingDirectory != "/work" {
			t.Errorf("working dir not defaulted: %q", merged.WorkingDirectory)
		}
		if merged.Limits.Timeout != time.Minute {
			t.Errorf("timeout not defaulted: %v", merged.Limits.Timeout)
		}
		if merged.Limits.MaxOutputBytes != 100 {
			t.Errorf("output cap not defaulted: %d", merged.Limits.MaxOutputBytes)
		}
	})

	t.Run("command settings win", func(t *testing.T) {
		merged := cfg.merge(Command{
			Binary:           "mdrun",
			WorkingDirectory: "/elsewhere",
			Limits:           &Limits{Timeout: 30 * time.Second},
		})
		if merged.WorkingDirectory != "/elsewhere" {
			t.Errorf("working dir overridden: %q", merged.WorkingDirectory)
		}
		if merged.Limits.Timeout != 30*time.Second {
			t.Errorf("timeout overridden: %v", merged.Limits.Timeout)
		}
	})

	t.Run("timeout capped at max", func(t *testing.T) {
		merged := cfg.merge(Command{
			Binary: "mdrun",
			Limits: &Limits{Timeout: time.Hour},
		})
		if merged.Limits.Timeout != 2*time.Minute {
			t.Errorf("timeout not capped: %v", merged.Limits.Timeout)
		}
	})

	t.Run("does not mutate caller limits", func(t *testing.T) {
		limits := &Limits{}
		cfg.merge(Command{Binary: "mdrun", Limits: limits})
		if limits.Timeout != 0 {
			t.Errorf("caller limits mutated: %v", limits.Timeout)
		}
	})
}
