package gmx

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/CTCNano/GromacsWrapper/pkg/runner"
)

// Runner executes an assembled command line. *runner.Direct satisfies it;
// tests substitute fakes.
type Runner interface {
	Run(ctx context.Context, cmd runner.Command) (*runner.Result, error)
}

// Result is the outcome of a successful tool invocation.
type Result struct {
	Stdout   string
	Stderr   string
	ExitCode int
	Duration time.Duration
}

// Command binds a tool descriptor to a runner and a set of default
// options. Per-call overrides are merged over the defaults on every Run,
// so one Command can serve as a reusable preset ("trjconv that always
// centers on the protein").
//
// A Command is safe for sequential reuse; it owns at most one combined
// index file at a time, released by Cleanup or replaced on the next
// multi-index run.
type Command struct {
	desc     ToolDescriptor
	run      Runner
	makeNdx  string
	defaults Options
	dir      string

	mu     sync.Mutex
	merged *MergedIndex
}

// NewCommand binds a descriptor directly, outside any registry.
func NewCommand(desc ToolDescriptor, r Runner, defaults Options) *Command {
	return newCommand(desc, r, "make_ndx", defaults)
}

func newCommand(desc ToolDescriptor, r Runner, makeNdx string, defaults Options) *Command {
	return &Command{
		desc:     desc,
		run:      r,
		makeNdx:  makeNdx,
		defaults: defaults.merged(nil),
	}
}

// Name returns the registry name of the wrapped tool.
func (c *Command) Name() string { return c.desc.Name }

// Executable returns the external binary the command invokes.
func (c *Command) Executable() string { return c.desc.Executable }

// Doc returns the tool's help text.
func (c *Command) Doc() string { return c.desc.Doc }

// With returns a new command whose defaults are this command's defaults
// overlaid with opts. The new command shares the runner but owns its own
// combined-index lifecycle.
func (c *Command) With(opts Options) *Command {
	next := newCommand(c.desc, c.run, c.makeNdx, c.defaults.merged(opts))
	next.dir = c.dir
	return next
}

// InDir returns a copy of the command that executes in dir instead of the
// runner's default working directory.
func (c *Command) InDir(dir string) *Command {
	next := c.With(nil)
	next.dir = dir
	return next
}

// Run invokes the tool with the default options overlaid by overrides.
// For MultiIndex tools an index option listing several files is first
// combined into one temporary index file (see MergeIndexFiles); the
// temporary file stays with the command until Cleanup or the next
// multi-index run.
//
// The returned error wraps ErrToolFailed when the tool exits non-zero;
// infrastructure failures (missing binary) surface as plain errors. In
// both cases the Result carries whatever output was captured.
func (c *Command) Run(ctx context.Context, overrides Options) (*Result, error) {
	opts := c.defaults.merged(overrides)

	if c.desc.MultiIndex {
		if err := c.combineIndex(ctx, opts); err != nil {
			return nil, err
		}
	}

	args, stdin, err := buildArgs(opts)
	if err != nil {
		return nil, err
	}

	res, err := c.run.Run(ctx, runner.Command{
		Binary:           c.desc.Executable,
		Arguments:        args,
		Stdin:            stdin,
		WorkingDirectory: c.dir,
	})
	if err != nil {
		return nil, err
	}

	out := &Result{
		Stdout:   res.Stdout,
		Stderr:   res.Stderr,
		ExitCode: res.ExitCode,
		Duration: res.Duration,
	}

	if res.IsError() {
		return out, fmt.Errorf("%s: %s", c.desc.Executable, res.Error)
	}
	if res.Killed {
		return out, fmt.Errorf("%s: killed: %s", c.desc.Executable, res.KillReason)
	}
	if res.ExitCode != 0 {
		return out, fmt.Errorf("%w: %s exited %d: %s",
			ErrToolFailed, c.desc.Executable, res.ExitCode, firstLine(res.Stderr))
	}
	return out, nil
}

// combineIndex applies the combined-index emulation to the effective
// options: an "n" listing more than one index file is replaced by a single
// temporary file produced by the make-index helper. Anything else passes
// through untouched.
func (c *Command) combineIndex(ctx context.Context, opts Options) error {
	index, ok := indexFileList(opts["n"])
	if !ok || len(index) <= 1 {
		return nil
	}

	structure, _ := opts["s"].(string)

	merged, err := MergeIndexFiles(ctx, c.run, c.makeNdx, structure, index)
	if err != nil {
		return err
	}

	c.mu.Lock()
	previous := c.merged
	c.merged = merged
	c.mu.Unlock()
	if previous != nil {
		previous.Release()
	}

	opts["n"] = merged.Path
	return nil
}

// Cleanup releases the combined index file, if one was ever created.
// It is safe to call at any time, any number of times, and never fails:
// a missing file is ignored and any other removal problem is only logged.
func (c *Command) Cleanup() {
	c.mu.Lock()
	merged := c.merged
	c.merged = nil
	c.mu.Unlock()

	if merged != nil {
		merged.Release()
	}
}

// indexFileList interprets an index option value as a list of filenames.
// Plain strings are not lists: they pass through to the tool untouched.
func indexFileList(v any) ([]string, bool) {
	switch t := v.(type) {
	case []string:
		return t, true
	case []any:
		files := make([]string, 0, len(t))
		for _, item := range t {
			s, ok := item.(string)
			if !ok {
				return nil, false
			}
			files = append(files, s)
		}
		return files, true
	default:
		return nil, false
	}
}

func firstLine(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}
