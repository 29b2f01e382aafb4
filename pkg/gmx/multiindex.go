package gmx

import (
	"context"
	"fmt"
	"os"
	"sync"

	"go.uber.org/zap"

	"github.com/CTCNano/GromacsWrapper/internal/logging"
	"github.com/CTCNano/GromacsWrapper/pkg/runner"
)

// MergedIndex is the handle for a temporary combined index file. The
// creator owns the file exclusively; Close (or Release) removes it.
type MergedIndex struct {
	// Path of the temporary index file (multi_*.ndx).
	Path string

	// Sources are the original index files that were combined.
	Sources []string

	mu     sync.Mutex
	closed bool
}

// Close removes the temporary file. It is idempotent and a file that is
// already gone is not an error.
func (m *MergedIndex) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return nil
	}
	m.closed = true

	if err := os.Remove(m.Path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove combined index %s: %w", m.Path, err)
	}
	return nil
}

// Release is the never-failing form of Close used during command cleanup:
// unexpected removal problems are logged at warn level rather than
// surfaced, so teardown cannot blow up on a stale temp file.
func (m *MergedIndex) Release() {
	if err := m.Close(); err != nil {
		logging.L().Warn("Combined index cleanup failed", zap.Error(err))
	}
}

// MergeIndexFiles combines several index files into one temporary file by
// driving the make-index helper tool (makeNdx), so tools that only accept
// a single -n argument can be used as if they supported multi-file input.
//
// The structure file is optional; when given, the helper derives the
// Gromacs default groups from it and adds them to the combined file. The
// helper is quit immediately ("q") so it does nothing but concatenate.
//
// The temporary file is created collision-free under the default temp
// directory as multi_*.ndx. On any failure the file is removed before the
// error is returned; on success the caller owns the returned handle and
// must Close it.
func MergeIndexFiles(ctx context.Context, r Runner, makeNdx, structure string, index []string) (*MergedIndex, error) {
	f, err := os.CreateTemp("", "multi_*.ndx")
	if err != nil {
		return nil, fmt.Errorf("failed to allocate combined index file: %w", err)
	}
	path := f.Name()
	if err := f.Close(); err != nil {
		_ = os.Remove(path)
		return nil, fmt.Errorf("failed to allocate combined index file: %w", err)
	}

	opts := Options{
		"n":      append([]string(nil), index...),
		"o":      path,
		InputKey: "q",
	}
	if structure != "" {
		opts["f"] = structure
	}
	args, stdin, err := buildArgs(opts)
	if err != nil {
		_ = os.Remove(path)
		return nil, err
	}

	logging.L().Debug("Combining index files",
		zap.Strings("sources", index),
		zap.String("structure", structure),
		zap.String("output", path))

	res, err := r.Run(ctx, runner.Command{
		Binary:    makeNdx,
		Arguments: args,
		Stdin:     stdin,
	})
	if err != nil {
		_ = os.Remove(path)
		return nil, err
	}
	if res.IsError() {
		_ = os.Remove(path)
		return nil, fmt.Errorf("%s: %s", makeNdx, res.Error)
	}
	if res.ExitCode != 0 {
		_ = os.Remove(path)
		return nil, fmt.Errorf("%w: %s exited %d: %s",
			ErrToolFailed, makeNdx, res.ExitCode, firstLine(res.Stderr))
	}

	return &MergedIndex{Path: path, Sources: append([]string(nil), index...)}, nil
}
