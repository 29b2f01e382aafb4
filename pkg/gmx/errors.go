package gmx

import "errors"

// Registry and command errors.
var (
	// ErrToolNotFound is returned when a tool is not registered.
	ErrToolNotFound = errors.New("tool not found")

	// ErrToolNameEmpty is returned when a descriptor has no name.
	ErrToolNameEmpty = errors.New("tool name cannot be empty")

	// ErrToolExecutableEmpty is returned when a descriptor has no executable.
	ErrToolExecutableEmpty = errors.New("tool executable cannot be empty")

	// ErrToolAlreadyRegistered is returned when registering a duplicate.
	ErrToolAlreadyRegistered = errors.New("tool already registered")

	// ErrToolFailed is returned when a tool runs but exits non-zero.
	ErrToolFailed = errors.New("tool failed")

	// ErrBadOption is returned when an option value cannot be marshaled
	// onto the command line.
	ErrBadOption = errors.New("bad option value")
)
