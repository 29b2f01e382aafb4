package gmx

import (
	"fmt"
	"sort"
	"sync"

	"go.uber.org/zap"

	"github.com/CTCNano/GromacsWrapper/internal/logging"
)

// Registry holds the descriptors of all wrapped tools and binds them to
// commands. It is thread-safe and supports registration at runtime.
type Registry struct {
	mu      sync.RWMutex
	tools   map[string]ToolDescriptor
	runner  Runner
	makeNdx string
}

// NewRegistry creates an empty registry whose commands execute through r.
func NewRegistry(r Runner) *Registry {
	return &Registry{
		tools:   make(map[string]ToolDescriptor),
		runner:  r,
		makeNdx: "make_ndx",
	}
}

// SetMakeIndexTool sets the executable used for combining index files.
func (r *Registry) SetMakeIndexTool(executable string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.makeNdx = executable
}

// Register adds a descriptor to the registry.
// Returns an error if a tool with the same name already exists.
func (r *Registry) Register(desc ToolDescriptor) error {
	if err := desc.Validate(); err != nil {
		return fmt.Errorf("invalid tool: %w", err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.tools[desc.Name]; exists {
		return fmt.Errorf("%w: %s", ErrToolAlreadyRegistered, desc.Name)
	}
	r.tools[desc.Name] = desc

	logging.L().Debug("Registered tool",
		zap.String("name", desc.Name),
		zap.String("executable", desc.Executable),
		zap.Bool("multi_index", desc.MultiIndex))
	return nil
}

// MustRegister registers a descriptor and panics on error.
// Use this for static registration at startup.
func (r *Registry) MustRegister(desc ToolDescriptor) {
	if err := r.Register(desc); err != nil {
		panic(fmt.Sprintf("failed to register tool %s: %v", desc.Name, err))
	}
}

// Replace swaps an existing descriptor for a new one under the same name.
// Returns ErrToolNotFound if nothing is registered under desc.Name.
func (r *Registry) Replace(desc ToolDescriptor) error {
	if err := desc.Validate(); err != nil {
		return fmt.Errorf("invalid tool: %w", err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.tools[desc.Name]; !exists {
		return fmt.Errorf("%w: %s", ErrToolNotFound, desc.Name)
	}
	r.tools[desc.Name] = desc
	return nil
}

// Get returns the descriptor for name.
func (r *Registry) Get(name string) (ToolDescriptor, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	desc, ok := r.tools[name]
	return desc, ok
}

// Has reports whether a tool with the given name is registered.
func (r *Registry) Has(name string) bool {
	_, ok := r.Get(name)
	return ok
}

// Names returns all registered tool names, sorted. This is the explicit
// export list of the toolset.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.tools))
	for name := range r.tools {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// All returns all registered descriptors, sorted by name.
func (r *Registry) All() []ToolDescriptor {
	r.mu.RLock()
	defer r.mu.RUnlock()

	descs := make([]ToolDescriptor, 0, len(r.tools))
	for _, desc := range r.tools {
		descs = append(descs, desc)
	}
	sort.Slice(descs, func(i, j int) bool { return descs[i].Name < descs[j].Name })
	return descs
}

// Count returns the number of registered tools.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.tools)
}

// New returns a command bound to the named tool, preconfigured with the
// given default options (nil for none).
// Returns ErrToolNotFound if the tool doesn't exist.
func (r *Registry) New(name string, defaults Options) (*Command, error) {
	r.mu.RLock()
	desc, ok := r.tools[name]
	makeNdx := r.makeNdx
	run := r.runner
	r.mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrToolNotFound, name)
	}
	return newCommand(desc, run, makeNdx, defaults), nil
}
