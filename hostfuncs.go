package gui

import (
	"fmt"
	"sort"
	"strings"
	"sync"
)

// HostFunc is a Go function exposed to sandboxed fragment modules.
type HostFunc func(args ...any) (any, error)

// HostFuncRegistry is the narrow host surface a fragment module can call.
// Functions are injected as globals into each fresh execution instance;
// the registry itself never leaks mutable state into the sandbox.
type HostFuncRegistry struct {
	mu        sync.RWMutex
	functions map[string]HostFunc
}

// NewHostFuncRegistry constructs an empty registry.
func NewHostFuncRegistry() *HostFuncRegistry {
	return &HostFuncRegistry{
		functions: make(map[string]HostFunc),
	}
}

// Register stores fn under name, guarding against duplicates.
func (r *HostFuncRegistry) Register(name string, fn HostFunc) error {
	if fn == nil {
		return fmt.Errorf("gui: host function %q is nil", name)
	}
	if name == "" {
		return fmt.Errorf("gui: host function name must not be empty")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	key := strings.ToLower(name)
	if _, exists := r.functions[key]; exists {
		return fmt.Errorf("gui: host function %q already registered", name)
	}
	r.functions[key] = fn
	return nil
}

// Clone returns a shallow copy so a live renderer's surface cannot be
// mutated through the original registry.
func (r *HostFuncRegistry) Clone() *HostFuncRegistry {
	if r == nil {
		return nil
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	clone := &HostFuncRegistry{
		functions: make(map[string]HostFunc, len(r.functions)),
	}
	for name, fn := range r.functions {
		clone.functions[name] = fn
	}
	return clone
}

// Call executes the function registered for name.
func (r *HostFuncRegistry) Call(name string, args ...any) (any, error) {
	if r == nil {
		return nil, fmt.Errorf("gui: host function registry is nil")
	}
	r.mu.RLock()
	fn := r.functions[strings.ToLower(name)]
	r.mu.RUnlock()
	if fn == nil {
		return nil, fmt.Errorf("gui: host function %q not registered", name)
	}
	return fn(args...)
}

// Names returns registered function names sorted alphabetically.
func (r *HostFuncRegistry) Names() []string {
	if r == nil {
		return nil
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.functions))
	for name := range r.functions {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
