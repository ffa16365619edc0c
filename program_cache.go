package gui

import (
	"sync"

	"github.com/dop251/goja"
)

// ProgramCache stores compiled fragment modules keyed by file path.
// Implementations must be safe for concurrent use; the module renderer
// reads far more often than it writes.
type ProgramCache interface {
	Get(path string) (*goja.Program, bool)
	Set(path string, program *goja.Program)
}

type memoryProgramCache struct {
	mu       sync.RWMutex
	programs map[string]*goja.Program
}

// NewProgramCache constructs the default in-memory program cache: a
// read-mostly map behind a reader/writer lock.
func NewProgramCache() ProgramCache {
	return &memoryProgramCache{
		programs: make(map[string]*goja.Program),
	}
}

func (c *memoryProgramCache) Get(path string) (*goja.Program, bool) {
	c.mu.RLock()
	program, ok := c.programs[path]
	c.mu.RUnlock()
	return program, ok
}

func (c *memoryProgramCache) Set(path string, program *goja.Program) {
	c.mu.Lock()
	c.programs[path] = program
	c.mu.Unlock()
}
