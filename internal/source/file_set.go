package source

import (
	"fmt"
	"path/filepath"
	"sync"

	"fortio.org/safecast"
)

// ModuleSet registers the modules of one compilation and resolves locations to text.
// Thread-safe: module tables are built concurrently.
type ModuleSet struct {
	mu      sync.RWMutex
	modules []Module
	index   map[string]ModuleID // name -> id
}

// NewModuleSet creates an empty set. Index 0 is reserved for NoModuleID.
func NewModuleSet() *ModuleSet {
	return &ModuleSet{
		modules: make([]Module, 1, 8),
		index:   make(map[string]ModuleID),
	}
}

// Add registers a module and returns its id. Adding a name twice returns a fresh id;
// the index always points to the latest one.
func (s *ModuleSet) Add(name, path string, flags ModuleFlags) ModuleID {
	s.mu.Lock()
	defer s.mu.Unlock()
	n, err := safecast.Conv[uint32](len(s.modules))
	if err != nil {
		panic(fmt.Errorf("module set overflow: %w", err))
	}
	id := ModuleID(n)
	if path != "" {
		path = filepath.ToSlash(filepath.Clean(path))
	}
	s.modules = append(s.modules, Module{ID: id, Name: name, Path: path, Flags: flags})
	s.index[name] = id
	return id
}

// Get returns module metadata or nil for an invalid id.
func (s *ModuleSet) Get(id ModuleID) *Module {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if id == NoModuleID || int(id) >= len(s.modules) {
		return nil
	}
	m := s.modules[id]
	return &m
}

// Lookup finds a module by name.
func (s *ModuleSet) Lookup(name string) (ModuleID, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.index[name]
	return id, ok
}

// Name returns the module name, or "<builtin>" for locations outside any module.
func (s *ModuleSet) Name(id ModuleID) string {
	if m := s.Get(id); m != nil {
		return m.Name
	}
	return "<builtin>"
}

// Len reports the number of registered modules.
func (s *ModuleSet) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.modules) - 1
}

// Format renders a location as "module:line" (line omitted when unknown).
func (s *ModuleSet) Format(l Loc) string {
	name := s.Name(l.Module)
	if l.Line == 0 {
		return name
	}
	return fmt.Sprintf("%s:%d", name, l.Line)
}
