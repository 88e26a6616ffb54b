package registry

import (
	"fmt"
	"sync"
)

// MemRegistry is an in-process Registry, useful in tests and for running
// the hierarchical store without standing up a real Zookeeper ensemble.
type MemRegistry struct {
	mu    sync.Mutex
	paths map[string]struct{}
}

// NewMem creates an empty MemRegistry.
func NewMem() *MemRegistry {
	return &MemRegistry{paths: make(map[string]struct{})}
}

func (r *MemRegistry) Exists(path string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.paths[path]
	return ok
}

func (r *MemRegistry) Create(path string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.paths[path]; ok {
		return fmt.Errorf("registry: path %q already exists", path)
	}
	r.paths[path] = struct{}{}
	return nil
}
