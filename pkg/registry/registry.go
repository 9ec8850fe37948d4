// Package registry holds the process-wide, in-memory table of Runs. Access
// is serialized per run: the HTTP collaborator reads concurrently while the
// owning pipeline task writes (spec.md §5). Runs are not persisted across
// process restarts (spec.md §1 Non-goals).
package registry

import (
	"sync"

	"github.com/codeready-toolchain/healer/pkg/runmodel"
)

// Registry is a concurrency-safe, in-memory map of run id to Run.
type Registry struct {
	mu   sync.RWMutex
	runs map[string]*runmodel.Run
}

// New returns an empty Registry.
func New() *Registry {
	return &Registry{runs: make(map[string]*runmodel.Run)}
}

// Create registers a new Run, returning an error if the id is already
// taken.
func (r *Registry) Create(run *runmodel.Run) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.runs[run.ID]; exists {
		return ErrAlreadyExists
	}
	r.runs[run.ID] = run
	return nil
}

// Get returns a copy of the Run for id, or ErrNotFound.
func (r *Registry) Get(id string) (runmodel.Run, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	run, ok := r.runs[id]
	if !ok {
		return runmodel.Run{}, ErrNotFound
	}
	return *run, nil
}

// Update applies fn to the Run for id under the registry's write lock,
// giving the owning pipeline task exclusive access to mutate its own entry.
func (r *Registry) Update(id string, fn func(*runmodel.Run)) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	run, ok := r.runs[id]
	if !ok {
		return ErrNotFound
	}
	fn(run)
	return nil
}

// List returns a snapshot of every known run, in no particular order.
func (r *Registry) List() []runmodel.Run {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]runmodel.Run, 0, len(r.runs))
	for _, run := range r.runs {
		out = append(out, *run)
	}
	return out
}
