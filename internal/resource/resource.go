package resource

import (
	"context"
	"sync"
)

// Snapshot is the observable state of a Resource: the last data, whether a
// load is in flight, and the last error. Version increments on every
// applied load.
type Snapshot[T any] struct {
	Data    T
	Loading bool
	Err     error
	Version uint64
}

// Resource wraps a fetch function with load/refetch state. Each Load takes
// a generation number; a response from a superseded Load is discarded
// instead of being applied to whatever state exists when it resolves.
type Resource[T any] struct {
	mu    sync.Mutex
	fetch func(context.Context) (T, error)
	gen   uint64
	snap  Snapshot[T]
}

// New creates a Resource around fetch. Nothing is loaded until Load.
func New[T any](fetch func(context.Context) (T, error)) *Resource[T] {
	return &Resource[T]{fetch: fetch}
}

// Load fetches the data and applies it unless a newer Load started in the
// meantime. It returns what this call fetched either way.
func (r *Resource[T]) Load(ctx context.Context) (T, error) {
	r.mu.Lock()
	r.gen++
	gen := r.gen
	r.snap.Loading = true
	r.mu.Unlock()

	data, err := r.fetch(ctx)

	r.mu.Lock()
	defer r.mu.Unlock()
	if gen == r.gen {
		r.snap.Loading = false
		r.snap.Err = err
		if err == nil {
			r.snap.Data = data
			r.snap.Version++
		}
	}
	return data, err
}

// Refetch is Load under its conventional name.
func (r *Resource[T]) Refetch(ctx context.Context) (T, error) {
	return r.Load(ctx)
}

// Snapshot returns the current observable state.
func (r *Resource[T]) Snapshot() Snapshot[T] {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.snap
}
