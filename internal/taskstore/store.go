package taskstore

import (
	"context"
	"sync"

	"github.com/agrimitra/farmcal/internal/task"
)

// RequestPhase is the store's request state machine: idle until a call
// is issued, loading while one is in flight, error after a failure. A
// successful call always returns the store to idle.
type RequestPhase int

const (
	PhaseIdle RequestPhase = iota
	PhaseLoading
	PhaseError
)

// RequestState is a snapshot of the request machine. Detail is only set
// in PhaseError.
type RequestState struct {
	Phase  RequestPhase
	Detail string
}

// Store is the authoritative client-side cache of the task collection.
//
// Writes never patch the cache optimistically: every successful mutation
// re-runs Load so the visible state always reflects server truth. On any
// failure the cached tasks are left exactly as they were.
type Store struct {
	svc Service

	mu      sync.RWMutex
	tasks   []task.Task
	version uint64
	state   RequestState
}

// New creates an empty store backed by the given service.
func New(svc Service) *Store {
	return &Store{svc: svc}
}

// Tasks returns a copy of the current snapshot, in store order.
func (s *Store) Tasks() []task.Task {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]task.Task, len(s.tasks))
	copy(out, s.tasks)
	return out
}

// Version increments on every successful Load. Views may memoize
// derived projections keyed on it.
func (s *Store) Version() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.version
}

// State returns the current request state.
func (s *Store) State() RequestState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// Len returns the number of cached tasks.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.tasks)
}

// Find returns the cached task with the given id.
func (s *Store) Find(id string) (task.Task, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, t := range s.tasks {
		if t.ID == id {
			return t, true
		}
	}
	return task.Task{}, false
}

// Load fetches the full collection and replaces the cache atomically.
// Replace-not-merge: a locally created task that never reached the
// server can not linger after a reload.
func (s *Store) Load(ctx context.Context) error {
	s.setLoading()
	tasks, err := s.svc.ListTasks(ctx)
	if err != nil {
		s.setError(err)
		return err
	}
	s.mu.Lock()
	s.tasks = tasks
	s.version++
	s.state = RequestState{Phase: PhaseIdle}
	s.mu.Unlock()
	return nil
}

// Create submits a new task and reloads on success.
func (s *Store) Create(ctx context.Context, t task.Task) error {
	return s.mutate(ctx, func() error {
		return s.svc.CreateTask(ctx, t.Normalized())
	})
}

// Update applies a partial update and reloads on success.
func (s *Store) Update(ctx context.Context, id string, patch task.Patch) error {
	return s.mutate(ctx, func() error {
		return s.svc.UpdateTask(ctx, id, patch)
	})
}

// Delete removes a task remotely and reloads on success. Deletion is
// not reversible.
func (s *Store) Delete(ctx context.Context, id string) error {
	return s.mutate(ctx, func() error {
		return s.svc.DeleteTask(ctx, id)
	})
}

// ToggleComplete flips the completion flag of a cached task. Sugar over
// Update with a single-field patch.
func (s *Store) ToggleComplete(ctx context.Context, id string) error {
	current, ok := s.Find(id)
	if !ok {
		return &ValidationError{Field: "id", Reason: "unknown task"}
	}
	return s.Update(ctx, id, task.Patch{Completed: task.BoolPtr(!current.Completed)})
}

func (s *Store) mutate(ctx context.Context, call func() error) error {
	s.setLoading()
	if err := call(); err != nil {
		s.setError(err)
		return err
	}
	return s.Load(ctx)
}

func (s *Store) setLoading() {
	s.mu.Lock()
	s.state = RequestState{Phase: PhaseLoading}
	s.mu.Unlock()
}

func (s *Store) setError(err error) {
	s.mu.Lock()
	s.state = RequestState{Phase: PhaseError, Detail: err.Error()}
	s.mu.Unlock()
}
