package server

import (
	"context"
	"sync"

	"github.com/agrimitra/farmcal/internal/task"
)

// MemoryRepository keeps tasks in process memory. It is the default
// backend when no redis address is configured.
type MemoryRepository struct {
	mu    sync.RWMutex
	tasks []task.Task
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{}
}

func (r *MemoryRepository) List(_ context.Context) ([]task.Task, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]task.Task, len(r.tasks))
	copy(out, r.tasks)
	return out, nil
}

func (r *MemoryRepository) Add(_ context.Context, tasks ...task.Task) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.tasks = append(r.tasks, tasks...)
	return nil
}

func (r *MemoryRepository) Get(_ context.Context, id string) (task.Task, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, t := range r.tasks {
		if t.ID == id {
			return t, nil
		}
	}
	return task.Task{}, ErrNotFound
}

func (r *MemoryRepository) Put(_ context.Context, t task.Task) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.tasks {
		if r.tasks[i].ID == t.ID {
			r.tasks[i] = t
			return nil
		}
	}
	return ErrNotFound
}

func (r *MemoryRepository) Remove(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.tasks {
		if r.tasks[i].ID == id {
			r.tasks = append(r.tasks[:i], r.tasks[i+1:]...)
			return nil
		}
	}
	return ErrNotFound
}
