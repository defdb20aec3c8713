package server

import (
	"context"
	"errors"

	"github.com/agrimitra/farmcal/internal/task"
)

// ErrNotFound is returned by repositories when no task has the given id.
var ErrNotFound = errors.New("task not found")

// Repository stores the service's tasks. Implementations must preserve
// insertion order in List so same-day tasks keep a stable display order.
type Repository interface {
	List(ctx context.Context) ([]task.Task, error)
	Add(ctx context.Context, tasks ...task.Task) error
	Get(ctx context.Context, id string) (task.Task, error)
	Put(ctx context.Context, t task.Task) error
	Remove(ctx context.Context, id string) error
}
