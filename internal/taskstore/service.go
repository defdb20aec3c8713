// Package taskstore owns the canonical client-side task set and the HTTP
// client for the remote task service. All views are projections over the
// Store's snapshot; nothing else in the client holds task state.
package taskstore

import (
	"context"

	"github.com/agrimitra/farmcal/internal/task"
)

// ChatMessage is one turn of an assistant conversation, as carried on
// the wire.
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// ScheduleRequest asks the AI scheduler for a task batch. All three
// fields are required.
type ScheduleRequest struct {
	Crop         string `json:"crop"`
	Location     string `json:"location"`
	PlantingDate string `json:"planting_date"`
}

// ScheduleResult is the scheduler's success response.
type ScheduleResult struct {
	Tasks []task.Task `json:"tasks"`
	Crop  string      `json:"crop"`
}

// Service is the backend-agnostic interface to the remote task service
// and its AI endpoints. The TUI and the derived views never talk HTTP
// directly; everything goes through this interface so tests can swap in
// an in-memory fake.
type Service interface {
	// ListTasks returns the full task collection.
	ListTasks(ctx context.Context) ([]task.Task, error)

	// CreateTask submits a new task. The service assigns the ID.
	CreateTask(ctx context.Context, t task.Task) error

	// UpdateTask applies a partial update to an existing task.
	UpdateTask(ctx context.Context, id string, patch task.Patch) error

	// DeleteTask removes a task permanently.
	DeleteTask(ctx context.Context, id string) error

	// AIStatus reports whether AI-backed actions are available.
	AIStatus(ctx context.Context) (bool, error)

	// GenerateSchedule asks the AI scheduler for a crop task batch. The
	// returned tasks are already persisted server-side.
	GenerateSchedule(ctx context.Context, req ScheduleRequest) (ScheduleResult, error)

	// Chat sends one user turn with context payload and prior history,
	// returning the assistant reply.
	Chat(ctx context.Context, message string, payload map[string]any, history []ChatMessage) (string, error)
}
