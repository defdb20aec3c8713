// Package testutil provides testing utilities shared across packages.
package testutil

import (
	"context"
	"fmt"
	"sync"

	"github.com/agrimitra/farmcal/internal/task"
	"github.com/agrimitra/farmcal/internal/taskstore"
)

// FakeService is an in-memory implementation of taskstore.Service with
// per-method error injection.
type FakeService struct {
	mu     sync.Mutex
	tasks  []task.Task
	nextID int

	Active  bool
	Reply   string
	Batch   []task.Task
	Crop    string
	History []taskstore.ChatMessage // history payload seen by the last Chat call

	ListErr     error
	CreateErr   error
	UpdateErr   error
	DeleteErr   error
	StatusErr   error
	GenerateErr error
	ChatErr     error

	ListCalls     int
	CreateCalls   int
	UpdateCalls   int
	DeleteCalls   int
	GenerateCalls int
	ChatCalls     int
}

// NewFakeService creates an empty fake with AI reported active.
func NewFakeService() *FakeService {
	return &FakeService{Active: true, Reply: "ok"}
}

// Seed appends tasks directly to the fake's collection, assigning ids to
// any task that has none.
func (f *FakeService) Seed(tasks ...task.Task) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, t := range tasks {
		if t.ID == "" {
			f.nextID++
			t.ID = fmt.Sprintf("task-%d", f.nextID)
		}
		f.tasks = append(f.tasks, t)
	}
}

func (f *FakeService) ListTasks(ctx context.Context) ([]task.Task, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.ListCalls++
	if f.ListErr != nil {
		return nil, f.ListErr
	}
	out := make([]task.Task, len(f.tasks))
	copy(out, f.tasks)
	return out, nil
}

func (f *FakeService) CreateTask(ctx context.Context, t task.Task) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.CreateCalls++
	if f.CreateErr != nil {
		return f.CreateErr
	}
	f.nextID++
	t.ID = fmt.Sprintf("task-%d", f.nextID)
	f.tasks = append(f.tasks, t.Normalized())
	return nil
}

func (f *FakeService) UpdateTask(ctx context.Context, id string, patch task.Patch) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.UpdateCalls++
	if f.UpdateErr != nil {
		return f.UpdateErr
	}
	for i := range f.tasks {
		if f.tasks[i].ID == id {
			f.tasks[i] = patch.Apply(f.tasks[i])
			return nil
		}
	}
	return &taskstore.RemoteError{Status: 404, Detail: "Task not found"}
}

func (f *FakeService) DeleteTask(ctx context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.DeleteCalls++
	if f.DeleteErr != nil {
		return f.DeleteErr
	}
	for i := range f.tasks {
		if f.tasks[i].ID == id {
			f.tasks = append(f.tasks[:i], f.tasks[i+1:]...)
			return nil
		}
	}
	return &taskstore.RemoteError{Status: 404, Detail: "Task not found"}
}

func (f *FakeService) AIStatus(ctx context.Context) (bool, error) {
	if f.StatusErr != nil {
		return false, f.StatusErr
	}
	return f.Active, nil
}

func (f *FakeService) GenerateSchedule(ctx context.Context, req taskstore.ScheduleRequest) (taskstore.ScheduleResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.GenerateCalls++
	if f.GenerateErr != nil {
		return taskstore.ScheduleResult{}, f.GenerateErr
	}
	batch := make([]task.Task, 0, len(f.Batch))
	for _, t := range f.Batch {
		f.nextID++
		t.ID = fmt.Sprintf("task-%d", f.nextID)
		t.Crop = req.Crop
		t.Location = req.Location
		f.tasks = append(f.tasks, t)
		batch = append(batch, t)
	}
	crop := f.Crop
	if crop == "" {
		crop = req.Crop
	}
	return taskstore.ScheduleResult{Tasks: batch, Crop: crop}, nil
}

func (f *FakeService) Chat(ctx context.Context, message string, payload map[string]any, history []taskstore.ChatMessage) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.ChatCalls++
	f.History = append([]taskstore.ChatMessage(nil), history...)
	if f.ChatErr != nil {
		return "", f.ChatErr
	}
	return f.Reply, nil
}
