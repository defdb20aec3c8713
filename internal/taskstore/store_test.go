package taskstore_test

import (
	"context"
	"errors"
	"testing"

	"github.com/agrimitra/farmcal/internal/task"
	"github.com/agrimitra/farmcal/internal/taskstore"
	"github.com/agrimitra/farmcal/internal/testutil"
)

func TestLoadReplacesSnapshot(t *testing.T) {
	fake := testutil.NewFakeService()
	fake.Seed(
		task.Task{Title: "Plough field", Date: "2025-05-01", Category: task.CategoryPreparation},
		task.Task{Title: "Sow paddy", Date: "2025-06-01", Category: task.CategoryPlanting},
	)
	store := taskstore.New(fake)

	if err := store.Load(context.Background()); err != nil {
		t.Fatalf("load: %v", err)
	}
	if got := store.Len(); got != 2 {
		t.Fatalf("expected 2 tasks, got %d", got)
	}
	v1 := store.Version()

	fake.Seed(task.Task{Title: "Irrigate", Date: "2025-06-05"})
	if err := store.Load(context.Background()); err != nil {
		t.Fatalf("reload: %v", err)
	}
	if got := store.Len(); got != 3 {
		t.Fatalf("expected replace-not-merge to yield 3 tasks, got %d", got)
	}
	if store.Version() == v1 {
		t.Fatalf("version must advance on successful load")
	}
	if st := store.State(); st.Phase != taskstore.PhaseIdle {
		t.Fatalf("expected idle after load, got %+v", st)
	}
}

func TestCreateReloadsAndRoundTrips(t *testing.T) {
	fake := testutil.NewFakeService()
	store := taskstore.New(fake)

	want := task.Task{
		Title:       "Apply urea",
		Date:        "2025-07-15",
		Category:    task.CategoryFertilization,
		Priority:    task.PriorityHigh,
		Description: "50kg per acre",
	}
	if err := store.Create(context.Background(), want); err != nil {
		t.Fatalf("create: %v", err)
	}
	if fake.ListCalls == 0 {
		t.Fatalf("create must trigger a reload")
	}

	tasks := store.Tasks()
	if len(tasks) != 1 {
		t.Fatalf("expected 1 task after create, got %d", len(tasks))
	}
	got := tasks[0]
	if got.ID == "" {
		t.Fatalf("service-assigned id missing")
	}
	if got.Title != want.Title || got.Date != want.Date ||
		got.Category != want.Category || got.Priority != want.Priority ||
		got.Description != want.Description {
		t.Fatalf("round trip mismatch: %+v", got)
	}
}

func TestMutationFailureLeavesCacheUntouched(t *testing.T) {
	fake := testutil.NewFakeService()
	fake.Seed(task.Task{ID: "t1", Title: "Weed rows", Date: "2025-07-01"})
	store := taskstore.New(fake)
	if err := store.Load(context.Background()); err != nil {
		t.Fatalf("load: %v", err)
	}

	fake.DeleteErr = &taskstore.RemoteError{Status: 500, Detail: "boom"}
	err := store.Delete(context.Background(), "t1")
	if err == nil {
		t.Fatalf("expected delete to fail")
	}
	var remote *taskstore.RemoteError
	if !errors.As(err, &remote) {
		t.Fatalf("expected RemoteError, got %T", err)
	}
	if got := store.Len(); got != 1 {
		t.Fatalf("failed mutation must not change the cache, got %d tasks", got)
	}
	if st := store.State(); st.Phase != taskstore.PhaseError || st.Detail == "" {
		t.Fatalf("expected error state with detail, got %+v", st)
	}
}

func TestToggleCompleteIsIdempotentPair(t *testing.T) {
	fake := testutil.NewFakeService()
	fake.Seed(task.Task{ID: "t1", Title: "Harvest", Date: "2025-10-01"})
	store := taskstore.New(fake)
	if err := store.Load(context.Background()); err != nil {
		t.Fatalf("load: %v", err)
	}

	if err := store.ToggleComplete(context.Background(), "t1"); err != nil {
		t.Fatalf("first toggle: %v", err)
	}
	got, ok := store.Find("t1")
	if !ok || !got.Completed {
		t.Fatalf("expected completed after first toggle, got %+v", got)
	}

	if err := store.ToggleComplete(context.Background(), "t1"); err != nil {
		t.Fatalf("second toggle: %v", err)
	}
	got, _ = store.Find("t1")
	if got.Completed {
		t.Fatalf("two toggles must restore the original completed value")
	}
}

func TestToggleCompleteUnknownID(t *testing.T) {
	store := taskstore.New(testutil.NewFakeService())
	err := store.ToggleComplete(context.Background(), "nope")
	var verr *taskstore.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
}

func TestTasksReturnsCopy(t *testing.T) {
	fake := testutil.NewFakeService()
	fake.Seed(task.Task{ID: "t1", Title: "Scout pests", Date: "2025-08-01"})
	store := taskstore.New(fake)
	if err := store.Load(context.Background()); err != nil {
		t.Fatalf("load: %v", err)
	}
	snapshot := store.Tasks()
	snapshot[0].Title = "mutated"
	if fresh := store.Tasks(); fresh[0].Title != "Scout pests" {
		t.Fatalf("snapshot mutation leaked into the store")
	}
}
