package queue

import (
	"testing"
	"time"

	"github.com/agrimitra/farmcal/internal/task"
)

func TestSortedAscendingAndStable(t *testing.T) {
	tasks := []task.Task{
		{ID: "late", Date: "2025-09-01"},
		{ID: "early-a", Date: "2025-03-01"},
		{ID: "mid", Date: "2025-06-01"},
		{ID: "early-b", Date: "2025-03-01"},
	}

	got := Sorted(tasks)
	for i := 1; i < len(got); i++ {
		if got[i-1].Date > got[i].Date {
			t.Fatalf("not non-decreasing at %d: %s > %s", i, got[i-1].Date, got[i].Date)
		}
	}
	// Stable: equal dates keep store order.
	if got[0].ID != "early-a" || got[1].ID != "early-b" {
		t.Fatalf("equal dates must preserve store order: %s, %s", got[0].ID, got[1].ID)
	}

	// Input untouched.
	if tasks[0].ID != "late" {
		t.Fatalf("Sorted must not mutate its input")
	}
	if len(Sorted(nil)) != 0 {
		t.Fatalf("empty input must sort to empty")
	}
}

func TestIsOverdue(t *testing.T) {
	today := time.Date(2025, time.March, 5, 14, 30, 0, 0, time.UTC)

	if !IsOverdue(task.Task{Date: "2025-03-01"}, today) {
		t.Fatalf("past incomplete task must be overdue")
	}
	if IsOverdue(task.Task{Date: "2025-03-05"}, today) {
		t.Fatalf("same-day task is not overdue, time of day is ignored")
	}
	if IsOverdue(task.Task{Date: "2025-03-09"}, today) {
		t.Fatalf("future task is not overdue")
	}
	if IsOverdue(task.Task{Date: "2020-01-01", Completed: true}, today) {
		t.Fatalf("completed tasks are never overdue")
	}
}

func TestViewStateExpandAndEditSlot(t *testing.T) {
	v := NewViewState()

	v.ToggleExpanded("a")
	if !v.Expanded("a") || v.Expanded("b") {
		t.Fatalf("expansion must be independent per item")
	}
	v.ToggleExpanded("a")
	if v.Expanded("a") {
		t.Fatalf("second toggle must collapse")
	}

	v.BeginEdit("a")
	v.BeginEdit("b")
	if v.Editing() != "b" {
		t.Fatalf("edit slot is global: entering edit on b must displace a, got %q", v.Editing())
	}
	v.CancelEdit()
	if v.Editing() != "" {
		t.Fatalf("cancel must release the slot")
	}
}

func TestViewStatePrune(t *testing.T) {
	v := NewViewState()
	v.ToggleExpanded("gone")
	v.ToggleExpanded("kept")
	v.BeginEdit("gone")

	v.Prune([]task.Task{{ID: "kept"}})
	if v.Expanded("gone") {
		t.Fatalf("deleted item must lose expansion state")
	}
	if !v.Expanded("kept") {
		t.Fatalf("surviving item must keep expansion state")
	}
	if v.Editing() != "" {
		t.Fatalf("deleted item must release the edit slot")
	}
}
