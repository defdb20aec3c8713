// Package queue derives the globally date-sorted task list and holds the
// per-item view state (expand/collapse, the shared edit slot). The sorted
// list itself is a pure projection over a store snapshot.
package queue

import (
	"sort"
	"time"

	"github.com/agrimitra/farmcal/internal/task"
)

// Sorted returns all tasks ordered ascending by date. The sort is
// stable: equal dates preserve relative store order, there is no
// secondary key.
func Sorted(tasks []task.Task) []task.Task {
	out := make([]task.Task, len(tasks))
	copy(out, tasks)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Date < out[j].Date
	})
	return out
}

// IsOverdue reports whether a task's day is strictly before today and
// the task is not completed. Completed tasks are never overdue, however
// old. Time of day is ignored on both sides.
func IsOverdue(t task.Task, today time.Time) bool {
	if t.Completed {
		return false
	}
	return t.Date < task.DayString(today)
}

// ViewState tracks presentation state for queue items: which items are
// expanded, and the single process-wide edit slot. Opening the editor on
// one item cancels any edit in flight on another.
type ViewState struct {
	expanded map[string]bool
	editing  string
}

// NewViewState creates a collapsed, non-editing view state.
func NewViewState() *ViewState {
	return &ViewState{expanded: make(map[string]bool)}
}

// ToggleExpanded flips the condensed/expanded render state of one item.
func (v *ViewState) ToggleExpanded(id string) {
	v.expanded[id] = !v.expanded[id]
}

// Expanded reports whether an item shows its expanded view.
func (v *ViewState) Expanded(id string) bool {
	return v.expanded[id]
}

// BeginEdit claims the edit slot for an item, closing any other editor.
func (v *ViewState) BeginEdit(id string) {
	v.editing = id
}

// CancelEdit releases the edit slot.
func (v *ViewState) CancelEdit() {
	v.editing = ""
}

// Editing returns the id currently in edit mode, or "".
func (v *ViewState) Editing() string {
	return v.editing
}

// Prune drops view state for ids no longer present in the snapshot, so
// deleted tasks cannot pin an editor or expansion entry.
func (v *ViewState) Prune(tasks []task.Task) {
	alive := make(map[string]bool, len(tasks))
	for _, t := range tasks {
		alive[t.ID] = true
	}
	for id := range v.expanded {
		if !alive[id] {
			delete(v.expanded, id)
		}
	}
	if v.editing != "" && !alive[v.editing] {
		v.editing = ""
	}
}
