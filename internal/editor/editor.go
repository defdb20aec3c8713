// Package editor validates task drafts and routes create/edit
// submissions through the task store. The composer owns transient form
// state only; cancelling discards the draft with no side effects.
package editor

import (
	"context"
	"strings"

	"github.com/agrimitra/farmcal/internal/task"
	"github.com/agrimitra/farmcal/internal/taskstore"
)

// Draft holds the manual-add form fields. Category and priority default
// so a freshly opened form submits cleanly once title and date are set.
type Draft struct {
	Title       string
	Date        string
	Category    task.Category
	Priority    task.Priority
	Description string
}

// NewDraft returns an empty draft with the enum defaults.
func NewDraft() Draft {
	return Draft{Category: task.CategoryGeneral, Priority: task.PriorityMedium}
}

// Task converts the draft into a task, coercing enums into their
// closed sets.
func (d Draft) Task() task.Task {
	return task.Task{
		Title:       strings.TrimSpace(d.Title),
		Date:        strings.TrimSpace(d.Date),
		Category:    d.Category.Normalize(),
		Priority:    d.Priority.Normalize(),
		Description: d.Description,
	}
}

// ValidateNew checks the two required fields of a draft. It never
// touches the network.
func ValidateNew(d Draft) error {
	if strings.TrimSpace(d.Title) == "" {
		return &taskstore.ValidationError{Field: "title", Reason: "is required"}
	}
	if strings.TrimSpace(d.Date) == "" {
		return &taskstore.ValidationError{Field: "date", Reason: "is required"}
	}
	if _, err := task.ParseDay(d.Date); err != nil {
		return &taskstore.ValidationError{Field: "date", Reason: "must be YYYY-MM-DD"}
	}
	return nil
}

// ValidateEdit applies the same required-field checks to the merged
// result of task+patch, so an edit cannot blank out title or date.
func ValidateEdit(t task.Task, patch task.Patch) error {
	merged := patch.Apply(t)
	if strings.TrimSpace(merged.Title) == "" {
		return &taskstore.ValidationError{Field: "title", Reason: "is required"}
	}
	if strings.TrimSpace(merged.Date) == "" {
		return &taskstore.ValidationError{Field: "date", Reason: "is required"}
	}
	if _, err := task.ParseDay(merged.Date); err != nil {
		return &taskstore.ValidationError{Field: "date", Reason: "must be YYYY-MM-DD"}
	}
	return nil
}

// Composer submits validated drafts and edits through the store.
type Composer struct {
	store *taskstore.Store
}

// NewComposer creates a composer bound to the store.
func NewComposer(store *taskstore.Store) *Composer {
	return &Composer{store: store}
}

// Submit validates a draft and creates the task. Validation failures
// block submission before any network call.
func (c *Composer) Submit(ctx context.Context, d Draft) error {
	if err := ValidateNew(d); err != nil {
		return err
	}
	return c.store.Create(ctx, d.Task())
}

// SubmitEdit validates the merged result and applies the patch.
func (c *Composer) SubmitEdit(ctx context.Context, t task.Task, patch task.Patch) error {
	if err := ValidateEdit(t, patch); err != nil {
		return err
	}
	return c.store.Update(ctx, t.ID, patch)
}
