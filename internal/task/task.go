// internal/task/task.go
//
// Core data model for the farming calendar: a Task is a single dated
// action (irrigation, fertilization, ...) with a category, priority and
// completion flag. Categories and priorities are closed sets carried as
// plain strings on the wire; unknown values degrade to the general/medium
// defaults instead of being rejected.

package task

import (
	"fmt"
	"strings"
	"time"
)

// DayFormat is the wire format for all calendar dates. Dates are compared
// as day strings, never as instants, so there is no timezone arithmetic
// anywhere in the model.
const DayFormat = "2006-01-02"

// Category classifies a task into one phase of the crop cycle.
type Category string

const (
	CategoryPreparation   Category = "preparation"
	CategoryPlanting      Category = "planting"
	CategoryIrrigation    Category = "irrigation"
	CategoryFertilization Category = "fertilization"
	CategoryPestControl   Category = "pest_control"
	CategoryWeeding       Category = "weeding"
	CategoryHarvesting    Category = "harvesting"
	CategoryGeneral       Category = "general"
)

// Priority ranks a task's urgency.
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

// Task is the central entity. ID is assigned by the task service on
// creation and immutable afterwards.
type Task struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Date        string   `json:"date"`
	Category    Category `json:"category"`
	Priority    Priority `json:"priority"`
	Description string   `json:"description,omitempty"`
	Completed   bool     `json:"completed"`
	Crop        string   `json:"crop,omitempty"`
	Location    string   `json:"location,omitempty"`
}

// CategoryInfo pairs a category value with its display attributes. The
// table is presentation-only; nothing beyond the Category string is
// persisted per task.
type CategoryInfo struct {
	Value Category
	Label string
	Color string
}

var categoryTable = []CategoryInfo{
	{CategoryPreparation, "Land Preparation", "178"},
	{CategoryPlanting, "Planting", "40"},
	{CategoryIrrigation, "Irrigation", "33"},
	{CategoryFertilization, "Fertilization", "135"},
	{CategoryPestControl, "Pest Control", "160"},
	{CategoryWeeding, "Weeding", "220"},
	{CategoryHarvesting, "Harvesting", "208"},
	{CategoryGeneral, "General", "245"},
}

// Categories returns the fixed category table in display order.
func Categories() []CategoryInfo {
	out := make([]CategoryInfo, len(categoryTable))
	copy(out, categoryTable)
	return out
}

// Normalize maps unrecognized values to CategoryGeneral so that tasks
// from any source always render under a known bucket.
func (c Category) Normalize() Category {
	for _, info := range categoryTable {
		if info.Value == c {
			return c
		}
	}
	return CategoryGeneral
}

// Info returns display attributes for the category, falling back to the
// general entry for unknown values.
func (c Category) Info() CategoryInfo {
	for _, info := range categoryTable {
		if info.Value == c {
			return info
		}
	}
	return categoryTable[len(categoryTable)-1]
}

// Label returns the human-readable category name.
func (c Category) Label() string { return c.Info().Label }

// Priorities returns the fixed priority set in ascending order.
func Priorities() []Priority {
	return []Priority{PriorityLow, PriorityMedium, PriorityHigh}
}

// Normalize maps unrecognized values to PriorityMedium.
func (p Priority) Normalize() Priority {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return p
	}
	return PriorityMedium
}

// Validate checks the two hard invariants: title and date are present,
// and the date parses as a calendar day.
func (t Task) Validate() error {
	if strings.TrimSpace(t.Title) == "" {
		return fmt.Errorf("task: title is required")
	}
	if strings.TrimSpace(t.Date) == "" {
		return fmt.Errorf("task: date is required")
	}
	if _, err := ParseDay(t.Date); err != nil {
		return fmt.Errorf("task: invalid date %q: %w", t.Date, err)
	}
	return nil
}

// Normalized returns a copy with category and priority coerced into
// their closed sets and whitespace trimmed off the title.
func (t Task) Normalized() Task {
	t.Title = strings.TrimSpace(t.Title)
	t.Category = t.Category.Normalize()
	t.Priority = t.Priority.Normalize()
	return t
}

// Day parses the task's date. Validate must have accepted the task for
// this to be meaningful; on malformed input the zero time is returned.
func (t Task) Day() time.Time {
	day, _ := ParseDay(t.Date)
	return day
}

// ParseDay parses an ISO YYYY-MM-DD day string.
func ParseDay(value string) (time.Time, error) {
	return time.Parse(DayFormat, strings.TrimSpace(value))
}

// DayString formats a time as the wire day string.
func DayString(t time.Time) string {
	return t.Format(DayFormat)
}

// Patch carries a partial update. Nil fields are left untouched by Apply.
type Patch struct {
	Title       *string   `json:"title,omitempty"`
	Date        *string   `json:"date,omitempty"`
	Category    *Category `json:"category,omitempty"`
	Priority    *Priority `json:"priority,omitempty"`
	Description *string   `json:"description,omitempty"`
	Completed   *bool     `json:"completed,omitempty"`
}

// Apply merges the patch onto a task and returns the result.
func (p Patch) Apply(t Task) Task {
	if p.Title != nil {
		t.Title = *p.Title
	}
	if p.Date != nil {
		t.Date = *p.Date
	}
	if p.Category != nil {
		t.Category = p.Category.Normalize()
	}
	if p.Priority != nil {
		t.Priority = p.Priority.Normalize()
	}
	if p.Description != nil {
		t.Description = *p.Description
	}
	if p.Completed != nil {
		t.Completed = *p.Completed
	}
	return t
}

// IsZero reports whether the patch changes nothing.
func (p Patch) IsZero() bool {
	return p.Title == nil && p.Date == nil && p.Category == nil &&
		p.Priority == nil && p.Description == nil && p.Completed == nil
}

// String helpers for building patches without temporaries.
func StringPtr(s string) *string       { return &s }
func BoolPtr(b bool) *bool             { return &b }
func CategoryPtr(c Category) *Category { return &c }
func PriorityPtr(p Priority) *Priority { return &p }
