// Package calendar derives the month-grid projection from a task store
// snapshot. Everything here is a pure function of (snapshot, date): the
// index has no state of its own and is recomputed on every render.
package calendar

import (
	"time"

	"github.com/agrimitra/farmcal/internal/task"
)

// MaxVisiblePerDay caps how many tasks a day cell shows before
// collapsing the rest into a "+N more" overflow count. Display
// truncation only; the underlying bucket is never cut.
const MaxVisiblePerDay = 2

// Month identifies one calendar month.
type Month struct {
	Year  int
	Month time.Month
}

// MonthOf returns the month containing t.
func MonthOf(t time.Time) Month {
	return Month{Year: t.Year(), Month: t.Month()}
}

// Prev returns the preceding month.
func (m Month) Prev() Month {
	first := time.Date(m.Year, m.Month, 1, 0, 0, 0, 0, time.UTC)
	return MonthOf(first.AddDate(0, -1, 0))
}

// Next returns the following month.
func (m Month) Next() Month {
	first := time.Date(m.Year, m.Month, 1, 0, 0, 0, 0, time.UTC)
	return MonthOf(first.AddDate(0, 1, 0))
}

// Day returns the given day-of-month as a time.
func (m Month) Day(day int) time.Time {
	return time.Date(m.Year, m.Month, day, 0, 0, 0, 0, time.UTC)
}

// DaysInMonth returns the day count of the month and the weekday offset
// of day 1 (0 = Sunday), used to lay out leading blank cells.
func DaysInMonth(m Month) (days int, startWeekday int) {
	first := time.Date(m.Year, m.Month, 1, 0, 0, 0, 0, time.UTC)
	last := first.AddDate(0, 1, -1)
	return last.Day(), int(first.Weekday())
}

// TasksForDate returns the subset of tasks whose date equals the target
// calendar day, in store order. Comparison is string equality on the
// ISO day representation.
func TasksForDate(tasks []task.Task, day time.Time) []task.Task {
	target := task.DayString(day)
	var out []task.Task
	for _, t := range tasks {
		if t.Date == target {
			out = append(out, t)
		}
	}
	return out
}

// DayCell is the per-day presentation bucket: up to MaxVisiblePerDay
// tasks plus a count of the hidden remainder.
type DayCell struct {
	Day     int
	Visible []task.Task
	More    int
}

// Cell builds the presentation bucket for one day of the month.
func Cell(tasks []task.Task, m Month, day int) DayCell {
	bucket := TasksForDate(tasks, m.Day(day))
	cell := DayCell{Day: day, Visible: bucket}
	if len(bucket) > MaxVisiblePerDay {
		cell.Visible = bucket[:MaxVisiblePerDay]
		cell.More = len(bucket) - MaxVisiblePerDay
	}
	return cell
}
