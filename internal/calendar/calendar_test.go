package calendar

import (
	"testing"
	"time"

	"github.com/agrimitra/farmcal/internal/task"
)

func TestDaysInMonth(t *testing.T) {
	cases := []struct {
		name      string
		month     Month
		wantDays  int
		wantStart int
	}{
		{"march 2025", Month{2025, time.March}, 31, 6},       // 2025-03-01 is a Saturday
		{"february leap", Month{2024, time.February}, 29, 4}, // 2024-02-01 is a Thursday
		{"february non-leap", Month{2025, time.February}, 28, 6},
		{"june 2025", Month{2025, time.June}, 30, 0}, // 2025-06-01 is a Sunday
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			days, start := DaysInMonth(tc.month)
			if days != tc.wantDays {
				t.Fatalf("days = %d, want %d", days, tc.wantDays)
			}
			if start != tc.wantStart {
				t.Fatalf("start weekday = %d, want %d", start, tc.wantStart)
			}
		})
	}
}

func TestTasksForDateMatchesByDayString(t *testing.T) {
	tasks := []task.Task{
		{ID: "a", Title: "Plough", Date: "2025-03-01"},
		{ID: "b", Title: "Sow", Date: "2025-03-02"},
		{ID: "c", Title: "Level", Date: "2025-03-01"},
	}
	day := time.Date(2025, time.March, 1, 0, 0, 0, 0, time.UTC)

	got := TasksForDate(tasks, day)
	if len(got) != 2 {
		t.Fatalf("expected 2 tasks, got %d", len(got))
	}
	// Store order is preserved.
	if got[0].ID != "a" || got[1].ID != "c" {
		t.Fatalf("order not preserved: %s, %s", got[0].ID, got[1].ID)
	}

	empty := TasksForDate(tasks, time.Date(2025, time.March, 9, 0, 0, 0, 0, time.UTC))
	if len(empty) != 0 {
		t.Fatalf("expected empty bucket, got %d", len(empty))
	}
	if none := TasksForDate(nil, day); len(none) != 0 {
		t.Fatalf("empty store must yield empty bucket")
	}
}

func TestCellTruncatesDisplayOnly(t *testing.T) {
	m := Month{2025, time.March}
	tasks := []task.Task{
		{ID: "a", Title: "One", Date: "2025-03-05"},
		{ID: "b", Title: "Two", Date: "2025-03-05"},
		{ID: "c", Title: "Three", Date: "2025-03-05"},
		{ID: "d", Title: "Four", Date: "2025-03-05"},
	}

	cell := Cell(tasks, m, 5)
	if len(cell.Visible) != MaxVisiblePerDay {
		t.Fatalf("visible = %d, want %d", len(cell.Visible), MaxVisiblePerDay)
	}
	if cell.More != 2 {
		t.Fatalf("more = %d, want 2", cell.More)
	}
	if cell.Visible[0].ID != "a" || cell.Visible[1].ID != "b" {
		t.Fatalf("visible tasks must keep store order")
	}

	sparse := Cell(tasks[:1], m, 5)
	if len(sparse.Visible) != 1 || sparse.More != 0 {
		t.Fatalf("sparse day mis-bucketed: %+v", sparse)
	}
}

func TestMonthNavigation(t *testing.T) {
	jan := Month{2025, time.January}
	if prev := jan.Prev(); prev.Year != 2024 || prev.Month != time.December {
		t.Fatalf("prev across year = %+v", prev)
	}
	dec := Month{2024, time.December}
	if next := dec.Next(); next.Year != 2025 || next.Month != time.January {
		t.Fatalf("next across year = %+v", next)
	}
}
