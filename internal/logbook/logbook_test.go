package logbook

import (
	"path/filepath"
	"strings"
	"testing"
)

func TestTailReturnsRecentLinesAndTotal(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "activity.log")
	book, err := New(path)
	if err != nil {
		t.Fatalf("new logbook: %v", err)
	}
	for i := 0; i < 5; i++ {
		book.Info("added task %d", i)
	}
	lines, total := book.Tail(3)
	if total != 5 {
		t.Fatalf("total lines = %d, want 5", total)
	}
	if len(lines) != 3 {
		t.Fatalf("len(lines) = %d, want 3", len(lines))
	}
	for idx, want := range []string{"added task 2", "added task 3", "added task 4"} {
		if !strings.Contains(lines[idx], want) {
			t.Fatalf("line %d = %q, missing %s", idx, lines[idx], want)
		}
	}
}

func TestTailMissingFile(t *testing.T) {
	book, err := New(filepath.Join(t.TempDir(), "never-written.log"))
	if err != nil {
		t.Fatalf("new logbook: %v", err)
	}
	lines, total := book.Tail(10)
	if lines != nil || total != 0 {
		t.Fatalf("expected empty tail, got %v (%d)", lines, total)
	}
}

func TestAppendLevels(t *testing.T) {
	path := filepath.Join(t.TempDir(), "activity.log")
	book, err := New(path)
	if err != nil {
		t.Fatalf("new logbook: %v", err)
	}
	book.Warn("redis unreachable, using memory")
	book.Error("schedule generation failed")
	lines, total := book.Tail(10)
	if total != 2 {
		t.Fatalf("total = %d, want 2", total)
	}
	if !strings.Contains(lines[0], "WARN") {
		t.Fatalf("first line missing WARN: %q", lines[0])
	}
	if !strings.Contains(lines[1], "ERROR") {
		t.Fatalf("second line missing ERROR: %q", lines[1])
	}
}
