package tui

import (
	"errors"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/agrimitra/farmcal/internal/chat"
	"github.com/agrimitra/farmcal/internal/config"
	"github.com/agrimitra/farmcal/internal/task"
	"github.com/agrimitra/farmcal/internal/testutil"
)

func testClock() func() time.Time {
	fixed := time.Date(2025, time.June, 15, 10, 0, 0, 0, time.UTC)
	return func() time.Time { return fixed }
}

func newTestApp(t *testing.T, svc *testutil.FakeService) *App {
	t.Helper()
	baseDir := t.TempDir()
	if err := config.InitDir(baseDir); err != nil {
		t.Fatalf("init config dir: %v", err)
	}
	cfg, err := config.New(baseDir)
	if err != nil {
		t.Fatalf("new config: %v", err)
	}
	app, err := NewApp(cfg, WithService(svc), WithClock(testClock()))
	if err != nil {
		t.Fatalf("new app: %v", err)
	}
	return app
}

func runCommands(t *testing.T, model tea.Model, cmd tea.Cmd) *App {
	t.Helper()
	app, ok := model.(*App)
	if !ok {
		t.Fatalf("unexpected model type: %T", model)
	}
	queue := []tea.Cmd{cmd}
	for len(queue) > 0 {
		next := queue[0]
		queue = queue[1:]
		if next == nil {
			continue
		}
		msg := next()
		if msg == nil {
			continue
		}
		if batch, ok := msg.(tea.BatchMsg); ok {
			for _, c := range batch {
				queue = append(queue, c)
			}
			continue
		}
		nextModel, nextCmd := app.Update(msg)
		app, ok = nextModel.(*App)
		if !ok {
			t.Fatalf("unexpected model type: %T", nextModel)
		}
		queue = append(queue, nextCmd)
	}
	return app
}

func press(t *testing.T, app *App, keys ...string) *App {
	t.Helper()
	for _, key := range keys {
		var msg tea.KeyMsg
		switch key {
		case "enter":
			msg = tea.KeyMsg{Type: tea.KeyEnter}
		case "tab":
			msg = tea.KeyMsg{Type: tea.KeyTab}
		case "esc":
			msg = tea.KeyMsg{Type: tea.KeyEscape}
		default:
			msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(key)}
		}
		model, cmd := app.Update(msg)
		app = runCommands(t, model, cmd)
	}
	return app
}

func TestInitLoadsTasksAndAIStatus(t *testing.T) {
	svc := testutil.NewFakeService()
	svc.Seed(task.Task{Title: "Irrigate", Date: "2025-06-16", Category: task.CategoryIrrigation, Priority: task.PriorityHigh})
	app := newTestApp(t, svc)

	app = runCommands(t, app, app.Init())
	if app.store.Len() != 1 {
		t.Fatalf("expected 1 task after init, got %d", app.store.Len())
	}
	if !app.aiActive {
		t.Fatalf("expected ai active after status check")
	}
	if app.loading {
		t.Fatalf("loading flag should clear")
	}
}

func TestAddTaskFlowCreatesAndReloads(t *testing.T) {
	svc := testutil.NewFakeService()
	app := newTestApp(t, svc)
	app = runCommands(t, app, app.Init())

	app = press(t, app, "a")
	if app.modal != modalAddTask {
		t.Fatalf("expected add modal, got %d", app.modal)
	}
	app.taskForm.title.SetValue("Spray neem oil")
	app.taskForm.date.SetValue("2025-06-20")

	app = press(t, app, "enter")
	if svc.CreateCalls != 1 {
		t.Fatalf("expected 1 create call, got %d", svc.CreateCalls)
	}
	if app.modal != modalNone {
		t.Fatalf("modal should close after successful add")
	}
	if app.store.Len() != 1 {
		t.Fatalf("expected snapshot reload after add, store has %d", app.store.Len())
	}
}

func TestAddTaskValidationBlocksNetwork(t *testing.T) {
	svc := testutil.NewFakeService()
	app := newTestApp(t, svc)
	app = runCommands(t, app, app.Init())

	app = press(t, app, "a")
	app.taskForm.title.SetValue("")
	app.taskForm.date.SetValue("2025-06-20")

	app = press(t, app, "enter")
	if svc.CreateCalls != 0 {
		t.Fatalf("validation failure must not reach the service, got %d calls", svc.CreateCalls)
	}
	if app.modal != modalAddTask {
		t.Fatalf("modal should stay open on validation error")
	}
	if app.taskForm.errMsg == "" {
		t.Fatalf("expected a validation message")
	}
}

func TestQueueToggleComplete(t *testing.T) {
	svc := testutil.NewFakeService()
	svc.Seed(task.Task{Title: "Weed rows", Date: "2025-06-10"})
	app := newTestApp(t, svc)
	app = runCommands(t, app, app.Init())

	app = press(t, app, "tab")
	if app.focus != focusQueue {
		t.Fatalf("tab should focus the queue")
	}
	app = press(t, app, "x")
	if svc.UpdateCalls != 1 {
		t.Fatalf("expected 1 update call, got %d", svc.UpdateCalls)
	}
	tasks := app.store.Tasks()
	if len(tasks) != 1 || !tasks[0].Completed {
		t.Fatalf("expected completed task after toggle, got %+v", tasks)
	}
}

func TestQueueDeleteRemovesTask(t *testing.T) {
	svc := testutil.NewFakeService()
	svc.Seed(task.Task{Title: "Old chore", Date: "2025-06-01"})
	app := newTestApp(t, svc)
	app = runCommands(t, app, app.Init())

	app = press(t, app, "tab", "d")
	if svc.DeleteCalls != 1 {
		t.Fatalf("expected 1 delete call, got %d", svc.DeleteCalls)
	}
	if app.store.Len() != 0 {
		t.Fatalf("expected empty snapshot after delete, got %d", app.store.Len())
	}
}

func TestGenerateGatedWhenAIInactive(t *testing.T) {
	svc := testutil.NewFakeService()
	svc.Active = false
	app := newTestApp(t, svc)
	app = runCommands(t, app, app.Init())

	app = press(t, app, "g")
	if app.modal != modalNone {
		t.Fatalf("generate modal must not open while AI inactive")
	}
	app = press(t, app, "c")
	if app.modal != modalNone {
		t.Fatalf("chat modal must not open while AI inactive")
	}
}

func TestGenerateFlowMergesBatch(t *testing.T) {
	svc := testutil.NewFakeService()
	svc.Batch = []task.Task{
		{Title: "Prepare beds", Date: "2025-06-16", Category: task.CategoryPreparation, Priority: task.PriorityHigh},
		{Title: "Sow seeds", Date: "2025-06-20", Category: task.CategoryPlanting, Priority: task.PriorityHigh},
	}
	app := newTestApp(t, svc)
	app = runCommands(t, app, app.Init())

	app = press(t, app, "g")
	if app.modal != modalGenerate {
		t.Fatalf("expected generate modal")
	}
	app.genForm.crop.SetValue("Rice")
	app.genForm.location.SetValue("Punjab")
	app.genForm.date.SetValue("2025-06-16")

	app = press(t, app, "enter")
	if svc.GenerateCalls != 1 {
		t.Fatalf("expected 1 generate call, got %d", svc.GenerateCalls)
	}
	if app.modal != modalNone {
		t.Fatalf("modal should close after generation")
	}
	if app.store.Len() != 2 {
		t.Fatalf("expected merged batch in snapshot, got %d", app.store.Len())
	}
}

func TestGenerateValidationKeepsModalOpen(t *testing.T) {
	svc := testutil.NewFakeService()
	app := newTestApp(t, svc)
	app = runCommands(t, app, app.Init())

	app = press(t, app, "g")
	app.genForm.crop.SetValue("")
	app = press(t, app, "enter")
	if svc.GenerateCalls != 0 {
		t.Fatalf("validation failure must not reach the service")
	}
	if app.modal != modalGenerate {
		t.Fatalf("modal should stay open on validation error")
	}
	if app.genForm.errMsg == "" {
		t.Fatalf("expected a validation message in the form")
	}
}

func TestChatErrorShowsApologyAndKeepsSession(t *testing.T) {
	svc := testutil.NewFakeService()
	svc.ChatErr = errors.New("upstream down")
	app := newTestApp(t, svc)
	app = runCommands(t, app, app.Init())

	app = press(t, app, "c")
	if app.modal != modalChat {
		t.Fatalf("expected chat modal")
	}
	app.chatBox.input.SetValue("When should I water?")
	app = press(t, app, "enter")

	history := app.session.History()
	last := history[len(history)-1]
	if last.Content != chat.Apology {
		t.Fatalf("expected apology turn, got %q", last.Content)
	}

	// The session stays usable after a failure.
	svc.ChatErr = nil
	svc.Reply = "Morning irrigation works best."
	app.chatBox.input.SetValue("And fertilizer?")
	app = press(t, app, "enter")
	history = app.session.History()
	if history[len(history)-1].Content != "Morning irrigation works best." {
		t.Fatalf("expected fresh reply after recovery, got %q", history[len(history)-1].Content)
	}
}

func TestMonthNavigationAndTodayJump(t *testing.T) {
	svc := testutil.NewFakeService()
	app := newTestApp(t, svc)
	app = runCommands(t, app, app.Init())

	start := app.month
	app = press(t, app, "]")
	if app.month == start {
		t.Fatalf("expected month advance")
	}
	app = press(t, app, "[", "[")
	app = press(t, app, "t")
	if app.month != start {
		t.Fatalf("t should return to the current month, got %v", app.month)
	}
	if app.selectedDay != 15 {
		t.Fatalf("t should select today, got %d", app.selectedDay)
	}
}

func TestDayDetailOpensOnlyWhenTasksExist(t *testing.T) {
	svc := testutil.NewFakeService()
	svc.Seed(task.Task{Title: "Harvest", Date: "2025-06-15"})
	app := newTestApp(t, svc)
	app = runCommands(t, app, app.Init())

	app = press(t, app, "enter")
	if app.modal != modalDayDetail {
		t.Fatalf("expected day detail modal for a day with tasks")
	}
	app = press(t, app, "esc")

	app.selectedDay = 1
	app = press(t, app, "enter")
	if app.modal != modalNone {
		t.Fatalf("empty day should not open a modal")
	}
}

func TestEditFlowSendsPartialPatch(t *testing.T) {
	svc := testutil.NewFakeService()
	svc.Seed(task.Task{Title: "Irrigate", Date: "2025-06-16", Category: task.CategoryIrrigation, Priority: task.PriorityMedium})
	app := newTestApp(t, svc)
	app = runCommands(t, app, app.Init())

	app = press(t, app, "tab", "e")
	if app.modal != modalEditTask {
		t.Fatalf("expected edit modal")
	}
	app.taskForm.title.SetValue("Irrigate north field")

	app = press(t, app, "enter")
	if svc.UpdateCalls != 1 {
		t.Fatalf("expected 1 update call, got %d", svc.UpdateCalls)
	}
	tasks := app.store.Tasks()
	if tasks[0].Title != "Irrigate north field" {
		t.Fatalf("expected updated title, got %q", tasks[0].Title)
	}
	if tasks[0].Date != "2025-06-16" {
		t.Fatalf("untouched date must survive, got %q", tasks[0].Date)
	}
	if app.queueView.Editing() != "" {
		t.Fatalf("edit slot should clear after submit")
	}
}

func TestViewRendersWithoutPanic(t *testing.T) {
	svc := testutil.NewFakeService()
	svc.Seed(
		task.Task{Title: "Irrigate", Date: "2025-06-15", Category: task.CategoryIrrigation},
		task.Task{Title: "Weed", Date: "2025-06-15"},
		task.Task{Title: "Fertilize", Date: "2025-06-15"},
	)
	app := newTestApp(t, svc)
	app = runCommands(t, app, app.Init())
	app.width = 120
	app.height = 40

	out := app.View()
	if out == "" {
		t.Fatalf("expected rendered output")
	}
	if !containsAll(out, "FARMCAL", "Task Queue", "+1 more") {
		t.Fatalf("render missing expected fragments:\n%s", out)
	}
}

func containsAll(s string, subs ...string) bool {
	for _, sub := range subs {
		if !strings.Contains(s, sub) {
			return false
		}
	}
	return true
}
