// internal/tui/app.go
//
// This is the main TUI (Terminal User Interface) for farmcal.
// It uses bubbletea, which follows The Elm Architecture:
//
// 1. Model: Your application state
// 2. Update: A function that updates state based on messages
// 3. View: A function that renders state to a string
//
// The flow is: User Input -> Message -> Update -> New Model -> View -> Screen

package tui

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/agrimitra/farmcal/internal/calendar"
	"github.com/agrimitra/farmcal/internal/chat"
	"github.com/agrimitra/farmcal/internal/config"
	"github.com/agrimitra/farmcal/internal/editor"
	"github.com/agrimitra/farmcal/internal/logbook"
	"github.com/agrimitra/farmcal/internal/queue"
	"github.com/agrimitra/farmcal/internal/schedule"
	"github.com/agrimitra/farmcal/internal/task"
	"github.com/agrimitra/farmcal/internal/taskstore"
)

// chatGreeting seeds a fresh chat transcript. It is display-only and
// never sent back to the service as history.
const chatGreeting = "Ask me about farming schedules, planting times, or crop management!"

// boardFocus tracks which pane owns navigation keys
type boardFocus int

const (
	focusCalendar boardFocus = iota
	focusQueue
)

// modalKind identifies the open overlay, modalNone meaning the board
// itself has the keys. Each modal is its own little machine; closing
// one always lands back on the board.
type modalKind int

const (
	modalNone modalKind = iota
	modalAddTask
	modalEditTask
	modalGenerate
	modalDayDetail
	modalChat
)

// Async results. Every remote call runs inside a tea.Cmd and comes
// back as one of these.
type tasksLoadedMsg struct {
	err error
}

type aiStatusMsg struct {
	active bool
	err    error
}

type mutationDoneMsg struct {
	action string
	err    error
}

type scheduleDoneMsg struct {
	count int
	crop  string
	err   error
}

type chatDoneMsg struct {
	err error
}

// AppOption customizes App construction for tests and alternate runtimes.
type AppOption func(*App)

// WithService overrides the task service the app talks to.
func WithService(svc taskstore.Service) AppOption {
	return func(a *App) {
		if svc != nil {
			a.svc = svc
		}
	}
}

// WithClock overrides the time source used for "today".
func WithClock(now func() time.Time) AppOption {
	return func(a *App) {
		if now != nil {
			a.now = now
		}
	}
}

// App is the main application model. In bubbletea, this holds ALL your state.
type App struct {
	config   *config.Config
	svc      taskstore.Service
	store    *taskstore.Store
	composer *editor.Composer
	bridge   *schedule.Bridge
	session  *chat.Session
	logbook  *logbook.Logbook
	now      func() time.Time

	// Calendar pane
	month       calendar.Month
	selectedDay int

	// Queue pane
	queueView *queue.ViewState
	queueSel  int

	focus boardFocus
	modal modalKind

	// Modal state
	taskForm *taskForm
	genForm  *generateForm
	chatBox  *chatBox
	daySel   int

	// AI availability gates the generate and chat entry points
	aiActive bool
	aiKnown  bool

	// Per-action busy flags. A pane stays interactive while an
	// unrelated call is in flight.
	loading    bool
	mutating   bool
	generating bool
	chatting   bool

	statusMsg string

	width  int
	height int
}

// NewApp creates a new App instance wired to cfg's task service.
func NewApp(cfg *config.Config, opts ...AppOption) (*App, error) {
	logPath := filepath.Join(cfg.LogsDir(), "activity.log")
	lb, err := logbook.New(logPath)
	if err != nil {
		lb = nil
	}

	app := &App{
		config:    cfg,
		svc:       taskstore.NewClient(cfg.ServiceURL()),
		logbook:   lb,
		now:       time.Now,
		queueView: queue.NewViewState(),
		focus:     focusCalendar,
		modal:     modalNone,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(app)
		}
	}

	app.store = taskstore.New(app.svc)
	app.composer = editor.NewComposer(app.store)
	app.bridge = schedule.NewBridge(app.svc, app.store)
	app.session = chat.NewSession(app.svc)
	app.session.Greet(chatGreeting)

	today := app.today()
	app.month = calendar.MonthOf(today)
	app.selectedDay = today.Day()

	app.logInfo("Session opened · %s", cfg.ServiceURL())
	return app, nil
}

func (a *App) today() time.Time {
	now := a.now()
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
}

func (a *App) logInfo(format string, args ...any) {
	if a.logbook == nil {
		return
	}
	a.logbook.Info(format, args...)
}

func (a *App) logWarn(format string, args ...any) {
	if a.logbook == nil {
		return
	}
	a.logbook.Warn(format, args...)
}

func (a *App) logError(format string, args ...any) {
	if a.logbook == nil {
		return
	}
	a.logbook.Error(format, args...)
}

// Init is called once when the program starts.
func (a *App) Init() tea.Cmd {
	a.loading = true
	return tea.Batch(a.loadTasks(), a.fetchAIStatus())
}

// Update is called when a message is received.
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {

	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		return a, nil

	case tasksLoadedMsg:
		a.loading = false
		if msg.err != nil {
			a.statusMsg = fmt.Sprintf("Load failed: %v", msg.err)
			a.logError("Load failed: %v", msg.err)
			return a, nil
		}
		a.statusMsg = fmt.Sprintf("%d task(s) loaded", a.store.Len())
		a.afterSnapshotChange()
		return a, nil

	case aiStatusMsg:
		a.aiKnown = msg.err == nil
		a.aiActive = msg.err == nil && msg.active
		if msg.err != nil {
			a.logWarn("AI status check failed: %v", msg.err)
		}
		return a, nil

	case mutationDoneMsg:
		a.mutating = false
		if msg.err != nil {
			a.statusMsg = fmt.Sprintf("%s failed: %v", msg.action, msg.err)
			a.logError("%s failed: %v", msg.action, msg.err)
			return a, nil
		}
		a.statusMsg = fmt.Sprintf("%s done", msg.action)
		a.logInfo("%s done", msg.action)
		if a.modal == modalAddTask || a.modal == modalEditTask {
			a.closeModal()
		}
		a.afterSnapshotChange()
		return a, nil

	case scheduleDoneMsg:
		a.generating = false
		if msg.err != nil {
			if a.genForm != nil {
				a.genForm.errMsg = msg.err.Error()
			}
			a.statusMsg = fmt.Sprintf("Generation failed: %v", msg.err)
			a.logError("Schedule generation failed: %v", msg.err)
			return a, nil
		}
		a.statusMsg = fmt.Sprintf("Generated %d task(s) for %s", msg.count, msg.crop)
		a.logInfo("Generated %d task(s) for %s", msg.count, msg.crop)
		a.closeModal()
		a.afterSnapshotChange()
		return a, nil

	case chatDoneMsg:
		a.chatting = false
		if a.chatBox != nil {
			a.chatBox.refresh(a.session.History())
		}
		return a, nil

	case tea.KeyMsg:
		if a.modal != modalNone {
			return a.handleModalKey(msg)
		}
		return a.handleBoardKey(msg)
	}

	return a, nil
}

// afterSnapshotChange reconciles derived view state with the latest
// store snapshot.
func (a *App) afterSnapshotChange() {
	tasks := a.store.Tasks()
	a.queueView.Prune(tasks)
	if n := len(tasks); n == 0 {
		a.queueSel = 0
	} else if a.queueSel >= n {
		a.queueSel = n - 1
	}
	if a.modal == modalDayDetail {
		bucket := a.dayTasks()
		if len(bucket) == 0 {
			a.closeModal()
		} else if a.daySel >= len(bucket) {
			a.daySel = len(bucket) - 1
		}
	}
}

func (a *App) handleBoardKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c", "q":
		a.logInfo("Session closed")
		return a, tea.Quit

	case "r":
		a.loading = true
		a.statusMsg = "Refreshing..."
		return a, tea.Batch(a.loadTasks(), a.fetchAIStatus())

	case "tab":
		if a.focus == focusCalendar {
			a.focus = focusQueue
		} else {
			a.focus = focusCalendar
		}
		return a, nil

	case "a":
		a.taskForm = newTaskForm(a.today())
		a.modal = modalAddTask
		return a, nil

	case "g":
		if !a.aiActive {
			a.statusMsg = "AI assistant is unavailable"
			return a, nil
		}
		a.genForm = newGenerateForm(a.today())
		a.modal = modalGenerate
		return a, nil

	case "c":
		if !a.aiActive {
			a.statusMsg = "AI assistant is unavailable"
			return a, nil
		}
		a.chatBox = newChatBox(a.session.History())
		a.modal = modalChat
		return a, nil

	case "t":
		today := a.today()
		a.month = calendar.MonthOf(today)
		a.selectedDay = today.Day()
		return a, nil

	case "[", "p":
		a.month = a.month.Prev()
		a.clampSelectedDay()
		return a, nil

	case "]", "n":
		a.month = a.month.Next()
		a.clampSelectedDay()
		return a, nil
	}

	if a.focus == focusQueue {
		return a.handleQueueKey(msg)
	}
	return a.handleCalendarKey(msg)
}

func (a *App) handleCalendarKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	days, _ := calendar.DaysInMonth(a.month)
	switch msg.String() {
	case "left", "h":
		if a.selectedDay > 1 {
			a.selectedDay--
		}
	case "right", "l":
		if a.selectedDay < days {
			a.selectedDay++
		}
	case "up", "k":
		if a.selectedDay-7 >= 1 {
			a.selectedDay -= 7
		}
	case "down", "j":
		if a.selectedDay+7 <= days {
			a.selectedDay += 7
		}
	case "enter":
		if len(a.dayTasks()) > 0 {
			a.daySel = 0
			a.modal = modalDayDetail
		}
	}
	return a, nil
}

func (a *App) handleQueueKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	sorted := queue.Sorted(a.store.Tasks())
	if len(sorted) == 0 {
		return a, nil
	}
	switch msg.String() {
	case "up", "k":
		if a.queueSel > 0 {
			a.queueSel--
		}
	case "down", "j":
		if a.queueSel < len(sorted)-1 {
			a.queueSel++
		}
	case "enter":
		a.queueView.ToggleExpanded(sorted[a.queueSel].ID)
	case "x", " ":
		if a.mutating {
			return a, nil
		}
		a.mutating = true
		return a, a.toggleTask(sorted[a.queueSel].ID)
	case "d":
		if a.mutating {
			return a, nil
		}
		a.mutating = true
		return a, a.deleteTask(sorted[a.queueSel].ID)
	case "e":
		t := sorted[a.queueSel]
		a.queueView.BeginEdit(t.ID)
		a.taskForm = newEditForm(t)
		a.modal = modalEditTask
	}
	return a, nil
}

func (a *App) clampSelectedDay() {
	days, _ := calendar.DaysInMonth(a.month)
	if a.selectedDay > days {
		a.selectedDay = days
	}
	if a.selectedDay < 1 {
		a.selectedDay = 1
	}
}

// dayTasks returns the bucket for the selected calendar day.
func (a *App) dayTasks() []task.Task {
	return calendar.TasksForDate(a.store.Tasks(), a.month.Day(a.selectedDay))
}

func (a *App) closeModal() {
	if a.modal == modalEditTask {
		a.queueView.CancelEdit()
	}
	a.modal = modalNone
	a.taskForm = nil
	a.genForm = nil
	a.chatBox = nil
}

// Commands. Each wraps one remote call; results come back as messages.

func (a *App) loadTasks() tea.Cmd {
	store := a.store
	return func() tea.Msg {
		return tasksLoadedMsg{err: store.Load(context.Background())}
	}
}

func (a *App) fetchAIStatus() tea.Cmd {
	svc := a.svc
	return func() tea.Msg {
		active, err := svc.AIStatus(context.Background())
		return aiStatusMsg{active: active, err: err}
	}
}

func (a *App) toggleTask(id string) tea.Cmd {
	store := a.store
	return func() tea.Msg {
		return mutationDoneMsg{action: "Toggle", err: store.ToggleComplete(context.Background(), id)}
	}
}

func (a *App) deleteTask(id string) tea.Cmd {
	store := a.store
	return func() tea.Msg {
		return mutationDoneMsg{action: "Delete", err: store.Delete(context.Background(), id)}
	}
}

func (a *App) submitAdd(d editor.Draft) tea.Cmd {
	composer := a.composer
	return func() tea.Msg {
		return mutationDoneMsg{action: "Add", err: composer.Submit(context.Background(), d)}
	}
}

func (a *App) submitEdit(t task.Task, patch task.Patch) tea.Cmd {
	composer := a.composer
	return func() tea.Msg {
		return mutationDoneMsg{action: "Edit", err: composer.SubmitEdit(context.Background(), t, patch)}
	}
}

func (a *App) runGenerate(req taskstore.ScheduleRequest) tea.Cmd {
	bridge := a.bridge
	return func() tea.Msg {
		count, crop, err := bridge.Generate(context.Background(), req)
		return scheduleDoneMsg{count: count, crop: crop, err: err}
	}
}

func (a *App) sendChat(message string) tea.Cmd {
	session := a.session
	payload := map[string]any{"current_date": task.DayString(a.today())}
	return func() tea.Msg {
		return chatDoneMsg{err: session.Send(context.Background(), message, payload)}
	}
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}
