// internal/tui/modals.go
//
// Modal overlays for the calendar board. Each modal owns its key
// handling while open and hands control back to the board on close.

package tui

import (
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/agrimitra/farmcal/internal/editor"
	"github.com/agrimitra/farmcal/internal/task"
	"github.com/agrimitra/farmcal/internal/taskstore"
)

// taskForm backs both the add-task and edit-task modals. In edit mode
// base holds the task being edited and submission produces a patch of
// just the changed fields.
type taskForm struct {
	title       textinput.Model
	date        textinput.Model
	description textinput.Model
	categoryIdx int
	priorityIdx int
	focus       int
	errMsg      string

	editing bool
	base    task.Task
}

const (
	fieldTitle = iota
	fieldDate
	fieldCategory
	fieldPriority
	fieldDescription
	fieldCount
)

func newTaskForm(today time.Time) *taskForm {
	f := &taskForm{}
	f.title = textinput.New()
	f.title.Placeholder = "Task title"
	f.title.CharLimit = 120
	f.title.Focus()
	f.date = textinput.New()
	f.date.Placeholder = "YYYY-MM-DD"
	f.date.CharLimit = 10
	f.date.SetValue(task.DayString(today))
	f.description = textinput.New()
	f.description.Placeholder = "Description (optional)"
	f.description.CharLimit = 240
	f.priorityIdx = priorityIndex(task.PriorityMedium)
	f.categoryIdx = categoryIndex(task.CategoryGeneral)
	return f
}

func newEditForm(t task.Task) *taskForm {
	f := newTaskForm(time.Time{})
	f.editing = true
	f.base = t
	f.title.SetValue(t.Title)
	f.date.SetValue(t.Date)
	f.description.SetValue(t.Description)
	f.categoryIdx = categoryIndex(t.Category)
	f.priorityIdx = priorityIndex(t.Priority)
	return f
}

func categoryIndex(c task.Category) int {
	for i, info := range task.Categories() {
		if info.Value == c {
			return i
		}
	}
	return len(task.Categories()) - 1
}

func priorityIndex(p task.Priority) int {
	for i, candidate := range task.Priorities() {
		if candidate == p {
			return i
		}
	}
	return 1
}

func (f *taskForm) category() task.Category {
	return task.Categories()[f.categoryIdx].Value
}

func (f *taskForm) priority() task.Priority {
	return task.Priorities()[f.priorityIdx]
}

func (f *taskForm) setFocus(idx int) {
	f.focus = (idx + fieldCount) % fieldCount
	f.title.Blur()
	f.date.Blur()
	f.description.Blur()
	switch f.focus {
	case fieldTitle:
		f.title.Focus()
	case fieldDate:
		f.date.Focus()
	case fieldDescription:
		f.description.Focus()
	}
}

// update routes a key to the focused field. Enum rows cycle with
// left/right instead of taking text.
func (f *taskForm) update(msg tea.KeyMsg) tea.Cmd {
	var cmd tea.Cmd
	switch f.focus {
	case fieldTitle:
		f.title, cmd = f.title.Update(msg)
	case fieldDate:
		f.date, cmd = f.date.Update(msg)
	case fieldDescription:
		f.description, cmd = f.description.Update(msg)
	case fieldCategory:
		switch msg.String() {
		case "left", "h":
			f.categoryIdx = (f.categoryIdx + len(task.Categories()) - 1) % len(task.Categories())
		case "right", "l":
			f.categoryIdx = (f.categoryIdx + 1) % len(task.Categories())
		}
	case fieldPriority:
		switch msg.String() {
		case "left", "h":
			f.priorityIdx = (f.priorityIdx + len(task.Priorities()) - 1) % len(task.Priorities())
		case "right", "l":
			f.priorityIdx = (f.priorityIdx + 1) % len(task.Priorities())
		}
	}
	return cmd
}

func (f *taskForm) draft() editor.Draft {
	return editor.Draft{
		Title:       f.title.Value(),
		Date:        f.date.Value(),
		Category:    f.category(),
		Priority:    f.priority(),
		Description: f.description.Value(),
	}
}

// patch builds the delta between the form and the task under edit.
func (f *taskForm) patch() task.Patch {
	var p task.Patch
	if v := strings.TrimSpace(f.title.Value()); v != f.base.Title {
		p.Title = task.StringPtr(v)
	}
	if v := strings.TrimSpace(f.date.Value()); v != f.base.Date {
		p.Date = task.StringPtr(v)
	}
	if c := f.category(); c != f.base.Category {
		p.Category = task.CategoryPtr(c)
	}
	if pr := f.priority(); pr != f.base.Priority {
		p.Priority = task.PriorityPtr(pr)
	}
	if v := f.description.Value(); v != f.base.Description {
		p.Description = task.StringPtr(v)
	}
	return p
}

// generateForm backs the AI schedule modal.
type generateForm struct {
	crop     textinput.Model
	location textinput.Model
	date     textinput.Model
	focus    int
	errMsg   string
}

func newGenerateForm(today time.Time) *generateForm {
	f := &generateForm{}
	f.crop = textinput.New()
	f.crop.Placeholder = "Crop (e.g. Rice)"
	f.crop.CharLimit = 60
	f.crop.Focus()
	f.location = textinput.New()
	f.location.Placeholder = "Location (e.g. Punjab)"
	f.location.CharLimit = 60
	f.date = textinput.New()
	f.date.Placeholder = "YYYY-MM-DD"
	f.date.CharLimit = 10
	f.date.SetValue(task.DayString(today))
	return f
}

func (f *generateForm) setFocus(idx int) {
	f.focus = (idx + 3) % 3
	f.crop.Blur()
	f.location.Blur()
	f.date.Blur()
	switch f.focus {
	case 0:
		f.crop.Focus()
	case 1:
		f.location.Focus()
	case 2:
		f.date.Focus()
	}
}

func (f *generateForm) update(msg tea.KeyMsg) tea.Cmd {
	var cmd tea.Cmd
	switch f.focus {
	case 0:
		f.crop, cmd = f.crop.Update(msg)
	case 1:
		f.location, cmd = f.location.Update(msg)
	case 2:
		f.date, cmd = f.date.Update(msg)
	}
	return cmd
}

func (f *generateForm) request() taskstore.ScheduleRequest {
	return taskstore.ScheduleRequest{
		Crop:         strings.TrimSpace(f.crop.Value()),
		Location:     strings.TrimSpace(f.location.Value()),
		PlantingDate: strings.TrimSpace(f.date.Value()),
	}
}

// chatBox backs the chat modal: a transcript plus an input line.
type chatBox struct {
	input      textinput.Model
	transcript []taskstore.ChatMessage
}

func newChatBox(history []taskstore.ChatMessage) *chatBox {
	box := &chatBox{transcript: history}
	box.input = textinput.New()
	box.input.Placeholder = "Ask the assistant..."
	box.input.CharLimit = 400
	box.input.Focus()
	return box
}

func (b *chatBox) refresh(history []taskstore.ChatMessage) {
	b.transcript = history
}

// handleModalKey routes keys to whichever modal is open.
func (a *App) handleModalKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		return a, tea.Quit
	}

	switch a.modal {
	case modalAddTask, modalEditTask:
		return a.handleTaskFormKey(msg)
	case modalGenerate:
		return a.handleGenerateKey(msg)
	case modalDayDetail:
		return a.handleDayDetailKey(msg)
	case modalChat:
		return a.handleChatKey(msg)
	}
	return a, nil
}

func (a *App) handleTaskFormKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	form := a.taskForm
	if form == nil {
		a.closeModal()
		return a, nil
	}
	switch msg.String() {
	case "esc":
		a.closeModal()
		return a, nil
	case "tab", "down":
		form.setFocus(form.focus + 1)
		return a, nil
	case "shift+tab", "up":
		form.setFocus(form.focus - 1)
		return a, nil
	case "enter":
		if a.mutating {
			return a, nil
		}
		if form.editing {
			patch := form.patch()
			if patch.IsZero() {
				a.closeModal()
				return a, nil
			}
			if err := editor.ValidateEdit(form.base, patch); err != nil {
				form.errMsg = err.Error()
				return a, nil
			}
			a.mutating = true
			return a, a.submitEdit(form.base, patch)
		}
		d := form.draft()
		if err := editor.ValidateNew(d); err != nil {
			form.errMsg = err.Error()
			return a, nil
		}
		a.mutating = true
		return a, a.submitAdd(d)
	}
	return a, form.update(msg)
}

func (a *App) handleGenerateKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	form := a.genForm
	if form == nil {
		a.closeModal()
		return a, nil
	}
	switch msg.String() {
	case "esc":
		a.closeModal()
		return a, nil
	case "tab", "down":
		form.setFocus(form.focus + 1)
		return a, nil
	case "shift+tab", "up":
		form.setFocus(form.focus - 1)
		return a, nil
	case "enter":
		if a.generating {
			return a, nil
		}
		form.errMsg = ""
		a.generating = true
		a.statusMsg = "Generating schedule..."
		return a, a.runGenerate(form.request())
	}
	return a, form.update(msg)
}

func (a *App) handleDayDetailKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	bucket := a.dayTasks()
	switch msg.String() {
	case "esc", "enter":
		a.closeModal()
		return a, nil
	case "up", "k":
		if a.daySel > 0 {
			a.daySel--
		}
	case "down", "j":
		if a.daySel < len(bucket)-1 {
			a.daySel++
		}
	case "x", " ":
		if a.mutating || len(bucket) == 0 {
			return a, nil
		}
		a.mutating = true
		return a, a.toggleTask(bucket[a.daySel].ID)
	case "d":
		if a.mutating || len(bucket) == 0 {
			return a, nil
		}
		a.mutating = true
		return a, a.deleteTask(bucket[a.daySel].ID)
	}
	return a, nil
}

func (a *App) handleChatKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	box := a.chatBox
	if box == nil {
		a.closeModal()
		return a, nil
	}
	switch msg.String() {
	case "esc":
		a.closeModal()
		return a, nil
	case "enter":
		if a.chatting {
			return a, nil
		}
		text := strings.TrimSpace(box.input.Value())
		if text == "" {
			return a, nil
		}
		box.input.SetValue("")
		a.chatting = true
		cmd := a.sendChat(text)
		// Show the user turn immediately; the session appends it again
		// once Send runs, so refresh from history on completion.
		box.transcript = append(box.transcript, taskstore.ChatMessage{Role: taskstore.RoleUser, Content: text})
		return a, cmd
	}
	var cmd tea.Cmd
	box.input, cmd = box.input.Update(msg)
	return a, cmd
}
