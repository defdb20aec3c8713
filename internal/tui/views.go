// internal/tui/views.go
//
// Rendering for the calendar board, queue sidebar, and modal overlays.

package tui

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/agrimitra/farmcal/internal/calendar"
	"github.com/agrimitra/farmcal/internal/queue"
	"github.com/agrimitra/farmcal/internal/task"
	"github.com/agrimitra/farmcal/internal/taskstore"
)

var (
	headerStyle      = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#4CAF50")).MarginBottom(1)
	panelStyle       = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("#444444")).Padding(0, 1)
	panelTitleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#5B8DEF"))
	todayStyle       = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#F7B801"))
	selectedStyle    = lipgloss.NewStyle().Bold(true).Reverse(true)
	overdueStyle     = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#FF6B6B"))
	completedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#777777")).Strikethrough(true)
	mutedStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("#888888"))
	hintStyle        = lipgloss.NewStyle().Foreground(lipgloss.Color("#AAAAAA")).MarginTop(1)
	errorStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF6B6B"))
	fieldLabelStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#A0AEC0"))
	focusMarkerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#5B8DEF"))
)

var weekdayHeader = []string{"Su", "Mo", "Tu", "We", "Th", "Fr", "Sa"}

// View renders the current state to a string.
func (a *App) View() string {
	width := a.width
	if width <= 0 {
		width = 100
	}
	rightWidth := max(34, width/3)
	leftWidth := width - rightWidth - 4
	if leftWidth < 40 {
		leftWidth = width - 4
		rightWidth = 0
	}

	header := headerStyle.Render("🌾 FARMCAL · Smart Farming Calendar")

	var content string
	if a.modal != modalNone {
		content = a.renderModal(leftWidth - 4)
	} else {
		content = a.renderCalendar(leftWidth - 4)
	}
	leftBox := panelStyle.Width(max(20, leftWidth)).Render(content)

	var body string
	if rightWidth > 0 {
		rightBox := panelStyle.Width(max(20, rightWidth)).Render(a.renderQueue(rightWidth - 4))
		body = lipgloss.JoinHorizontal(lipgloss.Top, leftBox, rightBox)
	} else {
		body = leftBox
	}

	sections := []string{header, body}
	if logPanel := a.renderLogPanel(); logPanel != "" {
		sections = append(sections, logPanel)
	}
	sections = append(sections, a.renderFooter())
	return strings.Join(sections, "\n")
}

func (a *App) renderCalendar(width int) string {
	title := panelTitleStyle.Render(fmt.Sprintf("%s %d", a.month.Month, a.month.Year))
	days, start := calendar.DaysInMonth(a.month)
	tasks := a.store.Tasks()
	today := a.today()
	todayStr := task.DayString(today)

	cellWidth := max(9, (width-7)/7)
	cellStyle := lipgloss.NewStyle().Width(cellWidth)

	var headerCells []string
	for _, wd := range weekdayHeader {
		headerCells = append(headerCells, cellStyle.Render(mutedStyle.Render(wd)))
	}
	rows := []string{lipgloss.JoinHorizontal(lipgloss.Top, headerCells...)}

	var week []string
	for i := 0; i < start; i++ {
		week = append(week, cellStyle.Render(""))
	}
	for day := 1; day <= days; day++ {
		cell := calendar.Cell(tasks, a.month, day)
		week = append(week, cellStyle.Render(a.renderDayCell(cell, todayStr, cellWidth)))
		if len(week) == 7 {
			rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, week...))
			week = nil
		}
	}
	if len(week) > 0 {
		rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, week...))
	}

	hint := hintStyle.Render("a → add    g → generate    c → chat    Enter → day    Tab → queue")
	return lipgloss.JoinVertical(lipgloss.Left, title, strings.Join(rows, "\n"), hint)
}

func (a *App) renderDayCell(cell calendar.DayCell, todayStr string, width int) string {
	dayLabel := fmt.Sprintf("%2d", cell.Day)
	dayStr := task.DayString(a.month.Day(cell.Day))
	switch {
	case a.modal == modalNone && a.focus == focusCalendar && cell.Day == a.selectedDay:
		dayLabel = selectedStyle.Render(dayLabel)
	case dayStr == todayStr:
		dayLabel = todayStyle.Render(dayLabel)
	}

	lines := []string{dayLabel}
	for _, t := range cell.Visible {
		chip := truncate(t.Title, width-2)
		style := lipgloss.NewStyle().Foreground(lipgloss.Color(t.Category.Info().Color))
		if t.Completed {
			style = completedStyle
		}
		lines = append(lines, style.Render("·"+chip))
	}
	if cell.More > 0 {
		lines = append(lines, mutedStyle.Render(fmt.Sprintf("+%d more", cell.More)))
	}
	return strings.Join(lines, "\n")
}

func (a *App) renderQueue(width int) string {
	sorted := queue.Sorted(a.store.Tasks())
	title := panelTitleStyle.Render(fmt.Sprintf("Task Queue (%d)", len(sorted)))
	if len(sorted) == 0 {
		note := mutedStyle.Render("No tasks yet. Press a to add one or g to generate a schedule.")
		return lipgloss.JoinVertical(lipgloss.Left, title, note)
	}

	today := a.today()
	var rows []string
	for i, t := range sorted {
		selected := a.focus == focusQueue && i == a.queueSel && a.modal == modalNone
		rows = append(rows, a.renderQueueItem(t, selected, today, width))
	}
	hint := hintStyle.Render("x → toggle    d → delete    e → edit    Enter → expand")
	return lipgloss.JoinVertical(lipgloss.Left, title, strings.Join(rows, "\n"), hint)
}

func (a *App) renderQueueItem(t task.Task, selected bool, today time.Time, width int) string {
	check := "[ ]"
	if t.Completed {
		check = "[x]"
	}
	line := fmt.Sprintf("%s %s · %s", check, t.Date, truncate(t.Title, width-18))
	if queue.IsOverdue(t, today) {
		line = overdueStyle.Render("⚠ ") + line
	} else {
		line = "  " + line
	}
	if t.Completed {
		line = completedStyle.Render(line)
	}

	lines := []string{line}
	if a.queueView.Expanded(t.ID) {
		detail := fmt.Sprintf("    %s · %s priority", t.Category.Label(), t.Priority)
		if t.Crop != "" {
			detail += " · " + t.Crop
		}
		lines = append(lines, mutedStyle.Render(detail))
		if t.Description != "" {
			lines = append(lines, mutedStyle.Render("    "+truncate(t.Description, width-6)))
		}
	}

	content := strings.Join(lines, "\n")
	if selected {
		return selectedStyle.Render(content)
	}
	return content
}

func (a *App) renderModal(width int) string {
	switch a.modal {
	case modalAddTask, modalEditTask:
		return a.renderTaskForm(width)
	case modalGenerate:
		return a.renderGenerateForm(width)
	case modalDayDetail:
		return a.renderDayDetail(width)
	case modalChat:
		return a.renderChat(width)
	}
	return ""
}

func (a *App) renderTaskForm(width int) string {
	form := a.taskForm
	if form == nil {
		return ""
	}
	title := "Add Task"
	if form.editing {
		title = fmt.Sprintf("Edit Task · %s", truncate(form.base.Title, width-14))
	}
	lines := []string{
		panelTitleStyle.Render(title),
		"",
		formRow("Title", form.title.View(), form.focus == fieldTitle),
		formRow("Date", form.date.View(), form.focus == fieldDate),
		formRow("Category", enumRow(form.category().Label(), form.focus == fieldCategory), form.focus == fieldCategory),
		formRow("Priority", enumRow(string(form.priority()), form.focus == fieldPriority), form.focus == fieldPriority),
		formRow("Notes", form.description.View(), form.focus == fieldDescription),
	}
	if form.errMsg != "" {
		lines = append(lines, "", errorStyle.Render(form.errMsg))
	}
	lines = append(lines, hintStyle.Render("Enter → save    Tab → next field    Esc → cancel"))
	return strings.Join(lines, "\n")
}

func (a *App) renderGenerateForm(width int) string {
	form := a.genForm
	if form == nil {
		return ""
	}
	lines := []string{
		panelTitleStyle.Render("Generate AI Schedule"),
		"",
		formRow("Crop", form.crop.View(), form.focus == 0),
		formRow("Location", form.location.View(), form.focus == 1),
		formRow("Planting", form.date.View(), form.focus == 2),
	}
	if a.generating {
		lines = append(lines, "", mutedStyle.Render("Generating... this can take a minute."))
	}
	if form.errMsg != "" {
		lines = append(lines, "", errorStyle.Render(form.errMsg))
	}
	lines = append(lines, hintStyle.Render("Enter → generate    Esc → cancel"))
	return strings.Join(lines, "\n")
}

func (a *App) renderDayDetail(width int) string {
	bucket := a.dayTasks()
	day := a.month.Day(a.selectedDay)
	lines := []string{
		panelTitleStyle.Render(fmt.Sprintf("Tasks on %s", task.DayString(day))),
		"",
	}
	today := a.today()
	for i, t := range bucket {
		row := a.renderQueueItem(t, i == a.daySel, today, width)
		lines = append(lines, row)
	}
	lines = append(lines, hintStyle.Render("x → toggle    d → delete    Esc → close"))
	return strings.Join(lines, "\n")
}

func (a *App) renderChat(width int) string {
	box := a.chatBox
	if box == nil {
		return ""
	}
	lines := []string{panelTitleStyle.Render("AI Farming Assistant"), ""}
	transcript := box.transcript
	maxTurns := 12
	if len(transcript) > maxTurns {
		transcript = transcript[len(transcript)-maxTurns:]
	}
	for _, msg := range transcript {
		label := "Assistant"
		style := mutedStyle
		if msg.Role == taskstore.RoleUser {
			label = "You"
			style = focusMarkerStyle
		}
		lines = append(lines, style.Render(label+":")+" "+wrap(msg.Content, width-4))
	}
	if a.chatting {
		lines = append(lines, mutedStyle.Render("Assistant is typing..."))
	}
	lines = append(lines, "", box.input.View())
	lines = append(lines, hintStyle.Render("Enter → send    Esc → close"))
	return strings.Join(lines, "\n")
}

func (a *App) renderLogPanel() string {
	if a.logbook == nil {
		return ""
	}
	lines, _ := a.logbook.Tail(5)
	if len(lines) == 0 {
		return ""
	}
	fileName := filepath.Base(a.logbook.Path())
	head := panelTitleStyle.Render(fmt.Sprintf("LOG · %s", fileName))
	body := mutedStyle.Render(strings.Join(lines, "\n"))
	return panelStyle.Render(fmt.Sprintf("%s\n%s", head, body))
}

func (a *App) renderFooter() string {
	parts := []string{}
	switch {
	case a.loading:
		parts = append(parts, "Loading tasks...")
	case a.mutating:
		parts = append(parts, "Saving...")
	}
	if a.aiKnown {
		if a.aiActive {
			parts = append(parts, "AI: active")
		} else {
			parts = append(parts, "AI: inactive")
		}
	}
	if a.statusMsg != "" {
		parts = append(parts, a.statusMsg)
	}
	return mutedStyle.MarginTop(1).Render(strings.Join(parts, " · "))
}

func formRow(label, value string, focused bool) string {
	marker := "  "
	if focused {
		marker = focusMarkerStyle.Render("> ")
	}
	return marker + fieldLabelStyle.Render(fmt.Sprintf("%-9s", label)) + value
}

func enumRow(value string, focused bool) string {
	if focused {
		return fmt.Sprintf("◂ %s ▸", value)
	}
	return value
}

func truncate(s string, limit int) string {
	if limit <= 1 || len(s) <= limit {
		return s
	}
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit-1]) + "…"
}

func wrap(s string, width int) string {
	if width <= 0 {
		return s
	}
	words := strings.Fields(s)
	if len(words) == 0 {
		return s
	}
	var b strings.Builder
	lineLen := 0
	for i, w := range words {
		if i > 0 {
			if lineLen+1+len(w) > width {
				b.WriteString("\n")
				lineLen = 0
			} else {
				b.WriteString(" ")
				lineLen++
			}
		}
		b.WriteString(w)
		lineLen += len(w)
	}
	return b.String()
}
