package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/julianstephens/habitline/internal/models"
	"github.com/julianstephens/habitline/internal/utils"
)

func (m Model) View() string {
	if m.quitting {
		return ""
	}

	var content string
	switch m.state {
	case StateToday:
		content = m.viewToday()
	case StateWeek:
		content = m.viewWeek()
	case StateCategories:
		content = m.viewCategories()
	}

	parts := []string{m.viewTabs(), docStyle.Render(content)}
	if m.status != "" {
		parts = append(parts, statusStyle.Render(m.status))
	}
	parts = append(parts, m.help.View(m))
	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

func (m Model) viewTabs() string {
	var tabs []string
	for i, title := range tabTitles {
		if m.state == SessionState(i) {
			tabs = append(tabs, activeTabStyle.Render(title))
		} else {
			tabs = append(tabs, inactiveTabStyle.Render(title))
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, tabs...)
}

func (m Model) viewToday() string {
	var b strings.Builder
	daily := m.tracker.GetDailyProgress()
	fmt.Fprintf(&b, "Hi %s! %s\n", m.tracker.Username(), m.today)
	fmt.Fprintf(&b, "%s %d%%\n\n", m.bar.ViewAs(float64(daily)/100), daily)

	if len(m.habits) == 0 {
		b.WriteString(dimStyle.Render("Nothing scheduled today."))
		return b.String()
	}

	bucket := ""
	for i, h := range m.habits {
		if tb := utils.TimeBucket(h.Time); tb != bucket {
			bucket = tb
			b.WriteString(bucketStyle.Render(bucket) + "\n")
		}
		b.WriteString(m.habitLine(i, h) + "\n")
	}
	return b.String()
}

func (m Model) habitLine(i int, h models.Habit) string {
	cursor := "  "
	name := h.Name
	if i == m.cursor {
		cursor = selectedStyle.Render("> ")
		name = selectedStyle.Render(name)
	}

	mark := "[ ]"
	if m.tracker.GetHabitCompletionStatus(h.ID, m.today) {
		mark = doneStyle.Render("[x]")
	}
	line := fmt.Sprintf("%s%s %s", cursor, mark, name)
	if h.Time != "" {
		line += dimStyle.Render(" @ " + h.Time)
	}

	if !h.IsTimed() {
		return line
	}
	state := m.tracker.GetHabitTimerState(h.ID)
	if state == nil {
		return line + dimStyle.Render(fmt.Sprintf(" (%dm)", *h.Duration))
	}
	label := fmt.Sprintf(" %s %3.0f%%", m.bar.ViewAs(state.Progress/100), state.Progress)
	if state.IsPaused() {
		label += dimStyle.Render(" paused")
	}
	return line + label
}

func (m Model) viewWeek() string {
	var b strings.Builder
	for _, day := range m.tracker.GetWeeklyProgress() {
		label := day.Date
		if wd, err := utils.WeekdayOf(day.Date); err == nil {
			label = wd.String()[:3] + " " + day.Date
		}
		fmt.Fprintf(&b, "%s %s %3d%% (%d/%d)\n", label, m.bar.ViewAs(float64(day.Progress)/100), day.Progress, day.Completed, day.Scheduled)
	}
	return b.String()
}

func (m Model) viewCategories() string {
	var b strings.Builder
	for _, s := range m.tracker.GetCategoryStats() {
		fmt.Fprintf(&b, "%-16s %d habits, %d done today, %d%% avg rate\n", s.Name, s.HabitCount, s.CompletedToday, s.AverageCompletionRate)
	}
	return b.String()
}
