package tui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/julianstephens/habitline/internal/constants"
)

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width

	case tea.FocusMsg:
		m.tracker.SetAppState(constants.AppStateActive)
		m.refresh()

	case tea.BlurMsg:
		m.tracker.SetAppState(constants.AppStateBackground)

	case tickMsg:
		for _, id := range m.tracker.Tick() {
			if h, ok := m.tracker.GetHabit(id); ok {
				m.status = fmt.Sprintf("✓ %s finished", h.Name)
			}
		}
		m.refresh()
		return m, m.tick()

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	tabs := SessionState(len(tabTitles))
	switch {
	case key.Matches(msg, m.keys.Quit):
		m.quitting = true
		return m, tea.Quit
	case key.Matches(msg, m.keys.Tab):
		m.state = (m.state + 1) % tabs
	case key.Matches(msg, m.keys.ShiftTab):
		m.state = (m.state - 1 + tabs) % tabs
	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
	}

	if m.state != StateToday {
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keys.Up):
		if m.cursor > 0 {
			m.cursor--
		}
	case key.Matches(msg, m.keys.Down):
		if m.cursor < len(m.habits)-1 {
			m.cursor++
		}
	case key.Matches(msg, m.keys.Toggle):
		m.toggleSelected()
	case key.Matches(msg, m.keys.Start):
		m.timerAction("started", m.tracker.StartHabitTimer)
	case key.Matches(msg, m.keys.Pause):
		m.pauseOrResume()
	case key.Matches(msg, m.keys.Stop):
		m.timerAction("stopped", func(id string) bool { return m.tracker.StopHabitTimer(id, false) })
	case key.Matches(msg, m.keys.Finish):
		m.timerAction("finished", func(id string) bool { return m.tracker.StopHabitTimer(id, true) })
	}
	return m, nil
}

func (m *Model) toggleSelected() {
	h, ok := m.selected()
	if !ok {
		return
	}
	done, err := m.tracker.ToggleHabitCompletion(h.ID, m.today)
	switch {
	case err != nil:
		m.status = err.Error()
	case done:
		m.status = fmt.Sprintf("✓ %s done", h.Name)
	default:
		m.status = fmt.Sprintf("%s unmarked", h.Name)
	}
	m.refresh()
}

// timerAction runs fn on the selected timed habit and reports the outcome
func (m *Model) timerAction(verb string, fn func(string) bool) {
	h, ok := m.selected()
	if !ok {
		return
	}
	if !h.IsTimed() {
		m.status = fmt.Sprintf("%s has no timer", h.Name)
		return
	}
	if fn(h.ID) {
		m.status = fmt.Sprintf("%s timer %s", h.Name, verb)
	} else {
		m.status = fmt.Sprintf("%s: nothing to do", h.Name)
	}
	m.refresh()
}

func (m *Model) pauseOrResume() {
	h, ok := m.selected()
	if !ok {
		return
	}
	state := m.tracker.GetHabitTimerState(h.ID)
	if state != nil && state.IsPaused() {
		m.timerAction("resumed", m.tracker.ResumeHabitTimer)
		return
	}
	m.timerAction("paused", m.tracker.PauseHabitTimer)
}
