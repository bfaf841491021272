package tui

import (
	"slices"
	"sort"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/julianstephens/habitline/internal/constants"
	"github.com/julianstephens/habitline/internal/models"
	"github.com/julianstephens/habitline/internal/tracker"
	"github.com/julianstephens/habitline/internal/utils"
)

type SessionState int

const (
	StateToday SessionState = iota
	StateWeek
	StateCategories
)

var tabTitles = []string{"Today", "Week", "Categories"}

// tickMsg drives timer progress and auto-completion
type tickMsg time.Time

type Model struct {
	tracker      *tracker.Tracker
	state        SessionState
	keys         KeyMap
	help         help.Model
	bar          progress.Model
	tickInterval time.Duration

	today  string
	habits []models.Habit
	cursor int
	status string

	quitting bool
	width    int
	height   int
}

func NewModel(t *tracker.Tracker, tickInterval time.Duration) Model {
	if tickInterval <= 0 {
		tickInterval = constants.DefaultTickInterval
	}
	m := Model{
		tracker:      t,
		state:        StateToday,
		keys:         DefaultKeyMap(),
		help:         help.New(),
		bar:          progress.New(progress.WithDefaultGradient(), progress.WithWidth(30), progress.WithoutPercentage()),
		tickInterval: tickInterval,
	}
	m.refresh()
	return m
}

func (m Model) ShortHelp() []key.Binding {
	keys := []key.Binding{m.keys.Tab, m.keys.Quit, m.keys.Help}
	if m.state == StateToday {
		keys = append(keys, m.keys.Toggle, m.keys.Start, m.keys.Pause)
	}
	return keys
}

func (m Model) FullHelp() [][]key.Binding {
	global := []key.Binding{m.keys.Tab, m.keys.ShiftTab, m.keys.Quit, m.keys.Help}
	if m.state != StateToday {
		return [][]key.Binding{global}
	}
	navigation := []key.Binding{m.keys.Up, m.keys.Down}
	actions := []key.Binding{m.keys.Toggle, m.keys.Start, m.keys.Pause, m.keys.Stop, m.keys.Finish}
	return [][]key.Binding{global, navigation, actions}
}

func (m Model) Init() tea.Cmd {
	return m.tick()
}

func (m Model) tick() tea.Cmd {
	return tea.Tick(m.tickInterval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// refresh reloads today's habits, keeping the cursor in range
func (m *Model) refresh() {
	m.today = m.tracker.Today()
	habits, err := m.tracker.GetHabitsForDate(m.today)
	if err != nil {
		m.status = err.Error()
		habits = nil
	}
	sort.SliceStable(habits, func(i, j int) bool {
		bi, bj := bucketRank(habits[i].Time), bucketRank(habits[j].Time)
		if bi != bj {
			return bi < bj
		}
		return habits[i].Time < habits[j].Time
	})
	m.habits = habits
	if m.cursor >= len(m.habits) {
		m.cursor = len(m.habits) - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
}

var bucketOrder = []string{"Morning", "Afternoon", "Evening", "Night", "Anytime"}

func bucketRank(timeStr string) int {
	return slices.Index(bucketOrder, utils.TimeBucket(timeStr))
}

// selected returns the habit under the cursor
func (m Model) selected() (models.Habit, bool) {
	if m.cursor < 0 || m.cursor >= len(m.habits) {
		return models.Habit{}, false
	}
	return m.habits[m.cursor], true
}
