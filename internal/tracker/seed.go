package tracker

import (
	"time"

	"github.com/google/uuid"

	"github.com/julianstephens/habitline/internal/constants"
	"github.com/julianstephens/habitline/internal/models"
	"github.com/julianstephens/habitline/internal/utils"
)

// Caller holds t.mu for everything in this file.

func (t *Tracker) seedDefaultCategories() {
	t.categories = make([]models.Category, 0, len(constants.DefaultCategories))
	for _, c := range constants.DefaultCategories {
		t.categories = append(t.categories, models.Category{
			ID:    uuid.New().String(),
			Name:  c.Name,
			Color: c.Color,
		})
	}
	t.persistCategories()
}

func (t *Tracker) categoryByName(name string) string {
	for _, c := range t.categories {
		if c.Name == name {
			return c.ID
		}
	}
	if len(t.categories) > 0 {
		return t.categories[0].ID
	}
	return ""
}

type sampleHabit struct {
	name     string
	freq     models.Frequency
	category string
	time     string
	minutes  int
	icon     string
	// days ago the habit was completed
	done []int
	// days ago with partial timer progress
	partial map[int]float64
}

func intPtr(v int) *int { return &v }

// seedSampleData fills an empty store with demo habits and a few weeks of history
func (t *Tracker) seedSampleData() {
	if len(t.categories) == 0 {
		t.seedDefaultCategories()
	}
	samples := []sampleHabit{
		{name: "Morning run", freq: models.Daily(), category: "Health", time: "07:00", minutes: 30, icon: "🏃",
			done: []int{1, 2, 3, 5, 6, 8}, partial: map[int]float64{4: 40}},
		{name: "Read", freq: models.Daily(), category: "Learning", time: "21:00", minutes: 20, icon: "📚",
			done: []int{1, 2, 3, 4, 5, 6, 7}},
		{name: "Meditate", freq: models.Daily(), category: "Mindfulness", time: "13:00", minutes: 10, icon: "🧘",
			done: []int{2, 4}, partial: map[int]float64{1: 70}},
		{name: "Weekly review", freq: models.Frequency{Type: constants.FrequencyWeekly}, category: "Productivity", time: "18:00"},
		{name: "Gym", category: "Health", time: "18:30", icon: "🏋",
			freq: models.Frequency{Type: constants.FrequencyCustom, Days: []time.Weekday{time.Monday, time.Wednesday, time.Friday}}},
	}

	now := t.clock.Now()
	today := t.Today()
	for _, s := range samples {
		h := models.Habit{
			ID:         uuid.New().String(),
			Name:       s.name,
			Frequency:  s.freq.Normalize(),
			CategoryID: t.categoryByName(s.category),
			Time:       s.time,
			Icon:       s.icon,
			CreatedAt:  now,
			UpdatedAt:  now,
		}
		if s.minutes > 0 {
			h.Duration = intPtr(s.minutes)
		}
		t.habits = append(t.habits, h)

		for _, ago := range s.done {
			date, err := utils.AddDays(today, -ago)
			if err != nil {
				continue
			}
			t.completions = append(t.completions, models.CompletionEntry{
				ID: uuid.New().String(), HabitID: h.ID, Date: date, Completed: true,
			})
			if h.IsTimed() {
				t.upsertHistory(h.ID, date, constants.ProgressComplete, true)
			}
		}
		for ago, p := range s.partial {
			if date, err := utils.AddDays(today, -ago); err == nil {
				t.upsertHistory(h.ID, date, p, false)
			}
		}
	}
	t.persistHabits()
	t.persistCompletions()
	t.persistHistory()
}
