package tracker

import (
	"fmt"
	"math"
	"sort"

	"github.com/google/uuid"

	"github.com/julianstephens/habitline/internal/constants"
	apperrors "github.com/julianstephens/habitline/internal/errors"
	"github.com/julianstephens/habitline/internal/models"
	"github.com/julianstephens/habitline/internal/utils"
)

func (t *Tracker) completionIndex(habitID, date string) int {
	for i := range t.completions {
		if t.completions[i].HabitID == habitID && t.completions[i].Date == date {
			return i
		}
	}
	return -1
}

func (t *Tracker) isCompleted(habitID, date string) bool {
	i := t.completionIndex(habitID, date)
	return i >= 0 && t.completions[i].Completed
}

// setCompleted writes the completion status and queues a notification on a
// false to true transition. Caller holds t.mu.
func (t *Tracker) setCompleted(habit models.Habit, date string, completed bool) {
	i := t.completionIndex(habit.ID, date)
	was := i >= 0 && t.completions[i].Completed
	if i < 0 {
		t.completions = append(t.completions, models.CompletionEntry{
			ID:        uuid.New().String(),
			HabitID:   habit.ID,
			Date:      date,
			Completed: completed,
		})
	} else {
		if was == completed {
			return
		}
		t.completions[i].Completed = completed
	}
	t.persistCompletions()
	if completed && !was {
		t.queueCompletion(habit, date)
	}
}

// ToggleHabitCompletion flips the completion status for a day and returns the new value
func (t *Tracker) ToggleHabitCompletion(habitID, date string) (bool, error) {
	if err := validateDate(date); err != nil {
		return false, err
	}
	var (
		status bool
		err    error
	)
	t.update(func() {
		h, ok := t.findHabit(habitID)
		if !ok {
			err = fmt.Errorf("%w: %s", apperrors.ErrHabitNotFound, habitID)
			return
		}
		status = !t.isCompleted(habitID, date)
		t.setCompleted(h, date, status)
	})
	return status, err
}

// SetHabitCompletion sets the completion status for a day. Setting the current value is a no-op.
func (t *Tracker) SetHabitCompletion(habitID, date string, completed bool) error {
	if err := validateDate(date); err != nil {
		return err
	}
	var err error
	t.update(func() {
		h, ok := t.findHabit(habitID)
		if !ok {
			err = fmt.Errorf("%w: %s", apperrors.ErrHabitNotFound, habitID)
			return
		}
		t.setCompleted(h, date, completed)
	})
	return err
}

// SetCompletionNote attaches a note to the day's entry, creating an incomplete entry if needed
func (t *Tracker) SetCompletionNote(habitID, date, note string) error {
	if err := validateDate(date); err != nil {
		return err
	}
	var err error
	t.update(func() {
		if t.habitIndex(habitID) < 0 {
			err = fmt.Errorf("%w: %s", apperrors.ErrHabitNotFound, habitID)
			return
		}
		if i := t.completionIndex(habitID, date); i >= 0 {
			t.completions[i].Notes = note
		} else {
			t.completions = append(t.completions, models.CompletionEntry{
				ID:      uuid.New().String(),
				HabitID: habitID,
				Date:    date,
				Notes:   note,
			})
		}
		t.persistCompletions()
	})
	return err
}

// GetCompletionEntry returns the stored entry for a habit and day
func (t *Tracker) GetCompletionEntry(habitID, date string) (models.CompletionEntry, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if i := t.completionIndex(habitID, date); i >= 0 {
		return t.completions[i], true
	}
	return models.CompletionEntry{}, false
}

func (t *Tracker) GetHabitCompletionStatus(habitID, date string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.isCompleted(habitID, date)
}

// GetHabitStreak counts consecutive completed days ending today. An incomplete today yields 0.
func (t *Tracker) GetHabitStreak(habitID string) int {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.habitIndex(habitID) < 0 {
		return 0
	}
	done := t.completedDates(habitID)
	day := t.Now()
	streak := 0
	for done[utils.FormatDate(day)] {
		streak++
		day = day.AddDate(0, 0, -1)
	}
	return streak
}

// GetBestStreak returns the longest run of consecutive completed days on record
func (t *Tracker) GetBestStreak(habitID string) int {
	t.mu.Lock()
	defer t.mu.Unlock()

	done := t.completedDates(habitID)
	dates := make([]string, 0, len(done))
	for d := range done {
		dates = append(dates, d)
	}
	sort.Strings(dates)

	best, run := 0, 0
	prev := ""
	for _, d := range dates {
		next, err := utils.AddDays(prev, 1)
		if prev != "" && err == nil && next == d {
			run++
		} else {
			run = 1
		}
		best = max(best, run)
		prev = d
	}
	return best
}

// completedDates returns the set of dates the habit was completed. Caller holds t.mu.
func (t *Tracker) completedDates(habitID string) map[string]bool {
	done := make(map[string]bool)
	for _, c := range t.completions {
		if c.HabitID == habitID && c.Completed && utils.ValidateDate(c.Date) {
			done[c.Date] = true
		}
	}
	return done
}

// GetCompletionRate is the percentage of the trailing 30 days (today included) the habit was completed.
func (t *Tracker) GetCompletionRate(habitID string) int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.completionRate(habitID)
}

func (t *Tracker) completionRate(habitID string) int {
	h, ok := t.findHabit(habitID)
	if !ok || h.IsOneTime() {
		return 0
	}
	done := t.completedDates(habitID)
	day := t.Now()
	count := 0
	for range constants.CompletionRateWindow {
		if done[utils.FormatDate(day)] {
			count++
		}
		day = day.AddDate(0, 0, -1)
	}
	return int(math.Round(float64(count) * 100 / constants.CompletionRateWindow))
}

// GetCompletedHabitsForDate returns the habits marked complete on date, in habit order
func (t *Tracker) GetCompletedHabitsForDate(date string) []models.Habit {
	t.mu.Lock()
	defer t.mu.Unlock()

	out := []models.Habit{}
	for _, h := range t.habits {
		if t.isCompleted(h.ID, date) {
			out = append(out, h.Clone())
		}
	}
	return out
}
