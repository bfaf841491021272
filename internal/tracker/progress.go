package tracker

import (
	"math"

	"github.com/julianstephens/habitline/internal/constants"
	"github.com/julianstephens/habitline/internal/models"
	"github.com/julianstephens/habitline/internal/utils"
)

// scheduledOn reports whether h counts toward the progress of date
func (t *Tracker) scheduledOn(h models.Habit, date string) bool {
	if h.Archived || h.IsOneTime() {
		return false
	}
	day, err := utils.WeekdayOf(date)
	if err != nil {
		return false
	}
	return h.Frequency.ScheduledOn(day, t.resetDay)
}

// habitProgress is 100 when completed, otherwise live timer progress (today
// only), otherwise the day's history record, otherwise 0. Caller holds t.mu.
func (t *Tracker) habitProgress(h models.Habit, date, today string, now int64) float64 {
	if t.isCompleted(h.ID, date) {
		return constants.ProgressComplete
	}
	if date == today && h.IsTimed() {
		if timer, ok := t.timers[h.ID]; ok {
			return timer.ProgressAt(now, h.DurationMs())
		}
	}
	if rec, ok := t.historyFor(h.ID, date); ok {
		return models.ClampProgress(rec.Progress)
	}
	return 0
}

func (t *Tracker) dayProgress(date string) models.DayProgress {
	today := t.Today()
	now := t.nowMs()

	dp := models.DayProgress{Date: date}
	total := 0.0
	for _, h := range t.habits {
		if !t.scheduledOn(h, date) {
			continue
		}
		dp.Scheduled++
		if t.isCompleted(h.ID, date) {
			dp.Completed++
		}
		total += t.habitProgress(h, date, today, now)
	}
	if dp.Scheduled > 0 {
		dp.Progress = int(math.Round(total / float64(dp.Scheduled)))
	}
	return dp
}

// GetDailyProgress is the mean progress of the habits scheduled today, 0 when none are
func (t *Tracker) GetDailyProgress() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.dayProgress(t.Today()).Progress
}

// GetProgressForDate applies the daily progress rule to any date
func (t *Tracker) GetProgressForDate(date string) (models.DayProgress, error) {
	if err := validateDate(date); err != nil {
		return models.DayProgress{}, err
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.dayProgress(date), nil
}

// GetWeeklyProgress returns the last seven days, oldest first, ending today
func (t *Tracker) GetWeeklyProgress() []models.DayProgress {
	t.mu.Lock()
	defer t.mu.Unlock()

	now := t.Now()
	out := make([]models.DayProgress, 0, constants.WeeklyProgressDays)
	for i := constants.WeeklyProgressDays - 1; i >= 0; i-- {
		out = append(out, t.dayProgress(utils.FormatDate(now.AddDate(0, 0, -i))))
	}
	return out
}

// GetHabitsForDate returns the habits due on date plus one-time habits not yet
// completed before it.
func (t *Tracker) GetHabitsForDate(date string) ([]models.Habit, error) {
	if err := validateDate(date); err != nil {
		return nil, err
	}
	t.mu.Lock()
	defer t.mu.Unlock()

	out := []models.Habit{}
	for _, h := range t.habits {
		switch {
		case h.Archived:
		case h.IsOneTime():
			if !t.completedBefore(h.ID, date) {
				out = append(out, h.Clone())
			}
		case t.scheduledOn(h, date):
			out = append(out, h.Clone())
		}
	}
	return out, nil
}

func (t *Tracker) completedBefore(habitID, date string) bool {
	for _, c := range t.completions {
		if c.HabitID == habitID && c.Completed && c.Date < date {
			return true
		}
	}
	return false
}

// GetCategoryStats aggregates habits per category in category order
func (t *Tracker) GetCategoryStats() []models.CategoryStats {
	t.mu.Lock()
	defer t.mu.Unlock()

	today := t.Today()
	out := make([]models.CategoryStats, 0, len(t.categories))
	for _, c := range t.categories {
		s := models.CategoryStats{CategoryID: c.ID, Name: c.Name, Color: c.Color}
		rated, rateSum := 0, 0
		for _, h := range t.habits {
			if h.CategoryID != c.ID || h.Archived {
				continue
			}
			s.HabitCount++
			if t.isCompleted(h.ID, today) {
				s.CompletedToday++
			}
			if !h.IsOneTime() {
				rated++
				rateSum += t.completionRate(h.ID)
			}
		}
		if rated > 0 {
			s.AverageCompletionRate = int(math.Round(float64(rateSum) / float64(rated)))
		}
		out = append(out, s)
	}
	return out
}
