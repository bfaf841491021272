package tracker

import (
	"sort"

	"github.com/julianstephens/habitline/internal/constants"
	"github.com/julianstephens/habitline/internal/logger"
	"github.com/julianstephens/habitline/internal/models"
)

// Timer transitions are no-ops when the habit or timer is not in the right
// state; the bool result reports whether anything changed.

// StartHabitTimer starts a fresh timer for a timed habit. A timer already
// running for the habit is replaced and its progress kept as today's history.
func (t *Tracker) StartHabitTimer(habitID string) bool {
	started := false
	t.update(func() {
		h, ok := t.findHabit(habitID)
		if !ok || !h.IsTimed() {
			return
		}
		now := t.nowMs()
		if old, ok := t.timers[habitID]; ok {
			t.upsertHistory(habitID, t.Today(), old.ProgressAt(now, h.DurationMs()), false)
			t.persistHistory()
		}
		timer := models.NewTimerState(habitID, now)
		if t.appState == constants.AppStateBackground {
			timer.PausedAt = &now
		}
		t.timers[habitID] = timer
		t.persistTimers()
		started = true
	})
	return started
}

func (t *Tracker) PauseHabitTimer(habitID string) bool {
	paused := false
	t.update(func() {
		timer, ok := t.timers[habitID]
		if !ok || !timer.IsActive {
			return
		}
		now := t.nowMs()
		if h, ok := t.findHabit(habitID); ok {
			timer.Progress = timer.ProgressAt(now, h.DurationMs())
		}
		// a backgrounded timer is already frozen at its PausedAt
		if timer.PausedAt == nil {
			timer.PausedAt = &now
		}
		timer.IsActive = false
		t.persistTimers()
		paused = true
	})
	return paused
}

func (t *Tracker) ResumeHabitTimer(habitID string) bool {
	resumed := false
	t.update(func() {
		timer, ok := t.timers[habitID]
		if !ok || !timer.IsPaused() {
			return
		}
		now := t.nowMs()
		foldPausedTime(timer, now)
		timer.IsActive = true
		if t.appState == constants.AppStateBackground {
			timer.PausedAt = &now
		}
		t.persistTimers()
		resumed = true
	})
	return resumed
}

// StopHabitTimer records the timer's progress as today's history and removes
// it. With markCompleted the habit is also completed for today.
func (t *Tracker) StopHabitTimer(habitID string, markCompleted bool) bool {
	stopped := false
	t.update(func() {
		timer, ok := t.timers[habitID]
		if !ok {
			return
		}
		today := t.Today()
		progress := timer.Progress
		h, found := t.findHabit(habitID)
		if found {
			progress = timer.ProgressAt(t.nowMs(), h.DurationMs())
		}
		t.upsertHistory(habitID, today, progress, markCompleted)
		if markCompleted && found {
			t.setCompleted(h, today, true)
		}
		delete(t.timers, habitID)
		t.persistTimers()
		t.persistHistory()
		stopped = true
	})
	return stopped
}

// Tick refreshes the progress of every timer and finalizes running timers that
// reached 100%. It returns the ids of the habits it completed.
func (t *Tracker) Tick() []string {
	var finished []string
	t.update(func() {
		now := t.nowMs()
		changed := false

		// collect first, mutate after the iteration
		var due []models.Habit
		for id, timer := range t.timers {
			h, ok := t.findHabit(id)
			if !ok || !h.IsTimed() {
				logger.Debug("Dropping timer for missing or untimed habit", "habit", id)
				delete(t.timers, id)
				changed = true
				continue
			}
			timer.Progress = timer.ProgressAt(now, h.DurationMs())
			if timer.IsRunning() && timer.Progress >= constants.ProgressComplete {
				due = append(due, h)
			}
		}
		sort.Slice(due, func(i, j int) bool { return due[i].ID < due[j].ID })

		today := t.Today()
		for _, h := range due {
			t.setCompleted(h, today, true)
			t.upsertHistory(h.ID, today, constants.ProgressComplete, true)
			delete(t.timers, h.ID)
			finished = append(finished, h.ID)
			logger.Info("Timer finished", "habit", h.Name)
		}
		if len(due) > 0 {
			t.persistHistory()
			changed = true
		}
		if changed {
			t.persistTimers()
		}
	})
	return finished
}

// SetAppState reports the app moving between foreground and background.
// Running timers are frozen while backgrounded so that time spent in the
// background is never counted. Repeating the current state is a no-op.
func (t *Tracker) SetAppState(state constants.AppState) {
	t.update(func() {
		if state == t.appState {
			return
		}
		if state != constants.AppStateActive && state != constants.AppStateBackground {
			logger.Warn("Ignoring unknown app state", "state", state)
			return
		}
		t.appState = state
		now := t.nowMs()
		changed := false
		for _, timer := range t.timers {
			switch state {
			case constants.AppStateBackground:
				if timer.IsRunning() {
					p := now
					timer.PausedAt = &p
					changed = true
				}
			case constants.AppStateActive:
				if timer.IsBackgrounded() {
					foldPausedTime(timer, now)
					changed = true
				}
			}
		}
		if changed {
			t.persistTimers()
		}
	})
}

func (t *Tracker) AppState() constants.AppState {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.appState
}

// GetHabitTimerState returns a copy of the habit's timer with live progress, or nil
func (t *Tracker) GetHabitTimerState(habitID string) *models.TimerState {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.timerSnapshot(habitID, t.nowMs())
}

func (t *Tracker) timerSnapshot(habitID string, now int64) *models.TimerState {
	timer, ok := t.timers[habitID]
	if !ok {
		return nil
	}
	c := timer.Clone()
	if h, ok := t.findHabit(habitID); ok {
		c.Progress = timer.ProgressAt(now, h.DurationMs())
	}
	return c
}

// ListTimers returns every timer ordered by start time
func (t *Tracker) ListTimers() []*models.TimerState {
	t.mu.Lock()
	defer t.mu.Unlock()

	now := t.nowMs()
	out := make([]*models.TimerState, 0, len(t.timers))
	for id := range t.timers {
		out = append(out, t.timerSnapshot(id, now))
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].StartTimestamp != out[j].StartTimestamp {
			return out[i].StartTimestamp < out[j].StartTimestamp
		}
		return out[i].HabitID < out[j].HabitID
	})
	return out
}

// SaveTimerProgress records partial progress for today without touching the timer
func (t *Tracker) SaveTimerProgress(habitID string, progress float64) bool {
	saved := false
	t.update(func() {
		if t.habitIndex(habitID) < 0 {
			return
		}
		t.upsertHistory(habitID, t.Today(), models.ClampProgress(progress), false)
		t.persistHistory()
		saved = true
	})
	return saved
}

// GetHabitHistory returns the habit's history records ordered by date
func (t *Tracker) GetHabitHistory(habitID string) []models.HistoryRecord {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]models.HistoryRecord{}, t.history[habitID]...)
}

// upsertHistory writes the record for (habitID, date), keeping the list sorted. Caller holds t.mu.
func (t *Tracker) upsertHistory(habitID, date string, progress float64, completed bool) {
	rec := models.HistoryRecord{Date: date, Progress: models.ClampProgress(progress), Completed: completed}
	records := t.history[habitID]
	i := sort.Search(len(records), func(i int) bool { return records[i].Date >= date })
	if i < len(records) && records[i].Date == date {
		records[i] = rec
		return
	}
	records = append(records, models.HistoryRecord{})
	copy(records[i+1:], records[i:])
	records[i] = rec
	t.history[habitID] = records
}

func (t *Tracker) historyFor(habitID, date string) (models.HistoryRecord, bool) {
	for _, rec := range t.history[habitID] {
		if rec.Date == date {
			return rec, true
		}
	}
	return models.HistoryRecord{}, false
}

// foldPausedTime adds the frozen interval to the paused total and unfreezes the timer
func foldPausedTime(timer *models.TimerState, now int64) {
	if timer.PausedAt == nil {
		return
	}
	if gap := now - *timer.PausedAt; gap > 0 {
		timer.TotalPausedTime += gap
	}
	timer.PausedAt = nil
}
