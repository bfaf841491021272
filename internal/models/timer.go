package models

import "math"

// TimerState tracks a running, paused or backgrounded timer for a timed habit.
// All timestamps are milliseconds since the Unix epoch.
//
// A non-nil PausedAt freezes elapsed time. IsActive distinguishes the two
// reasons for that: false means the user paused the timer, true means the
// app went to the background while the timer was running.
type TimerState struct {
	HabitID         string  `json:"habit_id"`
	StartTimestamp  int64   `json:"start_timestamp"`
	PausedAt        *int64  `json:"paused_at"`
	TotalPausedTime int64   `json:"total_paused_time"`
	IsActive        bool    `json:"is_active"`
	Progress        float64 `json:"progress"`
}

// NewTimerState returns a fresh running timer started at now
func NewTimerState(habitID string, now int64) *TimerState {
	return &TimerState{
		HabitID:        habitID,
		StartTimestamp: now,
		IsActive:       true,
	}
}

// IsPaused reports a user-initiated pause
func (t *TimerState) IsPaused() bool {
	return !t.IsActive && t.PausedAt != nil
}

// IsBackgrounded reports a running timer frozen by the app going to the background
func (t *TimerState) IsBackgrounded() bool {
	return t.IsActive && t.PausedAt != nil
}

// IsRunning reports a timer whose elapsed time is currently advancing
func (t *TimerState) IsRunning() bool {
	return t.IsActive && t.PausedAt == nil
}

// Elapsed returns the effective elapsed milliseconds at now, excluding paused time
func (t *TimerState) Elapsed(now int64) int64 {
	ref := now
	if t.PausedAt != nil {
		ref = *t.PausedAt
	}
	elapsed := ref - t.StartTimestamp - t.TotalPausedTime
	if elapsed < 0 {
		return 0
	}
	return elapsed
}

// ProgressAt derives the completion percentage at now for a habit of durationMs
func (t *TimerState) ProgressAt(now, durationMs int64) float64 {
	if durationMs <= 0 {
		return 0
	}
	return ClampProgress(float64(t.Elapsed(now)) / float64(durationMs) * 100)
}

// Clone returns a deep copy safe to hand out to callers
func (t *TimerState) Clone() *TimerState {
	if t == nil {
		return nil
	}
	c := *t
	if t.PausedAt != nil {
		p := *t.PausedAt
		c.PausedAt = &p
	}
	return &c
}

// ClampProgress bounds a percentage to [0, 100]
func ClampProgress(p float64) float64 {
	if math.IsNaN(p) || p < 0 {
		return 0
	}
	return math.Min(p, 100)
}
