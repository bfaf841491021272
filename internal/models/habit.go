package models

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/julianstephens/habitline/internal/constants"
	apperrors "github.com/julianstephens/habitline/internal/errors"
	"github.com/julianstephens/habitline/internal/utils"
)

// Frequency describes on which days a habit is scheduled
type Frequency struct {
	Type constants.FrequencyType `json:"type"`
	Days []time.Weekday          `json:"days,omitempty"` // only used by custom frequencies
}

// Habit represents a recurring or one-time activity to track
type Habit struct {
	ID              string    `json:"id"`
	Name            string    `json:"name"`
	Frequency       Frequency `json:"frequency"`
	CategoryID      string    `json:"category_id"`
	Time            string    `json:"time,omitempty"` // HH:MM format
	ReminderEnabled *bool     `json:"reminder_enabled,omitempty"`
	Icon            string    `json:"icon,omitempty"`
	Duration        *int      `json:"duration,omitempty"` // minutes, set only for timed habits
	Archived        bool      `json:"archived"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// Daily returns a frequency scheduled every day
func Daily() Frequency {
	return Frequency{Type: constants.FrequencyDaily}
}

// ParseFrequency parses the CLI representation of a frequency:
// "daily", "weekly", "one-time" or "custom:mon,wed,fri".
func ParseFrequency(s string) (Frequency, error) {
	s = strings.TrimSpace(strings.ToLower(s))
	kind, days, hasDays := strings.Cut(s, ":")

	switch constants.FrequencyType(kind) {
	case constants.FrequencyDaily, constants.FrequencyWeekly, constants.FrequencyOneTime:
		if hasDays {
			return Frequency{}, fmt.Errorf("%w: %s frequency does not take days", apperrors.ErrInvalidHabit, kind)
		}
		return Frequency{Type: constants.FrequencyType(kind)}, nil
	case constants.FrequencyCustom:
		weekdays, err := utils.ParseWeekdays(days)
		if err != nil {
			return Frequency{}, fmt.Errorf("%w: %v", apperrors.ErrInvalidHabit, err)
		}
		f := Frequency{Type: constants.FrequencyCustom, Days: weekdays}.Normalize()
		return f, f.Validate()
	default:
		return Frequency{}, fmt.Errorf("%w: unknown frequency %q", apperrors.ErrInvalidHabit, s)
	}
}

// Normalize sorts and deduplicates custom days.
func (f Frequency) Normalize() Frequency {
	if f.Type != constants.FrequencyCustom {
		return Frequency{Type: f.Type}
	}
	seen := make(map[time.Weekday]bool, len(f.Days))
	days := make([]time.Weekday, 0, len(f.Days))
	for _, d := range f.Days {
		if !seen[d] {
			seen[d] = true
			days = append(days, d)
		}
	}
	sort.Slice(days, func(i, j int) bool { return days[i] < days[j] })
	return Frequency{Type: f.Type, Days: days}
}

func (f Frequency) Validate() error {
	switch f.Type {
	case constants.FrequencyDaily, constants.FrequencyWeekly, constants.FrequencyOneTime:
		return nil
	case constants.FrequencyCustom:
		if len(f.Days) == 0 {
			return fmt.Errorf("%w: custom frequency needs at least one day", apperrors.ErrInvalidHabit)
		}
		for _, d := range f.Days {
			if d < time.Sunday || d > time.Saturday {
				return fmt.Errorf("%w: weekday %d out of range 0-6", apperrors.ErrInvalidHabit, d)
			}
		}
		return nil
	default:
		return fmt.Errorf("%w: unknown frequency %q", apperrors.ErrInvalidHabit, f.Type)
	}
}

// ScheduledOn reports whether a habit with this frequency is due on the given weekday.
// Weekly habits are due once a week, on resetDay. One-time habits are never scheduled.
func (f Frequency) ScheduledOn(day, resetDay time.Weekday) bool {
	switch f.Type {
	case constants.FrequencyDaily:
		return true
	case constants.FrequencyWeekly:
		return day == resetDay
	case constants.FrequencyCustom:
		for _, d := range f.Days {
			if d == day {
				return true
			}
		}
		return false
	default:
		return false
	}
}

func (f Frequency) String() string {
	if f.Type != constants.FrequencyCustom {
		return string(f.Type)
	}
	names := make([]string, 0, len(f.Days))
	for _, d := range f.Days {
		names = append(names, strings.ToLower(d.String()[:3]))
	}
	return fmt.Sprintf("%s:%s", f.Type, strings.Join(names, ","))
}

// IsTimed reports whether the habit is tracked with a timer rather than a checkbox
func (h Habit) IsTimed() bool {
	return h.Duration != nil && *h.Duration > 0
}

// DurationMs returns the habit duration in milliseconds, or 0 for binary habits
func (h Habit) DurationMs() int64 {
	if !h.IsTimed() {
		return 0
	}
	return int64(*h.Duration) * int64(time.Minute/time.Millisecond)
}

// RemindersOn defaults to true when the flag was never set
func (h Habit) RemindersOn() bool {
	return h.ReminderEnabled == nil || *h.ReminderEnabled
}

func (h Habit) IsOneTime() bool {
	return h.Frequency.Type == constants.FrequencyOneTime
}

func (h Habit) Validate() error {
	if strings.TrimSpace(h.Name) == "" {
		return fmt.Errorf("%w: name is required", apperrors.ErrInvalidHabit)
	}
	if err := h.Frequency.Validate(); err != nil {
		return err
	}
	if h.Time != "" && !utils.ValidateTimeFormat(h.Time) {
		return fmt.Errorf("%w: invalid time %q (expected HH:MM)", apperrors.ErrInvalidHabit, h.Time)
	}
	if h.Duration != nil && *h.Duration <= 0 {
		return fmt.Errorf("%w: duration must be a positive number of minutes", apperrors.ErrInvalidHabit)
	}
	return nil
}

// Clone returns a deep copy so callers cannot mutate tracker-owned pointers
func (h Habit) Clone() Habit {
	c := h
	if h.ReminderEnabled != nil {
		v := *h.ReminderEnabled
		c.ReminderEnabled = &v
	}
	if h.Duration != nil {
		v := *h.Duration
		c.Duration = &v
	}
	if h.Frequency.Days != nil {
		c.Frequency.Days = append([]time.Weekday(nil), h.Frequency.Days...)
	}
	return c
}
