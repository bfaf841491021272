// Package notifier delivers habit completion events to the outside world.
package notifier

import (
	"context"
	"errors"
	"time"
)

// Completion describes a habit that was marked complete for a day
type Completion struct {
	HabitID     string    `json:"habit_id"`
	HabitName   string    `json:"habit_name"`
	Date        string    `json:"date"`
	CompletedAt time.Time `json:"completed_at"`
}

// Dispatcher delivers completion events
type Dispatcher interface {
	NotifyCompletion(ctx context.Context, c Completion) error
}

// Noop discards every event
type Noop struct{}

func (Noop) NotifyCompletion(context.Context, Completion) error { return nil }

// Multi fans an event out to every dispatcher and joins their errors
type Multi []Dispatcher

func (m Multi) NotifyCompletion(ctx context.Context, c Completion) error {
	var errs []error
	for _, d := range m {
		if err := d.NotifyCompletion(ctx, c); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
