// Package tracker is the habit store and timer engine. A Tracker owns every
// habit collection in memory and mirrors changes to a storage.Provider.
package tracker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/julianstephens/habitline/internal/clock"
	"github.com/julianstephens/habitline/internal/constants"
	apperrors "github.com/julianstephens/habitline/internal/errors"
	"github.com/julianstephens/habitline/internal/logger"
	"github.com/julianstephens/habitline/internal/models"
	"github.com/julianstephens/habitline/internal/notifier"
	"github.com/julianstephens/habitline/internal/persist"
	"github.com/julianstephens/habitline/internal/storage"
	"github.com/julianstephens/habitline/internal/utils"
)

const notifyTimeout = 5 * time.Second

// Option configures a Tracker
type Option func(*Tracker)

func WithClock(c clock.Clock) Option {
	return func(t *Tracker) { t.clock = c }
}

// WithLocation sets the timezone that decides which calendar day "today" is
func WithLocation(loc *time.Location) Option {
	return func(t *Tracker) { t.loc = loc }
}

// WithWeeklyResetDay sets the weekday on which weekly habits are due
func WithWeeklyResetDay(day time.Weekday) Option {
	return func(t *Tracker) { t.resetDay = day }
}

func WithNotifier(d notifier.Dispatcher) Option {
	return func(t *Tracker) { t.notifier = d }
}

// WithSampleData seeds demo habits and history on first run
func WithSampleData(enabled bool) Option {
	return func(t *Tracker) { t.seedSample = enabled }
}

type Tracker struct {
	mu sync.Mutex

	store    storage.Provider
	mirror   *persist.Mirror
	clock    clock.Clock
	loc      *time.Location
	resetDay time.Weekday
	notifier notifier.Dispatcher

	seedSample bool
	appState   constants.AppState

	habits       []models.Habit
	categories   []models.Category
	completions  []models.CompletionEntry
	timers       map[string]*models.TimerState
	history      map[string][]models.HistoryRecord
	username     string
	settings     models.Settings
	bootstrapped bool

	// completions waiting to be dispatched once the lock is released
	outbox   []notifier.Completion
	inflight sync.WaitGroup
}

// New creates a Tracker backed by store. Call Hydrate before use and Close when done.
func New(store storage.Provider, opts ...Option) *Tracker {
	t := &Tracker{
		store:    store,
		clock:    clock.Real{},
		loc:      time.Local,
		resetDay: constants.DefaultWeeklyResetDay,
		notifier: notifier.Noop{},
		appState: constants.AppStateActive,
		timers:   make(map[string]*models.TimerState),
		history:  make(map[string][]models.HistoryRecord),
		username: constants.DefaultUsername,
		settings: models.Settings{RemindersEnabled: constants.DefaultRemindersEnabled},
	}
	for _, opt := range opts {
		opt(t)
	}
	t.mirror = persist.NewMirror(store)
	return t
}

// Hydrate loads every collection from storage. Missing or unreadable keys keep
// their defaults. On first run default categories, and optionally sample data,
// are seeded.
func (t *Tracker) Hydrate(ctx context.Context) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	var (
		habits      []models.Habit
		categories  []models.Category
		completions []models.CompletionEntry
		timers      map[string]*models.TimerState
		history     map[string][]models.HistoryRecord
		settings    = t.settings
		username    = t.username
	)
	loadCollection(ctx, t.store, constants.KeyHabits, &habits)
	loadCollection(ctx, t.store, constants.KeyCategories, &categories)
	loadCollection(ctx, t.store, constants.KeyCompletions, &completions)
	loadCollection(ctx, t.store, constants.KeyTimers, &timers)
	loadCollection(ctx, t.store, constants.KeyHistory, &history)
	loadCollection(ctx, t.store, constants.KeySettings, &settings)
	loadCollection(ctx, t.store, constants.KeyUsername, &username)
	loadCollection(ctx, t.store, constants.KeyBootstrapped, &t.bootstrapped)

	if err := ctx.Err(); err != nil {
		return err
	}

	t.habits = habits
	t.categories = categories
	t.completions = completions
	t.settings = settings
	t.username = username
	if timers != nil {
		t.timers = timers
	}
	if history != nil {
		t.history = history
	}
	for id, timer := range t.timers {
		if timer == nil {
			delete(t.timers, id)
		}
	}

	if !t.bootstrapped {
		if t.seedSample && len(t.habits) == 0 {
			t.seedSampleData()
		}
		t.bootstrapped = true
		t.mirror.Enqueue(constants.KeyBootstrapped, true)
	}
	if len(t.categories) == 0 {
		t.seedDefaultCategories()
	}
	t.repairCategoryRefs()
	t.resumeBackgroundedTimers()

	logger.Debug("Tracker hydrated", "habits", len(t.habits), "categories", len(t.categories), "timers", len(t.timers))
	return nil
}

// loadCollection decodes key into a copy of dst and assigns it only when the
// whole blob decodes. Fields absent from the blob keep dst's values; callers
// pass nil maps and slices so nothing is shared with the copy.
func loadCollection[T any](ctx context.Context, store storage.Provider, key string, dst *T) {
	data, err := store.LoadBlob(ctx, key)
	if errors.Is(err, storage.ErrNotFound) {
		return
	}
	if err != nil {
		logger.Warn("Failed to load collection, using defaults", "key", key, "error", err)
		return
	}
	v := *dst
	if err := json.Unmarshal(data, &v); err != nil {
		logger.Warn("Failed to decode collection, using defaults", "key", key, "error", err)
		return
	}
	*dst = v
}

// resumeBackgroundedTimers folds the gap of timers left backgrounded by a previous process
func (t *Tracker) resumeBackgroundedTimers() {
	now := t.nowMs()
	changed := false
	for _, timer := range t.timers {
		if timer.IsBackgrounded() {
			foldPausedTime(timer, now)
			changed = true
		}
	}
	if changed {
		t.persistTimers()
	}
}

// repairCategoryRefs points habits with a dangling category at the first category
func (t *Tracker) repairCategoryRefs() {
	if len(t.categories) == 0 {
		return
	}
	fallback := t.categories[0].ID
	changed := false
	for i := range t.habits {
		if t.categoryIndex(t.habits[i].CategoryID) < 0 {
			t.habits[i].CategoryID = fallback
			changed = true
		}
	}
	if changed {
		t.persistHabits()
	}
}

// Flush waits for queued writes and notifications to finish
func (t *Tracker) Flush(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		t.inflight.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-ctx.Done():
		return ctx.Err()
	}
	return t.mirror.Flush(ctx)
}

// Close flushes pending writes and stops the background writer. The storage
// provider stays open; closing it is the caller's job.
func (t *Tracker) Close() error {
	t.inflight.Wait()
	return t.mirror.Close()
}

// PersistenceError reports the last failed write for a collection key, if any
func (t *Tracker) PersistenceError(key string) error {
	return t.mirror.LastError(key)
}

// Now returns the tracker's current time in its configured location
func (t *Tracker) Now() time.Time {
	return t.clock.Now().In(t.loc)
}

// Today returns the current calendar day as YYYY-MM-DD
func (t *Tracker) Today() string {
	return utils.FormatDate(t.Now())
}

func (t *Tracker) nowMs() int64 {
	return t.clock.Now().UnixMilli()
}

// WeeklyResetDay returns the weekday weekly habits are due on
func (t *Tracker) WeeklyResetDay() time.Weekday {
	return t.resetDay
}

// update runs fn under the lock and dispatches any completions it queued afterwards
func (t *Tracker) update(fn func()) {
	t.mu.Lock()
	fn()
	outbox := t.outbox
	t.outbox = nil
	t.mu.Unlock()

	t.dispatch(outbox)
}

func (t *Tracker) dispatch(events []notifier.Completion) {
	for _, ev := range events {
		t.inflight.Add(1)
		go func(ev notifier.Completion) {
			defer t.inflight.Done()
			ctx, cancel := context.WithTimeout(context.Background(), notifyTimeout)
			defer cancel()
			if err := t.notifier.NotifyCompletion(ctx, ev); err != nil {
				logger.Warn("Failed to deliver completion notification", "habit", ev.HabitID, "error", err)
			}
		}(ev)
	}
}

// queueCompletion records a completion notification unless reminders are off.
// Caller holds t.mu.
func (t *Tracker) queueCompletion(habit models.Habit, date string) {
	if !t.settings.RemindersEnabled || !habit.RemindersOn() {
		return
	}
	t.outbox = append(t.outbox, notifier.Completion{
		HabitID:     habit.ID,
		HabitName:   habit.Name,
		Date:        date,
		CompletedAt: t.clock.Now(),
	})
}

func validateDate(date string) error {
	if !utils.ValidateDate(date) {
		return fmt.Errorf("%w: %q (expected YYYY-MM-DD)", apperrors.ErrInvalidDate, date)
	}
	return nil
}

// Snapshot helpers. Caller holds t.mu.

func (t *Tracker) persistHabits()      { t.mirror.Enqueue(constants.KeyHabits, t.habits) }
func (t *Tracker) persistCategories()  { t.mirror.Enqueue(constants.KeyCategories, t.categories) }
func (t *Tracker) persistCompletions() { t.mirror.Enqueue(constants.KeyCompletions, t.completions) }
func (t *Tracker) persistTimers()      { t.mirror.Enqueue(constants.KeyTimers, t.timers) }
func (t *Tracker) persistHistory()     { t.mirror.Enqueue(constants.KeyHistory, t.history) }
func (t *Tracker) persistSettings()    { t.mirror.Enqueue(constants.KeySettings, t.settings) }
func (t *Tracker) persistUsername()    { t.mirror.Enqueue(constants.KeyUsername, t.username) }
