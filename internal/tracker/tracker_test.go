package tracker

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/julianstephens/habitline/internal/clock"
	"github.com/julianstephens/habitline/internal/constants"
	"github.com/julianstephens/habitline/internal/models"
	"github.com/julianstephens/habitline/internal/notifier"
	"github.com/julianstephens/habitline/internal/storage"
)

// Wednesday
var baseTime = time.Date(2026, time.June, 10, 12, 0, 0, 0, time.UTC)

type recordingNotifier struct {
	mu     sync.Mutex
	events []notifier.Completion
}

func (r *recordingNotifier) NotifyCompletion(_ context.Context, c notifier.Completion) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, c)
	return nil
}

func (r *recordingNotifier) Events() []notifier.Completion {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]notifier.Completion(nil), r.events...)
}

type fixture struct {
	tr    *Tracker
	clock *clock.Fake
	store *storage.MemoryStore
	notes *recordingNotifier
}

func newFixture(t *testing.T, opts ...Option) *fixture {
	t.Helper()
	return newFixtureWithStore(t, storage.NewMemoryStore(), clock.NewFake(baseTime), opts...)
}

func newFixtureWithStore(t *testing.T, store *storage.MemoryStore, clk *clock.Fake, opts ...Option) *fixture {
	t.Helper()
	notes := &recordingNotifier{}
	base := []Option{WithClock(clk), WithLocation(time.UTC), WithNotifier(notes)}
	tr := New(store, append(base, opts...)...)
	if err := tr.Hydrate(context.Background()); err != nil {
		t.Fatalf("Hydrate failed: %v", err)
	}
	t.Cleanup(func() { _ = tr.Close() })
	return &fixture{tr: tr, clock: clk, store: store, notes: notes}
}

func (f *fixture) flush(t *testing.T) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := f.tr.Flush(ctx); err != nil {
		t.Fatalf("Flush failed: %v", err)
	}
}

func (f *fixture) addHabit(t *testing.T, h models.Habit) models.Habit {
	t.Helper()
	if h.Frequency.Type == "" {
		h.Frequency = models.Daily()
	}
	created, err := f.tr.AddHabit(h)
	if err != nil {
		t.Fatalf("AddHabit(%q) failed: %v", h.Name, err)
	}
	return created
}

func (f *fixture) date(daysAgo int) string {
	return baseTime.AddDate(0, 0, -daysAgo).Format(constants.DateFormat)
}

func TestHydrateFirstRun(t *testing.T) {
	f := newFixture(t)

	cats := f.tr.ListCategories()
	if len(cats) != len(constants.DefaultCategories) {
		t.Fatalf("expected %d default categories, got %d", len(constants.DefaultCategories), len(cats))
	}
	if got := f.tr.ListHabits(true); len(got) != 0 {
		t.Errorf("expected no habits without sample data, got %d", len(got))
	}
	if got := f.tr.Username(); got != constants.DefaultUsername {
		t.Errorf("expected default username, got %q", got)
	}
	if !f.tr.Settings().RemindersEnabled {
		t.Error("expected reminders enabled by default")
	}

	f.flush(t)
	data, err := f.store.LoadBlob(context.Background(), constants.KeyBootstrapped)
	if err != nil {
		t.Fatalf("bootstrapped marker not written: %v", err)
	}
	if string(data) != "true" {
		t.Errorf("unexpected marker %s", data)
	}
}

func TestHydrateSampleDataOnlyOnce(t *testing.T) {
	store := storage.NewMemoryStore()
	clk := clock.NewFake(baseTime)

	first := newFixtureWithStore(t, store, clk, WithSampleData(true))
	habits := first.tr.ListHabits(true)
	if len(habits) == 0 {
		t.Fatal("expected sample habits")
	}
	if err := first.tr.DeleteHabit(habits[0].ID); err != nil {
		t.Fatalf("DeleteHabit failed: %v", err)
	}
	first.flush(t)

	second := newFixtureWithStore(t, store, clk, WithSampleData(true))
	if got := len(second.tr.ListHabits(true)); got != len(habits)-1 {
		t.Errorf("expected %d habits after reload, got %d", len(habits)-1, got)
	}
}

func TestHydrateRoundTrip(t *testing.T) {
	store := storage.NewMemoryStore()
	clk := clock.NewFake(baseTime)

	a := newFixtureWithStore(t, store, clk)
	h := a.addHabit(t, models.Habit{Name: "Stretch", Duration: intPtr(10)})
	if _, err := a.tr.ToggleHabitCompletion(h.ID, a.date(1)); err != nil {
		t.Fatal(err)
	}
	if err := a.tr.SetCompletionNote(h.ID, a.date(1), "felt good"); err != nil {
		t.Fatal(err)
	}
	a.tr.SaveTimerProgress(h.ID, 40)
	a.tr.SetUsername("sam")
	a.tr.SetGlobalRemindersEnabled(false)
	a.flush(t)

	b := newFixtureWithStore(t, store, clk)
	got, ok := b.tr.GetHabit(h.ID)
	if !ok {
		t.Fatal("habit not reloaded")
	}
	if got.Name != "Stretch" || got.Duration == nil || *got.Duration != 10 {
		t.Errorf("unexpected habit after reload: %+v", got)
	}
	if !b.tr.GetHabitCompletionStatus(h.ID, a.date(1)) {
		t.Error("completion not reloaded")
	}
	if entry, _ := b.tr.GetCompletionEntry(h.ID, a.date(1)); entry.Notes != "felt good" {
		t.Errorf("note not reloaded: %+v", entry)
	}
	if hist := b.tr.GetHabitHistory(h.ID); len(hist) != 1 || hist[0].Progress != 40 {
		t.Errorf("history not reloaded: %+v", hist)
	}
	if b.tr.Username() != "sam" {
		t.Errorf("username not reloaded: %q", b.tr.Username())
	}
	if b.tr.Settings().RemindersEnabled {
		t.Error("settings not reloaded")
	}
}

func TestHydrateCorruptKeyKeepsDefaults(t *testing.T) {
	store := storage.NewMemoryStore()
	ctx := context.Background()
	cats, _ := json.Marshal([]models.Category{{ID: "c1", Name: "Only", Color: "red"}})
	if err := store.SaveBlob(ctx, constants.KeyCategories, cats); err != nil {
		t.Fatal(err)
	}
	if err := store.SaveBlob(ctx, constants.KeyHabits, []byte("{not json")); err != nil {
		t.Fatal(err)
	}

	f := newFixtureWithStore(t, store, clock.NewFake(baseTime))
	if got := f.tr.ListHabits(true); len(got) != 0 {
		t.Errorf("expected empty habits, got %d", len(got))
	}
	if got := f.tr.ListCategories(); len(got) != 1 || got[0].ID != "c1" {
		t.Errorf("expected stored categories to survive, got %+v", got)
	}
}

func TestHydrateWrongFieldTypeKeepsDefaults(t *testing.T) {
	ctx := context.Background()
	walk, _ := json.Marshal(models.Habit{ID: "h1", Name: "Walk", Frequency: models.Daily()})

	tests := []struct {
		name  string
		key   string
		value string
	}{
		{"habit with numeric name", constants.KeyHabits, `[` + string(walk) + `,{"name":123}]`},
		{"settings with string flag", constants.KeySettings, `{"reminders_enabled":"no"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := storage.NewMemoryStore()
			if err := store.SaveBlob(ctx, tt.key, []byte(tt.value)); err != nil {
				t.Fatal(err)
			}
			f := newFixtureWithStore(t, store, clock.NewFake(baseTime))
			if got := f.tr.ListHabits(true); len(got) != 0 {
				t.Errorf("expected no habits from a corrupt blob, got %+v", got)
			}
			if !f.tr.Settings().RemindersEnabled {
				t.Error("expected default settings")
			}
		})
	}
}

func TestHydrateCorruptTimerDoesNotComplete(t *testing.T) {
	store := storage.NewMemoryStore()
	ctx := context.Background()
	duration := 30
	habits, _ := json.Marshal([]models.Habit{{ID: "h1", Name: "Read", Frequency: models.Daily(), Duration: &duration}})
	if err := store.SaveBlob(ctx, constants.KeyHabits, habits); err != nil {
		t.Fatal(err)
	}
	timers := []byte(`{"h1":{"habit_id":"h1","start_timestamp":"oops","is_active":true}}`)
	if err := store.SaveBlob(ctx, constants.KeyTimers, timers); err != nil {
		t.Fatal(err)
	}

	f := newFixtureWithStore(t, store, clock.NewFake(baseTime))
	if state := f.tr.GetHabitTimerState("h1"); state != nil {
		t.Fatalf("expected no timer, got %+v", state)
	}
	if finished := f.tr.Tick(); len(finished) != 0 {
		t.Errorf("Tick finished %v", finished)
	}
	if f.tr.GetHabitCompletionStatus("h1", f.tr.Today()) {
		t.Error("habit completed from a corrupt timer")
	}
}

func TestHydrateRepairsDanglingCategory(t *testing.T) {
	store := storage.NewMemoryStore()
	ctx := context.Background()
	cats, _ := json.Marshal([]models.Category{{ID: "c1", Name: "Only", Color: "red"}})
	habits, _ := json.Marshal([]models.Habit{{ID: "h1", Name: "Walk", Frequency: models.Daily(), CategoryID: "gone"}})
	_ = store.SaveBlob(ctx, constants.KeyCategories, cats)
	_ = store.SaveBlob(ctx, constants.KeyHabits, habits)

	f := newFixtureWithStore(t, store, clock.NewFake(baseTime))
	h, ok := f.tr.GetHabit("h1")
	if !ok {
		t.Fatal("habit missing")
	}
	if h.CategoryID != "c1" {
		t.Errorf("expected habit moved to c1, got %q", h.CategoryID)
	}
}

func TestHydrateCanceledContext(t *testing.T) {
	tr := New(storage.NewMemoryStore(), WithClock(clock.NewFake(baseTime)))
	defer tr.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := tr.Hydrate(ctx); !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestPersistenceFailureIsIsolated(t *testing.T) {
	f := newFixture(t)
	f.store.SetFailure(constants.KeyCompletions, errors.New("disk full"))

	h := f.addHabit(t, models.Habit{Name: "Journal"})
	done, err := f.tr.ToggleHabitCompletion(h.ID, f.tr.Today())
	if err != nil || !done {
		t.Fatalf("toggle should succeed in memory, got %v %v", done, err)
	}
	f.flush(t)

	if f.tr.PersistenceError(constants.KeyCompletions) == nil {
		t.Error("expected completion write failure to be recorded")
	}
	if err := f.tr.PersistenceError(constants.KeyHabits); err != nil {
		t.Errorf("habits write should not fail: %v", err)
	}
	data, err := f.store.LoadBlob(context.Background(), constants.KeyHabits)
	if err != nil {
		t.Fatalf("habits not persisted: %v", err)
	}
	var stored []models.Habit
	if err := json.Unmarshal(data, &stored); err != nil || len(stored) != 1 {
		t.Errorf("unexpected stored habits %s (%v)", data, err)
	}
	if !f.tr.GetHabitCompletionStatus(h.ID, f.tr.Today()) {
		t.Error("in-memory completion lost")
	}
}

func TestNotificationGating(t *testing.T) {
	off := false

	tests := []struct {
		name       string
		reminders  bool
		habitFlag  *bool
		wantEvents int
	}{
		{"enabled", true, nil, 1},
		{"habit reminders off", true, &off, 0},
		{"global reminders off", false, nil, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			f.tr.SetGlobalRemindersEnabled(tt.reminders)
			h := f.addHabit(t, models.Habit{Name: "Water", ReminderEnabled: tt.habitFlag})

			if _, err := f.tr.ToggleHabitCompletion(h.ID, f.tr.Today()); err != nil {
				t.Fatal(err)
			}
			f.flush(t)

			events := f.notes.Events()
			if len(events) != tt.wantEvents {
				t.Fatalf("expected %d events, got %d", tt.wantEvents, len(events))
			}
			if tt.wantEvents > 0 && (events[0].HabitID != h.ID || events[0].HabitName != "Water" || events[0].Date != f.tr.Today()) {
				t.Errorf("unexpected event %+v", events[0])
			}
		})
	}
}

func TestNotificationOnlyOnTransitionToDone(t *testing.T) {
	f := newFixture(t)
	h := f.addHabit(t, models.Habit{Name: "Floss"})
	today := f.tr.Today()

	_, _ = f.tr.ToggleHabitCompletion(h.ID, today) // done
	_ = f.tr.SetHabitCompletion(h.ID, today, true) // already done
	_, _ = f.tr.ToggleHabitCompletion(h.ID, today) // undone
	_, _ = f.tr.ToggleHabitCompletion(h.ID, today) // done again
	f.flush(t)

	if got := len(f.notes.Events()); got != 2 {
		t.Errorf("expected 2 notifications, got %d", got)
	}
}
