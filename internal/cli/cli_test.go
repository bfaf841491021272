package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/julianstephens/habitline/internal/clock"
	"github.com/julianstephens/habitline/internal/config"
	"github.com/julianstephens/habitline/internal/constants"
	"github.com/julianstephens/habitline/internal/models"
	"github.com/julianstephens/habitline/internal/storage"
	"github.com/julianstephens/habitline/internal/tracker"
)

// Wednesday
var baseTime = time.Date(2026, time.June, 10, 12, 0, 0, 0, time.UTC)

type testEnv struct {
	ctx   *Context
	out   *bytes.Buffer
	clock *clock.Fake
	store *storage.MemoryStore
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	out := &bytes.Buffer{}
	clk := clock.NewFake(baseTime)
	store := storage.NewMemoryStore()
	ctx := &Context{
		Config: config.Config{
			Timezone:       "UTC",
			WeeklyResetDay: time.Saturday,
			TickInterval:   time.Second,
			TokenTTL:       time.Hour,
		},
		Store: store,
		Clock: clk,
		Out:   out,
		In:    strings.NewReader(""),
	}
	t.Cleanup(func() { _ = ctx.Close() })
	return &testEnv{ctx: ctx, out: out, clock: clk, store: store}
}

func (e *testEnv) tracker(t *testing.T) *tracker.Tracker {
	t.Helper()
	tr, err := e.ctx.Tracker()
	if err != nil {
		t.Fatalf("Tracker() failed: %v", err)
	}
	return tr
}

// output returns everything written so far and resets the buffer
func (e *testEnv) output() string {
	s := e.out.String()
	e.out.Reset()
	return s
}

func (e *testEnv) addHabit(t *testing.T, name string, duration int) models.Habit {
	t.Helper()
	h := models.Habit{Name: name, Frequency: models.Daily()}
	if duration > 0 {
		h.Duration = &duration
	}
	added, err := e.tracker(t).AddHabit(h)
	if err != nil {
		t.Fatalf("AddHabit(%q) failed: %v", name, err)
	}
	return added
}

func assertContains(t *testing.T, got string, want ...string) {
	t.Helper()
	for _, w := range want {
		if !strings.Contains(got, w) {
			t.Errorf("output missing %q:\n%s", w, got)
		}
	}
}

func TestTrackerIsOpenedOnce(t *testing.T) {
	env := newTestEnv(t)
	first := env.tracker(t)
	second := env.tracker(t)
	if first != second {
		t.Error("Tracker() should reuse the hydrated tracker")
	}
	if len(first.ListCategories()) == 0 {
		t.Error("expected default categories after hydrate")
	}
}

func TestResolveHabit(t *testing.T) {
	env := newTestEnv(t)
	read := env.addHabit(t, "Read", 0)
	env.addHabit(t, "Stretch", 0)
	env.addHabit(t, "stretch", 0)
	tr := env.tracker(t)

	tests := []struct {
		name    string
		ref     string
		wantID  string
		wantErr bool
	}{
		{"full id", read.ID, read.ID, false},
		{"id prefix", read.ID[:6], read.ID, false},
		{"name ignores case", "READ", read.ID, false},
		{"name with spaces", "  Read ", read.ID, false},
		{"ambiguous name", "Stretch", "", true},
		{"unknown", "Juggle", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, err := resolveHabit(tr, tt.ref)
			if (err != nil) != tt.wantErr {
				t.Fatalf("resolveHabit(%q) error = %v, wantErr %v", tt.ref, err, tt.wantErr)
			}
			if !tt.wantErr && h.ID != tt.wantID {
				t.Errorf("resolveHabit(%q) = %s, want %s", tt.ref, h.ID, tt.wantID)
			}
		})
	}
}

func TestResolveHabitAmbiguityMessage(t *testing.T) {
	env := newTestEnv(t)
	habits, _ := json.Marshal([]models.Habit{
		{ID: "abcd1111", Name: "Run", Frequency: models.Daily()},
		{ID: "abcd2222", Name: "Swim", Frequency: models.Daily()},
		{ID: "ef001111", Name: "Walk", Frequency: models.Daily()},
		{ID: "ef002222", Name: "walk", Frequency: models.Daily()},
	})
	if err := env.store.SaveBlob(context.Background(), constants.KeyHabits, habits); err != nil {
		t.Fatal(err)
	}
	tr := env.tracker(t)

	tests := []struct {
		ref  string
		want string
	}{
		{"abcd", `2 habit ids start with "abcd"`},
		{"Walk", `2 habits are named "Walk"`},
	}
	for _, tt := range tests {
		_, err := resolveHabit(tr, tt.ref)
		if err == nil || !strings.Contains(err.Error(), tt.want) {
			t.Errorf("resolveHabit(%q) error = %v, want %q", tt.ref, err, tt.want)
		}
	}
}

func TestResolveDate(t *testing.T) {
	env := newTestEnv(t)
	tr := env.tracker(t)

	tests := map[string]string{
		"":           "2026-06-10",
		"today":      "2026-06-10",
		"Yesterday":  "2026-06-09",
		"2026-01-02": "2026-01-02",
	}
	for in, want := range tests {
		if got := resolveDate(tr, in); got != want {
			t.Errorf("resolveDate(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestMask(t *testing.T) {
	tests := []struct{ in, want string }{
		{"", ""},
		{"abc", "***"},
		{"postgres://u:p@h/db", "post***************"},
	}
	for _, tt := range tests {
		if got := mask(tt.in); got != tt.want {
			t.Errorf("mask(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
