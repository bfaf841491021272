package cli

import (
	"strings"
	"testing"
	"time"

	"github.com/julianstephens/habitline/internal/constants"
)

func TestHabitAddCmd(t *testing.T) {
	env := newTestEnv(t)

	cmd := &HabitAddCmd{Name: "Read", Frequency: "custom:mon,wed", Category: "learning", Time: "07:30", Duration: 20, NoReminders: true}
	if err := cmd.Validate(); err != nil {
		t.Fatalf("Validate() failed: %v", err)
	}
	if err := cmd.Run(env.ctx); err != nil {
		t.Fatalf("Run() failed: %v", err)
	}
	assertContains(t, env.output(), "Added habit: Read")

	habits := env.tracker(t).ListHabits(false)
	if len(habits) != 1 {
		t.Fatalf("expected 1 habit, got %d", len(habits))
	}
	h := habits[0]
	cat, _ := env.tracker(t).GetCategory(h.CategoryID)
	if cat.Name != "Learning" {
		t.Errorf("category = %q, want Learning", cat.Name)
	}
	if h.Frequency.String() != "custom:mon,wed" {
		t.Errorf("frequency = %q", h.Frequency.String())
	}
	if !h.IsTimed() || *h.Duration != 20 {
		t.Errorf("duration = %v, want 20", h.Duration)
	}
	if h.RemindersOn() {
		t.Error("expected reminders off")
	}
}

func TestHabitAddCmdErrors(t *testing.T) {
	tests := []struct {
		name        string
		cmd         HabitAddCmd
		validateErr bool
	}{
		{"missing name", HabitAddCmd{Frequency: "daily"}, true},
		{"negative duration", HabitAddCmd{Name: "Run", Frequency: "daily", Duration: -5}, true},
		{"bad frequency", HabitAddCmd{Name: "Run", Frequency: "hourly"}, false},
		{"bad custom days", HabitAddCmd{Name: "Run", Frequency: "custom:funday"}, false},
		{"unknown category", HabitAddCmd{Name: "Run", Frequency: "daily", Category: "Chores"}, false},
		{"bad time", HabitAddCmd{Name: "Run", Frequency: "daily", Time: "25:00"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t)
			err := tt.cmd.Validate()
			if tt.validateErr {
				if err == nil {
					t.Fatal("expected Validate() to fail")
				}
				return
			}
			if err != nil {
				t.Fatalf("Validate() failed: %v", err)
			}
			if err := tt.cmd.Run(env.ctx); err == nil {
				t.Error("expected Run() to fail")
			}
			if n := len(env.tracker(t).ListHabits(true)); n != 0 {
				t.Errorf("expected no habits to be added, got %d", n)
			}
		})
	}
}

func TestHabitListCmd(t *testing.T) {
	env := newTestEnv(t)
	env.addHabit(t, "Read", 0)
	archived := env.addHabit(t, "Old habit", 0)
	if err := env.tracker(t).ArchiveHabit(archived.ID); err != nil {
		t.Fatal(err)
	}

	if err := (&HabitListCmd{}).Run(env.ctx); err != nil {
		t.Fatal(err)
	}
	out := env.output()
	assertContains(t, out, "Read", "daily")
	if strings.Contains(out, "Old habit") {
		t.Error("archived habit listed without --archived")
	}

	if err := (&HabitListCmd{Archived: true}).Run(env.ctx); err != nil {
		t.Fatal(err)
	}
	assertContains(t, env.output(), "Old habit", "[ARCHIVED]")
}

func TestHabitListEmpty(t *testing.T) {
	env := newTestEnv(t)
	if err := (&HabitListCmd{}).Run(env.ctx); err != nil {
		t.Fatal(err)
	}
	assertContains(t, env.output(), "No habits found.")
}

func TestHabitEditCmd(t *testing.T) {
	env := newTestEnv(t)
	h := env.addHabit(t, "Run", 30)

	cmd := &HabitEditCmd{Habit: "run", Name: "Long run", Duration: 0, Time: "06:00", Reminders: "off"}
	if err := cmd.Validate(); err != nil {
		t.Fatal(err)
	}
	if err := cmd.Run(env.ctx); err != nil {
		t.Fatalf("Run() failed: %v", err)
	}

	got, _ := env.tracker(t).GetHabit(h.ID)
	if got.Name != "Long run" || got.Time != "06:00" {
		t.Errorf("got %+v", got)
	}
	if got.IsTimed() {
		t.Error("duration 0 should make the habit untimed")
	}
	if got.RemindersOn() {
		t.Error("expected reminders off")
	}

	// -1 leaves the duration alone and "none" clears the time
	if err := (&HabitEditCmd{Habit: h.ID, Duration: -1, Time: "none"}).Run(env.ctx); err != nil {
		t.Fatal(err)
	}
	got, _ = env.tracker(t).GetHabit(h.ID)
	if got.Time != "" {
		t.Errorf("time = %q, want cleared", got.Time)
	}
}

func TestHabitEditValidate(t *testing.T) {
	if err := (&HabitEditCmd{Habit: "x", Duration: -1, Reminders: "maybe"}).Validate(); err == nil {
		t.Error("expected invalid --reminders to fail")
	}
	if err := (&HabitEditCmd{Habit: "x", Duration: -3}).Validate(); err == nil {
		t.Error("expected negative duration to fail")
	}
}

func TestHabitDeleteCmd(t *testing.T) {
	env := newTestEnv(t)
	h := env.addHabit(t, "Read", 0)

	env.ctx.In = strings.NewReader("n\n")
	if err := (&HabitDeleteCmd{Habit: "Read"}).Run(env.ctx); err != nil {
		t.Fatal(err)
	}
	assertContains(t, env.output(), "Delete cancelled.")
	if _, ok := env.tracker(t).GetHabit(h.ID); !ok {
		t.Fatal("habit deleted despite answering no")
	}

	env.ctx.In = strings.NewReader("yes\n")
	if err := (&HabitDeleteCmd{Habit: "Read"}).Run(env.ctx); err != nil {
		t.Fatal(err)
	}
	assertContains(t, env.output(), "Deleted habit: Read")
	if _, ok := env.tracker(t).GetHabit(h.ID); ok {
		t.Error("habit still present")
	}
}

func TestHabitArchiveUnarchiveCmd(t *testing.T) {
	env := newTestEnv(t)
	h := env.addHabit(t, "Read", 0)

	if err := (&HabitArchiveCmd{Habit: "Read"}).Run(env.ctx); err != nil {
		t.Fatal(err)
	}
	if got, _ := env.tracker(t).GetHabit(h.ID); !got.Archived {
		t.Error("expected archived")
	}
	if err := (&HabitUnarchiveCmd{Habit: "Read"}).Run(env.ctx); err != nil {
		t.Fatal(err)
	}
	if got, _ := env.tracker(t).GetHabit(h.ID); got.Archived {
		t.Error("expected unarchived")
	}
}

func TestHabitDoneCmdToggles(t *testing.T) {
	env := newTestEnv(t)
	h := env.addHabit(t, "Read", 0)
	cmd := &HabitDoneCmd{Habit: "Read", Date: "today"}

	if err := cmd.Run(env.ctx); err != nil {
		t.Fatal(err)
	}
	assertContains(t, env.output(), `Marked "Read" done for 2026-06-10`)
	if !env.tracker(t).GetHabitCompletionStatus(h.ID, "2026-06-10") {
		t.Error("expected completed")
	}

	if err := cmd.Run(env.ctx); err != nil {
		t.Fatal(err)
	}
	assertContains(t, env.output(), `Unmarked "Read" for 2026-06-10`)
	if env.tracker(t).GetHabitCompletionStatus(h.ID, "2026-06-10") {
		t.Error("expected toggled back")
	}
}

func TestHabitDoneCmdYesterdayAndInvalidDate(t *testing.T) {
	env := newTestEnv(t)
	h := env.addHabit(t, "Read", 0)

	if err := (&HabitDoneCmd{Habit: "Read", Date: "yesterday"}).Run(env.ctx); err != nil {
		t.Fatal(err)
	}
	if !env.tracker(t).GetHabitCompletionStatus(h.ID, "2026-06-09") {
		t.Error("expected yesterday completed")
	}
	if err := (&HabitDoneCmd{Habit: "Read", Date: "06/10/2026"}).Run(env.ctx); err == nil {
		t.Error("expected an invalid date to fail")
	}
}

func TestHabitNoteCmd(t *testing.T) {
	env := newTestEnv(t)
	h := env.addHabit(t, "Read", 0)

	if err := (&HabitNoteCmd{Habit: "Read", Note: "two chapters", Date: "today"}).Run(env.ctx); err != nil {
		t.Fatal(err)
	}
	entry, ok := env.tracker(t).GetCompletionEntry(h.ID, "2026-06-10")
	if !ok || entry.Notes != "two chapters" {
		t.Errorf("entry = %+v, ok = %v", entry, ok)
	}
}

func TestHabitShowCmd(t *testing.T) {
	env := newTestEnv(t)
	h := env.addHabit(t, "Read", 0)
	tr := env.tracker(t)
	for _, day := range []string{"2026-06-08", "2026-06-09", "2026-06-10"} {
		if err := tr.SetHabitCompletion(h.ID, day, true); err != nil {
			t.Fatal(err)
		}
	}
	if err := tr.SetCompletionNote(h.ID, "2026-06-10", "finished the book"); err != nil {
		t.Fatal(err)
	}

	if err := (&HabitShowCmd{Habit: "Read", Days: 7}).Run(env.ctx); err != nil {
		t.Fatal(err)
	}
	out := env.output()
	assertContains(t, out, "Read", "Streak:      3 (best 3)", "Reminders:   on", "2026-06-04", "finished the book")
	if !strings.Contains(out, "....###") {
		t.Errorf("expected a 7-day log ending in three completions:\n%s", out)
	}
}

func TestHabitTodayCmd(t *testing.T) {
	env := newTestEnv(t)
	tr := env.tracker(t)

	morning := env.addHabit(t, "Stretch", 0)
	morning.Time = "07:00"
	if _, err := tr.UpdateHabit(morning); err != nil {
		t.Fatal(err)
	}
	env.addHabit(t, "Read", 0)
	run := env.addHabit(t, "Run", 10)
	if !tr.StartHabitTimer(run.ID) {
		t.Fatal("StartHabitTimer failed")
	}
	env.clock.Advance(5 * time.Minute)
	if _, err := tr.ToggleHabitCompletion(morning.ID, tr.Today()); err != nil {
		t.Fatal(err)
	}

	if err := (&HabitTodayCmd{Date: "today"}).Run(env.ctx); err != nil {
		t.Fatal(err)
	}
	out := env.output()
	assertContains(t, out, "Hi "+constants.DefaultUsername, "Morning", "Anytime", "[x] Stretch", "[ ] Read", "(50% of 10m)")
	if strings.Index(out, "Morning") > strings.Index(out, "Anytime") {
		t.Error("Morning should be listed before Anytime")
	}
	// (100 + 0 + 50) / 3
	assertContains(t, out, "50% (1/3 done)")
}

func TestHabitTodayNothingScheduled(t *testing.T) {
	env := newTestEnv(t)
	if err := (&HabitTodayCmd{Date: "today"}).Run(env.ctx); err != nil {
		t.Fatal(err)
	}
	assertContains(t, env.output(), "Nothing scheduled for 2026-06-10.")
}

func TestHabitFormModel(t *testing.T) {
	fm := newHabitFormModel("  Gym ")
	fm.Frequency = constants.FrequencyCustom
	fm.Days = "fri,mon,mon"
	fm.Duration = "45"
	fm.Time = "18:00"
	fm.Reminders = false

	h, err := fm.habit()
	if err != nil {
		t.Fatalf("habit() failed: %v", err)
	}
	if h.Name != "Gym" || h.Frequency.String() != "custom:mon,fri" || *h.Duration != 45 || h.RemindersOn() {
		t.Errorf("got %+v", h)
	}

	fm.Duration = "soon"
	if _, err := fm.habit(); err == nil {
		t.Error("expected a non-numeric duration to fail")
	}

	fm = newHabitFormModel("Read")
	h, err = fm.habit()
	if err != nil {
		t.Fatal(err)
	}
	if h.IsTimed() || h.ReminderEnabled != nil {
		t.Errorf("defaults not applied: %+v", h)
	}
}
