package tracker

import (
	"errors"
	"testing"
	"time"

	"github.com/julianstephens/habitline/internal/constants"
	apperrors "github.com/julianstephens/habitline/internal/errors"
	"github.com/julianstephens/habitline/internal/models"
)

func TestAddHabit(t *testing.T) {
	f := newFixture(t)
	cats := f.tr.ListCategories()

	tests := []struct {
		name    string
		input   models.Habit
		wantErr error
	}{
		{"defaults to first category", models.Habit{Name: "Walk", Frequency: models.Daily()}, nil},
		{"explicit category", models.Habit{Name: "Walk", Frequency: models.Daily(), CategoryID: cats[1].ID}, nil},
		{"unknown category", models.Habit{Name: "Walk", Frequency: models.Daily(), CategoryID: "nope"}, apperrors.ErrCategoryNotFound},
		{"blank name", models.Habit{Name: "  ", Frequency: models.Daily()}, apperrors.ErrInvalidHabit},
		{"bad time", models.Habit{Name: "Walk", Frequency: models.Daily(), Time: "25:00"}, apperrors.ErrInvalidHabit},
		{"zero duration", models.Habit{Name: "Walk", Frequency: models.Daily(), Duration: intPtr(0)}, apperrors.ErrInvalidHabit},
		{"custom without days", models.Habit{Name: "Walk", Frequency: models.Frequency{Type: constants.FrequencyCustom}}, apperrors.ErrInvalidHabit},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, err := f.tr.AddHabit(tt.input)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("expected %v, got %v", tt.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if h.ID == "" {
				t.Error("expected generated id")
			}
			if !h.CreatedAt.Equal(baseTime) || !h.UpdatedAt.Equal(baseTime) {
				t.Errorf("unexpected timestamps %v %v", h.CreatedAt, h.UpdatedAt)
			}
			want := tt.input.CategoryID
			if want == "" {
				want = cats[0].ID
			}
			if h.CategoryID != want {
				t.Errorf("expected category %q, got %q", want, h.CategoryID)
			}
		})
	}
}

func TestAddHabitAllowsDuplicateNames(t *testing.T) {
	f := newFixture(t)
	a := f.addHabit(t, models.Habit{Name: "Read"})
	b := f.addHabit(t, models.Habit{Name: "Read"})
	if a.ID == b.ID {
		t.Error("expected distinct ids")
	}
}

func TestUpdateHabit(t *testing.T) {
	f := newFixture(t)
	h := f.addHabit(t, models.Habit{Name: "Read"})

	f.clock.Advance(time.Hour)
	h.Name = "Read fiction"
	h.CreatedAt = time.Time{}
	updated, err := f.tr.UpdateHabit(h)
	if err != nil {
		t.Fatalf("UpdateHabit failed: %v", err)
	}
	if updated.Name != "Read fiction" {
		t.Errorf("name not updated: %q", updated.Name)
	}
	if !updated.CreatedAt.Equal(baseTime) {
		t.Errorf("CreatedAt should be preserved, got %v", updated.CreatedAt)
	}
	if !updated.UpdatedAt.Equal(baseTime.Add(time.Hour)) {
		t.Errorf("UpdatedAt not bumped: %v", updated.UpdatedAt)
	}

	_, err = f.tr.UpdateHabit(models.Habit{ID: "missing", Name: "x", Frequency: models.Daily()})
	if !errors.Is(err, apperrors.ErrHabitNotFound) {
		t.Errorf("expected ErrHabitNotFound, got %v", err)
	}
}

func TestUpdateHabitDroppingDurationStopsTimer(t *testing.T) {
	f := newFixture(t)
	h := f.addHabit(t, models.Habit{Name: "Run", Duration: intPtr(30)})
	f.tr.StartHabitTimer(h.ID)
	f.clock.Advance(15 * time.Minute)

	h.Duration = nil
	if _, err := f.tr.UpdateHabit(h); err != nil {
		t.Fatal(err)
	}
	if f.tr.GetHabitTimerState(h.ID) != nil {
		t.Error("timer should be removed when habit is no longer timed")
	}
	hist := f.tr.GetHabitHistory(h.ID)
	if len(hist) != 1 || hist[0].Completed {
		t.Errorf("expected one incomplete history record, got %+v", hist)
	}
}

func TestGetHabitReturnsCopy(t *testing.T) {
	f := newFixture(t)
	h := f.addHabit(t, models.Habit{Name: "Run", Duration: intPtr(30)})

	got, _ := f.tr.GetHabit(h.ID)
	*got.Duration = 99
	again, _ := f.tr.GetHabit(h.ID)
	if *again.Duration != 30 {
		t.Errorf("stored habit mutated through returned copy: %d", *again.Duration)
	}
}

func TestDeleteHabitCascades(t *testing.T) {
	f := newFixture(t)
	h := f.addHabit(t, models.Habit{Name: "Run", Duration: intPtr(30)})
	other := f.addHabit(t, models.Habit{Name: "Read"})
	today := f.tr.Today()

	_, _ = f.tr.ToggleHabitCompletion(h.ID, f.date(1))
	_, _ = f.tr.ToggleHabitCompletion(other.ID, today)
	f.tr.SaveTimerProgress(h.ID, 30)
	f.tr.StartHabitTimer(h.ID)

	if err := f.tr.DeleteHabit(h.ID); err != nil {
		t.Fatalf("DeleteHabit failed: %v", err)
	}
	if _, ok := f.tr.GetHabit(h.ID); ok {
		t.Error("habit still present")
	}
	if f.tr.GetHabitCompletionStatus(h.ID, f.date(1)) {
		t.Error("completions not purged")
	}
	if f.tr.GetHabitTimerState(h.ID) != nil {
		t.Error("timer not purged")
	}
	if len(f.tr.GetHabitHistory(h.ID)) != 0 {
		t.Error("history not purged")
	}
	if !f.tr.GetHabitCompletionStatus(other.ID, today) {
		t.Error("other habit's completion was removed")
	}

	if err := f.tr.DeleteHabit(h.ID); !errors.Is(err, apperrors.ErrHabitNotFound) {
		t.Errorf("expected ErrHabitNotFound on second delete, got %v", err)
	}
}

func TestArchiveHabit(t *testing.T) {
	f := newFixture(t)
	h := f.addHabit(t, models.Habit{Name: "Read"})

	if err := f.tr.ArchiveHabit(h.ID); err != nil {
		t.Fatal(err)
	}
	if got := f.tr.ListHabits(false); len(got) != 0 {
		t.Errorf("archived habit listed: %+v", got)
	}
	if got := f.tr.ListHabits(true); len(got) != 1 || !got[0].Archived {
		t.Errorf("expected archived habit with includeArchived, got %+v", got)
	}
	if err := f.tr.UnarchiveHabit(h.ID); err != nil {
		t.Fatal(err)
	}
	if got := f.tr.ListHabits(false); len(got) != 1 {
		t.Errorf("expected unarchived habit, got %d", len(got))
	}
	if err := f.tr.ArchiveHabit("missing"); !errors.Is(err, apperrors.ErrHabitNotFound) {
		t.Errorf("expected ErrHabitNotFound, got %v", err)
	}
}

func TestCategoryCRUD(t *testing.T) {
	f := newFixture(t)

	c, err := f.tr.AddCategory("Social", "")
	if err != nil {
		t.Fatal(err)
	}
	if c.Color != defaultCategoryColor {
		t.Errorf("expected default color, got %q", c.Color)
	}
	if _, err := f.tr.AddCategory(" ", "red"); !errors.Is(err, apperrors.ErrInvalidCategory) {
		t.Errorf("expected ErrInvalidCategory, got %v", err)
	}

	c.Name = "Friends"
	c.Color = "pink"
	if _, err := f.tr.UpdateCategory(c); err != nil {
		t.Fatal(err)
	}
	got, ok := f.tr.GetCategory(c.ID)
	if !ok || got.Name != "Friends" || got.Color != "pink" {
		t.Errorf("unexpected category %+v", got)
	}
	if _, err := f.tr.UpdateCategory(models.Category{ID: "missing", Name: "x"}); !errors.Is(err, apperrors.ErrCategoryNotFound) {
		t.Errorf("expected ErrCategoryNotFound, got %v", err)
	}
}

func TestDeleteCategoryReassignsHabits(t *testing.T) {
	f := newFixture(t)
	first := f.tr.ListCategories()[0]
	social, _ := f.tr.AddCategory("Social", "pink")

	a := f.addHabit(t, models.Habit{Name: "Call mom", CategoryID: social.ID})
	b := f.addHabit(t, models.Habit{Name: "Text a friend", CategoryID: social.ID})

	if err := f.tr.DeleteCategory(social.ID); err != nil {
		t.Fatalf("DeleteCategory failed: %v", err)
	}
	for _, id := range []string{a.ID, b.ID} {
		h, _ := f.tr.GetHabit(id)
		if h.CategoryID != first.ID {
			t.Errorf("habit %s left on %q, want %q", h.Name, h.CategoryID, first.ID)
		}
	}
	for _, h := range f.tr.ListHabits(true) {
		if h.CategoryID == social.ID {
			t.Errorf("habit %s still references deleted category", h.Name)
		}
	}
}

func TestDeleteLastCategoryRejected(t *testing.T) {
	f := newFixture(t)
	cats := f.tr.ListCategories()
	for _, c := range cats[1:] {
		if err := f.tr.DeleteCategory(c.ID); err != nil {
			t.Fatal(err)
		}
	}
	if err := f.tr.DeleteCategory(cats[0].ID); !errors.Is(err, apperrors.ErrLastCategory) {
		t.Errorf("expected ErrLastCategory, got %v", err)
	}
	if len(f.tr.ListCategories()) != 1 {
		t.Error("last category was removed")
	}
}
