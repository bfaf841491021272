package tracker

import (
	"fmt"
	"strings"

	"github.com/google/uuid"

	apperrors "github.com/julianstephens/habitline/internal/errors"
	"github.com/julianstephens/habitline/internal/models"
)

const defaultCategoryColor = "blue"

func (t *Tracker) habitIndex(id string) int {
	for i := range t.habits {
		if t.habits[i].ID == id {
			return i
		}
	}
	return -1
}

func (t *Tracker) categoryIndex(id string) int {
	for i := range t.categories {
		if t.categories[i].ID == id {
			return i
		}
	}
	return -1
}

// findHabit returns the habit with id. Caller holds t.mu.
func (t *Tracker) findHabit(id string) (models.Habit, bool) {
	if i := t.habitIndex(id); i >= 0 {
		return t.habits[i], true
	}
	return models.Habit{}, false
}

// prepareHabit validates h and resolves its category. Caller holds t.mu.
func (t *Tracker) prepareHabit(h *models.Habit) error {
	h.Name = strings.TrimSpace(h.Name)
	h.Frequency = h.Frequency.Normalize()
	if h.CategoryID == "" {
		if len(t.categories) == 0 {
			return apperrors.ErrCategoryNotFound
		}
		h.CategoryID = t.categories[0].ID
	}
	if t.categoryIndex(h.CategoryID) < 0 {
		return fmt.Errorf("%w: %s", apperrors.ErrCategoryNotFound, h.CategoryID)
	}
	return h.Validate()
}

// AddHabit stores a new habit and returns it with its generated id and timestamps.
// An empty CategoryID puts the habit in the first category.
func (t *Tracker) AddHabit(input models.Habit) (models.Habit, error) {
	var (
		out models.Habit
		err error
	)
	t.update(func() {
		h := input.Clone()
		if err = t.prepareHabit(&h); err != nil {
			return
		}
		now := t.clock.Now()
		h.ID = uuid.New().String()
		h.CreatedAt = now
		h.UpdatedAt = now
		t.habits = append(t.habits, h)
		t.persistHabits()
		out = h.Clone()
	})
	return out, err
}

// UpdateHabit replaces the stored habit with the same id. CreatedAt is preserved.
func (t *Tracker) UpdateHabit(habit models.Habit) (models.Habit, error) {
	var (
		out models.Habit
		err error
	)
	t.update(func() {
		i := t.habitIndex(habit.ID)
		if i < 0 {
			err = fmt.Errorf("%w: %s", apperrors.ErrHabitNotFound, habit.ID)
			return
		}
		h := habit.Clone()
		if err = t.prepareHabit(&h); err != nil {
			return
		}
		old := t.habits[i]
		h.CreatedAt = old.CreatedAt
		h.UpdatedAt = t.clock.Now()
		t.habits[i] = h

		// a habit that lost its duration cannot keep a timer
		if timer, ok := t.timers[h.ID]; ok && !h.IsTimed() {
			t.upsertHistory(h.ID, t.Today(), timer.ProgressAt(t.nowMs(), old.DurationMs()), false)
			delete(t.timers, h.ID)
			t.persistTimers()
			t.persistHistory()
		}
		t.persistHabits()
		out = h.Clone()
	})
	return out, err
}

// DeleteHabit removes a habit together with its completions, timer and history
func (t *Tracker) DeleteHabit(id string) error {
	var err error
	t.update(func() {
		i := t.habitIndex(id)
		if i < 0 {
			err = fmt.Errorf("%w: %s", apperrors.ErrHabitNotFound, id)
			return
		}
		t.habits = append(t.habits[:i], t.habits[i+1:]...)

		kept := t.completions[:0]
		for _, c := range t.completions {
			if c.HabitID != id {
				kept = append(kept, c)
			}
		}
		t.completions = kept

		if _, ok := t.timers[id]; ok {
			delete(t.timers, id)
			t.persistTimers()
		}
		if _, ok := t.history[id]; ok {
			delete(t.history, id)
			t.persistHistory()
		}
		t.persistHabits()
		t.persistCompletions()
	})
	return err
}

func (t *Tracker) ArchiveHabit(id string) error   { return t.setArchived(id, true) }
func (t *Tracker) UnarchiveHabit(id string) error { return t.setArchived(id, false) }

func (t *Tracker) setArchived(id string, archived bool) error {
	var err error
	t.update(func() {
		i := t.habitIndex(id)
		if i < 0 {
			err = fmt.Errorf("%w: %s", apperrors.ErrHabitNotFound, id)
			return
		}
		if t.habits[i].Archived == archived {
			return
		}
		t.habits[i].Archived = archived
		t.habits[i].UpdatedAt = t.clock.Now()
		t.persistHabits()
	})
	return err
}

// ListHabits returns habits in insertion order
func (t *Tracker) ListHabits(includeArchived bool) []models.Habit {
	t.mu.Lock()
	defer t.mu.Unlock()

	out := make([]models.Habit, 0, len(t.habits))
	for _, h := range t.habits {
		if h.Archived && !includeArchived {
			continue
		}
		out = append(out, h.Clone())
	}
	return out
}

func (t *Tracker) GetHabit(id string) (models.Habit, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	h, ok := t.findHabit(id)
	return h.Clone(), ok
}

// AddCategory stores a new category. An empty color defaults to blue.
func (t *Tracker) AddCategory(name, color string) (models.Category, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return models.Category{}, fmt.Errorf("%w: name is required", apperrors.ErrInvalidCategory)
	}
	if color == "" {
		color = defaultCategoryColor
	}
	c := models.Category{ID: uuid.New().String(), Name: name, Color: color}
	t.update(func() {
		t.categories = append(t.categories, c)
		t.persistCategories()
	})
	return c, nil
}

func (t *Tracker) UpdateCategory(category models.Category) (models.Category, error) {
	category.Name = strings.TrimSpace(category.Name)
	if category.Name == "" {
		return models.Category{}, fmt.Errorf("%w: name is required", apperrors.ErrInvalidCategory)
	}
	if category.Color == "" {
		category.Color = defaultCategoryColor
	}
	var err error
	t.update(func() {
		i := t.categoryIndex(category.ID)
		if i < 0 {
			err = fmt.Errorf("%w: %s", apperrors.ErrCategoryNotFound, category.ID)
			return
		}
		t.categories[i] = category
		t.persistCategories()
	})
	return category, err
}

// DeleteCategory removes a category and moves its habits to the first remaining
// category. The last category cannot be deleted.
func (t *Tracker) DeleteCategory(id string) error {
	var err error
	t.update(func() {
		i := t.categoryIndex(id)
		if i < 0 {
			err = fmt.Errorf("%w: %s", apperrors.ErrCategoryNotFound, id)
			return
		}
		if len(t.categories) == 1 {
			err = apperrors.ErrLastCategory
			return
		}
		t.categories = append(t.categories[:i], t.categories[i+1:]...)
		fallback := t.categories[0].ID

		moved := false
		for j := range t.habits {
			if t.habits[j].CategoryID == id {
				t.habits[j].CategoryID = fallback
				moved = true
			}
		}
		if moved {
			t.persistHabits()
		}
		t.persistCategories()
	})
	return err
}

func (t *Tracker) ListCategories() []models.Category {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]models.Category(nil), t.categories...)
}

func (t *Tracker) GetCategory(id string) (models.Category, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if i := t.categoryIndex(id); i >= 0 {
		return t.categories[i], true
	}
	return models.Category{}, false
}
