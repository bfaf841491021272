package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/julianstephens/habitline/internal/models"
	"github.com/julianstephens/habitline/internal/tracker"
	"github.com/julianstephens/habitline/internal/utils"
)

type HabitCmd struct {
	Add       HabitAddCmd       `cmd:"" help:"Add a new habit."`
	List      HabitListCmd      `cmd:"" help:"List habits."`
	Edit      HabitEditCmd      `cmd:"" help:"Edit a habit."`
	Delete    HabitDeleteCmd    `cmd:"" help:"Delete a habit with its completions and timer history."`
	Archive   HabitArchiveCmd   `cmd:"" help:"Archive a habit."`
	Unarchive HabitUnarchiveCmd `cmd:"" help:"Restore an archived habit."`
	Done      HabitDoneCmd      `cmd:"" help:"Toggle a habit's completion for a day."`
	Note      HabitNoteCmd      `cmd:"" help:"Attach a note to a day's completion."`
	Show      HabitShowCmd      `cmd:"" help:"Show a habit with streaks and recent history."`
	Today     HabitTodayCmd     `cmd:"" help:"Show the habits scheduled for a day."`
}

type HabitAddCmd struct {
	Name        string `arg:"" optional:"" help:"Habit name."`
	Frequency   string `short:"f" help:"daily, weekly, one-time or custom:mon,wed,fri." default:"daily"`
	Category    string `short:"c" help:"Category name or id (default: first category)."`
	Time        string `short:"t" help:"Time of day (HH:MM)."`
	Duration    int    `short:"d" help:"Duration in minutes, makes the habit timed."`
	Icon        string `help:"Emoji or short icon."`
	NoReminders bool   `help:"Disable completion notifications for this habit."`
	Interactive bool   `short:"i" help:"Fill in the habit with an interactive form."`
}

func (c *HabitAddCmd) Validate() error {
	if !c.Interactive && strings.TrimSpace(c.Name) == "" {
		return errors.New("a habit name is required unless --interactive is set")
	}
	if c.Duration < 0 {
		return errors.New("--duration must be positive")
	}
	return nil
}

func (c *HabitAddCmd) Run(ctx *Context) error {
	t, err := ctx.Tracker()
	if err != nil {
		return err
	}

	var habit models.Habit
	if c.Interactive {
		habit, err = runHabitForm(t, c.Name)
		if err != nil {
			return err
		}
	} else {
		habit, err = c.habit(t)
		if err != nil {
			return err
		}
	}

	added, err := t.AddHabit(habit)
	if err != nil {
		return err
	}

	ctx.printf("Added habit: %s (%s)\n", added.Name, shortID(added.ID))
	return nil
}

func (c *HabitAddCmd) habit(t *tracker.Tracker) (models.Habit, error) {
	freq, err := models.ParseFrequency(c.Frequency)
	if err != nil {
		return models.Habit{}, err
	}

	habit := models.Habit{
		Name:      c.Name,
		Frequency: freq,
		Time:      c.Time,
		Icon:      c.Icon,
	}
	if c.Category != "" {
		cat, err := resolveCategory(t, c.Category)
		if err != nil {
			return models.Habit{}, err
		}
		habit.CategoryID = cat.ID
	}
	if c.Duration > 0 {
		d := c.Duration
		habit.Duration = &d
	}
	if c.NoReminders {
		off := false
		habit.ReminderEnabled = &off
	}
	return habit, nil
}

type HabitListCmd struct {
	Archived bool   `help:"Include archived habits."`
	Category string `short:"c" help:"Only show habits in this category."`
}

func (c *HabitListCmd) Run(ctx *Context) error {
	t, err := ctx.Tracker()
	if err != nil {
		return err
	}

	var categoryID string
	if c.Category != "" {
		cat, err := resolveCategory(t, c.Category)
		if err != nil {
			return err
		}
		categoryID = cat.ID
	}

	var habits []models.Habit
	for _, h := range t.ListHabits(c.Archived) {
		if categoryID == "" || h.CategoryID == categoryID {
			habits = append(habits, h)
		}
	}
	if len(habits) == 0 {
		ctx.println("No habits found.")
		return nil
	}

	ctx.printf("%-8s  %-24s  %-18s  %-14s  %-5s  %-6s  %s\n", "ID", "NAME", "FREQUENCY", "CATEGORY", "TIME", "LENGTH", "STREAK")
	for _, h := range habits {
		catName := "-"
		if cat, ok := t.GetCategory(h.CategoryID); ok {
			catName = categoryStyle(cat.Color).Render(fmt.Sprintf("%-14s", cat.Name))
		}
		at := h.Time
		if at == "" {
			at = "-"
		}
		name := h.Name
		if h.Archived {
			name += dimStyle.Render(" [ARCHIVED]")
		}
		ctx.printf("%-8s  %-24s  %-18s  %-14s  %-5s  %-6s  %d\n",
			shortID(h.ID), name, h.Frequency.String(), catName, at, formatDuration(h), t.GetHabitStreak(h.ID))
	}
	return nil
}

type HabitEditCmd struct {
	Habit     string `arg:"" help:"Habit id or name."`
	Name      string `help:"New name."`
	Frequency string `short:"f" help:"daily, weekly, one-time or custom:mon,wed,fri."`
	Category  string `short:"c" help:"Category name or id."`
	Time      string `short:"t" help:"Time of day (HH:MM), or 'none' to clear."`
	Duration  int    `short:"d" help:"Duration in minutes, 0 makes the habit untimed." default:"-1"`
	Icon      string `help:"Emoji or short icon, or 'none' to clear."`
	Reminders string `help:"on or off."`
}

func (c *HabitEditCmd) Validate() error {
	switch strings.ToLower(c.Reminders) {
	case "", "on", "off":
	default:
		return fmt.Errorf("--reminders must be on or off, got %q", c.Reminders)
	}
	if c.Duration < -1 {
		return errors.New("--duration must not be negative")
	}
	return nil
}

func (c *HabitEditCmd) Run(ctx *Context) error {
	t, err := ctx.Tracker()
	if err != nil {
		return err
	}

	habit, err := resolveHabit(t, c.Habit)
	if err != nil {
		return err
	}

	if c.Name != "" {
		habit.Name = c.Name
	}
	if c.Frequency != "" {
		if habit.Frequency, err = models.ParseFrequency(c.Frequency); err != nil {
			return err
		}
	}
	if c.Category != "" {
		cat, err := resolveCategory(t, c.Category)
		if err != nil {
			return err
		}
		habit.CategoryID = cat.ID
	}
	if c.Time != "" {
		habit.Time = clearable(c.Time)
	}
	if c.Icon != "" {
		habit.Icon = clearable(c.Icon)
	}
	switch {
	case c.Duration == 0:
		habit.Duration = nil
	case c.Duration > 0:
		d := c.Duration
		habit.Duration = &d
	}
	if c.Reminders != "" {
		on := strings.EqualFold(c.Reminders, "on")
		habit.ReminderEnabled = &on
	}

	updated, err := t.UpdateHabit(habit)
	if err != nil {
		return err
	}
	ctx.printf("Updated habit: %s\n", updated.Name)
	return nil
}

func clearable(v string) string {
	if strings.EqualFold(v, "none") {
		return ""
	}
	return v
}

type HabitDeleteCmd struct {
	Habit string `arg:"" help:"Habit id or name."`
	Yes   bool   `short:"y" help:"Skip the confirmation prompt."`
}

func (c *HabitDeleteCmd) Run(ctx *Context) error {
	t, err := ctx.Tracker()
	if err != nil {
		return err
	}

	habit, err := resolveHabit(t, c.Habit)
	if err != nil {
		return err
	}

	if !c.Yes {
		ok, err := ctx.confirm(fmt.Sprintf("Delete %q and all of its history?", habit.Name))
		if err != nil {
			return err
		}
		if !ok {
			ctx.println("Delete cancelled.")
			return nil
		}
	}

	if err := t.DeleteHabit(habit.ID); err != nil {
		return err
	}
	ctx.printf("Deleted habit: %s\n", habit.Name)
	return nil
}

type HabitArchiveCmd struct {
	Habit string `arg:"" help:"Habit id or name."`
}

func (c *HabitArchiveCmd) Run(ctx *Context) error {
	t, err := ctx.Tracker()
	if err != nil {
		return err
	}

	habit, err := resolveHabit(t, c.Habit)
	if err != nil {
		return err
	}
	if err := t.ArchiveHabit(habit.ID); err != nil {
		return err
	}
	ctx.printf("Archived habit: %s\n", habit.Name)
	return nil
}

type HabitUnarchiveCmd struct {
	Habit string `arg:"" help:"Habit id or name."`
}

func (c *HabitUnarchiveCmd) Run(ctx *Context) error {
	t, err := ctx.Tracker()
	if err != nil {
		return err
	}

	habit, err := resolveHabit(t, c.Habit)
	if err != nil {
		return err
	}
	if err := t.UnarchiveHabit(habit.ID); err != nil {
		return err
	}
	ctx.printf("Restored habit: %s\n", habit.Name)
	return nil
}

type HabitDoneCmd struct {
	Habit string `arg:"" help:"Habit id or name."`
	Date  string `help:"Date in YYYY-MM-DD format, 'today' or 'yesterday'." default:"today"`
}

func (c *HabitDoneCmd) Run(ctx *Context) error {
	t, err := ctx.Tracker()
	if err != nil {
		return err
	}

	habit, err := resolveHabit(t, c.Habit)
	if err != nil {
		return err
	}

	day := resolveDate(t, c.Date)
	completed, err := t.ToggleHabitCompletion(habit.ID, day)
	if err != nil {
		return err
	}

	if completed {
		ctx.printf("%s Marked %q done for %s\n", doneStyle.Render("✓"), habit.Name, day)
	} else {
		ctx.printf("Unmarked %q for %s\n", habit.Name, day)
	}
	return nil
}

type HabitNoteCmd struct {
	Habit string `arg:"" help:"Habit id or name."`
	Note  string `arg:"" help:"Note text; an empty string clears it."`
	Date  string `help:"Date in YYYY-MM-DD format, 'today' or 'yesterday'." default:"today"`
}

func (c *HabitNoteCmd) Run(ctx *Context) error {
	t, err := ctx.Tracker()
	if err != nil {
		return err
	}

	habit, err := resolveHabit(t, c.Habit)
	if err != nil {
		return err
	}

	day := resolveDate(t, c.Date)
	if err := t.SetCompletionNote(habit.ID, day, c.Note); err != nil {
		return err
	}
	ctx.printf("Saved note for %q on %s\n", habit.Name, day)
	return nil
}

type HabitShowCmd struct {
	Habit string `arg:"" help:"Habit id or name."`
	Days  int    `help:"Number of days of history to show." default:"14"`
}

func (c *HabitShowCmd) Run(ctx *Context) error {
	t, err := ctx.Tracker()
	if err != nil {
		return err
	}

	habit, err := resolveHabit(t, c.Habit)
	if err != nil {
		return err
	}

	title := habit.Name
	if habit.Icon != "" {
		title = habit.Icon + " " + title
	}
	ctx.println(headerStyle.Render(title))
	ctx.printf("  ID:          %s\n", habit.ID)
	ctx.printf("  Frequency:   %s\n", habit.Frequency.String())
	if cat, ok := t.GetCategory(habit.CategoryID); ok {
		ctx.printf("  Category:    %s\n", categoryStyle(cat.Color).Render(cat.Name))
	}
	if habit.Time != "" {
		ctx.printf("  Time:        %s\n", habit.Time)
	}
	if habit.IsTimed() {
		ctx.printf("  Duration:    %s\n", formatDuration(habit))
	}
	ctx.printf("  Reminders:   %s\n", onOff(habit.RemindersOn()))
	ctx.printf("  Streak:      %d (best %d)\n", t.GetHabitStreak(habit.ID), t.GetBestStreak(habit.ID))
	if !habit.IsOneTime() {
		ctx.printf("  30-day rate: %d%%\n", t.GetCompletionRate(habit.ID))
	}
	if habit.Archived {
		ctx.println(dimStyle.Render("  Archived"))
	}

	if c.Days <= 0 {
		return nil
	}
	ctx.println()
	ctx.println(renderHabitLog(t, habit, c.Days))

	today := t.Today()
	if entry, ok := t.GetCompletionEntry(habit.ID, today); ok && entry.Notes != "" {
		ctx.printf("\nNote for today: %s\n", entry.Notes)
	}
	return nil
}

// renderHabitLog draws one cell per day, oldest first: # completed, + partial timer progress, . missed
func renderHabitLog(t *tracker.Tracker, habit models.Habit, days int) string {
	progress := make(map[string]float64)
	for _, rec := range t.GetHabitHistory(habit.ID) {
		progress[rec.Date] = rec.Progress
	}

	var b strings.Builder
	now := t.Now()
	first := utils.FormatDate(now.AddDate(0, 0, -(days - 1)))
	for i := days - 1; i >= 0; i-- {
		day := utils.FormatDate(now.AddDate(0, 0, -i))
		switch {
		case t.GetHabitCompletionStatus(habit.ID, day):
			b.WriteString(doneStyle.Render("#"))
		case progress[day] > 0:
			b.WriteString(warnStyle.Render("+"))
		default:
			b.WriteString(dimStyle.Render("."))
		}
	}
	return fmt.Sprintf("  %s %s %s", first, b.String(), utils.FormatDate(now))
}

func onOff(v bool) string {
	if v {
		return "on"
	}
	return "off"
}

type HabitTodayCmd struct {
	Date string `help:"Date in YYYY-MM-DD format, 'today' or 'yesterday'." default:"today"`
}

var bucketOrder = []string{"Morning", "Afternoon", "Evening", "Night", "Anytime"}

func (c *HabitTodayCmd) Run(ctx *Context) error {
	t, err := ctx.Tracker()
	if err != nil {
		return err
	}

	day := resolveDate(t, c.Date)
	habits, err := t.GetHabitsForDate(day)
	if err != nil {
		return err
	}
	if len(habits) == 0 {
		ctx.printf("Nothing scheduled for %s.\n", day)
		return nil
	}

	buckets := make(map[string][]models.Habit)
	for _, h := range habits {
		b := utils.TimeBucket(h.Time)
		buckets[b] = append(buckets[b], h)
	}

	ctx.printf("Hi %s, here is %s:\n", t.Username(), day)
	isToday := day == t.Today()
	for _, bucket := range bucketOrder {
		hs := buckets[bucket]
		if len(hs) == 0 {
			continue
		}
		ctx.println()
		ctx.println(headerStyle.Render(bucket))
		for _, h := range hs {
			line := fmt.Sprintf("  %s %s", checkbox(t.GetHabitCompletionStatus(h.ID, day)), h.Name)
			if h.Time != "" {
				line += dimStyle.Render(" @ " + h.Time)
			}
			if isToday && h.IsTimed() {
				line += " " + timerLabel(t, h)
			}
			ctx.println(line)
		}
	}

	p, err := t.GetProgressForDate(day)
	if err != nil {
		return err
	}
	ctx.printf("\n%s %d%% (%d/%d done)\n", progressBar(p.Progress), p.Progress, p.Completed, p.Scheduled)
	return nil
}

// timerLabel summarises a timed habit's timer state for list output
func timerLabel(t *tracker.Tracker, h models.Habit) string {
	state := t.GetHabitTimerState(h.ID)
	if state == nil {
		return dimStyle.Render(fmt.Sprintf("(%s)", formatDuration(h)))
	}
	label := fmt.Sprintf("(%.0f%% of %s", state.Progress, formatDuration(h))
	if state.IsPaused() {
		label += ", paused"
	}
	return warnStyle.Render(label + ")")
}
