package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/julianstephens/habitline/internal/clock"
	"github.com/julianstephens/habitline/internal/config"
	"github.com/julianstephens/habitline/internal/models"
	"github.com/julianstephens/habitline/internal/notifier"
	"github.com/julianstephens/habitline/internal/storage"
	"github.com/julianstephens/habitline/internal/storage/backend"
	"github.com/julianstephens/habitline/internal/tracker"
	"github.com/julianstephens/habitline/internal/utils"
)

const (
	hydrateTimeout = 30 * time.Second
	minIDPrefix    = 4
)

// Context is handed to every command's Run method by kong
type Context struct {
	Config   config.Config
	Store    storage.Provider
	Clock    clock.Clock
	Notifier notifier.Dispatcher

	Out io.Writer
	In  io.Reader

	// OpenProvider opens a storage location other than Store, e.g. for init --source
	OpenProvider func(location string) (storage.Provider, error)

	tracker *tracker.Tracker
}

// Tracker loads the store and hydrates a tracker on first use
func (c *Context) Tracker() (*tracker.Tracker, error) {
	if c.tracker != nil {
		return c.tracker, nil
	}
	if err := c.Store.Load(); err != nil {
		return nil, err
	}

	opts := []tracker.Option{
		tracker.WithLocation(c.Config.Location()),
		tracker.WithWeeklyResetDay(c.Config.WeeklyResetDay),
		tracker.WithSampleData(c.Config.SeedSampleData),
	}
	if c.Clock != nil {
		opts = append(opts, tracker.WithClock(c.Clock))
	}
	if c.Notifier != nil {
		opts = append(opts, tracker.WithNotifier(c.Notifier))
	}

	t := tracker.New(c.Store, opts...)
	ctx, cancel := context.WithTimeout(context.Background(), hydrateTimeout)
	defer cancel()
	if err := t.Hydrate(ctx); err != nil {
		_ = t.Close()
		return nil, fmt.Errorf("failed to load habits: %w", err)
	}
	c.tracker = t
	return t, nil
}

// Close flushes pending writes of the tracker, if one was opened
func (c *Context) Close() error {
	if c.tracker == nil {
		return nil
	}
	err := c.tracker.Close()
	c.tracker = nil
	return err
}

func (c *Context) openProvider(location string) (storage.Provider, error) {
	if c.OpenProvider != nil {
		return c.OpenProvider(location)
	}
	return backend.Open(location)
}

func (c *Context) out() io.Writer {
	if c.Out == nil {
		return os.Stdout
	}
	return c.Out
}

func (c *Context) printf(format string, args ...interface{}) {
	fmt.Fprintf(c.out(), format, args...)
}

func (c *Context) println(args ...interface{}) {
	fmt.Fprintln(c.out(), args...)
}

// confirm asks a yes/no question on In, defaulting to no
func (c *Context) confirm(prompt string) (bool, error) {
	in := c.In
	if in == nil {
		in = os.Stdin
	}
	c.printf("%s [y/N]: ", prompt)
	response, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && err != io.EOF {
		return false, err
	}
	response = strings.TrimSpace(strings.ToLower(response))
	return response == "y" || response == "yes", nil
}

// resolveHabit finds a habit by id, then by id prefix (as printed by list),
// then by case-insensitive name
func resolveHabit(t *tracker.Tracker, ref string) (models.Habit, error) {
	ref = strings.TrimSpace(ref)
	if h, ok := t.GetHabit(ref); ok {
		return h, nil
	}

	all := t.ListHabits(true)
	var matches []models.Habit
	byName := false
	if len(ref) >= minIDPrefix {
		for _, h := range all {
			if strings.HasPrefix(h.ID, ref) {
				matches = append(matches, h)
			}
		}
	}
	if len(matches) == 0 {
		byName = true
		for _, h := range all {
			if strings.EqualFold(h.Name, ref) {
				matches = append(matches, h)
			}
		}
	}
	switch {
	case len(matches) == 0:
		return models.Habit{}, fmt.Errorf("habit not found: %s", ref)
	case len(matches) == 1:
		return matches[0], nil
	case byName:
		return models.Habit{}, fmt.Errorf("%d habits are named %q, use the id instead", len(matches), ref)
	default:
		return models.Habit{}, fmt.Errorf("%d habit ids start with %q, use a longer prefix", len(matches), ref)
	}
}

func resolveCategory(t *tracker.Tracker, ref string) (models.Category, error) {
	if c, ok := t.GetCategory(ref); ok {
		return c, nil
	}
	for _, c := range t.ListCategories() {
		if strings.EqualFold(c.Name, strings.TrimSpace(ref)) {
			return c, nil
		}
	}
	return models.Category{}, fmt.Errorf("category not found: %s", ref)
}

// resolveDate accepts YYYY-MM-DD, "today", "yesterday" or an empty string for today
func resolveDate(t *tracker.Tracker, date string) string {
	switch strings.ToLower(strings.TrimSpace(date)) {
	case "", "today":
		return t.Today()
	case "yesterday":
		return utils.FormatDate(t.Now().AddDate(0, 0, -1))
	default:
		return date
	}
}

func formatDuration(h models.Habit) string {
	if !h.IsTimed() {
		return "-"
	}
	return fmt.Sprintf("%dm", *h.Duration)
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
