package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"slices"
	"syscall"
	"time"

	"github.com/charmbracelet/bubbles/progress"

	"github.com/julianstephens/habitline/internal/models"
	"github.com/julianstephens/habitline/internal/tracker"
)

type TimerCmd struct {
	Start      TimerStartCmd      `cmd:"" help:"Start (or restart) a timed habit's timer."`
	Pause      TimerPauseCmd      `cmd:"" help:"Pause a running timer."`
	Resume     TimerResumeCmd     `cmd:"" help:"Resume a paused timer."`
	Stop       TimerStopCmd       `cmd:"" help:"Stop a timer, recording its progress."`
	Status     TimerStatusCmd     `cmd:"" help:"Show timers and their progress."`
	Watch      TimerWatchCmd      `cmd:"" help:"Follow a timer until it finishes."`
	Checkpoint TimerCheckpointCmd `cmd:"" help:"Record partial progress for today without touching the timer."`
}

// timedHabit resolves ref and makes sure it can carry a timer
func timedHabit(ctx *Context, ref string) (*tracker.Tracker, models.Habit, error) {
	t, err := ctx.Tracker()
	if err != nil {
		return nil, models.Habit{}, err
	}
	habit, err := resolveHabit(t, ref)
	if err != nil {
		return nil, models.Habit{}, err
	}
	if !habit.IsTimed() {
		return nil, models.Habit{}, fmt.Errorf("%q has no duration, set one with 'habit edit --duration'", habit.Name)
	}
	// finalize timers that ran out while no process was watching
	t.Tick()
	return t, habit, nil
}

type TimerStartCmd struct {
	Habit string `arg:"" help:"Habit id or name."`
}

func (c *TimerStartCmd) Run(ctx *Context) error {
	t, habit, err := timedHabit(ctx, c.Habit)
	if err != nil {
		return err
	}
	if !t.StartHabitTimer(habit.ID) {
		return fmt.Errorf("could not start timer for %q", habit.Name)
	}
	ctx.printf("Started %s timer for %q\n", formatDuration(habit), habit.Name)
	return nil
}

type TimerPauseCmd struct {
	Habit string `arg:"" help:"Habit id or name."`
}

func (c *TimerPauseCmd) Run(ctx *Context) error {
	t, habit, err := timedHabit(ctx, c.Habit)
	if err != nil {
		return err
	}
	if !t.PauseHabitTimer(habit.ID) {
		ctx.printf("No running timer for %q\n", habit.Name)
		return nil
	}
	ctx.printf("Paused %q at %s\n", habit.Name, timerPercent(t, habit.ID))
	return nil
}

type TimerResumeCmd struct {
	Habit string `arg:"" help:"Habit id or name."`
}

func (c *TimerResumeCmd) Run(ctx *Context) error {
	t, habit, err := timedHabit(ctx, c.Habit)
	if err != nil {
		return err
	}
	if !t.ResumeHabitTimer(habit.ID) {
		ctx.printf("No paused timer for %q\n", habit.Name)
		return nil
	}
	ctx.printf("Resumed %q at %s\n", habit.Name, timerPercent(t, habit.ID))
	return nil
}

type TimerStopCmd struct {
	Habit string `arg:"" help:"Habit id or name."`
	Done  bool   `help:"Mark the habit completed for today."`
}

func (c *TimerStopCmd) Run(ctx *Context) error {
	t, habit, err := timedHabit(ctx, c.Habit)
	if err != nil {
		return err
	}
	pct := timerPercent(t, habit.ID)
	if !t.StopHabitTimer(habit.ID, c.Done) {
		ctx.printf("No timer for %q\n", habit.Name)
		return nil
	}
	if c.Done {
		ctx.printf("%s Stopped %q and marked it done\n", doneStyle.Render("✓"), habit.Name)
		return nil
	}
	ctx.printf("Stopped %q at %s\n", habit.Name, pct)
	return nil
}

type TimerStatusCmd struct {
	Habit string `arg:"" optional:"" help:"Habit id or name (default: all timers)."`
}

func (c *TimerStatusCmd) Run(ctx *Context) error {
	t, err := ctx.Tracker()
	if err != nil {
		return err
	}
	for _, id := range t.Tick() {
		if h, ok := t.GetHabit(id); ok {
			ctx.printf("%s %q finished\n", doneStyle.Render("✓"), h.Name)
		}
	}

	var timers []*models.TimerState
	if c.Habit != "" {
		habit, err := resolveHabit(t, c.Habit)
		if err != nil {
			return err
		}
		if state := t.GetHabitTimerState(habit.ID); state != nil {
			timers = append(timers, state)
		}
	} else {
		timers = t.ListTimers()
	}

	if len(timers) == 0 {
		ctx.println("No active timers.")
		return nil
	}
	now := t.Now().UnixMilli()
	for _, state := range timers {
		habit, ok := t.GetHabit(state.HabitID)
		if !ok {
			continue
		}
		ctx.printf("%-24s %s %5.1f%%  %s  %s\n",
			habit.Name, progressBar(int(state.Progress)), state.Progress,
			timerStatus(state), formatElapsed(state.Elapsed(now)))
	}
	return nil
}

func timerStatus(state *models.TimerState) string {
	switch {
	case state.IsPaused():
		return warnStyle.Render("paused ")
	case state.IsBackgrounded():
		return dimStyle.Render("frozen ")
	default:
		return doneStyle.Render("running")
	}
}

type TimerWatchCmd struct {
	Habit    string        `arg:"" help:"Habit id or name."`
	Interval time.Duration `help:"Refresh interval." default:"1s"`
}

func (c *TimerWatchCmd) Run(ctx *Context) error {
	t, habit, err := timedHabit(ctx, c.Habit)
	if err != nil {
		return err
	}
	if t.GetHabitTimerState(habit.ID) == nil {
		return fmt.Errorf("no timer for %q, start one with 'timer start'", habit.Name)
	}

	sigCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return watchTimer(sigCtx, ctx, t, habit, c.Interval)
}

// watchTimer redraws a progress line every interval until the timer ends or ctx is done
func watchTimer(ctx context.Context, cli *Context, t *tracker.Tracker, habit models.Habit, interval time.Duration) error {
	bar := progress.New(progress.WithDefaultGradient(), progress.WithWidth(40), progress.WithoutPercentage())
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		if slices.Contains(t.Tick(), habit.ID) {
			cli.printf("\r%s 100%%\n%s %q finished\n", bar.ViewAs(1), doneStyle.Render("✓"), habit.Name)
			return nil
		}
		state := t.GetHabitTimerState(habit.ID)
		if state == nil {
			cli.println("\nTimer stopped.")
			return nil
		}
		cli.printf("\r%s %5.1f%% %s", bar.ViewAs(state.Progress/100), state.Progress, timerStatus(state))

		select {
		case <-ctx.Done():
			cli.println()
			return nil
		case <-ticker.C:
		}
	}
}

type TimerCheckpointCmd struct {
	Habit    string  `arg:"" help:"Habit id or name."`
	Progress float64 `arg:"" help:"Progress percentage (0-100)."`
}

func (c *TimerCheckpointCmd) Run(ctx *Context) error {
	t, habit, err := timedHabit(ctx, c.Habit)
	if err != nil {
		return err
	}
	if !t.SaveTimerProgress(habit.ID, c.Progress) {
		return fmt.Errorf("could not save progress for %q", habit.Name)
	}
	ctx.printf("Saved %.0f%% for %q\n", models.ClampProgress(c.Progress), habit.Name)
	return nil
}

func timerPercent(t *tracker.Tracker, habitID string) string {
	state := t.GetHabitTimerState(habitID)
	if state == nil {
		return "0%"
	}
	return fmt.Sprintf("%.0f%%", state.Progress)
}

func formatElapsed(ms int64) string {
	d := time.Duration(ms) * time.Millisecond
	return fmt.Sprintf("%02d:%02d", int(d.Minutes()), int(d.Seconds())%60)
}
