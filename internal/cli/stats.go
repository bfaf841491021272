package cli

import (
	"strconv"

	"github.com/charmbracelet/bubbles/progress"

	"github.com/julianstephens/habitline/internal/utils"
)

var statsBar = progress.New(progress.WithDefaultGradient(), progress.WithWidth(20), progress.WithoutPercentage())

// progressBar renders a percentage (0-100) as a fixed-width bar
func progressBar(pct int) string {
	return statsBar.ViewAs(float64(pct) / 100)
}

type StatsCmd struct {
	Weekly     bool `short:"w" help:"Show progress for each of the last seven days."`
	Categories bool `short:"c" help:"Show statistics per category."`
}

func (c *StatsCmd) Run(ctx *Context) error {
	t, err := ctx.Tracker()
	if err != nil {
		return err
	}
	t.Tick()

	if c.Weekly {
		ctx.println(headerStyle.Render("Last 7 days"))
		for _, day := range t.GetWeeklyProgress() {
			label := day.Date
			if wd, err := utils.WeekdayOf(day.Date); err == nil {
				label = wd.String()[:3] + " " + day.Date
			}
			ctx.printf("  %s %s %3d%%  (%d/%d)\n", label, progressBar(day.Progress), day.Progress, day.Completed, day.Scheduled)
		}
		return nil
	}

	if c.Categories {
		ctx.println(headerStyle.Render("Categories"))
		for _, s := range t.GetCategoryStats() {
			ctx.printf("  %s  %d habits, %d done today, %d%% average 30-day rate\n",
				categoryStyle(s.Color).Render(s.Name), s.HabitCount, s.CompletedToday, s.AverageCompletionRate)
		}
		return nil
	}

	daily := t.GetDailyProgress()
	ctx.printf("%s %s %d%%\n\n", headerStyle.Render("Today"), progressBar(daily), daily)

	habits := t.ListHabits(false)
	if len(habits) == 0 {
		ctx.println("No habits found.")
		return nil
	}
	ctx.printf("%-24s  %6s  %4s  %5s\n", "HABIT", "STREAK", "BEST", "RATE")
	for _, h := range habits {
		rate := "-"
		if !h.IsOneTime() {
			rate = formatPercent(t.GetCompletionRate(h.ID))
		}
		ctx.printf("%-24s  %6d  %4d  %5s\n", h.Name, t.GetHabitStreak(h.ID), t.GetBestStreak(h.ID), rate)
	}
	return nil
}

func formatPercent(v int) string {
	return strconv.Itoa(v) + "%"
}
