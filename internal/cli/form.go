package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/huh"

	"github.com/julianstephens/habitline/internal/constants"
	"github.com/julianstephens/habitline/internal/models"
	"github.com/julianstephens/habitline/internal/tracker"
	"github.com/julianstephens/habitline/internal/utils"
)

// habitFormModel holds the raw string values bound to the interactive form
type habitFormModel struct {
	Name       string
	Frequency  constants.FrequencyType
	Days       string
	CategoryID string
	Time       string
	Duration   string
	Reminders  bool
}

func newHabitFormModel(name string) *habitFormModel {
	return &habitFormModel{
		Name:      name,
		Frequency: constants.FrequencyDaily,
		Reminders: true,
	}
}

func newHabitForm(fm *habitFormModel, categories []models.Category) *huh.Form {
	catOptions := make([]huh.Option[string], 0, len(categories))
	for _, c := range categories {
		catOptions = append(catOptions, huh.NewOption(c.Name, c.ID))
	}

	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Habit Name").
				Value(&fm.Name).
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return fmt.Errorf("habit name cannot be empty")
					}
					return nil
				}),
			huh.NewSelect[constants.FrequencyType]().
				Title("Frequency").
				Options(
					huh.NewOption("Daily", constants.FrequencyDaily),
					huh.NewOption("Weekly", constants.FrequencyWeekly),
					huh.NewOption("Custom days", constants.FrequencyCustom),
					huh.NewOption("One-time", constants.FrequencyOneTime),
				).
				Value(&fm.Frequency),
			huh.NewInput().
				Title("Days").
				Description("For custom frequency, e.g. mon,wed,fri").
				Value(&fm.Days).
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return nil
					}
					_, err := utils.ParseWeekdays(s)
					return err
				}),
			huh.NewSelect[string]().
				Title("Category").
				Options(catOptions...).
				Value(&fm.CategoryID),
		),
		huh.NewGroup(
			huh.NewInput().
				Title("Time (HH:MM)").
				Description("Leave empty for anytime").
				Value(&fm.Time).
				Validate(func(s string) error {
					if s != "" && !utils.ValidateTimeFormat(s) {
						return fmt.Errorf("time must be HH:MM")
					}
					return nil
				}),
			huh.NewInput().
				Title("Duration (min)").
				Description("Leave empty for a checkbox habit").
				Value(&fm.Duration).
				Validate(validateOptionalMinutes),
			huh.NewConfirm().
				Title("Notify on completion").
				Value(&fm.Reminders),
		),
	).WithTheme(huh.ThemeDracula())
}

func validateOptionalMinutes(s string) error {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	i, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return err
	}
	if i <= 0 {
		return fmt.Errorf("duration must be a positive number of minutes")
	}
	return nil
}

// habit converts the form values into a habit ready for AddHabit
func (fm *habitFormModel) habit() (models.Habit, error) {
	freq := models.Frequency{Type: fm.Frequency}
	if fm.Frequency == constants.FrequencyCustom {
		days, err := utils.ParseWeekdays(fm.Days)
		if err != nil {
			return models.Habit{}, err
		}
		freq.Days = days
	}

	habit := models.Habit{
		Name:       strings.TrimSpace(fm.Name),
		Frequency:  freq.Normalize(),
		CategoryID: fm.CategoryID,
		Time:       strings.TrimSpace(fm.Time),
	}
	if err := validateOptionalMinutes(fm.Duration); err != nil {
		return models.Habit{}, err
	}
	if d := strings.TrimSpace(fm.Duration); d != "" {
		minutes, _ := strconv.Atoi(d)
		habit.Duration = &minutes
	}
	if !fm.Reminders {
		off := false
		habit.ReminderEnabled = &off
	}
	return habit, habit.Validate()
}

func runHabitForm(t *tracker.Tracker, name string) (models.Habit, error) {
	fm := newHabitFormModel(name)
	categories := t.ListCategories()
	if len(categories) > 0 {
		fm.CategoryID = categories[0].ID
	}
	if err := newHabitForm(fm, categories).Run(); err != nil {
		return models.Habit{}, err
	}
	return fm.habit()
}
