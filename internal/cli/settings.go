package cli

import (
	"fmt"
	"strings"
)

type SettingsCmd struct {
	List      bool   `short:"l" help:"Show the current settings."`
	Reminders string `help:"Turn completion notifications on or off for all habits."`
	Username  string `help:"Name used to greet you."`
}

func (c *SettingsCmd) Validate() error {
	switch strings.ToLower(c.Reminders) {
	case "", "on", "off":
		return nil
	default:
		return fmt.Errorf("--reminders must be on or off, got %q", c.Reminders)
	}
}

func (c *SettingsCmd) Run(ctx *Context) error {
	t, err := ctx.Tracker()
	if err != nil {
		return err
	}

	changed := false
	if c.Reminders != "" {
		t.SetGlobalRemindersEnabled(strings.EqualFold(c.Reminders, "on"))
		changed = true
	}
	if c.Username != "" {
		t.SetUsername(c.Username)
		changed = true
	}
	if changed && !c.List {
		ctx.println("Settings updated.")
		return nil
	}

	settings := t.Settings()
	ctx.println(headerStyle.Render("Settings"))
	ctx.printf("  Username:         %s\n", t.Username())
	ctx.printf("  Reminders:        %s\n", onOff(settings.RemindersEnabled))
	ctx.printf("  Weekly reset day: %s\n", t.WeeklyResetDay())
	ctx.printf("  Timezone:         %s\n", t.Now().Location())
	ctx.printf("  Storage:          %s\n", ctx.Store.GetConfigPath())
	return nil
}
