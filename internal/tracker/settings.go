package tracker

import (
	"strings"

	"github.com/julianstephens/habitline/internal/constants"
	"github.com/julianstephens/habitline/internal/models"
)

func (t *Tracker) Username() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.username
}

// SetUsername stores the display name; a blank name resets it to the default
func (t *Tracker) SetUsername(name string) {
	name = strings.TrimSpace(name)
	if name == "" {
		name = constants.DefaultUsername
	}
	t.update(func() {
		t.username = name
		t.persistUsername()
	})
}

func (t *Tracker) Settings() models.Settings {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.settings
}

// SetGlobalRemindersEnabled is the master switch for completion notifications
func (t *Tracker) SetGlobalRemindersEnabled(enabled bool) {
	t.update(func() {
		t.settings.RemindersEnabled = enabled
		t.persistSettings()
	})
}
