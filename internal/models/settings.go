package models

// Settings represents application-wide settings
type Settings struct {
	RemindersEnabled bool `json:"reminders_enabled"` // master switch for habit reminders
}
