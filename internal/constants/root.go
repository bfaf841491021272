package constants

import "time"

// AppState is the lifecycle state reported by the presentation layer
type AppState string

// FrequencyType represents how often a habit is scheduled
type FrequencyType string

const (
	AppName            = "habitline"
	DefaultKeyringUser = "storage-connection"
	DefaultConfigDir   = "~/.config/habitline"
	DefaultStoragePath = "~/.config/habitline/habitline.db"
	Version            = "v0.3.0"

	// DateFormat is the standard date format used throughout the application (YYYY-MM-DD)
	DateFormat = "2006-01-02"

	// TimeFormat is the standard time format used throughout the application (HH:MM)
	TimeFormat = "15:04"

	// Frequency constants
	FrequencyDaily   FrequencyType = "daily"
	FrequencyWeekly  FrequencyType = "weekly"
	FrequencyCustom  FrequencyType = "custom"
	FrequencyOneTime FrequencyType = "one-time"

	// App lifecycle constants
	AppStateActive     AppState = "active"
	AppStateBackground AppState = "background"

	// Progress constants
	ProgressComplete     = 100
	CompletionRateWindow = 30 // days, today inclusive
	WeeklyProgressDays   = 7

	// Backup constants
	MaxBackups       = 14
	BackupDirName    = "backups"
	BackupFilePrefix = "habitline-"
	BackupFileSuffix = ".db"

	// Notify constants
	NotifyMaxRetries       = 3
	NotifyRetryDelay       = 100 * time.Millisecond
	NotifierLockfileName   = "habitline-notifier.lock"
	NotificationDurationMs = 5000
	TrayAppIdentifier      = "com.julianstephens.habitline"
	DefaultAMQPQueue       = "habitline.completions"
)
