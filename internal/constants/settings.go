package constants

import "time"

const (
	// Environment variables
	EnvStorage        = "HABITLINE_STORAGE"
	EnvConfigDir      = "HABITLINE_CONFIG_DIR"
	EnvDebug          = "HABITLINE_DEBUG"
	EnvTimezone       = "HABITLINE_TIMEZONE"
	EnvWeeklyResetDay = "HABITLINE_WEEKLY_RESET_DAY"
	EnvTickInterval   = "HABITLINE_TICK_INTERVAL"
	EnvSeedSampleData = "HABITLINE_SEED_SAMPLE_DATA"
	EnvNotifier       = "HABITLINE_NOTIFIER"
	EnvAMQPURL        = "HABITLINE_AMQP_URL"
	EnvAMQPQueue      = "HABITLINE_AMQP_QUEUE"
	EnvAPIAddr        = "HABITLINE_API_ADDR"
	EnvJWTSecret      = "HABITLINE_JWT_SECRET"
	EnvTokenTTLHours  = "HABITLINE_TOKEN_TTL_HOURS"
	EnvCORSOrigins    = "HABITLINE_CORS_ORIGINS"

	// Default Settings Values
	DefaultRemindersEnabled = true
	DefaultWeeklyResetDay   = time.Saturday
	DefaultTickInterval     = time.Second
	DefaultTimezone         = "Local" // Use system local timezone by default
	DefaultAPIAddr          = ":8080"
	DefaultTokenTTLHours    = 72
	DefaultUsername         = "friend"
)

// DefaultCategories are seeded on first run so habits always have a home.
var DefaultCategories = []struct {
	Name  string
	Color string
}{
	{"Health", "green"},
	{"Productivity", "blue"},
	{"Mindfulness", "purple"},
	{"Learning", "orange"},
}
