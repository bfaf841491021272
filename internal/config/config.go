// Package config resolves runtime settings from .env files and the environment.
package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/julianstephens/habitline/internal/constants"
	"github.com/julianstephens/habitline/internal/utils"
)

type Config struct {
	Storage        string
	ConfigDir      string
	Debug          bool
	Timezone       string
	WeeklyResetDay time.Weekday
	TickInterval   time.Duration
	SeedSampleData bool
	Notifiers      []string
	AMQPURL        string
	AMQPQueue      string
	APIAddr        string
	JWTSecret      string
	TokenTTL       time.Duration
	CORSOrigins    []string
}

// LoadEnvFiles loads the given .env files, or ./.env when none are given.
// Missing files are ignored; variables already set in the environment win.
func LoadEnvFiles(files ...string) {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if _, err := os.Stat(f); err != nil {
			continue
		}
		_ = godotenv.Load(f)
	}
}

func Load() Config {
	return Config{
		Storage:        getEnv(constants.EnvStorage, ""),
		ConfigDir:      getEnv(constants.EnvConfigDir, constants.DefaultConfigDir),
		Debug:          getEnvBool(constants.EnvDebug, false),
		Timezone:       getEnv(constants.EnvTimezone, constants.DefaultTimezone),
		WeeklyResetDay: getEnvWeekday(constants.EnvWeeklyResetDay, constants.DefaultWeeklyResetDay),
		TickInterval:   getEnvDuration(constants.EnvTickInterval, constants.DefaultTickInterval),
		SeedSampleData: getEnvBool(constants.EnvSeedSampleData, false),
		Notifiers:      getEnvList(constants.EnvNotifier, nil),
		AMQPURL:        getEnv(constants.EnvAMQPURL, ""),
		AMQPQueue:      getEnv(constants.EnvAMQPQueue, constants.DefaultAMQPQueue),
		APIAddr:        getEnv(constants.EnvAPIAddr, constants.DefaultAPIAddr),
		JWTSecret:      getEnv(constants.EnvJWTSecret, ""),
		TokenTTL:       time.Duration(getEnvInt(constants.EnvTokenTTLHours, constants.DefaultTokenTTLHours)) * time.Hour,
		CORSOrigins:    getEnvList(constants.EnvCORSOrigins, []string{"http://localhost:5173", "http://127.0.0.1:5173"}),
	}
}

// Location resolves the configured timezone, falling back to local time
func (c Config) Location() *time.Location {
	loc, err := utils.LoadLocation(c.Timezone)
	if err != nil {
		return time.Local
	}
	return loc
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}

	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvBool(key string, fallback bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}

	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}

	parsed, err := time.ParseDuration(value)
	if err != nil || parsed <= 0 {
		return fallback
	}
	return parsed
}

func getEnvWeekday(key string, fallback time.Weekday) time.Weekday {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}

	wd, err := utils.ParseWeekday(value)
	if err != nil {
		return fallback
	}
	return wd
}

func getEnvList(key string, fallback []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}

	parts := strings.Split(value, ",")
	items := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			items = append(items, trimmed)
		}
	}
	if len(items) == 0 {
		return fallback
	}
	return items
}
