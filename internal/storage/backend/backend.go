// Package backend picks a storage.Provider implementation from a location string.
package backend

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/julianstephens/habitline/internal/storage"
	"github.com/julianstephens/habitline/internal/storage/mongo"
	"github.com/julianstephens/habitline/internal/storage/postgres"
	"github.com/julianstephens/habitline/internal/storage/redis"
	"github.com/julianstephens/habitline/internal/storage/sqlite"
)

type Kind string

const (
	KindSQLite   Kind = "sqlite"
	KindPostgres Kind = "postgres"
	KindRedis    Kind = "redis"
	KindMongo    Kind = "mongo"
	KindJSON     Kind = "json"
	KindMemory   Kind = "memory"
)

var ErrEmptyLocation = errors.New("storage location is empty")

// Detect classifies a location by URL scheme, falling back to the file extension
func Detect(location string) Kind {
	lower := strings.ToLower(location)
	switch {
	case strings.HasPrefix(lower, "postgres://"), strings.HasPrefix(lower, "postgresql://"),
		strings.Contains(lower, "host=") && strings.Contains(lower, "dbname="):
		return KindPostgres
	case strings.HasPrefix(lower, "redis://"), strings.HasPrefix(lower, "rediss://"):
		return KindRedis
	case strings.HasPrefix(lower, "mongodb://"), strings.HasPrefix(lower, "mongodb+srv://"):
		return KindMongo
	case strings.HasPrefix(lower, "memory://"):
		return KindMemory
	case strings.HasSuffix(lower, ".json"):
		return KindJSON
	default:
		return KindSQLite
	}
}

// ExpandPath resolves a leading ~ to the user's home directory
func ExpandPath(path string) (string, error) {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to resolve home directory: %w", err)
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~")), nil
}

// Open returns an unopened provider for location; call Init or Load on it
func Open(location string) (storage.Provider, error) {
	if strings.TrimSpace(location) == "" {
		return nil, ErrEmptyLocation
	}
	switch Detect(location) {
	case KindPostgres:
		if _, err := postgres.ValidateConnString(location); err != nil {
			return nil, err
		}
		return postgres.New(location), nil
	case KindRedis:
		return redis.New(location), nil
	case KindMongo:
		return mongo.New(location), nil
	case KindMemory:
		return storage.NewMemoryStore(), nil
	}

	path, err := ExpandPath(location)
	if err != nil {
		return nil, err
	}
	if Detect(location) == KindJSON {
		return storage.NewJSONStore(path), nil
	}
	return sqlite.NewStore(path), nil
}

// OpenSecret is Open for locations read from the OS keyring. Those may carry
// a password, so the embedded-credentials check is skipped for postgres.
func OpenSecret(location string) (storage.Provider, error) {
	if Detect(location) == KindPostgres {
		return postgres.New(location), nil
	}
	return Open(location)
}
