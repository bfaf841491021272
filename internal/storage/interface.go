package storage

import (
	"context"
	"errors"
)

var (
	// ErrNotFound is returned by LoadBlob when a key has never been written
	ErrNotFound       = errors.New("storage: key not found")
	ErrNotInitialized = errors.New("storage not initialized, run 'habitline init' first")
)

// Provider persists opaque JSON blobs, one per collection key
type Provider interface {
	// Lifecycle
	Init() error
	Load() error
	Close() error

	// Blobs
	LoadBlob(ctx context.Context, key string) ([]byte, error)
	SaveBlob(ctx context.Context, key string, data []byte) error
	Keys(ctx context.Context) ([]string, error)
	ClearAll(ctx context.Context) error

	// Metadata
	GetConfigPath() string
}
