// Package redis stores blobs as plain string keys under a habitline: prefix.
package redis

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/go-redis/redis/v8"

	"github.com/julianstephens/habitline/internal/constants"
	"github.com/julianstephens/habitline/internal/storage"
)

const scanBatch = 100

type Store struct {
	url    string
	prefix string
	client *redis.Client
}

func New(redisURL string) *Store {
	return &Store{
		url:    redisURL,
		prefix: constants.AppName + ":",
	}
}

// connect parses the URL and pings the server
func (s *Store) connect() error {
	if s.client != nil {
		return nil
	}

	opt, err := redis.ParseURL(s.url)
	if err != nil {
		return fmt.Errorf("invalid redis URL: %w", err)
	}

	client := redis.NewClient(opt)
	if err := client.Ping(context.Background()).Err(); err != nil {
		client.Close()
		return fmt.Errorf("failed to connect to redis: %w", err)
	}
	s.client = client
	return nil
}

func (s *Store) Init() error {
	return s.connect()
}

func (s *Store) Load() error {
	return s.connect()
}

func (s *Store) Close() error {
	if s.client != nil {
		err := s.client.Close()
		s.client = nil
		return err
	}
	return nil
}

func (s *Store) key(k string) string {
	return s.prefix + k
}

func (s *Store) LoadBlob(ctx context.Context, key string) ([]byte, error) {
	if s.client == nil {
		return nil, storage.ErrNotInitialized
	}

	data, err := s.client.Get(ctx, s.key(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load %q: %w", key, err)
	}
	return data, nil
}

func (s *Store) SaveBlob(ctx context.Context, key string, data []byte) error {
	if s.client == nil {
		return storage.ErrNotInitialized
	}

	// no expiry: redis is the source of truth here, not a cache
	if err := s.client.Set(ctx, s.key(key), data, 0).Err(); err != nil {
		return fmt.Errorf("failed to save %q: %w", key, err)
	}
	return nil
}

// scan collects every prefixed key
func (s *Store) scan(ctx context.Context) ([]string, error) {
	var (
		cursor uint64
		keys   []string
	)
	for {
		batch, next, err := s.client.Scan(ctx, cursor, s.prefix+"*", scanBatch).Result()
		if err != nil {
			return nil, err
		}
		keys = append(keys, batch...)
		cursor = next
		if cursor == 0 {
			return keys, nil
		}
	}
}

func (s *Store) Keys(ctx context.Context) ([]string, error) {
	if s.client == nil {
		return nil, storage.ErrNotInitialized
	}

	raw, err := s.scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list keys: %w", err)
	}

	keys := make([]string, 0, len(raw))
	for _, k := range raw {
		keys = append(keys, strings.TrimPrefix(k, s.prefix))
	}
	sort.Strings(keys)
	return keys, nil
}

// ClearAll deletes only habitline keys, never the whole database
func (s *Store) ClearAll(ctx context.Context) error {
	if s.client == nil {
		return storage.ErrNotInitialized
	}

	keys, err := s.scan(ctx)
	if err != nil {
		return fmt.Errorf("failed to list keys: %w", err)
	}
	if len(keys) == 0 {
		return nil
	}
	if err := s.client.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("failed to clear storage: %w", err)
	}
	return nil
}

func (s *Store) GetConfigPath() string {
	return "redis"
}
