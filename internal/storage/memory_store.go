package storage

import (
	"context"
	"sync"
)

// MemoryStore is a process-local Provider used by tests and the memory:// scheme
type MemoryStore struct {
	mu    sync.Mutex
	blobs map[string][]byte
	// FailKeys makes SaveBlob fail for the listed keys
	FailKeys map[string]error
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{blobs: make(map[string][]byte)}
}

func (s *MemoryStore) Init() error  { return nil }
func (s *MemoryStore) Load() error  { return nil }
func (s *MemoryStore) Close() error { return nil }

func (s *MemoryStore) LoadBlob(_ context.Context, key string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	data, ok := s.blobs[key]
	if !ok {
		return nil, ErrNotFound
	}
	return append([]byte(nil), data...), nil
}

func (s *MemoryStore) SaveBlob(_ context.Context, key string, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err, ok := s.FailKeys[key]; ok {
		return err
	}
	s.blobs[key] = append([]byte(nil), data...)
	return nil
}

// SetFailure makes SaveBlob for key return err. A nil err clears it.
func (s *MemoryStore) SetFailure(key string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err == nil {
		delete(s.FailKeys, key)
		return
	}
	if s.FailKeys == nil {
		s.FailKeys = make(map[string]error)
	}
	s.FailKeys[key] = err
}

func (s *MemoryStore) Keys(_ context.Context) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return sortedKeys(s.blobs), nil
}

func (s *MemoryStore) ClearAll(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.blobs = make(map[string][]byte)
	return nil
}

func (s *MemoryStore) GetConfigPath() string {
	return "memory://"
}
