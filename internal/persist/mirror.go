// Package persist mirrors in-memory collections to a storage.Provider in the background.
package persist

import (
	"context"
	"encoding/json"
	"sort"
	"sync"
	"time"

	"github.com/julianstephens/habitline/internal/logger"
	"github.com/julianstephens/habitline/internal/storage"
)

const writeTimeout = 10 * time.Second

// Mirror coalesces snapshots per key and writes them from a single goroutine.
// Writes are fire-and-forget: failures are logged and remembered per key, never returned.
type Mirror struct {
	provider storage.Provider

	mu      sync.Mutex
	pending map[string][]byte
	lastErr map[string]error
	closed  bool

	wake     chan struct{}
	flushReq chan chan struct{}
	stop     chan struct{}
	stopped  chan struct{}
	once     sync.Once
}

func NewMirror(provider storage.Provider) *Mirror {
	m := &Mirror{
		provider: provider,
		pending:  make(map[string][]byte),
		lastErr:  make(map[string]error),
		wake:     make(chan struct{}, 1),
		flushReq: make(chan chan struct{}),
		stop:     make(chan struct{}),
		stopped:  make(chan struct{}),
	}
	go m.run()
	return m
}

// Enqueue snapshots v as JSON now and schedules it for writing under key.
// A later Enqueue for the same key replaces an unwritten snapshot.
func (m *Mirror) Enqueue(key string, v interface{}) {
	data, err := json.Marshal(v)
	if err != nil {
		logger.Error("Failed to encode snapshot", "key", key, "error", err)
		return
	}

	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		logger.Warn("Dropping write after mirror closed", "key", key)
		return
	}
	m.pending[key] = data
	m.mu.Unlock()

	select {
	case m.wake <- struct{}{}:
	default:
	}
}

// Flush blocks until every snapshot enqueued before the call has been attempted
func (m *Mirror) Flush(ctx context.Context) error {
	done := make(chan struct{})
	select {
	case m.flushReq <- done:
	case <-m.stopped:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close flushes pending writes and stops the worker. Safe to call more than once.
func (m *Mirror) Close() error {
	m.once.Do(func() {
		m.mu.Lock()
		m.closed = true
		m.mu.Unlock()
		close(m.stop)
	})
	<-m.stopped
	return nil
}

// LastError reports the most recent write failure for key, nil after a successful write
func (m *Mirror) LastError(key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lastErr[key]
}

func (m *Mirror) run() {
	defer close(m.stopped)
	for {
		select {
		case <-m.wake:
			m.drain()
		case done := <-m.flushReq:
			m.drain()
			close(done)
		case <-m.stop:
			m.drain()
			return
		}
	}
}

func (m *Mirror) drain() {
	for {
		m.mu.Lock()
		batch := m.pending
		if len(batch) == 0 {
			m.mu.Unlock()
			return
		}
		m.pending = make(map[string][]byte)
		m.mu.Unlock()

		keys := make([]string, 0, len(batch))
		for k := range batch {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		for _, key := range keys {
			m.write(key, batch[key])
		}
	}
}

func (m *Mirror) write(key string, data []byte) {
	ctx, cancel := context.WithTimeout(context.Background(), writeTimeout)
	err := m.provider.SaveBlob(ctx, key, data)
	cancel()

	m.mu.Lock()
	if err != nil {
		m.lastErr[key] = err
	} else {
		delete(m.lastErr, key)
	}
	m.mu.Unlock()

	if err != nil {
		logger.Error("Failed to persist collection", "key", key, "error", err)
		return
	}
	logger.Debug("Persisted collection", "key", key, "bytes", len(data))
}
