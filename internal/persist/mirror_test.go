package persist

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/julianstephens/habitline/internal/storage"
)

func flush(t *testing.T, m *Mirror) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := m.Flush(ctx); err != nil {
		t.Fatalf("Flush() error = %v", err)
	}
}

func TestEnqueueWrites(t *testing.T) {
	store := storage.NewMemoryStore()
	m := NewMirror(store)
	defer m.Close()

	m.Enqueue("username", "ada")
	m.Enqueue("settings", map[string]bool{"reminders_enabled": true})
	flush(t, m)

	got, err := store.LoadBlob(context.Background(), "username")
	if err != nil || string(got) != `"ada"` {
		t.Errorf("username = %q, %v", got, err)
	}
	got, err = store.LoadBlob(context.Background(), "settings")
	if err != nil || string(got) != `{"reminders_enabled":true}` {
		t.Errorf("settings = %q, %v", got, err)
	}
}

func TestSnapshotTakenAtEnqueue(t *testing.T) {
	store := storage.NewMemoryStore()
	m := NewMirror(store)
	defer m.Close()

	habits := []string{"read"}
	m.Enqueue("habits", habits)
	habits[0] = "mutated after enqueue"
	flush(t, m)

	got, _ := store.LoadBlob(context.Background(), "habits")
	if string(got) != `["read"]` {
		t.Errorf("habits = %s, want the enqueue-time snapshot", got)
	}
}

func TestLatestSnapshotWins(t *testing.T) {
	store := storage.NewMemoryStore()
	m := NewMirror(store)
	defer m.Close()

	for i := 0; i < 50; i++ {
		m.Enqueue("username", i)
	}
	flush(t, m)

	got, _ := store.LoadBlob(context.Background(), "username")
	if string(got) != "49" {
		t.Errorf("username = %s, want 49", got)
	}
}

func TestFailingKeyIsolated(t *testing.T) {
	store := storage.NewMemoryStore()
	boom := errors.New("quota exceeded")
	store.SetFailure("progress_history", boom)

	m := NewMirror(store)
	defer m.Close()

	m.Enqueue("progress_history", map[string]int{"h1": 1})
	m.Enqueue("habits", []string{"h1"})
	flush(t, m)

	if _, err := store.LoadBlob(context.Background(), "habits"); err != nil {
		t.Errorf("habits not written: %v", err)
	}
	if !errors.Is(m.LastError("progress_history"), boom) {
		t.Errorf("LastError() = %v, want %v", m.LastError("progress_history"), boom)
	}
	if m.LastError("habits") != nil {
		t.Errorf("LastError(habits) = %v", m.LastError("habits"))
	}

	store.SetFailure("progress_history", nil)
	m.Enqueue("progress_history", map[string]int{"h1": 2})
	flush(t, m)
	if m.LastError("progress_history") != nil {
		t.Error("LastError() not cleared after a successful write")
	}
}

func TestUnencodableValueDropped(t *testing.T) {
	store := storage.NewMemoryStore()
	m := NewMirror(store)
	defer m.Close()

	m.Enqueue("habits", make(chan int))
	flush(t, m)

	if _, err := store.LoadBlob(context.Background(), "habits"); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("LoadBlob() error = %v, want ErrNotFound", err)
	}
}

func TestConcurrentEnqueue(t *testing.T) {
	store := storage.NewMemoryStore()
	m := NewMirror(store)
	defer m.Close()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			for j := 0; j < 20; j++ {
				m.Enqueue("completion_entries", []int{i, j})
			}
		}(i)
	}
	wg.Wait()
	flush(t, m)

	if _, err := store.LoadBlob(context.Background(), "completion_entries"); err != nil {
		t.Errorf("completion_entries not written: %v", err)
	}
}

func TestCloseDrainsAndIsIdempotent(t *testing.T) {
	store := storage.NewMemoryStore()
	m := NewMirror(store)

	m.Enqueue("categories", []string{"Health"})
	if err := m.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if err := m.Close(); err != nil {
		t.Fatalf("second Close() error = %v", err)
	}

	if _, err := store.LoadBlob(context.Background(), "categories"); err != nil {
		t.Errorf("categories not written before close: %v", err)
	}

	m.Enqueue("habits", []string{})
	if err := m.Flush(context.Background()); err != nil {
		t.Errorf("Flush() after Close = %v", err)
	}
}
