package storage_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/julianstephens/habitline/internal/storage"
	"github.com/julianstephens/habitline/internal/storage/storagetest"
)

func TestMemoryStoreContract(t *testing.T) {
	storagetest.RunProviderContract(t, storage.NewMemoryStore())
}

func TestJSONStoreContract(t *testing.T) {
	s := storage.NewJSONStore(filepath.Join(t.TempDir(), "habitline.json"))
	require.NoError(t, s.Init())
	storagetest.RunProviderContract(t, s)
}

func TestJSONStorePersistsAcrossLoads(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "habitline.json")
	ctx := context.Background()

	s := storage.NewJSONStore(path)
	require.NoError(t, s.Init())
	require.NoError(t, s.SaveBlob(ctx, "settings", []byte(`{"reminders_enabled":false}`)))

	reopened := storage.NewJSONStore(path)
	require.NoError(t, reopened.Load())
	got, err := reopened.LoadBlob(ctx, "settings")
	require.NoError(t, err)
	assert.JSONEq(t, `{"reminders_enabled":false}`, string(got))

	// Init on an existing file keeps its contents
	again := storage.NewJSONStore(path)
	require.NoError(t, again.Init())
	_, err = again.LoadBlob(ctx, "settings")
	assert.NoError(t, err)
}

func TestJSONStoreLoadUninitialized(t *testing.T) {
	s := storage.NewJSONStore(filepath.Join(t.TempDir(), "missing.json"))
	assert.ErrorIs(t, s.Load(), storage.ErrNotInitialized)
}

func TestJSONStoreRejectsInvalidJSON(t *testing.T) {
	s := storage.NewJSONStore(filepath.Join(t.TempDir(), "habitline.json"))
	require.NoError(t, s.Init())
	assert.Error(t, s.SaveBlob(context.Background(), "habits", []byte("{not json")))
}

func TestJSONStoreCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "habitline.json")
	require.NoError(t, os.WriteFile(path, []byte("garbage"), 0600))
	assert.Error(t, storage.NewJSONStore(path).Load())
}

func TestMemoryStoreFailure(t *testing.T) {
	ctx := context.Background()
	s := storage.NewMemoryStore()
	boom := errors.New("disk full")

	s.SetFailure("habits", boom)
	assert.ErrorIs(t, s.SaveBlob(ctx, "habits", []byte(`[]`)), boom)
	assert.NoError(t, s.SaveBlob(ctx, "categories", []byte(`[]`)))

	s.SetFailure("habits", nil)
	assert.NoError(t, s.SaveBlob(ctx, "habits", []byte(`[]`)))
}

func TestCopyAll(t *testing.T) {
	ctx := context.Background()
	src := storage.NewMemoryStore()
	dst := storage.NewMemoryStore()
	require.NoError(t, src.SaveBlob(ctx, "habits", []byte(`[{"id":"a"}]`)))
	require.NoError(t, src.SaveBlob(ctx, "username", []byte(`"ada"`)))
	require.NoError(t, dst.SaveBlob(ctx, "stale", []byte(`1`)))

	n, err := storage.CopyAll(ctx, src, dst)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	keys, err := dst.Keys(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"habits", "username"}, keys)
}
