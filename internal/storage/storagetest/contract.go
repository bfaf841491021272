// Package storagetest holds the behavioural checks every storage.Provider must pass.
package storagetest

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/julianstephens/habitline/internal/storage"
)

// RunProviderContract exercises the blob API of an initialized provider.
// The provider must start empty.
func RunProviderContract(t *testing.T, p storage.Provider) {
	t.Helper()
	ctx := context.Background()

	t.Run("missing key", func(t *testing.T) {
		_, err := p.LoadBlob(ctx, "habits")
		assert.True(t, errors.Is(err, storage.ErrNotFound), "expected ErrNotFound, got %v", err)
	})

	t.Run("save then load", func(t *testing.T) {
		require.NoError(t, p.SaveBlob(ctx, "habits", []byte(`[{"id":"h1"}]`)))
		got, err := p.LoadBlob(ctx, "habits")
		require.NoError(t, err)
		assert.JSONEq(t, `[{"id":"h1"}]`, string(got))
	})

	t.Run("overwrite", func(t *testing.T) {
		require.NoError(t, p.SaveBlob(ctx, "username", []byte(`"ada"`)))
		require.NoError(t, p.SaveBlob(ctx, "username", []byte(`"grace"`)))
		got, err := p.LoadBlob(ctx, "username")
		require.NoError(t, err)
		assert.JSONEq(t, `"grace"`, string(got))
	})

	t.Run("keys", func(t *testing.T) {
		keys, err := p.Keys(ctx)
		require.NoError(t, err)
		assert.ElementsMatch(t, []string{"habits", "username"}, keys)
	})

	t.Run("clear all", func(t *testing.T) {
		require.NoError(t, p.ClearAll(ctx))
		keys, err := p.Keys(ctx)
		require.NoError(t, err)
		assert.Empty(t, keys)

		_, err = p.LoadBlob(ctx, "habits")
		assert.True(t, errors.Is(err, storage.ErrNotFound))
	})
}
