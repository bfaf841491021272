package postgres

import (
	"context"
	"os"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/julianstephens/habitline/internal/storage/storagetest"
)

// Set POSTGRES_TEST_URL to run, e.g.
// POSTGRES_TEST_URL="postgres://habitline@localhost:5432/habitline_test?sslmode=disable"
func TestStore_Integration(t *testing.T) {
	connStr := os.Getenv("POSTGRES_TEST_URL")
	if connStr == "" {
		t.Skip("POSTGRES_TEST_URL not set, skipping PostgreSQL integration test")
	}

	store := New(connStr)
	require.NoError(t, store.Init())
	defer store.Close()
	require.NoError(t, store.ClearAll(context.Background()))

	storagetest.RunProviderContract(t, store)

	// Load on a second handle validates the schema version
	second := New(connStr)
	require.NoError(t, second.Load())
	second.Close()
}
