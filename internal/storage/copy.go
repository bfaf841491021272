package storage

import (
	"context"
	"fmt"
)

// CopyAll replaces the contents of dst with every blob in src.
// Returns the number of blobs copied.
func CopyAll(ctx context.Context, src, dst Provider) (int, error) {
	keys, err := src.Keys(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to list source keys: %w", err)
	}

	if err := dst.ClearAll(ctx); err != nil {
		return 0, fmt.Errorf("failed to clear destination: %w", err)
	}

	for i, key := range keys {
		data, err := src.LoadBlob(ctx, key)
		if err != nil {
			return i, fmt.Errorf("failed to read %q: %w", key, err)
		}
		if err := dst.SaveBlob(ctx, key, data); err != nil {
			return i, fmt.Errorf("failed to write %q: %w", key, err)
		}
	}
	return len(keys), nil
}
