package storage

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
)

// Opener builds a ready-to-use store: open the connection and run
// Initialize. It must return a *StoreInitError for unusable storage.
type Opener func(ctx context.Context) (Storage, error)

// OpenWithRepair runs open and, if it fails with *StoreInitError and path
// names a storage file, removes that file (with its -wal and -shm
// companions) and retries exactly once. An empty path disables the repair,
// which is what server-backed engines pass.
func OpenWithRepair(ctx context.Context, path string, open Opener, log *slog.Logger) (Storage, error) {
	s, err := open(ctx)
	if err == nil {
		return s, nil
	}

	var initErr *StoreInitError
	if !errors.As(err, &initErr) || path == "" {
		return nil, err
	}

	log.Warn("storage unusable, recreating storage file",
		slog.String("path", path),
		slog.String("error", err.Error()))

	for _, p := range []string{path, path + "-wal", path + "-shm"} {
		if rmErr := os.Remove(p); rmErr != nil && !os.IsNotExist(rmErr) {
			return nil, fmt.Errorf("OpenWithRepair: remove %s: %w (after %v)", p, rmErr, err)
		}
	}

	s, err = open(ctx)
	if err != nil {
		return nil, fmt.Errorf("OpenWithRepair: retry after recreating %s: %w", path, err)
	}

	log.Info("storage file recreated", slog.String("path", path))
	return s, nil
}
