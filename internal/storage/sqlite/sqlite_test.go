package sqlite

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aanand-mishra/phone-roster/internal/config"
	"github.com/aanand-mishra/phone-roster/internal/storage"
	"github.com/aanand-mishra/phone-roster/internal/storage/storagetest"
)

func testConfig(path string) *config.Config {
	cfg := &config.Config{}
	cfg.Storage.Driver = config.DriverSQLite
	cfg.Storage.Path = path
	cfg.Storage.ConnectTimeout = 2 * time.Second
	return cfg
}

// createTestStore opens an uninitialised store in a temp dir.
func createTestStore(t *testing.T) *SQLite {
	t.Helper()
	s, err := New(context.Background(), testConfig(filepath.Join(t.TempDir(), "test.db")))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestContract(t *testing.T) {
	storagetest.Run(t, func(t *testing.T) storage.Storage {
		return createTestStore(t)
	})
}

func TestNew_CreatesFileAndDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "dir", "students.db")

	s, err := New(context.Background(), testConfig(path))
	require.NoError(t, err)
	defer s.Close()

	_, err = os.Stat(path)
	assert.NoError(t, err, "database file was not created")
	assert.Equal(t, path, s.Path())
}

func TestInitialize_SurvivesReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "test.db")

	s1, err := New(ctx, testConfig(path))
	require.NoError(t, err)
	require.NoError(t, s1.Initialize(ctx))
	ok, err := s1.UpdatePhone(ctx, "2023130", "03001234567")
	require.NoError(t, err)
	require.True(t, ok)
	require.NoError(t, s1.Close())

	s2, err := New(ctx, testConfig(path))
	require.NoError(t, err)
	defer s2.Close()
	require.NoError(t, s2.Initialize(ctx))

	students, err := s2.ListAll(ctx)
	require.NoError(t, err)
	assert.Len(t, students, storage.RosterSize())

	st, err := s2.FindByRegNumber(ctx, "2023130")
	require.NoError(t, err)
	assert.Equal(t, "03001234567", st.Phone())
}

func TestUpdatePhone_StampsUpdatedAt(t *testing.T) {
	ctx := context.Background()
	s := createTestStore(t)
	require.NoError(t, s.Initialize(ctx))

	fixed := time.Date(2024, 3, 1, 9, 30, 0, 0, time.UTC)
	s.now = func() time.Time { return fixed }

	ok, err := s.UpdatePhone(ctx, "2023130", "03001234567")
	require.NoError(t, err)
	require.True(t, ok)

	st, err := s.FindByRegNumber(ctx, "2023130")
	require.NoError(t, err)
	require.NotNil(t, st.UpdatedAt)
	assert.True(t, fixed.Equal(*st.UpdatedAt), "updated_at = %v, want %v", st.UpdatedAt, fixed)
}

func TestUpdatePhone_ConcurrentSameNumberHasOneWinner(t *testing.T) {
	ctx := context.Background()
	s := createTestStore(t)
	require.NoError(t, s.Initialize(ctx))

	regs := []string{"2023130", "2023682", "2023021", "2023339", "2023546", "2023425"}

	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		wins int
	)
	for _, reg := range regs {
		wg.Add(1)
		go func(reg string) {
			defer wg.Done()
			ok, err := s.UpdatePhone(ctx, reg, "03009999999")
			assert.NoError(t, err)
			if ok {
				mu.Lock()
				wins++
				mu.Unlock()
			}
		}(reg)
	}
	wg.Wait()

	assert.Equal(t, 1, wins)

	var holders int
	require.NoError(t, s.Db.QueryRow(
		"SELECT COUNT(*) FROM students WHERE phone_number = ?", "03009999999",
	).Scan(&holders))
	assert.Equal(t, 1, holders)
}

func TestInitialize_CorruptFileIsStoreInitError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "students.db")
	require.NoError(t, os.WriteFile(path, junk(), 0o644))

	_, err := openAndInitialize(context.Background(), testConfig(path))
	require.Error(t, err)

	var initErr *storage.StoreInitError
	require.True(t, errors.As(err, &initErr), "got %T: %v", err, err)
	assert.Equal(t, path, initErr.Path)
}

func TestOpenWithRepair_RecreatesCorruptFile(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "students.db")
	require.NoError(t, os.WriteFile(path, junk(), 0o644))

	cfg := testConfig(path)
	log := slog.New(slog.NewTextHandler(io.Discard, nil))

	s, err := storage.OpenWithRepair(ctx, path, func(ctx context.Context) (storage.Storage, error) {
		return openAndInitialize(ctx, cfg)
	}, log)
	require.NoError(t, err)
	defer s.Close()

	students, err := s.ListAll(ctx)
	require.NoError(t, err)
	assert.Len(t, students, storage.RosterSize())
}

func TestOpenWithRepair_RetriesOnlyOnce(t *testing.T) {
	calls := 0
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	path := filepath.Join(t.TempDir(), "students.db")

	_, err := storage.OpenWithRepair(context.Background(), path, func(context.Context) (storage.Storage, error) {
		calls++
		return nil, storage.NewStoreInitError(path, errors.New("disk on fire"))
	}, log)

	require.Error(t, err)
	assert.Equal(t, 2, calls)
	assert.Contains(t, err.Error(), "disk on fire")
}

func TestOpenWithRepair_OtherErrorsAreNotRepaired(t *testing.T) {
	calls := 0
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	path := filepath.Join(t.TempDir(), "students.db")
	require.NoError(t, os.WriteFile(path, []byte("keep me"), 0o644))

	_, err := storage.OpenWithRepair(context.Background(), path, func(context.Context) (storage.Storage, error) {
		calls++
		return nil, errors.New("plain failure")
	}, log)

	require.Error(t, err)
	assert.Equal(t, 1, calls)
	_, statErr := os.Stat(path)
	assert.NoError(t, statErr, "file must be left alone")
}

// junk is a page-sized blob without the SQLite header.
func junk() []byte {
	return bytes.Repeat([]byte("not a database "), 512)
}

// openAndInitialize mirrors the CLI's sqlite opener.
func openAndInitialize(ctx context.Context, cfg *config.Config) (storage.Storage, error) {
	s, err := New(ctx, cfg)
	if err != nil {
		return nil, err
	}
	if err := s.Initialize(ctx); err != nil {
		s.Close()
		return nil, err
	}
	return s, nil
}
