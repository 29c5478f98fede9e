// Package sqlite provides the default, SQLite-backed implementation of the
// storage.Storage interface using Go's standard database/sql package.
//
// WHY SQLite?
// ───────────
// The roster is 22 rows. SQLite stores everything in a single file on disk:
// no network, no separate server process. When that file is unusable the
// bootstrap can simply delete it and start over (see storage.OpenWithRepair).
//
// The blank import below registers the sqlite3 driver with database/sql.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/aanand-mishra/phone-roster/internal/config"
	"github.com/aanand-mishra/phone-roster/internal/storage"
	"github.com/aanand-mishra/phone-roster/internal/types"

	// Blank import: side-effect only (registers the "sqlite3" driver).
	_ "github.com/mattn/go-sqlite3"
)

// Compile-time check that *SQLite satisfies the Record Store contract.
var _ storage.Storage = (*SQLite)(nil)

// SQLite is the concrete SQLite implementation of storage.Storage.
// It holds a *sql.DB which is a connection pool managed by database/sql,
// limited to one connection because SQLite allows a single writer.
type SQLite struct {
	Db   *sql.DB
	path string

	// now stamps updated_at; replaced in tests.
	now func() time.Time
}

// New opens (creating if needed) the SQLite file at cfg.Storage.Path and
// verifies the connection within cfg.Storage.ConnectTimeout. It does not
// create the table; call Initialize for that.
//
// Every failure is a *storage.StoreInitError so the caller can decide to
// recreate the file.
func New(ctx context.Context, cfg *config.Config) (*SQLite, error) {
	path := cfg.Storage.Path

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, storage.NewStoreInitError(path, fmt.Errorf("sqlite.New: create dir: %w", err))
		}
	}

	// _busy_timeout makes a locked database wait instead of failing at
	// once; WAL lets the directory be read while a submission is written.
	dsn := fmt.Sprintf("file:%s?_busy_timeout=%d&_journal_mode=WAL&_foreign_keys=on",
		path, cfg.Storage.ConnectTimeout.Milliseconds())

	// sql.Open does NOT open a real connection yet; it just validates
	// the driver name and DSN. Ping below forces the first connection.
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, storage.NewStoreInitError(path, fmt.Errorf("sqlite.New: open db: %w", err))
	}

	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	pingCtx, cancel := context.WithTimeout(ctx, cfg.Storage.ConnectTimeout)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, storage.NewStoreInitError(path, fmt.Errorf("sqlite.New: ping: %w", err))
	}

	return &SQLite{Db: db, path: path, now: time.Now}, nil
}

// Path returns the database file backing this store.
func (s *SQLite) Path() string { return s.path }

// Close closes the database connection pool.
func (s *SQLite) Close() error {
	if s.Db == nil {
		return nil
	}
	return s.Db.Close()
}

// ─────────────────────────────────────────────────────────────────────────────
// Initialize creates the students table and seeds the roster when the table
// is empty. Everything runs inside one transaction so a half-seeded roster is
// never committed.
//
// Schema:
//
//	id: internal primary key
//	name: display name, immutable after seeding
//	reg_number: 7-digit roster key, UNIQUE
//	phone_number: NULL until the student submits
//	updated_at: set on every phone write
//
// phone_number is indexed but deliberately NOT unique: uniqueness is decided
// by the conditional write in UpdatePhone.
// ─────────────────────────────────────────────────────────────────────────────
func (s *SQLite) Initialize(ctx context.Context) error {
	tx, err := s.Db.BeginTx(ctx, nil)
	if err != nil {
		return storage.NewStoreInitError(s.path, fmt.Errorf("Initialize: begin: %w", err))
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS students (
			id           INTEGER PRIMARY KEY AUTOINCREMENT,
			name         TEXT      NOT NULL,
			reg_number   TEXT      NOT NULL UNIQUE,
			phone_number TEXT,
			updated_at   TIMESTAMP
		)
	`); err != nil {
		return storage.NewStoreInitError(s.path, fmt.Errorf("Initialize: create table: %w", err))
	}

	if _, err := tx.ExecContext(ctx,
		"CREATE INDEX IF NOT EXISTS idx_students_phone ON students (phone_number)",
	); err != nil {
		return storage.NewStoreInitError(s.path, fmt.Errorf("Initialize: create index: %w", err))
	}

	var count int
	if err := tx.QueryRowContext(ctx, "SELECT COUNT(*) FROM students").Scan(&count); err != nil {
		return storage.NewStoreInitError(s.path, fmt.Errorf("Initialize: count: %w", err))
	}

	if count == 0 {
		stmt, err := tx.PrepareContext(ctx,
			"INSERT INTO students (name, reg_number) VALUES (?, ?) ON CONFLICT (reg_number) DO NOTHING",
		)
		if err != nil {
			return storage.NewStoreInitError(s.path, fmt.Errorf("Initialize: prepare seed: %w", err))
		}
		defer stmt.Close()

		for _, e := range storage.Roster() {
			if _, err := stmt.ExecContext(ctx, e.Name, e.RegNumber); err != nil {
				return storage.NewStoreInitError(s.path, fmt.Errorf("Initialize: seed %s: %w", e.RegNumber, err))
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return storage.NewStoreInitError(s.path, fmt.Errorf("Initialize: commit: %w", err))
	}
	return nil
}

// ─────────────────────────────────────────────────────────────────────────────
// FindByRegNumber fetches exactly one student matched by reg number.
// sql.ErrNoRows is translated to storage.ErrStudentNotFound so callers never
// depend on database/sql sentinels.
// ─────────────────────────────────────────────────────────────────────────────
func (s *SQLite) FindByRegNumber(ctx context.Context, reg string) (types.Student, error) {
	row := s.Db.QueryRowContext(ctx,
		"SELECT name, reg_number, phone_number, updated_at FROM students WHERE reg_number = ? LIMIT 1",
		reg,
	)

	student, err := scanStudent(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return types.Student{}, storage.ErrStudentNotFound
		}
		return types.Student{}, fmt.Errorf("FindByRegNumber: scan: %w", err)
	}
	return student, nil
}

// FindOwnerOfPhone returns the student holding phone. If the race described
// on UpdatePhone was ever lost by an older build, the lowest id wins.
func (s *SQLite) FindOwnerOfPhone(ctx context.Context, phone string) (types.Student, error) {
	row := s.Db.QueryRowContext(ctx,
		"SELECT name, reg_number, phone_number, updated_at FROM students WHERE phone_number = ? ORDER BY id LIMIT 1",
		phone,
	)

	student, err := scanStudent(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return types.Student{}, storage.ErrStudentNotFound
		}
		return types.Student{}, fmt.Errorf("FindOwnerOfPhone: scan: %w", err)
	}
	return student, nil
}

// ─────────────────────────────────────────────────────────────────────────────
// ListAll returns all student rows ordered by name.
//
// ORDER BY uses SQLite's default BINARY collation: byte-wise and therefore
// case-sensitive ("Zain" sorts before "abc").
// ─────────────────────────────────────────────────────────────────────────────
func (s *SQLite) ListAll(ctx context.Context) ([]types.Student, error) {
	rows, err := s.Db.QueryContext(ctx,
		"SELECT name, reg_number, phone_number, updated_at FROM students ORDER BY name, reg_number",
	)
	if err != nil {
		return nil, fmt.Errorf("ListAll: query: %w", err)
	}
	defer rows.Close() // must close rows to free the DB connection

	students := make([]types.Student, 0, storage.RosterSize())
	for rows.Next() {
		student, err := scanStudent(rows)
		if err != nil {
			return nil, fmt.Errorf("ListAll: scan row: %w", err)
		}
		students = append(students, student)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("ListAll: rows iteration: %w", err)
	}
	return students, nil
}

// ─────────────────────────────────────────────────────────────────────────────
// UpdatePhone stores phone for reg in ONE conditional statement:
//
//	UPDATE ... WHERE reg_number = ? AND NOT EXISTS (another holder of phone)
//
// The uniqueness check and the write are atomic, so two concurrent
// submissions of the same new number cannot both land. Zero rows affected
// means either "no such student" or "someone else holds phone"; the caller
// tells them apart.
// ─────────────────────────────────────────────────────────────────────────────
func (s *SQLite) UpdatePhone(ctx context.Context, reg, phone string) (bool, error) {
	stmt, err := s.Db.PrepareContext(ctx, `
		UPDATE students
		   SET phone_number = ?, updated_at = ?
		 WHERE reg_number = ?
		   AND NOT EXISTS (
		       SELECT 1 FROM students AS other
		        WHERE other.phone_number = ? AND other.reg_number <> ?
		   )
	`)
	if err != nil {
		return false, fmt.Errorf("UpdatePhone: prepare: %w", err)
	}
	defer stmt.Close()

	// Argument order matches the ? order in the SQL.
	result, err := stmt.ExecContext(ctx, phone, s.now().UTC(), reg, phone, reg)
	if err != nil {
		return false, fmt.Errorf("UpdatePhone: exec: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("UpdatePhone: rows affected: %w", err)
	}
	return affected > 0, nil
}

// rowScanner is satisfied by both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

// scanStudent reads one row in SELECT column order:
// name, reg_number, phone_number, updated_at.
func scanStudent(r rowScanner) (types.Student, error) {
	var (
		student   types.Student
		phone     sql.NullString
		updatedAt sql.NullTime
	)
	if err := r.Scan(&student.Name, &student.RegNumber, &phone, &updatedAt); err != nil {
		return types.Student{}, err
	}
	if phone.Valid {
		student.PhoneNumber = &phone.String
	}
	if updatedAt.Valid {
		t := updatedAt.Time
		student.UpdatedAt = &t
	}
	return student, nil
}
