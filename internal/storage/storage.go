// Package storage defines the Storage interface, the Record Store contract
// that any database backend must satisfy to hold the student roster.
//
// WHY AN INTERFACE?
// ─────────────────
// The registration service should not know or care which database it is
// talking to. Two engines implement this interface (sqlite and postgres);
// one of them is picked from configuration at startup and passed in.
// Tests wrap a real store to inject failures without touching SQL.
package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/aanand-mishra/phone-roster/internal/types"
)

// ErrStudentNotFound is returned by lookups that matched no row.
// Any other error from a Storage method is a driver-level failure.
var ErrStudentNotFound = errors.New("student not found")

// Storage is the Record Store contract.
//
// Implementations enforce no business rules beyond column constraints;
// phone uniqueness is decided by the caller, with UpdatePhone refusing
// to write a number that another student already holds.
type Storage interface {
	// Initialize creates the students table if absent and, when the table
	// is empty, seeds the roster. Safe to call any number of times.
	// Failures are reported as *StoreInitError.
	Initialize(ctx context.Context) error

	// FindByRegNumber returns the student with the given reg number, or
	// ErrStudentNotFound.
	FindByRegNumber(ctx context.Context, reg string) (types.Student, error)

	// FindOwnerOfPhone returns the student currently holding the exact
	// phone number, or ErrStudentNotFound when nobody holds it.
	FindOwnerOfPhone(ctx context.Context, phone string) (types.Student, error)

	// ListAll returns every student ordered by name (binary collation).
	// Returns an empty slice (not nil) if the table is empty.
	ListAll(ctx context.Context) ([]types.Student, error)

	// UpdatePhone sets phone_number and updated_at for reg. The write only
	// applies when no other student holds phone. Zero rows affected is not
	// an error: it returns false.
	UpdatePhone(ctx context.Context, reg, phone string) (bool, error)

	// Close releases the underlying connection pool.
	Close() error
}

// StoreInitError reports that the store could not be created, migrated or
// seeded. Path names the storage location (file path or DSN host) and Err
// carries the underlying cause.
type StoreInitError struct {
	Path string
	Err  error
}

func (e *StoreInitError) Error() string {
	return fmt.Sprintf("initialise store %q: %v", e.Path, e.Err)
}

func (e *StoreInitError) Unwrap() error { return e.Err }

// NewStoreInitError wraps err unless it already is a *StoreInitError.
func NewStoreInitError(path string, err error) error {
	var initErr *StoreInitError
	if errors.As(err, &initErr) {
		return err
	}
	return &StoreInitError{Path: path, Err: err}
}
