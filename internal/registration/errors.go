package registration

import (
	"errors"
	"fmt"
)

// Submission outcomes other than success. Callers match them with errors.Is
// (and errors.As for *ConflictError / *ValidationError).
var (
	ErrMissingField   = errors.New("please fill all fields")
	ErrBadRegFormat   = errors.New("invalid reg number: must be 7 digits")
	ErrBadPhoneFormat = errors.New("invalid phone number: format is 03XXXXXXXXX")
	ErrNotFound       = errors.New("student not found in class list")
	ErrStorage        = errors.New("database error")
)

// ValidationError reports malformed input. Err is one of ErrMissingField,
// ErrBadRegFormat or ErrBadPhoneFormat; Field names the offending input.
type ValidationError struct {
	Field string
	Err   error
}

func (e *ValidationError) Error() string { return e.Err.Error() }

func (e *ValidationError) Unwrap() error { return e.Err }

// ConflictError reports that the phone number is already bound to another
// student.
type ConflictError struct {
	OwnerName      string
	OwnerRegNumber string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("this number is already used by %s", e.OwnerName)
}

// IsValidation reports whether err is caller input that failed validation.
func IsValidation(err error) bool {
	var v *ValidationError
	return errors.As(err, &v)
}

// storageError marks err as ErrStorage while keeping the driver cause in
// the chain.
func storageError(op string, err error) error {
	return fmt.Errorf("%w: %s: %w", ErrStorage, op, err)
}
