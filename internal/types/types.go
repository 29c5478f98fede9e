// Package types holds all shared data structures (models) used across
// the application. Keeping them in one place prevents import cycles:
// handlers, storage, the registration service and the CLI can all import
// types without depending on each other.
package types

import "time"

// Status values shown in the directory and the CSV export.
const (
	StatusSubmitted = "Submitted"
	StatusPending   = "Pending"
)

// Student represents one row of the fixed roster.
//
// Name and RegNumber are written once when the roster is seeded and never
// change afterwards. PhoneNumber is nil until the student submits a number;
// UpdatedAt is set on every successful phone write.
//
// The json:"..." tags control how the student appears in API responses and
// in `--format json` CLI output; yaml:"..." does the same for `--format yaml`.
type Student struct {
	Name        string     `json:"name"                 yaml:"name"`
	RegNumber   string     `json:"reg_number"           yaml:"reg_number"`
	PhoneNumber *string    `json:"phone_number"         yaml:"phone_number"`
	UpdatedAt   *time.Time `json:"updated_at,omitempty" yaml:"updated_at,omitempty"`
}

// HasPhone reports whether the student has submitted a phone number.
func (s Student) HasPhone() bool {
	return s.PhoneNumber != nil && *s.PhoneNumber != ""
}

// Phone returns the stored phone number or "" when none was submitted.
func (s Student) Phone() string {
	if s.PhoneNumber == nil {
		return ""
	}
	return *s.PhoneNumber
}

// Status returns StatusSubmitted or StatusPending.
func (s Student) Status() string {
	if s.HasPhone() {
		return StatusSubmitted
	}
	return StatusPending
}
