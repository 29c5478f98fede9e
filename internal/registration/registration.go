// Package registration is the business layer over the Record Store:
// it validates a phone-number submission, guards against a number being
// claimed by two students, and commits the write.
//
// It is the only layer that builds the user-facing error taxonomy
// (validation, not found, conflict, storage). Read paths used for display
// (Lookup, ListAll, Progress) log storage failures and degrade to
// "not found" / empty so a flaky store never breaks the directory view.
package registration

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/aanand-mishra/phone-roster/internal/storage"
	"github.com/aanand-mishra/phone-roster/internal/types"
)

// Kind distinguishes a student's first submission from a later change.
type Kind string

const (
	FirstSubmission Kind = "first_submission"
	Update          Kind = "update"
)

// Submission is the result of a successful Submit.
type Submission struct {
	Student types.Student `json:"student" yaml:"student"`
	Kind    Kind          `json:"kind"    yaml:"kind"`
}

// Progress counts submitted students against the roster size.
type Progress struct {
	Submitted int `json:"submitted" yaml:"submitted"`
	Total     int `json:"total"     yaml:"total"`
}

// Service orchestrates Record Store calls into submissions.
type Service struct {
	store    storage.Storage
	log      *slog.Logger
	validate *validator.Validate
}

// New returns a Service over store. The store is used as-is; call
// Initialize before serving requests.
func New(store storage.Storage, log *slog.Logger) *Service {
	return &Service{
		store:    store,
		log:      log.With(slog.String("component", "registration")),
		validate: newValidator(),
	}
}

// Initialize creates and seeds the store. Errors are *storage.StoreInitError.
func (s *Service) Initialize(ctx context.Context) error {
	return s.store.Initialize(ctx)
}

// Lookup returns the student registered under reg. Storage failures are
// logged and reported as not found.
func (s *Service) Lookup(ctx context.Context, reg string) (types.Student, bool) {
	reg = strings.TrimSpace(reg)
	if reg == "" {
		return types.Student{}, false
	}

	student, err := s.store.FindByRegNumber(ctx, reg)
	if err != nil {
		if !errors.Is(err, storage.ErrStudentNotFound) {
			s.log.Error("lookup failed",
				slog.String("reg_number", reg),
				slog.String("error", err.Error()))
		}
		return types.Student{}, false
	}
	return student, true
}

// ListAll returns the directory ordered by name. Storage failures are
// logged and reported as an empty directory.
func (s *Service) ListAll(ctx context.Context) []types.Student {
	students, err := s.store.ListAll(ctx)
	if err != nil {
		s.log.Error("list failed", slog.String("error", err.Error()))
		return []types.Student{}
	}
	return students
}

// Progress reports how many roster students have submitted a number.
func (s *Service) Progress(ctx context.Context) Progress {
	return Count(s.ListAll(ctx))
}

// Count computes Progress over an already loaded directory.
func Count(students []types.Student) Progress {
	p := Progress{Total: storage.RosterSize()}
	for _, st := range students {
		if st.HasPhone() {
			p.Submitted++
		}
	}
	return p
}

// ─────────────────────────────────────────────────────────────────────────────
// Submit records phoneInput for the student with regInput.
//
//  1. both inputs present              else ErrMissingField
//  2. trim surrounding whitespace
//  3. reg is 7 digits                  else ErrBadRegFormat
//  4. phone is 03 + 9 digits           else ErrBadPhoneFormat
//  5. student exists                   else ErrNotFound
//  6. phone free or already theirs     else *ConflictError
//  7. conditional write applied        else *ConflictError (lost a race) or ErrStorage
//
// Resubmitting one's own stored number succeeds and is reported as Update.
// ─────────────────────────────────────────────────────────────────────────────
func (s *Service) Submit(ctx context.Context, regInput, phoneInput string) (Submission, error) {
	reg, phone, err := normalize(s.validate, regInput, phoneInput)
	if err != nil {
		s.log.Info("submission rejected", slog.String("reason", err.Error()))
		return Submission{}, err
	}

	log := s.log.With(slog.String("reg_number", reg))

	student, err := s.store.FindByRegNumber(ctx, reg)
	if errors.Is(err, storage.ErrStudentNotFound) {
		log.Info("submission rejected", slog.String("reason", "not found"))
		return Submission{}, ErrNotFound
	}
	if err != nil {
		log.Error("find student failed", slog.String("error", err.Error()))
		return Submission{}, storageError("find student", err)
	}

	if conflict, err := s.conflictFor(ctx, reg, phone); err != nil {
		log.Error("find phone owner failed", slog.String("error", err.Error()))
		return Submission{}, storageError("find phone owner", err)
	} else if conflict != nil {
		log.Info("submission rejected",
			slog.String("reason", "conflict"),
			slog.String("owner_reg_number", conflict.OwnerRegNumber))
		return Submission{}, conflict
	}

	applied, err := s.store.UpdatePhone(ctx, reg, phone)
	if err != nil {
		log.Error("update phone failed", slog.String("error", err.Error()))
		return Submission{}, storageError("update phone", err)
	}
	if !applied {
		// The check above passed, so either another submission claimed the
		// number in between, or the row vanished.
		if conflict, cerr := s.conflictFor(ctx, reg, phone); cerr == nil && conflict != nil {
			log.Warn("submission lost race",
				slog.String("owner_reg_number", conflict.OwnerRegNumber))
			return Submission{}, conflict
		}
		log.Error("update phone affected no rows")
		return Submission{}, storageError("update phone", errors.New("no row affected"))
	}

	kind := Update
	if !student.HasPhone() {
		kind = FirstSubmission
	}

	updated, err := s.store.FindByRegNumber(ctx, reg)
	if err != nil {
		log.Warn("re-read after update failed", slog.String("error", err.Error()))
		updated = student
		updated.PhoneNumber = &phone
	}

	log.Info("phone number saved", slog.String("kind", string(kind)))
	return Submission{Student: updated, Kind: kind}, nil
}

// conflictFor returns a *ConflictError when phone is held by a student
// other than reg, nil when it is free or already reg's.
func (s *Service) conflictFor(ctx context.Context, reg, phone string) (*ConflictError, error) {
	owner, err := s.store.FindOwnerOfPhone(ctx, phone)
	if errors.Is(err, storage.ErrStudentNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if owner.RegNumber == reg {
		return nil, nil
	}
	return &ConflictError{OwnerName: owner.Name, OwnerRegNumber: owner.RegNumber}, nil
}
