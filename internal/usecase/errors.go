package usecase

import (
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/sirupsen/logrus"
)

// Error kinds. Every error returned by a use case matches exactly one of
// these under errors.Is; delivery layers switch on the kind.
var (
	ErrInvalidArgument = errors.New("invalid argument")
	ErrNotFound        = errors.New("not found")
	ErrInvalidState    = errors.New("invalid state")
	ErrConflict        = errors.New("conflict")
	ErrStorage         = errors.New("storage error")
	ErrUnauthorized    = errors.New("unauthorized")
)

// kindError is a specific failure that also matches its kind.
type kindError struct {
	kind error
	msg  string
}

func (e *kindError) Error() string { return e.msg }

func (e *kindError) Unwrap() error { return e.kind }

func newError(kind error, msg string) error {
	return &kindError{kind: kind, msg: msg}
}

var (
	ErrPatientNotFound        = newError(ErrNotFound, "patient not found")
	ErrRequestNotFound        = newError(ErrNotFound, "appointment request not found")
	ErrDoctorNotFound         = newError(ErrNotFound, "doctor not found")
	ErrAppointmentNotFound    = newError(ErrNotFound, "appointment not found")
	ErrRequestNotPending      = newError(ErrInvalidState, "appointment request is not pending")
	ErrDoctorUnavailable      = newError(ErrInvalidArgument, "doctor is not available")
	ErrSpecializationMismatch = newError(ErrInvalidArgument, "doctor specialization does not match the request")
	ErrDateInPast             = newError(ErrInvalidArgument, "requested date must be in the future")
	ErrSpecializationRequired = newError(ErrInvalidArgument, "specialization is required")
	ErrDoctorBooked           = newError(ErrConflict, "doctor already has a confirmed appointment on that date")
	ErrPatientEmailExists     = newError(ErrConflict, "email already exists")
	ErrInvalidCredentials     = newError(ErrUnauthorized, "invalid credentials")
)

// storageError wraps a store failure for op; the result matches ErrStorage
// and still exposes the driver error to errors.As.
func storageError(op string, err error) error {
	return fmt.Errorf("%w: %s: %w", ErrStorage, op, err)
}

// txError keeps classified errors coming out of a unit of work and reports
// anything else, which can only come from begin or commit, as a store failure.
func txError(log *logrus.Logger, op string, err error) error {
	if Kind(err) != nil {
		return err
	}
	log.Warnf("Failed to commit %s: %+v", op, err)
	return storageError(op, err)
}

// Kind reports the error kind err belongs to, or nil if it has none.
func Kind(err error) error {
	for _, kind := range []error{ErrInvalidArgument, ErrNotFound, ErrInvalidState, ErrConflict, ErrStorage, ErrUnauthorized} {
		if errors.Is(err, kind) {
			return kind
		}
	}
	return nil
}

// isDuplicateKeyError checks if the error is a PostgreSQL unique constraint violation
// containing the specified constraint name
func isDuplicateKeyError(err error, constraintName string) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		// PostgreSQL error code 23505 = unique_violation
		if pgErr.Code == "23505" && strings.Contains(strings.ToLower(pgErr.ConstraintName), strings.ToLower(constraintName)) {
			return true
		}
	}
	return false
}

// isForeignKeyError checks if the error is a PostgreSQL foreign key violation
// containing the specified constraint name
func isForeignKeyError(err error, constraintName string) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		// PostgreSQL error code 23503 = foreign_key_violation
		if pgErr.Code == "23503" && strings.Contains(strings.ToLower(pgErr.ConstraintName), strings.ToLower(constraintName)) {
			return true
		}
	}
	return false
}
