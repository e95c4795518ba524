// Package memrepo provides in-memory implementations of the domain
// repositories and of database.Transactor. The *gorm.DB argument is ignored;
// constraint violations are reported as *pgconn.PgError with the same codes
// and constraint names PostgreSQL would use.
package memrepo

import (
	"context"
	"sync"

	"clinic-scheduling/internal/domain/entity"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

// Constraint names, matching the SQL migrations.
const (
	ConstraintPatientEmail     = "uq_patients_email"
	ConstraintRequestPatientFK = "appointment_requests_patient_id_fkey"
	ConstraintAppointmentReq   = "uq_appointments_request"
	ConstraintDoctorDay        = "uq_appointments_doctor_day_confirmed"
)

type tables struct {
	patients     map[int64]entity.Patient
	doctors      map[int64]entity.Doctor
	requests     map[int64]entity.AppointmentRequest
	appointments map[int64]entity.Appointment
	auditLogs    []entity.AuditLog
	nextID       int64
}

func (t *tables) clone() tables {
	c := tables{
		patients:     make(map[int64]entity.Patient, len(t.patients)),
		doctors:      make(map[int64]entity.Doctor, len(t.doctors)),
		requests:     make(map[int64]entity.AppointmentRequest, len(t.requests)),
		appointments: make(map[int64]entity.Appointment, len(t.appointments)),
		auditLogs:    append([]entity.AuditLog(nil), t.auditLogs...),
		nextID:       t.nextID,
	}
	for k, v := range t.patients {
		c.patients[k] = v
	}
	for k, v := range t.doctors {
		c.doctors[k] = v
	}
	for k, v := range t.requests {
		c.requests[k] = v
	}
	for k, v := range t.appointments {
		c.appointments[k] = v
	}
	return c
}

// Store holds every table. Transactions are serialized and roll back by
// restoring a snapshot taken when they began.
type Store struct {
	txMu sync.Mutex

	mu        sync.Mutex
	data      tables
	failures  map[string]error
	commitErr error
}

func NewStore() *Store {
	return &Store{
		data: tables{
			patients:     map[int64]entity.Patient{},
			doctors:      map[int64]entity.Doctor{},
			requests:     map[int64]entity.AppointmentRequest{},
			appointments: map[int64]entity.Appointment{},
		},
		failures: map[string]error{},
	}
}

// Fail makes every call of op return err until cleared with a nil err.
// Ops are named "<table>.<method>", e.g. "appointments.create".
func (s *Store) Fail(op string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err == nil {
		delete(s.failures, op)
		return
	}
	s.failures[op] = err
}

// FailNextCommit makes the next transaction fail at commit time with err.
func (s *Store) FailNextCommit(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.commitErr = err
}

// lock acquires the data lock and returns the injected failure for op.
func (s *Store) lock(op string) error {
	s.mu.Lock()
	return s.failures[op]
}

func (s *Store) id() int64 {
	s.data.nextID++
	return s.data.nextID
}

func uniqueViolation(constraint string) error {
	return &pgconn.PgError{Code: "23505", ConstraintName: constraint, Message: "duplicate key value violates unique constraint"}
}

func foreignKeyViolation(constraint string) error {
	return &pgconn.PgError{Code: "23503", ConstraintName: constraint, Message: "insert or update violates foreign key constraint"}
}

// Transactor returns a database.Transactor over the store.
func (s *Store) Transactor() *Transactor {
	return &Transactor{store: s}
}

type Transactor struct {
	store *Store
}

func (t *Transactor) Conn(ctx context.Context) *gorm.DB {
	return nil
}

func (t *Transactor) WithinTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	s := t.store
	s.txMu.Lock()
	defer s.txMu.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	snapshot := s.data.clone()
	s.mu.Unlock()

	err := fn(nil)

	s.mu.Lock()
	defer s.mu.Unlock()
	if err == nil && s.commitErr != nil {
		err = s.commitErr
		s.commitErr = nil
	}
	if err != nil {
		s.data = snapshot
		return err
	}
	return nil
}
