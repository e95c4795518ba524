// Package workflow sequences the scheduling use cases for an interactive
// caller: a patient submitting a request, or an administrator picking a
// pending request and a doctor for it.
package workflow

import (
	"context"
	"errors"
	"time"

	"clinic-scheduling/internal/domain/entity"
	"clinic-scheduling/internal/usecase"

	"github.com/samber/lo"
	"github.com/sirupsen/logrus"
)

var (
	ErrNotAuthenticated = errors.New("not authenticated")
	ErrNothingPending   = errors.New("no pending appointment requests")
)

// PatientSession identifies the logged-in patient.
type PatientSession struct {
	PatientID int64
	Email     string
}

// AdminSession marks an authenticated administrator.
type AdminSession struct{}

type SubmitInput struct {
	Specialization string
	RequestedDate  time.Time
	Description    string
}

// Selector supplies the administrator's choices. The orchestrator does not
// check that the returned ids come from the offered lists.
type Selector interface {
	SelectRequest(ctx context.Context, pending []entity.AppointmentRequest) (int64, error)
	// SelectDoctor receives the chosen request, or nil when the chosen id was
	// not in the pending list, and the doctors suitable for it.
	SelectDoctor(ctx context.Context, req *entity.AppointmentRequest, doctors []entity.Doctor) (int64, error)
}

type FixOutcome struct {
	AppointmentID int64
	RequestID     int64
	DoctorID      int64
}

type Orchestrator struct {
	scheduling usecase.SchedulingUsecase
	log        *logrus.Logger
}

func NewOrchestrator(scheduling usecase.SchedulingUsecase, log *logrus.Logger) *Orchestrator {
	return &Orchestrator{scheduling: scheduling, log: log}
}

// Submit files an appointment request on behalf of the session's patient.
func (o *Orchestrator) Submit(ctx context.Context, session *PatientSession, in SubmitInput) (int64, error) {
	if session == nil || session.PatientID <= 0 {
		return 0, ErrNotAuthenticated
	}

	requestID, err := o.scheduling.SubmitRequest(ctx, session.PatientID, in.Specialization, in.RequestedDate, in.Description)
	if err != nil {
		return 0, err
	}

	o.log.WithFields(logrus.Fields{
		"patient_id": session.PatientID,
		"email":      session.Email,
		"request_id": requestID,
	}).Info("Appointment request submitted")
	return requestID, nil
}

// Fix walks an administrator through one approval: pending requests, then
// suitable doctors, then confirmation. Errors from the engine are returned
// unchanged.
func (o *Orchestrator) Fix(ctx context.Context, session *AdminSession, sel Selector) (*FixOutcome, error) {
	if session == nil {
		return nil, ErrNotAuthenticated
	}

	pending, err := o.scheduling.ListPendingRequests(ctx)
	if err != nil {
		return nil, err
	}
	if len(pending) == 0 {
		return nil, ErrNothingPending
	}

	requestID, err := sel.SelectRequest(ctx, pending)
	if err != nil {
		return nil, err
	}

	var chosen *entity.AppointmentRequest
	var doctors []entity.Doctor
	if req, ok := lo.Find(pending, func(r entity.AppointmentRequest) bool { return r.ID == requestID }); ok {
		chosen = &req
		doctors, err = o.scheduling.FindSuitableDoctors(ctx, req.Specialization)
		if err != nil {
			return nil, err
		}
	}

	doctorID, err := sel.SelectDoctor(ctx, chosen, doctors)
	if err != nil {
		return nil, err
	}

	appointmentID, err := o.scheduling.FixAppointment(ctx, requestID, doctorID)
	if err != nil {
		o.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"doctor_id":  doctorID,
		}).Infof("Appointment not fixed: %v", err)
		return nil, err
	}

	return &FixOutcome{AppointmentID: appointmentID, RequestID: requestID, DoctorID: doctorID}, nil
}

// Message renders err as text for the person at the other end.
func Message(err error) string {
	switch {
	case err == nil:
		return "Done"
	case errors.Is(err, ErrNotAuthenticated):
		return "Please log in first"
	case errors.Is(err, ErrNothingPending):
		return "There are no pending appointment requests"
	case errors.Is(err, usecase.ErrDoctorBooked):
		return "The doctor already has a confirmed appointment on that date"
	case errors.Is(err, usecase.ErrInvalidArgument),
		errors.Is(err, usecase.ErrNotFound),
		errors.Is(err, usecase.ErrInvalidState),
		errors.Is(err, usecase.ErrConflict),
		errors.Is(err, usecase.ErrUnauthorized):
		return capitalize(err.Error())
	case errors.Is(err, usecase.ErrStorage):
		return "The service is temporarily unavailable, please try again"
	default:
		return "Something went wrong"
	}
}

func capitalize(s string) string {
	if s == "" || s[0] < 'a' || s[0] > 'z' {
		return s
	}
	return string(s[0]-'a'+'A') + s[1:]
}
