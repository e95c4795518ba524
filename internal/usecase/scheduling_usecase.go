package usecase

import (
	"context"
	"strings"
	"time"

	"clinic-scheduling/internal/domain/entity"
	"clinic-scheduling/internal/domain/repository"
	"clinic-scheduling/internal/infrastructure/database"
	"clinic-scheduling/internal/service"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// SchedulingUsecase owns the request -> match -> confirm workflow.
type SchedulingUsecase interface {
	SubmitRequest(ctx context.Context, patientID int64, specialization string, requestedDate time.Time, description string) (int64, error)
	ListPendingRequests(ctx context.Context) ([]entity.AppointmentRequest, error)
	FindSuitableDoctors(ctx context.Context, specialization string) ([]entity.Doctor, error)
	FixAppointment(ctx context.Context, requestID, doctorID int64) (int64, error)

	ListPatientRequests(ctx context.Context, patientID int64) ([]entity.AppointmentRequest, error)
	ListPatientAppointments(ctx context.Context, patientID int64) ([]entity.Appointment, error)
	ListAppointments(ctx context.Context) ([]entity.Appointment, error)
	GetAppointment(ctx context.Context, id int64) (*entity.Appointment, error)
}

type schedulingUsecase struct {
	tx              database.Transactor
	log             *logrus.Logger
	patientRepo     repository.PatientRepository
	doctorRepo      repository.DoctorRepository
	requestRepo     repository.AppointmentRequestRepository
	appointmentRepo repository.AppointmentRepository
	auditService    service.AuditService
	now             func() time.Time
}

func NewSchedulingUsecase(
	tx database.Transactor,
	log *logrus.Logger,
	patientRepo repository.PatientRepository,
	doctorRepo repository.DoctorRepository,
	requestRepo repository.AppointmentRequestRepository,
	appointmentRepo repository.AppointmentRepository,
	auditService service.AuditService,
) SchedulingUsecase {
	return &schedulingUsecase{
		tx:              tx,
		log:             log,
		patientRepo:     patientRepo,
		doctorRepo:      doctorRepo,
		requestRepo:     requestRepo,
		appointmentRepo: appointmentRepo,
		auditService:    auditService,
		now:             time.Now,
	}
}

// SubmitRequest records a PENDING request for the patient. The date must lie
// after the current instant, so a date-only value for today is rejected.
func (u *schedulingUsecase) SubmitRequest(ctx context.Context, patientID int64, specialization string, requestedDate time.Time, description string) (int64, error) {
	if requestedDate.IsZero() || requestedDate.Before(u.now()) {
		return 0, ErrDateInPast
	}
	specialization = strings.TrimSpace(specialization)
	if specialization == "" {
		return 0, ErrSpecializationRequired
	}

	req := &entity.AppointmentRequest{
		PatientID:      patientID,
		Specialization: specialization,
		RequestedDate:  entity.CalendarDay(requestedDate),
		Status:         entity.RequestStatusPending,
		Description:    strings.TrimSpace(description),
	}

	err := u.tx.WithinTx(ctx, func(tx *gorm.DB) error {
		patient, err := u.patientRepo.FindByID(tx, patientID)
		if err != nil {
			u.log.Warnf("Failed to find patient %d: %+v", patientID, err)
			return storageError("find patient", err)
		}
		if patient == nil {
			return ErrPatientNotFound
		}

		if err := u.requestRepo.Create(tx, req); err != nil {
			if isForeignKeyError(err, "patient") {
				return ErrPatientNotFound
			}
			u.log.Warnf("Failed to create appointment request: %+v", err)
			return storageError("create appointment request", err)
		}

		if err := u.auditService.LogCreate(ctx, tx, entity.PatientActor(patientID), entity.AuditActionRequestSubmit,
			entity.AuditEntityRequest, req.ID, entity.JSON{
				"specialization": req.Specialization,
				"requested_date": req.RequestedDate.Format(time.DateOnly),
			}); err != nil {
			return storageError("write audit log", err)
		}
		return nil
	})
	if err != nil {
		return 0, txError(u.log, "submit appointment request", err)
	}

	u.log.WithFields(logrus.Fields{
		"request_id":     req.ID,
		"patient_id":     patientID,
		"specialization": req.Specialization,
		"requested_date": req.RequestedDate.Format(time.DateOnly),
	}).Info("Appointment request submitted")

	return req.ID, nil
}

func (u *schedulingUsecase) ListPendingRequests(ctx context.Context) ([]entity.AppointmentRequest, error) {
	reqs, err := u.requestRepo.FindPending(u.tx.Conn(ctx))
	if err != nil {
		u.log.Warnf("Failed to list pending requests: %+v", err)
		return nil, storageError("list pending requests", err)
	}
	return reqs, nil
}

// FindSuitableDoctors matches specialization exactly, case included.
func (u *schedulingUsecase) FindSuitableDoctors(ctx context.Context, specialization string) ([]entity.Doctor, error) {
	doctors, err := u.doctorRepo.FindAvailableBySpecialization(u.tx.Conn(ctx), specialization)
	if err != nil {
		u.log.Warnf("Failed to find doctors for %q: %+v", specialization, err)
		return nil, storageError("find suitable doctors", err)
	}
	return doctors, nil
}

// FixAppointment confirms requestID with doctorID. Either the appointment is
// created and the request approved, or nothing changes.
func (u *schedulingUsecase) FixAppointment(ctx context.Context, requestID, doctorID int64) (int64, error) {
	var appointment *entity.Appointment

	err := u.tx.WithinTx(ctx, func(tx *gorm.DB) error {
		req, err := u.requestRepo.FindByIDForUpdate(tx, requestID)
		if err != nil {
			u.log.Warnf("Failed to find appointment request %d: %+v", requestID, err)
			return storageError("find appointment request", err)
		}
		if req == nil {
			return ErrRequestNotFound
		}
		if !req.IsPending() {
			return ErrRequestNotPending
		}

		doctor, err := u.doctorRepo.FindByID(tx, doctorID)
		if err != nil {
			u.log.Warnf("Failed to find doctor %d: %+v", doctorID, err)
			return storageError("find doctor", err)
		}
		if doctor == nil {
			return ErrDoctorNotFound
		}
		if !doctor.Available {
			return ErrDoctorUnavailable
		}
		if !doctor.Handles(req.Specialization) {
			return ErrSpecializationMismatch
		}

		day := entity.CalendarDay(req.RequestedDate)
		booked, err := u.appointmentRepo.CountConfirmedForDoctorOnDay(tx, doctorID, day)
		if err != nil {
			u.log.Warnf("Failed to check schedule of doctor %d: %+v", doctorID, err)
			return storageError("check doctor schedule", err)
		}
		if booked > 0 {
			return ErrDoctorBooked
		}

		appointment = &entity.Appointment{
			PatientID:       req.PatientID,
			DoctorID:        doctorID,
			RequestID:       &req.ID,
			AppointmentDate: req.RequestedDate,
			AppointmentDay:  day,
			Status:          entity.AppointmentStatusConfirmed,
		}
		if err := u.appointmentRepo.Create(tx, appointment); err != nil {
			switch {
			case isDuplicateKeyError(err, "doctor_day"):
				return ErrDoctorBooked
			case isDuplicateKeyError(err, "request"):
				return ErrRequestNotPending
			}
			u.log.Warnf("Failed to create appointment: %+v", err)
			return storageError("create appointment", err)
		}

		affected, err := u.requestRepo.UpdateStatusIfPending(tx, requestID, entity.RequestStatusApproved)
		if err != nil {
			u.log.Warnf("Failed to approve request %d: %+v", requestID, err)
			return storageError("approve appointment request", err)
		}
		if affected == 0 {
			return ErrRequestNotPending
		}

		if err := u.auditService.LogUpdate(ctx, tx, entity.AuditActorAdmin, entity.AuditActionAppointmentFix,
			entity.AuditEntityAppointment, appointment.ID,
			entity.JSON{"request_status": entity.RequestStatusPending},
			entity.JSON{
				"request_status": entity.RequestStatusApproved,
				"request_id":     requestID,
				"doctor_id":      doctorID,
				"date":           day.Format(time.DateOnly),
			}); err != nil {
			return storageError("write audit log", err)
		}
		return nil
	})
	if err != nil {
		return 0, txError(u.log, "fix appointment", err)
	}

	u.log.WithFields(logrus.Fields{
		"appointment_id": appointment.ID,
		"request_id":     requestID,
		"doctor_id":      doctorID,
		"date":           appointment.AppointmentDay.Format(time.DateOnly),
	}).Info("Appointment fixed")

	return appointment.ID, nil
}

func (u *schedulingUsecase) ListPatientRequests(ctx context.Context, patientID int64) ([]entity.AppointmentRequest, error) {
	reqs, err := u.requestRepo.FindByPatientID(u.tx.Conn(ctx), patientID)
	if err != nil {
		u.log.Warnf("Failed to list requests of patient %d: %+v", patientID, err)
		return nil, storageError("list patient requests", err)
	}
	return reqs, nil
}

func (u *schedulingUsecase) ListPatientAppointments(ctx context.Context, patientID int64) ([]entity.Appointment, error) {
	appointments, err := u.appointmentRepo.FindByPatientID(u.tx.Conn(ctx), patientID)
	if err != nil {
		u.log.Warnf("Failed to list appointments of patient %d: %+v", patientID, err)
		return nil, storageError("list patient appointments", err)
	}
	return appointments, nil
}

func (u *schedulingUsecase) ListAppointments(ctx context.Context) ([]entity.Appointment, error) {
	appointments, err := u.appointmentRepo.FindAll(u.tx.Conn(ctx))
	if err != nil {
		u.log.Warnf("Failed to list appointments: %+v", err)
		return nil, storageError("list appointments", err)
	}
	return appointments, nil
}

func (u *schedulingUsecase) GetAppointment(ctx context.Context, id int64) (*entity.Appointment, error) {
	appointment, err := u.appointmentRepo.FindByID(u.tx.Conn(ctx), id)
	if err != nil {
		u.log.Warnf("Failed to find appointment %d: %+v", id, err)
		return nil, storageError("find appointment", err)
	}
	if appointment == nil {
		return nil, ErrAppointmentNotFound
	}
	return appointment, nil
}
