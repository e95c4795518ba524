package usecase

import (
	"context"
	"strings"

	"clinic-scheduling/internal/converter"
	"clinic-scheduling/internal/delivery/dto"
	"clinic-scheduling/internal/domain/entity"
	"clinic-scheduling/internal/domain/repository"
	"clinic-scheduling/internal/infrastructure/database"
	"clinic-scheduling/internal/service"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

var (
	ErrPatientNameRequired  = newError(ErrInvalidArgument, "patient name is required")
	ErrPatientEmailRequired = newError(ErrInvalidArgument, "patient email is required")
	ErrPatientPhoneRequired = newError(ErrInvalidArgument, "patient phone is required")
)

type PatientUsecase interface {
	GetPatient(ctx context.Context, id int64) (*dto.PatientResponse, error)
	GetAllPatients(ctx context.Context) (*dto.PatientListResponse, error)
	UpdatePatient(ctx context.Context, id int64, req *dto.UpdatePatientRequest) (*dto.PatientResponse, error)
}

type patientUsecase struct {
	tx           database.Transactor
	log          *logrus.Logger
	patientRepo  repository.PatientRepository
	auditService service.AuditService
}

func NewPatientUsecase(
	tx database.Transactor,
	log *logrus.Logger,
	patientRepo repository.PatientRepository,
	auditService service.AuditService,
) PatientUsecase {
	return &patientUsecase{
		tx:           tx,
		log:          log,
		patientRepo:  patientRepo,
		auditService: auditService,
	}
}

// validatePatient checks the required contact fields after trimming.
func validatePatient(p *entity.Patient) error {
	switch {
	case p.Name == "":
		return ErrPatientNameRequired
	case p.Email == "":
		return ErrPatientEmailRequired
	case p.Phone == "":
		return ErrPatientPhoneRequired
	}
	return nil
}

func (u *patientUsecase) GetPatient(ctx context.Context, id int64) (*dto.PatientResponse, error) {
	patient, err := u.patientRepo.FindByID(u.tx.Conn(ctx), id)
	if err != nil {
		u.log.Warnf("Failed to find patient %d: %+v", id, err)
		return nil, storageError("find patient", err)
	}
	if patient == nil {
		return nil, ErrPatientNotFound
	}

	return converter.PatientToResponse(patient), nil
}

func (u *patientUsecase) GetAllPatients(ctx context.Context) (*dto.PatientListResponse, error) {
	patients, err := u.patientRepo.FindAll(u.tx.Conn(ctx))
	if err != nil {
		u.log.Warnf("Failed to find all patients: %+v", err)
		return nil, storageError("list patients", err)
	}

	return &dto.PatientListResponse{
		Patients: converter.PatientsToResponses(patients),
		Total:    len(patients),
	}, nil
}

// UpdatePatient changes the contact details present in req; absent fields are
// left as they are.
func (u *patientUsecase) UpdatePatient(ctx context.Context, id int64, req *dto.UpdatePatientRequest) (*dto.PatientResponse, error) {
	var updated *entity.Patient

	err := u.tx.WithinTx(ctx, func(tx *gorm.DB) error {
		patient, err := u.patientRepo.FindByID(tx, id)
		if err != nil {
			u.log.Warnf("Failed to find patient %d: %+v", id, err)
			return storageError("find patient", err)
		}
		if patient == nil {
			return ErrPatientNotFound
		}
		before := converter.PatientToResponse(patient)

		if req.Name != nil {
			patient.Name = strings.TrimSpace(*req.Name)
		}
		if req.Email != nil {
			patient.Email = strings.ToLower(strings.TrimSpace(*req.Email))
		}
		if req.Phone != nil {
			patient.Phone = strings.TrimSpace(*req.Phone)
		}
		if req.Age != nil {
			patient.Age = *req.Age
		}
		if req.Gender != nil {
			patient.Gender = *req.Gender
		}
		if req.Address != nil {
			patient.Address = strings.TrimSpace(*req.Address)
		}
		if err := validatePatient(patient); err != nil {
			return err
		}

		if err := u.patientRepo.Update(tx, patient); err != nil {
			if isDuplicateKeyError(err, "email") {
				return ErrPatientEmailExists
			}
			u.log.Warnf("Failed to update patient %d: %+v", id, err)
			return storageError("update patient", err)
		}

		if err := u.auditService.LogUpdate(ctx, tx, entity.PatientActor(id), entity.AuditActionPatientUpdate,
			entity.AuditEntityPatient, id, before, converter.PatientToResponse(patient)); err != nil {
			return storageError("write audit log", err)
		}

		updated = patient
		return nil
	})
	if err != nil {
		return nil, txError(u.log, "update patient", err)
	}

	return converter.PatientToResponse(updated), nil
}
