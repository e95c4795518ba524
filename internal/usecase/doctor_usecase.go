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
	ErrDoctorNameRequired = newError(ErrInvalidArgument, "doctor name is required")
	ErrNegativeExperience = newError(ErrInvalidArgument, "experience must not be negative")
)

type DoctorUsecase interface {
	CreateDoctor(ctx context.Context, req *dto.CreateDoctorRequest) (*dto.DoctorResponse, error)
	GetDoctor(ctx context.Context, id int64) (*dto.DoctorResponse, error)
	GetAllDoctors(ctx context.Context, filter repository.DoctorFilter) (*dto.DoctorListResponse, error)
	SetAvailability(ctx context.Context, id int64, available bool) (*dto.DoctorResponse, error)
}

type doctorUsecase struct {
	tx           database.Transactor
	log          *logrus.Logger
	doctorRepo   repository.DoctorRepository
	auditService service.AuditService
}

func NewDoctorUsecase(
	tx database.Transactor,
	log *logrus.Logger,
	doctorRepo repository.DoctorRepository,
	auditService service.AuditService,
) DoctorUsecase {
	return &doctorUsecase{
		tx:           tx,
		log:          log,
		doctorRepo:   doctorRepo,
		auditService: auditService,
	}
}

// CreateDoctor adds a doctor who is immediately available for matching.
func (u *doctorUsecase) CreateDoctor(ctx context.Context, req *dto.CreateDoctorRequest) (*dto.DoctorResponse, error) {
	doctor := &entity.Doctor{
		Name:           strings.TrimSpace(req.Name),
		Specialization: strings.TrimSpace(req.Specialization),
		Email:          strings.TrimSpace(req.Email),
		Phone:          strings.TrimSpace(req.Phone),
		Qualification:  strings.TrimSpace(req.Qualification),
		Experience:     req.Experience,
		Available:      true,
	}
	if doctor.Name == "" {
		return nil, ErrDoctorNameRequired
	}
	if doctor.Specialization == "" {
		return nil, ErrSpecializationRequired
	}
	if doctor.Experience < 0 {
		return nil, ErrNegativeExperience
	}

	err := u.tx.WithinTx(ctx, func(tx *gorm.DB) error {
		if err := u.doctorRepo.Create(tx, doctor); err != nil {
			u.log.Warnf("Failed to create doctor: %+v", err)
			return storageError("create doctor", err)
		}

		if err := u.auditService.LogCreate(ctx, tx, entity.AuditActorAdmin, entity.AuditActionDoctorCreate,
			entity.AuditEntityDoctor, doctor.ID, converter.DoctorToResponse(doctor)); err != nil {
			return storageError("write audit log", err)
		}
		return nil
	})
	if err != nil {
		return nil, txError(u.log, "create doctor", err)
	}

	return converter.DoctorToResponse(doctor), nil
}

func (u *doctorUsecase) GetDoctor(ctx context.Context, id int64) (*dto.DoctorResponse, error) {
	doctor, err := u.doctorRepo.FindByID(u.tx.Conn(ctx), id)
	if err != nil {
		u.log.Warnf("Failed to find doctor %d: %+v", id, err)
		return nil, storageError("find doctor", err)
	}
	if doctor == nil {
		return nil, ErrDoctorNotFound
	}

	return converter.DoctorToResponse(doctor), nil
}

func (u *doctorUsecase) GetAllDoctors(ctx context.Context, filter repository.DoctorFilter) (*dto.DoctorListResponse, error) {
	doctors, err := u.doctorRepo.FindAll(u.tx.Conn(ctx), filter)
	if err != nil {
		u.log.Warnf("Failed to find all doctors: %+v", err)
		return nil, storageError("list doctors", err)
	}

	return &dto.DoctorListResponse{
		Doctors: converter.DoctorsToResponses(doctors),
		Total:   len(doctors),
	}, nil
}

func (u *doctorUsecase) SetAvailability(ctx context.Context, id int64, available bool) (*dto.DoctorResponse, error) {
	var updated *entity.Doctor

	err := u.tx.WithinTx(ctx, func(tx *gorm.DB) error {
		doctor, err := u.doctorRepo.FindByID(tx, id)
		if err != nil {
			u.log.Warnf("Failed to find doctor %d: %+v", id, err)
			return storageError("find doctor", err)
		}
		if doctor == nil {
			return ErrDoctorNotFound
		}

		if _, err := u.doctorRepo.UpdateAvailability(tx, id, available); err != nil {
			u.log.Warnf("Failed to update availability of doctor %d: %+v", id, err)
			return storageError("update doctor availability", err)
		}

		if err := u.auditService.LogUpdate(ctx, tx, entity.AuditActorAdmin, entity.AuditActionDoctorUpdate,
			entity.AuditEntityDoctor, id,
			entity.JSON{"available": doctor.Available},
			entity.JSON{"available": available}); err != nil {
			return storageError("write audit log", err)
		}

		doctor.Available = available
		updated = doctor
		return nil
	})
	if err != nil {
		return nil, txError(u.log, "update doctor availability", err)
	}

	return converter.DoctorToResponse(updated), nil
}
