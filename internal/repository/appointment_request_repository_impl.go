package repository

import (
	"errors"

	"clinic-scheduling/internal/domain/entity"
	domainRepo "clinic-scheduling/internal/domain/repository"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type appointmentRequestRepository struct{}

func NewAppointmentRequestRepository() domainRepo.AppointmentRequestRepository {
	return &appointmentRequestRepository{}
}

func (r *appointmentRequestRepository) Create(db *gorm.DB, req *entity.AppointmentRequest) error {
	return db.Create(req).Error
}

func (r *appointmentRequestRepository) FindByID(db *gorm.DB, id int64) (*entity.AppointmentRequest, error) {
	var req entity.AppointmentRequest
	err := db.Preload("Patient").Where("id = ?", id).First(&req).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &req, nil
}

func (r *appointmentRequestRepository) FindByIDForUpdate(db *gorm.DB, id int64) (*entity.AppointmentRequest, error) {
	var req entity.AppointmentRequest
	err := db.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", id).
		First(&req).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &req, nil
}

func (r *appointmentRequestRepository) FindPending(db *gorm.DB) ([]entity.AppointmentRequest, error) {
	var reqs []entity.AppointmentRequest
	err := db.Preload("Patient").
		Where("status = ?", entity.RequestStatusPending).
		Order("requested_date ASC, id ASC").
		Find(&reqs).Error
	if err != nil {
		return nil, err
	}
	return reqs, nil
}

func (r *appointmentRequestRepository) FindByPatientID(db *gorm.DB, patientID int64) ([]entity.AppointmentRequest, error) {
	var reqs []entity.AppointmentRequest
	err := db.Where("patient_id = ?", patientID).
		Order("requested_date DESC, id DESC").
		Find(&reqs).Error
	if err != nil {
		return nil, err
	}
	return reqs, nil
}

// UpdateStatusIfPending only touches rows still in PENDING.
// Returns affected rows: 1 = transitioned, 0 = already decided.
func (r *appointmentRequestRepository) UpdateStatusIfPending(db *gorm.DB, id int64, status entity.RequestStatus) (int64, error) {
	result := db.Model(&entity.AppointmentRequest{}).
		Where("id = ? AND status = ?", id, entity.RequestStatusPending).
		Update("status", status)
	return result.RowsAffected, result.Error
}
