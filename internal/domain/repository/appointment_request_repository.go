package repository

import (
	"clinic-scheduling/internal/domain/entity"

	"gorm.io/gorm"
)

type AppointmentRequestRepository interface {
	Create(db *gorm.DB, req *entity.AppointmentRequest) error
	FindByID(db *gorm.DB, id int64) (*entity.AppointmentRequest, error)
	// FindByIDForUpdate row-locks the request for the rest of the transaction.
	FindByIDForUpdate(db *gorm.DB, id int64) (*entity.AppointmentRequest, error)
	FindPending(db *gorm.DB) ([]entity.AppointmentRequest, error)
	FindByPatientID(db *gorm.DB, patientID int64) ([]entity.AppointmentRequest, error)
	// UpdateStatusIfPending moves a PENDING request to status and reports the
	// affected rows: 0 means the request was no longer pending.
	UpdateStatusIfPending(db *gorm.DB, id int64, status entity.RequestStatus) (int64, error)
}
