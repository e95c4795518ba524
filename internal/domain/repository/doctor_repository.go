package repository

import (
	"clinic-scheduling/internal/domain/entity"

	"gorm.io/gorm"
)

type DoctorRepository interface {
	Create(db *gorm.DB, doctor *entity.Doctor) error
	FindByID(db *gorm.DB, id int64) (*entity.Doctor, error)
	FindAll(db *gorm.DB, filter DoctorFilter) ([]entity.Doctor, error)
	// FindAvailableBySpecialization matches specialization exactly, case included.
	FindAvailableBySpecialization(db *gorm.DB, specialization string) ([]entity.Doctor, error)
	UpdateAvailability(db *gorm.DB, id int64, available bool) (int64, error)
}

// DoctorFilter narrows a doctor listing. Nil/empty fields are ignored.
type DoctorFilter struct {
	Available      *bool
	Specialization string
}
