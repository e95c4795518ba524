package repository

import (
	"clinic-scheduling/internal/domain/entity"

	"gorm.io/gorm"
)

type PatientRepository interface {
	Create(db *gorm.DB, patient *entity.Patient) error
	FindByID(db *gorm.DB, id int64) (*entity.Patient, error)
	FindByEmail(db *gorm.DB, email string) (*entity.Patient, error)
	FindAll(db *gorm.DB) ([]entity.Patient, error)
	Update(db *gorm.DB, patient *entity.Patient) error
}
