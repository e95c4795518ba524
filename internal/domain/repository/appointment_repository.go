package repository

import (
	"time"

	"clinic-scheduling/internal/domain/entity"

	"gorm.io/gorm"
)

type AppointmentRepository interface {
	Create(db *gorm.DB, appointment *entity.Appointment) error
	FindByID(db *gorm.DB, id int64) (*entity.Appointment, error)
	FindAll(db *gorm.DB) ([]entity.Appointment, error)
	FindByPatientID(db *gorm.DB, patientID int64) ([]entity.Appointment, error)
	CountConfirmedForDoctorOnDay(db *gorm.DB, doctorID int64, day time.Time) (int64, error)
}
