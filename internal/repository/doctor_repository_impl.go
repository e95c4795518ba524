package repository

import (
	"errors"

	"clinic-scheduling/internal/domain/entity"
	domainRepo "clinic-scheduling/internal/domain/repository"

	"gorm.io/gorm"
)

type doctorRepository struct{}

func NewDoctorRepository() domainRepo.DoctorRepository {
	return &doctorRepository{}
}

func (r *doctorRepository) Create(db *gorm.DB, doctor *entity.Doctor) error {
	return db.Create(doctor).Error
}

func (r *doctorRepository) FindByID(db *gorm.DB, id int64) (*entity.Doctor, error) {
	var doctor entity.Doctor
	err := db.Where("id = ?", id).First(&doctor).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &doctor, nil
}

func (r *doctorRepository) FindAll(db *gorm.DB, filter domainRepo.DoctorFilter) ([]entity.Doctor, error) {
	query := db.Model(&entity.Doctor{})
	if filter.Available != nil {
		query = query.Where("available = ?", *filter.Available)
	}
	if filter.Specialization != "" {
		query = query.Where("specialization = ?", filter.Specialization)
	}

	var doctors []entity.Doctor
	if err := query.Order("id ASC").Find(&doctors).Error; err != nil {
		return nil, err
	}
	return doctors, nil
}

func (r *doctorRepository) FindAvailableBySpecialization(db *gorm.DB, specialization string) ([]entity.Doctor, error) {
	var doctors []entity.Doctor
	err := db.Where("specialization = ? AND available = ?", specialization, true).
		Order("id ASC").
		Find(&doctors).Error
	if err != nil {
		return nil, err
	}
	return doctors, nil
}

func (r *doctorRepository) UpdateAvailability(db *gorm.DB, id int64, available bool) (int64, error) {
	result := db.Model(&entity.Doctor{}).
		Where("id = ?", id).
		Update("available", available)
	return result.RowsAffected, result.Error
}
