package converter

import (
	"clinic-scheduling/internal/delivery/dto"
	"clinic-scheduling/internal/domain/entity"

	"github.com/samber/lo"
)

// DoctorToResponse converts a Doctor entity to DoctorResponse DTO
func DoctorToResponse(doctor *entity.Doctor) *dto.DoctorResponse {
	if doctor == nil {
		return nil
	}

	return &dto.DoctorResponse{
		ID:             doctor.ID,
		Name:           doctor.Name,
		Specialization: doctor.Specialization,
		Email:          doctor.Email,
		Phone:          doctor.Phone,
		Qualification:  doctor.Qualification,
		Experience:     doctor.Experience,
		Available:      doctor.Available,
		CreatedAt:      doctor.CreatedAt,
	}
}

// DoctorsToResponses converts a slice of Doctor entities to slice of DoctorResponse DTOs
func DoctorsToResponses(doctors []entity.Doctor) []dto.DoctorResponse {
	return lo.Map(doctors, func(d entity.Doctor, _ int) dto.DoctorResponse {
		return *DoctorToResponse(&d)
	})
}
