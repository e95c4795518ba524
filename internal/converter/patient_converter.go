package converter

import (
	"clinic-scheduling/internal/delivery/dto"
	"clinic-scheduling/internal/domain/entity"

	"github.com/samber/lo"
)

// PatientToResponse converts a Patient entity to PatientResponse DTO
func PatientToResponse(patient *entity.Patient) *dto.PatientResponse {
	if patient == nil {
		return nil
	}

	return &dto.PatientResponse{
		ID:        patient.ID,
		Name:      patient.Name,
		Email:     patient.Email,
		Phone:     patient.Phone,
		Age:       patient.Age,
		Gender:    patient.Gender,
		Address:   patient.Address,
		CreatedAt: patient.CreatedAt,
	}
}

// PatientsToResponses converts a slice of Patient entities to slice of PatientResponse DTOs
func PatientsToResponses(patients []entity.Patient) []dto.PatientResponse {
	return lo.Map(patients, func(p entity.Patient, _ int) dto.PatientResponse {
		return *PatientToResponse(&p)
	})
}
