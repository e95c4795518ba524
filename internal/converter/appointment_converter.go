package converter

import (
	"time"

	"clinic-scheduling/internal/delivery/dto"
	"clinic-scheduling/internal/domain/entity"

	"github.com/samber/lo"
)

// AppointmentRequestToResponse converts an AppointmentRequest entity to its DTO.
// PatientName is filled only when the patient relation was loaded.
func AppointmentRequestToResponse(req *entity.AppointmentRequest) *dto.AppointmentRequestResponse {
	if req == nil {
		return nil
	}

	resp := &dto.AppointmentRequestResponse{
		ID:             req.ID,
		PatientID:      req.PatientID,
		Specialization: req.Specialization,
		RequestedDate:  req.RequestedDate.Format(time.DateOnly),
		Status:         string(req.Status),
		Description:    req.Description,
		CreatedAt:      req.CreatedAt,
	}
	if req.Patient != nil {
		resp.PatientName = req.Patient.Name
	}
	return resp
}

func AppointmentRequestsToResponses(reqs []entity.AppointmentRequest) []dto.AppointmentRequestResponse {
	return lo.Map(reqs, func(r entity.AppointmentRequest, _ int) dto.AppointmentRequestResponse {
		return *AppointmentRequestToResponse(&r)
	})
}

// AppointmentToResponse converts an Appointment entity, with whatever
// relations were preloaded, to AppointmentResponse DTO
func AppointmentToResponse(a *entity.Appointment) *dto.AppointmentResponse {
	if a == nil {
		return nil
	}

	resp := &dto.AppointmentResponse{
		ID:              a.ID,
		RequestID:       a.RequestID,
		PatientID:       a.PatientID,
		DoctorID:        a.DoctorID,
		AppointmentDate: a.AppointmentDate.Format(time.DateOnly),
		Status:          string(a.Status),
	}
	if a.Patient != nil {
		resp.PatientName = a.Patient.Name
	}
	if a.Doctor != nil {
		resp.DoctorName = a.Doctor.Name
		resp.Specialization = a.Doctor.Specialization
	}
	return resp
}

func AppointmentsToResponses(appointments []entity.Appointment) []dto.AppointmentResponse {
	return lo.Map(appointments, func(a entity.Appointment, _ int) dto.AppointmentResponse {
		return *AppointmentToResponse(&a)
	})
}
