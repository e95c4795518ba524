package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"clinic-scheduling/internal/converter"
	"clinic-scheduling/internal/delivery/dto"
	"clinic-scheduling/internal/delivery/http/middleware"
	"clinic-scheduling/internal/domain/entity"
	"clinic-scheduling/internal/usecase"
	"clinic-scheduling/internal/workflow"
	"clinic-scheduling/pkg/jwt"
	"clinic-scheduling/pkg/response"
	"clinic-scheduling/pkg/validator"
)

type AppointmentHandler struct {
	orchestrator      *workflow.Orchestrator
	schedulingUsecase usecase.SchedulingUsecase
	validator         *validator.CustomValidator
}

func NewAppointmentHandler(
	orchestrator *workflow.Orchestrator,
	schedulingUsecase usecase.SchedulingUsecase,
	validator *validator.CustomValidator,
) *AppointmentHandler {
	return &AppointmentHandler{
		orchestrator:      orchestrator,
		schedulingUsecase: schedulingUsecase,
		validator:         validator,
	}
}

// presetSelector answers the orchestrator with ids chosen up front by an
// HTTP client.
type presetSelector struct {
	requestID int64
	doctorID  int64
}

func (s presetSelector) SelectRequest(context.Context, []entity.AppointmentRequest) (int64, error) {
	return s.requestID, nil
}

func (s presetSelector) SelectDoctor(context.Context, *entity.AppointmentRequest, []entity.Doctor) (int64, error) {
	return s.doctorID, nil
}

// FixAppointment confirms a pending request with the chosen doctor
func (h *AppointmentHandler) FixAppointment(w http.ResponseWriter, r *http.Request) {
	var req dto.FixAppointmentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid request body", nil)
		return
	}

	if err := h.validator.Validate(&req); err != nil {
		response.ValidationError(w, h.validator.FormatValidationErrors(err))
		return
	}

	var session *workflow.AdminSession
	if role, ok := middleware.GetRoleFromContext(r.Context()); ok && role == jwt.RoleAdmin {
		session = &workflow.AdminSession{}
	}

	outcome, err := h.orchestrator.Fix(r.Context(), session, presetSelector{requestID: req.RequestID, doctorID: req.DoctorID})
	if errors.Is(err, workflow.ErrNothingPending) {
		// Let the engine say why this particular request cannot be fixed.
		var appointmentID int64
		appointmentID, err = h.schedulingUsecase.FixAppointment(r.Context(), req.RequestID, req.DoctorID)
		if err == nil {
			outcome = &workflow.FixOutcome{AppointmentID: appointmentID, RequestID: req.RequestID, DoctorID: req.DoctorID}
		}
	}
	if err != nil {
		writeError(w, err, "Failed to fix appointment")
		return
	}

	response.Success(w, http.StatusCreated, "Appointment fixed", dto.FixAppointmentResponse{
		AppointmentID: outcome.AppointmentID,
		RequestID:     outcome.RequestID,
		DoctorID:      outcome.DoctorID,
		Message:       workflow.Message(nil),
	})
}

func (h *AppointmentHandler) GetMyAppointments(w http.ResponseWriter, r *http.Request) {
	patientID, ok := middleware.GetPatientIDFromContext(r.Context())
	if !ok {
		response.Unauthorized(w, "")
		return
	}

	appointments, err := h.schedulingUsecase.ListPatientAppointments(r.Context(), patientID)
	if err != nil {
		writeError(w, err, "Failed to get appointments")
		return
	}

	response.Success(w, http.StatusOK, "Appointments retrieved successfully", dto.AppointmentListResponse{
		Appointments: converter.AppointmentsToResponses(appointments),
		Total:        len(appointments),
	})
}

func (h *AppointmentHandler) GetAllAppointments(w http.ResponseWriter, r *http.Request) {
	appointments, err := h.schedulingUsecase.ListAppointments(r.Context())
	if err != nil {
		writeError(w, err, "Failed to get appointments")
		return
	}

	response.Success(w, http.StatusOK, "Appointments retrieved successfully", dto.AppointmentListResponse{
		Appointments: converter.AppointmentsToResponses(appointments),
		Total:        len(appointments),
	})
}

func (h *AppointmentHandler) GetAppointment(w http.ResponseWriter, r *http.Request) {
	appointmentID, ok := pathID(r, "id")
	if !ok {
		response.Error(w, http.StatusBadRequest, "Invalid appointment ID", nil)
		return
	}

	appointment, err := h.schedulingUsecase.GetAppointment(r.Context(), appointmentID)
	if err != nil {
		writeError(w, err, "Failed to get appointment")
		return
	}

	response.Success(w, http.StatusOK, "Appointment retrieved successfully", converter.AppointmentToResponse(appointment))
}
