package handler

import (
	"encoding/json"
	"net/http"
	"time"

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

type AppointmentRequestHandler struct {
	orchestrator      *workflow.Orchestrator
	schedulingUsecase usecase.SchedulingUsecase
	validator         *validator.CustomValidator
}

func NewAppointmentRequestHandler(
	orchestrator *workflow.Orchestrator,
	schedulingUsecase usecase.SchedulingUsecase,
	validator *validator.CustomValidator,
) *AppointmentRequestHandler {
	return &AppointmentRequestHandler{
		orchestrator:      orchestrator,
		schedulingUsecase: schedulingUsecase,
		validator:         validator,
	}
}

// SubmitRequest files a request for the logged-in patient
func (h *AppointmentRequestHandler) SubmitRequest(w http.ResponseWriter, r *http.Request) {
	var req dto.SubmitRequestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid request body", nil)
		return
	}

	if err := h.validator.Validate(&req); err != nil {
		response.ValidationError(w, h.validator.FormatValidationErrors(err))
		return
	}

	requestedDate, err := time.Parse(time.DateOnly, req.RequestedDate)
	if err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid date format, use YYYY-MM-DD", nil)
		return
	}

	var session *workflow.PatientSession
	if claims, ok := middleware.GetClaimsFromContext(r.Context()); ok && claims.Role == jwt.RolePatient {
		session = &workflow.PatientSession{PatientID: claims.PatientID, Email: claims.Email}
	}

	requestID, err := h.orchestrator.Submit(r.Context(), session, workflow.SubmitInput{
		Specialization: req.Specialization,
		RequestedDate:  requestedDate,
		Description:    req.Description,
	})
	if err != nil {
		writeError(w, err, "Failed to submit appointment request")
		return
	}

	response.Success(w, http.StatusCreated, "Appointment request submitted", dto.SubmitRequestResponse{
		RequestID: requestID,
		Status:    string(entity.RequestStatusPending),
	})
}

func (h *AppointmentRequestHandler) GetMyRequests(w http.ResponseWriter, r *http.Request) {
	patientID, ok := middleware.GetPatientIDFromContext(r.Context())
	if !ok {
		response.Unauthorized(w, "")
		return
	}

	reqs, err := h.schedulingUsecase.ListPatientRequests(r.Context(), patientID)
	if err != nil {
		writeError(w, err, "Failed to get appointment requests")
		return
	}

	response.Success(w, http.StatusOK, "Appointment requests retrieved successfully", dto.AppointmentRequestListResponse{
		Requests: converter.AppointmentRequestsToResponses(reqs),
		Total:    len(reqs),
	})
}

func (h *AppointmentRequestHandler) GetPendingRequests(w http.ResponseWriter, r *http.Request) {
	reqs, err := h.schedulingUsecase.ListPendingRequests(r.Context())
	if err != nil {
		writeError(w, err, "Failed to get pending requests")
		return
	}

	response.Success(w, http.StatusOK, "Pending requests retrieved successfully", dto.AppointmentRequestListResponse{
		Requests: converter.AppointmentRequestsToResponses(reqs),
		Total:    len(reqs),
	})
}
