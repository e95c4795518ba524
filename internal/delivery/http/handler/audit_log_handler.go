package handler

import (
	"net/http"
	"strconv"

	"clinic-scheduling/internal/domain/repository"
	"clinic-scheduling/internal/usecase"
	"clinic-scheduling/pkg/response"
)

type AuditLogHandler struct {
	auditLogUsecase usecase.AuditLogUsecase
}

func NewAuditLogHandler(auditLogUsecase usecase.AuditLogUsecase) *AuditLogHandler {
	return &AuditLogHandler{auditLogUsecase: auditLogUsecase}
}

// GetAuditLogs supports ?actor=, ?action= and ?limit=
func (h *AuditLogHandler) GetAuditLogs(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	filter := repository.AuditLogFilter{
		Actor:  query.Get("actor"),
		Action: query.Get("action"),
	}

	if raw := query.Get("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit <= 0 || limit > 1000 {
			response.Error(w, http.StatusBadRequest, "Invalid limit", nil)
			return
		}
		filter.Limit = limit
	}

	logs, err := h.auditLogUsecase.GetAuditLogs(r.Context(), filter)
	if err != nil {
		writeError(w, err, "Failed to get audit logs")
		return
	}

	response.Success(w, http.StatusOK, "Audit logs retrieved successfully", logs)
}
