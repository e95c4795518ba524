package converter

import (
	"clinic-scheduling/internal/delivery/dto"
	"clinic-scheduling/internal/domain/entity"

	"github.com/samber/lo"
)

// AuditLogToResponse converts a AuditLog entity to AuditLogResponse DTO
func AuditLogToResponse(log *entity.AuditLog) *dto.AuditLogResponse {
	if log == nil {
		return nil
	}

	return &dto.AuditLogResponse{
		ID:         log.ID,
		Actor:      log.Actor,
		Action:     log.Action,
		EntityType: log.EntityType,
		EntityID:   log.EntityID,
		Metadata:   log.Metadata,
		CreatedAt:  log.CreatedAt,
	}
}

// AuditLogsToResponses converts a slice of AuditLog entities to slice of AuditLogResponse DTOs
func AuditLogsToResponses(logs []entity.AuditLog) []dto.AuditLogResponse {
	return lo.Map(logs, func(l entity.AuditLog, _ int) dto.AuditLogResponse {
		return *AuditLogToResponse(&l)
	})
}
