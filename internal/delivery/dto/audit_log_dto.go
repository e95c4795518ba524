package dto

import (
	"time"

	"clinic-scheduling/internal/domain/entity"
)

// Response DTOs

type AuditLogResponse struct {
	ID         int64       `json:"id"`
	Actor      string      `json:"actor"`
	Action     string      `json:"action"`
	EntityType string      `json:"entity_type,omitempty"`
	EntityID   *int64      `json:"entity_id,omitempty"`
	Metadata   entity.JSON `json:"metadata,omitempty"`
	CreatedAt  time.Time   `json:"created_at"`
}

type AuditLogListResponse struct {
	Logs  []AuditLogResponse `json:"logs"`
	Total int                `json:"total"`
}
