package repository

import (
	"clinic-scheduling/internal/domain/entity"

	"gorm.io/gorm"
)

type AuditLogRepository interface {
	Create(db *gorm.DB, log *entity.AuditLog) error
	FindAll(db *gorm.DB, filter AuditLogFilter) ([]entity.AuditLog, error)
}

// AuditLogFilter narrows an audit trail listing. Zero values mean no filter.
type AuditLogFilter struct {
	Actor  string
	Action string
	Limit  int
}
