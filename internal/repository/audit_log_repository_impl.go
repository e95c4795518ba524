package repository

import (
	"clinic-scheduling/internal/domain/entity"
	domainRepo "clinic-scheduling/internal/domain/repository"

	"gorm.io/gorm"
)

const defaultAuditLogLimit = 100

type auditLogRepository struct{}

func NewAuditLogRepository() domainRepo.AuditLogRepository {
	return &auditLogRepository{}
}

func (r *auditLogRepository) Create(db *gorm.DB, log *entity.AuditLog) error {
	return db.Create(log).Error
}

func (r *auditLogRepository) FindAll(db *gorm.DB, filter domainRepo.AuditLogFilter) ([]entity.AuditLog, error) {
	query := db.Model(&entity.AuditLog{})
	if filter.Actor != "" {
		query = query.Where("actor = ?", filter.Actor)
	}
	if filter.Action != "" {
		query = query.Where("action = ?", filter.Action)
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = defaultAuditLogLimit
	}

	var logs []entity.AuditLog
	err := query.Order("created_at DESC, id DESC").Limit(limit).Find(&logs).Error
	if err != nil {
		return nil, err
	}
	return logs, nil
}
