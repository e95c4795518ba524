package service

import (
	"context"

	"clinic-scheduling/internal/domain/entity"
	"clinic-scheduling/internal/domain/repository"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// AuditService records audit entries on the caller's transaction so the
// entry commits or rolls back together with the change it describes.
type AuditService interface {
	LogCreate(ctx context.Context, tx *gorm.DB, actor string, action string, entityType string, entityID int64, newValue interface{}) error
	LogUpdate(ctx context.Context, tx *gorm.DB, actor string, action string, entityType string, entityID int64, oldValue, newValue interface{}) error
	LogEvent(ctx context.Context, tx *gorm.DB, actor string, action string, metadata entity.JSON) error
}

type auditService struct {
	log       *logrus.Logger
	auditRepo repository.AuditLogRepository
}

func NewAuditService(log *logrus.Logger, auditRepo repository.AuditLogRepository) AuditService {
	return &auditService{
		log:       log,
		auditRepo: auditRepo,
	}
}

// LogCreate logs a create action
func (s *auditService) LogCreate(ctx context.Context, tx *gorm.DB, actor string, action string, entityType string, entityID int64, newValue interface{}) error {
	return s.write(tx, &entity.AuditLog{
		Actor:      actor,
		Action:     action,
		EntityType: entityType,
		EntityID:   &entityID,
		Metadata: entity.JSON{
			"old_value": nil,
			"new_value": newValue,
		},
	})
}

// LogUpdate logs an update action with old and new values
func (s *auditService) LogUpdate(ctx context.Context, tx *gorm.DB, actor string, action string, entityType string, entityID int64, oldValue, newValue interface{}) error {
	return s.write(tx, &entity.AuditLog{
		Actor:      actor,
		Action:     action,
		EntityType: entityType,
		EntityID:   &entityID,
		Metadata: entity.JSON{
			"old_value": oldValue,
			"new_value": newValue,
		},
	})
}

// LogEvent logs an action that is not tied to a single row, e.g. a login.
func (s *auditService) LogEvent(ctx context.Context, tx *gorm.DB, actor string, action string, metadata entity.JSON) error {
	return s.write(tx, &entity.AuditLog{
		Actor:    actor,
		Action:   action,
		Metadata: metadata,
	})
}

func (s *auditService) write(tx *gorm.DB, auditLog *entity.AuditLog) error {
	if err := s.auditRepo.Create(tx, auditLog); err != nil {
		s.log.Warnf("Failed to create audit log: %+v", err)
		return err
	}
	return nil
}
