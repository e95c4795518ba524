package usecase

import (
	"context"

	"clinic-scheduling/internal/converter"
	"clinic-scheduling/internal/delivery/dto"
	"clinic-scheduling/internal/domain/repository"
	"clinic-scheduling/internal/infrastructure/database"

	"github.com/sirupsen/logrus"
)

type AuditLogUsecase interface {
	GetAuditLogs(ctx context.Context, filter repository.AuditLogFilter) (*dto.AuditLogListResponse, error)
}

type auditLogUsecase struct {
	tx           database.Transactor
	log          *logrus.Logger
	auditLogRepo repository.AuditLogRepository
}

func NewAuditLogUsecase(
	tx database.Transactor,
	log *logrus.Logger,
	auditLogRepo repository.AuditLogRepository,
) AuditLogUsecase {
	return &auditLogUsecase{
		tx:           tx,
		log:          log,
		auditLogRepo: auditLogRepo,
	}
}

func (u *auditLogUsecase) GetAuditLogs(ctx context.Context, filter repository.AuditLogFilter) (*dto.AuditLogListResponse, error) {
	logs, err := u.auditLogRepo.FindAll(u.tx.Conn(ctx), filter)
	if err != nil {
		u.log.Warnf("Failed to find audit logs: %+v", err)
		return nil, storageError("list audit logs", err)
	}

	return &dto.AuditLogListResponse{
		Logs:  converter.AuditLogsToResponses(logs),
		Total: len(logs),
	}, nil
}
