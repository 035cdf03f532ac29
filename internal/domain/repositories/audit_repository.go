package repositories

import (
	"context"

	"github.com/google/uuid"
	"payroll-chain.backend/internal/domain/entities"
)

// AuditLogRepository defines append-only audit log operations
type AuditLogRepository interface {
	Create(ctx context.Context, log *entities.AuditLog) error
	GetByRunID(ctx context.Context, runID uuid.UUID) ([]*entities.AuditLog, error)
}
