package repositories

import (
	"context"
	"time"

	"github.com/google/uuid"
	"payroll-chain.backend/internal/domain/entities"
)

// PayrollRunRepository defines payroll run data operations
type PayrollRunRepository interface {
	Create(ctx context.Context, run *entities.PayrollRun) error
	GetByID(ctx context.Context, id uuid.UUID) (*entities.PayrollRun, error)
	GetByIDWithItems(ctx context.Context, id uuid.UUID) (*entities.PayrollRun, error)
	ListByAdmin(ctx context.Context, adminID uuid.UUID, limit, offset int) ([]*entities.PayrollRun, int, error)
	UpdateStatusFrom(ctx context.Context, id uuid.UUID, from, to entities.RunStatus) error
	MarkFinished(ctx context.Context, id uuid.UUID, status entities.RunStatus, completedAt time.Time) error
}

// PayrollItemRepository defines payroll item data operations
type PayrollItemRepository interface {
	Create(ctx context.Context, item *entities.PayrollItem) error
	GetByID(ctx context.Context, id uuid.UUID) (*entities.PayrollItem, error)
	GetByRunID(ctx context.Context, runID uuid.UUID) ([]*entities.PayrollItem, error)
	GetByPayoutID(ctx context.Context, payoutID string) (*entities.PayrollItem, error)
	Update(ctx context.Context, item *entities.PayrollItem) error
	UpdateStatus(ctx context.Context, id uuid.UUID, status entities.ItemStatus) error
}
