package repositories

import (
	"context"

	"github.com/google/uuid"
	"payroll-chain.backend/internal/domain/entities"
)

// TransferRepository defines cross-chain transfer data operations
type TransferRepository interface {
	Create(ctx context.Context, transfer *entities.CrossChainTransfer) error
	GetByID(ctx context.Context, id uuid.UUID) (*entities.CrossChainTransfer, error)
	GetByMessageHash(ctx context.Context, messageHash string) (*entities.CrossChainTransfer, error)
	GetByWorkerID(ctx context.Context, workerID uuid.UUID, limit, offset int) ([]*entities.CrossChainTransfer, int, error)
	Update(ctx context.Context, transfer *entities.CrossChainTransfer) error
}
