package repositories

import (
	"context"

	"payroll-chain.backend/internal/domain/entities"
)

// GasStationRepository defines sponsored-transaction data operations
type GasStationRepository interface {
	Create(ctx context.Context, txn *entities.GasStationTransaction) error
	GetByOperationHash(ctx context.Context, opHash string) (*entities.GasStationTransaction, error)
	Update(ctx context.Context, txn *entities.GasStationTransaction) error
}

// PaymasterRepository defines fee-abstracted operation data operations
type PaymasterRepository interface {
	Create(ctx context.Context, op *entities.PaymasterOperation) error
	GetByOperationHash(ctx context.Context, opHash string) (*entities.PaymasterOperation, error)
	Update(ctx context.Context, op *entities.PaymasterOperation) error
}
