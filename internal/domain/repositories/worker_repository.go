package repositories

import (
	"context"

	"github.com/google/uuid"
	"payroll-chain.backend/internal/domain/entities"
)

// WorkerRepository defines worker data operations
type WorkerRepository interface {
	Create(ctx context.Context, worker *entities.Worker) error
	GetByID(ctx context.Context, id uuid.UUID) (*entities.Worker, error)
	GetByEmail(ctx context.Context, email string) (*entities.Worker, error)
	SetRecipientRef(ctx context.Context, id uuid.UUID, recipientRef string) error
	SetWalletRef(ctx context.Context, id uuid.UUID, walletRef, walletAddress string) error
	// ListUnprovisioned returns workers missing a recipient ref or a wallet
	// ref, for the background provisioning job.
	ListUnprovisioned(ctx context.Context, limit int) ([]*entities.Worker, error)
}
