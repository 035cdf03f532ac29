package repositories

import (
	"context"

	"github.com/google/uuid"
	"payroll-chain.backend/internal/domain/entities"
)

// AdminRepository defines admin account data operations
type AdminRepository interface {
	Create(ctx context.Context, admin *entities.Admin) error
	GetByID(ctx context.Context, id uuid.UUID) (*entities.Admin, error)
	GetByEmail(ctx context.Context, email string) (*entities.Admin, error)
}
