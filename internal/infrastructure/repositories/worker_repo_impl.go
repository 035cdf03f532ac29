package repositories

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/volatiletech/null/v8"
	"gorm.io/gorm"
	"payroll-chain.backend/internal/domain/entities"
	domainerrors "payroll-chain.backend/internal/domain/errors"
	"payroll-chain.backend/internal/infrastructure/models"
)

// WorkerRepository implements worker data operations
type WorkerRepository struct {
	db *gorm.DB
}

// NewWorkerRepository creates a new worker repository
func NewWorkerRepository(db *gorm.DB) *WorkerRepository {
	return &WorkerRepository{db: db}
}

func (r *WorkerRepository) Create(ctx context.Context, worker *entities.Worker) error {
	m := &models.Worker{
		ID:            worker.ID,
		Name:          worker.Name,
		Email:         worker.Email,
		RecipientRef:  worker.RecipientRef.Ptr(),
		WalletRef:     worker.WalletRef.Ptr(),
		WalletAddress: worker.WalletAddress.Ptr(),
		CreatedAt:     worker.CreatedAt,
		UpdatedAt:     worker.UpdatedAt,
	}

	db := GetDB(ctx, r.db)
	if err := db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	worker.ID = m.ID
	return nil
}

func (r *WorkerRepository) GetByID(ctx context.Context, id uuid.UUID) (*entities.Worker, error) {
	var m models.Worker
	db := GetDB(ctx, r.db)
	if err := db.WithContext(ctx).Where("id = ?", id).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domainerrors.ErrNotFound
		}
		return nil, err
	}
	return toWorkerEntity(&m), nil
}

func (r *WorkerRepository) GetByEmail(ctx context.Context, email string) (*entities.Worker, error) {
	var m models.Worker
	db := GetDB(ctx, r.db)
	if err := db.WithContext(ctx).Where("email = ?", email).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domainerrors.ErrNotFound
		}
		return nil, err
	}
	return toWorkerEntity(&m), nil
}

func (r *WorkerRepository) SetRecipientRef(ctx context.Context, id uuid.UUID, recipientRef string) error {
	db := GetDB(ctx, r.db)
	result := db.WithContext(ctx).Model(&models.Worker{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"recipient_ref": recipientRef,
			"updated_at":    time.Now(),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domainerrors.ErrNotFound
	}
	return nil
}

func (r *WorkerRepository) SetWalletRef(ctx context.Context, id uuid.UUID, walletRef, walletAddress string) error {
	db := GetDB(ctx, r.db)
	result := db.WithContext(ctx).Model(&models.Worker{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"wallet_ref":     walletRef,
			"wallet_address": walletAddress,
			"updated_at":     time.Now(),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domainerrors.ErrNotFound
	}
	return nil
}

func (r *WorkerRepository) ListUnprovisioned(ctx context.Context, limit int) ([]*entities.Worker, error) {
	var ms []models.Worker
	db := GetDB(ctx, r.db)
	if err := db.WithContext(ctx).
		Where("recipient_ref IS NULL OR wallet_ref IS NULL").
		Order("created_at ASC").
		Limit(limit).
		Find(&ms).Error; err != nil {
		return nil, err
	}

	var workers []*entities.Worker
	for _, m := range ms {
		model := m
		workers = append(workers, toWorkerEntity(&model))
	}
	return workers, nil
}

func toWorkerEntity(m *models.Worker) *entities.Worker {
	return &entities.Worker{
		ID:            m.ID,
		Name:          m.Name,
		Email:         m.Email,
		RecipientRef:  null.StringFromPtr(m.RecipientRef),
		WalletRef:     null.StringFromPtr(m.WalletRef),
		WalletAddress: null.StringFromPtr(m.WalletAddress),
		CreatedAt:     m.CreatedAt,
		UpdatedAt:     m.UpdatedAt,
	}
}
