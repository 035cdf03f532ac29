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

// TransferRepository implements cross-chain transfer data operations
type TransferRepository struct {
	db *gorm.DB
}

// NewTransferRepository creates a new transfer repository
func NewTransferRepository(db *gorm.DB) *TransferRepository {
	return &TransferRepository{db: db}
}

func (r *TransferRepository) Create(ctx context.Context, transfer *entities.CrossChainTransfer) error {
	m := &models.CrossChainTransfer{
		ID:            transfer.ID,
		WorkerID:      transfer.WorkerID,
		SourceChain:   transfer.SourceChain,
		DestChain:     transfer.DestChain,
		Amount:        transfer.Amount,
		SourceAddress: transfer.SourceAddress,
		DestAddress:   transfer.DestAddress,
		MessageHash:   transfer.MessageHash.Ptr(),
		Status:        string(transfer.Status),
		BurnTxHash:    transfer.BurnTxHash.Ptr(),
		CreatedAt:     transfer.CreatedAt,
		UpdatedAt:     transfer.UpdatedAt,
	}

	db := GetDB(ctx, r.db)
	if err := db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	transfer.ID = m.ID
	return nil
}

func (r *TransferRepository) GetByID(ctx context.Context, id uuid.UUID) (*entities.CrossChainTransfer, error) {
	var m models.CrossChainTransfer
	db := GetDB(ctx, r.db)
	if err := db.WithContext(ctx).Where("id = ?", id).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domainerrors.ErrNotFound
		}
		return nil, err
	}
	return toTransferEntity(&m), nil
}

func (r *TransferRepository) GetByMessageHash(ctx context.Context, messageHash string) (*entities.CrossChainTransfer, error) {
	var m models.CrossChainTransfer
	db := GetDB(ctx, r.db)
	if err := db.WithContext(ctx).Where("message_hash = ?", messageHash).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domainerrors.ErrNotFound
		}
		return nil, err
	}
	return toTransferEntity(&m), nil
}

func (r *TransferRepository) GetByWorkerID(ctx context.Context, workerID uuid.UUID, limit, offset int) ([]*entities.CrossChainTransfer, int, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&models.CrossChainTransfer{}).
		Where("worker_id = ?", workerID).
		Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var ms []models.CrossChainTransfer
	if err := r.db.WithContext(ctx).
		Where("worker_id = ?", workerID).
		Order("created_at DESC").
		Limit(limit).Offset(offset).
		Find(&ms).Error; err != nil {
		return nil, 0, err
	}

	var transfers []*entities.CrossChainTransfer
	for _, m := range ms {
		model := m
		transfers = append(transfers, toTransferEntity(&model))
	}
	return transfers, int(total), nil
}

func (r *TransferRepository) Update(ctx context.Context, transfer *entities.CrossChainTransfer) error {
	db := GetDB(ctx, r.db)
	result := db.WithContext(ctx).Model(&models.CrossChainTransfer{}).
		Where("id = ?", transfer.ID).
		Updates(map[string]interface{}{
			"message_hash":  transfer.MessageHash.Ptr(),
			"attestation":   transfer.Attestation.Ptr(),
			"status":        string(transfer.Status),
			"burn_tx_hash":  transfer.BurnTxHash.Ptr(),
			"mint_tx_hash":  transfer.MintTxHash.Ptr(),
			"error_message": transfer.ErrorMessage.Ptr(),
			"completed_at":  transfer.CompletedAt,
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

func toTransferEntity(m *models.CrossChainTransfer) *entities.CrossChainTransfer {
	return &entities.CrossChainTransfer{
		ID:            m.ID,
		WorkerID:      m.WorkerID,
		SourceChain:   m.SourceChain,
		DestChain:     m.DestChain,
		Amount:        m.Amount,
		SourceAddress: m.SourceAddress,
		DestAddress:   m.DestAddress,
		MessageHash:   null.StringFromPtr(m.MessageHash),
		Attestation:   null.StringFromPtr(m.Attestation),
		Status:        entities.TransferStatus(m.Status),
		BurnTxHash:    null.StringFromPtr(m.BurnTxHash),
		MintTxHash:    null.StringFromPtr(m.MintTxHash),
		ErrorMessage:  null.StringFromPtr(m.ErrorMessage),
		CompletedAt:   m.CompletedAt,
		CreatedAt:     m.CreatedAt,
		UpdatedAt:     m.UpdatedAt,
	}
}
