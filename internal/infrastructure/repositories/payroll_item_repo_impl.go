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

// PayrollItemRepository implements payroll item data operations
type PayrollItemRepository struct {
	db *gorm.DB
}

// NewPayrollItemRepository creates a new payroll item repository
func NewPayrollItemRepository(db *gorm.DB) *PayrollItemRepository {
	return &PayrollItemRepository{db: db}
}

func (r *PayrollItemRepository) Create(ctx context.Context, item *entities.PayrollItem) error {
	m := &models.PayrollItem{
		ID:        item.ID,
		RunID:     item.RunID,
		WorkerID:  item.WorkerID,
		Amount:    item.Amount,
		Chain:     item.Chain,
		Status:    string(item.Status),
		CreatedAt: item.CreatedAt,
		UpdatedAt: item.UpdatedAt,
	}

	db := GetDB(ctx, r.db)
	if err := db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	item.ID = m.ID
	return nil
}

func (r *PayrollItemRepository) GetByID(ctx context.Context, id uuid.UUID) (*entities.PayrollItem, error) {
	var m models.PayrollItem
	db := GetDB(ctx, r.db)
	if err := db.WithContext(ctx).Where("id = ?", id).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domainerrors.ErrNotFound
		}
		return nil, err
	}
	return toItemEntity(&m), nil
}

func (r *PayrollItemRepository) GetByRunID(ctx context.Context, runID uuid.UUID) ([]*entities.PayrollItem, error) {
	var ms []models.PayrollItem
	db := GetDB(ctx, r.db)
	if err := db.WithContext(ctx).
		Where("run_id = ?", runID).
		Order("created_at ASC").
		Find(&ms).Error; err != nil {
		return nil, err
	}

	var items []*entities.PayrollItem
	for _, m := range ms {
		model := m
		items = append(items, toItemEntity(&model))
	}
	return items, nil
}

func (r *PayrollItemRepository) GetByPayoutID(ctx context.Context, payoutID string) (*entities.PayrollItem, error) {
	var m models.PayrollItem
	db := GetDB(ctx, r.db)
	if err := db.WithContext(ctx).Where("payout_id = ?", payoutID).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domainerrors.ErrNotFound
		}
		return nil, err
	}
	return toItemEntity(&m), nil
}

func (r *PayrollItemRepository) Update(ctx context.Context, item *entities.PayrollItem) error {
	db := GetDB(ctx, r.db)
	result := db.WithContext(ctx).Model(&models.PayrollItem{}).
		Where("id = ?", item.ID).
		Updates(map[string]interface{}{
			"status":        string(item.Status),
			"payout_id":     item.PayoutID.Ptr(),
			"tx_hash":       item.TxHash.Ptr(),
			"error_message": item.ErrorMessage.Ptr(),
			"completed_at":  item.CompletedAt,
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

func (r *PayrollItemRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status entities.ItemStatus) error {
	db := GetDB(ctx, r.db)
	result := db.WithContext(ctx).Model(&models.PayrollItem{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":     status,
			"updated_at": time.Now(),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domainerrors.ErrNotFound
	}
	return nil
}

func toItemEntity(m *models.PayrollItem) *entities.PayrollItem {
	return &entities.PayrollItem{
		ID:           m.ID,
		RunID:        m.RunID,
		WorkerID:     m.WorkerID,
		Amount:       m.Amount,
		Chain:        m.Chain,
		Status:       entities.ItemStatus(m.Status),
		PayoutID:     null.StringFromPtr(m.PayoutID),
		TxHash:       null.StringFromPtr(m.TxHash),
		ErrorMessage: null.StringFromPtr(m.ErrorMessage),
		CompletedAt:  m.CompletedAt,
		CreatedAt:    m.CreatedAt,
		UpdatedAt:    m.UpdatedAt,
	}
}
