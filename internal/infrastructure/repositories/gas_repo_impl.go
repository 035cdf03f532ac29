package repositories

import (
	"context"
	"errors"
	"time"

	"github.com/volatiletech/null/v8"
	"gorm.io/gorm"
	"payroll-chain.backend/internal/domain/entities"
	domainerrors "payroll-chain.backend/internal/domain/errors"
	"payroll-chain.backend/internal/infrastructure/models"
)

// GasStationRepository implements sponsored-transaction data operations
type GasStationRepository struct {
	db *gorm.DB
}

// NewGasStationRepository creates a new gas station repository
func NewGasStationRepository(db *gorm.DB) *GasStationRepository {
	return &GasStationRepository{db: db}
}

func (r *GasStationRepository) Create(ctx context.Context, txn *entities.GasStationTransaction) error {
	m := &models.GasStationTransaction{
		ID:            txn.ID,
		WorkerID:      txn.WorkerID,
		WalletRef:     txn.WalletRef,
		Chain:         txn.Chain,
		OperationHash: txn.OperationHash,
		PolicyID:      txn.PolicyID,
		Status:        string(txn.Status),
		CreatedAt:     txn.CreatedAt,
		UpdatedAt:     txn.UpdatedAt,
	}

	db := GetDB(ctx, r.db)
	if err := db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	txn.ID = m.ID
	return nil
}

func (r *GasStationRepository) GetByOperationHash(ctx context.Context, opHash string) (*entities.GasStationTransaction, error) {
	var m models.GasStationTransaction
	db := GetDB(ctx, r.db)
	if err := db.WithContext(ctx).Where("operation_hash = ?", opHash).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domainerrors.ErrNotFound
		}
		return nil, err
	}
	return &entities.GasStationTransaction{
		ID:            m.ID,
		WorkerID:      m.WorkerID,
		WalletRef:     m.WalletRef,
		Chain:         m.Chain,
		OperationHash: m.OperationHash,
		PolicyID:      m.PolicyID,
		Status:        entities.OperationStatus(m.Status),
		TxHash:        null.StringFromPtr(m.TxHash),
		ErrorMessage:  null.StringFromPtr(m.ErrorMessage),
		CreatedAt:     m.CreatedAt,
		UpdatedAt:     m.UpdatedAt,
	}, nil
}

func (r *GasStationRepository) Update(ctx context.Context, txn *entities.GasStationTransaction) error {
	db := GetDB(ctx, r.db)
	result := db.WithContext(ctx).Model(&models.GasStationTransaction{}).
		Where("operation_hash = ?", txn.OperationHash).
		Updates(map[string]interface{}{
			"status":        string(txn.Status),
			"tx_hash":       txn.TxHash.Ptr(),
			"error_message": txn.ErrorMessage.Ptr(),
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

// PaymasterRepository implements fee-abstracted operation data operations
type PaymasterRepository struct {
	db *gorm.DB
}

// NewPaymasterRepository creates a new paymaster repository
func NewPaymasterRepository(db *gorm.DB) *PaymasterRepository {
	return &PaymasterRepository{db: db}
}

func (r *PaymasterRepository) Create(ctx context.Context, op *entities.PaymasterOperation) error {
	m := &models.PaymasterOperation{
		ID:            op.ID,
		WorkerID:      op.WorkerID,
		WalletRef:     op.WalletRef,
		Chain:         op.Chain,
		OperationHash: op.OperationHash,
		FeeUSDC:       op.FeeUSDC,
		MaxFeeUSDC:    op.MaxFeeUSDC,
		Status:        string(op.Status),
		CreatedAt:     op.CreatedAt,
		UpdatedAt:     op.UpdatedAt,
	}

	db := GetDB(ctx, r.db)
	if err := db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	op.ID = m.ID
	return nil
}

func (r *PaymasterRepository) GetByOperationHash(ctx context.Context, opHash string) (*entities.PaymasterOperation, error) {
	var m models.PaymasterOperation
	db := GetDB(ctx, r.db)
	if err := db.WithContext(ctx).Where("operation_hash = ?", opHash).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domainerrors.ErrNotFound
		}
		return nil, err
	}
	return &entities.PaymasterOperation{
		ID:            m.ID,
		WorkerID:      m.WorkerID,
		WalletRef:     m.WalletRef,
		Chain:         m.Chain,
		OperationHash: m.OperationHash,
		FeeUSDC:       m.FeeUSDC,
		MaxFeeUSDC:    m.MaxFeeUSDC,
		Status:        entities.OperationStatus(m.Status),
		TxHash:        null.StringFromPtr(m.TxHash),
		ErrorMessage:  null.StringFromPtr(m.ErrorMessage),
		CreatedAt:     m.CreatedAt,
		UpdatedAt:     m.UpdatedAt,
	}, nil
}

func (r *PaymasterRepository) Update(ctx context.Context, op *entities.PaymasterOperation) error {
	db := GetDB(ctx, r.db)
	result := db.WithContext(ctx).Model(&models.PaymasterOperation{}).
		Where("operation_hash = ?", op.OperationHash).
		Updates(map[string]interface{}{
			"status":        string(op.Status),
			"tx_hash":       op.TxHash.Ptr(),
			"error_message": op.ErrorMessage.Ptr(),
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
