package repositories

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"payroll-chain.backend/internal/domain/entities"
	domainerrors "payroll-chain.backend/internal/domain/errors"
	"payroll-chain.backend/internal/infrastructure/models"
)

// PayrollRunRepository implements payroll run data operations
type PayrollRunRepository struct {
	db *gorm.DB
}

// NewPayrollRunRepository creates a new payroll run repository
func NewPayrollRunRepository(db *gorm.DB) *PayrollRunRepository {
	return &PayrollRunRepository{db: db}
}

func (r *PayrollRunRepository) Create(ctx context.Context, run *entities.PayrollRun) error {
	m := &models.PayrollRun{
		ID:           run.ID,
		AdminID:      run.AdminID,
		Status:       string(run.Status),
		TotalAmount:  run.TotalAmount,
		TotalWorkers: run.TotalWorkers,
		CreatedAt:    run.CreatedAt,
		UpdatedAt:    run.UpdatedAt,
	}

	db := GetDB(ctx, r.db)
	if err := db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	run.ID = m.ID
	return nil
}

func (r *PayrollRunRepository) GetByID(ctx context.Context, id uuid.UUID) (*entities.PayrollRun, error) {
	var m models.PayrollRun
	db := GetDB(ctx, r.db)
	if err := db.WithContext(ctx).Where("id = ?", id).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domainerrors.ErrNotFound
		}
		return nil, err
	}
	return toRunEntity(&m), nil
}

func (r *PayrollRunRepository) GetByIDWithItems(ctx context.Context, id uuid.UUID) (*entities.PayrollRun, error) {
	var m models.PayrollRun
	db := GetDB(ctx, r.db)
	if err := db.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("created_at ASC") }).
		Preload("Items.Worker").
		Where("id = ?", id).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domainerrors.ErrNotFound
		}
		return nil, err
	}

	run := toRunEntity(&m)
	for _, im := range m.Items {
		item := im
		e := toItemEntity(&item)
		if item.Worker.ID != uuid.Nil {
			e.Worker = toWorkerEntity(&item.Worker)
		}
		run.Items = append(run.Items, e)
	}
	return run, nil
}

func (r *PayrollRunRepository) ListByAdmin(ctx context.Context, adminID uuid.UUID, limit, offset int) ([]*entities.PayrollRun, int, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&models.PayrollRun{}).
		Where("admin_id = ?", adminID).
		Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var ms []models.PayrollRun
	if err := r.db.WithContext(ctx).
		Where("admin_id = ?", adminID).
		Order("created_at DESC").
		Limit(limit).Offset(offset).
		Find(&ms).Error; err != nil {
		return nil, 0, err
	}

	var runs []*entities.PayrollRun
	for _, m := range ms {
		model := m
		runs = append(runs, toRunEntity(&model))
	}
	return runs, int(total), nil
}

// UpdateStatusFrom moves a run between statuses as a compare-and-swap: the
// write only lands while the run is still in the expected source status.
// Concurrent callers race on the UPDATE and exactly one wins; the losers get
// ErrInvalidState.
func (r *PayrollRunRepository) UpdateStatusFrom(ctx context.Context, id uuid.UUID, from, to entities.RunStatus) error {
	db := GetDB(ctx, r.db)
	result := db.WithContext(ctx).Model(&models.PayrollRun{}).
		Where("id = ? AND status = ?", id, from).
		Updates(map[string]interface{}{
			"status":     to,
			"updated_at": time.Now(),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		var count int64
		if err := db.WithContext(ctx).Model(&models.PayrollRun{}).
			Where("id = ?", id).Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			return domainerrors.ErrNotFound
		}
		return domainerrors.ErrInvalidState
	}
	return nil
}

func (r *PayrollRunRepository) MarkFinished(ctx context.Context, id uuid.UUID, status entities.RunStatus, completedAt time.Time) error {
	db := GetDB(ctx, r.db)
	result := db.WithContext(ctx).Model(&models.PayrollRun{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":       status,
			"completed_at": completedAt,
			"updated_at":   time.Now(),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domainerrors.ErrNotFound
	}
	return nil
}

func toRunEntity(m *models.PayrollRun) *entities.PayrollRun {
	return &entities.PayrollRun{
		ID:           m.ID,
		AdminID:      m.AdminID,
		Status:       entities.RunStatus(m.Status),
		TotalAmount:  m.TotalAmount,
		TotalWorkers: m.TotalWorkers,
		CompletedAt:  m.CompletedAt,
		CreatedAt:    m.CreatedAt,
		UpdatedAt:    m.UpdatedAt,
	}
}
