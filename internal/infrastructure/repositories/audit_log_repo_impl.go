package repositories

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"payroll-chain.backend/internal/domain/entities"
	"payroll-chain.backend/internal/infrastructure/models"
)

// AuditLogRepository implements append-only audit log operations
type AuditLogRepository struct {
	db *gorm.DB
}

// NewAuditLogRepository creates a new audit log repository
func NewAuditLogRepository(db *gorm.DB) *AuditLogRepository {
	return &AuditLogRepository{db: db}
}

func (r *AuditLogRepository) Create(ctx context.Context, log *entities.AuditLog) error {
	payload := log.Payload
	if payload == "" {
		payload = "{}"
	}
	m := &models.AuditLog{
		ID:        log.ID,
		EventType: string(log.EventType),
		WorkerID:  log.WorkerID,
		RunID:     log.RunID,
		ItemID:    log.ItemID,
		Payload:   payload,
		CreatedAt: log.CreatedAt,
	}

	db := GetDB(ctx, r.db)
	if err := db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	log.ID = m.ID
	return nil
}

func (r *AuditLogRepository) GetByRunID(ctx context.Context, runID uuid.UUID) ([]*entities.AuditLog, error) {
	var ms []models.AuditLog
	db := GetDB(ctx, r.db)
	if err := db.WithContext(ctx).
		Where("run_id = ?", runID).
		Order("created_at ASC").
		Find(&ms).Error; err != nil {
		return nil, err
	}

	var logs []*entities.AuditLog
	for _, m := range ms {
		logs = append(logs, &entities.AuditLog{
			ID:        m.ID,
			EventType: entities.AuditEventType(m.EventType),
			WorkerID:  m.WorkerID,
			RunID:     m.RunID,
			ItemID:    m.ItemID,
			Payload:   m.Payload,
			CreatedAt: m.CreatedAt,
		})
	}
	return logs, nil
}
