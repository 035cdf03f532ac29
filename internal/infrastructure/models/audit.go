package models

import (
	"time"

	"github.com/google/uuid"
)

// AuditLog rows keep history after the referenced entity is deleted,
// so every reference is nullable with ON DELETE SET NULL.
type AuditLog struct {
	ID        uuid.UUID  `gorm:"type:uuid;primaryKey;default:uuid_generate_v4()"`
	EventType string     `gorm:"type:varchar(100);not null;index"`
	WorkerID  *uuid.UUID `gorm:"type:uuid;index;constraint:OnDelete:SET NULL"`
	RunID     *uuid.UUID `gorm:"type:uuid;index;constraint:OnDelete:SET NULL"`
	ItemID    *uuid.UUID `gorm:"type:uuid;constraint:OnDelete:SET NULL"`
	Payload   string     `gorm:"type:jsonb;default:'{}'"`
	CreatedAt time.Time
}
