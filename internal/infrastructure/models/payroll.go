package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type PayrollRun struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey;default:uuid_generate_v4()"`
	AdminID      uuid.UUID `gorm:"type:uuid;not null;index"`
	Status       string    `gorm:"type:varchar(50);not null;index"`
	TotalAmount  string    `gorm:"type:decimal(20,6);not null"`
	TotalWorkers int       `gorm:"not null"`
	CompletedAt  *time.Time
	CreatedAt    time.Time
	UpdatedAt    time.Time
	DeletedAt    gorm.DeletedAt `gorm:"index"`

	Items []PayrollItem `gorm:"foreignKey:RunID;constraint:OnDelete:CASCADE"`
}

type PayrollItem struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey;default:uuid_generate_v4()"`
	RunID        uuid.UUID `gorm:"type:uuid;not null;index"`
	WorkerID     uuid.UUID `gorm:"type:uuid;not null;index"`
	Amount       string    `gorm:"type:decimal(20,6);not null"`
	Chain        string    `gorm:"type:varchar(50);not null"`
	Status       string    `gorm:"type:varchar(50);not null;index"`
	PayoutID     *string   `gorm:"type:varchar(255);index"`
	TxHash       *string   `gorm:"type:varchar(255)"`
	ErrorMessage *string   `gorm:"type:text"`
	CompletedAt  *time.Time
	CreatedAt    time.Time
	UpdatedAt    time.Time

	Worker Worker `gorm:"foreignKey:WorkerID"`
}
