package models

import (
	"time"

	"github.com/google/uuid"
)

type CrossChainTransfer struct {
	ID            uuid.UUID `gorm:"type:uuid;primaryKey;default:uuid_generate_v4()"`
	WorkerID      uuid.UUID `gorm:"type:uuid;not null;index"`
	SourceChain   string    `gorm:"type:varchar(50);not null"`
	DestChain     string    `gorm:"type:varchar(50);not null"`
	Amount        string    `gorm:"type:decimal(20,6);not null"`
	SourceAddress string    `gorm:"type:varchar(255);not null"`
	DestAddress   string    `gorm:"type:varchar(255);not null"`
	MessageHash   *string   `gorm:"type:varchar(255);uniqueIndex"`
	Attestation   *string   `gorm:"type:text"`
	Status        string    `gorm:"type:varchar(50);not null;index"`
	BurnTxHash    *string   `gorm:"type:varchar(255)"`
	MintTxHash    *string   `gorm:"type:varchar(255)"`
	ErrorMessage  *string   `gorm:"type:text"`
	CompletedAt   *time.Time
	CreatedAt     time.Time
	UpdatedAt     time.Time

	Worker Worker `gorm:"foreignKey:WorkerID"`
}
