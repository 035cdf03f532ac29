package models

import (
	"time"

	"github.com/google/uuid"
)

type GasStationTransaction struct {
	ID            uuid.UUID `gorm:"type:uuid;primaryKey;default:uuid_generate_v4()"`
	WorkerID      uuid.UUID `gorm:"type:uuid;not null;index"`
	WalletRef     string    `gorm:"type:varchar(255);not null"`
	Chain         string    `gorm:"type:varchar(50);not null"`
	OperationHash string    `gorm:"type:varchar(255);not null;uniqueIndex"`
	PolicyID      string    `gorm:"type:varchar(255)"`
	Status        string    `gorm:"type:varchar(50);not null;index"`
	TxHash        *string   `gorm:"type:varchar(255)"`
	ErrorMessage  *string   `gorm:"type:text"`
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

type PaymasterOperation struct {
	ID            uuid.UUID `gorm:"type:uuid;primaryKey;default:uuid_generate_v4()"`
	WorkerID      uuid.UUID `gorm:"type:uuid;not null;index"`
	WalletRef     string    `gorm:"type:varchar(255);not null"`
	Chain         string    `gorm:"type:varchar(50);not null"`
	OperationHash string    `gorm:"type:varchar(255);not null;uniqueIndex"`
	FeeUSDC       string    `gorm:"type:decimal(20,6);not null"`
	MaxFeeUSDC    string    `gorm:"type:decimal(20,6);not null"`
	Status        string    `gorm:"type:varchar(50);not null;index"`
	TxHash        *string   `gorm:"type:varchar(255)"`
	ErrorMessage  *string   `gorm:"type:text"`
	CreatedAt     time.Time
	UpdatedAt     time.Time
}
