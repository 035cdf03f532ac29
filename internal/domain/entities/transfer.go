package entities

import (
	"time"

	"github.com/google/uuid"
	"github.com/volatiletech/null/v8"
)

// TransferStatus represents cross-chain transfer status
type TransferStatus string

const (
	TransferStatusPending   TransferStatus = "PENDING"
	TransferStatusAttested  TransferStatus = "ATTESTED"
	TransferStatusCompleted TransferStatus = "COMPLETED"
	TransferStatusFailed    TransferStatus = "FAILED"
)

// CrossChainTransfer represents a worker-initiated burn/mint USDC move
// between chains. MessageHash is the correlation key joining the burn event
// to its attestation and the destination mint; it is unique once assigned.
type CrossChainTransfer struct {
	ID            uuid.UUID      `json:"id"`
	WorkerID      uuid.UUID      `json:"workerId"`
	SourceChain   string         `json:"sourceChain"`
	DestChain     string         `json:"destChain"`
	Amount        string         `json:"amount"`
	SourceAddress string         `json:"sourceAddress"`
	DestAddress   string         `json:"destAddress"`
	MessageHash   null.String    `json:"messageHash,omitempty"`
	Attestation   null.String    `json:"-"`
	Status        TransferStatus `json:"status"`
	BurnTxHash    null.String    `json:"burnTxHash,omitempty"`
	MintTxHash    null.String    `json:"mintTxHash,omitempty"`
	ErrorMessage  null.String    `json:"errorMessage,omitempty"`
	CompletedAt   *time.Time     `json:"completedAt,omitempty"`
	CreatedAt     time.Time      `json:"createdAt"`
	UpdatedAt     time.Time      `json:"updatedAt"`
}

// InitiateTransferInput represents input for initiating a cross-chain transfer
type InitiateTransferInput struct {
	SourceChain      string `json:"sourceChain" binding:"required"`
	DestChain        string `json:"destChain" binding:"required"`
	Amount           string `json:"amount" binding:"required"`
	RecipientAddress string `json:"recipientAddress" binding:"required"`
}
