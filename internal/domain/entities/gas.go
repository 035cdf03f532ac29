package entities

import (
	"time"

	"github.com/google/uuid"
	"github.com/volatiletech/null/v8"
)

// OperationStatus mirrors the lifecycle of a fee-abstracted meta-transaction.
type OperationStatus string

const (
	OperationStatusPending   OperationStatus = "PENDING"
	OperationStatusCompleted OperationStatus = "COMPLETED"
	OperationStatusFailed    OperationStatus = "FAILED"
)

// ContractCall is the {to, data, value} triple submitted through the
// gateway's wallet execution endpoints.
type ContractCall struct {
	To    string `json:"to" binding:"required"`
	Data  string `json:"data"`
	Value string `json:"value"`
}

// GasStationTransaction records a policy-sponsored (zero fee) operation,
// keyed uniquely by the provider-issued operation hash.
type GasStationTransaction struct {
	ID            uuid.UUID       `json:"id"`
	WorkerID      uuid.UUID       `json:"workerId"`
	WalletRef     string          `json:"walletRef"`
	Chain         string          `json:"chain"`
	OperationHash string          `json:"operationHash"`
	PolicyID      string          `json:"policyId"`
	Status        OperationStatus `json:"status"`
	TxHash        null.String     `json:"txHash,omitempty"`
	ErrorMessage  null.String     `json:"errorMessage,omitempty"`
	CreatedAt     time.Time       `json:"createdAt"`
	UpdatedAt     time.Time       `json:"updatedAt"`
}

// PaymasterOperation records a USDC-denominated fee operation. FeeUSDC is
// the computed fee (display units) the permit authorizes the fee sponsor to
// pull. Unique on OperationHash.
type PaymasterOperation struct {
	ID            uuid.UUID       `json:"id"`
	WorkerID      uuid.UUID       `json:"workerId"`
	WalletRef     string          `json:"walletRef"`
	Chain         string          `json:"chain"`
	OperationHash string          `json:"operationHash"`
	FeeUSDC       string          `json:"feeUsdc"`
	MaxFeeUSDC    string          `json:"maxFeeUsdc"`
	Status        OperationStatus `json:"status"`
	TxHash        null.String     `json:"txHash,omitempty"`
	ErrorMessage  null.String     `json:"errorMessage,omitempty"`
	CreatedAt     time.Time       `json:"createdAt"`
	UpdatedAt     time.Time       `json:"updatedAt"`
}

// SponsorTransactionInput represents input for a sponsored (gasless) operation
type SponsorTransactionInput struct {
	Chain    string       `json:"chain" binding:"required"`
	Call     ContractCall `json:"call" binding:"required"`
	PolicyID string       `json:"policyId"`
}

// FeeAbstractedInput represents input for a USDC-fee operation
type FeeAbstractedInput struct {
	Chain      string       `json:"chain" binding:"required"`
	Call       ContractCall `json:"call" binding:"required"`
	MaxFeeUSDC string       `json:"maxFeeUsdc" binding:"required"`
}

// FeeAbstractedResult is returned to the caller for display.
type FeeAbstractedResult struct {
	OperationHash string `json:"operationHash"`
	FeeUSDC       string `json:"feeUsdc"`
}
