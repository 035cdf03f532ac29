package entities

import (
	"time"

	"github.com/google/uuid"
	"github.com/volatiletech/null/v8"
)

// Worker represents a payroll recipient. A worker may hold a custodial
// recipient reference, a programmable wallet reference, both, or neither
// (degraded, provisioning retried in the background).
type Worker struct {
	ID            uuid.UUID   `json:"id"`
	Name          string      `json:"name"`
	Email         string      `json:"email"`
	RecipientRef  null.String `json:"recipientRef,omitempty"`
	WalletRef     null.String `json:"walletRef,omitempty"`
	WalletAddress null.String `json:"walletAddress,omitempty"`
	CreatedAt     time.Time   `json:"createdAt"`
	UpdatedAt     time.Time   `json:"updatedAt"`
}

// HasWallet reports whether the worker can receive gasless wallet transfers.
func (w *Worker) HasWallet() bool {
	return w.WalletRef.Valid && w.WalletRef.String != ""
}

// HasRecipient reports whether the worker can receive custodial payouts.
func (w *Worker) HasRecipient() bool {
	return w.RecipientRef.Valid && w.RecipientRef.String != ""
}

// ChainBalance is one chain's USDC balance for a worker wallet,
// denominated in display units.
type ChainBalance struct {
	Chain  string `json:"chain"`
	Amount string `json:"amount"`
}

// WorkerBalances aggregates per-chain balances for a worker.
type WorkerBalances struct {
	WorkerID uuid.UUID      `json:"workerId"`
	Balances []ChainBalance `json:"balances"`
	Total    string         `json:"total"`
}
