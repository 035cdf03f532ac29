package entities

import (
	"time"

	"github.com/google/uuid"
	"github.com/volatiletech/null/v8"
)

// RunStatus represents payroll run status
type RunStatus string

const (
	RunStatusDraft      RunStatus = "DRAFT"
	RunStatusPending    RunStatus = "PENDING"
	RunStatusProcessing RunStatus = "PROCESSING"
	RunStatusCompleted  RunStatus = "COMPLETED"
	RunStatusFailed     RunStatus = "FAILED"
)

// ItemStatus represents payroll item status
type ItemStatus string

const (
	ItemStatusPending    ItemStatus = "PENDING"
	ItemStatusProcessing ItemStatus = "PROCESSING"
	// ItemStatusSubmitted marks a custodial payout that was accepted by the
	// gateway but not yet confirmed; the webhook promotes it to COMPLETED
	// with the authoritative transaction hash.
	ItemStatusSubmitted ItemStatus = "SUBMITTED"
	ItemStatusCompleted ItemStatus = "COMPLETED"
	ItemStatusFailed    ItemStatus = "FAILED"
)

// PayrollRun represents a batch of worker payments submitted together.
// TotalAmount is a snapshot of the item sum at creation time and is never
// recomputed afterward.
type PayrollRun struct {
	ID           uuid.UUID  `json:"id"`
	AdminID      uuid.UUID  `json:"adminId"`
	Status       RunStatus  `json:"status"`
	TotalAmount  string     `json:"totalAmount"`
	TotalWorkers int        `json:"totalWorkers"`
	CompletedAt  *time.Time `json:"completedAt,omitempty"`
	CreatedAt    time.Time  `json:"createdAt"`
	UpdatedAt    time.Time  `json:"updatedAt"`

	Items []*PayrollItem `json:"items,omitempty"`
}

// PayrollItem represents one worker's payment within a run.
type PayrollItem struct {
	ID           uuid.UUID   `json:"id"`
	RunID        uuid.UUID   `json:"runId"`
	WorkerID     uuid.UUID   `json:"workerId"`
	Amount       string      `json:"amount"`
	Chain        string      `json:"chain"`
	Status       ItemStatus  `json:"status"`
	PayoutID     null.String `json:"payoutId,omitempty"`
	TxHash       null.String `json:"txHash,omitempty"`
	ErrorMessage null.String `json:"errorMessage,omitempty"`
	CompletedAt  *time.Time  `json:"completedAt,omitempty"`
	CreatedAt    time.Time   `json:"createdAt"`
	UpdatedAt    time.Time   `json:"updatedAt"`

	Worker *Worker `json:"worker,omitempty"`
}

// WorkerRow is one validated row from an uploaded payroll batch.
type WorkerRow struct {
	Name   string `json:"name" binding:"required"`
	Email  string `json:"email" binding:"required"`
	Amount string `json:"amount" binding:"required"`
	Chain  string `json:"chain" binding:"required"`
}

// CreateRunInput represents input for creating a payroll run
type CreateRunInput struct {
	Workers []WorkerRow `json:"workers" binding:"required"`
}

// BatchSummary summarizes a parsed CSV batch.
type BatchSummary struct {
	WorkerCount int      `json:"workerCount"`
	TotalAmount string   `json:"totalAmount"`
	Chains      []string `json:"chains"`
}
