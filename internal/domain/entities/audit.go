package entities

import (
	"time"

	"github.com/google/uuid"
)

// AuditEventType represents audit log event type
type AuditEventType string

const (
	AuditEventRunCreated         AuditEventType = "RUN_CREATED"
	AuditEventItemCreated        AuditEventType = "ITEM_CREATED"
	AuditEventItemStatusChanged  AuditEventType = "ITEM_STATUS_CHANGED"
	AuditEventPayoutStatusChange AuditEventType = "PAYOUT_STATUS_CHANGED"
	AuditEventTransferInitiated  AuditEventType = "TRANSFER_INITIATED"
	AuditEventWorkerProvisioned  AuditEventType = "WORKER_PROVISIONED"
)

// AuditLog is an append-only record of a domain event. Entity references are
// nullable and survive deletion of the referenced row.
type AuditLog struct {
	ID        uuid.UUID      `json:"id"`
	EventType AuditEventType `json:"eventType"`
	WorkerID  *uuid.UUID     `json:"workerId,omitempty"`
	RunID     *uuid.UUID     `json:"runId,omitempty"`
	ItemID    *uuid.UUID     `json:"itemId,omitempty"`
	Payload   string         `json:"payload,omitempty"`
	CreatedAt time.Time      `json:"createdAt"`
}
