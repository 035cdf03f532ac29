package usecases

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/volatiletech/null/v8"
	"go.uber.org/zap"

	"payroll-chain.backend/internal/domain/entities"
	domainerrors "payroll-chain.backend/internal/domain/errors"
	"payroll-chain.backend/internal/domain/repositories"
	"payroll-chain.backend/internal/metrics"
	"payroll-chain.backend/pkg/logger"
	"payroll-chain.backend/pkg/utils"
)

// Webhook event names per family.
const (
	EventPayoutCompleted   = "payout.completed"
	EventPayoutFailed      = "payout.failed"
	EventTransferCompleted = "transfer.completed"
	EventTransferFailed    = "transfer.failed"
	EventOperationComplete = "operation.completed"
	EventOperationFailed   = "operation.failed"
)

// PayoutEvent is a custodial payout status notification.
type PayoutEvent struct {
	Event        string `json:"event" binding:"required"`
	PayoutID     string `json:"payoutId" binding:"required"`
	TxHash       string `json:"txHash"`
	ErrorMessage string `json:"errorMessage"`
}

// TransferEvent is a cross-chain settlement notification keyed by the burn
// message hash.
type TransferEvent struct {
	Event        string `json:"event" binding:"required"`
	MessageHash  string `json:"messageHash" binding:"required"`
	TxHash       string `json:"txHash"`
	ErrorMessage string `json:"errorMessage"`
}

// OperationEvent is a sponsored or fee-abstracted operation notification.
type OperationEvent struct {
	Event         string `json:"event" binding:"required"`
	OperationHash string `json:"operationHash" binding:"required"`
	TxHash        string `json:"txHash"`
	ErrorMessage  string `json:"errorMessage"`
}

// OperationRecorder applies terminal operation states idempotently.
type OperationRecorder interface {
	RecordOperationResult(ctx context.Context, operationHash string, status entities.OperationStatus, txHash, errorMessage string) error
}

// WebhookUsecase reconciles provider-reported terminal states into the
// ledger. All updates are idempotent and forward-only; a record the ledger
// does not know yet is acknowledged and logged, never erred, so the
// provider does not retry-storm.
type WebhookUsecase struct {
	itemRepo     repositories.PayrollItemRepository
	transferRepo repositories.TransferRepository
	auditRepo    repositories.AuditLogRepository
	recorder     OperationRecorder
}

// NewWebhookUsecase creates a new webhook usecase
func NewWebhookUsecase(
	itemRepo repositories.PayrollItemRepository,
	transferRepo repositories.TransferRepository,
	auditRepo repositories.AuditLogRepository,
	recorder OperationRecorder,
) *WebhookUsecase {
	return &WebhookUsecase{
		itemRepo:     itemRepo,
		transferRepo: transferRepo,
		auditRepo:    auditRepo,
		recorder:     recorder,
	}
}

// HandlePayoutEvent promotes or fails the payroll item carrying the payout
// id. Promotion overwrites the provisional submission with the
// authoritative transaction hash.
func (u *WebhookUsecase) HandlePayoutEvent(ctx context.Context, event PayoutEvent) error {
	var target entities.ItemStatus
	switch event.Event {
	case EventPayoutCompleted:
		target = entities.ItemStatusCompleted
	case EventPayoutFailed:
		target = entities.ItemStatusFailed
	default:
		metrics.WebhookEvents.WithLabelValues("payouts", "rejected").Inc()
		return fmt.Errorf("%w: unknown payout event %q", domainerrors.ErrInvalidInput, event.Event)
	}

	item, err := u.itemRepo.GetByPayoutID(ctx, event.PayoutID)
	if err != nil {
		if errors.Is(err, domainerrors.ErrNotFound) {
			metrics.WebhookEvents.WithLabelValues("payouts", "unmatched").Inc()
			logger.Warn(ctx, "payout webhook for unknown payout id",
				zap.String("payout_id", event.PayoutID))
			return nil
		}
		return err
	}

	if !CanTransitionItem(item.Status, target) {
		metrics.WebhookEvents.WithLabelValues("payouts", "stale").Inc()
		logger.Debug(ctx, "dropping stale payout webhook",
			zap.String("item_id", item.ID.String()),
			zap.String("current", string(item.Status)),
			zap.String("incoming", string(target)))
		return nil
	}

	item.Status = target
	if target == entities.ItemStatusCompleted {
		now := time.Now().UTC()
		item.CompletedAt = &now
		if event.TxHash != "" {
			item.TxHash = null.StringFrom(event.TxHash)
		}
	} else if event.ErrorMessage != "" {
		item.ErrorMessage = null.StringFrom(event.ErrorMessage)
	}
	if err := u.itemRepo.Update(ctx, item); err != nil {
		return err
	}

	metrics.WebhookEvents.WithLabelValues("payouts", "applied").Inc()
	if err := u.auditRepo.Create(ctx, &entities.AuditLog{
		ID:        utils.GenerateUUIDv7(),
		EventType: entities.AuditEventPayoutStatusChange,
		WorkerID:  &item.WorkerID,
		RunID:     &item.RunID,
		ItemID:    &item.ID,
		Payload:   fmt.Sprintf(`{"status":%q,"payoutId":%q}`, string(target), event.PayoutID),
	}); err != nil {
		logger.Error(ctx, "failed to write payout audit row", zap.Error(err))
	}
	return nil
}

// HandleTransferEvent reconciles a cross-chain transfer by message hash.
func (u *WebhookUsecase) HandleTransferEvent(ctx context.Context, event TransferEvent) error {
	var target entities.TransferStatus
	switch event.Event {
	case EventTransferCompleted:
		target = entities.TransferStatusCompleted
	case EventTransferFailed:
		target = entities.TransferStatusFailed
	default:
		metrics.WebhookEvents.WithLabelValues("transfers", "rejected").Inc()
		return fmt.Errorf("%w: unknown transfer event %q", domainerrors.ErrInvalidInput, event.Event)
	}

	transfer, err := u.transferRepo.GetByMessageHash(ctx, event.MessageHash)
	if err != nil {
		if errors.Is(err, domainerrors.ErrNotFound) {
			metrics.WebhookEvents.WithLabelValues("transfers", "unmatched").Inc()
			logger.Warn(ctx, "transfer webhook for unknown message hash",
				zap.String("message_hash", event.MessageHash))
			return nil
		}
		return err
	}

	// A completion for a still-PENDING transfer skips the ATTESTED step the
	// poller would normally record; the provider observed the full
	// settlement, so the transfer moves straight to COMPLETED.
	if transfer.Status == entities.TransferStatusPending && target == entities.TransferStatusCompleted {
		transfer.Status = entities.TransferStatusAttested
	}
	if !CanTransitionTransfer(transfer.Status, target) {
		metrics.WebhookEvents.WithLabelValues("transfers", "stale").Inc()
		return nil
	}

	transfer.Status = target
	if target == entities.TransferStatusCompleted {
		now := time.Now().UTC()
		transfer.CompletedAt = &now
		if event.TxHash != "" {
			transfer.MintTxHash = null.StringFrom(event.TxHash)
		}
		metrics.TransfersCompleted.Inc()
	} else if event.ErrorMessage != "" {
		transfer.ErrorMessage = null.StringFrom(event.ErrorMessage)
	}
	if err := u.transferRepo.Update(ctx, transfer); err != nil {
		return err
	}

	metrics.WebhookEvents.WithLabelValues("transfers", "applied").Inc()
	return nil
}

// HandleOperationEvent reconciles a gas-station or paymaster operation by
// its operation hash. family is "gas" or "paymaster", used for metrics only;
// the operation hash is unique across both tables.
func (u *WebhookUsecase) HandleOperationEvent(ctx context.Context, family string, event OperationEvent) error {
	var target entities.OperationStatus
	switch event.Event {
	case EventOperationComplete:
		target = entities.OperationStatusCompleted
	case EventOperationFailed:
		target = entities.OperationStatusFailed
	default:
		metrics.WebhookEvents.WithLabelValues(family, "rejected").Inc()
		return fmt.Errorf("%w: unknown operation event %q", domainerrors.ErrInvalidInput, event.Event)
	}

	err := u.recorder.RecordOperationResult(ctx, event.OperationHash, target, event.TxHash, event.ErrorMessage)
	if err != nil {
		if errors.Is(err, domainerrors.ErrNotFound) {
			metrics.WebhookEvents.WithLabelValues(family, "unmatched").Inc()
			logger.Warn(ctx, "operation webhook for unknown operation hash",
				zap.String("operation_hash", event.OperationHash))
			return nil
		}
		return err
	}

	metrics.WebhookEvents.WithLabelValues(family, "applied").Inc()
	return nil
}
