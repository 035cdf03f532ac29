package usecases

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/volatiletech/null/v8"
	"go.uber.org/zap"

	"payroll-chain.backend/internal/domain/entities"
	domainerrors "payroll-chain.backend/internal/domain/errors"
	"payroll-chain.backend/internal/domain/repositories"
	"payroll-chain.backend/internal/infrastructure/blockchain"
	"payroll-chain.backend/internal/infrastructure/gateway"
	"payroll-chain.backend/internal/metrics"
	"payroll-chain.backend/pkg/logger"
	"payroll-chain.backend/pkg/utils"
)

// PayrollGateway is the slice of the payments gateway the run engine uses.
type PayrollGateway interface {
	CreateRecipient(ctx context.Context, name, email string) (*gateway.Recipient, error)
	CreateWallet(ctx context.Context, externalRef string) (*gateway.Wallet, error)
	CreatePayout(ctx context.Context, recipientRef, amount, chain string) (*gateway.Payout, error)
}

// GasSponsor dispatches sponsored operations on behalf of the run engine.
type GasSponsor interface {
	SponsorTransaction(ctx context.Context, workerID uuid.UUID, walletRef string, input entities.SponsorTransactionInput) (*entities.GasStationTransaction, error)
}

// PayrollUsecase drives the payroll run state machine.
type PayrollUsecase struct {
	workerRepo    repositories.WorkerRepository
	runRepo       repositories.PayrollRunRepository
	itemRepo      repositories.PayrollItemRepository
	auditRepo     repositories.AuditLogRepository
	uow           repositories.UnitOfWork
	gateway       PayrollGateway
	sponsor       GasSponsor
	clientFactory *blockchain.ClientFactory
	chains        []string
	treasuryRef   string
}

// NewPayrollUsecase creates a new payroll usecase
func NewPayrollUsecase(
	workerRepo repositories.WorkerRepository,
	runRepo repositories.PayrollRunRepository,
	itemRepo repositories.PayrollItemRepository,
	auditRepo repositories.AuditLogRepository,
	uow repositories.UnitOfWork,
	gw PayrollGateway,
	sponsor GasSponsor,
	clientFactory *blockchain.ClientFactory,
	chains []string,
	treasuryRef string,
) *PayrollUsecase {
	return &PayrollUsecase{
		workerRepo:    workerRepo,
		runRepo:       runRepo,
		itemRepo:      itemRepo,
		auditRepo:     auditRepo,
		uow:           uow,
		gateway:       gw,
		sponsor:       sponsor,
		clientFactory: clientFactory,
		chains:        chains,
		treasuryRef:   treasuryRef,
	}
}

// SupportedChains returns the chain names usable in uploaded batches.
func (u *PayrollUsecase) SupportedChains() []string {
	return u.chains
}

// CreateRun validates worker rows, upserts workers, and creates a run with
// one PENDING item per row. Row, item and audit writes happen inside one
// transaction. Gateway provisioning for new workers is attempted after
// commit, best-effort: a failure leaves the worker degraded and the
// provisioning job retries later.
func (u *PayrollUsecase) CreateRun(ctx context.Context, adminID uuid.UUID, rows []entities.WorkerRow) (*entities.PayrollRun, error) {
	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: at least one worker row is required", domainerrors.ErrInvalidInput)
	}

	chainSet := make(map[string]bool, len(u.chains))
	for _, c := range u.chains {
		chainSet[c] = true
	}
	for i, row := range rows {
		if _, err := ParseAmount(row.Amount); err != nil {
			return nil, fmt.Errorf("%w: row %d: invalid amount %q", domainerrors.ErrInvalidInput, i+1, row.Amount)
		}
		if !chainSet[row.Chain] {
			return nil, fmt.Errorf("%w: row %d: unsupported chain %q", domainerrors.ErrInvalidInput, i+1, row.Chain)
		}
	}

	total, err := SumAmounts(amountsOf(rows))
	if err != nil {
		return nil, err
	}

	run := &entities.PayrollRun{
		ID:           utils.GenerateUUIDv7(),
		AdminID:      adminID,
		Status:       entities.RunStatusPending,
		TotalAmount:  FormatAmount(total),
		TotalWorkers: len(rows),
	}

	// Workers created in the transaction but not yet provisioned at the
	// gateway. Provisioning runs after commit.
	var newWorkers []*entities.Worker

	err = u.uow.Do(ctx, func(txCtx context.Context) error {
		if err := u.runRepo.Create(txCtx, run); err != nil {
			return err
		}
		if err := u.audit(txCtx, entities.AuditEventRunCreated, nil, &run.ID, nil, map[string]interface{}{
			"totalAmount":  run.TotalAmount,
			"totalWorkers": run.TotalWorkers,
		}); err != nil {
			return err
		}

		for _, row := range rows {
			worker, err := u.workerRepo.GetByEmail(txCtx, row.Email)
			if err != nil {
				if !errors.Is(err, domainerrors.ErrNotFound) {
					return err
				}
				worker = &entities.Worker{
					ID:    utils.GenerateUUIDv7(),
					Name:  row.Name,
					Email: row.Email,
				}
				if err := u.workerRepo.Create(txCtx, worker); err != nil {
					return err
				}
				newWorkers = append(newWorkers, worker)
			}

			item := &entities.PayrollItem{
				ID:       utils.GenerateUUIDv7(),
				RunID:    run.ID,
				WorkerID: worker.ID,
				Amount:   row.Amount,
				Chain:    row.Chain,
				Status:   entities.ItemStatusPending,
			}
			if err := u.itemRepo.Create(txCtx, item); err != nil {
				return err
			}
			if err := u.audit(txCtx, entities.AuditEventItemCreated, &worker.ID, &run.ID, &item.ID, map[string]interface{}{
				"amount": item.Amount,
				"chain":  item.Chain,
			}); err != nil {
				return err
			}
			run.Items = append(run.Items, item)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	for _, worker := range newWorkers {
		u.provisionWorker(ctx, worker)
	}

	return run, nil
}

// provisionWorker attempts to create the gateway recipient and wallet for a
// worker. Failures are logged only.
func (u *PayrollUsecase) provisionWorker(ctx context.Context, worker *entities.Worker) {
	if !worker.HasRecipient() {
		recipient, err := u.gateway.CreateRecipient(ctx, worker.Name, worker.Email)
		if err != nil {
			logger.Warn(ctx, "recipient provisioning failed",
				zap.String("worker_id", worker.ID.String()),
				zap.Error(err))
		} else if err := u.workerRepo.SetRecipientRef(ctx, worker.ID, recipient.ID); err != nil {
			logger.Error(ctx, "failed to persist recipient ref",
				zap.String("worker_id", worker.ID.String()),
				zap.Error(err))
		} else {
			worker.RecipientRef = null.StringFrom(recipient.ID)
		}
	}

	if !worker.HasWallet() {
		wallet, err := u.gateway.CreateWallet(ctx, "worker-"+worker.ID.String())
		if err != nil {
			logger.Warn(ctx, "wallet provisioning failed",
				zap.String("worker_id", worker.ID.String()),
				zap.Error(err))
			return
		}
		if err := u.workerRepo.SetWalletRef(ctx, worker.ID, wallet.ID, wallet.Address); err != nil {
			logger.Error(ctx, "failed to persist wallet ref",
				zap.String("worker_id", worker.ID.String()),
				zap.Error(err))
			return
		}
		worker.WalletRef = null.StringFrom(wallet.ID)
		worker.WalletAddress = null.StringFrom(wallet.Address)
	}

	if worker.HasRecipient() && worker.HasWallet() {
		_ = u.audit(ctx, entities.AuditEventWorkerProvisioned, &worker.ID, nil, nil, nil)
	}
}

// ExecuteRun flips a PENDING run to PROCESSING and dispatches its items in
// the background. The caller gets an immediate acknowledgment; final status
// arrives via polling or webhooks.
func (u *PayrollUsecase) ExecuteRun(ctx context.Context, runID uuid.UUID) error {
	run, err := u.runRepo.GetByID(ctx, runID)
	if err != nil {
		return err
	}
	if !CanTransitionRun(run.Status, entities.RunStatusProcessing) {
		return fmt.Errorf("%w: run is %s, expected %s", domainerrors.ErrInvalidState, run.Status, entities.RunStatusPending)
	}

	// The claim is conditional on the status read above, so two racing
	// execute calls cannot both take the run.
	if err := u.runRepo.UpdateStatusFrom(ctx, runID, run.Status, entities.RunStatusProcessing); err != nil {
		if errors.Is(err, domainerrors.ErrInvalidState) {
			return fmt.Errorf("%w: run already claimed for execution", domainerrors.ErrInvalidState)
		}
		return err
	}

	go u.processRun(context.WithoutCancel(ctx), runID)
	return nil
}

// processRun dispatches every item of a run sequentially. Sequential
// dispatch keeps a single writer per item and spaces gateway calls under
// the provider's rate ceiling.
func (u *PayrollUsecase) processRun(ctx context.Context, runID uuid.UUID) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error(ctx, "panic during run execution",
				zap.String("run_id", runID.String()),
				zap.Any("panic", r))
			_ = u.runRepo.MarkFinished(ctx, runID, entities.RunStatusFailed, time.Now().UTC())
		}
	}()

	items, err := u.itemRepo.GetByRunID(ctx, runID)
	if err != nil {
		logger.Error(ctx, "failed to load run items",
			zap.String("run_id", runID.String()),
			zap.Error(err))
		_ = u.runRepo.MarkFinished(ctx, runID, entities.RunStatusFailed, time.Now().UTC())
		return
	}

	succeeded := 0
	for _, item := range items {
		if item.Status != entities.ItemStatusPending {
			// Already dispatched by a previous attempt.
			if item.Status == entities.ItemStatusSubmitted || item.Status == entities.ItemStatusCompleted {
				succeeded++
			}
			continue
		}
		if u.dispatchItem(ctx, item) {
			succeeded++
		}
	}

	status := entities.RunStatusCompleted
	if succeeded == 0 {
		status = entities.RunStatusFailed
	}
	if err := u.runRepo.MarkFinished(ctx, runID, status, time.Now().UTC()); err != nil {
		logger.Error(ctx, "failed to finalize run",
			zap.String("run_id", runID.String()),
			zap.Error(err))
		return
	}

	logger.Info(ctx, "payroll run finished",
		zap.String("run_id", runID.String()),
		zap.String("status", string(status)),
		zap.Int("succeeded", succeeded),
		zap.Int("total", len(items)))
}

// dispatchItem pays one item through exactly one path, chosen by worker
// capability. Returns true when the item reached SUBMITTED or COMPLETED.
// Failures are recorded on the item and never abort sibling items.
func (u *PayrollUsecase) dispatchItem(ctx context.Context, item *entities.PayrollItem) (ok bool) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error(ctx, "panic dispatching payroll item",
				zap.String("item_id", item.ID.String()),
				zap.Any("panic", r))
			u.failItem(ctx, item, fmt.Sprintf("dispatch panic: %v", r))
			ok = false
		}
	}()

	if err := u.itemRepo.UpdateStatus(ctx, item.ID, entities.ItemStatusProcessing); err != nil {
		logger.Error(ctx, "failed to mark item processing",
			zap.String("item_id", item.ID.String()),
			zap.Error(err))
		return false
	}
	item.Status = entities.ItemStatusProcessing

	worker, err := u.workerRepo.GetByID(ctx, item.WorkerID)
	if err != nil {
		u.failItem(ctx, item, "worker lookup failed: "+err.Error())
		return false
	}

	switch {
	case worker.HasWallet():
		return u.dispatchWalletPath(ctx, item, worker)
	case worker.HasRecipient():
		return u.dispatchPayoutPath(ctx, item, worker)
	default:
		metrics.ItemDispatches.WithLabelValues("none", "failed").Inc()
		u.failItem(ctx, item, domainerrors.ErrNoPaymentMethod.Error())
		return false
	}
}

// dispatchWalletPath pays the item with a sponsored USDC transfer from the
// treasury wallet to the worker's own wallet.
func (u *PayrollUsecase) dispatchWalletPath(ctx context.Context, item *entities.PayrollItem, worker *entities.Worker) bool {
	chainCfg, err := u.clientFactory.ChainConfig(item.Chain)
	if err != nil {
		metrics.ItemDispatches.WithLabelValues("wallet", "failed").Inc()
		u.failItem(ctx, item, err.Error())
		return false
	}

	amount, err := ParseAmount(item.Amount)
	if err != nil {
		metrics.ItemDispatches.WithLabelValues("wallet", "failed").Inc()
		u.failItem(ctx, item, err.Error())
		return false
	}

	op, err := u.sponsor.SponsorTransaction(ctx, worker.ID, u.treasuryRef, entities.SponsorTransactionInput{
		Chain: item.Chain,
		Call: entities.ContractCall{
			To:    chainCfg.USDCAddress,
			Data:  blockchain.EncodeTransfer(worker.WalletAddress.String, ToMinorUnits(amount)),
			Value: "0",
		},
	})
	if err != nil {
		metrics.ItemDispatches.WithLabelValues("wallet", "failed").Inc()
		u.failItem(ctx, item, "sponsored transfer failed: "+err.Error())
		return false
	}

	now := time.Now().UTC()
	item.Status = entities.ItemStatusCompleted
	item.TxHash = null.StringFrom(op.OperationHash)
	item.CompletedAt = &now
	if err := u.itemRepo.Update(ctx, item); err != nil {
		logger.Error(ctx, "failed to record wallet-path completion",
			zap.String("item_id", item.ID.String()),
			zap.Error(err))
		return false
	}
	metrics.ItemDispatches.WithLabelValues("wallet", "completed").Inc()
	_ = u.audit(ctx, entities.AuditEventItemStatusChanged, &worker.ID, &item.RunID, &item.ID, map[string]interface{}{
		"status": string(item.Status),
		"path":   "wallet",
	})
	return true
}

// dispatchPayoutPath requests a custodial payout. Completion is
// provisional: the terminal webhook carries the authoritative tx hash.
func (u *PayrollUsecase) dispatchPayoutPath(ctx context.Context, item *entities.PayrollItem, worker *entities.Worker) bool {
	payout, err := u.gateway.CreatePayout(ctx, worker.RecipientRef.String, item.Amount, item.Chain)
	if err != nil {
		metrics.ItemDispatches.WithLabelValues("payout", "failed").Inc()
		u.failItem(ctx, item, "payout request failed: "+err.Error())
		return false
	}

	item.Status = entities.ItemStatusSubmitted
	item.PayoutID = null.StringFrom(payout.ID)
	if err := u.itemRepo.Update(ctx, item); err != nil {
		logger.Error(ctx, "failed to record payout submission",
			zap.String("item_id", item.ID.String()),
			zap.Error(err))
		return false
	}
	metrics.ItemDispatches.WithLabelValues("payout", "submitted").Inc()
	_ = u.audit(ctx, entities.AuditEventItemStatusChanged, &worker.ID, &item.RunID, &item.ID, map[string]interface{}{
		"status":   string(item.Status),
		"path":     "payout",
		"payoutId": payout.ID,
	})
	return true
}

func (u *PayrollUsecase) failItem(ctx context.Context, item *entities.PayrollItem, reason string) {
	item.Status = entities.ItemStatusFailed
	item.ErrorMessage = null.StringFrom(reason)
	if err := u.itemRepo.Update(ctx, item); err != nil {
		logger.Error(ctx, "failed to record item failure",
			zap.String("item_id", item.ID.String()),
			zap.Error(err))
		return
	}
	_ = u.audit(ctx, entities.AuditEventItemStatusChanged, &item.WorkerID, &item.RunID, &item.ID, map[string]interface{}{
		"status": string(entities.ItemStatusFailed),
		"error":  reason,
	})
}

// GetRun returns a run with its items.
func (u *PayrollUsecase) GetRun(ctx context.Context, runID uuid.UUID) (*entities.PayrollRun, error) {
	return u.runRepo.GetByIDWithItems(ctx, runID)
}

// ListRuns returns an admin's runs, newest first.
func (u *PayrollUsecase) ListRuns(ctx context.Context, adminID uuid.UUID, page, limit int) ([]*entities.PayrollRun, utils.PaginationMeta, error) {
	params := utils.GetPaginationParams(page, limit)
	runs, total, err := u.runRepo.ListByAdmin(ctx, adminID, params.Limit, params.CalculateOffset())
	if err != nil {
		return nil, utils.PaginationMeta{}, err
	}
	return runs, utils.CalculateMeta(int64(total), params.Page, params.Limit), nil
}

func (u *PayrollUsecase) audit(ctx context.Context, event entities.AuditEventType, workerID, runID, itemID *uuid.UUID, payload map[string]interface{}) error {
	body := "{}"
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return err
		}
		body = string(data)
	}
	return u.auditRepo.Create(ctx, &entities.AuditLog{
		ID:        utils.GenerateUUIDv7(),
		EventType: event,
		WorkerID:  workerID,
		RunID:     runID,
		ItemID:    itemID,
		Payload:   body,
	})
}
