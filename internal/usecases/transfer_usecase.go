package usecases

import (
	"context"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/volatiletech/null/v8"
	"go.uber.org/zap"

	"payroll-chain.backend/internal/config"
	"payroll-chain.backend/internal/domain/entities"
	domainerrors "payroll-chain.backend/internal/domain/errors"
	"payroll-chain.backend/internal/domain/repositories"
	"payroll-chain.backend/internal/infrastructure/blockchain"
	"payroll-chain.backend/internal/infrastructure/gateway"
	"payroll-chain.backend/internal/metrics"
	"payroll-chain.backend/pkg/logger"
	"payroll-chain.backend/pkg/utils"
)

// TransferGateway is the slice of the payments gateway used for burn and
// mint contract calls.
type TransferGateway interface {
	ExecuteContractCall(ctx context.Context, walletRef, chain, to, data, value string) (*gateway.ContractCallResult, error)
}

// AttestationAPI polls the attestation service for signed burn messages.
type AttestationAPI interface {
	GetAttestation(ctx context.Context, messageHash string) (*gateway.Attestation, bool, error)
}

// TransferUsecase drives burn/attest/mint USDC moves between chains.
type TransferUsecase struct {
	transferRepo  repositories.TransferRepository
	workerRepo    repositories.WorkerRepository
	auditRepo     repositories.AuditLogRepository
	gateway       TransferGateway
	attestation   AttestationAPI
	clientFactory *blockchain.ClientFactory
	cfg           config.AttestationConfig
}

// NewTransferUsecase creates a new transfer usecase
func NewTransferUsecase(
	transferRepo repositories.TransferRepository,
	workerRepo repositories.WorkerRepository,
	auditRepo repositories.AuditLogRepository,
	gw TransferGateway,
	attestation AttestationAPI,
	clientFactory *blockchain.ClientFactory,
	cfg config.AttestationConfig,
) *TransferUsecase {
	return &TransferUsecase{
		transferRepo:  transferRepo,
		workerRepo:    workerRepo,
		auditRepo:     auditRepo,
		gateway:       gw,
		attestation:   attestation,
		clientFactory: clientFactory,
		cfg:           cfg,
	}
}

// InitiateTransfer burns USDC on the source chain and records a PENDING
// transfer keyed by the burn message hash. The source balance is checked
// before any on-chain action. A background monitor polls for the
// attestation and completes the mint.
func (u *TransferUsecase) InitiateTransfer(ctx context.Context, workerID uuid.UUID, input entities.InitiateTransferInput) (*entities.CrossChainTransfer, error) {
	if input.SourceChain == input.DestChain {
		return nil, fmt.Errorf("%w: source and destination chain must differ", domainerrors.ErrInvalidInput)
	}
	sourceCfg, err := u.clientFactory.ChainConfig(input.SourceChain)
	if err != nil {
		return nil, err
	}
	destCfg, err := u.clientFactory.ChainConfig(input.DestChain)
	if err != nil {
		return nil, err
	}

	worker, err := u.workerRepo.GetByID(ctx, workerID)
	if err != nil {
		return nil, err
	}
	if !worker.HasWallet() {
		return nil, fmt.Errorf("%w: worker has no wallet", domainerrors.ErrNoPaymentMethod)
	}

	amount, err := ParseAmount(input.Amount)
	if err != nil {
		return nil, err
	}
	minorUnits := ToMinorUnits(amount)

	client, err := u.clientFactory.GetClient(input.SourceChain)
	if err != nil {
		return nil, err
	}
	balance, err := client.GetTokenBalance(ctx, sourceCfg.USDCAddress, worker.WalletAddress.String)
	if err != nil {
		return nil, fmt.Errorf("balance check failed: %w", err)
	}
	if balance.Cmp(minorUnits) < 0 {
		return nil, fmt.Errorf("%w: have %s USDC on %s, need %s",
			domainerrors.ErrInsufficientBalance,
			FormatAmount(FromMinorUnits(balance)), input.SourceChain, input.Amount)
	}

	// Approve the messenger, then burn toward the destination domain.
	// Both calls go through the worker's managed wallet.
	approveData := blockchain.EncodeApprove(sourceCfg.TokenMessenger, minorUnits)
	if _, err := u.gateway.ExecuteContractCall(ctx, worker.WalletRef.String, input.SourceChain, sourceCfg.USDCAddress, approveData, "0"); err != nil {
		return nil, fmt.Errorf("approve failed: %w", err)
	}

	burnData := blockchain.EncodeDepositForBurn(minorUnits, destCfg.DomainID, input.RecipientAddress, sourceCfg.USDCAddress)
	burnResult, err := u.gateway.ExecuteContractCall(ctx, worker.WalletRef.String, input.SourceChain, sourceCfg.TokenMessenger, burnData, "0")
	if err != nil {
		return nil, fmt.Errorf("burn failed: %w", err)
	}

	transfer := &entities.CrossChainTransfer{
		ID:            utils.GenerateUUIDv7(),
		WorkerID:      workerID,
		SourceChain:   input.SourceChain,
		DestChain:     input.DestChain,
		Amount:        FormatAmount(amount),
		SourceAddress: worker.WalletAddress.String,
		DestAddress:   input.RecipientAddress,
		MessageHash:   null.StringFrom(burnResult.MessageHash),
		Status:        entities.TransferStatusPending,
		BurnTxHash:    null.StringFrom(burnResult.TxHash),
	}
	if err := u.transferRepo.Create(ctx, transfer); err != nil {
		return nil, err
	}

	if err := u.auditRepo.Create(ctx, &entities.AuditLog{
		ID:        utils.GenerateUUIDv7(),
		EventType: entities.AuditEventTransferInitiated,
		WorkerID:  &workerID,
		Payload: fmt.Sprintf(`{"transferId":%q,"sourceChain":%q,"destChain":%q,"amount":%q}`,
			transfer.ID.String(), input.SourceChain, input.DestChain, transfer.Amount),
	}); err != nil {
		logger.Error(ctx, "failed to write transfer audit row", zap.Error(err))
	}

	go u.monitorTransfer(context.WithoutCancel(ctx), transfer.ID)

	return transfer, nil
}

// monitorTransfer polls the attestation service for one transfer until the
// attestation is ready, then mints on the destination chain. On exhausting
// the attempt budget the transfer stays PENDING with the timeout recorded,
// so a later run can pick it up again.
func (u *TransferUsecase) monitorTransfer(ctx context.Context, transferID uuid.UUID) {
	transfer, err := u.transferRepo.GetByID(ctx, transferID)
	if err != nil {
		logger.Error(ctx, "monitor: transfer lookup failed",
			zap.String("transfer_id", transferID.String()),
			zap.Error(err))
		return
	}

	ticker := time.NewTicker(u.cfg.PollInterval)
	defer ticker.Stop()

	for attempt := 1; attempt <= u.cfg.MaxAttempts; attempt++ {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		att, ready, err := u.attestation.GetAttestation(ctx, transfer.MessageHash.String)
		if err != nil {
			logger.Warn(ctx, "attestation poll failed",
				zap.String("transfer_id", transferID.String()),
				zap.Int("attempt", attempt),
				zap.Error(err))
			continue
		}
		if !ready {
			continue
		}

		transfer.Status = entities.TransferStatusAttested
		transfer.Attestation = null.StringFrom(att.Attestation)
		if err := u.transferRepo.Update(ctx, transfer); err != nil {
			logger.Error(ctx, "failed to persist attested state",
				zap.String("transfer_id", transferID.String()),
				zap.Error(err))
			return
		}

		if err := u.CompleteTransfer(ctx, transfer, att); err != nil {
			transfer.Status = entities.TransferStatusFailed
			transfer.ErrorMessage = null.StringFrom(err.Error())
			if updErr := u.transferRepo.Update(ctx, transfer); updErr != nil {
				logger.Error(ctx, "failed to persist transfer failure",
					zap.String("transfer_id", transferID.String()),
					zap.Error(updErr))
			}
		}
		return
	}

	metrics.PollTimeouts.WithLabelValues("attestation").Inc()
	transfer.ErrorMessage = null.StringFrom(domainerrors.ErrAttestationTimeout.Error())
	if err := u.transferRepo.Update(ctx, transfer); err != nil {
		logger.Error(ctx, "failed to record attestation timeout",
			zap.String("transfer_id", transferID.String()),
			zap.Error(err))
	}
	logger.Warn(ctx, "attestation polling exhausted",
		zap.String("transfer_id", transferID.String()),
		zap.Int("attempts", u.cfg.MaxAttempts))
}

// CompleteTransfer delivers the attested message on the destination chain.
// A message the destination contract has already consumed counts as
// success, which makes completion idempotent under retries.
func (u *TransferUsecase) CompleteTransfer(ctx context.Context, transfer *entities.CrossChainTransfer, att *gateway.Attestation) error {
	destCfg, err := u.clientFactory.ChainConfig(transfer.DestChain)
	if err != nil {
		return err
	}

	// Advisory check. The transmitter's replay protection is authoritative.
	used, err := u.IsMessageUsed(ctx, transfer.DestChain, transfer.MessageHash.String)
	if err != nil {
		logger.Warn(ctx, "message-used check failed",
			zap.String("transfer_id", transfer.ID.String()),
			zap.Error(err))
	}

	var mintTxHash string
	if !used {
		message, err := decodeHex(att.Message)
		if err != nil {
			return fmt.Errorf("invalid attested message: %w", err)
		}
		// The attested message must hash back to the burn message hash the
		// transfer was keyed on; anything else never reaches the transmitter.
		if got := blockchain.MessageHash(message); !strings.EqualFold(got, transfer.MessageHash.String) {
			return fmt.Errorf("attested message hashes to %s, transfer expects %s", got, transfer.MessageHash.String)
		}
		signature, err := decodeHex(att.Attestation)
		if err != nil {
			return fmt.Errorf("invalid attestation: %w", err)
		}

		worker, err := u.workerRepo.GetByID(ctx, transfer.WorkerID)
		if err != nil {
			return err
		}

		mintData := blockchain.EncodeReceiveMessage(message, signature)
		result, err := u.gateway.ExecuteContractCall(ctx, worker.WalletRef.String, transfer.DestChain, destCfg.MessageTransmitter, mintData, "0")
		if err != nil {
			if isAlreadyUsedError(err) {
				logger.Info(ctx, "mint raced a prior delivery, treating as complete",
					zap.String("transfer_id", transfer.ID.String()))
			} else {
				return fmt.Errorf("mint failed: %w", err)
			}
		} else {
			mintTxHash = result.TxHash
		}
	}

	if !CanTransitionTransfer(transfer.Status, entities.TransferStatusCompleted) {
		return nil
	}
	now := time.Now().UTC()
	transfer.Status = entities.TransferStatusCompleted
	if mintTxHash != "" {
		transfer.MintTxHash = null.StringFrom(mintTxHash)
	}
	transfer.CompletedAt = &now
	if err := u.transferRepo.Update(ctx, transfer); err != nil {
		return err
	}
	metrics.TransfersCompleted.Inc()
	logger.Info(ctx, "cross-chain transfer completed",
		zap.String("transfer_id", transfer.ID.String()),
		zap.String("mint_tx_hash", mintTxHash))
	return nil
}

// GetAttestation exposes a one-shot attestation lookup by message hash.
func (u *TransferUsecase) GetAttestation(ctx context.Context, messageHash string) (*gateway.Attestation, bool, error) {
	return u.attestation.GetAttestation(ctx, messageHash)
}

// IsMessageUsed reads the destination transmitter's replay slot for a
// message hash.
func (u *TransferUsecase) IsMessageUsed(ctx context.Context, chain, messageHash string) (bool, error) {
	cfg, err := u.clientFactory.ChainConfig(chain)
	if err != nil {
		return false, err
	}
	client, err := u.clientFactory.GetClient(chain)
	if err != nil {
		return false, err
	}
	return client.IsMessageUsed(ctx, cfg.MessageTransmitter, messageHash)
}

// ListTransfers returns a worker's transfers, newest first.
func (u *TransferUsecase) ListTransfers(ctx context.Context, workerID uuid.UUID, page, limit int) ([]*entities.CrossChainTransfer, utils.PaginationMeta, error) {
	params := utils.GetPaginationParams(page, limit)
	transfers, total, err := u.transferRepo.GetByWorkerID(ctx, workerID, params.Limit, params.CalculateOffset())
	if err != nil {
		return nil, utils.PaginationMeta{}, err
	}
	return transfers, utils.CalculateMeta(int64(total), params.Page, params.Limit), nil
}

func decodeHex(s string) ([]byte, error) {
	return hex.DecodeString(strings.TrimPrefix(s, "0x"))
}

func isAlreadyUsedError(err error) bool {
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "already used") || strings.Contains(msg, "nonce already used")
}
