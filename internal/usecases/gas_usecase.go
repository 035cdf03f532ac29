package usecases

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/volatiletech/null/v8"
	"go.uber.org/zap"

	"payroll-chain.backend/internal/config"
	"payroll-chain.backend/internal/domain/entities"
	domainerrors "payroll-chain.backend/internal/domain/errors"
	"payroll-chain.backend/internal/domain/repositories"
	"payroll-chain.backend/internal/infrastructure/gateway"
	"payroll-chain.backend/internal/metrics"
	"payroll-chain.backend/pkg/logger"
	"payroll-chain.backend/pkg/utils"
)

const nativeTokenDecimals = 18

// GasGateway is the slice of the payments gateway used for sponsored and
// fee-abstracted operations.
type GasGateway interface {
	SponsorUserOperation(ctx context.Context, walletRef, chain, to, data, value, policyID string) (*gateway.UserOperation, error)
	EstimateUserOperation(ctx context.Context, walletRef, chain, to, data, value string) (*gateway.OperationEstimate, error)
	SubmitUserOperation(ctx context.Context, walletRef, chain, to, data, value, maxFeeUSDC string) (*gateway.UserOperation, error)
	GetUserOperationReceipt(ctx context.Context, operationHash string) (*gateway.OperationReceipt, error)
	GetNativeTokenPriceUSD(ctx context.Context, chain string) (string, error)
}

// GasUsecase orchestrates the two fee models for meta-transactions.
type GasUsecase struct {
	gasRepo       repositories.GasStationRepository
	paymasterRepo repositories.PaymasterRepository
	gateway       GasGateway
	cfg           config.PaymasterConfig
}

// NewGasUsecase creates a new gas usecase
func NewGasUsecase(
	gasRepo repositories.GasStationRepository,
	paymasterRepo repositories.PaymasterRepository,
	gw GasGateway,
	cfg config.PaymasterConfig,
) *GasUsecase {
	return &GasUsecase{
		gasRepo:       gasRepo,
		paymasterRepo: paymasterRepo,
		gateway:       gw,
		cfg:           cfg,
	}
}

// SponsorTransaction submits a call under a sponsorship policy. The worker
// pays nothing; the policy covers gas. A PENDING row keyed by the
// provider-issued operation hash tracks the in-flight operation.
func (u *GasUsecase) SponsorTransaction(ctx context.Context, workerID uuid.UUID, walletRef string, input entities.SponsorTransactionInput) (*entities.GasStationTransaction, error) {
	if walletRef == "" {
		return nil, fmt.Errorf("%w: no wallet available for sponsored execution", domainerrors.ErrNoPaymentMethod)
	}

	policyID := input.PolicyID
	if policyID == "" {
		policyID = u.cfg.DefaultPolicyID
	}

	op, err := u.gateway.SponsorUserOperation(ctx, walletRef, input.Chain, input.Call.To, input.Call.Data, input.Call.Value, policyID)
	if err != nil {
		return nil, err
	}

	txn := &entities.GasStationTransaction{
		ID:            utils.GenerateUUIDv7(),
		WorkerID:      workerID,
		WalletRef:     walletRef,
		Chain:         input.Chain,
		OperationHash: op.OperationHash,
		PolicyID:      policyID,
		Status:        entities.OperationStatusPending,
	}
	if err := u.gasRepo.Create(ctx, txn); err != nil {
		return nil, err
	}

	logger.Info(ctx, "sponsored operation submitted",
		zap.String("worker_id", workerID.String()),
		zap.String("operation_hash", op.OperationHash),
		zap.String("policy_id", policyID))
	return txn, nil
}

// CreateFeeAbstractedOperation submits a call whose gas is paid from the
// wallet's own USDC. The fee is computed before submission and the whole
// operation is rejected, with nothing written, when it exceeds the caller's
// ceiling.
func (u *GasUsecase) CreateFeeAbstractedOperation(ctx context.Context, workerID uuid.UUID, walletRef string, input entities.FeeAbstractedInput) (*entities.FeeAbstractedResult, error) {
	if walletRef == "" {
		return nil, fmt.Errorf("%w: no wallet available for fee-abstracted execution", domainerrors.ErrNoPaymentMethod)
	}

	maxFee, err := ParseAmount(input.MaxFeeUSDC)
	if err != nil {
		return nil, err
	}

	feeUSDC, err := u.quoteFeeUSDC(ctx, walletRef, input.Chain, input.Call)
	if err != nil {
		return nil, err
	}
	if feeUSDC.GreaterThan(maxFee) {
		return nil, fmt.Errorf("%w: computed fee %s USDC exceeds maximum %s",
			domainerrors.ErrFeeExceedsMaximum, FormatAmount(feeUSDC), FormatAmount(maxFee))
	}

	// The quoted fee rides along as the permit ceiling, so the gateway can
	// never charge more USDC than the caller was shown.
	op, err := u.gateway.SubmitUserOperation(ctx, walletRef, input.Chain, input.Call.To, input.Call.Data, input.Call.Value, FormatAmount(feeUSDC))
	if err != nil {
		return nil, err
	}

	row := &entities.PaymasterOperation{
		ID:            utils.GenerateUUIDv7(),
		WorkerID:      workerID,
		WalletRef:     walletRef,
		Chain:         input.Chain,
		OperationHash: op.OperationHash,
		FeeUSDC:       FormatAmount(feeUSDC),
		MaxFeeUSDC:    FormatAmount(maxFee),
		Status:        entities.OperationStatusPending,
	}
	if err := u.paymasterRepo.Create(ctx, row); err != nil {
		return nil, err
	}

	logger.Info(ctx, "fee-abstracted operation submitted",
		zap.String("worker_id", workerID.String()),
		zap.String("operation_hash", op.OperationHash),
		zap.String("fee_usdc", row.FeeUSDC))
	return &entities.FeeAbstractedResult{
		OperationHash: op.OperationHash,
		FeeUSDC:       row.FeeUSDC,
	}, nil
}

// quoteFeeUSDC estimates gas, converts the native-denominated cost to USDC
// and applies the configured slippage buffer. Rounding is upward so the
// quoted fee always covers the estimate.
func (u *GasUsecase) quoteFeeUSDC(ctx context.Context, walletRef, chain string, call entities.ContractCall) (decimal.Decimal, error) {
	estimate, err := u.gateway.EstimateUserOperation(ctx, walletRef, chain, call.To, call.Data, call.Value)
	if err != nil {
		return decimal.Zero, err
	}
	feeWei, err := decimal.NewFromString(estimate.TotalFeeWei)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid fee estimate %q: %w", estimate.TotalFeeWei, err)
	}

	price, err := u.gateway.GetNativeTokenPriceUSD(ctx, chain)
	if err != nil {
		return decimal.Zero, err
	}
	priceUSD, err := decimal.NewFromString(price)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid native price %q: %w", price, err)
	}

	feeNative := feeWei.Shift(-nativeTokenDecimals)
	buffer := decimal.NewFromFloat(1 + u.cfg.SlippagePercent/100)
	return feeNative.Mul(priceUSD).Mul(buffer).RoundUp(USDCDecimals), nil
}

// WaitForReceipt polls the receipt endpoint on a fixed interval until the
// operation lands or the attempt budget runs out. The poller and the
// webhook race; whichever observes the terminal state first wins and the
// other is a no-op.
func (u *GasUsecase) WaitForReceipt(ctx context.Context, operationHash string) (*gateway.OperationReceipt, error) {
	ticker := time.NewTicker(u.cfg.ReceiptInterval)
	defer ticker.Stop()

	for attempt := 0; attempt < u.cfg.ReceiptMaxAttempts; attempt++ {
		receipt, err := u.gateway.GetUserOperationReceipt(ctx, operationHash)
		if err != nil {
			logger.Warn(ctx, "receipt poll failed",
				zap.String("operation_hash", operationHash),
				zap.Error(err))
		} else if receipt != nil {
			status := entities.OperationStatusCompleted
			if !receipt.Success {
				status = entities.OperationStatusFailed
			}
			if err := u.RecordOperationResult(ctx, operationHash, status, receipt.TxHash, ""); err != nil {
				logger.Error(ctx, "failed to record operation receipt",
					zap.String("operation_hash", operationHash),
					zap.Error(err))
			}
			return receipt, nil
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-ticker.C:
		}
	}

	metrics.PollTimeouts.WithLabelValues("receipt").Inc()
	return nil, fmt.Errorf("%w: operation %s", domainerrors.ErrReceiptTimeout, operationHash)
}

// RecordOperationResult applies a terminal state to whichever operation row
// carries the hash. Transitions are forward-only, so duplicate or stale
// notifications are dropped silently.
func (u *GasUsecase) RecordOperationResult(ctx context.Context, operationHash string, status entities.OperationStatus, txHash, errorMessage string) error {
	if txn, err := u.gasRepo.GetByOperationHash(ctx, operationHash); err == nil {
		if !CanTransitionOperation(txn.Status, status) {
			return nil
		}
		txn.Status = status
		if txHash != "" {
			txn.TxHash = null.StringFrom(txHash)
		}
		if errorMessage != "" {
			txn.ErrorMessage = null.StringFrom(errorMessage)
		}
		return u.gasRepo.Update(ctx, txn)
	} else if !errors.Is(err, domainerrors.ErrNotFound) {
		return err
	}

	op, err := u.paymasterRepo.GetByOperationHash(ctx, operationHash)
	if err != nil {
		return err
	}
	if !CanTransitionOperation(op.Status, status) {
		return nil
	}
	op.Status = status
	if txHash != "" {
		op.TxHash = null.StringFrom(txHash)
	}
	if errorMessage != "" {
		op.ErrorMessage = null.StringFrom(errorMessage)
	}
	return u.paymasterRepo.Update(ctx, op)
}
