package usecases

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"payroll-chain.backend/internal/domain/entities"
	domainerrors "payroll-chain.backend/internal/domain/errors"
	"payroll-chain.backend/internal/domain/repositories"
	"payroll-chain.backend/internal/infrastructure/blockchain"
	"payroll-chain.backend/pkg/logger"
)

// WorkerUsecase serves worker-facing reads.
type WorkerUsecase struct {
	workerRepo    repositories.WorkerRepository
	clientFactory *blockchain.ClientFactory
	chains        []string
}

// NewWorkerUsecase creates a new worker usecase
func NewWorkerUsecase(workerRepo repositories.WorkerRepository, clientFactory *blockchain.ClientFactory, chains []string) *WorkerUsecase {
	return &WorkerUsecase{
		workerRepo:    workerRepo,
		clientFactory: clientFactory,
		chains:        chains,
	}
}

// GetWorker returns a worker by id.
func (u *WorkerUsecase) GetWorker(ctx context.Context, workerID uuid.UUID) (*entities.Worker, error) {
	return u.workerRepo.GetByID(ctx, workerID)
}

// GetBalances reads the worker's USDC balance on every configured chain.
// A chain whose RPC read fails is reported as zero and logged; the
// aggregate view degrades rather than failing outright.
func (u *WorkerUsecase) GetBalances(ctx context.Context, workerID uuid.UUID) (*entities.WorkerBalances, error) {
	worker, err := u.workerRepo.GetByID(ctx, workerID)
	if err != nil {
		return nil, err
	}
	if !worker.HasWallet() || !worker.WalletAddress.Valid {
		return nil, fmt.Errorf("%w: worker has no wallet", domainerrors.ErrNoPaymentMethod)
	}

	out := &entities.WorkerBalances{WorkerID: workerID}
	total := decimal.Zero

	for _, chain := range u.chains {
		cfg, err := u.clientFactory.ChainConfig(chain)
		if err != nil {
			continue
		}
		amount := decimal.Zero

		client, err := u.clientFactory.GetClient(chain)
		if err != nil {
			logger.Warn(ctx, "balance read skipped, chain unavailable",
				zap.String("chain", chain),
				zap.Error(err))
		} else if raw, err := client.GetTokenBalance(ctx, cfg.USDCAddress, worker.WalletAddress.String); err != nil {
			logger.Warn(ctx, "balance read failed",
				zap.String("chain", chain),
				zap.Error(err))
		} else {
			amount = FromMinorUnits(raw)
		}

		out.Balances = append(out.Balances, entities.ChainBalance{
			Chain:  chain,
			Amount: FormatAmount(amount),
		})
		total = total.Add(amount)
	}

	out.Total = FormatAmount(total)
	return out, nil
}
