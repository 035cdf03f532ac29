package jobs

import (
	"context"
	"time"

	"go.uber.org/zap"

	"payroll-chain.backend/internal/domain/repositories"
	"payroll-chain.backend/internal/infrastructure/gateway"
	"payroll-chain.backend/pkg/logger"
)

const provisioningBatchSize = 50

// ProvisioningJob retries gateway provisioning for workers that are still
// missing a recipient ref or a wallet. Inline provisioning at CSV upload is
// best-effort, so this sweep picks up anything that failed there.
type ProvisioningJob struct {
	workerRepo repositories.WorkerRepository
	gateway    *gateway.Client
	interval   time.Duration
	stop       chan struct{}
}

func NewProvisioningJob(workerRepo repositories.WorkerRepository, gw *gateway.Client) *ProvisioningJob {
	return &ProvisioningJob{
		workerRepo: workerRepo,
		gateway:    gw,
		interval:   60 * time.Second,
		stop:       make(chan struct{}),
	}
}

func (j *ProvisioningJob) Start(ctx context.Context) {
	logger.Info(ctx, "worker provisioning job started", zap.Duration("interval", j.interval))

	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Info(ctx, "worker provisioning job stopped")
			return
		case <-j.stop:
			logger.Info(ctx, "worker provisioning job stopped")
			return
		case <-ticker.C:
			j.sweep(ctx)
		}
	}
}

func (j *ProvisioningJob) Stop() {
	close(j.stop)
}

func (j *ProvisioningJob) sweep(ctx context.Context) {
	workers, err := j.workerRepo.ListUnprovisioned(ctx, provisioningBatchSize)
	if err != nil {
		logger.Error(ctx, "failed to list unprovisioned workers", zap.Error(err))
		return
	}
	if len(workers) == 0 {
		return
	}

	logger.Info(ctx, "retrying provisioning", zap.Int("workers", len(workers)))

	for _, worker := range workers {
		if !worker.HasRecipient() {
			recipient, err := j.gateway.CreateRecipient(ctx, worker.Name, worker.Email)
			if err != nil {
				logger.Warn(ctx, "recipient provisioning retry failed",
					zap.String("worker_id", worker.ID.String()),
					zap.Error(err))
			} else if err := j.workerRepo.SetRecipientRef(ctx, worker.ID, recipient.ID); err != nil {
				logger.Error(ctx, "failed to persist recipient ref",
					zap.String("worker_id", worker.ID.String()),
					zap.Error(err))
			}
		}

		if !worker.HasWallet() {
			wallet, err := j.gateway.CreateWallet(ctx, "worker-"+worker.ID.String())
			if err != nil {
				logger.Warn(ctx, "wallet provisioning retry failed",
					zap.String("worker_id", worker.ID.String()),
					zap.Error(err))
				continue
			}
			if err := j.workerRepo.SetWalletRef(ctx, worker.ID, wallet.ID, wallet.Address); err != nil {
				logger.Error(ctx, "failed to persist wallet ref",
					zap.String("worker_id", worker.ID.String()),
					zap.Error(err))
			}
		}
	}
}
