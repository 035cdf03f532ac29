package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"payroll-chain.backend/internal/domain/entities"
	domainerrors "payroll-chain.backend/internal/domain/errors"
	"payroll-chain.backend/internal/interfaces/http/response"
	"payroll-chain.backend/internal/usecases"
	"payroll-chain.backend/pkg/utils"
)

type workerService interface {
	GetWorker(ctx context.Context, workerID uuid.UUID) (*entities.Worker, error)
	GetBalances(ctx context.Context, workerID uuid.UUID) (*entities.WorkerBalances, error)
}

type transferService interface {
	InitiateTransfer(ctx context.Context, workerID uuid.UUID, input entities.InitiateTransferInput) (*entities.CrossChainTransfer, error)
	ListTransfers(ctx context.Context, workerID uuid.UUID, page, limit int) ([]*entities.CrossChainTransfer, utils.PaginationMeta, error)
}

type gasService interface {
	SponsorTransaction(ctx context.Context, workerID uuid.UUID, walletRef string, input entities.SponsorTransactionInput) (*entities.GasStationTransaction, error)
	CreateFeeAbstractedOperation(ctx context.Context, workerID uuid.UUID, walletRef string, input entities.FeeAbstractedInput) (*entities.FeeAbstractedResult, error)
}

// WorkerHandler handles worker-facing endpoints
type WorkerHandler struct {
	workerUsecase   workerService
	transferUsecase transferService
	gasUsecase      gasService
}

// NewWorkerHandler creates a new worker handler
func NewWorkerHandler(workerUsecase *usecases.WorkerUsecase, transferUsecase *usecases.TransferUsecase, gasUsecase *usecases.GasUsecase) *WorkerHandler {
	return &WorkerHandler{
		workerUsecase:   workerUsecase,
		transferUsecase: transferUsecase,
		gasUsecase:      gasUsecase,
	}
}

// GetBalance returns the worker's per-chain USDC balances
// GET /api/v1/workers/:id/balance
func (h *WorkerHandler) GetBalance(c *gin.Context) {
	workerID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Error(c, domainerrors.BadRequest("invalid worker id"))
		return
	}

	balances, err := h.workerUsecase.GetBalances(c.Request.Context(), workerID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, balances)
}

// InitiateTransfer starts a cross-chain USDC transfer
// POST /api/v1/workers/:id/transfer
func (h *WorkerHandler) InitiateTransfer(c *gin.Context) {
	workerID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Error(c, domainerrors.BadRequest("invalid worker id"))
		return
	}

	var input entities.InitiateTransferInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, domainerrors.BadRequest(err.Error()))
		return
	}

	transfer, err := h.transferUsecase.InitiateTransfer(c.Request.Context(), workerID, input)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusCreated, transfer)
}

// ListTransfers returns the worker's transfers
// GET /api/v1/workers/:id/transfers?page&limit
func (h *WorkerHandler) ListTransfers(c *gin.Context) {
	workerID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Error(c, domainerrors.BadRequest("invalid worker id"))
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))

	transfers, meta, err := h.transferUsecase.ListTransfers(c.Request.Context(), workerID, page, limit)
	if err != nil {
		response.Error(c, err)
		return
	}
	if transfers == nil {
		transfers = []*entities.CrossChainTransfer{}
	}

	response.Paginated(c, http.StatusOK, transfers, meta)
}

// GaslessTransaction dispatches a policy-sponsored operation
// POST /api/v1/workers/:id/gasless-transaction
func (h *WorkerHandler) GaslessTransaction(c *gin.Context) {
	workerID, worker, ok := h.resolveWalletWorker(c)
	if !ok {
		return
	}

	var input entities.SponsorTransactionInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, domainerrors.BadRequest(err.Error()))
		return
	}

	txn, err := h.gasUsecase.SponsorTransaction(c.Request.Context(), workerID, worker.WalletRef.String, input)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusCreated, txn)
}

// USDCGasTransaction dispatches an operation whose gas is paid in USDC
// POST /api/v1/workers/:id/usdc-gas-transaction
func (h *WorkerHandler) USDCGasTransaction(c *gin.Context) {
	workerID, worker, ok := h.resolveWalletWorker(c)
	if !ok {
		return
	}

	var input entities.FeeAbstractedInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, domainerrors.BadRequest(err.Error()))
		return
	}

	result, err := h.gasUsecase.CreateFeeAbstractedOperation(c.Request.Context(), workerID, worker.WalletRef.String, input)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusCreated, result)
}

func (h *WorkerHandler) resolveWalletWorker(c *gin.Context) (uuid.UUID, *entities.Worker, bool) {
	workerID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Error(c, domainerrors.BadRequest("invalid worker id"))
		return uuid.Nil, nil, false
	}

	worker, err := h.workerUsecase.GetWorker(c.Request.Context(), workerID)
	if err != nil {
		if errors.Is(err, domainerrors.ErrNotFound) {
			response.Error(c, domainerrors.NotFound("worker not found"))
			return uuid.Nil, nil, false
		}
		response.Error(c, err)
		return uuid.Nil, nil, false
	}
	if !worker.HasWallet() {
		response.Error(c, domainerrors.FromDomain(domainerrors.ErrNoPaymentMethod))
		return uuid.Nil, nil, false
	}

	return workerID, worker, true
}
