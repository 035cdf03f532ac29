package usecases_test

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"payroll-chain.backend/internal/domain/entities"
	"payroll-chain.backend/internal/infrastructure/gateway"
)

// Mock UnitOfWork
type MockUnitOfWork struct {
	mock.Mock
}

func (m *MockUnitOfWork) Do(ctx context.Context, f func(context.Context) error) error {
	m.Called(ctx, f)
	return f(ctx)
}

func (m *MockUnitOfWork) WithLock(ctx context.Context) context.Context {
	args := m.Called(ctx)
	return args.Get(0).(context.Context)
}

// Mock WorkerRepository
type MockWorkerRepository struct {
	mock.Mock
}

func (m *MockWorkerRepository) Create(ctx context.Context, worker *entities.Worker) error {
	args := m.Called(ctx, worker)
	return args.Error(0)
}

func (m *MockWorkerRepository) GetByID(ctx context.Context, id uuid.UUID) (*entities.Worker, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Worker), args.Error(1)
}

func (m *MockWorkerRepository) GetByEmail(ctx context.Context, email string) (*entities.Worker, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Worker), args.Error(1)
}

func (m *MockWorkerRepository) SetRecipientRef(ctx context.Context, id uuid.UUID, recipientRef string) error {
	args := m.Called(ctx, id, recipientRef)
	return args.Error(0)
}

func (m *MockWorkerRepository) SetWalletRef(ctx context.Context, id uuid.UUID, walletRef, walletAddress string) error {
	args := m.Called(ctx, id, walletRef, walletAddress)
	return args.Error(0)
}

func (m *MockWorkerRepository) ListUnprovisioned(ctx context.Context, limit int) ([]*entities.Worker, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.Worker), args.Error(1)
}

// Mock PayrollRunRepository
type MockPayrollRunRepository struct {
	mock.Mock
}

func (m *MockPayrollRunRepository) Create(ctx context.Context, run *entities.PayrollRun) error {
	args := m.Called(ctx, run)
	return args.Error(0)
}

func (m *MockPayrollRunRepository) GetByID(ctx context.Context, id uuid.UUID) (*entities.PayrollRun, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.PayrollRun), args.Error(1)
}

func (m *MockPayrollRunRepository) GetByIDWithItems(ctx context.Context, id uuid.UUID) (*entities.PayrollRun, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.PayrollRun), args.Error(1)
}

func (m *MockPayrollRunRepository) ListByAdmin(ctx context.Context, adminID uuid.UUID, limit, offset int) ([]*entities.PayrollRun, int, error) {
	args := m.Called(ctx, adminID, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Int(1), args.Error(2)
	}
	return args.Get(0).([]*entities.PayrollRun), args.Int(1), args.Error(2)
}

func (m *MockPayrollRunRepository) UpdateStatusFrom(ctx context.Context, id uuid.UUID, from, to entities.RunStatus) error {
	args := m.Called(ctx, id, from, to)
	return args.Error(0)
}

func (m *MockPayrollRunRepository) MarkFinished(ctx context.Context, id uuid.UUID, status entities.RunStatus, completedAt time.Time) error {
	args := m.Called(ctx, id, status, completedAt)
	return args.Error(0)
}

// Mock PayrollItemRepository
type MockPayrollItemRepository struct {
	mock.Mock
}

func (m *MockPayrollItemRepository) Create(ctx context.Context, item *entities.PayrollItem) error {
	args := m.Called(ctx, item)
	return args.Error(0)
}

func (m *MockPayrollItemRepository) GetByID(ctx context.Context, id uuid.UUID) (*entities.PayrollItem, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.PayrollItem), args.Error(1)
}

func (m *MockPayrollItemRepository) GetByRunID(ctx context.Context, runID uuid.UUID) ([]*entities.PayrollItem, error) {
	args := m.Called(ctx, runID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.PayrollItem), args.Error(1)
}

func (m *MockPayrollItemRepository) GetByPayoutID(ctx context.Context, payoutID string) (*entities.PayrollItem, error) {
	args := m.Called(ctx, payoutID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.PayrollItem), args.Error(1)
}

func (m *MockPayrollItemRepository) Update(ctx context.Context, item *entities.PayrollItem) error {
	args := m.Called(ctx, item)
	return args.Error(0)
}

func (m *MockPayrollItemRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status entities.ItemStatus) error {
	args := m.Called(ctx, id, status)
	return args.Error(0)
}

// Mock AuditLogRepository
type MockAuditLogRepository struct {
	mock.Mock
}

func (m *MockAuditLogRepository) Create(ctx context.Context, log *entities.AuditLog) error {
	args := m.Called(ctx, log)
	return args.Error(0)
}

func (m *MockAuditLogRepository) GetByRunID(ctx context.Context, runID uuid.UUID) ([]*entities.AuditLog, error) {
	args := m.Called(ctx, runID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.AuditLog), args.Error(1)
}

// Mock TransferRepository
type MockTransferRepository struct {
	mock.Mock
}

func (m *MockTransferRepository) Create(ctx context.Context, transfer *entities.CrossChainTransfer) error {
	args := m.Called(ctx, transfer)
	return args.Error(0)
}

func (m *MockTransferRepository) GetByID(ctx context.Context, id uuid.UUID) (*entities.CrossChainTransfer, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.CrossChainTransfer), args.Error(1)
}

func (m *MockTransferRepository) GetByMessageHash(ctx context.Context, messageHash string) (*entities.CrossChainTransfer, error) {
	args := m.Called(ctx, messageHash)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.CrossChainTransfer), args.Error(1)
}

func (m *MockTransferRepository) GetByWorkerID(ctx context.Context, workerID uuid.UUID, limit, offset int) ([]*entities.CrossChainTransfer, int, error) {
	args := m.Called(ctx, workerID, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Int(1), args.Error(2)
	}
	return args.Get(0).([]*entities.CrossChainTransfer), args.Int(1), args.Error(2)
}

func (m *MockTransferRepository) Update(ctx context.Context, transfer *entities.CrossChainTransfer) error {
	args := m.Called(ctx, transfer)
	return args.Error(0)
}

// Mock GasStationRepository
type MockGasStationRepository struct {
	mock.Mock
}

func (m *MockGasStationRepository) Create(ctx context.Context, txn *entities.GasStationTransaction) error {
	args := m.Called(ctx, txn)
	return args.Error(0)
}

func (m *MockGasStationRepository) GetByOperationHash(ctx context.Context, opHash string) (*entities.GasStationTransaction, error) {
	args := m.Called(ctx, opHash)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.GasStationTransaction), args.Error(1)
}

func (m *MockGasStationRepository) Update(ctx context.Context, txn *entities.GasStationTransaction) error {
	args := m.Called(ctx, txn)
	return args.Error(0)
}

// Mock PaymasterRepository
type MockPaymasterRepository struct {
	mock.Mock
}

func (m *MockPaymasterRepository) Create(ctx context.Context, op *entities.PaymasterOperation) error {
	args := m.Called(ctx, op)
	return args.Error(0)
}

func (m *MockPaymasterRepository) GetByOperationHash(ctx context.Context, opHash string) (*entities.PaymasterOperation, error) {
	args := m.Called(ctx, opHash)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.PaymasterOperation), args.Error(1)
}

func (m *MockPaymasterRepository) Update(ctx context.Context, op *entities.PaymasterOperation) error {
	args := m.Called(ctx, op)
	return args.Error(0)
}

// Mock AdminRepository
type MockAdminRepository struct {
	mock.Mock
}

func (m *MockAdminRepository) Create(ctx context.Context, admin *entities.Admin) error {
	args := m.Called(ctx, admin)
	return args.Error(0)
}

func (m *MockAdminRepository) GetByID(ctx context.Context, id uuid.UUID) (*entities.Admin, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Admin), args.Error(1)
}

func (m *MockAdminRepository) GetByEmail(ctx context.Context, email string) (*entities.Admin, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Admin), args.Error(1)
}

// Mock PayrollGateway
type MockPayrollGateway struct {
	mock.Mock
}

func (m *MockPayrollGateway) CreateRecipient(ctx context.Context, name, email string) (*gateway.Recipient, error) {
	args := m.Called(ctx, name, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*gateway.Recipient), args.Error(1)
}

func (m *MockPayrollGateway) CreateWallet(ctx context.Context, externalRef string) (*gateway.Wallet, error) {
	args := m.Called(ctx, externalRef)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*gateway.Wallet), args.Error(1)
}

func (m *MockPayrollGateway) CreatePayout(ctx context.Context, recipientRef, amount, chain string) (*gateway.Payout, error) {
	args := m.Called(ctx, recipientRef, amount, chain)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*gateway.Payout), args.Error(1)
}

// Mock GasSponsor
type MockGasSponsor struct {
	mock.Mock
}

func (m *MockGasSponsor) SponsorTransaction(ctx context.Context, workerID uuid.UUID, walletRef string, input entities.SponsorTransactionInput) (*entities.GasStationTransaction, error) {
	args := m.Called(ctx, workerID, walletRef, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.GasStationTransaction), args.Error(1)
}

// Mock GasGateway
type MockGasGateway struct {
	mock.Mock
}

func (m *MockGasGateway) SponsorUserOperation(ctx context.Context, walletRef, chain, to, data, value, policyID string) (*gateway.UserOperation, error) {
	args := m.Called(ctx, walletRef, chain, to, data, value, policyID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*gateway.UserOperation), args.Error(1)
}

func (m *MockGasGateway) EstimateUserOperation(ctx context.Context, walletRef, chain, to, data, value string) (*gateway.OperationEstimate, error) {
	args := m.Called(ctx, walletRef, chain, to, data, value)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*gateway.OperationEstimate), args.Error(1)
}

func (m *MockGasGateway) SubmitUserOperation(ctx context.Context, walletRef, chain, to, data, value, maxFeeUSDC string) (*gateway.UserOperation, error) {
	args := m.Called(ctx, walletRef, chain, to, data, value, maxFeeUSDC)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*gateway.UserOperation), args.Error(1)
}

func (m *MockGasGateway) GetUserOperationReceipt(ctx context.Context, operationHash string) (*gateway.OperationReceipt, error) {
	args := m.Called(ctx, operationHash)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*gateway.OperationReceipt), args.Error(1)
}

func (m *MockGasGateway) GetNativeTokenPriceUSD(ctx context.Context, chain string) (string, error) {
	args := m.Called(ctx, chain)
	return args.String(0), args.Error(1)
}

// Mock TransferGateway
type MockTransferGateway struct {
	mock.Mock
}

func (m *MockTransferGateway) ExecuteContractCall(ctx context.Context, walletRef, chain, to, data, value string) (*gateway.ContractCallResult, error) {
	args := m.Called(ctx, walletRef, chain, to, data, value)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*gateway.ContractCallResult), args.Error(1)
}

// Mock AttestationAPI
type MockAttestationAPI struct {
	mock.Mock
}

func (m *MockAttestationAPI) GetAttestation(ctx context.Context, messageHash string) (*gateway.Attestation, bool, error) {
	args := m.Called(ctx, messageHash)
	if args.Get(0) == nil {
		return nil, args.Bool(1), args.Error(2)
	}
	return args.Get(0).(*gateway.Attestation), args.Bool(1), args.Error(2)
}

// Mock OperationRecorder
type MockOperationRecorder struct {
	mock.Mock
}

func (m *MockOperationRecorder) RecordOperationResult(ctx context.Context, operationHash string, status entities.OperationStatus, txHash, errorMessage string) error {
	args := m.Called(ctx, operationHash, status, txHash, errorMessage)
	return args.Error(0)
}
