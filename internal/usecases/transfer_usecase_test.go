package usecases_test

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/volatiletech/null/v8"

	"payroll-chain.backend/internal/config"
	"payroll-chain.backend/internal/domain/entities"
	domainerrors "payroll-chain.backend/internal/domain/errors"
	"payroll-chain.backend/internal/infrastructure/blockchain"
	"payroll-chain.backend/internal/infrastructure/gateway"
	"payroll-chain.backend/internal/usecases"
)

// fakeChainCaller answers eth_call by contract address: the USDC contract
// returns a fixed balance, the transmitter returns the replay slot.
type fakeChainCaller struct {
	cfg         config.ChainConfig
	balance     *big.Int
	messageUsed bool
}

func (f *fakeChainCaller) CallContract(_ context.Context, msg ethereum.CallMsg, _ *big.Int) ([]byte, error) {
	switch *msg.To {
	case common.HexToAddress(f.cfg.USDCAddress):
		return common.LeftPadBytes(f.balance.Bytes(), 32), nil
	case common.HexToAddress(f.cfg.MessageTransmitter):
		if f.messageUsed {
			return common.LeftPadBytes([]byte{1}, 32), nil
		}
		return make([]byte, 32), nil
	}
	return nil, fmt.Errorf("unexpected call to %s", msg.To.Hex())
}

func (f *fakeChainCaller) TransactionReceipt(context.Context, common.Hash) (*types.Receipt, error) {
	return nil, errors.New("not implemented")
}

func (f *fakeChainCaller) BlockNumber(context.Context) (uint64, error) { return 0, nil }

func (f *fakeChainCaller) Close() {}

type transferMocks struct {
	transferRepo *MockTransferRepository
	workerRepo   *MockWorkerRepository
	auditRepo    *MockAuditLogRepository
	gateway      *MockTransferGateway
	attestation  *MockAttestationAPI
}

func newTransferUsecase(balance *big.Int, messageUsed bool, cfg config.AttestationConfig) (*usecases.TransferUsecase, *transferMocks) {
	m := &transferMocks{
		transferRepo: new(MockTransferRepository),
		workerRepo:   new(MockWorkerRepository),
		auditRepo:    new(MockAuditLogRepository),
		gateway:      new(MockTransferGateway),
		attestation:  new(MockAttestationAPI),
	}
	factory := blockchain.NewClientFactory(testChains)
	for name, chain := range testChains {
		factory.RegisterClient(name, blockchain.NewEVMClientWithCaller(big.NewInt(1), &fakeChainCaller{
			cfg:         chain,
			balance:     balance,
			messageUsed: messageUsed,
		}))
	}
	uc := usecases.NewTransferUsecase(m.transferRepo, m.workerRepo, m.auditRepo, m.gateway, m.attestation, factory, cfg)
	return uc, m
}

// attestedMessage is the raw burn message the attestation fixtures hand
// back; transfers are keyed on its keccak hash.
var attestedMessage = []byte{0xde, 0xad, 0xbe, 0xef}

func walletWorker(id uuid.UUID) *entities.Worker {
	return &entities.Worker{
		ID:            id,
		Name:          "Ada",
		Email:         "ada@example.com",
		WalletRef:     null.StringFrom("wlt_1"),
		WalletAddress: null.StringFrom("0x1111111111111111111111111111111111111111"),
	}
}

func TestInitiateTransfer_SameChainRejected(t *testing.T) {
	uc, _ := newTransferUsecase(big.NewInt(0), false, config.AttestationConfig{})

	_, err := uc.InitiateTransfer(context.Background(), uuid.New(), entities.InitiateTransferInput{
		SourceChain: "base", DestChain: "base", Amount: "5", RecipientAddress: "0x2222222222222222222222222222222222222222",
	})

	assert.ErrorIs(t, err, domainerrors.ErrInvalidInput)
}

func TestInitiateTransfer_UnsupportedChain(t *testing.T) {
	uc, _ := newTransferUsecase(big.NewInt(0), false, config.AttestationConfig{})

	_, err := uc.InitiateTransfer(context.Background(), uuid.New(), entities.InitiateTransferInput{
		SourceChain: "solana", DestChain: "base", Amount: "5", RecipientAddress: "0x2222222222222222222222222222222222222222",
	})

	assert.ErrorIs(t, err, domainerrors.ErrUnsupportedChain)
}

func TestInitiateTransfer_NoWallet(t *testing.T) {
	uc, m := newTransferUsecase(big.NewInt(0), false, config.AttestationConfig{})
	workerID := uuid.New()
	m.workerRepo.On("GetByID", mock.Anything, workerID).
		Return(&entities.Worker{ID: workerID, RecipientRef: null.StringFrom("rcp_1")}, nil)

	_, err := uc.InitiateTransfer(context.Background(), workerID, entities.InitiateTransferInput{
		SourceChain: "base", DestChain: "ethereum", Amount: "5", RecipientAddress: "0x2222222222222222222222222222222222222222",
	})

	assert.ErrorIs(t, err, domainerrors.ErrNoPaymentMethod)
}

func TestInitiateTransfer_InsufficientBalance(t *testing.T) {
	// 1 USDC on chain, 5 requested. No contract call may happen.
	uc, m := newTransferUsecase(big.NewInt(1_000_000), false, config.AttestationConfig{})
	workerID := uuid.New()
	m.workerRepo.On("GetByID", mock.Anything, workerID).Return(walletWorker(workerID), nil)

	_, err := uc.InitiateTransfer(context.Background(), workerID, entities.InitiateTransferInput{
		SourceChain: "base", DestChain: "ethereum", Amount: "5", RecipientAddress: "0x2222222222222222222222222222222222222222",
	})

	assert.ErrorIs(t, err, domainerrors.ErrInsufficientBalance)
	m.gateway.AssertNotCalled(t, "ExecuteContractCall", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	m.transferRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestInitiateTransfer_BurnAttestMintFlow(t *testing.T) {
	uc, m := newTransferUsecase(big.NewInt(100_000_000), false, config.AttestationConfig{
		PollInterval: time.Millisecond,
		MaxAttempts:  5,
	})
	workerID := uuid.New()
	worker := walletWorker(workerID)
	base := testChains["base"]
	eth := testChains["ethereum"]

	msgHash := blockchain.MessageHash(attestedMessage)

	m.workerRepo.On("GetByID", mock.Anything, workerID).Return(worker, nil)
	m.gateway.On("ExecuteContractCall", mock.Anything, "wlt_1", "base", base.USDCAddress, mock.Anything, "0").
		Return(&gateway.ContractCallResult{TxHash: "0xapprove"}, nil)
	m.gateway.On("ExecuteContractCall", mock.Anything, "wlt_1", "base", base.TokenMessenger, mock.Anything, "0").
		Return(&gateway.ContractCallResult{TxHash: "0xburn", MessageHash: msgHash}, nil)

	// The monitor looks the row back up by ID, which only exists once the
	// insert ran, so the lookup expectation is registered from the insert.
	m.transferRepo.On("Create", mock.Anything, mock.AnythingOfType("*entities.CrossChainTransfer")).
		Run(func(args mock.Arguments) {
			created := args.Get(1).(*entities.CrossChainTransfer)
			m.transferRepo.On("GetByID", mock.Anything, created.ID).Return(created, nil)
		}).
		Return(nil)
	m.auditRepo.On("Create", mock.Anything, mock.AnythingOfType("*entities.AuditLog")).Return(nil)

	m.attestation.On("GetAttestation", mock.Anything, msgHash).
		Return(&gateway.Attestation{Message: "0xdeadbeef", Attestation: "0xabcd"}, true, nil)
	m.gateway.On("ExecuteContractCall", mock.Anything, "wlt_1", "ethereum", eth.MessageTransmitter, mock.Anything, "0").
		Return(&gateway.ContractCallResult{TxHash: "0xmint"}, nil)

	done := make(chan struct{})
	m.transferRepo.On("Update", mock.Anything, mock.MatchedBy(func(tr *entities.CrossChainTransfer) bool {
		return tr.Status == entities.TransferStatusAttested
	})).Return(nil).Once()
	m.transferRepo.On("Update", mock.Anything, mock.MatchedBy(func(tr *entities.CrossChainTransfer) bool {
		return tr.Status == entities.TransferStatusCompleted
	})).Run(func(mock.Arguments) { close(done) }).Return(nil).Once()

	transfer, err := uc.InitiateTransfer(context.Background(), workerID, entities.InitiateTransferInput{
		SourceChain: "base", DestChain: "ethereum", Amount: "5", RecipientAddress: "0x2222222222222222222222222222222222222222",
	})

	require.NoError(t, err)
	assert.Equal(t, entities.TransferStatusPending, transfer.Status)
	assert.Equal(t, msgHash, transfer.MessageHash.String)
	assert.Equal(t, "0xburn", transfer.BurnTxHash.String)

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("transfer never completed")
	}
	assert.Equal(t, "0xmint", transfer.MintTxHash.String)
	assert.NotNil(t, transfer.CompletedAt)
	m.gateway.AssertExpectations(t)
}

func TestInitiateTransfer_AttestationTimeoutKeepsPending(t *testing.T) {
	uc, m := newTransferUsecase(big.NewInt(100_000_000), false, config.AttestationConfig{
		PollInterval: time.Millisecond,
		MaxAttempts:  2,
	})
	workerID := uuid.New()
	base := testChains["base"]

	m.workerRepo.On("GetByID", mock.Anything, workerID).Return(walletWorker(workerID), nil)
	m.gateway.On("ExecuteContractCall", mock.Anything, "wlt_1", "base", base.USDCAddress, mock.Anything, "0").
		Return(&gateway.ContractCallResult{TxHash: "0xapprove"}, nil)
	m.gateway.On("ExecuteContractCall", mock.Anything, "wlt_1", "base", base.TokenMessenger, mock.Anything, "0").
		Return(&gateway.ContractCallResult{TxHash: "0xburn", MessageHash: "0xmsghash"}, nil)

	m.transferRepo.On("Create", mock.Anything, mock.AnythingOfType("*entities.CrossChainTransfer")).
		Run(func(args mock.Arguments) {
			created := args.Get(1).(*entities.CrossChainTransfer)
			m.transferRepo.On("GetByID", mock.Anything, created.ID).Return(created, nil)
		}).
		Return(nil)
	m.auditRepo.On("Create", mock.Anything, mock.AnythingOfType("*entities.AuditLog")).Return(nil)
	m.attestation.On("GetAttestation", mock.Anything, "0xmsghash").Return(nil, false, nil)

	done := make(chan struct{})
	m.transferRepo.On("Update", mock.Anything, mock.MatchedBy(func(tr *entities.CrossChainTransfer) bool {
		return tr.Status == entities.TransferStatusPending && tr.ErrorMessage.Valid
	})).Run(func(mock.Arguments) { close(done) }).Return(nil)

	transfer, err := uc.InitiateTransfer(context.Background(), workerID, entities.InitiateTransferInput{
		SourceChain: "base", DestChain: "ethereum", Amount: "5", RecipientAddress: "0x2222222222222222222222222222222222222222",
	})
	require.NoError(t, err)

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("timeout was never recorded")
	}
	// Still PENDING so a later poll can resume it.
	assert.Equal(t, entities.TransferStatusPending, transfer.Status)
	assert.Contains(t, transfer.ErrorMessage.String, "attestation")
	m.attestation.AssertNumberOfCalls(t, "GetAttestation", 2)
}

func TestCompleteTransfer_MessageAlreadyMinted(t *testing.T) {
	// The replay slot is set on the destination, so no mint call is made.
	uc, m := newTransferUsecase(big.NewInt(0), true, config.AttestationConfig{})
	transfer := &entities.CrossChainTransfer{
		ID:          uuid.New(),
		WorkerID:    uuid.New(),
		SourceChain: "base",
		DestChain:   "ethereum",
		MessageHash: null.StringFrom("0xmsghash"),
		Status:      entities.TransferStatusAttested,
	}
	m.transferRepo.On("Update", mock.Anything, transfer).Return(nil)

	err := uc.CompleteTransfer(context.Background(), transfer, &gateway.Attestation{Message: "0xdeadbeef", Attestation: "0xabcd"})

	require.NoError(t, err)
	assert.Equal(t, entities.TransferStatusCompleted, transfer.Status)
	assert.False(t, transfer.MintTxHash.Valid)
	m.gateway.AssertNotCalled(t, "ExecuteContractCall", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestCompleteTransfer_MintRaceTreatedAsComplete(t *testing.T) {
	uc, m := newTransferUsecase(big.NewInt(0), false, config.AttestationConfig{})
	workerID := uuid.New()
	transfer := &entities.CrossChainTransfer{
		ID:          uuid.New(),
		WorkerID:    workerID,
		SourceChain: "base",
		DestChain:   "ethereum",
		MessageHash: null.StringFrom(blockchain.MessageHash(attestedMessage)),
		Status:      entities.TransferStatusAttested,
	}
	m.workerRepo.On("GetByID", mock.Anything, workerID).Return(walletWorker(workerID), nil)
	m.gateway.On("ExecuteContractCall", mock.Anything, "wlt_1", "ethereum", testChains["ethereum"].MessageTransmitter, mock.Anything, "0").
		Return(nil, errors.New("execution reverted: nonce already used"))
	m.transferRepo.On("Update", mock.Anything, transfer).Return(nil)

	err := uc.CompleteTransfer(context.Background(), transfer, &gateway.Attestation{Message: "0xdeadbeef", Attestation: "0xabcd"})

	require.NoError(t, err)
	assert.Equal(t, entities.TransferStatusCompleted, transfer.Status)
}

func TestCompleteTransfer_RejectsMessageNotMatchingBurnHash(t *testing.T) {
	uc, m := newTransferUsecase(big.NewInt(0), false, config.AttestationConfig{})
	transfer := &entities.CrossChainTransfer{
		ID:          uuid.New(),
		WorkerID:    uuid.New(),
		SourceChain: "base",
		DestChain:   "ethereum",
		MessageHash: null.StringFrom(blockchain.MessageHash(attestedMessage)),
		Status:      entities.TransferStatusAttested,
	}

	// The attested payload does not hash back to the burn message hash, so
	// nothing may be sent to the transmitter.
	err := uc.CompleteTransfer(context.Background(), transfer, &gateway.Attestation{Message: "0xbadc0de0", Attestation: "0xabcd"})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "hashes to")
	m.gateway.AssertNotCalled(t, "ExecuteContractCall", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	m.transferRepo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
}

func TestListTransfers_Pagination(t *testing.T) {
	uc, m := newTransferUsecase(big.NewInt(0), false, config.AttestationConfig{})
	workerID := uuid.New()
	m.transferRepo.On("GetByWorkerID", mock.Anything, workerID, 10, 10).
		Return([]*entities.CrossChainTransfer{{ID: uuid.New()}}, 25, nil)

	transfers, meta, err := uc.ListTransfers(context.Background(), workerID, 2, 10)

	require.NoError(t, err)
	assert.Len(t, transfers, 1)
	assert.Equal(t, 2, meta.Page)
	assert.Equal(t, 3, meta.TotalPages)
	assert.Equal(t, int64(25), meta.TotalCount)
}
