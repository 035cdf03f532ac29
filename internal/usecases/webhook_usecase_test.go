package usecases_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/volatiletech/null/v8"

	"payroll-chain.backend/internal/domain/entities"
	domainerrors "payroll-chain.backend/internal/domain/errors"
	"payroll-chain.backend/internal/usecases"
)

type webhookMocks struct {
	itemRepo     *MockPayrollItemRepository
	transferRepo *MockTransferRepository
	auditRepo    *MockAuditLogRepository
	recorder     *MockOperationRecorder
}

func newWebhookUsecase() (*usecases.WebhookUsecase, *webhookMocks) {
	m := &webhookMocks{
		itemRepo:     new(MockPayrollItemRepository),
		transferRepo: new(MockTransferRepository),
		auditRepo:    new(MockAuditLogRepository),
		recorder:     new(MockOperationRecorder),
	}
	return usecases.NewWebhookUsecase(m.itemRepo, m.transferRepo, m.auditRepo, m.recorder), m
}

func submittedItem() *entities.PayrollItem {
	return &entities.PayrollItem{
		ID:       uuid.New(),
		RunID:    uuid.New(),
		WorkerID: uuid.New(),
		PayoutID: null.StringFrom("po_1"),
		TxHash:   null.StringFrom("0xprovisional"),
		Status:   entities.ItemStatusSubmitted,
	}
}

func TestHandlePayoutEvent_CompletedOverwritesProvisionalHash(t *testing.T) {
	uc, m := newWebhookUsecase()
	item := submittedItem()

	m.itemRepo.On("GetByPayoutID", mock.Anything, "po_1").Return(item, nil)
	m.itemRepo.On("Update", mock.Anything, item).Return(nil)
	m.auditRepo.On("Create", mock.Anything, mock.AnythingOfType("*entities.AuditLog")).Return(nil)

	err := uc.HandlePayoutEvent(context.Background(), usecases.PayoutEvent{
		Event:    usecases.EventPayoutCompleted,
		PayoutID: "po_1",
		TxHash:   "0xfinal",
	})

	require.NoError(t, err)
	assert.Equal(t, entities.ItemStatusCompleted, item.Status)
	assert.Equal(t, "0xfinal", item.TxHash.String)
	assert.NotNil(t, item.CompletedAt)
}

func TestHandlePayoutEvent_Failed(t *testing.T) {
	uc, m := newWebhookUsecase()
	item := submittedItem()

	m.itemRepo.On("GetByPayoutID", mock.Anything, "po_1").Return(item, nil)
	m.itemRepo.On("Update", mock.Anything, item).Return(nil)
	m.auditRepo.On("Create", mock.Anything, mock.AnythingOfType("*entities.AuditLog")).Return(nil)

	err := uc.HandlePayoutEvent(context.Background(), usecases.PayoutEvent{
		Event:        usecases.EventPayoutFailed,
		PayoutID:     "po_1",
		ErrorMessage: "recipient account frozen",
	})

	require.NoError(t, err)
	assert.Equal(t, entities.ItemStatusFailed, item.Status)
	assert.Equal(t, "recipient account frozen", item.ErrorMessage.String)
}

func TestHandlePayoutEvent_UnknownEvent(t *testing.T) {
	uc, m := newWebhookUsecase()

	err := uc.HandlePayoutEvent(context.Background(), usecases.PayoutEvent{
		Event:    "payout.cancelled",
		PayoutID: "po_1",
	})

	assert.ErrorIs(t, err, domainerrors.ErrInvalidInput)
	m.itemRepo.AssertNotCalled(t, "GetByPayoutID", mock.Anything, mock.Anything)
}

func TestHandlePayoutEvent_UnmatchedPayoutAcked(t *testing.T) {
	uc, m := newWebhookUsecase()
	m.itemRepo.On("GetByPayoutID", mock.Anything, "po_unknown").Return(nil, domainerrors.ErrNotFound)

	err := uc.HandlePayoutEvent(context.Background(), usecases.PayoutEvent{
		Event:    usecases.EventPayoutCompleted,
		PayoutID: "po_unknown",
	})

	require.NoError(t, err)
	m.itemRepo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
}

func TestHandlePayoutEvent_StaleUpdateDropped(t *testing.T) {
	uc, m := newWebhookUsecase()
	item := submittedItem()
	item.Status = entities.ItemStatusCompleted

	m.itemRepo.On("GetByPayoutID", mock.Anything, "po_1").Return(item, nil)

	err := uc.HandlePayoutEvent(context.Background(), usecases.PayoutEvent{
		Event:    usecases.EventPayoutCompleted,
		PayoutID: "po_1",
	})

	require.NoError(t, err)
	m.itemRepo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
}

func TestHandleTransferEvent_CompletedFromPending(t *testing.T) {
	// A completion on a still-PENDING transfer is valid; the provider saw
	// the full settlement before the poller did.
	uc, m := newWebhookUsecase()
	transfer := &entities.CrossChainTransfer{
		ID:          uuid.New(),
		MessageHash: null.StringFrom("0xmsghash"),
		Status:      entities.TransferStatusPending,
	}

	m.transferRepo.On("GetByMessageHash", mock.Anything, "0xmsghash").Return(transfer, nil)
	m.transferRepo.On("Update", mock.Anything, transfer).Return(nil)

	err := uc.HandleTransferEvent(context.Background(), usecases.TransferEvent{
		Event:       usecases.EventTransferCompleted,
		MessageHash: "0xmsghash",
		TxHash:      "0xmint",
	})

	require.NoError(t, err)
	assert.Equal(t, entities.TransferStatusCompleted, transfer.Status)
	assert.Equal(t, "0xmint", transfer.MintTxHash.String)
	assert.NotNil(t, transfer.CompletedAt)
}

func TestHandleTransferEvent_Failed(t *testing.T) {
	uc, m := newWebhookUsecase()
	transfer := &entities.CrossChainTransfer{
		ID:          uuid.New(),
		MessageHash: null.StringFrom("0xmsghash"),
		Status:      entities.TransferStatusAttested,
	}

	m.transferRepo.On("GetByMessageHash", mock.Anything, "0xmsghash").Return(transfer, nil)
	m.transferRepo.On("Update", mock.Anything, transfer).Return(nil)

	err := uc.HandleTransferEvent(context.Background(), usecases.TransferEvent{
		Event:        usecases.EventTransferFailed,
		MessageHash:  "0xmsghash",
		ErrorMessage: "mint reverted",
	})

	require.NoError(t, err)
	assert.Equal(t, entities.TransferStatusFailed, transfer.Status)
	assert.Equal(t, "mint reverted", transfer.ErrorMessage.String)
}

func TestHandleTransferEvent_UnmatchedHashAcked(t *testing.T) {
	uc, m := newWebhookUsecase()
	m.transferRepo.On("GetByMessageHash", mock.Anything, "0xunknown").Return(nil, domainerrors.ErrNotFound)

	err := uc.HandleTransferEvent(context.Background(), usecases.TransferEvent{
		Event:       usecases.EventTransferCompleted,
		MessageHash: "0xunknown",
	})

	require.NoError(t, err)
	m.transferRepo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
}

func TestHandleTransferEvent_StaleUpdateDropped(t *testing.T) {
	uc, m := newWebhookUsecase()
	transfer := &entities.CrossChainTransfer{
		ID:          uuid.New(),
		MessageHash: null.StringFrom("0xmsghash"),
		Status:      entities.TransferStatusCompleted,
	}
	m.transferRepo.On("GetByMessageHash", mock.Anything, "0xmsghash").Return(transfer, nil)

	err := uc.HandleTransferEvent(context.Background(), usecases.TransferEvent{
		Event:       usecases.EventTransferCompleted,
		MessageHash: "0xmsghash",
	})

	require.NoError(t, err)
	m.transferRepo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
}

func TestHandleOperationEvent_RecordsResult(t *testing.T) {
	uc, m := newWebhookUsecase()
	m.recorder.On("RecordOperationResult", mock.Anything, "0xop", entities.OperationStatusCompleted, "0xtx", "").
		Return(nil)

	err := uc.HandleOperationEvent(context.Background(), "gas", usecases.OperationEvent{
		Event:         usecases.EventOperationComplete,
		OperationHash: "0xop",
		TxHash:        "0xtx",
	})

	require.NoError(t, err)
	m.recorder.AssertExpectations(t)
}

func TestHandleOperationEvent_UnknownHashAcked(t *testing.T) {
	uc, m := newWebhookUsecase()
	m.recorder.On("RecordOperationResult", mock.Anything, "0xmissing", entities.OperationStatusFailed, "", "reverted").
		Return(domainerrors.ErrNotFound)

	err := uc.HandleOperationEvent(context.Background(), "paymaster", usecases.OperationEvent{
		Event:         usecases.EventOperationFailed,
		OperationHash: "0xmissing",
		ErrorMessage:  "reverted",
	})

	require.NoError(t, err)
}

func TestHandleOperationEvent_UnknownEvent(t *testing.T) {
	uc, m := newWebhookUsecase()

	err := uc.HandleOperationEvent(context.Background(), "gas", usecases.OperationEvent{
		Event:         "operation.queued",
		OperationHash: "0xop",
	})

	assert.ErrorIs(t, err, domainerrors.ErrInvalidInput)
	m.recorder.AssertNotCalled(t, "RecordOperationResult", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}
