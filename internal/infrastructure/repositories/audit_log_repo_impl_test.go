package repositories

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"payroll-chain.backend/internal/domain/entities"
)

func TestAuditLogRepository_CreateAndGetByRunID(t *testing.T) {
	db := newTestDB(t)
	createAuditLogTable(t, db)
	repo := NewAuditLogRepository(db)
	ctx := context.Background()

	runID := uuid.New()
	workerID := uuid.New()
	base := time.Now().Add(-time.Minute)

	first := &entities.AuditLog{
		ID:        uuid.New(),
		EventType: entities.AuditEventRunCreated,
		RunID:     &runID,
		Payload:   `{"totalAmount":"15.75"}`,
		CreatedAt: base,
	}
	second := &entities.AuditLog{
		ID:        uuid.New(),
		EventType: entities.AuditEventPayoutStatusChange,
		RunID:     &runID,
		WorkerID:  &workerID,
		CreatedAt: base.Add(time.Second),
	}
	unrelated := &entities.AuditLog{
		ID:        uuid.New(),
		EventType: entities.AuditEventTransferInitiated,
		WorkerID:  &workerID,
		CreatedAt: base,
	}
	require.NoError(t, repo.Create(ctx, second))
	require.NoError(t, repo.Create(ctx, first))
	require.NoError(t, repo.Create(ctx, unrelated))

	logs, err := repo.GetByRunID(ctx, runID)
	require.NoError(t, err)
	require.Len(t, logs, 2)
	require.Equal(t, first.ID, logs[0].ID)
	require.Equal(t, second.ID, logs[1].ID)
	require.Equal(t, `{"totalAmount":"15.75"}`, logs[0].Payload)
	// An empty payload is stored as an empty JSON object.
	require.Equal(t, "{}", logs[1].Payload)

	none, err := repo.GetByRunID(ctx, uuid.New())
	require.NoError(t, err)
	require.Empty(t, none)
}
