package usecases

import (
	"payroll-chain.backend/internal/domain/entities"
)

// Status transitions are forward-only. Webhooks and pollers replay and
// arrive out of order, so every write first consults these tables and a
// disallowed move is dropped rather than applied.

var runTransitions = map[entities.RunStatus][]entities.RunStatus{
	entities.RunStatusDraft:      {entities.RunStatusPending},
	entities.RunStatusPending:    {entities.RunStatusProcessing},
	entities.RunStatusProcessing: {entities.RunStatusCompleted, entities.RunStatusFailed},
}

var itemTransitions = map[entities.ItemStatus][]entities.ItemStatus{
	entities.ItemStatusPending:    {entities.ItemStatusProcessing, entities.ItemStatusFailed},
	entities.ItemStatusProcessing: {entities.ItemStatusSubmitted, entities.ItemStatusCompleted, entities.ItemStatusFailed},
	entities.ItemStatusSubmitted:  {entities.ItemStatusCompleted, entities.ItemStatusFailed},
}

var transferTransitions = map[entities.TransferStatus][]entities.TransferStatus{
	entities.TransferStatusPending:  {entities.TransferStatusAttested, entities.TransferStatusFailed},
	entities.TransferStatusAttested: {entities.TransferStatusCompleted, entities.TransferStatusFailed},
}

var operationTransitions = map[entities.OperationStatus][]entities.OperationStatus{
	entities.OperationStatusPending: {entities.OperationStatusCompleted, entities.OperationStatusFailed},
}

// CanTransitionRun reports whether a run may move from one status to another.
func CanTransitionRun(from, to entities.RunStatus) bool {
	for _, allowed := range runTransitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}

// CanTransitionItem reports whether an item may move from one status to another.
func CanTransitionItem(from, to entities.ItemStatus) bool {
	for _, allowed := range itemTransitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}

// CanTransitionTransfer reports whether a transfer may move between statuses.
func CanTransitionTransfer(from, to entities.TransferStatus) bool {
	for _, allowed := range transferTransitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}

// CanTransitionOperation reports whether a sponsored operation may move
// between statuses.
func CanTransitionOperation(from, to entities.OperationStatus) bool {
	for _, allowed := range operationTransitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}
