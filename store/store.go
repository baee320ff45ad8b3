/*
Package store defines the persistence interface for practices, entries, and
payment instruments.

PURPOSE:
  The engine itself is pure - it computes over caller-supplied snapshots and
  never fetches or persists anything. The Store is the surrounding layer
  that owns those snapshots: the API reads complete collections out of it
  and hands them to the engine.

IMPLEMENTATIONS:
  - store.Memory: in-memory, for tests and development
  - store/sqlite: SQLite-backed, for production

ID MINTING:
  Records saved without an ID get a generated UUID; the assigned ID is
  written back through the Save* return value.
*/
package store

import (
	"context"

	"github.com/google/uuid"

	"github.com/chairside/practice-engine/engine"
)

// =============================================================================
// STORE INTERFACE
// =============================================================================

// Store persists the collections the reconciliation engine computes over.
// Reads return complete snapshots; the engine never sees the store.
type Store interface {
	// Practices
	SavePractice(ctx context.Context, p engine.Practice) (engine.Practice, error)
	Practice(ctx context.Context, id engine.PracticeID) (engine.Practice, error)
	Practices(ctx context.Context) ([]engine.Practice, error)
	DeletePractice(ctx context.Context, id engine.PracticeID) error

	// Entries
	SaveEntry(ctx context.Context, e engine.Entry) (engine.Entry, error)
	Entries(ctx context.Context, practiceID engine.PracticeID) ([]engine.Entry, error)
	AllEntries(ctx context.Context) ([]engine.Entry, error)
	DeleteEntry(ctx context.Context, id string) error

	// Payment instruments
	SaveCheque(ctx context.Context, c engine.Cheque) (engine.Cheque, error)
	SaveDirectDeposit(ctx context.Context, d engine.DirectDeposit) (engine.DirectDeposit, error)
	SaveETransfer(ctx context.Context, t engine.ETransfer) (engine.ETransfer, error)
	Cheques(ctx context.Context) ([]engine.Cheque, error)
	DirectDeposits(ctx context.Context) ([]engine.DirectDeposit, error)
	ETransfers(ctx context.Context) ([]engine.ETransfer, error)
	DeletePayment(ctx context.Context, id string) error

	// Reset clears all data (for testing/demo).
	Reset(ctx context.Context) error
}

// MintID returns a fresh record ID.
func MintID() string {
	return uuid.NewString()
}

// ensureID returns the given ID, or a fresh one when empty.
func ensureID(id string) string {
	if id != "" {
		return id
	}
	return MintID()
}
