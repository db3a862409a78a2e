package sheets

import (
	"context"
	"time"

	"panini/internal/core"
)

// Ports for outbound adapters.
type (
	// LedgerMirror keeps an append-only copy of the ledger outside SQLite.
	// Edits append a fresh row for the same id; deletions append a tombstone.
	LedgerMirror interface {
		AppendTransaction(ctx context.Context, t core.TransactionDetail) (rowRef string, err error)
		AppendPayment(ctx context.Context, p core.PaymentDetail) (rowRef string, err error)
		AppendDeletion(ctx context.Context, entity, id string, at time.Time) (rowRef string, err error)
	}
)

// Entity names written to the mirror's deletion rows.
const (
	EntityTransaction = "transaction"
	EntityPayment     = "payment"
)
