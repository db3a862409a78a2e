package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"panini/internal/amqp"
	"panini/internal/core"
	"panini/internal/sheets"
)

// LedgerReader is the part of the repository the worker needs.
type LedgerReader interface {
	GetTransaction(ctx context.Context, id string) (core.TransactionDetail, error)
	GetPayment(ctx context.Context, id string) (core.PaymentDetail, error)
}

// SyncWorker mirrors ledger events from SQLite into a spreadsheet.
type SyncWorker struct {
	storage LedgerReader
	mirror  sheets.LedgerMirror
}

// NewSyncWorker mirrors entities read from storage into mirror.
func NewSyncWorker(storage LedgerReader, mirror sheets.LedgerMirror) *SyncWorker {
	return &SyncWorker{storage: storage, mirror: mirror}
}

// HandleEvent processes a single ledger event from AMQP. A returned error
// makes the consumer requeue the message.
func (w *SyncWorker) HandleEvent(ctx context.Context, e amqp.LedgerEvent) error {
	slog.InfoContext(ctx, "Processing ledger event",
		"kind", e.Kind,
		"entity_id", e.EntityID)

	var (
		ref string
		err error
	)
	switch e.Kind {
	case amqp.TransactionSaved:
		ref, err = w.syncTransaction(ctx, e.EntityID)
	case amqp.PaymentRecorded, amqp.PaymentUpdated:
		ref, err = w.syncPayment(ctx, e.EntityID)
	case amqp.TransactionDeleted:
		ref, err = w.mirror.AppendDeletion(ctx, sheets.EntityTransaction, e.EntityID, e.Timestamp)
	case amqp.PaymentDeleted:
		ref, err = w.mirror.AppendDeletion(ctx, sheets.EntityPayment, e.EntityID, e.Timestamp)
	default:
		slog.WarnContext(ctx, "Unknown ledger event kind, skipping", "kind", e.Kind)
		return nil
	}

	if errors.Is(err, core.ErrNotFound) {
		// Deleted before we got to it; the deletion event will follow.
		slog.WarnContext(ctx, "Ledger entity no longer exists, skipping",
			"kind", e.Kind,
			"entity_id", e.EntityID)
		return nil
	}
	if err != nil {
		return fmt.Errorf("mirror %s %s: %w", e.Kind, e.EntityID, err)
	}

	slog.InfoContext(ctx, "Successfully mirrored ledger event",
		"kind", e.Kind,
		"entity_id", e.EntityID,
		"sheets_ref", ref)
	return nil
}

func (w *SyncWorker) syncTransaction(ctx context.Context, id string) (string, error) {
	t, err := w.storage.GetTransaction(ctx, id)
	if err != nil {
		return "", err
	}
	return w.mirror.AppendTransaction(ctx, t)
}

func (w *SyncWorker) syncPayment(ctx context.Context, id string) (string, error) {
	p, err := w.storage.GetPayment(ctx, id)
	if err != nil {
		return "", err
	}
	return w.mirror.AppendPayment(ctx, p)
}
