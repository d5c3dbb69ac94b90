// Package worker pushes recorded bill payments from the ledger to the
// configured spreadsheet, driven by AMQP events with a periodic
// backfill for anything the queue missed.
package worker

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"bollette/internal/amqp"
	"bollette/internal/core"
	"bollette/internal/export"
)

// ExportStore is the slice of the ledger the worker needs: reading
// records and tracking their export state.
type ExportStore interface {
	GetRecord(ctx context.Context, recordID, ownerID int64) (core.LedgerRecord, error)
	ListPendingExports(ctx context.Context, limit int) ([]core.LedgerRecord, error)
	MarkExported(ctx context.Context, recordID int64) error
	MarkExportError(ctx context.Context, recordID int64) error
}

// ExportWorker consumes payment events and mirrors them to the
// spreadsheet. Ledger rows carry an export status so lost messages are
// recovered by the periodic backfill.
type ExportWorker struct {
	store     ExportStore
	payments  export.PaymentWriter
	reversals export.ReversalWriter
	batchSize int
}

func NewExportWorker(store ExportStore, payments export.PaymentWriter, reversals export.ReversalWriter, batchSize int) *ExportWorker {
	return &ExportWorker{
		store:     store,
		payments:  payments,
		reversals: reversals,
		batchSize: batchSize,
	}
}

// HandlePaymentEvent processes a single payment event from AMQP.
func (w *ExportWorker) HandlePaymentEvent(ctx context.Context, msg *amqp.PaymentEventMessage) error {
	slog.InfoContext(ctx, "Processing payment event",
		"kind", msg.Kind,
		"transaction_id", msg.TransactionID)

	switch msg.Kind {
	case amqp.EventPaymentRecorded:
		rec, err := w.store.GetRecord(ctx, msg.TransactionID, msg.OwnerID)
		if err != nil {
			return fmt.Errorf("get ledger record: %w", err)
		}
		return w.exportRecord(ctx, rec.ID, rec)
	case amqp.EventPaymentCancelled:
		if w.reversals == nil {
			slog.WarnContext(ctx, "No reversal writer configured, skipping cancellation export",
				"transaction_id", msg.TransactionID)
			return nil
		}
		ref, err := w.reversals.AppendReversal(ctx, msg.TransactionID, msg.OwnerID)
		if err != nil {
			return fmt.Errorf("append reversal: %w", err)
		}
		slog.InfoContext(ctx, "Exported payment reversal",
			"transaction_id", msg.TransactionID,
			"sheets_ref", ref)
		return nil
	default:
		// Unknown kinds are dropped; requeueing would loop forever.
		slog.WarnContext(ctx, "Dropping payment event of unknown kind", "kind", msg.Kind)
		return nil
	}
}

// ProcessPendingExports pushes any records that have not been exported
// yet. This is the backup path for lost AMQP messages.
func (w *ExportWorker) ProcessPendingExports(ctx context.Context) error {
	pending, err := w.store.ListPendingExports(ctx, w.batchSize)
	if err != nil {
		return fmt.Errorf("list pending exports: %w", err)
	}
	if len(pending) == 0 {
		return nil
	}

	slog.InfoContext(ctx, "Processing pending exports", "count", len(pending))
	for _, rec := range pending {
		if err := w.exportRecord(ctx, rec.ID, rec); err != nil {
			slog.ErrorContext(ctx, "Failed to export ledger record", "transaction_id", rec.ID, "error", err)
			continue
		}
	}
	return nil
}

// StartupExportCheck drains the pending backlog at worker startup,
// recovering from missed messages or worker downtime.
func (w *ExportWorker) StartupExportCheck(ctx context.Context) error {
	pending, err := w.store.ListPendingExports(ctx, w.batchSize*5)
	if err != nil {
		return fmt.Errorf("list pending exports for startup check: %w", err)
	}
	if len(pending) == 0 {
		slog.InfoContext(ctx, "No pending exports found on startup")
		return nil
	}

	slog.InfoContext(ctx, "Found pending exports on startup, processing...",
		"count", len(pending))

	successCount := 0
	errorCount := 0
	for _, rec := range pending {
		if err := w.exportRecord(ctx, rec.ID, rec); err != nil {
			slog.ErrorContext(ctx, "Failed to export ledger record during startup",
				"transaction_id", rec.ID, "error", err)
			errorCount++
			continue
		}
		successCount++
	}

	slog.InfoContext(ctx, "Startup export check completed",
		"total", len(pending),
		"exported", successCount,
		"errors", errorCount)
	return nil
}

func (w *ExportWorker) exportRecord(ctx context.Context, id int64, rec core.LedgerRecord) error {
	ref, err := w.payments.AppendPayment(ctx, rec)
	if err != nil {
		if markErr := w.store.MarkExportError(ctx, id); markErr != nil {
			slog.ErrorContext(ctx, "Failed to mark export error", "transaction_id", id, "error", markErr)
		}
		return fmt.Errorf("append payment: %w", err)
	}

	if err := w.store.MarkExported(ctx, id); err != nil {
		// The export itself worked; don't fail the event over bookkeeping.
		slog.ErrorContext(ctx, "Failed to mark as exported", "transaction_id", id, "error", err)
	}

	slog.InfoContext(ctx, "Exported ledger record",
		"transaction_id", id,
		"sheets_ref", ref,
		"description", rec.Description,
		"amount_cents", rec.Amount.Cents)
	return nil
}

// Run consumes payment events and runs the periodic backfill until the
// context ends. Either loop failing stops the other.
func (w *ExportWorker) Run(ctx context.Context, client *amqp.Client, backfillInterval time.Duration) error {
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return client.ConsumePaymentEvents(ctx, func(msg *amqp.PaymentEventMessage) error {
			return w.HandlePaymentEvent(ctx, msg)
		})
	})

	g.Go(func() error {
		ticker := time.NewTicker(backfillInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-ticker.C:
				if err := w.ProcessPendingExports(ctx); err != nil {
					slog.ErrorContext(ctx, "Periodic export failed", "error", err)
				}
			}
		}
	})

	return g.Wait()
}
