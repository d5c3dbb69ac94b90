package services

import (
	"context"
	"fmt"
	"log/slog"

	"bollette/internal/core"
)

// BillService orchestrates the recurring-bill engine: materialization
// on read, and the pay / cancel / edit workflows that must mutate the
// bill aggregate and the ledger as one atomic unit.
type BillService struct {
	bills  BillStore
	ledger Ledger
	uow    UnitOfWork
	events PaymentEvents

	// today is a hook for tests; defaults to the current UTC day.
	today func() core.Date
}

func NewBillService(bills BillStore, ledger Ledger, uow UnitOfWork, events PaymentEvents) *BillService {
	return &BillService{
		bills:  bills,
		ledger: ledger,
		uow:    uow,
		events: events,
		today:  core.Today,
	}
}

// CreateBill validates and persists a new bill definition.
func (s *BillService) CreateBill(ctx context.Context, b core.Bill) (core.Bill, error) {
	if err := b.Validate(); err != nil {
		return core.Bill{}, err
	}
	created, err := s.bills.CreateBill(ctx, b)
	if err != nil {
		return core.Bill{}, fmt.Errorf("create bill: %w", err)
	}
	slog.InfoContext(ctx, "Bill created",
		"bill_id", created.ID,
		"name", created.Name,
		"frequency", created.Frequency,
		"due_date", created.DueDate.DayKey())
	return created, nil
}

// GetBill loads one bill definition by id and owner.
func (s *BillService) GetBill(ctx context.Context, billID, ownerID int64) (core.Bill, error) {
	return s.bills.GetBill(ctx, billID, ownerID)
}

// DeleteBill removes the whole definition, overrides included. Ledger
// records created by past payments are kept; they are history.
func (s *BillService) DeleteBill(ctx context.Context, billID, ownerID int64) error {
	return s.bills.DeleteBill(ctx, billID, ownerID)
}

// ListInstances materializes every bill of the owner over the window,
// each bill contributing its carried-over overdue occurrences first.
func (s *BillService) ListInstances(ctx context.Context, ownerID int64, rangeStart, rangeEnd core.Date) ([]core.Instance, error) {
	bills, err := s.bills.ListBills(ctx, ownerID, rangeStart)
	if err != nil {
		return nil, fmt.Errorf("list bills: %w", err)
	}

	today := s.today()
	instances := make([]core.Instance, 0, len(bills))
	for _, b := range bills {
		instances = append(instances, b.Instances(rangeStart, rangeEnd, today)...)
	}

	slog.DebugContext(ctx, "Materialized bill instances",
		"owner_id", ownerID,
		"bills", len(bills),
		"instances", len(instances),
		"range_start", rangeStart.DayKey(),
		"range_end", rangeEnd.DayKey())
	return instances, nil
}

// PayInstance records a payment for one occurrence: a ledger record is
// created (adjusting the account balance) and the payment override is
// written, both inside one unit of work. A failure in either step
// rolls back the whole unit.
func (s *BillService) PayInstance(ctx context.Context, ownerID, billID int64, targetDate, paidDate core.Date) (core.Instance, error) {
	var (
		inst   core.Instance
		record core.LedgerRecord
	)

	err := s.uow.Within(ctx, func(ctx context.Context) error {
		bill, err := s.bills.GetBill(ctx, billID, ownerID)
		if err != nil {
			return err
		}

		today := s.today()
		effective := bill.InstanceAt(targetDate, today)
		if effective.Status == core.StatusPaid {
			return core.ErrAlreadyPaid
		}

		billID := bill.ID
		record = core.LedgerRecord{
			OwnerID:     ownerID,
			Amount:      effective.Amount,
			Date:        paidDate,
			Description: effective.Name,
			AccountID:   effective.AccountID,
			CategoryID:  effective.CategoryID,
			BillID:      &billID,
		}
		recordID, err := s.ledger.CreateRecord(ctx, record)
		if err != nil {
			return fmt.Errorf("%w: create ledger record: %v", core.ErrDependencyFailure, err)
		}
		record.ID = recordID

		updated, err := bill.MarkPaid(targetDate, paidDate, recordID)
		if err != nil {
			return err
		}
		if err := s.bills.SaveBill(ctx, updated); err != nil {
			return fmt.Errorf("save bill: %w", err)
		}

		inst = updated.InstanceAt(targetDate, today)
		return nil
	})
	if err != nil {
		return core.Instance{}, err
	}

	slog.InfoContext(ctx, "Bill instance paid",
		"bill_id", billID,
		"target_date", targetDate.DayKey(),
		"paid_date", paidDate.DayKey(),
		"amount_cents", record.Amount.Cents,
		"transaction_id", record.ID)
	s.publishRecorded(ctx, record)
	return inst, nil
}

// CancelInstancePayment reverses a recorded payment: the ledger record
// is deleted (restoring the account balance) and the payment state is
// cleared from the override, other override fields retained.
func (s *BillService) CancelInstancePayment(ctx context.Context, ownerID, billID int64, targetDate core.Date) (core.Instance, error) {
	var (
		inst     core.Instance
		recordID int64
	)

	err := s.uow.Within(ctx, func(ctx context.Context) error {
		bill, err := s.bills.GetBill(ctx, billID, ownerID)
		if err != nil {
			return err
		}

		updated, txnID, err := bill.ClearPayment(targetDate)
		if err != nil {
			return err
		}
		recordID = txnID

		if err := s.ledger.DeleteRecord(ctx, txnID, ownerID); err != nil {
			return fmt.Errorf("%w: delete ledger record: %v", core.ErrDependencyFailure, err)
		}
		if err := s.bills.SaveBill(ctx, updated); err != nil {
			return fmt.Errorf("save bill: %w", err)
		}

		inst = updated.InstanceAt(targetDate, s.today())
		return nil
	})
	if err != nil {
		return core.Instance{}, err
	}

	slog.InfoContext(ctx, "Bill payment cancelled",
		"bill_id", billID,
		"target_date", targetDate.DayKey(),
		"transaction_id", recordID)
	s.publishCancelled(ctx, recordID, ownerID)
	return inst, nil
}

// UpdateInstance edits one occurrence, optionally cascading to all
// future occurrences. When the targeted occurrence is already paid and
// the edit touches amount, account or category, the existing ledger
// record is patched in the same unit so the visible state and the
// ledger never diverge.
func (s *BillService) UpdateInstance(ctx context.Context, ownerID, billID int64, targetDate core.Date, patch core.InstancePatch, applyToFuture bool) (core.Instance, error) {
	var inst core.Instance

	err := s.uow.Within(ctx, func(ctx context.Context) error {
		bill, err := s.bills.GetBill(ctx, billID, ownerID)
		if err != nil {
			return err
		}

		updated, err := bill.UpdateInstance(targetDate, patch, applyToFuture)
		if err != nil {
			return err
		}

		inst = updated.InstanceAt(targetDate, s.today())
		if inst.Status == core.StatusPaid && patch.TouchesLedger() && inst.TransactionID != nil {
			ledgerPatch := LedgerPatch{
				Amount:     patch.Amount,
				AccountID:  patch.AccountID,
				CategoryID: patch.CategoryID,
			}
			if err := s.ledger.UpdateRecord(ctx, *inst.TransactionID, ownerID, ledgerPatch); err != nil {
				return fmt.Errorf("%w: update ledger record: %v", core.ErrDependencyFailure, err)
			}
		}

		if err := s.bills.SaveBill(ctx, updated); err != nil {
			return fmt.Errorf("save bill: %w", err)
		}
		return nil
	})
	if err != nil {
		return core.Instance{}, err
	}

	slog.InfoContext(ctx, "Bill instance updated",
		"bill_id", billID,
		"target_date", targetDate.DayKey(),
		"apply_to_future", applyToFuture)
	return inst, nil
}

// DeleteInstance suppresses one occurrence (or, with applyToFuture, the
// occurrence and everything after it) by writing a deletion override.
// A paid occurrence stays visible; its money already moved.
func (s *BillService) DeleteInstance(ctx context.Context, ownerID, billID int64, targetDate core.Date, applyToFuture bool) (core.Instance, error) {
	deleted := true
	return s.UpdateInstance(ctx, ownerID, billID, targetDate, core.InstancePatch{IsDeleted: &deleted}, applyToFuture)
}

func (s *BillService) publishRecorded(ctx context.Context, rec core.LedgerRecord) {
	if s.events == nil {
		return
	}
	if err := s.events.PublishPaymentRecorded(ctx, rec); err != nil {
		// The payment is committed; the export worker backfills later.
		slog.ErrorContext(ctx, "Failed to publish payment event",
			"transaction_id", rec.ID, "error", err)
	}
}

func (s *BillService) publishCancelled(ctx context.Context, recordID, ownerID int64) {
	if s.events == nil {
		return
	}
	if err := s.events.PublishPaymentCancelled(ctx, recordID, ownerID); err != nil {
		slog.ErrorContext(ctx, "Failed to publish payment cancellation event",
			"transaction_id", recordID, "error", err)
	}
}
