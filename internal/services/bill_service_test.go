package services_test

import (
	"context"
	"errors"
	"testing"

	"bollette/internal/core"
	"bollette/internal/services"
	"bollette/internal/storage/memory"
)

const ownerID = int64(7)

type fixture struct {
	store   *memory.Store
	svc     *services.BillService
	bill    core.Bill
	account core.Account
}

func newFixture(t *testing.T, today core.Date) *fixture {
	t.Helper()
	ctx := context.Background()
	store := memory.New()

	account, err := store.CreateAccount(ctx, core.Account{OwnerID: ownerID, Name: "Checking", Balance: core.Money{Cents: 500000}})
	if err != nil {
		t.Fatalf("create account: %v", err)
	}
	category, err := store.CreateCategory(ctx, core.Category{OwnerID: ownerID, Name: "Housing", Kind: core.KindExpense})
	if err != nil {
		t.Fatalf("create category: %v", err)
	}

	svc := services.NewBillService(store, store, store, nil)
	services.SetToday(svc, func() core.Date { return today })

	bill, err := svc.CreateBill(ctx, core.Bill{
		OwnerID:    ownerID,
		Name:       "Rent",
		Amount:     core.Money{Cents: -120000},
		DueDate:    core.NewDate(2025, 1, 15),
		Frequency:  core.Monthly,
		CategoryID: category.ID,
		AccountID:  account.ID,
	})
	if err != nil {
		t.Fatalf("create bill: %v", err)
	}

	return &fixture{store: store, svc: svc, bill: bill, account: account}
}

func (f *fixture) balance(t *testing.T) int64 {
	t.Helper()
	acc, err := f.store.GetAccount(context.Background(), f.account.ID, ownerID)
	if err != nil {
		t.Fatalf("get account: %v", err)
	}
	return acc.Balance.Cents
}

func TestPayInstance(t *testing.T) {
	today := core.NewDate(2025, 2, 20)
	f := newFixture(t, today)
	ctx := context.Background()

	inst, err := f.svc.PayInstance(ctx, ownerID, f.bill.ID, core.NewDate(2025, 2, 15), core.NewDate(2025, 2, 18))
	if err != nil {
		t.Fatalf("PayInstance: %v", err)
	}

	if inst.Status != core.StatusPaid {
		t.Errorf("status = %s, want paid", inst.Status)
	}
	if inst.TransactionID == nil {
		t.Fatalf("paid instance has no transaction id")
	}
	if got := f.balance(t); got != 500000-120000 {
		t.Errorf("balance = %d, want %d", got, 500000-120000)
	}

	rec, err := f.store.GetRecord(ctx, *inst.TransactionID, ownerID)
	if err != nil {
		t.Fatalf("ledger record not created: %v", err)
	}
	if rec.Amount.Cents != -120000 || rec.Description != "Rent" {
		t.Errorf("ledger record = %+v", rec)
	}
	if rec.BillID == nil || *rec.BillID != f.bill.ID {
		t.Errorf("ledger record not linked to bill: %+v", rec)
	}
}

func TestPayInstanceTwiceRejected(t *testing.T) {
	today := core.NewDate(2025, 2, 20)
	f := newFixture(t, today)
	ctx := context.Background()
	target := core.NewDate(2025, 2, 15)

	if _, err := f.svc.PayInstance(ctx, ownerID, f.bill.ID, target, today); err != nil {
		t.Fatalf("first PayInstance: %v", err)
	}
	balanceAfterFirst := f.balance(t)

	_, err := f.svc.PayInstance(ctx, ownerID, f.bill.ID, target, today)
	if !errors.Is(err, core.ErrAlreadyPaid) {
		t.Fatalf("second PayInstance err = %v, want ErrAlreadyPaid", err)
	}
	if got := f.balance(t); got != balanceAfterFirst {
		t.Errorf("balance changed on rejected payment: %d -> %d", balanceAfterFirst, got)
	}
	if _, total, _ := f.store.ListRecords(ctx, ownerID, 0, 0); total != 1 {
		t.Errorf("ledger records = %d, want 1", total)
	}
}

func TestPayInstanceUsesOverriddenFields(t *testing.T) {
	today := core.NewDate(2025, 2, 20)
	f := newFixture(t, today)
	ctx := context.Background()
	target := core.NewDate(2025, 2, 15)

	discounted := core.Money{Cents: -90000}
	if _, err := f.svc.UpdateInstance(ctx, ownerID, f.bill.ID, target, core.InstancePatch{Amount: &discounted}, false); err != nil {
		t.Fatalf("UpdateInstance: %v", err)
	}

	inst, err := f.svc.PayInstance(ctx, ownerID, f.bill.ID, target, today)
	if err != nil {
		t.Fatalf("PayInstance: %v", err)
	}
	rec, err := f.store.GetRecord(ctx, *inst.TransactionID, ownerID)
	if err != nil {
		t.Fatalf("get record: %v", err)
	}
	if rec.Amount.Cents != -90000 {
		t.Errorf("ledger amount = %d, want overridden -90000", rec.Amount.Cents)
	}
	if got := f.balance(t); got != 500000-90000 {
		t.Errorf("balance = %d, want %d", got, 500000-90000)
	}
}

func TestPayThenCancelRoundTrips(t *testing.T) {
	today := core.NewDate(2025, 2, 10)
	f := newFixture(t, today)
	ctx := context.Background()
	target := core.NewDate(2025, 2, 15)

	startBalance := f.balance(t)

	paid, err := f.svc.PayInstance(ctx, ownerID, f.bill.ID, target, today)
	if err != nil {
		t.Fatalf("PayInstance: %v", err)
	}
	recordID := *paid.TransactionID

	inst, err := f.svc.CancelInstancePayment(ctx, ownerID, f.bill.ID, target)
	if err != nil {
		t.Fatalf("CancelInstancePayment: %v", err)
	}

	// 2025-02-15 is after today, so the occurrence reverts to upcoming.
	if inst.Status != core.StatusUpcoming {
		t.Errorf("status after cancel = %s, want upcoming", inst.Status)
	}
	if inst.TransactionID != nil || inst.PaidDate != nil {
		t.Errorf("payment state not cleared: %+v", inst)
	}
	if _, err := f.store.GetRecord(ctx, recordID, ownerID); !errors.Is(err, core.ErrNotFound) {
		t.Errorf("ledger record should be gone, err = %v", err)
	}
	if got := f.balance(t); got != startBalance {
		t.Errorf("net balance effect = %d, want 0", got-startBalance)
	}
}

func TestCancelUnpaidRejected(t *testing.T) {
	f := newFixture(t, core.NewDate(2025, 2, 10))

	_, err := f.svc.CancelInstancePayment(context.Background(), ownerID, f.bill.ID, core.NewDate(2025, 2, 15))
	if !errors.Is(err, core.ErrNotPaid) {
		t.Errorf("err = %v, want ErrNotPaid", err)
	}
}

func TestUpdatePaidInstancePatchesLedger(t *testing.T) {
	today := core.NewDate(2025, 2, 20)
	f := newFixture(t, today)
	ctx := context.Background()
	target := core.NewDate(2025, 2, 15)

	paid, err := f.svc.PayInstance(ctx, ownerID, f.bill.ID, target, today)
	if err != nil {
		t.Fatalf("PayInstance: %v", err)
	}

	corrected := core.Money{Cents: -110000}
	if _, err := f.svc.UpdateInstance(ctx, ownerID, f.bill.ID, target, core.InstancePatch{Amount: &corrected}, false); err != nil {
		t.Fatalf("UpdateInstance: %v", err)
	}

	rec, err := f.store.GetRecord(ctx, *paid.TransactionID, ownerID)
	if err != nil {
		t.Fatalf("get record: %v", err)
	}
	if rec.Amount.Cents != -110000 {
		t.Errorf("ledger amount = %d, want corrected -110000", rec.Amount.Cents)
	}
	// Balance reflects the correction delta (+10000 on an expense).
	if got := f.balance(t); got != 500000-110000 {
		t.Errorf("balance = %d, want %d", got, 500000-110000)
	}
}

func TestUpdateInstanceCascadeOverPaidRejected(t *testing.T) {
	today := core.NewDate(2025, 2, 20)
	f := newFixture(t, today)
	ctx := context.Background()
	target := core.NewDate(2025, 2, 15)

	if _, err := f.svc.PayInstance(ctx, ownerID, f.bill.ID, target, today); err != nil {
		t.Fatalf("PayInstance: %v", err)
	}

	amount := core.Money{Cents: -5000}
	_, err := f.svc.UpdateInstance(ctx, ownerID, f.bill.ID, target, core.InstancePatch{Amount: &amount}, true)
	if !errors.Is(err, core.ErrInvalidOperation) {
		t.Errorf("err = %v, want ErrInvalidOperation", err)
	}
}

func TestListInstancesSkipsEndedBills(t *testing.T) {
	today := core.NewDate(2025, 6, 1)
	f := newFixture(t, today)
	ctx := context.Background()

	end := core.NewDate(2025, 2, 28)
	ended, err := f.svc.CreateBill(ctx, core.Bill{
		OwnerID:    ownerID,
		Name:       "Old gym",
		Amount:     core.Money{Cents: -3000},
		DueDate:    core.NewDate(2025, 1, 1),
		EndDate:    &end,
		Frequency:  core.Monthly,
		CategoryID: 1,
		AccountID:  f.account.ID,
	})
	if err != nil {
		t.Fatalf("create ended bill: %v", err)
	}

	instances, err := f.svc.ListInstances(ctx, ownerID, core.NewDate(2025, 6, 1), core.NewDate(2025, 7, 1))
	if err != nil {
		t.Fatalf("ListInstances: %v", err)
	}
	for _, inst := range instances {
		if inst.BillID == ended.ID {
			t.Errorf("ended bill leaked into the window: %+v", inst)
		}
	}
}

func TestPayUnknownBill(t *testing.T) {
	f := newFixture(t, core.NewDate(2025, 2, 10))

	_, err := f.svc.PayInstance(context.Background(), ownerID, 9999, core.NewDate(2025, 2, 15), core.NewDate(2025, 2, 15))
	if !errors.Is(err, core.ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestDeleteInstance(t *testing.T) {
	today := core.NewDate(2025, 1, 1)
	f := newFixture(t, today)
	ctx := context.Background()

	if _, err := f.svc.DeleteInstance(ctx, ownerID, f.bill.ID, core.NewDate(2025, 2, 15), false); err != nil {
		t.Fatalf("DeleteInstance: %v", err)
	}

	instances, err := f.svc.ListInstances(ctx, ownerID, core.NewDate(2025, 1, 1), core.NewDate(2025, 4, 1))
	if err != nil {
		t.Fatalf("ListInstances: %v", err)
	}
	for _, inst := range instances {
		if inst.TargetDate.DayKey() == "2025-02-15" {
			t.Errorf("deleted occurrence still listed")
		}
	}
}
