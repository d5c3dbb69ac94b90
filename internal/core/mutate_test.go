package core

import (
	"errors"
	"testing"
)

func TestUpdateInstancePaidBlocksCascade(t *testing.T) {
	bill := monthlyBill()

	bill, err := bill.MarkPaid(NewDate(2025, 2, 15), NewDate(2025, 2, 14), 42)
	if err != nil {
		t.Fatalf("MarkPaid: %v", err)
	}

	_, err = bill.UpdateInstance(NewDate(2025, 2, 15), InstancePatch{Amount: ptrMoney(-5000)}, true)
	if !errors.Is(err, ErrInvalidOperation) {
		t.Errorf("cascading over a paid occurrence: err = %v, want ErrInvalidOperation", err)
	}

	// Occurrence-local edits of a paid occurrence remain legal.
	if _, err := bill.UpdateInstance(NewDate(2025, 2, 15), InstancePatch{Amount: ptrMoney(-5000)}, false); err != nil {
		t.Errorf("occurrence-local edit of paid occurrence: %v", err)
	}
}

func TestUpdateInstanceRejectsShapeChangeCascade(t *testing.T) {
	bill := monthlyBill()
	freq := Weekly

	tests := []struct {
		name  string
		patch InstancePatch
	}{
		{name: "endDate with applyToFuture", patch: InstancePatch{EndDate: ptrDate(NewDate(2025, 6, 1))}},
		{name: "frequency with applyToFuture", patch: InstancePatch{Frequency: &freq}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := bill.UpdateInstance(NewDate(2025, 2, 15), tt.patch, true); !errors.Is(err, ErrInvalidOperation) {
				t.Errorf("err = %v, want ErrInvalidOperation", err)
			}
		})
	}
}

func TestUpdateInstanceRejectsBackdatedDueDateCascade(t *testing.T) {
	bill := monthlyBill()

	// Cascading a due date behind its own occurrence would rewind the
	// generation cursor.
	patch := InstancePatch{DueDate: ptrDate(NewDate(2025, 1, 15))}
	if _, err := bill.UpdateInstance(NewDate(2025, 3, 15), patch, true); !errors.Is(err, ErrInvalidOperation) {
		t.Errorf("backdated cascade: err = %v, want ErrInvalidOperation", err)
	}

	// The same edit is fine without the cascade, and a forward shift is
	// fine with it.
	if _, err := bill.UpdateInstance(NewDate(2025, 3, 15), patch, false); err != nil {
		t.Errorf("occurrence-local backdate: %v", err)
	}
	forward := InstancePatch{DueDate: ptrDate(NewDate(2025, 3, 20))}
	if _, err := bill.UpdateInstance(NewDate(2025, 3, 15), forward, true); err != nil {
		t.Errorf("forward cascade: %v", err)
	}
}

func TestUpdateInstancePrunesOnlyUnpaidFutureOverrides(t *testing.T) {
	bill := monthlyBill()

	bill, err := bill.UpdateInstance(NewDate(2025, 3, 15), InstancePatch{Amount: ptrMoney(-111)}, false)
	if err != nil {
		t.Fatalf("seed March: %v", err)
	}
	bill, err = bill.MarkPaid(NewDate(2025, 4, 15), NewDate(2025, 4, 10), 99)
	if err != nil {
		t.Fatalf("pay April: %v", err)
	}

	bill, err = bill.UpdateInstance(NewDate(2025, 2, 15), InstancePatch{Amount: ptrMoney(-222)}, true)
	if err != nil {
		t.Fatalf("cascade: %v", err)
	}

	if _, ok := bill.Overrides["2025-03-15"]; ok {
		t.Errorf("unpaid future override should be pruned")
	}
	if _, ok := bill.Overrides["2025-04-15"]; !ok {
		t.Errorf("paid future override must survive the cascade")
	}
}

func TestUpdateInstanceDoesNotAliasReceiver(t *testing.T) {
	orig := monthlyBill()
	orig.Overrides = map[string]Override{
		"2025-03-15": {Amount: ptrMoney(-111)},
	}

	_, err := orig.UpdateInstance(NewDate(2025, 2, 15), InstancePatch{Amount: ptrMoney(-222)}, true)
	if err != nil {
		t.Fatalf("UpdateInstance: %v", err)
	}

	if _, ok := orig.Overrides["2025-03-15"]; !ok {
		t.Errorf("receiver's override map was mutated")
	}
	if _, ok := orig.Overrides["2025-02-15"]; ok {
		t.Errorf("receiver's override map gained the new override")
	}
}

func TestUpdateInstanceMergesOverExisting(t *testing.T) {
	bill := monthlyBill()

	bill, err := bill.UpdateInstance(NewDate(2025, 2, 15), InstancePatch{Name: ptrStr("Rent (new lease)")}, false)
	if err != nil {
		t.Fatalf("first edit: %v", err)
	}
	bill, err = bill.UpdateInstance(NewDate(2025, 2, 15), InstancePatch{Amount: ptrMoney(-130000)}, false)
	if err != nil {
		t.Fatalf("second edit: %v", err)
	}

	ov := bill.Overrides["2025-02-15"]
	if ov.Name == nil || *ov.Name != "Rent (new lease)" {
		t.Errorf("earlier field lost in merge: %+v", ov)
	}
	if ov.Amount == nil || ov.Amount.Cents != -130000 {
		t.Errorf("later field not applied: %+v", ov)
	}
}

func TestMarkPaidTwiceFails(t *testing.T) {
	bill := monthlyBill()

	bill, err := bill.MarkPaid(NewDate(2025, 2, 15), NewDate(2025, 2, 14), 42)
	if err != nil {
		t.Fatalf("first MarkPaid: %v", err)
	}
	if _, err := bill.MarkPaid(NewDate(2025, 2, 15), NewDate(2025, 2, 16), 43); !errors.Is(err, ErrAlreadyPaid) {
		t.Errorf("second MarkPaid err = %v, want ErrAlreadyPaid", err)
	}
}

func TestClearPayment(t *testing.T) {
	bill := monthlyBill()

	if _, _, err := bill.ClearPayment(NewDate(2025, 2, 15)); !errors.Is(err, ErrNotPaid) {
		t.Errorf("ClearPayment on unpaid occurrence: err = %v, want ErrNotPaid", err)
	}

	bill, err := bill.UpdateInstance(NewDate(2025, 2, 15), InstancePatch{Amount: ptrMoney(-60000)}, false)
	if err != nil {
		t.Fatalf("amount edit: %v", err)
	}
	bill, err = bill.MarkPaid(NewDate(2025, 2, 15), NewDate(2025, 2, 14), 42)
	if err != nil {
		t.Fatalf("MarkPaid: %v", err)
	}

	bill, txnID, err := bill.ClearPayment(NewDate(2025, 2, 15))
	if err != nil {
		t.Fatalf("ClearPayment: %v", err)
	}
	if txnID != 42 {
		t.Errorf("transaction id = %d, want 42", txnID)
	}

	ov := bill.Overrides["2025-02-15"]
	if ov.IsPaid || ov.PaidDate != nil || ov.TransactionID != nil {
		t.Errorf("payment state not cleared: %+v", ov)
	}
	if ov.Amount == nil || ov.Amount.Cents != -60000 {
		t.Errorf("prior amount edit must be retained: %+v", ov)
	}

	inst := bill.InstanceAt(NewDate(2025, 2, 15), NewDate(2025, 3, 1))
	if inst.Status != StatusOverdue {
		t.Errorf("status after cancel = %s, want overdue for a past date", inst.Status)
	}
}
