package core

import "testing"

func monthlyBill() Bill {
	return Bill{
		ID:         1,
		OwnerID:    7,
		Name:       "Rent",
		Amount:     Money{Cents: -120000},
		DueDate:    NewDate(2025, 1, 15),
		Frequency:  Monthly,
		CategoryID: 3,
		AccountID:  5,
	}
}

func ptrMoney(cents int64) *Money { m := Money{Cents: cents}; return &m }
func ptrDate(d Date) *Date        { return &d }
func ptrStr(s string) *string     { return &s }
func ptrInt64(v int64) *int64     { return &v }

func TestInstancesMonthlyNoOverrides(t *testing.T) {
	bill := monthlyBill()
	today := NewDate(2025, 1, 1)

	got := bill.Instances(NewDate(2025, 1, 1), NewDate(2025, 4, 1), today)

	wantDates := []string{"2025-01-15", "2025-02-15", "2025-03-15"}
	if len(got) != len(wantDates) {
		t.Fatalf("got %d instances, want %d", len(got), len(wantDates))
	}
	for i, inst := range got {
		if inst.TargetDate.DayKey() != wantDates[i] {
			t.Errorf("instance %d targetDate = %s, want %s", i, inst.TargetDate.DayKey(), wantDates[i])
		}
		if inst.Amount != bill.Amount {
			t.Errorf("instance %d amount = %d, want %d", i, inst.Amount.Cents, bill.Amount.Cents)
		}
		if inst.Status == StatusPaid {
			t.Errorf("instance %d unexpectedly paid", i)
		}
	}
	if got[0].Status != StatusOverdue && got[0].Status != StatusDue && got[0].Status != StatusUpcoming {
		t.Errorf("instance 0 has no derived status: %s", got[0].Status)
	}
}

func TestInstancesRespectsEndDate(t *testing.T) {
	bill := monthlyBill()
	bill.EndDate = ptrDate(NewDate(2025, 2, 28))

	got := bill.Instances(NewDate(2025, 1, 1), NewDate(2025, 12, 31), NewDate(2025, 1, 1))
	if len(got) != 2 {
		t.Fatalf("got %d instances, want 2 (end date is inclusive bound)", len(got))
	}
	if got[1].TargetDate.DayKey() != "2025-02-15" {
		t.Errorf("last instance = %s, want 2025-02-15", got[1].TargetDate.DayKey())
	}
}

func TestInstancesOnceTerminates(t *testing.T) {
	bill := monthlyBill()
	bill.Frequency = Once

	got := bill.Instances(NewDate(2020, 1, 1), NewDate(2125, 1, 1), NewDate(2025, 1, 1))
	if len(got) != 1 {
		t.Fatalf("ONCE bill yielded %d instances, want exactly 1", len(got))
	}
}

func TestInstancesApplyToFutureShiftsBaseline(t *testing.T) {
	bill := monthlyBill()
	today := NewDate(2025, 1, 1)

	updated, err := bill.UpdateInstance(NewDate(2025, 2, 15), InstancePatch{Amount: ptrMoney(-20000)}, true)
	if err != nil {
		t.Fatalf("UpdateInstance: %v", err)
	}

	got := updated.Instances(NewDate(2025, 1, 1), NewDate(2025, 5, 1), today)
	if len(got) != 4 {
		t.Fatalf("got %d instances, want 4", len(got))
	}
	if got[0].Amount.Cents != -120000 {
		t.Errorf("January keeps original amount, got %d", got[0].Amount.Cents)
	}
	for i, inst := range got[1:] {
		if inst.Amount.Cents != -20000 {
			t.Errorf("instance %d amount = %d, want shifted baseline -20000", i+1, inst.Amount.Cents)
		}
	}
}

func TestInstancesApplyToFutureSupersedesLaterOverride(t *testing.T) {
	bill := monthlyBill()

	// Pre-existing unpaid amount edit on April.
	bill, err := bill.UpdateInstance(NewDate(2025, 4, 15), InstancePatch{Amount: ptrMoney(-999)}, false)
	if err != nil {
		t.Fatalf("seed April override: %v", err)
	}

	bill, err = bill.UpdateInstance(NewDate(2025, 2, 15), InstancePatch{Amount: ptrMoney(-20000)}, true)
	if err != nil {
		t.Fatalf("cascade from February: %v", err)
	}

	if _, ok := bill.Overrides["2025-04-15"]; ok {
		t.Errorf("unpaid April override should have been superseded")
	}

	got := bill.Instances(NewDate(2025, 4, 1), NewDate(2025, 5, 1), NewDate(2025, 1, 1))
	if len(got) != 1 || got[0].Amount.Cents != -20000 {
		t.Errorf("April instance should carry the cascaded amount, got %+v", got)
	}
}

func TestInstancesBackdatedCascadeOverrideTerminates(t *testing.T) {
	// UpdateInstance rejects this shape, but persisted data is not
	// guaranteed to have gone through it. The walk must still end.
	bill := monthlyBill()
	bill.Overrides = map[string]Override{
		"2025-03-15": {DueDate: ptrDate(NewDate(2025, 1, 15)), ApplyToFuture: true},
	}

	got := bill.Instances(NewDate(2025, 1, 1), NewDate(2025, 6, 1), NewDate(2025, 1, 1))

	wantDates := []string{"2025-01-15", "2025-02-15", "2025-03-15", "2025-04-15", "2025-05-15"}
	if len(got) != len(wantDates) {
		t.Fatalf("got %d instances, want %d", len(got), len(wantDates))
	}
	for i, inst := range got {
		if inst.TargetDate.DayKey() != wantDates[i] {
			t.Errorf("instance %d targetDate = %s, want %s", i, inst.TargetDate.DayKey(), wantDates[i])
		}
	}
	// The override still shows its due date on the one occurrence it names.
	if got[2].DueDate.DayKey() != "2025-01-15" {
		t.Errorf("March effective due date = %s, want 2025-01-15", got[2].DueDate.DayKey())
	}
}

func TestInstancesOverdueCarryOver(t *testing.T) {
	bill := monthlyBill()
	today := NewDate(2025, 3, 20)

	// Window starts in March; the unpaid January and February
	// occurrences precede it but are overdue.
	got := bill.Instances(NewDate(2025, 3, 1), NewDate(2025, 4, 1), today)
	if len(got) != 3 {
		t.Fatalf("got %d instances, want 3 (2 carried over + 1 in range)", len(got))
	}
	if got[0].TargetDate.DayKey() != "2025-01-15" || got[0].Status != StatusOverdue {
		t.Errorf("first carried-over instance = %s/%s", got[0].TargetDate.DayKey(), got[0].Status)
	}
	if got[2].TargetDate.DayKey() != "2025-03-15" {
		t.Errorf("in-range instance = %s, want 2025-03-15", got[2].TargetDate.DayKey())
	}

	// Paying January removes it from the carried-over bucket.
	paid, err := bill.MarkPaid(NewDate(2025, 1, 15), NewDate(2025, 3, 19), 42)
	if err != nil {
		t.Fatalf("MarkPaid: %v", err)
	}
	got = paid.Instances(NewDate(2025, 3, 1), NewDate(2025, 4, 1), today)
	if len(got) != 2 {
		t.Fatalf("after payment got %d instances, want 2", len(got))
	}
	if got[0].TargetDate.DayKey() != "2025-02-15" {
		t.Errorf("carried-over bucket should start at February, got %s", got[0].TargetDate.DayKey())
	}
}

func TestInstancesDeletedOccurrence(t *testing.T) {
	bill := monthlyBill()
	deleted := true

	bill, err := bill.UpdateInstance(NewDate(2025, 2, 15), InstancePatch{IsDeleted: &deleted}, false)
	if err != nil {
		t.Fatalf("UpdateInstance: %v", err)
	}

	got := bill.Instances(NewDate(2025, 1, 1), NewDate(2025, 4, 1), NewDate(2025, 1, 1))
	for _, inst := range got {
		if inst.TargetDate.DayKey() == "2025-02-15" {
			t.Errorf("deleted occurrence still emitted")
		}
	}
	if len(got) != 2 {
		t.Errorf("got %d instances, want 2 (deletion advances the date but skips emission)", len(got))
	}
}

func TestInstancesPaidThenDeletedStaysVisible(t *testing.T) {
	bill := monthlyBill()

	bill, err := bill.MarkPaid(NewDate(2025, 2, 15), NewDate(2025, 2, 15), 42)
	if err != nil {
		t.Fatalf("MarkPaid: %v", err)
	}
	deleted := true
	bill, err = bill.UpdateInstance(NewDate(2025, 2, 15), InstancePatch{IsDeleted: &deleted}, false)
	if err != nil {
		t.Fatalf("UpdateInstance: %v", err)
	}

	got := bill.Instances(NewDate(2025, 2, 1), NewDate(2025, 3, 1), NewDate(2025, 3, 1))
	if len(got) != 1 {
		t.Fatalf("got %d instances, want 1 (money already moved, occurrence stays visible)", len(got))
	}
	if got[0].Status != StatusPaid {
		t.Errorf("status = %s, want paid", got[0].Status)
	}
}

func TestInstancesOverrideDueDateKeepsStableKey(t *testing.T) {
	bill := monthlyBill()

	bill, err := bill.UpdateInstance(NewDate(2025, 2, 15), InstancePatch{DueDate: ptrDate(NewDate(2025, 2, 20))}, false)
	if err != nil {
		t.Fatalf("UpdateInstance: %v", err)
	}

	got := bill.Instances(NewDate(2025, 2, 1), NewDate(2025, 3, 1), NewDate(2025, 1, 1))
	if len(got) != 1 {
		t.Fatalf("got %d instances, want 1", len(got))
	}
	if got[0].TargetDate.DayKey() != "2025-02-15" {
		t.Errorf("targetDate must stay the original key, got %s", got[0].TargetDate.DayKey())
	}
	if got[0].DueDate.DayKey() != "2025-02-20" {
		t.Errorf("effective due date = %s, want 2025-02-20", got[0].DueDate.DayKey())
	}
}

func TestInstanceAt(t *testing.T) {
	bill := monthlyBill()
	today := NewDate(2025, 2, 15)

	inst := bill.InstanceAt(NewDate(2025, 2, 15), today)
	if inst.Status != StatusDue {
		t.Errorf("status = %s, want due", inst.Status)
	}
	if inst.Amount != bill.Amount || inst.Name != bill.Name {
		t.Errorf("baseline fields should flow through: %+v", inst)
	}

	bill, err := bill.UpdateInstance(NewDate(2025, 2, 15), InstancePatch{
		Name:   ptrStr("Rent (partial)"),
		Amount: ptrMoney(-60000),
	}, false)
	if err != nil {
		t.Fatalf("UpdateInstance: %v", err)
	}

	inst = bill.InstanceAt(NewDate(2025, 2, 15), today)
	if inst.Name != "Rent (partial)" || inst.Amount.Cents != -60000 {
		t.Errorf("override fields should win: %+v", inst)
	}
}
