package core

// baseline is the mutable state threaded through one materialization
// walk. It starts as a copy of the bill definition and shifts whenever
// an apply-to-future override is crossed. It is never aliased with the
// Bill itself, so a walk can never leak intermediate state into the
// persisted aggregate.
type baseline struct {
	name       string
	amount     Money
	dueDate    Date
	endDate    *Date
	frequency  Frequency
	categoryID int64
	accountID  int64
	deleted    bool
}

func newBaseline(b Bill) baseline {
	return baseline{
		name:       b.Name,
		amount:     b.Amount,
		dueDate:    b.DueDate,
		endDate:    b.EndDate,
		frequency:  b.Frequency,
		categoryID: b.CategoryID,
		accountID:  b.AccountID,
	}
}

// shift folds an apply-to-future override into the baseline. The merge
// is visible to every subsequent iteration, not just the current one.
func (s baseline) shift(ov Override) baseline {
	if ov.Name != nil {
		s.name = *ov.Name
	}
	if ov.Amount != nil {
		s.amount = *ov.Amount
	}
	if ov.DueDate != nil {
		s.dueDate = *ov.DueDate
	}
	if ov.EndDate != nil {
		s.endDate = ov.EndDate
	}
	if ov.Frequency != nil {
		s.frequency = *ov.Frequency
	}
	if ov.CategoryID != nil {
		s.categoryID = *ov.CategoryID
	}
	if ov.AccountID != nil {
		s.accountID = *ov.AccountID
	}
	s.deleted = ov.IsDeleted
	return s
}

// Instances walks the bill's recurrence and returns every occurrence
// intersecting [rangeStart, rangeEnd], preceded by still-unpaid overdue
// occurrences that fall before the window. Pure function of the bill,
// its overrides and the window; today fixes the status classification.
func (b Bill) Instances(rangeStart, rangeEnd, today Date) []Instance {
	var carried, inRange []Instance

	state := newBaseline(b)

	for !state.dueDate.After(rangeEnd.Time) &&
		(state.endDate == nil || !state.dueDate.After(state.endDate.Time)) {

		key := state.dueDate.DayKey()
		ov, hasOv := b.overrideAt(key)

		if hasOv && ov.ApplyToFuture {
			cursor := state.dueDate
			state = state.shift(ov)
			// The cursor never moves backwards: a rewound due date would
			// re-cross this key and the walk would never end.
			if state.dueDate.Before(cursor.Time) {
				state.dueDate = cursor
			}
		}

		// A paid occurrence stays visible even when flagged deleted.
		deleted := (ov.IsDeleted && !ov.IsPaid) || (state.deleted && !ov.IsPaid)

		if !deleted {
			inst := b.instanceFromBaseline(key, state, ov, today)

			beforeRange := state.dueDate.Before(rangeStart.Time)
			overdueUnpaid := inst.Status == StatusOverdue && !ov.IsPaid

			switch {
			case !beforeRange:
				inRange = append(inRange, inst)
			case overdueUnpaid:
				carried = append(carried, inst)
			}
		}

		if state.frequency == Once {
			break
		}
		state.dueDate = state.dueDate.Next(state.frequency)
	}

	// Both buckets are date-ordered by construction.
	return append(carried, inRange...)
}

// instanceFromBaseline builds the effective view of one occurrence:
// the override's fields win over the running baseline, field by field.
func (b Bill) instanceFromBaseline(key string, state baseline, ov Override, today Date) Instance {
	targetDate, _ := ParseDayKey(key)

	dueDate := state.dueDate
	if ov.DueDate != nil {
		dueDate = *ov.DueDate
	}

	status := StatusOn(dueDate, today)
	if ov.IsPaid {
		status = StatusPaid
	}

	inst := Instance{
		BillID:        b.ID,
		TargetDate:    targetDate,
		Name:          state.name,
		Amount:        state.amount,
		DueDate:       dueDate,
		EndDate:       state.endDate,
		Frequency:     state.frequency,
		CategoryID:    state.categoryID,
		AccountID:     state.accountID,
		Status:        status,
		PaidDate:      ov.PaidDate,
		TransactionID: ov.TransactionID,
		ApplyToFuture: ov.ApplyToFuture,
	}
	if ov.Name != nil {
		inst.Name = *ov.Name
	}
	if ov.Amount != nil {
		inst.Amount = *ov.Amount
	}
	if ov.EndDate != nil {
		inst.EndDate = ov.EndDate
	}
	if ov.Frequency != nil {
		inst.Frequency = *ov.Frequency
	}
	if ov.CategoryID != nil {
		inst.CategoryID = *ov.CategoryID
	}
	if ov.AccountID != nil {
		inst.AccountID = *ov.AccountID
	}
	return inst
}

// InstanceAt is the single-occurrence specialization used by the
// payment workflow, which always addresses one known occurrence. It
// resolves the override at targetDate against the bill definition
// without walking the series.
func (b Bill) InstanceAt(targetDate, today Date) Instance {
	ov, _ := b.overrideAt(targetDate.DayKey())

	dueDate := targetDate
	if ov.DueDate != nil {
		dueDate = *ov.DueDate
	}

	status := StatusOn(dueDate, today)
	if ov.IsPaid {
		status = StatusPaid
	}

	inst := Instance{
		BillID:        b.ID,
		TargetDate:    targetDate,
		Name:          b.Name,
		Amount:        b.Amount,
		DueDate:       dueDate,
		EndDate:       b.EndDate,
		Frequency:     b.Frequency,
		CategoryID:    b.CategoryID,
		AccountID:     b.AccountID,
		Status:        status,
		PaidDate:      ov.PaidDate,
		TransactionID: ov.TransactionID,
		ApplyToFuture: ov.ApplyToFuture,
	}
	if ov.Name != nil {
		inst.Name = *ov.Name
	}
	if ov.Amount != nil {
		inst.Amount = *ov.Amount
	}
	if ov.EndDate != nil {
		inst.EndDate = ov.EndDate
	}
	if ov.Frequency != nil {
		inst.Frequency = *ov.Frequency
	}
	if ov.CategoryID != nil {
		inst.CategoryID = *ov.CategoryID
	}
	if ov.AccountID != nil {
		inst.AccountID = *ov.AccountID
	}
	return inst
}
