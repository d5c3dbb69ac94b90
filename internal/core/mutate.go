package core

// UpdateInstance applies a caller's edit to one occurrence and returns
// the updated bill. With applyToFuture the patch becomes the new
// generation baseline from targetDate on: every unpaid override past
// the target is superseded and removed.
//
// Three requests are rejected as ErrInvalidOperation at this boundary:
// applyToFuture on an occurrence that is already paid (payment freezes
// history), applyToFuture combined with an endDate or frequency change
// (series-shape changes must be a full bill edit), and applyToFuture
// with a dueDate before the target occurrence (the generation cursor
// only moves forward, so a backdated baseline has no meaning).
//
// The receiver is treated as immutable; the returned bill carries a
// fresh override map.
func (b Bill) UpdateInstance(targetDate Date, patch InstancePatch, applyToFuture bool) (Bill, error) {
	if applyToFuture && patch.changesShape() {
		return Bill{}, ErrInvalidOperation
	}
	if applyToFuture && patch.DueDate != nil && patch.DueDate.Before(targetDate.Time) {
		return Bill{}, ErrInvalidOperation
	}

	key := targetDate.DayKey()
	existing, _ := b.overrideAt(key)
	if applyToFuture && existing.IsPaid {
		return Bill{}, ErrInvalidOperation
	}

	overrides := b.cloneOverrides()

	if applyToFuture {
		// ISO day-keys compare chronologically as strings.
		for k, ov := range overrides {
			if k > key && !ov.IsPaid {
				delete(overrides, k)
			}
		}
	}

	merged := patch.merge(existing)
	merged.ApplyToFuture = applyToFuture
	overrides[key] = merged

	b.Overrides = overrides
	return b, nil
}

// MarkPaid stamps the occurrence at targetDate with payment state,
// merging over any pre-existing non-payment override fields.
func (b Bill) MarkPaid(targetDate, paidDate Date, transactionID int64) (Bill, error) {
	key := targetDate.DayKey()
	existing, _ := b.overrideAt(key)
	if existing.IsPaid {
		return Bill{}, ErrAlreadyPaid
	}

	overrides := b.cloneOverrides()
	existing.IsPaid = true
	existing.PaidDate = &paidDate
	existing.TransactionID = &transactionID
	overrides[key] = existing

	b.Overrides = overrides
	return b, nil
}

// ClearPayment removes the payment state from the occurrence at
// targetDate. Other override fields, e.g. a prior amount edit, are
// retained. Returns the ledger record id that was attached.
func (b Bill) ClearPayment(targetDate Date) (Bill, int64, error) {
	key := targetDate.DayKey()
	existing, ok := b.overrideAt(key)
	if !ok || !existing.IsPaid || existing.TransactionID == nil {
		return Bill{}, 0, ErrNotPaid
	}
	transactionID := *existing.TransactionID

	overrides := b.cloneOverrides()
	existing.IsPaid = false
	existing.PaidDate = nil
	existing.TransactionID = nil
	overrides[key] = existing

	b.Overrides = overrides
	return b, transactionID, nil
}
