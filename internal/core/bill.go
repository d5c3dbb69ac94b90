package core

import (
	"strings"
)

// Bill is the recurrence definition: one row per obligation, owned by a
// single user. Occurrences are never stored; they are derived on read
// from the definition plus the sparse override map.
type Bill struct {
	ID         int64
	OwnerID    int64
	Name       string
	Amount     Money
	DueDate    Date  // first occurrence
	EndDate    *Date // inclusive bound, nil = open-ended
	Frequency  Frequency
	CategoryID int64
	AccountID  int64

	// Overrides maps a day-key (original due date of one occurrence)
	// to the exception record for that occurrence.
	Overrides map[string]Override

	// Version backs the optimistic concurrency check on save.
	Version int64
}

// Override is a sparse exception for one occurrence. Every field is
// optional; a nil field leaves the baseline value in effect.
type Override struct {
	Name       *string
	Amount     *Money
	DueDate    *Date
	EndDate    *Date
	Frequency  *Frequency
	CategoryID *int64
	AccountID  *int64

	// Payment state. The three fields are present or absent together.
	IsPaid        bool
	PaidDate      *Date
	TransactionID *int64

	// ApplyToFuture makes this override's field values the new baseline
	// for every later-computed occurrence until superseded.
	ApplyToFuture bool

	// IsDeleted suppresses the occurrence unless it is also paid; money
	// that already moved stays visible.
	IsDeleted bool
}

// InstancePatch is the caller-supplied partial edit of one occurrence.
// Nil fields are untouched.
type InstancePatch struct {
	Name       *string
	Amount     *Money
	DueDate    *Date
	EndDate    *Date
	Frequency  *Frequency
	CategoryID *int64
	AccountID  *int64
	IsDeleted  *bool
}

// TouchesLedger reports whether applying the patch to a paid occurrence
// requires the ledger record to be updated as well.
func (p InstancePatch) TouchesLedger() bool {
	return p.Amount != nil || p.AccountID != nil || p.CategoryID != nil
}

// changesShape reports whether the patch alters the series shape, which
// cannot be expressed as a one-occurrence-forward cascade.
func (p InstancePatch) changesShape() bool {
	return p.EndDate != nil || p.Frequency != nil
}

// merge lays the patch over an existing override, returning a new value.
// Payment state and flags of the existing override are preserved.
func (p InstancePatch) merge(base Override) Override {
	out := base
	if p.Name != nil {
		out.Name = p.Name
	}
	if p.Amount != nil {
		out.Amount = p.Amount
	}
	if p.DueDate != nil {
		out.DueDate = p.DueDate
	}
	if p.EndDate != nil {
		out.EndDate = p.EndDate
	}
	if p.Frequency != nil {
		out.Frequency = p.Frequency
	}
	if p.CategoryID != nil {
		out.CategoryID = p.CategoryID
	}
	if p.AccountID != nil {
		out.AccountID = p.AccountID
	}
	if p.IsDeleted != nil {
		out.IsDeleted = *p.IsDeleted
	}
	return out
}

// Instance is one materialized occurrence: the stable targetDate plus
// the effective field values after overrides. Read-only, never persisted.
type Instance struct {
	BillID     int64
	TargetDate Date // original occurrence key, stable across edits
	Name       string
	Amount     Money
	DueDate    Date // effective due date (override wins)
	EndDate    *Date
	Frequency  Frequency
	CategoryID int64
	AccountID  int64

	Status        BillStatus
	PaidDate      *Date
	TransactionID *int64
	ApplyToFuture bool
}

// Validate checks a bill definition before it is persisted.
func (b Bill) Validate() error {
	if len(strings.TrimSpace(b.Name)) == 0 {
		return ErrEmptyName
	}
	if len(b.Name) > 200 {
		return ErrNameTooLong
	}
	if b.Amount.Cents == 0 {
		return ErrInvalidAmount
	}
	if !b.Frequency.Valid() {
		return ErrInvalidFrequency
	}
	if b.DueDate.IsZero() {
		return ErrInvalidDateRange
	}
	if b.EndDate != nil && b.EndDate.Before(b.DueDate.Time) {
		return ErrInvalidDateRange
	}
	return nil
}

// overrideAt looks up the exception for the given day-key.
func (b Bill) overrideAt(key string) (Override, bool) {
	if b.Overrides == nil {
		return Override{}, false
	}
	ov, ok := b.Overrides[key]
	return ov, ok
}

// cloneOverrides copies the override map so edits never alias the
// loaded aggregate.
func (b Bill) cloneOverrides() map[string]Override {
	out := make(map[string]Override, len(b.Overrides))
	for k, v := range b.Overrides {
		out[k] = v
	}
	return out
}
