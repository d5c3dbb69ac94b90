package core

import "strings"

// CategoryKind splits categories into spending and income buckets.
type CategoryKind string

const (
	KindExpense CategoryKind = "expense"
	KindIncome  CategoryKind = "income"
)

func (k CategoryKind) Valid() bool {
	return k == KindExpense || k == KindIncome
}

// Account holds a running balance. Only the ledger mutates the balance,
// and only inside the same atomic unit as the record that moves it.
type Account struct {
	ID      int64
	OwnerID int64
	Name    string
	Balance Money
}

func (a Account) Validate() error {
	if len(strings.TrimSpace(a.Name)) == 0 {
		return ErrEmptyName
	}
	return nil
}

// Category classifies bills and ledger records.
type Category struct {
	ID      int64
	OwnerID int64
	Name    string
	Kind    CategoryKind
}

func (c Category) Validate() error {
	if len(strings.TrimSpace(c.Name)) == 0 {
		return ErrEmptyName
	}
	if !c.Kind.Valid() {
		return ErrInvalidKind
	}
	return nil
}

// LedgerRecord is the immutable financial transaction written when a
// bill occurrence is paid (or when money moves for any other reason).
// BillID links a record back to the occurrence that produced it.
type LedgerRecord struct {
	ID          int64
	OwnerID     int64
	Amount      Money
	Date        Date
	Description string
	AccountID   int64
	CategoryID  int64
	BillID      *int64
}
