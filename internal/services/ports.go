package services

import (
	"context"

	"bollette/internal/core"
)

// Ports for the storage and messaging adapters the bill engine drives.

type (
	// BillStore persists the bill aggregate (definition + overrides).
	// Load and save participate in the caller's unit of work; save must
	// fail when the aggregate changed underneath (optimistic version).
	BillStore interface {
		CreateBill(ctx context.Context, b core.Bill) (core.Bill, error)
		GetBill(ctx context.Context, billID, ownerID int64) (core.Bill, error)
		SaveBill(ctx context.Context, b core.Bill) error
		DeleteBill(ctx context.Context, billID, ownerID int64) error
		// ListBills returns the owner's bills that can still produce
		// occurrences at or after rangeStart (open-ended, or ending later).
		ListBills(ctx context.Context, ownerID int64, rangeStart core.Date) ([]core.Bill, error)
	}

	// Ledger creates, patches and deletes financial records. Every call
	// also adjusts the referenced account's running balance inside the
	// same atomic unit.
	Ledger interface {
		CreateRecord(ctx context.Context, rec core.LedgerRecord) (int64, error)
		UpdateRecord(ctx context.Context, recordID, ownerID int64, patch LedgerPatch) error
		DeleteRecord(ctx context.Context, recordID, ownerID int64) error
	}

	// UnitOfWork runs fn so that every store and ledger call made with
	// the derived context commits atomically, or none does.
	UnitOfWork interface {
		Within(ctx context.Context, fn func(ctx context.Context) error) error
	}

	// AccountStore and CategoryStore back the routine CRUD around the
	// engine. Balances are read here but only ever written by the Ledger.
	AccountStore interface {
		CreateAccount(ctx context.Context, a core.Account) (core.Account, error)
		GetAccount(ctx context.Context, accountID, ownerID int64) (core.Account, error)
		ListAccounts(ctx context.Context, ownerID int64) ([]core.Account, error)
		DeleteAccount(ctx context.Context, accountID, ownerID int64) error
	}

	CategoryStore interface {
		CreateCategory(ctx context.Context, c core.Category) (core.Category, error)
		ListCategories(ctx context.Context, ownerID int64) ([]core.Category, error)
		DeleteCategory(ctx context.Context, categoryID, ownerID int64) error
	}

	// LedgerReader exposes the read side of the ledger.
	LedgerReader interface {
		GetRecord(ctx context.Context, recordID, ownerID int64) (core.LedgerRecord, error)
		ListRecords(ctx context.Context, ownerID int64, limit, offset int) ([]core.LedgerRecord, int, error)
	}

	// PaymentEvents publishes payment lifecycle notifications after the
	// atomic unit commits. Publishing is best-effort: a broker failure
	// is logged and never fails the request.
	PaymentEvents interface {
		PublishPaymentRecorded(ctx context.Context, rec core.LedgerRecord) error
		PublishPaymentCancelled(ctx context.Context, recordID, ownerID int64) error
	}
)

// LedgerPatch is the partial edit applied to an existing ledger record.
// An amount or account change implies a balance adjustment, performed
// by the adapter in the same atomic unit.
type LedgerPatch struct {
	Amount     *core.Money
	AccountID  *int64
	CategoryID *int64
}

// Empty reports whether the patch changes nothing.
func (p LedgerPatch) Empty() bool {
	return p.Amount == nil && p.AccountID == nil && p.CategoryID == nil
}
