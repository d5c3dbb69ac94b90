package services

import (
	"context"
	"fmt"
	"log/slog"

	"bollette/internal/core"
)

// FinanceService covers the plain CRUD around the bill engine: accounts,
// categories and manual ledger entries. Manual entries move the account
// balance through the same ledger port the payment workflow uses.
type FinanceService struct {
	accounts AccountStore
	cats     CategoryStore
	ledger   Ledger
	reader   LedgerReader
	uow      UnitOfWork
}

func NewFinanceService(accounts AccountStore, cats CategoryStore, ledger Ledger, reader LedgerReader, uow UnitOfWork) *FinanceService {
	return &FinanceService{
		accounts: accounts,
		cats:     cats,
		ledger:   ledger,
		reader:   reader,
		uow:      uow,
	}
}

func (s *FinanceService) CreateAccount(ctx context.Context, a core.Account) (core.Account, error) {
	if err := a.Validate(); err != nil {
		return core.Account{}, err
	}
	created, err := s.accounts.CreateAccount(ctx, a)
	if err != nil {
		return core.Account{}, fmt.Errorf("create account: %w", err)
	}
	slog.InfoContext(ctx, "Account created", "account_id", created.ID, "name", created.Name)
	return created, nil
}

func (s *FinanceService) GetAccount(ctx context.Context, accountID, ownerID int64) (core.Account, error) {
	return s.accounts.GetAccount(ctx, accountID, ownerID)
}

func (s *FinanceService) ListAccounts(ctx context.Context, ownerID int64) ([]core.Account, error) {
	return s.accounts.ListAccounts(ctx, ownerID)
}

func (s *FinanceService) DeleteAccount(ctx context.Context, accountID, ownerID int64) error {
	return s.accounts.DeleteAccount(ctx, accountID, ownerID)
}

func (s *FinanceService) CreateCategory(ctx context.Context, c core.Category) (core.Category, error) {
	if err := c.Validate(); err != nil {
		return core.Category{}, err
	}
	created, err := s.cats.CreateCategory(ctx, c)
	if err != nil {
		return core.Category{}, fmt.Errorf("create category: %w", err)
	}
	slog.InfoContext(ctx, "Category created", "category_id", created.ID, "name", created.Name, "kind", created.Kind)
	return created, nil
}

func (s *FinanceService) ListCategories(ctx context.Context, ownerID int64) ([]core.Category, error) {
	return s.cats.ListCategories(ctx, ownerID)
}

func (s *FinanceService) DeleteCategory(ctx context.Context, categoryID, ownerID int64) error {
	return s.cats.DeleteCategory(ctx, categoryID, ownerID)
}

// CreateTransaction records a one-off ledger entry not tied to any bill.
func (s *FinanceService) CreateTransaction(ctx context.Context, rec core.LedgerRecord) (core.LedgerRecord, error) {
	if rec.Amount.Cents == 0 {
		return core.LedgerRecord{}, core.ErrInvalidAmount
	}
	rec.BillID = nil

	err := s.uow.Within(ctx, func(ctx context.Context) error {
		id, err := s.ledger.CreateRecord(ctx, rec)
		if err != nil {
			return fmt.Errorf("create ledger record: %w", err)
		}
		rec.ID = id
		return nil
	})
	if err != nil {
		return core.LedgerRecord{}, err
	}

	slog.InfoContext(ctx, "Transaction recorded",
		"transaction_id", rec.ID,
		"amount_cents", rec.Amount.Cents,
		"account_id", rec.AccountID)
	return rec, nil
}

func (s *FinanceService) GetTransaction(ctx context.Context, recordID, ownerID int64) (core.LedgerRecord, error) {
	return s.reader.GetRecord(ctx, recordID, ownerID)
}

func (s *FinanceService) ListTransactions(ctx context.Context, ownerID int64, limit, offset int) ([]core.LedgerRecord, int, error) {
	return s.reader.ListRecords(ctx, ownerID, limit, offset)
}

// DeleteTransaction removes a manual entry and restores the balance.
// Entries created by bill payments must be reversed through the bill,
// otherwise the occurrence would stay marked paid with no money behind it.
func (s *FinanceService) DeleteTransaction(ctx context.Context, recordID, ownerID int64) error {
	return s.uow.Within(ctx, func(ctx context.Context) error {
		rec, err := s.reader.GetRecord(ctx, recordID, ownerID)
		if err != nil {
			return err
		}
		if rec.BillID != nil {
			return fmt.Errorf("transaction %d belongs to bill %d: %w", recordID, *rec.BillID, core.ErrInvalidOperation)
		}
		return s.ledger.DeleteRecord(ctx, recordID, ownerID)
	})
}
