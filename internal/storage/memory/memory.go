// Package memory provides an in-memory implementation of the storage
// ports. It backs service tests and the default development backend;
// the SQLite repository is the durable counterpart.
package memory

import (
	"context"
	"fmt"
	"sync"

	"bollette/internal/core"
	"bollette/internal/services"
)

type Store struct {
	mu sync.Mutex

	bills    map[int64]core.Bill
	accounts map[int64]core.Account
	cats     map[int64]core.Category
	records  map[int64]core.LedgerRecord

	nextBillID    int64
	nextAccountID int64
	nextCatID     int64
	nextRecordID  int64
}

func New() *Store {
	return &Store{
		bills:    make(map[int64]core.Bill),
		accounts: make(map[int64]core.Account),
		cats:     make(map[int64]core.Category),
		records:  make(map[int64]core.LedgerRecord),
	}
}

// Within gives fn the same all-or-nothing contract the SQLite
// transaction provides: the store is snapshotted up front and restored
// in full when fn returns an error.
func (s *Store) Within(ctx context.Context, fn func(ctx context.Context) error) error {
	snap := s.snapshot()
	if err := fn(ctx); err != nil {
		s.restore(snap)
		return err
	}
	return nil
}

type snapshot struct {
	bills    map[int64]core.Bill
	accounts map[int64]core.Account
	cats     map[int64]core.Category
	records  map[int64]core.LedgerRecord

	nextBillID    int64
	nextAccountID int64
	nextCatID     int64
	nextRecordID  int64
}

func (s *Store) snapshot() snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := snapshot{
		bills:         make(map[int64]core.Bill, len(s.bills)),
		accounts:      make(map[int64]core.Account, len(s.accounts)),
		cats:          make(map[int64]core.Category, len(s.cats)),
		records:       make(map[int64]core.LedgerRecord, len(s.records)),
		nextBillID:    s.nextBillID,
		nextAccountID: s.nextAccountID,
		nextCatID:     s.nextCatID,
		nextRecordID:  s.nextRecordID,
	}
	for id, b := range s.bills {
		snap.bills[id] = cloneBill(b)
	}
	for id, a := range s.accounts {
		snap.accounts[id] = a
	}
	for id, c := range s.cats {
		snap.cats[id] = c
	}
	for id, rec := range s.records {
		snap.records[id] = rec
	}
	return snap
}

func (s *Store) restore(snap snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.bills = snap.bills
	s.accounts = snap.accounts
	s.cats = snap.cats
	s.records = snap.records
	s.nextBillID = snap.nextBillID
	s.nextAccountID = snap.nextAccountID
	s.nextCatID = snap.nextCatID
	s.nextRecordID = snap.nextRecordID
}

// --- BillStore ---

func (s *Store) CreateBill(_ context.Context, b core.Bill) (core.Bill, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextBillID++
	b.ID = s.nextBillID
	b.Version = 1
	if b.Overrides == nil {
		b.Overrides = make(map[string]core.Override)
	}
	s.bills[b.ID] = b
	return b, nil
}

func (s *Store) GetBill(_ context.Context, billID, ownerID int64) (core.Bill, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	b, ok := s.bills[billID]
	if !ok || b.OwnerID != ownerID {
		return core.Bill{}, fmt.Errorf("bill %d: %w", billID, core.ErrNotFound)
	}
	return cloneBill(b), nil
}

func (s *Store) SaveBill(_ context.Context, b core.Bill) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored, ok := s.bills[b.ID]
	if !ok {
		return fmt.Errorf("bill %d: %w", b.ID, core.ErrNotFound)
	}
	if stored.Version != b.Version {
		return fmt.Errorf("bill %d version %d changed underneath: %w", b.ID, b.Version, core.ErrDependencyFailure)
	}
	b.Version++
	s.bills[b.ID] = cloneBill(b)
	return nil
}

func (s *Store) DeleteBill(_ context.Context, billID, ownerID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	b, ok := s.bills[billID]
	if !ok || b.OwnerID != ownerID {
		return fmt.Errorf("bill %d: %w", billID, core.ErrNotFound)
	}
	delete(s.bills, billID)
	return nil
}

func (s *Store) ListBills(_ context.Context, ownerID int64, rangeStart core.Date) ([]core.Bill, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	// id order, matching the SQLite repository.
	var out []core.Bill
	for id := int64(1); id <= s.nextBillID; id++ {
		b, ok := s.bills[id]
		if !ok || b.OwnerID != ownerID {
			continue
		}
		if b.EndDate != nil && b.EndDate.Before(rangeStart.Time) {
			continue
		}
		out = append(out, cloneBill(b))
	}
	return out, nil
}

// --- Ledger ---

func (s *Store) CreateRecord(_ context.Context, rec core.LedgerRecord) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	acc, ok := s.accounts[rec.AccountID]
	if !ok || acc.OwnerID != rec.OwnerID {
		return 0, fmt.Errorf("account %d: %w", rec.AccountID, core.ErrNotFound)
	}

	s.nextRecordID++
	rec.ID = s.nextRecordID
	s.records[rec.ID] = rec

	acc.Balance.Cents += rec.Amount.Cents
	s.accounts[acc.ID] = acc
	return rec.ID, nil
}

func (s *Store) UpdateRecord(_ context.Context, recordID, ownerID int64, patch services.LedgerPatch) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.records[recordID]
	if !ok || rec.OwnerID != ownerID {
		return fmt.Errorf("ledger record %d: %w", recordID, core.ErrNotFound)
	}

	if patch.AccountID != nil && *patch.AccountID != rec.AccountID {
		oldAcc := s.accounts[rec.AccountID]
		oldAcc.Balance.Cents -= rec.Amount.Cents
		s.accounts[oldAcc.ID] = oldAcc

		newAcc, ok := s.accounts[*patch.AccountID]
		if !ok || newAcc.OwnerID != ownerID {
			return fmt.Errorf("account %d: %w", *patch.AccountID, core.ErrNotFound)
		}
		rec.AccountID = newAcc.ID
		newAcc.Balance.Cents += rec.Amount.Cents
		s.accounts[newAcc.ID] = newAcc
	}
	if patch.Amount != nil && patch.Amount.Cents != rec.Amount.Cents {
		acc := s.accounts[rec.AccountID]
		acc.Balance.Cents += patch.Amount.Cents - rec.Amount.Cents
		s.accounts[acc.ID] = acc
		rec.Amount = *patch.Amount
	}
	if patch.CategoryID != nil {
		rec.CategoryID = *patch.CategoryID
	}

	s.records[recordID] = rec
	return nil
}

func (s *Store) DeleteRecord(_ context.Context, recordID, ownerID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.records[recordID]
	if !ok || rec.OwnerID != ownerID {
		return fmt.Errorf("ledger record %d: %w", recordID, core.ErrNotFound)
	}

	acc := s.accounts[rec.AccountID]
	acc.Balance.Cents -= rec.Amount.Cents
	s.accounts[acc.ID] = acc

	delete(s.records, recordID)
	return nil
}

func (s *Store) GetRecord(_ context.Context, recordID, ownerID int64) (core.LedgerRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.records[recordID]
	if !ok || rec.OwnerID != ownerID {
		return core.LedgerRecord{}, fmt.Errorf("ledger record %d: %w", recordID, core.ErrNotFound)
	}
	return rec, nil
}

func (s *Store) ListRecords(_ context.Context, ownerID int64, limit, offset int) ([]core.LedgerRecord, int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var all []core.LedgerRecord
	for id := int64(1); id <= s.nextRecordID; id++ {
		if rec, ok := s.records[id]; ok && rec.OwnerID == ownerID {
			all = append(all, rec)
		}
	}
	total := len(all)
	if offset >= total {
		return nil, total, nil
	}
	end := offset + limit
	if limit <= 0 || end > total {
		end = total
	}
	return all[offset:end], total, nil
}

// --- AccountStore ---

func (s *Store) CreateAccount(_ context.Context, a core.Account) (core.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextAccountID++
	a.ID = s.nextAccountID
	s.accounts[a.ID] = a
	return a, nil
}

func (s *Store) GetAccount(_ context.Context, accountID, ownerID int64) (core.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	a, ok := s.accounts[accountID]
	if !ok || a.OwnerID != ownerID {
		return core.Account{}, fmt.Errorf("account %d: %w", accountID, core.ErrNotFound)
	}
	return a, nil
}

func (s *Store) ListAccounts(_ context.Context, ownerID int64) ([]core.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []core.Account
	for id := int64(1); id <= s.nextAccountID; id++ {
		if a, ok := s.accounts[id]; ok && a.OwnerID == ownerID {
			out = append(out, a)
		}
	}
	return out, nil
}

func (s *Store) DeleteAccount(_ context.Context, accountID, ownerID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	a, ok := s.accounts[accountID]
	if !ok || a.OwnerID != ownerID {
		return fmt.Errorf("account %d: %w", accountID, core.ErrNotFound)
	}
	delete(s.accounts, accountID)
	return nil
}

// --- CategoryStore ---

func (s *Store) CreateCategory(_ context.Context, c core.Category) (core.Category, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextCatID++
	c.ID = s.nextCatID
	s.cats[c.ID] = c
	return c, nil
}

func (s *Store) ListCategories(_ context.Context, ownerID int64) ([]core.Category, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []core.Category
	for id := int64(1); id <= s.nextCatID; id++ {
		if c, ok := s.cats[id]; ok && c.OwnerID == ownerID {
			out = append(out, c)
		}
	}
	return out, nil
}

func (s *Store) DeleteCategory(_ context.Context, categoryID, ownerID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.cats[categoryID]
	if !ok || c.OwnerID != ownerID {
		return fmt.Errorf("category %d: %w", categoryID, core.ErrNotFound)
	}
	delete(s.cats, categoryID)
	return nil
}

func cloneBill(b core.Bill) core.Bill {
	overrides := make(map[string]core.Override, len(b.Overrides))
	for k, v := range b.Overrides {
		overrides[k] = v
	}
	b.Overrides = overrides
	return b
}
