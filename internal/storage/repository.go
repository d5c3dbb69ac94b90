// Package storage provides the SQLite implementation of the service
// ports. Writes that must land together run inside one transaction,
// carried through the context by Within.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"bollette/internal/core"
	"bollette/internal/services"

	_ "modernc.org/sqlite"
)

type SQLiteRepository struct {
	db *sql.DB
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath+"?_pragma=foreign_keys(1)")
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{db: db}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

type txKey struct{}

// querier is satisfied by both *sql.DB and *sql.Tx.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func (r *SQLiteRepository) conn(ctx context.Context) querier {
	if tx, ok := ctx.Value(txKey{}).(*sql.Tx); ok {
		return tx
	}
	return r.db
}

// Within runs fn inside a transaction carried by the context. Nested
// calls join the outer transaction instead of opening their own.
func (r *SQLiteRepository) Within(ctx context.Context, fn func(ctx context.Context) error) error {
	if _, ok := ctx.Value(txKey{}).(*sql.Tx); ok {
		return fn(ctx)
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}

	if err := fn(context.WithValue(ctx, txKey{}, tx)); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return fmt.Errorf("rollback after %w: %v", err, rbErr)
		}
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// --- bills ---

func (r *SQLiteRepository) CreateBill(ctx context.Context, b core.Bill) (core.Bill, error) {
	res, err := r.conn(ctx).ExecContext(ctx, `
		INSERT INTO bills (owner_id, name, amount_cents, due_date, end_date, frequency, category_id, account_id, version)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, 1)`,
		b.OwnerID, b.Name, b.Amount.Cents, b.DueDate.DayKey(), dayKeyOrNil(b.EndDate),
		string(b.Frequency), b.CategoryID, b.AccountID)
	if err != nil {
		return core.Bill{}, fmt.Errorf("insert bill: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return core.Bill{}, fmt.Errorf("bill insert id: %w", err)
	}
	b.ID = id
	b.Version = 1
	if b.Overrides == nil {
		b.Overrides = make(map[string]core.Override)
	}
	return b, nil
}

func (r *SQLiteRepository) GetBill(ctx context.Context, billID, ownerID int64) (core.Bill, error) {
	row := r.conn(ctx).QueryRowContext(ctx, `
		SELECT id, owner_id, name, amount_cents, due_date, end_date, frequency, category_id, account_id, version
		FROM bills WHERE id = ? AND owner_id = ?`, billID, ownerID)

	b, err := scanBill(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return core.Bill{}, fmt.Errorf("bill %d: %w", billID, core.ErrNotFound)
		}
		return core.Bill{}, fmt.Errorf("get bill: %w", err)
	}

	b.Overrides, err = r.loadOverrides(ctx, b.ID)
	if err != nil {
		return core.Bill{}, err
	}
	return b, nil
}

// SaveBill writes the aggregate back. The version guard makes a
// concurrent save fail instead of silently clobbering overrides.
func (r *SQLiteRepository) SaveBill(ctx context.Context, b core.Bill) error {
	return r.Within(ctx, func(ctx context.Context) error {
		res, err := r.conn(ctx).ExecContext(ctx, `
			UPDATE bills
			SET name = ?, amount_cents = ?, due_date = ?, end_date = ?, frequency = ?,
			    category_id = ?, account_id = ?, version = version + 1
			WHERE id = ? AND version = ?`,
			b.Name, b.Amount.Cents, b.DueDate.DayKey(), dayKeyOrNil(b.EndDate),
			string(b.Frequency), b.CategoryID, b.AccountID, b.ID, b.Version)
		if err != nil {
			return fmt.Errorf("update bill: %w", err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("update bill rows: %w", err)
		}
		if n == 0 {
			var exists int
			if err := r.conn(ctx).QueryRowContext(ctx,
				`SELECT COUNT(*) FROM bills WHERE id = ?`, b.ID).Scan(&exists); err != nil {
				return fmt.Errorf("check bill: %w", err)
			}
			if exists == 0 {
				return fmt.Errorf("bill %d: %w", b.ID, core.ErrNotFound)
			}
			return fmt.Errorf("bill %d version %d changed underneath: %w", b.ID, b.Version, core.ErrDependencyFailure)
		}

		if _, err := r.conn(ctx).ExecContext(ctx,
			`DELETE FROM bill_overrides WHERE bill_id = ?`, b.ID); err != nil {
			return fmt.Errorf("clear overrides: %w", err)
		}
		for key, ov := range b.Overrides {
			if _, err := r.conn(ctx).ExecContext(ctx, `
				INSERT INTO bill_overrides
					(bill_id, target_date, name, amount_cents, due_date, end_date, frequency,
					 category_id, account_id, is_paid, paid_date, transaction_id, apply_to_future, is_deleted)
				VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
				b.ID, key, ov.Name, centsOrNil(ov.Amount), dayKeyOrNil(ov.DueDate), dayKeyOrNil(ov.EndDate),
				freqOrNil(ov.Frequency), ov.CategoryID, ov.AccountID,
				ov.IsPaid, dayKeyOrNil(ov.PaidDate), ov.TransactionID, ov.ApplyToFuture, ov.IsDeleted); err != nil {
				return fmt.Errorf("insert override %s: %w", key, err)
			}
		}
		return nil
	})
}

func (r *SQLiteRepository) DeleteBill(ctx context.Context, billID, ownerID int64) error {
	return r.Within(ctx, func(ctx context.Context) error {
		res, err := r.conn(ctx).ExecContext(ctx,
			`DELETE FROM bills WHERE id = ? AND owner_id = ?`, billID, ownerID)
		if err != nil {
			return fmt.Errorf("delete bill: %w", err)
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return fmt.Errorf("bill %d: %w", billID, core.ErrNotFound)
		}
		// Overrides go with the bill via ON DELETE CASCADE; ledger
		// records stay, they are history.
		return nil
	})
}

func (r *SQLiteRepository) ListBills(ctx context.Context, ownerID int64, rangeStart core.Date) ([]core.Bill, error) {
	rows, err := r.conn(ctx).QueryContext(ctx, `
		SELECT id, owner_id, name, amount_cents, due_date, end_date, frequency, category_id, account_id, version
		FROM bills
		WHERE owner_id = ? AND (end_date IS NULL OR end_date >= ?)
		ORDER BY id`, ownerID, rangeStart.DayKey())
	if err != nil {
		return nil, fmt.Errorf("list bills: %w", err)
	}
	defer rows.Close()

	var bills []core.Bill
	for rows.Next() {
		b, err := scanBill(rows)
		if err != nil {
			return nil, fmt.Errorf("scan bill: %w", err)
		}
		bills = append(bills, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list bills: %w", err)
	}

	for i := range bills {
		bills[i].Overrides, err = r.loadOverrides(ctx, bills[i].ID)
		if err != nil {
			return nil, err
		}
	}
	return bills, nil
}

func (r *SQLiteRepository) loadOverrides(ctx context.Context, billID int64) (map[string]core.Override, error) {
	rows, err := r.conn(ctx).QueryContext(ctx, `
		SELECT target_date, name, amount_cents, due_date, end_date, frequency,
		       category_id, account_id, is_paid, paid_date, transaction_id, apply_to_future, is_deleted
		FROM bill_overrides WHERE bill_id = ?`, billID)
	if err != nil {
		return nil, fmt.Errorf("load overrides: %w", err)
	}
	defer rows.Close()

	overrides := make(map[string]core.Override)
	for rows.Next() {
		var (
			key      string
			ov       core.Override
			name     sql.NullString
			cents    sql.NullInt64
			due      sql.NullString
			end      sql.NullString
			freq     sql.NullString
			catID    sql.NullInt64
			accID    sql.NullInt64
			paidDate sql.NullString
			txnID    sql.NullInt64
		)
		if err := rows.Scan(&key, &name, &cents, &due, &end, &freq,
			&catID, &accID, &ov.IsPaid, &paidDate, &txnID, &ov.ApplyToFuture, &ov.IsDeleted); err != nil {
			return nil, fmt.Errorf("scan override: %w", err)
		}
		if name.Valid {
			ov.Name = &name.String
		}
		if cents.Valid {
			ov.Amount = &core.Money{Cents: cents.Int64}
		}
		if ov.DueDate, err = parseDayKeyOrNil(due); err != nil {
			return nil, fmt.Errorf("override %s due date: %w", key, err)
		}
		if ov.EndDate, err = parseDayKeyOrNil(end); err != nil {
			return nil, fmt.Errorf("override %s end date: %w", key, err)
		}
		if freq.Valid {
			f := core.Frequency(freq.String)
			ov.Frequency = &f
		}
		if catID.Valid {
			ov.CategoryID = &catID.Int64
		}
		if accID.Valid {
			ov.AccountID = &accID.Int64
		}
		if ov.PaidDate, err = parseDayKeyOrNil(paidDate); err != nil {
			return nil, fmt.Errorf("override %s paid date: %w", key, err)
		}
		if txnID.Valid {
			ov.TransactionID = &txnID.Int64
		}
		overrides[key] = ov
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("load overrides: %w", err)
	}
	return overrides, nil
}

// --- ledger ---

func (r *SQLiteRepository) CreateRecord(ctx context.Context, rec core.LedgerRecord) (int64, error) {
	var id int64
	err := r.Within(ctx, func(ctx context.Context) error {
		res, err := r.conn(ctx).ExecContext(ctx, `
			INSERT INTO ledger_records (owner_id, amount_cents, date, description, account_id, category_id, bill_id)
			VALUES (?, ?, ?, ?, ?, ?, ?)`,
			rec.OwnerID, rec.Amount.Cents, rec.Date.DayKey(), rec.Description,
			rec.AccountID, rec.CategoryID, rec.BillID)
		if err != nil {
			return fmt.Errorf("insert ledger record: %w", err)
		}
		id, err = res.LastInsertId()
		if err != nil {
			return fmt.Errorf("ledger record id: %w", err)
		}
		return r.adjustBalance(ctx, rec.AccountID, rec.OwnerID, rec.Amount.Cents)
	})
	return id, err
}

func (r *SQLiteRepository) UpdateRecord(ctx context.Context, recordID, ownerID int64, patch services.LedgerPatch) error {
	if patch.Empty() {
		return nil
	}
	return r.Within(ctx, func(ctx context.Context) error {
		rec, err := r.GetRecord(ctx, recordID, ownerID)
		if err != nil {
			return err
		}

		if patch.AccountID != nil && *patch.AccountID != rec.AccountID {
			if err := r.adjustBalance(ctx, rec.AccountID, ownerID, -rec.Amount.Cents); err != nil {
				return err
			}
			if err := r.adjustBalance(ctx, *patch.AccountID, ownerID, rec.Amount.Cents); err != nil {
				return err
			}
			rec.AccountID = *patch.AccountID
		}
		if patch.Amount != nil && patch.Amount.Cents != rec.Amount.Cents {
			if err := r.adjustBalance(ctx, rec.AccountID, ownerID, patch.Amount.Cents-rec.Amount.Cents); err != nil {
				return err
			}
			rec.Amount = *patch.Amount
		}
		if patch.CategoryID != nil {
			rec.CategoryID = *patch.CategoryID
		}

		_, err = r.conn(ctx).ExecContext(ctx, `
			UPDATE ledger_records SET amount_cents = ?, account_id = ?, category_id = ?
			WHERE id = ? AND owner_id = ?`,
			rec.Amount.Cents, rec.AccountID, rec.CategoryID, recordID, ownerID)
		if err != nil {
			return fmt.Errorf("update ledger record: %w", err)
		}
		return nil
	})
}

func (r *SQLiteRepository) DeleteRecord(ctx context.Context, recordID, ownerID int64) error {
	return r.Within(ctx, func(ctx context.Context) error {
		rec, err := r.GetRecord(ctx, recordID, ownerID)
		if err != nil {
			return err
		}
		if _, err := r.conn(ctx).ExecContext(ctx,
			`DELETE FROM ledger_records WHERE id = ? AND owner_id = ?`, recordID, ownerID); err != nil {
			return fmt.Errorf("delete ledger record: %w", err)
		}
		return r.adjustBalance(ctx, rec.AccountID, ownerID, -rec.Amount.Cents)
	})
}

func (r *SQLiteRepository) GetRecord(ctx context.Context, recordID, ownerID int64) (core.LedgerRecord, error) {
	row := r.conn(ctx).QueryRowContext(ctx, `
		SELECT id, owner_id, amount_cents, date, description, account_id, category_id, bill_id
		FROM ledger_records WHERE id = ? AND owner_id = ?`, recordID, ownerID)

	var (
		rec    core.LedgerRecord
		cents  int64
		day    string
		billID sql.NullInt64
	)
	err := row.Scan(&rec.ID, &rec.OwnerID, &cents, &day, &rec.Description,
		&rec.AccountID, &rec.CategoryID, &billID)
	if errors.Is(err, sql.ErrNoRows) {
		return core.LedgerRecord{}, fmt.Errorf("ledger record %d: %w", recordID, core.ErrNotFound)
	}
	if err != nil {
		return core.LedgerRecord{}, fmt.Errorf("get ledger record: %w", err)
	}
	rec.Amount = core.Money{Cents: cents}
	if rec.Date, err = core.ParseDayKey(day); err != nil {
		return core.LedgerRecord{}, fmt.Errorf("ledger record %d date: %w", recordID, err)
	}
	if billID.Valid {
		rec.BillID = &billID.Int64
	}
	return rec, nil
}

func (r *SQLiteRepository) ListRecords(ctx context.Context, ownerID int64, limit, offset int) ([]core.LedgerRecord, int, error) {
	var total int
	if err := r.conn(ctx).QueryRowContext(ctx,
		`SELECT COUNT(*) FROM ledger_records WHERE owner_id = ?`, ownerID).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count ledger records: %w", err)
	}

	if limit <= 0 {
		limit = total
	}
	rows, err := r.conn(ctx).QueryContext(ctx, `
		SELECT id, owner_id, amount_cents, date, description, account_id, category_id, bill_id
		FROM ledger_records WHERE owner_id = ?
		ORDER BY date DESC, id DESC
		LIMIT ? OFFSET ?`, ownerID, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("list ledger records: %w", err)
	}
	defer rows.Close()

	var records []core.LedgerRecord
	for rows.Next() {
		var (
			rec    core.LedgerRecord
			cents  int64
			day    string
			billID sql.NullInt64
		)
		if err := rows.Scan(&rec.ID, &rec.OwnerID, &cents, &day, &rec.Description,
			&rec.AccountID, &rec.CategoryID, &billID); err != nil {
			return nil, 0, fmt.Errorf("scan ledger record: %w", err)
		}
		rec.Amount = core.Money{Cents: cents}
		if rec.Date, err = core.ParseDayKey(day); err != nil {
			return nil, 0, fmt.Errorf("ledger record %d date: %w", rec.ID, err)
		}
		if billID.Valid {
			rec.BillID = &billID.Int64
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("list ledger records: %w", err)
	}
	return records, total, nil
}

// ListPendingExports returns bill-backed ledger records not yet pushed
// to the spreadsheet, oldest first. Manual entries never export.
func (r *SQLiteRepository) ListPendingExports(ctx context.Context, limit int) ([]core.LedgerRecord, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := r.conn(ctx).QueryContext(ctx, `
		SELECT id, owner_id, amount_cents, date, description, account_id, category_id, bill_id
		FROM ledger_records
		WHERE bill_id IS NOT NULL AND export_status = 'pending'
		ORDER BY id
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("list pending exports: %w", err)
	}
	defer rows.Close()

	var records []core.LedgerRecord
	for rows.Next() {
		var (
			rec    core.LedgerRecord
			cents  int64
			day    string
			billID sql.NullInt64
		)
		if err := rows.Scan(&rec.ID, &rec.OwnerID, &cents, &day, &rec.Description,
			&rec.AccountID, &rec.CategoryID, &billID); err != nil {
			return nil, fmt.Errorf("scan pending export: %w", err)
		}
		rec.Amount = core.Money{Cents: cents}
		if rec.Date, err = core.ParseDayKey(day); err != nil {
			return nil, fmt.Errorf("ledger record %d date: %w", rec.ID, err)
		}
		if billID.Valid {
			rec.BillID = &billID.Int64
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list pending exports: %w", err)
	}
	return records, nil
}

func (r *SQLiteRepository) MarkExported(ctx context.Context, recordID int64) error {
	_, err := r.conn(ctx).ExecContext(ctx, `
		UPDATE ledger_records
		SET export_status = 'synced', exported_at = CURRENT_TIMESTAMP
		WHERE id = ?`, recordID)
	if err != nil {
		return fmt.Errorf("mark exported: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) MarkExportError(ctx context.Context, recordID int64) error {
	_, err := r.conn(ctx).ExecContext(ctx, `
		UPDATE ledger_records SET export_status = 'error' WHERE id = ?`, recordID)
	if err != nil {
		return fmt.Errorf("mark export error: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) adjustBalance(ctx context.Context, accountID, ownerID, deltaCents int64) error {
	res, err := r.conn(ctx).ExecContext(ctx, `
		UPDATE accounts SET balance_cents = balance_cents + ?
		WHERE id = ? AND owner_id = ?`, deltaCents, accountID, ownerID)
	if err != nil {
		return fmt.Errorf("adjust balance: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("account %d: %w", accountID, core.ErrNotFound)
	}
	return nil
}

// --- accounts ---

func (r *SQLiteRepository) CreateAccount(ctx context.Context, a core.Account) (core.Account, error) {
	res, err := r.conn(ctx).ExecContext(ctx,
		`INSERT INTO accounts (owner_id, name, balance_cents) VALUES (?, ?, ?)`,
		a.OwnerID, a.Name, a.Balance.Cents)
	if err != nil {
		return core.Account{}, fmt.Errorf("insert account: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return core.Account{}, fmt.Errorf("account insert id: %w", err)
	}
	a.ID = id
	return a, nil
}

func (r *SQLiteRepository) GetAccount(ctx context.Context, accountID, ownerID int64) (core.Account, error) {
	var (
		a     core.Account
		cents int64
	)
	err := r.conn(ctx).QueryRowContext(ctx,
		`SELECT id, owner_id, name, balance_cents FROM accounts WHERE id = ? AND owner_id = ?`,
		accountID, ownerID).Scan(&a.ID, &a.OwnerID, &a.Name, &cents)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Account{}, fmt.Errorf("account %d: %w", accountID, core.ErrNotFound)
	}
	if err != nil {
		return core.Account{}, fmt.Errorf("get account: %w", err)
	}
	a.Balance = core.Money{Cents: cents}
	return a, nil
}

func (r *SQLiteRepository) ListAccounts(ctx context.Context, ownerID int64) ([]core.Account, error) {
	rows, err := r.conn(ctx).QueryContext(ctx,
		`SELECT id, owner_id, name, balance_cents FROM accounts WHERE owner_id = ? ORDER BY id`, ownerID)
	if err != nil {
		return nil, fmt.Errorf("list accounts: %w", err)
	}
	defer rows.Close()

	var accounts []core.Account
	for rows.Next() {
		var (
			a     core.Account
			cents int64
		)
		if err := rows.Scan(&a.ID, &a.OwnerID, &a.Name, &cents); err != nil {
			return nil, fmt.Errorf("scan account: %w", err)
		}
		a.Balance = core.Money{Cents: cents}
		accounts = append(accounts, a)
	}
	return accounts, rows.Err()
}

func (r *SQLiteRepository) DeleteAccount(ctx context.Context, accountID, ownerID int64) error {
	res, err := r.conn(ctx).ExecContext(ctx,
		`DELETE FROM accounts WHERE id = ? AND owner_id = ?`, accountID, ownerID)
	if err != nil {
		return fmt.Errorf("delete account: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("account %d: %w", accountID, core.ErrNotFound)
	}
	return nil
}

// --- categories ---

func (r *SQLiteRepository) CreateCategory(ctx context.Context, c core.Category) (core.Category, error) {
	res, err := r.conn(ctx).ExecContext(ctx,
		`INSERT INTO categories (owner_id, name, kind) VALUES (?, ?, ?)`,
		c.OwnerID, c.Name, string(c.Kind))
	if err != nil {
		return core.Category{}, fmt.Errorf("insert category: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return core.Category{}, fmt.Errorf("category insert id: %w", err)
	}
	c.ID = id
	return c, nil
}

func (r *SQLiteRepository) ListCategories(ctx context.Context, ownerID int64) ([]core.Category, error) {
	rows, err := r.conn(ctx).QueryContext(ctx,
		`SELECT id, owner_id, name, kind FROM categories WHERE owner_id = ? ORDER BY id`, ownerID)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()

	var categories []core.Category
	for rows.Next() {
		var (
			c    core.Category
			kind string
		)
		if err := rows.Scan(&c.ID, &c.OwnerID, &c.Name, &kind); err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		c.Kind = core.CategoryKind(kind)
		categories = append(categories, c)
	}
	return categories, rows.Err()
}

func (r *SQLiteRepository) DeleteCategory(ctx context.Context, categoryID, ownerID int64) error {
	res, err := r.conn(ctx).ExecContext(ctx,
		`DELETE FROM categories WHERE id = ? AND owner_id = ?`, categoryID, ownerID)
	if err != nil {
		return fmt.Errorf("delete category: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("category %d: %w", categoryID, core.ErrNotFound)
	}
	return nil
}

// --- scan helpers ---

type rowScanner interface {
	Scan(dest ...any) error
}

func scanBill(row rowScanner) (core.Bill, error) {
	var (
		b     core.Bill
		cents int64
		due   string
		end   sql.NullString
		freq  string
	)
	err := row.Scan(&b.ID, &b.OwnerID, &b.Name, &cents, &due, &end, &freq,
		&b.CategoryID, &b.AccountID, &b.Version)
	if err != nil {
		return core.Bill{}, err
	}
	b.Amount = core.Money{Cents: cents}
	if b.DueDate, err = core.ParseDayKey(due); err != nil {
		return core.Bill{}, fmt.Errorf("bill %d due date: %w", b.ID, err)
	}
	if b.EndDate, err = parseDayKeyOrNil(end); err != nil {
		return core.Bill{}, fmt.Errorf("bill %d end date: %w", b.ID, err)
	}
	b.Frequency = core.Frequency(freq)
	return b, nil
}

func dayKeyOrNil(d *core.Date) any {
	if d == nil {
		return nil
	}
	return d.DayKey()
}

func centsOrNil(m *core.Money) any {
	if m == nil {
		return nil
	}
	return m.Cents
}

func freqOrNil(f *core.Frequency) any {
	if f == nil {
		return nil
	}
	return string(*f)
}

func parseDayKeyOrNil(s sql.NullString) (*core.Date, error) {
	if !s.Valid {
		return nil, nil
	}
	d, err := core.ParseDayKey(s.String)
	if err != nil {
		return nil, err
	}
	return &d, nil
}
