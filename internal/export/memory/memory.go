// Package memory provides an in-memory export writer for tests and the
// development backend.
package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"bollette/internal/core"
)

// Row is one appended spreadsheet line.
type Row struct {
	Date          string
	Description   string
	AmountCents   int64
	TransactionID int64
	Kind          string
}

type Writer struct {
	mu   sync.Mutex
	rows []Row

	// nextErr, when set, fails the next append and is then cleared.
	nextErr error
}

func NewWriter() *Writer {
	return &Writer{}
}

// FailNext makes the next append return err. Used to exercise the
// worker's error path.
func (w *Writer) FailNext(err error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.nextErr = err
}

func (w *Writer) AppendPayment(_ context.Context, rec core.LedgerRecord) (string, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.nextErr != nil {
		err := w.nextErr
		w.nextErr = nil
		return "", err
	}
	w.rows = append(w.rows, Row{
		Date:          rec.Date.DayKey(),
		Description:   rec.Description,
		AmountCents:   rec.Amount.Cents,
		TransactionID: rec.ID,
		Kind:          "pagamento",
	})
	return fmt.Sprintf("mem:%d", len(w.rows)), nil
}

func (w *Writer) AppendReversal(_ context.Context, transactionID, ownerID int64) (string, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.nextErr != nil {
		err := w.nextErr
		w.nextErr = nil
		return "", err
	}
	w.rows = append(w.rows, Row{
		Date:          time.Now().UTC().Format("2006-01-02"),
		Description:   fmt.Sprintf("storno transazione %d", transactionID),
		TransactionID: transactionID,
		Kind:          "storno",
	})
	return fmt.Sprintf("mem:%d", len(w.rows)), nil
}

// Rows returns a copy of everything appended so far.
func (w *Writer) Rows() []Row {
	w.mu.Lock()
	defer w.mu.Unlock()
	out := make([]Row, len(w.rows))
	copy(out, w.rows)
	return out
}
