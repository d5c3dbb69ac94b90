package worker

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"bollette/internal/amqp"
	"bollette/internal/core"
	expmem "bollette/internal/export/memory"
)

type fakeStore struct {
	records  map[int64]core.LedgerRecord
	statuses map[int64]string
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		records:  make(map[int64]core.LedgerRecord),
		statuses: make(map[int64]string),
	}
}

func (s *fakeStore) add(rec core.LedgerRecord) {
	s.records[rec.ID] = rec
	s.statuses[rec.ID] = "pending"
}

func (s *fakeStore) GetRecord(_ context.Context, recordID, ownerID int64) (core.LedgerRecord, error) {
	rec, ok := s.records[recordID]
	if !ok || rec.OwnerID != ownerID {
		return core.LedgerRecord{}, fmt.Errorf("ledger record %d: %w", recordID, core.ErrNotFound)
	}
	return rec, nil
}

func (s *fakeStore) ListPendingExports(_ context.Context, limit int) ([]core.LedgerRecord, error) {
	var out []core.LedgerRecord
	for id := int64(1); id <= int64(len(s.records))+10; id++ {
		if s.statuses[id] == "pending" {
			if rec, ok := s.records[id]; ok {
				out = append(out, rec)
				if len(out) == limit {
					break
				}
			}
		}
	}
	return out, nil
}

func (s *fakeStore) MarkExported(_ context.Context, recordID int64) error {
	s.statuses[recordID] = "synced"
	return nil
}

func (s *fakeStore) MarkExportError(_ context.Context, recordID int64) error {
	s.statuses[recordID] = "error"
	return nil
}

func testRecord(id int64) core.LedgerRecord {
	billID := int64(3)
	return core.LedgerRecord{
		ID:          id,
		OwnerID:     7,
		Amount:      core.Money{Cents: -120000},
		Date:        core.NewDate(2025, 1, 15),
		Description: "Rent",
		AccountID:   1,
		CategoryID:  2,
		BillID:      &billID,
	}
}

func TestHandlePaymentRecorded(t *testing.T) {
	store := newFakeStore()
	store.add(testRecord(42))
	writer := expmem.NewWriter()
	w := NewExportWorker(store, writer, writer, 25)

	msg := amqp.NewPaymentEventMessage(amqp.EventPaymentRecorded, 42, 7)
	if err := w.HandlePaymentEvent(context.Background(), msg); err != nil {
		t.Fatalf("HandlePaymentEvent() error = %v", err)
	}

	rows := writer.Rows()
	if len(rows) != 1 {
		t.Fatalf("rows = %d, want 1", len(rows))
	}
	if rows[0].TransactionID != 42 || rows[0].Kind != "pagamento" {
		t.Errorf("row = %+v, want transaction 42 pagamento", rows[0])
	}
	if store.statuses[42] != "synced" {
		t.Errorf("status = %s, want synced", store.statuses[42])
	}
}

func TestHandlePaymentRecordedMissingRecord(t *testing.T) {
	store := newFakeStore()
	writer := expmem.NewWriter()
	w := NewExportWorker(store, writer, writer, 25)

	msg := amqp.NewPaymentEventMessage(amqp.EventPaymentRecorded, 99, 7)
	err := w.HandlePaymentEvent(context.Background(), msg)
	if !errors.Is(err, core.ErrNotFound) {
		t.Errorf("error = %v, want ErrNotFound", err)
	}
}

func TestHandlePaymentCancelled(t *testing.T) {
	store := newFakeStore()
	writer := expmem.NewWriter()
	w := NewExportWorker(store, writer, writer, 25)

	msg := amqp.NewPaymentEventMessage(amqp.EventPaymentCancelled, 42, 7)
	if err := w.HandlePaymentEvent(context.Background(), msg); err != nil {
		t.Fatalf("HandlePaymentEvent() error = %v", err)
	}

	rows := writer.Rows()
	if len(rows) != 1 {
		t.Fatalf("rows = %d, want 1", len(rows))
	}
	if rows[0].Kind != "storno" || rows[0].TransactionID != 42 {
		t.Errorf("row = %+v, want storno for transaction 42", rows[0])
	}
}

func TestHandleUnknownKindDropped(t *testing.T) {
	store := newFakeStore()
	writer := expmem.NewWriter()
	w := NewExportWorker(store, writer, writer, 25)

	msg := amqp.NewPaymentEventMessage("payment.exploded", 42, 7)
	if err := w.HandlePaymentEvent(context.Background(), msg); err != nil {
		t.Errorf("unknown kind should be dropped, got error %v", err)
	}
	if len(writer.Rows()) != 0 {
		t.Errorf("rows = %d, want 0", len(writer.Rows()))
	}
}

func TestProcessPendingExports(t *testing.T) {
	store := newFakeStore()
	store.add(testRecord(1))
	store.add(testRecord(2))
	store.add(testRecord(3))
	writer := expmem.NewWriter()
	w := NewExportWorker(store, writer, writer, 25)

	if err := w.ProcessPendingExports(context.Background()); err != nil {
		t.Fatalf("ProcessPendingExports() error = %v", err)
	}
	if len(writer.Rows()) != 3 {
		t.Fatalf("rows = %d, want 3", len(writer.Rows()))
	}
	for id := int64(1); id <= 3; id++ {
		if store.statuses[id] != "synced" {
			t.Errorf("record %d status = %s, want synced", id, store.statuses[id])
		}
	}

	// Second run finds nothing pending.
	if err := w.ProcessPendingExports(context.Background()); err != nil {
		t.Fatalf("second ProcessPendingExports() error = %v", err)
	}
	if len(writer.Rows()) != 3 {
		t.Errorf("rows after second run = %d, want still 3", len(writer.Rows()))
	}
}

func TestExportFailureMarksError(t *testing.T) {
	store := newFakeStore()
	store.add(testRecord(1))
	store.add(testRecord(2))
	writer := expmem.NewWriter()
	writer.FailNext(errors.New("quota exceeded"))
	w := NewExportWorker(store, writer, writer, 25)

	if err := w.ProcessPendingExports(context.Background()); err != nil {
		t.Fatalf("ProcessPendingExports() error = %v", err)
	}

	// First record failed and was marked, second still went through.
	if store.statuses[1] != "error" {
		t.Errorf("record 1 status = %s, want error", store.statuses[1])
	}
	if store.statuses[2] != "synced" {
		t.Errorf("record 2 status = %s, want synced", store.statuses[2])
	}
	if len(writer.Rows()) != 1 {
		t.Errorf("rows = %d, want 1", len(writer.Rows()))
	}
}

func TestStartupExportCheck(t *testing.T) {
	store := newFakeStore()
	store.add(testRecord(1))
	writer := expmem.NewWriter()
	w := NewExportWorker(store, writer, writer, 25)

	if err := w.StartupExportCheck(context.Background()); err != nil {
		t.Fatalf("StartupExportCheck() error = %v", err)
	}
	if store.statuses[1] != "synced" {
		t.Errorf("status = %s, want synced", store.statuses[1])
	}
}
