// Package export defines the outbound port for pushing recorded bill
// payments to an external spreadsheet.
package export

import (
	"context"

	"bollette/internal/core"
)

// Ports for outbound adapters.
type (
	// PaymentWriter appends one recorded payment and returns an opaque
	// reference to the written row.
	PaymentWriter interface {
		AppendPayment(ctx context.Context, rec core.LedgerRecord) (rowRef string, err error)
	}

	// ReversalWriter appends a cancellation marker for a previously
	// exported payment. Rows are matched downstream by transaction id;
	// nothing is ever deleted from the spreadsheet.
	ReversalWriter interface {
		AppendReversal(ctx context.Context, transactionID, ownerID int64) (rowRef string, err error)
	}
)
