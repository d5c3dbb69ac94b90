// Package google exports recorded bill payments to a Google
// Spreadsheet through the Sheets API.
package google

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"bollette/internal/core"
	ports "bollette/internal/export"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"
)

type Client struct {
	svc           *gsheet.Service
	spreadsheetID string
	paymentsSheet string
}

// Ensure interface conformance
var (
	_ ports.PaymentWriter  = (*Client)(nil)
	_ ports.ReversalWriter = (*Client)(nil)
)

// NewFromEnv creates a Sheets client using environment variables.
// Required: GOOGLE_SPREADSHEET_ID
// Optional: GOOGLE_SHEET_NAME (default "Pagamenti"); the current year is
// prefixed automatically so each year gets its own tab.
// Credentials come from GOOGLE_SERVICE_ACCOUNT_JSON,
// GOOGLE_SERVICE_ACCOUNT_FILE, or GOOGLE_APPLICATION_CREDENTIALS.
func NewFromEnv(ctx context.Context) (*Client, error) {
	spreadsheetID := strings.TrimSpace(os.Getenv("GOOGLE_SPREADSHEET_ID"))
	if spreadsheetID == "" {
		return nil, errors.New("missing GOOGLE_SPREADSHEET_ID")
	}

	sheetBase := strings.TrimSpace(os.Getenv("GOOGLE_SHEET_NAME"))
	if sheetBase == "" {
		sheetBase = "Pagamenti"
	}

	svc, err := newSheetsService(ctx)
	if err != nil {
		return nil, fmt.Errorf("sheets service: %w", err)
	}

	return &Client{
		svc:           svc,
		spreadsheetID: spreadsheetID,
		paymentsSheet: yearPrefixedName(sheetBase, time.Now().Year()),
	}, nil
}

// newSheetsService initializes a Sheets Service using Service Account credentials.
func newSheetsService(ctx context.Context) (*gsheet.Service, error) {
	serviceAccountJSON := strings.TrimSpace(os.Getenv("GOOGLE_SERVICE_ACCOUNT_JSON"))
	serviceAccountFile := strings.TrimSpace(os.Getenv("GOOGLE_SERVICE_ACCOUNT_FILE"))
	if serviceAccountJSON == "" && serviceAccountFile == "" {
		serviceAccountFile = strings.TrimSpace(os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"))
	}

	var credentialsJSON []byte
	var err error
	switch {
	case serviceAccountJSON != "":
		credentialsJSON = []byte(serviceAccountJSON)
	case serviceAccountFile != "":
		credentialsJSON, err = os.ReadFile(serviceAccountFile)
		if err != nil {
			return nil, fmt.Errorf("read service account file: %w", err)
		}
	default:
		return nil, errors.New("missing service account credentials (set GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE, or GOOGLE_APPLICATION_CREDENTIALS)")
	}

	service, err := gsheet.NewService(ctx,
		goption.WithCredentialsJSON(credentialsJSON),
		goption.WithScopes(gsheet.SpreadsheetsScope))
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}

	slog.InfoContext(ctx, "Google Sheets service created",
		"credentials_size", len(credentialsJSON))
	return service, nil
}

// AppendPayment writes one recorded payment as a spreadsheet row.
func (c *Client) AppendPayment(ctx context.Context, rec core.LedgerRecord) (string, error) {
	if c.svc == nil {
		return "", errors.New("sheets service not initialized")
	}
	return c.appendRow(ctx, paymentRow(rec))
}

// AppendReversal writes a cancellation marker row. The recorded row
// stays in place; consumers match the two by transaction id.
func (c *Client) AppendReversal(ctx context.Context, transactionID, ownerID int64) (string, error) {
	if c.svc == nil {
		return "", errors.New("sheets service not initialized")
	}
	return c.appendRow(ctx, reversalRow(transactionID, ownerID, time.Now()))
}

func (c *Client) appendRow(ctx context.Context, row []any) (string, error) {
	// Find the next empty row from the current sheet length.
	rng := fmt.Sprintf("%s!A:A", c.paymentsSheet)
	resp, err := c.svc.Spreadsheets.Values.Get(c.spreadsheetID, rng).Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("failed to get sheet dimensions for %s: %w", c.paymentsSheet, err)
	}
	nextRow := len(resp.Values) + 1

	dataRange := fmt.Sprintf("%s!A%d:G%d", c.paymentsSheet, nextRow, nextRow)
	vr := &gsheet.ValueRange{Values: [][]any{row}}
	_, err = c.svc.Spreadsheets.Values.Update(c.spreadsheetID, dataRange, vr).
		ValueInputOption("USER_ENTERED").Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("failed to update %s: %w", dataRange, err)
	}
	return dataRange, nil
}

// Row layout: Date, Description, Amount (euros), Account, Category,
// TransactionID, Kind.
func paymentRow(rec core.LedgerRecord) []any {
	return []any{
		rec.Date.DayKey(),
		rec.Description,
		centsToEuros(rec.Amount.Cents),
		rec.AccountID,
		rec.CategoryID,
		rec.ID,
		"pagamento",
	}
}

func reversalRow(transactionID, ownerID int64, at time.Time) []any {
	return []any{
		at.UTC().Format("2006-01-02"),
		fmt.Sprintf("storno transazione %d", transactionID),
		"",
		"",
		ownerID,
		transactionID,
		"storno",
	}
}

func centsToEuros(cents int64) string {
	euros := float64(cents) / 100.0
	return strconv.FormatFloat(euros, 'f', 2, 64)
}

// yearPrefixedName returns "<year> <base>" unless base already starts with a 4-digit year.
func yearPrefixedName(base string, year int) string {
	base = strings.TrimSpace(base)
	if base == "" {
		return base
	}
	if len(base) >= 5 {
		if y, err := strconv.Atoi(base[0:4]); err == nil && base[4] == ' ' && y > 1900 && y < 3000 {
			return base
		}
	}
	return fmt.Sprintf("%d %s", year, base)
}
