package http

import (
	"bollette/internal/core"
)

// Wire representations. Amounts travel as signed cents; dates as
// YYYY-MM-DD day keys.

type billPayload struct {
	Name        string `json:"name"`
	AmountCents int64  `json:"amount_cents"`
	DueDate     string `json:"due_date"`
	EndDate     string `json:"end_date,omitempty"`
	Frequency   string `json:"frequency"`
	CategoryID  int64  `json:"category_id"`
	AccountID   int64  `json:"account_id"`
}

type billResponse struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	AmountCents int64  `json:"amount_cents"`
	DueDate     string `json:"due_date"`
	EndDate     string `json:"end_date,omitempty"`
	Frequency   string `json:"frequency"`
	CategoryID  int64  `json:"category_id"`
	AccountID   int64  `json:"account_id"`
}

func toBillResponse(b core.Bill) billResponse {
	resp := billResponse{
		ID:          b.ID,
		Name:        b.Name,
		AmountCents: b.Amount.Cents,
		DueDate:     b.DueDate.DayKey(),
		Frequency:   string(b.Frequency),
		CategoryID:  b.CategoryID,
		AccountID:   b.AccountID,
	}
	if b.EndDate != nil {
		resp.EndDate = b.EndDate.DayKey()
	}
	return resp
}

type instanceResponse struct {
	BillID        int64  `json:"bill_id"`
	TargetDate    string `json:"target_date"`
	Name          string `json:"name"`
	AmountCents   int64  `json:"amount_cents"`
	DueDate       string `json:"due_date"`
	Frequency     string `json:"frequency"`
	CategoryID    int64  `json:"category_id"`
	AccountID     int64  `json:"account_id"`
	Status        string `json:"status"`
	PaidDate      string `json:"paid_date,omitempty"`
	TransactionID *int64 `json:"transaction_id,omitempty"`
}

func toInstanceResponse(inst core.Instance) instanceResponse {
	resp := instanceResponse{
		BillID:        inst.BillID,
		TargetDate:    inst.TargetDate.DayKey(),
		Name:          inst.Name,
		AmountCents:   inst.Amount.Cents,
		DueDate:       inst.DueDate.DayKey(),
		Frequency:     string(inst.Frequency),
		CategoryID:    inst.CategoryID,
		AccountID:     inst.AccountID,
		Status:        string(inst.Status),
		TransactionID: inst.TransactionID,
	}
	if inst.PaidDate != nil {
		resp.PaidDate = inst.PaidDate.DayKey()
	}
	return resp
}

// instancePatchPayload carries a partial edit. Pointer fields
// distinguish "leave alone" from "set to".
type instancePatchPayload struct {
	Name          *string `json:"name,omitempty"`
	AmountCents   *int64  `json:"amount_cents,omitempty"`
	DueDate       *string `json:"due_date,omitempty"`
	EndDate       *string `json:"end_date,omitempty"`
	Frequency     *string `json:"frequency,omitempty"`
	CategoryID    *int64  `json:"category_id,omitempty"`
	AccountID     *int64  `json:"account_id,omitempty"`
	ApplyToFuture bool    `json:"apply_to_future,omitempty"`
}

func (p instancePatchPayload) toPatch() (core.InstancePatch, error) {
	var patch core.InstancePatch
	patch.Name = p.Name
	if p.AmountCents != nil {
		patch.Amount = &core.Money{Cents: *p.AmountCents}
	}
	if p.DueDate != nil {
		d, err := core.ParseDayKey(*p.DueDate)
		if err != nil {
			return core.InstancePatch{}, err
		}
		patch.DueDate = &d
	}
	if p.EndDate != nil {
		d, err := core.ParseDayKey(*p.EndDate)
		if err != nil {
			return core.InstancePatch{}, err
		}
		patch.EndDate = &d
	}
	if p.Frequency != nil {
		f := core.Frequency(*p.Frequency)
		if !f.Valid() {
			return core.InstancePatch{}, core.ErrInvalidFrequency
		}
		patch.Frequency = &f
	}
	patch.CategoryID = p.CategoryID
	patch.AccountID = p.AccountID
	return patch, nil
}

type accountPayload struct {
	Name         string `json:"name"`
	BalanceCents int64  `json:"balance_cents"`
}

type accountResponse struct {
	ID           int64  `json:"id"`
	Name         string `json:"name"`
	BalanceCents int64  `json:"balance_cents"`
}

func toAccountResponse(a core.Account) accountResponse {
	return accountResponse{ID: a.ID, Name: a.Name, BalanceCents: a.Balance.Cents}
}

type categoryPayload struct {
	Name string `json:"name"`
	Kind string `json:"kind"`
}

type categoryResponse struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
	Kind string `json:"kind"`
}

func toCategoryResponse(c core.Category) categoryResponse {
	return categoryResponse{ID: c.ID, Name: c.Name, Kind: string(c.Kind)}
}

type transactionPayload struct {
	AmountCents int64  `json:"amount_cents"`
	Date        string `json:"date"`
	Description string `json:"description"`
	AccountID   int64  `json:"account_id"`
	CategoryID  int64  `json:"category_id"`
}

type transactionResponse struct {
	ID          int64  `json:"id"`
	AmountCents int64  `json:"amount_cents"`
	Date        string `json:"date"`
	Description string `json:"description"`
	AccountID   int64  `json:"account_id"`
	CategoryID  int64  `json:"category_id"`
	BillID      *int64 `json:"bill_id,omitempty"`
}

func toTransactionResponse(rec core.LedgerRecord) transactionResponse {
	return transactionResponse{
		ID:          rec.ID,
		AmountCents: rec.Amount.Cents,
		Date:        rec.Date.DayKey(),
		Description: rec.Description,
		AccountID:   rec.AccountID,
		CategoryID:  rec.CategoryID,
		BillID:      rec.BillID,
	}
}

type transactionListResponse struct {
	Transactions []transactionResponse `json:"transactions"`
	Total        int                   `json:"total"`
}
