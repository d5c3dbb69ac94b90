package http

import (
	"net/http"
	"strings"

	"bollette/internal/core"
)

func (s *Server) handleCreateAccount(w http.ResponseWriter, r *http.Request) {
	owner, ok := ownerID(r)
	if !ok {
		writeBadRequest(w, "missing or invalid "+ownerHeader+" header")
		return
	}

	var payload accountPayload
	if err := decodeBody(r, &payload); err != nil {
		writeBadRequest(w, "invalid request body: "+err.Error())
		return
	}

	created, err := s.finance.CreateAccount(r.Context(), core.Account{
		OwnerID: owner,
		Name:    strings.TrimSpace(payload.Name),
		Balance: core.Money{Cents: payload.BalanceCents},
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toAccountResponse(created))
}

func (s *Server) handleListAccounts(w http.ResponseWriter, r *http.Request) {
	owner, ok := ownerID(r)
	if !ok {
		writeBadRequest(w, "missing or invalid "+ownerHeader+" header")
		return
	}

	accounts, err := s.finance.ListAccounts(r.Context(), owner)
	if err != nil {
		writeError(w, err)
		return
	}
	resp := make([]accountResponse, 0, len(accounts))
	for _, a := range accounts {
		resp = append(resp, toAccountResponse(a))
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleGetAccount(w http.ResponseWriter, r *http.Request) {
	owner, ok := ownerID(r)
	if !ok {
		writeBadRequest(w, "missing or invalid "+ownerHeader+" header")
		return
	}
	accountID, err := pathID(r, "id")
	if err != nil {
		writeBadRequest(w, "invalid account id")
		return
	}

	account, err := s.finance.GetAccount(r.Context(), accountID, owner)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toAccountResponse(account))
}

func (s *Server) handleDeleteAccount(w http.ResponseWriter, r *http.Request) {
	owner, ok := ownerID(r)
	if !ok {
		writeBadRequest(w, "missing or invalid "+ownerHeader+" header")
		return
	}
	accountID, err := pathID(r, "id")
	if err != nil {
		writeBadRequest(w, "invalid account id")
		return
	}

	if err := s.finance.DeleteAccount(r.Context(), accountID, owner); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleCreateCategory(w http.ResponseWriter, r *http.Request) {
	owner, ok := ownerID(r)
	if !ok {
		writeBadRequest(w, "missing or invalid "+ownerHeader+" header")
		return
	}

	var payload categoryPayload
	if err := decodeBody(r, &payload); err != nil {
		writeBadRequest(w, "invalid request body: "+err.Error())
		return
	}

	created, err := s.finance.CreateCategory(r.Context(), core.Category{
		OwnerID: owner,
		Name:    strings.TrimSpace(payload.Name),
		Kind:    core.CategoryKind(payload.Kind),
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toCategoryResponse(created))
}

func (s *Server) handleListCategories(w http.ResponseWriter, r *http.Request) {
	owner, ok := ownerID(r)
	if !ok {
		writeBadRequest(w, "missing or invalid "+ownerHeader+" header")
		return
	}

	categories, err := s.finance.ListCategories(r.Context(), owner)
	if err != nil {
		writeError(w, err)
		return
	}
	resp := make([]categoryResponse, 0, len(categories))
	for _, c := range categories {
		resp = append(resp, toCategoryResponse(c))
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleDeleteCategory(w http.ResponseWriter, r *http.Request) {
	owner, ok := ownerID(r)
	if !ok {
		writeBadRequest(w, "missing or invalid "+ownerHeader+" header")
		return
	}
	categoryID, err := pathID(r, "id")
	if err != nil {
		writeBadRequest(w, "invalid category id")
		return
	}

	if err := s.finance.DeleteCategory(r.Context(), categoryID, owner); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleCreateTransaction(w http.ResponseWriter, r *http.Request) {
	owner, ok := ownerID(r)
	if !ok {
		writeBadRequest(w, "missing or invalid "+ownerHeader+" header")
		return
	}

	var payload transactionPayload
	if err := decodeBody(r, &payload); err != nil {
		writeBadRequest(w, "invalid request body: "+err.Error())
		return
	}
	date, err := core.ParseDayKey(payload.Date)
	if err != nil {
		writeBadRequest(w, "invalid date: expected YYYY-MM-DD")
		return
	}

	created, err := s.finance.CreateTransaction(r.Context(), core.LedgerRecord{
		OwnerID:     owner,
		Amount:      core.Money{Cents: payload.AmountCents},
		Date:        date,
		Description: strings.TrimSpace(payload.Description),
		AccountID:   payload.AccountID,
		CategoryID:  payload.CategoryID,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toTransactionResponse(created))
}

func (s *Server) handleListTransactions(w http.ResponseWriter, r *http.Request) {
	owner, ok := ownerID(r)
	if !ok {
		writeBadRequest(w, "missing or invalid "+ownerHeader+" header")
		return
	}

	limit := queryInt(r, "limit", 50)
	offset := queryInt(r, "offset", 0)

	records, total, err := s.finance.ListTransactions(r.Context(), owner, limit, offset)
	if err != nil {
		writeError(w, err)
		return
	}
	resp := transactionListResponse{
		Transactions: make([]transactionResponse, 0, len(records)),
		Total:        total,
	}
	for _, rec := range records {
		resp.Transactions = append(resp.Transactions, toTransactionResponse(rec))
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleGetTransaction(w http.ResponseWriter, r *http.Request) {
	owner, ok := ownerID(r)
	if !ok {
		writeBadRequest(w, "missing or invalid "+ownerHeader+" header")
		return
	}
	recordID, err := pathID(r, "id")
	if err != nil {
		writeBadRequest(w, "invalid transaction id")
		return
	}

	rec, err := s.finance.GetTransaction(r.Context(), recordID, owner)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toTransactionResponse(rec))
}

func (s *Server) handleDeleteTransaction(w http.ResponseWriter, r *http.Request) {
	owner, ok := ownerID(r)
	if !ok {
		writeBadRequest(w, "missing or invalid "+ownerHeader+" header")
		return
	}
	recordID, err := pathID(r, "id")
	if err != nil {
		writeBadRequest(w, "invalid transaction id")
		return
	}

	if err := s.finance.DeleteTransaction(r.Context(), recordID, owner); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
