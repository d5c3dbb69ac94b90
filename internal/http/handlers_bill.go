package http

import (
	"log/slog"
	"net/http"
	"strings"

	"bollette/internal/core"
)

func (s *Server) handleCreateBill(w http.ResponseWriter, r *http.Request) {
	owner, ok := ownerID(r)
	if !ok {
		writeBadRequest(w, "missing or invalid "+ownerHeader+" header")
		return
	}

	var payload billPayload
	if err := decodeBody(r, &payload); err != nil {
		writeBadRequest(w, "invalid request body: "+err.Error())
		return
	}

	dueDate, err := core.ParseDayKey(payload.DueDate)
	if err != nil {
		writeBadRequest(w, "invalid due_date: "+err.Error())
		return
	}
	bill := core.Bill{
		OwnerID:    owner,
		Name:       strings.TrimSpace(payload.Name),
		Amount:     core.Money{Cents: payload.AmountCents},
		DueDate:    dueDate,
		Frequency:  core.Frequency(payload.Frequency),
		CategoryID: payload.CategoryID,
		AccountID:  payload.AccountID,
	}
	if payload.EndDate != "" {
		endDate, err := core.ParseDayKey(payload.EndDate)
		if err != nil {
			writeBadRequest(w, "invalid end_date: "+err.Error())
			return
		}
		bill.EndDate = &endDate
	}

	created, err := s.bills.CreateBill(r.Context(), bill)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toBillResponse(created))
}

// handleListInstances materializes every occurrence in [start, end].
func (s *Server) handleListInstances(w http.ResponseWriter, r *http.Request) {
	owner, ok := ownerID(r)
	if !ok {
		writeBadRequest(w, "missing or invalid "+ownerHeader+" header")
		return
	}

	start, err := queryDate(r, "start")
	if err != nil {
		writeBadRequest(w, "invalid start: expected YYYY-MM-DD")
		return
	}
	end, err := queryDate(r, "end")
	if err != nil {
		writeBadRequest(w, "invalid end: expected YYYY-MM-DD")
		return
	}
	if end.Before(start.Time) {
		writeError(w, core.ErrInvalidDateRange)
		return
	}

	instances, err := s.bills.ListInstances(r.Context(), owner, start, end)
	if err != nil {
		writeError(w, err)
		return
	}

	resp := make([]instanceResponse, 0, len(instances))
	for _, inst := range instances {
		resp = append(resp, toInstanceResponse(inst))
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleGetBill(w http.ResponseWriter, r *http.Request) {
	owner, ok := ownerID(r)
	if !ok {
		writeBadRequest(w, "missing or invalid "+ownerHeader+" header")
		return
	}
	billID, err := pathID(r, "id")
	if err != nil {
		writeBadRequest(w, "invalid bill id")
		return
	}

	bill, err := s.bills.GetBill(r.Context(), billID, owner)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toBillResponse(bill))
}

func (s *Server) handleDeleteBill(w http.ResponseWriter, r *http.Request) {
	owner, ok := ownerID(r)
	if !ok {
		writeBadRequest(w, "missing or invalid "+ownerHeader+" header")
		return
	}
	billID, err := pathID(r, "id")
	if err != nil {
		writeBadRequest(w, "invalid bill id")
		return
	}

	if err := s.bills.DeleteBill(r.Context(), billID, owner); err != nil {
		writeError(w, err)
		return
	}
	slog.InfoContext(r.Context(), "Bill deleted", "bill_id", billID)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleUpdateInstance(w http.ResponseWriter, r *http.Request) {
	owner, ok := ownerID(r)
	if !ok {
		writeBadRequest(w, "missing or invalid "+ownerHeader+" header")
		return
	}
	billID, err := pathID(r, "id")
	if err != nil {
		writeBadRequest(w, "invalid bill id")
		return
	}
	targetDate, err := pathDate(r, "targetDate")
	if err != nil {
		writeBadRequest(w, "invalid target date: expected YYYY-MM-DD")
		return
	}

	var payload instancePatchPayload
	if err := decodeBody(r, &payload); err != nil {
		writeBadRequest(w, "invalid request body: "+err.Error())
		return
	}
	patch, err := payload.toPatch()
	if err != nil {
		writeError(w, err)
		return
	}

	inst, err := s.bills.UpdateInstance(r.Context(), owner, billID, targetDate, patch, payload.ApplyToFuture)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toInstanceResponse(inst))
}

func (s *Server) handlePayInstance(w http.ResponseWriter, r *http.Request) {
	owner, ok := ownerID(r)
	if !ok {
		writeBadRequest(w, "missing or invalid "+ownerHeader+" header")
		return
	}
	billID, err := pathID(r, "id")
	if err != nil {
		writeBadRequest(w, "invalid bill id")
		return
	}
	targetDate, err := pathDate(r, "targetDate")
	if err != nil {
		writeBadRequest(w, "invalid target date: expected YYYY-MM-DD")
		return
	}

	// The paid date defaults to today; the body may backdate it.
	var payload struct {
		PaidDate string `json:"paid_date,omitempty"`
	}
	if r.ContentLength > 0 {
		if err := decodeBody(r, &payload); err != nil {
			writeBadRequest(w, "invalid request body: "+err.Error())
			return
		}
	}
	paidDate := core.Today()
	if payload.PaidDate != "" {
		paidDate, err = core.ParseDayKey(payload.PaidDate)
		if err != nil {
			writeBadRequest(w, "invalid paid_date: expected YYYY-MM-DD")
			return
		}
	}

	inst, err := s.bills.PayInstance(r.Context(), owner, billID, targetDate, paidDate)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toInstanceResponse(inst))
}

func (s *Server) handleUnpayInstance(w http.ResponseWriter, r *http.Request) {
	owner, ok := ownerID(r)
	if !ok {
		writeBadRequest(w, "missing or invalid "+ownerHeader+" header")
		return
	}
	billID, err := pathID(r, "id")
	if err != nil {
		writeBadRequest(w, "invalid bill id")
		return
	}
	targetDate, err := pathDate(r, "targetDate")
	if err != nil {
		writeBadRequest(w, "invalid target date: expected YYYY-MM-DD")
		return
	}

	inst, err := s.bills.CancelInstancePayment(r.Context(), owner, billID, targetDate)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toInstanceResponse(inst))
}

func (s *Server) handleDeleteInstance(w http.ResponseWriter, r *http.Request) {
	owner, ok := ownerID(r)
	if !ok {
		writeBadRequest(w, "missing or invalid "+ownerHeader+" header")
		return
	}
	billID, err := pathID(r, "id")
	if err != nil {
		writeBadRequest(w, "invalid bill id")
		return
	}
	targetDate, err := pathDate(r, "targetDate")
	if err != nil {
		writeBadRequest(w, "invalid target date: expected YYYY-MM-DD")
		return
	}

	if _, err := s.bills.DeleteInstance(r.Context(), owner, billID, targetDate, queryBool(r, "apply_to_future")); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
