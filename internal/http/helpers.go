package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"bollette/internal/core"
)

// ownerHeader identifies the requesting owner. Authentication proper
// sits in front of this service; the header is trusted as-is.
const ownerHeader = "X-Owner-ID"

type errorBody struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if v != nil {
		_ = json.NewEncoder(w).Encode(v)
	}
}

// writeError maps domain errors onto HTTP statuses.
func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, core.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, core.ErrAlreadyPaid), errors.Is(err, core.ErrNotPaid):
		status = http.StatusConflict
	case errors.Is(err, core.ErrInvalidOperation),
		errors.Is(err, core.ErrInvalidAmount),
		errors.Is(err, core.ErrEmptyName),
		errors.Is(err, core.ErrNameTooLong),
		errors.Is(err, core.ErrInvalidFrequency),
		errors.Is(err, core.ErrInvalidKind),
		errors.Is(err, core.ErrInvalidDateRange):
		status = http.StatusUnprocessableEntity
	case errors.Is(err, core.ErrDependencyFailure):
		status = http.StatusBadGateway
	}
	writeJSON(w, status, errorBody{Error: err.Error()})
}

func writeBadRequest(w http.ResponseWriter, msg string) {
	writeJSON(w, http.StatusBadRequest, errorBody{Error: msg})
}

// ownerID extracts the owner identity from the request header.
func ownerID(r *http.Request) (int64, bool) {
	v := strings.TrimSpace(r.Header.Get(ownerHeader))
	if v == "" {
		return 0, false
	}
	id, err := strconv.ParseInt(v, 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

func pathID(r *http.Request, name string) (int64, error) {
	return strconv.ParseInt(r.PathValue(name), 10, 64)
}

func pathDate(r *http.Request, name string) (core.Date, error) {
	return core.ParseDayKey(r.PathValue(name))
}

func queryDate(r *http.Request, name string) (core.Date, error) {
	return core.ParseDayKey(strings.TrimSpace(r.URL.Query().Get(name)))
}

func queryBool(r *http.Request, name string) bool {
	v := strings.TrimSpace(r.URL.Query().Get(name))
	b, _ := strconv.ParseBool(v)
	return b
}

func queryInt(r *http.Request, name string, def int) int {
	v := strings.TrimSpace(r.URL.Query().Get(name))
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return def
	}
	return n
}

// decodeBody decodes a JSON request body, rejecting unknown fields so
// typos in patch payloads fail loudly instead of silently doing nothing.
func decodeBody(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}
