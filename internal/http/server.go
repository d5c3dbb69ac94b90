// Package http exposes the bill engine and ledger over a JSON API.
package http

import (
	"context"
	"log/slog"
	"net/http"
	"sync"

	"bollette/internal/middleware/ratelimit"
	"bollette/internal/middleware/security"
	"bollette/internal/middleware/trace"
	"bollette/internal/services"
)

type Server struct {
	http.Server

	bills   *services.BillService
	finance *services.FinanceService

	limiter      *ratelimit.Limiter
	shutdownOnce sync.Once
}

// NewServer wires routes and middleware, returning a ready-to-run server.
func NewServer(addr string, bills *services.BillService, finance *services.FinanceService) *Server {
	mux := http.NewServeMux()

	s := &Server{
		bills:   bills,
		finance: finance,
		limiter: ratelimit.NewLimiter(ratelimit.DefaultConfig()),
	}

	mux.HandleFunc("GET /healthz", handleHealth)
	mux.HandleFunc("GET /readyz", handleReady)

	mux.HandleFunc("POST /bills", s.handleCreateBill)
	mux.HandleFunc("GET /bills", s.handleListInstances)
	mux.HandleFunc("GET /bills/{id}", s.handleGetBill)
	mux.HandleFunc("DELETE /bills/{id}", s.handleDeleteBill)
	mux.HandleFunc("PATCH /bills/{id}/instances/{targetDate}", s.handleUpdateInstance)
	mux.HandleFunc("DELETE /bills/{id}/instances/{targetDate}", s.handleDeleteInstance)
	mux.HandleFunc("POST /bills/{id}/instances/{targetDate}/pay", s.handlePayInstance)
	mux.HandleFunc("POST /bills/{id}/instances/{targetDate}/unpay", s.handleUnpayInstance)

	mux.HandleFunc("POST /accounts", s.handleCreateAccount)
	mux.HandleFunc("GET /accounts", s.handleListAccounts)
	mux.HandleFunc("GET /accounts/{id}", s.handleGetAccount)
	mux.HandleFunc("DELETE /accounts/{id}", s.handleDeleteAccount)

	mux.HandleFunc("POST /categories", s.handleCreateCategory)
	mux.HandleFunc("GET /categories", s.handleListCategories)
	mux.HandleFunc("DELETE /categories/{id}", s.handleDeleteCategory)

	mux.HandleFunc("POST /transactions", s.handleCreateTransaction)
	mux.HandleFunc("GET /transactions", s.handleListTransactions)
	mux.HandleFunc("GET /transactions/{id}", s.handleGetTransaction)
	mux.HandleFunc("DELETE /transactions/{id}", s.handleDeleteTransaction)

	detector := security.NewDetector()
	headers := security.NewHeadersMiddleware(security.DefaultHeadersConfig())
	tracer := trace.NewMiddleware(detector.ExtractClientIP)
	limit := s.limiter.Middleware(detector.ExtractClientIP, nil)

	var handler http.Handler = mux
	handler = headers.Middleware(handler)
	handler = limit(handler)
	handler = suspicionLogger(detector)(handler)
	handler = tracer.Middleware(handler)

	s.Server = http.Server{
		Addr:    addr,
		Handler: handler,
	}
	return s
}

// Shutdown stops the server and the rate limiter's cleanup goroutine.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		if s.limiter != nil {
			s.limiter.Stop()
		}
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}

// suspicionLogger flags requests that look like scans. Advisory only.
func suspicionLogger(detector *security.Detector) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if detector.DetectSuspiciousRequest(r) {
				slog.WarnContext(r.Context(), "Suspicious request detected",
					"method", r.Method,
					"path", r.URL.Path,
					"client_ip", detector.ExtractClientIP(r))
			}
			next.ServeHTTP(w, r)
		})
	}
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func handleReady(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}
