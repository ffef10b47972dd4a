// Package http exposes the loan, cashflow and dashboard services as a JSON API.
package http

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/mux"

	"viveka/internal/core"
	vlog "viveka/internal/log"
	"viveka/internal/middleware/ratelimit"
	"viveka/internal/middleware/security"
	"viveka/internal/middleware/trace"
)

// LoanManager is the loan lifecycle API used by the handlers.
type LoanManager interface {
	Get(ctx context.Context, id string) (core.Loan, error)
	Create(ctx context.Context, fields core.LoanFields) (core.Loan, error)
	Update(ctx context.Context, id string, fields core.LoanFields) (core.Loan, error)
	Archive(ctx context.Context, id string) (core.Loan, error)
	Restore(ctx context.Context, id string) (core.Loan, error)
	Close(ctx context.Context, id string) (core.Loan, error)
	MarkPaid(ctx context.Context, id string, asOf time.Time) (core.Loan, error)
	UndoPaid(ctx context.Context, id string, asOf time.Time) (core.Loan, error)
	SetExtraPaid(ctx context.Context, id string, amount int64) (core.Loan, error)
}

type CashflowManager interface {
	Get(ctx context.Context) (core.CashflowProfile, error)
	Save(ctx context.Context, p core.CashflowProfile) (core.CashflowProfile, error)
}

type DashboardReader interface {
	Summary(ctx context.Context) (core.DashboardSummary, error)
	LoanList(ctx context.Context, filter string) ([]core.Loan, error)
	LoanOverview(ctx context.Context, asOf time.Time) (core.LoanOverview, error)
}

type HealthChecker interface {
	Ping(ctx context.Context) error
}

// Deps are the collaborators of the API server. Health may be nil.
type Deps struct {
	Loans     LoanManager
	Cashflow  CashflowManager
	Dashboard DashboardReader
	Health    HealthChecker
	Logger    *vlog.Logger

	// RateLimitPerMinute caps write requests per client; 0 disables it.
	RateLimitPerMinute int
}

type Server struct {
	http.Server

	loans     LoanManager
	cashflow  CashflowManager
	dashboard DashboardReader
	health    HealthChecker

	now     func() time.Time
	tracer  *trace.Middleware
	limiter *ratelimit.Limiter

	shutdownOnce sync.Once
}

// NewServer configures routes and middleware, returning a ready-to-run server.
func NewServer(addr string, deps Deps) *Server {
	router := mux.NewRouter()
	clientIP := security.NewClientIP()

	s := &Server{
		Server: http.Server{
			Addr:              addr,
			Handler:           router,
			ReadHeaderTimeout: 10 * time.Second,
			ReadTimeout:       30 * time.Second,
			WriteTimeout:      30 * time.Second,
			IdleTimeout:       120 * time.Second,
		},
		loans:     deps.Loans,
		cashflow:  deps.Cashflow,
		dashboard: deps.Dashboard,
		health:    deps.Health,
		now:       time.Now,
		tracer:    trace.NewMiddleware(clientIP.Extract),
	}

	logger := deps.Logger
	if logger == nil {
		logger = vlog.New(vlog.DefaultConfig())
	}

	router.Use(
		s.tracer.Middleware,
		vlog.Middleware(logger.WithComponent(vlog.ComponentHTTP)),
		vlog.RequestIDMiddleware(func(r *http.Request) string { return trace.GetRequestID(r.Context()) }),
		security.NewHeadersMiddleware(security.DefaultHeadersConfig()).Middleware,
	)

	router.HandleFunc("/healthz", s.handleHealth).Methods(http.MethodGet)
	router.HandleFunc("/readyz", s.handleReady).Methods(http.MethodGet)

	api := router.PathPrefix("/api").Subrouter()
	if deps.RateLimitPerMinute > 0 {
		s.limiter = ratelimit.NewLimiter(ratelimit.Config{RequestsPerMinute: deps.RateLimitPerMinute})
		api.Use(s.limiter.Middleware(clientIP.Extract, func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusTooManyRequests, errorResponse{Error: "rate limit exceeded"})
		}))
	}

	api.HandleFunc("/dashboard", s.handleDashboard).Methods(http.MethodGet)
	api.HandleFunc("/cashflow", s.handleGetCashflow).Methods(http.MethodGet)
	api.HandleFunc("/cashflow", s.handleSaveCashflow).Methods(http.MethodPut)
	api.HandleFunc("/emi", s.handleEMI).Methods(http.MethodGet)

	api.HandleFunc("/loans", s.handleListLoans).Methods(http.MethodGet)
	api.HandleFunc("/loans", s.handleCreateLoan).Methods(http.MethodPost)
	api.HandleFunc("/loans/overview", s.handleLoanOverview).Methods(http.MethodGet)
	api.HandleFunc("/loans/{id}", s.handleGetLoan).Methods(http.MethodGet)
	api.HandleFunc("/loans/{id}", s.handleUpdateLoan).Methods(http.MethodPut)
	api.HandleFunc("/loans/{id}/archive", s.lifecycle(s.loans.Archive)).Methods(http.MethodPost)
	api.HandleFunc("/loans/{id}/restore", s.lifecycle(s.loans.Restore)).Methods(http.MethodPost)
	api.HandleFunc("/loans/{id}/close", s.lifecycle(s.loans.Close)).Methods(http.MethodPost)
	api.HandleFunc("/loans/{id}/pay", s.monthly(s.loans.MarkPaid)).Methods(http.MethodPost)
	api.HandleFunc("/loans/{id}/undo", s.monthly(s.loans.UndoPaid)).Methods(http.MethodPost)
	api.HandleFunc("/loans/{id}/extra-paid", s.handleSetExtraPaid).Methods(http.MethodPut)

	router.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "not found"})
	})
	router.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusMethodNotAllowed, errorResponse{Error: "method not allowed"})
	})

	return s
}

// Metrics returns the request counters collected by the trace middleware.
func (s *Server) Metrics() trace.Metrics {
	return s.tracer.GetMetrics()
}

// Shutdown stops the rate limiter and drains the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	var err error
	s.shutdownOnce.Do(func() {
		if s.limiter != nil {
			s.limiter.Stop()
		}
		err = s.Server.Shutdown(ctx)
	})
	return err
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if s.health != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := s.health.Ping(ctx); err != nil {
			vlog.FromContext(r.Context()).WarnContext(r.Context(), "Readiness check failed", "error", err)
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}
