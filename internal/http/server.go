package http

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"pocketwise/internal/auth"
	applog "pocketwise/internal/log"
	"pocketwise/internal/middleware/trace"
	"pocketwise/internal/services"
)

// Server wires the API routes to the service layer. It embeds http.Server
// so callers can ListenAndServe and Shutdown it directly.
type Server struct {
	http.Server

	transactions *services.TransactionService
	recurring    *services.RecurringService
	goals        *services.GoalService
	onboarding   *services.OnboardingService
	dashboard    *services.DashboardService
	export       *services.ExportService

	logger      *applog.Logger
	rateLimiter *rateLimiter
	metrics     *securityMetrics

	shutdownOnce sync.Once
}

// Services bundles the dependencies NewServer needs so the constructor
// signature stays flat.
type Services struct {
	Transactions *services.TransactionService
	Recurring    *services.RecurringService
	Goals        *services.GoalService
	Onboarding   *services.OnboardingService
	Dashboard    *services.DashboardService
	Export       *services.ExportService
}

// NewServer configures the route table, returning a ready-to-run server.
// Every /api route sits behind bearer-token auth; /healthz does not.
func NewServer(addr, jwtSecret string, deps Services, logger *applog.Logger) *Server {
	mux := http.NewServeMux()

	s := &Server{
		Server: http.Server{
			Addr:              addr,
			Handler:           nil,
			ReadHeaderTimeout: 10 * time.Second,
		},
		transactions: deps.Transactions,
		recurring:    deps.Recurring,
		goals:        deps.Goals,
		onboarding:   deps.Onboarding,
		dashboard:    deps.Dashboard,
		export:       deps.Export,
		logger:       logger.WithComponent(applog.ComponentHTTP),
		rateLimiter:  newRateLimiter(),
		metrics:      &securityMetrics{},
	}

	mux.HandleFunc("GET /healthz", s.handleHealth)

	api := http.NewServeMux()
	api.HandleFunc("POST /api/transactions", s.handleCreateTransaction)
	api.HandleFunc("GET /api/transactions", s.handleListTransactions)
	api.HandleFunc("DELETE /api/transactions/{id}", s.handleDeleteTransaction)
	api.HandleFunc("POST /api/transactions/recurring", s.handleCreateRecurring)
	api.HandleFunc("GET /api/stats", s.handleStats)
	api.HandleFunc("GET /api/stats/categories", s.handleCategoryStats)

	api.HandleFunc("POST /api/goals", s.handleCreateGoal)
	api.HandleFunc("GET /api/goals", s.handleListGoals)
	api.HandleFunc("PATCH /api/goals/{id}", s.handleUpdateGoal)
	api.HandleFunc("DELETE /api/goals/{id}", s.handleDeleteGoal)
	api.HandleFunc("POST /api/goals/{id}/deposit", s.handleGoalDeposit)

	api.HandleFunc("GET /api/onboarding/questions", s.handleQuizQuestions)
	api.HandleFunc("POST /api/onboarding", s.handleOnboarding)
	api.HandleFunc("GET /api/profile", s.handleProfile)
	api.HandleFunc("PUT /api/budget", s.handleSetBudget)

	api.HandleFunc("GET /api/dashboard", s.handleDashboard)

	api.HandleFunc("GET /api/export/csv", s.handleExportCSV)
	api.HandleFunc("GET /api/export/xlsx", s.handleExportXLSX)
	api.HandleFunc("POST /api/import/csv", s.handleImportCSV)
	api.HandleFunc("GET /api/backup", s.handleBackup)
	api.HandleFunc("POST /api/restore", s.handleRestore)

	authn := auth.Middleware(jwtSecret)
	mux.Handle("/api/", authn(api))

	s.Handler = trace.NewMiddleware().Handler(applog.Middleware(logger)(s.withSecurity(mux)))
	return s
}

// withSecurity adds security headers, per-IP rate limiting on mutating
// methods, and request logging around the whole mux.
func (s *Server) withSecurity(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		clientIP := extractClientIP(r)

		if detectSuspiciousRequest(r, s.metrics) {
			s.logger.WarnContext(r.Context(), "Suspicious request pattern",
				applog.FieldClientIP, clientIP,
				applog.FieldMethod, r.Method,
				applog.FieldPath, r.URL.Path)
		}

		switch r.Method {
		case http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete:
			if !s.rateLimiter.allow(clientIP, s.metrics) {
				s.logger.WarnContext(r.Context(), "Rate limit exceeded",
					applog.FieldClientIP, clientIP,
					applog.FieldMethod, r.Method,
					applog.FieldPath, r.URL.Path)
				w.Header().Set("Retry-After", "60")
				writeError(w, r, http.StatusTooManyRequests, "rate limit exceeded, try again later")
				return
			}
		}

		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")

		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next.ServeHTTP(rw, r)

		s.logger.InfoContext(r.Context(), "Request completed",
			applog.FieldRequestID, trace.RequestID(r.Context()),
			applog.FieldMethod, r.Method,
			applog.FieldPath, r.URL.Path,
			applog.FieldStatusCode, rw.statusCode,
			applog.FieldDuration, time.Since(start).Milliseconds(),
			applog.FieldClientIP, clientIP)
	})
}

// responseWriter captures the status code written by a handler.
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

// Shutdown stops the rate limiter's cleanup goroutine and then drains the
// HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	var err error
	s.shutdownOnce.Do(func() {
		s.rateLimiter.stop()
		err = s.Server.Shutdown(ctx)
	})
	return err
}
