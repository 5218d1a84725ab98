package http

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"spendwatch/internal/cache"
	"spendwatch/internal/middleware/ratelimit"
	"spendwatch/internal/middleware/security"
	"spendwatch/internal/middleware/trace"
	"spendwatch/internal/services"
)

// Server exposes the JSON API. Authentication happens upstream; the
// reverse proxy injects the authenticated user as X-User-ID.
type Server struct {
	expenses      *services.ExpenseService
	categories    *services.CategoryService
	budgets       *services.BudgetService
	notifications *services.NotificationService
	monitor       *services.MonitorService
	analytics     *services.AnalyticsService

	summaryCache *cache.LRUCache[summaryResponse]
	cacheManager *cache.Manager

	limiter *ratelimit.Limiter
	tracer  *trace.Middleware
	headers *security.HeadersMiddleware

	httpServer *http.Server
}

type Deps struct {
	Expenses      *services.ExpenseService
	Categories    *services.CategoryService
	Budgets       *services.BudgetService
	Notifications *services.NotificationService
	Monitor       *services.MonitorService
	Analytics     *services.AnalyticsService
}

func NewServer(port string, deps Deps) *Server {
	s := &Server{
		expenses:      deps.Expenses,
		categories:    deps.Categories,
		budgets:       deps.Budgets,
		notifications: deps.Notifications,
		monitor:       deps.Monitor,
		analytics:     deps.Analytics,

		summaryCache: cache.NewLRUCache[summaryResponse](1000, 30*time.Second),
		cacheManager: cache.NewManager(),
		limiter:      ratelimit.NewLimiter(ratelimit.DefaultConfig()),
		tracer:       trace.NewMiddleware(clientIP),
		headers:      security.NewHeadersMiddleware(security.DefaultHeadersConfig()),
	}
	s.cacheManager.Register(s.summaryCache)
	s.cacheManager.StartCleanup(time.Minute)

	s.httpServer = &http.Server{
		Addr:         ":" + port,
		Handler:      s.handler(),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}
	return s
}

func (s *Server) handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", s.handleHealth)

	api := http.NewServeMux()

	api.HandleFunc("POST /api/expenses", s.handleCreateExpense)
	api.HandleFunc("GET /api/expenses", s.handleListExpenses)
	api.HandleFunc("POST /api/expenses/receipt", s.handleCreateReceiptExpense)
	api.HandleFunc("GET /api/expenses/{id}", s.handleGetExpense)
	api.HandleFunc("PUT /api/expenses/{id}", s.handleUpdateExpense)
	api.HandleFunc("DELETE /api/expenses/{id}", s.handleDeleteExpense)

	api.HandleFunc("GET /api/categories", s.handleListCategories)
	api.HandleFunc("POST /api/categories", s.handleCreateCategory)
	api.HandleFunc("PUT /api/categories/{id}", s.handleUpdateCategory)
	api.HandleFunc("DELETE /api/categories/{id}", s.handleDeleteCategory)

	api.HandleFunc("POST /api/budgets", s.handleCreateBudget)
	api.HandleFunc("GET /api/budgets", s.handleListBudgets)
	api.HandleFunc("GET /api/budgets/snapshots", s.handleListSnapshots)
	api.HandleFunc("GET /api/budgets/summary", s.handleBudgetSummary)
	api.HandleFunc("GET /api/budgets/periods", s.handleBudgetPeriods)
	api.HandleFunc("POST /api/budgets/check", s.handleBudgetCheck)
	api.HandleFunc("GET /api/budgets/{id}", s.handleGetBudget)
	api.HandleFunc("PUT /api/budgets/{id}", s.handleUpdateBudget)
	api.HandleFunc("DELETE /api/budgets/{id}", s.handleDeleteBudget)
	api.HandleFunc("GET /api/budgets/{id}/snapshot", s.handleBudgetSnapshot)

	api.HandleFunc("POST /api/notifications/subscribe", s.handleSubscribe)
	api.HandleFunc("DELETE /api/notifications/subscribe", s.handleUnsubscribe)
	api.HandleFunc("GET /api/notifications/preferences", s.handleGetPreferences)
	api.HandleFunc("PUT /api/notifications/preferences", s.handleUpdatePreferences)
	api.HandleFunc("POST /api/notifications/test", s.handleTestNotification)
	api.HandleFunc("GET /api/notifications/logs", s.handleNotificationLogs)

	api.HandleFunc("GET /api/analytics/categories", s.handleCategorySpending)
	api.HandleFunc("GET /api/analytics/stats", s.handleSpendingStats)
	api.HandleFunc("GET /api/analytics/monthly", s.handleMonthlyTrend)

	mux.Handle("/api/", withUser(api))

	var h http.Handler = mux
	h = s.limiter.Middleware(clientIP, nil)(h)
	h = s.headers.Middleware(h)
	h = s.tracer.Middleware(h)
	return h
}

// Run serves until the context ends, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		slog.InfoContext(ctx, "HTTP server listening", "addr", s.httpServer.Addr)
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	s.limiter.Stop()
	s.cacheManager.Stop()
	return s.httpServer.Shutdown(shutdownCtx)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	resp := map[string]any{"status": "ok"}
	if last := s.monitor.LastSweep(); !last.IsZero() {
		resp["last_sweep"] = last
	}
	writeJSON(w, http.StatusOK, resp)
}

func clientIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		return fwd
	}
	return r.RemoteAddr
}
