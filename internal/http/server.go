package http

import (
	"context"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"path"
	"sync"
	"time"

	plog "panini/internal/log"
	"panini/internal/metrics"
	"panini/internal/middleware/ratelimit"
	"panini/internal/middleware/security"
	"panini/internal/middleware/trace"
	"panini/internal/services"
	"panini/internal/session"
	appweb "panini/web"
)

const loginPath = "/login"

// Services groups the application services the handlers call.
type Services struct {
	Users        *services.UserService
	Categories   *services.CategoryService
	Transactions *services.TransactionService
	Payments     *services.PaymentService
	Reminders    *services.ReminderService
	Balances     *services.BalanceService
	Reports      *services.ReportService
}

// Config carries the server's collaborators other than the services.
type Config struct {
	Addr               string
	Logger             *plog.Logger
	Metrics            *metrics.Metrics
	Sessions           *session.Manager
	RateLimitPerMinute int
	// Ready reports whether the database answers; nil means always ready.
	Ready func(ctx context.Context) error
}

// Server serves the household web UI.
type Server struct {
	http.Server

	base     *template.Template
	pages    map[string]*template.Template
	svc      Services
	sessions *session.Manager
	metrics  *metrics.Metrics
	logger   *plog.Logger
	limiter  *ratelimit.Limiter
	ready    func(ctx context.Context) error
	now      func() time.Time

	shutdownOnce sync.Once
}

// NewServer parses the embedded templates and wires routes and middleware,
// returning a ready-to-run http.Server.
func NewServer(cfg Config, svc Services) (*Server, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = plog.New(plog.Config{Component: plog.ComponentHTTP})
	}

	base, pages, err := parseTemplates()
	if err != nil {
		return nil, err
	}

	limiterCfg := ratelimit.DefaultConfig()
	if cfg.RateLimitPerMinute > 0 {
		limiterCfg.RequestsPerMinute = cfg.RateLimitPerMinute
	}

	s := &Server{
		base:     base,
		pages:    pages,
		svc:      svc,
		sessions: cfg.Sessions,
		metrics:  cfg.Metrics,
		logger:   logger.WithComponent(plog.ComponentHTTP),
		limiter:  ratelimit.NewLimiter(limiterCfg),
		ready:    cfg.Ready,
		now:      time.Now,
	}

	s.Server = http.Server{
		Addr:              cfg.Addr,
		Handler:           s.routes(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
	return s, nil
}

func (s *Server) routes() http.Handler {
	app := http.NewServeMux()
	app.HandleFunc("GET /{$}", s.handleDashboard)
	app.HandleFunc("GET /ui/month-overview", s.handleMonthOverview)

	app.HandleFunc("GET /transactions", s.handleListTransactions)
	app.HandleFunc("GET /transactions/new", s.handleNewTransaction)
	app.HandleFunc("POST /transactions", s.handleCreateTransaction)
	app.HandleFunc("GET /transactions/{id}", s.handleEditTransaction)
	app.HandleFunc("POST /transactions/{id}", s.handleUpdateTransaction)
	app.HandleFunc("DELETE /transactions/{id}", s.handleDeleteTransaction)
	app.HandleFunc("POST /transactions/{id}/delete", s.handleDeleteTransaction)
	app.HandleFunc("GET /installments", s.handleInstallments)

	app.HandleFunc("GET /payments", s.handleListPayments)
	app.HandleFunc("GET /payments/new", s.handleNewPayment)
	app.HandleFunc("POST /payments", s.handleCreatePayment)
	app.HandleFunc("GET /payments/{id}", s.handleEditPayment)
	app.HandleFunc("POST /payments/{id}", s.handleUpdatePayment)
	app.HandleFunc("DELETE /payments/{id}", s.handleDeletePayment)
	app.HandleFunc("POST /payments/{id}/delete", s.handleDeletePayment)

	app.HandleFunc("GET /categories", s.handleListCategories)
	app.HandleFunc("GET /categories/new", s.handleNewCategory)
	app.HandleFunc("POST /categories", s.handleCreateCategory)
	app.HandleFunc("GET /categories/{id}", s.handleEditCategory)
	app.HandleFunc("POST /categories/{id}", s.handleUpdateCategory)
	app.HandleFunc("DELETE /categories/{id}", s.handleDeleteCategory)
	app.HandleFunc("POST /categories/{id}/delete", s.handleDeleteCategory)

	app.HandleFunc("GET /users", s.handleListUsers)
	app.HandleFunc("GET /users/new", s.handleNewUser)
	app.HandleFunc("POST /users", s.handleCreateUser)
	app.HandleFunc("GET /users/{id}", s.handleEditUser)
	app.HandleFunc("POST /users/{id}", s.handleUpdateUser)
	app.HandleFunc("DELETE /users/{id}", s.handleDeleteUser)
	app.HandleFunc("POST /users/{id}/delete", s.handleDeleteUser)

	app.HandleFunc("GET /reminders", s.handleListReminders)
	app.HandleFunc("GET /reminders/new", s.handleNewReminder)
	app.HandleFunc("POST /reminders", s.handleCreateReminder)
	app.HandleFunc("GET /reminders/{id}", s.handleEditReminder)
	app.HandleFunc("POST /reminders/{id}", s.handleUpdateReminder)
	app.HandleFunc("DELETE /reminders/{id}", s.handleDeleteReminder)
	app.HandleFunc("POST /reminders/{id}/delete", s.handleDeleteReminder)

	app.HandleFunc("GET /export.xlsx", s.handleExport)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)
	if s.metrics != nil {
		mux.Handle("GET /metrics", s.metrics.Handler())
	}
	mux.HandleFunc("GET "+loginPath, s.handleLoginForm)
	mux.HandleFunc("POST "+loginPath, s.handleLogin)
	mux.HandleFunc("POST /logout", s.handleLogout)

	if sub, err := fs.Sub(appweb.StaticFS, "static"); err == nil {
		static := http.StripPrefix("/static/", http.FileServer(http.FS(sub)))
		mux.Handle("GET /static/", security.StaticAssetMiddleware(3600)(static))
	} else {
		s.logger.WarnContext(context.Background(), "Failed to mount embedded static FS", plog.FieldError, err)
	}

	mux.Handle("/", s.sessions.Require(loginPath)(app))

	detector := security.NewDetector(s.metrics.SuspiciousRequest)
	tracer := trace.NewMiddleware(s.logger, detector.ExtractClientIP, s.metrics)
	headers := security.NewHeadersMiddleware(security.DefaultHeadersConfig())
	limit := s.limiter.Middleware(detector.ExtractClientIP, func(r *http.Request) {
		s.metrics.RateLimited()
		plog.FromContext(r.Context()).WarnContext(r.Context(), "Rate limit exceeded",
			plog.FieldClientIP, detector.ExtractClientIP(r),
			plog.FieldMethod, r.Method,
			plog.FieldPath, r.URL.Path)
	})

	return tracer.Middleware(headers.Middleware(detector.Middleware(limit(mux))))
}

// parseTemplates parses the shared layout and partials once, then clones them
// for every page so each page can define its own "content" block.
func parseTemplates() (*template.Template, map[string]*template.Template, error) {
	base, err := template.New("base").Funcs(templateFuncs).ParseFS(appweb.TemplatesFS,
		"templates/layout.html", "templates/partials/*.html")
	if err != nil {
		return nil, nil, fmt.Errorf("parse layout templates: %w", err)
	}

	files, err := fs.Glob(appweb.TemplatesFS, "templates/pages/*.html")
	if err != nil {
		return nil, nil, fmt.Errorf("list page templates: %w", err)
	}
	pages := make(map[string]*template.Template, len(files))
	for _, file := range files {
		clone, err := base.Clone()
		if err != nil {
			return nil, nil, fmt.Errorf("clone layout for %s: %w", file, err)
		}
		if _, err := clone.ParseFS(appweb.TemplatesFS, file); err != nil {
			return nil, nil, fmt.Errorf("parse page %s: %w", file, err)
		}
		pages[path.Base(file)] = clone
	}
	return base, pages, nil
}

// Shutdown gracefully shuts down the server and the rate limiter cleanup.
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

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	if s.ready != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()
		if err := s.ready(ctx); err != nil {
			plog.FromContext(ctx).WarnContext(ctx, "Readiness check failed", plog.FieldError, err)
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = w.Write([]byte("not ready"))
			return
		}
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}
