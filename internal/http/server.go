// Package http exposes the web application: server-rendered pages,
// the JSON endpoints the dashboard charts consume, and the PDF
// report download.
package http

import (
	"context"
	"html/template"
	"io/fs"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"finanzas/internal/cache"
	"finanzas/internal/core"
	applog "finanzas/internal/log"
	"finanzas/internal/middleware/ratelimit"
	"finanzas/internal/middleware/security"
	"finanzas/internal/middleware/trace"
	"finanzas/internal/services"
	appweb "finanzas/web"
)

const sessionCookie = "finanzas_session"

// Server serves the web UI and the dashboard API.
type Server struct {
	http.Server

	templates *template.Template

	authSvc      *services.AuthService
	txSvc        *services.TransactionService
	dashboardSvc *services.DashboardService
	profileSvc   *services.ProfileService
	reportSvc    *services.ReportService

	seriesMonths int

	// Per-user+month caches for the dashboard aggregates.
	summaryCache   *cache.LRUCache[core.FinancialSummary]
	breakdownCache *cache.LRUCache[[]core.CategoryExpense]
	seriesCache    *cache.LRUCache[[]core.MonthlyPoint]
	cacheManager   *cache.Manager

	rateLimiter  *ratelimit.Limiter
	detector     *security.Detector
	shutdownOnce sync.Once
}

// Options bundles the collaborators the server needs.
type Options struct {
	Addr         string
	Auth         *services.AuthService
	Transactions *services.TransactionService
	Dashboard    *services.DashboardService
	Profiles     *services.ProfileService
	Reports      *services.ReportService
	SeriesMonths int
}

// NewServer configures routes, middleware and templates, returning a
// ready-to-run server.
func NewServer(opts Options) *Server {
	if opts.SeriesMonths < 1 {
		opts.SeriesMonths = 6
	}

	mux := http.NewServeMux()

	s := &Server{
		Server: http.Server{
			Addr:              opts.Addr,
			Handler:           nil, // set below, after the middleware chain
			ReadHeaderTimeout: 10 * time.Second,
		},
		authSvc:        opts.Auth,
		txSvc:          opts.Transactions,
		dashboardSvc:   opts.Dashboard,
		profileSvc:     opts.Profiles,
		reportSvc:      opts.Reports,
		seriesMonths:   opts.SeriesMonths,
		summaryCache:   cache.NewLRUCache[core.FinancialSummary](200, 5*time.Minute),
		breakdownCache: cache.NewLRUCache[[]core.CategoryExpense](200, 5*time.Minute),
		seriesCache:    cache.NewLRUCache[[]core.MonthlyPoint](200, 5*time.Minute),
		cacheManager:   cache.NewManager(),
		rateLimiter:    ratelimit.NewLimiter(ratelimit.DefaultConfig()),
		detector:       security.NewDetector(),
	}

	s.cacheManager.Register(s.summaryCache)
	s.cacheManager.Register(s.breakdownCache)
	s.cacheManager.Register(s.seriesCache)
	s.cacheManager.StartCleanup(10 * time.Minute)

	t, err := template.ParseFS(appweb.TemplatesFS, "templates/*.html")
	if err != nil {
		slog.Warn("Failed parsing templates", "error", err)
	}
	s.templates = t

	if sub, err := fs.Sub(appweb.StaticFS, "static"); err == nil {
		static := http.StripPrefix("/static/", http.FileServer(http.FS(sub)))
		mux.Handle("/static/", security.StaticAssetMiddleware(3600)(static))
	} else {
		slog.Warn("Failed to mount embedded static FS", "error", err)
	}

	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)

	// Auth pages and actions.
	mux.HandleFunc("GET /login", s.handleLoginPage)
	mux.HandleFunc("POST /login", s.handleLogin)
	mux.HandleFunc("GET /signup", s.handleSignupPage)
	mux.HandleFunc("POST /signup", s.handleSignup)
	mux.HandleFunc("POST /logout", s.handleLogout)

	// Dashboard page and API.
	mux.HandleFunc("GET /{$}", s.requireAuth(s.handleDashboardPage))
	mux.HandleFunc("GET /api/summary", s.requireAuth(s.handleSummary))
	mux.HandleFunc("GET /api/categories", s.requireAuth(s.handleCategories))
	mux.HandleFunc("GET /api/monthly", s.requireAuth(s.handleMonthlySeries))
	mux.HandleFunc("GET /api/transactions/recent", s.requireAuth(s.handleRecentTransactions))

	// Transactions.
	mux.HandleFunc("POST /transactions", s.requireAuth(s.handleCreateTransaction))
	mux.HandleFunc("GET /api/transactions", s.requireAuth(s.handleListTransactions))

	// Reports.
	mux.HandleFunc("GET /reports/monthly.pdf", s.requireAuth(s.handleMonthlyReportPDF))
	mux.HandleFunc("POST /reports/request", s.requireAuth(s.handleRequestReport))

	// Profile.
	mux.HandleFunc("GET /profile", s.requireAuth(s.handleProfilePage))
	mux.HandleFunc("POST /profile", s.requireAuth(s.handleUpdateProfile))
	mux.HandleFunc("POST /profile/avatar", s.requireAuth(s.handleUploadAvatar))
	mux.HandleFunc("GET /avatars/{user}", s.handleAvatar)

	// Middleware chain: trace wraps everything; security headers and
	// POST rate limiting sit inside it.
	traceMW := trace.NewMiddleware(s.detector.ExtractClientIP)
	headers := security.NewHeadersMiddleware(security.DefaultHeadersConfig())

	var handler http.Handler = mux
	handler = s.limitWrites(handler)
	handler = headers.Middleware(handler)
	handler = applog.ComponentMiddleware(applog.ComponentHTTP)(handler)
	handler = traceMW.Middleware(handler)
	s.Server.Handler = handler

	return s
}

// limitWrites applies rate limiting to mutating requests and drops
// requests matching known attack patterns.
func (s *Server) limitWrites(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.detector.DetectSuspiciousRequest(r) {
			http.NotFound(w, r)
			return
		}
		if r.Method == http.MethodPost {
			clientIP := s.detector.ExtractClientIP(r)
			if !s.rateLimiter.Allow(clientIP) {
				slog.WarnContext(r.Context(), "Rate limit exceeded",
					"client_ip", clientIP, "method", r.Method, "path", r.URL.Path)
				w.Header().Set("Retry-After", "60")
				http.Error(w, "Rate limit exceeded. Please try again later.", http.StatusTooManyRequests)
				return
			}
		}
		next.ServeHTTP(w, r)
	})
}

// Shutdown stops the server and its background cleanup routines.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		s.cacheManager.Stop()
		s.rateLimiter.Stop()
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}
