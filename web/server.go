// Package web serves the registry page, its JSON twin and the operational endpoints.
package web

import (
	"context"
	"embed"
	"html/template"
	"log/slog"
	"net/http"
	"time"

	"golang.org/x/time/rate"

	"github.com/minstroy46-sys/kursk-registry-sub000/errors"
	"github.com/minstroy46-sys/kursk-registry-sub000/health"
	"github.com/minstroy46-sys/kursk-registry-sub000/metric"
	"github.com/minstroy46-sys/kursk-registry-sub000/schema"
)

//go:embed templates/*.html
var templateFS embed.FS

// Catalog provides the current mapped dataset.
type Catalog interface {
	Configured() bool
	Snapshot(ctx context.Context) *schema.Dataset
	Refresh(ctx context.Context) *schema.Dataset
}

// Server holds the HTTP handlers.
type Server struct {
	catalog   Catalog
	gate      Gate
	monitor   *health.Monitor
	registry  *metric.MetricsRegistry
	metrics   *metric.Metrics
	logger    *slog.Logger
	limiter   *rate.Limiter
	cookie    cookieSettings
	templates *template.Template
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithMetrics records request metrics and serves registry at /metrics.
func WithMetrics(registry *metric.MetricsRegistry) Option {
	return func(s *Server) {
		s.registry = registry
		s.metrics = registry.CoreMetrics()
	}
}

// WithHealthMonitor serves the monitor's aggregate at /healthz.
func WithHealthMonitor(monitor *health.Monitor) Option {
	return func(s *Server) {
		s.monitor = monitor
	}
}

// WithRefreshCooldown sets the minimum time between manual refreshes. Zero removes
// the limit.
func WithRefreshCooldown(d time.Duration) Option {
	return func(s *Server) {
		if d <= 0 {
			s.limiter = rate.NewLimiter(rate.Inf, 1)
			return
		}
		s.limiter = rate.NewLimiter(rate.Every(d), 1)
	}
}

// WithCookie sets the session cookie name, Secure flag and lifetime.
func WithCookie(name string, secure bool, maxAge time.Duration) Option {
	return func(s *Server) {
		if name != "" {
			s.cookie.name = name
		}
		s.cookie.secure = secure
		if maxAge > 0 {
			s.cookie.maxAge = maxAge
		}
	}
}

// NewServer creates the handlers for catalog behind gate.
func NewServer(catalog Catalog, gate Gate, opts ...Option) (*Server, error) {
	if catalog == nil || gate == nil {
		return nil, errors.WrapFatal(errors.ErrMissingConfig, "Server", "NewServer", "dependency check")
	}

	tmpl, err := template.New("").Funcs(templateFuncs).ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, errors.WrapFatal(err, "Server", "NewServer", "template parse")
	}

	s := &Server{
		catalog:   catalog,
		gate:      gate,
		limiter:   rate.NewLimiter(rate.Every(10*time.Second), 1),
		cookie:    cookieSettings{name: "registry_session", maxAge: 12 * time.Hour},
		templates: tmpl,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = slog.Default().With("component", "web")
	}
	return s, nil
}

// Handler returns the routed handler with request ID, session and metrics middleware.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /{$}", s.handlePage)
	mux.HandleFunc("POST /login", s.handleLogin)
	mux.HandleFunc("POST /logout", s.handleLogout)
	mux.HandleFunc("POST /refresh", s.requireSession(s.handleRefresh))
	mux.HandleFunc("GET /api/records", s.requireSession(s.handleRecords))
	mux.HandleFunc("GET /healthz", s.handleHealth)
	if s.registry != nil {
		mux.Handle("GET /metrics", s.registry.Handler())
	}

	return s.withRecovery(s.withRequestContext(mux))
}
