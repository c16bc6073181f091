// Package auth implements the shared-password gate in front of the registry page.
//
// A single password from configuration unlocks the viewer. A successful login
// creates a session identified by a random UUID; the session lasts for a fixed
// time and is kept in memory only.
package auth

import (
	"context"
	"crypto/subtle"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/minstroy46-sys/kursk-registry-sub000/errors"
	"github.com/minstroy46-sys/kursk-registry-sub000/metric"
	"github.com/minstroy46-sys/kursk-registry-sub000/pkg/cache"
)

// Login results used as the metrics label.
const (
	ResultSuccess       = "success"
	ResultFailure       = "failure"
	ResultNotConfigured = "not_configured"
)

// Session is an authenticated browser session.
type Session struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"created_at"`
}

// Gate checks the shared password and tracks sessions.
type Gate struct {
	password string
	sessions cache.Cache[Session]
	clock    cache.Clock
	logger   *slog.Logger
	metrics  *metric.Metrics
}

// Option configures a Gate.
type Option func(*gateOptions)

type gateOptions struct {
	logger   *slog.Logger
	registry *metric.MetricsRegistry
	clock    cache.Clock
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(o *gateOptions) {
		o.logger = logger
	}
}

// WithMetrics counts login attempts and exports session store statistics.
func WithMetrics(registry *metric.MetricsRegistry) Option {
	return func(o *gateOptions) {
		o.registry = registry
	}
}

// WithClock replaces the clock used for session timestamps and expiry.
func WithClock(clock cache.Clock) Option {
	return func(o *gateOptions) {
		o.clock = clock
	}
}

// NewGate creates a gate for password. An empty password is accepted here; every
// login then fails with a configuration error instead of letting users in.
func NewGate(ctx context.Context, password string, sessionTTL time.Duration, opts ...Option) (*Gate, error) {
	o := &gateOptions{}
	for _, opt := range opts {
		opt(o)
	}
	if o.logger == nil {
		o.logger = slog.Default().With("component", "auth")
	}
	if o.clock == nil {
		o.clock = cache.SystemClock()
	}

	g := &Gate{
		password: password,
		clock:    o.clock,
		logger:   o.logger,
		metrics:  o.registry.CoreMetrics(),
	}

	sessions, err := cache.NewTTL[Session](ctx, sessionTTL, time.Minute,
		cache.WithMetrics[Session](o.registry, "sessions"),
		cache.WithClock[Session](o.clock),
		cache.WithEvictionCallback[Session](g.sessionEnded))
	if err != nil {
		return nil, errors.Wrap(err, "Gate", "NewGate", "session store creation")
	}
	g.sessions = sessions

	return g, nil
}

// Configured reports whether a password is set.
func (g *Gate) Configured() bool {
	return g.password != ""
}

// Login compares password with the configured one and starts a session on success.
// It fails with ErrMissingConfig when no password is configured and ErrAuthFailed
// when the password does not match.
func (g *Gate) Login(password string) (Session, error) {
	if !g.Configured() {
		g.record(ResultNotConfigured)
		g.logger.Error("Login attempted but no password is configured")
		return Session{}, errors.WrapFatal(errors.ErrMissingConfig, "Gate", "Login", "password lookup")
	}

	if subtle.ConstantTimeCompare([]byte(password), []byte(g.password)) != 1 {
		g.record(ResultFailure)
		g.logger.Info("Login rejected")
		return Session{}, errors.WrapInvalid(errors.ErrAuthFailed, "Gate", "Login", "password check")
	}

	session := Session{ID: uuid.NewString(), CreatedAt: g.clock.Now()}
	if _, err := g.sessions.Set(session.ID, session); err != nil {
		return Session{}, errors.Wrap(err, "Gate", "Login", "session store")
	}

	g.record(ResultSuccess)
	g.logger.Info("Login accepted", "sessions", g.sessions.Size())
	return session, nil
}

// Session returns the live session with the given ID.
func (g *Gate) Session(id string) (Session, bool) {
	if id == "" {
		return Session{}, false
	}
	return g.sessions.Get(id)
}

// Logout ends the session with the given ID. Unknown IDs are ignored.
func (g *Gate) Logout(id string) {
	if id == "" {
		return
	}
	_, _ = g.sessions.Delete(id)
}

// Close stops the session janitor.
func (g *Gate) Close() error {
	return g.sessions.Close()
}

// sessionEnded runs for both logout and expiry.
func (g *Gate) sessionEnded(id string, s Session) {
	g.logger.Debug("Session ended",
		"session", id,
		"age", g.clock.Now().Sub(s.CreatedAt).Round(time.Second))
}

func (g *Gate) record(result string) {
	if g.metrics != nil {
		g.metrics.RecordLogin(result)
	}
}
