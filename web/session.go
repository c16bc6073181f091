package web

import (
	"context"
	"net/http"
	"time"

	"github.com/minstroy46-sys/kursk-registry-sub000/auth"
)

// Session is the per-request view of the browser session.
type Session struct {
	ID            string
	Authenticated bool
	RequestID     string
}

type sessionKey struct{}

// WithSession returns a copy of ctx carrying s.
func WithSession(ctx context.Context, s Session) context.Context {
	return context.WithValue(ctx, sessionKey{}, s)
}

// SessionFrom returns the session stored in ctx, or an anonymous one.
func SessionFrom(ctx context.Context) Session {
	s, _ := ctx.Value(sessionKey{}).(Session)
	return s
}

// Gate is the password gate used by the handlers.
type Gate interface {
	Configured() bool
	Login(password string) (auth.Session, error)
	Session(id string) (auth.Session, bool)
	Logout(id string)
}

type cookieSettings struct {
	name   string
	secure bool
	maxAge time.Duration
}

func (c cookieSettings) issue(w http.ResponseWriter, id string) {
	http.SetCookie(w, &http.Cookie{
		Name:     c.name,
		Value:    id,
		Path:     "/",
		MaxAge:   int(c.maxAge.Seconds()),
		HttpOnly: true,
		Secure:   c.secure,
		SameSite: http.SameSiteLaxMode,
	})
}

func (c cookieSettings) clear(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     c.name,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   c.secure,
		SameSite: http.SameSiteLaxMode,
	})
}

func (c cookieSettings) read(r *http.Request) string {
	cookie, err := r.Cookie(c.name)
	if err != nil {
		return ""
	}
	return cookie.Value
}
