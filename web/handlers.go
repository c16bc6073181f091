package web

import (
	"bytes"
	"context"
	"html/template"
	"net/http"
	"net/url"

	"github.com/minstroy46-sys/kursk-registry-sub000/errors"
	"github.com/minstroy46-sys/kursk-registry-sub000/filter"
	"github.com/minstroy46-sys/kursk-registry-sub000/health"
)

const allLabel = "Все"

var (
	errSessionRequired = errors.WrapInvalid(errors.ErrSessionNotFound, "Server", "requireSession", "session check")
	errRefreshLimited  = errors.WrapTransient(errors.ErrRateLimited, "Server", "handleRefresh", "refresh limit")
)

// View is the filtered registry as shown on the page and returned by /api/records.
type View struct {
	Available bool           `json:"available"`
	State     filter.State   `json:"state"`
	Options   filter.Options `json:"options"`
	Total     int            `json:"total"`
	Shown     int            `json:"shown"`
	Cards     []Card         `json:"cards"`
}

type loginPage struct {
	Error     string
	RequestID string
}

type registryPage struct {
	View
	SourceConfigured bool
	RefreshAction    template.URL
	AllLabel         string
	All              string
	RequestID        string
}

// stateFromQuery reads the filter selections from query parameters.
func stateFromQuery(q url.Values) filter.State {
	return filter.State{
		Sector:   q.Get("sector"),
		Status:   q.Get("status"),
		District: q.Get("district"),
		Query:    q.Get("q"),
	}
}

// encodeState is the inverse of stateFromQuery; All selections are left out.
func encodeState(s filter.State) string {
	s = s.Normalized()
	q := url.Values{}
	if s.Sector != filter.All {
		q.Set("sector", s.Sector)
	}
	if s.Status != filter.All {
		q.Set("status", s.Status)
	}
	if s.District != filter.All {
		q.Set("district", s.District)
	}
	if s.Query != "" {
		q.Set("q", s.Query)
	}
	return q.Encode()
}

// buildView runs the filter pipeline for state. Options are computed, stale
// selections reset to All, and the districts recomputed for the reconciled
// sector and status before the records are filtered.
func (s *Server) buildView(ctx context.Context, state filter.State) View {
	ds := s.catalog.Snapshot(ctx)

	opts := filter.ComputeOptions(ds, state)
	state = state.Reconcile(opts)
	opts = filter.ComputeOptions(ds, state)
	state = state.Reconcile(opts)

	records := filter.Apply(ds, state)
	if s.metrics != nil {
		s.metrics.RecordFilter(len(records))
	}

	return View{
		Available: !ds.IsEmpty(),
		State:     state,
		Options:   opts,
		Total:     ds.Len(),
		Shown:     len(records),
		Cards:     NewCards(records),
	}
}

func refreshAction(state filter.State) template.URL {
	action := "/refresh"
	if q := encodeState(state); q != "" {
		action += "?" + q
	}
	return template.URL(action)
}

func (s *Server) handlePage(w http.ResponseWriter, r *http.Request) {
	session := SessionFrom(r.Context())
	if !session.Authenticated {
		s.render(w, r, http.StatusOK, "login.html", loginPage{RequestID: session.RequestID})
		return
	}

	view := s.buildView(r.Context(), stateFromQuery(r.URL.Query()))
	s.render(w, r, http.StatusOK, "registry.html", registryPage{
		View:             view,
		SourceConfigured: s.catalog.Configured(),
		RefreshAction:    refreshAction(view.State),
		AllLabel:         allLabel,
		All:              filter.All,
		RequestID:        session.RequestID,
	})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	session := SessionFrom(r.Context())
	if err := r.ParseForm(); err != nil {
		s.render(w, r, http.StatusBadRequest, "login.html", loginPage{
			Error:     "invalid request",
			RequestID: session.RequestID,
		})
		return
	}

	created, err := s.gate.Login(r.PostFormValue("password"))
	if err != nil {
		s.logger.Info("Login failed",
			"request_id", session.RequestID,
			"class", errors.Classify(err).String(),
			"error", err)
		s.render(w, r, mapErrorToHTTPStatus(err), "login.html", loginPage{
			Error:     sanitizeError(err),
			RequestID: session.RequestID,
		})
		return
	}

	if session.ID != "" {
		s.gate.Logout(session.ID)
	}
	s.cookie.issue(w, created.ID)
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	if session := SessionFrom(r.Context()); session.ID != "" {
		s.gate.Logout(session.ID)
	}
	s.cookie.clear(w)
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	session := SessionFrom(r.Context())
	if !s.limiter.Allow() {
		writeError(w, r, errRefreshLimited)
		return
	}

	ds := s.catalog.Refresh(r.Context())
	s.logger.Info("Manual refresh", "request_id", session.RequestID, "records", ds.Len())

	target := "/"
	if q := encodeState(stateFromQuery(r.URL.Query())); q != "" {
		target += "?" + q
	}
	http.Redirect(w, r, target, http.StatusSeeOther)
}

func (s *Server) handleRecords(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.buildView(r.Context(), stateFromQuery(r.URL.Query())))
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	status := health.NewHealthy("registry", "No components reported")
	if s.monitor != nil {
		status = s.monitor.AggregateHealth("registry")
	}

	code := http.StatusOK
	if status.IsUnhealthy() {
		code = http.StatusServiceUnavailable
	}
	writeJSON(w, code, status)
}

// render buffers the template output; a failed execution answers 500.
func (s *Server) render(w http.ResponseWriter, r *http.Request, status int, name string, data any) {
	var buf bytes.Buffer
	if err := s.templates.ExecuteTemplate(&buf, name, data); err != nil {
		s.logger.Error("Template execution failed",
			"template", name,
			"request_id", SessionFrom(r.Context()).RequestID,
			"error", err)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}
