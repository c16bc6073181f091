package web

import (
	"fmt"
	"net/http"
	"runtime"
	"strconv"
	"time"
)

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (r *statusRecorder) Write(b []byte) (int, error) {
	if r.status == 0 {
		r.status = http.StatusOK
	}
	return r.ResponseWriter.Write(b)
}

// withRequestContext assigns a request ID, resolves the session cookie and records
// the request once it has been served.
func (s *Server) withRequestContext(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		requestID := getOrGenerateRequestID(r)
		w.Header().Set("X-Request-ID", requestID)

		session := Session{RequestID: requestID}
		if id := s.cookie.read(r); id != "" {
			if _, ok := s.gate.Session(id); ok {
				session.ID = id
				session.Authenticated = true
			}
		}

		rec := &statusRecorder{ResponseWriter: w}
		req := r.WithContext(WithSession(r.Context(), session))
		next.ServeHTTP(rec, req)

		if rec.status == 0 {
			rec.status = http.StatusOK
		}
		// The mux records the matched pattern on the request it was given
		route := req.Pattern
		if route == "" {
			route = "unmatched"
		}
		if s.metrics != nil {
			s.metrics.RecordHTTPRequest(route, strconv.Itoa(rec.status))
		}
		s.logger.Debug("Request served",
			"request_id", requestID,
			"method", r.Method,
			"route", route,
			"status", rec.status,
			"authenticated", session.Authenticated,
			"duration", time.Since(start))
	})
}

// requireSession rejects requests without an authenticated session.
func (s *Server) requireSession(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !SessionFrom(r.Context()).Authenticated {
			writeError(w, r, errSessionRequired)
			return
		}
		next(w, r)
	}
}

func (s *Server) withRecovery(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				if rec == http.ErrAbortHandler {
					panic(rec)
				}
				buf := make([]byte, 4096)
				n := runtime.Stack(buf, false)
				s.logger.Error("Handler panic",
					"error", fmt.Sprint(rec),
					"path", r.URL.Path,
					"stack", string(buf[:n]))
				http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
			}
		}()
		next.ServeHTTP(w, r)
	})
}
