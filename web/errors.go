package web

import (
	"encoding/json"
	"net/http"
	"regexp"
	"strings"

	"github.com/google/uuid"

	"github.com/minstroy46-sys/kursk-registry-sub000/errors"
)

var requestIDPattern = regexp.MustCompile(`^[A-Za-z0-9._-]{1,64}$`)

// getOrGenerateRequestID reuses a well-formed incoming X-Request-ID or generates one
func getOrGenerateRequestID(r *http.Request) string {
	if reqID := r.Header.Get("X-Request-ID"); requestIDPattern.MatchString(reqID) {
		return reqID
	}
	return uuid.NewString()
}

// mapErrorToHTTPStatus maps classified errors to HTTP status codes
func mapErrorToHTTPStatus(err error) int {
	switch {
	case err == nil:
		return http.StatusInternalServerError
	case errors.Is(err, errors.ErrAuthFailed), errors.Is(err, errors.ErrSessionNotFound):
		return http.StatusUnauthorized
	case errors.Is(err, errors.ErrRateLimited):
		return http.StatusTooManyRequests
	case errors.Is(err, errors.ErrMissingConfig), errors.Is(err, errors.ErrSourceUnavailable):
		return http.StatusServiceUnavailable
	case errors.IsInvalid(err):
		return http.StatusBadRequest
	case errors.IsTransient(err):
		if strings.Contains(err.Error(), "timeout") {
			return http.StatusGatewayTimeout
		}
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// sanitizeError returns a safe error message for clients. Details stay in the logs.
func sanitizeError(err error) string {
	switch {
	case err == nil:
		return "internal server error"
	case errors.Is(err, errors.ErrAuthFailed):
		return "Неверный пароль"
	case errors.Is(err, errors.ErrMissingConfig):
		return "Пароль не настроен. Обратитесь к администратору."
	case errors.Is(err, errors.ErrSessionNotFound):
		return "Требуется вход"
	case errors.Is(err, errors.ErrRateLimited):
		return "Обновление уже выполнялось недавно, повторите позже"
	case errors.Is(err, errors.ErrSourceUnavailable):
		return "Данные временно недоступны"
	case errors.IsInvalid(err):
		return "invalid request"
	case errors.IsTransient(err):
		return "service temporarily unavailable"
	default:
		return "internal server error"
	}
}

type errorResponse struct {
	Error     string `json:"error"`
	Status    int    `json:"status"`
	RequestID string `json:"request_id,omitempty"`
}

// writeError writes a JSON error response for err
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := mapErrorToHTTPStatus(err)
	writeJSON(w, status, errorResponse{
		Error:     sanitizeError(err),
		Status:    status,
		RequestID: SessionFrom(r.Context()).RequestID,
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
