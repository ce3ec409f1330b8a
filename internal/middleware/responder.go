package middleware

import (
	"log/slog"
	"net/http"
	"time"

	"school-auth/internal/model"
)

// MessageAuthenticationRequired is the reason given to anonymous callers of
// protected endpoints.
const MessageAuthenticationRequired = "Full authentication is required to access this resource"

// Responder writes the JSON bodies for rejected requests.
type Responder struct {
	metrics *Metrics
	now     func() time.Time
}

func NewResponder(metrics *Metrics) *Responder {
	return &Responder{metrics: metrics, now: time.Now}
}

// Unauthorized answers 401 with the given reason.
func (r *Responder) Unauthorized(w http.ResponseWriter, req *http.Request, reason string) {
	r.reject(w, req, http.StatusUnauthorized, "Unauthorized", reason)
}

func (r *Responder) Forbidden(w http.ResponseWriter, req *http.Request, reason string) {
	r.reject(w, req, http.StatusForbidden, "Forbidden", reason)
}

func (r *Responder) reject(w http.ResponseWriter, req *http.Request, status int, title string, reason string) {
	slog.Warn("request rejected",
		"status", status,
		"method", req.Method,
		"path", req.URL.Path,
		"reason", reason,
	)
	r.metrics.recordRejection(status)

	if err := writeJSON(w, status, model.AuthErrorResponse{
		Error:     title,
		Message:   reason,
		Path:      req.URL.Path,
		Timestamp: r.now().UTC(),
		Status:    status,
	}); err != nil {
		slog.Debug("rejection body not written", "path", req.URL.Path, "error", err)
	}
}
