package middleware

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
)

const requestIDHeader = "X-Request-ID"

// errorBody covers both the API envelope ({"error":{...}}) and the flat
// rejection body ({"error":"Unauthorized","message":...}).
type errorBody struct {
	Error   json.RawMessage `json:"error"`
	Message string          `json:"message"`
}

type envelopeError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details string `json:"details"`
}

// Logging emits one line per request. It installs the request's security
// context so the identity attached further down the chain can be logged.
func Logging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get(requestIDHeader)
		if requestID == "" {
			requestID = uuid.NewString()
		}
		w.Header().Set(requestIDHeader, requestID)

		sc, ok := SecurityContextFrom(r.Context())
		if !ok {
			sc = &SecurityContext{}
			r = r.WithContext(WithSecurityContext(r.Context(), sc))
		}

		started := time.Now()
		wrapped := &responseWriter{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(wrapped, r)

		attrs := []any{
			"request_id", requestID,
			"method", r.Method,
			"path", r.URL.Path,
			"status", wrapped.status,
			"duration_ms", time.Since(started).Milliseconds(),
			"client_ip", remoteIP(r),
		}

		if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
			attrs = append(attrs, "forwarded_for", forwarded)
		}

		if principal, ok := sc.Principal(); ok {
			attrs = append(attrs, "principal", principal.Identity)
		}

		if wrapped.status >= 400 && wrapped.body.Len() > 0 {
			attrs = append(attrs, errorAttrs(wrapped.body.Bytes())...)
		}

		switch {
		case wrapped.status >= 500:
			slog.Error("request", attrs...)
		case wrapped.status >= 400:
			slog.Warn("request", attrs...)
		default:
			slog.Info("request", attrs...)
		}
	})
}

func errorAttrs(body []byte) []any {
	var parsed errorBody
	if err := json.Unmarshal(body, &parsed); err != nil || len(parsed.Error) == 0 {
		return nil
	}

	var envelope envelopeError
	if err := json.Unmarshal(parsed.Error, &envelope); err == nil {
		attrs := []any{"error_code", envelope.Code, "error_message", envelope.Message}
		if envelope.Details != "" {
			attrs = append(attrs, "error_details", envelope.Details)
		}
		return attrs
	}

	var title string
	if err := json.Unmarshal(parsed.Error, &title); err == nil {
		return []any{"error_code", title, "error_message", parsed.Message}
	}
	return nil
}

type responseWriter struct {
	http.ResponseWriter
	status      int
	body        bytes.Buffer
	wroteHeader bool
}

func (rw *responseWriter) WriteHeader(statusCode int) {
	if rw.wroteHeader {
		return
	}
	rw.status = statusCode
	rw.wroteHeader = true
	rw.ResponseWriter.WriteHeader(statusCode)
}

func (rw *responseWriter) Write(b []byte) (int, error) {
	rw.wroteHeader = true
	if rw.status >= 400 {
		rw.body.Write(b)
	}
	return rw.ResponseWriter.Write(b)
}
