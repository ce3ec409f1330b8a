package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"school-auth/internal/model"
	"school-auth/pkg/apierror"
)

type pinger interface {
	Health(ctx context.Context) error
}

type userCounter interface {
	Count(ctx context.Context) (int, error)
}

type SystemHandler struct {
	db    pinger
	users userCounter
}

func NewSystemHandler(db pinger, users userCounter) *SystemHandler {
	return &SystemHandler{db: db, users: users}
}

// Health reports 503 when the credential store is unreachable.
func (h *SystemHandler) Health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if h.db != nil {
		if err := h.db.Health(ctx); err != nil {
			slog.Warn("health check failed", "error", err)
			writeError(w, apierror.New("SERVICE_UNAVAILABLE", "database unreachable", "database", http.StatusServiceUnavailable))
			return
		}
	}

	status := map[string]any{"status": "UP", "database": "UP"}
	if h.users != nil {
		total, err := h.users.Count(ctx)
		if err != nil {
			slog.Warn("health check could not count users", "error", err)
			writeError(w, apierror.New("SERVICE_UNAVAILABLE", "credential store unreadable", "users", http.StatusServiceUnavailable))
			return
		}
		status["users_total"] = total
	}

	writeSuccess(w, http.StatusOK, status)
}

func (h *SystemHandler) Roles(w http.ResponseWriter, _ *http.Request) {
	roles := make([]model.RoleInfo, 0, len(model.Roles))
	for _, role := range model.Roles {
		roles = append(roles, model.RoleInfo{
			Name:      role,
			Value:     role.Value(),
			Authority: role.Authority(),
		})
	}

	writeSuccess(w, http.StatusOK, roles)
}

func NotFound(w http.ResponseWriter, r *http.Request) {
	writeError(w, apierror.New("NOT_FOUND", "resource not found", r.URL.Path, http.StatusNotFound))
}

func MethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	writeError(w, apierror.New("METHOD_NOT_ALLOWED", "method not allowed", r.Method, http.StatusMethodNotAllowed))
}
