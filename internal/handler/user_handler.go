package handler

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"school-auth/internal/middleware"
	"school-auth/internal/model"
	"school-auth/pkg/apierror"
)

type UserHandler struct {
	service accountService
}

func NewUserHandler(service accountService) *UserHandler {
	return &UserHandler{service: service}
}

func (h *UserHandler) List(w http.ResponseWriter, r *http.Request) {
	users, err := h.service.ListUsers(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, map[string]any{"users": users, "total": len(users)})
}

func (h *UserHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	userID := strings.TrimSpace(chi.URLParam(r, "id"))
	if userID == "" {
		writeError(w, apierror.BadRequest("user id is required", "id"))
		return
	}

	actor, ok := middleware.PrincipalFromContext(r.Context())
	if !ok {
		writeError(w, apierror.Unauthorized(model.ErrUnauthorized, "authentication required"))
		return
	}

	var payload model.UpdateUserStatusRequest
	if err := decodeJSON(w, r, &payload); err != nil {
		writeError(w, err)
		return
	}

	user, err := h.service.SetActive(r.Context(), actor, userID, *payload.Active)
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, user)
}
