package handler

import (
	"context"
	"net/http"

	"school-auth/internal/middleware"
	"school-auth/internal/model"
	"school-auth/pkg/apierror"
)

type accountService interface {
	Login(ctx context.Context, email string, password string) (model.LoginResponse, error)
	Register(ctx context.Context, req model.RegisterRequest) (model.LoginResponse, error)
	CoordinatorExists(ctx context.Context) (bool, error)
	Me(ctx context.Context, identity string) (model.AuthUser, error)
	ListUsers(ctx context.Context) ([]model.AuthUser, error)
	SetActive(ctx context.Context, actor model.Principal, id string, active bool) (model.AuthUser, error)
}

type AuthHandler struct {
	service accountService
}

func NewAuthHandler(service accountService) *AuthHandler {
	return &AuthHandler{service: service}
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var payload model.LoginRequest
	if err := decodeJSON(w, r, &payload); err != nil {
		writeError(w, err)
		return
	}

	resp, err := h.service.Login(r.Context(), payload.Email, payload.Password)
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, resp)
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var payload model.RegisterRequest
	if err := decodeJSON(w, r, &payload); err != nil {
		writeError(w, err)
		return
	}

	resp, err := h.service.Register(r.Context(), payload)
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusCreated, resp)
}

func (h *AuthHandler) CheckCoordinator(w http.ResponseWriter, r *http.Request) {
	exists, err := h.service.CoordinatorExists(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, map[string]bool{"exists": exists})
}

func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	principal, ok := middleware.PrincipalFromContext(r.Context())
	if !ok {
		writeError(w, apierror.Unauthorized(model.ErrUnauthorized, "authentication required"))
		return
	}

	user, err := h.service.Me(r.Context(), principal.Identity)
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, user)
}
