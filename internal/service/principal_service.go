package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"school-auth/internal/model"
)

type userLookup interface {
	FindByEmail(ctx context.Context, email string) (model.User, error)
}

// PrincipalService maps a token subject to an authenticated principal. Every
// call reads the credential store; nothing is cached.
type PrincipalService struct {
	users         userLookup
	lookupTimeout time.Duration
}

func NewPrincipalService(users userLookup, lookupTimeout time.Duration) *PrincipalService {
	if lookupTimeout <= 0 {
		lookupTimeout = 5 * time.Second
	}
	return &PrincipalService{users: users, lookupTimeout: lookupTimeout}
}

func (s *PrincipalService) Resolve(ctx context.Context, identity string) (model.Principal, error) {
	identity = strings.TrimSpace(identity)
	if identity == "" {
		return model.Principal{}, model.ErrPrincipalNotFound
	}

	lookupCtx, cancel := context.WithTimeout(ctx, s.lookupTimeout)
	defer cancel()

	user, err := s.users.FindByEmail(lookupCtx, identity)
	if errors.Is(err, model.ErrUserNotFound) {
		return model.Principal{}, fmt.Errorf("%w: %s", model.ErrPrincipalNotFound, identity)
	}
	if err != nil {
		return model.Principal{}, fmt.Errorf("resolve principal: %w", err)
	}

	principal, err := PrincipalFromUser(user)
	if err != nil {
		return model.Principal{}, err
	}

	slog.Debug("principal resolved", "identity", principal.Identity, "role", principal.Role)
	return principal, nil
}

// PrincipalFromUser applies the account checks shared by login and request
// authentication.
func PrincipalFromUser(user model.User) (model.Principal, error) {
	if !user.Active {
		return model.Principal{}, fmt.Errorf("%w: %s", model.ErrPrincipalInactive, user.Email)
	}

	if !user.Role.IsValid() {
		return model.Principal{}, fmt.Errorf("%w: %s", model.ErrPrincipalNoRole, user.Email)
	}

	return model.NewPrincipal(user.Email, user.Role), nil
}
