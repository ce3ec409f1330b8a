package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"school-auth/internal/model"
	"school-auth/pkg/apierror"
)

type userStore interface {
	FindByEmail(ctx context.Context, email string) (model.User, error)
	FindByID(ctx context.Context, id string) (model.User, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	ExistsByUsername(ctx context.Context, username string) (bool, error)
	ExistsByRole(ctx context.Context, role model.Role) (bool, error)
	Create(ctx context.Context, u model.User) error
	SetActive(ctx context.Context, id string, active bool) error
	List(ctx context.Context) ([]model.User, error)
}

type tokenIssuer interface {
	Issue(principal model.Principal) (string, error)
	Validity() time.Duration
}

// Roles a visitor may pick when signing up. Administrative accounts are
// provisioned by an existing administrator or the startup bootstrap.
var selfServiceRoles = map[model.Role]struct{}{
	model.RoleStudent:     {},
	model.RoleTeacher:     {},
	model.RoleCoordinator: {},
}

type AuthService struct {
	users      userStore
	tokens     tokenIssuer
	bcryptCost int
}

func NewAuthService(users userStore, tokens tokenIssuer, bcryptCost int) *AuthService {
	if bcryptCost < bcrypt.MinCost || bcryptCost > bcrypt.MaxCost {
		bcryptCost = bcrypt.DefaultCost
	}
	return &AuthService{users: users, tokens: tokens, bcryptCost: bcryptCost}
}

func (s *AuthService) Login(ctx context.Context, email string, password string) (model.LoginResponse, error) {
	user, err := s.users.FindByEmail(ctx, strings.TrimSpace(email))
	if errors.Is(err, model.ErrUserNotFound) {
		return model.LoginResponse{}, apierror.Unauthorized(model.ErrInvalidCredentials, "invalid credentials")
	}
	if err != nil {
		return model.LoginResponse{}, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return model.LoginResponse{}, apierror.Unauthorized(model.ErrInvalidCredentials, "invalid credentials")
	}

	principal, err := PrincipalFromUser(user)
	if errors.Is(err, model.ErrPrincipalInactive) {
		return model.LoginResponse{}, apierror.Unauthorized(err, "account is inactive")
	}
	if errors.Is(err, model.ErrPrincipalNoRole) {
		return model.LoginResponse{}, apierror.Unauthorized(err, "account has no role assigned")
	}
	if err != nil {
		return model.LoginResponse{}, err
	}

	slog.Info("login succeeded", "email", user.Email, "role", user.Role)
	return s.issueLoginResponse(principal, user)
}

func (s *AuthService) Register(ctx context.Context, req model.RegisterRequest) (model.LoginResponse, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	username := strings.TrimSpace(req.Username)

	role := model.RoleStudent
	if strings.TrimSpace(req.Role) != "" {
		parsed, err := model.ParseRole(req.Role)
		if err != nil {
			return model.LoginResponse{}, apierror.BadRequest("invalid role", req.Role)
		}
		role = parsed
	}
	if _, allowed := selfServiceRoles[role]; !allowed {
		return model.LoginResponse{}, apierror.Forbidden(model.ErrForbidden, "role cannot be self-assigned")
	}

	exists, err := s.users.ExistsByEmail(ctx, email)
	if err != nil {
		return model.LoginResponse{}, err
	}
	if exists {
		return model.LoginResponse{}, apierror.Conflict(model.ErrUserAlreadyExists, "email already registered", email)
	}

	if username != "" {
		exists, err = s.users.ExistsByUsername(ctx, username)
		if err != nil {
			return model.LoginResponse{}, err
		}
		if exists {
			return model.LoginResponse{}, apierror.Conflict(model.ErrUserAlreadyExists, "username already taken", username)
		}
	}

	user, err := s.createUser(ctx, model.User{
		Email:     email,
		Username:  username,
		FirstName: strings.TrimSpace(req.FirstName),
		LastName:  strings.TrimSpace(req.LastName),
		Role:      role,
	}, req.Password)
	if err != nil {
		return model.LoginResponse{}, err
	}

	slog.Info("user registered", "email", user.Email, "role", user.Role)
	return s.issueLoginResponse(model.NewPrincipal(user.Email, user.Role), user)
}

func (s *AuthService) CoordinatorExists(ctx context.Context) (bool, error) {
	return s.users.ExistsByRole(ctx, model.RoleCoordinator)
}

func (s *AuthService) Me(ctx context.Context, identity string) (model.AuthUser, error) {
	user, err := s.users.FindByEmail(ctx, identity)
	if errors.Is(err, model.ErrUserNotFound) {
		return model.AuthUser{}, apierror.New("NOT_FOUND", "user not found", "", http.StatusNotFound)
	}
	if err != nil {
		return model.AuthUser{}, err
	}

	return user.ToAuthUser(), nil
}

func (s *AuthService) ListUsers(ctx context.Context) ([]model.AuthUser, error) {
	users, err := s.users.List(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]model.AuthUser, 0, len(users))
	for _, u := range users {
		out = append(out, u.ToAuthUser())
	}
	return out, nil
}

// SetActive enables or disables an account. An administrator cannot disable
// their own account.
func (s *AuthService) SetActive(ctx context.Context, actor model.Principal, id string, active bool) (model.AuthUser, error) {
	user, err := s.users.FindByID(ctx, id)
	if errors.Is(err, model.ErrUserNotFound) {
		return model.AuthUser{}, apierror.New("NOT_FOUND", "user not found", id, http.StatusNotFound)
	}
	if err != nil {
		return model.AuthUser{}, err
	}

	if !active && strings.EqualFold(user.Email, actor.Identity) {
		return model.AuthUser{}, apierror.Forbidden(model.ErrForbidden, "cannot deactivate your own account")
	}

	if user.Role == model.RoleSuperAdmin && actor.Role != model.RoleSuperAdmin {
		return model.AuthUser{}, apierror.Forbidden(model.ErrForbidden, "only a super admin can change a super admin account")
	}

	if err := s.users.SetActive(ctx, user.ID, active); err != nil {
		return model.AuthUser{}, err
	}

	slog.Info("user status changed", "email", user.Email, "active", active, "actor", actor.Identity)
	user.Active = active
	return user.ToAuthUser(), nil
}

// EnsureBootstrapAdmin creates the first super admin when none exists.
func (s *AuthService) EnsureBootstrapAdmin(ctx context.Context, email string, password string) error {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return nil
	}

	exists, err := s.users.ExistsByRole(ctx, model.RoleSuperAdmin)
	if err != nil {
		return fmt.Errorf("check super admin: %w", err)
	}
	if exists {
		return nil
	}

	taken, err := s.users.ExistsByEmail(ctx, email)
	if err != nil {
		return fmt.Errorf("check bootstrap email: %w", err)
	}
	if taken {
		slog.Warn("bootstrap admin email belongs to an existing non-admin account; skipping", "email", email)
		return nil
	}

	if _, err := s.createUser(ctx, model.User{
		Email:     email,
		FirstName: "Super",
		LastName:  "Admin",
		Role:      model.RoleSuperAdmin,
	}, password); err != nil {
		return fmt.Errorf("create bootstrap admin: %w", err)
	}

	slog.Info("bootstrap super admin created", "email", email)
	return nil
}

func (s *AuthService) createUser(ctx context.Context, user model.User, password string) (model.User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.bcryptCost)
	if err != nil {
		return model.User{}, fmt.Errorf("hash password: %w", err)
	}

	now := time.Now().UTC()
	user.ID = uuid.NewString()
	user.PasswordHash = string(hash)
	user.Active = true
	user.CreatedAt = now
	user.UpdatedAt = now

	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, model.ErrUserAlreadyExists) {
			return model.User{}, apierror.Conflict(err, "user already exists", user.Email)
		}
		return model.User{}, err
	}

	return user, nil
}

func (s *AuthService) issueLoginResponse(principal model.Principal, user model.User) (model.LoginResponse, error) {
	token, err := s.tokens.Issue(principal)
	if err != nil {
		return model.LoginResponse{}, err
	}

	return model.LoginResponse{
		Token:     token,
		TokenType: "Bearer",
		ExpiresIn: int64(s.tokens.Validity().Seconds()),
		User:      user.ToAuthUser(),
	}, nil
}
