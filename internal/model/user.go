package model

import (
	"fmt"
	"strings"
	"time"
)

type Role string

const (
	RoleSuperAdmin  Role = "SUPER_ADMIN"
	RoleAdmin       Role = "ADMIN"
	RoleCoordinator Role = "COORDINATOR"
	RoleTeacher     Role = "TEACHER"
	RoleStudent     Role = "STUDENT"
)

const AuthorityPrefix = "ROLE_"

// Roles lists every role in descending order of privilege.
var Roles = []Role{RoleSuperAdmin, RoleAdmin, RoleCoordinator, RoleTeacher, RoleStudent}

// ParseRole accepts the enum name ("TEACHER") or its lowercase wire value
// ("teacher"), ignoring surrounding whitespace and case.
func ParseRole(raw string) (Role, error) {
	candidate := Role(strings.ToUpper(strings.TrimSpace(raw)))
	if candidate.IsValid() {
		return candidate, nil
	}

	return "", fmt.Errorf("%w: %q", ErrInvalidRole, raw)
}

func (r Role) IsValid() bool {
	switch r {
	case RoleSuperAdmin, RoleAdmin, RoleCoordinator, RoleTeacher, RoleStudent:
		return true
	default:
		return false
	}
}

// Authority is the string downstream authorization compares against.
func (r Role) Authority() string {
	return AuthorityPrefix + string(r)
}

// Value is the lowercase form used by clients.
func (r Role) Value() string {
	return strings.ToLower(string(r))
}

type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	Username     string    `json:"username,omitempty"`
	PasswordHash string    `json:"-"`
	FirstName    string    `json:"first_name"`
	LastName     string    `json:"last_name"`
	Role         Role      `json:"role"`
	Active       bool      `json:"active"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Principal is an authenticated identity together with its authorities.
type Principal struct {
	Identity    string   `json:"identity"`
	Role        Role     `json:"role"`
	Authorities []string `json:"authorities"`
}

func NewPrincipal(identity string, role Role) Principal {
	return Principal{
		Identity:    identity,
		Role:        role,
		Authorities: []string{role.Authority()},
	}
}

func (p Principal) HasAuthority(authority string) bool {
	for _, candidate := range p.Authorities {
		if candidate == authority {
			return true
		}
	}
	return false
}

type AuthUser struct {
	ID        string `json:"id"`
	Email     string `json:"email"`
	Username  string `json:"username,omitempty"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Role      Role   `json:"role"`
	Active    bool   `json:"active"`
}

func (u User) ToAuthUser() AuthUser {
	return AuthUser{
		ID:        u.ID,
		Email:     u.Email,
		Username:  u.Username,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Role:      u.Role,
		Active:    u.Active,
	}
}

type LoginResponse struct {
	Token     string   `json:"token"`
	TokenType string   `json:"token_type"`
	ExpiresIn int64    `json:"expires_in"`
	User      AuthUser `json:"user"`
}

type RoleInfo struct {
	Name      Role   `json:"name"`
	Value     string `json:"value"`
	Authority string `json:"authority"`
}
