package service

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"school-auth/internal/model"
)

var errUnexpectedAlgorithm = errors.New("unexpected signing algorithm")

// TokenClaims is the payload carried by every bearer token.
type TokenClaims struct {
	Roles string `json:"roles"`
	jwt.RegisteredClaims
}

// Authorities splits the comma-joined roles claim.
func (c *TokenClaims) Authorities() []string {
	if strings.TrimSpace(c.Roles) == "" {
		return nil
	}

	parts := strings.Split(c.Roles, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

// TokenService issues and verifies HS256 bearer tokens. The signing key is
// fixed at construction and only read afterwards.
type TokenService struct {
	secret   []byte
	validity time.Duration
	now      func() time.Time
}

func NewTokenService(secret string, validity time.Duration) (*TokenService, error) {
	if strings.TrimSpace(secret) == "" {
		return nil, errors.New("token secret is required")
	}
	if validity <= 0 {
		return nil, errors.New("token validity must be positive")
	}

	return &TokenService{
		secret:   []byte(secret),
		validity: validity,
		now:      time.Now,
	}, nil
}

// SetClock replaces the time source. Used by tests.
func (s *TokenService) SetClock(now func() time.Time) {
	s.now = now
}

func (s *TokenService) Validity() time.Duration {
	return s.validity
}

func (s *TokenService) Issue(principal model.Principal) (string, error) {
	if strings.TrimSpace(principal.Identity) == "" {
		return "", fmt.Errorf("issue token: %w: empty identity", model.ErrInvalidInput)
	}

	now := s.now()
	claims := TokenClaims{
		Roles: strings.Join(principal.Authorities, ","),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   principal.Identity,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.validity)),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Parse verifies the signature and expiry and returns the embedded claims.
// Errors are one of the model.ErrToken* sentinels.
func (s *TokenService) Parse(tokenString string) (*TokenClaims, error) {
	if strings.TrimSpace(tokenString) == "" {
		return nil, model.ErrTokenEmpty
	}

	claims := &TokenClaims{}
	_, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if token.Method != jwt.SigningMethodHS256 {
			return nil, fmt.Errorf("%w: %v", errUnexpectedAlgorithm, token.Header["alg"])
		}
		return s.secret, nil
	},
		jwt.WithTimeFunc(s.now),
		jwt.WithExpirationRequired(),
		// exp has whole-second precision; a nanosecond of leeway makes a
		// token valid up to and including its expiry instant.
		jwt.WithLeeway(time.Nanosecond),
	)
	if err != nil {
		return nil, classifyTokenError(err)
	}

	return claims, nil
}

// Validate reports whether the token parses. Failures are logged, never
// returned.
func (s *TokenService) Validate(tokenString string) bool {
	_, err := s.Parse(tokenString)
	if err != nil {
		logTokenFailure("token validation failed", err)
		return false
	}
	return true
}

// Subject returns the identity embedded in a valid token, or "" when the
// token does not parse.
func (s *TokenService) Subject(tokenString string) string {
	claims, err := s.Parse(tokenString)
	if err != nil {
		logTokenFailure("token subject extraction failed", err)
		return ""
	}
	return claims.Subject
}

func classifyTokenError(err error) error {
	switch {
	case errors.Is(err, errUnexpectedAlgorithm), errors.Is(err, jwt.ErrTokenUnverifiable):
		return fmt.Errorf("%w: %v", model.ErrTokenUnsupportedAlgorithm, err)
	case errors.Is(err, jwt.ErrTokenExpired):
		return model.ErrTokenExpired
	case errors.Is(err, jwt.ErrTokenMalformed):
		return fmt.Errorf("%w: %v", model.ErrTokenMalformed, err)
	case errors.Is(err, jwt.ErrTokenSignatureInvalid):
		return model.ErrTokenSignatureInvalid
	default:
		return fmt.Errorf("%w: %v", model.ErrTokenMalformed, err)
	}
}

func logTokenFailure(msg string, err error) {
	if errors.Is(err, model.ErrTokenExpired) {
		slog.Debug(msg, "reason", err.Error())
		return
	}
	slog.Error(msg, "reason", err.Error())
}
