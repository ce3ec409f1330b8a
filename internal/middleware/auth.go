package middleware

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"school-auth/internal/model"
)

const bearerPrefix = "Bearer "

type tokenValidator interface {
	Validate(token string) bool
	Subject(token string) string
}

type principalResolver interface {
	Resolve(ctx context.Context, identity string) (model.Principal, error)
}

type AuthMiddleware struct {
	tokens     tokenValidator
	principals principalResolver
	public     *PublicPaths
	responder  *Responder
	metrics    *Metrics
}

func NewAuthMiddleware(tokens tokenValidator, principals principalResolver, public *PublicPaths, responder *Responder, metrics *Metrics) *AuthMiddleware {
	if responder == nil {
		responder = NewResponder(metrics)
	}
	return &AuthMiddleware{
		tokens:     tokens,
		principals: principals,
		public:     public,
		responder:  responder,
		metrics:    metrics,
	}
}

// Authenticate attaches a principal to the request's security context when
// a valid bearer token names an existing, active user. It never rejects a
// request: every path through it forwards to next, and access decisions
// belong to RequireAuthenticated and RequireRoles.
func (m *AuthMiddleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sc, ok := SecurityContextFrom(r.Context())
		if !ok {
			sc = &SecurityContext{}
			r = r.WithContext(WithSecurityContext(r.Context(), sc))
		}

		if prefix, public := m.public.Matches(r.URL.Path); public {
			slog.Debug("public path, skipping authentication", "path", r.URL.Path, "prefix", prefix)
			m.metrics.recordGate(outcomePublic)
			next.ServeHTTP(w, r)
			return
		}

		outcome := m.authenticate(r, sc, extractBearerToken(r))
		m.metrics.recordGate(outcome)

		next.ServeHTTP(w, r)
	})
}

func (m *AuthMiddleware) authenticate(r *http.Request, sc *SecurityContext, token string) (outcome string) {
	if token == "" {
		return outcomeAnonymous
	}

	defer func() {
		if recovered := recover(); recovered != nil {
			slog.Error("authentication failed unexpectedly",
				"path", r.URL.Path,
				"error", fmt.Sprintf("%v", recovered),
			)
			outcome = outcomeResolveFailed
		}
	}()

	if !m.tokens.Validate(token) {
		return outcomeInvalidToken
	}

	identity := m.tokens.Subject(token)
	if identity == "" {
		return outcomeInvalidToken
	}

	if sc.IsAuthenticated() {
		return outcomeAlreadyAuthenticated
	}

	principal, err := m.principals.Resolve(r.Context(), identity)
	if err != nil {
		slog.Warn("could not resolve token identity", "identity", identity, "path", r.URL.Path, "error", err)
		return outcomeResolveFailed
	}

	if !sc.Authenticate(principal) {
		return outcomeAlreadyAuthenticated
	}

	slog.Debug("request authenticated", "identity", principal.Identity, "role", principal.Role)
	return outcomeAuthenticated
}

// RequireAuthenticated rejects requests without a principal with 401.
func (m *AuthMiddleware) RequireAuthenticated(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := PrincipalFromContext(r.Context()); !ok {
			m.responder.Unauthorized(w, r, MessageAuthenticationRequired)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// RequireRoles answers 401 for anonymous requests and 403 for principals
// holding none of the roles.
func (m *AuthMiddleware) RequireRoles(roles ...model.Role) func(http.Handler) http.Handler {
	allowed := make(map[string]struct{}, len(roles))
	for _, role := range roles {
		allowed[role.Authority()] = struct{}{}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			principal, ok := PrincipalFromContext(r.Context())
			if !ok {
				m.responder.Unauthorized(w, r, MessageAuthenticationRequired)
				return
			}

			for _, authority := range principal.Authorities {
				if _, exists := allowed[authority]; exists {
					next.ServeHTTP(w, r)
					return
				}
			}

			m.responder.Forbidden(w, r, "Access is denied")
		})
	}
}

// extractBearerToken returns the credential after the literal "Bearer "
// prefix, or "" when the header is absent, uses another scheme, or carries
// only whitespace.
func extractBearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if !strings.HasPrefix(header, bearerPrefix) {
		return ""
	}

	token := header[len(bearerPrefix):]
	if strings.TrimSpace(token) == "" {
		return ""
	}
	return token
}

// Protect lets public paths through and applies RequireAuthenticated to
// everything else. It guards handlers that are not tied to a route, such
// as the not-found handler.
func (m *AuthMiddleware) Protect(next http.Handler) http.Handler {
	authenticated := m.RequireAuthenticated(next)
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, public := m.public.Matches(r.URL.Path); public {
			next.ServeHTTP(w, r)
			return
		}
		authenticated.ServeHTTP(w, r)
	})
}
