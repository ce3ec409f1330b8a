package middleware

import (
	"context"

	"school-auth/internal/model"
)

type contextKey string

const securityContextKey contextKey = "security_context"

// SecurityContext holds the principal authenticated for one request. It is
// never shared between requests, so it needs no locking.
type SecurityContext struct {
	principal *model.Principal
}

func (c *SecurityContext) Principal() (model.Principal, bool) {
	if c == nil || c.principal == nil {
		return model.Principal{}, false
	}
	return *c.principal, true
}

func (c *SecurityContext) IsAuthenticated() bool {
	return c != nil && c.principal != nil
}

// Authenticate attaches p unless a principal is already present. It reports
// whether p was attached.
func (c *SecurityContext) Authenticate(p model.Principal) bool {
	if c == nil || c.principal != nil {
		return false
	}
	c.principal = &p
	return true
}

func WithSecurityContext(ctx context.Context, sc *SecurityContext) context.Context {
	return context.WithValue(ctx, securityContextKey, sc)
}

func SecurityContextFrom(ctx context.Context) (*SecurityContext, bool) {
	sc, ok := ctx.Value(securityContextKey).(*SecurityContext)
	return sc, ok && sc != nil
}

// PrincipalFromContext returns the authenticated principal, if any.
func PrincipalFromContext(ctx context.Context) (model.Principal, bool) {
	sc, ok := SecurityContextFrom(ctx)
	if !ok {
		return model.Principal{}, false
	}
	return sc.Principal()
}
