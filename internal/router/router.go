package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"school-auth/internal/config"
	"school-auth/internal/handler"
	"school-auth/internal/middleware"
	"school-auth/internal/model"
)

const openAPIPath = "/v3/api-docs/openapi.yaml"

type Handlers struct {
	Auth   *handler.AuthHandler
	User   *handler.UserHandler
	System *handler.SystemHandler
	Docs   *handler.DocsHandler
}

func New(
	cfg *config.Config,
	authMiddleware *middleware.AuthMiddleware,
	metrics *middleware.Metrics,
	gatherer prometheus.Gatherer,
	h Handlers,
) http.Handler {
	r := chi.NewRouter()
	rateLimitMiddleware := middleware.NewRateLimitMiddleware(cfg.RateLimitRPM, cfg.AuthRateLimitRPM, cfg.TrustedProxies)

	r.Use(middleware.Recovery)
	r.Use(middleware.Logging)
	r.Use(middleware.CORS(cfg.CORSOrigins))
	r.Use(middleware.SecurityHeaders)
	r.Use(rateLimitMiddleware.Handler)
	r.Use(metrics.Handler)
	r.Use(middleware.Timeout(cfg.RequestTimeout))
	r.Use(authMiddleware.Authenticate)

	r.NotFound(authMiddleware.Protect(http.HandlerFunc(handler.NotFound)).ServeHTTP)
	r.MethodNotAllowed(authMiddleware.Protect(http.HandlerFunc(handler.MethodNotAllowed)).ServeHTTP)

	r.Get("/api/health", h.System.Health)
	r.Get("/api/roles/", h.System.Roles)

	r.Route("/api/auth", func(auth chi.Router) {
		auth.Post("/login", h.Auth.Login)
		auth.Post("/register", h.Auth.Register)
		auth.Get("/check-coordinator", h.Auth.CheckCoordinator)
	})

	r.With(authMiddleware.RequireAuthenticated).Get("/api/users/me", h.Auth.Me)

	r.Route("/api/admin", func(admin chi.Router) {
		admin.Use(authMiddleware.RequireRoles(model.RoleAdmin, model.RoleSuperAdmin))
		admin.Get("/users", h.User.List)
		admin.Patch("/users/{id}/status", h.User.UpdateStatus)
	})

	r.Get(openAPIPath, h.Docs.OpenAPI)
	r.Get("/swagger-ui/", h.Docs.SwaggerUI)

	if gatherer != nil {
		r.Method(http.MethodGet, "/actuator/prometheus", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	}

	return r
}

// DocsURL is where the Swagger UI loads the API description from.
func DocsURL() string {
	return openAPIPath
}
