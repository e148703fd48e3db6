package app

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/staffdir/staffdir/internal/auth"
	"github.com/staffdir/staffdir/internal/authz"
	"github.com/staffdir/staffdir/internal/directory"
	"github.com/staffdir/staffdir/internal/observability"
	"github.com/staffdir/staffdir/internal/staff"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger           *slog.Logger
	Config           *Config
	Authenticator    authz.Authenticator
	AuthHandler      *auth.Handler
	UsersHandler     *staff.Handler
	RulesHandler     *authz.Handler
	DirectoryHandler *directory.Handler
	Metrics          *observability.Metrics
}

// NewRouter constructs the chi.Router with service defaults.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger:  params.Logger,
		Config:  params.Config,
		Metrics: params.Metrics,
	}) {
		r.Use(mw)
	}

	r.Use(chimw.Logger)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	if params.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", params.Metrics.Handler())
	}

	r.Route("/auth", func(r chi.Router) {
		params.AuthHandler.MountRoutes(r)
	})

	r.Route("/v1", func(r chi.Router) {
		r.Use(params.Authenticator.Middleware)
		r.Route("/users", func(r chi.Router) {
			params.UsersHandler.MountRoutes(r)
		})
		r.Route("/permissions", func(r chi.Router) {
			params.RulesHandler.MountRoutes(r)
		})
		params.DirectoryHandler.MountRoutes(r)
	})

	return r
}
