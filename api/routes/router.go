package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/labelspy/labelspy-backend/api/controllers"
	"github.com/labelspy/labelspy-backend/api/middleware"
	"github.com/labelspy/labelspy-backend/internal/scans"
	"github.com/labelspy/labelspy-backend/internal/users"
	pkgauth "github.com/labelspy/labelspy-backend/pkg/auth"
	"github.com/labelspy/labelspy-backend/pkg/config"
	"github.com/labelspy/labelspy-backend/pkg/logger"
)

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	verifier pkgauth.TokenVerifier,
	userService users.Service,
	scanService scans.Service,
	registry *prometheus.Registry,
) http.Handler {
	r := chi.NewRouter()

	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(),
	)

	r.Get("/api/health", controllers.Health(cfg))

	r.Route("/api/public", func(r chi.Router) {
		r.Get("/ping", controllers.PublicPing())
	})

	if registry != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	}

	scanAuth := middleware.Auth(verifier, logg)
	if cfg.Scan.AllowAnonymous {
		scanAuth = middleware.OptionalAuth(verifier, logg)
	}
	r.With(scanAuth).Post("/api/scan", controllers.ScanLabel(scanService, cfg.Scan, logg))

	r.Route("/api/user", func(r chi.Router) {
		r.Use(middleware.Auth(verifier, logg))

		r.Get("/profile", controllers.GetProfile(userService, logg))
		r.Post("/profile", controllers.UpdateProfile(userService, logg))
		r.Delete("/profile", controllers.DeleteProfile(userService, logg))
		r.Get("/top-ingredients", controllers.TopIngredients(userService, cfg.Scan, logg))
		r.Get("/scan-history", controllers.ScanHistory(userService, logg))
	})

	return r
}
