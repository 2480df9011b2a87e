package http

import (
	"context"
	"net/http"

	"github.com/conference-api/internal/config"
	"github.com/conference-api/internal/domain"
	"github.com/conference-api/internal/pkg/logger"
	"github.com/conference-api/internal/transport/http/handler"
	appmiddleware "github.com/conference-api/internal/transport/http/middleware"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"golang.org/x/time/rate"
)

// NewRouter builds and returns the application router. ctx bounds background
// work owned by the router.
func NewRouter(ctx context.Context, cfg *config.Config, deps *Deps) http.Handler {
	log := logger.OrNop(deps.Logger)

	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(appmiddleware.Logger(log))
	r.Use(appmiddleware.Recoverer(log))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	// Without a verifier no request carries claims, so RequireRole rejects
	// every admin call with 401.
	authMw := func(next http.Handler) http.Handler { return next }
	if deps.Verifier != nil {
		authMw = appmiddleware.Auth(deps.Verifier)
	} else {
		log.Warn("no token verifier configured, admin routes will reject all requests")
	}

	// 1 send/second, burst of 5 per client: each send fans out to every device.
	sendRL := appmiddleware.NewRateLimiter(ctx, rate.Limit(1), 5)

	healthH := handler.NewHealthHandler()
	notifH := handler.NewConferenceNotificationHandler(deps.Notifications)

	r.Route("/v1", func(r chi.Router) {
		r.Get("/health-check/{action}", healthH.Ping)

		// Admin-only routes
		r.Group(func(r chi.Router) {
			r.Use(authMw)
			r.Use(appmiddleware.RequireRole(domain.RoleAdmin))

			r.With(sendRL.Limit).Post("/conference/notifications", notifH.Send)
			r.Get("/conference/notifications", notifH.List)
		})
	})

	return r
}
