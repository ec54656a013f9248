package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/itchan-dev/postmove/backend/internal/setup"
	mw "github.com/itchan-dev/postmove/shared/middleware"
	"github.com/itchan-dev/postmove/shared/middleware/metrics"
	"github.com/itchan-dev/postmove/shared/middleware/ratelimiter"
)

// New creates the chi router with every API route.
func New(deps *setup.Dependencies) *chi.Mux {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.Recoverer)
	r.Use(metrics.Middleware)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   deps.Config.Public.CorsAllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Authorization"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	h := deps.Handler
	authMw := deps.AuthMiddleware

	publicLimiter := ratelimiter.Rps10()
	readLimiter := ratelimiter.Rps100()
	moveLimiter := ratelimiter.OnceInSecond()

	r.Group(func(public chi.Router) {
		public.Use(mw.RateLimit(publicLimiter, mw.GetIP))
		public.Get("/health", h.Health)
		public.Method(http.MethodGet, "/metrics", promhttp.Handler())
	})

	r.Route("/v1", func(v1 chi.Router) {
		// Logged-in user routes
		v1.Group(func(loggedIn chi.Router) {
			loggedIn.Use(authMw.NeedAuth())
			loggedIn.Use(mw.RateLimit(readLimiter, mw.GetUserIDFromContext))
			loggedIn.Get("/topics/{topic}", h.GetTopic)
		})

		// Admin routes
		v1.Route("/admin", func(admin chi.Router) {
			admin.Use(authMw.AdminOnly())
			admin.With(mw.RateLimit(moveLimiter, mw.GetUserIDFromContext)).
				Post("/topics/{topic}/move_posts", h.MovePosts)
		})
	})

	return r
}
