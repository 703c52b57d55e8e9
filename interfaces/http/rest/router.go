package rest

import (
	"net/http"

	"ahkneemay/application/commands/bus"
	querybus "ahkneemay/application/queries/bus"
	"ahkneemay/application/services"
	"ahkneemay/infrastructure/config"
	"ahkneemay/interfaces/http/rest/handlers"
	"ahkneemay/interfaces/http/rest/middleware"
	"ahkneemay/pkg/auth"
	"ahkneemay/pkg/common"
	pkgerrors "ahkneemay/pkg/errors"
	"ahkneemay/pkg/observability"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"
)

// Dependencies are the collaborators the router hands to its handlers
type Dependencies struct {
	Config       *config.Config
	CommandBus   *bus.CommandBus
	QueryBus     *querybus.QueryBus
	QuickInfo    *services.QuickInfoService
	TokenManager *auth.TokenManager
	RateLimiter  *auth.IPRateLimiter
	Tracer       *observability.Tracer
	Logger       *zap.Logger
}

// Router creates and configures the HTTP router
type Router struct {
	deps       Dependencies
	errHandler *pkgerrors.ErrorHandler
}

// NewRouter creates a new router instance
func NewRouter(deps Dependencies) *Router {
	return &Router{
		deps:       deps,
		errHandler: pkgerrors.NewErrorHandler(deps.Logger, deps.Config.Debug),
	}
}

// Setup configures all routes and middleware
func (rt *Router) Setup() *chi.Mux {
	cfg := rt.deps.Config
	router := chi.NewRouter()

	router.Use(chimiddleware.RequestID)
	router.Use(chimiddleware.RealIP)
	if cfg.EnableTracing && rt.deps.Tracer != nil {
		router.Use(rt.deps.Tracer.Handler)
	}
	router.Use(rt.errHandler.Middleware)

	if cfg.EnableCORS {
		router.Use(cors.Handler(cors.Options{
			AllowedOrigins:   cfg.CORSOrigins,
			AllowedMethods:   []string{"GET", "POST", "DELETE", "OPTIONS"},
			AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
			ExposedHeaders:   []string{"X-Request-ID"},
			AllowCredentials: true,
			MaxAge:           300,
		}))
	}

	router.Use(middleware.Authenticate(rt.deps.TokenManager, rt.deps.Logger))
	router.Use(middleware.Logger(rt.deps.Logger))

	router.Get("/health", rt.healthCheck)
	router.Get("/ready", rt.readinessCheck)

	animeHandler := handlers.NewAnimeHandler(
		rt.deps.CommandBus,
		rt.deps.QueryBus,
		rt.deps.QuickInfo,
		rt.errHandler,
		cfg.MaxUploadBytes,
		rt.deps.Logger,
	)
	authHandler := handlers.NewAuthHandler(
		rt.deps.CommandBus,
		rt.deps.QueryBus,
		rt.deps.TokenManager,
		rt.errHandler,
		cfg.SecureCookie,
		rt.deps.Logger,
	)

	router.Route("/api", func(r chi.Router) {
		r.Get("/animes", animeHandler.ListAnimes)

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireUser(rt.errHandler))
			r.Post("/animes", animeHandler.AddAnime)
			r.Delete("/animes/{title}", animeHandler.RemoveAnime)
			r.Get("/animes/delete/{title}", animeHandler.RemoveAnime)
			r.Get("/animes/quickinfo/{anime}", animeHandler.QuickInfo)
			r.Get("/me", authHandler.Me)
		})

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireAnonymous(rt.errHandler))
			r.Use(middleware.RateLimit(rt.deps.RateLimiter, cfg.AuthRateLimit, rt.errHandler, rt.deps.Logger))
			r.Post("/signup", authHandler.SignUp)
			r.Post("/login", authHandler.Login)
		})

		r.Post("/logout", authHandler.Logout)
	})

	return router
}

// healthCheck handles health check requests
func (rt *Router) healthCheck(w http.ResponseWriter, req *http.Request) {
	common.RespondJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

// readinessCheck reports ready once the container, and with it the
// provisioned resources, exists
func (rt *Router) readinessCheck(w http.ResponseWriter, req *http.Request) {
	if rt.deps.CommandBus == nil || rt.deps.QueryBus == nil {
		rt.errHandler.HandleStatus(w, req, http.StatusServiceUnavailable, pkgerrors.UnavailableMessage)
		return
	}
	common.RespondJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}
