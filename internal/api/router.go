package api

import (
	"net/http"

	"github.com/dom/bookshelf/internal/api/handlers"
	"github.com/dom/bookshelf/internal/api/middleware"
	"github.com/dom/bookshelf/internal/api/respond"
	"github.com/dom/bookshelf/internal/config"
	"github.com/dom/bookshelf/internal/service"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/sirupsen/logrus"
)

func NewRouter(services *service.Services, cfg *config.Config, log *logrus.Logger) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(middleware.RequestLogger(log))
	r.Use(chiMiddleware.Recoverer)
	r.Use(middleware.CORS(cfg.CORSAllowedOrigins))
	if cfg.RequestTimeout > 0 {
		r.Use(chiMiddleware.Timeout(cfg.RequestTimeout))
	}

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		respond.Error(w, http.StatusNotFound, "Not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		respond.Error(w, http.StatusMethodNotAllowed, "Method not allowed")
	})

	// Health check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("OK"))
	})

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(services.Auth, log)
	bookHandler := handlers.NewBookHandler(services.Book, log)
	requireAuth := middleware.Auth(services.Auth, log)

	// API v1 routes
	r.Route("/api/v1", func(r chi.Router) {
		// Public auth routes
		r.Route("/auth", func(r chi.Router) {
			r.Post("/register", authHandler.Register)
			r.Post("/login", authHandler.Login)

			// Protected auth routes
			r.Group(func(r chi.Router) {
				r.Use(requireAuth)
				r.Get("/me", authHandler.Me)
				r.Get("/profile", authHandler.Me)
			})
		})

		// Book routes, all scoped to the caller
		r.Route("/books", func(r chi.Router) {
			r.Use(requireAuth)
			r.Get("/", bookHandler.List)
			r.Post("/", bookHandler.Create)
			r.Get("/stats", bookHandler.Stats)
			r.Get("/{id}", bookHandler.Get)
			r.Put("/{id}", bookHandler.Update)
			r.Patch("/{id}", bookHandler.Update)
			r.Delete("/{id}", bookHandler.Delete)
		})
	})

	return r
}
