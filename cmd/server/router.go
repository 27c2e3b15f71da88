package main

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/prept/prept-api/internal/api"
	apimiddleware "github.com/prept/prept-api/internal/api/middleware"
)

// setupRouter builds the HTTP router with all routes and middleware.
func (app *application) setupRouter() http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(apimiddleware.TraceMiddleware)

	authHandler := api.NewAuthHandler(
		app.userStore,
		app.jwtService,
		app.passwordHasher,
		time.Duration(app.config.Auth.TokenLifetimeMinutes)*time.Minute,
	)
	authMiddleware := apimiddleware.NewAuthMiddleware(app.jwtService)

	profileHandler := api.NewProfileHandler(app.profileService)
	generationHandler := api.NewGenerationHandler(app.generationService)
	questionHandler := api.NewQuestionHandler(app.questionService)
	bookmarkHandler := api.NewBookmarkHandler(app.bookmarkService)

	r.Route("/api", func(r chi.Router) {
		// Public endpoints
		r.Post("/auth/register", authHandler.Register)
		r.Post("/auth/login", authHandler.Login)
		r.Post("/auth/refresh", authHandler.RefreshToken)

		// Protected endpoints
		r.Group(func(r chi.Router) {
			r.Use(authMiddleware.Authenticate)

			r.Get("/profile", profileHandler.Get)
			r.Put("/profile", profileHandler.Update)

			r.Post("/questions/generate", generationHandler.Generate)
			r.Get("/questions/generate/status", generationHandler.Status)

			r.Get("/questions", questionHandler.List)
			r.Delete("/questions/{id}", questionHandler.Delete)

			r.Post("/questions/{id}/bookmark", bookmarkHandler.Toggle)
		})
	})

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte("OK")); err != nil {
			app.logger.Error("failed to write health check response", "error", err)
		}
	})

	return r
}
