package main

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/hanzideck/hanzideck-api/internal/api"
	apiMiddleware "github.com/hanzideck/hanzideck-api/internal/api/middleware"
)

// setupRouter creates and configures the application router with all
// routes and middleware.
func (app *application) setupRouter() http.Handler {
	r := chi.NewRouter()

	// Apply standard middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(apiMiddleware.NewTraceMiddleware(app.logger))

	reviewHandler := api.NewReviewHandler(app.reviewService, app.logger)

	// Register routes
	r.Route("/api", func(r chi.Router) {
		r.Get("/lessons/{lessonID}/cards", reviewHandler.GetLessonCards)

		r.Get("/reviews/due", reviewHandler.GetDueCards)
		r.Get("/reviews/due-count", reviewHandler.GetDueCount)
		r.Get("/reviews/queue-stats", reviewHandler.GetQueueStats)
		r.Post("/reviews", reviewHandler.SubmitReview)
		r.Post("/reviews/flush", reviewHandler.FlushReviews)
		r.Post("/reviews/{cardID}/reset", reviewHandler.ResetCard)
	})

	// Health check endpoint
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte("OK")); err != nil {
			app.logger.Error("failed to write health check response", "error", err)
		}
	})

	return r
}
