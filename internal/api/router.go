package api

import (
	"net/http"
	"peer_review_hub/internal/api/handler"
	"peer_review_hub/internal/app/service"
	"peer_review_hub/internal/common/security"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/jwtauth/v5"
)

func NewRouter(
	authService *service.AuthService,
	projectService *service.ProjectService,
	queueService *service.QueueService,
	reviewService *service.ReviewService,
	aggregationService *service.AggregationService,
) http.Handler {
	r := chi.NewRouter()

	// Base Middlewares
	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(chiMiddleware.Logger) // Chi's logger
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Timeout(60 * time.Second))

	// JWT Auth Middleware Setup
	// Verifies the "Authorization: Bearer T" token and puts claims in context.
	r.Use(jwtauth.Verifier(security.TokenAuth))

	// Public health check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("OK"))
	})

	// API v1 Routes
	r.Route("/api/v1", func(v1 chi.Router) {
		// Auth routes (public)
		authHandler := handler.NewAuthHandler(authService)
		v1.Group(func(publicAuth chi.Router) {
			authHandler.RegisterRoutes(publicAuth)
		})

		// Project routes (authenticated): submission, review queue, detail
		projectHandler := handler.NewProjectHandler(projectService, queueService)
		v1.Route("/projects", projectHandler.RegisterRoutes)

		// Review routes (authenticated): eligibility check, submission
		reviewHandler := handler.NewReviewHandler(reviewService)
		v1.Route("/reviews", reviewHandler.RegisterRoutes)

		// Dashboard (authenticated)
		dashboardHandler := handler.NewDashboardHandler(projectService)
		v1.Route("/dashboard", dashboardHandler.RegisterRoutes)

		// Admin routes: aggregate reconciliation
		adminHandler := handler.NewAdminHandler(aggregationService)
		v1.Route("/admin", adminHandler.RegisterRoutes)
	})

	return r
}
