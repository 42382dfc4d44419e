package routes

import (
	"net/http"

	"github.com/hospitalcare/backend/internal/api/handlers"
	"github.com/hospitalcare/backend/internal/api/middleware"
	"github.com/hospitalcare/backend/internal/infrastructure/observability"
)

// Router holds all route handlers
type Router struct {
	mux *http.ServeMux

	recommendationHandler *handlers.RecommendationHandler
	healthHandler         *handlers.HealthHandler

	cacheMiddleware *middleware.CacheMiddleware
	allowedOrigins  []string
	metrics         *observability.Metrics
}

// NewRouter creates a new router. cacheMiddleware and metrics may be nil.
func NewRouter(
	recommendationHandler *handlers.RecommendationHandler,
	healthHandler *handlers.HealthHandler,
	cacheMiddleware *middleware.CacheMiddleware,
	allowedOrigins []string,
	metrics *observability.Metrics,
) *Router {
	return &Router{
		mux:                   http.NewServeMux(),
		recommendationHandler: recommendationHandler,
		healthHandler:         healthHandler,
		cacheMiddleware:       cacheMiddleware,
		allowedOrigins:        allowedOrigins,
		metrics:               metrics,
	}
}

// SetupRoutes configures all application routes
func (r *Router) SetupRoutes() http.Handler {
	r.mux.HandleFunc("GET /health", r.healthHandler.Live)
	r.mux.HandleFunc("GET /health/ready", r.healthHandler.Ready)

	r.mux.HandleFunc("POST /api/recommendations", r.recommendationHandler.Recommend)
	r.mux.HandleFunc("POST /api/symptoms/validate", r.recommendationHandler.ValidateSymptoms)
	r.mux.HandleFunc("GET /api/departments", r.recommendationHandler.ListDepartments)

	// Apply middleware in reverse order (last middleware wraps first).
	// CORS must be outermost so cached responses also get CORS headers.
	var handler http.Handler = r.mux
	handler = middleware.LoggingMiddleware(handler)

	if r.cacheMiddleware != nil {
		handler = r.cacheMiddleware.Middleware(handler)
	}

	handler = middleware.ObservabilityMiddleware(r.metrics)(handler)
	handler = middleware.ResponseOptimization(handler)
	handler = middleware.CORSMiddleware(r.allowedOrigins)(handler)

	return handler
}
