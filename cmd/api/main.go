package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/hospitalcare/backend/internal/adapters/cache"
	"github.com/hospitalcare/backend/internal/adapters/database"
	"github.com/hospitalcare/backend/internal/adapters/events"
	"github.com/hospitalcare/backend/internal/adapters/loaders"
	"github.com/hospitalcare/backend/internal/api/handlers"
	"github.com/hospitalcare/backend/internal/api/middleware"
	"github.com/hospitalcare/backend/internal/api/routes"
	"github.com/hospitalcare/backend/internal/application/services"
	"github.com/hospitalcare/backend/internal/domain/entities"
	"github.com/hospitalcare/backend/internal/domain/providers"
	"github.com/hospitalcare/backend/internal/infrastructure/clients/postgres"
	"github.com/hospitalcare/backend/internal/infrastructure/clients/redis"
	"github.com/hospitalcare/backend/internal/infrastructure/observability"
	"github.com/hospitalcare/backend/pkg/config"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	observability.InitLogger(cfg.OTEL.ServiceName, cfg.Log.Env, cfg.Log.Level)

	// Set up context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize OpenTelemetry if enabled
	if cfg.OTEL.Enabled && cfg.OTEL.Endpoint != "" {
		shutdown, err := observability.Setup(
			ctx,
			cfg.OTEL.ServiceName,
			cfg.OTEL.ServiceVersion,
			cfg.OTEL.Endpoint,
		)
		if err != nil {
			log.Warn().Err(err).Msg("Failed to set up OpenTelemetry")
		} else {
			defer func() {
				ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				if err := shutdown(ctx); err != nil {
					log.Error().Err(err).Msg("Error shutting down OpenTelemetry")
				}
			}()
			log.Info().Str("endpoint", cfg.OTEL.Endpoint).Msg("OpenTelemetry initialized")
		}
	}

	metrics, err := observability.InitMetrics()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize metrics")
	}

	pgClient, err := postgres.NewClient(&cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize PostgreSQL client")
	}
	defer pgClient.Close()
	log.Info().Str("host", cfg.Database.Host).Msg("PostgreSQL client initialized")

	// Redis is optional; the service runs with an in-process cache without it
	var redisClient *redis.Client
	if cfg.Redis.Enabled {
		redisClient, err = redis.NewClient(&cfg.Redis)
		if err != nil {
			log.Warn().Err(err).Msg("Failed to initialize Redis client, continuing without it")
			redisClient = nil
		} else {
			defer redisClient.Close()
			log.Info().Str("addr", cfg.Redis.RedisAddr()).Msg("Redis client initialized")
		}
	}

	var cacheProvider providers.CacheProvider
	var eventBus providers.EventBus
	if redisClient != nil {
		cacheProvider = cache.NewRedisAdapter(redisClient)
		eventBus = events.NewRedisEventBus(redisClient)
	} else {
		cacheProvider = cache.NewMemoryAdapter()
		log.Info().Msg("Using in-process cache; roster events disabled")
	}

	// Adapters
	appointmentAdapter := database.NewAppointmentAdapter(pgClient)
	doctorAdapter := database.NewCachedDoctorAdapter(
		database.NewDoctorAdapter(pgClient, appointmentAdapter, metrics),
		cacheProvider,
		cfg.Recommendation.DepartmentCacheTTL,
		metrics,
	)

	resolver, err := services.NewDepartmentResolverFromFile(cfg.Recommendation.RulesPath)
	if err != nil {
		log.Fatal().Err(err).Str("path", cfg.Recommendation.RulesPath).Msg("Failed to load department rules")
	}
	log.Info().Int("rules", len(resolver.Rules())).Int("departments", len(resolver.Departments())).Msg("Department rules loaded")

	lookup := loaders.NewFromConfig(doctorAdapter, cfg.Recommendation, metrics)
	recommendationService := services.NewRecommendationService(resolver, lookup, eventBus, metrics)

	var cacheInvalidationService *services.CacheInvalidationService
	if eventBus != nil {
		cacheInvalidationService = services.NewCacheInvalidationService(cacheProvider, eventBus)
		if err := cacheInvalidationService.Start(); err != nil {
			log.Warn().Err(err).Msg("Failed to start cache invalidation service")
			cacheInvalidationService = nil
		} else {
			log.Info().Msg("Cache invalidation service started")
		}
	}

	if cfg.Recommendation.WarmInterval > 0 {
		warmingService := services.NewCacheWarmingService(
			doctorAdapter,
			cacheProvider,
			resolver,
			cfg.Recommendation.DepartmentCacheTTL,
		)
		go warmingService.StartPeriodicWarming(ctx, cfg.Recommendation.WarmInterval)
		log.Info().Dur("interval", cfg.Recommendation.WarmInterval).Msg("Cache warming service started")
	}

	// Handlers
	checks := map[string]handlers.HealthCheck{
		"postgres": pgClient.Ping,
	}
	if redisClient != nil {
		checks["redis"] = redisClient.Ping
	}

	router := routes.NewRouter(
		handlers.NewRecommendationHandler(recommendationService, entities.DefaultDepartments()),
		handlers.NewHealthHandler(checks),
		middleware.NewCacheMiddleware(cacheProvider),
		cfg.Server.AllowedOrigins,
		metrics,
	)

	serverAddr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	server := &http.Server{
		Addr:         serverAddr,
		Handler:      router.SetupRoutes(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info().Str("addr", serverAddr).Msg("Server starting")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server failed to start")
		}
	}()

	// Wait for interrupt signal for graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Server shutting down")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Error during server shutdown")
	}

	if cacheInvalidationService != nil {
		cacheInvalidationService.Stop()
	}
	if eventBus != nil {
		if err := eventBus.Close(); err != nil {
			log.Error().Err(err).Msg("Error closing event bus")
		}
	}

	log.Info().Msg("Server stopped")
}
