// Package main provides the entrypoint for the fuelroute API server.
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"github.com/fuelroute/fuelroute/internal/api"
	"github.com/fuelroute/fuelroute/internal/api/handler"
	"github.com/fuelroute/fuelroute/internal/api/middleware"
	"github.com/fuelroute/fuelroute/internal/cache"
	"github.com/fuelroute/fuelroute/internal/database"
	"github.com/fuelroute/fuelroute/internal/geocoding"
	geocodemapbox "github.com/fuelroute/fuelroute/internal/geocoding/mapbox"
	"github.com/fuelroute/fuelroute/internal/planner"
	"github.com/fuelroute/fuelroute/internal/provider/resilience"
	routemapbox "github.com/fuelroute/fuelroute/internal/routing/mapbox"
	"github.com/fuelroute/fuelroute/internal/station"
	"github.com/fuelroute/fuelroute/internal/telemetry"
)

// Version and BuildTime are set at compile time via ldflags.
var (
	Version   = "dev"
	BuildTime = "unknown"
)

func main() {
	const serviceName = "fuelroute-api"

	// Load .env for local development; absent in deployed environments.
	_ = godotenv.Load()

	log := zerolog.New(os.Stdout).
		With().
		Timestamp().
		Str("service", serviceName).
		Str("version", Version).
		Logger()

	log.Info().
		Str("build_time", BuildTime).
		Msg("starting fuelroute API")

	port := os.Getenv("APP_PORT")
	if port == "" {
		port = "8080"
	}

	ctx := context.Background()

	// Initialize OpenTelemetry
	telemetryCfg := telemetry.ConfigFromEnv(serviceName, Version)
	tp, err := telemetry.Init(ctx, telemetryCfg)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize telemetry")
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if shutdownErr := tp.Shutdown(shutdownCtx); shutdownErr != nil {
			log.Error().Err(shutdownErr).Msg("failed to shutdown telemetry")
		}
	}()

	if telemetryCfg.Enabled {
		log.Info().
			Str("otlp_endpoint", telemetryCfg.OTLPEndpoint).
			Msg("OpenTelemetry initialized")
	}

	metrics, err := middleware.NewMetrics()
	if err != nil {
		log.Error().Err(err).Msg("failed to initialize metrics")
		os.Exit(1) //nolint:gocritic // intentional exit, telemetry cleanup is best-effort
	}

	// Connect to database
	dbConfig := database.ConfigFromEnv()
	pool, err := database.Connect(ctx, dbConfig)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer pool.Close()
	if err := database.EnsureSchema(ctx, pool); err != nil {
		log.Fatal().Err(err).Msg("failed to ensure schema")
	}
	log.Info().
		Str("host", dbConfig.Host).
		Int("port", dbConfig.Port).
		Str("database", dbConfig.Database).
		Msg("database connected")

	// Cache store: Redis when configured, else in-process memory.
	var store cache.Store
	var redisStore *cache.RedisStore
	if addr := os.Getenv("REDIS_ADDR"); addr != "" {
		redisStore = cache.NewRedisStore(cache.RedisConfig{
			Addr:     addr,
			Password: os.Getenv("REDIS_PASSWORD"),
		})
		if err := redisStore.Ping(ctx); err != nil {
			log.Fatal().Err(err).Msg("failed to connect to redis")
		}
		store = redisStore
		log.Info().Str("addr", addr).Msg("redis cache connected")
	} else {
		store = cache.NewMemoryStore()
		log.Warn().Msg("REDIS_ADDR not set - using in-memory cache")
	}

	mapboxToken := os.Getenv("MAPBOX_ACCESS_TOKEN")
	if mapboxToken == "" {
		log.Warn().Msg("MAPBOX_ACCESS_TOKEN not set - geocoding and routing will fail")
	}

	// Provider HTTP clients with retry and circuit breakers; held here so
	// the ops status endpoint can report breaker states.
	geocodeHTTP := resilience.NewClient(resilience.DefaultClientConfig(geocodemapbox.ProviderName))
	routeHTTP := resilience.NewClient(resilience.DefaultClientConfig(routemapbox.ProviderName))

	geocoder := geocoding.NewService(geocoding.ServiceConfig{
		Provider: geocodemapbox.NewClient(geocodemapbox.ClientConfig{
			AccessToken: mapboxToken,
			HTTPClient:  geocodeHTTP,
			Logger:      log,
		}),
		Cache:  store,
		Logger: log,
	})

	router := routemapbox.NewClient(routemapbox.ClientConfig{
		AccessToken: mapboxToken,
		HTTPClient:  routeHTTP,
		Logger:      log,
	})

	catalog := station.NewCatalog(station.CatalogConfig{
		Repository: station.NewPostgresRepository(pool),
		Cache:      store,
		Logger:     log,
	})

	planService := planner.NewService(planner.ServiceConfig{
		Geocoder: geocoder,
		Router:   router,
		Stations: catalog,
		Cache:    store,
		Logger:   log,
	})
	log.Info().Msg("plan service initialized")

	subsystems := []handler.SubsystemCheck{
		{Name: "postgres", Check: pool.Ping},
	}
	if redisStore != nil {
		subsystems = append(subsystems, handler.SubsystemCheck{Name: "redis", Check: redisStore.Ping})
	}

	providers := []handler.ProviderCheck{
		{Name: geocodemapbox.ProviderName, State: func() string { return geocodeHTTP.State().String() }},
		{Name: routemapbox.ProviderName, State: func() string { return routeHTTP.State().String() }},
	}

	apiRouter := api.NewRouter(api.RouterConfig{
		Version:     Version,
		BuildTime:   BuildTime,
		Logger:      log,
		ServiceName: serviceName,
		Metrics:     metrics,
		PlanService: planService,
		Subsystems:  subsystems,
		Providers:   providers,
	})

	server := &http.Server{
		Addr:         ":" + port,
		Handler:      apiRouter,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info().
			Str("addr", server.Addr).
			Msg("server listening")

		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server forced to shutdown")
		os.Exit(1)
	}

	log.Info().Msg("server stopped")
}
