// Package main provides the entrypoint for the fuelroute ingestion worker.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"github.com/fuelroute/fuelroute/internal/cache"
	"github.com/fuelroute/fuelroute/internal/database"
	"github.com/fuelroute/fuelroute/internal/geocoding"
	geocodemapbox "github.com/fuelroute/fuelroute/internal/geocoding/mapbox"
	"github.com/fuelroute/fuelroute/internal/station"
	"github.com/fuelroute/fuelroute/internal/worker"
)

// Version and BuildTime are set at compile time via ldflags.
var (
	Version   = "dev"
	BuildTime = "unknown"
)

func main() {
	const serviceName = "fuelroute-worker"

	_ = godotenv.Load()

	log := zerolog.New(os.Stdout).
		With().
		Timestamp().
		Str("service", serviceName).
		Str("version", Version).
		Logger()

	log.Info().
		Str("build_time", BuildTime).
		Msg("starting fuelroute worker")

	port := os.Getenv("APP_PORT")
	if port == "" {
		port = "8080"
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	dbConfig := database.ConfigFromEnv()
	pool, err := database.Connect(ctx, dbConfig)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer pool.Close()
	if err := database.EnsureSchema(ctx, pool); err != nil {
		log.Fatal().Err(err).Msg("failed to ensure schema")
	}

	var store cache.Store
	if addr := os.Getenv("REDIS_ADDR"); addr != "" {
		redisStore := cache.NewRedisStore(cache.RedisConfig{
			Addr:     addr,
			Password: os.Getenv("REDIS_PASSWORD"),
		})
		if err := redisStore.Ping(ctx); err != nil {
			log.Fatal().Err(err).Msg("failed to connect to redis")
		}
		store = redisStore
	} else {
		store = cache.NewMemoryStore()
		log.Warn().Msg("REDIS_ADDR not set - snapshot invalidation will not reach the API")
	}

	geocoder := geocoding.NewService(geocoding.ServiceConfig{
		Provider: geocodemapbox.NewClient(geocodemapbox.ClientConfig{
			AccessToken: os.Getenv("MAPBOX_ACCESS_TOKEN"),
			Logger:      log,
		}),
		Cache:  store,
		Logger: log,
	})

	stationRepo := station.NewPostgresRepository(pool)
	catalog := station.NewCatalog(station.CatalogConfig{
		Repository: stationRepo,
		Cache:      store,
		Logger:     log,
	})

	importer := worker.NewImporter(worker.ImporterConfig{
		Jobs:     worker.NewPostgresJobRepository(pool),
		Stations: stationRepo,
		Geocoder: geocoder,
		Catalog:  catalog,
		Logger:   log,
	})

	projectID := os.Getenv("PUBSUB_PROJECT_ID")
	subscription := os.Getenv("PUBSUB_SUBSCRIPTION")
	if projectID == "" || subscription == "" {
		log.Fatal().Msg("PUBSUB_PROJECT_ID and PUBSUB_SUBSCRIPTION are required")
	}

	pubsubHandler, err := worker.NewPubSubHandler(ctx, worker.PubSubConfig{
		ProjectID:        projectID,
		SubscriptionName: subscription,
		Importer:         importer,
		Logger:           log,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create pubsub handler")
	}
	defer pubsubHandler.Close()

	// Health endpoint for the container platform.
	mux := http.NewServeMux()
	mux.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		fmt.Fprintf(w, `{"status":"healthy","version":"%s"}`, Version)
	})

	server := &http.Server{
		Addr:         ":" + port,
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	go func() {
		log.Info().Str("addr", server.Addr).Msg("health server listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Msg("health server error")
		}
	}()

	go func() {
		if err := pubsubHandler.Start(ctx); err != nil && ctx.Err() == nil {
			log.Fatal().Err(err).Msg("pubsub handler stopped")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down worker")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("health server forced to shutdown")
	}

	log.Info().Msg("worker stopped")
}
