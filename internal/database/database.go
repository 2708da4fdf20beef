// Package database provides PostgreSQL connection management.
package database

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Config holds database connection configuration.
type Config struct {
	Host            string
	Port            int
	User            string
	Password        string
	Database        string
	SSLMode         string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// ConfigFromEnv creates a Config from environment variables.
func ConfigFromEnv() Config {
	port, _ := strconv.Atoi(getEnvOrDefault("DB_PORT", "5432"))
	maxOpen, _ := strconv.Atoi(getEnvOrDefault("DB_MAX_OPEN_CONNS", "10"))
	maxIdle, _ := strconv.Atoi(getEnvOrDefault("DB_MAX_IDLE_CONNS", "5"))
	lifetime, _ := time.ParseDuration(getEnvOrDefault("DB_CONN_MAX_LIFETIME", "5m"))

	return Config{
		Host:            getEnvOrDefault("DB_HOST", "localhost"),
		Port:            port,
		User:            getEnvOrDefault("DB_USER", "fuelroute"),
		Password:        getEnvOrDefault("DB_PASSWORD", "localdev"),
		Database:        getEnvOrDefault("DB_NAME", "fuelroute"),
		SSLMode:         getEnvOrDefault("DB_SSL_MODE", "disable"),
		MaxOpenConns:    maxOpen,
		MaxIdleConns:    maxIdle,
		ConnMaxLifetime: lifetime,
	}
}

// ConnectionString returns the PostgreSQL connection string.
func (c Config) ConnectionString() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.User, c.Password, c.Host, c.Port, c.Database, c.SSLMode,
	)
}

// Connect creates a new database connection pool.
func Connect(ctx context.Context, cfg Config) (*pgxpool.Pool, error) {
	poolConfig, err := pgxpool.ParseConfig(cfg.ConnectionString())
	if err != nil {
		return nil, fmt.Errorf("parse connection string: %w", err)
	}

	poolConfig.MaxConns = int32(cfg.MaxOpenConns) //nolint:gosec // MaxOpenConns is bounded by config validation
	poolConfig.MinConns = int32(cfg.MaxIdleConns) //nolint:gosec // MaxIdleConns is bounded by config validation
	poolConfig.MaxConnLifetime = cfg.ConnMaxLifetime

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("create connection pool: %w", err)
	}

	// Verify connection
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	return pool, nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// EnsureSchema creates the catalog and import-job tables if they do not
// exist. Stations are unique on their OPIS natural key; the surrogate ID is
// what the geocoder writes coordinates back against.
func EnsureSchema(ctx context.Context, pool *pgxpool.Pool) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS fuel_stations (
			id              BIGSERIAL PRIMARY KEY,
			opis_id         INTEGER NOT NULL,
			truckstop_name  TEXT NOT NULL,
			address         TEXT NOT NULL,
			city            TEXT NOT NULL,
			state           TEXT NOT NULL,
			rack_id         INTEGER NOT NULL,
			retail_price    NUMERIC(6,3) NOT NULL,
			latitude        DOUBLE PRECISION,
			longitude       DOUBLE PRECISION,
			created_at      TIMESTAMPTZ NOT NULL DEFAULT now(),
			updated_at      TIMESTAMPTZ NOT NULL DEFAULT now(),
			CONSTRAINT unique_fuel_station
				UNIQUE (opis_id, truckstop_name, address, city, state, rack_id)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_fuel_stations_state_city
			ON fuel_stations (state, city)`,
		`CREATE INDEX IF NOT EXISTS idx_fuel_stations_coords
			ON fuel_stations (latitude, longitude)`,
		`CREATE TABLE IF NOT EXISTS station_import_jobs (
			id                 BIGSERIAL PRIMARY KEY,
			file_path          TEXT NOT NULL,
			original_filename  TEXT NOT NULL,
			status             TEXT NOT NULL DEFAULT 'pending',
			total_rows         INTEGER NOT NULL DEFAULT 0,
			processed_rows     INTEGER NOT NULL DEFAULT 0,
			created_count      INTEGER NOT NULL DEFAULT 0,
			updated_count      INTEGER NOT NULL DEFAULT 0,
			geocoded_count     INTEGER NOT NULL DEFAULT 0,
			failed_count       INTEGER NOT NULL DEFAULT 0,
			error_log          TEXT NOT NULL DEFAULT '',
			started_at         TIMESTAMPTZ,
			finished_at        TIMESTAMPTZ,
			created_at         TIMESTAMPTZ NOT NULL DEFAULT now(),
			updated_at         TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,
	}

	for _, stmt := range statements {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
	}
	return nil
}
