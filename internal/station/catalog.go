package station

import (
	"context"
	"encoding/json"
	"time"

	"github.com/rs/zerolog"

	"github.com/fuelroute/fuelroute/internal/cache"
)

// SnapshotCacheKey is the cache entry holding the full geocoded catalog.
const SnapshotCacheKey = "fuel_stations:all"

// DefaultSnapshotTTL is how long the catalog snapshot lives in cache. The
// ingestion worker invalidates it early whenever the catalog changes.
const DefaultSnapshotTTL = 24 * time.Hour

// CatalogConfig holds configuration for the catalog service.
type CatalogConfig struct {
	// Repository is the station store.
	Repository Repository

	// Cache holds the catalog snapshot.
	Cache cache.Store

	// SnapshotTTL overrides DefaultSnapshotTTL.
	SnapshotTTL time.Duration

	// Logger for catalog operations.
	Logger zerolog.Logger
}

// Catalog serves the geocoded station snapshot the planner runs against,
// caching it so each plan request does not rescan the table.
type Catalog struct {
	repo        Repository
	cache       cache.Store
	snapshotTTL time.Duration
	logger      zerolog.Logger
}

// NewCatalog creates a catalog service.
func NewCatalog(cfg CatalogConfig) *Catalog {
	ttl := cfg.SnapshotTTL
	if ttl == 0 {
		ttl = DefaultSnapshotTTL
	}
	return &Catalog{
		repo:        cfg.Repository,
		cache:       cfg.Cache,
		snapshotTTL: ttl,
		logger:      cfg.Logger,
	}
}

// Snapshot returns all geocoded stations, served from cache when possible.
func (c *Catalog) Snapshot(ctx context.Context) ([]FuelStation, error) {
	if raw, ok, err := c.cache.Get(ctx, SnapshotCacheKey); err == nil && ok {
		var cached []FuelStation
		if err := json.Unmarshal(raw, &cached); err == nil {
			c.logger.Debug().Int("station_count", len(cached)).Msg("station snapshot cache hit")
			return cached, nil
		}
	} else if err != nil {
		c.logger.Warn().Err(err).Msg("station snapshot cache read failed")
	}

	stations, err := c.repo.ListGeocoded(ctx)
	if err != nil {
		return nil, err
	}

	if raw, err := json.Marshal(stations); err == nil {
		if err := c.cache.Set(ctx, SnapshotCacheKey, raw, c.snapshotTTL); err != nil {
			c.logger.Warn().Err(err).Msg("station snapshot cache write failed")
		}
	}

	c.logger.Debug().Int("station_count", len(stations)).Msg("station snapshot loaded from repository")
	return stations, nil
}

// Invalidate drops the cached snapshot. Called after any catalog change.
func (c *Catalog) Invalidate(ctx context.Context) error {
	return c.cache.Delete(ctx, SnapshotCacheKey)
}
