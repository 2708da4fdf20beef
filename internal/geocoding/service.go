package geocoding

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/fuelroute/fuelroute/internal/cache"
)

// DefaultCacheTTL is how long resolved locations are cached. Place names do
// not move, so a week is conservative.
const DefaultCacheTTL = 7 * 24 * time.Hour

// ServiceConfig holds configuration for the geocoding service.
type ServiceConfig struct {
	// Provider is the geocoding backend.
	Provider Provider

	// Cache stores resolved results keyed by normalized query.
	Cache cache.Store

	// CacheTTL overrides DefaultCacheTTL.
	CacheTTL time.Duration

	// Logger for service operations.
	Logger zerolog.Logger
}

// Service resolves queries through a provider with a shared result cache.
type Service struct {
	provider Provider
	cache    cache.Store
	cacheTTL time.Duration
	logger   zerolog.Logger
}

// NewService creates a caching geocoding service.
func NewService(cfg ServiceConfig) *Service {
	cacheTTL := cfg.CacheTTL
	if cacheTTL == 0 {
		cacheTTL = DefaultCacheTTL
	}
	return &Service{
		provider: cfg.Provider,
		cache:    cfg.Cache,
		cacheTTL: cacheTTL,
		logger:   cfg.Logger,
	}
}

// CacheKey returns the cache key for a query: trimmed and lowercased so that
// "Chicago, IL" and " chicago, il " share an entry.
func CacheKey(query string) string {
	return "geocode:" + strings.ToLower(strings.TrimSpace(query))
}

// Geocode resolves a query, serving from cache when possible.
func (s *Service) Geocode(ctx context.Context, query string) (*Result, error) {
	key := CacheKey(query)

	if raw, ok, err := s.cache.Get(ctx, key); err == nil && ok {
		var cached Result
		if err := json.Unmarshal(raw, &cached); err == nil {
			s.logger.Debug().Str("query", query).Msg("geocode cache hit")
			return &cached, nil
		}
		// Unreadable entry: fall through and overwrite it.
	} else if err != nil {
		s.logger.Warn().Err(err).Str("query", query).Msg("geocode cache read failed")
	}

	result, err := s.provider.Geocode(ctx, query)
	if err != nil {
		return nil, err
	}

	if raw, err := json.Marshal(result); err == nil {
		if err := s.cache.Set(ctx, key, raw, s.cacheTTL); err != nil {
			s.logger.Warn().Err(err).Str("query", query).Msg("geocode cache write failed")
		}
	}

	return result, nil
}
