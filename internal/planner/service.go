package planner

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"math"
	"time"

	"github.com/rs/zerolog"

	"github.com/fuelroute/fuelroute/internal/cache"
	"github.com/fuelroute/fuelroute/internal/geo"
	"github.com/fuelroute/fuelroute/internal/geocoding"
	"github.com/fuelroute/fuelroute/internal/routing"
	"github.com/fuelroute/fuelroute/internal/station"
)

// DefaultPlanTTL is how long assembled plans stay cached. Prices change on
// each catalog import, so plans are short-lived relative to geocodes.
const DefaultPlanTTL = time.Hour

// Geocoder resolves place names. Satisfied by geocoding.Service.
type Geocoder interface {
	Geocode(ctx context.Context, query string) (*geocoding.Result, error)
}

// Router fetches driving routes. Satisfied by the Mapbox directions client.
type Router interface {
	GetRoute(ctx context.Context, start, end geo.Point) (*routing.Route, error)
}

// StationSource serves the geocoded catalog snapshot. Satisfied by
// station.Catalog.
type StationSource interface {
	Snapshot(ctx context.Context) ([]station.FuelStation, error)
}

// ServiceConfig holds dependencies for the plan service.
type ServiceConfig struct {
	Geocoder Geocoder
	Router   Router
	Stations StationSource

	// Cache stores assembled plans keyed by request digest.
	Cache cache.Store

	// PlanTTL overrides DefaultPlanTTL.
	PlanTTL time.Duration

	// Logger for service operations.
	Logger zerolog.Logger
}

// Service composes geocoding, routing, corridor search, and the greedy
// planner into one idempotent, cacheable plan computation.
type Service struct {
	geocoder Geocoder
	router   Router
	stations StationSource
	cache    cache.Store
	planTTL  time.Duration
	logger   zerolog.Logger
}

// NewService creates a plan service.
func NewService(cfg ServiceConfig) *Service {
	planTTL := cfg.PlanTTL
	if planTTL == 0 {
		planTTL = DefaultPlanTTL
	}
	return &Service{
		geocoder: cfg.Geocoder,
		router:   cfg.Router,
		stations: cfg.Stations,
		cache:    cfg.Cache,
		planTTL:  planTTL,
		logger:   cfg.Logger,
	}
}

// PlanCacheKey derives the content-addressed cache key for a request: the
// SHA-256 digest of the canonical JSON payload. Go marshals map keys sorted,
// so equal requests always digest identically.
func PlanCacheKey(req Request) string {
	payload := map[string]interface{}{
		"start":                      req.StartLocation,
		"end":                        req.EndLocation,
		"max_range_miles":            req.MaxRangeMiles,
		"mpg":                        req.MPG,
		"max_station_distance_miles": req.MaxStationDistanceMiles,
	}
	raw, _ := json.Marshal(payload)
	sum := sha256.Sum256(raw)
	return "route_plan:" + hex.EncodeToString(sum[:])
}

// ComputePlan validates the request and computes (or returns the cached)
// refueling plan. Failed computations are never cached.
func (s *Service) ComputePlan(ctx context.Context, req Request) (*RoutePlan, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	key := PlanCacheKey(req)
	if raw, ok, err := s.cache.Get(ctx, key); err == nil && ok {
		var cached RoutePlan
		if err := json.Unmarshal(raw, &cached); err == nil {
			s.logger.Debug().Str("cache_key", key).Msg("plan cache hit")
			return &cached, nil
		}
	} else if err != nil {
		s.logger.Warn().Err(err).Str("cache_key", key).Msg("plan cache read failed")
	}

	startGeo, err := s.geocoder.Geocode(ctx, req.StartLocation)
	if err != nil {
		return nil, err
	}
	endGeo, err := s.geocoder.Geocode(ctx, req.EndLocation)
	if err != nil {
		return nil, err
	}
	if !startGeo.IsUS || !endGeo.IsUS {
		return nil, &DomainError{Err: ErrUnsupportedRegion}
	}

	route, err := s.router.GetRoute(ctx,
		geo.Point{Lat: startGeo.Latitude, Lon: startGeo.Longitude},
		geo.Point{Lat: endGeo.Latitude, Lon: endGeo.Longitude},
	)
	if err != nil {
		return nil, err
	}

	catalog, err := s.stations.Snapshot(ctx)
	if err != nil {
		return nil, err
	}

	onRoute := FindStationsOnRoute(catalog, route.Points, req.MaxStationDistanceMiles)

	startPrice, err := ChooseStartPrice(onRoute, req.MaxStationDistanceMiles)
	if err != nil {
		return nil, err
	}

	fuelStops, totalCost, totalGallons, err := PlanFuelStops(
		onRoute, route.DistanceMiles, req.MPG, req.MaxRangeMiles, startPrice,
	)
	if err != nil {
		return nil, err
	}

	plan := &RoutePlan{
		Start: EndpointSummary{
			Query:     req.StartLocation,
			PlaceName: startGeo.PlaceName,
			Latitude:  startGeo.Latitude,
			Longitude: startGeo.Longitude,
		},
		End: EndpointSummary{
			Query:     req.EndLocation,
			PlaceName: endGeo.PlaceName,
			Latitude:  endGeo.Latitude,
			Longitude: endGeo.Longitude,
		},
		Route: RouteSummary{
			DistanceMiles:   round2(route.DistanceMiles),
			DurationSeconds: round1(route.DurationSeconds),
			Geometry:        route.Geometry,
			GeometryFormat:  route.GeometryFormat,
		},
		Fueling: FuelingSummary{
			MaxRangeMiles: req.MaxRangeMiles,
			MPG:           req.MPG,
			TotalCost:     totalCost,
			TotalGallons:  totalGallons,
			FuelStops:     fuelStops,
		},
		Assumptions: []string{
			"Fuel price at the start uses the nearest station along the route.",
			"Fuel stops are optimized for cost under the configured range constraint.",
		},
	}

	if raw, err := json.Marshal(plan); err == nil {
		if err := s.cache.Set(ctx, key, raw, s.planTTL); err != nil {
			s.logger.Warn().Err(err).Str("cache_key", key).Msg("plan cache write failed")
		}
	}

	s.logger.Info().
		Str("start", req.StartLocation).
		Str("end", req.EndLocation).
		Float64("distance_miles", plan.Route.DistanceMiles).
		Float64("total_cost", totalCost).
		Int("fuel_stops", len(fuelStops)).
		Msg("route plan computed")

	return plan, nil
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
