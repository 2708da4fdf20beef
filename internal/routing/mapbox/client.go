// Package mapbox provides a client for the Mapbox Directions v5 API.
package mapbox

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/rs/zerolog"

	"github.com/fuelroute/fuelroute/internal/geo"
	"github.com/fuelroute/fuelroute/internal/provider/resilience"
	"github.com/fuelroute/fuelroute/internal/routing"
	"github.com/fuelroute/fuelroute/pkg/polyline"
)

const (
	// ProviderName identifies this routing provider.
	ProviderName = "mapbox-directions"

	// DefaultBaseURL is the Mapbox driving directions endpoint.
	DefaultBaseURL = "https://api.mapbox.com/directions/v5/mapbox/driving"

	// DefaultTimeout bounds each directions request.
	DefaultTimeout = 20 * time.Second

	// GeometryFormat is the polyline encoding requested from Mapbox.
	GeometryFormat = "polyline6"
)

// HTTPDoer executes HTTP requests.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// ClientConfig holds configuration for the Mapbox directions client.
type ClientConfig struct {
	// AccessToken is the Mapbox access token (required).
	AccessToken string

	// BaseURL overrides the directions endpoint (optional).
	BaseURL string

	// HTTPClient overrides the HTTP client (optional). If nil, a resilient
	// client with circuit breaker and retry is used.
	HTTPClient HTTPDoer

	// Timeout is the request timeout (optional, defaults to 20s).
	Timeout time.Duration

	// Logger for client operations.
	Logger zerolog.Logger
}

// Client is a Mapbox directions client.
type Client struct {
	accessToken string
	baseURL     string
	httpClient  HTTPDoer
	logger      zerolog.Logger
}

// NewClient creates a new Mapbox directions client.
func NewClient(cfg ClientConfig) *Client {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = DefaultTimeout
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		clientCfg := resilience.DefaultClientConfig(ProviderName)
		clientCfg.Timeout = timeout
		httpClient = resilience.NewClient(clientCfg)
	}

	return &Client{
		accessToken: cfg.AccessToken,
		baseURL:     baseURL,
		httpClient:  httpClient,
		logger:      cfg.Logger,
	}
}

// Name returns the provider name.
func (c *Client) Name() string {
	return ProviderName
}

// GetRoute fetches a driving route with full overview geometry.
func (c *Client) GetRoute(ctx context.Context, start, end geo.Point) (*routing.Route, error) {
	// Mapbox takes waypoints as lon,lat pairs separated by semicolons.
	reqURL := fmt.Sprintf(
		"%s/%f,%f;%f,%f?geometries=%s&overview=full&access_token=%s",
		c.baseURL,
		start.Lon, start.Lat,
		end.Lon, end.Lat,
		GeometryFormat,
		url.QueryEscape(c.accessToken),
	)

	parsed, err := url.Parse(reqURL)
	if err != nil || (parsed.Scheme != "http" && parsed.Scheme != "https") {
		return nil, &routing.Error{
			Provider: ProviderName,
			Message:  "invalid URL scheme, only http/https are allowed",
			Err:      routing.ErrTransport,
		}
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set("User-Agent", "fuelroute-planner")

	c.logger.Debug().
		Float64("start_lat", start.Lat).
		Float64("start_lon", start.Lon).
		Float64("end_lat", end.Lat).
		Float64("end_lon", end.Lon).
		Msg("requesting directions from Mapbox")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		// Keep the cause in the chain so an open circuit breaker stays
		// matchable with errors.Is at the HTTP layer.
		return nil, &routing.Error{
			Provider: ProviderName,
			Message:  "failed to reach routing provider",
			Err:      fmt.Errorf("%w: %w", routing.ErrTransport, err),
		}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &routing.Error{
			Provider: ProviderName,
			Message:  "reading routing response",
			Err:      routing.ErrTransport,
		}
	}

	if resp.StatusCode != http.StatusOK {
		return nil, &routing.Error{
			Provider: ProviderName,
			Message:  fmt.Sprintf("routing provider returned status %d", resp.StatusCode),
			Err:      routing.ErrTransport,
		}
	}

	var payload directionsResponse
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, &routing.Error{
			Provider: ProviderName,
			Message:  "decoding routing response",
			Err:      routing.ErrInvalidResponse,
		}
	}

	if len(payload.Routes) == 0 {
		return nil, &routing.Error{
			Provider: ProviderName,
			Message:  "no route found between the given points",
			Err:      routing.ErrNoRoute,
		}
	}

	route := payload.Routes[0]
	if route.Geometry == "" {
		return nil, &routing.Error{
			Provider: ProviderName,
			Message:  "route geometry missing",
			Err:      routing.ErrInvalidResponse,
		}
	}

	coords, err := polyline.Decode(route.Geometry, polyline.Precision6)
	if err != nil {
		return nil, &routing.Error{
			Provider: ProviderName,
			Message:  "decoding route geometry",
			Err:      routing.ErrInvalidResponse,
		}
	}

	points := make([]geo.Point, len(coords))
	for i, c := range coords {
		points[i] = geo.Point{Lat: c.Lat, Lon: c.Lon}
	}

	result := &routing.Route{
		DistanceMiles:   route.Distance / routing.MetersPerMile,
		DurationSeconds: route.Duration,
		Geometry:        route.Geometry,
		GeometryFormat:  GeometryFormat,
		Points:          points,
	}

	c.logger.Debug().
		Float64("distance_miles", result.DistanceMiles).
		Int("point_count", len(points)).
		Msg("received directions from Mapbox")

	return result, nil
}

// directionsResponse mirrors the subset of the Mapbox payload we consume.
type directionsResponse struct {
	Routes []directionsRoute `json:"routes"`
}

type directionsRoute struct {
	Distance float64 `json:"distance"` // meters
	Duration float64 `json:"duration"` // seconds
	Geometry string  `json:"geometry"`
}
