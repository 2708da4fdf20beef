// Package mapbox provides a client for the Mapbox Geocoding v5 API.
package mapbox

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/fuelroute/fuelroute/internal/geocoding"
	"github.com/fuelroute/fuelroute/internal/provider/resilience"
)

const (
	// ProviderName identifies this geocoding provider.
	ProviderName = "mapbox-geocoding"

	// DefaultBaseURL is the Mapbox places endpoint.
	DefaultBaseURL = "https://api.mapbox.com/geocoding/v5/mapbox.places"

	// DefaultTimeout bounds each geocoding request.
	DefaultTimeout = 20 * time.Second
)

// HTTPDoer executes HTTP requests.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// ClientConfig holds configuration for the Mapbox geocoding client.
type ClientConfig struct {
	// AccessToken is the Mapbox access token (required).
	AccessToken string

	// BaseURL overrides the places endpoint (optional).
	BaseURL string

	// HTTPClient overrides the HTTP client (optional). If nil, a resilient
	// client with circuit breaker and retry is used.
	HTTPClient HTTPDoer

	// Timeout is the request timeout (optional, defaults to 20s).
	Timeout time.Duration

	// Logger for client operations.
	Logger zerolog.Logger
}

// Client is a Mapbox geocoding client.
type Client struct {
	accessToken string
	baseURL     string
	httpClient  HTTPDoer
	logger      zerolog.Logger
}

// NewClient creates a new Mapbox geocoding client.
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

// Geocode resolves a place-name query to its single best US match.
func (c *Client) Geocode(ctx context.Context, query string) (*geocoding.Result, error) {
	reqURL := fmt.Sprintf(
		"%s/%s.json?access_token=%s&limit=1&country=us&autocomplete=false",
		c.baseURL, url.PathEscape(query), url.QueryEscape(c.accessToken),
	)

	// Reject anything but http/https before dispatch; the base URL is
	// configurable and must not smuggle in file:// or similar schemes.
	parsed, err := url.Parse(reqURL)
	if err != nil || (parsed.Scheme != "http" && parsed.Scheme != "https") {
		return nil, &geocoding.Error{
			Provider: ProviderName,
			Message:  "invalid URL scheme, only http/https are allowed",
			Err:      geocoding.ErrTransport,
		}
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set("User-Agent", "fuelroute-planner")

	c.logger.Debug().
		Str("query", query).
		Msg("requesting geocode from Mapbox")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		// Keep the cause in the chain so an open circuit breaker stays
		// matchable with errors.Is at the HTTP layer.
		return nil, &geocoding.Error{
			Provider: ProviderName,
			Message:  "failed to reach geocoding provider",
			Err:      fmt.Errorf("%w: %w", geocoding.ErrTransport, err),
		}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &geocoding.Error{
			Provider: ProviderName,
			Message:  "reading geocoding response",
			Err:      geocoding.ErrTransport,
		}
	}

	if resp.StatusCode != http.StatusOK {
		return nil, &geocoding.Error{
			Provider: ProviderName,
			Message:  fmt.Sprintf("geocoding provider returned status %d", resp.StatusCode),
			Err:      geocoding.ErrTransport,
		}
	}

	var payload geocodeResponse
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, &geocoding.Error{
			Provider: ProviderName,
			Message:  "decoding geocoding response",
			Err:      geocoding.ErrInvalidResponse,
		}
	}

	if len(payload.Features) == 0 {
		return nil, &geocoding.Error{
			Provider: ProviderName,
			Message:  "no geocoding result found",
			Err:      geocoding.ErrNotFound,
		}
	}

	feature := payload.Features[0]
	if len(feature.Center) != 2 {
		return nil, &geocoding.Error{
			Provider: ProviderName,
			Message:  "geocoding match has no center coordinates",
			Err:      geocoding.ErrInvalidResponse,
		}
	}

	placeName := feature.PlaceName
	if placeName == "" {
		placeName = query
	}

	result := &geocoding.Result{
		// Mapbox center is [lon, lat] (GeoJSON order).
		Latitude:  feature.Center[1],
		Longitude: feature.Center[0],
		PlaceName: placeName,
		IsUS:      isUSContext(feature),
	}

	c.logger.Debug().
		Str("query", query).
		Str("place_name", result.PlaceName).
		Bool("is_us", result.IsUS).
		Msg("geocode resolved")

	return result, nil
}

// isUSContext reports whether any context entry is a US country reference.
func isUSContext(f geocodeFeature) bool {
	for _, entry := range f.Context {
		if strings.HasPrefix(entry.ID, "country") && entry.ShortCode == "us" {
			return true
		}
	}
	return false
}

// geocodeResponse mirrors the subset of the Mapbox payload we consume.
type geocodeResponse struct {
	Features []geocodeFeature `json:"features"`
}

type geocodeFeature struct {
	Center    []float64      `json:"center"`
	PlaceName string         `json:"place_name"`
	Context   []contextEntry `json:"context"`
}

type contextEntry struct {
	ID        string `json:"id"`
	ShortCode string `json:"short_code"`
}
