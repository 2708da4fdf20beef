// Package geocoding resolves free-form place names to coordinates.
package geocoding

import (
	"context"
	"errors"
)

// Sentinel errors for geocoding operations.
var (
	// ErrNotFound indicates the provider returned no match for the query.
	ErrNotFound = errors.New("no geocoding result found")
	// ErrInvalidResponse indicates the provider payload was malformed.
	ErrInvalidResponse = errors.New("invalid geocoding response")
	// ErrTransport indicates a network, timeout, or URL-scheme failure.
	ErrTransport = errors.New("geocoding provider unreachable")
)

// Provider resolves a query string to a single best match.
type Provider interface {
	Geocode(ctx context.Context, query string) (*Result, error)
	// Name returns the provider identifier for logging.
	Name() string
}

// Result is a resolved location.
type Result struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	PlaceName string  `json:"place_name"`
	// IsUS reports whether the match carries a US country context.
	IsUS bool `json:"is_us"`
}

// Error wraps a provider failure with context for logging and error mapping.
type Error struct {
	Provider string
	Message  string
	Err      error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}
