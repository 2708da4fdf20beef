// Package routing resolves a pair of coordinates to a driving route.
package routing

import (
	"context"
	"errors"

	"github.com/fuelroute/fuelroute/internal/geo"
)

// Sentinel errors for routing operations.
var (
	// ErrNoRoute indicates no driving route exists between the endpoints.
	ErrNoRoute = errors.New("no route found")
	// ErrInvalidResponse indicates the provider payload was malformed or the
	// route geometry was absent or undecodable.
	ErrInvalidResponse = errors.New("invalid routing response")
	// ErrTransport indicates a network, timeout, or URL-scheme failure.
	ErrTransport = errors.New("routing provider unreachable")
)

// MetersPerMile converts provider distances to miles.
const MetersPerMile = 1609.344

// Provider computes a driving route between two points.
type Provider interface {
	GetRoute(ctx context.Context, start, end geo.Point) (*Route, error)
	// Name returns the provider identifier for logging.
	Name() string
}

// Route is a resolved driving route. Routes are not cached on their own; only
// the assembled fuel plan is.
type Route struct {
	DistanceMiles   float64
	DurationSeconds float64
	// Geometry is the raw encoded polyline as returned by the provider,
	// passed through to clients for rendering.
	Geometry string
	// GeometryFormat tags the encoding of Geometry (e.g. "polyline6").
	GeometryFormat string
	// Points is the decoded route geometry in driving order.
	Points []geo.Point
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
