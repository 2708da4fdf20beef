// Package planner computes cost-optimal refueling plans: it places catalog
// stations along a route corridor, picks a starting price, and runs a greedy
// purchase schedule under the vehicle's range constraint.
package planner

import (
	"errors"
	"strings"

	"github.com/fuelroute/fuelroute/internal/station"
)

// Sentinel errors for plan computation. All are expected, caller-recoverable
// domain failures.
var (
	// ErrValidation indicates a malformed plan request.
	ErrValidation = errors.New("invalid plan request")
	// ErrUnsupportedRegion indicates an endpoint resolved outside the USA.
	ErrUnsupportedRegion = errors.New("start and end locations must be within the USA")
	// ErrNoStations indicates the corridor search found no usable stations.
	ErrNoStations = errors.New("no fuel stations available on route")
	// ErrNoStartCandidate indicates no station lies near enough to the start.
	ErrNoStartCandidate = errors.New("no fuel stations found near the start location")
	// ErrRangeExceeded indicates a route segment longer than a full tank.
	ErrRangeExceeded = errors.New("route segment exceeds vehicle range")
	// ErrInsufficientFuel indicates the planner's fuel ledger went negative.
	ErrInsufficientFuel = errors.New("insufficient fuel to reach next stop")
)

// StopKind discriminates real stations from the planner's synthetic stops.
type StopKind int

const (
	// StopStation is a real catalog station on the route.
	StopStation StopKind = iota
	// StopVirtualStart is the synthetic purchase point anchored at mile 0,
	// priced from the station nearest the start.
	StopVirtualStart
	// StopVirtualDestination is the route-end sentinel. It is never emitted
	// as a fuel stop; it only terminates the planning walk.
	StopVirtualDestination
)

// StationOnRoute is a station projected onto the route, or a synthetic stop.
// Transient: computed per planning request.
type StationOnRoute struct {
	// Station is the catalog record. Nil only for the destination sentinel;
	// the virtual start keeps the record of the station it was priced from.
	Station *station.FuelStation

	Kind StopKind

	// Price per gallon in dollars.
	Price float64

	// MileMarker is the cumulative driving distance from the route start to
	// the nearest simplified-route point, in miles.
	MileMarker float64

	// DistanceToRoute is the great-circle distance from the station to that
	// nearest route point, in miles.
	DistanceToRoute float64

	Latitude  float64
	Longitude float64
}

// Virtual reports whether the stop is synthetic.
func (s StationOnRoute) Virtual() bool {
	return s.Kind != StopStation
}

// FuelStop is one purchase in the emitted plan. Immutable once emitted.
type FuelStop struct {
	MileMarker     float64 `json:"mile_marker"`
	PricePerGallon float64 `json:"price_per_gallon"`
	Gallons        float64 `json:"gallons"`
	Cost           float64 `json:"cost"`
	Latitude       float64 `json:"latitude"`
	Longitude      float64 `json:"longitude"`
	Virtual        bool    `json:"virtual"`

	// Station identifies the real station, nil for the virtual start when it
	// carries no catalog record.
	Station *FuelStopStation `json:"station"`
}

// FuelStopStation is the station identity carried on an emitted stop.
type FuelStopStation struct {
	OPISID  int    `json:"opis_id"`
	Name    string `json:"truckstop_name"`
	Address string `json:"address"`
	City    string `json:"city"`
	State   string `json:"state"`
	RackID  int    `json:"rack_id"`
}

// Request is a plan computation request.
type Request struct {
	StartLocation           string  `json:"start_location"`
	EndLocation             string  `json:"end_location"`
	MaxRangeMiles           float64 `json:"max_range_miles"`
	MPG                     float64 `json:"mpg"`
	MaxStationDistanceMiles float64 `json:"max_station_distance_miles"`
}

// Defaults for optional request fields.
const (
	DefaultMaxRangeMiles           = 500.0
	DefaultMPG                     = 10.0
	DefaultMaxStationDistanceMiles = 10.0
)

// Validate checks bounds and applies defaults to zero-valued fields.
func (r *Request) Validate() error {
	if strings.TrimSpace(r.StartLocation) == "" {
		return &DomainError{Message: "start_location is required", Err: ErrValidation}
	}
	if strings.TrimSpace(r.EndLocation) == "" {
		return &DomainError{Message: "end_location is required", Err: ErrValidation}
	}
	if r.MaxRangeMiles == 0 {
		r.MaxRangeMiles = DefaultMaxRangeMiles
	}
	if r.MPG == 0 {
		r.MPG = DefaultMPG
	}
	if r.MaxStationDistanceMiles == 0 {
		r.MaxStationDistanceMiles = DefaultMaxStationDistanceMiles
	}
	if r.MaxRangeMiles < 1 {
		return &DomainError{Message: "max_range_miles must be at least 1", Err: ErrValidation}
	}
	if r.MPG < 0.1 {
		return &DomainError{Message: "mpg must be at least 0.1", Err: ErrValidation}
	}
	if r.MaxStationDistanceMiles < 0.1 {
		return &DomainError{Message: "max_station_distance_miles must be at least 0.1", Err: ErrValidation}
	}
	return nil
}

// EndpointSummary describes a resolved trip endpoint.
type EndpointSummary struct {
	Query     string  `json:"query"`
	PlaceName string  `json:"place_name"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// RouteSummary describes the driving route of a plan.
type RouteSummary struct {
	DistanceMiles   float64 `json:"distance_miles"`
	DurationSeconds float64 `json:"duration_seconds"`
	Geometry        string  `json:"geometry"`
	GeometryFormat  string  `json:"geometry_format"`
}

// FuelingSummary describes the purchase schedule of a plan.
type FuelingSummary struct {
	MaxRangeMiles float64    `json:"max_range_miles"`
	MPG           float64    `json:"mpg"`
	TotalCost     float64    `json:"total_cost"`
	TotalGallons  float64    `json:"total_gallons"`
	FuelStops     []FuelStop `json:"fuel_stops"`
}

// RoutePlan is the assembled plan returned to the caller.
type RoutePlan struct {
	Start       EndpointSummary `json:"start"`
	End         EndpointSummary `json:"end"`
	Route       RouteSummary    `json:"route"`
	Fueling     FuelingSummary  `json:"fueling"`
	Assumptions []string        `json:"assumptions"`
}

// DomainError pairs a sentinel with a human-readable message.
type DomainError struct {
	Message string
	Err     error
}

func (e *DomainError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return e.Err.Error()
}

func (e *DomainError) Unwrap() error {
	return e.Err
}
