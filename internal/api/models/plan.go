package models

import (
	"strings"

	"github.com/fuelroute/fuelroute/internal/planner"
)

// PlanRequest is the body of POST /v1/routes/plan.
type PlanRequest struct {
	StartLocation           string   `json:"start_location"`
	EndLocation             string   `json:"end_location"`
	MaxRangeMiles           *float64 `json:"max_range_miles,omitempty"`
	MPG                     *float64 `json:"mpg,omitempty"`
	MaxStationDistanceMiles *float64 `json:"max_station_distance_miles,omitempty"`
}

// FieldErrors returns validation errors for fields the handler can reject
// before the domain layer sees the request.
func (r *PlanRequest) FieldErrors() []FieldError {
	var errs []FieldError
	if strings.TrimSpace(r.StartLocation) == "" {
		errs = append(errs, FieldError{Field: "start_location", Message: "is required", Code: "required"})
	}
	if strings.TrimSpace(r.EndLocation) == "" {
		errs = append(errs, FieldError{Field: "end_location", Message: "is required", Code: "required"})
	}
	return errs
}

// ToDomain converts the request to a planner.Request, leaving absent optional
// fields zero so the domain defaults apply.
func (r *PlanRequest) ToDomain() planner.Request {
	req := planner.Request{
		StartLocation: strings.TrimSpace(r.StartLocation),
		EndLocation:   strings.TrimSpace(r.EndLocation),
	}
	if r.MaxRangeMiles != nil {
		req.MaxRangeMiles = *r.MaxRangeMiles
	}
	if r.MPG != nil {
		req.MPG = *r.MPG
	}
	if r.MaxStationDistanceMiles != nil {
		req.MaxStationDistanceMiles = *r.MaxStationDistanceMiles
	}
	return req
}

// PlanResponse is the body of a successful plan computation.
type PlanResponse struct {
	Plan        *planner.RoutePlan `json:"plan"`
	GeneratedAt Timestamp          `json:"generated_at"`
}
