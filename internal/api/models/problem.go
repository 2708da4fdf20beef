package models

import (
	"encoding/json"
	"net/http"
)

// Problem represents an RFC7807 error response.
// This is used for all API error responses with Content-Type: application/problem+json.
type Problem struct {
	// Type is a URI reference that identifies the problem type.
	Type string `json:"type"`

	// Title is a short, human-readable summary of the problem type.
	Title string `json:"title"`

	// Status is the HTTP status code for this occurrence of the problem.
	Status int `json:"status"`

	// Detail is a human-readable explanation specific to this occurrence.
	Detail string `json:"detail,omitempty"`

	// Instance is a URI reference that identifies the specific occurrence.
	Instance string `json:"instance,omitempty"`

	// TraceID is the request trace identifier for debugging.
	TraceID string `json:"traceId"`

	// Errors contains structured field validation errors.
	Errors []FieldError `json:"errors,omitempty"`
}

// FieldError represents a validation error on a specific field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

// ProblemType constants for standard error types.
const (
	ProblemTypeValidation        = "https://api.fuelroute.io/problems/validation-error"
	ProblemTypeNotFound          = "https://api.fuelroute.io/problems/not-found"
	ProblemTypeUnsupportedRegion = "https://api.fuelroute.io/problems/unsupported-region"
	ProblemTypeNoRoute           = "https://api.fuelroute.io/problems/no-route"
	ProblemTypeRangeExceeded     = "https://api.fuelroute.io/problems/range-exceeded"
	ProblemTypeNoStations        = "https://api.fuelroute.io/problems/no-stations"
	ProblemTypeTooManyRequests   = "https://api.fuelroute.io/problems/too-many-requests"
	ProblemTypeInternal          = "https://api.fuelroute.io/problems/internal-error"
	ProblemTypeUpstream          = "https://api.fuelroute.io/problems/upstream-error"
	ProblemTypeUnavailable       = "https://api.fuelroute.io/problems/service-unavailable"
)

// NewProblem creates a new Problem with the given parameters.
func NewProblem(problemType, title string, status int, traceID string) *Problem {
	return &Problem{
		Type:    problemType,
		Title:   title,
		Status:  status,
		TraceID: traceID,
	}
}

// WithDetail adds a detail message to the Problem.
func (p *Problem) WithDetail(detail string) *Problem {
	p.Detail = detail
	return p
}

// WithInstance adds the request instance URI to the Problem.
func (p *Problem) WithInstance(instance string) *Problem {
	p.Instance = instance
	return p
}

// WithErrors adds field errors to the Problem.
func (p *Problem) WithErrors(errors []FieldError) *Problem {
	p.Errors = errors
	return p
}

// Write writes the Problem as JSON to the ResponseWriter.
func (p *Problem) Write(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/problem+json")
	w.Header().Set("X-Request-Id", p.TraceID)
	w.WriteHeader(p.Status)
	_ = json.NewEncoder(w).Encode(p)
}

// NewBadRequest creates a 400 Bad Request problem.
func NewBadRequest(traceID, detail string, errors []FieldError) *Problem {
	p := NewProblem(ProblemTypeValidation, "Validation error", http.StatusBadRequest, traceID)
	p.Detail = detail
	p.Errors = errors
	return p
}

// NewNotFound creates a 404 Not Found problem.
func NewNotFound(traceID, detail string) *Problem {
	p := NewProblem(ProblemTypeNotFound, "Not found", http.StatusNotFound, traceID)
	p.Detail = detail
	return p
}

// NewUnsupportedRegion creates a 400 problem for non-US trip endpoints.
func NewUnsupportedRegion(traceID, detail string) *Problem {
	p := NewProblem(ProblemTypeUnsupportedRegion, "Unsupported region", http.StatusBadRequest, traceID)
	p.Detail = detail
	return p
}

// NewNoRoute creates a 400 problem for unroutable trips.
func NewNoRoute(traceID, detail string) *Problem {
	p := NewProblem(ProblemTypeNoRoute, "No route found", http.StatusBadRequest, traceID)
	p.Detail = detail
	return p
}

// NewRangeExceeded creates a 400 problem for trips the vehicle cannot make.
func NewRangeExceeded(traceID, detail string) *Problem {
	p := NewProblem(ProblemTypeRangeExceeded, "Vehicle range exceeded", http.StatusBadRequest, traceID)
	p.Detail = detail
	return p
}

// NewNoStations creates a 400 problem for corridors with no usable stations.
func NewNoStations(traceID, detail string) *Problem {
	p := NewProblem(ProblemTypeNoStations, "No fuel stations on route", http.StatusBadRequest, traceID)
	p.Detail = detail
	return p
}

// NewTooManyRequests creates a 429 Too Many Requests problem.
func NewTooManyRequests(traceID, detail string) *Problem {
	p := NewProblem(ProblemTypeTooManyRequests, "Too many requests", http.StatusTooManyRequests, traceID)
	p.Detail = detail
	return p
}

// NewInternalError creates a 500 Internal Server Error problem.
func NewInternalError(traceID, detail string) *Problem {
	p := NewProblem(ProblemTypeInternal, "Internal server error", http.StatusInternalServerError, traceID)
	p.Detail = detail
	return p
}

// NewUpstreamError creates a 502 Bad Gateway problem for provider failures.
func NewUpstreamError(traceID, detail string) *Problem {
	p := NewProblem(ProblemTypeUpstream, "Upstream provider error", http.StatusBadGateway, traceID)
	p.Detail = detail
	return p
}

// NewServiceUnavailable creates a 503 Service Unavailable problem.
func NewServiceUnavailable(traceID, detail string) *Problem {
	p := NewProblem(ProblemTypeUnavailable, "Service unavailable", http.StatusServiceUnavailable, traceID)
	p.Detail = detail
	return p
}
