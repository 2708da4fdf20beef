// Package handler provides HTTP handlers for the fuelroute API.
package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/fuelroute/fuelroute/internal/api/middleware"
	"github.com/fuelroute/fuelroute/internal/api/models"
	"github.com/fuelroute/fuelroute/internal/api/response"
	"github.com/fuelroute/fuelroute/internal/geocoding"
	"github.com/fuelroute/fuelroute/internal/planner"
	"github.com/fuelroute/fuelroute/internal/provider/resilience"
	"github.com/fuelroute/fuelroute/internal/routing"
)

// PlanService computes route plans. Satisfied by planner.Service.
type PlanService interface {
	ComputePlan(ctx context.Context, req planner.Request) (*planner.RoutePlan, error)
}

// PlanHandler handles route plan endpoints.
type PlanHandler struct {
	service PlanService
}

// NewPlanHandler creates a new PlanHandler.
func NewPlanHandler(service PlanService) *PlanHandler {
	return &PlanHandler{service: service}
}

// ComputePlan handles POST /v1/routes/plan.
func (h *PlanHandler) ComputePlan(w http.ResponseWriter, r *http.Request) {
	var input models.PlanRequest
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		response.BadRequest(w, r, "invalid JSON body", nil)
		return
	}

	if fieldErrs := input.FieldErrors(); len(fieldErrs) > 0 {
		response.BadRequest(w, r, "invalid plan request", fieldErrs)
		return
	}

	plan, err := h.service.ComputePlan(r.Context(), input.ToDomain())
	if err != nil {
		writePlanError(w, r, err)
		return
	}

	resp := models.PlanResponse{
		Plan:        plan,
		GeneratedAt: models.Timestamp(time.Now()),
	}
	w.Header().Set("Cache-Control", "private, max-age=60")
	response.JSON(w, r, http.StatusOK, resp)
}

// writePlanError maps domain and provider failures onto problem responses.
// Domain failures the caller can correct are 400s; provider failures are
// 502, or 503 when the circuit breaker has the provider offline.
func writePlanError(w http.ResponseWriter, r *http.Request, err error) {
	traceID := middleware.GetRequestID(r.Context())

	var problem *models.Problem
	switch {
	case errors.Is(err, planner.ErrValidation):
		problem = models.NewBadRequest(traceID, err.Error(), nil)
	case errors.Is(err, planner.ErrUnsupportedRegion):
		problem = models.NewUnsupportedRegion(traceID, err.Error())
	case errors.Is(err, geocoding.ErrNotFound):
		problem = models.NewBadRequest(traceID, "could not resolve a trip endpoint: "+err.Error(), nil)
	case errors.Is(err, routing.ErrNoRoute):
		problem = models.NewNoRoute(traceID, err.Error())
	case errors.Is(err, planner.ErrNoStations), errors.Is(err, planner.ErrNoStartCandidate):
		problem = models.NewNoStations(traceID, err.Error())
	case errors.Is(err, planner.ErrRangeExceeded), errors.Is(err, planner.ErrInsufficientFuel):
		problem = models.NewRangeExceeded(traceID, err.Error())
	case errors.Is(err, resilience.ErrCircuitOpen):
		problem = models.NewServiceUnavailable(traceID, "upstream provider temporarily unavailable")
	case errors.Is(err, geocoding.ErrTransport), errors.Is(err, geocoding.ErrInvalidResponse),
		errors.Is(err, routing.ErrTransport), errors.Is(err, routing.ErrInvalidResponse):
		problem = models.NewUpstreamError(traceID, "upstream provider request failed")
	default:
		problem = models.NewInternalError(traceID, "an unexpected error occurred")
	}

	response.Error(w, r, problem)
}
