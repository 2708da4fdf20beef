package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fuelroute/fuelroute/internal/api"
	"github.com/fuelroute/fuelroute/internal/api/handler"
	"github.com/fuelroute/fuelroute/internal/geocoding"
	"github.com/fuelroute/fuelroute/internal/planner"
	"github.com/fuelroute/fuelroute/internal/provider/resilience"
	"github.com/fuelroute/fuelroute/internal/routing"
)

// stubPlanService returns a canned plan or error.
type stubPlanService struct {
	plan *planner.RoutePlan
	err  error
}

func (s *stubPlanService) ComputePlan(_ context.Context, req planner.Request) (*planner.RoutePlan, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	if s.err != nil {
		return nil, s.err
	}
	return s.plan, nil
}

func testPlan() *planner.RoutePlan {
	return &planner.RoutePlan{
		Start: planner.EndpointSummary{Query: "Amarillo, TX", PlaceName: "Amarillo, Texas, United States"},
		End:   planner.EndpointSummary{Query: "Tulsa, OK", PlaceName: "Tulsa, Oklahoma, United States"},
		Route: planner.RouteSummary{DistanceMiles: 363.21, GeometryFormat: "polyline6"},
		Fueling: planner.FuelingSummary{
			MaxRangeMiles: 500,
			MPG:           10,
			TotalCost:     125.63,
			TotalGallons:  36.321,
		},
	}
}

func newTestRouter(svc handler.PlanService) http.Handler {
	return api.NewRouter(api.RouterConfig{
		Version:     "test",
		BuildTime:   "2025-01-01T00:00:00Z",
		Logger:      zerolog.New(io.Discard),
		PlanService: svc,
		Subsystems: []handler.SubsystemCheck{
			{Name: "postgres", Check: func(context.Context) error { return nil }},
		},
		Providers: []handler.ProviderCheck{
			{Name: "mapbox-geocoding", State: func() string { return "closed" }},
		},
	})
}

func postPlan(t *testing.T, router http.Handler, body any) *httptest.ResponseRecorder {
	t.Helper()
	raw, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, "/v1/routes/plan", bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestRouter_ComputePlan(t *testing.T) {
	router := newTestRouter(&stubPlanService{plan: testPlan()})

	rec := postPlan(t, router, map[string]any{
		"start_location": "Amarillo, TX",
		"end_location":   "Tulsa, OK",
	})

	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("X-Request-Id"))

	var resp struct {
		Plan planner.RoutePlan `json:"plan"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 363.21, resp.Plan.Route.DistanceMiles)
	assert.Equal(t, 125.63, resp.Plan.Fueling.TotalCost)
}

func TestRouter_ComputePlan_MissingFields(t *testing.T) {
	router := newTestRouter(&stubPlanService{plan: testPlan()})

	rec := postPlan(t, router, map[string]any{"start_location": "Amarillo, TX"})

	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "application/problem+json", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Body.String(), "end_location")
}

func TestRouter_ComputePlan_InvalidJSON(t *testing.T) {
	router := newTestRouter(&stubPlanService{plan: testPlan()})

	req := httptest.NewRequest(http.MethodPost, "/v1/routes/plan", bytes.NewReader([]byte("{not json")))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRouter_ComputePlan_WrongContentType(t *testing.T) {
	router := newTestRouter(&stubPlanService{plan: testPlan()})

	req := httptest.NewRequest(http.MethodPost, "/v1/routes/plan", bytes.NewReader([]byte("a,b")))
	req.Header.Set("Content-Type", "text/csv")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnsupportedMediaType, rec.Code)
}

func TestRouter_ComputePlan_DomainErrors(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantType   string
	}{
		{
			name:       "unsupported region",
			err:        &planner.DomainError{Err: planner.ErrUnsupportedRegion},
			wantStatus: http.StatusBadRequest,
			wantType:   "unsupported-region",
		},
		{
			name:       "range exceeded",
			err:        &planner.DomainError{Err: planner.ErrRangeExceeded},
			wantStatus: http.StatusBadRequest,
			wantType:   "range-exceeded",
		},
		{
			name:       "no stations",
			err:        &planner.DomainError{Err: planner.ErrNoStations},
			wantStatus: http.StatusBadRequest,
			wantType:   "no-stations",
		},
		{
			// The error shape the mapbox clients emit when the breaker
			// rejects the request.
			name: "circuit breaker open",
			err: &geocoding.Error{
				Provider: "mapbox-geocoding",
				Message:  "failed to reach geocoding provider",
				Err:      fmt.Errorf("%w: %w", geocoding.ErrTransport, resilience.ErrCircuitOpen),
			},
			wantStatus: http.StatusServiceUnavailable,
			wantType:   "service-unavailable",
		},
		{
			name: "provider transport failure",
			err: &routing.Error{
				Provider: "mapbox-directions",
				Message:  "failed to reach routing provider",
				Err:      routing.ErrTransport,
			},
			wantStatus: http.StatusBadGateway,
			wantType:   "upstream-error",
		},
		{
			name:       "unexpected failure",
			err:        errors.New("boom"),
			wantStatus: http.StatusInternalServerError,
			wantType:   "internal-error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := newTestRouter(&stubPlanService{err: tt.err})

			rec := postPlan(t, router, map[string]any{
				"start_location": "Amarillo, TX",
				"end_location":   "Toronto, ON",
			})

			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Contains(t, rec.Body.String(), tt.wantType)
		})
	}
}

func TestRouter_Health(t *testing.T) {
	router := newTestRouter(&stubPlanService{plan: testPlan()})

	req := httptest.NewRequest(http.MethodGet, "/v1/ops/health", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"OK"`)
	assert.Contains(t, rec.Body.String(), "test")
}

func TestRouter_Ready(t *testing.T) {
	router := newTestRouter(&stubPlanService{plan: testPlan()})

	req := httptest.NewRequest(http.MethodGet, "/v1/ops/ready", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRouter_ReadyFailsWhenSubsystemDown(t *testing.T) {
	router := api.NewRouter(api.RouterConfig{
		Logger:      zerolog.New(io.Discard),
		PlanService: &stubPlanService{plan: testPlan()},
		Subsystems: []handler.SubsystemCheck{
			{Name: "postgres", Check: func(context.Context) error { return errors.New("connection refused") }},
		},
	})

	req := httptest.NewRequest(http.MethodGet, "/v1/ops/ready", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestRouter_Status(t *testing.T) {
	router := api.NewRouter(api.RouterConfig{
		Logger:      zerolog.New(io.Discard),
		PlanService: &stubPlanService{plan: testPlan()},
		Providers: []handler.ProviderCheck{
			{Name: "mapbox-geocoding", State: func() string { return "closed" }},
			{Name: "mapbox-directions", State: func() string { return "open" }},
		},
	})

	req := httptest.NewRequest(http.MethodGet, "/v1/ops/status", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"DEGRADED"`)
	assert.Contains(t, rec.Body.String(), "mapbox-directions")
}

func TestRouter_SecurityHeaders(t *testing.T) {
	router := newTestRouter(&stubPlanService{plan: testPlan()})

	req := httptest.NewRequest(http.MethodGet, "/v1/ops/health", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
	assert.Equal(t, "DENY", rec.Header().Get("X-Frame-Options"))
}
