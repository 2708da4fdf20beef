package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/fuelroute/fuelroute/internal/api/models"
	"github.com/fuelroute/fuelroute/internal/api/response"
)

// SubsystemCheck probes one internal dependency for readiness.
type SubsystemCheck struct {
	Name  string
	Check func(ctx context.Context) error
}

// ProviderCheck reports the circuit breaker state of one external provider.
type ProviderCheck struct {
	Name  string
	State func() string
}

// OpsHandler handles operational endpoints.
type OpsHandler struct {
	version    string
	buildTime  string
	subsystems []SubsystemCheck
	providers  []ProviderCheck
}

// NewOpsHandler creates a new OpsHandler.
func NewOpsHandler(version, buildTime string, subsystems []SubsystemCheck, providers []ProviderCheck) *OpsHandler {
	return &OpsHandler{
		version:    version,
		buildTime:  buildTime,
		subsystems: subsystems,
		providers:  providers,
	}
}

// HealthCheck handles GET /v1/ops/health - liveness check.
func (h *OpsHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	health := models.Health{
		Status: models.HealthStatusOK,
		Time:   models.Timestamp(time.Now()),
		Details: map[string]interface{}{
			"version":   h.version,
			"buildTime": h.buildTime,
		},
	}
	response.JSON(w, r, http.StatusOK, health)
}

// ReadinessCheck handles GET /v1/ops/ready - readiness check. Fails when any
// subsystem probe fails.
func (h *OpsHandler) ReadinessCheck(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	for _, sub := range h.subsystems {
		if err := sub.Check(ctx); err != nil {
			response.ServiceUnavailable(w, r, sub.Name+" is unavailable")
			return
		}
	}

	health := models.Health{
		Status: models.HealthStatusOK,
		Time:   models.Timestamp(time.Now()),
	}
	response.JSON(w, r, http.StatusOK, health)
}

// SystemStatus handles GET /v1/ops/status - subsystem and provider status.
func (h *OpsHandler) SystemStatus(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	overall := models.HealthStatusOK

	subsystems := make([]models.SubsystemStatus, 0, len(h.subsystems))
	for _, sub := range h.subsystems {
		status := models.HealthStatusOK
		var detail *string
		if err := sub.Check(ctx); err != nil {
			status = models.HealthStatusFail
			overall = models.HealthStatusDegraded
			msg := err.Error()
			detail = &msg
		}
		subsystems = append(subsystems, models.SubsystemStatus{
			Name:   sub.Name,
			Status: status,
			Detail: detail,
		})
	}

	providers := make([]models.ProviderStatus, 0, len(h.providers))
	for _, p := range h.providers {
		state := p.State()
		status := models.HealthStatusOK
		if state == "open" {
			status = models.HealthStatusFail
			overall = models.HealthStatusDegraded
		} else if state == "half-open" {
			status = models.HealthStatusDegraded
		}
		providers = append(providers, models.ProviderStatus{
			Provider:     p.Name,
			Status:       status,
			BreakerState: state,
		})
	}

	status := models.SystemStatus{
		Status:     overall,
		Time:       models.Timestamp(time.Now()),
		Subsystems: subsystems,
		Providers:  providers,
	}
	response.JSON(w, r, http.StatusOK, status)
}
