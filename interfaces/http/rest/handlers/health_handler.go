package handlers

import (
	"context"
	"net/http"
	"time"

	"go.uber.org/zap"

	"questions-service/application/ports"
	pkgerrors "questions-service/pkg/errors"
)

// CacheStatus reports whether the cache store is reachable
type CacheStatus interface {
	Status() string
}

// HealthResponse is the liveness payload
type HealthResponse struct {
	Status    string    `json:"status"`
	Service   string    `json:"service"`
	Timestamp time.Time `json:"timestamp"`
}

// ReadinessResponse reports the state of each dependency
type ReadinessResponse struct {
	Status  string            `json:"status"`
	Type    string            `json:"type,omitempty"`
	Message string            `json:"message,omitempty"`
	Checks  map[string]string `json:"checks"`
}

// HealthHandler serves liveness and readiness probes
type HealthHandler struct {
	service  string
	database ports.HealthChecker
	cache    CacheStatus
	logger   *zap.Logger
	now      func() time.Time
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(service string, database ports.HealthChecker, cache CacheStatus, logger *zap.Logger) *HealthHandler {
	return &HealthHandler{
		service:  service,
		database: database,
		cache:    cache,
		logger:   logger,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// Health handles GET /health
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, h.logger, http.StatusOK, HealthResponse{
		Status:    "ok",
		Service:   h.service,
		Timestamp: h.now(),
	})
}

// Ready handles GET /ready. A degraded cache still serves traffic, an
// unreachable database does not.
func (h *HealthHandler) Ready(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	resp := ReadinessResponse{Status: "ready", Checks: map[string]string{}}
	status := http.StatusOK

	if err := h.database.Ping(ctx); err != nil {
		unavailable := pkgerrors.NewUnavailableError("database").WithCause(err)
		h.logger.Warn("Readiness check failed", zap.String("dependency", "database"), zap.Error(unavailable))
		resp.Checks["database"] = "down"
		resp.Status = "not_ready"
		resp.Type = string(unavailable.Type)
		resp.Message = unavailable.Message
		status = unavailable.HTTPStatus
	} else {
		resp.Checks["database"] = "up"
	}

	resp.Checks["cache"] = h.cache.Status()

	respondJSON(w, h.logger, status, resp)
}
