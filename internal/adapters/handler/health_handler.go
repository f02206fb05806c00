package handler

import (
	"context"
	"net/http"
	"os"
	"time"

	"github.com/sony/gobreaker"

	"github.com/AchilleasB/pet-care/console-service/internal/core/ports"
)

// BreakerProbe reports a dependency's circuit breaker state.
type BreakerProbe func() gobreaker.State

type HealthHandler struct {
	store     ports.KeyValueStore
	breakers  map[string]BreakerProbe
	startTime time.Time
	version   string
}

func NewHealthHandler(store ports.KeyValueStore, breakers map[string]BreakerProbe) *HealthHandler {
	version := os.Getenv("APP_VERSION")
	if version == "" {
		version = "unknown"
	}
	return &HealthHandler{
		store:     store,
		breakers:  breakers,
		startTime: time.Now(),
		version:   version,
	}
}

// HealthResponse follows Kubernetes/OpenShift health check conventions
type HealthResponse struct {
	Status    string           `json:"status"`
	Timestamp string           `json:"timestamp,omitempty"`
	Uptime    string           `json:"uptime,omitempty"`
	Version   string           `json:"version,omitempty"`
	Checks    map[string]Check `json:"checks"`
}

type Check struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

// Health is a simple liveness check - just confirms the Go process is running
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{
		Status:    "UP",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Uptime:    time.Since(h.startTime).Round(time.Second).String(),
		Version:   h.version,
		Checks:    map[string]Check{"process": {Status: "UP"}},
	})
}

// Ready fails when the session store is unreachable or any breaker is open.
func (h *HealthHandler) Ready(w http.ResponseWriter, r *http.Request) {
	checks := map[string]Check{"session_store": h.checkStore(r.Context())}
	for name, probe := range h.breakers {
		checks[name] = checkBreaker(probe())
	}

	status, httpStatus := "UP", http.StatusOK
	for _, c := range checks {
		if c.Status != "UP" {
			status, httpStatus = "DOWN", http.StatusServiceUnavailable
			break
		}
	}
	writeJSON(w, httpStatus, HealthResponse{Status: status, Checks: checks})
}

// Live is an alias for Health - simple liveness check
func (h *HealthHandler) Live(w http.ResponseWriter, r *http.Request) {
	h.Health(w, r)
}

func (h *HealthHandler) checkStore(ctx context.Context) Check {
	if h.store == nil {
		return Check{Status: "DOWN", Message: "Session store is not initialized"}
	}

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := h.store.Ping(ctx); err != nil {
		return Check{Status: "DOWN", Message: "Cannot reach session store"}
	}
	return Check{Status: "UP"}
}

func checkBreaker(state gobreaker.State) Check {
	if state == gobreaker.StateOpen {
		return Check{Status: "DOWN", Message: "Circuit breaker is open"}
	}
	return Check{Status: "UP", Message: state.String()}
}
