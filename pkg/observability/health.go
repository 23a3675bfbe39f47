package observability

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"sort"
	"time"
)

const (
	StatusHealthy   = "healthy"
	StatusDegraded  = "degraded"
	StatusUnhealthy = "unhealthy"
)

// readinessTimeout bounds one readiness evaluation.
const readinessTimeout = 5 * time.Second

// Probe checks one dependency. It returns a status and an optional message.
type Probe struct {
	Name  string
	Check func(ctx context.Context) (string, string)
}

// DatabaseProbe pings the pool and reports pool exhaustion as degraded.
func DatabaseProbe(db *sql.DB) Probe {
	return Probe{Name: "database", Check: func(ctx context.Context) (string, string) {
		if err := db.PingContext(ctx); err != nil {
			return StatusUnhealthy, err.Error()
		}
		stats := db.Stats()
		if stats.MaxOpenConnections > 0 && stats.InUse >= stats.MaxOpenConnections {
			return StatusDegraded, "connection pool exhausted"
		}
		return StatusHealthy, ""
	}}
}

// DirectoryProbe requires dir to exist and be a directory.
func DirectoryProbe(name, dir string) Probe {
	return Probe{Name: name, Check: func(context.Context) (string, string) {
		info, err := os.Stat(dir)
		if err != nil {
			return StatusUnhealthy, err.Error()
		}
		if !info.IsDir() {
			return StatusUnhealthy, fmt.Sprintf("%s is not a directory", dir)
		}
		return StatusHealthy, ""
	}}
}

// HealthChecker serves the liveness and readiness endpoints.
type HealthChecker struct {
	version string
	probes  []Probe
}

// NewHealthChecker creates a checker evaluating probes on readiness.
func NewHealthChecker(version string, probes ...Probe) *HealthChecker {
	return &HealthChecker{version: version, probes: probes}
}

// HealthStatus is the readiness body.
type HealthStatus struct {
	Status       string                      `json:"status"`
	Timestamp    time.Time                   `json:"timestamp"`
	Version      string                      `json:"version,omitempty"`
	Dependencies map[string]DependencyStatus `json:"dependencies,omitempty"`
}

// DependencyStatus is the result of one probe.
type DependencyStatus struct {
	Status    string  `json:"status"`
	Message   string  `json:"message,omitempty"`
	LatencyMS float64 `json:"latency_ms"`
}

// Liveness always answers 200 while the process serves requests.
func (h *HealthChecker) Liveness(w http.ResponseWriter, r *http.Request) {
	writeHealth(w, http.StatusOK, HealthStatus{Status: StatusHealthy, Timestamp: time.Now(), Version: h.version})
}

// Readiness answers 503 when any probe is unhealthy.
func (h *HealthChecker) Readiness(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), readinessTimeout)
	defer cancel()

	status := h.Check(ctx)
	code := http.StatusOK
	if status.Status == StatusUnhealthy {
		code = http.StatusServiceUnavailable
	}
	writeHealth(w, code, status)
}

// Check runs every probe. The overall status is the worst probe status.
func (h *HealthChecker) Check(ctx context.Context) HealthStatus {
	status := HealthStatus{
		Status:       StatusHealthy,
		Timestamp:    time.Now(),
		Version:      h.version,
		Dependencies: make(map[string]DependencyStatus, len(h.probes)),
	}

	for _, p := range h.probes {
		start := time.Now()
		result, message := p.Check(ctx)
		status.Dependencies[p.Name] = DependencyStatus{
			Status:    result,
			Message:   message,
			LatencyMS: float64(time.Since(start).Microseconds()) / 1000,
		}
		if severity(result) > severity(status.Status) {
			status.Status = result
		}
	}
	return status
}

// Names lists the probe names in sorted order.
func (h *HealthChecker) Names() []string {
	names := make([]string, 0, len(h.probes))
	for _, p := range h.probes {
		names = append(names, p.Name)
	}
	sort.Strings(names)
	return names
}

func severity(status string) int {
	switch status {
	case StatusHealthy:
		return 0
	case StatusDegraded:
		return 1
	default:
		return 2
	}
}

func writeHealth(w http.ResponseWriter, code int, status HealthStatus) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(status)
}
