package server

import (
	"context"
	"errors"
	"io/fs"
	"net/http"
	"time"
)

// HealthStatus is the overall state reported by /health.
type HealthStatus string

const (
	HealthStatusHealthy   HealthStatus = "healthy"
	HealthStatusDegraded  HealthStatus = "degraded"
	HealthStatusUnhealthy HealthStatus = "unhealthy"
)

// ComponentStatus is the state of one dependency.
type ComponentStatus string

const (
	ComponentStatusUp       ComponentStatus = "up"
	ComponentStatusDown     ComponentStatus = "down"
	ComponentStatusDegraded ComponentStatus = "degraded"
)

// Health is the /health response body.
type Health struct {
	Status     HealthStatus               `json:"status"`
	Timestamp  time.Time                  `json:"timestamp"`
	Version    string                     `json:"version,omitempty"`
	Components map[string]ComponentHealth `json:"components"`
}

// ComponentHealth reports a single dependency.
type ComponentHealth struct {
	Status    ComponentStatus `json:"status"`
	Message   string          `json:"message,omitempty"`
	LatencyMs float64         `json:"latency_ms,omitempty"`
	Details   any             `json:"details,omitempty"`
}

const healthCheckTimeout = 5 * time.Second

// HandleHealth reports every component. Degraded still answers 200.
func (s *Server) HandleHealth(w http.ResponseWriter, r *http.Request) {
	health := s.checkHealth(r.Context())

	status := http.StatusOK
	if health.Status == HealthStatusUnhealthy {
		status = http.StatusServiceUnavailable
	}
	writeJSON(w, status, health)
}

// HandleReady answers 200 only when the database accepts queries.
func (s *Server) HandleReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if s.db == nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{
			"status":  "not_ready",
			"message": "database not configured",
		})
		return
	}

	var one int
	if err := s.db.QueryRowContext(ctx, "SELECT 1").Scan(&one); err != nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{
			"status":  "not_ready",
			"message": "database unavailable",
		})
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"status":    "ok",
		"timestamp": time.Now().Format(time.RFC3339),
	})
}

// HandleLive answers as long as the process can serve HTTP.
func (s *Server) HandleLive(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "alive"})
}

func (s *Server) checkHealth(ctx context.Context) Health {
	ctx, cancel := context.WithTimeout(ctx, healthCheckTimeout)
	defer cancel()

	health := Health{
		Timestamp: time.Now(),
		Version:   s.version,
		Components: map[string]ComponentHealth{
			"database": s.checkDatabaseHealth(ctx),
			"static":   s.checkStaticHealth(),
		},
	}
	health.Status = overallHealth(health.Components)
	return health
}

func (s *Server) checkDatabaseHealth(ctx context.Context) ComponentHealth {
	if s.db == nil {
		return ComponentHealth{Status: ComponentStatusDown, Message: "database not configured"}
	}

	start := time.Now()
	if err := s.db.PingContext(ctx); err != nil {
		return ComponentHealth{
			Status:  ComponentStatusDown,
			Message: "database ping failed: " + err.Error(),
		}
	}

	var count int64
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM flavors").Scan(&count); err != nil {
		return ComponentHealth{
			Status:  ComponentStatusDegraded,
			Message: "flavors table query failed: " + err.Error(),
		}
	}
	latency := time.Since(start).Milliseconds()

	stats := s.db.Stats()
	details := map[string]any{
		"flavors":          count,
		"open_connections": stats.OpenConnections,
		"in_use":           stats.InUse,
		"idle":             stats.Idle,
		"wait_count":       stats.WaitCount,
		"wait_duration_ms": stats.WaitDuration.Milliseconds(),
	}

	status, message := ComponentStatusUp, "database healthy"
	if latency > 1000 {
		status, message = ComponentStatusDegraded, "database latency high"
	}
	return ComponentHealth{
		Status:    status,
		Message:   message,
		LatencyMs: float64(latency),
		Details:   details,
	}
}

// checkStaticHealth never reports down: the API works without a front end.
func (s *Server) checkStaticHealth() ComponentHealth {
	if s.static == nil {
		return ComponentHealth{Status: ComponentStatusDegraded, Message: "no static source configured"}
	}
	st, err := fs.Stat(s.static, indexDocument)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return ComponentHealth{Status: ComponentStatusDegraded, Message: indexDocument + " not found"}
	case err != nil:
		return ComponentHealth{Status: ComponentStatusDegraded, Message: "static source error: " + err.Error()}
	}
	return ComponentHealth{
		Status:  ComponentStatusUp,
		Message: "static files available",
		Details: map[string]any{"index_bytes": st.Size()},
	}
}

func overallHealth(components map[string]ComponentHealth) HealthStatus {
	var down, degraded int
	for _, c := range components {
		switch c.Status {
		case ComponentStatusDown:
			down++
		case ComponentStatusDegraded:
			degraded++
		}
	}
	if down > 0 {
		return HealthStatusUnhealthy
	}
	if degraded > 0 {
		return HealthStatusDegraded
	}
	return HealthStatusHealthy
}
