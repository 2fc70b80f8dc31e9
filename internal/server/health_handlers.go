package server

import (
	"net/http"
	"time"

	"cadenza/internal/console"
)

// HealthStatus represents operational status for the /health endpoint.
type HealthStatus struct {
	Status    string                 `json:"status"`
	Timestamp time.Time              `json:"timestamp"`
	Uptime    string                 `json:"uptime"`
	Database  string                 `json:"database"`
	Upstream  console.HealthStatus   `json:"upstream"`
	Clients   int                    `json:"websocketClients"`
	PublicURL string                 `json:"publicUrl,omitempty"`
	Details   map[string]interface{} `json:"details,omitempty"`
}

// handleHealthCheck reports console liveness, the preference database and
// the recommendation API. An unhealthy API only degrades the console since
// every panel falls back to sample data.
func (s *ConsoleServer) handleHealthCheck(w http.ResponseWriter, r *http.Request) {
	health := &HealthStatus{
		Status:    "healthy",
		Timestamp: time.Now(),
		Uptime:    time.Since(s.started).Round(time.Second).String(),
		Database:  "ok",
		Clients:   s.hub.ClientCount(),
		PublicURL: s.tunnel.PublicURL(),
		Details:   make(map[string]interface{}),
	}

	if err := s.db.Ping(); err != nil {
		health.Status = "unhealthy"
		health.Database = "error"
		health.Details["database_error"] = err.Error()
	}

	health.Upstream = s.console.Health(r.Context())
	if !health.Upstream.Healthy && health.Status == "healthy" {
		health.Status = "degraded"
	}

	status := http.StatusOK
	if health.Status == "unhealthy" {
		status = http.StatusServiceUnavailable
	}
	s.respondJSON(w, status, health)
}
