package console

import (
	"context"
	"time"
)

const healthKey = "upstream"

// HealthStatus reports whether the recommendation API answered its probe
type HealthStatus struct {
	Healthy   bool      `json:"healthy"`
	Error     string    `json:"error,omitempty"`
	CheckedAt time.Time `json:"checkedAt"`
}

// Health probes the recommendation API. Results are cached for the health
// TTL; an unreachable API is reported unhealthy, never as an error.
func (c *Console) Health(ctx context.Context) HealthStatus {
	if status, ok := c.health.Get(healthKey); ok {
		return status
	}

	status := HealthStatus{CheckedAt: c.now()}
	h, err := c.api.Health(ctx)
	if err != nil {
		c.logger.WithError(err).Debug("Upstream health probe failed")
		status.Error = err.Error()
	} else {
		status.Healthy = h.Healthy
	}

	c.health.Set(healthKey, status)
	return status
}

// SetHealthTTL changes how long health probes are cached
func (c *Console) SetHealthTTL(ttl time.Duration) {
	c.health.SetTTL(ttl)
	c.health.Clear()
}
