// handlers_health.go - Health check handlers
package api

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
)

// HealthStatus is the body of GET /api/health
type HealthStatus struct {
	Status        string `json:"status"`
	Version       string `json:"version"`
	Store         string `json:"store"`
	UptimeSeconds int64  `json:"uptimeSeconds"`
}

// HealthHandlerImpl implements the HealthHandler interface
type HealthHandlerImpl struct {
	version string
	store   string
	started time.Time
}

// NewHealthHandler creates a new health handler. store names the rate card
// store driver in use.
func NewHealthHandler(version, store string) HealthHandler {
	return &HealthHandlerImpl{
		version: version,
		store:   store,
		started: time.Now(),
	}
}

// HandleHealth reports the version, store driver and uptime
func (h *HealthHandlerImpl) HandleHealth(c echo.Context) error {
	return c.JSON(http.StatusOK, HealthStatus{
		Status:        "ok",
		Version:       h.version,
		Store:         h.store,
		UptimeSeconds: int64(time.Since(h.started).Seconds()),
	})
}
