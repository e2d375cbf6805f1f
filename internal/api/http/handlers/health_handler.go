package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/report-bot/internal/observability"
	"github.com/spec-kit/report-bot/internal/repository"
)

// HealthHandler exposes liveness and bot runtime status.
type HealthHandler struct {
	serviceName string
	version     string
	runtime     *observability.Runtime
	store       *repository.ClassificationStore
	latency     func() time.Duration
	guilds      func() int
}

// NewHealthHandler returns a new handler instance.
func NewHealthHandler(serviceName, version string, runtime *observability.Runtime, store *repository.ClassificationStore, latency func() time.Duration, guilds func() int) *HealthHandler {
	if latency == nil {
		latency = func() time.Duration { return 0 }
	}
	if guilds == nil {
		guilds = func() int { return 0 }
	}
	return &HealthHandler{
		serviceName: serviceName,
		version:     version,
		runtime:     runtime,
		store:       store,
		latency:     latency,
		guilds:      guilds,
	}
}

// Live reports service liveness.
func (h *HealthHandler) Live(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":  "alive",
		"service": h.serviceName,
		"version": h.version,
	})
}

// Status reports gateway health and report totals.
func (h *HealthHandler) Status(c *fiber.Ctx) error {
	stats := h.runtime.Stats()
	return c.JSON(fiber.Map{
		"service":            h.serviceName,
		"version":            h.version,
		"uptime_seconds":     int64(stats.Uptime.Seconds()),
		"last_heartbeat":     stats.LastHeartbeat.Format(time.RFC3339),
		"latency_ms":         h.latency().Milliseconds(),
		"guilds":             h.guilds(),
		"disconnections":     stats.Disconnections,
		"reconnections":      stats.Reconnections,
		"commands_handled":   stats.CommandsHandled,
		"classifications":    stats.Classifications,
		"classified_reports": h.store.Len(),
	})
}
