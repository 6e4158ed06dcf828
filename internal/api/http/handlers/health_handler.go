package handlers

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/workflow-service/internal/persistence"
)

const probeTimeout = 2 * time.Second

// HealthHandler responds to liveness and readiness probes. Postgres is
// a hard dependency; redis only backs the directory cache, so a failed
// redis ping degrades readiness output without failing the probe.
type HealthHandler struct {
	serviceName string
	version     string
	postgres    *persistence.Postgres
	redis       *persistence.Redis
}

func NewHealthHandler(serviceName, version string, postgres *persistence.Postgres, redis *persistence.Redis) *HealthHandler {
	return &HealthHandler{serviceName: serviceName, version: version, postgres: postgres, redis: redis}
}

// Live reports process liveness without touching any dependency.
func (h *HealthHandler) Live(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":  "alive",
		"service": h.serviceName,
		"version": h.version,
	})
}

// Ready reports whether the service can take traffic.
func (h *HealthHandler) Ready(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), probeTimeout)
	defer cancel()

	deps := fiber.Map{}

	if err := h.postgres.Ping(ctx); err != nil {
		deps["postgres"] = err.Error()
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
			"error": fiber.Map{
				"code":    "DEPENDENCY_UNAVAILABLE",
				"message": "database unavailable",
				"details": deps,
			},
		})
	}
	deps["postgres"] = "ok"

	status := "ready"
	switch {
	case h.redis == nil:
		deps["redis"] = "disabled"
	case h.redis.Ping(ctx) != nil:
		deps["redis"] = "unreachable, directory cache bypassed"
		status = "degraded"
	default:
		deps["redis"] = "ok"
	}

	return c.JSON(fiber.Map{
		"status":       status,
		"dependencies": deps,
	})
}
