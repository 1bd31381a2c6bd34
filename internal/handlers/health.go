package handlers

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
)

// HealthCheckFunc reports the health of one optional dependency
type HealthCheckFunc func(ctx context.Context) error

type HealthHandler struct {
	checks map[string]HealthCheckFunc
}

// NewHealthHandler takes one check per configured dependency; nil means none
func NewHealthHandler(checks map[string]HealthCheckFunc) *HealthHandler {
	return &HealthHandler{checks: checks}
}

type HealthResponse struct {
	OK        bool              `json:"ok"`
	Status    string            `json:"status"`
	Timestamp string            `json:"timestamp"`
	Services  map[string]string `json:"services,omitempty"`
}

// HealthCheck handles the health check endpoint
func (h *HealthHandler) HealthCheck(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), 5*time.Second)
	defer cancel()

	response := HealthResponse{
		OK:        true,
		Status:    "healthy",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}

	if len(h.checks) > 0 {
		response.Services = make(map[string]string, len(h.checks))
	}
	for name, check := range h.checks {
		if err := check(ctx); err != nil {
			response.Services[name] = "unhealthy: " + err.Error()
			response.OK = false
			response.Status = "unhealthy"
			continue
		}
		response.Services[name] = "healthy"
	}

	if !response.OK {
		return c.Status(fiber.StatusServiceUnavailable).JSON(response)
	}
	return c.JSON(response)
}
