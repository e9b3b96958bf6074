package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/mcoot/homeguess/internal/api/response"
)

// Checker verifies that an infrastructure dependency is reachable
type Checker interface {
	Check(ctx context.Context) error
}

// CheckerFunc adapts a function to a Checker
type CheckerFunc func(ctx context.Context) error

// Check calls f(ctx)
func (f CheckerFunc) Check(ctx context.Context) error {
	return f(ctx)
}

const healthTimeout = 3 * time.Second

// HealthHandler reports the status of the server's dependencies
type HealthHandler struct {
	checks map[string]Checker
	logger *slog.Logger
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(logger *slog.Logger, checks map[string]Checker) *HealthHandler {
	return &HealthHandler{checks: checks, logger: logger}
}

// Check handles GET /api/health
func (h *HealthHandler) Check(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), healthTimeout)
	defer cancel()

	resp := response.HealthResponse{Status: "ok", Checks: make(map[string]string, len(h.checks))}
	status := http.StatusOK

	for name, c := range h.checks {
		if err := c.Check(ctx); err != nil {
			h.logger.Error("health check failed", slog.String("name", name), slog.String("error", err.Error()))
			resp.Checks[name] = "error"
			resp.Status = "degraded"
			status = http.StatusServiceUnavailable
			continue
		}
		resp.Checks[name] = "ok"
	}

	response.JSON(w, status, resp)
}
