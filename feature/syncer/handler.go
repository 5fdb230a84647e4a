package syncer

import (
	"errors"
	"strconv"

	"ganeti-netbox-sync/core/config"
	"ganeti-netbox-sync/core/logger"
	"ganeti-netbox-sync/core/reconcile"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// Handler handles HTTP requests for sync runs.
type Handler struct {
	service *Service
}

// NewHandler creates a new HTTP handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes registers the sync routes.
func (h *Handler) RegisterRoutes(app fiber.Router) {
	group := app.Group("/sync")
	group.Get("/profiles", h.HandleListProfiles)
	group.Post("/:profile", h.HandleRun)
}

// HandleListProfiles returns the configured profiles.
func (h *Handler) HandleListProfiles(c *fiber.Ctx) error {
	profiles := h.service.Profiles()
	out := make([]fiber.Map, 0, len(profiles))
	for _, p := range profiles {
		out = append(out, fiber.Map{"name": p.Name, "cluster": p.Cluster, "api": p.API})
	}
	return c.JSON(out)
}

// HandleRun runs one reconciliation for the profile in the path.
// Query: dry_run (bool), workers (int).
func (h *Handler) HandleRun(c *fiber.Ctx) error {
	l := logger.WithRayID(h.service.logger, c)

	req := RunRequest{
		Profile: c.Params("profile"),
		DryRun:  c.QueryBool("dry_run", false),
	}
	if w := c.Query("workers"); w != "" {
		n, err := strconv.Atoi(w)
		if err != nil || n < 1 {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "workers must be a positive integer",
			})
		}
		req.Workers = n
	}

	ctx, cancel := h.service.runContext(c.UserContext())
	defer cancel()

	report, err := h.service.Run(ctx, req)
	if err != nil {
		status := statusFor(err)
		if status >= fiber.StatusInternalServerError {
			l.Error("Sync request failed", zap.String("profile", req.Profile), zap.Error(err))
		}
		return c.Status(status).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	return c.JSON(report)
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, config.ErrUnknownProfile):
		return fiber.StatusNotFound
	case errors.Is(err, ErrBusy):
		return fiber.StatusConflict
	case errors.Is(err, reconcile.ErrSourceUnavailable):
		return fiber.StatusBadGateway
	case errors.Is(err, reconcile.ErrDefaultsUnresolved):
		return fiber.StatusUnprocessableEntity
	default:
		return fiber.StatusInternalServerError
	}
}
