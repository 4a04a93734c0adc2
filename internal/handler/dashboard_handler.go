package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/classdesk/classdesk-api/internal/service"
	"github.com/classdesk/classdesk-api/internal/utils"
)

// DashboardHandler wires the dashboard statistics endpoint.
type DashboardHandler struct {
	service service.DashboardService
	logger  zerolog.Logger
}

// NewDashboardHandler constructs the handler.
func NewDashboardHandler(service service.DashboardService, logger zerolog.Logger) *DashboardHandler {
	return &DashboardHandler{
		service: service,
		logger:  logger.With().Str("component", "dashboard_handler").Logger(),
	}
}

// Register attaches the dashboard endpoints to the router group.
func (h *DashboardHandler) Register(router fiber.Router) {
	router.Get("/stats", h.stats)
}

// stats dispatches on the caller's role; each role sees its own counter set.
func (h *DashboardHandler) stats(c *fiber.Ctx) error {
	identity := identityFromContext(c)
	if identity.ID == "" {
		return utils.SendError(c, fiber.StatusUnauthorized, "unauthorized")
	}

	if identity.IsTeacher() {
		stats, err := h.service.TeacherStats(c.Context(), identity.ID)
		if err != nil {
			h.logger.Error().Err(err).Msg("failed to compute teacher stats")
			return utils.SendError(c, fiber.StatusInternalServerError, "internal server error")
		}
		return utils.SendSuccess(c, "dashboard stats retrieved", stats)
	}

	stats, err := h.service.StudentStats(c.Context(), identity.ID)
	if err != nil {
		h.logger.Error().Err(err).Msg("failed to compute student stats")
		return utils.SendError(c, fiber.StatusInternalServerError, "internal server error")
	}
	return utils.SendSuccess(c, "dashboard stats retrieved", stats)
}
