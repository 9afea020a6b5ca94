package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/rei-nationwide/platform-api/internal/service"
	"github.com/rei-nationwide/platform-api/internal/utils"
)

// AdminHandler exposes the administrative user and activity listings.
type AdminHandler struct {
	auth     service.AuthService
	activity service.ActivityService
	logger   zerolog.Logger
}

// NewAdminHandler constructs an admin handler.
func NewAdminHandler(auth service.AuthService, activity service.ActivityService, logger zerolog.Logger) *AdminHandler {
	return &AdminHandler{
		auth:     auth,
		activity: activity,
		logger:   logger.With().Str("component", "admin_handler").Logger(),
	}
}

// RegisterUsers wires the user listing, gated to admins by the router.
func (h *AdminHandler) RegisterUsers(router fiber.Router) {
	router.Get("/users", h.listUsers)
}

// RegisterActivity wires the audit trail listing, gated to admins and managers.
func (h *AdminHandler) RegisterActivity(router fiber.Router) {
	router.Get("/activity", h.listActivity)
}

func (h *AdminHandler) listUsers(c *fiber.Ctx) error {
	response, err := h.auth.ListUsers(c.Context())
	if err != nil {
		h.logger.Error().Err(err).Msg("user listing failed")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to list users")
	}

	return utils.SendSuccess(c, "", response)
}

func (h *AdminHandler) listActivity(c *fiber.Ctx) error {
	limit, err := parseQueryInt(c, "limit")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "limit must be an integer")
	}

	response, err := h.activity.List(c.Context(), limit)
	if err != nil {
		h.logger.Error().Err(err).Msg("activity listing failed")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to list activity")
	}

	return utils.SendSuccess(c, "", response)
}
