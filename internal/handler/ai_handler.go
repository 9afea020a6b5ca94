package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/rei-nationwide/platform-api/internal/dto"
	"github.com/rei-nationwide/platform-api/internal/service"
	"github.com/rei-nationwide/platform-api/internal/utils"
)

// AIHandler exposes the assistant endpoint.
type AIHandler struct {
	service  service.AIService
	activity service.ActivityRecorder
	logger   zerolog.Logger
}

// NewAIHandler constructs an AI handler.
func NewAIHandler(service service.AIService, activity service.ActivityRecorder, logger zerolog.Logger) *AIHandler {
	return &AIHandler{
		service:  service,
		activity: activity,
		logger:   logger.With().Str("component", "ai_handler").Logger(),
	}
}

// Register wires the assistant routes.
func (h *AIHandler) Register(router fiber.Router) {
	router.Post("/ai/query", h.query)
}

func (h *AIHandler) query(c *fiber.Ctx) error {
	var payload dto.AIQueryRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}
	if payload.Query == "" {
		return utils.SendError(c, fiber.StatusBadRequest, "query is required")
	}

	// Provider failures are already folded into the response value.
	response := h.service.Query(c.Context(), payload)

	entry := service.ActivityEntry{
		Action:    "ai_query",
		Endpoint:  c.Path(),
		Detail:    payload.Query,
		IPAddress: c.IP(),
	}
	if userID := userIDFromContext(c); userID > 0 {
		entry.UserID = &userID
	}
	h.activity.Record(c.Context(), entry)

	return utils.SendSuccess(c, "", response)
}
