package handler

import (
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/rei-nationwide/platform-api/internal/dto"
	"github.com/rei-nationwide/platform-api/internal/service"
	"github.com/rei-nationwide/platform-api/internal/utils"
)

// PropertyHandler fronts the property data endpoints. Upstream results are
// forwarded verbatim so clients see the provider's own error/data shape.
type PropertyHandler struct {
	service  service.PropertyService
	activity service.ActivityRecorder
	logger   zerolog.Logger
}

// NewPropertyHandler constructs a property handler.
func NewPropertyHandler(service service.PropertyService, activity service.ActivityRecorder, logger zerolog.Logger) *PropertyHandler {
	return &PropertyHandler{
		service:  service,
		activity: activity,
		logger:   logger.With().Str("component", "property_handler").Logger(),
	}
}

// Register wires the property routes available to every authenticated user.
func (h *PropertyHandler) Register(router fiber.Router) {
	router.Post("/properties/search", h.search)
	router.Post("/properties/lookup", h.lookup)
	router.Post("/properties/comps", h.comps)
	router.Post("/buyers/search", h.searchBuyers)
}

// RegisterRestricted wires the routes gated to acquisition roles.
func (h *PropertyHandler) RegisterRestricted(router fiber.Router) {
	router.Post("/skip-trace", h.skipTrace)
}

func (h *PropertyHandler) search(c *fiber.Ctx) error {
	var payload dto.PropertySearchRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	result, err := h.service.Search(c.Context(), payload)
	if err != nil {
		if isValidationError(err) {
			return utils.SendError(c, fiber.StatusBadRequest, "city and two-letter state are required")
		}
		h.logger.Error().Err(err).Msg("property search failed")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to search properties")
	}

	h.record(c, "property_search", fmt.Sprintf("%s, %s", payload.City, payload.State))
	return utils.SendVerbatim(c, result)
}

func (h *PropertyHandler) lookup(c *fiber.Ctx) error {
	var payload dto.AddressLookupRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	result, err := h.service.Lookup(c.Context(), payload)
	if err != nil {
		return h.lookupError(c, err, "property lookup failed")
	}

	h.record(c, "property_lookup", payload.Address)
	return utils.SendVerbatim(c, result)
}

func (h *PropertyHandler) comps(c *fiber.Ctx) error {
	var payload dto.AddressLookupRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	result, err := h.service.Comps(c.Context(), payload)
	if err != nil {
		return h.lookupError(c, err, "comps lookup failed")
	}

	h.record(c, "property_comps", payload.Address)
	return utils.SendVerbatim(c, result)
}

func (h *PropertyHandler) skipTrace(c *fiber.Ctx) error {
	var payload dto.AddressLookupRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	result, err := h.service.SkipTrace(c.Context(), payload)
	if err != nil {
		return h.lookupError(c, err, "skip trace failed")
	}

	h.record(c, "skip_trace", payload.Address)
	return utils.SendVerbatim(c, result)
}

func (h *PropertyHandler) searchBuyers(c *fiber.Ctx) error {
	var payload dto.BuyerSearchRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	response, err := h.service.SearchBuyers(c.Context(), payload)
	if err != nil {
		if isValidationError(err) {
			return utils.SendError(c, fiber.StatusBadRequest, "city and two-letter state are required")
		}
		h.logger.Error().Err(err).Msg("buyer search failed")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to search buyers")
	}

	h.record(c, "buyer_search", fmt.Sprintf("%s, %s", payload.City, payload.State))
	return utils.SendSuccess(c, "", response)
}

func (h *PropertyHandler) lookupError(c *fiber.Ctx, err error, logMessage string) error {
	switch {
	case errors.Is(err, service.ErrAddressNotFound):
		return utils.SendError(c, fiber.StatusNotFound, "address not found")
	case isValidationError(err):
		return utils.SendError(c, fiber.StatusBadRequest, "address is required")
	default:
		h.logger.Error().Err(err).Msg(logMessage)
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to query property data")
	}
}

// record writes the audit entry after the endpoint's effect has completed.
func (h *PropertyHandler) record(c *fiber.Ctx, action, detail string) {
	entry := service.ActivityEntry{
		Action:    action,
		Endpoint:  c.Path(),
		Detail:    detail,
		IPAddress: c.IP(),
	}
	if userID := userIDFromContext(c); userID > 0 {
		entry.UserID = &userID
	}
	h.activity.Record(c.Context(), entry)
}
