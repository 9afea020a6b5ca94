package middleware

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/rei-nationwide/platform-api/internal/token"
	"github.com/rei-nationwide/platform-api/internal/utils"
)

// Locals keys populated by Authenticate.
const (
	LocalUserID    = "user_id"
	LocalUserEmail = "user_email"
	LocalUserRole  = "user_role"
)

// Authenticate validates the bearer token on a request and binds the caller's
// identity to the request context. Every failure maps to the same 401 payload;
// the expired/malformed distinction is kept only for the debug log.
func Authenticate(issuer *token.Issuer, logger zerolog.Logger) fiber.Handler {
	log := logger.With().Str("component", "auth_middleware").Logger()

	return func(c *fiber.Ctx) error {
		authorization := c.Get(fiber.HeaderAuthorization)
		if authorization == "" {
			return utils.SendError(c, fiber.StatusUnauthorized, "authorization header missing")
		}

		const bearer = "bearer "
		if len(authorization) < len(bearer) || !strings.EqualFold(authorization[:len(bearer)], bearer) {
			return utils.SendError(c, fiber.StatusUnauthorized, "invalid authorization header")
		}

		tokenString := strings.TrimSpace(authorization[len(bearer):])
		if tokenString == "" {
			return utils.SendError(c, fiber.StatusUnauthorized, "invalid or expired token")
		}

		claims, err := issuer.Parse(tokenString)
		if err != nil {
			if errors.Is(err, token.ErrExpired) {
				log.Debug().Str("correlation_id", GetCorrelationID(c)).Msg("rejected expired token")
			} else {
				log.Debug().Str("correlation_id", GetCorrelationID(c)).Msg("rejected malformed token")
			}
			return utils.SendError(c, fiber.StatusUnauthorized, "invalid or expired token")
		}

		c.Locals(LocalUserID, claims.UserID)
		c.Locals(LocalUserEmail, claims.Email)
		c.Locals(LocalUserRole, strings.ToLower(claims.Role))

		return c.Next()
	}
}

// UserIDFromContext returns the authenticated user id, or zero when absent.
func UserIDFromContext(c *fiber.Ctx) uint {
	if v := c.Locals(LocalUserID); v != nil {
		if id, ok := v.(uint); ok {
			return id
		}
	}
	return 0
}

// UserRoleFromContext returns the authenticated user's role, or "".
func UserRoleFromContext(c *fiber.Ctx) string {
	if v := c.Locals(LocalUserRole); v != nil {
		if role, ok := v.(string); ok {
			return role
		}
	}
	return ""
}
