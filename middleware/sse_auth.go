package middleware

import (
	"context"
	"strings"
	"time"

	"github.com/gbonee/hustle-vibes-africa-sub000/logger"
	"github.com/gbonee/hustle-vibes-africa-sub000/services"

	"github.com/gofiber/fiber/v2"
)

// TokenValidator is satisfied by services.AuthServiceClient.
type TokenValidator interface {
	ValidateToken(ctx context.Context, accessToken, deviceID string) (*services.ValidateResponse, error)
}

// SSEAuthMiddleware validates `token` and `device_id` from query params,
// since EventSource cannot send headers.
//
// Usage:
//
//	app.Get("/leaderboard/stream", middleware.SSEAuthMiddleware(authClient, log), streamHandler)
func SSEAuthMiddleware(validator TokenValidator, log *logger.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		accessToken := strings.TrimSpace(c.Query("token"))
		deviceID := strings.TrimSpace(c.Query("device_id"))
		if accessToken == "" || deviceID == "" {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "Missing token or device_id in query",
			})
		}

		ctx, cancel := context.WithTimeout(c.UserContext(), 10*time.Second)
		defer cancel()
		resp, err := validator.ValidateToken(ctx, accessToken, deviceID)
		if err != nil {
			log.Warn("[SSEAuth] validation failed", "device_id", deviceID, "error", err)
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Unauthorized",
			})
		}

		c.Locals(LocalUserID, resp.UserID)
		c.Locals(LocalUserRoles, resp.Roles)
		return c.Next()
	}
}
