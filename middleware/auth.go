package middleware

import (
	"strings"

	"github.com/gbonee/hustle-vibes-africa-sub000/logger"

	"github.com/gofiber/fiber/v2"
)

const (
	LocalUserID    = "user_id"
	LocalUserRoles = "user_roles"
	LocalUserName  = "user_name"
)

// UserContextMiddleware extracts user identity and roles set by the Gateway.
// Mount it on secured groups only (/s/, /s/admin/).
func UserContextMiddleware(log *logger.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID := strings.TrimSpace(c.Get("X-User-ID"))
		if userID == "" {
			log.Warn("[USER_CTX] X-User-ID missing on secured route", "path", c.Path())
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "missing X-User-ID: request must come through gateway with auth context",
			})
		}

		c.Locals(LocalUserID, userID)
		c.Locals(LocalUserRoles, splitRoles(c.Get("X-User-Roles")))
		c.Locals(LocalUserName, strings.TrimSpace(c.Get("X-User-Name")))
		return c.Next()
	}
}

func splitRoles(raw string) []string {
	var roles []string
	for _, r := range strings.Split(raw, ",") {
		if r = strings.TrimSpace(r); r != "" {
			roles = append(roles, r)
		}
	}
	return roles
}

func HasRole(c *fiber.Ctx, role string) bool {
	roles, _ := c.Locals(LocalUserRoles).([]string)
	for _, r := range roles {
		if strings.EqualFold(r, role) {
			return true
		}
	}
	return false
}

// RequireRole rejects users without the role. Runs after UserContextMiddleware.
func RequireRole(role string, log *logger.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if !HasRole(c, role) {
			log.Warn("[USER_CTX] role required", "role", role, "user_id", c.Locals(LocalUserID), "path", c.Path())
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"error": "forbidden",
				"cause": role + " role required",
			})
		}
		return c.Next()
	}
}
