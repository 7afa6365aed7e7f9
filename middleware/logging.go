package middleware

import (
	"time"

	"github.com/gbonee/hustle-vibes-africa-sub000/logger"

	"github.com/gofiber/fiber/v2"
)

// RequestLogger logs one line per request after the handler chain runs.
func RequestLogger(log *logger.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()

		status := c.Response().StatusCode()
		if err != nil {
			if fe, ok := err.(*fiber.Error); ok {
				status = fe.Code
			} else {
				status = fiber.StatusInternalServerError
			}
		}

		kv := []interface{}{
			"method", c.Method(),
			"path", c.Path(),
			"status", status,
			"latency_ms", time.Since(start).Milliseconds(),
			"ip", c.IP(),
		}
		if uid, ok := c.Locals(LocalUserID).(string); ok && uid != "" {
			kv = append(kv, "user_id", uid)
		}

		switch {
		case status >= 500:
			log.Error("[HTTP] request", kv...)
		case status >= 400:
			log.Warn("[HTTP] request", kv...)
		default:
			log.Info("[HTTP] request", kv...)
		}
		return err
	}
}
