package handlers

import (
	"github.com/gbonee/hustle-vibes-africa-sub000/services"

	"github.com/gofiber/fiber/v2"
)

type grantPointsRequest struct {
	UserID         string `json:"user_id" validate:"required,max=64"`
	Points         int64  `json:"points" validate:"required,min=1"`
	Reason         string `json:"reason" validate:"max=255"`
	IdempotencyKey string `json:"idempotency_key" validate:"max=255"`
}

// SetupLeaderboardRoutes mounts the public board, the caller's own standing
// and the admin accrual endpoints. The stream is mounted in NewApp.
func SetupLeaderboardRoutes(app *fiber.App, secured, admin fiber.Router, leaderboard *services.LeaderboardService) {
	app.Get("/leaderboard", func(c *fiber.Ctx) error {
		limit := c.QueryInt("limit", services.DefaultLeaderboardLimit)
		if limit < 1 {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "invalid limit",
				"cause": "limit must be at least 1",
			})
		}
		top, err := leaderboard.GetTopEntries(c.UserContext(), limit)
		if err != nil {
			return respondError(c, "failed to get leaderboard", err)
		}
		return c.JSON(top)
	})

	secured.Get("/leaderboard/me", func(c *fiber.Ctx) error {
		entry, err := leaderboard.GetEntryFor(c.UserContext(), currentUser(c))
		if err != nil {
			return respondError(c, "no leaderboard entry", err)
		}
		return c.JSON(entry)
	})

	admin.Post("/points/grant", func(c *fiber.Ctx) error {
		var req grantPointsRequest
		if ok, err := bindJSON(c, &req); !ok {
			return err
		}
		if req.Reason == "" {
			req.Reason = "admin_grant"
		}
		res, err := leaderboard.AwardPoints(c.UserContext(), services.AwardInput{
			UserID:         req.UserID,
			Points:         req.Points,
			Reason:         req.Reason,
			IdempotencyKey: req.IdempotencyKey,
		})
		if err != nil {
			return respondError(c, "point award failed", err)
		}
		return c.JSON(res)
	})

	admin.Post("/leaderboard/recompute", func(c *fiber.Ctx) error {
		changed, err := leaderboard.RecomputeRanks(c.UserContext())
		if err != nil {
			return respondError(c, "rank recompute failed", err)
		}
		return c.JSON(fiber.Map{"changed": changed})
	})
}
