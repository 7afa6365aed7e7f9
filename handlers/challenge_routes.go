package handlers

import (
	"github.com/gbonee/hustle-vibes-africa-sub000/services"

	"github.com/gofiber/fiber/v2"
)

func SetupChallengeRoutes(secured, admin fiber.Router, challenges *services.ChallengeService) {
	secured.Post("/challenges/:challengeId/submission", func(c *fiber.Ctx) error {
		file, closeFile, err := readUpload(c, "file")
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "file is required",
				"cause": err.Error(),
			})
		}
		defer closeFile()

		sub, err := challenges.Submit(c.UserContext(), currentUser(c), c.Params("challengeId"), file)
		if err != nil {
			return respondError(c, "submission failed", err)
		}
		return c.Status(fiber.StatusCreated).JSON(sub)
	})

	secured.Get("/challenges/:challengeId/submission", func(c *fiber.Ctx) error {
		status, err := challenges.GetStatus(c.UserContext(), currentUser(c), c.Params("challengeId"))
		if err != nil {
			return respondError(c, "failed to get submission status", err)
		}
		return c.JSON(status)
	})

	admin.Get("/challenges/submissions", func(c *fiber.Ctx) error {
		subs, err := challenges.List(c.UserContext(), services.SubmissionFilter{
			Status:      c.Query("status"),
			ChallengeID: c.Query("challenge_id"),
			Limit:       c.QueryInt("limit", 50),
			Offset:      c.QueryInt("offset", 0),
		})
		if err != nil {
			return respondError(c, "failed to list submissions", err)
		}
		return c.JSON(subs)
	})

	admin.Post("/challenges/submissions/:id/approve", func(c *fiber.Ctx) error {
		res, err := challenges.Approve(c.UserContext(), c.Params("id"), currentUser(c))
		if err != nil {
			return respondError(c, "approval failed", err)
		}
		return c.JSON(res)
	})
}
