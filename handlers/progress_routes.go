package handlers

import (
	"github.com/gbonee/hustle-vibes-africa-sub000/services"

	"github.com/gofiber/fiber/v2"
)

type recordModuleRequest struct {
	CourseID  string `json:"course_id" validate:"required,max=64"`
	ModuleID  int    `json:"module_id" validate:"required,min=1"`
	Completed bool   `json:"completed"`
	Progress  *int   `json:"progress" validate:"omitempty,min=0,max=100"`
}

// SetupProgressRoutes mounts module/course progress and badges on the secured group.
func SetupProgressRoutes(secured fiber.Router, progress *services.ProgressService, badges *services.BadgeService) {
	secured.Post("/progress/modules", func(c *fiber.Ctx) error {
		var req recordModuleRequest
		if ok, err := bindJSON(c, &req); !ok {
			return err
		}
		pct := 0
		if req.Progress != nil {
			pct = *req.Progress
		} else if req.Completed {
			pct = 100
		}

		res, err := progress.RecordModuleProgress(c.UserContext(), services.ModuleProgressInput{
			UserID:    currentUser(c),
			CourseID:  req.CourseID,
			ModuleID:  req.ModuleID,
			Completed: req.Completed,
			Progress:  pct,
		})
		if err != nil {
			return respondError(c, "failed to record module progress", err)
		}
		return c.JSON(res)
	})

	secured.Get("/progress/courses", func(c *fiber.Ctx) error {
		rows, err := progress.ListCourseProgress(c.UserContext(), currentUser(c))
		if err != nil {
			return respondError(c, "failed to list course progress", err)
		}
		return c.JSON(rows)
	})

	secured.Get("/progress/courses/:courseId", func(c *fiber.Ctx) error {
		userID, courseID := currentUser(c), c.Params("courseId")

		modules, err := progress.ListModuleCompletions(c.UserContext(), userID, courseID)
		if err != nil {
			return respondError(c, "failed to list module progress", err)
		}
		cp, err := progress.GetCourseProgress(c.UserContext(), userID, courseID)
		if err != nil && statusFor(err) != fiber.StatusNotFound {
			return respondError(c, "failed to get course progress", err)
		}
		return c.JSON(fiber.Map{
			"course":  cp, // null until the first module is completed
			"modules": modules,
		})
	})

	secured.Post("/progress/courses/:courseId/recompute", func(c *fiber.Ctx) error {
		cp, err := progress.RecomputeCourseProgress(c.UserContext(), currentUser(c), c.Params("courseId"))
		if err != nil {
			return respondError(c, "failed to recompute course progress", err)
		}
		return c.JSON(cp)
	})

	secured.Get("/badges", func(c *fiber.Ctx) error {
		list, err := badges.ListUserBadges(c.UserContext(), currentUser(c))
		if err != nil {
			return respondError(c, "failed to get badges", err)
		}
		return c.JSON(list)
	})
}
