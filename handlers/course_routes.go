package handlers

import (
	"github.com/gbonee/hustle-vibes-africa-sub000/services"

	"github.com/gofiber/fiber/v2"
)

// SetupCourseRoutes mounts the public catalog and admin video management.
func SetupCourseRoutes(app *fiber.App, admin fiber.Router, catalog *services.CatalogService, videos *services.VideoService) {
	app.Get("/courses", func(c *fiber.Ctx) error {
		courses, err := catalog.ListCourses(c.UserContext())
		if err != nil {
			return respondError(c, "failed to list courses", err)
		}
		return c.JSON(courses)
	})

	app.Get("/courses/:courseId", func(c *fiber.Ctx) error {
		course, err := catalog.GetCourse(c.UserContext(), c.Params("courseId"))
		if err != nil {
			return respondError(c, "course not found", err)
		}
		return c.JSON(course)
	})

	admin.Post("/courses/:courseId/modules/:moduleId/video", func(c *fiber.Ctx) error {
		moduleID, err := c.ParamsInt("moduleId")
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid module id", "cause": err.Error()})
		}
		file, closeFile, err := readUpload(c, "file")
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "file is required", "cause": err.Error()})
		}
		defer closeFile()

		module, err := videos.UploadModuleVideo(c.UserContext(), c.Params("courseId"), moduleID, file)
		if err != nil {
			return respondError(c, "video upload failed", err)
		}
		return c.Status(fiber.StatusCreated).JSON(module)
	})

	admin.Get("/courses/:courseId/modules/:moduleId/videos", func(c *fiber.Ctx) error {
		moduleID, err := c.ParamsInt("moduleId")
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid module id", "cause": err.Error()})
		}
		objects, err := videos.ListModuleVideos(c.UserContext(), c.Params("courseId"), moduleID)
		if err != nil {
			return respondError(c, "failed to list videos", err)
		}
		return c.JSON(objects)
	})

	admin.Delete("/videos", func(c *fiber.Ctx) error {
		if err := videos.RemoveVideo(c.UserContext(), c.Query("key")); err != nil {
			return respondError(c, "failed to remove video", err)
		}
		return c.SendStatus(fiber.StatusNoContent)
	})
}
