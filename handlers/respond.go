package handlers

import (
	"errors"

	"github.com/gbonee/hustle-vibes-africa-sub000/middleware"
	"github.com/gbonee/hustle-vibes-africa-sub000/services"
	"github.com/gbonee/hustle-vibes-africa-sub000/utils"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

var validate = validator.New()

// statusFor maps service errors onto HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, services.ErrNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, services.ErrAlreadyApproved):
		return fiber.StatusConflict
	case errors.Is(err, utils.ErrFileTooLarge):
		return fiber.StatusRequestEntityTooLarge
	case errors.Is(err, utils.ErrUnsupportedType):
		return fiber.StatusUnsupportedMediaType
	case errors.Is(err, services.ErrInvalidInput),
		errors.Is(err, services.ErrUnknownModule),
		errors.Is(err, services.ErrUploadRejected):
		return fiber.StatusBadRequest
	default:
		return fiber.StatusInternalServerError
	}
}

func respondError(c *fiber.Ctx, msg string, err error) error {
	return c.Status(statusFor(err)).JSON(fiber.Map{
		"error": msg,
		"cause": err.Error(),
	})
}

// bindJSON parses and validates the body; on failure it has already written
// the 400 response and returns false.
func bindJSON(c *fiber.Ctx, out interface{}) (bool, error) {
	if err := c.BodyParser(out); err != nil {
		return false, c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid JSON",
			"cause": err.Error(),
		})
	}
	if err := validate.Struct(out); err != nil {
		return false, validationError(c, err)
	}
	return true, nil
}

func validationError(c *fiber.Ctx, err error) error {
	var ve validator.ValidationErrors
	if !errors.As(err, &ve) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid input",
			"cause": err.Error(),
		})
	}
	fields := make(map[string]string, len(ve))
	for _, fe := range ve {
		fields[fe.Field()] = fe.Tag()
	}
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
		"error":  "validation failed",
		"fields": fields,
	})
}

func currentUser(c *fiber.Ctx) string {
	id, _ := c.Locals(middleware.LocalUserID).(string)
	return id
}

// readUpload opens the multipart field as a services.FileUpload.
func readUpload(c *fiber.Ctx, field string) (services.FileUpload, func(), error) {
	fh, err := c.FormFile(field)
	if err != nil {
		return services.FileUpload{}, nil, err
	}
	f, err := fh.Open()
	if err != nil {
		return services.FileUpload{}, nil, err
	}
	return services.FileUpload{
		Filename:    fh.Filename,
		ContentType: fh.Header.Get("Content-Type"),
		Size:        fh.Size,
		Body:        f,
	}, func() { _ = f.Close() }, nil
}
