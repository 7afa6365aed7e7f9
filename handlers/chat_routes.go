package handlers

import (
	"github.com/gbonee/hustle-vibes-africa-sub000/services"

	"github.com/gofiber/fiber/v2"
)

type chatSessionRequest struct {
	CourseID string `json:"course_id" validate:"required,max=64"`
	Language string `json:"language" validate:"max=32"`
	UserName string `json:"user_name" validate:"max=100"`
}

type chatMessageRequest struct {
	chatSessionRequest
	Message string `json:"message" validate:"required,max=2000"`
}

func (r chatSessionRequest) input(c *fiber.Ctx) services.SessionInput {
	name := r.UserName
	if name == "" {
		name, _ = c.Locals("user_name").(string)
	}
	return services.SessionInput{
		UserID:   currentUser(c),
		CourseID: r.CourseID,
		Language: r.Language,
		UserName: name,
	}
}

func SetupChatRoutes(secured fiber.Router, chat *services.ChatService) {
	secured.Post("/chat/session", func(c *fiber.Ctx) error {
		var req chatSessionRequest
		if ok, err := bindJSON(c, &req); !ok {
			return err
		}
		session, err := chat.StartSession(c.UserContext(), req.input(c))
		if err != nil {
			return respondError(c, "failed to start chat", err)
		}
		return c.JSON(session)
	})

	secured.Post("/chat/messages", func(c *fiber.Ctx) error {
		var req chatMessageRequest
		if ok, err := bindJSON(c, &req); !ok {
			return err
		}
		reply, err := chat.SendMessage(c.UserContext(), services.MessageInput{
			SessionInput: req.input(c),
			Message:      req.Message,
		})
		if err != nil {
			return respondError(c, "failed to send message", err)
		}
		return c.JSON(reply)
	})

	secured.Delete("/chat/session", func(c *fiber.Ctx) error {
		in := chatSessionRequest{CourseID: c.Query("course_id"), Language: c.Query("language")}.input(c)
		if err := chat.ClearSession(c.UserContext(), in); err != nil {
			return respondError(c, "failed to clear chat", err)
		}
		return c.SendStatus(fiber.StatusNoContent)
	})

	// stateless proxy, same contract as the hosted completion function
	secured.Post("/chat/complete", func(c *fiber.Ctx) error {
		var req services.CompletionRequest
		if ok, err := bindJSON(c, &req); !ok {
			return err
		}
		resp, err := chat.Complete(c.UserContext(), req)
		if err != nil {
			return respondError(c, "completion failed", err)
		}
		return c.JSON(resp)
	})
}
