package handlers

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"bookineo/internal/apperr"
	applog "bookineo/internal/log"
	"bookineo/internal/services"
)

type ChatbotHandler struct {
	Chatbot *services.ChatbotService
}

type chatInput struct {
	Message string `json:"message"`
}

func (h *ChatbotHandler) Chat(c *fiber.Ctx) error {
	var in chatInput
	if err := c.BodyParser(&in); err != nil {
		return apperr.Validation("invalid request body", nil)
	}
	msg := strings.TrimSpace(in.Message)
	if msg == "" || len(msg) > 500 {
		return apperr.Validation("invalid message",
			map[string]string{"message": "message is required (max 500 characters)"})
	}
	reply, err := h.Chatbot.Answer(c.Context(), currentUser(c), msg)
	if err != nil {
		return err
	}
	applog.Info(c, "chatbot.answer", map[string]any{"intent": reply.Intent.Kind})
	return ok(c, reply)
}
