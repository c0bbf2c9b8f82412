package handlers

import (
	"github.com/gofiber/fiber/v2"

	"bookineo/internal/apperr"
	applog "bookineo/internal/log"
	"bookineo/internal/services"
	"bookineo/internal/validate"
)

type MessageHandler struct {
	Messages *services.MessageService
}

func (h *MessageHandler) Inbox(c *fiber.Ctx) error {
	msgs, err := h.Messages.Inbox(currentUser(c).ID)
	if err != nil {
		return err
	}
	return ok(c, msgs)
}

func (h *MessageHandler) Send(c *fiber.Ctx) error {
	var in services.MessageInput
	if err := c.BodyParser(&in); err != nil {
		return apperr.Validation("invalid request body", nil)
	}
	m, err := h.Messages.Send(currentUser(c).ID, in)
	if err != nil {
		applog.Security(c, "message.send.fail", map[string]any{"receiver": in.ReceiverID})
		return err
	}
	return created(c, m)
}

// Conversation returns the thread with user :id and marks it read.
func (h *MessageHandler) Conversation(c *fiber.Ctx) error {
	otherID, okID := validate.ID(c.Params("id"))
	if !okID {
		return apperr.NotFound("user not found")
	}
	msgs, err := h.Messages.Conversation(currentUser(c).ID, otherID)
	if err != nil {
		return err
	}
	return ok(c, msgs)
}

func (h *MessageHandler) MarkRead(c *fiber.Ctx) error {
	id, okID := validate.ID(c.Params("id"))
	if !okID {
		return apperr.NotFound("message not found")
	}
	m, err := h.Messages.MarkRead(currentUser(c).ID, id)
	if err != nil {
		return err
	}
	return ok(c, m)
}

func (h *MessageHandler) UnreadCount(c *fiber.Ctx) error {
	n, err := h.Messages.UnreadCount(currentUser(c).ID)
	if err != nil {
		return err
	}
	return ok(c, fiber.Map{"count": n})
}
