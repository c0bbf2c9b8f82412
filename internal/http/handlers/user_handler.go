package handlers

import (
	"github.com/gofiber/fiber/v2"

	"bookineo/internal/apperr"
	applog "bookineo/internal/log"
	"bookineo/internal/services"
	"bookineo/internal/validate"
)

type UserHandler struct {
	Users *services.UserService
}

func (h *UserHandler) Me(c *fiber.Ctx) error {
	return ok(c, currentUser(c))
}

func (h *UserHandler) UpdateProfile(c *fiber.Ctx) error {
	var in services.ProfileInput
	if err := c.BodyParser(&in); err != nil {
		return apperr.Validation("invalid request body", nil)
	}
	u, err := h.Users.UpdateProfile(currentUser(c).ID, in)
	if err != nil {
		return err
	}
	applog.Audit(c, "user.profile.update", nil)
	return ok(c, u)
}

// List returns the user directory (names only matter client-side).
func (h *UserHandler) List(c *fiber.Ctx) error {
	users, err := h.Users.List()
	if err != nil {
		return err
	}
	return ok(c, users)
}

// Delete removes a user account (admin only, gated in the route table).
func (h *UserHandler) Delete(c *fiber.Ctx) error {
	id, okID := validate.ID(c.Params("id"))
	if !okID {
		return apperr.NotFound("user not found")
	}
	if err := h.Users.Delete(currentUser(c), id); err != nil {
		return err
	}
	applog.Audit(c, "user.delete", map[string]any{"user_id": id})
	return okMessage(c, "user deleted")
}
