package handlers

import (
	"github.com/gofiber/fiber/v2"

	"bookineo/internal/apperr"
	applog "bookineo/internal/log"
	"bookineo/internal/services"
	"bookineo/internal/validate"
)

type CartHandler struct {
	Cart *services.CartService
}

func (h *CartHandler) View(c *fiber.Ctx) error {
	cv, err := h.Cart.View(currentUser(c).ID)
	if err != nil {
		return err
	}
	return ok(c, cv)
}

func (h *CartHandler) Count(c *fiber.Ctx) error {
	n, err := h.Cart.Count(currentUser(c).ID)
	if err != nil {
		return err
	}
	return ok(c, fiber.Map{"count": n})
}

type addCartInput struct {
	BookID string `json:"bookId"`
}

func (h *CartHandler) Add(c *fiber.Ctx) error {
	var in addCartInput
	if err := c.BodyParser(&in); err != nil {
		return apperr.Validation("invalid request body", nil)
	}
	id, okID := validate.ID(in.BookID)
	if !okID {
		return apperr.Validation("invalid request body", map[string]string{"bookId": "bookId is required"})
	}
	if err := h.Cart.Add(currentUser(c).ID, id); err != nil {
		return err
	}
	applog.Info(c, "cart.add", map[string]any{"book_id": id})
	return okMessage(c, "book added to cart")
}

func (h *CartHandler) Remove(c *fiber.Ctx) error {
	id, okID := validate.ID(c.Params("bookId"))
	if !okID {
		return apperr.NotFound("book is not in your cart")
	}
	if err := h.Cart.Remove(currentUser(c).ID, id); err != nil {
		return err
	}
	return okMessage(c, "book removed from cart")
}

func (h *CartHandler) Clear(c *fiber.Ctx) error {
	if err := h.Cart.Clear(currentUser(c).ID); err != nil {
		return err
	}
	return okMessage(c, "cart cleared")
}

func (h *CartHandler) Checkout(c *fiber.Ctx) error {
	var in services.CheckoutInput
	if err := c.BodyParser(&in); err != nil {
		return apperr.Validation("invalid request body", nil)
	}
	u := currentUser(c)
	res, err := h.Cart.Checkout(u.ID, in)
	if err != nil {
		applog.Security(c, "cart.checkout.fail", map[string]any{"error": err.Error()})
		return err
	}
	applog.Audit(c, "cart.checkout", map[string]any{
		"rentals": len(res.Rentals),
		"total":   res.Total,
	})
	return created(c, res)
}
