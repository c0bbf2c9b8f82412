package handlers

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"bookineo/internal/apperr"
	applog "bookineo/internal/log"
	"bookineo/internal/services"
	"bookineo/internal/validate"
)

type RentalHandler struct {
	Rentals *services.RentalService
}

func (h *RentalHandler) List(c *fiber.Ctx) error {
	status := strings.TrimSpace(c.Query("status"))
	rows, err := h.Rentals.ListMine(currentUser(c).ID, status)
	if err != nil {
		return err
	}
	return ok(c, rows)
}

func (h *RentalHandler) Create(c *fiber.Ctx) error {
	var in services.RentalInput
	if err := c.BodyParser(&in); err != nil {
		return apperr.Validation("invalid request body", nil)
	}
	rent, err := h.Rentals.Create(currentUser(c).ID, in)
	if err != nil {
		return err
	}
	applog.Audit(c, "rental.create", map[string]any{"rental_id": rent.ID, "book_id": rent.BookID})
	return created(c, rent)
}

func (h *RentalHandler) Get(c *fiber.Ctx) error {
	id, okID := validate.ID(c.Params("id"))
	if !okID {
		return apperr.NotFound("rental not found")
	}
	rent, err := h.Rentals.Get(currentUser(c), id)
	if err != nil {
		return err
	}
	return ok(c, rent)
}

func (h *RentalHandler) Return(c *fiber.Ctx) error {
	id, okID := validate.ID(c.Params("id"))
	if !okID {
		return apperr.NotFound("rental not found")
	}
	rent, err := h.Rentals.Return(currentUser(c), id)
	if err != nil {
		return err
	}
	applog.Audit(c, "rental.return", map[string]any{"rental_id": id})
	return ok(c, rent)
}

func (h *RentalHandler) Cancel(c *fiber.Ctx) error {
	id, okID := validate.ID(c.Params("id"))
	if !okID {
		return apperr.NotFound("rental not found")
	}
	rent, err := h.Rentals.Cancel(currentUser(c), id)
	if err != nil {
		return err
	}
	applog.Audit(c, "rental.cancel", map[string]any{"rental_id": id})
	return ok(c, rent)
}

func (h *RentalHandler) Overdue(c *fiber.Ctx) error {
	rows, err := h.Rentals.Overdue()
	if err != nil {
		return err
	}
	return ok(c, rows)
}

func (h *RentalHandler) Stats(c *fiber.Ctx) error {
	stats, err := h.Rentals.Stats(currentUser(c).ID)
	if err != nil {
		return err
	}
	return ok(c, stats)
}
