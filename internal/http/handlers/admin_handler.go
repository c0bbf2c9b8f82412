package handlers

import (
	"github.com/gofiber/fiber/v2"

	"bookineo/internal/apperr"
	applog "bookineo/internal/log"
	"bookineo/internal/services"
)

type AdminHandler struct {
	Books *services.BookService
}

type importInput struct {
	Books []services.ImportBook `json:"books"`
}

// ImportBooks bulk-creates ownerless catalog books.
func (h *AdminHandler) ImportBooks(c *fiber.Ctx) error {
	var in importInput
	if err := c.BodyParser(&in); err != nil {
		return apperr.Validation("invalid request body", nil)
	}
	n, err := h.Books.Import(in.Books)
	if err != nil {
		return err
	}
	applog.Audit(c, "admin.books.import", map[string]any{"imported": n})
	return created(c, fiber.Map{"imported": n})
}
