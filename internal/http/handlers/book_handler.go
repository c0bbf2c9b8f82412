package handlers

import (
	"bytes"
	"strings"

	"github.com/gofiber/fiber/v2"

	"bookineo/internal/apperr"
	"bookineo/internal/domain"
	applog "bookineo/internal/log"
	"bookineo/internal/repos"
	"bookineo/internal/services"
	"bookineo/internal/validate"
)

type BookHandler struct {
	Books *services.BookService
}

// filterFromQuery builds the catalog filter from the list/export query params.
func filterFromQuery(c *fiber.Ctx) (repos.BookFilter, error) {
	f := repos.BookFilter{}
	if raw := c.Query("q"); strings.TrimSpace(raw) != "" {
		q, qok := validate.Q(raw)
		if !qok {
			return f, apperr.Validation("invalid filters", map[string]string{"q": "invalid search query"})
		}
		f.Q = strings.ToLower(q)
	}
	if st := strings.TrimSpace(c.Query("status")); st != "" {
		switch domain.BookStatus(st) {
		case domain.BookAvailable, domain.BookRented:
			f.Status = st
		default:
			return f, apperr.Validation("invalid filters", map[string]string{"status": "status must be AVAILABLE or RENTED"})
		}
	}
	f.Category = strings.TrimSpace(c.Query("category"))
	f.Author = strings.TrimSpace(c.Query("author"))
	if raw := c.Query("minPrice"); raw != "" {
		v, pok := validate.Price(raw)
		if !pok {
			return f, apperr.Validation("invalid filters", map[string]string{"minPrice": "must be a non-negative number"})
		}
		f.MinPrice = &v
	}
	if raw := c.Query("maxPrice"); raw != "" {
		v, pok := validate.Price(raw)
		if !pok {
			return f, apperr.Validation("invalid filters", map[string]string{"maxPrice": "must be a non-negative number"})
		}
		f.MaxPrice = &v
	}
	return f, nil
}

func (h *BookHandler) List(c *fiber.Ctx) error {
	f, err := filterFromQuery(c)
	if err != nil {
		return err
	}
	page, size := validate.Page(c.Query("page"), c.Query("pageSize"))
	out, err := h.Books.List(f, page, size)
	if err != nil {
		return err
	}
	return ok(c, out)
}

func (h *BookHandler) Get(c *fiber.Ctx) error {
	id, okID := validate.ID(c.Params("id"))
	if !okID {
		return apperr.NotFound("book not found")
	}
	d, err := h.Books.Get(id)
	if err != nil {
		return err
	}
	return ok(c, d)
}

func (h *BookHandler) Create(c *fiber.Ctx) error {
	u := currentUser(c)
	var in services.BookInput
	if err := c.BodyParser(&in); err != nil {
		return apperr.Validation("invalid request body", nil)
	}
	b, err := h.Books.Create(u.ID, in)
	if err != nil {
		return err
	}
	applog.Audit(c, "book.create", map[string]any{"book_id": b.ID})
	return created(c, b)
}

func (h *BookHandler) Update(c *fiber.Ctx) error {
	u := currentUser(c)
	id, okID := validate.ID(c.Params("id"))
	if !okID {
		return apperr.NotFound("book not found")
	}
	var in services.BookInput
	if err := c.BodyParser(&in); err != nil {
		return apperr.Validation("invalid request body", nil)
	}
	b, err := h.Books.Update(u, id, in)
	if err != nil {
		return err
	}
	applog.Audit(c, "book.update", map[string]any{"book_id": b.ID})
	return ok(c, b)
}

func (h *BookHandler) Delete(c *fiber.Ctx) error {
	u := currentUser(c)
	id, okID := validate.ID(c.Params("id"))
	if !okID {
		return apperr.NotFound("book not found")
	}
	if err := h.Books.Delete(u, id); err != nil {
		return err
	}
	applog.Audit(c, "book.delete", map[string]any{"book_id": id})
	return okMessage(c, "book deleted")
}

func (h *BookHandler) Categories(c *fiber.Ctx) error {
	cats, err := h.Books.Categories()
	if err != nil {
		return err
	}
	return ok(c, cats)
}

func (h *BookHandler) SearchAuthors(c *fiber.Ctx) error {
	q, okQ := validate.Q(c.Query("q"))
	if !okQ {
		return ok(c, []string{})
	}
	authors, err := h.Books.SearchAuthors(q)
	if err != nil {
		return err
	}
	return ok(c, authors)
}

func (h *BookHandler) Stats(c *fiber.Ctx) error {
	u := currentUser(c)
	stats, err := h.Books.Stats(u.ID)
	if err != nil {
		return err
	}
	return ok(c, stats)
}

// Export streams the filtered catalog as a CSV attachment.
func (h *BookHandler) Export(c *fiber.Ctx) error {
	f, err := filterFromQuery(c)
	if err != nil {
		return err
	}
	var buf bytes.Buffer
	if err := h.Books.ExportCSV(&buf, f); err != nil {
		return err
	}
	c.Set(fiber.HeaderContentType, "text/csv; charset=utf-8")
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="books.csv"`)
	return c.Send(buf.Bytes())
}
