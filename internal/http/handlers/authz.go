package handlers

import (
	"github.com/gofiber/fiber/v2"

	"bookineo/internal/apperr"
	"bookineo/internal/domain"
	applog "bookineo/internal/log"
	"bookineo/internal/services"
)

// AttachUser resolves the sid cookie to a typed *domain.User in locals.
// Unauthenticated requests pass through; RequireUser gates the private routes.
func AttachUser(auth *services.AuthService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if sid := c.Cookies("sid"); sid != "" {
			if u, err := auth.CurrentUser(sid); err == nil && u != nil {
				c.Locals("user", u)
			}
		}
		return c.Next()
	}
}

func RequireUser() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if currentUser(c) == nil {
			return apperr.Unauthorized("authentication required")
		}
		return c.Next()
	}
}

func RequireAdmin() fiber.Handler {
	return func(c *fiber.Ctx) error {
		u := currentUser(c)
		if u == nil {
			return apperr.Unauthorized("authentication required")
		}
		if !u.IsAdmin() {
			applog.Security(c, "access.denied.admin", nil)
			return apperr.Forbidden("admin access required")
		}
		return c.Next()
	}
}

func currentUser(c *fiber.Ctx) *domain.User {
	u, _ := c.Locals("user").(*domain.User)
	return u
}
