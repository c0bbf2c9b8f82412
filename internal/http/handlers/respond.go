package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"bookineo/internal/apperr"
	applog "bookineo/internal/log"
)

// Every JSON response uses the same envelope:
// { "success": bool, "data"?, "message"?, "errors"? }.

func ok(c *fiber.Ctx, data any) error {
	return c.JSON(fiber.Map{"success": true, "data": data})
}

func okMessage(c *fiber.Ctx, message string) error {
	return c.JSON(fiber.Map{"success": true, "message": message})
}

func created(c *fiber.Ctx, data any) error {
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"success": true, "data": data})
}

// ErrorHandler is the central fiber error handler: application errors keep
// their status/code/fields, fiber errors keep their status, anything else is
// a 500 with no internals leaked.
func ErrorHandler(c *fiber.Ctx, err error) error {
	var fe *fiber.Error
	if errors.As(err, &fe) {
		return c.Status(fe.Code).JSON(fiber.Map{"success": false, "message": fe.Message})
	}

	var ae *apperr.Error
	if !errors.As(err, &ae) {
		ae = apperr.Internal("internal server error")
	}
	if ae.Status >= 500 {
		applog.Error(c, "server.error", err, nil)
	}
	body := fiber.Map{"success": false, "message": ae.Message, "errors": fiber.Map{"code": ae.Code}}
	if len(ae.Fields) > 0 {
		body["errors"] = fiber.Map{"code": ae.Code, "fields": ae.Fields}
	}
	return c.Status(ae.Status).JSON(body)
}
