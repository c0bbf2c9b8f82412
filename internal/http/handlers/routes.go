package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"

	"bookineo/internal/apperr"
	applog "bookineo/internal/log"
)

// Register wires the API route table onto the app. Kept out of main so the
// handler tests mount the exact same routes.
func Register(app *fiber.App, d *Deps) {
	app.Use(AttachUser(d.Auth))

	api := app.Group("/api")

	// Auth (login/signup throttled per IP)
	authLimiter := limiter.New(limiter.Config{
		Max:        10,
		Expiration: 10 * time.Minute,
		LimitReached: func(c *fiber.Ctx) error {
			applog.Security(c, "rate.auth.hit", nil)
			return apperr.RateLimited("too many attempts, retry later")
		},
	})
	auth := api.Group("/auth")
	auth.Post("/signup", authLimiter, d.AuthHandler.Signup)
	auth.Post("/login", authLimiter, d.AuthHandler.Login)
	auth.Post("/remember-me", RequireUser(), d.AuthHandler.RememberMe)
	auth.Post("/logout", d.AuthHandler.Logout)

	// Books (catalog reads are public, writes require a user)
	books := api.Group("/books")
	books.Get("/", d.BookHandler.List)
	books.Get("/categories", d.BookHandler.Categories)
	books.Get("/authors/search", d.BookHandler.SearchAuthors)
	books.Get("/stats", RequireUser(), d.BookHandler.Stats)
	books.Get("/export", d.BookHandler.Export)
	books.Get("/:id", d.BookHandler.Get)
	books.Post("/", RequireUser(), d.BookHandler.Create)
	books.Put("/:id", RequireUser(), d.BookHandler.Update)
	books.Delete("/:id", RequireUser(), d.BookHandler.Delete)

	// Cart
	cart := api.Group("/cart", RequireUser())
	cart.Get("/", d.CartHandler.View)
	cart.Get("/count", d.CartHandler.Count)
	cart.Post("/", d.CartHandler.Add)
	cart.Post("/checkout", d.CartHandler.Checkout)
	cart.Delete("/", d.CartHandler.Clear)
	cart.Delete("/:bookId", d.CartHandler.Remove)

	// Rentals
	rentals := api.Group("/rentals", RequireUser())
	rentals.Get("/", d.RentalHandler.List)
	rentals.Get("/overdue", d.RentalHandler.Overdue)
	rentals.Get("/stats", d.RentalHandler.Stats)
	rentals.Get("/:id", d.RentalHandler.Get)
	rentals.Post("/", d.RentalHandler.Create)
	rentals.Post("/:id/return", d.RentalHandler.Return)
	rentals.Post("/:id/cancel", d.RentalHandler.Cancel)

	// Messages
	messages := api.Group("/messages", RequireUser())
	messages.Get("/", d.MessageHandler.Inbox)
	messages.Get("/unread-count", d.MessageHandler.UnreadCount)
	messages.Get("/:id", d.MessageHandler.Conversation)
	messages.Post("/", d.MessageHandler.Send)
	messages.Put("/:id/read", d.MessageHandler.MarkRead)

	// Users
	api.Get("/user/me", RequireUser(), d.UserHandler.Me)
	api.Put("/user/profile", RequireUser(), d.UserHandler.UpdateProfile)
	api.Get("/users", RequireUser(), d.UserHandler.List)
	api.Delete("/users/:id", RequireAdmin(), d.UserHandler.Delete)

	// Chatbot (tighter limit; each call may hit the completion endpoint)
	chatLimiter := limiter.New(limiter.Config{
		Max:        20,
		Expiration: time.Minute,
		LimitReached: func(c *fiber.Ctx) error {
			return apperr.RateLimited("too many chatbot requests, slow down")
		},
	})
	api.Post("/chatbot", RequireUser(), chatLimiter, d.ChatbotHandler.Chat)

	// Admin
	admin := api.Group("/admin", RequireAdmin())
	admin.Post("/books/import", d.AdminHandler.ImportBooks)

	app.Get("/healthz", func(c *fiber.Ctx) error { return c.JSON(fiber.Map{"ok": true}) })
}
