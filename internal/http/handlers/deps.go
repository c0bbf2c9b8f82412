package handlers

import (
	"github.com/jmoiron/sqlx"

	"bookineo/internal/chatbot"
	"bookineo/internal/config"
	"bookineo/internal/repos"
	"bookineo/internal/services"
)

type Deps struct {
	AuthHandler    *AuthHandler
	UserHandler    *UserHandler
	BookHandler    *BookHandler
	CartHandler    *CartHandler
	RentalHandler  *RentalHandler
	MessageHandler *MessageHandler
	ChatbotHandler *ChatbotHandler
	AdminHandler   *AdminHandler

	Auth *services.AuthService
}

func NewDeps(db *sqlx.DB, cfg config.Config) *Deps {
	userRepo := repos.NewUserRepo(db)
	bookRepo := repos.NewBookRepo(db)
	cartRepo := repos.NewCartRepo(db)
	rentalRepo := repos.NewRentalRepo(db)
	messageRepo := repos.NewMessageRepo(db)

	authSvc := services.NewAuthService(userRepo)
	userSvc := services.NewUserService(db, userRepo, rentalRepo)
	bookSvc := services.NewBookService(db, bookRepo, rentalRepo, userRepo)
	cartSvc := services.NewCartService(db, cartRepo, bookRepo, rentalRepo)
	rentalSvc := services.NewRentalService(db, bookRepo, rentalRepo)
	messageSvc := services.NewMessageService(messageRepo, userRepo)

	var completer chatbot.Completer
	if cfg.LLMEndpoint != "" {
		completer = chatbot.NewHTTPCompleter(cfg.LLMEndpoint)
	}
	chatbotSvc := services.NewChatbotService(bookSvc, rentalSvc, completer)

	return &Deps{
		AuthHandler:    &AuthHandler{Auth: authSvc},
		UserHandler:    &UserHandler{Users: userSvc},
		BookHandler:    &BookHandler{Books: bookSvc},
		CartHandler:    &CartHandler{Cart: cartSvc},
		RentalHandler:  &RentalHandler{Rentals: rentalSvc},
		MessageHandler: &MessageHandler{Messages: messageSvc},
		ChatbotHandler: &ChatbotHandler{Chatbot: chatbotSvc},
		AdminHandler:   &AdminHandler{Books: bookSvc},
		Auth:           authSvc,
	}
}
