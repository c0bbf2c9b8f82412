package services

import (
	"context"
	"fmt"
	"strings"

	"bookineo/internal/chatbot"
	"bookineo/internal/domain"
	"bookineo/internal/repos"
)

type ChatbotService struct {
	Books     *BookService
	Rentals   *RentalService
	Completer chatbot.Completer // nil when no endpoint is configured
}

func NewChatbotService(books *BookService, rentals *RentalService, completer chatbot.Completer) *ChatbotService {
	return &ChatbotService{Books: books, Rentals: rentals, Completer: completer}
}

type ChatReply struct {
	Intent chatbot.Intent `json:"intent"`
	Reply  string         `json:"reply"`
	Books  []domain.Book  `json:"books,omitempty"`
}

const helpText = "I can search the catalog (try: find \"Dune\" or books by Orwell), " +
	"list your rentals, or tell you which ones are due. Ask away!"

// Answer routes a classified intent into the book/rental services and shapes
// a short reply. The general intent falls through to the completion endpoint
// when one is configured, with a canned fallback otherwise.
func (s *ChatbotService) Answer(ctx context.Context, u *domain.User, message string) (ChatReply, error) {
	it := chatbot.Classify(message)
	reply := ChatReply{Intent: it}

	switch it.Kind {
	case chatbot.KindHelp:
		reply.Reply = helpText

	case chatbot.KindMyRentals:
		rows, err := s.Rentals.ListMine(u.ID, "")
		if err != nil {
			return reply, err
		}
		if len(rows) == 0 {
			reply.Reply = "You have no rentals yet."
			break
		}
		var lines []string
		for _, r := range rows {
			lines = append(lines, fmt.Sprintf("%s by %s (%s, until %s)", r.BookTitle, r.BookAuthor, r.Status, r.EndDate[:10]))
		}
		reply.Reply = "Your rentals:\n" + strings.Join(lines, "\n")

	case chatbot.KindRentalInfo:
		stats, err := s.Rentals.Stats(u.ID)
		if err != nil {
			return reply, err
		}
		reply.Reply = fmt.Sprintf("You have %d active rental(s), %d overdue.", stats.Active, stats.Overdue)

	case chatbot.KindBookSearch:
		// Extracted names are partial, so they go through the fuzzy q filter.
		f := repos.BookFilter{Category: it.Category}
		switch {
		case it.Title != "":
			f.Q = strings.ToLower(it.Title)
		case it.Author != "":
			f.Q = strings.ToLower(it.Author)
		}
		page, err := s.Books.List(f, 1, 5)
		if err != nil {
			return reply, err
		}
		reply.Books = page.Items
		if page.Total == 0 {
			reply.Reply = "I could not find any matching book."
		} else {
			reply.Reply = fmt.Sprintf("I found %d book(s).", page.Total)
		}

	default:
		reply.Reply = s.general(ctx, message)
	}
	return reply, nil
}

func (s *ChatbotService) general(ctx context.Context, message string) string {
	if s.Completer != nil {
		if out, err := s.Completer.Complete(ctx, message); err == nil {
			return out
		}
	}
	return "I'm a book assistant. " + helpText
}
