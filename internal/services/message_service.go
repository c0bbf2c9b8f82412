package services

import (
	"database/sql"
	"strings"

	"github.com/google/uuid"

	"bookineo/internal/apperr"
	"bookineo/internal/domain"
	"bookineo/internal/repos"
)

type MessageService struct {
	Messages *repos.MessageRepo
	Users    *repos.UserRepo
}

func NewMessageService(messages *repos.MessageRepo, users *repos.UserRepo) *MessageService {
	return &MessageService{Messages: messages, Users: users}
}

const (
	maxMessageLen   = 1000
	maxMessageLinks = 3
	maxCharRun      = 10
)

// checkContent is the basic content-safety filter: rejects repeated-character
// spam and messages stuffed with links.
func checkContent(content string) string {
	if content == "" {
		return "message content is required"
	}
	if len(content) > maxMessageLen {
		return "message is too long (max 1000 characters)"
	}
	run := 0
	var prev rune
	for i, r := range content {
		if i > 0 && r == prev {
			run++
			if run+1 >= maxCharRun {
				return "message looks like spam (repeated characters)"
			}
		} else {
			run = 0
		}
		prev = r
	}
	links := strings.Count(strings.ToLower(content), "http://") +
		strings.Count(strings.ToLower(content), "https://")
	if links > maxMessageLinks {
		return "message contains too many links"
	}
	return ""
}

type MessageInput struct {
	ReceiverID string `json:"receiverId"`
	Content    string `json:"content"`
}

func (s *MessageService) Send(senderID string, in MessageInput) (domain.Message, error) {
	content := strings.TrimSpace(in.Content)
	if reason := checkContent(content); reason != "" {
		return domain.Message{}, apperr.Validation("invalid message",
			map[string]string{"content": reason})
	}
	if in.ReceiverID == senderID {
		return domain.Message{}, apperr.Validation("invalid message",
			map[string]string{"receiverId": "you cannot message yourself"})
	}
	if _, err := s.Users.ByID(in.ReceiverID); err != nil {
		if err == sql.ErrNoRows {
			return domain.Message{}, apperr.NotFound("receiver not found")
		}
		return domain.Message{}, err
	}

	m := domain.Message{
		ID:         uuid.NewString(),
		SenderID:   senderID,
		ReceiverID: in.ReceiverID,
		Content:    content,
	}
	if err := s.Messages.Insert(&m); err != nil {
		return domain.Message{}, err
	}
	return s.Messages.Get(m.ID)
}

// Conversation returns the thread with another user and marks what the caller
// received in it as read.
func (s *MessageService) Conversation(userID, otherID string) ([]domain.Message, error) {
	if _, err := s.Users.ByID(otherID); err != nil {
		if err == sql.ErrNoRows {
			return nil, apperr.NotFound("user not found")
		}
		return nil, err
	}
	msgs, err := s.Messages.Conversation(userID, otherID)
	if err != nil {
		return nil, err
	}
	if err := s.Messages.MarkConversationRead(userID, otherID); err != nil {
		return nil, err
	}
	return msgs, nil
}

func (s *MessageService) Inbox(userID string) ([]domain.Message, error) {
	return s.Messages.Inbox(userID)
}

// MarkRead flips is_read for the receiver. Repeats are no-ops, not errors.
func (s *MessageService) MarkRead(userID, messageID string) (domain.Message, error) {
	m, err := s.Messages.Get(messageID)
	if err != nil {
		if err == sql.ErrNoRows {
			return domain.Message{}, apperr.NotFound("message not found")
		}
		return domain.Message{}, err
	}
	if m.ReceiverID != userID {
		return domain.Message{}, apperr.Forbidden("not your message")
	}
	if err := s.Messages.MarkRead(messageID); err != nil {
		return domain.Message{}, err
	}
	return s.Messages.Get(messageID)
}

func (s *MessageService) UnreadCount(userID string) (int, error) {
	return s.Messages.UnreadCount(userID)
}
