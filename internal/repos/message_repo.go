package repos

import (
	"github.com/jmoiron/sqlx"

	"bookineo/internal/domain"
)

type MessageRepo struct{ db *sqlx.DB }

func NewMessageRepo(db *sqlx.DB) *MessageRepo { return &MessageRepo{db: db} }

const messageCols = `id, sender_id, receiver_id, content, is_read, created_at`

func (r *MessageRepo) Insert(m *domain.Message) error {
	_, err := r.db.Exec(`
	  INSERT INTO messages(id,sender_id,receiver_id,content,is_read)
	  VALUES(?,?,?,?,0)
	`, m.ID, m.SenderID, m.ReceiverID, m.Content)
	return err
}

func (r *MessageRepo) Get(id string) (domain.Message, error) {
	var m domain.Message
	err := r.db.Get(&m, `SELECT `+messageCols+` FROM messages WHERE id = ?`, id)
	return m, err
}

// Conversation returns every message between two users, oldest first.
func (r *MessageRepo) Conversation(a, b string) ([]domain.Message, error) {
	out := []domain.Message{}
	err := r.db.Select(&out, `
	  SELECT `+messageCols+` FROM messages
	  WHERE (sender_id = ? AND receiver_id = ?) OR (sender_id = ? AND receiver_id = ?)
	  ORDER BY created_at, id
	`, a, b, b, a)
	return out, err
}

// Inbox lists messages received by a user, newest first.
func (r *MessageRepo) Inbox(userID string) ([]domain.Message, error) {
	out := []domain.Message{}
	err := r.db.Select(&out, `
	  SELECT `+messageCols+` FROM messages WHERE receiver_id = ? ORDER BY created_at DESC, id DESC
	`, userID)
	return out, err
}

// MarkRead flips is_read; repeating it is a no-op.
func (r *MessageRepo) MarkRead(id string) error {
	_, err := r.db.Exec(`UPDATE messages SET is_read=1 WHERE id = ?`, id)
	return err
}

// MarkConversationRead marks everything the receiver got from the sender as read.
func (r *MessageRepo) MarkConversationRead(receiverID, senderID string) error {
	_, err := r.db.Exec(`
	  UPDATE messages SET is_read=1 WHERE receiver_id = ? AND sender_id = ? AND is_read = 0
	`, receiverID, senderID)
	return err
}

func (r *MessageRepo) UnreadCount(userID string) (int, error) {
	var n int
	err := r.db.Get(&n, `SELECT COUNT(*) FROM messages WHERE receiver_id = ? AND is_read = 0`, userID)
	return n, err
}
