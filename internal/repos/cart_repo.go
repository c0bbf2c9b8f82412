package repos

import (
	"time"

	"github.com/jmoiron/sqlx"
)

type CartRepo struct{ db *sqlx.DB }

func NewCartRepo(db *sqlx.DB) *CartRepo { return &CartRepo{db: db} }

// CartItemRow is a cart line joined with its book.
type CartItemRow struct {
	BookID  string  `db:"book_id" json:"bookId"`
	Title   string  `db:"title" json:"title"`
	Author  string  `db:"author" json:"author"`
	Price   float64 `db:"price" json:"price"`
	Status  string  `db:"status" json:"status"`
	OwnerID *string `db:"owner_id" json:"ownerId,omitempty"`
	AddedAt string  `db:"added_at" json:"addedAt"`
}

// EnsureCart returns the user's cart id, creating the row on first use.
// The cart id doubles as the user id (carts are 1:1 with users).
func (r *CartRepo) EnsureCart(userID string) (string, error) {
	var cartID string
	if err := r.db.Get(&cartID, `SELECT id FROM carts WHERE user_id = ?`, userID); err == nil {
		return cartID, nil
	}
	_, err := r.db.Exec(`INSERT INTO carts(id,user_id,updated_at) VALUES(?,?,?)`,
		userID, userID, time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return "", err
	}
	return userID, nil
}

func (r *CartRepo) Has(cartID, bookID string) (bool, error) {
	var n int
	err := r.db.Get(&n, `SELECT COUNT(*) FROM cart_items WHERE cart_id=? AND book_id=?`, cartID, bookID)
	return n > 0, err
}

func (r *CartRepo) AddItem(cartID, bookID string) error {
	_, err := r.db.Exec(`
		INSERT INTO cart_items(cart_id,book_id,created_at)
		VALUES(?,?,CURRENT_TIMESTAMP)
	`, cartID, bookID)
	return err
}

func (r *CartRepo) RemoveItem(cartID, bookID string) (bool, error) {
	res, err := r.db.Exec(`DELETE FROM cart_items WHERE cart_id=? AND book_id=?`, cartID, bookID)
	if err != nil {
		return false, err
	}
	n, _ := res.RowsAffected()
	return n > 0, nil
}

func (r *CartRepo) Items(cartID string) ([]CartItemRow, error) {
	rows := []CartItemRow{}
	err := r.db.Select(&rows, `
	  SELECT ci.book_id, b.title, b.author, b.price, b.status, b.owner_id,
	         COALESCE(ci.created_at,'') AS added_at
	  FROM cart_items ci JOIN books b ON b.id = ci.book_id
	  WHERE ci.cart_id = ?
	  ORDER BY ci.created_at
	`, cartID)
	return rows, err
}

func (r *CartRepo) Count(cartID string) (int, error) {
	var n int
	err := r.db.Get(&n, `SELECT COUNT(*) FROM cart_items WHERE cart_id = ?`, cartID)
	return n, err
}

func (r *CartRepo) Clear(e sqlx.Ext, cartID string) error {
	_, err := e.Exec(`DELETE FROM cart_items WHERE cart_id = ?`, cartID)
	return err
}
