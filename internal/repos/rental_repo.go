package repos

import (
	"time"

	"github.com/jmoiron/sqlx"

	"bookineo/internal/domain"
)

type RentalRepo struct{ db *sqlx.DB }

func NewRentalRepo(db *sqlx.DB) *RentalRepo { return &RentalRepo{db: db} }

const rentalCols = `id, book_id, renter_id, start_date, end_date, return_date,
    duration, status, comment, created_at`

// RentalRow is a rental joined with its book for list views.
type RentalRow struct {
	domain.Rental
	BookTitle  string `db:"book_title" json:"bookTitle"`
	BookAuthor string `db:"book_author" json:"bookAuthor"`
}

const rentalJoinCols = `r.id, r.book_id, r.renter_id, r.start_date, r.end_date, r.return_date,
    r.duration, r.status, r.comment, r.created_at, b.title AS book_title, b.author AS book_author`

func (r *RentalRepo) Insert(e sqlx.Ext, rent *domain.Rental) error {
	_, err := e.Exec(`
	  INSERT INTO rentals(id,book_id,renter_id,start_date,end_date,duration,status,comment)
	  VALUES(?,?,?,?,?,?,?,?)
	`, rent.ID, rent.BookID, rent.RenterID, rent.StartDate, rent.EndDate, rent.Duration, rent.Status, rent.Comment)
	return err
}

func (r *RentalRepo) Get(id string) (domain.Rental, error) {
	var out domain.Rental
	err := r.db.Get(&out, `SELECT `+rentalCols+` FROM rentals WHERE id = ?`, id)
	return out, err
}

func (r *RentalRepo) ListByRenter(renterID, status string) ([]RentalRow, error) {
	sql := `SELECT ` + rentalJoinCols + ` FROM rentals r JOIN books b ON b.id = r.book_id
	  WHERE r.renter_id = ?`
	args := []any{renterID}
	if status != "" {
		sql += ` AND r.status = ?`
		args = append(args, status)
	}
	sql += ` ORDER BY r.created_at DESC`

	out := []RentalRow{}
	err := r.db.Select(&out, sql, args...)
	return out, err
}

// Overdue is a derived read: ACTIVE rentals whose end date has passed.
// Nothing is stored or swept.
func (r *RentalRepo) Overdue(now time.Time) ([]RentalRow, error) {
	out := []RentalRow{}
	err := r.db.Select(&out, `
	  SELECT `+rentalJoinCols+` FROM rentals r JOIN books b ON b.id = r.book_id
	  WHERE r.status = 'ACTIVE' AND r.end_date < ?
	  ORDER BY r.end_date
	`, now.UTC().Format(time.RFC3339))
	return out, err
}

func (r *RentalRepo) MarkCompleted(e sqlx.Ext, id string, returned time.Time) error {
	_, err := e.Exec(`UPDATE rentals SET status='COMPLETED', return_date=? WHERE id=?`,
		returned.UTC().Format(time.RFC3339), id)
	return err
}

func (r *RentalRepo) MarkCancelled(e sqlx.Ext, id string) error {
	_, err := e.Exec(`UPDATE rentals SET status='CANCELLED' WHERE id=?`, id)
	return err
}

// DeleteForBook removes every rental row of one book, for book deletion.
func (r *RentalRepo) DeleteForBook(e sqlx.Ext, bookID string) error {
	_, err := e.Exec(`DELETE FROM rentals WHERE book_id=?`, bookID)
	return err
}

// DeleteForRenter removes every rental row of one renter, for user deletion.
func (r *RentalRepo) DeleteForRenter(e sqlx.Ext, renterID string) error {
	_, err := e.Exec(`DELETE FROM rentals WHERE renter_id=?`, renterID)
	return err
}

// ActiveCountByRenter reports how many ACTIVE rentals a renter holds.
func (r *RentalRepo) ActiveCountByRenter(renterID string) (int, error) {
	var n int
	err := r.db.Get(&n, `SELECT COUNT(*) FROM rentals WHERE renter_id=? AND status='ACTIVE'`, renterID)
	return n, err
}

// HistoryForBook lists every rental of one book, newest first.
func (r *RentalRepo) HistoryForBook(bookID string) ([]domain.Rental, error) {
	out := []domain.Rental{}
	err := r.db.Select(&out, `
	  SELECT `+rentalCols+` FROM rentals WHERE book_id = ? ORDER BY created_at DESC
	`, bookID)
	return out, err
}

type RentalStats struct {
	Total     int `db:"total" json:"total"`
	Active    int `db:"active" json:"active"`
	Completed int `db:"completed" json:"completed"`
	Cancelled int `db:"cancelled" json:"cancelled"`
	Overdue   int `db:"overdue" json:"overdue"`
}

func (r *RentalRepo) Stats(renterID string, now time.Time) (RentalStats, error) {
	var s RentalStats
	err := r.db.Get(&s, `
	  SELECT COUNT(*) AS total,
	         COALESCE(SUM(CASE WHEN status='ACTIVE' THEN 1 ELSE 0 END),0) AS active,
	         COALESCE(SUM(CASE WHEN status='COMPLETED' THEN 1 ELSE 0 END),0) AS completed,
	         COALESCE(SUM(CASE WHEN status='CANCELLED' THEN 1 ELSE 0 END),0) AS cancelled,
	         COALESCE(SUM(CASE WHEN status='ACTIVE' AND end_date < ? THEN 1 ELSE 0 END),0) AS overdue
	  FROM rentals WHERE renter_id = ?`,
		now.UTC().Format(time.RFC3339), renterID)
	return s, err
}
