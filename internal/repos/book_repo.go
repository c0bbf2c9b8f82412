package repos

import (
	"github.com/jmoiron/sqlx"

	"bookineo/internal/domain"
)

type BookRepo struct{ db *sqlx.DB }

func NewBookRepo(db *sqlx.DB) *BookRepo { return &BookRepo{db: db} }

const bookCols = `id, title, author, price, category_name, img_url, status, owner_id,
    created_at, COALESCE(updated_at,'') AS updated_at`

// BookFilter collects the catalog list/export filters.
type BookFilter struct {
	Q        string
	Status   string
	Category string
	Author   string
	MinPrice *float64
	MaxPrice *float64
}

func (f BookFilter) where() (string, []any) {
	where := `1=1`
	args := []any{}
	if f.Q != "" {
		where += ` AND (LOWER(title) LIKE ? OR LOWER(author) LIKE ?)`
		pat := "%" + f.Q + "%"
		args = append(args, pat, pat)
	}
	if f.Status != "" {
		where += ` AND status = ?`
		args = append(args, f.Status)
	}
	if f.Category != "" {
		where += ` AND category_name = ?`
		args = append(args, f.Category)
	}
	if f.Author != "" {
		where += ` AND LOWER(author) = LOWER(?)`
		args = append(args, f.Author)
	}
	if f.MinPrice != nil {
		where += ` AND price >= ?`
		args = append(args, *f.MinPrice)
	}
	if f.MaxPrice != nil {
		where += ` AND price <= ?`
		args = append(args, *f.MaxPrice)
	}
	return where, args
}

func (r *BookRepo) List(f BookFilter, limit, offset int) ([]domain.Book, error) {
	where, args := f.where()
	sql := `SELECT ` + bookCols + ` FROM books WHERE ` + where + `
	  ORDER BY created_at DESC, id LIMIT ? OFFSET ?`
	args = append(args, limit, offset)

	var out []domain.Book
	err := r.db.Select(&out, sql, args...)
	return out, err
}

func (r *BookRepo) Count(f BookFilter) (int, error) {
	where, args := f.where()
	var n int
	err := r.db.Get(&n, `SELECT COUNT(*) FROM books WHERE `+where, args...)
	return n, err
}

func (r *BookRepo) Get(id string) (domain.Book, error) {
	var b domain.Book
	err := r.db.Get(&b, `SELECT `+bookCols+` FROM books WHERE id = ?`, id)
	return b, err
}

func (r *BookRepo) Create(b *domain.Book) error {
	_, err := r.db.Exec(`
	  INSERT INTO books(id,title,author,price,category_name,img_url,status,owner_id)
	  VALUES(?,?,?,?,?,?,?,?)
	`, b.ID, b.Title, b.Author, b.Price, b.CategoryName, b.ImgURL, b.Status, b.OwnerID)
	return err
}

func (r *BookRepo) Update(b *domain.Book) error {
	_, err := r.db.Exec(`
	  UPDATE books SET title=?, author=?, price=?, category_name=?, img_url=?, updated_at=CURRENT_TIMESTAMP
	  WHERE id=?
	`, b.Title, b.Author, b.Price, b.CategoryName, b.ImgURL, b.ID)
	return err
}

func (r *BookRepo) Delete(e sqlx.Ext, id string) error {
	_, err := e.Exec(`DELETE FROM books WHERE id=?`, id)
	return err
}

// Claim atomically flips an AVAILABLE book to RENTED. It reports false when
// the book was already rented (or missing), which serializes concurrent
// checkouts of the same book on a single row update.
func (r *BookRepo) Claim(e sqlx.Ext, id string) (bool, error) {
	res, err := e.Exec(`UPDATE books SET status='RENTED', updated_at=CURRENT_TIMESTAMP
	  WHERE id=? AND status='AVAILABLE'`, id)
	if err != nil {
		return false, err
	}
	n, _ := res.RowsAffected()
	return n == 1, nil
}

// Release puts a book back to AVAILABLE after a rental ends.
func (r *BookRepo) Release(e sqlx.Ext, id string) error {
	_, err := e.Exec(`UPDATE books SET status='AVAILABLE', updated_at=CURRENT_TIMESTAMP WHERE id=?`, id)
	return err
}

// ---------- Aggregates & autocomplete ----------

type BookStats struct {
	Total     int `db:"total" json:"total"`
	Available int `db:"available" json:"available"`
	Rented    int `db:"rented" json:"rented"`
	Owned     int `db:"owned" json:"owned"`
}

func (r *BookRepo) Stats(ownerID string) (BookStats, error) {
	var s BookStats
	err := r.db.Get(&s, `
	  SELECT COUNT(*) AS total,
	         COALESCE(SUM(CASE WHEN status='AVAILABLE' THEN 1 ELSE 0 END),0) AS available,
	         COALESCE(SUM(CASE WHEN status='RENTED' THEN 1 ELSE 0 END),0) AS rented,
	         COALESCE(SUM(CASE WHEN owner_id=? THEN 1 ELSE 0 END),0) AS owned
	  FROM books`, ownerID)
	return s, err
}

func (r *BookRepo) Categories() ([]string, error) {
	var out []string
	err := r.db.Select(&out, `
	  SELECT DISTINCT category_name FROM books
	  WHERE category_name != '' ORDER BY category_name`)
	return out, err
}

func (r *BookRepo) SearchAuthors(prefix string, limit int) ([]string, error) {
	var out []string
	err := r.db.Select(&out, `
	  SELECT DISTINCT author FROM books
	  WHERE LOWER(author) LIKE ? ORDER BY author LIMIT ?`, prefix+"%", limit)
	return out, err
}

// ActiveRentalCount reports how many ACTIVE rentals reference a book
// (0 or 1 under the partial unique index).
func (r *BookRepo) ActiveRentalCount(bookID string) (int, error) {
	var n int
	err := r.db.Get(&n, `SELECT COUNT(*) FROM rentals WHERE book_id=? AND status='ACTIVE'`, bookID)
	return n, err
}
