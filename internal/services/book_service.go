package services

import (
	"database/sql"
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"bookineo/internal/apperr"
	"bookineo/internal/domain"
	"bookineo/internal/repos"
)

type BookService struct {
	DB      *sqlx.DB
	Books   *repos.BookRepo
	Rentals *repos.RentalRepo
	Users   *repos.UserRepo
}

func NewBookService(db *sqlx.DB, books *repos.BookRepo, rentals *repos.RentalRepo, users *repos.UserRepo) *BookService {
	return &BookService{DB: db, Books: books, Rentals: rentals, Users: users}
}

type BookPage struct {
	Items    []domain.Book `json:"items"`
	Total    int           `json:"total"`
	Page     int           `json:"page"`
	PageSize int           `json:"pageSize"`
}

func (s *BookService) List(f repos.BookFilter, page, pageSize int) (BookPage, error) {
	if page < 1 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = 20
	}
	total, err := s.Books.Count(f)
	if err != nil {
		return BookPage{}, err
	}
	items, err := s.Books.List(f, pageSize, (page-1)*pageSize)
	if err != nil {
		return BookPage{}, err
	}
	return BookPage{Items: items, Total: total, Page: page, PageSize: pageSize}, nil
}

// OwnerSummary is the public slice of a book owner.
type OwnerSummary struct {
	ID        string `json:"id"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
}

type BookDetail struct {
	domain.Book
	Owner   *OwnerSummary   `json:"owner,omitempty"`
	History []domain.Rental `json:"history"`
}

func (s *BookService) Get(id string) (BookDetail, error) {
	b, err := s.Books.Get(id)
	if err != nil {
		if err == sql.ErrNoRows {
			return BookDetail{}, apperr.NotFound("book not found")
		}
		return BookDetail{}, err
	}
	d := BookDetail{Book: b}
	if b.OwnerID != nil {
		if o, err := s.Users.ByID(*b.OwnerID); err == nil {
			d.Owner = &OwnerSummary{ID: o.ID, FirstName: o.FirstName, LastName: o.LastName}
		}
	}
	hist, err := s.Rentals.HistoryForBook(id)
	if err != nil {
		return BookDetail{}, err
	}
	d.History = hist
	return d, nil
}

type BookInput struct {
	Title        string  `json:"title"`
	Author       string  `json:"author"`
	Price        float64 `json:"price"`
	CategoryName string  `json:"categoryName"`
	ImgURL       string  `json:"imgUrl"`
}

func (in BookInput) validate() map[string]string {
	fields := map[string]string{}
	if t := strings.TrimSpace(in.Title); t == "" || len(t) > 200 {
		fields["title"] = "title is required (max 200 characters)"
	}
	if a := strings.TrimSpace(in.Author); a == "" || len(a) > 120 {
		fields["author"] = "author is required (max 120 characters)"
	}
	if in.Price < 0 {
		fields["price"] = "price must not be negative"
	}
	if len(in.CategoryName) > 80 {
		fields["categoryName"] = "category too long (max 80 characters)"
	}
	return fields
}

func (s *BookService) Create(ownerID string, in BookInput) (domain.Book, error) {
	if fields := in.validate(); len(fields) > 0 {
		return domain.Book{}, apperr.Validation("invalid book data", fields)
	}
	b := domain.Book{
		ID:           uuid.NewString(),
		Title:        strings.TrimSpace(in.Title),
		Author:       strings.TrimSpace(in.Author),
		Price:        in.Price,
		CategoryName: strings.TrimSpace(in.CategoryName),
		ImgURL:       strings.TrimSpace(in.ImgURL),
		Status:       domain.BookAvailable,
		OwnerID:      &ownerID,
	}
	if err := s.Books.Create(&b); err != nil {
		return domain.Book{}, err
	}
	return s.Books.Get(b.ID)
}

// mayManage reports whether a user may edit or delete a book. Ownerless
// catalog books are admin-managed.
func mayManage(u *domain.User, b domain.Book) bool {
	if u.IsAdmin() {
		return true
	}
	return b.OwnerID != nil && *b.OwnerID == u.ID
}

func (s *BookService) Update(u *domain.User, id string, in BookInput) (domain.Book, error) {
	b, err := s.Books.Get(id)
	if err != nil {
		if err == sql.ErrNoRows {
			return domain.Book{}, apperr.NotFound("book not found")
		}
		return domain.Book{}, err
	}
	if !mayManage(u, b) {
		return domain.Book{}, apperr.Forbidden("you do not own this book")
	}
	if fields := in.validate(); len(fields) > 0 {
		return domain.Book{}, apperr.Validation("invalid book data", fields)
	}
	b.Title = strings.TrimSpace(in.Title)
	b.Author = strings.TrimSpace(in.Author)
	b.Price = in.Price
	b.CategoryName = strings.TrimSpace(in.CategoryName)
	b.ImgURL = strings.TrimSpace(in.ImgURL)
	if err := s.Books.Update(&b); err != nil {
		return domain.Book{}, err
	}
	return s.Books.Get(id)
}

func (s *BookService) Delete(u *domain.User, id string) error {
	b, err := s.Books.Get(id)
	if err != nil {
		if err == sql.ErrNoRows {
			return apperr.NotFound("book not found")
		}
		return err
	}
	if !mayManage(u, b) {
		return apperr.Forbidden("you do not own this book")
	}
	n, err := s.Books.ActiveRentalCount(id)
	if err != nil {
		return err
	}
	if n > 0 {
		return apperr.Conflict("book has an active rental")
	}

	// Closed rentals reference the book too, so the history goes with it.
	tx, err := s.DB.Beginx()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if err := s.Rentals.DeleteForBook(tx, id); err != nil {
		return err
	}
	if err := s.Books.Delete(tx, id); err != nil {
		return err
	}
	return tx.Commit()
}

func (s *BookService) Stats(ownerID string) (repos.BookStats, error) {
	return s.Books.Stats(ownerID)
}

func (s *BookService) Categories() ([]string, error) {
	return s.Books.Categories()
}

func (s *BookService) SearchAuthors(prefix string) ([]string, error) {
	return s.Books.SearchAuthors(strings.ToLower(strings.TrimSpace(prefix)), 10)
}

// ExportCSV streams a filtered book set as CSV. The header row mirrors the
// JSON keys of the book object; encoding/csv handles quote escaping.
func (s *BookService) ExportCSV(w io.Writer, f repos.BookFilter) error {
	// Export is unpaged but bounded.
	books, err := s.Books.List(f, 10000, 0)
	if err != nil {
		return err
	}
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"id", "title", "author", "price", "categoryName", "imgUrl", "status", "ownerId", "createdAt"}); err != nil {
		return err
	}
	for _, b := range books {
		owner := ""
		if b.OwnerID != nil {
			owner = *b.OwnerID
		}
		rec := []string{
			b.ID, b.Title, b.Author, fmt.Sprintf("%.2f", b.Price),
			b.CategoryName, b.ImgURL, string(b.Status), owner, b.CreatedAt,
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// ImportBook is one row of an admin catalog import.
type ImportBook struct {
	Title        string  `json:"title"`
	Author       string  `json:"author"`
	Price        float64 `json:"price"`
	CategoryName string  `json:"categoryName"`
	ImgURL       string  `json:"imgUrl"`
}

// Import bulk-inserts ownerless catalog books and reports how many were created.
func (s *BookService) Import(rows []ImportBook) (int, error) {
	if len(rows) == 0 {
		return 0, apperr.Validation("no books to import", nil)
	}
	created := 0
	for i, row := range rows {
		in := BookInput{Title: row.Title, Author: row.Author, Price: row.Price, CategoryName: row.CategoryName, ImgURL: row.ImgURL}
		if fields := in.validate(); len(fields) > 0 {
			return created, apperr.Validation(fmt.Sprintf("invalid book at index %d", i), fields)
		}
		b := domain.Book{
			ID:           uuid.NewString(),
			Title:        strings.TrimSpace(row.Title),
			Author:       strings.TrimSpace(row.Author),
			Price:        row.Price,
			CategoryName: strings.TrimSpace(row.CategoryName),
			ImgURL:       strings.TrimSpace(row.ImgURL),
			Status:       domain.BookAvailable,
		}
		if err := s.Books.Create(&b); err != nil {
			return created, err
		}
		created++
	}
	return created, nil
}
