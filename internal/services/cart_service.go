package services

import (
	"database/sql"
	"time"

	"github.com/jmoiron/sqlx"

	"bookineo/internal/apperr"
	"bookineo/internal/domain"
	"bookineo/internal/repos"
	"bookineo/internal/validate"
)

type CartService struct {
	DB      *sqlx.DB
	Carts   *repos.CartRepo
	Books   *repos.BookRepo
	Rentals *repos.RentalRepo
}

func NewCartService(db *sqlx.DB, carts *repos.CartRepo, books *repos.BookRepo, rentals *repos.RentalRepo) *CartService {
	return &CartService{DB: db, Carts: carts, Books: books, Rentals: rentals}
}

type CartView struct {
	Items []repos.CartItemRow `json:"items"`
	Count int                 `json:"count"`
	Total float64             `json:"total"`
}

func (s *CartService) View(userID string) (CartView, error) {
	cartID, err := s.Carts.EnsureCart(userID)
	if err != nil {
		return CartView{}, err
	}
	items, err := s.Carts.Items(cartID)
	if err != nil {
		return CartView{}, err
	}
	v := CartView{Items: items, Count: len(items)}
	for _, it := range items {
		v.Total += it.Price
	}
	return v, nil
}

func (s *CartService) Count(userID string) (int, error) {
	cartID, err := s.Carts.EnsureCart(userID)
	if err != nil {
		return 0, err
	}
	return s.Carts.Count(cartID)
}

// Add puts a book in the user's cart. A rented book cannot be added, nor can
// the user's own book, nor a duplicate.
func (s *CartService) Add(userID, bookID string) error {
	b, err := s.Books.Get(bookID)
	if err != nil {
		if err == sql.ErrNoRows {
			return apperr.NotFound("book not found")
		}
		return err
	}
	if b.Status != domain.BookAvailable {
		return apperr.Conflict("book is not available")
	}
	if b.OwnerID != nil && *b.OwnerID == userID {
		return apperr.Forbidden("you cannot rent your own book")
	}
	cartID, err := s.Carts.EnsureCart(userID)
	if err != nil {
		return err
	}
	if has, err := s.Carts.Has(cartID, bookID); err != nil {
		return err
	} else if has {
		return apperr.Conflict("book is already in your cart")
	}
	return s.Carts.AddItem(cartID, bookID)
}

func (s *CartService) Remove(userID, bookID string) error {
	cartID, err := s.Carts.EnsureCart(userID)
	if err != nil {
		return err
	}
	removed, err := s.Carts.RemoveItem(cartID, bookID)
	if err != nil {
		return err
	}
	if !removed {
		return apperr.NotFound("book is not in your cart")
	}
	return nil
}

func (s *CartService) Clear(userID string) error {
	cartID, err := s.Carts.EnsureCart(userID)
	if err != nil {
		return err
	}
	return s.Carts.Clear(s.DB, cartID)
}

type CheckoutInput struct {
	Duration int    `json:"duration"`
	Comment  string `json:"comment"`
}

type CheckoutResult struct {
	Rentals []domain.Rental `json:"rentals"`
	Total   float64         `json:"total"`
}

// Checkout converts every cart item into an ACTIVE rental and empties the
// cart, all inside one transaction: each book is claimed with a conditional
// update, and any item that can no longer be claimed aborts the whole
// checkout, leaving the cart and the already-claimed books untouched.
func (s *CartService) Checkout(userID string, in CheckoutInput) (CheckoutResult, error) {
	if !validate.DurationDays(in.Duration) {
		return CheckoutResult{}, apperr.Validation("invalid checkout data",
			map[string]string{"duration": "duration must be between 1 and 365 days"})
	}
	cartID, err := s.Carts.EnsureCart(userID)
	if err != nil {
		return CheckoutResult{}, err
	}
	items, err := s.Carts.Items(cartID)
	if err != nil {
		return CheckoutResult{}, err
	}
	if len(items) == 0 {
		return CheckoutResult{}, apperr.Validation("cart is empty", nil)
	}

	tx, err := s.DB.Beginx()
	if err != nil {
		return CheckoutResult{}, err
	}
	defer func() { _ = tx.Rollback() }()

	res := CheckoutResult{}
	now := time.Now()
	for _, it := range items {
		ok, err := s.Books.Claim(tx, it.BookID)
		if err != nil {
			return CheckoutResult{}, err
		}
		if !ok {
			return CheckoutResult{}, apperr.Conflict("book '" + it.Title + "' is no longer available")
		}
		rent := newRental(it.BookID, userID, in.Duration, in.Comment, now)
		if err := s.Rentals.Insert(tx, &rent); err != nil {
			return CheckoutResult{}, err
		}
		res.Rentals = append(res.Rentals, rent)
		res.Total += it.Price
	}
	if err := s.Carts.Clear(tx, cartID); err != nil {
		return CheckoutResult{}, err
	}
	if err := tx.Commit(); err != nil {
		return CheckoutResult{}, err
	}
	return res, nil
}
