package services

import (
	"database/sql"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"bookineo/internal/apperr"
	"bookineo/internal/domain"
	"bookineo/internal/repos"
	"bookineo/internal/validate"
)

type RentalService struct {
	DB      *sqlx.DB
	Books   *repos.BookRepo
	Rentals *repos.RentalRepo
}

func NewRentalService(db *sqlx.DB, books *repos.BookRepo, rentals *repos.RentalRepo) *RentalService {
	return &RentalService{DB: db, Books: books, Rentals: rentals}
}

type RentalInput struct {
	BookID   string `json:"bookId"`
	Duration int    `json:"duration"`
	Comment  string `json:"comment"`
}

// newRental builds the rental row; endDate = startDate + duration days.
func newRental(bookID, renterID string, duration int, comment string, now time.Time) domain.Rental {
	start := now.UTC()
	return domain.Rental{
		ID:        uuid.NewString(),
		BookID:    bookID,
		RenterID:  renterID,
		StartDate: start.Format(time.RFC3339),
		EndDate:   start.AddDate(0, 0, duration).Format(time.RFC3339),
		Duration:  duration,
		Status:    domain.RentalActive,
		Comment:   strings.TrimSpace(comment),
	}
}

// Create claims the book and inserts the rental in one transaction. The claim
// is a conditional single-row update, so two concurrent creates for the same
// book cannot both succeed.
func (s *RentalService) Create(renterID string, in RentalInput) (domain.Rental, error) {
	if !validate.DurationDays(in.Duration) {
		return domain.Rental{}, apperr.Validation("invalid rental data",
			map[string]string{"duration": "duration must be between 1 and 365 days"})
	}
	b, err := s.Books.Get(in.BookID)
	if err != nil {
		if err == sql.ErrNoRows {
			return domain.Rental{}, apperr.NotFound("book not found")
		}
		return domain.Rental{}, err
	}
	if b.OwnerID != nil && *b.OwnerID == renterID {
		return domain.Rental{}, apperr.Forbidden("you cannot rent your own book")
	}

	tx, err := s.DB.Beginx()
	if err != nil {
		return domain.Rental{}, err
	}
	defer func() { _ = tx.Rollback() }()

	ok, err := s.Books.Claim(tx, in.BookID)
	if err != nil {
		return domain.Rental{}, err
	}
	if !ok {
		return domain.Rental{}, apperr.Conflict("book is not available")
	}
	rent := newRental(in.BookID, renterID, in.Duration, in.Comment, time.Now())
	if err := s.Rentals.Insert(tx, &rent); err != nil {
		return domain.Rental{}, err
	}
	if err := tx.Commit(); err != nil {
		return domain.Rental{}, err
	}
	return rent, nil
}

// mayClose reports whether a user may return or cancel a rental: the renter,
// the book owner, or an admin.
func (s *RentalService) mayClose(u *domain.User, rent domain.Rental) (bool, error) {
	if u.IsAdmin() || rent.RenterID == u.ID {
		return true, nil
	}
	b, err := s.Books.Get(rent.BookID)
	if err != nil {
		return false, err
	}
	return b.OwnerID != nil && *b.OwnerID == u.ID, nil
}

// Return completes an ACTIVE rental: sets the return date and frees the book.
func (s *RentalService) Return(u *domain.User, rentalID string) (domain.Rental, error) {
	rent, err := s.Rentals.Get(rentalID)
	if err != nil {
		if err == sql.ErrNoRows {
			return domain.Rental{}, apperr.NotFound("rental not found")
		}
		return domain.Rental{}, err
	}
	ok, err := s.mayClose(u, rent)
	if err != nil {
		return domain.Rental{}, err
	}
	if !ok {
		return domain.Rental{}, apperr.Forbidden("not your rental")
	}
	if rent.Status != domain.RentalActive {
		return domain.Rental{}, apperr.Conflict("rental is not active")
	}

	tx, err := s.DB.Beginx()
	if err != nil {
		return domain.Rental{}, err
	}
	defer func() { _ = tx.Rollback() }()

	if err := s.Rentals.MarkCompleted(tx, rentalID, time.Now()); err != nil {
		return domain.Rental{}, err
	}
	if err := s.Books.Release(tx, rent.BookID); err != nil {
		return domain.Rental{}, err
	}
	if err := tx.Commit(); err != nil {
		return domain.Rental{}, err
	}
	return s.Rentals.Get(rentalID)
}

// Cancel aborts an ACTIVE rental and frees the book without a return date.
// COMPLETED is terminal and cannot be cancelled.
func (s *RentalService) Cancel(u *domain.User, rentalID string) (domain.Rental, error) {
	rent, err := s.Rentals.Get(rentalID)
	if err != nil {
		if err == sql.ErrNoRows {
			return domain.Rental{}, apperr.NotFound("rental not found")
		}
		return domain.Rental{}, err
	}
	ok, err := s.mayClose(u, rent)
	if err != nil {
		return domain.Rental{}, err
	}
	if !ok {
		return domain.Rental{}, apperr.Forbidden("not your rental")
	}
	if rent.Status != domain.RentalActive {
		return domain.Rental{}, apperr.Conflict("rental is not active")
	}

	tx, err := s.DB.Beginx()
	if err != nil {
		return domain.Rental{}, err
	}
	defer func() { _ = tx.Rollback() }()

	if err := s.Rentals.MarkCancelled(tx, rentalID); err != nil {
		return domain.Rental{}, err
	}
	if err := s.Books.Release(tx, rent.BookID); err != nil {
		return domain.Rental{}, err
	}
	if err := tx.Commit(); err != nil {
		return domain.Rental{}, err
	}
	return s.Rentals.Get(rentalID)
}

func (s *RentalService) Get(u *domain.User, rentalID string) (domain.Rental, error) {
	rent, err := s.Rentals.Get(rentalID)
	if err != nil {
		if err == sql.ErrNoRows {
			return domain.Rental{}, apperr.NotFound("rental not found")
		}
		return domain.Rental{}, err
	}
	ok, err := s.mayClose(u, rent)
	if err != nil {
		return domain.Rental{}, err
	}
	if !ok {
		return domain.Rental{}, apperr.NotFound("rental not found")
	}
	return rent, nil
}

func (s *RentalService) ListMine(renterID, status string) ([]repos.RentalRow, error) {
	if status != "" {
		switch domain.RentalStatus(status) {
		case domain.RentalActive, domain.RentalCompleted, domain.RentalCancelled:
		default:
			return nil, apperr.Validation("invalid rental data",
				map[string]string{"status": "status must be ACTIVE, COMPLETED or CANCELLED"})
		}
	}
	return s.Rentals.ListByRenter(renterID, status)
}

// Overdue is derived at read time; nothing auto-cancels overdue rentals.
func (s *RentalService) Overdue() ([]repos.RentalRow, error) {
	return s.Rentals.Overdue(time.Now())
}

func (s *RentalService) Stats(renterID string) (repos.RentalStats, error) {
	return s.Rentals.Stats(renterID, time.Now())
}
