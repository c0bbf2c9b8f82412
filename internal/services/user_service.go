package services

import (
	"database/sql"
	"strings"

	"github.com/jmoiron/sqlx"

	"bookineo/internal/apperr"
	"bookineo/internal/domain"
	"bookineo/internal/repos"
	"bookineo/internal/validate"
)

type UserService struct {
	DB      *sqlx.DB
	Users   *repos.UserRepo
	Rentals *repos.RentalRepo
}

func NewUserService(db *sqlx.DB, users *repos.UserRepo, rentals *repos.RentalRepo) *UserService {
	return &UserService{DB: db, Users: users, Rentals: rentals}
}

type ProfileInput struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	BirthDate string `json:"birthDate"`
}

func (s *UserService) UpdateProfile(userID string, in ProfileInput) (*domain.User, error) {
	fields := map[string]string{}
	first, ok := validate.Name(in.FirstName)
	if !ok {
		fields["firstName"] = "first name is required (max 50 characters)"
	}
	last, ok := validate.Name(in.LastName)
	if !ok {
		fields["lastName"] = "last name is required (max 50 characters)"
	}
	var birth *string
	if strings.TrimSpace(in.BirthDate) != "" {
		d, ok := validate.BirthDate(in.BirthDate)
		if !ok {
			fields["birthDate"] = "birth date must be YYYY-MM-DD and not in the future"
		} else {
			birth = &d
		}
	}
	if len(fields) > 0 {
		return nil, apperr.Validation("invalid profile data", fields)
	}

	if err := s.Users.UpdateProfile(userID, first, last, birth); err != nil {
		return nil, err
	}
	return s.Users.ByID(userID)
}

// List returns the user directory for the message composer (no hashes leave the repo query).
func (s *UserService) List() ([]domain.User, error) {
	return s.Users.List()
}

// Delete removes a user account. Active rentals block the deletion; closed
// rental history is purged with the account in the same transaction. Sessions
// and messages cascade, owned books become ownerless catalog stock.
func (s *UserService) Delete(actor *domain.User, id string) error {
	if id == actor.ID {
		return apperr.Conflict("you cannot delete your own account")
	}
	if _, err := s.Users.ByID(id); err != nil {
		if err == sql.ErrNoRows {
			return apperr.NotFound("user not found")
		}
		return err
	}
	n, err := s.Rentals.ActiveCountByRenter(id)
	if err != nil {
		return err
	}
	if n > 0 {
		return apperr.Conflict("user has an active rental")
	}

	tx, err := s.DB.Beginx()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if err := s.Rentals.DeleteForRenter(tx, id); err != nil {
		return err
	}
	if err := s.Users.Delete(tx, id); err != nil {
		return err
	}
	return tx.Commit()
}
