package services

import (
	"database/sql"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"bookineo/internal/apperr"
	"bookineo/internal/domain"
	"bookineo/internal/repos"
	"bookineo/internal/validate"
)

// Session lifetimes: default one day, thirty days with remember-me.
const (
	SessionTTL         = 24 * time.Hour
	RememberSessionTTL = 30 * 24 * time.Hour
)

type AuthService struct {
	Users *repos.UserRepo
}

func NewAuthService(users *repos.UserRepo) *AuthService { return &AuthService{Users: users} }

type SignupInput struct {
	Email     string `json:"email"`
	Password  string `json:"password"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	BirthDate string `json:"birthDate"`
}

func (s *AuthService) Signup(in SignupInput) (*domain.User, error) {
	fields := map[string]string{}
	email, ok := validate.Email(in.Email)
	if !ok {
		fields["email"] = "invalid email address"
	}
	if !validate.Password(in.Password) {
		fields["password"] = "password must be 8-72 characters with an uppercase letter, a lowercase letter and a digit"
	}
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
		return nil, apperr.Validation("invalid signup data", fields)
	}

	if _, err := s.Users.ByEmail(email); err == nil {
		return nil, apperr.Conflict("an account already exists for this email")
	} else if err != sql.ErrNoRows {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), 12)
	if err != nil {
		return nil, err
	}
	u := &domain.User{
		ID:        uuid.NewString(),
		Email:     email,
		Hash:      string(hash),
		FirstName: first,
		LastName:  last,
		BirthDate: birth,
	}
	if err := s.Users.Create(u); err != nil {
		return nil, err
	}
	return u, nil
}

func (s *AuthService) Login(sid, email, password string, remember bool) (*domain.User, error) {
	u, err := s.Users.ByEmail(email)
	if err != nil {
		return nil, apperr.Unauthorized("invalid email or password")
	}
	if bcrypt.CompareHashAndPassword([]byte(u.Hash), []byte(password)) != nil {
		return nil, apperr.Unauthorized("invalid email or password")
	}
	ttl := SessionTTL
	if remember {
		ttl = RememberSessionTTL
	}
	if err := s.Users.BindSession(sid, u.ID, remember, ttl); err != nil {
		return nil, err
	}
	return u, nil
}

// SetRememberMe rewrites the current session lifetime in place.
func (s *AuthService) SetRememberMe(sid string, enabled bool) error {
	ttl := SessionTTL
	if enabled {
		ttl = RememberSessionTTL
	}
	return s.Users.ExtendSession(sid, enabled, ttl)
}

func (s *AuthService) Logout(sid string) error {
	return s.Users.UnbindSession(sid)
}

// CurrentUser resolves a sid cookie to its user, re-checked against the DB.
func (s *AuthService) CurrentUser(sid string) (*domain.User, error) {
	return s.Users.SessionUser(sid)
}
