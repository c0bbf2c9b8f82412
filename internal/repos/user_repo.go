package repos

import (
	"time"

	"github.com/jmoiron/sqlx"

	"bookineo/internal/domain"
)

type UserRepo struct{ DB *sqlx.DB }

func NewUserRepo(db *sqlx.DB) *UserRepo { return &UserRepo{DB: db} }

const userCols = `id,email,password_hash,first_name,last_name,birth_date,role,created_at,COALESCE(updated_at,'') AS updated_at`

func (r *UserRepo) ByEmail(email string) (*domain.User, error) {
	var u domain.User
	err := r.DB.Get(&u, `SELECT `+userCols+` FROM users WHERE LOWER(email)=LOWER(?)`, email)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *UserRepo) ByID(id string) (*domain.User, error) {
	var u domain.User
	err := r.DB.Get(&u, `SELECT `+userCols+` FROM users WHERE id=?`, id)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *UserRepo) Create(u *domain.User) error {
	_, err := r.DB.Exec(`
		INSERT INTO users(id,email,password_hash,first_name,last_name,birth_date,role)
		VALUES(?,?,?,?,?,?,'USER')
	`, u.ID, u.Email, u.Hash, u.FirstName, u.LastName, u.BirthDate)
	return err
}

func (r *UserRepo) UpdateProfile(id, firstName, lastName string, birthDate *string) error {
	_, err := r.DB.Exec(`
		UPDATE users SET first_name=?, last_name=?, birth_date=?, updated_at=CURRENT_TIMESTAMP
		WHERE id=?
	`, firstName, lastName, birthDate, id)
	return err
}

// List returns id and names only, for the message composer.
func (r *UserRepo) List() ([]domain.User, error) {
	var out []domain.User
	err := r.DB.Select(&out, `
		SELECT id, email, '' AS password_hash, first_name, last_name, birth_date, role,
		       created_at, COALESCE(updated_at,'') AS updated_at
		FROM users ORDER BY first_name, last_name
	`)
	return out, err
}

// Delete removes the user row; sessions and messages cascade, owned books
// fall back to ownerless catalog stock.
func (r *UserRepo) Delete(e sqlx.Ext, id string) error {
	_, err := e.Exec(`DELETE FROM users WHERE id=?`, id)
	return err
}

// ---------- Sessions ----------

// BindSession attaches a session row to a user with the given lifetime.
func (r *UserRepo) BindSession(sid, userID string, remember bool, ttl time.Duration) error {
	expires := time.Now().UTC().Add(ttl).Format(time.RFC3339)
	rem := 0
	if remember {
		rem = 1
	}
	_, err := r.DB.Exec(`INSERT INTO sessions(id,user_id,remember,expires_at,last_seen)
                          VALUES(?,?,?,?,CURRENT_TIMESTAMP)
                          ON CONFLICT(id) DO UPDATE SET user_id=excluded.user_id,
                            remember=excluded.remember, expires_at=excluded.expires_at,
                            last_seen=CURRENT_TIMESTAMP`, sid, userID, rem, expires)
	return err
}

// SessionUser resolves an unexpired session to its user. The join re-checks
// that the user row still exists on every request.
func (r *UserRepo) SessionUser(sid string) (*domain.User, error) {
	var u domain.User
	err := r.DB.Get(&u, `
      SELECT u.id,u.email,u.password_hash,u.first_name,u.last_name,u.birth_date,u.role,
             u.created_at,COALESCE(u.updated_at,'') AS updated_at
      FROM sessions s
      JOIN users u ON u.id=s.user_id
      WHERE s.id=? AND (s.expires_at IS NULL OR s.expires_at > ?)`,
		sid, time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// ExtendSession rewrites the session lifetime in place (remember-me toggle).
func (r *UserRepo) ExtendSession(sid string, remember bool, ttl time.Duration) error {
	expires := time.Now().UTC().Add(ttl).Format(time.RFC3339)
	rem := 0
	if remember {
		rem = 1
	}
	_, err := r.DB.Exec(`UPDATE sessions SET remember=?, expires_at=?, last_seen=CURRENT_TIMESTAMP WHERE id=?`,
		rem, expires, sid)
	return err
}

func (r *UserRepo) UnbindSession(sid string) error {
	_, err := r.DB.Exec(`DELETE FROM sessions WHERE id=?`, sid)
	return err
}
