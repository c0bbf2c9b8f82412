package domain

type User struct {
	ID        string  `db:"id" json:"id"`
	Email     string  `db:"email" json:"email"`
	Hash      string  `db:"password_hash" json:"-"`
	FirstName string  `db:"first_name" json:"firstName"`
	LastName  string  `db:"last_name" json:"lastName"`
	BirthDate *string `db:"birth_date" json:"birthDate,omitempty"`
	Role      string  `db:"role" json:"-"`
	CreatedAt string  `db:"created_at" json:"createdAt"`
	UpdatedAt string  `db:"updated_at" json:"updatedAt,omitempty"`
}

func (u *User) IsAdmin() bool { return u.Role == "ADMIN" }
