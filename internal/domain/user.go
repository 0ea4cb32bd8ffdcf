package domain

const (
	RoleUser  = "USER"
	RoleAdmin = "ADMIN"
)

type User struct {
	ID    string `db:"id" json:"id"`
	Email string `db:"email" json:"email"`
	Name  string `db:"name" json:"name"`
	Hash  string `db:"password_hash" json:"-"`
	Role  string `db:"role" json:"role"`
}

func (u *User) IsAdmin() bool { return u != nil && u.Role == RoleAdmin }

type Session struct {
	ID        string  `db:"id"`
	UserID    *string `db:"user_id"`
	CreatedAt string  `db:"created_at"`
	ExpiresAt int64   `db:"expires_at"` // unix seconds
}
