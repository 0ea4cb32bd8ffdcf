package repos

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"

	"storefront/internal/domain"
)

type UserRepo struct{ DB *sqlx.DB }

func NewUserRepo(db *sqlx.DB) *UserRepo { return &UserRepo{DB: db} }

func (r *UserRepo) ByEmail(ctx context.Context, email string) (*domain.User, error) {
	var u domain.User
	err := r.DB.GetContext(ctx, &u, r.DB.Rebind(`SELECT id,email,name,password_hash,role FROM users WHERE LOWER(email)=LOWER(?)`), email)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// CreateSession stores a server-side session for userID valid until expires.
func (r *UserRepo) CreateSession(ctx context.Context, sid, userID string, expires time.Time) error {
	_, err := r.DB.ExecContext(ctx, r.DB.Rebind(`INSERT INTO sessions(id,user_id,expires_at) VALUES(?,?,?)`),
		sid, userID, expires.Unix())
	return err
}

// SessionUser returns the user bound to a session that is live at now.
func (r *UserRepo) SessionUser(ctx context.Context, sid string, now time.Time) (*domain.User, error) {
	var u domain.User
	err := r.DB.GetContext(ctx, &u, r.DB.Rebind(`
      SELECT u.id,u.email,u.name,u.password_hash,u.role
      FROM sessions s
      JOIN users u ON u.id=s.user_id
      WHERE s.id=? AND s.expires_at > ?`), sid, now.Unix())
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrUnauthorized
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *UserRepo) DeleteSession(ctx context.Context, sid string) error {
	_, err := r.DB.ExecContext(ctx, r.DB.Rebind(`DELETE FROM sessions WHERE id=?`), sid)
	return err
}

// PurgeSessions deletes sessions that expired before now.
func (r *UserRepo) PurgeSessions(ctx context.Context, now time.Time) (int64, error) {
	res, err := r.DB.ExecContext(ctx, r.DB.Rebind(`DELETE FROM sessions WHERE expires_at <= ?`), now.Unix())
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
