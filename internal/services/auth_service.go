package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"storefront/internal/domain"
	applog "storefront/internal/log"
	"storefront/internal/repos"
)

var ErrBadCreds = errors.New("invalid email or password")

// SessionClaims binds a signed token to a server-side session row.
type SessionClaims struct {
	SID string `json:"sid"`
	jwt.RegisteredClaims
}

type AuthService struct {
	Users  *repos.UserRepo
	Secret []byte
	TTL    time.Duration
	Now    func() time.Time
}

func NewAuthService(users *repos.UserRepo, secret string, ttl time.Duration) *AuthService {
	return &AuthService{Users: users, Secret: []byte(secret), TTL: ttl, Now: time.Now}
}

// Login checks the password and opens a session. The returned token carries
// the user id and the session id.
func (s *AuthService) Login(ctx context.Context, email, password string) (string, *domain.User, error) {
	u, err := s.Users.ByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return "", nil, ErrBadCreds
		}
		return "", nil, err
	}
	if bcrypt.CompareHashAndPassword([]byte(u.Hash), []byte(password)) != nil {
		return "", nil, ErrBadCreds
	}

	now := s.Now()
	if n, err := s.Users.PurgeSessions(ctx, now); err != nil {
		applog.L().Warn("auth.session.purge.fail", zap.Error(err))
	} else if n > 0 {
		applog.L().Info("auth.session.purge", zap.Int64("count", n))
	}

	sid := uuid.NewString()
	expires := now.Add(s.TTL)
	if err := s.Users.CreateSession(ctx, sid, u.ID, expires); err != nil {
		return "", nil, err
	}
	claims := SessionClaims{
		SID: sid,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   u.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expires),
		},
	}
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.Secret)
	if err != nil {
		return "", nil, err
	}
	return tok, u, nil
}

// Authenticate verifies the token signature and that its session is still
// live for the same user.
func (s *AuthService) Authenticate(ctx context.Context, token string) (*domain.User, error) {
	claims, err := s.parse(token)
	if err != nil {
		return nil, err
	}
	u, err := s.Users.SessionUser(ctx, claims.SID, s.Now())
	if err != nil {
		return nil, err
	}
	if u.ID != claims.Subject {
		return nil, domain.ErrUnauthorized
	}
	return u, nil
}

// Logout revokes the session behind token. Unknown or expired tokens are
// ignored.
func (s *AuthService) Logout(ctx context.Context, token string) error {
	claims, err := s.parse(token)
	if err != nil {
		return nil
	}
	return s.Users.DeleteSession(ctx, claims.SID)
}

func (s *AuthService) parse(token string) (*SessionClaims, error) {
	t, err := jwt.ParseWithClaims(token, &SessionClaims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return s.Secret, nil
	}, jwt.WithTimeFunc(s.Now))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrUnauthorized, err)
	}
	claims, ok := t.Claims.(*SessionClaims)
	if !ok || !t.Valid || claims.SID == "" {
		return nil, domain.ErrUnauthorized
	}
	return claims, nil
}
