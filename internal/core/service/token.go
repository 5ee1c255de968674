package service

import (
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/kalakrut/portal/internal/core/domain"
)

// TokenIssuer signs session tokens for the HTTP surface.
type TokenIssuer struct {
	secret []byte
	ttl    time.Duration
}

func NewTokenIssuer(secret string, ttl time.Duration) *TokenIssuer {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &TokenIssuer{secret: []byte(secret), ttl: ttl}
}

// Issue signs an HS256 token binding the session id to its user and role.
func (t *TokenIssuer) Issue(s *domain.Session) (string, time.Time, error) {
	exp := time.Now().Add(t.ttl)
	claims := jwt.MapClaims{
		"sid":     s.ID,
		"user_id": s.User.ID,
		"role":    string(s.User.Role),
		"exp":     exp.Unix(),
	}

	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := tok.SignedString(t.secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, exp, nil
}
