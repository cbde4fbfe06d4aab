package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const (
	RoleCustomer = "customer"
	RoleAdmin    = "admin"
)

var ErrInvalidSession = errors.New("invalid session")

type Claims struct {
	Identity string `json:"identity"`
	Role     string `json:"role"`
	jwt.RegisteredClaims
}

// Sessions issues and verifies HS256 session tokens. A token's lifetime
// matches the cookie max-age it is stored under.
type Sessions struct {
	secret []byte
	maxAge time.Duration
	now    func() time.Time
}

func NewSessions(secret string, maxAge time.Duration) *Sessions {
	return &Sessions{secret: []byte(secret), maxAge: maxAge, now: time.Now}
}

func (s *Sessions) MaxAge() time.Duration {
	return s.maxAge
}

func (s *Sessions) Issue(identity, role string) (string, error) {
	now := s.now()
	claims := Claims{
		Identity: identity,
		Role:     role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   identity,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.maxAge)),
		},
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("sign session: %w", err)
	}
	return token, nil
}

func (s *Sessions) Verify(tokenStr string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(token *jwt.Token) (interface{}, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil || !token.Valid {
		return nil, ErrInvalidSession
	}
	if claims.Identity == "" {
		return nil, ErrInvalidSession
	}
	return claims, nil
}
