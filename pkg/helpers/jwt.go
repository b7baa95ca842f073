package helpers

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrEmptySecret indicates a missing signing secret. This is a startup
// misconfiguration, not something a request handler can recover from.
var ErrEmptySecret = errors.New("jwt: signing secret is empty")

// TokenManager issues and verifies HS256 session tokens.
type TokenManager struct {
	secret []byte
	ttl    time.Duration
}

var defaultManager *TokenManager

// NewTokenManager builds a manager for the given secret and token lifetime.
// An empty secret is rejected here so the process fails at boot rather than
// on the first login.
func NewTokenManager(secret string, ttl time.Duration) (*TokenManager, error) {
	if secret == "" {
		return nil, ErrEmptySecret
	}
	m := &TokenManager{secret: []byte(secret), ttl: ttl}
	defaultManager = m
	return m, nil
}

// DefaultTokens returns the last constructed TokenManager (used for auto-wiring routes)
func DefaultTokens() *TokenManager { return defaultManager }

// SessionClaims is the identity payload carried by a session token.
type SessionClaims struct {
	Email string `json:"email"`
	Name  string `json:"name"`
	jwt.RegisteredClaims
}

// Generate signs a session token for the given identity and returns it with
// its expiry time.
func (m *TokenManager) Generate(email, name string) (string, time.Time, error) {
	exp := time.Now().Add(m.ttl)
	claims := &SessionClaims{
		Email: email,
		Name:  name,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(exp),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	s, err := t.SignedString(m.secret)
	return s, exp, err
}

// Verify checks signature and expiry and returns the embedded claims, or nil
// for any invalid token (malformed, expired, forged, wrong algorithm).
// Callers treat nil as "unauthenticated"; expired sessions are routine and
// must never surface as errors.
func (m *TokenManager) Verify(tokenStr string) *SessionClaims {
	claims := &SessionClaims{}
	tkn, err := jwt.ParseWithClaims(tokenStr, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return m.secret, nil
	})
	if err != nil || !tkn.Valid {
		return nil
	}
	return claims
}
