// Package token implements the session authority: signed, time-bounded
// proofs that an administrator conversation has authenticated. Tokens carry a
// single valid_until claim and are verified statelessly; there is no
// server-side revocation beyond expiry.
package token

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Claims представляет полезную нагрузку session token
type Claims struct {
	ValidUntil int64 `json:"valid_until"` // unix время истечения
	jwt.RegisteredClaims
}

// Authority issues and validates session tokens with a process-wide secret
type Authority struct {
	secret []byte
	ttl    time.Duration
}

// NewAuthority creates a new session authority
// secret should be a cryptographically secure random string
func NewAuthority(secret string, ttl time.Duration) *Authority {
	return &Authority{
		secret: []byte(secret),
		ttl:    ttl,
	}
}

// Issue creates a signed token valid until now + TTL
func (a *Authority) Issue(now time.Time) (string, error) {
	claims := Claims{
		ValidUntil: now.Add(a.ttl).Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(a.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}

	return tokenString, nil
}

// Validate verifies the signature and expiry of tokenString. Malformed input
// is a routine condition (a conversation that never logged in holds an empty
// token), so every failure collapses into ok=false; Validate never panics and
// never returns an error.
func (a *Authority) Validate(tokenString string, now time.Time) (*Claims, bool) {
	if tokenString == "" {
		return nil, false
	}

	parsed, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		// Принимаем только HMAC подпись
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return a.secret, nil
	})
	if err != nil {
		return nil, false
	}

	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid {
		return nil, false
	}

	// valid_until должен быть строго больше текущего времени
	if claims.ValidUntil <= now.Unix() {
		return nil, false
	}

	return claims, true
}
