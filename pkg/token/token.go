// Package token issues and verifies the signed session tokens that carry a
// user identity claim. Tokens are never persisted; they are verified on
// every request.
package token

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/shashiranjanraj/bistro-boss-server/config"
)

// TTL is how long a session token stays valid.
const TTL = 5 * time.Hour

// ErrInvalid is returned for tokens that fail signature or expiry checks.
var ErrInvalid = errors.New("token: invalid or expired")

// Claims holds the typed JWT payload. Email is the subject identity.
type Claims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

func secret() []byte {
	return []byte(config.JWTSecret())
}

// Issue creates a signed session token for the given subject email.
func Issue(email string) (string, error) {
	now := time.Now()
	claims := Claims{
		Email: email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   email,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(TTL)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret())
}

// Verify parses and validates a session token string.
func Verify(t string) (*Claims, error) {
	parsed, err := jwt.ParseWithClaims(t, &Claims{}, func(tok *jwt.Token) (interface{}, error) {
		if _, ok := tok.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalid
		}
		return secret(), nil
	})
	if err != nil {
		return nil, errors.Join(ErrInvalid, err)
	}

	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid {
		return nil, ErrInvalid
	}
	if claims.Email == "" {
		claims.Email = claims.Subject
	}

	return claims, nil
}
