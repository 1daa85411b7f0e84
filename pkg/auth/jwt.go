// Package auth issues and verifies the HS256 access tokens that carry the
// caller's identity, and hashes passwords with bcrypt.
package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

// ErrInvalidToken is returned for any token that fails parsing, signature
// verification, or expiry checks.
var ErrInvalidToken = errors.New("auth: invalid token")

// Claims holds the typed JWT payload. UID is the only identity the rest of
// the system ever trusts for ownership scoping.
type Claims struct {
	UID string `json:"uid"`
	jwt.RegisteredClaims
}

// Tokens issues and validates access tokens with a fixed secret and TTL.
type Tokens struct {
	secret []byte
	expiry time.Duration
}

// NewTokens creates a token issuer. expiry <= 0 falls back to 24h.
func NewTokens(secret string, expiry time.Duration) *Tokens {
	if expiry <= 0 {
		expiry = 24 * time.Hour
	}
	return &Tokens{secret: []byte(secret), expiry: expiry}
}

// Generate creates a signed access token for uid.
func (t *Tokens) Generate(uid string) (string, error) {
	now := time.Now()
	claims := Claims{
		UID: uid,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(t.expiry)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.secret)
}

// Validate parses and verifies an access token string.
func (t *Tokens) Validate(raw string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(raw, &Claims{}, func(tok *jwt.Token) (interface{}, error) {
		if _, ok := tok.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return t.secret, nil
	})
	if err != nil {
		return nil, ErrInvalidToken
	}
	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid || claims.UID == "" {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// HashPassword returns a bcrypt hash of the plain-text password.
func HashPassword(plain string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(plain), bcrypt.DefaultCost)
	return string(bytes), err
}

// CheckPassword compares a bcrypt hash against the plain-text candidate.
func CheckPassword(hash, plain string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain)) == nil
}
