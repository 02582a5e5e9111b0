package authn

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

var ErrInvalidJWT = errors.New("invalid jwt token")
var ErrInvalidClaims = errors.New("invalid claims")

// Claims are the session token claims. SessionID ties the token back to the
// server-side session row so logout can revoke it.
type Claims struct {
	jwt.RegisteredClaims
	Username  string    `json:"preferred_username"`
	IsAdmin   bool      `json:"is_admin"`
	SessionID uuid.UUID `json:"sid"`
}

// SignClaims signs the claims with the HMAC session secret.
func SignClaims(claims Claims, secret []byte, expiry time.Time) (string, error) {
	claims.ExpiresAt = jwt.NewNumericDate(expiry)
	claims.IssuedAt = jwt.NewNumericDate(time.Now().UTC())

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(secret)
	if err != nil {
		return "", err
	}
	return signed, nil
}

// ParseClaims verifies the token signature and expiry and returns the claims.
func ParseClaims(token string, secret []byte) (Claims, error) {
	claims := Claims{}
	parsed, err := jwt.ParseWithClaims(token, &claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidJWT
		}
		return secret, nil
	})
	if err != nil {
		return Claims{}, ErrInvalidJWT
	}
	if !parsed.Valid {
		return Claims{}, ErrInvalidClaims
	}
	return claims, nil
}

// HashPassword hashes a plaintext password with bcrypt.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// CheckPassword reports whether the plaintext password matches the hash.
func CheckPassword(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
