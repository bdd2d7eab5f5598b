// Package auth issues and verifies signed session tokens.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt"
	"github.com/google/uuid"

	"github.com/slateworks/ticklist/internal/model"
)

// TokenTTL is the fixed lifetime of an issued token.
const TokenTTL = 24 * time.Hour

// ErrInvalidToken is returned when a token fails verification for any
// reason: bad signature, malformed payload, or elapsed expiry.
var ErrInvalidToken = errors.New("invalid or expired token")

// Identity is the user identity embedded in a token.
type Identity struct {
	UserID   int64
	Username string
}

// Tokens signs and verifies session tokens with a shared secret.
// Verification is stateless: nothing is persisted and there is no
// revocation, so a token stays valid until it expires.
type Tokens struct {
	secret []byte
	ttl    time.Duration
}

// NewTokens creates a token issuer/verifier around the signing secret.
func NewTokens(secret string) *Tokens {
	return &Tokens{secret: []byte(secret), ttl: TokenTTL}
}

// Issue creates a signed token for the user.
func (t *Tokens) Issue(user model.User) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"user_id":  user.ID,
		"username": user.Username,
		"iat":      now.Unix(),
		"exp":      now.Add(t.ttl).Unix(),
		"jti":      uuid.NewString(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(t.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// Verify checks the token signature and expiry and returns the embedded
// identity.
func (t *Tokens) Verify(tokenString string) (Identity, error) {
	token, err := jwt.Parse(tokenString, func(tok *jwt.Token) (interface{}, error) {
		if _, ok := tok.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", tok.Header["alg"])
		}
		return t.secret, nil
	})
	if err != nil || !token.Valid {
		return Identity{}, ErrInvalidToken
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return Identity{}, ErrInvalidToken
	}

	userID, ok := claims["user_id"].(float64)
	if !ok {
		return Identity{}, ErrInvalidToken
	}
	username, ok := claims["username"].(string)
	if !ok {
		return Identity{}, ErrInvalidToken
	}

	return Identity{UserID: int64(userID), Username: username}, nil
}
