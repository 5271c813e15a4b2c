// Package auth parses the signed identity tokens minted by the external
// authentication service. Credentials are never verified here; the token is
// trusted once its signature checks out.
package auth

import (
	"context"
	"fmt"
	"time"

	"github.com/dgrijalva/jwt-go"
)

const (
	RoleAttendee  = "attendee"
	RoleOrganizer = "organizer"
)

type contextKey string

const identityKey contextKey = "ventro-identity"

// Claims is the identity the authentication collaborator vouches for.
type Claims struct {
	UserID int64  `json:"user_id"`
	Role   string `json:"role"`
	Name   string `json:"name"`
	Email  string `json:"email"`
	jwt.StandardClaims
}

// NewToken signs an identity token. Used by tests and by operator tooling;
// the production tokens come from the auth service with the shared secret.
func NewToken(secret string, claims Claims, ttl time.Duration) (string, error) {
	claims.IssuedAt = time.Now().UTC().Unix()
	claims.ExpiresAt = time.Now().UTC().Add(ttl).Unix()

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	if err != nil {
		return "", fmt.Errorf("newToken: error signing token: %w", err)
	}
	return signed, nil
}

// Verify parses and validates a bearer token and returns its claims.
func Verify(secret, tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("verify: unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil {
		return nil, fmt.Errorf("verify: error parsing token: %w", err)
	}

	if !token.Valid {
		return nil, fmt.Errorf("verify: token is not valid")
	}

	if claims.UserID <= 0 {
		return nil, fmt.Errorf("verify: token carries no user id")
	}

	return claims, nil
}

func SetIdentity(ctx context.Context, claims *Claims) context.Context {
	return context.WithValue(ctx, identityKey, claims)
}

func Identity(ctx context.Context) (*Claims, bool) {
	claims, ok := ctx.Value(identityKey).(*Claims)
	return claims, ok && claims != nil
}
