package session

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Claims is what the client can read from a JWT session token.
// The signature is not verified: the service is the authority, this is
// informational only.
type Claims struct {
	Subject   string
	ExpiresAt time.Time // zero when the token carries no exp
}

// ErrOpaqueToken is returned when the token is not a JWT.
var ErrOpaqueToken = errors.New("token is not a JWT")

// TokenClaims parses token without verifying it.
func TokenClaims(token string) (Claims, error) {
	parsed, _, err := jwt.NewParser().ParseUnverified(token, jwt.MapClaims{})
	if err != nil {
		return Claims{}, ErrOpaqueToken
	}
	var c Claims
	if sub, err := parsed.Claims.GetSubject(); err == nil {
		c.Subject = sub
	}
	if exp, err := parsed.Claims.GetExpirationTime(); err == nil && exp != nil {
		c.ExpiresAt = exp.Time
	}
	return c, nil
}

// Expired reports whether the claims carry an expiry before now.
func (c Claims) Expired(now time.Time) bool {
	return !c.ExpiresAt.IsZero() && c.ExpiresAt.Before(now)
}
