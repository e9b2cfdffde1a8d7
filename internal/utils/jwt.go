// Package utils provides helpers for issuing access tokens.
package utils

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// AccessToken is a signed JWT with its expiry.
type AccessToken struct {
	Token string    `json:"token"`
	Exp   time.Time `json:"exp"`
}

// NewAccessToken signs an HS256 JWT whose subject is userID.  Chat users are
// identified by the same ID in request bodies, so the middleware can match
// the two.  role is "USER" for chat clients and "ADMIN" for maintenance.
func NewAccessToken(secret, userID, role string, ttl time.Duration) (AccessToken, error) {
	now := time.Now().UTC()
	exp := now.Add(ttl)
	claims := jwt.MapClaims{
		"sub":  userID,
		"role": role,
		"exp":  exp.Unix(),
		"iat":  now.Unix(),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	if err != nil {
		return AccessToken{}, err
	}
	return AccessToken{Token: signed, Exp: exp}, nil
}
