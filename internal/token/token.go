// Package token decodes bearer-token payloads for display identity.
//
// This is not an authorization check. No signature or expiry validation is
// performed here; authorization is enforced server-side on every request
// via the Authorization header. The decoded claims are used only to derive
// the identity shown to the user and the user ID embedded in task URLs.
package token

import (
	"errors"

	"github.com/golang-jwt/jwt/v5"
)

// ErrUndecodable is returned for any token that cannot be parsed:
// empty input, wrong segment count, invalid base64, invalid JSON payload.
var ErrUndecodable = errors.New("token not decodable")

// Claims are the payload fields the client cares about.
type Claims struct {
	Subject string
	Email   string
}

// Identity is the signed-in user as derived from a token.
// It is constructed here and nowhere else.
type Identity struct {
	ID    string
	Email string
	Token string
}

type payload struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

// Decode parses the payload segment of a three-segment bearer token.
// All malformed input maps to ErrUndecodable; Decode never panics.
func Decode(raw string) (Claims, error) {
	if raw == "" {
		return Claims{}, ErrUndecodable
	}

	var p payload
	// ParseUnverified splits the segments and decodes the payload without
	// checking the signature, which is exactly the contract here.
	if _, _, err := jwt.NewParser().ParseUnverified(raw, &p); err != nil {
		return Claims{}, ErrUndecodable
	}

	return Claims{Subject: p.Subject, Email: p.Email}, nil
}

// IdentityFromToken derives an Identity from a candidate token.
// ok is false when the token is undecodable or carries no subject;
// callers treat the owner as unauthenticated in that case.
func IdentityFromToken(raw string) (Identity, bool) {
	claims, err := Decode(raw)
	if err != nil || claims.Subject == "" {
		return Identity{}, false
	}
	return Identity{
		ID:    claims.Subject,
		Email: claims.Email,
		Token: raw,
	}, true
}
