// Package token signs and verifies the bearer tokens that carry an
// authenticated principal between requests.
package token

import (
	"fmt"

	"github.com/golang-jwt/jwt/v5"

	"github.com/staffdir/staffdir/internal/platform/httpx"
)

// ErrInvalidToken indicates a token whose signature, structure, or claims
// could not be verified.
var ErrInvalidToken = fmt.Errorf("token: %w", httpx.ErrInvalidToken)

// Claims is the payload carried inside a signed token.
type Claims struct {
	UserID int64   `json:"id"`
	Groups []int64 `json:"groups"`
	jwt.RegisteredClaims
}

// Codec signs and verifies bearer tokens with a symmetric secret. The secret
// is loaded from configuration once at startup and injected here; the codec
// never mutates it.
type Codec struct {
	secret []byte
}

// NewCodec constructs a Codec around the given signing secret.
func NewCodec(secret []byte) *Codec {
	return &Codec{secret: secret}
}

// Issue serializes the account identity and group memberships as HS256-signed
// claims. No expiry claim is set: issued tokens stay valid until the signing
// secret changes. Known limitation of the token scheme, kept deliberately.
func (c *Codec) Issue(account Account) (string, error) {
	claims := Claims{
		UserID: account.ID,
		Groups: account.Groups,
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(c.secret)
	if err != nil {
		return "", fmt.Errorf("token: sign: %w", err)
	}
	return signed, nil
}

// Verify validates the signature and structure of a token and returns its
// claims. Expiry is checked only when an exp claim is present, which Issue
// never sets.
func (c *Codec) Verify(raw string) (*Claims, error) {
	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %q", t.Method.Alg())
		}
		return c.secret, nil
	})
	if err != nil || !parsed.Valid {
		return nil, ErrInvalidToken
	}
	if claims.UserID == 0 {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
