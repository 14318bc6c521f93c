package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// SessionTTL is the fixed lifetime of a session token. Tokens are
// self-contained: there is no server-side session row to extend, so the
// only way to renew a session is to mint a new token.
const SessionTTL = 7 * 24 * time.Hour

// TokenCodec signs and verifies session tokens with a single shared
// HS256 secret. Both operations are pure functions of their inputs; the
// codec holds no mutable state and is safe for concurrent use.
type TokenCodec struct {
	secret []byte
	now    func() time.Time
}

// NewTokenCodec builds a codec for the given secret. An empty secret is a
// configuration error and fails construction.
func NewTokenCodec(secret string) (*TokenCodec, error) {
	if secret == "" {
		return nil, ErrMissingSecret
	}
	return &TokenCodec{
		secret: []byte(secret),
		now:    time.Now,
	}, nil
}

// Sign produces a session token for the given claims, stamping IssuedAt
// and ExpiresAt from SessionTTL relative to the current time. The input
// claims must carry a user ID and a role; timestamps on the input are
// ignored.
func (c *TokenCodec) Sign(claims Claims) (string, error) {
	if len(c.secret) == 0 {
		return "", ErrMissingSecret
	}
	if claims.UserID == "" {
		return "", fmt.Errorf("sign session token: missing user ID")
	}
	if claims.Role == "" {
		return "", fmt.Errorf("sign session token: missing role")
	}

	now := c.now()
	payload := jwt.MapClaims{
		"userId": claims.UserID,
		"email":  claims.Email,
		"role":   string(claims.Role),
		"iat":    jwt.NewNumericDate(now),
		"exp":    jwt.NewNumericDate(now.Add(SessionTTL)),
	}
	// Optional identifiers are omitted rather than written as null so the
	// payload reads the same before and after onboarding.
	if claims.OrganizationID != nil && *claims.OrganizationID != "" {
		payload["organizationId"] = *claims.OrganizationID
	}
	if claims.StoreID != nil && *claims.StoreID != "" {
		payload["storeId"] = *claims.StoreID
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, payload).SignedString(c.secret)
	if err != nil {
		return "", fmt.Errorf("sign session token: %w", err)
	}
	return signed, nil
}

// Verify checks structural validity, signature authenticity and expiry of
// a presented artifact at the given instant, then decodes the claims
// through the schema check. Failures map onto the sentinel taxonomy in
// errors.go; callers treat them all the same but log them distinctly.
func (c *TokenCodec) Verify(artifact string, now time.Time) (*Claims, error) {
	if len(c.secret) == 0 {
		return nil, ErrMissingSecret
	}

	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(func() time.Time { return now }),
	)

	mc := jwt.MapClaims{}
	token, err := parser.ParseWithClaims(artifact, mc, func(t *jwt.Token) (interface{}, error) {
		return c.secret, nil
	})
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenExpired):
			return nil, fmt.Errorf("%w: %v", ErrTokenExpired, err)
		case errors.Is(err, jwt.ErrTokenSignatureInvalid):
			return nil, fmt.Errorf("%w: %v", ErrSignatureInvalid, err)
		default:
			return nil, fmt.Errorf("%w: %v", ErrTokenMalformed, err)
		}
	}
	if !token.Valid {
		return nil, fmt.Errorf("%w: token failed validation", ErrTokenMalformed)
	}

	return claimsFromToken(mc)
}
