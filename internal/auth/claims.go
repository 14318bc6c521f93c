package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/mitchellh/mapstructure"
)

// Role is the closed set of application roles. Any value outside this set
// carries zero privilege: the policy table has no rows for it.
type Role string

const (
	RoleAdmin  Role = "ADMIN"
	RoleSeller Role = "SELLER"
)

// Known reports whether the role belongs to the closed set.
func (r Role) Known() bool {
	return r == RoleAdmin || r == RoleSeller
}

// Claims is the identity payload embedded in a session token.
//
// Invariant: Claims are only produced by TokenCodec.Verify (from a
// presented artifact) or assembled from a fresh database snapshot before
// TokenCodec.Sign. No other code path may synthesize them.
type Claims struct {
	// UserID is the stable user identifier. Required, non-empty.
	UserID string
	// Email is informational only and never participates in access decisions.
	Email string
	// Role drives the RBAC policy table lookup.
	Role Role
	// OrganizationID is nil until the user completes onboarding.
	OrganizationID *string
	// StoreID scopes the user to a store when set. Propagated, never checked.
	StoreID *string
	// IssuedAt and ExpiresAt are stamped by Sign from the fixed session TTL.
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// OnboardingComplete reports whether the user carries an organization
// assignment. An empty string counts as absent.
func (c *Claims) OnboardingComplete() bool {
	return c.OrganizationID != nil && *c.OrganizationID != ""
}

// wireClaims mirrors the JWT payload field names. Decoding through
// mapstructure rejects wrong-typed values instead of silently producing
// partially populated claims.
type wireClaims struct {
	UserID         string  `mapstructure:"userId"`
	Email          string  `mapstructure:"email"`
	Role           string  `mapstructure:"role"`
	OrganizationID *string `mapstructure:"organizationId"`
	StoreID        *string `mapstructure:"storeId"`
}

// claimsFromToken converts a verified JWT payload into Claims, enforcing
// the claims schema. Any structural problem maps to ErrTokenMalformed.
func claimsFromToken(mc jwt.MapClaims) (*Claims, error) {
	var wire wireClaims
	if err := mapstructure.Decode(map[string]interface{}(mc), &wire); err != nil {
		return nil, fmt.Errorf("%w: decode claims: %v", ErrTokenMalformed, err)
	}

	if wire.UserID == "" {
		return nil, fmt.Errorf("%w: missing userId claim", ErrTokenMalformed)
	}
	if wire.Role == "" {
		return nil, fmt.Errorf("%w: missing role claim", ErrTokenMalformed)
	}

	exp, err := mc.GetExpirationTime()
	if err != nil || exp == nil {
		return nil, fmt.Errorf("%w: missing or invalid exp claim", ErrTokenMalformed)
	}
	iat, err := mc.GetIssuedAt()
	if err != nil || iat == nil {
		return nil, fmt.Errorf("%w: missing or invalid iat claim", ErrTokenMalformed)
	}

	return &Claims{
		UserID:         wire.UserID,
		Email:          wire.Email,
		Role:           Role(wire.Role),
		OrganizationID: wire.OrganizationID,
		StoreID:        wire.StoreID,
		IssuedAt:       iat.Time,
		ExpiresAt:      exp.Time,
	}, nil
}
