package auth

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRole_Known(t *testing.T) {
	assert.True(t, RoleAdmin.Known())
	assert.True(t, RoleSeller.Known())
	assert.False(t, Role("SUPERADMIN").Known())
	assert.False(t, Role("admin").Known())
	assert.False(t, Role("").Known())
}

func TestClaims_OnboardingComplete(t *testing.T) {
	tests := []struct {
		name string
		org  *string
		want bool
	}{
		{"nil organization", nil, false},
		{"empty organization", strPtr(""), false},
		{"assigned organization", strPtr("org-1"), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := &Claims{UserID: "user-123", Role: RoleAdmin, OrganizationID: tt.org}
			assert.Equal(t, tt.want, c.OnboardingComplete())
		})
	}
}

func TestIdentityContext(t *testing.T) {
	claims := &Claims{UserID: "user-123", Role: RoleSeller}
	ctx := WithIdentity(context.Background(), claims)

	got, ok := IdentityFromContext(ctx)
	assert.True(t, ok)
	assert.Equal(t, claims, got)

	_, ok = IdentityFromContext(context.Background())
	assert.False(t, ok)
}
