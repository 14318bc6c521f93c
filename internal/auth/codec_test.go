package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret-key-0123456789"

func strPtr(s string) *string { return &s }

// signRaw builds a token outside the codec so tests can produce payloads
// the codec itself refuses to sign.
func signRaw(t *testing.T, secret string, payload jwt.MapClaims) string {
	t.Helper()
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, payload).SignedString([]byte(secret))
	require.NoError(t, err)
	return signed
}

func TestNewTokenCodec_EmptySecret(t *testing.T) {
	codec, err := NewTokenCodec("")
	require.ErrorIs(t, err, ErrMissingSecret)
	assert.Nil(t, codec)
}

func TestTokenCodec_SignVerifyRoundtrip(t *testing.T) {
	codec, err := NewTokenCodec(testSecret)
	require.NoError(t, err)

	in := Claims{
		UserID:         "user-123",
		Email:          "ana@store.test",
		Role:           RoleAdmin,
		OrganizationID: strPtr("org-1"),
		StoreID:        strPtr("store-9"),
	}

	artifact, err := codec.Sign(in)
	require.NoError(t, err)
	require.NotEmpty(t, artifact)

	out, err := codec.Verify(artifact, time.Now())
	require.NoError(t, err)

	assert.Equal(t, "user-123", out.UserID)
	assert.Equal(t, "ana@store.test", out.Email)
	assert.Equal(t, RoleAdmin, out.Role)
	require.NotNil(t, out.OrganizationID)
	assert.Equal(t, "org-1", *out.OrganizationID)
	require.NotNil(t, out.StoreID)
	assert.Equal(t, "store-9", *out.StoreID)

	assert.Equal(t, SessionTTL, out.ExpiresAt.Sub(out.IssuedAt))
	assert.WithinDuration(t, time.Now().Add(SessionTTL), out.ExpiresAt, 5*time.Second)
}

func TestTokenCodec_Sign_OptionalIdentifiersOmitted(t *testing.T) {
	codec, err := NewTokenCodec(testSecret)
	require.NoError(t, err)

	artifact, err := codec.Sign(Claims{
		UserID: "user-123",
		Email:  "ana@store.test",
		Role:   RoleAdmin,
	})
	require.NoError(t, err)

	out, err := codec.Verify(artifact, time.Now())
	require.NoError(t, err)
	assert.Nil(t, out.OrganizationID)
	assert.Nil(t, out.StoreID)
	assert.False(t, out.OnboardingComplete())
}

func TestTokenCodec_Sign_RequiresIdentity(t *testing.T) {
	codec, err := NewTokenCodec(testSecret)
	require.NoError(t, err)

	_, err = codec.Sign(Claims{Role: RoleAdmin})
	assert.Error(t, err)

	_, err = codec.Sign(Claims{UserID: "user-123"})
	assert.Error(t, err)
}

func TestTokenCodec_Verify_Expired(t *testing.T) {
	now := time.Now()
	artifact := signRaw(t, testSecret, jwt.MapClaims{
		"userId": "user-123",
		"email":  "ana@store.test",
		"role":   "ADMIN",
		"iat":    jwt.NewNumericDate(now.Add(-8 * 24 * time.Hour)),
		"exp":    jwt.NewNumericDate(now.Add(-time.Hour)),
	})

	codec, err := NewTokenCodec(testSecret)
	require.NoError(t, err)

	claims, err := codec.Verify(artifact, now)
	require.ErrorIs(t, err, ErrTokenExpired)
	assert.Nil(t, claims)
}

func TestTokenCodec_Verify_ExpiryBoundary(t *testing.T) {
	codec, err := NewTokenCodec(testSecret)
	require.NoError(t, err)

	artifact, err := codec.Sign(Claims{UserID: "user-123", Role: RoleSeller})
	require.NoError(t, err)

	// Still valid just inside the TTL, invalid just past it.
	_, err = codec.Verify(artifact, time.Now().Add(SessionTTL-time.Minute))
	assert.NoError(t, err)

	_, err = codec.Verify(artifact, time.Now().Add(SessionTTL+time.Minute))
	assert.ErrorIs(t, err, ErrTokenExpired)
}

func TestTokenCodec_Verify_ForeignSecret(t *testing.T) {
	other, err := NewTokenCodec("a-completely-different-secret")
	require.NoError(t, err)
	artifact, err := other.Sign(Claims{UserID: "user-123", Role: RoleAdmin})
	require.NoError(t, err)

	codec, err := NewTokenCodec(testSecret)
	require.NoError(t, err)

	claims, err := codec.Verify(artifact, time.Now())
	require.ErrorIs(t, err, ErrSignatureInvalid)
	assert.Nil(t, claims)
}

func TestTokenCodec_Verify_Malformed(t *testing.T) {
	codec, err := NewTokenCodec(testSecret)
	require.NoError(t, err)

	now := time.Now()
	iat := jwt.NewNumericDate(now)
	exp := jwt.NewNumericDate(now.Add(time.Hour))

	tests := []struct {
		name     string
		artifact string
	}{
		{"empty string", ""},
		{"not a token", "definitely-not-a-jwt"},
		{"truncated", "eyJhbGciOiJIUzI1NiJ9"},
		{"missing userId", signRaw(t, testSecret, jwt.MapClaims{
			"email": "ana@store.test", "role": "ADMIN", "iat": iat, "exp": exp,
		})},
		{"empty userId", signRaw(t, testSecret, jwt.MapClaims{
			"userId": "", "role": "ADMIN", "iat": iat, "exp": exp,
		})},
		{"missing role", signRaw(t, testSecret, jwt.MapClaims{
			"userId": "user-123", "iat": iat, "exp": exp,
		})},
		{"numeric userId", signRaw(t, testSecret, jwt.MapClaims{
			"userId": 42, "role": "ADMIN", "iat": iat, "exp": exp,
		})},
		{"numeric organizationId", signRaw(t, testSecret, jwt.MapClaims{
			"userId": "user-123", "role": "ADMIN", "organizationId": 7, "iat": iat, "exp": exp,
		})},
		{"missing exp", signRaw(t, testSecret, jwt.MapClaims{
			"userId": "user-123", "role": "ADMIN", "iat": iat,
		})},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			claims, err := codec.Verify(tt.artifact, now)
			require.ErrorIs(t, err, ErrTokenMalformed)
			assert.Nil(t, claims)
		})
	}
}

func TestTokenCodec_Verify_RejectsUnexpectedAlgorithms(t *testing.T) {
	codec, err := NewTokenCodec(testSecret)
	require.NoError(t, err)

	now := time.Now()
	payload := jwt.MapClaims{
		"userId": "user-123",
		"role":   "ADMIN",
		"iat":    jwt.NewNumericDate(now),
		"exp":    jwt.NewNumericDate(now.Add(time.Hour)),
	}

	// The parser reports a disallowed algorithm as a signature problem
	unsigned, err := jwt.NewWithClaims(jwt.SigningMethodNone, payload).
		SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = codec.Verify(unsigned, now)
	assert.ErrorIs(t, err, ErrSignatureInvalid)

	hs384, err := jwt.NewWithClaims(jwt.SigningMethodHS384, payload).
		SignedString([]byte(testSecret))
	require.NoError(t, err)

	_, err = codec.Verify(hs384, now)
	assert.ErrorIs(t, err, ErrSignatureInvalid)
}

func TestTokenCodec_Verify_Deterministic(t *testing.T) {
	codec, err := NewTokenCodec(testSecret)
	require.NoError(t, err)

	artifact, err := codec.Sign(Claims{
		UserID:         "user-123",
		Role:           RoleSeller,
		OrganizationID: strPtr("org-1"),
	})
	require.NoError(t, err)

	now := time.Now()
	first, err := codec.Verify(artifact, now)
	require.NoError(t, err)
	second, err := codec.Verify(artifact, now)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}
