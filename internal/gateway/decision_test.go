package gateway

import (
	"net/url"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/EliabLM/pos-system-api/internal/auth"
)

const testSecret = "gateway-test-secret"

func newTestEngine(t *testing.T) *Engine {
	t.Helper()
	codec, err := auth.NewTokenCodec(testSecret)
	require.NoError(t, err)
	policy, err := NewPolicy()
	require.NoError(t, err)
	return NewEngine(codec, policy, "")
}

func signTestToken(t *testing.T, role auth.Role, organizationID, storeID *string) string {
	t.Helper()
	codec, err := auth.NewTokenCodec(testSecret)
	require.NoError(t, err)
	artifact, err := codec.Sign(auth.Claims{
		UserID:         "user-123",
		Email:          "ana@store.test",
		Role:           role,
		OrganizationID: organizationID,
		StoreID:        storeID,
	})
	require.NoError(t, err)
	return artifact
}

func strPtr(s string) *string { return &s }

// redirectTarget extracts the "redirect" query parameter from a login
// redirect location.
func redirectTarget(t *testing.T, location string) string {
	t.Helper()
	u, err := url.Parse(location)
	require.NoError(t, err)
	return u.Query().Get(RedirectQueryParam)
}

func TestEvaluate_PublicAlwaysAllows(t *testing.T) {
	engine := newTestEngine(t)
	now := time.Now()

	artifacts := map[string]string{
		"no cookie":      "",
		"garbage cookie": "not-a-token",
		"valid cookie":   signTestToken(t, auth.RoleAdmin, strPtr("org-1"), nil),
	}

	for name, artifact := range artifacts {
		t.Run(name, func(t *testing.T) {
			for _, path := range []string{"/auth/login", "/api/auth/register", "/auth/reset-password/tok"} {
				d := engine.Evaluate(path, artifact, now)
				assert.Equal(t, ActionAllow, d.Action, path)
				assert.Nil(t, d.Claims, path)
				assert.False(t, d.ClearCookie, path)
			}
		})
	}
}

func TestEvaluate_UnclassifiedPassesThrough(t *testing.T) {
	engine := newTestEngine(t)

	d := engine.Evaluate("/health", "", time.Now())
	assert.Equal(t, ActionAllow, d.Action)
	assert.Nil(t, d.Claims)

	// Even a garbage cookie is ignored on ungated paths.
	d = engine.Evaluate("/about", "garbage", time.Now())
	assert.Equal(t, ActionAllow, d.Action)
	assert.False(t, d.ClearCookie)
}

func TestEvaluate_NoToken_RedirectsToLoginPreservingPath(t *testing.T) {
	engine := newTestEngine(t)

	for _, path := range []string{"/", "/dashboard", "/dashboard/sales/new", "/onboarding", "/api/auth/me"} {
		d := engine.Evaluate(path, "", time.Now())
		assert.Equal(t, ActionRedirectToLogin, d.Action, path)
		assert.Equal(t, path, redirectTarget(t, d.Location), path)
		assert.False(t, d.ClearCookie, "no cookie presented, nothing to clear")
		assert.Nil(t, d.Claims)
	}
}

func TestEvaluate_ForeignSecret_RedirectsAndClearsCookie(t *testing.T) {
	foreign, err := auth.NewTokenCodec("some-other-secret")
	require.NoError(t, err)
	artifact, err := foreign.Sign(auth.Claims{UserID: "user-123", Role: auth.RoleAdmin})
	require.NoError(t, err)

	engine := newTestEngine(t)
	d := engine.Evaluate("/dashboard", artifact, time.Now())

	assert.Equal(t, ActionRedirectToLogin, d.Action)
	assert.True(t, d.ClearCookie)
	assert.Equal(t, "/dashboard", redirectTarget(t, d.Location))
	assert.Equal(t, ReasonBadSignature, d.Reason)
}

func TestEvaluate_ExpiredToken_RedirectsAndClearsCookie(t *testing.T) {
	now := time.Now()
	expired, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"userId": "user-123",
		"email":  "ana@store.test",
		"role":   "ADMIN",
		"iat":    jwt.NewNumericDate(now.Add(-8 * 24 * time.Hour)),
		"exp":    jwt.NewNumericDate(now.Add(-time.Minute)),
	}).SignedString([]byte(testSecret))
	require.NoError(t, err)

	engine := newTestEngine(t)
	d := engine.Evaluate("/dashboard", expired, now)

	assert.Equal(t, ActionRedirectToLogin, d.Action)
	assert.True(t, d.ClearCookie)
	assert.Equal(t, ReasonTokenExpired, d.Reason)
}

func TestEvaluate_MalformedToken_RedirectsAndClearsCookie(t *testing.T) {
	engine := newTestEngine(t)
	d := engine.Evaluate("/api/products", "definitely-not-a-jwt", time.Now())

	assert.Equal(t, ActionRedirectToLogin, d.Action)
	assert.True(t, d.ClearCookie)
	assert.Equal(t, ReasonTokenMalformed, d.Reason)
	assert.Equal(t, "/api/products", redirectTarget(t, d.Location))
}

// Scenario coverage: the five canonical flows through the decision table.

func TestEvaluate_SellerDeniedOnProducts(t *testing.T) {
	engine := newTestEngine(t)
	artifact := signTestToken(t, auth.RoleSeller, strPtr("org-1"), nil)

	d := engine.Evaluate("/dashboard/products", artifact, time.Now())

	assert.Equal(t, ActionRedirectToUnauthorized, d.Action)
	assert.Equal(t, DefaultUnauthorizedPath, d.Location)
	assert.False(t, d.ClearCookie, "authenticated user keeps the session")
	assert.Equal(t, ReasonPolicyDenied, d.Reason)
}

func TestEvaluate_AdminWithoutOrganization_SentToOnboarding(t *testing.T) {
	engine := newTestEngine(t)
	artifact := signTestToken(t, auth.RoleAdmin, nil, nil)

	d := engine.Evaluate("/dashboard", artifact, time.Now())

	assert.Equal(t, ActionRedirectToOnboarding, d.Action)
	assert.Equal(t, OnboardingPath, d.Location)
	assert.False(t, d.ClearCookie)
}

func TestEvaluate_OnboardedUser_CannotRevisitOnboarding(t *testing.T) {
	engine := newTestEngine(t)
	artifact := signTestToken(t, auth.RoleAdmin, strPtr("org-1"), nil)

	d := engine.Evaluate("/onboarding", artifact, time.Now())

	assert.Equal(t, ActionRedirectToDashboard, d.Action)
	assert.Equal(t, DashboardPath, d.Location)
}

func TestEvaluate_AdminOnSales_AllowedWithIdentity(t *testing.T) {
	engine := newTestEngine(t)
	artifact := signTestToken(t, auth.RoleAdmin, strPtr("org-1"), strPtr("store-9"))

	d := engine.Evaluate("/dashboard/sales", artifact, time.Now())

	assert.Equal(t, ActionAllow, d.Action)
	require.NotNil(t, d.Claims)
	assert.Equal(t, "user-123", d.Claims.UserID)
	require.NotNil(t, d.Claims.OrganizationID)
	assert.Equal(t, "org-1", *d.Claims.OrganizationID)
	require.NotNil(t, d.Claims.StoreID)
	assert.Equal(t, "store-9", *d.Claims.StoreID)
	assert.Empty(t, d.Location)
}

func TestEvaluate_NoCookieOnDashboard_LoginRedirectCarriesPath(t *testing.T) {
	engine := newTestEngine(t)

	d := engine.Evaluate("/dashboard", "", time.Now())

	assert.Equal(t, ActionRedirectToLogin, d.Action)
	assert.Equal(t, LoginPath+"?redirect=%2Fdashboard", d.Location)
}

func TestEvaluate_OnboardingOrderPrecedesPolicy(t *testing.T) {
	engine := newTestEngine(t)

	// A SELLER without an organization heading to a page their role could
	// never access is still sent to onboarding first.
	artifact := signTestToken(t, auth.RoleSeller, nil, nil)
	d := engine.Evaluate("/dashboard/products", artifact, time.Now())

	assert.Equal(t, ActionRedirectToOnboarding, d.Action)
}

func TestEvaluate_UnknownRole_DeniedOnDashboard(t *testing.T) {
	engine := newTestEngine(t)
	artifact := signTestToken(t, auth.Role("INTERN"), strPtr("org-1"), nil)

	d := engine.Evaluate("/dashboard", artifact, time.Now())

	assert.Equal(t, ActionRedirectToUnauthorized, d.Action)
}

func TestEvaluate_RootAndAPIsSkipDashboardGates(t *testing.T) {
	engine := newTestEngine(t)

	// The bare root only requires authentication, even pre-onboarding.
	noOrg := signTestToken(t, auth.RoleSeller, nil, nil)
	d := engine.Evaluate("/", noOrg, time.Now())
	assert.Equal(t, ActionAllow, d.Action)
	require.NotNil(t, d.Claims)

	// Protected APIs carry no dashboard-only gates either: the page policy
	// tables do not apply outside the dashboard subtree.
	d = engine.Evaluate("/api/products", signTestToken(t, auth.RoleSeller, strPtr("org-1"), nil), time.Now())
	assert.Equal(t, ActionAllow, d.Action)
}

func TestEvaluate_Idempotent(t *testing.T) {
	engine := newTestEngine(t)
	now := time.Now()

	cases := []struct {
		path     string
		artifact string
	}{
		{"/dashboard", ""},
		{"/dashboard", "garbage"},
		{"/dashboard/sales", signTestToken(t, auth.RoleAdmin, strPtr("org-1"), nil)},
		{"/dashboard/products", signTestToken(t, auth.RoleSeller, strPtr("org-1"), nil)},
		{"/auth/login", ""},
	}

	for _, c := range cases {
		first := engine.Evaluate(c.path, c.artifact, now)
		second := engine.Evaluate(c.path, c.artifact, now)
		assert.Equal(t, first, second, c.path)
	}
}

func TestEvaluate_UnauthorizedPathOverride(t *testing.T) {
	codec, err := auth.NewTokenCodec(testSecret)
	require.NoError(t, err)
	policy, err := NewPolicy()
	require.NoError(t, err)
	engine := NewEngine(codec, policy, "/dashboard/denied")

	artifact := signTestToken(t, auth.RoleSeller, strPtr("org-1"), nil)
	d := engine.Evaluate("/dashboard/products", artifact, time.Now())

	assert.Equal(t, ActionRedirectToUnauthorized, d.Action)
	assert.Equal(t, "/dashboard/denied", d.Location)
}
