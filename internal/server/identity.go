package server

import (
	"net/http"

	"github.com/EliabLM/pos-system-api/internal/auth"
)

// organizationScope extracts the verified identity and its organization
// for handlers that operate on org-scoped data. It writes the error
// response itself and returns ok=false when the request cannot proceed.
//
// The gateway admits authenticated pre-onboarding users to API routes
// (only dashboard pages are onboarding-gated), so the missing-org case
// is reachable and must be handled here.
func organizationScope(w http.ResponseWriter, r *http.Request) (*auth.Claims, string, bool) {
	claims, ok := auth.IdentityFromContext(r.Context())
	if !ok {
		http.Error(w, "unauthenticated", http.StatusUnauthorized)
		return nil, "", false
	}
	if !claims.OnboardingComplete() {
		http.Error(w, "Onboarding incomplete", http.StatusForbidden)
		return nil, "", false
	}
	return claims, *claims.OrganizationID, true
}
