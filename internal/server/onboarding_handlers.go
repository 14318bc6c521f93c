package server

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/EliabLM/pos-system-api/internal/auth"
	"github.com/EliabLM/pos-system-api/internal/repository"
	"github.com/EliabLM/pos-system-api/internal/services/onboarding"
	"github.com/EliabLM/pos-system-api/internal/services/session"
)

// OnboardingRequest carries the names for the workspace the user is
// creating.
type OnboardingRequest struct {
	OrganizationName string `json:"organizationName"`
	StoreName        string `json:"storeName"`
}

// OnboardingResponse returns the user after onboarding completed.
type OnboardingResponse struct {
	User UserResponse `json:"user"`
}

// HandleCompleteOnboarding creates the organization and first store,
// binds them to the authenticated user, and rewrites the session cookie
// so the very next request already carries the organization claim.
// Without the rewrite the user would bounce off the dashboard gate until
// their old token expired.
func HandleCompleteOnboarding(svc *onboarding.Service, sessions *session.Service, secureCookies bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		claims, ok := auth.IdentityFromContext(ctx)
		if !ok {
			http.Error(w, "unauthenticated", http.StatusUnauthorized)
			return
		}

		var req OnboardingRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "Invalid request body", http.StatusBadRequest)
			return
		}
		if req.OrganizationName == "" {
			http.Error(w, "organizationName is required", http.StatusBadRequest)
			return
		}
		if req.StoreName == "" {
			http.Error(w, "storeName is required", http.StatusBadRequest)
			return
		}

		user, err := svc.Complete(ctx, claims.UserID, req.OrganizationName, req.StoreName)
		if err != nil {
			switch {
			case errors.Is(err, onboarding.ErrAlreadyOnboarded):
				http.Error(w, "Onboarding already completed", http.StatusConflict)
			case errors.Is(err, repository.ErrNotFound):
				http.Error(w, "User not found", http.StatusNotFound)
			default:
				log.Printf("onboarding: completion failed (user_id=%s): %v", claims.UserID, err)
				http.Error(w, "Onboarding failed", http.StatusInternalServerError)
			}
			return
		}

		token, _, err := sessions.Refresh(ctx, user.ID)
		if err != nil {
			log.Printf("onboarding: failed to refresh session (user_id=%s): %v", user.ID, err)
			http.Error(w, "Onboarding completed but session refresh failed, please log in again", http.StatusInternalServerError)
			return
		}
		http.SetCookie(w, auth.NewSessionCookie(token, secureCookies))

		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(OnboardingResponse{User: newUserResponse(user)}); err != nil {
			log.Printf("onboarding: failed to encode response: %v", err)
		}
	}
}
