package server

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"net/mail"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/EliabLM/pos-system-api/internal/auth"
	"github.com/EliabLM/pos-system-api/internal/db/models"
	"github.com/EliabLM/pos-system-api/internal/repository"
	"github.com/EliabLM/pos-system-api/internal/services/session"
	"github.com/EliabLM/pos-system-api/internal/telemetry"
)

// bcryptCost is deliberately above the library default; login is rare
// enough that the extra hashing time is irrelevant.
const bcryptCost = 12

// RegisterRequest carries the self-registration payload.
type RegisterRequest struct {
	Email     string `json:"email"`
	Password  string `json:"password"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
}

// LoginRequest carries login credentials.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// UserResponse represents user data in API responses. The password hash
// never leaves the server.
type UserResponse struct {
	ID             string  `json:"id"`
	Email          string  `json:"email"`
	FirstName      string  `json:"firstName"`
	LastName       string  `json:"lastName"`
	Role           string  `json:"role"`
	OrganizationID *string `json:"organizationId"`
	StoreID        *string `json:"storeId"`
}

// LoginResponse represents the response from POST /api/auth/login.
type LoginResponse struct {
	User      UserResponse `json:"user"`
	ExpiresAt int64        `json:"expiresAt"`
}

// IdentityResponse represents the response from GET /api/auth/me. It is
// built from the verified token claims alone; no database round trip.
type IdentityResponse struct {
	UserID         string  `json:"userId"`
	Email          string  `json:"email"`
	Role           string  `json:"role"`
	OrganizationID *string `json:"organizationId,omitempty"`
	StoreID        *string `json:"storeId,omitempty"`
	ExpiresAt      int64   `json:"expiresAt"`
}

func newUserResponse(user *models.User) UserResponse {
	return UserResponse{
		ID:             user.ID,
		Email:          user.Email,
		FirstName:      user.FirstName,
		LastName:       user.LastName,
		Role:           user.Role,
		OrganizationID: user.OrganizationID,
		StoreID:        user.StoreID,
	}
}

// HandleRegister creates a new user account. Fresh accounts always start
// as ADMIN with no organization: the registrant owns the workspace they
// are about to onboard, and sellers are created later by that admin.
func HandleRegister(users repository.UserRepository) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		var req RegisterRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "Invalid request body", http.StatusBadRequest)
			return
		}

		if _, err := mail.ParseAddress(req.Email); err != nil {
			http.Error(w, "Invalid email address", http.StatusBadRequest)
			return
		}
		if len(req.Password) < 8 {
			http.Error(w, "Password must be at least 8 characters", http.StatusBadRequest)
			return
		}

		hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcryptCost)
		if err != nil {
			log.Printf("register: failed to hash password: %v", err)
			http.Error(w, "Registration failed", http.StatusInternalServerError)
			return
		}

		user := &models.User{
			Email:        req.Email,
			PasswordHash: string(hashedPassword),
			FirstName:    req.FirstName,
			LastName:     req.LastName,
			Role:         string(auth.RoleAdmin),
		}
		if err := users.Create(ctx, user); err != nil {
			if errors.Is(err, repository.ErrDuplicate) {
				http.Error(w, "Email already registered", http.StatusConflict)
				return
			}
			log.Printf("register: failed to create user (email=%s): %v", req.Email, err)
			http.Error(w, "Registration failed", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		if err := json.NewEncoder(w).Encode(newUserResponse(user)); err != nil {
			log.Printf("register: failed to encode response: %v", err)
		}
	}
}

// HandleLogin authenticates email/password credentials and establishes a
// session cookie. All credential failures collapse to the same 401 so a
// caller cannot probe which accounts exist or are disabled.
func HandleLogin(users repository.UserRepository, sessions *session.Service, secureCookies bool, metrics *telemetry.AuthMetrics) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		start := time.Now()
		success := false
		defer func() {
			if metrics != nil {
				metrics.RecordAuth(ctx, "password", success, float64(time.Since(start).Microseconds())/1000.0)
			}
		}()

		var req LoginRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "Invalid request body", http.StatusBadRequest)
			return
		}
		if req.Email == "" || req.Password == "" {
			http.Error(w, "Missing email or password", http.StatusBadRequest)
			return
		}

		user, err := users.GetByEmail(ctx, req.Email)
		if err != nil {
			http.Error(w, "Invalid credentials", http.StatusUnauthorized)
			return
		}
		if err := verifyPasswordHash(user.PasswordHash, req.Password); err != nil {
			http.Error(w, "Invalid credentials", http.StatusUnauthorized)
			return
		}

		// Refresh re-reads the snapshot and rejects inactive users, so a
		// deactivation between the lookup above and here still loses.
		token, claims, err := sessions.Refresh(ctx, user.ID)
		if err != nil {
			if errors.Is(err, session.ErrSnapshotNotFound) {
				http.Error(w, "Invalid credentials", http.StatusUnauthorized)
				return
			}
			log.Printf("login: failed to mint session (user_id=%s): %v", user.ID, err)
			http.Error(w, "Login failed", http.StatusInternalServerError)
			return
		}

		if err := users.UpdateLastLogin(ctx, user.ID); err != nil {
			log.Printf("warning: failed to update last login (user_id=%s): %v", user.ID, err)
		}

		http.SetCookie(w, auth.NewSessionCookie(token, secureCookies))

		success = true
		w.Header().Set("Content-Type", "application/json")
		resp := LoginResponse{
			User:      newUserResponse(user),
			ExpiresAt: claims.ExpiresAt.UnixMilli(),
		}
		if err := json.NewEncoder(w).Encode(resp); err != nil {
			log.Printf("login: failed to encode response: %v", err)
		}
	}
}

// HandleLogout deletes the session cookie. Tokens are self-contained, so
// there is no server-side session row to revoke; the cookie deletion is
// the whole logout.
func HandleLogout(secureCookies bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if _, ok := auth.IdentityFromContext(r.Context()); !ok {
			http.Error(w, "No active session", http.StatusUnauthorized)
			return
		}

		http.SetCookie(w, auth.ExpiredSessionCookie(secureCookies))

		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("Logged out"))
	}
}

// HandleMe returns the authenticated identity as the gateway verified it.
func HandleMe() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := auth.IdentityFromContext(r.Context())
		if !ok {
			http.Error(w, "unauthenticated", http.StatusUnauthorized)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		resp := IdentityResponse{
			UserID:         claims.UserID,
			Email:          claims.Email,
			Role:           string(claims.Role),
			OrganizationID: claims.OrganizationID,
			StoreID:        claims.StoreID,
			ExpiresAt:      claims.ExpiresAt.UnixMilli(),
		}
		if err := json.NewEncoder(w).Encode(resp); err != nil {
			http.Error(w, "Failed to encode response", http.StatusInternalServerError)
		}
	}
}

// verifyPasswordHash checks if the provided password matches the bcrypt hash
func verifyPasswordHash(hash, password string) error {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
}
