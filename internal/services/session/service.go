package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/EliabLM/pos-system-api/internal/auth"
	"github.com/EliabLM/pos-system-api/internal/repository"
	"github.com/EliabLM/pos-system-api/internal/telemetry"
)

// ErrSnapshotNotFound is returned when no active user exists for the
// requested ID. Deactivated accounts are indistinguishable from missing
// ones on purpose: neither may receive a fresh session.
var ErrSnapshotNotFound = errors.New("user snapshot not found")

// Service mints session artifacts. Claims are built exclusively from the
// authoritative database snapshot, never from anything a client sent:
// a stale or tampered token can therefore never launder its payload into
// a fresh one. Only trusted application flows (login, onboarding
// completion) hold a reference to this service; the request gateway does
// not.
type Service struct {
	users repository.UserRepository
	codec *auth.TokenCodec
}

// NewService constructs a session service.
func NewService(users repository.UserRepository, codec *auth.TokenCodec) *Service {
	return &Service{users: users, codec: codec}
}

// Refresh loads the user's current snapshot and signs a new artifact
// with a full 7-day lifetime. The returned claims are decoded back out
// of the signed artifact, so they carry the stamped timestamps.
func (s *Service) Refresh(ctx context.Context, userID string) (string, *auth.Claims, error) {
	ctx, span := telemetry.StartSpan(ctx, "posapi/services/session", "session.Refresh",
		attribute.String(telemetry.AttrUserID, userID),
	)
	defer span.End()

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			telemetry.AddEvent(span, "session.snapshot_missing")
			return "", nil, ErrSnapshotNotFound
		}
		telemetry.RecordError(span, err)
		return "", nil, fmt.Errorf("load user snapshot: %w", err)
	}
	if !user.IsActive {
		telemetry.AddEvent(span, "session.user_inactive")
		return "", nil, ErrSnapshotNotFound
	}

	artifact, err := s.codec.Sign(auth.Claims{
		UserID:         user.ID,
		Email:          user.Email,
		Role:           auth.Role(user.Role),
		OrganizationID: user.OrganizationID,
		StoreID:        user.StoreID,
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return "", nil, fmt.Errorf("sign session token: %w", err)
	}

	claims, err := s.codec.Verify(artifact, time.Now())
	if err != nil {
		telemetry.RecordError(span, err)
		return "", nil, fmt.Errorf("decode freshly signed token: %w", err)
	}

	span.SetAttributes(attribute.String(telemetry.AttrUserRole, user.Role))
	return artifact, claims, nil
}
