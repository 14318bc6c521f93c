package onboarding

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/uptrace/bun"
	"go.opentelemetry.io/otel/attribute"

	"github.com/EliabLM/pos-system-api/internal/db/bunx"
	"github.com/EliabLM/pos-system-api/internal/db/models"
	"github.com/EliabLM/pos-system-api/internal/repository"
	"github.com/EliabLM/pos-system-api/internal/telemetry"
)

// ErrAlreadyOnboarded is returned when the user already belongs to an
// organization. Completion is strictly once per user.
var ErrAlreadyOnboarded = errors.New("user already onboarded")

// Service completes onboarding: it creates the organization and its
// first store and binds both to the user in a single transaction, so a
// half-onboarded user cannot exist.
type Service struct {
	db    *bun.DB
	users repository.UserRepository
}

// NewService constructs an onboarding service.
func NewService(db *bun.DB, users repository.UserRepository) *Service {
	return &Service{db: db, users: users}
}

// Complete creates the organization and store for a user and assigns
// both, returning the updated user snapshot. Callers are expected to
// refresh the session cookie afterwards; until then the user's existing
// token still reads "onboarding incomplete".
func (s *Service) Complete(ctx context.Context, userID, orgName, storeName string) (*models.User, error) {
	ctx, span := telemetry.StartSpan(ctx, "posapi/services/onboarding", "onboarding.Complete",
		attribute.String(telemetry.AttrUserID, userID),
	)
	defer span.End()

	if orgName == "" {
		return nil, fmt.Errorf("organization name is required")
	}
	if storeName == "" {
		return nil, fmt.Errorf("store name is required")
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	if user.Onboarded() {
		telemetry.AddEvent(span, "onboarding.already_complete")
		return nil, ErrAlreadyOnboarded
	}

	now := time.Now()
	org := &models.Organization{
		ID:        bunx.NewID(),
		Name:      orgName,
		IsActive:  true,
		CreatedAt: now,
		UpdatedAt: now,
	}
	store := &models.Store{
		ID:             bunx.NewID(),
		OrganizationID: org.ID,
		Name:           storeName,
		IsActive:       true,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	err = s.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if _, err := tx.NewInsert().Model(org).Exec(ctx); err != nil {
			return fmt.Errorf("create organization: %w", err)
		}
		if _, err := tx.NewInsert().Model(store).Exec(ctx); err != nil {
			return fmt.Errorf("create store: %w", err)
		}

		// The NULL guard loses the race against a concurrent completion
		// instead of attaching a second organization to the user
		result, err := tx.NewUpdate().
			Model((*models.User)(nil)).
			Set("organization_id = ?", org.ID).
			Set("store_id = ?", store.ID).
			Set("updated_at = ?", now).
			Where("id = ?", userID).
			Where("organization_id IS NULL").
			Exec(ctx)
		if err != nil {
			return fmt.Errorf("assign organization: %w", err)
		}

		rowsAffected, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("get rows affected: %w", err)
		}
		if rowsAffected == 0 {
			return ErrAlreadyOnboarded
		}
		return nil
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	span.SetAttributes(
		attribute.String(telemetry.AttrOrganizationID, org.ID),
		attribute.String(telemetry.AttrStoreID, store.ID),
	)

	user.OrganizationID = &org.ID
	user.StoreID = &store.ID
	user.UpdatedAt = now
	return user, nil
}
