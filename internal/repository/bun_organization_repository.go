package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/EliabLM/pos-system-api/internal/db/bunx"
	"github.com/EliabLM/pos-system-api/internal/db/models"
	"github.com/uptrace/bun"
)

// BunOrganizationRepository implements OrganizationRepository using Bun ORM
type BunOrganizationRepository struct {
	db *bun.DB
}

// NewBunOrganizationRepository creates a new Bun-based organization repository
func NewBunOrganizationRepository(db *bun.DB) *BunOrganizationRepository {
	return &BunOrganizationRepository{db: db}
}

// Create inserts a new organization
func (r *BunOrganizationRepository) Create(ctx context.Context, org *models.Organization) error {
	if err := org.ValidateForCreate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	if org.ID == "" {
		org.ID = bunx.NewID()
	}
	now := time.Now()
	org.CreatedAt = now
	org.UpdatedAt = now
	org.IsActive = true

	_, err := r.db.NewInsert().
		Model(org).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("create organization: %w", err)
	}
	return nil
}

// GetByID retrieves an organization by its ID
func (r *BunOrganizationRepository) GetByID(ctx context.Context, id string) (*models.Organization, error) {
	org := new(models.Organization)
	err := r.db.NewSelect().
		Model(org).
		Where("id = ?", id).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("organization '%s': %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("get organization by ID: %w", err)
	}
	return org, nil
}
