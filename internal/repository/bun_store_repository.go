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

// BunStoreRepository implements StoreRepository using Bun ORM
type BunStoreRepository struct {
	db *bun.DB
}

// NewBunStoreRepository creates a new Bun-based store repository
func NewBunStoreRepository(db *bun.DB) *BunStoreRepository {
	return &BunStoreRepository{db: db}
}

// Create inserts a new store
func (r *BunStoreRepository) Create(ctx context.Context, store *models.Store) error {
	if err := store.ValidateForCreate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	if store.ID == "" {
		store.ID = bunx.NewID()
	}
	now := time.Now()
	store.CreatedAt = now
	store.UpdatedAt = now
	store.IsActive = true

	_, err := r.db.NewInsert().
		Model(store).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("create store: %w", err)
	}
	return nil
}

// GetByID retrieves a store by its ID
func (r *BunStoreRepository) GetByID(ctx context.Context, id string) (*models.Store, error) {
	store := new(models.Store)
	err := r.db.NewSelect().
		Model(store).
		Where("id = ?", id).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("store '%s': %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("get store by ID: %w", err)
	}
	return store, nil
}
