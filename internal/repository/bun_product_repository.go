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

// BunProductRepository implements ProductRepository using Bun ORM
type BunProductRepository struct {
	db *bun.DB
}

// NewBunProductRepository creates a new Bun-based product repository
func NewBunProductRepository(db *bun.DB) *BunProductRepository {
	return &BunProductRepository{db: db}
}

// Create inserts a new product into the catalog
func (r *BunProductRepository) Create(ctx context.Context, product *models.Product) error {
	if err := product.ValidateForCreate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	if product.ID == "" {
		product.ID = bunx.NewID()
	}
	now := time.Now()
	product.CreatedAt = now
	product.UpdatedAt = now
	product.IsActive = true

	_, err := r.db.NewInsert().
		Model(product).
		Exec(ctx)
	if err != nil {
		if isDuplicateKeyError(err) {
			return fmt.Errorf("product with sku '%s': %w", product.SKU, ErrDuplicate)
		}
		return fmt.Errorf("create product: %w", err)
	}
	return nil
}

// GetByID retrieves an active product scoped to an organization
func (r *BunProductRepository) GetByID(ctx context.Context, organizationID, id string) (*models.Product, error) {
	product := new(models.Product)
	err := r.db.NewSelect().
		Model(product).
		Where("id = ?", id).
		Where("organization_id = ?", organizationID).
		Where("is_active = ?", true).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("product '%s': %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("get product by ID: %w", err)
	}
	return product, nil
}

// List retrieves all active products for an organization
func (r *BunProductRepository) List(ctx context.Context, organizationID string) ([]models.Product, error) {
	var products []models.Product
	err := r.db.NewSelect().
		Model(&products).
		Where("organization_id = ?", organizationID).
		Where("is_active = ?", true).
		Order("name ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	return products, nil
}

// Update persists changed product fields. The organization scope comes
// from the model itself; callers must have loaded it through GetByID.
func (r *BunProductRepository) Update(ctx context.Context, product *models.Product) error {
	product.UpdatedAt = time.Now()

	result, err := r.db.NewUpdate().
		Model(product).
		Column("name", "sku", "price_cents", "stock", "updated_at").
		WherePK().
		Where("organization_id = ?", product.OrganizationID).
		Exec(ctx)
	if err != nil {
		if isDuplicateKeyError(err) {
			return fmt.Errorf("product with sku '%s': %w", product.SKU, ErrDuplicate)
		}
		return fmt.Errorf("update product: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("product '%s': %w", product.ID, ErrNotFound)
	}
	return nil
}

// SoftDelete flags a product inactive instead of removing the row, so
// past sales keep a resolvable product reference.
func (r *BunProductRepository) SoftDelete(ctx context.Context, organizationID, id string) error {
	result, err := r.db.NewUpdate().
		Model((*models.Product)(nil)).
		Set("is_active = ?", false).
		Set("updated_at = ?", time.Now()).
		Where("id = ?", id).
		Where("organization_id = ?", organizationID).
		Where("is_active = ?", true).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("soft delete product: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("product '%s': %w", id, ErrNotFound)
	}
	return nil
}
