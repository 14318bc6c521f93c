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

// BunSaleRepository implements SaleRepository using Bun ORM
type BunSaleRepository struct {
	db *bun.DB
}

// NewBunSaleRepository creates a new Bun-based sale repository
func NewBunSaleRepository(db *bun.DB) *BunSaleRepository {
	return &BunSaleRepository{db: db}
}

// Create inserts a sale and decrements the stock of every sold product
// in one transaction. A product that is missing, inactive, or short on
// stock aborts the whole sale.
func (r *BunSaleRepository) Create(ctx context.Context, sale *models.Sale) error {
	if err := sale.ValidateForCreate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	if sale.ID == "" {
		sale.ID = bunx.NewID()
	}
	now := time.Now()
	sale.CreatedAt = now
	sale.UpdatedAt = now

	return r.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		for _, item := range sale.Items {
			// Conditional decrement: the stock guard in the WHERE clause
			// makes the check-and-subtract atomic without explicit locks
			result, err := tx.NewUpdate().
				Model((*models.Product)(nil)).
				Set("stock = stock - ?", item.Quantity).
				Set("updated_at = ?", now).
				Where("id = ?", item.ProductID).
				Where("organization_id = ?", sale.OrganizationID).
				Where("is_active = ?", true).
				Where("stock >= ?", item.Quantity).
				Exec(ctx)
			if err != nil {
				return fmt.Errorf("decrement stock for product %s: %w", item.ProductID, err)
			}

			rowsAffected, err := result.RowsAffected()
			if err != nil {
				return fmt.Errorf("get rows affected: %w", err)
			}
			if rowsAffected == 0 {
				return r.classifyStockFailure(ctx, tx, sale.OrganizationID, item)
			}
		}

		_, err := tx.NewInsert().
			Model(sale).
			Exec(ctx)
		if err != nil {
			return fmt.Errorf("insert sale: %w", err)
		}
		return nil
	})
}

// classifyStockFailure distinguishes a missing product from one without
// enough stock after a conditional decrement matched no rows.
func (r *BunSaleRepository) classifyStockFailure(ctx context.Context, tx bun.Tx, organizationID string, item models.SaleItem) error {
	exists, err := tx.NewSelect().
		Model((*models.Product)(nil)).
		Where("id = ?", item.ProductID).
		Where("organization_id = ?", organizationID).
		Where("is_active = ?", true).
		Exists(ctx)
	if err != nil {
		return fmt.Errorf("check product %s: %w", item.ProductID, err)
	}
	if !exists {
		return fmt.Errorf("product '%s': %w", item.ProductID, ErrNotFound)
	}
	return fmt.Errorf("product '%s': %w", item.ProductID, ErrInsufficientStock)
}

// GetByID retrieves a sale scoped to an organization
func (r *BunSaleRepository) GetByID(ctx context.Context, organizationID, id string) (*models.Sale, error) {
	sale := new(models.Sale)
	err := r.db.NewSelect().
		Model(sale).
		Where("id = ?", id).
		Where("organization_id = ?", organizationID).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("sale '%s': %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("get sale by ID: %w", err)
	}
	return sale, nil
}

// List retrieves all sales for an organization, newest first
func (r *BunSaleRepository) List(ctx context.Context, organizationID string) ([]models.Sale, error) {
	var sales []models.Sale
	err := r.db.NewSelect().
		Model(&sales).
		Where("organization_id = ?", organizationID).
		Order("created_at DESC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("list sales: %w", err)
	}
	return sales, nil
}
