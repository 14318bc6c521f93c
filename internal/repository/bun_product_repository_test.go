package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"

	"github.com/EliabLM/pos-system-api/internal/db/models"
)

func createTestProduct(t *testing.T, db *bun.DB, orgID, sku string, stock int) *models.Product {
	t.Helper()

	product := &models.Product{
		OrganizationID: orgID,
		Name:           "Product " + sku,
		SKU:            sku,
		PriceCents:     1500,
		Stock:          stock,
	}
	require.NoError(t, NewBunProductRepository(db).Create(context.Background(), product))
	return product
}

func TestBunProductRepository_Create(t *testing.T) {
	db := setupTestDB(t)
	repo := NewBunProductRepository(db)
	ctx := context.Background()

	org := createTestOrg(t, db, "Catalog Org")

	t.Run("create and retrieve", func(t *testing.T) {
		product := &models.Product{
			OrganizationID: org.ID,
			Name:           "Coffee Beans 1kg",
			SKU:            "COF-001",
			PriceCents:     2599,
			Stock:          40,
		}

		err := repo.Create(ctx, product)
		require.NoError(t, err)
		require.NotEmpty(t, product.ID)

		retrieved, err := repo.GetByID(ctx, org.ID, product.ID)
		require.NoError(t, err)
		assert.Equal(t, "Coffee Beans 1kg", retrieved.Name)
		assert.Equal(t, int64(2599), retrieved.PriceCents)
		assert.Equal(t, 40, retrieved.Stock)
		assert.True(t, retrieved.IsActive)
	})

	t.Run("duplicate sku within org", func(t *testing.T) {
		createTestProduct(t, db, org.ID, "DUP-001", 5)

		dup := &models.Product{
			OrganizationID: org.ID,
			Name:           "Another",
			SKU:            "DUP-001",
			PriceCents:     100,
		}
		err := repo.Create(ctx, dup)
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrDuplicate)
	})

	t.Run("same sku allowed in another org", func(t *testing.T) {
		other := createTestOrg(t, db, "Other Org")

		product := &models.Product{
			OrganizationID: other.ID,
			Name:           "Cross-org product",
			SKU:            "DUP-001",
			PriceCents:     100,
		}
		require.NoError(t, repo.Create(ctx, product))
	})

	t.Run("negative price rejected", func(t *testing.T) {
		err := repo.Create(ctx, &models.Product{
			OrganizationID: org.ID,
			Name:           "Broken",
			SKU:            "NEG-001",
			PriceCents:     -1,
		})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "price_cents cannot be negative")
	})
}

func TestBunProductRepository_List(t *testing.T) {
	db := setupTestDB(t)
	repo := NewBunProductRepository(db)
	ctx := context.Background()

	org := createTestOrg(t, db, "List Org")
	other := createTestOrg(t, db, "Foreign Org")

	b := createTestProduct(t, db, org.ID, "SKU-B", 1)
	a := createTestProduct(t, db, org.ID, "SKU-A", 1)
	createTestProduct(t, db, other.ID, "SKU-X", 1)

	deleted := createTestProduct(t, db, org.ID, "SKU-DEL", 1)
	require.NoError(t, repo.SoftDelete(ctx, org.ID, deleted.ID))

	products, err := repo.List(ctx, org.ID)
	require.NoError(t, err)
	require.Len(t, products, 2)

	// Ordered by name, foreign org and soft-deleted rows excluded
	assert.Equal(t, a.ID, products[0].ID)
	assert.Equal(t, b.ID, products[1].ID)
}

func TestBunProductRepository_Update(t *testing.T) {
	db := setupTestDB(t)
	repo := NewBunProductRepository(db)
	ctx := context.Background()

	org := createTestOrg(t, db, "Update Org")
	product := createTestProduct(t, db, org.ID, "UPD-001", 10)

	product.Name = "Renamed"
	product.PriceCents = 999
	product.Stock = 7
	require.NoError(t, repo.Update(ctx, product))

	updated, err := repo.GetByID(ctx, org.ID, product.ID)
	require.NoError(t, err)
	assert.Equal(t, "Renamed", updated.Name)
	assert.Equal(t, int64(999), updated.PriceCents)
	assert.Equal(t, 7, updated.Stock)

	t.Run("update in wrong org", func(t *testing.T) {
		foreign := createTestOrg(t, db, "Wrong Org")
		product.OrganizationID = foreign.ID
		err := repo.Update(ctx, product)
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrNotFound)
	})
}

func TestBunProductRepository_SoftDelete(t *testing.T) {
	db := setupTestDB(t)
	repo := NewBunProductRepository(db)
	ctx := context.Background()

	org := createTestOrg(t, db, "Delete Org")
	product := createTestProduct(t, db, org.ID, "DEL-001", 3)

	require.NoError(t, repo.SoftDelete(ctx, org.ID, product.ID))

	_, err := repo.GetByID(ctx, org.ID, product.ID)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNotFound)

	// Row still exists, only flagged inactive
	var raw models.Product
	require.NoError(t, db.NewSelect().Model(&raw).Where("id = ?", product.ID).Scan(ctx))
	assert.False(t, raw.IsActive)

	// Deleting again reports not found
	err = repo.SoftDelete(ctx, org.ID, product.ID)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNotFound)
}
