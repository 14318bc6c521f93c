package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"

	"github.com/EliabLM/pos-system-api/internal/db/models"
)

// saleFixture seeds one org with a store, a seller, and a product.
type saleFixture struct {
	org     *models.Organization
	store   *models.Store
	seller  *models.User
	product *models.Product
}

func newSaleFixture(t *testing.T, db *bun.DB, stock int) saleFixture {
	t.Helper()

	org := createTestOrg(t, db, "Sales Org")
	store := createTestStore(t, db, org.ID)
	seller := createTestUser(t, db, "seller@example.com")
	require.NoError(t, NewBunUserRepository(db).AssignOrganization(context.Background(), seller.ID, org.ID, store.ID))
	product := createTestProduct(t, db, org.ID, "SALE-001", stock)

	return saleFixture{org: org, store: store, seller: seller, product: product}
}

func (f saleFixture) sale(quantity int) *models.Sale {
	return &models.Sale{
		OrganizationID: f.org.ID,
		StoreID:        f.store.ID,
		UserID:         f.seller.ID,
		Items: []models.SaleItem{{
			ProductID:      f.product.ID,
			ProductName:    f.product.Name,
			Quantity:       quantity,
			UnitPriceCents: f.product.PriceCents,
		}},
		TotalCents: int64(quantity) * f.product.PriceCents,
		Status:     models.SaleStatusPaid,
	}
}

func TestBunSaleRepository_Create(t *testing.T) {
	db := setupTestDB(t)
	repo := NewBunSaleRepository(db)
	ctx := context.Background()

	fix := newSaleFixture(t, db, 10)

	sale := fix.sale(3)
	require.NoError(t, repo.Create(ctx, sale))
	require.NotEmpty(t, sale.ID)

	t.Run("stock decremented", func(t *testing.T) {
		product, err := NewBunProductRepository(db).GetByID(ctx, fix.org.ID, fix.product.ID)
		require.NoError(t, err)
		assert.Equal(t, 7, product.Stock)
	})

	t.Run("items survive the round trip", func(t *testing.T) {
		retrieved, err := repo.GetByID(ctx, fix.org.ID, sale.ID)
		require.NoError(t, err)
		require.Len(t, retrieved.Items, 1)
		assert.Equal(t, fix.product.ID, retrieved.Items[0].ProductID)
		assert.Equal(t, 3, retrieved.Items[0].Quantity)
		assert.Equal(t, sale.TotalCents, retrieved.TotalCents)
		assert.Equal(t, models.SaleStatusPaid, retrieved.Status)
	})
}

func TestBunSaleRepository_Create_InsufficientStock(t *testing.T) {
	db := setupTestDB(t)
	repo := NewBunSaleRepository(db)
	ctx := context.Background()

	fix := newSaleFixture(t, db, 2)

	err := repo.Create(ctx, fix.sale(5))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInsufficientStock)

	// The transaction rolled back: stock untouched, no sale row
	product, err := NewBunProductRepository(db).GetByID(ctx, fix.org.ID, fix.product.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, product.Stock)

	sales, err := repo.List(ctx, fix.org.ID)
	require.NoError(t, err)
	assert.Empty(t, sales)
}

func TestBunSaleRepository_Create_UnknownProduct(t *testing.T) {
	db := setupTestDB(t)
	repo := NewBunSaleRepository(db)
	ctx := context.Background()

	fix := newSaleFixture(t, db, 5)

	sale := fix.sale(1)
	sale.Items[0].ProductID = "00000000-0000-0000-0000-000000000000"

	err := repo.Create(ctx, sale)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestBunSaleRepository_Create_MultiItemRollback(t *testing.T) {
	db := setupTestDB(t)
	repo := NewBunSaleRepository(db)
	ctx := context.Background()

	fix := newSaleFixture(t, db, 10)
	scarce := createTestProduct(t, db, fix.org.ID, "SALE-002", 1)

	sale := fix.sale(4)
	sale.Items = append(sale.Items, models.SaleItem{
		ProductID:      scarce.ID,
		ProductName:    scarce.Name,
		Quantity:       2,
		UnitPriceCents: scarce.PriceCents,
	})

	err := repo.Create(ctx, sale)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInsufficientStock)

	// First item's decrement must also be rolled back
	product, err := NewBunProductRepository(db).GetByID(ctx, fix.org.ID, fix.product.ID)
	require.NoError(t, err)
	assert.Equal(t, 10, product.Stock)
}

func TestBunSaleRepository_List(t *testing.T) {
	db := setupTestDB(t)
	repo := NewBunSaleRepository(db)
	ctx := context.Background()

	fix := newSaleFixture(t, db, 20)

	first := fix.sale(1)
	require.NoError(t, repo.Create(ctx, first))
	second := fix.sale(2)
	require.NoError(t, repo.Create(ctx, second))

	sales, err := repo.List(ctx, fix.org.ID)
	require.NoError(t, err)
	require.Len(t, sales, 2)

	t.Run("foreign org sees nothing", func(t *testing.T) {
		other := createTestOrg(t, db, "Empty Org")
		sales, err := repo.List(ctx, other.ID)
		require.NoError(t, err)
		assert.Empty(t, sales)

		_, err = repo.GetByID(ctx, other.ID, first.ID)
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrNotFound)
	})
}
