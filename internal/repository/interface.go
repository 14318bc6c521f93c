package repository

import (
	"context"

	"github.com/EliabLM/pos-system-api/internal/db/models"
)

// UserRepository exposes persistence operations for users. The session
// refresh service depends on GetByID returning the authoritative
// snapshot; claims are never built from anything else.
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id string) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	AssignOrganization(ctx context.Context, userID, organizationID, storeID string) error
	SetActive(ctx context.Context, id string, active bool) error
	UpdateLastLogin(ctx context.Context, id string) error
}

// OrganizationRepository exposes persistence operations for organizations.
type OrganizationRepository interface {
	Create(ctx context.Context, org *models.Organization) error
	GetByID(ctx context.Context, id string) (*models.Organization, error)
}

// StoreRepository exposes persistence operations for stores.
type StoreRepository interface {
	Create(ctx context.Context, store *models.Store) error
	GetByID(ctx context.Context, id string) (*models.Store, error)
}

// ProductRepository exposes org-scoped persistence operations for the
// catalog. Deletion is soft: List and GetByID only see active rows.
type ProductRepository interface {
	Create(ctx context.Context, product *models.Product) error
	GetByID(ctx context.Context, organizationID, id string) (*models.Product, error)
	List(ctx context.Context, organizationID string) ([]models.Product, error)
	Update(ctx context.Context, product *models.Product) error
	SoftDelete(ctx context.Context, organizationID, id string) error
}

// SaleRepository exposes org-scoped persistence operations for sales.
// Create adjusts product stock inside the same transaction as the sale
// insert; ErrInsufficientStock rolls the whole sale back.
type SaleRepository interface {
	Create(ctx context.Context, sale *models.Sale) error
	GetByID(ctx context.Context, organizationID, id string) (*models.Sale, error)
	List(ctx context.Context, organizationID string) ([]models.Sale, error)
}
