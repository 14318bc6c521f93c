package models

import (
	"errors"
	"time"

	"github.com/uptrace/bun"
)

// Product is an org-scoped catalog entry. Prices are stored in cents to
// avoid floating point drift; deletion is soft via is_active.
type Product struct {
	bun.BaseModel `bun:"table:products,alias:p"`

	ID             string    `bun:"id,pk,type:uuid"`
	OrganizationID string    `bun:"organization_id,notnull,type:uuid"` // FK to organizations(id)
	Name           string    `bun:"name,notnull"`
	SKU            string    `bun:"sku,notnull"` // unique per organization
	PriceCents     int64     `bun:"price_cents,notnull"`
	Stock          int       `bun:"stock,notnull,default:0"`
	IsActive       bool      `bun:"is_active,notnull,default:true"`
	CreatedAt      time.Time `bun:"created_at,notnull,default:current_timestamp"`
	UpdatedAt      time.Time `bun:"updated_at,notnull,default:current_timestamp"`
}

// ValidateForCreate verifies the record is well formed before insertion.
func (p *Product) ValidateForCreate() error {
	if p.OrganizationID == "" {
		return errors.New("organization_id is required")
	}
	if p.Name == "" {
		return errors.New("name is required")
	}
	if p.SKU == "" {
		return errors.New("sku is required")
	}
	if p.PriceCents < 0 {
		return errors.New("price_cents cannot be negative")
	}
	if p.Stock < 0 {
		return errors.New("stock cannot be negative")
	}
	return nil
}

// Sale status values.
const (
	SaleStatusPaid      = "PAID"
	SaleStatusCancelled = "CANCELLED"
)

// SaleItem is one line of a sale, denormalized at creation time so the
// sale record stays readable after catalog edits.
type SaleItem struct {
	ProductID      string `json:"product_id"`
	ProductName    string `json:"product_name"`
	Quantity       int    `json:"quantity"`
	UnitPriceCents int64  `json:"unit_price_cents"`
}

// Sale records a completed checkout. Items are stored as a JSON document;
// stock adjustments happen against products inside the creating
// transaction.
type Sale struct {
	bun.BaseModel `bun:"table:sales,alias:sl"`

	ID             string     `bun:"id,pk,type:uuid"`
	OrganizationID string     `bun:"organization_id,notnull,type:uuid"` // FK to organizations(id)
	StoreID        string     `bun:"store_id,notnull,type:uuid"`        // FK to stores(id)
	UserID         string     `bun:"user_id,notnull,type:uuid"`         // FK to users(id), the seller
	Items          []SaleItem `bun:"items,type:jsonb"`
	TotalCents     int64      `bun:"total_cents,notnull"`
	Status         string     `bun:"status,notnull,default:'PAID'"`
	CreatedAt      time.Time  `bun:"created_at,notnull,default:current_timestamp"`
	UpdatedAt      time.Time  `bun:"updated_at,notnull,default:current_timestamp"`
}

// ValidateForCreate verifies the record is well formed before insertion.
func (s *Sale) ValidateForCreate() error {
	if s.OrganizationID == "" {
		return errors.New("organization_id is required")
	}
	if s.StoreID == "" {
		return errors.New("store_id is required")
	}
	if s.UserID == "" {
		return errors.New("user_id is required")
	}
	if len(s.Items) == 0 {
		return errors.New("sale requires at least one item")
	}
	for _, item := range s.Items {
		if item.ProductID == "" {
			return errors.New("sale item requires a product_id")
		}
		if item.Quantity <= 0 {
			return errors.New("sale item quantity must be positive")
		}
	}
	if s.TotalCents < 0 {
		return errors.New("total_cents cannot be negative")
	}
	if s.Status != SaleStatusPaid && s.Status != SaleStatusCancelled {
		return errors.New("status must be PAID or CANCELLED")
	}
	return nil
}
