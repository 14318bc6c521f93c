package models

import (
	"errors"
	"strings"
	"time"

	"github.com/uptrace/bun"
)

// User represents a human principal of the store application.
// OrganizationID and StoreID stay nil until onboarding completes; the
// access gateway treats a nil organization as "onboarding incomplete".
type User struct {
	bun.BaseModel `bun:"table:users,alias:u"`

	ID             string     `bun:"id,pk,type:uuid"`
	Email          string     `bun:"email,notnull,unique"`
	PasswordHash   string     `bun:"password_hash,notnull"` // bcrypt hash
	FirstName      string     `bun:"first_name,notnull"`
	LastName       string     `bun:"last_name,notnull"`
	Role           string     `bun:"role,notnull"`               // ADMIN or SELLER
	OrganizationID *string    `bun:"organization_id,type:uuid"`  // FK to organizations(id), nullable
	StoreID        *string    `bun:"store_id,type:uuid"`         // FK to stores(id), nullable
	IsActive       bool       `bun:"is_active,notnull,default:true"`
	CreatedAt      time.Time  `bun:"created_at,notnull,default:current_timestamp"`
	UpdatedAt      time.Time  `bun:"updated_at,notnull,default:current_timestamp"`
	LastLoginAt    *time.Time `bun:"last_login_at"`
}

// FullName returns the display name for API responses.
func (u *User) FullName() string {
	return strings.TrimSpace(u.FirstName + " " + u.LastName)
}

// Onboarded reports whether the user has been assigned an organization.
func (u *User) Onboarded() bool {
	return u.OrganizationID != nil && *u.OrganizationID != ""
}

// ValidateForCreate verifies the record is well formed before insertion.
func (u *User) ValidateForCreate() error {
	if u.Email == "" {
		return errors.New("email is required")
	}
	if u.PasswordHash == "" {
		return errors.New("password_hash is required")
	}
	if u.Role == "" {
		return errors.New("role is required")
	}
	return nil
}

// Organization is the tenant boundary: every product and sale belongs to
// exactly one organization.
type Organization struct {
	bun.BaseModel `bun:"table:organizations,alias:o"`

	ID        string    `bun:"id,pk,type:uuid"`
	Name      string    `bun:"name,notnull"`
	IsActive  bool      `bun:"is_active,notnull,default:true"`
	CreatedAt time.Time `bun:"created_at,notnull,default:current_timestamp"`
	UpdatedAt time.Time `bun:"updated_at,notnull,default:current_timestamp"`
}

// ValidateForCreate verifies the record is well formed before insertion.
func (o *Organization) ValidateForCreate() error {
	if o.Name == "" {
		return errors.New("name is required")
	}
	return nil
}

// Store is a physical or logical point of sale within an organization.
type Store struct {
	bun.BaseModel `bun:"table:stores,alias:st"`

	ID             string    `bun:"id,pk,type:uuid"`
	OrganizationID string    `bun:"organization_id,notnull,type:uuid"` // FK to organizations(id)
	Name           string    `bun:"name,notnull"`
	IsActive       bool      `bun:"is_active,notnull,default:true"`
	CreatedAt      time.Time `bun:"created_at,notnull,default:current_timestamp"`
	UpdatedAt      time.Time `bun:"updated_at,notnull,default:current_timestamp"`
}

// ValidateForCreate verifies the record is well formed before insertion.
func (s *Store) ValidateForCreate() error {
	if s.OrganizationID == "" {
		return errors.New("organization_id is required")
	}
	if s.Name == "" {
		return errors.New("name is required")
	}
	return nil
}
