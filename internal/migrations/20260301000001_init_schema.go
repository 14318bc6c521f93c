package migrations

import (
	"context"
	"fmt"

	"github.com/EliabLM/pos-system-api/internal/db/models"
	"github.com/uptrace/bun"
)

func init() {
	Migrations.MustRegister(up_20260301000001, down_20260301000001)
}

// up_20260301000001 creates the tenancy tables: organizations, stores, users
func up_20260301000001(ctx context.Context, db *bun.DB) error {
	// 1. Create organizations table
	fmt.Print(" [up] creating organizations table...")
	_, err := db.NewCreateTable().
		Model((*models.Organization)(nil)).
		IfNotExists().
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to create organizations table: %w", err)
	}
	fmt.Println(" OK")

	// 2. Create stores table
	fmt.Print(" [up] creating stores table...")
	q := db.NewCreateTable().
		Model((*models.Store)(nil)).
		IfNotExists()

	// For SQLite, define FKs during table creation
	if IsSQLite(db) {
		q = q.ForeignKey(`(organization_id) REFERENCES organizations(id) ON DELETE CASCADE`)
	}
	_, err = q.Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to create stores table: %w", err)
	}

	_, err = db.Exec(`CREATE INDEX IF NOT EXISTS idx_stores_organization_id ON stores(organization_id)`)
	if err != nil {
		return fmt.Errorf("failed to create stores organization index: %w", err)
	}

	if IsPostgreSQL(db) {
		_, err = db.Exec(`
			ALTER TABLE stores
			ADD CONSTRAINT fk_stores_organization_id
			FOREIGN KEY (organization_id) REFERENCES organizations(id) ON DELETE CASCADE
		`)
		if err != nil {
			return fmt.Errorf("failed to add stores organization FK: %w", err)
		}
	}
	fmt.Println(" OK")

	// 3. Create users table
	fmt.Print(" [up] creating users table...")
	q = db.NewCreateTable().
		Model((*models.User)(nil)).
		IfNotExists()

	// organization_id / store_id stay NULL until onboarding completes,
	// so deletes must not cascade into users
	if IsSQLite(db) {
		q = q.ForeignKey(`(organization_id) REFERENCES organizations(id) ON DELETE SET NULL`)
		q = q.ForeignKey(`(store_id) REFERENCES stores(id) ON DELETE SET NULL`)
	}
	_, err = q.Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to create users table: %w", err)
	}

	_, err = db.Exec(`CREATE UNIQUE INDEX IF NOT EXISTS idx_users_email ON users(email)`)
	if err != nil {
		return fmt.Errorf("failed to create users email index: %w", err)
	}
	_, err = db.Exec(`CREATE INDEX IF NOT EXISTS idx_users_organization_id ON users(organization_id)`)
	if err != nil {
		return fmt.Errorf("failed to create users organization index: %w", err)
	}

	if IsPostgreSQL(db) {
		_, err = db.Exec(`
			ALTER TABLE users
			ADD CONSTRAINT fk_users_organization_id
			FOREIGN KEY (organization_id) REFERENCES organizations(id) ON DELETE SET NULL
		`)
		if err != nil {
			return fmt.Errorf("failed to add users organization FK: %w", err)
		}
		_, err = db.Exec(`
			ALTER TABLE users
			ADD CONSTRAINT fk_users_store_id
			FOREIGN KEY (store_id) REFERENCES stores(id) ON DELETE SET NULL
		`)
		if err != nil {
			return fmt.Errorf("failed to add users store FK: %w", err)
		}
	}
	fmt.Println(" OK")

	return nil
}

// down_20260301000001 drops the tenancy tables in reverse order
func down_20260301000001(ctx context.Context, db *bun.DB) error {
	tables := []string{
		"users",
		"stores",
		"organizations",
	}

	for _, table := range tables {
		fmt.Printf(" [down] dropping %s table...", table)
		var err error
		if IsPostgreSQL(db) {
			_, err = db.Exec(fmt.Sprintf("DROP TABLE IF EXISTS %s CASCADE", table))
		} else {
			_, err = db.Exec(fmt.Sprintf("DROP TABLE IF EXISTS %s", table))
		}
		if err != nil {
			return fmt.Errorf("failed to drop %s table: %w", table, err)
		}
		fmt.Println(" OK")
	}

	return nil
}
