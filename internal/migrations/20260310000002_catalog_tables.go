package migrations

import (
	"context"
	"fmt"

	"github.com/EliabLM/pos-system-api/internal/db/models"
	"github.com/uptrace/bun"
)

func init() {
	Migrations.MustRegister(up_20260310000002, down_20260310000002)
}

// up_20260310000002 creates the catalog tables: products, sales
func up_20260310000002(ctx context.Context, db *bun.DB) error {
	// 1. Create products table
	fmt.Print(" [up] creating products table...")
	q := db.NewCreateTable().
		Model((*models.Product)(nil)).
		IfNotExists()

	if IsSQLite(db) {
		q = q.ForeignKey(`(organization_id) REFERENCES organizations(id) ON DELETE CASCADE`)
	}
	_, err := q.Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to create products table: %w", err)
	}

	// SKU is unique within an organization, not globally
	_, err = db.Exec(`
		CREATE UNIQUE INDEX IF NOT EXISTS idx_products_org_sku
		ON products(organization_id, sku)
	`)
	if err != nil {
		return fmt.Errorf("failed to create products sku index: %w", err)
	}
	_, err = db.Exec(`CREATE INDEX IF NOT EXISTS idx_products_organization_id ON products(organization_id)`)
	if err != nil {
		return fmt.Errorf("failed to create products organization index: %w", err)
	}

	if IsPostgreSQL(db) {
		_, err = db.Exec(`
			ALTER TABLE products
			ADD CONSTRAINT fk_products_organization_id
			FOREIGN KEY (organization_id) REFERENCES organizations(id) ON DELETE CASCADE
		`)
		if err != nil {
			return fmt.Errorf("failed to add products organization FK: %w", err)
		}
	}
	fmt.Println(" OK")

	// 2. Create sales table
	fmt.Print(" [up] creating sales table...")
	q = db.NewCreateTable().
		Model((*models.Sale)(nil)).
		IfNotExists()

	if IsSQLite(db) {
		q = q.ForeignKey(`(organization_id) REFERENCES organizations(id) ON DELETE CASCADE`)
		q = q.ForeignKey(`(store_id) REFERENCES stores(id)`)
		q = q.ForeignKey(`(user_id) REFERENCES users(id)`)
	}
	_, err = q.Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to create sales table: %w", err)
	}

	_, err = db.Exec(`CREATE INDEX IF NOT EXISTS idx_sales_organization_id ON sales(organization_id)`)
	if err != nil {
		return fmt.Errorf("failed to create sales organization index: %w", err)
	}
	_, err = db.Exec(`CREATE INDEX IF NOT EXISTS idx_sales_store_id ON sales(store_id)`)
	if err != nil {
		return fmt.Errorf("failed to create sales store index: %w", err)
	}
	_, err = db.Exec(`CREATE INDEX IF NOT EXISTS idx_sales_created_at ON sales(created_at)`)
	if err != nil {
		return fmt.Errorf("failed to create sales created_at index: %w", err)
	}

	if IsPostgreSQL(db) {
		_, err = db.Exec(`
			ALTER TABLE sales
			ADD CONSTRAINT fk_sales_organization_id
			FOREIGN KEY (organization_id) REFERENCES organizations(id) ON DELETE CASCADE
		`)
		if err != nil {
			return fmt.Errorf("failed to add sales organization FK: %w", err)
		}
		_, err = db.Exec(`
			ALTER TABLE sales
			ADD CONSTRAINT fk_sales_store_id
			FOREIGN KEY (store_id) REFERENCES stores(id)
		`)
		if err != nil {
			return fmt.Errorf("failed to add sales store FK: %w", err)
		}
		_, err = db.Exec(`
			ALTER TABLE sales
			ADD CONSTRAINT fk_sales_user_id
			FOREIGN KEY (user_id) REFERENCES users(id)
		`)
		if err != nil {
			return fmt.Errorf("failed to add sales user FK: %w", err)
		}
	}
	fmt.Println(" OK")

	return nil
}

// down_20260310000002 drops the catalog tables in reverse order
func down_20260310000002(ctx context.Context, db *bun.DB) error {
	tables := []string{
		"sales",
		"products",
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
