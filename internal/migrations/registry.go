package migrations

import (
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect"
	"github.com/uptrace/bun/migrate"
)

// Migrations is the registry all migration files attach themselves to
// via init(). The db command group feeds it to a bun migrator.
var Migrations = migrate.NewMigrations()

// IsSQLite reports whether db speaks the SQLite dialect. Migrations branch
// on this for DDL that differs between engines (uuid defaults, jsonb).
func IsSQLite(db *bun.DB) bool {
	return db.Dialect().Name() == dialect.SQLite
}

// IsPostgreSQL reports whether db speaks the PostgreSQL dialect.
func IsPostgreSQL(db *bun.DB) bool {
	return db.Dialect().Name() == dialect.PG
}
