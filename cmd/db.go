package cmd

import (
	"context"
	"fmt"
	"log"

	"github.com/spf13/cobra"
	"github.com/uptrace/bun/migrate"

	"github.com/EliabLM/pos-system-api/internal/db/bunx"
	"github.com/EliabLM/pos-system-api/internal/migrations"
)

var dbCmd = &cobra.Command{
	Use:   "db",
	Short: "Database schema management",
	Long:  `Apply, inspect and roll back schema migrations for the configured database.`,
}

// runWithMigrator opens the configured database, builds a migrator over the
// registered migrations and hands it to fn. The connection is closed when fn
// returns.
func runWithMigrator(fn func(ctx context.Context, m *migrate.Migrator) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		db, err := bunx.NewDB(cfg.DatabaseURL, cfg.MaxDBConnections)
		if err != nil {
			return fmt.Errorf("failed to connect to database: %w", err)
		}
		defer bunx.Close(db)

		return fn(cmd.Context(), migrate.NewMigrator(db, migrations.Migrations))
	}
}

// underLock runs fn while holding the migration lock so concurrent deploys
// cannot interleave schema changes.
func underLock(ctx context.Context, m *migrate.Migrator, fn func() error) error {
	if err := m.Lock(ctx); err != nil {
		return fmt.Errorf("failed to acquire migration lock: %w", err)
	}
	defer func() {
		if err := m.Unlock(ctx); err != nil {
			log.Printf("Warning: failed to release migration lock: %v", err)
		}
	}()
	return fn()
}

var dbInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Create migration bookkeeping tables",
	RunE: runWithMigrator(func(ctx context.Context, m *migrate.Migrator) error {
		if err := m.Init(ctx); err != nil {
			return fmt.Errorf("failed to initialize migrator: %w", err)
		}
		log.Printf("Migration tables created")
		return nil
	}),
}

var dbMigrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply pending migrations",
	RunE: runWithMigrator(func(ctx context.Context, m *migrate.Migrator) error {
		return underLock(ctx, m, func() error {
			group, err := m.Migrate(ctx)
			if err != nil {
				return fmt.Errorf("migration failed: %w", err)
			}
			if group.IsZero() {
				log.Printf("Database is up to date")
				return nil
			}
			log.Printf("Migrated to %s", group)
			return nil
		})
	}),
}

var dbRollbackCmd = &cobra.Command{
	Use:   "rollback",
	Short: "Revert the last migration group",
	RunE: runWithMigrator(func(ctx context.Context, m *migrate.Migrator) error {
		return underLock(ctx, m, func() error {
			group, err := m.Rollback(ctx)
			if err != nil {
				return fmt.Errorf("rollback failed: %w", err)
			}
			if group.IsZero() {
				log.Printf("Nothing to roll back")
				return nil
			}
			log.Printf("Rolled back %s", group)
			return nil
		})
	}),
}

var dbStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show applied and pending migrations",
	RunE: runWithMigrator(func(ctx context.Context, m *migrate.Migrator) error {
		ms, err := m.MigrationsWithStatus(ctx)
		if err != nil {
			return fmt.Errorf("failed to read migration status: %w", err)
		}
		for _, mig := range ms {
			state := "pending"
			if mig.IsApplied() {
				state = fmt.Sprintf("applied in group %d", mig.GroupID)
			}
			log.Printf("%s  %s", mig.Name, state)
		}
		if unapplied := ms.Unapplied(); len(unapplied) > 0 {
			log.Printf("Run 'db migrate' to apply %d pending migration(s)", len(unapplied))
		}
		return nil
	}),
}

var dbLockCmd = &cobra.Command{
	Use:   "lock",
	Short: "Hold the migration lock",
	Long:  `Takes the migration lock without running anything, for maintenance windows. Release it with 'db unlock'.`,
	RunE: runWithMigrator(func(ctx context.Context, m *migrate.Migrator) error {
		if err := m.Lock(ctx); err != nil {
			return fmt.Errorf("failed to acquire migration lock: %w", err)
		}
		log.Printf("Migration lock acquired")
		return nil
	}),
}

var dbUnlockCmd = &cobra.Command{
	Use:   "unlock",
	Short: "Force-release the migration lock",
	Long:  `Releases a stale migration lock left behind by a crashed migration run.`,
	RunE: runWithMigrator(func(ctx context.Context, m *migrate.Migrator) error {
		if err := m.Unlock(ctx); err != nil {
			return fmt.Errorf("failed to release migration lock: %w", err)
		}
		log.Printf("Migration lock released")
		return nil
	}),
}

func init() {
	rootCmd.AddCommand(dbCmd)
	dbCmd.AddCommand(dbInitCmd)
	dbCmd.AddCommand(dbMigrateCmd)
	dbCmd.AddCommand(dbStatusCmd)
	dbCmd.AddCommand(dbRollbackCmd)
	dbCmd.AddCommand(dbLockCmd)
	dbCmd.AddCommand(dbUnlockCmd)
}
