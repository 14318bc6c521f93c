package onboarding

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/migrate"

	"github.com/EliabLM/pos-system-api/internal/db/bunx"
	"github.com/EliabLM/pos-system-api/internal/db/models"
	"github.com/EliabLM/pos-system-api/internal/migrations"
	"github.com/EliabLM/pos-system-api/internal/repository"
)

func setupTestDB(t *testing.T) *bun.DB {
	t.Helper()

	db, err := bunx.NewDB(":memory:", 0)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	ctx := context.Background()
	migrator := migrate.NewMigrator(db, migrations.Migrations)
	require.NoError(t, migrator.Init(ctx))
	_, err = migrator.Migrate(ctx)
	require.NoError(t, err)

	return db
}

func createPendingUser(t *testing.T, users repository.UserRepository, email string) *models.User {
	t.Helper()

	user := &models.User{
		Email:        email,
		PasswordHash: "$2a$10$hash",
		FirstName:    "Pending",
		LastName:     "Admin",
		Role:         "ADMIN",
		IsActive:     true,
	}
	require.NoError(t, users.Create(context.Background(), user))
	return user
}

func TestComplete(t *testing.T) {
	db := setupTestDB(t)
	users := repository.NewBunUserRepository(db)
	svc := NewService(db, users)
	ctx := context.Background()

	user := createPendingUser(t, users, "founder@example.com")

	updated, err := svc.Complete(ctx, user.ID, "Acme Retail", "Downtown")
	require.NoError(t, err)
	require.True(t, updated.Onboarded())

	// The persisted user matches the returned snapshot
	persisted, err := users.GetByID(ctx, user.ID)
	require.NoError(t, err)
	require.NotNil(t, persisted.OrganizationID)
	assert.Equal(t, *updated.OrganizationID, *persisted.OrganizationID)
	assert.Equal(t, *updated.StoreID, *persisted.StoreID)

	// Organization and store rows exist and are linked
	org, err := repository.NewBunOrganizationRepository(db).GetByID(ctx, *persisted.OrganizationID)
	require.NoError(t, err)
	assert.Equal(t, "Acme Retail", org.Name)

	store, err := repository.NewBunStoreRepository(db).GetByID(ctx, *persisted.StoreID)
	require.NoError(t, err)
	assert.Equal(t, "Downtown", store.Name)
	assert.Equal(t, org.ID, store.OrganizationID)
}

func TestComplete_AlreadyOnboarded(t *testing.T) {
	db := setupTestDB(t)
	users := repository.NewBunUserRepository(db)
	svc := NewService(db, users)
	ctx := context.Background()

	user := createPendingUser(t, users, "twice@example.com")

	_, err := svc.Complete(ctx, user.ID, "First Org", "First Store")
	require.NoError(t, err)

	_, err = svc.Complete(ctx, user.ID, "Second Org", "Second Store")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrAlreadyOnboarded)

	// The first assignment is untouched
	persisted, err := users.GetByID(ctx, user.ID)
	require.NoError(t, err)
	org, err := repository.NewBunOrganizationRepository(db).GetByID(ctx, *persisted.OrganizationID)
	require.NoError(t, err)
	assert.Equal(t, "First Org", org.Name)
}

func TestComplete_UnknownUser(t *testing.T) {
	db := setupTestDB(t)
	svc := NewService(db, repository.NewBunUserRepository(db))

	_, err := svc.Complete(context.Background(), "00000000-0000-0000-0000-000000000000", "Org", "Store")
	require.Error(t, err)
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestComplete_ValidatesNames(t *testing.T) {
	db := setupTestDB(t)
	users := repository.NewBunUserRepository(db)
	svc := NewService(db, users)
	ctx := context.Background()

	user := createPendingUser(t, users, "strict@example.com")

	_, err := svc.Complete(ctx, user.ID, "", "Store")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "organization name is required")

	_, err = svc.Complete(ctx, user.ID, "Org", "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "store name is required")

	// Nothing persisted by the failed attempts
	persisted, err := users.GetByID(ctx, user.ID)
	require.NoError(t, err)
	assert.False(t, persisted.Onboarded())
}
