package seeders

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shashiranjanraj/sweetshop/app/models"
	"github.com/shashiranjanraj/sweetshop/app/repositories"
	"github.com/shashiranjanraj/sweetshop/config"
	"github.com/shashiranjanraj/sweetshop/pkg/auth"
	"github.com/shashiranjanraj/sweetshop/pkg/database"
	"github.com/shashiranjanraj/sweetshop/pkg/logger"
)

func init() { logger.Discard() }

func newStores(t *testing.T) repositories.Stores {
	t.Helper()
	db, err := database.Open("sqlite", "file::memory:")
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.User{}, &models.Sweet{}, &models.Purchase{}))
	t.Cleanup(func() { _ = database.Close(db) })
	return repositories.NewGormStores(db)
}

func TestRunAllIsRepeatable(t *testing.T) {
	config.Set("SEED_ADMIN_PASSWORD", "owner-pass")
	t.Cleanup(func() { config.Set("SEED_ADMIN_PASSWORD", "") })

	st := newStores(t)
	ctx := context.Background()
	var out bytes.Buffer

	require.NoError(t, RunAll(ctx, st, &out))
	require.NoError(t, RunAll(ctx, st, &out))
	assert.Contains(t, out.String(), "Running seeder: sweets … done")

	sweets, err := st.Sweets.List(ctx)
	require.NoError(t, err)
	assert.Len(t, sweets, len(starterSweets))

	admin, err := st.Users.FindByUsername(ctx, "admin")
	require.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, admin.Role)
	assert.True(t, auth.CheckPassword(admin.Password, "owner-pass"))
}

func TestSeedAdminWithoutPassword(t *testing.T) {
	config.Set("SEED_ADMIN_PASSWORD", "")
	st := newStores(t)

	require.NoError(t, SeedAdmin(context.Background(), st))
	_, err := st.Users.FindByUsername(context.Background(), "admin")
	assert.ErrorIs(t, err, repositories.ErrNotFound)
}
