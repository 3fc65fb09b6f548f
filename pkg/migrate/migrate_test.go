package migrate

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/angelmondragon/ecofinds-backend/pkg/config"
	"github.com/angelmondragon/ecofinds-backend/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func TestMigrationsDirIsValid(t *testing.T) {
	require.NoError(t, ValidateDir("migrations"))
}

func TestSlotMigrationContents(t *testing.T) {
	matches, err := filepath.Glob(filepath.Join("migrations", "*_create_kv_slots.sql"))
	require.NoError(t, err)
	require.Len(t, matches, 1)

	data, err := os.ReadFile(matches[0])
	require.NoError(t, err)
	content := string(data)
	for _, want := range []string{
		"CREATE TABLE IF NOT EXISTS kv_slots",
		"key VARCHAR(255) PRIMARY KEY",
		"DROP TABLE IF EXISTS kv_slots",
	} {
		assert.Contains(t, content, want)
	}
}

func TestCouponMigrationContents(t *testing.T) {
	matches, err := filepath.Glob(filepath.Join("migrations", "*_create_coupons.sql"))
	require.NoError(t, err)
	require.Len(t, matches, 1)

	data, err := os.ReadFile(matches[0])
	require.NoError(t, err)
	content := string(data)
	for _, want := range []string{
		"CHECK (type IN ('percent', 'fixed'))",
		"CREATE UNIQUE INDEX IF NOT EXISTS coupons_code_key",
		"DROP TABLE IF EXISTS coupons",
	} {
		assert.Contains(t, content, want)
	}
}

func TestValidateDirRejectsBadNames(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "oops.sql"), []byte("-- +goose Up\n-- +goose Down\n"), 0o644))
	assert.Error(t, ValidateDir(dir))
}

func TestCreateSQLMigration(t *testing.T) {
	dir := t.TempDir()
	path, err := CreateSQLMigration(dir, "Add Wishlist Index!")
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(path, "_add_wishlist_index.sql"), path)
	require.NoError(t, ValidateDir(dir))
}

func TestRunEmbeddedAgainstSQLite(t *testing.T) {
	conn, err := gorm.Open(sqlite.Open("file:"+t.Name()+"?mode=memory&cache=shared"), &gorm.Config{})
	require.NoError(t, err)
	sqlDB, err := conn.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	ctx := context.Background()
	require.NoError(t, RunEmbedded(ctx, sqlDB, "sqlite3", "up"))

	for _, table := range []string{"kv_slots", "coupons"} {
		assert.True(t, conn.Migrator().HasTable(table), table)
	}

	require.NoError(t, RunEmbedded(ctx, sqlDB, "sqlite3", "down"))
	assert.True(t, conn.Migrator().HasTable("kv_slots"))
	assert.False(t, conn.Migrator().HasTable("coupons"))
}

func TestMaybeRunDevSkipsOutsideDev(t *testing.T) {
	cfg := &config.Config{App: config.AppConfig{Env: "prod"}, FeatureFlags: config.FeatureFlagsConfig{AutoMigrate: true}}
	require.NoError(t, MaybeRunDev(context.Background(), cfg, logger.Nop(), nil))
}
