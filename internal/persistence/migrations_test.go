package persistence

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/coffee-shop/internal/config"
)

func TestMigrationFilesOrdered(t *testing.T) {
	for _, driver := range []string{"postgres", "sqlite"} {
		files, err := migrationFiles(driver)
		require.NoError(t, err)
		require.NotEmpty(t, files)
		assert.Equal(t, "migrations/"+driver+"/001_create_drinks.sql", files[0])
	}

	_, err := migrationFiles("mysql")
	assert.Error(t, err)
}

func TestRunSQLiteMigrationsIdempotent(t *testing.T) {
	ctx := context.Background()
	db, err := NewSQLite(ctx, config.SQLiteConfig{Path: filepath.Join(t.TempDir(), "drinks.db")}, zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(db.Close)

	require.NoError(t, RunSQLiteMigrations(ctx, db.DB, zap.NewNop()))
	require.NoError(t, RunSQLiteMigrations(ctx, db.DB, zap.NewNop()))

	var recorded int
	require.NoError(t, db.DB.QueryRowContext(ctx, "SELECT COUNT(*) FROM schema_migrations").Scan(&recorded))
	files, err := migrationFiles("sqlite")
	require.NoError(t, err)
	assert.Equal(t, len(files), recorded)

	var tables int
	require.NoError(t, db.DB.QueryRowContext(ctx, "SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name='drinks'").Scan(&tables))
	assert.Equal(t, 1, tables)
}

func TestSQLiteSchemaRejectsInvalidRecipe(t *testing.T) {
	ctx := context.Background()
	db, err := NewSQLite(ctx, config.SQLiteConfig{Path: ":memory:"}, zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(db.Close)
	require.NoError(t, RunSQLiteMigrations(ctx, db.DB, zap.NewNop()))

	_, err = db.DB.ExecContext(ctx, `INSERT INTO drinks (title, recipe, created_at, updated_at) VALUES ('water', '{"name":"water"}', 0, 0)`)
	assert.Error(t, err)

	_, err = db.DB.ExecContext(ctx, `INSERT INTO drinks (title, recipe, created_at, updated_at) VALUES ('water', '[{"name":"water","color":"blue","parts":1}]', 0, 0)`)
	assert.NoError(t, err)
	assert.NoError(t, db.Ping(ctx))
}

func TestRedisDisabledWithoutAddr(t *testing.T) {
	r := NewRedis(context.Background(), config.RedisConfig{}, zap.NewNop())
	assert.Nil(t, r)
	assert.Error(t, r.Ping(context.Background()))
	r.Close()
}

func TestNewPostgresRequiresDSN(t *testing.T) {
	_, err := NewPostgres(context.Background(), config.PostgresConfig{}, zap.NewNop())
	assert.Error(t, err)

	var pg *Postgres
	assert.Error(t, pg.Ping(context.Background()))
	assert.Nil(t, pg.PoolHandle())
}
