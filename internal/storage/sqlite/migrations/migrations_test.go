package migrations_test

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"

	"github.com/obrahub/obra/internal/storage/sqlite/migrations"
)

func TestNewMigratorRequiresDB(t *testing.T) {
	_, err := migrations.NewMigrator(migrations.MigratorConfig{})
	assert.Error(t, err)
}

func TestMigratorUpDown(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)
	ctx := context.Background()

	db, err := sql.Open("sqlite", filepath.Join(t.TempDir(), "obra.db"))
	require.NoError(err)
	t.Cleanup(func() { _ = db.Close() })

	m, err := migrations.NewMigrator(migrations.MigratorConfig{DB: db})
	require.NoError(err)

	v, err := m.Version(ctx)
	require.NoError(err)
	assert.Equal(uint(0), v)

	require.NoError(m.Up(ctx))
	require.NoError(m.Up(ctx), "applying twice should be a no-op")

	v, err = m.Version(ctx)
	require.NoError(err)
	assert.Equal(uint(1), v)

	_, err = db.ExecContext(ctx, `INSERT INTO kv (key, value, updated_at) VALUES ('k', 'v', 0)`)
	require.NoError(err)

	require.NoError(m.Down(ctx))
	v, err = m.Version(ctx)
	require.NoError(err)
	assert.Equal(uint(0), v)
}
