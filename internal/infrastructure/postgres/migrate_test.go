package postgres

import (
	"io/fs"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPgx5URL(t *testing.T) {
	got, err := pgx5URL("postgres://app:secret@db:5432/tienda?sslmode=disable")
	require.NoError(t, err)
	assert.Equal(t, "pgx5://app:secret@db:5432/tienda?sslmode=disable", got)

	got, err = pgx5URL("postgresql://db/tienda")
	require.NoError(t, err)
	assert.Equal(t, "pgx5://db/tienda", got)

	_, err = pgx5URL("mysql://db/tienda")
	assert.Error(t, err)
}

func TestMigracionesEmbebidas(t *testing.T) {
	entries, err := fs.ReadDir(migrationsFS, "migrations")
	require.NoError(t, err)

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
	}
	assert.Contains(t, names, "0001_inventory.up.sql")
	assert.Contains(t, names, "0001_inventory.down.sql")

	up, err := fs.ReadFile(migrationsFS, "migrations/0001_inventory.up.sql")
	require.NoError(t, err)
	assert.Contains(t, string(up), "CHECK (new_stock = previous_stock + quantity)")
	assert.Contains(t, string(up), "stock_alerts_one_active")
	assert.Contains(t, string(up), "CHECK (id = 1)")
}
