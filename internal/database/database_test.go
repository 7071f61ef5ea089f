package database_test

import (
	"path/filepath"
	"testing"

	"crm/internal/database"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpen_SQLiteCreatesSchema(t *testing.T) {
	db, err := database.Open("sqlite", filepath.Join(t.TempDir(), "crm.db"))
	require.NoError(t, err)

	for _, table := range []string{"customers", "products", "orders", "order_products"} {
		assert.True(t, db.Migrator().HasTable(table), "missing table %s", table)
	}
}

func TestOpen_UnsupportedDriver(t *testing.T) {
	_, err := database.Open("oracle", "whatever")
	assert.ErrorContains(t, err, "unsupported database driver")
}
