package database

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/booking-ledger/internal/config"
)

func TestMigrateIsIdempotent(t *testing.T) {
	ctx := context.Background()
	db, err := OpenSQLite(ctx, filepath.Join(t.TempDir(), "ledger.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	require.NoError(t, Migrate(ctx, db))
	require.NoError(t, Migrate(ctx, db))

	version, err := SchemaVersion(ctx, db)
	require.NoError(t, err)
	assert.Equal(t, int64(2), version)

	var next int64
	require.NoError(t, db.GetContext(ctx, &next, "SELECT next_id FROM booking_sequence WHERE name = 'reservations'"))
	assert.Equal(t, int64(0), next)

	var rows int
	require.NoError(t, db.GetContext(ctx, &rows, "SELECT COUNT(*) FROM booking_sequence"))
	assert.Equal(t, 1, rows)
}

func TestOpenPinsSQLiteToOneConnection(t *testing.T) {
	db, err := OpenSQLite(context.Background(), filepath.Join(t.TempDir(), "ledger.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	assert.Equal(t, 1, db.Stats().MaxOpenConnections)
	assert.Equal(t, DriverSQLite, db.DriverName())
}

func TestDataSource(t *testing.T) {
	dsn, err := dataSource(config.DBConfig{Driver: DriverMySQL, User: "app", Pass: "pw", Host: "db", Port: "3306", Name: "ledger"})
	require.NoError(t, err)
	assert.Equal(t, "app:pw@tcp(db:3306)/ledger?charset=utf8mb4&parseTime=true&loc=UTC", dsn)

	dsn, err = dataSource(config.DBConfig{Driver: DriverMySQL, User: "app", Host: "db", Port: "3306", Name: "ledger"})
	require.NoError(t, err)
	assert.Equal(t, "app@tcp(db:3306)/ledger?charset=utf8mb4&parseTime=true&loc=UTC", dsn)

	_, err = dataSource(config.DBConfig{Driver: DriverPostgres})
	assert.Error(t, err)

	_, err = dataSource(config.DBConfig{Driver: "oracle", DSN: "x"})
	assert.Error(t, err)
}
