package app

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/koustreak/dbscribe/internal/config"
	"github.com/koustreak/dbscribe/internal/database"
	"github.com/koustreak/dbscribe/internal/errs"
	"github.com/koustreak/dbscribe/internal/filestore"
)

func sqliteConfig() *config.Config {
	cfg := config.Default()
	cfg.Database.Driver = database.DriverSQLite
	cfg.Database.DSN = ":memory:"
	cfg.Log.Level = "error"
	return cfg
}

func TestNew_SQLite(t *testing.T) {
	a, err := New(context.Background(), sqliteConfig())
	require.NoError(t, err)
	defer a.Close()

	assert.Equal(t, "sqlite", a.Introspector.Profile().Name())
	assert.True(t, a.DB.IsOpen())

	a.Close()
	assert.False(t, a.DB.IsOpen())
}

func TestOpenDB_Errors(t *testing.T) {
	ctx := context.Background()

	_, err := OpenDB(ctx, database.DefaultConfig(database.DriverSQLite, ""))
	assert.True(t, errs.IsInvalidInput(err))

	_, err = OpenDB(ctx, database.DefaultConfig("oracle", "scott/tiger"))
	assert.True(t, errs.IsInvalidInput(err))
}

func TestSnapshots_UnknownProvider(t *testing.T) {
	cfg := sqliteConfig()
	cfg.FileStore.Provider = filestore.Provider("gcs")

	a, err := New(context.Background(), cfg)
	require.NoError(t, err)
	defer a.Close()

	_, _, err = a.Snapshots(context.Background())
	assert.True(t, errs.IsInvalidInput(err))
}
