// Package app wires configuration to live components: the backend
// connection, the introspector and the snapshot store.
package app

import (
	"context"
	"fmt"

	"github.com/koustreak/dbscribe/internal/config"
	"github.com/koustreak/dbscribe/internal/database"
	"github.com/koustreak/dbscribe/internal/database/mysql"
	"github.com/koustreak/dbscribe/internal/database/postgres"
	"github.com/koustreak/dbscribe/internal/database/sqlite"
	"github.com/koustreak/dbscribe/internal/dialect"
	"github.com/koustreak/dbscribe/internal/errs"
	"github.com/koustreak/dbscribe/internal/filestore"
	"github.com/koustreak/dbscribe/internal/filestore/minio"
	"github.com/koustreak/dbscribe/internal/introspect"
	"github.com/koustreak/dbscribe/internal/logger"
	"github.com/koustreak/dbscribe/internal/snapshot"
)

// App holds the components built from one Config.
type App struct {
	Config       *config.Config
	Log          *logger.Logger
	DB           database.DB
	Introspector *introspect.Introspector
}

// New connects to the configured backend.
func New(ctx context.Context, cfg *config.Config) (*App, error) {
	log := logger.New(&cfg.Log)

	db, err := OpenDB(ctx, &cfg.Database.Config)
	if err != nil {
		return nil, err
	}

	in, err := introspect.New(db, dialect.DefaultRegistry(), introspect.WithLogger(log))
	if err != nil {
		db.Close()
		return nil, err
	}

	log.With().
		Str("driver", string(cfg.Database.Driver)).
		Logger().
		Debug("database connected")

	return &App{Config: cfg, Log: log, DB: db, Introspector: in}, nil
}

// OpenDB opens the adapter matching cfg.Driver.
func OpenDB(ctx context.Context, cfg *database.Config) (database.DB, error) {
	if cfg.DSN == "" {
		return nil, errs.InvalidArgument("dsn")
	}

	var (
		db  database.DB
		err error
	)
	switch cfg.Driver {
	case database.DriverPostgres:
		db, err = postgres.New(ctx, cfg)
	case database.DriverMySQL:
		db, err = mysql.New(ctx, cfg)
	case database.DriverSQLite:
		db, err = sqlite.New(ctx, cfg)
	default:
		return nil, errs.New(errs.ErrKindInvalidInput, fmt.Sprintf("unknown database driver %q", cfg.Driver))
	}
	if err != nil {
		return nil, err
	}
	return db, nil
}

// Schema returns the configured schema, or "" for the backend default.
func (a *App) Schema() string {
	return a.Config.Database.Schema
}

// Snapshots connects to the object store and returns a snapshot service.
// The returned store must be closed by the caller.
func (a *App) Snapshots(ctx context.Context) (*snapshot.Service, filestore.Store, error) {
	switch a.Config.FileStore.Provider {
	case filestore.ProviderMinIO, "":
	default:
		return nil, nil, errs.New(errs.ErrKindInvalidInput,
			fmt.Sprintf("unknown filestore provider %q", a.Config.FileStore.Provider))
	}

	store, err := minio.New(ctx, &a.Config.FileStore)
	if err != nil {
		return nil, nil, err
	}
	return snapshot.New(store, snapshot.WithLogger(a.Log)), store, nil
}

// Close releases the backend connection.
func (a *App) Close() {
	a.DB.Close()
}
