package datastore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"
	_ "modernc.org/sqlite"

	"github.com/jbweber/homelab/catalog/internal/migrations"
)

// DriverName is the database/sql driver registered by modernc.org/sqlite.
const DriverName = "sqlite"

func init() {
	sqlx.BindDriver(DriverName, sqlx.QUESTION)
}

// Querier is satisfied by both *sqlx.DB and *sqlx.Tx.
type Querier interface {
	sqlx.ExtContext
	GetContext(ctx context.Context, dest any, query string, args ...any) error
	SelectContext(ctx context.Context, dest any, query string, args ...any) error
}

type txKey struct{}

// Datastore owns the catalog database handle.
type Datastore struct {
	DB     *sqlx.DB
	logger *zap.Logger
}

// New opens the database at dsn and runs migrations.
func New(dsn string) (*Datastore, error) {
	db, err := sqlx.Open(DriverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	ds := Wrap(db, nil)
	if err := ds.Migrate(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return ds, nil
}

// Wrap adopts an already configured *sqlx.DB without running migrations.
func Wrap(db *sqlx.DB, logger *zap.Logger) *Datastore {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Datastore{DB: db, logger: logger}
}

// WithLogger returns a copy of the datastore that logs through logger.
func (ds *Datastore) WithLogger(logger *zap.Logger) *Datastore {
	return Wrap(ds.DB, logger)
}

// Migrate applies every pending catalog migration.
func (ds *Datastore) Migrate() error {
	migrator := migrations.NewCatalogMigrator(ds.DB.DB)
	if err := migrator.RunMigrations(); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	return nil
}

// SchemaVersion returns the highest applied migration version.
func (ds *Datastore) SchemaVersion() (int64, error) {
	return migrations.NewCatalogMigrator(ds.DB.DB).GetCurrentVersion()
}

// Q returns the transaction bound to ctx, or the database handle when there is none.
func (ds *Datastore) Q(ctx context.Context) Querier {
	if tx, ok := ctx.Value(txKey{}).(*sqlx.Tx); ok && tx != nil {
		return tx
	}
	return ds.DB
}

// InTx runs fn with a transaction bound to its context. Nested calls join the
// outer transaction. The transaction commits when fn returns nil.
func (ds *Datastore) InTx(ctx context.Context, fn func(ctx context.Context) error) (err error) {
	if _, ok := ctx.Value(txKey{}).(*sqlx.Tx); ok {
		return fn(ctx)
	}

	tx, err := ds.DB.BeginTxx(ctx, nil)
	if err != nil {
		ds.logger.Error("failed to begin transaction", zap.Error(err))
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
	}()

	if err := fn(context.WithValue(ctx, txKey{}, tx)); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
			ds.logger.Error("failed to roll back transaction", zap.Error(rbErr))
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		ds.logger.Error("failed to commit transaction", zap.Error(err))
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// Ping verifies the database is reachable.
func (ds *Datastore) Ping(ctx context.Context) error {
	return ds.DB.PingContext(ctx)
}

// Close closes the underlying database.
func (ds *Datastore) Close() error {
	return ds.DB.Close()
}
