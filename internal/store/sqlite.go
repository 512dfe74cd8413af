package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite3"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	_ "github.com/mattn/go-sqlite3"

	"github.com/hance08/tally/internal/constants"
)

type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

type Store struct {
	db     DBTX
	logger *slog.Logger
}

// NewStore opens the ledger file, creating it with the embedded baseline schema when it is
// empty. It does not run upgrade steps; that is the schema migrator's job.
func NewStore(ctx context.Context, dbPath string, migrationsFS fs.FS, logger *slog.Logger) (*Store, error) {
	dbDir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dbDir, 0755); err != nil {
		return nil, fmt.Errorf("can not create database directory %s: %w", dbDir, err)
	}

	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("can not open database: %w", err)
	}
	if err = db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("can not connect with database: %w", err)
	}
	s := &Store{db: db, logger: logger}

	fresh, err := s.isEmpty(ctx)
	if err != nil {
		db.Close()
		return nil, err
	}
	if fresh {
		if err := applyBaseline(db, migrationsFS); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to create database: %w", err)
		}
		if err := s.SetSchemaVersion(ctx, constants.BaselineVersion); err != nil {
			db.Close()
			return nil, err
		}
		logger.Info("created ledger from baseline schema", slog.Int("version", constants.BaselineVersion))
	}

	return s, nil
}

// ExecTx runs fn against a transaction-scoped Store and commits if fn succeeds.
func (s *Store) ExecTx(ctx context.Context, fn func(*Store) error) error {
	db, ok := s.db.(*sql.DB)
	if !ok {
		return fmt.Errorf("store is already in a transaction")
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}

	txStore := &Store{db: tx, logger: s.logger}

	err = fn(txStore)
	if err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return fmt.Errorf("tx err: %v, rb err: %v", err, rbErr)
		}
		return err
	}
	return tx.Commit()
}

// Exec runs a raw statement; upgrade steps use it for DDL.
func (s *Store) Exec(ctx context.Context, query string, args ...any) (sql.Result, error) {
	res, err := s.db.ExecContext(ctx, query, args...)
	return res, mapError(err)
}

// Savepoint runs fn inside a named savepoint. On error the work done by fn is rolled back
// while the enclosing transaction stays usable.
func (s *Store) Savepoint(ctx context.Context, name string, fn func() error) error {
	if _, err := s.db.ExecContext(ctx, "SAVEPOINT "+name); err != nil {
		return fmt.Errorf("failed to open savepoint %s: %w", name, err)
	}
	if err := fn(); err != nil {
		if _, rbErr := s.db.ExecContext(ctx, "ROLLBACK TO "+name); rbErr != nil {
			return fmt.Errorf("savepoint err: %v, rb err: %v", err, rbErr)
		}
		s.db.ExecContext(ctx, "RELEASE "+name)
		return err
	}
	_, err := s.db.ExecContext(ctx, "RELEASE "+name)
	return err
}

func (s *Store) Close() error {
	if db, ok := s.db.(*sql.DB); ok {
		return db.Close()
	}
	return nil
}

func (s *Store) isEmpty(ctx context.Context) (bool, error) {
	var count int
	err := s.db.QueryRowContext(ctx,
		"SELECT count(*) FROM sqlite_master WHERE type = 'table' AND name = 'transactions'",
	).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("failed to inspect database: %w", err)
	}
	return count == 0, nil
}

func applyBaseline(db *sql.DB, migrationsFS fs.FS) error {
	driver, err := sqlite3.WithInstance(db, &sqlite3.Config{})
	if err != nil {
		return fmt.Errorf("failed to set up migrate driver: %w", err)
	}

	sourceDriver, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("failed to create iofs source driver: %w", err)
	}

	m, err := migrate.NewWithInstance(
		"iofs",
		sourceDriver,
		"sqlite3",
		driver,
	)
	if err != nil {
		return fmt.Errorf("failed to set up migrate instance: %w", err)
	}

	err = m.Up()
	if err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("failed to run migration(up): %w", err)
	}

	return nil
}
