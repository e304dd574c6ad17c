package postgres

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"mbox/proj/internal/storage"
	"sort"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

const (
	ErrConflictCode     = "23505"
	ErrForeignKeyCode   = "23503"
	ErrCheckCode        = "23514"
	ErrInvalidInputCode = "22P02"
)

type PostgresDB struct {
	Conn *pgxpool.Pool
}

func New(ctx context.Context, dsn string, maxConns int, maxConnIdleTime time.Duration) (*PostgresDB, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, err
	}
	cfg.MaxConns = int32(maxConns)
	cfg.MaxConnIdleTime = maxConnIdleTime
	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, err
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return &PostgresDB{Conn: pool}, nil
}

func (db *PostgresDB) Close() {
	db.Conn.Close()
}

// Migrate applies the embedded schema files in lexical order. Every statement
// in them is idempotent.
func (db *PostgresDB) Migrate(ctx context.Context) error {
	names, err := fs.Glob(migrationsFS, "migrations/*.sql")
	if err != nil {
		return err
	}
	sort.Strings(names)
	for _, name := range names {
		sql, err := migrationsFS.ReadFile(name)
		if err != nil {
			return err
		}
		if _, err := db.Conn.Exec(ctx, string(sql)); err != nil {
			return fmt.Errorf("applying %s: %w", name, err)
		}
	}
	return nil
}

// TranslateError maps driver errors onto the storage sentinels.
func TranslateError(err error) error {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return err
	}
	switch pgErr.Code {
	case ErrConflictCode:
		return &storage.ConflictError{Constraint: pgErr.ConstraintName}
	case ErrForeignKeyCode:
		return storage.ErrNotFound
	case ErrCheckCode, ErrInvalidInputCode:
		return fmt.Errorf("%w: %s", storage.ErrInvalidData, pgErr.Message)
	}
	return err
}
