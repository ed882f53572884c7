package kv

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"maps"
	"slices"
	"time"

	"github.com/safar/go-inventory-store/internal/database"
)

type dialect struct {
	name   string
	schema string
	get    string
	upsert string
	delete string
}

var sqliteDialect = dialect{
	name: "sqlite",
	schema: `CREATE TABLE IF NOT EXISTS kv (
		key        TEXT PRIMARY KEY,
		value      TEXT NOT NULL,
		updated_at TEXT NOT NULL
	)`,
	get: `SELECT value FROM kv WHERE key = ?`,
	upsert: `INSERT INTO kv (key, value, updated_at) VALUES (?, ?, ?)
		ON CONFLICT (key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
	delete: `DELETE FROM kv WHERE key = ?`,
}

var postgresDialect = dialect{
	name: "postgres",
	schema: `CREATE TABLE IF NOT EXISTS kv (
		key        TEXT PRIMARY KEY,
		value      TEXT NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL
	)`,
	get: `SELECT value FROM kv WHERE key = $1`,
	upsert: `INSERT INTO kv (key, value, updated_at) VALUES ($1, $2, $3)
		ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = EXCLUDED.updated_at`,
	delete: `DELETE FROM kv WHERE key = $1`,
}

// SQL stores every key as one row of a kv table. Multi-key writes run inside
// a single database transaction, retried on busy/serialization failures.
type SQL struct {
	db      *sql.DB
	dialect dialect
	txOpts  database.TxOptions
}

// OpenSQLite opens the embedded database file at path and ensures the kv table.
func OpenSQLite(ctx context.Context, path string) (*SQL, error) {
	db, err := database.OpenSQLite(path)
	if err != nil {
		return nil, database.IOError("open", path, err)
	}
	s, err := newSQL(ctx, db, sqliteDialect)
	if err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// NewPostgres uses an already connected Postgres pool. The caller keeps
// ownership of db until Close.
func NewPostgres(ctx context.Context, db *sql.DB) (*SQL, error) {
	return newSQL(ctx, db, postgresDialect)
}

func newSQL(ctx context.Context, db *sql.DB, d dialect) (*SQL, error) {
	if _, err := db.ExecContext(ctx, d.schema); err != nil {
		return nil, database.IOError("create table", "kv", err)
	}
	return &SQL{db: db, dialect: d, txOpts: database.DefaultTxOptions()}, nil
}

func (s *SQL) Get(ctx context.Context, key string) (string, bool, error) {
	var value string
	err := s.db.QueryRowContext(ctx, s.dialect.get, key).Scan(&value)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", false, nil
		}
		return "", false, database.IOError("get", key, err)
	}
	return value, true, nil
}

func (s *SQL) Set(ctx context.Context, key, value string) error {
	return s.SetMany(ctx, map[string]string{key: value})
}

func (s *SQL) Remove(ctx context.Context, key string) error {
	if _, err := s.db.ExecContext(ctx, s.dialect.delete, key); err != nil {
		return database.IOError("remove", key, err)
	}
	return nil
}

func (s *SQL) SetMany(ctx context.Context, entries map[string]string) error {
	if len(entries) == 0 {
		return nil
	}
	keys := slices.Sorted(maps.Keys(entries))
	now := s.now()

	err := database.WithRetry(ctx, s.db, s.txOpts, func(tx *sql.Tx) error {
		for _, k := range keys {
			if _, err := tx.ExecContext(ctx, s.dialect.upsert, k, entries[k], now); err != nil {
				return fmt.Errorf("upsert %q: %w", k, err)
			}
		}
		return nil
	})
	if err != nil {
		return database.IOError("set", keys[0], err)
	}
	return nil
}

func (s *SQL) RemoveMany(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	sorted := slices.Sorted(slices.Values(keys))

	err := database.WithRetry(ctx, s.db, s.txOpts, func(tx *sql.Tx) error {
		for _, k := range sorted {
			if _, err := tx.ExecContext(ctx, s.dialect.delete, k); err != nil {
				return fmt.Errorf("delete %q: %w", k, err)
			}
		}
		return nil
	})
	if err != nil {
		return database.IOError("remove", sorted[0], err)
	}
	return nil
}

func (s *SQL) Close() error {
	return s.db.Close()
}

// SQLite keeps updated_at as TEXT, Postgres as TIMESTAMPTZ.
func (s *SQL) now() any {
	t := time.Now().UTC()
	if s.dialect.name == "sqlite" {
		return t.Format(time.RFC3339Nano)
	}
	return t
}
