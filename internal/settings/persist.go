package settings

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/redis/go-redis/v9"

	"github.com/colloki/console/internal/platform/db"
)

// RedisPersister stores settings blobs as plain Redis strings without expiry.
type RedisPersister struct {
	client *redis.Client
}

// NewRedisPersister builds a RedisPersister.
func NewRedisPersister(client *redis.Client) *RedisPersister {
	return &RedisPersister{client: client}
}

// Load implements Persister.
func (p *RedisPersister) Load(ctx context.Context, key string) ([]byte, error) {
	blob, err := p.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNoState
	}
	if err != nil {
		return nil, fmt.Errorf("redis get: %w", err)
	}
	return blob, nil
}

// Save implements Persister.
func (p *RedisPersister) Save(ctx context.Context, key string, blob []byte) error {
	if err := p.client.Set(ctx, key, blob, 0).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}

// PgxConn is the subset of *pgxpool.Pool the Postgres persister needs.
type PgxConn interface {
	db.Beginner
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

const (
	kvSchemaSQL = `CREATE TABLE IF NOT EXISTS console_kv (
	key        TEXT PRIMARY KEY,
	value      JSONB NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
)`
	kvIndexSQL  = `CREATE INDEX IF NOT EXISTS console_kv_updated_at_idx ON console_kv (updated_at)`
	kvSelectSQL = `SELECT value FROM console_kv WHERE key = $1`
	kvUpsertSQL = `INSERT INTO console_kv (key, value, updated_at) VALUES ($1, $2, now())
ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = EXCLUDED.updated_at`
)

// PostgresPersister stores settings blobs in the console_kv table.
type PostgresPersister struct {
	conn PgxConn
}

// NewPostgresPersister builds a PostgresPersister.
func NewPostgresPersister(conn PgxConn) *PostgresPersister {
	return &PostgresPersister{conn: conn}
}

// EnsureSchema creates the console_kv table when missing.
func (p *PostgresPersister) EnsureSchema(ctx context.Context) error {
	return db.WithTx(ctx, p.conn, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, kvSchemaSQL); err != nil {
			return fmt.Errorf("settings: create console_kv: %w", err)
		}
		if _, err := tx.Exec(ctx, kvIndexSQL); err != nil {
			return fmt.Errorf("settings: index console_kv: %w", err)
		}
		return nil
	})
}

// Load implements Persister.
func (p *PostgresPersister) Load(ctx context.Context, key string) ([]byte, error) {
	var blob []byte
	err := p.conn.QueryRow(ctx, kvSelectSQL, key).Scan(&blob)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNoState
	}
	if err != nil {
		return nil, fmt.Errorf("postgres select: %w", err)
	}
	return blob, nil
}

// Save implements Persister.
func (p *PostgresPersister) Save(ctx context.Context, key string, blob []byte) error {
	if _, err := p.conn.Exec(ctx, kvUpsertSQL, key, blob); err != nil {
		return fmt.Errorf("postgres upsert: %w", err)
	}
	return nil
}
