package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// DBTX is the subset of pgx used by PostgresStore. Satisfied by
// *pgxpool.Pool, *pgx.Conn and pgx.Tx.
type DBTX interface {
	Exec(context.Context, string, ...interface{}) (pgconn.CommandTag, error)
	Query(context.Context, string, ...interface{}) (pgx.Rows, error)
	QueryRow(context.Context, string, ...interface{}) pgx.Row
}

const (
	createTableSQL = `CREATE TABLE IF NOT EXISTS config_entities (
	kind       text        NOT NULL,
	id         text        NOT NULL,
	data       jsonb       NOT NULL,
	created_at timestamptz NOT NULL DEFAULT now(),
	updated_at timestamptz NOT NULL DEFAULT now(),
	PRIMARY KEY (kind, id)
)`

	loadEntitySQL = `SELECT data FROM config_entities WHERE kind = $1 AND id = $2`

	insertEntitySQL = `INSERT INTO config_entities (kind, id, data)
VALUES ($1, $2, $3::jsonb)
ON CONFLICT (kind, id) DO NOTHING`

	// jsonb || is a shallow merge: top-level keys of $3 replace existing ones.
	updateEntitySQL = `UPDATE config_entities
SET data = data || $3::jsonb, updated_at = now()
WHERE kind = $1 AND id = $2`
)

// PoolConfig holds connection pool settings.
type PoolConfig struct {
	URL             string
	MaxConns        int
	MinConns        int
	MaxConnLifetime time.Duration
	MaxConnIdleTime time.Duration
}

// OpenPool parses the database URL, applies pool settings and verifies
// the connection.
func OpenPool(ctx context.Context, cfg PoolConfig) (*pgxpool.Pool, error) {
	poolConfig, err := pgxpool.ParseConfig(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("parse database URL: %w", err)
	}

	if cfg.MaxConns > 0 {
		poolConfig.MaxConns = int32(cfg.MaxConns)
	}
	if cfg.MinConns > 0 {
		poolConfig.MinConns = int32(cfg.MinConns)
	}
	if cfg.MaxConnLifetime > 0 {
		poolConfig.MaxConnLifetime = cfg.MaxConnLifetime
	}
	if cfg.MaxConnIdleTime > 0 {
		poolConfig.MaxConnIdleTime = cfg.MaxConnIdleTime
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return pool, nil
}

// PostgresStore stores entities as jsonb rows keyed by (kind, id).
type PostgresStore struct {
	db DBTX
}

// NewPostgresStore creates a store on db. Call EnsureSchema before first use.
func NewPostgresStore(db DBTX) *PostgresStore {
	return &PostgresStore{db: db}
}

// EnsureSchema creates the config_entities table if it does not exist.
func (s *PostgresStore) EnsureSchema(ctx context.Context) error {
	if _, err := s.db.Exec(ctx, createTableSQL); err != nil {
		return fmt.Errorf("create config_entities: %w", err)
	}
	return nil
}

func (s *PostgresStore) Load(ctx context.Context, kind, id string) (map[string]any, bool, error) {
	var raw []byte
	err := s.db.QueryRow(ctx, loadEntitySQL, kind, id).Scan(&raw)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("load %s %q: %w", kind, id, err)
	}

	var data map[string]any
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil, false, fmt.Errorf("decode %s %q: %w", kind, id, err)
	}
	return data, true, nil
}

func (s *PostgresStore) Create(ctx context.Context, kind string, data map[string]any) (string, error) {
	id, err := entityID(data)
	if err != nil {
		return "", err
	}
	raw, err := json.Marshal(data)
	if err != nil {
		return "", fmt.Errorf("encode %s %q: %w", kind, id, err)
	}

	tag, err := s.db.Exec(ctx, insertEntitySQL, kind, id, string(raw))
	if err != nil {
		return "", fmt.Errorf("insert %s %q: %w", kind, id, err)
	}
	if tag.RowsAffected() == 0 {
		return "", existsError(kind, id)
	}
	return id, nil
}

func (s *PostgresStore) Update(ctx context.Context, kind, id string, data map[string]any) error {
	raw, err := json.Marshal(merge(nil, data, id))
	if err != nil {
		return fmt.Errorf("encode %s %q: %w", kind, id, err)
	}

	tag, err := s.db.Exec(ctx, updateEntitySQL, kind, id, string(raw))
	if err != nil {
		return fmt.Errorf("update %s %q: %w", kind, id, err)
	}
	if tag.RowsAffected() == 0 {
		return notFoundError(kind, id)
	}
	return nil
}
