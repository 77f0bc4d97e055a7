package docstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync/atomic"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/puddle/v2"
)

const backendPostgres = "postgres"

// pgxPool is the subset of pgxpool.Pool used here, so pgxmock can stand in for it.
type pgxPool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	Ping(ctx context.Context) error
	Close()
}

// PostgresStore keeps each collection in its own table of
// (id uuid, document jsonb, created_at timestamptz) rows.
type PostgresStore struct {
	pool   pgxPool
	name   string
	closed atomic.Bool
}

var _ Store = (*PostgresStore)(nil)

// NewPostgresStore initializes a store backed by pgxpool.
func NewPostgresStore(pool *pgxpool.Pool, name string) *PostgresStore {
	if pool == nil {
		panic("docstore: pgx pool required")
	}
	return &PostgresStore{pool: pool, name: name}
}

func newPostgresStoreWithPool(pool pgxPool, name string) *PostgresStore {
	if pool == nil {
		panic("docstore: pool required")
	}
	return &PostgresStore{pool: pool, name: name}
}

// ConnectPostgres parses dsn, opens a pool and verifies it with a ping.
// When name is empty the database from the DSN is used.
func ConnectPostgres(ctx context.Context, dsn, name string) (*PostgresStore, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("docstore: parse postgres dsn: %w", err)
	}
	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, unavailableErr(backendPostgres, err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, unavailableErr(backendPostgres, err)
	}
	if name == "" {
		name = cfg.ConnConfig.Database
	}
	return NewPostgresStore(pool, name), nil
}

func (s *PostgresStore) Insert(ctx context.Context, collection string, doc any) (string, error) {
	body, err := json.Marshal(doc)
	if err != nil {
		return "", persistenceErr(backendPostgres, collection, fmt.Errorf("marshal document: %w", err))
	}

	if s.closed.Load() {
		return "", ErrUnavailable
	}

	id := uuid.New()
	query := fmt.Sprintf(`INSERT INTO %s (id, document) VALUES ($1, $2)`, pgx.Identifier{collection}.Sanitize())
	if _, err := s.pool.Exec(ctx, query, id, body); err != nil {
		return "", classifyPostgresErr(collection, err)
	}
	return id.String(), nil
}

func (s *PostgresStore) Fetch(ctx context.Context, collection, id string, out any) error {
	parsed, err := uuid.Parse(id)
	if err != nil {
		return ErrNotFound
	}

	query := fmt.Sprintf(`SELECT document FROM %s WHERE id = $1`, pgx.Identifier{collection}.Sanitize())
	var body []byte
	if err := s.pool.QueryRow(ctx, query, parsed).Scan(&body); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrNotFound
		}
		return fmt.Errorf("docstore: select %s/%s: %w", collection, id, err)
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("docstore: decode %s/%s: %w", collection, id, err)
	}
	return nil
}

func (s *PostgresStore) Ping(ctx context.Context) error {
	if s.closed.Load() {
		return ErrUnavailable
	}
	return s.pool.Ping(ctx)
}

func (s *PostgresStore) ListCollections(ctx context.Context, limit int) ([]string, error) {
	query := `
		SELECT table_name
		FROM information_schema.tables
		WHERE table_schema = current_schema()
		  AND table_type = 'BASE TABLE'
		  AND table_name <> 'schema_migrations'
		ORDER BY table_name
		LIMIT $1
	`
	rows, err := s.pool.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("docstore: list tables: %w", err)
	}
	defer rows.Close()

	names := []string{}
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("docstore: scan table name: %w", err)
		}
		names = append(names, name)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("docstore: list tables: %w", err)
	}
	return names, nil
}

func (s *PostgresStore) Name() string    { return s.name }
func (s *PostgresStore) Backend() string { return backendPostgres }

func (s *PostgresStore) Close(ctx context.Context) error {
	if s.closed.CompareAndSwap(false, true) {
		s.pool.Close()
	}
	return nil
}

// classifyPostgresErr separates "could not reach the server" from write failures.
func classifyPostgresErr(collection string, err error) error {
	var connectErr *pgconn.ConnectError
	if errors.As(err, &connectErr) || errors.Is(err, puddle.ErrClosedPool) {
		return unavailableErr(backendPostgres, err)
	}
	return persistenceErr(backendPostgres, collection, err)
}
