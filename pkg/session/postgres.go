package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const postgresSchema = `CREATE TABLE IF NOT EXISTS sitegrid_sessions (
	id         UUID PRIMARY KEY,
	config     JSONB NOT NULL,
	colors     JSONB NOT NULL,
	created_at TIMESTAMPTZ NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL
)`

// PostgresStore keeps documents in a Postgres table with JSONB columns.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore connects to dsn and ensures the table exists.
func NewPostgresStore(ctx context.Context, dsn string) (*PostgresStore, error) {
	if dsn == "" {
		return nil, errors.New("postgres dsn is required")
	}
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	if _, err := pool.Exec(ctx, postgresSchema); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ensure sessions table: %w", err)
	}
	return &PostgresStore{pool: pool}, nil
}

func (s *PostgresStore) Save(ctx context.Context, doc *Document) (string, error) {
	d := stamp(doc, true)
	config, colors, err := encodeFields(d)
	if err != nil {
		return "", err
	}

	_, err = s.pool.Exec(ctx,
		`INSERT INTO sitegrid_sessions (id, config, colors, created_at, updated_at)
		 VALUES ($1, $2::jsonb, $3::jsonb, $4, $5)`,
		d.ID, string(config), string(colors), d.CreatedAt, d.UpdatedAt)
	if err != nil {
		return "", fmt.Errorf("insert session: %w", err)
	}
	return d.ID, nil
}

func (s *PostgresStore) Get(ctx context.Context, id string) (*Document, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, ErrNotFound
	}

	var (
		config, colors   []byte
		created, updated time.Time
	)
	err := s.pool.QueryRow(ctx,
		`SELECT config, colors, created_at, updated_at FROM sitegrid_sessions WHERE id = $1`, id).
		Scan(&config, &colors, &created, &updated)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("select session: %w", err)
	}
	return decodeRow(id, config, colors, created, updated)
}

func (s *PostgresStore) List(ctx context.Context) ([]*Document, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id::text, config, colors, created_at, updated_at
		 FROM sitegrid_sessions ORDER BY created_at DESC, id DESC`)
	if err != nil {
		return nil, fmt.Errorf("select sessions: %w", err)
	}
	defer rows.Close()

	var out []*Document
	for rows.Next() {
		var (
			id               string
			config, colors   []byte
			created, updated time.Time
		)
		if err := rows.Scan(&id, &config, &colors, &created, &updated); err != nil {
			return nil, fmt.Errorf("scan: %w", err)
		}
		d, err := decodeRow(id, config, colors, created, updated)
		if err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate sessions: %w", err)
	}
	return out, nil
}

func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}

var _ Store = (*PostgresStore)(nil)
