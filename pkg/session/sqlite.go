package session

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // pure go sqlite driver
)

const sqliteSchema = `CREATE TABLE IF NOT EXISTS sessions (
	id         TEXT PRIMARY KEY,
	config     TEXT NOT NULL,
	colors     TEXT NOT NULL,
	created_at INTEGER NOT NULL,
	updated_at INTEGER NOT NULL
)`

// SQLiteStore keeps documents in a single SQLite file. Timestamps are stored
// as Unix nanoseconds so that ORDER BY matches creation order.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens (creating if needed) the database at path. The
// special path ":memory:" gives a private in-memory database.
func NewSQLiteStore(ctx context.Context, path string) (*SQLiteStore, error) {
	if path == "" {
		return nil, errors.New("sqlite path is required")
	}
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
			return nil, fmt.Errorf("create dirs: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// SQLite serializes writers; one connection also keeps ":memory:" shared.
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, sqliteSchema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create sessions table: %w", err)
	}
	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) Save(ctx context.Context, doc *Document) (string, error) {
	d := stamp(doc, true)
	config, colors, err := encodeFields(d)
	if err != nil {
		return "", err
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO sessions (id, config, colors, created_at, updated_at) VALUES (?, ?, ?, ?, ?)`,
		d.ID, string(config), string(colors), d.CreatedAt.UnixNano(), d.UpdatedAt.UnixNano())
	if err != nil {
		return "", fmt.Errorf("insert session: %w", err)
	}
	return d.ID, nil
}

func (s *SQLiteStore) Get(ctx context.Context, id string) (*Document, error) {
	var (
		config, colors   string
		created, updated int64
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT config, colors, created_at, updated_at FROM sessions WHERE id = ?`, id).
		Scan(&config, &colors, &created, &updated)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("select session: %w", err)
	}
	return decodeRow(id, []byte(config), []byte(colors), time.Unix(0, created), time.Unix(0, updated))
}

func (s *SQLiteStore) List(ctx context.Context) ([]*Document, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, config, colors, created_at, updated_at FROM sessions ORDER BY created_at DESC, id DESC`)
	if err != nil {
		return nil, fmt.Errorf("select sessions: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []*Document
	for rows.Next() {
		var (
			id, config, colors string
			created, updated   int64
		)
		if err := rows.Scan(&id, &config, &colors, &created, &updated); err != nil {
			return nil, fmt.Errorf("scan: %w", err)
		}
		d, err := decodeRow(id, []byte(config), []byte(colors), time.Unix(0, created), time.Unix(0, updated))
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

func (s *SQLiteStore) Close() error { return s.db.Close() }

var _ Store = (*SQLiteStore)(nil)
