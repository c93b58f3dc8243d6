package resource

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"sync"

	_ "github.com/jackc/pgx/v5/stdlib" // register pgx as a database/sql driver
)

const (
	postgresDriver = "pgx"
	// defaultPostgresDSN is used when no DSN is configured.
	defaultPostgresDSN = "postgres://localhost/glucosim?sslmode=disable"
)

const postgresSchema = `
CREATE TABLE IF NOT EXISTS glucosim_resources (
    name TEXT PRIMARY KEY,
    data BYTEA NOT NULL,
    updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
)`

var (
	sqlOpen = sql.Open
	openMu  sync.Mutex
)

// Postgres stores fixture resources in a Postgres table.
type Postgres struct {
	db *sql.DB
}

// NewPostgres connects using dsn (falls back to defaultPostgresDSN) and
// ensures the resources table exists.
func NewPostgres(ctx context.Context, dsn string) (*Postgres, error) {
	if dsn == "" {
		dsn = defaultPostgresDSN
	}
	openMu.Lock()
	db, err := sqlOpen(postgresDriver, dsn)
	openMu.Unlock()
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	if _, err := db.ExecContext(ctx, postgresSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("ensure resources table: %w", err)
	}
	return &Postgres{db: db}, nil
}

// Driver returns DriverPostgres.
func (p *Postgres) Driver() Driver { return DriverPostgres }

// Load returns the data stored under name.
func (p *Postgres) Load(ctx context.Context, name string) ([]byte, error) {
	if !validName(name) {
		return nil, fmt.Errorf("invalid resource name %q", name)
	}
	var data []byte
	err := p.db.QueryRowContext(ctx, `SELECT data FROM glucosim_resources WHERE name = $1`, name).Scan(&data)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
		}
		return nil, fmt.Errorf("query resource %s: %w", name, err)
	}
	return data, nil
}

// Put upserts the resource stored under name.
func (p *Postgres) Put(ctx context.Context, name string, data []byte) error {
	if !validName(name) {
		return fmt.Errorf("invalid resource name %q", name)
	}
	_, err := p.db.ExecContext(ctx, `
		INSERT INTO glucosim_resources (name, data) VALUES ($1, $2)
		ON CONFLICT (name) DO UPDATE SET data = EXCLUDED.data, updated_at = now()`, name, data)
	if err != nil {
		return fmt.Errorf("store resource %s: %w", name, err)
	}
	return nil
}

// List returns all stored resource names.
func (p *Postgres) List(ctx context.Context) ([]string, error) {
	rows, err := p.db.QueryContext(ctx, `SELECT name FROM glucosim_resources`)
	if err != nil {
		return nil, fmt.Errorf("list resources: %w", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var n string
		if err := rows.Scan(&n); err != nil {
			return nil, fmt.Errorf("scan resource name: %w", err)
		}
		names = append(names, n)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	sort.Strings(names)
	return names, nil
}

// Close closes the connection pool.
func (p *Postgres) Close() error {
	return p.db.Close()
}
