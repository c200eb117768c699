// Package database opens the remote PostgreSQL store and ensures its tables exist.
package database

import (
	"context"
	"fmt"
	"net/url"
	"sync"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
)

// DSN combines the remote store endpoint with its access key, which is used as
// the password unless the URL already carries one.
func DSN(endpoint, key string) (string, error) {
	u, err := url.Parse(endpoint)
	if err != nil {
		return "", fmt.Errorf("parsing REMOTE_STORE_URL: %w", err)
	}
	if u.Scheme != "postgres" && u.Scheme != "postgresql" {
		return "", fmt.Errorf("REMOTE_STORE_URL must be a postgres:// URL, got scheme %q", u.Scheme)
	}
	if key != "" {
		if _, set := u.User.Password(); !set {
			user := "postgres"
			if u.User != nil && u.User.Username() != "" {
				user = u.User.Username()
			}
			u.User = url.UserPassword(user, key)
		}
	}
	return u.String(), nil
}

// Open prepares the remote store handle. Nothing is dialed here: connections
// are made on first use, so an unreachable server surfaces as query errors.
func Open(endpoint, key string) (*sqlx.DB, error) {
	dsn, err := DSN(endpoint, key)
	if err != nil {
		return nil, err
	}
	db, err := sqlx.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening remote store: %w", err)
	}
	db.SetMaxOpenConns(10)
	db.SetConnMaxIdleTime(5 * time.Minute)
	return db, nil
}

var schema = []string{
	`CREATE TABLE IF NOT EXISTS products (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		price INT NOT NULL DEFAULT 0,
		short_story TEXT NOT NULL DEFAULT '',
		full_story TEXT NOT NULL DEFAULT '',
		maker_name TEXT NOT NULL DEFAULT '',
		maker_story TEXT NOT NULL DEFAULT '',
		region TEXT NOT NULL DEFAULT '',
		region_info TEXT NOT NULL DEFAULT '',
		material_info TEXT NOT NULL DEFAULT '',
		usage_tips TEXT NOT NULL DEFAULT '',
		video_url TEXT NOT NULL DEFAULT '',
		thumbnail_url TEXT NOT NULL DEFAULT '',
		images TEXT[] NOT NULL DEFAULT '{}',
		created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS chat_logs (
		id TEXT PRIMARY KEY,
		timestamp TIMESTAMPTZ NOT NULL,
		product_name TEXT,
		messages JSONB NOT NULL DEFAULT '[]',
		lead_name TEXT,
		lead_contact TEXT,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE INDEX IF NOT EXISTS chat_logs_timestamp_idx ON chat_logs (timestamp DESC)`,
}

// EnsureSchema creates the products and chat_logs tables when missing.
func EnsureSchema(ctx context.Context, db *sqlx.DB) error {
	for _, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("ensuring schema: %w", err)
		}
	}
	return nil
}

// ensureTimeout bounds one schema attempt so an unreachable server does not
// hold up the request that triggered it.
const ensureTimeout = 5 * time.Second

// Schema ensures the tables once. Until an attempt succeeds, every call to
// Ensure tries again.
type Schema struct {
	db *sqlx.DB

	mu   sync.Mutex
	done bool
}

func NewSchema(db *sqlx.DB) *Schema {
	return &Schema{db: db}
}

func (s *Schema) Ensure(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.done {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, ensureTimeout)
	defer cancel()
	if err := EnsureSchema(ctx, s.db); err != nil {
		return err
	}
	s.done = true
	return nil
}
