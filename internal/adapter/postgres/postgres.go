package postgres

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"
	"net"
	"time"

	"board/internal/domain"

	"github.com/lib/pq"
)

// DB wraps a *sql.DB and implements domain repository interfaces.
type DB struct {
	sql *sql.DB
}

// Open connects to PostgreSQL, pings, and optionally runs migrations.
func Open(connStr string, migrate bool) (*DB, error) {
	s, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, err
	}
	s.SetMaxOpenConns(10)
	s.SetMaxIdleConns(5)
	s.SetConnMaxLifetime(5 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.PingContext(ctx); err != nil {
		_ = s.Close()
		return nil, mapError(err)
	}

	d := &DB{sql: s}
	if migrate {
		if err := d.migrate(ctx); err != nil {
			_ = s.Close()
			return nil, err
		}
	}
	return d, nil
}

// Close closes the underlying database connection.
func (d *DB) Close() error {
	return d.sql.Close()
}

// Check pings the server and probes the posts table.
func (d *DB) Check(ctx context.Context) error {
	if err := d.sql.PingContext(ctx); err != nil {
		return mapError(err)
	}
	var one int
	err := d.sql.QueryRowContext(ctx, "SELECT 1 FROM posts LIMIT 1;").Scan(&one)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return mapError(err)
	}
	return nil
}

func (d *DB) migrate(ctx context.Context) error {
	stmts := []string{
		"CREATE TABLE IF NOT EXISTS users (id BIGSERIAL PRIMARY KEY, username TEXT UNIQUE NOT NULL, password_hash TEXT NOT NULL DEFAULT '', created_at TIMESTAMPTZ NOT NULL DEFAULT now());",
		"CREATE TABLE IF NOT EXISTS posts (id BIGSERIAL PRIMARY KEY, author TEXT NOT NULL, password_hash TEXT, title TEXT NOT NULL, content TEXT NOT NULL DEFAULT '', created_at TIMESTAMPTZ NOT NULL DEFAULT now());",
		"CREATE INDEX IF NOT EXISTS idx_posts_created_at ON posts(created_at DESC);",
		"CREATE TABLE IF NOT EXISTS sessions (token TEXT PRIMARY KEY, user_id BIGINT NOT NULL, username TEXT NOT NULL, is_admin BOOLEAN NOT NULL DEFAULT FALSE, expires_at TIMESTAMPTZ NOT NULL, created_at TIMESTAMPTZ NOT NULL);",
		"CREATE INDEX IF NOT EXISTS idx_sessions_expires_at ON sessions(expires_at);",
	}
	for _, stmt := range stmts {
		if _, err := d.sql.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}

	// Boards created before member accounts existed lack these columns.
	alterStmts := []string{
		"ALTER TABLE users ADD COLUMN IF NOT EXISTS is_blacklisted BOOLEAN NOT NULL DEFAULT FALSE;",
		"ALTER TABLE posts ADD COLUMN IF NOT EXISTS user_id BIGINT REFERENCES users(id) ON DELETE SET NULL;",
		"CREATE INDEX IF NOT EXISTS idx_posts_user_id ON posts(user_id);",
		"CREATE INDEX IF NOT EXISTS idx_users_created_at ON users(created_at DESC);",
	}
	for _, stmt := range alterStmts {
		if _, err := d.sql.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}
	return nil
}

// mapError classifies driver errors by SQLSTATE rather than message text.
func mapError(err error) error {
	if err == nil {
		return nil
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch {
		case pqErr.Code == "23505":
			return domain.Wrap(domain.KindConflict, "", err)
		case pqErr.Code == "42P01":
			return domain.Wrap(domain.KindStoreUnavailable, "", fmt.Errorf("%w: %w", domain.ErrSchemaMissing, err))
		case pqErr.Code.Class() == "08", pqErr.Code.Class() == "57":
			return domain.Wrap(domain.KindStoreUnavailable, "", err)
		}
		return err
	}
	var netErr net.Error
	if errors.Is(err, driver.ErrBadConn) || errors.As(err, &netErr) {
		return domain.Wrap(domain.KindStoreUnavailable, "", err)
	}
	return err
}
