// Package sqlite is the SQLite backend for session persistence.
package sqlite

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"log/slog"
	"time"

	_ "modernc.org/sqlite"

	"github.com/secretshows/secretshows-server/internal/session"
	"github.com/secretshows/secretshows-server/internal/store"
)

//go:embed schema.sql
var schemaSQL string

// Store provides SQLite-backed persistence for session state.
type Store struct {
	db     *sql.DB
	logger *slog.Logger
	now    func() time.Time
}

// Open creates a new SQLite store at the given path.
// It configures WAL mode, sets pragmas, and runs schema migrations.
func Open(path string, logger *slog.Logger) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	db.SetMaxOpenConns(4)
	db.SetMaxIdleConns(2)
	db.SetConnMaxLifetime(time.Hour)

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA busy_timeout=5000",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("exec pragma %q: %w", pragma, err)
		}
	}

	if _, err := db.Exec(schemaSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("exec schema: %w", err)
	}

	if logger != nil {
		logger.Info("SQLite database opened successfully", "path", path)
	}

	return &Store{
		db:     db,
		logger: logger,
		now:    func() time.Time { return time.Now().UTC() },
	}, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Ping checks the connection.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Repository returns the session repository for profileID.
func (s *Store) Repository(_ context.Context, profileID string) (session.Repository, error) {
	if profileID == "" {
		return nil, store.ErrEmptyProfile
	}
	return session.NewRepository(s.Profile(profileID)), nil
}

// Profile returns the raw key-value namespace of profileID.
func (s *Store) Profile(profileID string) session.KV {
	return &profileKV{store: s, profileID: profileID}
}

// Profiles lists every profile with at least one stored value.
func (s *Store) Profiles(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT DISTINCT profile_id FROM session_values ORDER BY profile_id`)
	if err != nil {
		return nil, fmt.Errorf("list profiles: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan profile: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// DeleteProfile removes every value of profileID.
func (s *Store) DeleteProfile(ctx context.Context, profileID string) error {
	if profileID == "" {
		return store.ErrEmptyProfile
	}
	if _, err := s.db.ExecContext(ctx,
		`DELETE FROM session_values WHERE profile_id = ?`, profileID); err != nil {
		return fmt.Errorf("delete profile %s: %w", profileID, err)
	}
	return nil
}

// formatTime formats a time.Time to RFC3339Nano for storage.
func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

type profileKV struct {
	store     *Store
	profileID string
}

func (p *profileKV) Get(ctx context.Context, key string) ([]byte, error) {
	var value []byte
	err := p.store.db.QueryRowContext(ctx,
		`SELECT value FROM session_values WHERE profile_id = ? AND key_name = ?`,
		p.profileID, key,
	).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, session.ErrKeyNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get %s: %w", key, err)
	}
	return value, nil
}

func (p *profileKV) Set(ctx context.Context, key string, value []byte) error {
	_, err := p.store.db.ExecContext(ctx, `
		INSERT INTO session_values (profile_id, key_name, value, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (profile_id, key_name) DO UPDATE SET
			value = excluded.value,
			updated_at = excluded.updated_at`,
		p.profileID, key, value, formatTime(p.store.now()),
	)
	if err != nil {
		return fmt.Errorf("set %s: %w", key, err)
	}
	return nil
}

func (p *profileKV) Delete(ctx context.Context, key string) error {
	if _, err := p.store.db.ExecContext(ctx,
		`DELETE FROM session_values WHERE profile_id = ? AND key_name = ?`,
		p.profileID, key,
	); err != nil {
		return fmt.Errorf("delete %s: %w", key, err)
	}
	return nil
}
