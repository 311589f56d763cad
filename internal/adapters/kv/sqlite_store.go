package kv

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"how-far-is-it/internal/ports"
	"strings"
)

// SQLite-backed implementation of the KeyValueStore port.
// The app_state table must exist (see InitSchema).
type SqliteStore struct {
	DB *sql.DB
}

func NewSqliteStore(db *sql.DB) *SqliteStore {
	return &SqliteStore{DB: db}
}

func (s *SqliteStore) Get(ctx context.Context, key string) ([]byte, error) {
	if s.DB == nil {
		return nil, errors.New("sqlite store: DB is nil")
	}

	query := `
	SELECT
		payload
	FROM app_state
	WHERE state_key = ?;
	`

	var payload string
	err := s.DB.QueryRowContext(ctx, query, key).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ports.ErrKeyNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("sqlite store: get %q: %w", key, err)
	}

	return []byte(payload), nil
}

func (s *SqliteStore) Set(ctx context.Context, key string, value []byte) error {
	if s.DB == nil {
		return errors.New("sqlite store: DB is nil")
	}
	if strings.TrimSpace(key) == "" {
		return errors.New("sqlite store: empty key")
	}

	query := `
	INSERT OR REPLACE INTO app_state (
		state_key,
		payload,
		updated_at
	)
	VALUES (?, ?, CURRENT_TIMESTAMP);
	`
	if _, err := s.DB.ExecContext(ctx, query, key, string(value)); err != nil {
		return fmt.Errorf("sqlite store: set %q: %w", key, err)
	}

	return nil
}
