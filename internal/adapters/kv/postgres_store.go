package kv

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"how-far-is-it/internal/ports"
	"strings"
)

// Postgres-backed implementation of the KeyValueStore port, used through
// the pgx stdlib driver. Payloads are stored as JSONB, so only valid JSON
// can be written.
type PostgresStore struct {
	DB *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{DB: db}
}

func (s *PostgresStore) Get(ctx context.Context, key string) ([]byte, error) {
	if s.DB == nil {
		return nil, errors.New("postgres store: DB is nil")
	}

	q := `
	SELECT payload::text
	FROM app_state
	WHERE state_key = $1;
	`

	var payload string
	err := s.DB.QueryRowContext(ctx, q, key).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ports.ErrKeyNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("postgres store: get %q: %w", key, err)
	}

	return []byte(payload), nil
}

func (s *PostgresStore) Set(ctx context.Context, key string, value []byte) error {
	if s.DB == nil {
		return errors.New("postgres store: DB is nil")
	}
	if strings.TrimSpace(key) == "" {
		return errors.New("postgres store: empty key")
	}

	q := `
	INSERT INTO app_state (state_key, payload, updated_at)
	VALUES ($1, $2::jsonb, now())
	ON CONFLICT (state_key) DO UPDATE
	SET payload = EXCLUDED.payload,
		updated_at = EXCLUDED.updated_at;
	`
	if _, err := s.DB.ExecContext(ctx, q, key, string(value)); err != nil {
		return fmt.Errorf("postgres store: set %q: %w", key, err)
	}

	return nil
}
