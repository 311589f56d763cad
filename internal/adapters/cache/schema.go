package cache

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// Initialize the SQLite schema for the provider caches.
func InitSchema(ctx context.Context, db *sql.DB) error {
	if db == nil {
		return errors.New("init cache schema: DB is nil")
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("init cache schema: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	createRouteCacheQuery := `
	CREATE TABLE IF NOT EXISTS route_cache (
        origin TEXT NOT NULL,
        dest_lat REAL NOT NULL,
        dest_lng REAL NOT NULL,
        response TEXT NOT NULL,
        PRIMARY KEY (origin, dest_lat, dest_lng)
    );
	`

	createGeocodeCacheQuery := `
	CREATE TABLE IF NOT EXISTS geocode_cache (
        address TEXT PRIMARY KEY,
        lng REAL NOT NULL,
        lat REAL NOT NULL
    );
	`

	statements := []string{
		createRouteCacheQuery,
		createGeocodeCacheQuery,
	}

	for i, stmt := range statements {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("init cache schema: exec statement #%d: %w", i+1, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("init cache schema: commit tx: %w", err)
	}

	return nil
}
