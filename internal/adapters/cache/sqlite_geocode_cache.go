package cache

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"how-far-is-it/internal/domain"
	"strings"
)

// SQLite backed cache of resolved home addresses. The provider geocodes
// only origins, so lookups are one address at a time and keys arrive
// already normalized.
type SqliteGeocodeCache struct {
	DB *sql.DB
}

func NewSqliteGeocodeCache(db *sql.DB) *SqliteGeocodeCache {
	return &SqliteGeocodeCache{DB: db}
}

// Get reports the cached point for address, if any.
func (s *SqliteGeocodeCache) Get(ctx context.Context, address string) (domain.GeoPoint, bool, error) {
	if s.DB == nil {
		return domain.GeoPoint{}, false, errors.New("geocode cache: db is nil")
	}
	if strings.TrimSpace(address) == "" {
		return domain.GeoPoint{}, false, nil
	}

	var p domain.GeoPoint
	err := s.DB.QueryRowContext(ctx,
		`SELECT lat, lng FROM geocode_cache WHERE address = ?;`,
		address,
	).Scan(&p.Lat, &p.Lng)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.GeoPoint{}, false, nil
	}
	if err != nil {
		return domain.GeoPoint{}, false, fmt.Errorf("get geocode cache %q: %w", address, err)
	}

	return p, true, nil
}

// Put records the point for address, replacing an older answer.
func (s *SqliteGeocodeCache) Put(ctx context.Context, address string, p domain.GeoPoint) error {
	if s.DB == nil {
		return errors.New("geocode cache: db is nil")
	}
	if strings.TrimSpace(address) == "" {
		return errors.New("put geocode cache: empty address key")
	}
	if err := p.Validate(); err != nil {
		return fmt.Errorf("put geocode cache %q: %w", address, err)
	}

	_, err := s.DB.ExecContext(ctx,
		`INSERT OR REPLACE INTO geocode_cache (address, lat, lng) VALUES (?, ?, ?);`,
		address, p.Lat, p.Lng,
	)
	if err != nil {
		return fmt.Errorf("put geocode cache %q: %w", address, err)
	}

	return nil
}
