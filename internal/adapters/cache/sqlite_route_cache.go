package cache

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"how-far-is-it/internal/domain"
	"strings"
)

// SQLite backed cache for origin->destination route responses.
// Origin keys are expected to be normalized by the caller.
type SqliteRouteCache struct {
	DB *sql.DB
}

func NewSqliteRouteCache(db *sql.DB) *SqliteRouteCache {
	return &SqliteRouteCache{DB: db}
}

// Fetch the cached response for one origin and destination.
func (s *SqliteRouteCache) Get(
	ctx context.Context,
	origin string,
	dest domain.GeoPoint,
) (domain.RouteResponse, bool, error) {
	if s.DB == nil {
		return domain.RouteResponse{}, false, errors.New("route cache: db is nil")
	}

	if strings.TrimSpace(origin) == "" {
		return domain.RouteResponse{}, false, errors.New("get route cache: origin must not be empty")
	}

	q := `
	SELECT response
    FROM route_cache
    WHERE origin = ?
        AND dest_lat = ?
        AND dest_lng = ?;
	`

	var raw string
	err := s.DB.QueryRowContext(ctx, q, origin, dest.Lat, dest.Lng).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.RouteResponse{}, false, nil
	}
	if err != nil {
		return domain.RouteResponse{}, false, fmt.Errorf("get route cache: query route_cache table: %w", err)
	}

	var resp domain.RouteResponse
	if err := json.Unmarshal([]byte(raw), &resp); err != nil {
		return domain.RouteResponse{}, false, fmt.Errorf("get route cache: decode response: %w", err)
	}

	return resp, true, nil
}

// Store the response for one origin and destination.
func (s *SqliteRouteCache) Put(
	ctx context.Context,
	origin string,
	dest domain.GeoPoint,
	resp domain.RouteResponse,
) error {
	if s.DB == nil {
		return errors.New("route cache: db is nil")
	}

	if strings.TrimSpace(origin) == "" {
		return errors.New("insert route cache: origin must not be empty")
	}

	payload, err := json.Marshal(resp)
	if err != nil {
		return fmt.Errorf("insert route cache: encode response: %w", err)
	}

	_, err = s.DB.ExecContext(ctx, `
	INSERT OR REPLACE INTO route_cache (
        origin,
        dest_lat,
        dest_lng,
        response
    )
    VALUES (?, ?, ?, ?)
	`, origin, dest.Lat, dest.Lng, string(payload))
	if err != nil {
		return fmt.Errorf("insert route cache dest=%s: %w", dest, err)
	}

	return nil
}
