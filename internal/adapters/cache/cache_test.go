package cache

import (
	"context"
	"how-far-is-it/internal/domain"
	"how-far-is-it/internal/platform/db"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func openCacheDB(t *testing.T) *SqliteRouteCache {
	t.Helper()
	conn, err := db.OpenSQLite(filepath.Join(t.TempDir(), "cache.db"))
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() { conn.Close() })

	if err := InitSchema(context.Background(), conn); err != nil {
		t.Fatalf("init schema: %v", err)
	}
	return NewSqliteRouteCache(conn)
}

func TestSqliteRouteCacheRoundTrip(t *testing.T) {
	c := openCacheDB(t)
	ctx := context.Background()
	dest := domain.GeoPoint{Lat: 51.5154, Lng: -0.141}

	if _, ok, err := c.Get(ctx, "221B Baker St", dest); err != nil || ok {
		t.Fatalf("empty cache: ok=%v err=%v", ok, err)
	}

	want := domain.RouteResponse{Routes: []domain.Route{{Legs: []domain.RouteLeg{{
		Duration: domain.TextValue{Text: "9 mins", Value: 540},
		Distance: domain.TextValue{Text: "2.1 km", Value: 2100},
	}}}}}
	if err := c.Put(ctx, "221B Baker St", dest, want); err != nil {
		t.Fatalf("put: %v", err)
	}

	got, ok, err := c.Get(ctx, "221B Baker St", dest)
	if err != nil || !ok {
		t.Fatalf("get: ok=%v err=%v", ok, err)
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("mismatch (-want +got):\n%s", diff)
	}

	if _, ok, _ := c.Get(ctx, "10 Downing St", dest); ok {
		t.Fatalf("cache hit for a different origin")
	}
}

func TestSqliteGeocodeCacheRoundTrip(t *testing.T) {
	rc := openCacheDB(t)
	c := NewSqliteGeocodeCache(rc.DB)
	ctx := context.Background()

	baker := domain.GeoPoint{Lat: 51.5237, Lng: -0.1585}
	if err := c.Put(ctx, "221B Baker St", baker); err != nil {
		t.Fatalf("put: %v", err)
	}
	if err := c.Put(ctx, "Pole", domain.GeoPoint{Lat: 95}); err == nil {
		t.Fatalf("expected out-of-range point to be rejected")
	}
	if err := c.Put(ctx, "  ", baker); err == nil {
		t.Fatalf("expected empty key to be rejected")
	}

	got, ok, err := c.Get(ctx, "221B Baker St")
	if err != nil || !ok {
		t.Fatalf("get: ok=%v err=%v", ok, err)
	}
	if got != baker {
		t.Fatalf("got %v, want %v", got, baker)
	}

	for _, miss := range []string{"Nowhere", "Pole", ""} {
		if _, ok, err := c.Get(ctx, miss); err != nil || ok {
			t.Fatalf("Get(%q): ok=%v err=%v", miss, ok, err)
		}
	}
}
