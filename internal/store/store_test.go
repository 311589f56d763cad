package store

import (
	"context"
	"errors"
	"how-far-is-it/internal/adapters/kv"
	"how-far-is-it/internal/domain"
	"how-far-is-it/internal/platform/logging"
	"testing"

	"github.com/google/go-cmp/cmp"
)

type brokenKV struct{}

func (brokenKV) Get(context.Context, string) ([]byte, error) { return nil, errors.New("disk on fire") }
func (brokenKV) Set(context.Context, string, []byte) error  { return errors.New("disk on fire") }

func sampleLandmarks() []domain.Landmark {
	return []domain.Landmark{
		{
			ID:    "6b1f",
			Name:  "Office",
			Point: domain.GeoPoint{Lat: 51.5154, Lng: -0.1410},
			Route: &domain.RouteSummary{
				DurationText: "9 mins",
				DistanceText: "2.1 km",
				Raw: domain.RouteResponse{Routes: []domain.Route{{Legs: []domain.RouteLeg{{
					Duration: domain.TextValue{Text: "9 mins", Value: 540},
					Distance: domain.TextValue{Text: "2.1 km", Value: 2100},
				}}}}},
			},
		},
		{ID: "9c2e", Name: "Gym", Point: domain.GeoPoint{Lat: 51.52, Lng: -0.16}},
	}
}

func TestSaveThenLoadInFreshStoreRoundTrips(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	backend, err := kv.NewFileStore(dir)
	if err != nil {
		t.Fatalf("new file store: %v", err)
	}
	want := sampleLandmarks()
	if err := New[[]domain.Landmark](backend, logging.Discard()).Save(ctx, "key-locations", want); err != nil {
		t.Fatalf("save: %v", err)
	}

	// A new backend and store over the same directory stands in for a new process.
	reopened, _ := kv.NewFileStore(dir)
	got := New[[]domain.Landmark](reopened, logging.Discard()).Load(ctx, "key-locations", nil)

	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadMissingKeyReturnsDefault(t *testing.T) {
	s := New[[]domain.Home](kv.NewMemoryStore(), logging.Discard())
	def := []domain.Home{{Address: "default"}}

	got := s.Load(context.Background(), "how-far-is-it:homes", def)
	if diff := cmp.Diff(def, got); diff != "" {
		t.Fatalf("expected default (-want +got):\n%s", diff)
	}
}

func TestLoadCorruptPayloadReturnsDefault(t *testing.T) {
	cases := map[string]string{
		"not json":         `{{{`,
		"empty":            ``,
		"wrong shape":      `{"name":"Office"}`,
		"wrong type":       `[{"name":42}]`,
		"missing location": `[{"name":"Office","directions":{}}]`,
		"unknown field":    `[{"name":"Office","location":{"lat":51.5,"lng":-0.1},"colour":"red"}]`,
		"trailing values":  `[] []`,
	}

	for name, payload := range cases {
		t.Run(name, func(t *testing.T) {
			backend := kv.NewMemoryStore()
			_ = backend.Set(context.Background(), "key-locations", []byte(payload))

			var failures []string
			s := New[[]domain.Landmark](backend, logging.Discard(),
				WithReadFailureHook[[]domain.Landmark](func(key string) { failures = append(failures, key) }),
			)

			got := s.Load(context.Background(), "key-locations", []domain.Landmark{})
			if got == nil || len(got) != 0 {
				t.Fatalf("expected empty default, got %#v", got)
			}
			if len(failures) != 1 || failures[0] != "key-locations" {
				t.Fatalf("failure hook calls = %v", failures)
			}

			_, _, err := s.TryLoad(context.Background(), "key-locations")
			if !errors.Is(err, ErrStorageRead) {
				t.Fatalf("TryLoad err = %v, want ErrStorageRead", err)
			}
		})
	}
}

func TestLoadBackendFailureReturnsDefault(t *testing.T) {
	var failures int
	s := New[[]domain.Home](brokenKV{}, logging.Discard(),
		WithReadFailureHook[[]domain.Home](func(string) { failures++ }),
	)
	got := s.Load(context.Background(), "how-far-is-it:homes", []domain.Home{})
	if got == nil || len(got) != 0 {
		t.Fatalf("expected empty default, got %#v", got)
	}
	if failures != 0 {
		t.Fatalf("backend failure counted as a malformed payload")
	}

	if err := s.Save(context.Background(), "how-far-is-it:homes", nil); err == nil {
		t.Fatalf("expected save error from broken backend")
	}
}

func TestValidatorRejectsDecodedValue(t *testing.T) {
	backend := kv.NewMemoryStore()
	_ = backend.Set(context.Background(), "key-locations", []byte(`[{"id":"x","name":"Pole","location":{"lat":123,"lng":0}}]`))

	s := New[[]domain.Landmark](backend, logging.Discard(), WithValidator(func(ls []domain.Landmark) error {
		for _, l := range ls {
			if err := l.Point.Validate(); err != nil {
				return err
			}
		}
		return nil
	}))

	got := s.Load(context.Background(), "key-locations", []domain.Landmark{})
	if len(got) != 0 {
		t.Fatalf("expected invalid payload to fall back to default, got %v", got)
	}
}

func TestLoadOrDefaultSeparatesOutageFromCorruption(t *testing.T) {
	ctx := context.Background()

	_, err := New[[]domain.Landmark](brokenKV{}, logging.Discard()).LoadOrDefault(ctx, "key-locations", nil)
	if !errors.Is(err, ErrStorageUnavailable) {
		t.Fatalf("backend failure err = %v, want ErrStorageUnavailable", err)
	}
	if errors.Is(err, ErrStorageRead) {
		t.Fatalf("backend failure must not look like a malformed payload")
	}

	backend := kv.NewMemoryStore()
	_ = backend.Set(ctx, "key-locations", []byte(`{{{`))
	got, err := New[[]domain.Landmark](backend, logging.Discard()).LoadOrDefault(ctx, "key-locations", []domain.Landmark{})
	if err != nil {
		t.Fatalf("malformed payload err = %v, want nil", err)
	}
	if got == nil || len(got) != 0 {
		t.Fatalf("expected empty default, got %#v", got)
	}
}
