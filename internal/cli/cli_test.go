package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"how-far-is-it/internal/adapters/kv"
	"how-far-is-it/internal/adapters/routing"
	"how-far-is-it/internal/domain"
	"how-far-is-it/internal/platform/logging"
	"how-far-is-it/internal/services"
	"strings"
	"testing"

	"gopkg.in/yaml.v3"
)

var _ LocationStore = (*services.Registry)(nil)
var _ RouteComputer = (*services.Aggregator)(nil)

type stubGeocoder map[string]domain.GeoPoint

func (g stubGeocoder) Geocode(_ context.Context, address string) (domain.GeoPoint, error) {
	p, ok := g[address]
	if !ok {
		return domain.GeoPoint{}, errors.New("not found")
	}
	return p, nil
}

type harness struct {
	deps     Dependencies
	registry *services.Registry
}

func newHarness(t *testing.T, geocoder stubGeocoder) *harness {
	t.Helper()
	registry, err := services.NewRegistry(context.Background(), kv.NewMemoryStore(),
		services.RegistryConfig{PersistHomes: true}, logging.Discard(), nil)
	if err != nil {
		t.Fatalf("open registry: %v", err)
	}
	provider := routing.NewMockRouteProvider(nil, func(address string) (domain.GeoPoint, bool) {
		h, ok := registry.Home(address)
		return h.Point, ok
	})

	deps := Dependencies{
		Locations: registry,
		Routes:    services.NewAggregator(provider, services.AggregatorConfig{}, logging.Discard(), nil),
		Version:   "test",
	}
	if geocoder != nil {
		deps.Geocoder = geocoder
	}
	return &harness{deps: deps, registry: registry}
}

func (h *harness) run(t *testing.T, args ...string) (int, string, string) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	code := Execute(context.Background(), args, h.deps, &stdout, &stderr)
	return code, stdout.String(), stderr.String()
}

func TestHomeAddWithCoordinates(t *testing.T) {
	h := newHarness(t, nil)

	code, out, errOut := h.run(t, "home", "add", "221B", "Baker", "St", "--lat", "51.5", "--lng", "-0.15")
	if code != 0 {
		t.Fatalf("exit %d: %s", code, errOut)
	}
	if !strings.Contains(out, `"221B Baker St"`) {
		t.Fatalf("output = %q", out)
	}

	homes := h.registry.Homes()
	if len(homes) != 1 || homes[0].Point != (domain.GeoPoint{Lat: 51.5, Lng: -0.15}) {
		t.Fatalf("homes = %+v", homes)
	}
}

func TestHomeAddGeocodesAddress(t *testing.T) {
	h := newHarness(t, stubGeocoder{"221B Baker St": {Lat: 51.5, Lng: -0.15}})

	if code, _, errOut := h.run(t, "home", "add", "221B Baker St"); code != 0 {
		t.Fatalf("exit %d: %s", code, errOut)
	}
	if got := h.registry.Homes()[0].Point.Lat; got != 51.5 {
		t.Fatalf("lat = %v", got)
	}
}

func TestHomeAddWithoutGeocoderNeedsCoordinates(t *testing.T) {
	h := newHarness(t, nil)

	code, _, errOut := h.run(t, "home", "add", "221B Baker St")
	if code != 1 || !strings.Contains(errOut, "--lat and --lng") {
		t.Fatalf("exit %d, stderr %q", code, errOut)
	}

	code, _, errOut = h.run(t, "home", "add", "221B Baker St", "--lat", "51.5")
	if code != 1 || !strings.Contains(errOut, "together") {
		t.Fatalf("exit %d, stderr %q", code, errOut)
	}
}

func TestHomeAddRejectedWhenHomesAreSessionOnly(t *testing.T) {
	h := newHarness(t, nil)
	h.deps.SessionOnlyHomes = true

	code, _, errOut := h.run(t, "home", "add", "221B Baker St", "--lat", "51.5", "--lng", "-0.15")
	if code != 1 || !strings.Contains(errOut, "storage.persist_homes") {
		t.Fatalf("exit %d, stderr %q", code, errOut)
	}
	if got := h.registry.Homes(); len(got) != 0 {
		t.Fatalf("home added despite session-only homes: %+v", got)
	}

	if code, _, errOut := h.run(t, "home", "list"); code != 0 {
		t.Fatalf("home list: exit %d: %s", code, errOut)
	}
}

func TestRoutesComputesAndPersists(t *testing.T) {
	h := newHarness(t, nil)
	h.run(t, "home", "add", "221B Baker St", "--lat", "51.5", "--lng", "-0.15")
	h.run(t, "landmark", "add", "Regent St", "--name", "Office", "--lat", "51.5154", "--lng", "-0.141")
	h.run(t, "landmark", "add", "Marylebone Rd", "--name", "Gym", "--lat", "51.52", "--lng", "-0.16")

	code, out, errOut := h.run(t, "routes", "--format", "json")
	if code != 0 {
		t.Fatalf("exit %d: %s", code, errOut)
	}

	var payload routesPayload
	if err := json.Unmarshal([]byte(out), &payload); err != nil {
		t.Fatalf("decode: %v\n%s", err, out)
	}
	if payload.Home != "221B Baker St" || len(payload.Landmarks) != 2 {
		t.Fatalf("payload = %+v", payload)
	}
	for _, l := range payload.Landmarks {
		if l.Duration == "" || l.Distance == "" {
			t.Fatalf("landmark without route: %+v", l)
		}
	}

	for _, l := range h.registry.Landmarks() {
		if l.Route == nil {
			t.Fatalf("route for %q was not persisted", l.Name)
		}
	}
}

func TestRoutesUnknownHome(t *testing.T) {
	h := newHarness(t, nil)
	h.run(t, "home", "add", "221B Baker St", "--lat", "51.5", "--lng", "-0.15")

	code, _, errOut := h.run(t, "routes", "--home", "Nowhere")
	if code != 1 || !strings.Contains(errOut, "unknown home") {
		t.Fatalf("exit %d, stderr %q", code, errOut)
	}
}

func TestLandmarkRenameAndRemove(t *testing.T) {
	h := newHarness(t, nil)
	h.run(t, "landmark", "add", "Regent St", "--name", "Gym", "--lat", "51.5154", "--lng", "-0.141")
	h.run(t, "landmark", "add", "Marylebone Rd", "--name", "Gym", "--lat", "51.52", "--lng", "-0.16")

	id := h.registry.Landmarks()[0].ID
	if code, _, errOut := h.run(t, "landmark", "rename", id, "Office"); code != 0 {
		t.Fatalf("rename exit %d: %s", code, errOut)
	}

	code, out, _ := h.run(t, "landmark", "remove", "Gym")
	if code != 0 || !strings.Contains(out, "removed 1") {
		t.Fatalf("remove exit %d: %q", code, out)
	}

	if code, _, _ := h.run(t, "landmark", "remove", "Gym"); code != 3 {
		t.Fatalf("removing a missing name exit = %d, want 3", code)
	}

	code, out, _ = h.run(t, "landmark", "list", "--format", "yaml")
	if code != 0 {
		t.Fatalf("list exit %d", code)
	}
	var rows []landmarkRow
	if err := yaml.Unmarshal([]byte(out), &rows); err != nil {
		t.Fatalf("decode yaml: %v\n%s", err, out)
	}
	if len(rows) != 1 || rows[0].Name != "Office" {
		t.Fatalf("rows = %+v", rows)
	}
}

func TestLandmarkAddUsesDefaultName(t *testing.T) {
	h := newHarness(t, nil)
	h.deps.DefaultLandmarkName = "Untitled"

	h.run(t, "landmark", "add", "Regent St", "--lat", "51.5154", "--lng", "-0.141")
	if got := h.registry.Landmarks()[0].Name; got != "Untitled" {
		t.Fatalf("name = %q", got)
	}
}

func TestParseFormat(t *testing.T) {
	for in, want := range map[string]Format{"": FormatTable, "JSON": FormatJSON, " yaml ": FormatYAML} {
		got, err := ParseFormat(in)
		if err != nil || got != want {
			t.Fatalf("ParseFormat(%q) = %q, %v", in, got, err)
		}
	}
	if _, err := ParseFormat("xml"); err == nil {
		t.Fatalf("expected error for xml")
	}
}

func TestHomeListTable(t *testing.T) {
	h := newHarness(t, nil)
	h.run(t, "home", "add", "221B Baker St", "--lat", "51.5", "--lng", "-0.15")

	_, out, _ := h.run(t, "home", "list")
	lines := strings.Split(strings.TrimSpace(out), "\n")
	if len(lines) != 2 || !strings.HasPrefix(lines[0], "ADDRESS") || !strings.Contains(lines[1], "51.500000") {
		t.Fatalf("table = %q", out)
	}
}
