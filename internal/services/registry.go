package services

import (
	"context"
	"fmt"
	"how-far-is-it/internal/domain"
	"how-far-is-it/internal/platform/metrics"
	"how-far-is-it/internal/ports"
	"how-far-is-it/internal/store"
	"log/slog"
	"sync"
)

const (
	DefaultLandmarksKey = "key-locations"
	DefaultHomesKey     = "how-far-is-it:homes"
)

type RegistryConfig struct {
	LandmarksKey string
	HomesKey     string
	// PersistHomes keeps the home list across sessions. When false homes
	// live only as long as the process.
	PersistHomes bool
}

// Registry owns the landmark and home collections. Every mutation writes
// the full state back through the store; a failed write is logged and the
// in-memory state stays authoritative for the session.
//
// Registry is safe for concurrent use.
type Registry struct {
	mu        sync.RWMutex
	landmarks []domain.Landmark
	homes     []domain.Home

	cfg           RegistryConfig
	landmarkStore *store.Store[[]domain.Landmark]
	homeStore     *store.Store[[]domain.Home]
	logger        *slog.Logger
}

// NewRegistry rehydrates both collections from kv. Malformed payloads
// degrade to empty collections. A backend read failure is returned so the
// next mutation cannot overwrite state that was never loaded.
func NewRegistry(
	ctx context.Context,
	kv ports.KeyValueStore,
	cfg RegistryConfig,
	logger *slog.Logger,
	m *metrics.Metrics,
) (*Registry, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if m == nil {
		m = metrics.New()
	}
	if cfg.LandmarksKey == "" {
		cfg.LandmarksKey = DefaultLandmarksKey
	}
	if cfg.HomesKey == "" {
		cfg.HomesKey = DefaultHomesKey
	}

	onFailure := func(key string) { m.StorageReadFails.WithLabelValues(key).Inc() }

	r := &Registry{
		cfg:    cfg,
		logger: logger,
		landmarkStore: store.New[[]domain.Landmark](kv, logger,
			store.WithValidator(validateLandmarks),
			store.WithReadFailureHook[[]domain.Landmark](onFailure),
		),
		homeStore: store.New[[]domain.Home](kv, logger,
			store.WithValidator(validateHomes),
			store.WithReadFailureHook[[]domain.Home](onFailure),
		),
	}

	landmarks, err := r.landmarkStore.LoadOrDefault(ctx, cfg.LandmarksKey, nil)
	if err != nil {
		return nil, fmt.Errorf("load landmarks: %w", err)
	}
	r.landmarks = domain.CloneLandmarks(landmarks)
	assigned := false
	for i := range r.landmarks {
		if r.landmarks[i].EnsureID() {
			assigned = true
		}
	}

	r.homes = []domain.Home{}
	if cfg.PersistHomes {
		homes, err := r.homeStore.LoadOrDefault(ctx, cfg.HomesKey, nil)
		if err != nil {
			return nil, fmt.Errorf("load homes: %w", err)
		}
		r.homes = domain.CloneHomes(homes)
	}

	if assigned {
		r.persist(ctx)
	}

	return r, nil
}

func validateLandmarks(ls []domain.Landmark) error {
	for i, l := range ls {
		if err := l.Point.Validate(); err != nil {
			return fmt.Errorf("landmark #%d: %w", i, err)
		}
	}
	return nil
}

func validateHomes(hs []domain.Home) error {
	for i, h := range hs {
		if err := h.Point.Validate(); err != nil {
			return fmt.Errorf("home #%d: %w", i, err)
		}
	}
	return nil
}

// persist must be called with mu held.
func (r *Registry) persist(ctx context.Context) {
	if err := r.landmarkStore.Save(ctx, r.cfg.LandmarksKey, r.landmarks); err != nil {
		r.logger.ErrorContext(ctx, "persist landmarks failed", slog.Any("err", err))
	}
	if !r.cfg.PersistHomes {
		return
	}
	if err := r.homeStore.Save(ctx, r.cfg.HomesKey, r.homes); err != nil {
		r.logger.ErrorContext(ctx, "persist homes failed", slog.Any("err", err))
	}
}

// AddHome appends home. Duplicate addresses are allowed.
func (r *Registry) AddHome(ctx context.Context, home domain.Home) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.homes = append(r.homes, home)
	r.persist(ctx)
}

// AddLandmark appends l without a route and returns the stored copy.
func (r *Registry) AddLandmark(ctx context.Context, l domain.Landmark) domain.Landmark {
	r.mu.Lock()
	defer r.mu.Unlock()

	l.Route = nil
	l.EnsureID()
	r.landmarks = append(r.landmarks, l)
	r.persist(ctx)
	return l
}

// RemoveLandmark removes every landmark named name and reports how many
// were removed.
func (r *Registry) RemoveLandmark(ctx context.Context, name string) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	kept := make([]domain.Landmark, 0, len(r.landmarks))
	for _, l := range r.landmarks {
		if l.Name != name {
			kept = append(kept, l)
		}
	}
	removed := len(r.landmarks) - len(kept)
	if removed == 0 {
		return 0
	}

	r.landmarks = kept
	r.persist(ctx)
	return removed
}

func (r *Registry) RemoveLandmarkByID(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	i := r.indexOf(id)
	if i < 0 {
		return fmt.Errorf("remove landmark %q: %w", id, ErrUnknownLandmark)
	}

	r.landmarks = append(r.landmarks[:i:i], r.landmarks[i+1:]...)
	r.persist(ctx)
	return nil
}

func (r *Registry) RenameLandmark(ctx context.Context, id, name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	i := r.indexOf(id)
	if i < 0 {
		return fmt.Errorf("rename landmark %q: %w", id, ErrUnknownLandmark)
	}

	r.landmarks[i].Name = name
	r.persist(ctx)
	return nil
}

// RenameLandmarkAt renames by current position. The index is resolved
// under the lock, so it refers to the collection as it is now.
func (r *Registry) RenameLandmarkAt(ctx context.Context, index int, name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.checkIndex(index); err != nil {
		return fmt.Errorf("rename landmark: %w", err)
	}

	r.landmarks[index].Name = name
	r.persist(ctx)
	return nil
}

func (r *Registry) UpdateLandmarkRoute(ctx context.Context, id string, route *domain.RouteSummary) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	i := r.indexOf(id)
	if i < 0 {
		return fmt.Errorf("update landmark route %q: %w", id, ErrUnknownLandmark)
	}

	r.landmarks[i].Route = route
	r.persist(ctx)
	return nil
}

func (r *Registry) UpdateLandmarkRouteAt(ctx context.Context, index int, route *domain.RouteSummary) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.checkIndex(index); err != nil {
		return fmt.Errorf("update landmark route: %w", err)
	}

	r.landmarks[index].Route = route
	r.persist(ctx)
	return nil
}

// ReplaceLandmarks swaps the whole collection in one persisted write.
func (r *Registry) ReplaceLandmarks(ctx context.Context, ls []domain.Landmark) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.landmarks = domain.CloneLandmarks(ls)
	for i := range r.landmarks {
		r.landmarks[i].EnsureID()
	}
	r.persist(ctx)
}

// MergeRoutes applies routes keyed by landmark ID in one persisted write.
// Landmarks absent from routes keep their current route, and names are
// left as they are now.
func (r *Registry) MergeRoutes(ctx context.Context, routes map[string]*domain.RouteSummary) {
	r.mu.Lock()
	defer r.mu.Unlock()

	next := domain.CloneLandmarks(r.landmarks)
	for i := range next {
		if route, ok := routes[next[i].ID]; ok {
			next[i].Route = route
		}
	}
	r.landmarks = next
	r.persist(ctx)
}

// Import replaces both collections, as when seeding a fresh store.
func (r *Registry) Import(ctx context.Context, state domain.PersistedState) error {
	if err := validateLandmarks(state.Landmarks); err != nil {
		return fmt.Errorf("import: %w", err)
	}
	if err := validateHomes(state.Homes); err != nil {
		return fmt.Errorf("import: %w", err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.landmarks = domain.CloneLandmarks(state.Landmarks)
	for i := range r.landmarks {
		r.landmarks[i].EnsureID()
	}
	r.homes = domain.CloneHomes(state.Homes)
	r.persist(ctx)
	return nil
}

func (r *Registry) Landmarks() []domain.Landmark {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return domain.CloneLandmarks(r.landmarks)
}

func (r *Registry) LandmarkCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.landmarks)
}

func (r *Registry) Homes() []domain.Home {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return domain.CloneHomes(r.homes)
}

// Home returns the first home with the given address.
func (r *Registry) Home(address string) (domain.Home, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, h := range r.homes {
		if h.Address == address {
			return h, true
		}
	}
	return domain.Home{}, false
}

func (r *Registry) State() domain.PersistedState {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return domain.PersistedState{
		Landmarks: domain.CloneLandmarks(r.landmarks),
		Homes:     domain.CloneHomes(r.homes),
	}
}

// indexOf must be called with mu held.
func (r *Registry) indexOf(id string) int {
	for i, l := range r.landmarks {
		if l.ID == id {
			return i
		}
	}
	return -1
}

// checkIndex must be called with mu held.
func (r *Registry) checkIndex(index int) error {
	if index < 0 || index >= len(r.landmarks) {
		return fmt.Errorf("%w: %d of %d", ErrIndexOutOfRange, index, len(r.landmarks))
	}
	return nil
}
