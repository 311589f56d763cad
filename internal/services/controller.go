package services

import (
	"context"
	"fmt"
	"how-far-is-it/internal/domain"
	"how-far-is-it/internal/platform/metrics"
	"how-far-is-it/internal/platform/obs"
	"log/slog"
	"sync"
	"time"
)

type ControllerConfig struct {
	// DefaultLandmarkName labels landmarks committed from a selection.
	DefaultLandmarkName string
	// Development turns an invalid commit into a panic.
	Development bool
}

// View is the snapshot handed to presentation adapters.
type View struct {
	Homes         []domain.Home            `json:"homes"`
	ActiveHome    string                   `json:"active_home"`
	Landmarks     []domain.Landmark        `json:"landmarks"`
	Pending       *domain.PendingSelection `json:"pending,omitempty"`
	HomesDisabled bool                     `json:"homes_disabled"`
	CanCommit     bool                     `json:"can_commit"`
	// ClearInput asks the place-selection widget to reset after a home
	// was committed. It stays set until the next selection.
	ClearInput bool   `json:"clear_input"`
	LastError  string `json:"last_error,omitempty"`
}

// trigger is the dependency set that decides whether routes are stale.
// Landmarks are compared by count only, so renames never recompute.
type trigger struct {
	activeHome string
	landmarks  int
}

// Controller drives the selection state machine and decides when routes
// are recomputed. Each batch carries a generation number; results are
// merged only if no newer batch started in the meantime.
type Controller struct {
	registry   *Registry
	aggregator *Aggregator
	cfg        ControllerConfig
	logger     *slog.Logger
	metrics    *metrics.Metrics

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu         sync.Mutex
	pending    *domain.PendingSelection
	activeHome string
	clearInput bool
	lastErr    error
	last       trigger
	generation uint64
	busy       bool
	closed     bool
	subs       map[chan View]struct{}
}

// NewController makes the first home active, if there is one, and starts
// the initial batch when there is anything to route.
func NewController(
	registry *Registry,
	aggregator *Aggregator,
	cfg ControllerConfig,
	logger *slog.Logger,
	m *metrics.Metrics,
) *Controller {
	if logger == nil {
		logger = slog.Default()
	}
	if m == nil {
		m = metrics.New()
	}

	ctx, cancel := context.WithCancel(context.Background())
	c := &Controller{
		registry:   registry,
		aggregator: aggregator,
		cfg:        cfg,
		logger:     logger,
		metrics:    m,
		ctx:        ctx,
		cancel:     cancel,
		subs:       map[chan View]struct{}{},
	}

	if homes := registry.Homes(); len(homes) > 0 {
		c.activeHome = homes[0].Address
	}

	c.mu.Lock()
	c.evaluate(ctx)
	c.mu.Unlock()

	return c
}

// SelectPlace records sel as the pending selection, replacing any earlier one.
func (c *Controller) SelectPlace(ctx context.Context, sel domain.PlaceSelection) error {
	if err := sel.Validate(); err != nil {
		return fmt.Errorf("select place: %w", err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.pending = &domain.PendingSelection{Address: sel.FormattedAddress, Point: sel.Point}
	c.clearInput = false
	c.notify()
	return nil
}

// CanCommit reports whether a pending selection exists.
func (c *Controller) CanCommit() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.pending != nil
}

// CommitHome appends the pending selection as a home and makes it active.
func (c *Controller) CommitHome(ctx context.Context) (domain.Home, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.pending == nil {
		return domain.Home{}, c.invalidCommit(ctx, "home")
	}

	home := c.pending.AsHome()
	c.registry.AddHome(ctx, home)
	c.pending = nil
	c.activeHome = home.Address
	c.clearInput = true

	c.evaluate(ctx)
	c.notify()
	return home, nil
}

// CommitLandmark appends the pending selection as a landmark with the
// placeholder name.
func (c *Controller) CommitLandmark(ctx context.Context) (domain.Landmark, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.pending == nil {
		return domain.Landmark{}, c.invalidCommit(ctx, "landmark")
	}

	l := c.registry.AddLandmark(ctx, c.pending.AsLandmark(c.cfg.DefaultLandmarkName))
	c.pending = nil

	c.evaluate(ctx)
	c.notify()
	return l, nil
}

// invalidCommit must be called with mu held.
func (c *Controller) invalidCommit(ctx context.Context, kind string) error {
	if c.cfg.Development {
		panic(fmt.Sprintf("commit %s: %v", kind, ErrNoPendingSelection))
	}
	c.logger.ErrorContext(ctx, "commit without pending selection", slog.String("kind", kind))
	return fmt.Errorf("commit %s: %w", kind, ErrNoPendingSelection)
}

// SetActiveHome switches the routing origin. It is refused while a batch
// is in flight.
func (c *Controller) SetActiveHome(ctx context.Context, address string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.busy {
		return ErrHomesDisabled
	}
	if _, ok := c.registry.Home(address); !ok {
		return fmt.Errorf("set active home %q: %w", address, ErrUnknownHome)
	}

	c.activeHome = address
	c.evaluate(ctx)
	c.notify()
	return nil
}

func (c *Controller) RenameLandmark(ctx context.Context, id, name string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.registry.RenameLandmark(ctx, id, name); err != nil {
		return err
	}
	c.evaluate(ctx)
	c.notify()
	return nil
}

// RemoveLandmark removes every landmark named name.
func (c *Controller) RemoveLandmark(ctx context.Context, name string) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	n := c.registry.RemoveLandmark(ctx, name)
	c.evaluate(ctx)
	c.notify()
	return n
}

func (c *Controller) RemoveLandmarkByID(ctx context.Context, id string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.registry.RemoveLandmarkByID(ctx, id); err != nil {
		return err
	}
	c.evaluate(ctx)
	c.notify()
	return nil
}

// Refresh starts a new batch for the active home regardless of the homes
// gate. Any batch still in flight is superseded.
func (c *Controller) Refresh(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.activeHome == "" {
		return ErrNoActiveHome
	}

	c.last = c.currentTrigger()
	c.generation++
	c.startBatch(ctx, c.generation)
	c.notify()
	return nil
}

func (c *Controller) currentTrigger() trigger {
	return trigger{activeHome: c.activeHome, landmarks: c.registry.LandmarkCount()}
}

// evaluate starts a new batch when the dependency set changed since the
// last batch. It must be called with mu held.
func (c *Controller) evaluate(ctx context.Context) {
	next := c.currentTrigger()
	if next == c.last {
		return
	}
	c.last = next

	// Any batch in flight now answers a question nobody is asking.
	c.generation++
	c.busy = false

	if next.activeHome == "" || next.landmarks == 0 {
		return
	}
	c.startBatch(ctx, c.generation)
}

// startBatch must be called with mu held.
func (c *Controller) startBatch(ctx context.Context, gen uint64) {
	if c.closed {
		c.busy = false
		return
	}

	c.busy = true
	c.metrics.BatchesStarted.Inc()

	// The batch outlives the request that triggered it, but keeps its
	// request id for log correlation.
	bctx := c.ctx
	if id, ok := ctx.Value(obs.RequestIDKey).(string); ok {
		bctx = obs.WithRequestID(bctx, id)
	}

	origin := c.activeHome
	snapshot := c.registry.Landmarks()

	c.logger.DebugContext(bctx, "batch started",
		slog.Uint64("generation", gen),
		slog.String("origin", origin),
		slog.Int("landmarks", len(snapshot)),
	)

	c.wg.Add(1)
	go c.runBatch(bctx, gen, origin, snapshot)
}

func (c *Controller) runBatch(ctx context.Context, gen uint64, origin string, landmarks []domain.Landmark) {
	defer c.wg.Done()

	start := time.Now()
	out, err := c.aggregator.ComputeRoutes(ctx, origin, landmarks)
	c.metrics.BatchDuration.Observe(time.Since(start).Seconds())

	c.mu.Lock()
	defer c.mu.Unlock()

	if gen != c.generation {
		c.metrics.BatchesDiscarded.Inc()
		c.logger.DebugContext(ctx, "stale batch discarded",
			slog.Uint64("generation", gen),
			slog.Uint64("current", c.generation),
		)
		return
	}

	c.busy = false

	if err != nil {
		c.metrics.BatchesFailed.Inc()
		c.lastErr = err
		c.logger.ErrorContext(ctx, "batch failed, keeping previous routes",
			slog.Uint64("generation", gen),
			slog.Any("err", err),
		)
		c.notify()
		return
	}

	routes := make(map[string]*domain.RouteSummary, len(out))
	for _, l := range out {
		routes[l.ID] = l.Route
	}
	c.registry.MergeRoutes(ctx, routes)
	c.lastErr = nil
	c.metrics.BatchesCompleted.Inc()

	c.logger.DebugContext(ctx, "batch merged", slog.Uint64("generation", gen))
	c.notify()
}

// View returns a snapshot of the current state.
func (c *Controller) View() View {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.view()
}

// view must be called with mu held.
func (c *Controller) view() View {
	v := View{
		Homes:         c.registry.Homes(),
		ActiveHome:    c.activeHome,
		Landmarks:     c.registry.Landmarks(),
		HomesDisabled: c.busy,
		CanCommit:     c.pending != nil,
		ClearInput:    c.clearInput,
	}
	if c.pending != nil {
		p := *c.pending
		v.Pending = &p
	}
	if c.lastErr != nil {
		v.LastError = c.lastErr.Error()
	}
	return v
}

// Subscribe returns a channel that receives the latest view after every
// change. Slow readers only ever see the newest snapshot. The returned
// func unsubscribes.
func (c *Controller) Subscribe() (<-chan View, func()) {
	ch := make(chan View, 1)

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		close(ch)
		return ch, func() {}
	}
	c.subs[ch] = struct{}{}

	return ch, func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		if _, ok := c.subs[ch]; ok {
			delete(c.subs, ch)
			close(ch)
		}
	}
}

// notify must be called with mu held.
func (c *Controller) notify() {
	if len(c.subs) == 0 {
		return
	}
	v := c.view()
	for ch := range c.subs {
		select {
		case <-ch:
		default:
		}
		select {
		case ch <- v:
		default:
		}
	}
}

// Wait blocks until every batch started so far has finished.
func (c *Controller) Wait() {
	c.wg.Wait()
}

// Close cancels batches in flight, waits for them and closes subscriber
// channels.
func (c *Controller) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	c.cancel()
	c.mu.Unlock()

	c.wg.Wait()

	c.mu.Lock()
	defer c.mu.Unlock()
	for ch := range c.subs {
		delete(c.subs, ch)
		close(ch)
	}
}
