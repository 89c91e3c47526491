package payments

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/sethvargo/go-retry"
	"go.uber.org/multierr"

	"github.com/propdesk/fundedpay/internal/gateway"
	"github.com/propdesk/fundedpay/pkg/config"
	"github.com/propdesk/fundedpay/pkg/logger"
	"github.com/propdesk/fundedpay/pkg/metrics"
)

// RegistryParams wires a Registry.
type RegistryParams struct {
	Loader   *Loader
	Gateway  gateway.Client
	Session  config.SessionConfig
	Logger   *logger.Logger
	Metrics  *metrics.PaymentMetrics
	Listener func(Snapshot)
}

type sessionKey struct {
	orderID string
	userID  string
}

type entry struct {
	generation uint64
	session    *Session
	runner     *Runner
	lastAccess time.Time
}

// Registry owns the live payment sessions of the process, at most one per
// order and user.
type Registry struct {
	mu         sync.Mutex
	entries    map[sessionKey]*entry
	generation uint64

	loader   *Loader
	gateway  gateway.Client
	cfg      config.SessionConfig
	logg     *logger.Logger
	metrics  *metrics.PaymentMetrics
	listener func(Snapshot)
	now      func() time.Time

	baseCtx    context.Context
	baseCancel context.CancelFunc
}

func NewRegistry(params RegistryParams) (*Registry, error) {
	if params.Loader == nil {
		return nil, fmt.Errorf("loader required")
	}
	if params.Gateway == nil {
		return nil, fmt.Errorf("gateway client required")
	}
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	cfg := params.Session
	if cfg.CountdownInterval <= 0 || cfg.PollInterval <= 0 {
		return nil, fmt.Errorf("session timer intervals must be positive")
	}
	if cfg.LoadAttempts < 1 {
		cfg.LoadAttempts = 1
	}
	baseCtx, cancel := context.WithCancel(context.Background())
	return &Registry{
		entries:    make(map[sessionKey]*entry),
		loader:     params.Loader,
		gateway:    params.Gateway,
		cfg:        cfg,
		logg:       params.Logger,
		metrics:    params.Metrics,
		listener:   params.Listener,
		now:        time.Now,
		baseCtx:    baseCtx,
		baseCancel: cancel,
	}, nil
}

// Open returns the live session for the pair, or loads a new generation when
// none exists or the previous one is terminal. A pending allocation is retried
// with constant backoff before giving up.
func (r *Registry) Open(ctx context.Context, orderID, userID string) (Snapshot, error) {
	key := sessionKey{orderID: strings.TrimSpace(orderID), userID: strings.TrimSpace(userID)}
	if key.orderID == "" || key.userID == "" {
		return Snapshot{}, toAPIError(ErrMissingIdentity)
	}
	ctx = r.logg.WithOrderID(r.logg.WithUserID(ctx, key.userID), key.orderID)

	if snap, ok := r.live(key); ok {
		r.metrics.IncOpen("reused")
		return snap, nil
	}

	initial, err := r.load(ctx, key)
	if err != nil {
		r.metrics.IncOpen(openResult(err))
		if !errors.Is(err, ErrOrderNotFound) && !errors.Is(err, ErrAllocationPending) {
			r.logg.Error(ctx, "failed to open payment session", err)
		}
		return Snapshot{}, toAPIError(err)
	}

	r.mu.Lock()
	if current, ok := r.entries[key]; ok && !current.session.Snapshot().Terminal() {
		current.lastAccess = r.now()
		r.mu.Unlock()
		r.metrics.IncOpen("reused")
		return current.session.Snapshot(), nil
	}
	previous := r.entries[key]
	r.generation++
	initial.Generation = r.generation

	session := NewSession(initial, r.gateway,
		WithLogger(r.logg),
		WithMetrics(r.metrics),
		WithStatusListener(r.listener),
	)
	e := &entry{generation: initial.Generation, session: session, lastAccess: r.now()}
	if !session.Snapshot().Terminal() {
		e.runner = StartRunner(r.baseCtx, session, r.cfg.CountdownInterval, r.cfg.PollInterval)
	}
	r.entries[key] = e
	r.mu.Unlock()

	if previous != nil {
		r.stopEntry(ctx, previous)
	} else {
		r.metrics.SessionStarted()
	}
	r.metrics.IncOpen("opened")

	snap := session.Snapshot()
	r.logg.Info(r.logg.WithFields(ctx, map[string]any{
		"session_generation": snap.Generation,
		"status":             snap.Status.String(),
		"seconds_remaining":  snap.SecondsRemaining,
	}), "payment session opened")
	return snap, nil
}

func (r *Registry) load(ctx context.Context, key sessionKey) (Snapshot, error) {
	backoff := retry.WithMaxRetries(uint64(r.cfg.LoadAttempts-1), retry.NewConstant(r.cfg.LoadBackoff))
	return retry.DoValue(ctx, backoff, func(ctx context.Context) (Snapshot, error) {
		snap, err := r.loader.Load(ctx, key.orderID, key.userID)
		if errors.Is(err, ErrAllocationPending) {
			r.logg.Warn(r.logg.WithField(ctx, "reason", err.Error()), "payment allocation pending")
			return Snapshot{}, retry.RetryableError(err)
		}
		return snap, err
	})
}

func (r *Registry) live(key sessionKey) (Snapshot, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.entries[key]
	if !ok {
		return Snapshot{}, false
	}
	snap := e.session.Snapshot()
	if snap.Terminal() {
		return Snapshot{}, false
	}
	e.lastAccess = r.now()
	return snap, true
}

// Get returns the current snapshot of the pair's session.
func (r *Registry) Get(orderID, userID string) (Snapshot, error) {
	key := sessionKey{orderID: strings.TrimSpace(orderID), userID: strings.TrimSpace(userID)}
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.entries[key]
	if !ok {
		return Snapshot{}, toAPIError(ErrSessionNotFound)
	}
	e.lastAccess = r.now()
	return e.session.Snapshot(), nil
}

// Close stops the pair's timers and forgets the session.
func (r *Registry) Close(ctx context.Context, orderID, userID string) error {
	key := sessionKey{orderID: strings.TrimSpace(orderID), userID: strings.TrimSpace(userID)}
	r.mu.Lock()
	e, ok := r.entries[key]
	if ok {
		delete(r.entries, key)
	}
	r.mu.Unlock()
	if !ok {
		return toAPIError(ErrSessionNotFound)
	}
	err := r.stopEntry(ctx, e)
	r.metrics.SessionStopped()
	return err
}

// Sweep closes sessions not accessed within the idle TTL and reports how many
// were closed.
func (r *Registry) Sweep(ctx context.Context, now time.Time) int {
	if r.cfg.IdleTTL <= 0 {
		return 0
	}
	var stale []*entry
	r.mu.Lock()
	for key, e := range r.entries {
		if now.Sub(e.lastAccess) >= r.cfg.IdleTTL {
			stale = append(stale, e)
			delete(r.entries, key)
		}
	}
	r.mu.Unlock()

	for _, e := range stale {
		if err := r.stopEntry(ctx, e); err != nil {
			r.logg.Error(ctx, "failed to stop idle payment session", err)
		}
		r.metrics.SessionStopped()
	}
	if len(stale) > 0 {
		r.logg.Info(r.logg.WithField(ctx, "closed", len(stale)), "idle payment sessions swept")
	}
	return len(stale)
}

// Run sweeps idle sessions until ctx is cancelled.
func (r *Registry) Run(ctx context.Context) error {
	interval := r.cfg.SweepInterval
	if interval <= 0 {
		interval = time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			r.Sweep(ctx, r.now())
		}
	}
}

// Shutdown stops every session. Sessions whose timers do not exit before ctx
// ends are still disposed; their errors are combined.
func (r *Registry) Shutdown(ctx context.Context) error {
	r.mu.Lock()
	all := make([]*entry, 0, len(r.entries))
	for key, e := range r.entries {
		all = append(all, e)
		delete(r.entries, key)
	}
	r.mu.Unlock()
	r.baseCancel()

	var errs error
	for _, e := range all {
		errs = multierr.Append(errs, r.stopEntry(ctx, e))
		r.metrics.SessionStopped()
	}
	return errs
}

// Len reports the number of tracked sessions.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}

func (r *Registry) stopEntry(ctx context.Context, e *entry) error {
	if e.runner == nil {
		e.session.dispose()
		return nil
	}
	if err := e.runner.Stop(ctx); err != nil {
		return fmt.Errorf("stop session generation %d: %w", e.generation, err)
	}
	return nil
}

func openResult(err error) string {
	switch {
	case errors.Is(err, ErrOrderNotFound):
		return "order_not_found"
	case errors.Is(err, ErrAllocationPending):
		return "allocation_pending"
	case errors.Is(err, ErrNotCryptoOrder), errors.Is(err, ErrMissingIdentity):
		return "invalid"
	default:
		return "error"
	}
}
