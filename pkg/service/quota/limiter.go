package quota

import (
	"context"
	"sync"
	"time"

	"github.com/kataribe-dev/kataribe/pkg/domain/interfaces"
	"github.com/kataribe-dev/kataribe/pkg/domain/model"
	"github.com/kataribe-dev/kataribe/pkg/domain/types"
	"github.com/kataribe-dev/kataribe/pkg/utils/logging"
)

const (
	// DefaultQuota is the number of uses allowed per window
	DefaultQuota = 15

	// DefaultWindow is the rolling quota window, anchored at first use
	DefaultWindow = 24 * time.Hour

	maxConnectAttempts = 3
	initialBackoff     = time.Second
)

// Limiter tracks per-identity usage against a fixed quota and rolling
// window. It decorates a durable backend with an in-process fallback:
// a per-call backend error is served from the fallback for that call
// only and never surfaces to the caller, while the connection state
// moves Connected → Disconnected and a bounded reconnect starts. Once
// reconnect attempts are exhausted the limiter stays Degraded for the
// rest of the process lifetime and serves everything from the fallback.
//
// Both backends expose identical semantics; callers cannot tell which
// one serviced a call.
type Limiter struct {
	durable  interfaces.QuotaBackend
	fallback interfaces.QuotaBackend
	quota    int
	window   time.Duration

	mu           sync.Mutex
	state        types.BackendState
	reconnecting bool

	now   func() time.Time
	sleep func(ctx context.Context, d time.Duration)
}

// Option is a functional option for Limiter configuration
type Option func(*Limiter)

// WithQuota overrides the per-window quota
func WithQuota(quota int) Option {
	return func(l *Limiter) {
		l.quota = quota
	}
}

// WithWindow overrides the rolling window length
func WithWindow(window time.Duration) Option {
	return func(l *Limiter) {
		l.window = window
	}
}

// New creates a limiter. A nil durable backend puts the limiter into
// Degraded mode from the start: all calls use the in-process store.
func New(durable interfaces.QuotaBackend, opts ...Option) *Limiter {
	l := &Limiter{
		durable:  durable,
		fallback: NewMemoryBackend(),
		quota:    DefaultQuota,
		window:   DefaultWindow,
		state:    types.BackendDisconnected,
		now:      time.Now,
		sleep:    sleepCtx,
	}

	if durable == nil {
		l.state = types.BackendDegraded
	}

	for _, opt := range opts {
		opt(l)
	}

	return l
}

func sleepCtx(ctx context.Context, d time.Duration) {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}

// Connect performs the initial bounded connection attempt against the
// durable backend. It never fails: an unreachable backend leaves the
// limiter Degraded and the process continues on the fallback store.
func (l *Limiter) Connect(ctx context.Context) {
	l.mu.Lock()
	if l.durable == nil || l.state == types.BackendDegraded || l.state == types.BackendConnected {
		l.mu.Unlock()
		return
	}
	l.state = types.BackendConnecting
	l.mu.Unlock()

	l.tryConnect(ctx)
}

// tryConnect probes the durable backend with increasing backoff until
// it answers or attempts run out.
func (l *Limiter) tryConnect(ctx context.Context) {
	logger := logging.From(ctx)

	for attempt := 1; attempt <= maxConnectAttempts; attempt++ {
		if err := l.durable.Ping(ctx); err == nil {
			l.mu.Lock()
			l.state = types.BackendConnected
			l.mu.Unlock()
			logger.Info("quota backend connected", "attempt", attempt)
			return
		} else {
			logger.Warn("quota backend unreachable",
				"attempt", attempt,
				"maxAttempts", maxConnectAttempts,
				"error", err.Error(),
			)
		}

		if attempt < maxConnectAttempts {
			l.sleep(ctx, initialBackoff*time.Duration(attempt))
		}
	}

	l.mu.Lock()
	l.state = types.BackendDegraded
	l.mu.Unlock()
	logger.Error("quota backend degraded, using in-process store for process lifetime")
}

// State returns the current backend connection state
func (l *Limiter) State() types.BackendState {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.state
}

// CheckLimit reports whether the identity may use the service, with
// the remaining quota and, when a window is open, the time until it
// resets. Checking never creates a record.
func (l *Limiter) CheckLimit(ctx context.Context, identity string) model.QuotaStatus {
	key := quotaKey(identity)

	record, err := l.activeBackend().Get(ctx, key)
	if err != nil {
		// Call-level fallback: this call is served from the in-process
		// store and the error never reaches the caller.
		l.noteBackendError(ctx, err)
		record, err = l.fallback.Get(ctx, key)
		if err != nil {
			// The in-process store cannot fail in practice; treat it as
			// zero usage rather than blocking the request.
			record = nil
		}
	}

	return l.statusOf(record)
}

// IncrementUsage records one use for the identity, opening a new
// window when none is active.
func (l *Limiter) IncrementUsage(ctx context.Context, identity string) {
	key := quotaKey(identity)

	if err := l.activeBackend().Increment(ctx, key, l.window); err != nil {
		l.noteBackendError(ctx, err)
		if err := l.fallback.Increment(ctx, key, l.window); err != nil {
			logging.From(ctx).Error("failed to increment quota in fallback store", "error", err.Error())
		}
	}
}

// Close releases both backends
func (l *Limiter) Close() error {
	if err := l.fallback.Close(); err != nil {
		return err
	}
	if l.durable != nil {
		return l.durable.Close()
	}
	return nil
}

func quotaKey(identity string) string {
	return "quota:" + identity
}

func (l *Limiter) activeBackend() interfaces.QuotaBackend {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.state == types.BackendConnected {
		return l.durable
	}
	return l.fallback
}

// noteBackendError moves the connection state to Disconnected and
// kicks off a background reconnect, unless the limiter is already
// Degraded or a reconnect is running.
func (l *Limiter) noteBackendError(ctx context.Context, err error) {
	l.mu.Lock()
	if l.state != types.BackendConnected {
		l.mu.Unlock()
		return
	}
	l.state = types.BackendDisconnected
	start := !l.reconnecting
	if start {
		l.reconnecting = true
	}
	l.mu.Unlock()

	logging.From(ctx).Warn("quota backend error, falling back to in-process store", "error", err.Error())

	if start {
		go func() {
			defer func() {
				l.mu.Lock()
				l.reconnecting = false
				l.mu.Unlock()
			}()
			l.tryConnect(context.Background())
		}()
	}
}

func (l *Limiter) statusOf(record *model.QuotaRecord) model.QuotaStatus {
	if record == nil {
		return model.QuotaStatus{
			Allowed:   true,
			Remaining: l.quota,
		}
	}

	remaining := l.quota - int(record.Count)
	if remaining < 0 {
		remaining = 0
	}

	resetIn := record.WindowResetAt.Sub(l.now())
	if resetIn < 0 {
		resetIn = 0
	}

	return model.QuotaStatus{
		Allowed:   remaining > 0,
		Remaining: remaining,
		ResetIn:   resetIn,
	}
}
