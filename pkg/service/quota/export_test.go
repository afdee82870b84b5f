package quota

import (
	"context"
	"time"
)

// SetNowFunc overrides the limiter clock for testing
func (l *Limiter) SetNowFunc(now func() time.Time) {
	l.now = now
}

// SetSleepFunc overrides the backoff sleeper for testing
func (l *Limiter) SetSleepFunc(sleep func(ctx context.Context, d time.Duration)) {
	l.sleep = sleep
}

// TryConnect runs the bounded reconnect loop synchronously for testing
func (l *Limiter) TryConnect(ctx context.Context) {
	l.tryConnect(ctx)
}

// SetNowFunc overrides the backend clock for testing
func (b *MemoryBackend) SetNowFunc(now func() time.Time) {
	b.now = now
}
