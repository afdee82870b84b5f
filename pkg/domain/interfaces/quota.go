package interfaces

import (
	"context"
	"time"

	"github.com/kataribe-dev/kataribe/pkg/domain/model"
)

// QuotaBackend is a usage counter store keyed by identity. Both the
// durable store and the in-process fallback implement it; callers must
// never be able to tell which one serviced a call.
type QuotaBackend interface {
	// Get returns the record for a key, or nil when the key is absent or
	// its window has expired.
	Get(ctx context.Context, key string) (*model.QuotaRecord, error)

	// Increment adds one use for a key. When no unexpired record exists
	// a new window of the given length is opened, anchored at now.
	Increment(ctx context.Context, key string, window time.Duration) error

	// Ping probes backend liveness.
	Ping(ctx context.Context) error

	// Close releases backend resources.
	Close() error
}
