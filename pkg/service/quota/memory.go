package quota

import (
	"context"
	"sync"
	"time"

	"github.com/kataribe-dev/kataribe/pkg/domain/interfaces"
	"github.com/kataribe-dev/kataribe/pkg/domain/model"
)

// MemoryBackend is the in-process fallback counter store. It is safe
// within a single process; multiple processes sharing only this store
// will double-count. Deployments needing cross-process accuracy must
// run with the durable backend.
type MemoryBackend struct {
	mu      sync.Mutex
	records map[string]*model.QuotaRecord
	now     func() time.Time
}

var _ interfaces.QuotaBackend = &MemoryBackend{}

// NewMemoryBackend creates an empty in-process counter store
func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{
		records: make(map[string]*model.QuotaRecord),
		now:     time.Now,
	}
}

func (b *MemoryBackend) Get(ctx context.Context, key string) (*model.QuotaRecord, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	record, ok := b.records[key]
	if !ok {
		return nil, nil
	}
	if record.Expired(b.now()) {
		delete(b.records, key)
		return nil, nil
	}

	copied := *record
	return &copied, nil
}

func (b *MemoryBackend) Increment(ctx context.Context, key string, window time.Duration) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	now := b.now()
	record, ok := b.records[key]
	if !ok || record.Expired(now) {
		b.records[key] = &model.QuotaRecord{
			Count:         1,
			WindowResetAt: now.Add(window),
		}
		return nil
	}

	record.Count++
	return nil
}

func (b *MemoryBackend) Ping(ctx context.Context) error {
	return nil
}

func (b *MemoryBackend) Close() error {
	return nil
}
