package quota

import (
	"context"
	"errors"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/redis/go-redis/v9"

	"github.com/kataribe-dev/kataribe/pkg/domain/interfaces"
	"github.com/kataribe-dev/kataribe/pkg/domain/model"
)

// RedisBackend is the durable counter store. Each identity maps to one
// key holding the usage count; the key's TTL is the quota window, set
// when the first increment opens it. Expiry makes the record absent
// again, which matches the reset-on-next-read contract.
type RedisBackend struct {
	client *redis.Client
	now    func() time.Time
}

var _ interfaces.QuotaBackend = &RedisBackend{}

// NewRedisBackend wraps an existing Redis client
func NewRedisBackend(client *redis.Client) *RedisBackend {
	return &RedisBackend{
		client: client,
		now:    time.Now,
	}
}

func (b *RedisBackend) Get(ctx context.Context, key string) (*model.QuotaRecord, error) {
	count, err := b.client.Get(ctx, key).Int64()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, goerr.Wrap(err, "failed to get quota record", goerr.V("key", key))
	}

	ttl, err := b.client.TTL(ctx, key).Result()
	if err != nil {
		return nil, goerr.Wrap(err, "failed to get quota record TTL", goerr.V("key", key))
	}
	if ttl <= 0 {
		// Key without expiry should not happen; treat as absent rather
		// than locking the identity out forever.
		return nil, nil
	}

	return &model.QuotaRecord{
		Count:         count,
		WindowResetAt: b.now().Add(ttl),
	}, nil
}

func (b *RedisBackend) Increment(ctx context.Context, key string, window time.Duration) error {
	count, err := b.client.Incr(ctx, key).Result()
	if err != nil {
		return goerr.Wrap(err, "failed to increment quota record", goerr.V("key", key))
	}

	// First use opens the window, anchored at now.
	if count == 1 {
		if err := b.client.Expire(ctx, key, window).Err(); err != nil {
			return goerr.Wrap(err, "failed to set quota window", goerr.V("key", key))
		}
	}

	return nil
}

func (b *RedisBackend) Ping(ctx context.Context) error {
	if err := b.client.Ping(ctx).Err(); err != nil {
		return goerr.Wrap(err, "quota backend ping failed")
	}
	return nil
}

func (b *RedisBackend) Close() error {
	return b.client.Close()
}
