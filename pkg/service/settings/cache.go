package settings

import (
	"context"
	"regexp"
	"sync"
	"time"

	"github.com/m-mizutani/goerr/v2"

	"github.com/kataribe-dev/kataribe/pkg/domain/interfaces"
	"github.com/kataribe-dev/kataribe/pkg/domain/types"
)

const defaultTTL = 60 * time.Second

// placeholderPattern matches {{key}} tokens in stored text
var placeholderPattern = regexp.MustCompile(`\{\{([A-Za-z0-9_.\-]+)\}\}`)

type cacheEntry struct {
	values      map[string]string
	refreshedAt time.Time
}

// Cache holds one settings map per tenant with a fixed TTL, reloading
// the whole set from the repository on miss or expiry. The map for a
// tenant is replaced atomically; readers never see a partially
// populated map. Load failures propagate to the caller; configuration
// is never served stale on error.
//
// The cache is created at process start and holds no state across
// restarts. Pass the instance explicitly to consumers.
type Cache struct {
	repo interfaces.SettingRepository
	ttl  time.Duration

	mu      sync.RWMutex
	entries map[types.TenantID]*cacheEntry

	now func() time.Time
}

// Option is a functional option for Cache configuration
type Option func(*Cache)

// WithTTL overrides the refresh interval
func WithTTL(ttl time.Duration) Option {
	return func(c *Cache) {
		c.ttl = ttl
	}
}

// New creates a settings cache backed by the given repository
func New(repo interfaces.SettingRepository, opts ...Option) *Cache {
	c := &Cache{
		repo:    repo,
		ttl:     defaultTTL,
		entries: make(map[types.TenantID]*cacheEntry),
		now:     time.Now,
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// Get returns the key→value settings map for a tenant, refreshing it
// from the repository when the cached copy is missing or expired. The
// returned map must not be mutated by callers.
func (c *Cache) Get(ctx context.Context, tenantID types.TenantID) (map[string]string, error) {
	c.mu.RLock()
	entry, ok := c.entries[tenantID]
	c.mu.RUnlock()

	if ok && c.now().Sub(entry.refreshedAt) < c.ttl {
		return entry.values, nil
	}

	settings, err := c.repo.List(ctx, tenantID)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to load tenant settings", goerr.V("tenantID", tenantID))
	}

	values := make(map[string]string, len(settings))
	for _, s := range settings {
		values[s.Key] = s.Value
	}

	c.mu.Lock()
	c.entries[tenantID] = &cacheEntry{values: values, refreshedAt: c.now()}
	c.mu.Unlock()

	return values, nil
}

// Hydrate replaces every {{key}} occurrence in text with the tenant's
// cached value for key. Unknown keys are left as literal {{key}} text
// so that missing configuration stays visible without corrupting the
// surrounding template.
func (c *Cache) Hydrate(ctx context.Context, tenantID types.TenantID, text string) (string, error) {
	if !placeholderPattern.MatchString(text) {
		return text, nil
	}

	values, err := c.Get(ctx, tenantID)
	if err != nil {
		return "", err
	}

	hydrated := placeholderPattern.ReplaceAllStringFunc(text, func(token string) string {
		key := token[2 : len(token)-2]
		if value, ok := values[key]; ok {
			return value
		}
		return token
	})

	return hydrated, nil
}

// Invalidate drops the cached entry for a tenant so the next read
// reloads from the repository.
func (c *Cache) Invalidate(tenantID types.TenantID) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, tenantID)
}
