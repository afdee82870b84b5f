package settings

import "time"

// SetNowFunc overrides the cache clock for testing
func (c *Cache) SetNowFunc(now func() time.Time) {
	c.now = now
}
