package templatestore

import (
	"context"
	"fmt"
	"strings"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/dmitrymomot/courier/pkg/mailer"
)

// DefaultCacheTTL is how long Cached keeps a lookup.
const DefaultCacheTTL = 5 * time.Minute

// Cached wraps a Store with a Cache for template bodies. Misses are
// deduplicated, so concurrent renders of the same template hit the underlying
// store once. Absent templates are not cached. Edited templates show up after
// the TTL or after Invalidate.
type Cached struct {
	next  Store
	cache Cache
	group singleflight.Group
	ttl   time.Duration
}

// NewCached creates a caching store. A non-positive ttl uses DefaultCacheTTL.
func NewCached(next Store, cache Cache, ttl time.Duration) *Cached {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	return &Cached{next: next, cache: cache, ttl: ttl}
}

// Template implements Store.
func (c *Cached) Template(ctx context.Context, ref Ref) (string, error) {
	key := "tpl:" + strings.Join([]string{ref.Name, ref.Channel, ref.Language}, "|")
	if body, err := c.cache.Get(ctx, key); err == nil {
		return body, nil
	}

	v, err, _ := c.group.Do(key, func() (any, error) {
		body, err := c.next.Template(ctx, ref)
		if err != nil {
			return nil, err
		}
		_ = c.cache.Set(ctx, key, body, c.ttl)
		return body, nil
	})
	if err != nil {
		return "", err
	}
	return v.(string), nil
}

// Partials implements mailer.PartialLoader. Partials are never cached: the
// generator re-syncs them before every render and reparses only on change.
func (c *Cached) Partials(ctx context.Context) ([]mailer.Partial, error) {
	return c.next.Partials(ctx)
}

// Invalidate drops every cached lookup. Call it after changing templates.
func (c *Cached) Invalidate(ctx context.Context) error {
	if err := c.cache.Clear(ctx); err != nil {
		return fmt.Errorf("templatestore: invalidate cache: %w", err)
	}
	return nil
}

var _ Store = (*Cached)(nil)
