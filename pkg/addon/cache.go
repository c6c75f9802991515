package addon

import (
	"context"
	"time"

	"github.com/patrickmn/go-cache"
	"github.com/rs/zerolog"
)

const DefaultTTL = 10 * time.Minute

// RootsFunc lists the addon roots of a project, in search order. It may
// return roots alongside an error describing the dependencies it skipped.
type RootsFunc func(ctx context.Context, root string) ([]string, error)

// RootsCache memoizes RootsFunc per project root for a fixed time. Two
// callers missing at once may both compute; the last write wins.
type RootsCache struct {
	entries *cache.Cache
	compute RootsFunc
}

func NewRootsCache(ttl time.Duration, compute RootsFunc) *RootsCache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &RootsCache{
		entries: cache.New(ttl, 2*ttl),
		compute: compute,
	}
}

func (c *RootsCache) GetOrCompute(ctx context.Context, root string) []string {
	if v, ok := c.entries.Get(root); ok {
		zerolog.Ctx(ctx).Trace().Str("root", root).Msg("addon roots cache hit")
		return v.([]string)
	}

	roots, err := c.compute(ctx, root)
	if err != nil {
		zerolog.Ctx(ctx).Warn().Err(err).Str("root", root).Msg("some addon roots could not be read")
	}

	zerolog.Ctx(ctx).Debug().Str("root", root).Int("count", len(roots)).Msg("computed addon roots")

	c.entries.SetDefault(root, roots)
	return roots
}

// Forget drops the entry for root so the next lookup recomputes it.
func (c *RootsCache) Forget(root string) {
	c.entries.Delete(root)
}

// Flush drops every entry.
func (c *RootsCache) Flush() {
	c.entries.Flush()
}
