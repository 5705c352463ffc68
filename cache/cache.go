// Package cache stores rasterized pages keyed by page number. Entries
// are never evicted: every page ever viewed stays resident until Clear,
// trading memory for instant re-display. Concurrent requests for the
// same page are coalesced so a page is rasterized at most once.
package cache

import (
	"context"
	"strconv"
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/wudi/flipbook/observability"
	"github.com/wudi/flipbook/raster"
)

// RenderFunc produces the raster for a page on a cache miss.
type RenderFunc func(ctx context.Context, page int) (*raster.PageRaster, error)

// PageCache lazily materializes and retains one raster per page.
type PageCache struct {
	render RenderFunc
	log    observability.Logger

	mu      sync.Mutex
	entries map[int]*raster.PageRaster
	group   singleflight.Group

	hits   int
	misses int
}

// New creates a cache backed by render.
func New(render RenderFunc, log observability.Logger) *PageCache {
	if log == nil {
		log = observability.NopLogger{}
	}
	return &PageCache{
		render:  render,
		log:     log,
		entries: make(map[int]*raster.PageRaster),
	}
}

// Get returns the raster for page, rasterizing on first use. A hit
// returns immediately; a miss suspends until the render completes.
// Requests for a page whose render is still in flight share that
// render's result instead of rasterizing again.
func (c *PageCache) Get(ctx context.Context, page int) (*raster.PageRaster, error) {
	c.mu.Lock()
	if r, ok := c.entries[page]; ok {
		c.hits++
		c.mu.Unlock()
		return r, nil
	}
	c.misses++
	c.mu.Unlock()

	v, err, shared := c.group.Do(strconv.Itoa(page), func() (interface{}, error) {
		// Re-check: an earlier flight may have populated the entry
		// between the miss above and this call.
		c.mu.Lock()
		if r, ok := c.entries[page]; ok {
			c.mu.Unlock()
			return r, nil
		}
		c.mu.Unlock()

		r, err := c.render(ctx, page)
		if err != nil {
			return nil, err
		}
		c.mu.Lock()
		c.entries[page] = r
		c.mu.Unlock()
		return r, nil
	})
	if err != nil {
		return nil, err
	}
	if shared {
		c.log.Debug("coalesced raster request", observability.Int("page", page))
	}
	return v.(*raster.PageRaster), nil
}

// Peek returns the cached raster for page without rendering.
func (c *PageCache) Peek(page int) (*raster.PageRaster, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	r, ok := c.entries[page]
	return r, ok
}

// Len returns the number of resident rasters.
func (c *PageCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Stats returns cumulative hit and miss counts.
func (c *PageCache) Stats() (hits, misses int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.hits, c.misses
}

// Clear discards every entry. Called when a new document is loaded and
// on destroy.
func (c *PageCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[int]*raster.PageRaster)
}
