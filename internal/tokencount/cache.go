package tokencount

import (
	"context"
	"sync"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"
)

// Loader supplies the text to count for a path. Typically backed by the
// content extractor.
type Loader func(ctx context.Context, path string) (string, error)

// Cache memoizes token counts keyed by path. A path is counted at most once:
// concurrent requests share one in-flight computation via singleflight, and
// a resolved count is never recomputed until the path is forgotten.
type Cache struct {
	counter Counter
	loader  Loader

	flight singleflight.Group

	mu     sync.RWMutex
	counts map[string]int
}

// NewCache builds a cache over the given counter and content loader.
func NewCache(counter Counter, loader Loader) *Cache {
	return &Cache{
		counter: counter,
		loader:  loader,
		counts:  make(map[string]int),
	}
}

// Count returns the token count for path, computing it on first use.
func (c *Cache) Count(ctx context.Context, path string) (int, error) {
	c.mu.RLock()
	if count, ok := c.counts[path]; ok {
		c.mu.RUnlock()
		return count, nil
	}
	c.mu.RUnlock()

	value, err, _ := c.flight.Do(path, func() (any, error) {
		// Re-check under the flight: another caller may have resolved the
		// path between the read above and this call.
		c.mu.RLock()
		count, ok := c.counts[path]
		c.mu.RUnlock()
		if ok {
			return count, nil
		}

		text, err := c.loader(ctx, path)
		if err != nil {
			return 0, err
		}
		count, err = c.counter.CountString(text)
		if err != nil {
			return 0, err
		}

		c.mu.Lock()
		c.counts[path] = count
		c.mu.Unlock()
		return count, nil
	})
	if err != nil {
		return 0, err
	}
	return value.(int), nil
}

// Peek returns a resolved count without triggering computation.
func (c *Cache) Peek(path string) (int, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	count, ok := c.counts[path]
	return count, ok
}

// CountAll resolves every path with bounded parallelism and returns the sum.
// Individual failures zero out that path's contribution rather than failing
// the whole batch; the first error is returned alongside the partial total.
func (c *Cache) CountAll(ctx context.Context, paths []string, parallelism int) (int, error) {
	if parallelism <= 0 {
		parallelism = 4
	}

	group, ctx := errgroup.WithContext(ctx)
	group.SetLimit(parallelism)

	counts := make([]int, len(paths))
	for i, path := range paths {
		group.Go(func() error {
			count, err := c.Count(ctx, path)
			if err != nil {
				return err
			}
			counts[i] = count
			return nil
		})
	}
	err := group.Wait()

	total := 0
	for _, count := range counts {
		total += count
	}
	return total, err
}

// Forget drops a path's resolved count, forcing a recount on next use. Used
// when a re-index reports a changed fingerprint.
func (c *Cache) Forget(path string) {
	c.mu.Lock()
	delete(c.counts, path)
	c.mu.Unlock()
}

// Reset drops every resolved count.
func (c *Cache) Reset() {
	c.mu.Lock()
	c.counts = make(map[string]int)
	c.mu.Unlock()
}
