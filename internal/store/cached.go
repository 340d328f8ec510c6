package store

import (
	"context"
	"sync"
	"time"

	"github.com/go-logr/logr"
	gocache "github.com/patrickmn/go-cache"
	"golang.org/x/sync/singleflight"

	"github.com/oakwood-commons/qbar/internal/query"
)

// Cached memoizes the responses of another source for ttl and coalesces
// concurrent identical searches into one upstream call. Errors are not
// cached. A shared upstream call is cancelled only once every caller waiting
// on it has gone away.
type Cached struct {
	src   Source
	cache *gocache.Cache
	group singleflight.Group
	log   logr.Logger

	mu      sync.Mutex
	flights map[string]*flight
}

// flight is the context of one coalesced upstream call.
type flight struct {
	ctx     context.Context
	cancel  context.CancelFunc
	waiters int
}

// NewCached wraps src. A non-positive ttl disables caching but keeps request
// coalescing.
func NewCached(src Source, ttl time.Duration, log logr.Logger) *Cached {
	c := &Cached{src: src, log: log, flights: make(map[string]*flight)}
	if ttl > 0 {
		c.cache = gocache.New(ttl, 2*ttl)
	}
	return c
}

// Search implements Source.
func (c *Cached) Search(ctx context.Context, p query.Params) ([]query.Record, error) {
	key := cacheKey(p)
	if c.cache != nil {
		if v, ok := c.cache.Get(key); ok {
			c.log.V(1).Info("cache hit", "key", key)
			return v.([]query.Record), nil
		}
	}
	f := c.join(ctx, key)
	defer c.leave(key, f)
	ch := c.group.DoChan(key, func() (interface{}, error) {
		records, err := c.src.Search(f.ctx, p)
		if err != nil {
			return nil, err
		}
		if c.cache != nil {
			c.cache.SetDefault(key, records)
		}
		return records, nil
	})
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		if res.Shared {
			c.log.V(1).Info("coalesced search", "key", key)
		}
		return res.Val.([]query.Record), nil
	}
}

// join registers a caller on the flight for key, starting one detached from
// ctx cancellation if none is running.
func (c *Cached) join(ctx context.Context, key string) *flight {
	c.mu.Lock()
	defer c.mu.Unlock()
	f, ok := c.flights[key]
	if !ok {
		fctx, cancel := context.WithCancel(context.WithoutCancel(ctx))
		f = &flight{ctx: fctx, cancel: cancel}
		c.flights[key] = f
	}
	f.waiters++
	return f
}

// leave drops a caller. The last one out cancels the upstream call and makes
// the next search for key start afresh.
func (c *Cached) leave(key string, f *flight) {
	c.mu.Lock()
	defer c.mu.Unlock()
	f.waiters--
	if f.waiters > 0 {
		return
	}
	f.cancel()
	if c.flights[key] == f {
		delete(c.flights, key)
	}
	c.group.Forget(key)
}

// Flush drops every cached response.
func (c *Cached) Flush() {
	if c.cache != nil {
		c.cache.Flush()
	}
}

// ItemCount returns the number of cached responses.
func (c *Cached) ItemCount() int {
	if c.cache == nil {
		return 0
	}
	return c.cache.ItemCount()
}

// cacheKey identifies a search by its filter only; different raw texts that
// parse to the same filter share an entry.
func cacheKey(p query.Params) string {
	return p.FilterType + "\x00" + p.FilterKey + "\x00" + p.FilterOperator.String() + "\x00" + p.FilterValue
}
