// Package cache keeps prepared statements for repeated compiled SQL text.
package cache

import (
	"container/list"
	"context"
	"database/sql"
	"sync"
	"sync/atomic"
)

// DefaultCapacity is the number of statements kept when no capacity is given.
const DefaultCapacity = 256

// PrepareFunc prepares query, typically (*sql.Conn).PrepareContext.
type PrepareFunc func(ctx context.Context, query string) (*sql.Stmt, error)

// StmtCache is an LRU of prepared statements keyed by SQL text. It is safe
// for concurrent use.
//
// Statements are leased: Prepared returns a release func, and an entry that
// is evicted, forgotten or dropped by Close while leased stays open until its
// last lease is released.
type StmtCache struct {
	mu       sync.Mutex
	capacity int
	items    map[string]*list.Element
	order    *list.List // front = most recently used

	hits      atomic.Uint64
	misses    atomic.Uint64
	evictions atomic.Uint64
}

type entry struct {
	query   string
	stmt    *sql.Stmt
	refs    int
	dropped bool
}

// New creates a cache holding at most capacity statements.
// A non-positive capacity selects DefaultCapacity.
func New(capacity int) *StmtCache {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &StmtCache{
		capacity: capacity,
		items:    make(map[string]*list.Element),
		order:    list.New(),
	}
}

// Prepared returns the cached statement for query, preparing and caching it
// with prepare on a miss. The caller must call release once it is done with
// the statement, including any rows read from it.
func (c *StmtCache) Prepared(ctx context.Context, query string, prepare PrepareFunc) (stmt *sql.Stmt, release func(), err error) {
	c.mu.Lock()
	if el, ok := c.items[query]; ok {
		c.order.MoveToFront(el)
		e := c.acquire(el)
		c.mu.Unlock()
		c.hits.Add(1)
		return e.stmt, c.releaser(e), nil
	}
	c.mu.Unlock()
	c.misses.Add(1)

	stmt, err = prepare(ctx, query)
	if err != nil {
		return nil, nil, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	// Another caller may have prepared the same text meanwhile.
	if el, ok := c.items[query]; ok {
		_ = stmt.Close()
		c.order.MoveToFront(el)
		e := c.acquire(el)
		return e.stmt, c.releaser(e), nil
	}
	if c.order.Len() >= c.capacity {
		c.evictOldest()
	}
	e := &entry{query: query, stmt: stmt, refs: 1}
	c.items[query] = c.order.PushFront(e)
	return stmt, c.releaser(e), nil
}

// must hold c.mu
func (c *StmtCache) acquire(el *list.Element) *entry {
	e := el.Value.(*entry)
	e.refs++
	return e
}

func (c *StmtCache) releaser(e *entry) func() {
	var once sync.Once
	return func() {
		once.Do(func() {
			c.mu.Lock()
			defer c.mu.Unlock()
			e.refs--
			if e.dropped && e.refs == 0 {
				_ = e.stmt.Close()
			}
		})
	}
}

// Forget drops the statement for query, e.g. after the driver reported it
// as invalid. It is closed once no caller holds it.
func (c *StmtCache) Forget(query string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if el, ok := c.items[query]; ok {
		c.remove(el)
	}
}

// Len returns the number of cached statements.
func (c *StmtCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.order.Len()
}

// Close empties the cache. Idle statements are closed now, leased ones when
// released.
func (c *StmtCache) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	var first error
	for el := c.order.Front(); el != nil; el = el.Next() {
		if err := c.drop(el.Value.(*entry)); err != nil && first == nil {
			first = err
		}
	}
	c.items = make(map[string]*list.Element)
	c.order.Init()
	return first
}

// must hold c.mu
func (c *StmtCache) evictOldest() {
	if el := c.order.Back(); el != nil {
		c.remove(el)
		c.evictions.Add(1)
	}
}

// must hold c.mu
func (c *StmtCache) remove(el *list.Element) {
	e := c.order.Remove(el).(*entry)
	delete(c.items, e.query)
	_ = c.drop(e)
}

// must hold c.mu
func (c *StmtCache) drop(e *entry) error {
	e.dropped = true
	if e.refs > 0 {
		return nil
	}
	return e.stmt.Close()
}

// Stats is a snapshot of cache counters.
type Stats struct {
	Size      int
	Capacity  int
	Hits      uint64
	Misses    uint64
	Evictions uint64
}

// HitRate returns hits / (hits + misses), or 0 before any lookup.
func (s Stats) HitRate() float64 {
	total := s.Hits + s.Misses
	if total == 0 {
		return 0
	}
	return float64(s.Hits) / float64(total)
}

// Stats returns the current counters.
func (c *StmtCache) Stats() Stats {
	return Stats{
		Size:      c.Len(),
		Capacity:  c.capacity,
		Hits:      c.hits.Load(),
		Misses:    c.misses.Load(),
		Evictions: c.evictions.Load(),
	}
}
