// Package memo caches the results of a function by key.
//
// Concurrent calls for the same key share one invocation (singleflight)
// and completed values are kept in a bounded LRU cache.
package memo

import (
	"fmt"

	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/sync/singleflight"
)

// DefaultSize is the cache capacity used when [WithSize] is not given.
const DefaultSize = 4096

type config struct {
	size        int
	cacheErrors bool
}

// Option configures [Keyed].
type Option func(*config)

// WithSize bounds the number of cached keys. Least recently used keys are
// evicted first.
func WithSize(n int) Option {
	return func(c *config) {
		c.size = n
	}
}

// WithErrors caches failed calls too. By default a failure is returned to
// every waiting caller but the next call runs fn again.
func WithErrors() Option {
	return func(c *config) {
		c.cacheErrors = true
	}
}

type entry[V any] struct {
	value V
	err   error
}

// Memo wraps a function of A with a cache keyed by a string derived
// from A.
type Memo[A, V any] struct {
	fn    func(A) (V, error)
	key   func(A) string
	cfg   config
	cache *lru.Cache[string, entry[V]]
	group singleflight.Group
}

// Keyed memoizes fn. key maps an argument to its cache key; arguments with
// equal keys are considered identical.
//
// Keyed panics if fn or key is nil, or if the size is not positive.
func Keyed[A, V any](fn func(A) (V, error), key func(A) string, opts ...Option) *Memo[A, V] {
	if fn == nil || key == nil {
		panic("memo: Keyed requires a function and a key function")
	}

	cfg := config{size: DefaultSize}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.size <= 0 {
		panic(fmt.Sprintf("memo: size must be positive (got %d)", cfg.size))
	}

	cache, err := lru.New[string, entry[V]](cfg.size)
	if err != nil {
		panic(fmt.Sprintf("memo: init cache: %v", err))
	}

	return &Memo[A, V]{fn: fn, key: key, cfg: cfg, cache: cache}
}

// Get returns the cached value for arg, calling fn on a miss.
func (m *Memo[A, V]) Get(arg A) (V, error) {
	k := m.key(arg)
	if e, ok := m.cache.Get(k); ok {
		return e.value, e.err
	}

	v, err, _ := m.group.Do(k, func() (any, error) {
		// Another caller may have filled the key while we waited.
		if e, ok := m.cache.Get(k); ok {
			return e, nil
		}
		value, err := m.fn(arg)
		e := entry[V]{value: value, err: err}
		if err == nil || m.cfg.cacheErrors {
			m.cache.Add(k, e)
		}
		return e, nil
	})
	if err != nil {
		var zero V
		return zero, err
	}

	e := v.(entry[V])
	return e.value, e.err
}

// Forget drops the cached value for arg.
func (m *Memo[A, V]) Forget(arg A) {
	m.cache.Remove(m.key(arg))
}

// Purge drops every cached value.
func (m *Memo[A, V]) Purge() {
	m.cache.Purge()
}

// Len returns the number of cached keys.
func (m *Memo[A, V]) Len() int {
	return m.cache.Len()
}
