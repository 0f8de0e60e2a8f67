// Package qcache memoizes produced questions by semantic key.
package qcache

// #region imports
import (
	"context"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	gocache "github.com/patrickmn/go-cache"

	"github.com/danielpatrickdp/interview-engine/internal/interview"
)

// #endregion

// #region options

// Options configures a Cache.
type Options struct {
	TTL                 time.Duration    `yaml:"ttl" validate:"gt=0"`
	Capacity            int              `yaml:"capacity" validate:"gte=1"`
	SimilarityThreshold float64          `yaml:"similarity_threshold" validate:"gt=0,lte=1"` // share of query keywords a similar entry must hold
	CleanupInterval     time.Duration    `yaml:"cleanup_interval" validate:"gte=0"`          // 0 disables the background janitor
	Now                 func() time.Time `yaml:"-" validate:"-"`
}

// DefaultOptions returns TTL 1h, capacity 100, threshold 0.5.
func DefaultOptions() Options {
	return Options{
		TTL:                 time.Hour,
		Capacity:            100,
		SimilarityThreshold: 0.5,
		CleanupInterval:     10 * time.Minute,
	}
}

func (o Options) withDefaults() Options {
	d := DefaultOptions()
	if o.TTL <= 0 {
		o.TTL = d.TTL
	}
	if o.Capacity <= 0 {
		o.Capacity = d.Capacity
	}
	if o.SimilarityThreshold <= 0 || o.SimilarityThreshold > 1 {
		o.SimilarityThreshold = d.SimilarityThreshold
	}
	if o.CleanupInterval < 0 {
		o.CleanupInterval = 0
	}
	if o.Now == nil {
		o.Now = time.Now
	}
	return o
}

// #endregion

// #region entry

// Entry is a snapshot of one cached question.
type Entry struct {
	ID        uuid.UUID
	Key       interview.CacheKey
	Question  string
	CreatedAt time.Time
	HitCount  int64
}

type entry struct {
	id        uuid.UUID
	key       interview.CacheKey
	question  string
	createdAt time.Time
	hits      atomic.Int64
}

func (e *entry) snapshot() Entry {
	return Entry{ID: e.id, Key: e.key, Question: e.question, CreatedAt: e.createdAt, HitCount: e.hits.Load()}
}

// #endregion

// #region cache

// Cache is the in-process question cache. Inserts and evictions run under
// one write lock; lookups share a read lock.
type Cache struct {
	mu    sync.RWMutex
	items *gocache.Cache
	opts  Options
}

// New creates an empty cache.
func New(opts Options) *Cache {
	opts = opts.withDefaults()
	return &Cache{
		items: gocache.New(opts.TTL, opts.CleanupInterval),
		opts:  opts,
	}
}

func (c *Cache) expired(e *entry) bool {
	return c.opts.Now().Sub(e.createdAt) > c.opts.TTL
}

// Get returns the question stored under key. An entry older than the TTL is
// removed and reported as a miss.
func (c *Cache) Get(_ context.Context, key interview.CacheKey) (string, bool) {
	k := key.String()

	c.mu.RLock()
	x, found := c.items.Get(k)
	c.mu.RUnlock()
	if !found {
		return "", false
	}

	e := x.(*entry)
	if c.expired(e) {
		c.mu.Lock()
		if cur, ok := c.items.Get(k); ok && cur.(*entry) == e {
			c.items.Delete(k)
		}
		c.mu.Unlock()
		return "", false
	}
	e.hits.Add(1)
	return e.question, true
}

// Set stores question under key, replacing any previous entry. When the
// cache is over capacity the single oldest entry is evicted.
func (c *Cache) Set(_ context.Context, key interview.CacheKey, question string) {
	c.set(key, question, c.opts.TTL)
}

// SetRemaining stores question so it expires after remaining rather than a
// full TTL. Values copied from a shared tier keep that tier's expiry.
func (c *Cache) SetRemaining(_ context.Context, key interview.CacheKey, question string, remaining time.Duration) {
	if remaining <= 0 {
		return
	}
	c.set(key, question, min(remaining, c.opts.TTL))
}

func (c *Cache) set(key interview.CacheKey, question string, life time.Duration) {
	k := key.String()
	e := &entry{
		id:        uuid.New(),
		key:       key,
		question:  question,
		createdAt: c.opts.Now().Add(life - c.opts.TTL),
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.items.Set(k, e, life)
	if c.items.ItemCount() > c.opts.Capacity {
		c.evictOldestLocked(k)
	}
}

// evictOldestLocked drops the entry with the earliest CreatedAt, never keep.
func (c *Cache) evictOldestLocked(keep string) {
	var (
		oldestKey string
		oldest    *entry
	)
	for k, item := range c.items.Items() {
		if k == keep {
			continue
		}
		e := item.Object.(*entry)
		if oldest == nil || e.createdAt.Before(oldest.createdAt) ||
			(e.createdAt.Equal(oldest.createdAt) && k < oldestKey) {
			oldestKey, oldest = k, e
		}
	}
	if oldest != nil {
		c.items.Delete(oldestKey)
	}
}

// FindSimilar scans unexpired entries with the same stage and pattern and
// returns the oldest whose keywords cover at least the threshold share of
// the query. An empty query never matches.
func (c *Cache) FindSimilar(_ context.Context, stage interview.Stage, pattern interview.Pattern, keywords interview.KeywordSet) (string, bool) {
	if len(keywords) == 0 {
		return "", false
	}
	need := c.opts.SimilarityThreshold * float64(len(keywords))

	c.mu.RLock()
	items := c.items.Items()
	c.mu.RUnlock()

	var (
		best    *entry
		bestKey string
	)
	for k, item := range items {
		e := item.Object.(*entry)
		if e.key.Stage != stage || e.key.Pattern != pattern || c.expired(e) {
			continue
		}
		if float64(overlap(e.key.Keywords, keywords)) < need {
			continue
		}
		if best == nil || e.createdAt.Before(best.createdAt) ||
			(e.createdAt.Equal(best.createdAt) && k < bestKey) {
			best, bestKey = e, k
		}
	}
	if best == nil {
		return "", false
	}
	best.hits.Add(1)
	return best.question, true
}

// Len returns the number of stored entries, expired ones included until
// they are next touched.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.items.ItemCount()
}

// Entries returns snapshots of every live entry, oldest first.
func (c *Cache) Entries() []Entry {
	c.mu.RLock()
	items := c.items.Items()
	c.mu.RUnlock()

	out := make([]Entry, 0, len(items))
	for _, item := range items {
		e := item.Object.(*entry)
		if !c.expired(e) {
			out = append(out, e.snapshot())
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out
}

// overlap counts members of a present in b. Both are sorted sets.
func overlap(a, b interview.KeywordSet) int {
	n := 0
	for _, k := range a {
		if b.Contains(k) {
			n++
		}
	}
	return n
}

// #endregion
