package qcache

// #region imports
import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/danielpatrickdp/interview-engine/internal/interview"
)

// #endregion

// #region redis-store

// RedisStore is a shared question tier so separate processes reuse each
// other's questions. Every failure is logged and reported as a miss.
type RedisStore struct {
	rdb    *redis.Client
	ttl    time.Duration
	prefix string
	log    *zap.Logger
}

// NewRedisClient parses url, falling back to treating it as a bare address.
func NewRedisClient(url string) *redis.Client {
	opt, err := redis.ParseURL(url)
	if err != nil {
		opt = &redis.Options{Addr: url}
	}
	opt.MaxRetries = -1
	if opt.DialTimeout == 0 {
		opt.DialTimeout = 500 * time.Millisecond
	}
	if opt.ReadTimeout == 0 {
		opt.ReadTimeout = 500 * time.Millisecond
	}
	return redis.NewClient(opt)
}

// NewRedisStore wraps rdb. log may be nil.
func NewRedisStore(rdb *redis.Client, ttl time.Duration, log *zap.Logger) *RedisStore {
	if log == nil {
		log = zap.NewNop()
	}
	if ttl <= 0 {
		ttl = DefaultOptions().TTL
	}
	return &RedisStore{rdb: rdb, ttl: ttl, prefix: "interview:q:", log: log.Named("qcache.redis")}
}

func (r *RedisStore) redisKey(key interview.CacheKey) string {
	return r.prefix + key.String()
}

// Load returns the question under key. Redis expiry enforces the TTL.
func (r *RedisStore) Load(ctx context.Context, key interview.CacheKey) (string, bool) {
	q, _, ok := r.LoadWithTTL(ctx, key)
	return q, ok
}

// LoadWithTTL returns the question under key and how long Redis will keep
// it. A key without an expiry reports the store's TTL.
func (r *RedisStore) LoadWithTTL(ctx context.Context, key interview.CacheKey) (string, time.Duration, bool) {
	k := r.redisKey(key)
	var (
		get  *redis.StringCmd
		pttl *redis.DurationCmd
	)
	_, _ = r.rdb.Pipelined(ctx, func(p redis.Pipeliner) error {
		get = p.Get(ctx, k)
		pttl = p.PTTL(ctx, k)
		return nil
	})

	q, err := get.Result()
	if errors.Is(err, redis.Nil) {
		return "", 0, false
	}
	if err != nil {
		r.log.Warn("redis get failed, treating as miss", zap.Error(err))
		return "", 0, false
	}

	ttl, err := pttl.Result()
	switch {
	case err != nil:
		r.log.Warn("redis pttl failed", zap.Error(err))
		ttl = 0
	case ttl == -1:
		ttl = r.ttl
	case ttl < 0:
		ttl = 0
	}
	return q, ttl, true
}

// Save stores question under key with the store's TTL.
func (r *RedisStore) Save(ctx context.Context, key interview.CacheKey, question string) {
	if err := r.rdb.Set(ctx, r.redisKey(key), question, r.ttl).Err(); err != nil {
		r.log.Warn("redis set failed", zap.Error(err))
	}
}

// Ping checks connectivity.
func (r *RedisStore) Ping(ctx context.Context) error {
	if err := r.rdb.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("ping redis: %w", err)
	}
	return nil
}

// #endregion

// #region tiered

// Tiered consults the local cache first and the shared Redis tier second.
// Similarity scans only run locally.
type Tiered struct {
	local  *Cache
	remote *RedisStore
}

// NewTiered combines a local cache with an optional remote tier.
func NewTiered(local *Cache, remote *RedisStore) *Tiered {
	return &Tiered{local: local, remote: remote}
}

func (t *Tiered) Get(ctx context.Context, key interview.CacheKey) (string, bool) {
	if q, ok := t.local.Get(ctx, key); ok {
		return q, true
	}
	if t.remote == nil {
		return "", false
	}
	q, remaining, ok := t.remote.LoadWithTTL(ctx, key)
	if ok {
		t.local.SetRemaining(ctx, key, q, remaining)
	}
	return q, ok
}

func (t *Tiered) Set(ctx context.Context, key interview.CacheKey, question string) {
	t.local.Set(ctx, key, question)
	if t.remote != nil {
		t.remote.Save(ctx, key, question)
	}
}

func (t *Tiered) FindSimilar(ctx context.Context, stage interview.Stage, pattern interview.Pattern, keywords interview.KeywordSet) (string, bool) {
	return t.local.FindSimilar(ctx, stage, pattern, keywords)
}

// Local returns the in-process tier.
func (t *Tiered) Local() *Cache { return t.local }

// #endregion
