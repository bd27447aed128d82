// Package cache keeps a short-lived snapshot of the drug list in local
// storage so page views do not hit the RemoteStore every time.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/dwalast/drugguide/pkg/common/code"
	"github.com/dwalast/drugguide/pkg/common/constant"
	"github.com/dwalast/drugguide/pkg/middleware/logger"
	"github.com/dwalast/drugguide/pkg/repo"
	"github.com/dwalast/drugguide/pkg/repo/model"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

type Option func(*Cache)

func WithClock(now func() time.Time) Option {
	return func(c *Cache) {
		c.now = now
	}
}

func WithTTL(ttl time.Duration) Option {
	return func(c *Cache) {
		if ttl > 0 {
			c.ttl = ttl
		}
	}
}

type Cache struct {
	kv      repo.KV
	ttl     time.Duration
	now     func() time.Time
	lookups metric.Int64Counter
}

func New(kv repo.KV, opts ...Option) *Cache {
	c := &Cache{
		kv:  kv,
		ttl: constant.CacheTTL,
		now: time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	c.lookups, _ = otel.Meter("drugguide/cache").Int64Counter(
		"drugguide.cache.lookups",
		metric.WithDescription("read cache lookups by result"),
	)
	return c
}

// Set overwrites the snapshot. Failures are logged and swallowed.
func (c *Cache) Set(ctx context.Context, drugs []model.Drug, lastUpdated string) {
	if drugs == nil {
		drugs = []model.Drug{}
	}
	raw, err := json.Marshal(&model.CacheSnapshot{
		Drugs:       drugs,
		LastUpdated: lastUpdated,
		Timestamp:   c.now().UnixMilli(),
	})
	if err != nil {
		logger.Warnf(ctx, "cache encode err: %+v", err)
		return
	}
	if err := c.kv.Set(ctx, constant.CacheKey, raw); err != nil {
		logger.Warnf(ctx, "cache save err: %+v", err)
	}
}

// Get returns the snapshot while it is younger than the TTL. Stale or
// unreadable entries are purged.
func (c *Cache) Get(ctx context.Context) (*model.CacheSnapshot, bool) {
	raw, err := c.kv.Get(ctx, constant.CacheKey)
	if err != nil {
		if !errors.Is(err, code.RecordNotFound) {
			logger.Warnf(ctx, "cache read err: %+v", err)
		}
		c.record(ctx, "miss")
		return nil, false
	}

	snapshot := &model.CacheSnapshot{}
	if err := json.Unmarshal(raw, snapshot); err != nil {
		logger.Warnf(ctx, "cache decode err, purging: %+v", err)
		c.Clear(ctx)
		c.record(ctx, "corrupt")
		return nil, false
	}

	age := c.now().UnixMilli() - snapshot.Timestamp
	if age >= c.ttl.Milliseconds() {
		c.Clear(ctx)
		c.record(ctx, "expired")
		return nil, false
	}
	c.record(ctx, "hit")
	return snapshot, true
}

func (c *Cache) Clear(ctx context.Context) {
	if err := c.kv.Delete(ctx, constant.CacheKey); err != nil {
		logger.Warnf(ctx, "cache clear err: %+v", err)
	}
}

func (c *Cache) record(ctx context.Context, result string) {
	if c.lookups == nil {
		return
	}
	c.lookups.Add(ctx, 1, metric.WithAttributes(attribute.String("result", result)))
}
