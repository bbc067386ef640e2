// Package cache keeps fetched orders in object storage so repeated runs over
// the same window skip the Shopify API.
package cache

import (
	"bytes"
	"context"
	"crypto/md5"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"payoutrecon/internal/model"
	"payoutrecon/internal/reconcile"
	"payoutrecon/internal/storage"
)

const keyLayout = "2006-01-02T15:04:05Z07:00"

// OrderCache stores order snapshots keyed by fetch window.
type OrderCache struct {
	store   storage.Storage
	maxAge  time.Duration
	enabled bool
	now     func() time.Time
	log     *zap.Logger
}

// New returns an order cache. A disabled cache never hits and never writes.
func New(store storage.Storage, maxAge time.Duration, enabled bool, log *zap.Logger) *OrderCache {
	if log == nil {
		log = zap.NewNop()
	}
	return &OrderCache{
		store:   store,
		maxAge:  maxAge,
		enabled: enabled && store != nil,
		now:     time.Now,
		log:     log.With(zap.String("component", "order_cache")),
	}
}

// Key is the object key of the window start..end.
func Key(start, end time.Time) string {
	sum := md5.Sum([]byte(start.UTC().Format(keyLayout) + "_" + end.UTC().Format(keyLayout)))
	return "orders/orders_cache_" + hex.EncodeToString(sum[:]) + ".json"
}

// Get returns the cached orders of a window. ok is false on a miss, an
// expired entry or an unreadable entry.
func (c *OrderCache) Get(ctx context.Context, start, end time.Time) ([]model.Order, bool) {
	if !c.enabled {
		return nil, false
	}
	key := Key(start, end)
	rc, info, err := c.store.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			c.log.Warn("cache read failed", zap.String("event", "cache_error"), zap.String("key", key), zap.Error(err))
		}
		return nil, false
	}
	defer rc.Close()

	age := c.now().Sub(info.LastModified)
	if c.maxAge > 0 && age >= c.maxAge {
		c.log.Debug("cache expired", zap.String("event", "cache_expired"), zap.String("key", key), zap.Duration("age", age))
		return nil, false
	}

	var orders []model.Order
	if err := json.NewDecoder(rc).Decode(&orders); err != nil {
		c.log.Warn("cache entry unreadable", zap.String("event", "cache_error"), zap.String("key", key), zap.Error(err))
		return nil, false
	}
	c.log.Info("cache hit", zap.String("event", "cache_hit"), zap.String("key", key), zap.Int("orders", len(orders)))
	return orders, true
}

// Put stores the orders of a window.
func (c *OrderCache) Put(ctx context.Context, start, end time.Time, orders []model.Order) error {
	if !c.enabled {
		return nil
	}
	if orders == nil {
		orders = []model.Order{}
	}
	b, err := json.Marshal(orders)
	if err != nil {
		return fmt.Errorf("encode orders: %w", err)
	}
	key := Key(start, end)
	if _, err := c.store.Put(ctx, key, bytes.NewReader(b), storage.PutObjectOptions{
		Size:        int64(len(b)),
		ContentType: "application/json",
	}); err != nil {
		return fmt.Errorf("write cache: %w", err)
	}
	c.log.Debug("cache stored", zap.String("event", "cache_put"), zap.String("key", key), zap.Int("orders", len(orders)))
	return nil
}

// CachedFetcher serves FetchOrders from the cache before asking next.
type CachedFetcher struct {
	next  reconcile.OrderFetcher
	cache *OrderCache
}

// NewFetcher decorates next with the cache.
func NewFetcher(next reconcile.OrderFetcher, c *OrderCache) *CachedFetcher {
	return &CachedFetcher{next: next, cache: c}
}

func (f *CachedFetcher) FetchOrders(ctx context.Context, start, end time.Time) ([]model.Order, error) {
	if orders, ok := f.cache.Get(ctx, start, end); ok {
		return orders, nil
	}
	orders, err := f.next.FetchOrders(ctx, start, end)
	if err != nil {
		return nil, err
	}
	if err := f.cache.Put(ctx, start, end, orders); err != nil {
		f.cache.log.Warn("cache write failed", zap.String("event", "cache_error"), zap.Error(err))
	}
	return orders, nil
}
