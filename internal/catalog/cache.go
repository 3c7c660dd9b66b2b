package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/utafrali/CoffeeOrderGo/internal/domain"
)

const cacheKeyPrefix = "catalog:item:"

// CachedProvider wraps a Provider with a Redis read-through cache. Cache
// failures degrade to the upstream provider; they never fail a lookup.
type CachedProvider struct {
	next   Provider
	client *redis.Client
	ttl    time.Duration
	logger *slog.Logger
}

// NewCachedProvider creates a read-through cache in front of a provider.
func NewCachedProvider(next Provider, client *redis.Client, ttl time.Duration, logger *slog.Logger) *CachedProvider {
	return &CachedProvider{
		next:   next,
		client: client,
		ttl:    ttl,
		logger: logger,
	}
}

func cacheKey(coffeeShopID, menuItemID string) string {
	return cacheKeyPrefix + coffeeShopID + ":" + menuItemID
}

// GetItemCustomization returns the cached entry when present, otherwise
// fetches from the upstream provider and stores the result.
func (p *CachedProvider) GetItemCustomization(ctx context.Context, coffeeShopID, menuItemID string) (*domain.ItemCustomization, error) {
	key := cacheKey(coffeeShopID, menuItemID)

	data, err := p.client.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		var item domain.ItemCustomization
		if jsonErr := json.Unmarshal(data, &item); jsonErr == nil {
			return &item, nil
		}
		// A corrupt entry falls through to the upstream fetch and gets
		// overwritten below.
		p.logger.WarnContext(ctx, "dropping corrupt catalog cache entry",
			slog.String("key", key),
		)
	case !errors.Is(err, redis.Nil):
		p.logger.WarnContext(ctx, "catalog cache read failed",
			slog.String("key", key),
			slog.String("error", err.Error()),
		)
	}

	item, err := p.next.GetItemCustomization(ctx, coffeeShopID, menuItemID)
	if err != nil {
		return nil, err
	}

	if err := p.store(ctx, key, item); err != nil {
		p.logger.WarnContext(ctx, "catalog cache write failed",
			slog.String("key", key),
			slog.String("error", err.Error()),
		)
	}

	return item, nil
}

func (p *CachedProvider) store(ctx context.Context, key string, item *domain.ItemCustomization) error {
	data, err := json.Marshal(item)
	if err != nil {
		return fmt.Errorf("marshal catalog entry: %w", err)
	}
	if err := p.client.Set(ctx, key, data, p.ttl).Err(); err != nil {
		return fmt.Errorf("redis set catalog entry: %w", err)
	}
	return nil
}

// Invalidate drops one item's cached entry, e.g. after a catalog change
// notification.
func (p *CachedProvider) Invalidate(ctx context.Context, coffeeShopID, menuItemID string) error {
	if err := p.client.Del(ctx, cacheKey(coffeeShopID, menuItemID)).Err(); err != nil {
		return fmt.Errorf("redis del catalog entry: %w", err)
	}
	return nil
}
