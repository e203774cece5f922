package discount

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

var ErrCacheMiss = errors.New("banner cache miss")

const bannerKey = "discount:banner"

// BannerCache stores the banner candidate, the newest active-flagged code.
// A cached nil means there is no candidate at all.
type BannerCache interface {
	Get(ctx context.Context) (*DiscountCode, error)
	Set(ctx context.Context, d *DiscountCode) error
	Invalidate(ctx context.Context) error
}

type RedisBannerCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisBannerCache(client *redis.Client, ttl time.Duration) *RedisBannerCache {
	if ttl <= 0 {
		ttl = time.Minute
	}
	return &RedisBannerCache{client: client, ttl: ttl}
}

func (r *RedisBannerCache) Get(ctx context.Context) (*DiscountCode, error) {
	data, err := r.client.Get(ctx, bannerKey).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrCacheMiss
	}
	if err != nil {
		return nil, fmt.Errorf("redis get failed: %w", err)
	}

	var d *DiscountCode
	if err := json.Unmarshal(data, &d); err != nil {
		return nil, fmt.Errorf("unmarshal banner failed: %w", err)
	}
	return d, nil
}

func (r *RedisBannerCache) Set(ctx context.Context, d *DiscountCode) error {
	data, err := json.Marshal(d)
	if err != nil {
		return fmt.Errorf("marshal banner failed: %w", err)
	}
	if err := r.client.Set(ctx, bannerKey, data, r.ttl).Err(); err != nil {
		return fmt.Errorf("redis set failed: %w", err)
	}
	return nil
}

func (r *RedisBannerCache) Invalidate(ctx context.Context) error {
	if err := r.client.Del(ctx, bannerKey).Err(); err != nil {
		return fmt.Errorf("redis delete failed: %w", err)
	}
	return nil
}

// NopBannerCache always misses. It is used when no Redis address is set.
type NopBannerCache struct{}

func (NopBannerCache) Get(context.Context) (*DiscountCode, error) { return nil, ErrCacheMiss }
func (NopBannerCache) Set(context.Context, *DiscountCode) error { return nil }
func (NopBannerCache) Invalidate(context.Context) error { return nil }
