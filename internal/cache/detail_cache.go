package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/GTDGit/gtd_catalog/internal/models"
)

// KV is the subset of RedisClient the caches need.
type KV interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value string, ttl time.Duration) error
	SetNX(ctx context.Context, key string, value string, ttl time.Duration) (bool, error)
	DeleteIfValue(ctx context.Context, key, value string) (bool, error)
}

type cachedDetail struct {
	models.DetailInfo
	CachedAt time.Time `json:"cachedAt"`
}

// DetailCache keeps scraped detail pages keyed by catalog slug so repeated
// runs over the same page do not hit the storefront again.
type DetailCache struct {
	kv  KV
	ttl time.Duration
}

// NewDetailCache creates a new DetailCache. A zero ttl disables writes.
func NewDetailCache(kv KV, ttl time.Duration) *DetailCache {
	return &DetailCache{kv: kv, ttl: ttl}
}

func (c *DetailCache) key(slug string) string {
	return fmt.Sprintf("gog:detail:%s", slug)
}

// Get returns the cached detail for slug or ErrCacheMiss.
func (c *DetailCache) Get(ctx context.Context, slug string) (*models.DetailInfo, error) {
	raw, err := c.kv.Get(ctx, c.key(slug))
	if err != nil {
		return nil, err
	}
	var d cachedDetail
	if err := json.Unmarshal([]byte(raw), &d); err != nil {
		return nil, fmt.Errorf("failed to unmarshal detail %s: %w", slug, err)
	}
	return &d.DetailInfo, nil
}

// Set stores info for slug.
func (c *DetailCache) Set(ctx context.Context, slug string, info *models.DetailInfo) error {
	if c.ttl <= 0 {
		return nil
	}
	data, err := json.Marshal(cachedDetail{DetailInfo: *info, CachedAt: time.Now()})
	if err != nil {
		return fmt.Errorf("failed to marshal detail %s: %w", slug, err)
	}
	return c.kv.Set(ctx, c.key(slug), string(data), c.ttl)
}
