package cache

import (
	"context"
	"time"

	"fundocs-be/pkg/contentapi"

	"github.com/patrickmn/go-cache"
)

// ProgressCache holds the last progress snapshot fetched per user so that
// dashboard, badges and the gamification header share one upstream call.
type ProgressCache interface {
	Get(ctx context.Context, userID string) (*contentapi.Progress, bool)
	Set(ctx context.Context, userID string, p *contentapi.Progress)
	Delete(ctx context.Context, userID string)
}

type MemoryProgressCache struct {
	cache *cache.Cache
}

func NewMemoryProgressCache(ttl time.Duration) *MemoryProgressCache {
	return &MemoryProgressCache{cache: cache.New(ttl, 2*ttl)}
}

func (c *MemoryProgressCache) Get(_ context.Context, userID string) (*contentapi.Progress, bool) {
	if x, found := c.cache.Get(userID); found {
		p := *x.(*contentapi.Progress)
		return &p, true
	}
	return nil, false
}

func (c *MemoryProgressCache) Set(_ context.Context, userID string, p *contentapi.Progress) {
	if p == nil {
		return
	}
	cp := *p
	c.cache.Set(userID, &cp, cache.DefaultExpiration)
}

func (c *MemoryProgressCache) Delete(_ context.Context, userID string) {
	c.cache.Delete(userID)
}

// NopProgressCache disables caching.
type NopProgressCache struct{}

func (NopProgressCache) Get(context.Context, string) (*contentapi.Progress, bool) { return nil, false }
func (NopProgressCache) Set(context.Context, string, *contentapi.Progress)         {}
func (NopProgressCache) Delete(context.Context, string)                            {}
