package llm

import (
	"context"
	"time"

	"github.com/patrickmn/go-cache"
	"golang.org/x/sync/singleflight"
)

// CachingGenerator memoises successful generations per (model, task) and
// collapses identical in-flight requests. Cached results are shared and must
// be treated as read-only.
type CachingGenerator struct {
	next  BlueprintGenerator
	cache *cache.Cache
	group singleflight.Group
}

// NewCachingGenerator wraps next. A non-positive ttl disables caching and
// returns next unchanged.
func NewCachingGenerator(next BlueprintGenerator, ttl time.Duration) BlueprintGenerator {
	if ttl <= 0 {
		return next
	}
	return &CachingGenerator{
		next:  next,
		cache: cache.New(ttl, 2*ttl),
	}
}

func cacheKey(modelName, task string) string {
	return modelName + "\x00" + task
}

func (c *CachingGenerator) GenerateBlueprint(ctx context.Context, modelName, task string) (*BlueprintResult, error) {
	key := cacheKey(modelName, task)
	if x, found := c.cache.Get(key); found {
		return x.(*BlueprintResult), nil
	}

	v, err, _ := c.group.Do(key, func() (interface{}, error) {
		res, err := c.next.GenerateBlueprint(ctx, modelName, task)
		if err != nil {
			return nil, err
		}
		c.cache.Set(key, res, cache.DefaultExpiration)
		return res, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*BlueprintResult), nil
}
