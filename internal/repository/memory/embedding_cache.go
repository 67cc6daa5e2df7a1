package memory

import (
	"context"
	"time"

	"poultry-diagnose-be/pkg/embedding"

	"github.com/patrickmn/go-cache"
)

// EmbeddingCache memoizes query vectors per exact text. Failed lookups are not cached.
type EmbeddingCache struct {
	next  embedding.EmbeddingProvider
	cache *cache.Cache
}

func NewEmbeddingCache(next embedding.EmbeddingProvider, ttl time.Duration) *EmbeddingCache {
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return &EmbeddingCache{
		next:  next,
		cache: cache.New(ttl, 2*ttl),
	}
}

func (c *EmbeddingCache) Generate(ctx context.Context, text string) ([]float32, error) {
	if x, found := c.cache.Get(text); found {
		return x.([]float32), nil
	}
	vec, err := c.next.Generate(ctx, text)
	if err != nil {
		return nil, err
	}
	c.cache.Set(text, vec, cache.DefaultExpiration)
	return vec, nil
}

// Len returns the number of cached, unexpired vectors.
func (c *EmbeddingCache) Len() int {
	return c.cache.ItemCount()
}
