package extraction

import (
	"time"

	"github.com/TechGirlNerd900/ESUSAUDITAI-sub001/internal/domain/docmodel"
	"github.com/TechGirlNerd900/ESUSAUDITAI-sub001/internal/metrics"
	"github.com/hashicorp/golang-lru/v2/expirable"
)

// Cache memoizes canonical extractions keyed by (storage location, profile).
// It is a performance artifact only: every caller must behave identically
// when handed the NoopCache.
type Cache interface {
	Get(location string, profile docmodel.Profile) (docmodel.CanonicalExtraction, bool)
	Set(location string, profile docmodel.Profile, value docmodel.CanonicalExtraction)
	Expire(location string, profile docmodel.Profile)
}

type lruCache struct {
	inner *expirable.LRU[string, docmodel.CanonicalExtraction]
}

func NewCache(size int, ttl time.Duration) Cache {
	return &lruCache{
		inner: expirable.NewLRU[string, docmodel.CanonicalExtraction](size, nil, ttl),
	}
}

func cacheKey(location string, profile docmodel.Profile) string {
	return location + "|" + string(profile)
}

func (c *lruCache) Get(location string, profile docmodel.Profile) (docmodel.CanonicalExtraction, bool) {
	value, found := c.inner.Get(cacheKey(location, profile))
	metrics.CaptureCacheLookup(found)
	return value, found
}

func (c *lruCache) Set(location string, profile docmodel.Profile, value docmodel.CanonicalExtraction) {
	// last-writer-wins on the same key
	c.inner.Add(cacheKey(location, profile), value)
}

func (c *lruCache) Expire(location string, profile docmodel.Profile) {
	c.inner.Remove(cacheKey(location, profile))
}

// NoopCache never hits. Used to prove cache-absence safety and as the
// fallback when caching is disabled.
type NoopCache struct{}

func (NoopCache) Get(string, docmodel.Profile) (docmodel.CanonicalExtraction, bool) {
	return docmodel.CanonicalExtraction{}, false
}

func (NoopCache) Set(string, docmodel.Profile, docmodel.CanonicalExtraction) {}

func (NoopCache) Expire(string, docmodel.Profile) {}
