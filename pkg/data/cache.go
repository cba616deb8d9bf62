package data

import (
	"context"
	"strings"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	CacheSizeDefault = 256
	CacheTTLDefault  = 10 * time.Minute
)

var (
	cacheHitsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "tmscan_catalog_cache_hits_total",
		Help: "Registration lookups served from the cache.",
	})
	cacheMissesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "tmscan_catalog_cache_misses_total",
		Help: "Registration lookups that reached the source.",
	})
)

// CachedSource keeps recent single registration lookups in an expiring LRU.
// Searches always reach the underlying source.
type CachedSource struct {
	src   Source
	cache *expirable.LRU[string, *Record]
}

// NewCachedSource wraps src. Non-positive size or ttl use the defaults.
func NewCachedSource(src Source, size int, ttl time.Duration) *CachedSource {
	if size <= 0 {
		size = CacheSizeDefault
	}
	if ttl <= 0 {
		ttl = CacheTTLDefault
	}
	return &CachedSource{
		src:   src,
		cache: expirable.NewLRU[string, *Record](size, nil, ttl),
	}
}

func (s *CachedSource) Name() string {
	return s.src.Name()
}

func (s *CachedSource) Search(ctx context.Context, c *Criteria) ([]*Record, error) {
	return s.src.Search(ctx, c)
}

func (s *CachedSource) Get(ctx context.Context, regNumber string) (*Record, error) {
	key := strings.TrimSpace(regNumber)
	if r, ok := s.cache.Get(key); ok {
		cacheHitsTotal.Inc()
		return r, nil
	}
	cacheMissesTotal.Inc()

	r, err := s.src.Get(ctx, key)
	if err != nil {
		return nil, err
	}
	s.cache.Add(key, r)
	return r, nil
}

// Purge drops all cached lookups.
func (s *CachedSource) Purge() {
	s.cache.Purge()
}
