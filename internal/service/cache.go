// Package service provides caching for computed feature vectors.
package service

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	cache "github.com/patrickmn/go-cache"

	"github.com/antoniogomezgallardo/1x2-Predictor-sub000/internal/metrics"
	"github.com/antoniogomezgallardo/1x2-Predictor-sub000/internal/models"
)

// VectorKey uniquely identifies a cached feature vector.
type VectorKey struct {
	MatchID       uuid.UUID
	AsOf          time.Time
	SchemaVersion string
}

// String returns string representation of the cache key
func (k VectorKey) String() string {
	return fmt.Sprintf("%s:%d:%s", k.MatchID, k.AsOf.Unix(), k.SchemaVersion)
}

// VectorCache provides in-memory caching for feature vectors. Vectors are
// immutable once built, so cached entries never go stale within their TTL.
type VectorCache struct {
	cache   *cache.Cache
	ttl     time.Duration
	maxSize int
}

// NewVectorCache creates a new feature vector cache
func NewVectorCache(ttl time.Duration, maxSize int) *VectorCache {
	return &VectorCache{
		cache:   cache.New(ttl, ttl*2),
		ttl:     ttl,
		maxSize: maxSize,
	}
}

// Get retrieves a cached vector, or nil on miss.
func (vc *VectorCache) Get(key VectorKey) *models.FeatureVector {
	if raw, found := vc.cache.Get(key.String()); found {
		if vector, ok := raw.(*models.FeatureVector); ok {
			metrics.FeatureCacheHitsTotal.Inc()
			return vector
		}
	}
	metrics.FeatureCacheMissesTotal.Inc()
	return nil
}

// Set stores a vector in the cache.
func (vc *VectorCache) Set(key VectorKey, vector *models.FeatureVector) {
	if vc.cache.ItemCount() >= vc.maxSize {
		vc.cache.DeleteExpired()
	}
	vc.cache.Set(key.String(), vector, vc.ttl)
}

// Flush clears all cached vectors, e.g. after a schema change.
func (vc *VectorCache) Flush() {
	vc.cache.Flush()
}
