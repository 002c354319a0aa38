package usecases

import (
	"context"
	"encoding/json"
	"strconv"
	"time"

	"github.com/samirrijal/geoengine/internal/core/ports"
	"github.com/samirrijal/geoengine/internal/pkg/metrics"
)

const (
	partnerCacheTTL  = 600 // 10 min for a single partner
	featuresCacheTTL = 300

	layersGenerationKey = "layers:gen"
)

func partnerCacheKey(id string) string { return "partners:id:" + id }

// cachedJSON decodes key into dst; it reports whether the cache served the value.
func cachedJSON(ctx context.Context, cache ports.CacheService, op, key string, dst any) bool {
	if cache == nil {
		return false
	}
	data, err := cache.Get(ctx, key)
	if err == nil && json.Unmarshal(data, dst) == nil {
		metrics.CacheHits.WithLabelValues(op).Inc()
		return true
	}
	metrics.CacheMisses.WithLabelValues(op).Inc()
	return false
}

func storeJSON(ctx context.Context, cache ports.CacheService, key string, v any, ttl int) {
	if cache == nil {
		return
	}
	if data, err := json.Marshal(v); err == nil {
		_ = cache.Set(ctx, key, data, ttl)
	}
}

// layersGeneration returns the current feature-cache generation.
func layersGeneration(ctx context.Context, cache ports.CacheService) string {
	if cache == nil {
		return "0"
	}
	data, err := cache.Get(ctx, layersGenerationKey)
	if err != nil || len(data) == 0 {
		return "0"
	}
	return string(data)
}

// invalidateLocation drops the cached partner and retires every cached
// feature collection by moving to a new generation.
func invalidateLocation(ctx context.Context, cache ports.CacheService, partnerID string) {
	if cache == nil {
		return
	}
	dropPartner(ctx, cache, partnerID)
	bumpLayersGeneration(ctx, cache)
}

func dropPartner(ctx context.Context, cache ports.CacheService, partnerID string) {
	if cache == nil {
		return
	}
	_ = cache.Delete(ctx, partnerCacheKey(partnerID))
}

func bumpLayersGeneration(ctx context.Context, cache ports.CacheService) {
	if cache == nil {
		return
	}
	gen := strconv.FormatInt(time.Now().UnixNano(), 10)
	_ = cache.Set(ctx, layersGenerationKey, []byte(gen), 24*3600)
}
