package ports

import (
	"context"

	"github.com/samirrijal/geoengine/internal/core/domain"
)

// Geocoder resolves a postal address to candidate coordinates.
type Geocoder interface {
	// Search returns at most one candidate; an empty slice means no match.
	Search(ctx context.Context, addr domain.Address) ([]domain.GeocodeResult, error)
}

// EventPublisher publishes domain events to a message broker.
type EventPublisher interface {
	PublishPartnerLocated(ctx context.Context, ev *domain.PartnerLocated) error
	PublishGeolocalizeRequest(ctx context.Context, partnerIDs []string) error
}

// CacheService provides read-through caching.
type CacheService interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttlSeconds int) error
	Delete(ctx context.Context, key string) error
}
