package ports

import (
	"context"
	"errors"

	"github.com/samirrijal/mapnav/internal/core/domain"
)

// EventPublisher publishes domain events to a message broker.
type EventPublisher interface {
	PublishLocationEvent(ctx context.Context, event *domain.LocationEvent) error
}

// EventSubscriber subscribes to domain events from a message broker.
type EventSubscriber interface {
	SubscribeLocationEvents(ctx context.Context, handler func(ctx context.Context, event *domain.LocationEvent) error) error
}

// ErrCacheMiss is returned by CacheService.Get when the key does not exist.
var ErrCacheMiss = errors.New("cache miss")

// CacheService provides read-through caching.
type CacheService interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttlSeconds int) error
	Delete(ctx context.Context, key string) error
	// Incr atomically increments the integer at key, starting from 0, and returns the new value.
	Incr(ctx context.Context, key string) (int64, error)
}

// LocationStore is the create/list surface the map client persists through.
type LocationStore interface {
	ListLocations(ctx context.Context) ([]domain.Location, error)
	CreateLocation(ctx context.Context, in domain.LocationInput) (*domain.Location, error)
}

// RouteCalculator builds straight-line routes.
type RouteCalculator interface {
	BuildRoute(ctx context.Context, start, end domain.LatLng) (domain.RouteResult, error)
}

// Geocoder resolves free text into ordered candidates. An empty slice means nothing matched.
type Geocoder interface {
	Resolve(ctx context.Context, query string) ([]domain.Place, error)
}
