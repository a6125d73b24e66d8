package usecases

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/samirrijal/mapnav/internal/core/domain"
	"github.com/samirrijal/mapnav/internal/core/ports"
	"github.com/samirrijal/mapnav/internal/pkg/logging"
	"github.com/samirrijal/mapnav/internal/pkg/metrics"
)

const (
	// The list is cached per generation. Create bumps the generation, so a snapshot read
	// before the bump can only ever be written under a key no reader asks for again.
	locationsGenKey      = "locations:gen"
	locationsCachePrefix = "locations:all:"
	locationsCacheTTL    = 60 // seconds
)

var tracer = otel.Tracer("github.com/samirrijal/mapnav/internal/core/usecases")

// LocationService validates and persists saved locations.
type LocationService struct {
	locations ports.LocationRepository
	cache     ports.CacheService
	publisher ports.EventPublisher
}

// NewLocationService creates a new LocationService. cache and publisher may be nil.
func NewLocationService(locations ports.LocationRepository, cache ports.CacheService, publisher ports.EventPublisher) *LocationService {
	return &LocationService{locations: locations, cache: cache, publisher: publisher}
}

// ListLocations returns every saved location in insertion order.
// An empty collection yields an empty, non-nil slice.
func (s *LocationService) ListLocations(ctx context.Context) ([]domain.Location, error) {
	ctx, span := tracer.Start(ctx, "LocationService.ListLocations")
	defer span.End()

	cacheKey, cached := s.listCacheKey(ctx)
	if cached {
		if data, err := s.cache.Get(ctx, cacheKey); err == nil {
			var locs []domain.Location
			if err := json.Unmarshal(data, &locs); err == nil {
				metrics.CacheHits.WithLabelValues("list_locations").Inc()
				span.SetAttributes(attribute.Bool("cache.hit", true))
				return nonNil(locs), nil
			}
		}
		metrics.CacheMisses.WithLabelValues("list_locations").Inc()
	}

	locs, err := s.locations.List(ctx)
	if err != nil {
		metrics.StorageErrors.WithLabelValues("list").Inc()
		span.RecordError(err)
		span.SetStatus(codes.Error, "list failed")
		return nil, &domain.StorageError{Op: "list", Err: err}
	}
	locs = nonNil(locs)
	span.SetAttributes(attribute.Int("locations.count", len(locs)))

	if cached {
		if data, err := json.Marshal(locs); err == nil {
			if err := s.cache.Set(ctx, cacheKey, data, locationsCacheTTL); err != nil {
				logging.FromContext(ctx).Warn("cache set failed", "key", cacheKey, "error", err)
			}
		}
	}

	return locs, nil
}

// CreateLocation validates in and persists it as a new Location.
// Validation failures are returned as *domain.ValidationError before any write;
// write failures as *domain.StorageError.
func (s *LocationService) CreateLocation(ctx context.Context, in domain.LocationInput) (*domain.Location, error) {
	ctx, span := tracer.Start(ctx, "LocationService.CreateLocation")
	defer span.End()

	loc, err := domain.ValidateLocation(in)
	if err != nil {
		var verr *domain.ValidationError
		if errors.As(err, &verr) {
			metrics.ValidationFailures.WithLabelValues(verr.Field).Inc()
		}
		span.SetStatus(codes.Error, "validation failed")
		return nil, err
	}

	if err := s.locations.Insert(ctx, &loc); err != nil {
		metrics.StorageErrors.WithLabelValues("create").Inc()
		span.RecordError(err)
		span.SetStatus(codes.Error, "insert failed")
		return nil, &domain.StorageError{Op: "create", Err: err}
	}
	metrics.LocationsCreated.WithLabelValues(string(loc.Type)).Inc()
	span.SetAttributes(attribute.String("location.id", loc.ID))

	log := logging.FromContext(ctx)
	if s.cache != nil {
		s.invalidateList(ctx)
	}
	if s.publisher != nil {
		event := &domain.LocationEvent{Kind: domain.LocationEventCreated, Location: loc, At: time.Now().UTC()}
		if err := s.publisher.PublishLocationEvent(ctx, event); err != nil {
			log.Warn("publish location event failed", "location_id", loc.ID, "error", err)
		}
	}

	log.Info("location created", "location_id", loc.ID, "type", loc.Type)
	return &loc, nil
}

// listCacheKey returns the list key of the current generation. ok is false when there is no
// cache or the generation cannot be read.
func (s *LocationService) listCacheKey(ctx context.Context) (key string, ok bool) {
	if s.cache == nil {
		return "", false
	}
	gen, err := s.cache.Get(ctx, locationsGenKey)
	switch {
	case errors.Is(err, ports.ErrCacheMiss):
		return locationsCachePrefix + "0", true
	case err != nil:
		logging.FromContext(ctx).Warn("cache generation read failed", "key", locationsGenKey, "error", err)
		return "", false
	}
	return locationsCachePrefix + string(gen), true
}

// invalidateList advances the list generation and drops the previous generation's entry.
func (s *LocationService) invalidateList(ctx context.Context) {
	log := logging.FromContext(ctx)
	gen, err := s.cache.Incr(ctx, locationsGenKey)
	if err != nil {
		log.Warn("cache invalidation failed", "key", locationsGenKey, "error", err)
		return
	}
	prev := locationsCachePrefix + strconv.FormatInt(gen-1, 10)
	if err := s.cache.Delete(ctx, prev); err != nil {
		log.Debug("cache delete failed", "key", prev, "error", err)
	}
}

// Ping reports whether the backing store is reachable.
func (s *LocationService) Ping(ctx context.Context) error {
	return s.locations.Ping(ctx)
}

func nonNil(locs []domain.Location) []domain.Location {
	if locs == nil {
		return []domain.Location{}
	}
	return locs
}
