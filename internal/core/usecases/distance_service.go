package usecases

import (
	"context"

	"github.com/samirrijal/mapnav/internal/core/domain"
	"github.com/samirrijal/mapnav/internal/pkg/geospatial"
	"github.com/samirrijal/mapnav/internal/pkg/metrics"
)

// DistanceService computes straight-line routes. It holds no state and performs no I/O.
type DistanceService struct{}

// NewDistanceService creates a new DistanceService.
func NewDistanceService() *DistanceService {
	return &DistanceService{}
}

// ComputeDistance returns the great-circle distance in kilometres.
func (s *DistanceService) ComputeDistance(start, end domain.LatLng) float64 {
	return geospatial.Distance(start, end)
}

// BuildRouteResult wraps the computed distance with the echoed endpoints.
func (s *DistanceService) BuildRouteResult(start, end domain.LatLng) domain.RouteResult {
	d := s.ComputeDistance(start, end)
	metrics.RouteDistance.Observe(d)
	return domain.RouteResult{DistanceKm: d, Start: start, End: end}
}

// BuildRoute implements ports.RouteCalculator in-process.
func (s *DistanceService) BuildRoute(_ context.Context, start, end domain.LatLng) (domain.RouteResult, error) {
	return s.BuildRouteResult(start, end), nil
}
