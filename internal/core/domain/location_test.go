package domain_test

import (
	"errors"
	"math"
	"testing"

	"github.com/samirrijal/mapnav/internal/core/domain"
)

func ptr(f float64) *float64 { return &f }

func TestValidateLocation_Defaults(t *testing.T) {
	loc, err := domain.ValidateLocation(domain.LocationInput{
		Name:      "  Times Square ",
		Latitude:  ptr(40.7589),
		Longitude: ptr(-73.9851),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if loc.Type != domain.TypeOther {
		t.Errorf("expected default type other, got %s", loc.Type)
	}
	if loc.Name != "Times Square" {
		t.Errorf("expected trimmed name, got %q", loc.Name)
	}
	if loc.Latitude != 40.7589 || loc.Longitude != -73.9851 {
		t.Errorf("coordinates changed: %v, %v", loc.Latitude, loc.Longitude)
	}
}

func TestValidateLocation_Bounds(t *testing.T) {
	for _, lat := range []float64{-90, 0, 90} {
		for _, lng := range []float64{-180, 0, 180} {
			if _, err := domain.ValidateLocation(domain.LocationInput{Name: "edge", Latitude: ptr(lat), Longitude: ptr(lng)}); err != nil {
				t.Errorf("(%v,%v) should be valid: %v", lat, lng, err)
			}
		}
	}
}

func TestValidateLocation_Rejects(t *testing.T) {
	tests := []struct {
		name  string
		in    domain.LocationInput
		field string
	}{
		{"empty name", domain.LocationInput{Latitude: ptr(1), Longitude: ptr(1)}, "name"},
		{"blank name", domain.LocationInput{Name: "   ", Latitude: ptr(1), Longitude: ptr(1)}, "name"},
		{"latitude 91", domain.LocationInput{Name: "x", Latitude: ptr(91), Longitude: ptr(1)}, "latitude"},
		{"latitude -90.5", domain.LocationInput{Name: "x", Latitude: ptr(-90.5), Longitude: ptr(1)}, "latitude"},
		{"latitude NaN", domain.LocationInput{Name: "x", Latitude: ptr(math.NaN()), Longitude: ptr(1)}, "latitude"},
		{"missing latitude", domain.LocationInput{Name: "x", Longitude: ptr(1)}, "latitude"},
		{"longitude 180.1", domain.LocationInput{Name: "x", Latitude: ptr(1), Longitude: ptr(180.1)}, "longitude"},
		{"longitude -181", domain.LocationInput{Name: "x", Latitude: ptr(1), Longitude: ptr(-181)}, "longitude"},
		{"missing longitude", domain.LocationInput{Name: "x", Latitude: ptr(1)}, "longitude"},
		{"unknown type", domain.LocationInput{Name: "x", Latitude: ptr(1), Longitude: ptr(1), Type: "museum"}, "type"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := domain.ValidateLocation(tt.in)
			var verr *domain.ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("expected ValidationError, got %v", err)
			}
			if verr.Field != tt.field {
				t.Errorf("expected field %s, got %s", tt.field, verr.Field)
			}
		})
	}
}

func TestRouteResult_FormattedDistance(t *testing.T) {
	r := domain.RouteResult{DistanceKm: 3935.746}
	if got := r.FormattedDistance(); got != "3935.75" {
		t.Errorf("expected 3935.75, got %s", got)
	}
	if got := (domain.RouteResult{}).FormattedDistance(); got != "0.00" {
		t.Errorf("expected 0.00, got %s", got)
	}
}
