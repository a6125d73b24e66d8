package domain

import (
	"math"
	"strings"
	"time"
)

// LocationType classifies a saved point of interest.
type LocationType string

const (
	TypeLandmark   LocationType = "landmark"
	TypeRestaurant LocationType = "restaurant"
	TypeHotel      LocationType = "hotel"
	TypeOther      LocationType = "other"
)

// LocationTypes lists every accepted LocationType.
var LocationTypes = []LocationType{TypeLandmark, TypeRestaurant, TypeHotel, TypeOther}

// Valid reports whether t is one of the enumerated types.
func (t LocationType) Valid() bool {
	for _, known := range LocationTypes {
		if t == known {
			return true
		}
	}
	return false
}

// Location is a persisted point of interest.
type Location struct {
	ID          string       `json:"id"`
	Name        string       `json:"name"`
	Latitude    float64      `json:"latitude"`
	Longitude   float64      `json:"longitude"`
	Type        LocationType `json:"type"`
	Description string       `json:"description,omitempty"`
	CreatedAt   time.Time    `json:"created_at"`
}

// Position returns the location's coordinate.
func (l Location) Position() LatLng {
	return LatLng{Lat: l.Latitude, Lng: l.Longitude}
}

// LocationInput carries the fields accepted when creating a Location.
// Latitude and Longitude are pointers so that a missing value is distinguishable from zero.
type LocationInput struct {
	Name        string       `json:"name"`
	Latitude    *float64     `json:"latitude"`
	Longitude   *float64     `json:"longitude"`
	Type        LocationType `json:"type,omitempty"`
	Description string       `json:"description,omitempty"`
}

// ValidateLocation checks in and returns the Location it describes, without ID or CreatedAt.
// The returned error is a *ValidationError naming the first offending field.
func ValidateLocation(in LocationInput) (Location, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return Location{}, &ValidationError{Field: "name", Reason: "is required"}
	}
	if err := checkCoordinate("latitude", in.Latitude, 90); err != nil {
		return Location{}, err
	}
	if err := checkCoordinate("longitude", in.Longitude, 180); err != nil {
		return Location{}, err
	}

	typ := in.Type
	if typ == "" {
		typ = TypeOther
	}
	if !typ.Valid() {
		return Location{}, &ValidationError{
			Field:  "type",
			Reason: "must be one of landmark, restaurant, hotel, other",
		}
	}

	return Location{
		Name:        name,
		Latitude:    *in.Latitude,
		Longitude:   *in.Longitude,
		Type:        typ,
		Description: in.Description,
	}, nil
}

func checkCoordinate(field string, v *float64, limit float64) error {
	if v == nil {
		return &ValidationError{Field: field, Reason: "is required"}
	}
	if math.IsNaN(*v) || math.IsInf(*v, 0) || *v < -limit || *v > limit {
		return &ValidationError{Field: field, Reason: rangeReason(limit)}
	}
	return nil
}

func rangeReason(limit float64) string {
	if limit == 90 {
		return "must be between -90 and 90"
	}
	return "must be between -180 and 180"
}
