package http

import (
	"fmt"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/samirrijal/mapnav/internal/core/domain"
	"github.com/samirrijal/mapnav/internal/pkg/geospatial"
)

// ListLocationsHandler returns every saved location in insertion order.
// With ?limit= (and optional ?offset=) the array is sliced and Link headers are set;
// the body is always a plain JSON array.
func ListLocationsHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		locs, err := deps.Locations.ListLocations(c.UserContext())
		if err != nil {
			return errFromDomain(c, err)
		}

		if c.Query("limit") == "" && c.Query("offset") == "" {
			return c.JSON(locs)
		}

		offset := c.QueryInt("offset", 0)
		limit := c.QueryInt("limit", 100)
		if offset < 0 {
			offset = 0
		}
		if limit <= 0 || limit > 500 {
			limit = 100
		}

		total := len(locs)
		if offset >= total {
			locs = []domain.Location{}
		} else {
			end := offset + limit
			if end > total {
				end = total
			}
			locs = locs[offset:end]
		}

		SetLinkHeaders(c, Pagination{Offset: offset, Limit: limit, Total: total})
		c.Set("X-Total-Count", strconv.Itoa(total))
		return c.JSON(locs)
	}
}

// CreateLocationHandler validates and persists a new location.
func CreateLocationHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var in domain.LocationInput
		if err := c.BodyParser(&in); err != nil {
			return errBadRequest(c, "invalid request body: "+err.Error())
		}

		loc, err := deps.Locations.CreateLocation(c.UserContext(), in)
		if err != nil {
			return errFromDomain(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(loc)
	}
}

// LocationsGeoJSONHandler returns saved locations as a GeoJSON FeatureCollection.
func LocationsGeoJSONHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		locs, err := deps.Locations.ListLocations(c.UserContext())
		if err != nil {
			return errFromDomain(c, err)
		}
		data, err := geospatial.LocationsCollection(locs).MarshalJSON()
		if err != nil {
			return errInternal(c, err.Error())
		}
		c.Set(fiber.HeaderContentType, "application/geo+json")
		return c.Send(data)
	}
}

type routeRequest struct {
	StartLat *float64 `json:"startLat"`
	StartLng *float64 `json:"startLng"`
	EndLat   *float64 `json:"endLat"`
	EndLng   *float64 `json:"endLng"`
}

type routeResponse struct {
	Distance string        `json:"distance"`
	Start    domain.LatLng `json:"start"`
	End      domain.LatLng `json:"end"`
}

// RouteHandler computes the straight-line distance between two coordinates.
func RouteHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req routeRequest
		if err := c.BodyParser(&req); err != nil {
			return errBadRequest(c, "invalid request body: "+err.Error())
		}

		fields := []struct {
			name  string
			v     *float64
			limit float64
		}{
			{"startLat", req.StartLat, 90},
			{"startLng", req.StartLng, 180},
			{"endLat", req.EndLat, 90},
			{"endLng", req.EndLng, 180},
		}
		for _, f := range fields {
			if f.v == nil {
				return errBadRequest(c, f.name+" is required")
			}
			if *f.v < -f.limit || *f.v > f.limit {
				return errBadRequest(c, fmt.Sprintf("%s must be between %v and %v", f.name, -f.limit, f.limit))
			}
		}

		start := domain.LatLng{Lat: *req.StartLat, Lng: *req.StartLng}
		end := domain.LatLng{Lat: *req.EndLat, Lng: *req.EndLng}
		r := deps.Distance.BuildRouteResult(start, end)

		return c.JSON(routeResponse{
			Distance: r.FormattedDistance(),
			Start:    r.Start,
			End:      r.End,
		})
	}
}
