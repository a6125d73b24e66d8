package domain

import "strconv"

// RouteResult is a straight-line route between two coordinates. It is never persisted.
type RouteResult struct {
	DistanceKm float64 `json:"-"`
	Start      LatLng  `json:"start"`
	End        LatLng  `json:"end"`
}

// FormattedDistance renders the distance with two decimals, as exposed on the API.
func (r RouteResult) FormattedDistance() string {
	return strconv.FormatFloat(r.DistanceKm, 'f', 2, 64)
}
