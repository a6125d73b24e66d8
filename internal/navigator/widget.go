package navigator

import "github.com/samirrijal/mapnav/internal/core/domain"

// State is the controller's interaction state.
type State int

const (
	Idle State = iota
	SearchPending
	RoutePending
)

func (s State) String() string {
	switch s {
	case SearchPending:
		return "search pending"
	case RoutePending:
		return "route pending"
	default:
		return "idle"
	}
}

// Marker is a pin on the map. Only unpersisted markers can be saved.
type Marker struct {
	ID         string
	Position   domain.LatLng
	Label      string
	Persisted  bool
	LocationID string
}

// RouteInfo is the summary shown next to a route overlay.
type RouteInfo struct {
	Distance string
	From     string
	To       string
}

// MapWidget renders controller output. All methods are called from the controller's Run
// goroutine, one at a time.
type MapWidget interface {
	SetView(center domain.LatLng, zoom int)
	FitBounds(b domain.Bounds)
	AddMarker(m Marker)
	UpdateMarker(m Marker)
	RemoveMarker(id string)
	AddPolyline(id string, points []domain.LatLng)
	RemovePolyline(id string)
	ShowLocations(locs []domain.Location)
	ShowRouteInfo(info RouteInfo)
	ShowState(s State)
	Notify(msg string)
}
