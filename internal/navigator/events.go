package navigator

import "github.com/samirrijal/mapnav/internal/core/domain"

// Event is an input to the controller. Widgets and subscribers send events on the channel
// passed to Controller.Run; the controller never calls back into the sender.
type Event interface {
	event()
}

// MapClicked is emitted when the user clicks the map.
type MapClicked struct {
	Position domain.LatLng
}

// SaveMarker asks the controller to persist an unsaved marker.
type SaveMarker struct {
	MarkerID string
}

// SearchSubmitted carries a free-text place search.
type SearchSubmitted struct {
	Query string
}

// PlanRouteSubmitted carries the two free-text endpoints of a route.
type PlanRouteSubmitted struct {
	From string
	To   string
}

// SavedLocationSelected is emitted when an entry of the saved list is picked.
type SavedLocationSelected struct {
	LocationID string
}

// LocationsChanged reports that the saved collection changed outside this session.
type LocationsChanged struct{}

func (MapClicked) event()            {}
func (SaveMarker) event()            {}
func (SearchSubmitted) event()       {}
func (PlanRouteSubmitted) event()    {}
func (SavedLocationSelected) event() {}
func (LocationsChanged) event()      {}
