package domain

import "time"

// LocationEventCreated is the kind of event emitted after a successful create.
const LocationEventCreated = "created"

// LocationEvent is published on the message bus when the saved-locations collection changes.
type LocationEvent struct {
	Kind     string    `json:"kind"`
	Location Location  `json:"location"`
	At       time.Time `json:"at"`
}

// Place is a geocoding candidate.
type Place struct {
	Position    LatLng `json:"position"`
	DisplayName string `json:"display_name"`
}
