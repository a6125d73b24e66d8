package http

import (
	"github.com/nats-io/nats.go"

	"github.com/samirrijal/mapnav/internal/adapters/valkey"
	"github.com/samirrijal/mapnav/internal/core/usecases"
)

// Dependencies holds all services needed by HTTP handlers.
// NATS and Cache are optional; handlers degrade when they are nil.
type Dependencies struct {
	Locations *usecases.LocationService
	Distance  *usecases.DistanceService
	NATS      *nats.Conn
	Cache     *valkey.Cache
}
