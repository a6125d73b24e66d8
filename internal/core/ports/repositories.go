package ports

import (
	"context"

	"github.com/samirrijal/mapnav/internal/core/domain"
)

// LocationRepository persists saved locations. Implementations assign ID and CreatedAt on Insert.
type LocationRepository interface {
	Insert(ctx context.Context, loc *domain.Location) error
	// List returns every location in insertion order.
	List(ctx context.Context) ([]domain.Location, error)
	Ping(ctx context.Context) error
}
