package postgres

import (
	"context"
	"fmt"

	"github.com/samirrijal/mapnav/internal/core/domain"
)

// LocationRepo implements ports.LocationRepository with pgx.
type LocationRepo struct {
	db *DB
}

// NewLocationRepo creates a new LocationRepo.
func NewLocationRepo(db *DB) *LocationRepo {
	return &LocationRepo{db: db}
}

// Insert appends a location; the database assigns id and created_at.
func (r *LocationRepo) Insert(ctx context.Context, l *domain.Location) error {
	err := r.db.Pool.QueryRow(ctx, `
		INSERT INTO locations (name, latitude, longitude, type, description)
		VALUES ($1, $2, $3, $4, NULLIF($5, ''))
		RETURNING id::text, created_at
	`, l.Name, l.Latitude, l.Longitude, string(l.Type), l.Description).Scan(&l.ID, &l.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert location: %w", err)
	}
	return nil
}

// List returns all locations in insertion order.
func (r *LocationRepo) List(ctx context.Context) ([]domain.Location, error) {
	rows, err := r.db.Pool.Query(ctx, `
		SELECT id::text, name, latitude, longitude, type, COALESCE(description, ''), created_at
		FROM locations
		ORDER BY seq
	`)
	if err != nil {
		return nil, fmt.Errorf("query locations: %w", err)
	}
	defer rows.Close()

	locs := []domain.Location{}
	for rows.Next() {
		var l domain.Location
		var typ string
		if err := rows.Scan(&l.ID, &l.Name, &l.Latitude, &l.Longitude, &typ, &l.Description, &l.CreatedAt); err != nil {
			return nil, err
		}
		l.Type = domain.LocationType(typ)
		locs = append(locs, l)
	}
	return locs, rows.Err()
}

// Ping checks that the pool can reach the database.
func (r *LocationRepo) Ping(ctx context.Context) error {
	return r.db.Pool.Ping(ctx)
}
