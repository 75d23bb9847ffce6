package geocode

import (
	"context"

	"tow-trip-planner/internal/models"
)

// Provider is a geocoding backend. Search returns an empty slice, not an
// error, when nothing matches.
type Provider interface {
	Name() string
	Search(ctx context.Context, query string, limit int) ([]models.Place, error)
	Reverse(ctx context.Context, c models.Coordinate) (models.Place, error)
}
