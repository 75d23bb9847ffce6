package routing

import (
	"context"

	"tow-trip-planner/internal/models"
)

// Provider is a driving directions backend. Implementations normalize the
// provider's native units to miles and hours and report failures as
// ErrNoRoute, ErrInvalidLocation, *models.ProviderError, ErrNetwork or
// ErrTimeout.
type Provider interface {
	Name() string
	Route(ctx context.Context, origin, destination models.Coordinate) (*models.RouteResult, error)
}
