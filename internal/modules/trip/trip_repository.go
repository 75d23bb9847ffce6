package trip

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"tow-trip-planner/internal/models"
)

// RepositoryInterface is the trip log. Trips are append only.
type RepositoryInterface interface {
	Create(ctx context.Context, t *models.Trip) error
	FindByID(ctx context.Context, id string) (*models.Trip, error)
	// List returns every trip ordered by sortBy ("date", "mpg",
	// "costPerMile", "distance"); desc reverses the order.
	List(ctx context.Context, sortBy string, desc bool) ([]*models.Trip, error)
}

// Repository keeps the trip log in process memory.
type Repository struct {
	mu    sync.RWMutex
	trips []*models.Trip
	byID  map[string]int
}

func NewRepository() RepositoryInterface {
	return &Repository{byID: make(map[string]int)}
}

// Create appends a copy of t. IDs must be unique.
func (r *Repository) Create(ctx context.Context, t *models.Trip) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byID[t.ID]; exists {
		return fmt.Errorf("repository.CreateTrip: duplicate id %s: %w", t.ID, models.ErrInvalidInput)
	}
	cp := cloneTrip(t)
	r.byID[t.ID] = len(r.trips)
	r.trips = append(r.trips, cp)
	return nil
}

func (r *Repository) FindByID(ctx context.Context, id string) (*models.Trip, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	i, ok := r.byID[id]
	if !ok {
		return nil, models.ErrNotFound
	}
	return cloneTrip(r.trips[i]), nil
}

func (r *Repository) List(ctx context.Context, sortBy string, desc bool) ([]*models.Trip, error) {
	less, err := lessFunc(sortBy)
	if err != nil {
		return nil, err
	}

	r.mu.RLock()
	out := make([]*models.Trip, len(r.trips))
	for i, t := range r.trips {
		out[i] = cloneTrip(t)
	}
	r.mu.RUnlock()

	// Stable so that equal keys keep insertion order in both directions.
	sort.SliceStable(out, func(i, j int) bool {
		if desc {
			return less(out[j], out[i])
		}
		return less(out[i], out[j])
	})
	return out, nil
}

func lessFunc(sortBy string) (func(a, b *models.Trip) bool, error) {
	switch sortBy {
	case "", models.SortByDate:
		return func(a, b *models.Trip) bool { return a.Date.Before(b.Date) }, nil
	case models.SortByMPG:
		return func(a, b *models.Trip) bool { return a.MPG < b.MPG }, nil
	case models.SortByCostPerMile:
		return func(a, b *models.Trip) bool { return a.CostPerMile < b.CostPerMile }, nil
	case models.SortByDistance:
		return func(a, b *models.Trip) bool { return a.DistanceMiles < b.DistanceMiles }, nil
	}
	return nil, fmt.Errorf("%w: unknown sort field %q", models.ErrInvalidInput, sortBy)
}

// cloneTrip copies t deeply enough that callers cannot mutate the log.
func cloneTrip(t *models.Trip) *models.Trip {
	cp := *t
	if t.Route != nil {
		route := *t.Route
		route.Coordinates = append([]models.Coordinate(nil), t.Route.Coordinates...)
		cp.Route = &route
	}
	return &cp
}
