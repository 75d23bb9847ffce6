package fillup

import (
	"context"
	"fmt"
	"sync"

	"tow-trip-planner/internal/models"
)

// RepositoryInterface is the fill-up log, kept in odometer order.
type RepositoryInterface interface {
	// Append derives the new entry from the latest one and stores it. Both
	// happen under one lock so concurrent fill-ups see each other.
	Append(ctx context.Context, build func(last *models.FillUp) (*models.FillUp, error)) (*models.FillUp, error)
	FindByID(ctx context.Context, id string) (*models.FillUp, error)
	List(ctx context.Context) ([]*models.FillUp, error)
}

// Repository keeps the fill-up log in process memory.
type Repository struct {
	mu      sync.RWMutex
	entries []*models.FillUp
	byID    map[string]int
}

func NewRepository() RepositoryInterface {
	return &Repository{byID: make(map[string]int)}
}

func (r *Repository) Append(ctx context.Context, build func(last *models.FillUp) (*models.FillUp, error)) (*models.FillUp, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var last *models.FillUp
	if n := len(r.entries); n > 0 {
		cp := *r.entries[n-1]
		last = &cp
	}
	f, err := build(last)
	if err != nil {
		return nil, err
	}
	if _, exists := r.byID[f.ID]; exists {
		return nil, fmt.Errorf("repository.AppendFillUp: duplicate id %s: %w", f.ID, models.ErrInvalidInput)
	}

	stored := *f
	r.byID[f.ID] = len(r.entries)
	r.entries = append(r.entries, &stored)
	return f, nil
}

func (r *Repository) FindByID(ctx context.Context, id string) (*models.FillUp, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	i, ok := r.byID[id]
	if !ok {
		return nil, models.ErrNotFound
	}
	cp := *r.entries[i]
	return &cp, nil
}

// List returns every entry, oldest first.
func (r *Repository) List(ctx context.Context) ([]*models.FillUp, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*models.FillUp, len(r.entries))
	for i, f := range r.entries {
		cp := *f
		out[i] = &cp
	}
	return out, nil
}
