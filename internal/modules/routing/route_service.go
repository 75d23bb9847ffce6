package routing

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"tow-trip-planner/internal/apiclient"
	"tow-trip-planner/internal/logger"
	"tow-trip-planner/internal/models"
	"tow-trip-planner/pkg/retry"
)

// ServiceInterface is what the trip planner and the HTTP handler need.
type ServiceInterface interface {
	Route(ctx context.Context, origin, destination models.Coordinate) (*models.RouteResult, error)
	RouteWithProfile(ctx context.Context, origin, destination models.Coordinate) (*models.RouteResult, error)
}

// Climber reports total ascent and descent along a path.
type Climber interface {
	Climb(ctx context.Context, coords []models.Coordinate) (ascent, descent float64, err error)
}

type Options struct {
	// MaxRetries bounds retries of transient provider failures.
	MaxRetries int
	RetryDelay time.Duration
	Logger     *zap.Logger
}

// service wraps one routing Provider. Results are not cached.
type service struct {
	provider  Provider
	elevation Climber
	policy    retry.Policy
	log       *zap.Logger
}

// NewService builds a route service. elevation may be nil, in which case
// RouteWithProfile behaves like Route.
func NewService(provider Provider, elevation Climber, opts Options) ServiceInterface {
	return &service{
		provider:  provider,
		elevation: elevation,
		policy:    retry.Policy{MaxRetries: opts.MaxRetries, Delay: retry.Linear(opts.RetryDelay)},
		log:       logger.OrNop(opts.Logger),
	}
}

func (s *service) Route(ctx context.Context, origin, destination models.Coordinate) (*models.RouteResult, error) {
	var r *models.RouteResult
	err := retry.Do(ctx, s.policy, func(ctx context.Context) error {
		var err error
		r, err = s.provider.Route(ctx, origin, destination)
		if err != nil && !apiclient.Transient(err) {
			return retry.Permanent(err)
		}
		return err
	}, func(err error, attempt int, wait time.Duration) {
		s.log.Warn("route provider failed, retrying",
			zap.String("provider", s.provider.Name()),
			zap.Int("attempt", attempt),
			zap.Duration("wait", wait),
			zap.Error(err))
	})
	if err != nil {
		s.log.Warn("route failed",
			zap.String("provider", s.provider.Name()),
			zap.Stringer("origin", origin),
			zap.Stringer("destination", destination),
			zap.String("kind", models.Kind(err)),
			zap.Error(err))
		return nil, err
	}
	return r, nil
}

// RouteWithProfile returns the route with ascent and descent filled in from
// the elevation lookup. An elevation failure leaves them nil and is only
// logged; a cancelled context is still reported.
func (s *service) RouteWithProfile(ctx context.Context, origin, destination models.Coordinate) (*models.RouteResult, error) {
	r, err := s.Route(ctx, origin, destination)
	if err != nil || s.elevation == nil {
		return r, err
	}

	ascent, descent, err := s.elevation.Climb(ctx, r.Coordinates)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return nil, err
		}
		s.log.Warn("elevation lookup failed, continuing without it", zap.Error(err))
		return r, nil
	}

	profiled := *r
	profiled.AscentMeters = &ascent
	profiled.DescentMeters = &descent
	return &profiled, nil
}
