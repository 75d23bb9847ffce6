package trip

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"tow-trip-planner/internal/logger"
	"tow-trip-planner/internal/models"
	"tow-trip-planner/internal/modules/fuel"
	"tow-trip-planner/internal/modules/geocode"
	"tow-trip-planner/internal/modules/mpg"
	"tow-trip-planner/internal/modules/routing"
	"tow-trip-planner/internal/telemetry"
)

// FallbackSpeedMPH estimates driving time for trips without a route duration.
const FallbackSpeedMPH = 65.0

// ServiceInterface is the trip planner as seen by the HTTP handler and the CLI.
type ServiceInterface interface {
	Plan(ctx context.Context, req models.PlanRequest) (*models.TripPlan, error)
	PlanTrip(ctx context.Context, req models.PlanRequest) (*models.TripEstimate, error)
	PlanForSession(ctx context.Context, sessionID string, req models.PlanRequest) (*models.TripPlan, error)
	ConfirmTrip(ctx context.Context, req models.ConfirmTripRequest) (*models.Trip, error)
	ListTrips(ctx context.Context, sortBy string, desc bool) ([]*models.Trip, error)
	GetTrip(ctx context.Context, id string) (*models.Trip, error)
	Statistics(ctx context.Context) (*models.TripStatistics, error)
}

type Options struct {
	// RouteAwareMPG is used when a request does not set UseRouteHints.
	RouteAwareMPG bool
	Now           func() time.Time
	NewID         func() string
	Logger        *zap.Logger
}

type service struct {
	geocoder geocode.ServiceInterface
	router   routing.ServiceInterface
	fuel     fuel.ServiceInterface
	repo     RepositoryInterface
	sessions *sessions

	routeAware bool
	now        func() time.Time
	newID      func() string
	log        *zap.Logger
}

func NewService(geocoder geocode.ServiceInterface, router routing.ServiceInterface, prices fuel.ServiceInterface, repo RepositoryInterface, opts Options) ServiceInterface {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.NewID == nil {
		opts.NewID = uuid.NewString
	}
	return &service{
		geocoder:   geocoder,
		router:     router,
		fuel:       prices,
		repo:       repo,
		sessions:   newSessions(opts.Now),
		routeAware: opts.RouteAwareMPG,
		now:        opts.Now,
		newID:      opts.NewID,
		log:        logger.OrNop(opts.Logger),
	}
}

// Plan runs geocode, route, MPG and fuel price and returns a complete plan
// or a *models.PlanError naming the failed step.
func (s *service) Plan(ctx context.Context, req models.PlanRequest) (*models.TripPlan, error) {
	plan, err := s.plan(ctx, req)
	if err != nil {
		var perr *models.PlanError
		if errors.As(err, &perr) {
			telemetry.TripPlan(perr.Step + "_" + models.Kind(perr.Err))
		} else {
			telemetry.TripPlan(models.Kind(err))
		}
		s.log.Info("trip plan failed",
			zap.String("origin", req.Origin),
			zap.String("destination", req.Destination),
			zap.Error(err))
		return nil, err
	}
	telemetry.TripPlan("ok")
	return plan, nil
}

func (s *service) plan(ctx context.Context, req models.PlanRequest) (*models.TripPlan, error) {
	origin := strings.TrimSpace(req.Origin)
	destination := strings.TrimSpace(req.Destination)
	if origin == "" || destination == "" {
		return nil, &models.PlanError{Step: models.StepValidate, Err: fmt.Errorf("%w: origin and destination are required", models.ErrInvalidInput)}
	}
	if o := req.FuelPriceOverride; o != nil && (*o <= 0 || math.IsNaN(*o) || math.IsInf(*o, 0)) {
		return nil, fmt.Errorf("%w: fuel price override must be positive", models.ErrInvalidInput)
	}
	if _, err := mpg.Estimate(req.Vehicle, nil); err != nil {
		return nil, &models.PlanError{Step: models.StepVehicle, Err: err}
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	// The price does not depend on the route, so fetch it alongside.
	var prices <-chan models.FuelPriceQuote
	if req.FuelPriceOverride == nil {
		ch := make(chan models.FuelPriceQuote, 1)
		go func() { ch <- s.fuel.CurrentPrice(ctx, req.Vehicle.FuelType) }()
		prices = ch
	}

	var from, to models.Coordinate
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		c, err := s.geocoder.Geocode(gctx, origin)
		if err != nil {
			return &models.PlanError{Step: models.StepGeocode, Field: "origin", Err: err}
		}
		from = c
		return nil
	})
	g.Go(func() error {
		c, err := s.geocoder.Geocode(gctx, destination)
		if err != nil {
			return &models.PlanError{Step: models.StepGeocode, Field: "destination", Err: err}
		}
		to = c
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	useHints := s.routeAware
	if req.UseRouteHints != nil {
		useHints = *req.UseRouteHints
	}

	var route *models.RouteResult
	var err error
	if useHints {
		route, err = s.router.RouteWithProfile(ctx, from, to)
	} else {
		route, err = s.router.Route(ctx, from, to)
	}
	if err != nil {
		return nil, &models.PlanError{Step: models.StepRoute, Err: err}
	}

	var hint *models.RouteHint
	if useHints {
		hint = routeHint(route, req.IsRoundTrip)
	}
	estimatedMPG, err := mpg.Estimate(req.Vehicle, hint)
	if err != nil {
		return nil, &models.PlanError{Step: models.StepVehicle, Err: err}
	}

	var quote models.FuelPriceQuote
	if req.FuelPriceOverride != nil {
		quote = models.FuelPriceQuote{FuelType: req.Vehicle.FuelType, PricePerGallon: *req.FuelPriceOverride, Source: models.PriceSourceOverride}
	} else {
		select {
		case quote = <-prices:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	return &models.TripPlan{
		Origin:            origin,
		Destination:       destination,
		OriginCoord:       from,
		DestinationCoord:  to,
		Vehicle:           req.Vehicle,
		Route:             route,
		Estimate:          Estimate(route.DistanceMiles, route.DurationHours, req.IsRoundTrip, estimatedMPG, quote),
		RouteHintsApplied: hint != nil,
		PlannedAt:         s.now(),
	}, nil
}

// routeHint builds the MPG refinement from what the route carries. Nil when
// the route has neither elevation nor road class data. A round trip climbs
// the outbound ascent and, on the way back, the outbound descent.
func routeHint(r *models.RouteResult, roundTrip bool) *models.RouteHint {
	if r.AscentMeters == nil && r.HighwayFraction == nil {
		return nil
	}
	hint := &models.RouteHint{}
	if r.AscentMeters != nil {
		hint.AscentMeters = *r.AscentMeters
		if roundTrip && r.DescentMeters != nil {
			hint.AscentMeters += *r.DescentMeters
		}
	}
	if r.HighwayFraction != nil {
		hint.HighwayFraction = *r.HighwayFraction
	}
	return hint
}

// Estimate derives the trip figures from a one way route. Round trips
// double distance and duration. Divisions by zero yield 0.
func Estimate(oneWayMiles, oneWayHours float64, roundTrip bool, mpgValue float64, quote models.FuelPriceQuote) models.TripEstimate {
	legs := 1.0
	if roundTrip {
		legs = 2
	}
	distance := finite(oneWayMiles) * legs

	var gallons float64
	if mpgValue > 0 {
		gallons = distance / mpgValue
	}
	cost := gallons * finite(quote.PricePerGallon)

	var costPerMile float64
	if distance > 0 {
		costPerMile = cost / distance
	}

	return models.TripEstimate{
		DistanceMiles:  distance,
		OneWayMiles:    finite(oneWayMiles),
		DurationHours:  finite(oneWayHours) * legs,
		EstimatedMPG:   mpgValue,
		FuelGallons:    finite(gallons),
		FuelCost:       finite(cost),
		CostPerMile:    finite(costPerMile),
		PricePerGallon: quote.PricePerGallon,
		PriceSource:    quote.Source,
		IsRoundTrip:    roundTrip,
	}
}

func finite(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}

func (s *service) PlanTrip(ctx context.Context, req models.PlanRequest) (*models.TripEstimate, error) {
	plan, err := s.Plan(ctx, req)
	if err != nil {
		return nil, err
	}
	return &plan.Estimate, nil
}

// PlanForSession plans on behalf of a UI session. A newer request from the
// same session cancels this one, and a result that is no longer the newest
// is discarded with ErrStaleRequest.
func (s *service) PlanForSession(ctx context.Context, sessionID string, req models.PlanRequest) (*models.TripPlan, error) {
	if sessionID == "" {
		return s.Plan(ctx, req)
	}

	token, ctx, release := s.sessions.begin(ctx, sessionID)
	defer release()

	plan, err := s.Plan(ctx, req)
	if !s.sessions.latest(sessionID, token) {
		s.log.Debug("discarding superseded plan", zap.String("session", sessionID), zap.Uint64("token", token))
		return nil, models.ErrStaleRequest
	}
	if err != nil {
		return nil, err
	}
	if !s.sessions.commit(sessionID, token, plan) {
		return nil, models.ErrStaleRequest
	}
	return plan, nil
}

// ConfirmTrip turns the session's latest plan into a Trip and appends it to
// the log. A plan can be confirmed once.
func (s *service) ConfirmTrip(ctx context.Context, req models.ConfirmTripRequest) (*models.Trip, error) {
	plan, token := s.sessions.take(req.SessionID)
	if plan == nil {
		return nil, fmt.Errorf("%w: session %q", models.ErrNoPlan, req.SessionID)
	}

	now := s.now()
	date := now
	if req.Date != nil && !req.Date.IsZero() {
		date = *req.Date
	}

	e := plan.Estimate
	t := &models.Trip{
		ID:            s.newID(),
		Date:          date,
		Origin:        plan.Origin,
		Destination:   plan.Destination,
		DistanceMiles: e.DistanceMiles,
		FuelGallons:   e.FuelGallons,
		FuelCost:      e.FuelCost,
		MPG:           e.EstimatedMPG,
		CostPerMile:   e.CostPerMile,
		FuelPrice:     e.PricePerGallon,
		PriceSource:   e.PriceSource,
		IsRoundTrip:   e.IsRoundTrip,
		Vehicle:       plan.Vehicle,
		Notes:         strings.TrimSpace(req.Notes),
		CreatedAt:     now,
	}
	if plan.Route != nil {
		t.Route = &models.TripRoute{
			Coordinates:   append([]models.Coordinate(nil), plan.Route.Coordinates...),
			DistanceMiles: plan.Route.DistanceMiles,
			DurationHours: plan.Route.DurationHours,
			Origin:        plan.OriginCoord,
			Destination:   plan.DestinationCoord,
		}
	}

	if err := s.repo.Create(ctx, t); err != nil {
		s.sessions.restore(req.SessionID, token, plan)
		return nil, fmt.Errorf("confirm trip: %w", err)
	}
	s.log.Info("trip confirmed", zap.String("trip_id", t.ID), zap.Float64("miles", t.DistanceMiles))
	return t, nil
}

func (s *service) ListTrips(ctx context.Context, sortBy string, desc bool) ([]*models.Trip, error) {
	return s.repo.List(ctx, sortBy, desc)
}

func (s *service) GetTrip(ctx context.Context, id string) (*models.Trip, error) {
	return s.repo.FindByID(ctx, id)
}

// Statistics totals the trip log. Averages are weighted by distance.
func (s *service) Statistics(ctx context.Context) (*models.TripStatistics, error) {
	trips, err := s.repo.List(ctx, models.SortByDate, false)
	if err != nil {
		return nil, err
	}

	stats := &models.TripStatistics{TripCount: len(trips)}
	for _, t := range trips {
		stats.TotalMiles += t.DistanceMiles
		stats.TotalFuelCost += t.FuelCost
		stats.TotalFuelGallons += t.FuelGallons
		stats.TotalHours += tripHours(t)
	}
	if stats.TotalFuelGallons > 0 {
		stats.AverageMPG = stats.TotalMiles / stats.TotalFuelGallons
	}
	if stats.TotalMiles > 0 {
		stats.AverageCostPerMile = stats.TotalFuelCost / stats.TotalMiles
	}
	return stats, nil
}

// tripHours is the routed driving time, or distance at FallbackSpeedMPH.
func tripHours(t *models.Trip) float64 {
	if t.Route != nil && t.Route.DurationHours > 0 {
		if t.IsRoundTrip {
			return t.Route.DurationHours * 2
		}
		return t.Route.DurationHours
	}
	return t.DistanceMiles / FallbackSpeedMPH
}
