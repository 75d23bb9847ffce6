package fillup

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"tow-trip-planner/internal/logger"
	"tow-trip-planner/internal/models"
	"tow-trip-planner/internal/telemetry"
)

// ServiceInterface is the fill-up log as the HTTP handler sees it.
type ServiceInterface interface {
	AddFillUp(ctx context.Context, req models.AddFillUpRequest) (*models.FillUp, error)
	ListFillUps(ctx context.Context) ([]*models.FillUp, error)
	GetFillUp(ctx context.Context, id string) (*models.FillUp, error)
	Statistics(ctx context.Context) (*models.FillUpStatistics, error)
}

type Options struct {
	Now    func() time.Time
	NewID  func() string
	Logger *zap.Logger
}

type service struct {
	repo  RepositoryInterface
	now   func() time.Time
	newID func() string
	log   *zap.Logger
}

func NewService(repo RepositoryInterface, opts Options) ServiceInterface {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.NewID == nil {
		opts.NewID = uuid.NewString
	}
	return &service{
		repo:  repo,
		now:   opts.Now,
		newID: opts.NewID,
		log:   logger.OrNop(opts.Logger),
	}
}

// AddFillUp records a fill-up. Miles and MPG are measured from the previous
// entry; the odometer may not go backwards.
func (s *service) AddFillUp(ctx context.Context, req models.AddFillUpRequest) (*models.FillUp, error) {
	for name, v := range map[string]float64{
		"odometer":         req.Odometer,
		"gallons":          req.Gallons,
		"price per gallon": req.PricePerGallon,
	} {
		if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
			return nil, fmt.Errorf("%w: %s must be a non-negative number", models.ErrInvalidInput, name)
		}
	}

	now := s.now()
	date := now
	if req.Date != nil && !req.Date.IsZero() {
		date = *req.Date
	}

	f, err := s.repo.Append(ctx, func(last *models.FillUp) (*models.FillUp, error) {
		f := &models.FillUp{
			ID:             s.newID(),
			Date:           date,
			Odometer:       req.Odometer,
			Gallons:        req.Gallons,
			PricePerGallon: req.PricePerGallon,
			TotalCost:      req.Gallons * req.PricePerGallon,
			Notes:          strings.TrimSpace(req.Notes),
			CreatedAt:      now,
		}
		if last != nil {
			if req.Odometer < last.Odometer {
				return nil, fmt.Errorf("%w: odometer %.1f is below the previous fill-up at %.1f",
					models.ErrInvalidInput, req.Odometer, last.Odometer)
			}
			f.MilesDriven = req.Odometer - last.Odometer
		}
		f.MPG = milesPerGallon(f.MilesDriven, f.Gallons)
		return f, nil
	})
	if err != nil {
		return nil, err
	}

	telemetry.FillUpRecorded()
	s.log.Info("fill-up recorded",
		zap.String("fill_up_id", f.ID),
		zap.Float64("miles", f.MilesDriven),
		zap.Float64("mpg", f.MPG))
	return f, nil
}

func (s *service) ListFillUps(ctx context.Context) ([]*models.FillUp, error) {
	return s.repo.List(ctx)
}

func (s *service) GetFillUp(ctx context.Context, id string) (*models.FillUp, error) {
	f, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("fill-up %q: %w", id, err)
	}
	return f, nil
}

// Statistics sums the log. Total miles span the first and the latest
// odometer reading.
func (s *service) Statistics(ctx context.Context) (*models.FillUpStatistics, error) {
	entries, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}

	stats := &models.FillUpStatistics{FillUpCount: len(entries)}
	if len(entries) == 0 {
		return stats, nil
	}

	var mpgSum float64
	measured := 0
	for _, f := range entries {
		stats.TotalGallons += f.Gallons
		stats.TotalCost += f.TotalCost
		if f.MPG > 0 {
			mpgSum += f.MPG
			measured++
		}
	}
	if measured > 0 {
		stats.AverageMPG = mpgSum / float64(measured)
	}
	stats.TotalMiles = entries[len(entries)-1].Odometer - entries[0].Odometer
	if stats.TotalMiles > 0 {
		stats.CostPerMile = stats.TotalCost / stats.TotalMiles
	}
	return stats, nil
}

// milesPerGallon is zero when either side is zero.
func milesPerGallon(miles, gallons float64) float64 {
	if miles <= 0 || gallons <= 0 {
		return 0
	}
	return miles / gallons
}
