package geocode

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
	"golang.org/x/time/rate"

	"tow-trip-planner/internal/apiclient"
	"tow-trip-planner/internal/logger"
	"tow-trip-planner/internal/models"
	"tow-trip-planner/internal/telemetry"
	"tow-trip-planner/pkg/retry"
)

const (
	DefaultCacheTTL    = 24 * time.Hour
	DefaultSuggestions = 5
	maxSuggestions     = 10
)

// ServiceInterface is what the trip planner and the HTTP handler need.
type ServiceInterface interface {
	Geocode(ctx context.Context, placeText string) (models.Coordinate, error)
	Suggest(ctx context.Context, text string, limit int) ([]models.Place, error)
	Reverse(ctx context.Context, c models.Coordinate) (models.Place, error)
}

type Options struct {
	CacheTTL    time.Duration
	MinInterval time.Duration
	MaxRetries  int
	RetryDelay  time.Duration
	// Now replaces time.Now for cache expiry.
	Now    func() time.Time
	Logger *zap.Logger
}

// service resolves place text through a Provider. One service owns one
// cache and one rate limiter; every caller shares both.
type service struct {
	provider    Provider
	coords      *ttlCache[models.Coordinate]
	suggestions *ttlCache[[]models.Place]
	inflight    singleflight.Group
	limiter     *rate.Limiter
	policy      retry.Policy
	log         *zap.Logger
}

func NewService(provider Provider, opts Options) ServiceInterface {
	if opts.CacheTTL <= 0 {
		opts.CacheTTL = DefaultCacheTTL
	}
	if opts.MaxRetries < 0 {
		opts.MaxRetries = 0
	}

	limit := rate.Inf
	if opts.MinInterval > 0 {
		limit = rate.Every(opts.MinInterval)
	}

	return &service{
		provider:    provider,
		coords:      newTTLCache[models.Coordinate](opts.CacheTTL, opts.Now),
		suggestions: newTTLCache[[]models.Place](opts.CacheTTL, opts.Now),
		limiter:     rate.NewLimiter(limit, 1),
		policy:      retry.Policy{MaxRetries: opts.MaxRetries, Delay: retry.Linear(opts.RetryDelay)},
		log:         logger.OrNop(opts.Logger),
	}
}

// Geocode returns the coordinates of the best match for placeText.
// ErrGeocodeNotFound covers both "no match" and "provider kept failing".
func (s *service) Geocode(ctx context.Context, placeText string) (models.Coordinate, error) {
	text := strings.TrimSpace(placeText)
	if text == "" {
		return models.Coordinate{}, fmt.Errorf("%w: place text is empty", models.ErrInvalidInput)
	}

	key := NormalizeKey(text)
	if c, ok := s.coords.get(key); ok {
		telemetry.GeocodeCacheHit()
		return c, nil
	}
	telemetry.GeocodeCacheMiss()

	// Callers asking for the same key share one lookup. The lookup runs
	// detached so one caller giving up does not fail the others.
	ch := s.inflight.DoChan(key, func() (any, error) {
		if c, ok := s.coords.get(key); ok {
			return c, nil
		}
		places, err := s.search(context.WithoutCancel(ctx), "geocode", text, 1)
		if err != nil {
			return models.Coordinate{}, err
		}
		if len(places) == 0 {
			return models.Coordinate{}, fmt.Errorf("%w: %q", models.ErrGeocodeNotFound, text)
		}
		c := places[0].Coordinate
		s.coords.put(key, c)
		s.log.Debug("geocoded", zap.String("query", text), zap.Stringer("coordinate", c))
		return c, nil
	})

	select {
	case <-ctx.Done():
		return models.Coordinate{}, ctx.Err()
	case res := <-ch:
		if res.Shared {
			s.log.Debug("geocode lookup shared", zap.String("query", text))
		}
		if res.Err != nil {
			return models.Coordinate{}, res.Err
		}
		return res.Val.(models.Coordinate), nil
	}
}

// Suggest returns up to limit distinct places for autocomplete. Empty input
// yields no suggestions.
func (s *service) Suggest(ctx context.Context, text string, limit int) ([]models.Place, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return []models.Place{}, nil
	}
	if limit <= 0 {
		limit = DefaultSuggestions
	}
	if limit > maxSuggestions {
		limit = maxSuggestions
	}

	key := fmt.Sprintf("%d|%s", limit, NormalizeKey(text))
	if cached, ok := s.suggestions.get(key); ok {
		telemetry.GeocodeCacheHit()
		return cached, nil
	}
	telemetry.GeocodeCacheMiss()

	places, err := s.search(ctx, "suggest", text, limit)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]struct{}, len(places))
	unique := make([]models.Place, 0, len(places))
	for _, p := range places {
		if _, dup := seen[p.DisplayName]; dup {
			continue
		}
		seen[p.DisplayName] = struct{}{}
		unique = append(unique, p)
	}

	s.suggestions.put(key, unique)
	return unique, nil
}

// Reverse resolves coordinates to a display address.
func (s *service) Reverse(ctx context.Context, c models.Coordinate) (models.Place, error) {
	if !c.Valid() {
		return models.Place{}, fmt.Errorf("%w: coordinate %s out of range", models.ErrInvalidInput, c)
	}

	var place models.Place
	err := s.withRetry(ctx, "reverse", func(ctx context.Context) error {
		var err error
		place, err = s.provider.Reverse(ctx, c)
		return err
	})
	if err != nil {
		return models.Place{}, s.exhausted(err, c.String())
	}
	return place, nil
}

func (s *service) search(ctx context.Context, operation, text string, limit int) ([]models.Place, error) {
	var places []models.Place
	err := s.withRetry(ctx, operation, func(ctx context.Context) error {
		var err error
		places, err = s.provider.Search(ctx, text, limit)
		return err
	})
	if err != nil {
		return nil, s.exhausted(err, text)
	}
	return places, nil
}

// withRetry waits for the rate limiter before every attempt and retries
// transient failures with linear backoff.
func (s *service) withRetry(ctx context.Context, operation string, op func(ctx context.Context) error) error {
	return retry.Do(ctx, s.policy, func(ctx context.Context) error {
		if err := s.limiter.Wait(ctx); err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return retry.Permanent(ctxErr)
			}
			return retry.Permanent(fmt.Errorf("%w: geocode rate limit: %v", models.ErrTimeout, err))
		}
		err := op(ctx)
		if err != nil && !apiclient.Transient(err) {
			return retry.Permanent(err)
		}
		return err
	}, func(err error, attempt int, wait time.Duration) {
		s.log.Warn("geocode provider failed, retrying",
			zap.String("provider", s.provider.Name()),
			zap.String("operation", operation),
			zap.Int("attempt", attempt),
			zap.Duration("wait", wait),
			zap.Error(err))
	})
}

// exhausted turns a transient failure that outlived its retries into
// ErrGeocodeNotFound. Other errors pass through unchanged.
func (s *service) exhausted(err error, query string) error {
	if apiclient.Transient(err) {
		s.log.Error("geocode provider unavailable", zap.String("query", query), zap.Error(err))
		return fmt.Errorf("%w: %q: %w", models.ErrGeocodeNotFound, query, err)
	}
	return err
}
