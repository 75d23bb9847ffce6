package routing

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"
	"time"

	"googlemaps.github.io/maps"

	"tow-trip-planner/internal/models"
	"tow-trip-planner/internal/telemetry"
)

// GoogleProvider calls the Google Directions API. The maps client reports
// leg distance in meters and leg duration as a time.Duration.
type GoogleProvider struct {
	client  *maps.Client
	timeout time.Duration
}

func NewGoogleProvider(client *maps.Client, timeout time.Duration) *GoogleProvider {
	return &GoogleProvider{client: client, timeout: timeout}
}

func (p *GoogleProvider) Name() string { return "google" }

func (p *GoogleProvider) Route(ctx context.Context, origin, destination models.Coordinate) (*models.RouteResult, error) {
	if !origin.Valid() || !destination.Valid() {
		return nil, fmt.Errorf("%w: %s -> %s", models.ErrInvalidLocation, origin, destination)
	}
	if p.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.timeout)
		defer cancel()
	}

	start := time.Now()
	routes, _, err := p.client.Directions(ctx, &maps.DirectionsRequest{
		Origin:      origin.String(),
		Destination: destination.String(),
		Mode:        maps.TravelModeDriving,
	})
	if err != nil {
		err = p.classify(ctx, err)
		telemetry.ObserveProviderRequest(p.Name(), "route", models.Kind(err), time.Since(start))
		return nil, err
	}
	telemetry.ObserveProviderRequest(p.Name(), "route", "ok", time.Since(start))

	// ZERO_RESULTS comes back as an empty slice.
	if len(routes) == 0 {
		return nil, fmt.Errorf("%w: %s -> %s", models.ErrNoRoute, origin, destination)
	}

	r := routes[0]
	var meters int
	var duration time.Duration
	for _, leg := range r.Legs {
		meters += leg.Distance.Meters
		duration += leg.Duration
	}

	path, err := r.OverviewPolyline.Decode()
	if err != nil {
		return nil, &models.ProviderError{Provider: p.Name(), Message: "malformed response: " + err.Error()}
	}
	coords := make([]models.Coordinate, len(path))
	for i, ll := range path {
		coords[i] = models.Coordinate{Lat: ll.Lat, Lon: ll.Lng}
	}

	return &models.RouteResult{
		Coordinates:   coords,
		DistanceMiles: float64(meters) / models.MetersPerMile,
		DurationHours: duration.Hours(),
		Provider:      p.Name(),
	}, nil
}

func (p *GoogleProvider) classify(ctx context.Context, err error) error {
	if errors.Is(err, context.Canceled) {
		return err
	}
	var netErr net.Error
	if errors.Is(err, context.DeadlineExceeded) || ctx.Err() == context.DeadlineExceeded ||
		(errors.As(err, &netErr) && netErr.Timeout()) {
		return fmt.Errorf("%w: %s: %v", models.ErrTimeout, p.Name(), err)
	}
	if errors.As(err, &netErr) {
		return fmt.Errorf("%w: %s: %v", models.ErrNetwork, p.Name(), err)
	}

	msg := strings.TrimPrefix(err.Error(), "maps: ")
	switch {
	case strings.HasPrefix(msg, "ZERO_RESULTS"):
		return fmt.Errorf("%w: %s", models.ErrNoRoute, msg)
	case strings.HasPrefix(msg, "NOT_FOUND"):
		return fmt.Errorf("%w: %s", models.ErrInvalidLocation, msg)
	}
	return &models.ProviderError{Provider: p.Name(), Message: msg}
}
