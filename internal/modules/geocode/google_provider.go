package geocode

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

// GoogleProvider geocodes through the Google Geocoding API.
type GoogleProvider struct {
	client  *maps.Client
	country string
	timeout time.Duration
}

func NewGoogleProvider(client *maps.Client, country string, timeout time.Duration) *GoogleProvider {
	return &GoogleProvider{client: client, country: country, timeout: timeout}
}

func (p *GoogleProvider) Name() string { return "google" }

func (p *GoogleProvider) Search(ctx context.Context, query string, limit int) ([]models.Place, error) {
	req := &maps.GeocodingRequest{Address: query}
	if p.country != "" {
		req.Region = p.country
		req.Components = map[maps.Component]string{maps.ComponentCountry: strings.ToUpper(p.country)}
	}

	results, err := p.call(ctx, "search", func(ctx context.Context) ([]maps.GeocodingResult, error) {
		return p.client.Geocode(ctx, req)
	})
	if err != nil {
		return nil, err
	}

	places := make([]models.Place, 0, len(results))
	for _, r := range results {
		if limit > 0 && len(places) == limit {
			break
		}
		places = append(places, toPlace(r))
	}
	return places, nil
}

func (p *GoogleProvider) Reverse(ctx context.Context, c models.Coordinate) (models.Place, error) {
	req := &maps.GeocodingRequest{LatLng: &maps.LatLng{Lat: c.Lat, Lng: c.Lon}}
	results, err := p.call(ctx, "reverse", func(ctx context.Context) ([]maps.GeocodingResult, error) {
		return p.client.ReverseGeocode(ctx, req)
	})
	if err != nil {
		return models.Place{}, err
	}
	if len(results) == 0 {
		return models.Place{}, fmt.Errorf("%w: no address at %s", models.ErrGeocodeNotFound, c)
	}
	return toPlace(results[0]), nil
}

func (p *GoogleProvider) call(ctx context.Context, operation string, fn func(context.Context) ([]maps.GeocodingResult, error)) ([]maps.GeocodingResult, error) {
	if p.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.timeout)
		defer cancel()
	}

	start := time.Now()
	results, err := fn(ctx)
	if err != nil {
		err = mapsError(ctx, p.Name(), err)
		telemetry.ObserveProviderRequest(p.Name(), operation, models.Kind(err), time.Since(start))
		return nil, err
	}
	telemetry.ObserveProviderRequest(p.Name(), operation, "ok", time.Since(start))
	return results, nil
}

func toPlace(r maps.GeocodingResult) models.Place {
	return models.Place{
		DisplayName: r.FormattedAddress,
		Coordinate:  models.Coordinate{Lat: r.Geometry.Location.Lat, Lon: r.Geometry.Location.Lng},
	}
}

// mapsError classifies an error from the maps client. Status errors look
// like "maps: OVER_QUERY_LIMIT - message".
func mapsError(ctx context.Context, provider string, err error) error {
	if errors.Is(err, context.Canceled) {
		return err
	}
	var netErr net.Error
	if errors.Is(err, context.DeadlineExceeded) || ctx.Err() == context.DeadlineExceeded ||
		(errors.As(err, &netErr) && netErr.Timeout()) {
		return fmt.Errorf("%w: %s: %v", models.ErrTimeout, provider, err)
	}
	if errors.As(err, &netErr) {
		return fmt.Errorf("%w: %s: %v", models.ErrNetwork, provider, err)
	}
	msg := strings.TrimPrefix(err.Error(), "maps: ")
	if strings.HasPrefix(msg, "NOT_FOUND") {
		return fmt.Errorf("%w: %s", models.ErrGeocodeNotFound, msg)
	}
	return &models.ProviderError{Provider: provider, Message: msg}
}
