// Package app wires the providers and services from configuration. It is
// shared by the HTTP server and the plan-trip command.
package app

import (
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
	"googlemaps.github.io/maps"

	"tow-trip-planner/internal/apiclient"
	"tow-trip-planner/internal/config"
	"tow-trip-planner/internal/logger"
	"tow-trip-planner/internal/modules/fillup"
	"tow-trip-planner/internal/modules/fuel"
	"tow-trip-planner/internal/modules/geocode"
	"tow-trip-planner/internal/modules/mpg"
	"tow-trip-planner/internal/modules/routing"
	"tow-trip-planner/internal/modules/trip"
)

const (
	ProviderNominatim = "nominatim"
	ProviderOSRM      = "osrm"
	ProviderGoogle    = "google"
)

type Services struct {
	Geocode geocode.ServiceInterface
	Route   routing.ServiceInterface
	Fuel    fuel.ServiceInterface
	Trip    trip.ServiceInterface
	FillUp  fillup.ServiceInterface
}

// Build creates every service from cfg.
func Build(cfg *config.Config, log *zap.Logger) (*Services, error) {
	return BuildWithClient(cfg, log, nil)
}

// BuildWithClient is Build with the HTTP client used for every outbound
// call, so tests can stub the network.
func BuildWithClient(cfg *config.Config, log *zap.Logger, httpClient *http.Client) (*Services, error) {
	log = logger.OrNop(log)
	client := func(provider, userAgent string) *apiclient.Client {
		return apiclient.New(apiclient.Options{
			Provider:   provider,
			HTTPClient: httpClient,
			Timeout:    cfg.Providers.Timeout,
			UserAgent:  userAgent,
			RelayURL:   cfg.Relay.URL,
			RelayKey:   cfg.Relay.Key,
		})
	}

	var gmaps *maps.Client
	googleClient := func() (*maps.Client, error) {
		if gmaps != nil {
			return gmaps, nil
		}
		if cfg.Providers.GoogleMapsAPIKey == "" {
			return nil, fmt.Errorf("google provider selected but GOOGLE_MAPS_API_KEY is empty")
		}
		opts := []maps.ClientOption{maps.WithAPIKey(cfg.Providers.GoogleMapsAPIKey)}
		if httpClient != nil {
			opts = append(opts, maps.WithHTTPClient(httpClient))
		}
		c, err := maps.NewClient(opts...)
		if err != nil {
			return nil, fmt.Errorf("google maps client: %w", err)
		}
		gmaps = c
		return c, nil
	}

	var geoProvider geocode.Provider
	switch cfg.Geocode.Provider {
	case ProviderNominatim:
		geoProvider = geocode.NewNominatimProvider(client(ProviderNominatim, cfg.Geocode.UserAgent), cfg.Geocode.BaseURL, cfg.Geocode.Country)
	case ProviderGoogle:
		c, err := googleClient()
		if err != nil {
			return nil, err
		}
		geoProvider = geocode.NewGoogleProvider(c, cfg.Geocode.Country, cfg.Providers.Timeout)
	default:
		return nil, fmt.Errorf("unknown geocode provider %q", cfg.Geocode.Provider)
	}

	var routeProvider routing.Provider
	switch cfg.Routing.Provider {
	case ProviderOSRM:
		routeProvider = routing.NewOSRMProvider(client(ProviderOSRM, cfg.Geocode.UserAgent), cfg.Routing.BaseURL)
	case ProviderGoogle:
		c, err := googleClient()
		if err != nil {
			return nil, err
		}
		routeProvider = routing.NewGoogleProvider(c, cfg.Providers.Timeout)
	default:
		return nil, fmt.Errorf("unknown route provider %q", cfg.Routing.Provider)
	}

	// A nil *ElevationClient must not end up inside the Climber interface.
	var climber routing.Climber
	if cfg.Routing.ElevationBaseURL != "" {
		climber = routing.NewElevationClient(client("elevation", cfg.Geocode.UserAgent), cfg.Routing.ElevationBaseURL)
	}

	geoSvc := geocode.NewService(geoProvider, geocode.Options{
		CacheTTL:    cfg.Geocode.CacheTTL,
		MinInterval: cfg.Geocode.MinInterval,
		MaxRetries:  cfg.Geocode.MaxRetries,
		RetryDelay:  cfg.Geocode.RetryDelay,
		Logger:      log.Named("geocode"),
	})
	routeSvc := routing.NewService(routeProvider, climber, routing.Options{
		MaxRetries: cfg.Routing.MaxRetries,
		RetryDelay: cfg.Routing.RetryDelay,
		Logger:     log.Named("routing"),
	})
	fuelSvc := fuel.NewService(client("eia", ""), fuel.Options{
		APIKey:   cfg.Fuel.EIAAPIKey,
		BaseURL:  cfg.Fuel.EIABaseURL,
		PriceTTL: cfg.Fuel.PriceTTL,
		Logger:   log.Named("fuel"),
	})
	tripSvc := trip.NewService(geoSvc, routeSvc, fuelSvc, trip.NewRepository(), trip.Options{
		RouteAwareMPG: cfg.Routing.RouteAwareMPG,
		Logger:        log.Named("trip"),
	})

	fillUpSvc := fillup.NewService(fillup.NewRepository(), fillup.Options{
		Logger: log.Named("fillup"),
	})

	return &Services{Geocode: geoSvc, Route: routeSvc, Fuel: fuelSvc, Trip: tripSvc, FillUp: fillUpSvc}, nil
}

// RegisterRoutes mounts every module's handler on g.
func (s *Services) RegisterRoutes(g *echo.Group) {
	geocode.NewHandler(s.Geocode).RegisterRoutes(g)
	routing.NewHandler(s.Route).RegisterRoutes(g)
	fuel.NewHandler(s.Fuel).RegisterRoutes(g)
	mpg.NewHandler().RegisterRoutes(g)
	trip.NewHandler(s.Trip).RegisterRoutes(g)
	fillup.NewHandler(s.FillUp).RegisterRoutes(g)
}
