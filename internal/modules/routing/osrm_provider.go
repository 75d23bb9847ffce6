package routing

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"tow-trip-planner/internal/apiclient"
	"tow-trip-planner/internal/models"
)

// OSRMProvider calls the OSRM route service. OSRM reports distance in
// meters, duration in seconds and GeoJSON geometry as [lon, lat] pairs.
type OSRMProvider struct {
	client  *apiclient.Client
	baseURL string
}

func NewOSRMProvider(client *apiclient.Client, baseURL string) *OSRMProvider {
	return &OSRMProvider{client: client, baseURL: strings.TrimRight(baseURL, "/")}
}

func (p *OSRMProvider) Name() string { return "osrm" }

type osrmResponse struct {
	Code    string      `json:"code"`
	Message string      `json:"message"`
	Routes  []osrmRoute `json:"routes"`
}

type osrmRoute struct {
	Distance float64 `json:"distance"`
	Duration float64 `json:"duration"`
	Geometry struct {
		Coordinates [][]float64 `json:"coordinates"`
	} `json:"geometry"`
	Legs []struct {
		Steps []osrmStep `json:"steps"`
	} `json:"legs"`
}

type osrmStep struct {
	Distance      float64 `json:"distance"`
	Intersections []struct {
		Classes []string `json:"classes"`
	} `json:"intersections"`
}

func (p *OSRMProvider) Route(ctx context.Context, origin, destination models.Coordinate) (*models.RouteResult, error) {
	if !origin.Valid() || !destination.Valid() {
		return nil, fmt.Errorf("%w: %s -> %s", models.ErrInvalidLocation, origin, destination)
	}

	url := fmt.Sprintf("%s/route/v1/driving/%f,%f;%f,%f?overview=full&geometries=geojson&steps=true",
		p.baseURL, origin.Lon, origin.Lat, destination.Lon, destination.Lat)

	resp, err := p.client.Do(ctx, "route", http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}

	// OSRM explains 4xx failures in the same JSON envelope.
	var body osrmResponse
	if decodeErr := p.client.Decode(resp, &body); decodeErr != nil {
		if !resp.OK() {
			return nil, p.client.ProviderError(resp)
		}
		return nil, decodeErr
	}

	switch body.Code {
	case "Ok":
	case "NoRoute":
		return nil, fmt.Errorf("%w: %s", models.ErrNoRoute, body.Message)
	case "NoSegment", "InvalidValue", "InvalidQuery":
		return nil, fmt.Errorf("%w: %s", models.ErrInvalidLocation, body.Message)
	default:
		return nil, &models.ProviderError{Provider: p.Name(), Status: resp.StatusCode, Message: body.Code + ": " + body.Message}
	}
	if !resp.OK() {
		return nil, p.client.ProviderError(resp)
	}
	if len(body.Routes) == 0 {
		return nil, fmt.Errorf("%w: provider returned no routes", models.ErrNoRoute)
	}

	r := body.Routes[0]
	coords := make([]models.Coordinate, 0, len(r.Geometry.Coordinates))
	for _, pair := range r.Geometry.Coordinates {
		if len(pair) < 2 {
			return nil, &models.ProviderError{Provider: p.Name(), Status: resp.StatusCode, Message: "malformed response: short coordinate"}
		}
		coords = append(coords, models.Coordinate{Lat: pair[1], Lon: pair[0]})
	}

	return &models.RouteResult{
		Coordinates:     coords,
		DistanceMiles:   r.Distance / models.MetersPerMile,
		DurationHours:   r.Duration / models.SecondsPerHour,
		HighwayFraction: highwayFraction(r),
		Provider:        p.Name(),
	}, nil
}

// highwayFraction is the share of step distance on steps that cross a
// motorway intersection. Nil when the route carries no steps.
func highwayFraction(r osrmRoute) *float64 {
	var total, motorway float64
	for _, leg := range r.Legs {
		for _, step := range leg.Steps {
			total += step.Distance
			if isMotorway(step) {
				motorway += step.Distance
			}
		}
	}
	if total <= 0 {
		return nil
	}
	f := motorway / total
	return &f
}

func isMotorway(step osrmStep) bool {
	for _, in := range step.Intersections {
		for _, class := range in.Classes {
			if class == "motorway" {
				return true
			}
		}
	}
	return false
}
