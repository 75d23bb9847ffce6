package routing

import (
	"context"
	"fmt"
	"strings"

	"tow-trip-planner/internal/apiclient"
	"tow-trip-planner/internal/models"
)

// MaxElevationSamples caps the points sent in one lookup.
const MaxElevationSamples = 100

// ElevationClient looks up terrain height along a route through an
// open-elevation compatible API.
type ElevationClient struct {
	client  *apiclient.Client
	baseURL string
}

func NewElevationClient(client *apiclient.Client, baseURL string) *ElevationClient {
	return &ElevationClient{client: client, baseURL: strings.TrimRight(baseURL, "/")}
}

type elevationLocation struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

type elevationRequest struct {
	Locations []elevationLocation `json:"locations"`
}

type elevationResponse struct {
	Results []struct {
		Elevation float64 `json:"elevation"`
	} `json:"results"`
}

// Climb returns the total ascent and descent in meters along coords,
// sampled down to at most MaxElevationSamples points.
func (e *ElevationClient) Climb(ctx context.Context, coords []models.Coordinate) (ascent, descent float64, err error) {
	points := samplePath(coords, MaxElevationSamples)
	if len(points) < 2 {
		return 0, 0, nil
	}

	req := elevationRequest{Locations: make([]elevationLocation, len(points))}
	for i, c := range points {
		req.Locations[i] = elevationLocation{Latitude: c.Lat, Longitude: c.Lon}
	}

	var resp elevationResponse
	if err := e.client.PostJSON(ctx, "elevation", e.baseURL+"/api/v1/lookup", req, &resp); err != nil {
		return 0, 0, err
	}
	if len(resp.Results) != len(points) {
		return 0, 0, &models.ProviderError{
			Provider: e.client.Provider(),
			Message:  fmt.Sprintf("expected %d elevations, got %d", len(points), len(resp.Results)),
		}
	}

	heights := make([]float64, len(resp.Results))
	for i, r := range resp.Results {
		heights[i] = r.Elevation
	}
	ascent, descent = climb(heights)
	return ascent, descent, nil
}

// climb sums the positive and negative height deltas of a profile.
func climb(heights []float64) (ascent, descent float64) {
	for i := 1; i < len(heights); i++ {
		if d := heights[i] - heights[i-1]; d > 0 {
			ascent += d
		} else {
			descent -= d
		}
	}
	return ascent, descent
}

// samplePath keeps the first and last point and spreads the rest evenly.
func samplePath(coords []models.Coordinate, limit int) []models.Coordinate {
	if len(coords) <= limit {
		return coords
	}
	out := make([]models.Coordinate, limit)
	step := float64(len(coords)-1) / float64(limit-1)
	for i := 0; i < limit; i++ {
		out[i] = coords[int(float64(i)*step+0.5)]
	}
	out[limit-1] = coords[len(coords)-1]
	return out
}
