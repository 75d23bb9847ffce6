package routing

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"googlemaps.github.io/maps"

	"tow-trip-planner/internal/apiclient"
	"tow-trip-planner/internal/models"
)

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(req *http.Request) (*http.Response, error) {
	return f(req)
}

func respond(status int, body string) *http.Response {
	return &http.Response{
		StatusCode: status,
		Body:       io.NopCloser(strings.NewReader(body)),
		Header:     make(http.Header),
	}
}

var (
	denver  = models.Coordinate{Lat: 39.7392, Lon: -104.9903}
	boulder = models.Coordinate{Lat: 40.0150, Lon: -105.2705}
)

func newOSRM(rt roundTripFunc) *OSRMProvider {
	client := apiclient.New(apiclient.Options{Provider: "osrm", HTTPClient: &http.Client{Transport: rt}})
	return NewOSRMProvider(client, "https://osrm.test/")
}

const osrmOK = `{
  "code": "Ok",
  "routes": [{
    "distance": 48280.2,
    "duration": 2700,
    "geometry": {"type": "LineString", "coordinates": [[-104.9903, 39.7392], [-105.1, 39.9], [-105.2705, 40.015]]},
    "legs": [{"steps": [
      {"distance": 1000, "intersections": [{"classes": ["toll"]}]},
      {"distance": 3000, "intersections": [{}, {"classes": ["motorway"]}]}
    ]}]
  }]
}`

func TestOSRMRouteNormalizesUnits(t *testing.T) {
	var got *http.Request
	p := newOSRM(func(req *http.Request) (*http.Response, error) {
		got = req
		return respond(http.StatusOK, osrmOK), nil
	})

	r, err := p.Route(context.Background(), denver, boulder)
	require.NoError(t, err)

	assert.InDelta(t, 30.0, r.DistanceMiles, 0.001)
	assert.InDelta(t, 0.75, r.DurationHours, 1e-9)
	require.Len(t, r.Coordinates, 3)
	assert.Equal(t, denver, r.Coordinates[0], "[lon, lat] pairs are swapped")
	require.NotNil(t, r.HighwayFraction)
	assert.InDelta(t, 0.75, *r.HighwayFraction, 1e-9)
	assert.Nil(t, r.AscentMeters)
	assert.Equal(t, "osrm", r.Provider)

	assert.Equal(t, "/route/v1/driving/-104.990300,39.739200;-105.270500,40.015000", got.URL.Path)
	assert.Equal(t, "full", got.URL.Query().Get("overview"))
	assert.Equal(t, "geojson", got.URL.Query().Get("geometries"))
}

func TestOSRMErrorMapping(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		want   error
	}{
		{"no route", http.StatusBadRequest, `{"code": "NoRoute", "message": "Impossible route"}`, models.ErrNoRoute},
		{"no segment", http.StatusBadRequest, `{"code": "NoSegment", "message": "Could not find a matching segment"}`, models.ErrInvalidLocation},
		{"ok but empty", http.StatusOK, `{"code": "Ok", "routes": []}`, models.ErrNoRoute},
		{"too big", http.StatusBadRequest, `{"code": "TooBig", "message": "Too many coordinates"}`, models.ErrProvider},
		{"server error", http.StatusBadGateway, `<html>bad gateway</html>`, models.ErrProvider},
		{"malformed", http.StatusOK, `not json`, models.ErrProvider},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := newOSRM(func(req *http.Request) (*http.Response, error) {
				return respond(tt.status, tt.body), nil
			})
			_, err := p.Route(context.Background(), denver, boulder)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestOSRMNetworkError(t *testing.T) {
	p := newOSRM(func(req *http.Request) (*http.Response, error) {
		return nil, errors.New("dial tcp: connection refused")
	})
	_, err := p.Route(context.Background(), denver, boulder)
	assert.ErrorIs(t, err, models.ErrNetwork)
}

func TestOSRMRejectsOutOfRangeCoordinates(t *testing.T) {
	calls := 0
	p := newOSRM(func(req *http.Request) (*http.Response, error) {
		calls++
		return respond(http.StatusOK, osrmOK), nil
	})
	_, err := p.Route(context.Background(), models.Coordinate{Lat: 91}, boulder)
	assert.ErrorIs(t, err, models.ErrInvalidLocation)
	assert.Zero(t, calls)
}

func TestHighwayFractionWithoutSteps(t *testing.T) {
	assert.Nil(t, highwayFraction(osrmRoute{}))
}

func TestGoogleRoute(t *testing.T) {
	path := []maps.LatLng{{Lat: 39.7392, Lng: -104.9903}, {Lat: 40.015, Lng: -105.2705}}
	body := fmt.Sprintf(`{"status": "OK", "routes": [{
		"overview_polyline": {"points": %q},
		"legs": [{"distance": {"text": "30 mi", "value": 48280}, "duration": {"text": "45 mins", "value": 2700}}]
	}]}`, maps.Encode(path))

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/maps/api/directions/json", r.URL.Path)
		assert.Equal(t, "driving", r.URL.Query().Get("mode"))
		_, _ = io.WriteString(w, body)
	}))
	defer srv.Close()

	client, err := maps.NewClient(maps.WithAPIKey("k"), maps.WithBaseURL(srv.URL), maps.WithRateLimit(0))
	require.NoError(t, err)
	p := NewGoogleProvider(client, time.Second)

	r, err := p.Route(context.Background(), denver, boulder)
	require.NoError(t, err)
	assert.InDelta(t, 30.0, r.DistanceMiles, 0.001)
	assert.InDelta(t, 0.75, r.DurationHours, 1e-9)
	require.Len(t, r.Coordinates, 2)
	assert.InDelta(t, 40.015, r.Coordinates[1].Lat, 1e-5)
	assert.Nil(t, r.HighwayFraction)
}

func TestGoogleRouteZeroResults(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"status": "ZERO_RESULTS", "routes": []}`)
	}))
	defer srv.Close()

	client, err := maps.NewClient(maps.WithAPIKey("k"), maps.WithBaseURL(srv.URL), maps.WithRateLimit(0))
	require.NoError(t, err)

	_, err = NewGoogleProvider(client, time.Second).Route(context.Background(), denver, boulder)
	assert.ErrorIs(t, err, models.ErrNoRoute)
}

func TestGoogleRouteNotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"status": "NOT_FOUND", "routes": []}`)
	}))
	defer srv.Close()

	client, err := maps.NewClient(maps.WithAPIKey("k"), maps.WithBaseURL(srv.URL), maps.WithRateLimit(0))
	require.NoError(t, err)

	_, err = NewGoogleProvider(client, time.Second).Route(context.Background(), denver, boulder)
	assert.ErrorIs(t, err, models.ErrInvalidLocation)
}

// ---- elevation ----

func TestSamplePath(t *testing.T) {
	coords := make([]models.Coordinate, 250)
	for i := range coords {
		coords[i] = models.Coordinate{Lat: float64(i) / 10}
	}

	sampled := samplePath(coords, MaxElevationSamples)
	require.Len(t, sampled, MaxElevationSamples)
	assert.Equal(t, coords[0], sampled[0])
	assert.Equal(t, coords[len(coords)-1], sampled[len(sampled)-1])

	short := coords[:5]
	assert.Equal(t, short, samplePath(short, MaxElevationSamples))
}

func TestClimb(t *testing.T) {
	ascent, descent := climb([]float64{1600, 1650, 1640, 1700, 1700, 1690})
	assert.InDelta(t, 110, ascent, 1e-9)
	assert.InDelta(t, 20, descent, 1e-9)
}

func TestElevationClientClimb(t *testing.T) {
	var sent elevationRequest
	hc := &http.Client{Transport: roundTripFunc(func(req *http.Request) (*http.Response, error) {
		assert.Equal(t, http.MethodPost, req.Method)
		assert.Equal(t, "/api/v1/lookup", req.URL.Path)
		require.NoError(t, json.NewDecoder(req.Body).Decode(&sent))
		return respond(http.StatusOK, `{"results": [{"elevation": 1600}, {"elevation": 1750}, {"elevation": 1650}]}`), nil
	})}
	e := NewElevationClient(apiclient.New(apiclient.Options{Provider: "open-elevation", HTTPClient: hc}), "https://elevation.test")

	ascent, descent, err := e.Climb(context.Background(), []models.Coordinate{denver, {Lat: 39.9, Lon: -105.1}, boulder})
	require.NoError(t, err)
	assert.InDelta(t, 150, ascent, 1e-9)
	assert.InDelta(t, 100, descent, 1e-9)
	require.Len(t, sent.Locations, 3)
	assert.Equal(t, denver.Lat, sent.Locations[0].Latitude)
}

func TestElevationClientCountMismatch(t *testing.T) {
	hc := &http.Client{Transport: roundTripFunc(func(req *http.Request) (*http.Response, error) {
		return respond(http.StatusOK, `{"results": [{"elevation": 1600}]}`), nil
	})}
	e := NewElevationClient(apiclient.New(apiclient.Options{Provider: "open-elevation", HTTPClient: hc}), "https://elevation.test")

	_, _, err := e.Climb(context.Background(), []models.Coordinate{denver, boulder})
	assert.ErrorIs(t, err, models.ErrProvider)
}

// ---- service ----

type stubProvider struct {
	result *models.RouteResult
	err    error
	calls  int
}

func (s *stubProvider) Name() string { return "stub" }

func (s *stubProvider) Route(ctx context.Context, o, d models.Coordinate) (*models.RouteResult, error) {
	s.calls++
	return s.result, s.err
}

type stubClimber struct {
	ascent, descent float64
	err             error
}

func (s stubClimber) Climb(ctx context.Context, coords []models.Coordinate) (float64, float64, error) {
	return s.ascent, s.descent, s.err
}

func TestRouteWithProfileAddsClimb(t *testing.T) {
	base := &models.RouteResult{Coordinates: []models.Coordinate{denver, boulder}, DistanceMiles: 30, DurationHours: 0.75}
	svc := NewService(&stubProvider{result: base}, stubClimber{ascent: 120, descent: 80}, Options{})

	r, err := svc.RouteWithProfile(context.Background(), denver, boulder)
	require.NoError(t, err)
	require.NotNil(t, r.AscentMeters)
	assert.Equal(t, 120.0, *r.AscentMeters)
	assert.Equal(t, 80.0, *r.DescentMeters)
	assert.Nil(t, base.AscentMeters, "provider result is not modified")
}

func TestRouteWithProfileIgnoresElevationFailure(t *testing.T) {
	base := &models.RouteResult{DistanceMiles: 30}
	svc := NewService(&stubProvider{result: base}, stubClimber{err: fmt.Errorf("%w: down", models.ErrNetwork)}, Options{})

	r, err := svc.RouteWithProfile(context.Background(), denver, boulder)
	require.NoError(t, err)
	assert.Nil(t, r.AscentMeters)
	assert.Equal(t, 30.0, r.DistanceMiles)
}

func TestRouteWithoutElevationClient(t *testing.T) {
	base := &models.RouteResult{DistanceMiles: 30}
	svc := NewService(&stubProvider{result: base}, nil, Options{})

	r, err := svc.RouteWithProfile(context.Background(), denver, boulder)
	require.NoError(t, err)
	assert.Same(t, base, r)
}

func TestRouteDoesNotRetryPermanentErrors(t *testing.T) {
	p := &stubProvider{err: fmt.Errorf("%w: nope", models.ErrNoRoute)}
	svc := NewService(p, stubClimber{}, Options{MaxRetries: 3})

	_, err := svc.Route(context.Background(), denver, boulder)
	assert.ErrorIs(t, err, models.ErrNoRoute)
	assert.Equal(t, 1, p.calls)
}

// flakyProvider fails with the queued errors before answering.
type flakyProvider struct {
	failures []error
	calls    int
}

func (f *flakyProvider) Name() string { return "flaky" }

func (f *flakyProvider) Route(ctx context.Context, o, d models.Coordinate) (*models.RouteResult, error) {
	f.calls++
	if len(f.failures) > 0 {
		err := f.failures[0]
		f.failures = f.failures[1:]
		return nil, err
	}
	return &models.RouteResult{DistanceMiles: 30}, nil
}

func TestRouteRetriesTransientFailures(t *testing.T) {
	p := &flakyProvider{failures: []error{
		fmt.Errorf("%w: reset", models.ErrNetwork),
		&models.ProviderError{Provider: "flaky", Status: http.StatusServiceUnavailable, Message: "busy"},
	}}
	svc := NewService(p, nil, Options{MaxRetries: 3})

	r, err := svc.Route(context.Background(), denver, boulder)
	require.NoError(t, err)
	assert.Equal(t, 30.0, r.DistanceMiles)
	assert.Equal(t, 3, p.calls)
}

func TestRouteGivesUpAfterMaxRetries(t *testing.T) {
	down := fmt.Errorf("%w: deadline", models.ErrTimeout)
	p := &flakyProvider{failures: []error{down, down, down, down, down}}
	svc := NewService(p, nil, Options{MaxRetries: 2})

	_, err := svc.Route(context.Background(), denver, boulder)
	assert.ErrorIs(t, err, models.ErrTimeout)
	assert.Equal(t, 3, p.calls)
}

// ---- handler ----

func TestHandlerGetRoute(t *testing.T) {
	svc := NewService(&stubProvider{result: &models.RouteResult{DistanceMiles: 30, DurationHours: 0.75}}, nil, Options{})
	h := NewHandler(svc)
	e := echo.New()

	req := httptest.NewRequest(http.MethodGet, "/route?from=39.7392,-104.9903&to=40.015,-105.2705", nil)
	rec := httptest.NewRecorder()
	require.NoError(t, h.GetRoute(e.NewContext(req, rec)))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"distance_miles":30`)
}

func TestHandlerGetRouteErrors(t *testing.T) {
	svc := NewService(&stubProvider{err: fmt.Errorf("%w: nope", models.ErrNoRoute)}, nil, Options{})
	h := NewHandler(svc)
	e := echo.New()

	req := httptest.NewRequest(http.MethodGet, "/route?from=39.7,-104.9&to=40.0,-105.2", nil)
	rec := httptest.NewRecorder()
	require.NoError(t, h.GetRoute(e.NewContext(req, rec)))
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, rec.Body.String(), `"kind":"NoRoute"`)

	req = httptest.NewRequest(http.MethodGet, "/route?from=oops&to=40.0,-105.2", nil)
	rec = httptest.NewRecorder()
	require.NoError(t, h.GetRoute(e.NewContext(req, rec)))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
