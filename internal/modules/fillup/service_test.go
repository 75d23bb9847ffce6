package fillup

import (
	"context"
	"fmt"
	"math"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tow-trip-planner/internal/models"
)

var fixedAt = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

func newTestService() (ServiceInterface, RepositoryInterface) {
	repo := NewRepository()
	ids := 0
	svc := NewService(repo, Options{
		Now: func() time.Time { return fixedAt },
		NewID: func() string {
			ids++
			return fmt.Sprintf("fill-%d", ids)
		},
	})
	return svc, repo
}

func fillUp(odometer, gallons, price float64) models.AddFillUpRequest {
	return models.AddFillUpRequest{Odometer: odometer, Gallons: gallons, PricePerGallon: price}
}

func addAll(t *testing.T, svc ServiceInterface, reqs ...models.AddFillUpRequest) {
	t.Helper()
	for _, req := range reqs {
		_, err := svc.AddFillUp(context.Background(), req)
		require.NoError(t, err)
	}
}

func TestAddFillUpFirstEntryHasNoMileage(t *testing.T) {
	svc, _ := newTestService()

	f, err := svc.AddFillUp(context.Background(), models.AddFillUpRequest{
		Odometer: 1000, Gallons: 10, PricePerGallon: 4, Notes: " Loveland Pass ",
	})
	require.NoError(t, err)
	assert.Equal(t, "fill-1", f.ID)
	assert.Equal(t, fixedAt, f.Date)
	assert.Equal(t, fixedAt, f.CreatedAt)
	assert.Equal(t, 40.0, f.TotalCost)
	assert.Zero(t, f.MilesDriven)
	assert.Zero(t, f.MPG)
	assert.Equal(t, "Loveland Pass", f.Notes)
}

func TestAddFillUpMeasuresFromPreviousOdometer(t *testing.T) {
	svc, _ := newTestService()
	addAll(t, svc, fillUp(1000, 10, 4))

	date := time.Date(2024, 5, 30, 0, 0, 0, 0, time.UTC)
	req := fillUp(1150, 10, 4.2)
	req.Date = &date
	f, err := svc.AddFillUp(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, 150.0, f.MilesDriven)
	assert.Equal(t, 15.0, f.MPG)
	assert.InDelta(t, 42.0, f.TotalCost, 1e-9)
	assert.Equal(t, date, f.Date)
}

func TestAddFillUpGuardsZeroDivision(t *testing.T) {
	svc, _ := newTestService()
	addAll(t, svc, fillUp(1000, 10, 4))

	noFuel, err := svc.AddFillUp(context.Background(), fillUp(1100, 0, 4))
	require.NoError(t, err)
	assert.Equal(t, 100.0, noFuel.MilesDriven)
	assert.Zero(t, noFuel.MPG)
	assert.Zero(t, noFuel.TotalCost)

	noMiles, err := svc.AddFillUp(context.Background(), fillUp(1100, 5, 4))
	require.NoError(t, err)
	assert.Zero(t, noMiles.MilesDriven)
	assert.Zero(t, noMiles.MPG)
}

func TestAddFillUpRejectsBadInput(t *testing.T) {
	svc, repo := newTestService()
	addAll(t, svc, fillUp(1000, 10, 4))

	tests := []struct {
		name string
		req  models.AddFillUpRequest
	}{
		{"odometer goes backwards", fillUp(900, 10, 4)},
		{"negative gallons", fillUp(1100, -1, 4)},
		{"NaN price", fillUp(1100, 10, math.NaN())},
		{"infinite odometer", fillUp(math.Inf(1), 10, 4)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.AddFillUp(context.Background(), tt.req)
			assert.ErrorIs(t, err, models.ErrInvalidInput)
			assert.Equal(t, http.StatusBadRequest, models.HTTPStatus(err))
		})
	}

	entries, err := repo.List(context.Background())
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestStatistics(t *testing.T) {
	svc, _ := newTestService()
	addAll(t, svc,
		fillUp(1000, 10, 4),
		fillUp(1150, 10, 4.2),
		fillUp(1450, 25, 4),
	)

	stats, err := svc.Statistics(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, stats.FillUpCount)
	assert.Equal(t, 45.0, stats.TotalGallons)
	assert.InDelta(t, 182.0, stats.TotalCost, 1e-9)
	assert.Equal(t, 450.0, stats.TotalMiles)
	// The first entry measured no interval and does not drag the mean down.
	assert.InDelta(t, 13.5, stats.AverageMPG, 1e-9)
	assert.InDelta(t, 182.0/450.0, stats.CostPerMile, 1e-9)
}

func TestStatisticsWithoutMileage(t *testing.T) {
	svc, _ := newTestService()

	stats, err := svc.Statistics(context.Background())
	require.NoError(t, err)
	assert.Equal(t, &models.FillUpStatistics{}, stats)

	addAll(t, svc, fillUp(1000, 10, 4))
	stats, err = svc.Statistics(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, stats.FillUpCount)
	assert.Equal(t, 40.0, stats.TotalCost)
	assert.Zero(t, stats.TotalMiles)
	assert.Zero(t, stats.AverageMPG)
	assert.Zero(t, stats.CostPerMile)
}

func TestGetFillUp(t *testing.T) {
	svc, _ := newTestService()
	addAll(t, svc, fillUp(1000, 10, 4))

	f, err := svc.GetFillUp(context.Background(), "fill-1")
	require.NoError(t, err)
	assert.Equal(t, 1000.0, f.Odometer)

	_, err = svc.GetFillUp(context.Background(), "missing")
	assert.ErrorIs(t, err, models.ErrNotFound)
	assert.Equal(t, http.StatusNotFound, models.HTTPStatus(err))
}

func TestRepositoryCopiesEntries(t *testing.T) {
	repo := NewRepository()
	ctx := context.Background()

	_, err := repo.Append(ctx, func(last *models.FillUp) (*models.FillUp, error) {
		assert.Nil(t, last)
		return &models.FillUp{ID: "a", Odometer: 10}, nil
	})
	require.NoError(t, err)

	_, err = repo.Append(ctx, func(last *models.FillUp) (*models.FillUp, error) {
		require.NotNil(t, last)
		last.Odometer = 999
		return &models.FillUp{ID: "a", Odometer: 20}, nil
	})
	assert.ErrorIs(t, err, models.ErrInvalidInput)

	list, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	list[0].Odometer = 5

	got, err := repo.FindByID(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, 10.0, got.Odometer)
}

func TestHandlerAddListAndStats(t *testing.T) {
	svc, _ := newTestService()
	e := echo.New()
	NewHandler(svc).RegisterRoutes(e.Group("/api/v1"))

	for _, body := range []string{
		`{"odometer": 1000, "gallons": 10, "price_per_gallon": 4}`,
		`{"odometer": 1150, "gallons": 10, "price_per_gallon": 4}`,
	} {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/fill-ups", strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/fill-ups", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"id":"fill-1"`)
	assert.Contains(t, rec.Body.String(), `"mpg":15`)

	req = httptest.NewRequest(http.MethodGet, "/api/v1/fill-ups/stats", nil)
	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"fill_up_count": 2, "total_gallons": 20, "total_cost": 80,
		"average_mpg": 15, "total_miles": 150, "cost_per_mile": 0.5333333333333333}`, rec.Body.String())
}

func TestHandlerRejectsBadFillUps(t *testing.T) {
	svc, _ := newTestService()
	e := echo.New()
	NewHandler(svc).RegisterRoutes(e.Group("/api/v1"))

	tests := []struct {
		name string
		body string
	}{
		{"negative gallons", `{"odometer": 1000, "gallons": -2, "price_per_gallon": 4}`},
		{"malformed body", `{"odometer": "far"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/api/v1/fill-ups", strings.NewReader(tt.body))
			req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
			rec := httptest.NewRecorder()
			e.ServeHTTP(rec, req)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Contains(t, rec.Body.String(), models.KindInvalidInput)
		})
	}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/fill-ups/missing", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
