package mpg

import (
	"math"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tow-trip-planner/internal/models"
)

var loads = []models.LoadStatus{models.LoadEmpty, models.LoadLoaded, models.LoadTowing}

func TestEstimateMatchesTableForEveryPickup(t *testing.T) {
	count := 0
	for class, byWheel := range pickupTable {
		for wheel, fuels := range byWheel {
			for fuel, want := range fuels {
				for _, load := range loads {
					p := models.VehicleProfile{VehicleClass: class, WheelConfig: wheel, FuelType: fuel, LoadStatus: load}
					got, err := Estimate(p, nil)
					require.NoError(t, err, "%+v", p)
					expected, _ := want.get(load)
					assert.Equal(t, expected, got, "%+v", p)
					count++
				}
			}
		}
	}
	assert.Equal(t, 4*2*2*3, count)
}

func TestEstimateMatchesTableForEveryMotorhome(t *testing.T) {
	count := 0
	for class, fuels := range motorhomeTable {
		for fuel, want := range fuels {
			for _, load := range loads {
				p := models.VehicleProfile{VehicleClass: class, FuelType: fuel, LoadStatus: load}
				got, err := Estimate(p, nil)
				require.NoError(t, err, "%+v", p)
				expected, _ := want.get(load)
				assert.Equal(t, expected, got, "%+v", p)
				count++
			}
		}
	}
	assert.Equal(t, 5*2*3, count)
}

func TestSpotValues(t *testing.T) {
	tests := []struct {
		profile models.VehicleProfile
		want    float64
	}{
		{models.VehicleProfile{VehicleClass: models.ClassPickup1, WheelConfig: models.WheelSingleRear, FuelType: models.FuelGas, LoadStatus: models.LoadLoaded}, 15},
		{models.VehicleProfile{VehicleClass: models.ClassPickup3, WheelConfig: models.WheelDualRear, FuelType: models.FuelDiesel, LoadStatus: models.LoadTowing}, 8},
		{models.VehicleProfile{VehicleClass: models.ClassA, FuelType: models.FuelGas, LoadStatus: models.LoadEmpty}, 8},
		{models.VehicleProfile{VehicleClass: models.ClassSuperC, WheelConfig: models.WheelDualRear, FuelType: models.FuelDiesel, LoadStatus: models.LoadLoaded}, 10},
	}
	for _, tt := range tests {
		got, err := Estimate(tt.profile, nil)
		require.NoError(t, err)
		assert.Equal(t, tt.want, got)
	}
}

func TestUnknownVehicle(t *testing.T) {
	tests := []models.VehicleProfile{
		{VehicleClass: "class9", WheelConfig: models.WheelSingleRear, FuelType: models.FuelGas, LoadStatus: models.LoadEmpty},
		{VehicleClass: models.ClassPickup2, FuelType: models.FuelGas, LoadStatus: models.LoadEmpty},
		{VehicleClass: models.ClassPickup2, WheelConfig: "trw", FuelType: models.FuelGas, LoadStatus: models.LoadEmpty},
		{VehicleClass: models.ClassB, FuelType: "electric", LoadStatus: models.LoadEmpty},
		{VehicleClass: models.ClassB, FuelType: models.FuelGas, LoadStatus: "overloaded"},
	}
	for _, p := range tests {
		_, err := Estimate(p, nil)
		assert.ErrorIs(t, err, models.ErrUnknownVehicle, "%+v", p)
	}
}

func towing(weight float64) models.VehicleProfile {
	return models.VehicleProfile{
		VehicleClass:     models.ClassPickup1,
		WheelConfig:      models.WheelSingleRear,
		FuelType:         models.FuelGas,
		LoadStatus:       models.LoadTowing,
		TrailerWeightLbs: weight,
	}
}

func TestTrailerPenaltyIsMonotonic(t *testing.T) {
	prev := math.Inf(1)
	for w := 0.0; w < 1_000_000; w += 25_000 {
		got, err := Estimate(towing(w), nil)
		require.NoError(t, err)
		assert.Less(t, got, prev, "weight %v", w)
		assert.Greater(t, got, 0.0)
		prev = got
	}
}

func TestTrailerPenaltyAtHalfMillionPounds(t *testing.T) {
	assert.InDelta(t, 0.5, Factor(towing(500_000), nil), 1e-12)

	got, err := Estimate(towing(500_000), nil)
	require.NoError(t, err)
	assert.InDelta(t, 5.0, got, 1e-9)
}

func TestTrailerPenaltyOnlyWhenTowing(t *testing.T) {
	p := towing(10_000)
	p.LoadStatus = models.LoadLoaded

	got, err := Estimate(p, nil)
	require.NoError(t, err)
	assert.Equal(t, 15.0, got)
}

func TestTrailerPenaltyStaysPositive(t *testing.T) {
	got, err := Estimate(towing(5_000_000), nil)
	require.NoError(t, err)
	assert.Greater(t, got, 0.0)
}

func TestNegativeTrailerWeight(t *testing.T) {
	_, err := Estimate(towing(-1), nil)
	assert.ErrorIs(t, err, models.ErrInvalidInput)
}

func TestRouteHints(t *testing.T) {
	p := models.VehicleProfile{VehicleClass: models.ClassC, FuelType: models.FuelGas, LoadStatus: models.LoadEmpty}

	climb, err := Estimate(p, &models.RouteHint{AscentMeters: 100})
	require.NoError(t, err)
	assert.InDelta(t, 12*0.995, climb, 1e-9)

	highway, err := Estimate(p, &models.RouteHint{HighwayFraction: 1})
	require.NoError(t, err)
	assert.InDelta(t, 12*1.1, highway, 1e-9)

	clamped, err := Estimate(p, &models.RouteHint{HighwayFraction: 7})
	require.NoError(t, err)
	assert.InDelta(t, highway, clamped, 1e-9)

	steep, err := Estimate(p, &models.RouteHint{AscentMeters: 1_000_000})
	require.NoError(t, err)
	assert.Greater(t, steep, 0.0)

	none, err := Estimate(p, &models.RouteHint{})
	require.NoError(t, err)
	assert.Equal(t, 12.0, none)
}

func TestRangeAndCostPerMile(t *testing.T) {
	p := models.VehicleProfile{VehicleClass: models.ClassA, FuelType: models.FuelDiesel, LoadStatus: models.LoadLoaded}

	miles, err := Range(p, nil, 100)
	require.NoError(t, err)
	assert.Equal(t, 800.0, miles)

	assert.InDelta(t, 0.5, CostPerMile(4, 8), 1e-12)
	assert.Zero(t, CostPerMile(4, 0))
}

func TestHandlerEstimate(t *testing.T) {
	e := echo.New()
	h := NewHandler()

	body := `{"vehicle": {"vehicle_class": "class1", "wheel_config": "srw", "fuel_type": "gas", "load_status": "loaded"}, "tank_gallons": 26}`
	req := httptest.NewRequest(http.MethodPost, "/mpg/estimate", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	require.NoError(t, h.Estimate(e.NewContext(req, rec)))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"estimated_mpg": 15, "range_miles": 390}`, rec.Body.String())
}

func TestHandlerEstimateRejectsBadInput(t *testing.T) {
	e := echo.New()
	h := NewHandler()

	bodies := []string{
		`{"vehicle": {"vehicle_class": "tank", "fuel_type": "gas", "load_status": "loaded"}}`,
		`{"vehicle": {"vehicle_class": "class1", "wheel_config": "srw", "fuel_type": "gas", "load_status": "towing", "trailer_weight_lbs": -5}}`,
		`{"vehicle": `,
	}
	for _, body := range bodies {
		req := httptest.NewRequest(http.MethodPost, "/mpg/estimate", strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
		rec := httptest.NewRecorder()
		require.NoError(t, h.Estimate(e.NewContext(req, rec)))
		assert.Equal(t, http.StatusBadRequest, rec.Code, body)
	}

	// Valid enums but a pickup without a wheel config.
	req := httptest.NewRequest(http.MethodPost, "/mpg/estimate",
		strings.NewReader(`{"vehicle": {"vehicle_class": "class2", "fuel_type": "diesel", "load_status": "empty"}}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	require.NoError(t, h.Estimate(e.NewContext(req, rec)))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), models.KindUnknownVehicle)
}
