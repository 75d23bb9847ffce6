package models

import "time"

// PlanRequest is the input from the UI to estimate a trip.
type PlanRequest struct {
	Origin      string         `json:"origin" validate:"required"`
	Destination string         `json:"destination" validate:"required"`
	Vehicle     VehicleProfile `json:"vehicle" validate:"required"`
	IsRoundTrip bool           `json:"is_round_trip"`
	// FuelPriceOverride replaces the provider price when set.
	FuelPriceOverride *float64 `json:"fuel_price_override,omitempty" validate:"omitempty,gt=0"`
	// UseRouteHints enables the elevation and highway MPG refinement. Nil
	// falls back to the server default.
	UseRouteHints *bool `json:"use_route_hints,omitempty"`
}

// TripEstimate is derived from a route, a vehicle and a fuel price. It is
// either fully computed or absent.
type TripEstimate struct {
	DistanceMiles  float64     `json:"distance_miles"`
	OneWayMiles    float64     `json:"one_way_miles"`
	DurationHours  float64     `json:"duration_hours"`
	EstimatedMPG   float64     `json:"estimated_mpg"`
	FuelGallons    float64     `json:"fuel_gallons"`
	FuelCost       float64     `json:"fuel_cost"`
	CostPerMile    float64     `json:"cost_per_mile"`
	PricePerGallon float64     `json:"price_per_gallon"`
	PriceSource    PriceSource `json:"price_source"`
	IsRoundTrip    bool        `json:"is_round_trip"`
}

// TripPlan is everything the UI needs to display an estimate and later
// confirm it as a Trip.
type TripPlan struct {
	Origin            string         `json:"origin"`
	Destination       string         `json:"destination"`
	OriginCoord       Coordinate     `json:"origin_coordinate"`
	DestinationCoord  Coordinate     `json:"destination_coordinate"`
	Vehicle           VehicleProfile `json:"vehicle"`
	Route             *RouteResult   `json:"route"`
	Estimate          TripEstimate   `json:"estimate"`
	RouteHintsApplied bool           `json:"route_hints_applied"`
	PlannedAt         time.Time      `json:"planned_at"`
}

// TripRoute is the route snapshot stored with a confirmed trip.
type TripRoute struct {
	Coordinates   []Coordinate `json:"coordinates"`
	DistanceMiles float64      `json:"distance_miles"`
	DurationHours float64      `json:"duration_hours"`
	Origin        Coordinate   `json:"origin"`
	Destination   Coordinate   `json:"destination"`
}

// Trip is a confirmed trip in the trip log. It is immutable after creation.
type Trip struct {
	ID            string         `json:"id"`
	Date          time.Time      `json:"date"`
	Origin        string         `json:"origin"`
	Destination   string         `json:"destination"`
	DistanceMiles float64        `json:"distance_miles"`
	FuelGallons   float64        `json:"fuel_gallons"`
	FuelCost      float64        `json:"fuel_cost"`
	MPG           float64        `json:"mpg"`
	CostPerMile   float64        `json:"cost_per_mile"`
	FuelPrice     float64        `json:"fuel_price"`
	PriceSource   PriceSource    `json:"price_source"`
	IsRoundTrip   bool           `json:"is_round_trip"`
	Vehicle       VehicleProfile `json:"vehicle"`
	Route         *TripRoute     `json:"route,omitempty"`
	Notes         string         `json:"notes,omitempty"`
	CreatedAt     time.Time      `json:"created_at"`
}

// ConfirmTripRequest confirms the latest plan of a session.
type ConfirmTripRequest struct {
	SessionID string     `json:"session_id" validate:"required"`
	Date      *time.Time `json:"date,omitempty"`
	Notes     string     `json:"notes,omitempty" validate:"max=500"`
}

// TripStatistics aggregates the trip log.
type TripStatistics struct {
	TripCount          int     `json:"trip_count"`
	TotalMiles         float64 `json:"total_miles"`
	TotalHours         float64 `json:"total_hours"`
	TotalFuelCost      float64 `json:"total_fuel_cost"`
	TotalFuelGallons   float64 `json:"total_fuel_gallons"`
	AverageMPG         float64 `json:"average_mpg"`
	AverageCostPerMile float64 `json:"average_cost_per_mile"`
}

// Sort fields accepted by the trip list.
const (
	SortByDate        = "date"
	SortByMPG         = "mpg"
	SortByCostPerMile = "costPerMile"
	SortByDistance    = "distance"
)

// EstimateMPGRequest is the body of the standalone MPG estimate call.
type EstimateMPGRequest struct {
	Vehicle VehicleProfile `json:"vehicle" validate:"required"`
	Hint    *RouteHint     `json:"route_hint,omitempty"`
	// TankGallons, when set, adds the range on a full tank to the response.
	TankGallons float64 `json:"tank_gallons,omitempty" validate:"gte=0"`
}

// EstimateMPGResponse is the result of the standalone MPG estimate call.
type EstimateMPGResponse struct {
	EstimatedMPG float64  `json:"estimated_mpg"`
	RangeMiles   *float64 `json:"range_miles,omitempty"`
}
