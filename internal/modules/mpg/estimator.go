// Package mpg estimates fuel economy for a pickup or motorhome from a
// static base table, adjusted for trailer weight and, optionally, for the
// climb and highway share of the route.
package mpg

import (
	"fmt"
	"math"

	"tow-trip-planner/internal/models"
)

const (
	// TrailerPenaltyPerLb costs 0.1% MPG per 1,000 lbs towed.
	TrailerPenaltyPerLb = 0.000001
	// ClimbPenaltyPerMeter costs 5% MPG per 100 m of ascent.
	ClimbPenaltyPerMeter = 0.00005
	// HighwayBonus is the gain for an all highway route.
	HighwayBonus = 0.1

	minFactor = 0.01
)

// BaseMPG looks up the nominal MPG for the profile. Pickups need a wheel
// config; motorhomes ignore it.
func BaseMPG(p models.VehicleProfile) (float64, error) {
	var fuels fuelTable
	if p.VehicleClass.IsPickup() {
		byWheel := pickupTable[p.VehicleClass]
		if p.WheelConfig == "" {
			return 0, fmt.Errorf("%w: %s needs a wheel config", models.ErrUnknownVehicle, p.VehicleClass)
		}
		fuels = byWheel[p.WheelConfig]
	} else {
		fuels = motorhomeTable[p.VehicleClass]
	}
	if fuels == nil {
		return 0, fmt.Errorf("%w: class %q wheel %q", models.ErrUnknownVehicle, p.VehicleClass, p.WheelConfig)
	}

	loads, ok := fuels[p.FuelType]
	if !ok {
		return 0, fmt.Errorf("%w: fuel type %q", models.ErrUnknownVehicle, p.FuelType)
	}
	base, ok := loads.get(p.LoadStatus)
	if !ok {
		return 0, fmt.Errorf("%w: load status %q", models.ErrUnknownVehicle, p.LoadStatus)
	}
	return base, nil
}

// Estimate returns the adjusted MPG for the profile. hint may be nil. The
// result is not rounded and is always positive.
func Estimate(p models.VehicleProfile, hint *models.RouteHint) (float64, error) {
	base, err := BaseMPG(p)
	if err != nil {
		return 0, err
	}
	if p.TrailerWeightLbs < 0 || math.IsNaN(p.TrailerWeightLbs) || math.IsInf(p.TrailerWeightLbs, 0) {
		return 0, fmt.Errorf("%w: trailer weight %v", models.ErrInvalidInput, p.TrailerWeightLbs)
	}
	return base * Factor(p, hint), nil
}

// Factor is the product of the trailer, climb and highway adjustments.
// Every term and the product are floored at 0.01.
func Factor(p models.VehicleProfile, hint *models.RouteHint) float64 {
	factor := 1.0
	if p.LoadStatus == models.LoadTowing && p.TrailerWeightLbs > 0 {
		factor *= floor(1 - p.TrailerWeightLbs*TrailerPenaltyPerLb)
	}
	if hint != nil {
		if ascent := finite(hint.AscentMeters); ascent > 0 {
			factor *= floor(1 - ascent*ClimbPenaltyPerMeter)
		}
		highway := math.Min(math.Max(finite(hint.HighwayFraction), 0), 1)
		factor *= 1 + highway*HighwayBonus
	}
	return floor(factor)
}

// Range is the distance covered on tankGallons at the estimated MPG.
func Range(p models.VehicleProfile, hint *models.RouteHint, tankGallons float64) (float64, error) {
	if tankGallons < 0 || math.IsNaN(tankGallons) {
		return 0, fmt.Errorf("%w: tank size %v", models.ErrInvalidInput, tankGallons)
	}
	mpg, err := Estimate(p, hint)
	if err != nil {
		return 0, err
	}
	return mpg * tankGallons, nil
}

// CostPerMile is pricePerGallon / mpg, or 0 when mpg is not positive.
func CostPerMile(pricePerGallon, mpg float64) float64 {
	if mpg <= 0 || math.IsNaN(mpg) {
		return 0
	}
	return pricePerGallon / mpg
}

func floor(v float64) float64 {
	if math.IsNaN(v) || v < minFactor {
		return minFactor
	}
	return v
}

func finite(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}
