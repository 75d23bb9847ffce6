package models

// VehicleClass identifies a pickup weight class or a motorhome class.
type VehicleClass string

const (
	ClassPickup1 VehicleClass = "class1"
	ClassPickup2 VehicleClass = "class2"
	ClassPickup3 VehicleClass = "class3"
	ClassPickup4 VehicleClass = "class4"
	ClassA       VehicleClass = "classA"
	ClassB       VehicleClass = "classB"
	ClassBPlus   VehicleClass = "classBPlus"
	ClassC       VehicleClass = "classC"
	ClassSuperC  VehicleClass = "superC"
)

// IsPickup reports whether the class is keyed by wheel configuration.
func (c VehicleClass) IsPickup() bool {
	switch c {
	case ClassPickup1, ClassPickup2, ClassPickup3, ClassPickup4:
		return true
	}
	return false
}

// WheelConfig is the rear axle layout of a pickup truck.
type WheelConfig string

const (
	WheelSingleRear WheelConfig = "srw"
	WheelDualRear   WheelConfig = "drw"
)

type FuelType string

const (
	FuelGas    FuelType = "gas"
	FuelDiesel FuelType = "diesel"
)

type LoadStatus string

const (
	LoadEmpty  LoadStatus = "empty"
	LoadLoaded LoadStatus = "loaded"
	LoadTowing LoadStatus = "towing"
)

// VehicleProfile is the caller-supplied vehicle configuration used for fuel
// economy estimates.
type VehicleProfile struct {
	VehicleClass     VehicleClass `json:"vehicle_class" validate:"required,oneof=class1 class2 class3 class4 classA classB classBPlus classC superC"`
	WheelConfig      WheelConfig  `json:"wheel_config,omitempty" validate:"omitempty,oneof=srw drw"`
	FuelType         FuelType     `json:"fuel_type" validate:"required,oneof=gas diesel"`
	LoadStatus       LoadStatus   `json:"load_status" validate:"required,oneof=empty loaded towing"`
	TrailerWeightLbs float64      `json:"trailer_weight_lbs,omitempty" validate:"gte=0,lt=1000000"`
}

// RouteHint carries the optional route characteristics used to refine an
// MPG estimate.
type RouteHint struct {
	AscentMeters    float64 `json:"ascent_meters"`
	HighwayFraction float64 `json:"highway_fraction"`
}

// PriceSource tells the UI whether a fuel price is live or a fallback.
type PriceSource string

const (
	PriceSourceProvider PriceSource = "provider"
	PriceSourceDefault  PriceSource = "default"
	PriceSourceOverride PriceSource = "override"
)

// FuelPriceQuote is a price per gallon and where it came from.
type FuelPriceQuote struct {
	FuelType       FuelType    `json:"fuel_type"`
	PricePerGallon float64     `json:"price_per_gallon"`
	Source         PriceSource `json:"source"`
}
