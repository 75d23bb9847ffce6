package mpg

import "tow-trip-planner/internal/models"

// byLoad holds nominal MPG for the three load states.
type byLoad struct {
	Empty, Loaded, Towing float64
}

func (b byLoad) get(s models.LoadStatus) (float64, bool) {
	switch s {
	case models.LoadEmpty:
		return b.Empty, true
	case models.LoadLoaded:
		return b.Loaded, true
	case models.LoadTowing:
		return b.Towing, true
	}
	return 0, false
}

type fuelTable map[models.FuelType]byLoad

// pickupTable is keyed by class, then rear wheel layout, then fuel.
var pickupTable = map[models.VehicleClass]map[models.WheelConfig]fuelTable{
	models.ClassPickup1: {
		models.WheelSingleRear: {models.FuelGas: {18, 15, 10}, models.FuelDiesel: {22, 18, 12}},
		models.WheelDualRear:   {models.FuelGas: {17, 14, 9}, models.FuelDiesel: {21, 17, 11}},
	},
	models.ClassPickup2: {
		models.WheelSingleRear: {models.FuelGas: {16, 13, 8}, models.FuelDiesel: {20, 16, 10}},
		models.WheelDualRear:   {models.FuelGas: {15, 12, 7}, models.FuelDiesel: {19, 15, 9}},
	},
	models.ClassPickup3: {
		models.WheelSingleRear: {models.FuelGas: {14, 11, 7}, models.FuelDiesel: {18, 14, 9}},
		models.WheelDualRear:   {models.FuelGas: {13, 10, 6}, models.FuelDiesel: {17, 13, 8}},
	},
	models.ClassPickup4: {
		models.WheelSingleRear: {models.FuelGas: {12, 9, 6}, models.FuelDiesel: {16, 12, 8}},
		models.WheelDualRear:   {models.FuelGas: {11, 8, 5}, models.FuelDiesel: {15, 11, 7}},
	},
}

// motorhomeTable ignores the wheel layout.
var motorhomeTable = map[models.VehicleClass]fuelTable{
	models.ClassA:      {models.FuelGas: {8, 6, 4}, models.FuelDiesel: {10, 8, 5}},
	models.ClassB:      {models.FuelGas: {15, 12, 8}, models.FuelDiesel: {18, 15, 10}},
	models.ClassBPlus:  {models.FuelGas: {13, 10, 7}, models.FuelDiesel: {16, 13, 9}},
	models.ClassC:      {models.FuelGas: {12, 9, 6}, models.FuelDiesel: {15, 12, 8}},
	models.ClassSuperC: {models.FuelGas: {10, 8, 5}, models.FuelDiesel: {13, 10, 7}},
}
