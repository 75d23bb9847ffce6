package models

import "time"

// FillUp is one entry of the fill-up log. TotalCost, MilesDriven and MPG
// are derived when the entry is added.
type FillUp struct {
	ID             string    `json:"id"`
	Date           time.Time `json:"date"`
	Odometer       float64   `json:"odometer"`
	Gallons        float64   `json:"gallons"`
	PricePerGallon float64   `json:"price_per_gallon"`
	TotalCost      float64   `json:"total_cost"`
	// MilesDriven is the distance since the previous fill-up; zero for the
	// first entry.
	MilesDriven float64   `json:"miles_driven"`
	MPG         float64   `json:"mpg"`
	Notes       string    `json:"notes,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// AddFillUpRequest records a fill-up at the pump.
type AddFillUpRequest struct {
	Date           *time.Time `json:"date,omitempty"`
	Odometer       float64    `json:"odometer" validate:"gte=0"`
	Gallons        float64    `json:"gallons" validate:"gte=0"`
	PricePerGallon float64    `json:"price_per_gallon" validate:"gte=0"`
	Notes          string     `json:"notes,omitempty" validate:"max=500"`
}

// FillUpStatistics aggregates the fill-up log.
type FillUpStatistics struct {
	FillUpCount  int     `json:"fill_up_count"`
	TotalGallons float64 `json:"total_gallons"`
	TotalCost    float64 `json:"total_cost"`
	// AverageMPG averages the entries that measured an interval.
	AverageMPG  float64 `json:"average_mpg"`
	TotalMiles  float64 `json:"total_miles"`
	CostPerMile float64 `json:"cost_per_mile"`
}
