package models

import (
	"fmt"
	"strconv"
	"strings"
)

// Coordinate is a WGS84 latitude/longitude pair.
type Coordinate struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

func (c Coordinate) String() string {
	return fmt.Sprintf("%.6f,%.6f", c.Lat, c.Lon)
}

// Valid reports whether the coordinate lies within WGS84 bounds.
func (c Coordinate) Valid() bool {
	return c.Lat >= -90 && c.Lat <= 90 && c.Lon >= -180 && c.Lon <= 180
}

// ParseCoordinate parses "lat,lon".
func ParseCoordinate(s string) (Coordinate, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 2 {
		return Coordinate{}, fmt.Errorf("%w: coordinate %q must be lat,lon", ErrInvalidInput, s)
	}
	lat, err := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	if err != nil {
		return Coordinate{}, fmt.Errorf("%w: latitude %q", ErrInvalidInput, parts[0])
	}
	lon, err := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err != nil {
		return Coordinate{}, fmt.Errorf("%w: longitude %q", ErrInvalidInput, parts[1])
	}
	c := Coordinate{Lat: lat, Lon: lon}
	if !c.Valid() {
		return Coordinate{}, fmt.Errorf("%w: coordinate %q out of range", ErrInvalidInput, s)
	}
	return c, nil
}

// Place is a geocoded location with its display label.
type Place struct {
	DisplayName string     `json:"display_name"`
	Coordinate  Coordinate `json:"coordinate"`
}

// RouteResult is a driving route normalized to miles and hours. It is not
// modified after a provider returns it.
type RouteResult struct {
	Coordinates   []Coordinate `json:"coordinates"`
	DistanceMiles float64      `json:"distance_miles"`
	DurationHours float64      `json:"duration_hours"`
	// Optional route characteristics, nil when the provider or the
	// elevation lookup did not supply them.
	AscentMeters    *float64 `json:"ascent_meters,omitempty"`
	DescentMeters   *float64 `json:"descent_meters,omitempty"`
	HighwayFraction *float64 `json:"highway_fraction,omitempty"`
	Provider        string   `json:"provider"`
}

// Unit conversions used by the route providers.
const (
	MetersPerMile  = 1609.34
	SecondsPerHour = 3600.0
)
