// Copyright 2025 The SheetMap Authors
//
// SPDX-License-Identifier: Apache-2.0
package spatial

import (
	"database/sql/driver"
	"fmt"
	"math"
)

const earthRadius = 6371e3 // meters

// Valid coordinate ranges, in decimal degrees.
const (
	MinLat = -90.0
	MaxLat = 90.0
	MinLng = -180.0
	MaxLng = 180.0
)

// Point represents a geographical point with latitude and longitude.
type Point struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// IsNullIsland reports whether the point is exactly (0,0). Spreadsheets use
// it as a placeholder for missing data, so it never counts as a location.
func (p Point) IsNullIsland() bool {
	return p.Lat == 0 && p.Lng == 0
}

// InRange reports whether both axes are within their valid ranges.
func (p Point) InRange() bool {
	return p.Lat >= MinLat && p.Lat <= MaxLat && p.Lng >= MinLng && p.Lng <= MaxLng
}

// Plottable reports whether the point is in range and is not (0,0).
func (p Point) Plottable() bool {
	return p.InRange() && !p.IsNullIsland()
}

// Validate returns a descriptive error for points outside their ranges.
func (p Point) Validate() error {
	if math.IsNaN(p.Lat) || p.Lat < MinLat || p.Lat > MaxLat {
		return fmt.Errorf("latitude must be between %v and %v (got %f)", MinLat, MaxLat, p.Lat)
	}

	if math.IsNaN(p.Lng) || p.Lng < MinLng || p.Lng > MaxLng {
		return fmt.Errorf("longitude must be between %v and %v (got %f)", MinLng, MaxLng, p.Lng)
	}

	if p.IsNullIsland() {
		return fmt.Errorf("point %s is the (0,0) placeholder", p)
	}

	return nil
}

// String returns a string representation of the Point.
func (p Point) String() string {
	return fmt.Sprintf("POINT(%f %f)", p.Lng, p.Lat)
}

// Value implements the driver.Valuer interface for database serialization.
func (p Point) Value() (driver.Value, error) {
	return p.String(), nil
}

// Scan implements the sql.Scanner interface for database deserialization.
func (p *Point) Scan(value any) error {
	if value == nil {
		p.Lat, p.Lng = 0, 0

		return nil
	}

	switch v := value.(type) {
	case []byte:
		// The format from DuckDB is "POINT (lng lat)"
		_, err := fmt.Sscanf(string(v), "POINT (%f %f)", &p.Lng, &p.Lat)

		return err
	case string:
		_, err := fmt.Sscanf(v, "POINT (%f %f)", &p.Lng, &p.Lat)

		return err
	case map[string]any:
		x, okX := v["x"].(float64)
		y, okY := v["y"].(float64)

		if !okX || !okY {
			return fmt.Errorf("spatial: invalid map for point: expected 'x' and 'y' float64 fields, got %+v", v)
		}

		p.Lng = x
		p.Lat = y

		return nil
	default:
		return fmt.Errorf("spatial: unsupported type for Point scan: %T", value)
	}
}

// HaversineDistance calculates the distance between two points on Earth in meters.
func (p *Point) HaversineDistance(other *Point) float64 {
	lat1 := p.Lat * math.Pi / 180
	lat2 := other.Lat * math.Pi / 180
	dLat := (other.Lat - p.Lat) * math.Pi / 180
	dLng := (other.Lng - p.Lng) * math.Pi / 180

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*
			math.Sin(dLng/2)*math.Sin(dLng/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return earthRadius * c
}
