// Package geo holds the planar geometry used by the memorial API: bounding
// box parameters, distance filters and the envelope reported with each page
// of results. Coordinates are (lon, lat) in WGS84 degrees.
package geo

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/paulmach/orb"
)

// EarthRadius is the equatorial radius in meters used for degree conversion.
const EarthRadius = 6378160.0

// DefaultDistance is the search radius in meters when dist is omitted.
const DefaultDistance = 1000.0

// DefaultBounds covers the region of the archive and is reported for pages
// holding fewer than two points.
var DefaultBounds = orb.Bound{
	Min: orb.Point{12.1898, 49.9664},
	Max: orb.Point{15.5079, 51.4444},
}

var (
	ErrInvalidBBox     = errors.New("geo: invalid bounding box")
	ErrInvalidPoint    = errors.New("geo: invalid point")
	ErrInvalidDistance = errors.New("geo: invalid distance")
)

// ParseBBox parses "minLon,minLat,maxLon,maxLat".
func ParseBBox(raw string) (orb.Bound, error) {
	values, err := parseFloats(raw, 4)
	if err != nil {
		return orb.Bound{}, fmt.Errorf("%w: %v", ErrInvalidBBox, err)
	}
	bound := orb.Bound{
		Min: orb.Point{values[0], values[1]},
		Max: orb.Point{values[2], values[3]},
	}
	if bound.Min.X() > bound.Max.X() || bound.Min.Y() > bound.Max.Y() {
		return orb.Bound{}, fmt.Errorf("%w: min corner exceeds max corner", ErrInvalidBBox)
	}
	if !validPoint(bound.Min) || !validPoint(bound.Max) {
		return orb.Bound{}, fmt.Errorf("%w: coordinates out of range", ErrInvalidBBox)
	}
	return bound, nil
}

// ParsePoint parses "lon,lat".
func ParsePoint(raw string) (orb.Point, error) {
	values, err := parseFloats(raw, 2)
	if err != nil {
		return orb.Point{}, fmt.Errorf("%w: %v", ErrInvalidPoint, err)
	}
	point := orb.Point{values[0], values[1]}
	if !validPoint(point) {
		return orb.Point{}, fmt.Errorf("%w: coordinates out of range", ErrInvalidPoint)
	}
	return point, nil
}

// ParseDistance parses a distance in meters, DefaultDistance when blank.
func ParseDistance(raw string) (float64, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return DefaultDistance, nil
	}
	value, err := strconv.ParseFloat(trimmed, 64)
	if err != nil || value <= 0 || math.IsInf(value, 0) || math.IsNaN(value) {
		return 0, fmt.Errorf("%w: %q", ErrInvalidDistance, raw)
	}
	return value, nil
}

// DistanceToDegrees converts meters to an approximate degree radius at the
// given latitude.
func DistanceToDegrees(meters, lat float64) float64 {
	radians := math.Abs(lat) * math.Pi / 180
	return meters / (EarthRadius * 0.5 * (1 + math.Cos(radians))) * 180 / math.Pi
}

// RadiusBound returns the square enclosing the circle around center, used to
// prefilter rows in the database.
func RadiusBound(center orb.Point, degrees float64) orb.Bound {
	return orb.Bound{
		Min: orb.Point{center.X() - degrees, center.Y() - degrees},
		Max: orb.Point{center.X() + degrees, center.Y() + degrees},
	}
}

// Envelope returns the minimal rectangle around points. With fewer than two
// points the default region is returned instead of a degenerate box.
func Envelope(points []orb.Point) orb.Bound {
	if len(points) < 2 {
		return DefaultBounds
	}
	return orb.MultiPoint(points).Bound()
}

// Corners renders a bound as [[minLon, minLat], [maxLon, maxLat]].
func Corners(b orb.Bound) [2][2]float64 {
	return [2][2]float64{
		{b.Min.X(), b.Min.Y()},
		{b.Max.X(), b.Max.Y()},
	}
}

func parseFloats(raw string, count int) ([]float64, error) {
	parts := strings.Split(raw, ",")
	if len(parts) != count {
		return nil, fmt.Errorf("expected %d comma separated numbers, got %d", count, len(parts))
	}
	values := make([]float64, count)
	for i, part := range parts {
		value, err := strconv.ParseFloat(strings.TrimSpace(part), 64)
		if err != nil || math.IsNaN(value) || math.IsInf(value, 0) {
			return nil, fmt.Errorf("value %q is not a number", part)
		}
		values[i] = value
	}
	return values, nil
}

func validPoint(p orb.Point) bool {
	return p.X() >= -180 && p.X() <= 180 && p.Y() >= -90 && p.Y() <= 90
}
