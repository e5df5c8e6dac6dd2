// Package geo provides the great-circle math used for runway reference
// point proximity and heading alignment checks.
package geo

import (
	"math"

	"github.com/paulmach/orb"
	orbgeo "github.com/paulmach/orb/geo"
)

// Point represents a geographic coordinate.
type Point struct {
	Lat float64
	Lon float64
}

func (p Point) orb() orb.Point {
	return orb.Point{p.Lon, p.Lat}
}

// Distance returns the great-circle distance between two points in meters.
func Distance(p1, p2 Point) float64 {
	return orbgeo.DistanceHaversine(p1.orb(), p2.orb())
}

// Bearing returns the initial bearing from p1 to p2 in degrees [0, 360).
func Bearing(p1, p2 Point) float64 {
	return math.Mod(orbgeo.Bearing(p1.orb(), p2.orb())+360.0, 360.0)
}

// NormalizeAngle normalizes an angle difference to the range [-180, 180].
func NormalizeAngle(angleDeg float64) float64 {
	for angleDeg > 180 {
		angleDeg -= 360
	}
	for angleDeg < -180 {
		angleDeg += 360
	}
	return angleDeg
}

// HeadingAligned reports whether heading is within tolDeg of refHeading or
// its reciprocal. Runways are usable in both directions, so an aircraft
// holding short may be lined up either way.
func HeadingAligned(heading, refHeading, tolDeg float64) bool {
	if math.Abs(NormalizeAngle(heading-refHeading)) <= tolDeg {
		return true
	}
	return math.Abs(NormalizeAngle(heading-refHeading-180)) <= tolDeg
}
