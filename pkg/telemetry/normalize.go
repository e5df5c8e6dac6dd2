package telemetry

import "math"

// Unit heuristics. The provider does not flag which unit a numeric field
// arrived in, so normalization guesses from the value's magnitude. A wrong
// guess degrades phase detection gracefully; it must never fail.

// NormalizeVerticalSpeed converts a vertical speed to ft/min. Values with
// magnitude below 200 are assumed to be ft/s and multiplied by 60; a real
// ft/min reading below 200 stays near-level either way.
func NormalizeVerticalSpeed(v float64) (float64, bool) {
	if v != 0 && math.Abs(v) < 200 {
		return v * 60, true
	}
	return v, false
}

// NormalizeAngle converts an angle to degrees. Values within [-2π, 2π] are
// assumed to be radians. Small genuine degree values (a 3° pitch) are
// indistinguishable from radians; the heuristic is documented best-effort.
func NormalizeAngle(v float64) (float64, bool) {
	if v != 0 && v >= -2*math.Pi && v <= 2*math.Pi {
		return v * 180 / math.Pi, true
	}
	return v, false
}

// NormalizeGroundSpeed converts a ground speed to knots. Nonzero values with
// magnitude below 1000 that look like ft/s are scaled by 0.592484.
// Providers known to deliver knots directly should bypass this.
func NormalizeGroundSpeed(v float64) (float64, bool) {
	if v != 0 && math.Abs(v) < 1000 {
		return v * 0.592484, true
	}
	return v, false
}

// NormalizeHeading wraps a heading in degrees into [0, 360).
func NormalizeHeading(v float64) float64 {
	v = math.Mod(v, 360)
	if v < 0 {
		v += 360
	}
	return v
}
