package sim

// Canonical variable names. Providers map these onto whatever their
// simulator calls them (SimConnect simvars, X-Plane datarefs, script keys).
//
// Raw unit contract: altitudes in feet, ground speed and vertical speed in
// ft/s where the source allows it, angles in degrees or radians. The
// sampler's normalizer converts these to engineering units (knots, ft/min,
// degrees) using magnitude heuristics, since not every source flags units.
const (
	VarLatitude      = "latitude"
	VarLongitude     = "longitude"
	VarAltitudeMSL   = "altitude_msl"
	VarAltitudeAGL   = "altitude_agl"
	VarVerticalSpeed = "vertical_speed"
	VarPitch         = "pitch"
	VarBank          = "bank"
	VarHeadingTrue   = "heading_true"
	VarIndicatedAS   = "indicated_airspeed"
	VarTrueAS        = "true_airspeed"
	VarGroundSpeed   = "ground_speed"

	VarGearDown     = "gear_down"
	VarFlapsPct     = "flaps_pct"
	VarThrottlePct  = "throttle_pct"
	VarSpoilersPct  = "spoilers_pct"
	VarParkingBrake = "parking_brake"
	VarEngineOn     = "engine_running"

	VarBeaconLight  = "light_beacon"
	VarLandingLight = "light_landing"
	VarTaxiLight    = "light_taxi"

	VarOnGround  = "on_ground"
	VarInParking = "in_parking"
	VarSimRate   = "sim_rate"
	VarAbsTime   = "absolute_time"

	VarStallWarning = "stall_warning"
	VarOverspeed    = "overspeed_warning"
	VarGForce       = "g_force"
	VarIcingPct     = "icing_pct"

	VarPayloadWeight = "payload_weight"
	VarFuelTotal     = "fuel_total"

	VarAircraftTitle    = "aircraft_title"
	VarAircraftCategory = "aircraft_category"
)

// CriticalVars are fetched every sampling cycle.
var CriticalVars = []string{
	VarLatitude, VarLongitude,
	VarAltitudeMSL, VarAltitudeAGL, VarVerticalSpeed, VarPitch, VarBank,
	VarHeadingTrue, VarIndicatedAS, VarTrueAS, VarGroundSpeed,
	VarGearDown, VarFlapsPct, VarThrottlePct, VarSpoilersPct,
	VarParkingBrake, VarEngineOn,
	VarBeaconLight, VarLandingLight, VarTaxiLight,
	VarOnGround, VarInParking, VarSimRate, VarAbsTime,
	VarStallWarning, VarOverspeed, VarGForce, VarIcingPct,
}

// PayloadVars change slowly and are fetched on their own 5s timer.
var PayloadVars = []string{VarPayloadWeight, VarFuelTotal}

// IdentityVars are effectively static and fetched on a 30s timer.
var IdentityVars = []string{VarAircraftTitle, VarAircraftCategory}
