// Package telemetry acquires simulator state and publishes immutable,
// unit-normalized snapshots for every downstream consumer.
package telemetry

import "time"

// Snapshot is one fully normalized capture of all tracked telemetry fields.
// A published Snapshot is never mutated; each sampling cycle produces a new
// instance. Value semantics make it cheap to hand to consumers.
type Snapshot struct {
	// Position
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`

	// Vertical state
	AltitudeMSL   float64 `json:"altitudeMSL"` // feet
	AltitudeAGL   float64 `json:"altitudeAGL"` // feet
	VerticalSpeed float64 `json:"verticalSpeed"` // ft/min
	Pitch         float64 `json:"pitch"`         // degrees, nose-up positive
	Bank          float64 `json:"bank"`          // degrees

	// Horizontal state
	Heading          float64 `json:"heading"` // degrees true
	IndicatedAirspeed float64 `json:"indicatedAirspeed"` // knots
	TrueAirspeed      float64 `json:"trueAirspeed"`      // knots
	GroundSpeed       float64 `json:"groundSpeed"`       // knots

	// Configuration
	GearDown     bool    `json:"gearDown"`
	FlapsPct     float64 `json:"flapsPct"`
	ThrottlePct  float64 `json:"throttlePct"`
	SpoilersPct  float64 `json:"spoilersPct"`
	ParkingBrake bool    `json:"parkingBrake"`
	EngineOn     bool    `json:"engineOn"`

	// Lights
	BeaconLight  bool `json:"beaconLight"`
	LandingLight bool `json:"landingLight"`
	TaxiLight    bool `json:"taxiLight"`

	// Simulation meta
	OnGround     bool    `json:"onGround"`
	InParking    bool    `json:"inParking"`
	SimRate      float64 `json:"simRate"`
	AbsoluteTime float64 `json:"absoluteTime"` // seconds of sim clock
	SimRunning   bool    `json:"simRunning"`

	// Safety
	StallWarning bool    `json:"stallWarning"`
	Overspeed    bool    `json:"overspeed"`
	GForce       float64 `json:"gForce"`
	IcingPct     float64 `json:"icingPct"`

	// Slow groups
	PayloadWeight    float64 `json:"payloadWeight"` // lbs
	FuelTotal        float64 `json:"fuelTotal"`     // lbs
	AircraftTitle    string  `json:"aircraftTitle"`
	AircraftCategory string  `json:"aircraftCategory"`

	// CapturedAt is the monotonic capture timestamp of this cycle.
	CapturedAt time.Time `json:"capturedAt"`
}

// Empty returns the documented zero snapshot published before the first
// sampling cycle completes: everything zeroed and SimRunning false.
func Empty() Snapshot {
	return Snapshot{}
}
