// Package phase turns the telemetry snapshot stream into discrete,
// debounced flight phases and announces transitions to subscribers.
package phase

import (
	"strings"
	"time"
)

// Phase is a discrete stage of a flight. The machine is flat: no sub-states.
type Phase int

const (
	Unknown Phase = iota
	Preflight
	EngineStart
	TaxiOut
	Holding
	TakeoffRoll
	Rotation
	InitialClimb
	Climb
	Cruise
	Descent
	Approach
	ShortFinal
	Flare
	LandingRoll
	TaxiIn
	Shutdown
	Parked
)

var phaseNames = [...]string{
	"unknown",
	"preflight",
	"engine_start",
	"taxi_out",
	"holding",
	"takeoff_roll",
	"rotation",
	"initial_climb",
	"climb",
	"cruise",
	"descent",
	"approach",
	"short_final",
	"flare",
	"landing_roll",
	"taxi_in",
	"shutdown",
	"parked",
}

func (p Phase) String() string {
	if p < 0 || int(p) >= len(phaseNames) {
		return "unknown"
	}
	return phaseNames[p]
}

// MarshalJSON renders the phase as its snake_case name.
func (p Phase) MarshalJSON() ([]byte, error) {
	return []byte(`"` + p.String() + `"`), nil
}

// UnmarshalJSON parses the snake_case name; unrecognized names become
// Unknown.
func (p *Phase) UnmarshalJSON(data []byte) error {
	name := strings.Trim(string(data), `"`)
	*p = Parse(name)
	return nil
}

// Parse resolves a snake_case phase name. Unrecognized names yield Unknown.
func Parse(name string) Phase {
	for i, n := range phaseNames {
		if n == name {
			return Phase(i)
		}
	}
	return Unknown
}

// OnGroundPhase reports whether p is a ground-side phase.
func (p Phase) OnGroundPhase() bool {
	switch p {
	case Preflight, EngineStart, TaxiOut, Holding, TakeoffRoll, Rotation,
		LandingRoll, TaxiIn, Shutdown, Parked:
		return true
	}
	return false
}

// Airborne reports whether p is an air-side phase.
func (p Phase) Airborne() bool {
	switch p {
	case InitialClimb, Climb, Cruise, Descent, Approach, ShortFinal, Flare:
		return true
	}
	return false
}

// PollInterval maps a phase to the sampler's base poll interval. Timing
// criticality rises toward the runway: a parked aircraft tolerates two
// seconds of staleness, a flaring one does not.
func PollInterval(p Phase) time.Duration {
	switch p {
	case Parked, Shutdown, Preflight, EngineStart:
		return 2000 * time.Millisecond
	case TaxiOut, TaxiIn, Holding:
		return 500 * time.Millisecond
	case TakeoffRoll, Rotation:
		return 100 * time.Millisecond
	case InitialClimb, Climb, Descent:
		return 250 * time.Millisecond
	case Cruise:
		return 1000 * time.Millisecond
	case Approach:
		return 100 * time.Millisecond
	case ShortFinal, Flare, LandingRoll:
		return 50 * time.Millisecond
	default: // Unknown
		return 1000 * time.Millisecond
	}
}
