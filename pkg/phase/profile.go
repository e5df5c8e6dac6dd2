package phase

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// AircraftProfile parameterizes phase detection for one aircraft category.
// Profiles are immutable once loaded and swapped wholesale on category
// change.
type AircraftProfile struct {
	// TaxiSpeedMin is the ground speed (kts) below which the aircraft
	// counts as stationary.
	TaxiSpeedMin float64 `yaml:"taxi_speed_min"`
	// TaxiSpeedMax is the upper bound (kts) of normal taxiing.
	TaxiSpeedMax float64 `yaml:"taxi_speed_max"`
	// TakeoffRollSpeed is the speed (kts) beyond which a ground run is a
	// takeoff roll rather than a fast taxi.
	TakeoffRollSpeed float64 `yaml:"takeoff_roll_speed"`
	// RotationSpeed is Vr in knots.
	RotationSpeed float64 `yaml:"rotation_speed"`
	// RotationPitch is the nose-up pitch (degrees) that marks rotation.
	RotationPitch float64 `yaml:"rotation_pitch"`
	// ClimbVS / DescentVS are the smoothed vertical-speed thresholds
	// (ft/min) separating climb and descent from level flight.
	ClimbVS   float64 `yaml:"climb_vs"`
	DescentVS float64 `yaml:"descent_vs"`
	// CruiseVSBand is the |VS| band (ft/min) counted as level cruise.
	CruiseVSBand float64 `yaml:"cruise_vs_band"`
	// Altitude bands (feet AGL).
	InitialClimbAGL float64 `yaml:"initial_climb_agl"`
	ApproachAGL     float64 `yaml:"approach_agl"`
	ShortFinalAGL   float64 `yaml:"short_final_agl"`
	FlareAGL        float64 `yaml:"flare_agl"`
}

// DefaultCategory is the fallback for unrecognized aircraft categories.
const DefaultCategory = "ga"

func builtinProfiles() map[string]AircraftProfile {
	return map[string]AircraftProfile{
		"airliner": {
			TaxiSpeedMin:     2,
			TaxiSpeedMax:     30,
			TakeoffRollSpeed: 45,
			RotationSpeed:    140,
			RotationPitch:    5,
			ClimbVS:          500,
			DescentVS:        -500,
			CruiseVSBand:     300,
			InitialClimbAGL:  1500,
			ApproachAGL:      3000,
			ShortFinalAGL:    1000,
			FlareAGL:         50,
		},
		"turboprop": {
			TaxiSpeedMin:     2,
			TaxiSpeedMax:     25,
			TakeoffRollSpeed: 40,
			RotationSpeed:    95,
			RotationPitch:    6,
			ClimbVS:          400,
			DescentVS:        -400,
			CruiseVSBand:     250,
			InitialClimbAGL:  1200,
			ApproachAGL:      2500,
			ShortFinalAGL:    800,
			FlareAGL:         30,
		},
		"ga": {
			TaxiSpeedMin:     2,
			TaxiSpeedMax:     20,
			TakeoffRollSpeed: 25,
			RotationSpeed:    55,
			RotationPitch:    7,
			ClimbVS:          300,
			DescentVS:        -300,
			CruiseVSBand:     200,
			InitialClimbAGL:  800,
			ApproachAGL:      2000,
			ShortFinalAGL:    500,
			FlareAGL:         20,
		},
	}
}

// ProfileTable resolves aircraft categories to profiles. Read-only after
// construction and safe to share.
type ProfileTable struct {
	profiles map[string]AircraftProfile
	logger   *slog.Logger
}

// DefaultTable returns the built-in profile table.
func DefaultTable() *ProfileTable {
	return &ProfileTable{
		profiles: builtinProfiles(),
		logger:   slog.Default().With("component", "profiles"),
	}
}

// LoadTable reads a YAML profile file and merges it over the built-ins.
// Categories present in the file override or extend the defaults.
func LoadTable(path string) (*ProfileTable, error) {
	t := DefaultTable()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read profiles: %w", err)
	}

	var loaded map[string]AircraftProfile
	if err := yaml.Unmarshal(data, &loaded); err != nil {
		return nil, fmt.Errorf("parse profiles: %w", err)
	}
	for cat, p := range loaded {
		t.profiles[strings.ToLower(cat)] = p
	}
	return t, nil
}

// Get resolves a category name. Unknown categories fall back to the default
// profile with a logged warning, never a hard failure.
func (t *ProfileTable) Get(category string) AircraftProfile {
	key := strings.ToLower(strings.TrimSpace(category))
	if p, ok := t.profiles[key]; ok {
		return p
	}
	t.logger.Warn("unknown aircraft category, using default profile",
		"category", category, "default", DefaultCategory)
	return t.profiles[DefaultCategory]
}

// Categories lists the known category names.
func (t *ProfileTable) Categories() []string {
	out := make([]string, 0, len(t.profiles))
	for k := range t.profiles {
		out = append(out, k)
	}
	return out
}
