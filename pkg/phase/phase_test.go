package phase

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestPhaseString(t *testing.T) {
	require.Equal(t, "takeoff_roll", TakeoffRoll.String())
	require.Equal(t, "short_final", ShortFinal.String())
	require.Equal(t, "unknown", Unknown.String())
	require.Equal(t, "unknown", Phase(99).String())
}

func TestPhaseMarshalJSON(t *testing.T) {
	b, err := json.Marshal(Flare)
	require.NoError(t, err)
	require.Equal(t, `"flare"`, string(b))
}

func TestPhaseParse(t *testing.T) {
	require.Equal(t, TakeoffRoll, Parse("takeoff_roll"))
	require.Equal(t, Unknown, Parse("warp_drive"))

	var p Phase
	require.NoError(t, json.Unmarshal([]byte(`"initial_climb"`), &p))
	require.Equal(t, InitialClimb, p)
}

func TestPhasePartition(t *testing.T) {
	// Every phase except Unknown is exactly one of ground or air.
	for p := Preflight; p <= Parked; p++ {
		require.NotEqual(t, p.OnGroundPhase(), p.Airborne(), "phase %s", p)
	}
	require.False(t, Unknown.OnGroundPhase())
	require.False(t, Unknown.Airborne())
}

func TestPollIntervalTightensTowardRunway(t *testing.T) {
	require.Equal(t, 2*time.Second, PollInterval(Parked))
	require.Equal(t, 50*time.Millisecond, PollInterval(Flare))
	require.Less(t, PollInterval(ShortFinal), PollInterval(Approach))
	require.Less(t, PollInterval(Approach), PollInterval(Cruise))
	require.Less(t, PollInterval(TakeoffRoll), PollInterval(TaxiOut))

	// The default for Unknown keeps the sampler at a sane baseline.
	require.Equal(t, time.Second, PollInterval(Unknown))
}
