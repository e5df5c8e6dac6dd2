package phase

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestProfileTableGetFallsBack(t *testing.T) {
	tbl := DefaultTable()

	got := tbl.Get("hang_glider")
	require.Equal(t, tbl.Get(DefaultCategory), got)

	// Lookup is case-insensitive.
	require.Equal(t, tbl.Get("airliner"), tbl.Get(" Airliner "))
}

func TestLoadTableMergesOverBuiltins(t *testing.T) {
	path := filepath.Join(t.TempDir(), "profiles.yaml")
	data := `
airliner:
  taxi_speed_min: 3
  taxi_speed_max: 35
  takeoff_roll_speed: 50
  rotation_speed: 155
  rotation_pitch: 6
  climb_vs: 600
  descent_vs: -600
  cruise_vs_band: 350
  initial_climb_agl: 1800
  approach_agl: 3500
  short_final_agl: 1200
  flare_agl: 60
glider:
  taxi_speed_min: 1
  taxi_speed_max: 15
  takeoff_roll_speed: 20
  rotation_speed: 40
  rotation_pitch: 4
  climb_vs: 200
  descent_vs: -200
  cruise_vs_band: 150
  initial_climb_agl: 500
  approach_agl: 1500
  short_final_agl: 400
  flare_agl: 15
`
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))

	tbl, err := LoadTable(path)
	require.NoError(t, err)

	// Overridden category.
	require.Equal(t, 155.0, tbl.Get("airliner").RotationSpeed)
	// New category.
	require.Equal(t, 40.0, tbl.Get("glider").RotationSpeed)
	// Untouched built-in survives the merge.
	require.Equal(t, 55.0, tbl.Get("ga").RotationSpeed)
}

func TestLoadTableErrors(t *testing.T) {
	_, err := LoadTable(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)

	bad := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("[not a map"), 0o644))
	_, err = LoadTable(bad)
	require.Error(t, err)
}
