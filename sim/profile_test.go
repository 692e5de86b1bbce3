package sim

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"govalve/core"
)

func TestProfileValidate(t *testing.T) {
	p := DefaultProfile()
	require.NoError(t, p.Validate())

	p.Motor.TickHz = 0
	require.ErrorIs(t, p.Validate(), core.ErrInvalidConfig)

	p = DefaultProfile()
	p.Valve.Travel = 0
	require.EqualError(t, p.Validate(), "bad profile: 'travel' must be >0")

	p = DefaultProfile()
	p.Valve.PulsesPerTick = 0
	require.EqualError(t, p.Validate(), "bad profile: 'pulses_per_tick' must be >0")

	p = DefaultProfile()
	p.Valve.Start = 301
	require.EqualError(t, p.Validate(), "bad profile: 'start' 301 outside the travel")

	p = DefaultProfile()
	p.Valve.Mounted = false
	p.Valve.Overtravel = 20
	p.Valve.Start = -20
	require.NoError(t, p.Validate())

	p = DefaultProfile()
	p.Steps = append(p.Steps, Step{Action: "wiggle"})
	require.EqualError(t, p.Validate(), `bad profile: step 2: unknown action "wiggle"`)

	p = DefaultProfile()
	p.Steps = []Step{{Action: ActionPercent, Value: 101}}
	require.EqualError(t, p.Validate(), "bad profile: step 0: percent 101 out of range")
}

func TestReadProfile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "valve.yaml")
	data := `
motor:
  stall_timeout_ms: 300
valve:
  travel: 180
  start: 10
  coast: 2
  jam_at: 90
steps:
  - action: calibrate
  - action: seek
    value: 60
`
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))

	p, err := ReadProfile(path)
	require.NoError(t, err)
	require.Equal(t, uint32(300), p.Motor.StallTimeoutMS)
	require.Equal(t, uint32(core.DefaultTickHz), p.Motor.TickHz)
	require.Equal(t, int32(180), p.Valve.Travel)
	require.Equal(t, 2, p.Valve.PulsesPerTick)
	require.NotNil(t, p.Valve.JamAt)
	require.Equal(t, int32(90), *p.Valve.JamAt)
	require.Equal(t, []Step{{Action: ActionCalibrate}, {Action: ActionSeek, Value: 60}}, p.Steps)
}

func TestReadProfileUnknownField(t *testing.T) {
	path := filepath.Join(t.TempDir(), "valve.yaml")
	require.NoError(t, os.WriteFile(path, []byte("valve:\n  color: red\n"), 0o644))

	_, err := ReadProfile(path)
	require.Error(t, err)
}

func TestReadProfileMissing(t *testing.T) {
	_, err := ReadProfile(filepath.Join(t.TempDir(), "nope.yaml"))
	require.ErrorIs(t, err, os.ErrNotExist)
}
