package sim

import (
	"context"
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"govalve/core"
)

func newTestHarness(t *testing.T, mutate func(p *Profile), opts ...Option) *Harness {
	t.Helper()
	p := DefaultProfile()
	if mutate != nil {
		mutate(p)
	}
	h, err := NewHarness(p, opts...)
	require.NoError(t, err)
	return h
}

func TestDefaultScript(t *testing.T) {
	h := newTestHarness(t, nil)
	results, err := h.RunScript(context.Background(), DefaultProfile().Steps)
	require.NoError(t, err)
	require.Len(t, results, 2)

	require.NoError(t, results[0].Err)
	require.Equal(t, int32(300), results[0].Max)
	require.Equal(t, int32(0), results[0].Position)

	require.NoError(t, results[1].Err)
	require.Equal(t, int32(150), results[1].Position)
	require.Equal(t, int32(150), results[1].Physical)
	require.Equal(t, uint8(50), h.Motor.Openness())

	dir, sense := h.Valve.Outputs()
	require.Equal(t, core.Disabled, dir)
	require.False(t, sense)
	require.Zero(t, h.Valve.Overlaps())
	require.Greater(t, h.Elapsed(), time.Duration(0))
}

func TestCalibrateDetached(t *testing.T) {
	h := newTestHarness(t, func(p *Profile) {
		p.Valve.Mounted = false
		p.Valve.Overtravel = 50
	})

	// Without the mount pause the pin runs out to its own limit
	err := h.Run(context.Background(), func(_ context.Context, m *core.Motor) error {
		return m.Calibrate()
	})
	require.NoError(t, err)
	require.Equal(t, int32(350), h.Motor.PositionMax())

	results, err := h.RunScript(context.Background(), []Step{{Action: ActionCalibrate}})
	require.NoError(t, err)
	require.NoError(t, results[0].Err)
	require.Equal(t, int32(300), results[0].Max)
}

func TestCoastingPulsesCounted(t *testing.T) {
	h := newTestHarness(t, func(p *Profile) {
		p.Valve.Coast = 4
	})
	results, err := h.RunScript(context.Background(), []Step{
		{Action: ActionCalibrate},
		{Action: ActionSeek, Value: 100},
		{Action: ActionSeek, Value: 40},
	})
	require.NoError(t, err)
	for _, r := range results {
		require.NoError(t, r.Err, r.Step.Action)
		assert.Equal(t, r.Physical, r.Position, "position lost sync after %s %d", r.Step.Action, r.Step.Value)
	}
	assert.Equal(t, int32(104), results[1].Position)
	assert.Equal(t, int32(36), results[2].Position)
}

func TestJamStallsSeek(t *testing.T) {
	h := newTestHarness(t, nil)
	results, err := h.RunScript(context.Background(), []Step{
		{Action: ActionCalibrate},
		{Action: ActionSeek, Value: 100},
		{Action: ActionJam},
		{Action: ActionSeek, Value: 250},
		{Action: ActionUnjam},
		{Action: ActionSeek, Value: 250},
	})
	require.NoError(t, err)

	require.ErrorIs(t, results[3].Err, core.ErrStallTimeout)
	require.Equal(t, int32(100), results[3].Position)
	require.Equal(t, core.Disabled, h.Motor.Direction())

	require.NoError(t, results[5].Err)
	require.Equal(t, int32(250), results[5].Position)
}

func TestJammedCalibration(t *testing.T) {
	jam := int32(120)
	h := newTestHarness(t, func(p *Profile) {
		p.Valve.JamAt = &jam
		p.Valve.Start = 100
	})
	results, err := h.RunScript(context.Background(), []Step{
		{Action: ActionCalibrate},
		{Action: ActionPercent, Value: 20},
	})
	require.NoError(t, err)
	require.ErrorIs(t, results[0].Err, core.ErrRangeTooSmall)
	require.ErrorIs(t, results[1].Err, core.ErrNotCalibrated)
	require.False(t, h.Motor.IsCalibrated())
}

func TestDroppedPulsesShrinkRange(t *testing.T) {
	h := newTestHarness(t, func(p *Profile) {
		p.Valve.DropEvery = 10
	})
	results, err := h.RunScript(context.Background(), []Step{{Action: ActionCalibrate}})
	require.NoError(t, err)
	require.NoError(t, results[0].Err)
	require.Less(t, results[0].Max, int32(300))
	require.Greater(t, results[0].Max, int32(250))
}

func TestRealtimePacing(t *testing.T) {
	h := newTestHarness(t, func(p *Profile) {
		p.Motor.TickHz = 1000
		p.Valve.Start = 300
	}, WithClock(clock.New()))

	start := time.Now()
	results, err := h.RunScript(context.Background(), []Step{{Action: ActionCalibrate}})
	require.NoError(t, err)
	require.NoError(t, results[0].Err)
	// 150 ticks closing alone take 150 ms at 1 kHz
	require.GreaterOrEqual(t, time.Since(start), 150*time.Millisecond)
}

func TestRunScriptCancelled(t *testing.T) {
	h := newTestHarness(t, nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	results, err := h.RunScript(ctx, DefaultProfile().Steps)
	require.ErrorIs(t, err, context.Canceled)
	require.Empty(t, results)
}

type statusLog struct {
	shown []core.Status
}

func (s *statusLog) MotorActive(bool) {}

func (s *statusLog) ShowStatus(st core.Status) {
	s.shown = append(s.shown, st)
}

func TestStatusSequence(t *testing.T) {
	status := &statusLog{}
	h := newTestHarness(t, nil, WithStatus(status))
	_, err := h.RunScript(context.Background(), []Step{{Action: ActionCalibrate}})
	require.NoError(t, err)
	require.Equal(t, []core.Status{
		core.StatusAdaptOpen, core.StatusMount, core.StatusAdaptClose, core.StatusAdapted,
	}, status.shown)
}
