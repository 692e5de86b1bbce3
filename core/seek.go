package core

// Seek drives the valve to target and blocks until the motor is disabled
// again. target is clamped into [0, PositionMax]. It returns
// ErrStallTimeout when the motor stopped before reaching the target; the
// position it got to is still available from Position.
func (m *Motor) Seek(target int32) error {
	max := m.positionMax.Load()
	if max == 0 {
		return ErrNotCalibrated
	}
	target = Clamp(target, max)

	position := m.position.Load()
	if target == position {
		return nil
	}
	dir := Opening
	if target < position {
		dir = Closing
	}

	// Target first: the supervisor may compare against it right after enable
	m.positionTarget.Store(target)
	m.hasTarget.Store(true)
	m.start(dir, 0)
	m.waitIdle(0)
	m.reportRun()

	if m.StopReason() != StopArrived {
		return ErrStallTimeout
	}
	return nil
}

// SeekPercent drives the valve to the given openness in percent
func (m *Motor) SeekPercent(percent uint8) error {
	max := m.positionMax.Load()
	if max == 0 {
		return ErrNotCalibrated
	}
	if percent > 100 {
		percent = 100
	}
	return m.Seek(int32(int64(max) * int64(percent) / 100))
}

// Clamp limits position to the calibrated range [0, max]
func Clamp(position, max int32) int32 {
	if position < 0 {
		return 0
	}
	if position > max {
		return max
	}
	return position
}
