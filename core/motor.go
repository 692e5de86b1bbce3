package core

// Valve motor control.
// Position comes only from the shaft sense pulses; the motor is stopped by
// the tick supervisor on stall, runtime bound or target arrival.

import (
	"sync/atomic"
)

// Direction is the drive direction of the valve motor.
// Its value is what a sense pulse adds to the position.
type Direction int8

const (
	Disabled Direction = 0  // motor unpowered
	Opening  Direction = 1  // retracting the pin, position counts up
	Closing  Direction = -1 // pushing the pin onto the valve seat, position counts down
)

// String returns the direction name
func (d Direction) String() string {
	switch d {
	case Opening:
		return "open"
	case Closing:
		return "close"
	default:
		return "disabled"
	}
}

// StopReason records why the drive was released
type StopReason uint8

const (
	StopNone            StopReason = iota // not stopped since the last enable
	StopArrived                           // target reached or passed
	StopStalled                           // no pulse within the stall threshold
	StopRuntimeExceeded                   // runtime bound exceeded
	StopForced                            // released by the foreground
)

// String returns the reason name
func (r StopReason) String() string {
	switch r {
	case StopArrived:
		return "arrived"
	case StopStalled:
		return "stalled"
	case StopRuntimeExceeded:
		return "runtime exceeded"
	case StopForced:
		return "forced"
	default:
		return "none"
	}
}

// TickSource is the periodic interrupt feeding Motor.Tick.
// Arm re-enables it after it was released because nothing wanted ticks.
type TickSource interface {
	Arm()
}

// MotorState is a consistent copy of the motor fields
type MotorState struct {
	Direction      Direction
	Driving        bool
	Position       int32
	PositionMax    int32
	PositionTarget int32
	TimeoutTicks   uint32
	RuntimeTicks   uint32
	StopReason     StopReason
}

// Motor owns the state shared between the foreground and the two
// interrupt handlers (Pulse and Tick).
//
// Every field is word sized and atomic, so single reads never tear.
// Multi-field updates from the foreground happen with interrupts disabled.
type Motor struct {
	cfg        MotorConfig
	stallTicks uint32
	backend    DriveBackend
	ticks      TickSource
	status     StatusSink

	direction      atomic.Int32 // Direction
	driving        atomic.Bool  // a drive output is asserted
	position       atomic.Int32
	positionMax    atomic.Int32 // 0 until calibrated
	positionTarget atomic.Int32
	hasTarget      atomic.Bool
	timeoutTicks   atomic.Uint32 // ticks since the last pulse
	runtimeTicks   atomic.Uint32 // ticks since enable while not disabled
	runtimeLimit   atomic.Uint32 // 0 = unbounded
	stopReason     atomic.Uint32 // StopReason

	events eventRing
}

// NewMotor creates a disabled, uncalibrated motor
func NewMotor(cfg MotorConfig, backend DriveBackend, ticks TickSource) (*Motor, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	m := &Motor{
		cfg:        cfg,
		stallTicks: cfg.StallTicks(),
		backend:    backend,
		ticks:      ticks,
		status:     nopStatus{},
	}
	backend.Release()
	backend.SensePower(false)
	return m, nil
}

// SetStatusSink attaches the display or LED that shows motor activity
func (m *Motor) SetStatusSink(s StatusSink) {
	if s == nil {
		s = nopStatus{}
	}
	m.status = s
}

// Config returns the limits the motor was created with
func (m *Motor) Config() MotorConfig {
	return m.cfg
}

// Enable starts driving in dir. Calling it again for the direction
// already being driven does nothing.
func (m *Motor) Enable(dir Direction) {
	m.start(dir, 0)
}

// start enables the drive with an optional runtime bound enforced by Tick
func (m *Motor) start(dir Direction, runtimeLimit uint32) {
	if dir != Opening && dir != Closing {
		return
	}

	state := disableInterrupts()
	if Direction(m.direction.Load()) == dir && m.driving.Load() {
		restoreInterrupts(state)
		return
	}
	// Never have both outputs on, not even for an instant
	m.backend.Release()
	m.direction.Store(int32(dir))
	m.timeoutTicks.Store(0)
	m.runtimeTicks.Store(0)
	m.runtimeLimit.Store(runtimeLimit)
	m.stopReason.Store(uint32(StopNone))
	m.backend.SensePower(true)
	m.backend.Drive(dir)
	m.driving.Store(true)
	enabled := m.recordLocked(EvtEnable)
	restoreInterrupts(state)

	DebugPrintln(FormatEvent(enabled))
	m.status.MotorActive(true)
	m.ticks.Arm()
}

// Disable releases the drive and powers the motor down.
// Safe to call repeatedly.
func (m *Motor) Disable() {
	state := disableInterrupts()
	wasEnabled := m.disableLocked()
	restoreInterrupts(state)

	if wasEnabled {
		m.status.MotorActive(false)
	}
}

// Stop releases the drive but keeps counting pulses until the stall
// timeout disables the motor, so pulses from the coasting motor are not lost.
func (m *Motor) Stop() {
	state := disableInterrupts()
	m.stopLocked(StopForced)
	restoreInterrupts(state)
}

// stopLocked releases the outputs; direction is kept on purpose
func (m *Motor) stopLocked(reason StopReason) {
	if !m.driving.Load() {
		return
	}
	m.backend.Release()
	m.driving.Store(false)
	m.stopReason.Store(uint32(reason))

	switch reason {
	case StopArrived:
		m.recordLocked(EvtArrive)
	case StopStalled:
		m.recordLocked(EvtStall)
	case StopRuntimeExceeded:
		m.recordLocked(EvtRuntime)
	default:
		m.recordLocked(EvtStop)
	}
}

// disableLocked reports whether the motor was enabled before
func (m *Motor) disableLocked() bool {
	m.backend.Release()
	m.driving.Store(false)
	m.backend.SensePower(false)
	if Direction(m.direction.Swap(int32(Disabled))) == Disabled {
		return false
	}
	m.recordLocked(EvtDisable)
	return true
}

// Pulse is the sense pin edge handler.
// It is the only writer of the position while the motor can move.
func (m *Motor) Pulse() {
	enterISR()
	m.position.Add(m.direction.Load())
	m.timeoutTicks.Store(0)
	exitISR()
}

// Tick is the periodic supervisor handler. It returns true while the motor
// still needs ticks; the tick source may be released once it returns false.
func (m *Motor) Tick() bool {
	enterISR()
	defer exitISR()

	// Also expires after an intentional stop once the motor stopped
	// coasting, and disables the driver in that case.
	if m.timeoutTicks.Add(1) > m.stallTicks {
		m.stopLocked(StopStalled)
		if m.disableLocked() {
			m.status.MotorActive(false)
		}
	}

	dir := Direction(m.direction.Load())
	if dir != Disabled {
		runtime := m.runtimeTicks.Add(1)
		if limit := m.runtimeLimit.Load(); limit != 0 && runtime > limit {
			m.stopLocked(StopRuntimeExceeded)
		}
	}

	if m.positionMax.Load() != 0 && m.hasTarget.Load() {
		// A fast motor may skip over the exact target between two ticks,
		// so compare with >= / <= rather than equality.
		position := m.position.Load()
		target := m.positionTarget.Load()
		switch dir {
		case Opening:
			if position >= target {
				m.stopLocked(StopArrived)
			}
		case Closing:
			if position <= target {
				m.stopLocked(StopArrived)
			}
		}
	}

	return Direction(m.direction.Load()) != Disabled
}

// recordLocked appends an event; interrupts must be disabled
func (m *Motor) recordLocked(t EventType) MotorEvent {
	e := MotorEvent{
		Type:     t,
		Dir:      Direction(m.direction.Load()),
		Position: m.position.Load(),
		Max:      m.positionMax.Load(),
		Runtime:  m.runtimeTicks.Load(),
	}
	m.events.record(e)
	return e
}

func (m *Motor) record(t EventType) MotorEvent {
	state := disableInterrupts()
	e := m.recordLocked(t)
	restoreInterrupts(state)
	return e
}

// Position returns the current step count relative to the closed stop
func (m *Motor) Position() int32 {
	return m.position.Load()
}

// PositionMax returns the calibrated travel, 0 when not calibrated
func (m *Motor) PositionMax() int32 {
	return m.positionMax.Load()
}

// IsCalibrated reports whether a calibration succeeded
func (m *Motor) IsCalibrated() bool {
	return m.positionMax.Load() != 0
}

// Direction returns the current direction, Disabled when idle
func (m *Motor) Direction() Direction {
	return Direction(m.direction.Load())
}

// Running reports whether the motor is powered
func (m *Motor) Running() bool {
	return m.direction.Load() != int32(Disabled)
}

// Driving reports whether a drive output is asserted
func (m *Motor) Driving() bool {
	return m.driving.Load()
}

// StopReason returns why the drive was last released
func (m *Motor) StopReason() StopReason {
	return StopReason(m.stopReason.Load())
}

// Snapshot returns all fields read in one critical section
func (m *Motor) Snapshot() MotorState {
	state := disableInterrupts()
	s := MotorState{
		Direction:      Direction(m.direction.Load()),
		Driving:        m.driving.Load(),
		Position:       m.position.Load(),
		PositionMax:    m.positionMax.Load(),
		PositionTarget: m.positionTarget.Load(),
		TimeoutTicks:   m.timeoutTicks.Load(),
		RuntimeTicks:   m.runtimeTicks.Load(),
		StopReason:     StopReason(m.stopReason.Load()),
	}
	restoreInterrupts(state)
	return s
}

// Openness returns how far the valve is open in percent of the calibrated range
func (m *Motor) Openness() uint8 {
	s := m.Snapshot()
	if s.PositionMax <= 0 {
		return 0
	}
	pos := s.Position
	if pos < 0 {
		pos = 0
	}
	if pos > s.PositionMax {
		pos = s.PositionMax
	}
	return uint8(int64(pos) * 100 / int64(s.PositionMax))
}

// waitIdle busy-waits until the motor is disabled. With a non-zero limit it
// also releases the drive once the runtime passes it. Every exit of this
// loop comes from a state change made by Tick.
func (m *Motor) waitIdle(limit uint32) {
	reportEvery := m.cfg.TickHz
	nextReport := reportEvery
	for m.Running() {
		runtime := m.runtimeTicks.Load()
		if limit != 0 && runtime > limit && m.driving.Load() {
			state := disableInterrupts()
			m.stopLocked(StopRuntimeExceeded)
			restoreInterrupts(state)
		}
		if runtime >= nextReport {
			nextReport = runtime + reportEvery
			if debugEnabled {
				DebugPrintln(FormatEvent(m.record(EvtWait)))
			}
		}
		yield()
	}
}
