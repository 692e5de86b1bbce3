package core

// Calibrate learns the valve travel by driving to the open stop and then to
// the closed stop. It blocks until both phases finished. On any failure the
// motor is left uncalibrated; retrying is up to the caller.
func (m *Motor) Calibrate() error {
	return m.CalibrateWith(nil)
}

// CalibrateWith is Calibrate with a hook run between the two phases, while
// the actuator is fully retracted. The UI uses it to wait until the user
// mounted the actuator on the valve.
func (m *Motor) CalibrateWith(mounted func()) error {
	state := disableInterrupts()
	m.positionMax.Store(0)
	m.hasTarget.Store(false)
	restoreInterrupts(state)

	m.status.ShowStatus(StatusAdaptOpen)
	if err := m.adaptPhase(Opening, m.cfg.MaxRuntimeOpenTicks()); err != nil {
		return m.adaptFailed(err)
	}
	m.position.Store(0)

	if mounted != nil {
		m.status.ShowStatus(StatusMount)
		mounted()
	}

	m.status.ShowStatus(StatusAdaptClose)
	if err := m.adaptPhase(Closing, m.cfg.MaxRuntimeCloseTicks()); err != nil {
		return m.adaptFailed(err)
	}

	state = disableInterrupts()
	travel := -m.position.Load()
	m.position.Store(0)
	if travel < m.cfg.MinRange {
		// Stopped right away: a spurious stall, not the mechanical limit
		restoreInterrupts(state)
		return m.adaptFailed(&PhaseError{Phase: Closing, Err: ErrRangeTooSmall})
	}
	m.positionMax.Store(travel)
	adapted := m.recordLocked(EvtAdaptOK)
	restoreInterrupts(state)

	m.status.ShowStatus(StatusAdapted)
	DebugPrintln(FormatEvent(adapted))
	return nil
}

// adaptPhase drives in dir until the motor stops at a mechanical limit
func (m *Motor) adaptPhase(dir Direction, limit uint32) error {
	m.start(dir, limit)
	m.waitIdle(limit)
	m.reportRun()
	if m.StopReason() == StopRuntimeExceeded {
		return &PhaseError{Phase: dir, Err: ErrRuntimeExceeded}
	}
	return nil
}

func (m *Motor) adaptFailed(err error) error {
	state := disableInterrupts()
	m.positionMax.Store(0)
	failed := m.recordLocked(EvtAdaptError)
	restoreInterrupts(state)

	m.status.ShowStatus(StatusAdaptError)
	DebugPrintln(FormatEvent(failed))
	DebugPrintln("[MOTOR] adapt error: " + err.Error())
	m.DumpEvents()
	return err
}
