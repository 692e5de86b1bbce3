package core

import "errors"

var (
	// ErrStallTimeout means no sense pulse arrived within the stall threshold
	// before the commanded position was reached
	ErrStallTimeout = errors.New("motor stalled")

	// ErrRuntimeExceeded means a calibration phase ran past its time bound
	ErrRuntimeExceeded = errors.New("motor runtime exceeded")

	// ErrRangeTooSmall means the discovered travel is below the minimum range
	ErrRangeTooSmall = errors.New("valve range too small")

	// ErrNotCalibrated is returned by Seek before a calibration succeeded
	ErrNotCalibrated = errors.New("valve not calibrated")

	// ErrInvalidConfig wraps every MotorConfig validation failure
	ErrInvalidConfig = errors.New("invalid motor config")
)

// PhaseError reports which calibration phase failed
type PhaseError struct {
	Phase Direction
	Err   error
}

func (e *PhaseError) Error() string {
	return "calibration " + e.Phase.String() + ": " + e.Err.Error()
}

func (e *PhaseError) Unwrap() error {
	return e.Err
}

type configErr string

func (e configErr) Error() string {
	return ErrInvalidConfig.Error() + ": " + string(e)
}

func (e configErr) Is(target error) bool {
	return target == ErrInvalidConfig
}

func configError(msg string) error {
	return configErr(msg)
}
