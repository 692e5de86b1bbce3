package core

// DriveBackend defines the hardware abstraction for the H-bridge driving the valve motor.
// Implementations can use plain GPIO, a driver chip package or a simulation.
type DriveBackend interface {
	// Drive asserts the single output for dir (Opening or Closing).
	// The opposite output must already be released when it returns.
	Drive(dir Direction)

	// Release deasserts both outputs. Must be safe to call repeatedly
	// and from interrupt context.
	Release()

	// SensePower switches the illumination of the optical shaft sensor.
	// It is only powered while the motor may move.
	SensePower(on bool)
}

// Status is a short progress code shown on the display while calibrating
type Status uint8

const (
	StatusNone       Status = iota
	StatusAdaptOpen         // driving to the open stop
	StatusMount             // waiting for the actuator to be mounted on the valve
	StatusAdaptClose        // driving to the closed stop
	StatusAdaptError        // calibration failed
	StatusAdapted           // calibration done, display back to normal
)

// String returns the four-character display code
func (s Status) String() string {
	switch s {
	case StatusAdaptOpen:
		return " -> "
	case StatusMount:
		return "ADAP"
	case StatusAdaptClose:
		return " <- "
	case StatusAdaptError:
		return "ERR1"
	default:
		return "    "
	}
}

// StatusSink receives advisory progress from the motor core.
// Nothing in the core depends on what the sink does with it.
type StatusSink interface {
	// MotorActive is called when the motor gets powered and when it is disabled
	MotorActive(active bool)

	// ShowStatus is called at each calibration step
	ShowStatus(s Status)
}

type nopStatus struct{}

func (nopStatus) MotorActive(bool) {}

func (nopStatus) ShowStatus(Status) {}
