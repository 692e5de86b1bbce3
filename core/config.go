package core

// Defaults for the valve actuator motor. A tick is one call of the
// supervisor, driven by the 64 Hz time base.
const (
	DefaultTickHz           = 64
	DefaultStallTimeoutMS   = 200 // no pulse for this long means the motor is blocked
	DefaultMaxRuntimeOpenS  = 20
	DefaultMaxRuntimeCloseS = 15
	DefaultMinRange         = 70 // narrowest plausible valve travel in pulses
)

// MotorConfig holds the timing and range limits of the motor core
type MotorConfig struct {
	TickHz           uint32 `yaml:"tick_hz"`
	StallTimeoutMS   uint32 `yaml:"stall_timeout_ms"`
	MaxRuntimeOpenS  uint32 `yaml:"max_runtime_open_s"`
	MaxRuntimeCloseS uint32 `yaml:"max_runtime_close_s"`
	MinRange         int32  `yaml:"min_range"`
}

// DefaultMotorConfig returns the limits used by the stock actuator
func DefaultMotorConfig() MotorConfig {
	return MotorConfig{
		TickHz:           DefaultTickHz,
		StallTimeoutMS:   DefaultStallTimeoutMS,
		MaxRuntimeOpenS:  DefaultMaxRuntimeOpenS,
		MaxRuntimeCloseS: DefaultMaxRuntimeCloseS,
		MinRange:         DefaultMinRange,
	}
}

// Validate checks that every limit is usable
func (c MotorConfig) Validate() error {
	switch {
	case c.TickHz == 0:
		return configError("tick_hz must be positive")
	case c.StallTimeoutMS == 0:
		return configError("stall_timeout_ms must be positive")
	case c.MaxRuntimeOpenS == 0:
		return configError("max_runtime_open_s must be positive")
	case c.MaxRuntimeCloseS == 0:
		return configError("max_runtime_close_s must be positive")
	case c.MinRange <= 0:
		return configError("min_range must be positive")
	case uint64(c.TickHz)*uint64(c.MaxRuntimeOpenS) > 1<<31,
		uint64(c.TickHz)*uint64(c.MaxRuntimeCloseS) > 1<<31:
		return configError("max runtime too long for tick_hz")
	}
	return nil
}

// StallTicks is the number of ticks without a pulse after which the motor
// is considered blocked
func (c MotorConfig) StallTicks() uint32 {
	return uint32(uint64(c.TickHz)*uint64(c.StallTimeoutMS)/1000) + 1
}

// MaxRuntimeOpenTicks bounds the open phase of calibration
func (c MotorConfig) MaxRuntimeOpenTicks() uint32 {
	return c.TickHz * c.MaxRuntimeOpenS
}

// MaxRuntimeCloseTicks bounds the close phase of calibration
func (c MotorConfig) MaxRuntimeCloseTicks() uint32 {
	return c.TickHz * c.MaxRuntimeCloseS
}
