package core

// GPIOPin identifies a hardware GPIO pin number
type GPIOPin uint32

// GPIODriver is the abstract GPIO interface that core code uses.
// Platform-specific implementations handle actual hardware control.
type GPIODriver interface {
	// ConfigureOutput configures a pin as a digital output
	// Returns error if pin is invalid or already in use
	ConfigureOutput(pin GPIOPin) error

	// ConfigureInputPullUp configures a pin as a digital input with pull-up resistor
	ConfigureInputPullUp(pin GPIOPin) error

	// SetPin sets the pin to high (true) or low (false)
	SetPin(pin GPIOPin, value bool) error

	// ReadPin reads the current pin state
	ReadPin(pin GPIOPin) bool
}

// GPIODrive drives the motor H-bridge through two GPIO outputs,
// one per direction, plus the sense LED output.
type GPIODrive struct {
	gpio     GPIODriver
	OpenPin  GPIOPin
	ClosePin GPIOPin
	SensePin GPIOPin // sense LED; the pulse input is wired separately
}

// NewGPIODrive configures the three outputs and leaves them all low
func NewGPIODrive(gpio GPIODriver, openPin, closePin, senseLEDPin GPIOPin) (*GPIODrive, error) {
	d := &GPIODrive{
		gpio:     gpio,
		OpenPin:  openPin,
		ClosePin: closePin,
		SensePin: senseLEDPin,
	}
	for _, pin := range []GPIOPin{openPin, closePin, senseLEDPin} {
		if err := gpio.ConfigureOutput(pin); err != nil {
			return nil, err
		}
		if err := gpio.SetPin(pin, false); err != nil {
			return nil, err
		}
	}
	return d, nil
}

// Drive asserts the output for dir after releasing the other one
func (d *GPIODrive) Drive(dir Direction) {
	switch dir {
	case Opening:
		_ = d.gpio.SetPin(d.ClosePin, false)
		_ = d.gpio.SetPin(d.OpenPin, true)
	case Closing:
		_ = d.gpio.SetPin(d.OpenPin, false)
		_ = d.gpio.SetPin(d.ClosePin, true)
	default:
		d.Release()
	}
}

// Release deasserts both outputs
func (d *GPIODrive) Release() {
	_ = d.gpio.SetPin(d.OpenPin, false)
	_ = d.gpio.SetPin(d.ClosePin, false)
}

// SensePower switches the sense LED
func (d *GPIODrive) SensePower(on bool) {
	_ = d.gpio.SetPin(d.SensePin, on)
}
