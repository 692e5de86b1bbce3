//go:build rp2040

package main

import (
	"machine"

	"tinygo.org/x/drivers/l9110x"

	"govalve/core"
	"govalve/targets/pio"
)

// L9110Drive drives the valve motor through an L9110S H-bridge.
// The chip never has both inputs high when driven through Forward/Backward.
type L9110Drive struct {
	bridge   l9110x.Device
	senseLED machine.Pin
}

// NewL9110Drive configures the bridge inputs and the sense LED, all off
func NewL9110Drive(ia, ib, senseLED machine.Pin) *L9110Drive {
	d := &L9110Drive{
		bridge:   l9110x.New(ia, ib),
		senseLED: senseLED,
	}
	d.bridge.Configure()
	d.bridge.Stop()
	d.senseLED.Configure(machine.PinConfig{Mode: machine.PinOutput})
	d.senseLED.Low()
	return d
}

// Drive implements core.DriveBackend
func (d *L9110Drive) Drive(dir core.Direction) {
	switch dir {
	case core.Opening:
		d.bridge.Forward()
	case core.Closing:
		d.bridge.Backward()
	default:
		d.bridge.Stop()
	}
}

// Release implements core.DriveBackend
func (d *L9110Drive) Release() {
	d.bridge.Stop()
}

// SensePower implements core.DriveBackend
func (d *L9110Drive) SensePower(on bool) {
	d.senseLED.Set(on)
}

// benchDrive feeds the sense input from a PIO emulator instead of a
// gearbox: every drive request produces benchTravel pulses, then the
// "motor" stalls like at a mechanical stop.
type benchDrive struct {
	core.DriveBackend
	emu *pio.SenseEmulator
}

const benchTravel = 240

func (b *benchDrive) Drive(dir core.Direction) {
	b.DriveBackend.Drive(dir)
	b.emu.Emit(benchTravel / 2) // two edges per emulated pulse
}

func (b *benchDrive) Release() {
	b.DriveBackend.Release()
	b.emu.Stop()
}
