//go:build rp2040

package main

import (
	"machine"
	"sync/atomic"
	"time"

	"govalve/core"
	"govalve/targets/pio"
)

// Pin assignment (Raspberry Pi Pico)
const (
	pinBridgeA  = machine.GPIO2 // L9110S IA, high opens
	pinBridgeB  = machine.GPIO3 // L9110S IB, high closes
	pinSense    = machine.GPIO4 // optical shaft sensor output
	pinSenseLED = machine.GPIO5 // sensor illumination
	pinButton   = machine.GPIO6 // "actuator mounted" button, active low
	pinBenchOut = machine.GPIO7 // PIO emulator output, wire to pinSense on the bench
)

// Bits on the pin change port
const (
	bitSense  = 0
	bitButton = 1
)

const (
	// Set to drive the bridge with plain GPIO instead of the l9110x driver
	useGPIODrive = false

	// Set on a bench board without a gearbox
	benchLoopback = false
)

var (
	motor   *core.Motor
	ticks   *core.TickDispatcher
	demux   core.PinChangeDemux
	pressed atomic.Bool
)

// ledStatus shows motor activity on the board LED and the calibration
// progress on the debug UART
type ledStatus struct{}

func (ledStatus) MotorActive(active bool) {
	machine.LED.Set(active)
}

func (ledStatus) ShowStatus(s core.Status) {
	core.DebugPrintln("[DISP] " + s.String())
}

func main() {
	// Disable watchdog on boot to clear any previous state
	err := machine.Watchdog.Configure(machine.WatchdogConfig{TimeoutMillis: 0})
	if err != nil {
		return
	}

	InitDebugUART()
	machine.LED.Configure(machine.PinConfig{Mode: machine.PinOutput})

	backend, err := newBackend()
	if err != nil {
		core.DebugPrintln("drive init failed: " + err.Error())
		return
	}

	ticks = core.NewTickDispatcher()
	motor, err = core.NewMotor(core.DefaultMotorConfig(), backend, ticks)
	if err != nil {
		core.DebugPrintln("motor init failed: " + err.Error())
		return
	}
	motor.SetStatusSink(ledStatus{})
	ticks.Register(motor.Tick)
	go core.TickLoop(ticks, core.TickPeriod(motor.Config().TickHz))

	initPinChange()

	// Keep trying until the valve is adapted; each attempt is bounded
	for {
		if err := motor.CalibrateWith(waitMounted); err == nil {
			break
		}
		time.Sleep(2 * time.Second)
	}
	if err := motor.SeekPercent(50); err != nil {
		core.DebugPrintln("seek failed: " + err.Error())
	}

	var con console
	for {
		if line, ok := con.poll(); ok {
			runCommand(motor, line, waitMounted)
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func newBackend() (core.DriveBackend, error) {
	var backend core.DriveBackend
	if useGPIODrive {
		d, err := core.NewGPIODrive(NewRPGPIODriver(),
			core.GPIOPin(pinBridgeA), core.GPIOPin(pinBridgeB), core.GPIOPin(pinSenseLED))
		if err != nil {
			return nil, err
		}
		backend = d
	} else {
		backend = NewL9110Drive(pinBridgeA, pinBridgeB, pinSenseLED)
	}

	if benchLoopback {
		emu := pio.NewSenseEmulatorOnFreePIO()
		if emu == nil {
			return nil, errNoPIO
		}
		if err := emu.Init(uint8(pinBenchOut), 60); err != nil {
			return nil, err
		}
		backend = &benchDrive{DriveBackend: backend, emu: emu}
	}
	return backend, nil
}

// initPinChange routes the sense and button edges through one handler
func initPinChange() {
	pinSense.Configure(machine.PinConfig{Mode: machine.PinInputPullup})
	pinButton.Configure(machine.PinConfig{Mode: machine.PinInputPullup})

	demux.Handle(bitSense, func(bool) {
		motor.Pulse()
	})
	demux.Handle(bitButton, func(level bool) {
		if !level {
			pressed.Store(true)
		}
	})
	demux.Prime(readPort())

	onChange := func(machine.Pin) {
		demux.Update(readPort())
	}
	pinSense.SetInterrupt(machine.PinToggle, onChange)
	pinButton.SetInterrupt(machine.PinToggle, onChange)
}

func readPort() uint8 {
	var port uint8
	if pinSense.Get() {
		port |= 1 << bitSense
	}
	if pinButton.Get() {
		port |= 1 << bitButton
	}
	return port
}

// waitMounted blocks until the button confirms the actuator sits on the valve
func waitMounted() {
	pressed.Store(false)
	for !pressed.Load() {
		time.Sleep(20 * time.Millisecond)
	}
}
