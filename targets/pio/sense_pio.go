//go:build rp2040

package pio

// PIO sense pulse emulator using tinygo-org/pio package
// Generates the square wave the optical shaft sensor would produce, for
// running the firmware on a bench without a gearbox attached.

import (
	"machine"
	"time"

	rp2pio "github.com/tinygo-org/pio/rp2-pio"
)

// PIO program for sense pulse generation
// Command word: pulse count minus one
//
// Program flow:
//  1. Pull 32-bit command from FIFO into X
//  2. High for 16 cycles, low for 16 cycles, X+1 times
//
// buildSenseProgram creates the emulator PIO program using AssemblerV0
func buildSenseProgram() []uint16 {
	asm := rp2pio.AssemblerV0{SidesetBits: 0}
	return []uint16{
		// .wrap_target
		asm.Pull(false, true).Encode(),        // 0: pull block
		asm.Out(rp2pio.OutDestX, 32).Encode(), // 1: out x, 32 (pulse count - 1)
		// pulse_loop:
		asm.Set(rp2pio.SetDestPins, 1).Delay(15).Encode(), // 2: set pins, 1 [15]
		asm.Set(rp2pio.SetDestPins, 0).Delay(15).Encode(), // 3: set pins, 0 [15]
		asm.Jmp(2, rp2pio.JmpXNZeroDec).Encode(),          // 4: jmp x--, 2
		// .wrap
	}
}

const (
	senseOrigin         = 0  // Load at offset 0 for correct jump addresses
	senseCyclesPerPulse = 33 // two 16 cycle halves plus the jmp
)

// SenseEmulator drives a pin like the shaft sensor output
type SenseEmulator struct {
	pio    *rp2pio.PIO
	sm     rp2pio.StateMachine
	pin    machine.Pin
	offset uint8
}

// NewSenseEmulator creates an emulator on a PIO state machine
// pioNum: 0 for PIO0, 1 for PIO1
// smNum: 0-3 for state machine number
func NewSenseEmulator(pioNum, smNum uint8) *SenseEmulator {
	var pioHW *rp2pio.PIO
	if pioNum == 0 {
		pioHW = rp2pio.PIO0
	} else {
		pioHW = rp2pio.PIO1
	}

	return &SenseEmulator{
		pio: pioHW,
		sm:  pioHW.StateMachine(smNum),
	}
}

// Init loads the program and configures pin to pulse at pulsesPerSecond
func (e *SenseEmulator) Init(pin uint8, pulsesPerSecond uint32) error {
	e.pin = machine.Pin(pin)
	if pulsesPerSecond == 0 {
		pulsesPerSecond = 1
	}

	// Claim the state machine first
	e.sm.TryClaim()

	program := buildSenseProgram()
	offset, err := e.pio.AddProgram(program, senseOrigin)
	if err != nil {
		return err
	}
	e.offset = offset

	e.pin.Configure(machine.PinConfig{Mode: e.pio.PinMode()})

	cfg := rp2pio.DefaultStateMachineConfig()
	cfg.SetSetPins(e.pin, 1)
	// Shift right, explicit PULL, 32-bit threshold
	cfg.SetOutShift(true, false, 32)
	cfg.SetWrap(offset+uint8(len(program))-1, offset)

	cycle := time.Second / time.Duration(pulsesPerSecond) / senseCyclesPerPulse
	whole, frac, err := rp2pio.ClkDivFromPeriod(uint32(cycle), machine.CPUFrequency())
	if err != nil {
		return err
	}
	cfg.SetClkDivIntFrac(whole, frac)

	e.sm.Init(offset, cfg)

	// Pin direction after Init
	e.sm.SetPindirsConsecutive(e.pin, 1, true)
	e.sm.SetPinsConsecutive(e.pin, 1, false)

	e.sm.SetEnabled(true)
	return nil
}

// Emit queues count pulses. Each pulse gives two edges on the pin.
func (e *SenseEmulator) Emit(count uint16) {
	if count == 0 {
		return
	}
	for e.sm.IsTxFIFOFull() {
		// Busy wait
	}
	e.sm.TxPut(uint32(count) - 1)
}

// Stop drops queued pulses and leaves the pin low
func (e *SenseEmulator) Stop() {
	asm := rp2pio.AssemblerV0{SidesetBits: 0}
	e.sm.SetEnabled(false)
	e.sm.ClearFIFOs()
	e.sm.Restart()
	e.sm.ClkDivRestart()
	e.sm.Exec(asm.Jmp(e.offset, rp2pio.JmpAlways).Encode())
	e.sm.SetPinsConsecutive(e.pin, 1, false)
	e.sm.SetEnabled(true)
}
