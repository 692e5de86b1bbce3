// Package sim runs the motor core against a simulated valve actuator.
package sim

import (
	"sync"

	"govalve/core"
)

// Mechanics describes the simulated actuator and valve. Positions are in
// sense pulses measured from the valve seat.
type Mechanics struct {
	Travel        int32  `yaml:"travel"`          // seat to fully retracted pin
	Start         int32  `yaml:"start"`           // pin position at power up
	PulsesPerTick int    `yaml:"pulses_per_tick"` // motor speed while driven
	Coast         int    `yaml:"coast"`           // pulses after the drive is released
	Overtravel    int32  `yaml:"overtravel"`      // extra extension while not mounted on a valve
	Mounted       bool   `yaml:"mounted"`
	JamAt         *int32 `yaml:"jam_at"`     // pin gets stuck here
	DropEvery     int    `yaml:"drop_every"` // sensor misses every n-th slot, 0 for never
}

// Valve is the plant: it implements core.DriveBackend and produces sense
// pulses for the time the motor is driven.
type Valve struct {
	mu sync.Mutex
	m  Mechanics

	pos      int32
	drive    core.Direction
	lastDir  core.Direction
	coasting int
	sense    bool
	mounted  bool
	jammed   bool
	slots    int

	drives   int
	overlaps int
}

// NewValve creates a valve at its start position
func NewValve(m Mechanics) *Valve {
	v := &Valve{m: m, pos: m.Start, mounted: m.Mounted}
	if m.JamAt != nil {
		v.jammed = true
	}
	return v
}

// Drive implements core.DriveBackend
func (v *Valve) Drive(dir core.Direction) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.drive != core.Disabled && v.drive != dir {
		v.overlaps++
	}
	v.drive = dir
	v.lastDir = dir
	v.coasting = 0
	v.drives++
}

// Release implements core.DriveBackend
func (v *Valve) Release() {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.drive != core.Disabled {
		v.coasting = v.m.Coast
	}
	v.drive = core.Disabled
}

// SensePower implements core.DriveBackend
func (v *Valve) SensePower(on bool) {
	v.mu.Lock()
	v.sense = on
	v.mu.Unlock()
}

// Mount puts the actuator onto the valve body
func (v *Valve) Mount() {
	v.mu.Lock()
	v.mounted = true
	if v.pos < 0 {
		v.pos = 0
	}
	v.mu.Unlock()
}

// Jam makes the pin stick at its current position until Unjam
func (v *Valve) Jam() {
	v.mu.Lock()
	at := v.pos
	v.m.JamAt = &at
	v.jammed = true
	v.mu.Unlock()
}

// Unjam frees the pin
func (v *Valve) Unjam() {
	v.mu.Lock()
	v.jammed = false
	v.m.JamAt = nil
	v.mu.Unlock()
}

func (v *Valve) lowerStop() int32 {
	if v.mounted {
		return 0
	}
	return -v.m.Overtravel
}

// Step advances the mechanics by one tick and returns the number of
// sense pulses the sensor saw.
func (v *Valve) Step() int {
	v.mu.Lock()
	defer v.mu.Unlock()

	dir := v.drive
	moves := v.m.PulsesPerTick
	if dir == core.Disabled {
		if v.coasting == 0 {
			return 0
		}
		dir = v.lastDir
		moves = v.coasting
		if moves > v.m.PulsesPerTick {
			moves = v.m.PulsesPerTick
		}
		v.coasting -= moves
	}

	seen := 0
	for i := 0; i < moves; i++ {
		if v.jammed && v.m.JamAt != nil && v.pos == *v.m.JamAt {
			break
		}
		next := v.pos + int32(dir)
		if next < v.lowerStop() || next > v.m.Travel {
			v.coasting = 0
			break
		}
		v.pos = next
		v.slots++
		if !v.sense {
			continue
		}
		if v.m.DropEvery > 0 && v.slots%v.m.DropEvery == 0 {
			continue
		}
		seen++
	}
	return seen
}

// Position returns the physical pin position
func (v *Valve) Position() int32 {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.pos
}

// Outputs returns the driven direction and the sense LED state
func (v *Valve) Outputs() (core.Direction, bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.drive, v.sense
}

// Overlaps counts drive requests that found the other output still on
func (v *Valve) Overlaps() int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.overlaps
}

// Drives counts how often the motor was driven
func (v *Valve) Drives() int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.drives
}
