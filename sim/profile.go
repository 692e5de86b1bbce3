package sim

import (
	"fmt"
	"os"

	yaml "gopkg.in/yaml.v2"

	"govalve/core"
)

// Script actions
const (
	ActionCalibrate = "calibrate"
	ActionSeek      = "seek"
	ActionPercent   = "percent"
	ActionJam       = "jam"
	ActionUnjam     = "unjam"
)

// Step is one action of a simulation script
type Step struct {
	Action string `yaml:"action"`
	Value  int32  `yaml:"value"`
}

// Profile represents a simulation we expect to read from file
type Profile struct {
	Motor core.MotorConfig `yaml:"motor"`
	Valve Mechanics        `yaml:"valve"`
	Steps []Step           `yaml:"steps"`
}

// DefaultProfile is a mounted 300 pulse valve that gets calibrated and
// opened half way
func DefaultProfile() *Profile {
	return &Profile{
		Motor: core.DefaultMotorConfig(),
		Valve: Mechanics{
			Travel:        300,
			Start:         150,
			PulsesPerTick: 2,
			Mounted:       true,
		},
		Steps: []Step{
			{Action: ActionCalibrate},
			{Action: ActionPercent, Value: 50},
		},
	}
}

// Validate makes sure the profile describes a runnable simulation
func (p *Profile) Validate() error {
	if err := p.Motor.Validate(); err != nil {
		return fmt.Errorf("bad profile: %w", err)
	}
	v := p.Valve
	if v.Travel <= 0 {
		return fmt.Errorf("bad profile: 'travel' must be >0")
	}
	if v.PulsesPerTick <= 0 {
		return fmt.Errorf("bad profile: 'pulses_per_tick' must be >0")
	}
	if v.Coast < 0 || v.Overtravel < 0 || v.DropEvery < 0 {
		return fmt.Errorf("bad profile: 'coast', 'overtravel' and 'drop_every' must not be negative")
	}
	if v.Start > v.Travel || v.Start < -v.Overtravel || (v.Mounted && v.Start < 0) {
		return fmt.Errorf("bad profile: 'start' %d outside the travel", v.Start)
	}
	for i, s := range p.Steps {
		switch s.Action {
		case ActionCalibrate, ActionSeek, ActionJam, ActionUnjam:
		case ActionPercent:
			if s.Value < 0 || s.Value > 100 {
				return fmt.Errorf("bad profile: step %d: percent %d out of range", i, s.Value)
			}
		default:
			return fmt.Errorf("bad profile: step %d: unknown action %q", i, s.Action)
		}
	}
	return nil
}

// ReadProfile reads a profile and unmarshals it from yaml on top of the defaults
func ReadProfile(path string) (*Profile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	p := DefaultProfile()
	p.Steps = nil
	if err := yaml.UnmarshalStrict(data, p); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return p, p.Validate()
}
