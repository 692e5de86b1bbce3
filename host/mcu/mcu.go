package mcu

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"

	log "github.com/sirupsen/logrus"

	"govalve/core"
	"govalve/host/serial"
)

const motorPrefix = "[MOTOR] "

// ParseLine decodes a motor event debug line. ok is false for lines that
// are not motor events (boot messages, free text).
func ParseLine(line string) (e core.MotorEvent, ok bool, err error) {
	if !strings.HasPrefix(line, motorPrefix) {
		return e, false, nil
	}
	fields := strings.Fields(line[len(motorPrefix):])
	if len(fields) == 0 {
		return e, false, nil
	}
	t, known := core.ParseEventType(fields[0])
	if !known {
		return e, false, nil
	}
	e.Type = t

	seen := 0
	for _, f := range fields[1:] {
		key, value, found := strings.Cut(f, "=")
		if !found {
			return e, false, fmt.Errorf("malformed field %q in %q", f, line)
		}
		n, err := strconv.ParseInt(value, 10, 64)
		if err != nil {
			return e, false, fmt.Errorf("bad value for %s in %q: %w", key, line, err)
		}
		switch key {
		case "dir":
			e.Dir = core.Direction(n)
		case "pos":
			e.Position = int32(n)
		case "max":
			e.Max = int32(n)
		case "rt":
			e.Runtime = uint32(n)
		default:
			continue
		}
		seen++
	}
	if seen != 4 {
		return e, false, fmt.Errorf("incomplete event %q", line)
	}
	return e, true, nil
}

// State is what the host knows about the valve from the events seen so far
type State struct {
	Calibrated bool
	Position   int32
	Max        int32
	Direction  core.Direction
	LastEvent  core.EventType
	Stalls     int
	Arrivals   int
	Failures   int
}

// MCU represents a connection to the valve firmware's debug UART
type MCU struct {
	port serial.Port

	mu    sync.Mutex
	state State

	// Connection state
	connected bool
}

// NewMCU creates a new MCU instance (not yet connected)
func NewMCU() *MCU {
	return &MCU{}
}

// Connect opens the debug UART on device
func (m *MCU) Connect(device string, baud int) error {
	cfg := serial.DefaultConfig(device)
	if baud != 0 {
		cfg.Baud = baud
	}
	return m.ConnectWithConfig(cfg)
}

// ConnectWithConfig connects to an MCU with a custom serial config
func (m *MCU) ConnectWithConfig(cfg *serial.Config) error {
	port, err := serial.Open(cfg)
	if err != nil {
		return fmt.Errorf("failed to open serial port: %w", err)
	}
	m.Attach(port)
	return nil
}

// Attach uses an already open port
func (m *MCU) Attach(port serial.Port) {
	m.port = port
	m.connected = true
}

// Close closes the connection to the MCU
func (m *MCU) Close() error {
	if !m.connected {
		return nil
	}
	m.connected = false
	return m.port.Close()
}

// IsConnected returns whether the MCU is connected
func (m *MCU) IsConnected() bool {
	return m.connected
}

// State returns a copy of the tracked valve state
func (m *MCU) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// Monitor reads debug lines until the port closes or ctx is done. Every
// motor event updates the state and is passed to fn, which may be nil.
func (m *MCU) Monitor(ctx context.Context, fn func(core.MotorEvent)) error {
	if !m.connected {
		return fmt.Errorf("not connected to MCU")
	}

	stop := context.AfterFunc(ctx, func() {
		m.port.Close()
	})
	defer stop()

	err := serial.ReadLines(m.port, func(line string) {
		m.HandleLine(line, fn)
	})
	if ctx.Err() != nil {
		return nil
	}
	if err != nil {
		return fmt.Errorf("reading debug output: %w", err)
	}
	return nil
}

// HandleLine processes a single debug line
func (m *MCU) HandleLine(line string, fn func(core.MotorEvent)) {
	e, ok, err := ParseLine(line)
	if err != nil {
		log.Warningf("skipping line: %v", err)
		return
	}
	if !ok {
		if line != "" {
			log.Debug(line)
		}
		return
	}

	m.apply(e)
	log.WithFields(log.Fields{
		"dir": e.Dir,
		"pos": e.Position,
		"max": e.Max,
		"rt":  e.Runtime,
	}).Info(e.Type.String())

	if fn != nil {
		fn(e)
	}
}

func (m *MCU) apply(e core.MotorEvent) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.state.Position = e.Position
	m.state.Direction = e.Dir
	m.state.LastEvent = e.Type
	switch e.Type {
	case core.EvtAdaptOK:
		m.state.Calibrated = true
		m.state.Max = e.Max
	case core.EvtAdaptError:
		m.state.Calibrated = false
		m.state.Max = 0
		m.state.Failures++
	case core.EvtStall:
		m.state.Stalls++
	case core.EvtArrive:
		m.state.Arrivals++
	}
}
