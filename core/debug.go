package core

// DebugWriter is a function type for writing debug messages
type DebugWriter func(string)

// EventType identifies a motor event kept in the event ring
type EventType uint8

// Event type codes
const (
	EvtEnable     EventType = 1 // drive asserted
	EvtStop       EventType = 2 // drive released, still counting coasting pulses
	EvtDisable    EventType = 3 // motor powered down
	EvtStall      EventType = 4 // no pulse within the stall threshold while driving
	EvtRuntime    EventType = 5 // runtime bound exceeded
	EvtArrive     EventType = 6 // target position reached or passed
	EvtAdaptOK    EventType = 7 // calibration succeeded, Max holds the range
	EvtAdaptError EventType = 8 // calibration failed
	EvtWait       EventType = 9 // periodic position report while waiting
)

var eventNames = [...]string{
	EvtEnable:     "ENABLE",
	EvtStop:       "STOP",
	EvtDisable:    "DISABLE",
	EvtStall:      "STALL",
	EvtRuntime:    "RUNTIME",
	EvtArrive:     "ARRIVE",
	EvtAdaptOK:    "ADAPT_OK",
	EvtAdaptError: "ADAPT_ERR",
	EvtWait:       "WAIT",
}

// String returns the name used in debug lines
func (t EventType) String() string {
	if int(t) < len(eventNames) && eventNames[t] != "" {
		return eventNames[t]
	}
	return "UNKNOWN"
}

// ParseEventType looks up an event type by its debug line name
func ParseEventType(name string) (EventType, bool) {
	for t, n := range eventNames {
		if n != "" && n == name {
			return EventType(t), true
		}
	}
	return 0, false
}

// MotorEvent captures the motor state at an event for post-mortem analysis
type MotorEvent struct {
	Type     EventType
	Dir      Direction
	Position int32
	Max      int32
	Runtime  uint32 // runtime ticks at the event
}

const (
	EventRingSize = 32 // Keep last 32 events for post-mortem
)

// eventRing must only be written with interrupts disabled or from a handler
type eventRing struct {
	events [EventRingSize]MotorEvent
	head   uint8
}

func (r *eventRing) record(e MotorEvent) {
	r.events[r.head] = e
	r.head = (r.head + 1) % EventRingSize
}

// ordered returns the recorded events from oldest to newest
func (r *eventRing) ordered() []MotorEvent {
	out := make([]MotorEvent, 0, EventRingSize)
	for i := uint8(0); i < EventRingSize; i++ {
		e := r.events[(r.head+i)%EventRingSize]
		if e.Type == 0 {
			continue // Empty slot
		}
		out = append(out, e)
	}
	return out
}

var (
	// debugPrintln is the global debug print function (can be set by platform code)
	debugPrintln DebugWriter = func(s string) {} // No-op by default

	// debugEnabled controls whether debug output is active
	debugEnabled bool = false

	// Async debug output channel
	debugChan chan string
)

// SetDebugWriter sets the platform-specific debug output function
// This allows platforms to redirect debug output to UART, USB, etc.
func SetDebugWriter(writer DebugWriter) {
	debugPrintln = writer
}

// SetDebugEnabled enables or disables debug output
func SetDebugEnabled(enabled bool) {
	debugEnabled = enabled
}

// IsDebugEnabled returns whether debug output is enabled
func IsDebugEnabled() bool {
	return debugEnabled
}

// InitAsyncDebug starts the async debug output goroutine
// Call this from main() after SetDebugWriter
func InitAsyncDebug() {
	debugChan = make(chan string, 16)
	go debugOutputWorker()
}

func debugOutputWorker() {
	for msg := range debugChan {
		if debugPrintln != nil {
			debugPrintln(msg)
		}
	}
}

// DebugPrintln writes a debug message using the platform-specific writer.
// Goes through the async worker when it is running, so a slow UART never
// holds up the busy-wait loops.
func DebugPrintln(msg string) {
	if !debugEnabled || debugPrintln == nil {
		return
	}
	if debugChan != nil {
		select {
		case debugChan <- msg:
		default:
			// Channel full, drop message
		}
		return
	}
	debugPrintln(msg)
}

// FormatEvent renders an event as a debug line:
//
//	[MOTOR] STALL dir=1 pos=-212 max=0 rt=410
func FormatEvent(e MotorEvent) string {
	return formatEvent("[MOTOR] ", e)
}

func formatEvent(prefix string, e MotorEvent) string {
	return prefix + e.Type.String() +
		" dir=" + itoa(int32(e.Dir)) +
		" pos=" + itoa(e.Position) +
		" max=" + itoa(e.Max) +
		" rt=" + utoa(e.Runtime)
}

// Events returns a copy of the event ring, oldest first
func (m *Motor) Events() []MotorEvent {
	state := disableInterrupts()
	events := m.events.ordered()
	restoreInterrupts(state)
	return events
}

// DumpEvents writes the event ring to the debug writer
// (call after a calibration failure or on shutdown). The lines carry a
// [DUMP] prefix so a monitor does not take old events for new ones.
func (m *Motor) DumpEvents() {
	for _, e := range m.Events() {
		DebugPrintln(formatEvent("[DUMP] ", e))
	}
}

// reportRun prints how the last run ended: the event that released the
// drive and the disable with the position after coasting.
// The interrupt handlers only write the ring, so this runs after waitIdle.
func (m *Motor) reportRun() {
	if !debugEnabled {
		return
	}
	for _, e := range m.lastRun() {
		DebugPrintln(FormatEvent(e))
	}
}

// lastRun returns the events recorded since the newest enable, oldest
// first, leaving out the periodic reports
func (m *Motor) lastRun() []MotorEvent {
	state := disableInterrupts()
	defer restoreInterrupts(state)

	var run []MotorEvent
	for i := 1; i <= EventRingSize; i++ {
		e := m.events.events[(int(m.events.head)+EventRingSize-i)%EventRingSize]
		if e.Type == 0 || e.Type == EvtEnable {
			break
		}
		if e.Type != EvtWait {
			run = append(run, e)
		}
	}
	for i, j := 0, len(run)-1; i < j; i, j = i+1, j-1 {
		run[i], run[j] = run[j], run[i]
	}
	return run
}

// ClearEvents empties the event ring
func (m *Motor) ClearEvents() {
	state := disableInterrupts()
	m.events = eventRing{}
	restoreInterrupts(state)
}
