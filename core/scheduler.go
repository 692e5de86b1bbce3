package core

import "sync/atomic"

// TickHandler runs on every supervisor tick. It returns true while it
// still needs ticks.
type TickHandler func() bool

// TickDispatcher multiplexes one periodic interrupt onto several handlers.
// The interrupt is released once no handler wants more ticks and armed
// again by whoever needs it next.
type TickDispatcher struct {
	handlers []TickHandler

	// Arm sequence, 0 while disarmed. Fire only disarms if no Arm
	// happened since it sampled the sequence.
	seq   atomic.Uint32
	count atomic.Uint32
	wake  chan struct{}
}

// NewTickDispatcher creates a disarmed dispatcher
func NewTickDispatcher() *TickDispatcher {
	return &TickDispatcher{wake: make(chan struct{}, 1)}
}

// Register adds a handler. Handlers must be registered before the
// first Arm.
func (d *TickDispatcher) Register(h TickHandler) {
	d.handlers = append(d.handlers, h)
}

// Arm (re)starts the tick interrupt. Safe to call from any context.
func (d *TickDispatcher) Arm() {
	for d.seq.Add(1) == 0 {
	}
	select {
	case d.wake <- struct{}{}:
	default:
	}
}

// Armed reports whether ticks are currently wanted
func (d *TickDispatcher) Armed() bool {
	return d.seq.Load() != 0
}

// Fire runs one tick through all handlers. Every handler runs on each
// tick, the results are combined. Returns whether the dispatcher is
// still armed afterwards.
func (d *TickDispatcher) Fire() bool {
	seen := d.seq.Load()
	if seen == 0 {
		return false
	}
	d.count.Add(1)

	want := false
	for _, h := range d.handlers {
		if h() {
			want = true
		}
	}
	if !want {
		d.seq.CompareAndSwap(seen, 0)
	}
	return d.seq.Load() != 0
}

// Wake is signalled by Arm. A stale token is possible; Fire on a
// disarmed dispatcher does nothing.
func (d *TickDispatcher) Wake() <-chan struct{} {
	return d.wake
}

// Count returns the number of ticks fired since creation
func (d *TickDispatcher) Count() uint32 {
	return d.count.Load()
}
