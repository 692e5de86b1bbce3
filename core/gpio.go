// Pin change demultiplexing
// One interrupt per GPIO port; the handler works out which pins changed.
package core

// PinChangeHandler is called with the new level of a changed pin
type PinChangeHandler func(level bool)

// PinChangeDemux dispatches a port-wide pin change interrupt to per-pin
// handlers. It must only be updated from the interrupt.
type PinChangeDemux struct {
	last     uint8
	handlers [8]PinChangeHandler
}

// Handle installs h for bit (0-7). A nil h removes the handler.
func (p *PinChangeDemux) Handle(bit uint8, h PinChangeHandler) {
	if bit > 7 {
		return
	}
	p.handlers[bit] = h
}

// Prime sets the reference level without dispatching
func (p *PinChangeDemux) Prime(port uint8) {
	p.last = port
}

// Update takes the current port level and calls the handler of every
// pin that differs from the previous level.
func (p *PinChangeDemux) Update(port uint8) {
	changed := port ^ p.last
	p.last = port
	for bit := uint8(0); changed != 0; bit++ {
		mask := uint8(1) << bit
		if changed&mask == 0 {
			continue
		}
		changed &^= mask
		if h := p.handlers[bit]; h != nil {
			h(port&mask != 0)
		}
	}
}
