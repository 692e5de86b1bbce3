package core

import "time"

// TickPeriod returns the supervisor tick interval for the given rate
func TickPeriod(hz uint32) time.Duration {
	if hz == 0 {
		hz = DefaultTickHz
	}
	return time.Second / time.Duration(hz)
}

// TicksToMS converts supervisor ticks to milliseconds
func TicksToMS(ticks, hz uint32) uint32 {
	if hz == 0 {
		return 0
	}
	return uint32(uint64(ticks) * 1000 / uint64(hz))
}

// TickLoop drives d from a sleeping loop, for targets without a
// dedicated timer interrupt. It parks while the dispatcher is disarmed
// and never returns.
func TickLoop(d *TickDispatcher, period time.Duration) {
	for {
		<-d.Wake()
		for {
			time.Sleep(period)
			if !fireMasked(d) {
				break
			}
		}
	}
}
