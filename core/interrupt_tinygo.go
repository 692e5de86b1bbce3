//go:build tinygo

package core

import (
	"runtime"
	"runtime/interrupt"
)

// disableInterrupts disables interrupts and returns the previous state
func disableInterrupts() interrupt.State {
	return interrupt.Disable()
}

// restoreInterrupts restores the interrupt state
func restoreInterrupts(state interrupt.State) {
	interrupt.Restore(state)
}

// enterISR is a no-op: hardware handlers already run with the foreground preempted
func enterISR() {}

func exitISR() {}

// yield lets the tick goroutine run; TinyGo's scheduler is cooperative
func yield() {
	runtime.Gosched()
}

// fireMasked runs a tick from thread context as if it were the timer
// interrupt, so pin interrupts cannot split a handler.
func fireMasked(d *TickDispatcher) bool {
	state := interrupt.Disable()
	more := d.Fire()
	interrupt.Restore(state)
	return more
}
