//go:build !tinygo

package core

import (
	"runtime"
	"sync"
)

// State is a placeholder for interrupt state on regular Go
type State uintptr

// irqLock stands in for the interrupt mask when interrupt sources are
// goroutines (tests, simulator). Handlers and foreground critical sections
// share it, so they never interleave, as on a single-core MCU.
var irqLock sync.Mutex

// disableInterrupts enters a critical section
func disableInterrupts() State {
	irqLock.Lock()
	return 0
}

// restoreInterrupts leaves a critical section
func restoreInterrupts(state State) {
	irqLock.Unlock()
}

// enterISR marks the start of an interrupt handler body
func enterISR() {
	irqLock.Lock()
}

// exitISR marks the end of an interrupt handler body
func exitISR() {
	irqLock.Unlock()
}

// yield gives the goroutines delivering interrupts a chance to run
func yield() {
	runtime.Gosched()
}

// fireMasked runs a tick from thread context. Handlers take the
// interrupt lock themselves.
func fireMasked(d *TickDispatcher) bool {
	return d.Fire()
}
