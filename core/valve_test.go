package core

import (
	"sync"
	"testing"
)

// fakeBridge records the output state of the H-bridge
type fakeBridge struct {
	mu       sync.Mutex
	dir      Direction
	sense    bool
	drives   int
	overlaps int // Drive called while the other output was still on
}

func (b *fakeBridge) Drive(dir Direction) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.dir != Disabled && b.dir != dir {
		b.overlaps++
	}
	b.dir = dir
	b.drives++
}

func (b *fakeBridge) Release() {
	b.mu.Lock()
	b.dir = Disabled
	b.mu.Unlock()
}

func (b *fakeBridge) SensePower(on bool) {
	b.mu.Lock()
	b.sense = on
	b.mu.Unlock()
}

func (b *fakeBridge) outputs() (Direction, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.dir, b.sense
}

// countingTicks is a tick source nobody fires
type countingTicks struct {
	mu   sync.Mutex
	arms int
}

func (c *countingTicks) Arm() {
	c.mu.Lock()
	c.arms++
	c.mu.Unlock()
}

// testValve is a minimal mechanical model: the pin moves speed pulses per
// tick between 0 and travel while driven and the sense LED is on.
type testValve struct {
	mu     sync.Mutex
	pos    int32
	travel int32
	speed  int
	jamAt  int32 // stops moving when reaching this position, -1 for none
}

func (v *testValve) setSpeed(speed int) {
	v.mu.Lock()
	v.speed = speed
	v.mu.Unlock()
}

func (v *testValve) step(m *Motor, b *fakeBridge) {
	dir, sense := b.outputs()
	if dir == Disabled {
		return
	}
	v.mu.Lock()
	defer v.mu.Unlock()
	for i := 0; i < v.speed; i++ {
		next := v.pos + int32(dir)
		if next < 0 || next > v.travel || v.pos == v.jamAt {
			return
		}
		v.pos = next
		if sense {
			m.Pulse()
		}
	}
}

type testRig struct {
	motor  *Motor
	bridge *fakeBridge
	valve  *testValve
	ticks  *TickDispatcher
	done   chan struct{}
	wg     sync.WaitGroup
}

// newTestRig wires a motor to a valve and runs the tick interrupt in a
// goroutine without any delay between ticks.
func newTestRig(t *testing.T, cfg MotorConfig, valve *testValve) *testRig {
	t.Helper()
	r := &testRig{
		bridge: &fakeBridge{},
		valve:  valve,
		ticks:  NewTickDispatcher(),
		done:   make(chan struct{}),
	}
	m, err := NewMotor(cfg, r.bridge, r.ticks)
	if err != nil {
		t.Fatalf("NewMotor failed: %v", err)
	}
	r.motor = m
	r.ticks.Register(m.Tick)

	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		for {
			select {
			case <-r.done:
				return
			case <-r.ticks.Wake():
			}
			for {
				r.valve.step(r.motor, r.bridge)
				if !r.ticks.Fire() {
					break
				}
			}
		}
	}()
	t.Cleanup(func() {
		close(r.done)
		r.wg.Wait()
	})
	return r
}

func newValve(pos, travel int32, speed int) *testValve {
	return &testValve{pos: pos, travel: travel, speed: speed, jamAt: -1}
}

func (r *testRig) assertIdle(t *testing.T) {
	t.Helper()
	if dir := r.motor.Direction(); dir != Disabled {
		t.Errorf("Expected motor disabled, got %v", dir)
	}
	dir, sense := r.bridge.outputs()
	if dir != Disabled {
		t.Errorf("Expected both outputs released, got %v driven", dir)
	}
	if sense {
		t.Errorf("Expected sense LED off")
	}
	r.bridge.mu.Lock()
	overlaps := r.bridge.overlaps
	r.bridge.mu.Unlock()
	if overlaps != 0 {
		t.Errorf("Both outputs were on at once %d times", overlaps)
	}
}
