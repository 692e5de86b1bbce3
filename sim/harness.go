package sim

import (
	"context"
	"fmt"
	"time"

	"github.com/benbjohnson/clock"
	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"govalve/core"
)

// senseBit is the pin of the sense input on the simulated port
const senseBit = 3

// Harness wires a Motor to a simulated Valve. A goroutine plays the
// interrupt controller: each tick it delivers the sense edges for the
// mechanics moved, then fires the tick dispatcher.
type Harness struct {
	Motor *core.Motor
	Valve *Valve

	ticks  *core.TickDispatcher
	demux  core.PinChangeDemux
	port   uint8
	period time.Duration
	clock  clock.Clock
}

// Option configures a Harness
type Option func(*Harness)

// WithClock paces ticks on c instead of running in virtual time
func WithClock(c clock.Clock) Option {
	return func(h *Harness) {
		h.clock = c
	}
}

// WithStatus attaches a status sink to the motor
func WithStatus(s core.StatusSink) Option {
	return func(h *Harness) {
		h.Motor.SetStatusSink(s)
	}
}

// NewHarness builds the motor and valve described by p
func NewHarness(p *Profile, opts ...Option) (*Harness, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	h := &Harness{
		Valve:  NewValve(p.Valve),
		ticks:  core.NewTickDispatcher(),
		period: core.TickPeriod(p.Motor.TickHz),
	}
	m, err := core.NewMotor(p.Motor, h.Valve, h.ticks)
	if err != nil {
		return nil, err
	}
	h.Motor = m
	h.ticks.Register(m.Tick)
	h.demux.Handle(senseBit, func(bool) { m.Pulse() })

	for _, opt := range opts {
		opt(h)
	}
	return h, nil
}

// Elapsed returns the simulated time passed while the motor was ticking
func (h *Harness) Elapsed() time.Duration {
	return time.Duration(h.ticks.Count()) * h.period
}

// Run calls fn with interrupts being delivered and returns once fn
// returned. Ticks keep running after ctx is cancelled until fn returns,
// since the motor core blocks without them.
func (h *Harness) Run(ctx context.Context, fn func(ctx context.Context, m *core.Motor) error) error {
	done := make(chan struct{})
	eg, ctx := errgroup.WithContext(ctx)
	eg.Go(func() error {
		return h.interrupts(ctx, done)
	})
	eg.Go(func() error {
		defer close(done)
		return fn(ctx, h.Motor)
	})
	return eg.Wait()
}

func (h *Harness) interrupts(ctx context.Context, done <-chan struct{}) error {
	for {
		select {
		case <-done:
			return nil
		case <-h.ticks.Wake():
		}
		for {
			if h.clock != nil && ctx.Err() == nil {
				h.clock.Sleep(h.period)
			}
			for i := h.Valve.Step(); i > 0; i-- {
				h.port ^= 1 << senseBit
				h.demux.Update(h.port)
			}
			if !h.ticks.Fire() {
				break
			}
		}
	}
}

// StepResult reports the outcome of one script step
type StepResult struct {
	Step     Step
	Err      error
	Position int32
	Max      int32
	Physical int32
	Elapsed  time.Duration
}

// RunScript executes steps in order. Motor errors are reported in the
// results and do not abort the script; a cancelled ctx does.
func (h *Harness) RunScript(ctx context.Context, steps []Step) ([]StepResult, error) {
	var results []StepResult
	err := h.Run(ctx, func(ctx context.Context, m *core.Motor) error {
		for _, s := range steps {
			if err := ctx.Err(); err != nil {
				return err
			}
			start := h.Elapsed()
			r := StepResult{Step: s, Err: h.apply(s)}
			r.Position = m.Position()
			r.Max = m.PositionMax()
			r.Physical = h.Valve.Position()
			r.Elapsed = h.Elapsed() - start
			log.WithFields(log.Fields{
				"action":   s.Action,
				"value":    s.Value,
				"position": r.Position,
				"max":      r.Max,
				"physical": r.Physical,
				"elapsed":  r.Elapsed,
			}).Debug("step done")
			results = append(results, r)
		}
		return nil
	})
	return results, err
}

func (h *Harness) apply(s Step) error {
	switch s.Action {
	case ActionCalibrate:
		return h.Motor.CalibrateWith(h.Valve.Mount)
	case ActionSeek:
		return h.Motor.Seek(s.Value)
	case ActionPercent:
		return h.Motor.SeekPercent(uint8(s.Value))
	case ActionJam:
		h.Valve.Jam()
		return nil
	case ActionUnjam:
		h.Valve.Unjam()
		return nil
	}
	return fmt.Errorf("unknown action %q", s.Action)
}
