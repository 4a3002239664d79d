package std

import (
	"x52link/hal"
	"x52link/x/mathx"
	"x52link/x/timex"
	"x52link/x52"
)

// PulseResult is the outcome of waiting for one high-then-low pulse.
type PulseResult uint8

const (
	PulseFinished PulseResult = iota
	PulseStarted              // rose but did not fall before the deadline
	PulseNotStarted
	TooManyPulses // more than one falling edge
)

func (r PulseResult) String() string {
	switch r {
	case PulseFinished:
		return "finished"
	case PulseStarted:
		return "started"
	case PulseNotStarted:
		return "not_started"
	default:
		return "too_many"
	}
}

// PulseWaiter waits for a single full pulse on C04, optionally caused by
// trigger, which runs exactly once before the wait starts.
type PulseWaiter interface {
	Setup() error
	WaitForPulse(deadline uint32, trigger func()) PulseResult
}

// BitBangPulseWaiter watches the pin level: high, then low. It misses pulses
// shorter than its polling latency; prefer InterruptPulseWaiter.
type BitBangPulseWaiter struct {
	pin  hal.GPIOPin
	wait x52.Waiter
}

func NewBitBangPulseWaiter(pin hal.GPIOPin, clk hal.Clock) *BitBangPulseWaiter {
	return &BitBangPulseWaiter{pin: pin, wait: x52.NewWaiter(clk, true)}
}

func (w *BitBangPulseWaiter) Setup() error { return nil }

func (w *BitBangPulseWaiter) WaitForPulse(deadline uint32, trigger func()) PulseResult {
	if trigger != nil {
		trigger()
	}
	if !w.wait.ForPin(w.pin, true, deadline) {
		return PulseNotStarted
	}
	if !w.wait.ForPin(w.pin, false, deadline) {
		return PulseStarted
	}
	return PulseFinished
}

// interruptPollMicros bounds the sleep between counter reads.
const interruptPollMicros = 10

// InterruptPulseWaiter counts falling edges from an interrupt handler, so a
// pulse is seen however short it is and however late the counter is read.
type InterruptPulseWaiter struct {
	pin   hal.IRQPin
	clk   hal.Clock
	busy  bool
	edges hal.EdgeCounter
}

func NewInterruptPulseWaiter(pin hal.IRQPin, clk hal.Clock, busy bool) *InterruptPulseWaiter {
	return &InterruptPulseWaiter{pin: pin, clk: clk, busy: busy}
}

// Setup attaches the falling-edge handler.
func (w *InterruptPulseWaiter) Setup() error {
	return w.edges.Attach(w.pin, hal.EdgeFalling)
}

// Close detaches the handler.
func (w *InterruptPulseWaiter) Close() { w.edges.Detach() }

func (w *InterruptPulseWaiter) WaitForPulse(deadline uint32, trigger func()) PulseResult {
	c0 := w.edges.Count()
	if trigger != nil {
		trigger()
	}
	for {
		if c := w.edges.Count(); c != c0 {
			if c == c0+1 {
				return PulseFinished
			}
			return TooManyPulses
		}
		left := timex.Remaining(w.clk.Micros(), deadline)
		if left <= 0 {
			if w.pin.Get() {
				return PulseStarted
			}
			return PulseNotStarted
		}
		if !w.busy {
			w.clk.SleepMicros(mathx.Min(interruptPollMicros, uint32(left)))
		}
	}
}
