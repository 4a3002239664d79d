package x52

import (
	"x52link/hal"
	"x52link/x/mathx"
	"x52link/x/timex"
)

// DefaultPollMicros is the pause between pin reads of a non-busy Waiter.
const DefaultPollMicros = 5

// Waiter is the bounded pin-state poll loop every frame engine is built on.
// Busy is fixed at construction: a busy Waiter re-reads the pin back to back,
// otherwise it sleeps up to PollMicros between reads, which saves power on
// cores where the delay is not itself a spin.
type Waiter struct {
	Clock      hal.Clock
	Busy       bool
	PollMicros uint32
}

// NewWaiter returns a Waiter with the default poll period.
func NewWaiter(clk hal.Clock, busy bool) Waiter {
	return Waiter{Clock: clk, Busy: busy, PollMicros: DefaultPollMicros}
}

// Now reads the clock.
func (w Waiter) Now() uint32 { return w.Clock.Micros() }

// ForPin polls pin until it reads level or deadline passes. The pin is
// sampled once more before giving up, so a level that is already present is
// reported even past the deadline. Returns true if the level was seen.
func (w Waiter) ForPin(pin hal.GPIOPin, level bool, deadline uint32) bool {
	for {
		if pin.Get() == level {
			return true
		}
		left := timex.Remaining(w.Clock.Micros(), deadline)
		if left <= 0 {
			return false
		}
		if !w.Busy {
			w.Clock.SleepMicros(mathx.Min(w.PollMicros, uint32(left)))
		}
	}
}

// Spinning returns a copy of w that never sleeps between reads.
func (w Waiter) Spinning() Waiter {
	w.Busy = true
	return w
}
