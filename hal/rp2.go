//go:build rp2040 || rp2350

package hal

import (
	"machine"
	"time"

	"x52link/x/timex"
)

// DefaultPinFactory returns a GPIO factory that maps logical numbers directly
// to machine.Pin(n). This matches Pico/Pico 2 GP numbering.
func DefaultPinFactory() PinFactory { return rp2PinFactory{} }

type rp2PinFactory struct{}

func (rp2PinFactory) ByNumber(n int) (GPIOPin, bool) {
	// Constrain to RP2's user GPIOs (GP0..GP28).
	if n < 0 || n > 28 {
		return nil, false
	}
	return &rp2Pin{p: machine.Pin(n), n: n}, true
}

// rp2Pin implements IRQPin on top of machine.Pin.
type rp2Pin struct {
	p machine.Pin
	n int
}

func (r *rp2Pin) ConfigureInput(pull Pull) error {
	var mode machine.PinMode
	switch pull {
	case PullUp:
		mode = machine.PinInputPullup
	case PullDown:
		mode = machine.PinInputPulldown
	default:
		mode = machine.PinInput
	}
	r.p.Configure(machine.PinConfig{Mode: mode})
	return nil
}

// The level is written after Configure: some ports ignore writes to a pin
// that is not an output yet.
func (r *rp2Pin) ConfigureOutput(initial bool) error {
	r.p.Configure(machine.PinConfig{Mode: machine.PinOutput})
	r.p.Set(initial)
	return nil
}

func (r *rp2Pin) Set(level bool) { r.p.Set(level) }
func (r *rp2Pin) Get() bool      { return r.p.Get() }
func (r *rp2Pin) Number() int    { return r.n }

func (r *rp2Pin) SetIRQ(edge Edge, handler func()) error {
	return r.p.SetInterrupt(toPinChange(edge), func(machine.Pin) { handler() })
}

func (r *rp2Pin) ClearIRQ() error {
	var zero machine.PinChange
	return r.p.SetInterrupt(zero, nil)
}

func toPinChange(e Edge) machine.PinChange {
	switch e {
	case EdgeRising:
		return machine.PinRising
	case EdgeFalling:
		return machine.PinFalling
	case EdgeBoth:
		return machine.PinToggle
	default:
		var zero machine.PinChange
		return zero
	}
}

// MCUClock reads the runtime's monotonic clock. SleepMicros spins, like an
// Arduino delayMicroseconds: the scheduler cannot resume a sleeping
// goroutine with microsecond accuracy.
type MCUClock struct{ boot time.Time }

func NewMCUClock() *MCUClock { return &MCUClock{boot: time.Now()} }

func (c *MCUClock) Micros() uint32 { return uint32(time.Since(c.boot).Microseconds()) }

func (c *MCUClock) SleepMicros(us uint32) {
	dl := timex.After(c.Micros(), us)
	for !timex.Reached(c.Micros(), dl) {
	}
}
