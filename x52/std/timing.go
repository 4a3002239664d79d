package std

import (
	"x52link/hal"
	"x52link/x52"
)

const (
	DefaultPollWaitMicros = 100000
	DefaultSendWaitMicros = 100000
)

// Timing holds the protocol time limits in microseconds.
type Timing struct {
	// Not measured on a real throttle; only has to be long enough to recover
	// from a rare clock desync.
	ThrottleTimeout uint32
	// Hardcoded in the stock X52 joystick firmware.
	JoystickTimeout      uint32
	ThrottleUnresponsive uint32
	JoystickUnresponsive uint32
	// Widths of the two unacknowledged C04 pulses a ThrottleClient emits.
	// A real joystick uses at least these.
	FirstPulse  uint32
	SecondPulse uint32
}

func DefaultTiming() Timing {
	return Timing{
		ThrottleTimeout:      15000,
		JoystickTimeout:      40000,
		ThrottleUnresponsive: 3000,
		JoystickUnresponsive: 1000,
		FirstPulse:           15,
		SecondPulse:          50,
	}
}

func (t Timing) withDefaults() Timing {
	d := DefaultTiming()
	if t.ThrottleTimeout == 0 {
		t.ThrottleTimeout = d.ThrottleTimeout
	}
	if t.JoystickTimeout == 0 {
		t.JoystickTimeout = d.JoystickTimeout
	}
	if t.ThrottleUnresponsive == 0 {
		t.ThrottleUnresponsive = d.ThrottleUnresponsive
	}
	if t.JoystickUnresponsive == 0 {
		t.JoystickUnresponsive = d.JoystickUnresponsive
	}
	if t.FirstPulse == 0 {
		t.FirstPulse = d.FirstPulse
	}
	if t.SecondPulse == 0 {
		t.SecondPulse = d.SecondPulse
	}
	return t
}

// Options configure either client.
type Options struct {
	Timing Timing

	BusyWait   bool
	PollMicros uint32

	// PulseWaiter is used by a JoystickClient only. When nil, an
	// InterruptPulseWaiter is built if C04 supports interrupts, else a
	// BitBangPulseWaiter.
	PulseWaiter PulseWaiter

	Logger x52.Logger
}

func (o Options) waiter(clk hal.Clock) x52.Waiter {
	w := x52.NewWaiter(clk, o.BusyWait)
	if o.PollMicros > 0 {
		w.PollMicros = o.PollMicros
	}
	return w
}

func (o Options) pulseWaiter(c04 hal.GPIOPin, clk hal.Clock) PulseWaiter {
	if o.PulseWaiter != nil {
		return o.PulseWaiter
	}
	if irq, ok := c04.(hal.IRQPin); ok {
		return NewInterruptPulseWaiter(irq, clk, o.BusyWait)
	}
	return NewBitBangPulseWaiter(c04, clk)
}
