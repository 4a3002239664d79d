package pro

import (
	"x52link/hal"
	"x52link/x52"
)

// Frame geometry: 76 clock cycles on both C02 and C04. The joystick state
// occupies cycles 0..55, cycle 56 carries the mandatory low desync marker on
// C01 and the config follows from cycle 57.
const (
	frameCycles = 76
	desyncCycle = StateBits
	configStart = StateBits + 1
)

// Default outer waits for the first edge of a frame.
const (
	DefaultPollWaitMicros = 25000
	DefaultSendWaitMicros = 25000
)

// Timing holds the protocol time limits in microseconds. The defaults were
// measured on, or are hardcoded in, the stock X52 Pro firmware.
type Timing struct {
	// A real throttle gives up on a frame that is not complete this
	// long after the first C04 rising edge.
	ThrottleTimeout uint32
	// A real joystick's whole-frame limit.
	JoystickTimeout uint32
	// Backoff of a JoystickClient after a mid-frame timeout: the joystick
	// has to time out itself before it listens again.
	ThrottleUnresponsive uint32
	// How long the joystick ignores a throttle that stalled mid-frame.
	JoystickUnresponsive uint32
	// How long the joystick stays silent after detecting a desync. Must be
	// greater than ThrottleTimeout.
	JoystickDesyncUnresponsive uint32
}

// DefaultTiming returns the stock firmware constants.
func DefaultTiming() Timing {
	return Timing{
		ThrottleTimeout:            17000,
		JoystickTimeout:            23000,
		ThrottleUnresponsive:       23000 + 5000,
		JoystickUnresponsive:       2000,
		JoystickDesyncUnresponsive: 23000,
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
		t.ThrottleUnresponsive = t.JoystickTimeout + 5000
	}
	if t.JoystickUnresponsive == 0 {
		t.JoystickUnresponsive = d.JoystickUnresponsive
	}
	if t.JoystickDesyncUnresponsive == 0 {
		t.JoystickDesyncUnresponsive = d.JoystickDesyncUnresponsive
	}
	return t
}

// Options configure either client.
type Options struct {
	Timing Timing // zero fields take DefaultTiming values

	// ImprovedDesyncDetection deviates from the real hardware to detect
	// a desync faster. For a JoystickClient, C01 idles high between frames
	// and after every config bit. For a ThrottleClient, C01 must read high
	// during cycles 1..55. Off by default: untested against real hardware.
	// The one switch serves both clients; a link half builds only one of
	// them, so each half still chooses its own check.
	ImprovedDesyncDetection bool

	// BusyWait re-reads pins back to back; otherwise the poll loop sleeps
	// PollMicros (default x52.DefaultPollMicros) between reads.
	BusyWait   bool
	PollMicros uint32

	Logger x52.Logger
}

func (o Options) waiter(clk hal.Clock) x52.Waiter {
	w := x52.NewWaiter(clk, o.BusyWait)
	if o.PollMicros > 0 {
		w.PollMicros = o.PollMicros
	}
	return w
}
