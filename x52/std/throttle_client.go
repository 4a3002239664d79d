package std

import (
	"x52link/errcode"
	"x52link/hal"
	"x52link/x/bitbuf"
	"x52link/x/timex"
	"x52link/x52"
)

// ThrottleClient drives the cable of a real X52 (non-Pro) throttle in place
// of the joystick: it clocks the frame on C04, sends the state on C03 and
// receives the config on C01 while the throttle acknowledges on C02.
//
// Pin directions: C01 and C02 are inputs, C03 and C04 outputs. C04 idles
// low.
type ThrottleClient struct {
	pins   x52.Pins
	clk    hal.Clock
	wait   x52.Waiter
	timing Timing
	log    x52.Logger
}

func NewThrottleClient(pins x52.Pins, clk hal.Clock, opts Options) *ThrottleClient {
	return &ThrottleClient{
		pins:   pins,
		clk:    clk,
		wait:   opts.waiter(clk),
		timing: opts.Timing.withDefaults(),
		log:    opts.Logger,
	}
}

func (c *ThrottleClient) Setup() error {
	if err := c.pins.Validate(); err != nil {
		return err
	}
	if err := c.pins.C01.ConfigureInput(hal.PullNone); err != nil {
		return err
	}
	if err := c.pins.C02.ConfigureInput(hal.PullNone); err != nil {
		return err
	}
	if err := c.pins.C03.ConfigureOutput(false); err != nil {
		return err
	}
	return c.pins.C04.ConfigureOutput(false)
}

// SendJoystickState waits up to waitMicros for the throttle's request, sends
// state and receives the throttle's config into cfg. On failure cfg is left
// untouched.
func (c *ThrottleClient) SendJoystickState(state *JoystickState, cfg *JoystickConfig, waitMicros uint32) error {
	// C04 is low on every return path.
	p := c.pins
	unresponsive := func() error {
		return errcode.Retry(errcode.PeerUnresponsive, "std.send", c.timing.JoystickUnresponsive)
	}

	if !c.wait.ForPin(p.C02, true, timex.After(c.wait.Now(), waitMicros)) {
		return errcode.Retry(errcode.NoPeer, "std.send", 1)
	}

	if c.log != nil {
		if err := state.Validate(); err != nil {
			x52.Debug(c.log, "std: state out of range", "err", err)
		}
	}
	send := state.Encode()

	deadline := timex.After(c.wait.Now(), c.timing.JoystickTimeout)

	// The first bit goes out with an unacknowledged pulse.
	p.C03.Set(send.Bit(0))
	c.pulse(c.timing.FirstPulse)

	// The throttle samples C03 between the falling edges of C04 and C02.

	if !c.wait.ForPin(p.C02, false, deadline) {
		x52.Debug(c.log, "std: timeout waiting for C02=0 after the first pulse")
		return unresponsive()
	}

	for i := 1; i < StateBits; i++ {
		// The bit has to be on C03 before the falling edge of C04.
		p.C03.Set(send.Bit(i))

		p.C04.Set(true)
		if !c.wait.ForPin(p.C02, true, deadline) {
			x52.Debug(c.log, "std: timeout waiting for C02=1 while sending state", "cycle", i)
			p.C04.Set(false)
			return unresponsive()
		}

		p.C04.Set(false)
		if !c.wait.ForPin(p.C02, false, deadline) {
			x52.Debug(c.log, "std: timeout waiting for C02=0 while sending state", "cycle", i)
			return unresponsive()
		}
	}

	// The config phase starts with the second unacknowledged pulse.
	c.pulse(c.timing.SecondPulse)

	recv := bitbuf.New(ConfigBits)
	for i := 0; i < ConfigBits; i++ {
		if !c.wait.ForPin(p.C02, true, deadline) {
			x52.Debug(c.log, "std: timeout waiting for C02=1 while receiving config", "cycle", i)
			return unresponsive()
		}
		// Sampled between the rising edges of C02 and C04.
		recv.SetBit(i, p.C01.Get())
		p.C04.Set(true)
		if !c.wait.ForPin(p.C02, false, deadline) {
			x52.Debug(c.log, "std: timeout waiting for C02=0 while receiving config", "cycle", i)
			p.C04.Set(false)
			return unresponsive()
		}
		p.C04.Set(false)
	}

	*cfg, _ = DecodeConfig(&recv)
	return nil
}

func (c *ThrottleClient) pulse(width uint32) {
	c.pins.C04.Set(true)
	c.clk.SleepMicros(width)
	c.pins.C04.Set(false)
}

// IsPollInProgress reports whether the throttle is already requesting a
// frame, in which case SendJoystickState will not block waiting for it.
func (c *ThrottleClient) IsPollInProgress() bool {
	return c.pins.C02.Get()
}
