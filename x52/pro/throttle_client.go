package pro

import (
	"x52link/errcode"
	"x52link/hal"
	"x52link/x/bitbuf"
	"x52link/x/timex"
	"x52link/x52"
)

// ThrottleClient drives the cable of a real X52 Pro throttle in place of the
// joystick: it answers the throttle's frame requests, sends the
// JoystickState on C03 and receives the JoystickConfig on C01.
//
// Pin directions: C01 and C02 are inputs, C03 and C04 outputs. C04 idles
// low.
type ThrottleClient struct {
	pins   x52.Pins
	wait   x52.Waiter
	timing Timing
	opts   Options
}

func NewThrottleClient(pins x52.Pins, clk hal.Clock, opts Options) *ThrottleClient {
	return &ThrottleClient{
		pins:   pins,
		wait:   opts.waiter(clk),
		timing: opts.Timing.withDefaults(),
		opts:   opts,
	}
}

// Setup configures pin directions and idle levels.
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

// SendJoystickState waits up to waitMicros for the throttle to request a
// frame, sends state and receives the throttle's config into cfg.
//
// On failure cfg is left untouched and the returned *errcode.E carries the
// recommended backoff.
func (c *ThrottleClient) SendJoystickState(state *JoystickState, cfg *JoystickConfig, waitMicros uint32) error {
	p := c.pins
	if !c.wait.ForPin(p.C02, true, timex.After(c.wait.Now(), waitMicros)) {
		return errcode.Retry(errcode.NoPeer, "pro.send", 1)
	}

	if c.opts.Logger != nil {
		if err := state.Validate(); err != nil {
			x52.Debug(c.opts.Logger, "pro: state out of range", "err", err)
		}
	}
	send := state.Encode()
	recv := bitbuf.New(ConfigBits)

	deadline := timex.After(c.wait.Now(), c.timing.JoystickTimeout)

	for i := 0; i < frameCycles; i++ {
		if i < StateBits {
			p.C03.Set(send.Bit(i))
		} else if i >= configStart {
			// Sampled between the rising edges of C02 and C04.
			recv.SetBit(i-configStart, p.C01.Get())
		}

		p.C04.Set(true)

		if !c.wait.ForPin(p.C02, false, deadline) {
			x52.Debug(c.opts.Logger, "pro: timeout waiting for C02=0", "cycle", i)
			p.C04.Set(false)
			return errcode.Retry(errcode.PeerUnresponsive, "pro.send", c.timing.JoystickUnresponsive)
		}

		if err := c.checkDesync(i); err != nil {
			p.C04.Set(false)
			return err
		}

		p.C04.Set(false)

		// The throttle samples C03 here, between the falling edge of C04
		// and the rising edge of C02.

		if !c.wait.ForPin(p.C02, true, deadline) {
			x52.Debug(c.opts.Logger, "pro: timeout waiting for C02=1", "cycle", i)
			return errcode.Retry(errcode.PeerUnresponsive, "pro.send", c.timing.JoystickUnresponsive)
		}
	}

	*cfg, _ = DecodeConfig(&recv)
	return nil
}

// checkDesync validates C01 against the framing invariants of cycle i. A
// violation is answered the way the joystick does: by going silent long
// enough for the throttle to time out.
func (c *ThrottleClient) checkDesync(i int) error {
	c01 := c.pins.C01.Get()
	switch {
	case c.opts.ImprovedDesyncDetection && i >= 1 && i < desyncCycle:
		// Assumes the throttle keeps C01 high while the state is on C03.
		if !c01 {
			x52.Debug(c.opts.Logger, "pro: desync, C01 low during state bits", "cycle", i)
			return errcode.Retry(errcode.Desync, "pro.send", c.timing.JoystickDesyncUnresponsive)
		}
	case i == desyncCycle:
		if c01 {
			x52.Debug(c.opts.Logger, "pro: desync, bit 56 isn't zero")
			return errcode.Retry(errcode.Desync, "pro.send", c.timing.JoystickDesyncUnresponsive)
		}
	}
	return nil
}

// IsPollInProgress reports whether the throttle is already requesting a
// frame, in which case SendJoystickState will not block waiting for it.
func (c *ThrottleClient) IsPollInProgress() bool {
	return c.pins.C02.Get()
}
