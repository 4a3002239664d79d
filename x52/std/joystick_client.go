package std

import (
	"x52link/errcode"
	"x52link/hal"
	"x52link/x/bitbuf"
	"x52link/x/timex"
	"x52link/x52"
)

// JoystickClient drives the cable of a real X52 (non-Pro) joystick in place
// of the throttle. The joystick clocks the frame on C04; this side answers on
// C02, receives the state on C03 and sends the config on C01.
//
// Pin directions: C01 and C02 are outputs, C03 and C04 inputs. C02 idles
// low; C01 is undefined between frames.
type JoystickClient struct {
	pins   x52.Pins
	wait   x52.Waiter
	pulse  PulseWaiter
	timing Timing
	log    x52.Logger
}

func NewJoystickClient(pins x52.Pins, clk hal.Clock, opts Options) *JoystickClient {
	return &JoystickClient{
		pins:   pins,
		wait:   opts.waiter(clk),
		pulse:  opts.pulseWaiter(pins.C04, clk),
		timing: opts.Timing.withDefaults(),
		log:    opts.Logger,
	}
}

func (c *JoystickClient) Setup() error {
	if err := c.pins.Validate(); err != nil {
		return err
	}
	if err := c.pins.C01.ConfigureOutput(false); err != nil {
		return err
	}
	if err := c.pins.C02.ConfigureOutput(false); err != nil {
		return err
	}
	if err := c.pins.C03.ConfigureInput(hal.PullNone); err != nil {
		return err
	}
	if err := c.pins.C04.ConfigureInput(hal.PullNone); err != nil {
		return err
	}
	return c.pulse.Setup()
}

// PollJoystickState requests a frame, receives the joystick state into state
// and sends cfg. The joystick answers at most about 50 times per second.
//
// On failure state is left untouched. A state that arrives with a bad
// checksum fails with errcode.ChecksumFailure.
func (c *JoystickClient) PollJoystickState(state *JoystickState, cfg *JoystickConfig, waitMicros uint32) error {
	// C02 is low on every return path.
	p := c.pins
	unresponsive := func() error {
		return errcode.Retry(errcode.PeerUnresponsive, "std.poll", c.timing.ThrottleUnresponsive)
	}

	waitDeadline := timex.After(c.wait.Now(), waitMicros)
	if !c.wait.ForPin(p.C04, false, waitDeadline) {
		return errcode.Retry(errcode.NoPeer, "std.poll", 1)
	}

	// The joystick answers the request with a pulse of at least 15µs that
	// also clocks in the first data bit.
	switch res := c.pulse.WaitForPulse(waitDeadline, func() { p.C02.Set(true) }); res {
	case PulseFinished:
	case PulseNotStarted:
		p.C02.Set(false)
		return errcode.Retry(errcode.NoPeer, "std.poll", 1)
	default:
		x52.Debug(c.log, "std: first C04 pulse failed", "result", res)
		p.C02.Set(false)
		return unresponsive()
	}

	deadline := timex.After(c.wait.Now(), c.timing.ThrottleTimeout)
	recv := bitbuf.New(StateBits)

	for i := 0; i < StateBits-1; i++ {
		// The throttle samples C03 between the falling edges of C04 and C02;
		// the joystick often changes C03 before the rising edge of C02.
		recv.SetBit(i, p.C03.Get())

		p.C02.Set(false)

		if !c.wait.ForPin(p.C04, true, deadline) {
			x52.Debug(c.log, "std: timeout waiting for C04=1 while receiving state", "cycle", i)
			return unresponsive()
		}

		p.C02.Set(true)

		if !c.wait.ForPin(p.C04, false, deadline) {
			x52.Debug(c.log, "std: timeout waiting for C04=0 while receiving state", "cycle", i)
			p.C02.Set(false)
			return unresponsive()
		}
	}
	recv.SetBit(StateBits-1, p.C03.Get())

	// A second unacknowledged pulse of at least 50µs precedes the config.
	if res := c.pulse.WaitForPulse(deadline, func() { p.C02.Set(false) }); res != PulseFinished {
		x52.Debug(c.log, "std: second C04 pulse failed", "result", res)
		return unresponsive()
	}

	send := cfg.Encode()
	for i := 0; i < ConfigBits; i++ {
		// The joystick samples C01 between the rising edges of C02 and C04.
		p.C01.Set(send.Bit(i))
		p.C02.Set(true)
		if !c.wait.ForPin(p.C04, true, deadline) {
			x52.Debug(c.log, "std: timeout waiting for C04=1 while sending config", "cycle", i)
			p.C02.Set(false)
			return unresponsive()
		}
		p.C02.Set(false)
		if !c.wait.ForPin(p.C04, false, deadline) {
			x52.Debug(c.log, "std: timeout waiting for C04=0 while sending config", "cycle", i)
			return unresponsive()
		}
	}

	s, ok := DecodeState(&recv)
	if !ok {
		x52.Debug(c.log, "std: state checksum mismatch")
		return errcode.Retry(errcode.ChecksumFailure, "std.poll", c.timing.ThrottleUnresponsive)
	}
	*state = s
	return nil
}
