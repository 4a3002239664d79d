package pro

import (
	"x52link/errcode"
	"x52link/hal"
	"x52link/x/bitbuf"
	"x52link/x/timex"
	"x52link/x52"
)

// JoystickClient drives the cable of a real X52 Pro joystick in place of the
// throttle: it requests frames on C02, receives the JoystickState on C03 and
// sends the JoystickConfig on C01.
//
// Pin directions: C01 and C02 are outputs, C03 and C04 inputs. C02 idles
// low; with ImprovedDesyncDetection C01 idles high.
type JoystickClient struct {
	pins   x52.Pins
	wait   x52.Waiter
	timing Timing
	opts   Options
}

func NewJoystickClient(pins x52.Pins, clk hal.Clock, opts Options) *JoystickClient {
	return &JoystickClient{
		pins:   pins,
		wait:   opts.waiter(clk),
		timing: opts.Timing.withDefaults(),
		opts:   opts,
	}
}

// Setup configures pin directions and idle levels.
func (c *JoystickClient) Setup() error {
	if err := c.pins.Validate(); err != nil {
		return err
	}
	if err := c.pins.C01.ConfigureOutput(c.opts.ImprovedDesyncDetection); err != nil {
		return err
	}
	if err := c.pins.C02.ConfigureOutput(false); err != nil {
		return err
	}
	if err := c.pins.C03.ConfigureInput(hal.PullNone); err != nil {
		return err
	}
	return c.pins.C04.ConfigureInput(hal.PullNone)
}

// PollJoystickState requests a frame, receives the joystick state into
// state and sends cfg. waitMicros bounds the wait for the joystick's first
// response; DefaultPollWaitMicros is a sensible value.
//
// On failure state is left untouched and the returned *errcode.E carries the
// recommended backoff: 1µs for no_peer, otherwise the time the joystick
// needs to time out itself.
func (c *JoystickClient) PollJoystickState(state *JoystickState, cfg *JoystickConfig, waitMicros uint32) error {
	// C02 is low on every return path; with ImprovedDesyncDetection C01 is
	// high as well.
	p := c.pins
	improved := c.opts.ImprovedDesyncDetection
	send := cfg.Encode()
	recv := bitbuf.New(StateBits)

	deadline := timex.After(c.wait.Now(), waitMicros)

	for i := 0; i < frameCycles; i++ {
		switch {
		case i == 1 && !improved:
			// What a real throttle does.
			p.C01.Set(true)
		case i >= configStart:
			p.C01.Set(send.Bit(i - configStart))
		}

		p.C02.Set(true)

		// The joystick samples C01 between the rising edges of C02 and C04.

		if !c.wait.ForPin(p.C04, true, deadline) {
			x52.Debug(c.opts.Logger, "pro: timeout waiting for C04=1", "cycle", i)
			if improved && i >= configStart {
				p.C01.Set(true)
			}
			p.C02.Set(false)
			// The joystick never answered the request within waitMicros.
			if i == 0 {
				return errcode.Retry(errcode.NoPeer, "pro.poll", 1)
			}
			// Mid-frame: the joystick times out too and won't listen before
			// that.
			return errcode.Retry(errcode.PeerUnresponsive, "pro.poll", c.timing.ThrottleUnresponsive)
		}

		switch {
		case i == 0:
			// From here on the frame is bounded by the throttle's own
			// whole-frame limit instead of waitMicros.
			deadline = timex.After(c.wait.Now(), c.timing.ThrottleTimeout)
		case i == desyncCycle:
			// The joystick becomes unresponsive if this isn't low.
			p.C01.Set(false)
		case improved && i >= configStart:
			// The last cycle leaves C01 high until cycle 56 of the next frame.
			p.C01.Set(true)
		}

		p.C02.Set(false)

		if !c.wait.ForPin(p.C04, false, deadline) {
			x52.Debug(c.opts.Logger, "pro: timeout waiting for C04=0", "cycle", i)
			if improved {
				p.C01.Set(true)
			}
			return errcode.Retry(errcode.PeerUnresponsive, "pro.poll", c.timing.ThrottleUnresponsive)
		}

		// The throttle samples C03 between the falling edge of C04 and the
		// next rising edge of C02.
		if i < StateBits {
			recv.SetBit(i, p.C03.Get())
		}
	}

	*state, _ = DecodeState(&recv)
	return nil
}

// PrepareForPoll raises C02 ahead of the next PollJoystickState so the
// joystick can finish the last cycle of the previous frame right away.
func (c *JoystickClient) PrepareForPoll() {
	c.pins.C02.Set(true)
}
