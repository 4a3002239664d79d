package link

import (
	"x52link/errcode"
	"x52link/hal"
	"x52link/types"
	"x52link/x52"
	"x52link/x52/pro"
	"x52link/x52/std"
)

// Side is one half of a link: a frame engine plus the glue that moves its
// payloads through a Relay.
type Side interface {
	Setup() error
	// Exchange runs one frame. Errors carry the engine's backoff.
	Exchange() error
}

// NewSide builds the side cfg describes on pins.
func NewSide(cfg types.LinkConfig, pins x52.Pins, clk hal.Clock, relay Relay, log x52.Logger) (Side, error) {
	switch cfg.Variant {
	case types.VariantPro:
		opts := pro.Options{
			Timing: pro.Timing{
				ThrottleTimeout:            cfg.Timing.ThrottleTimeout,
				JoystickTimeout:            cfg.Timing.JoystickTimeout,
				ThrottleUnresponsive:       cfg.Timing.ThrottleUnresponsive,
				JoystickUnresponsive:       cfg.Timing.JoystickUnresponsive,
				JoystickDesyncUnresponsive: cfg.Timing.JoystickDesyncUnresponsive,
			},
			ImprovedDesyncDetection: cfg.ImprovedDesyncDetection,
			BusyWait:                cfg.BusyWait,
			PollMicros:              cfg.PollPeriodMicros,
			Logger:                  log,
		}
		switch cfg.Role {
		case types.RoleJoystick:
			return &proJoystickSide{
				client: pro.NewJoystickClient(pins, clk, opts),
				relay:  relay,
				wait:   orDefault(cfg.WaitMicros, pro.DefaultPollWaitMicros),
				log:    log,
			}, nil
		case types.RoleThrottle:
			return &proThrottleSide{
				client: pro.NewThrottleClient(pins, clk, opts),
				relay:  relay,
				wait:   orDefault(cfg.WaitMicros, pro.DefaultSendWaitMicros),
				log:    log,
			}, nil
		}
	case types.VariantStd:
		opts := std.Options{
			Timing: std.Timing{
				ThrottleTimeout:      cfg.Timing.ThrottleTimeout,
				JoystickTimeout:      cfg.Timing.JoystickTimeout,
				ThrottleUnresponsive: cfg.Timing.ThrottleUnresponsive,
				JoystickUnresponsive: cfg.Timing.JoystickUnresponsive,
				FirstPulse:           cfg.Timing.FirstPulse,
				SecondPulse:          cfg.Timing.SecondPulse,
			},
			BusyWait:   cfg.BusyWait,
			PollMicros: cfg.PollPeriodMicros,
			Logger:     log,
		}
		if cfg.PulseWaiter == types.PulseWaiterPoll && pins.C04 != nil {
			opts.PulseWaiter = std.NewBitBangPulseWaiter(pins.C04, clk)
		}
		switch cfg.Role {
		case types.RoleJoystick:
			return &stdJoystickSide{
				client: std.NewJoystickClient(pins, clk, opts),
				relay:  relay,
				wait:   orDefault(cfg.WaitMicros, std.DefaultPollWaitMicros),
				log:    log,
			}, nil
		case types.RoleThrottle:
			return &stdThrottleSide{
				client: std.NewThrottleClient(pins, clk, opts),
				relay:  relay,
				wait:   orDefault(cfg.WaitMicros, std.DefaultSendWaitMicros),
				log:    log,
			}, nil
		}
	}
	return nil, &errcode.E{C: errcode.InvalidParams, Op: "link", Msg: "unknown variant or role"}
}

func orDefault(v, d uint32) uint32 {
	if v == 0 {
		return d
	}
	return v
}

// ---- X52 Pro ----

// proJoystickSide polls a real Pro joystick and publishes its state.
type proJoystickSide struct {
	client *pro.JoystickClient
	relay  Relay
	wait   uint32
	state  pro.JoystickState
	log    x52.Logger
}

func (s *proJoystickSide) Setup() error { return s.client.Setup() }

func (s *proJoystickSide) Exchange() error {
	cfg := pro.DefaultJoystickConfig()
	if p, ok := s.relay.LatestConfig(); ok {
		if c, ok := pro.ConfigFromBytes(p); ok {
			cfg = c
		}
	}
	if err := s.client.PollJoystickState(&s.state, &cfg, s.wait); err != nil {
		return err
	}
	s.client.PrepareForPoll()
	if err := s.state.Validate(); err != nil {
		x52.Debug(s.log, "link: joystick state", "err", err)
	}
	b := s.state.Encode()
	s.relay.PublishState(b.Bytes())
	return nil
}

// proThrottleSide feeds the latest relayed state to a real Pro throttle.
type proThrottleSide struct {
	client *pro.ThrottleClient
	relay  Relay
	wait   uint32
	log    x52.Logger
}

func (s *proThrottleSide) Setup() error { return s.client.Setup() }

func (s *proThrottleSide) Exchange() error {
	state := pro.JoystickState{X: pro.CenterX, Y: pro.CenterY, Z: pro.CenterZ}
	if p, ok := s.relay.LatestState(); ok {
		if st, ok := pro.StateFromBytes(p); ok {
			state = st
		}
	}
	var cfg pro.JoystickConfig
	if err := s.client.SendJoystickState(&state, &cfg, s.wait); err != nil {
		return err
	}
	b := cfg.Encode()
	s.relay.PublishConfig(b.Bytes())
	return nil
}

// ---- X52 ----

type stdJoystickSide struct {
	client *std.JoystickClient
	relay  Relay
	wait   uint32
	state  std.JoystickState
	log    x52.Logger
}

func (s *stdJoystickSide) Setup() error { return s.client.Setup() }

func (s *stdJoystickSide) Exchange() error {
	cfg := std.DefaultJoystickConfig()
	if p, ok := s.relay.LatestConfig(); ok {
		if c, ok := std.ConfigFromBytes(p); ok {
			cfg = c
		}
	}
	if err := cfg.Validate(); err != nil {
		x52.Debug(s.log, "link: joystick config", "err", err)
	}
	if err := s.client.PollJoystickState(&s.state, &cfg, s.wait); err != nil {
		return err
	}
	if err := s.state.Validate(); err != nil {
		x52.Debug(s.log, "link: joystick state", "err", err)
	}
	b := s.state.Encode()
	s.relay.PublishState(b.Bytes())
	return nil
}

type stdThrottleSide struct {
	client *std.ThrottleClient
	relay  Relay
	wait   uint32
	log    x52.Logger
}

func (s *stdThrottleSide) Setup() error { return s.client.Setup() }

func (s *stdThrottleSide) Exchange() error {
	state := std.JoystickState{X: std.CenterX, Y: std.CenterY, Z: std.CenterZ}
	if p, ok := s.relay.LatestState(); ok {
		if st, ok := std.StateFromBytes(p); ok {
			state = st
		}
	}
	var cfg std.JoystickConfig
	if err := s.client.SendJoystickState(&state, &cfg, s.wait); err != nil {
		return err
	}
	b := cfg.Encode()
	s.relay.PublishConfig(b.Bytes())
	return nil
}
