package main

import (
	"bytes"
	"context"
	"log/slog"
	"time"

	"x52link/hal"
	"x52link/services/link"
	"x52link/types"
)

// LoopbackCmd puts an emulated joystick and an emulated throttle on one
// cable. The joystick is a throttle-role side playing synthetic input; the
// throttle is a joystick-role side polling it.
type LoopbackCmd struct {
	LinkFlags `embed:""`
}

func (c *LoopbackCmd) Run(logger *slog.Logger) error {
	cfg, err := c.linkConfig()
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(context.Background(), c.Duration)
	defer cancel()

	cable := hal.NewCable()
	clk := hal.NewHostClock()
	source, sink := link.NewLocalRelay(), link.NewLocalRelay()
	sink.PublishConfig(throttleConfig(cfg.Variant, c.Brightness))

	joy, err := newHalf("joystick", withRole(cfg, types.RoleThrottle), cable, clk, source, logger)
	if err != nil {
		return err
	}
	thr, err := newHalf("throttle", withRole(cfg, types.RoleJoystick), cable, clk, sink, logger)
	if err != nil {
		return err
	}

	go synthesize(ctx, cfg.Variant, source, 20*time.Millisecond)
	go watchStates(ctx, logger, cfg.Variant, sink.State)

	logger.Info("loopback running", "variant", string(cfg.Variant), "duration", c.Duration)
	if err := runHalves(ctx, logger, c.Heartbeat, nil, joy, thr); err != nil {
		return err
	}
	reportDelivery(logger, source, sink)
	return nil
}

// watchStates logs every state that reaches the emulated throttle.
func watchStates(ctx context.Context, logger *slog.Logger, variant types.Variant, m *link.Mailbox) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-m.Changed():
			if p, ok := m.Get(); ok {
				logger.Debug("state received", describeState(variant, p))
			}
		}
	}
}

// reportDelivery compares what was played with what arrived at the far end.
func reportDelivery(logger *slog.Logger, source, sink *link.LocalRelay) {
	sent, _ := source.LatestState()
	got, _ := sink.LatestState()
	cfgSent, _ := sink.LatestConfig()
	cfgGot, _ := source.LatestConfig()
	logger.Info("delivery",
		"latest_state_matches", bytes.Equal(sent, got),
		"config_matches", bytes.Equal(cfgSent, cfgGot))
}
