package main

import (
	"context"
	"log/slog"
	"time"

	"x52link/hal"
	"x52link/services/bridge"
	"x52link/services/link"
	"x52link/types"
)

// RelayCmd splits the link across two cables joined by a bridge:
//
//	emulated joystick =cable A= joystick half ~bridge~ throttle half =cable B= emulated throttle
type RelayCmd struct {
	LinkFlags `embed:""`

	Transport string `help:"Bridge byte stream" enum:"pipe,tcp" default:"pipe"`
	Address   string `help:"Pipe name or tcp host:port" default:"127.0.0.1:5252"`
}

func (c *RelayCmd) Run(logger *slog.Logger) error {
	cfg, err := c.linkConfig()
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(context.Background(), c.Duration)
	defer cancel()

	bcfg := types.BridgeConfig{Transport: c.Transport, Address: c.Address, HeartbeatMs: 1000}
	if cfg.Bridge != nil {
		bcfg = *cfg.Bridge
	}
	joyBridge := bridge.New(cfg.Variant, logger.With("bridge", "joystick"))
	thrBridge := bridge.New(cfg.Variant, logger.With("bridge", "throttle"))
	listen := bcfg
	listen.Listen = true
	joyBridge.Configure(listen)
	thrBridge.Configure(bcfg)
	go joyBridge.Run(ctx)
	go thrBridge.Run(ctx)

	clk := hal.NewHostClock()
	cableA, cableB := hal.NewCable(), hal.NewCable()
	source, sink := link.NewLocalRelay(), link.NewLocalRelay()
	sink.PublishConfig(throttleConfig(cfg.Variant, c.Brightness))

	halves := []struct {
		name  string
		role  types.Role
		cable *hal.Cable
		relay link.Relay
	}{
		{"emulated-joystick", types.RoleThrottle, cableA, source},
		{"joystick", types.RoleJoystick, cableA, joyBridge},
		{"throttle", types.RoleThrottle, cableB, thrBridge},
		{"emulated-throttle", types.RoleJoystick, cableB, sink},
	}
	var hs []half
	for _, h := range halves {
		x, err := newHalf(h.name, withRole(cfg, h.role), h.cable, clk, h.relay, logger)
		if err != nil {
			return err
		}
		hs = append(hs, x)
	}

	go synthesize(ctx, cfg.Variant, source, 20*time.Millisecond)
	go watchStates(ctx, logger, cfg.Variant, sink.State)

	logger.Info("relay running", "variant", string(cfg.Variant), "transport", bcfg.Transport, "duration", c.Duration)
	bridges := map[string]*bridge.Service{"joystick": joyBridge, "throttle": thrBridge}
	if err := runHalves(ctx, logger, c.Heartbeat, bridges, hs...); err != nil {
		return err
	}
	reportDelivery(logger, source, sink)
	return nil
}
