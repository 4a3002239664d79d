package main

import (
	"context"
	"log/slog"
	"time"

	"x52link/services/link"
	"x52link/types"
	"x52link/x/mathx"
	"x52link/x52"
	"x52link/x52/pro"
	"x52link/x52/std"
)

var hatSweep = [...]x52.Direction{
	x52.NoDirection, x52.Up, x52.UpRight, x52.Right, x52.DownRight,
	x52.Down, x52.DownLeft, x52.Left, x52.UpLeft,
}

// synthesize plays a moving stick into relay every period until ctx ends.
func synthesize(ctx context.Context, variant types.Variant, relay link.Relay, every time.Duration) {
	t := time.NewTicker(every)
	defer t.Stop()
	for step := uint32(0); ; step++ {
		relay.PublishState(synthState(variant, step))
		select {
		case <-ctx.Done():
			return
		case <-t.C:
		}
	}
}

// synthState sweeps the axes as triangle waves, walks both hats round and
// cycles the mode and buttons. Z overshoots and is clamped so that it rests
// at the ends of its travel for a while.
func synthState(variant types.Variant, step uint32) []byte {
	hat := hatSweep[(step/16)%uint32(len(hatSweep))]
	mode := x52.Mode1 + x52.Mode((step/64)%3)
	buttons := step / 8

	switch variant {
	case types.VariantStd:
		s := std.JoystickState{
			X:    uint16(mathx.Triangle(step, 256, uint32(std.MaxX))),
			Y:    uint16(mathx.Triangle(step+64, 256, uint32(std.MaxY))),
			Z:    uint16(mathx.Clamp(int(mathx.Triangle(step, 512, uint32(std.MaxZ+200)))-100, 0, std.MaxZ)),
			POV1: hat,
			POV2: hat & (x52.Up | x52.Down),
			Mode: mode,

			TriggerStage1: buttons&1 != 0,
			ButtonFire:    buttons&2 != 0,
			ButtonA:       buttons&4 != 0,
			ButtonT1:      buttons&8 != 0,
		}
		b := s.Encode()
		return b.Bytes()
	default:
		s := pro.JoystickState{
			X:    uint16(mathx.Triangle(step, 256, uint32(pro.MaxX))),
			Y:    uint16(mathx.Triangle(step+64, 256, uint32(pro.MaxY))),
			Z:    uint16(mathx.Clamp(int(mathx.Triangle(step, 512, uint32(pro.MaxZ+200)))-100, 0, pro.MaxZ)),
			POV1: hat,
			POV2: hat & (x52.Left | x52.Right),
			Mode: mode,

			TriggerStage1: buttons&1 != 0,
			ButtonFire:    buttons&2 != 0,
			ButtonB:       buttons&4 != 0,
			ButtonT2:      buttons&8 != 0,
		}
		b := s.Encode()
		return b.Bytes()
	}
}

// throttleConfig is what the emulated throttle sends.
func throttleConfig(variant types.Variant, brightness uint8) []byte {
	switch variant {
	case types.VariantStd:
		c := std.JoystickConfig{LEDBrightness: mathx.Min(brightness, std.MaxLEDBrightness)}
		b := c.Encode()
		return b.Bytes()
	default:
		c := pro.DefaultJoystickConfig()
		c.LEDBrightness = mathx.Min(brightness, pro.MaxLEDBrightness)
		c.ButtonALED = pro.Red
		b := c.Encode()
		return b.Bytes()
	}
}

// describeState decodes a relayed state for logging.
func describeState(variant types.Variant, p []byte) slog.Attr {
	if variant == types.VariantStd {
		if s, ok := std.StateFromBytes(p); ok {
			return slog.Group("state", "x", s.X, "y", s.Y, "z", s.Z, "pov1", s.POV1.String(), "mode", int(s.Mode))
		}
	} else if s, ok := pro.StateFromBytes(p); ok {
		return slog.Group("state", "x", s.X, "y", s.Y, "z", s.Z, "pov1", s.POV1.String(), "mode", int(s.Mode))
	}
	return slog.String("state", "undecodable")
}
