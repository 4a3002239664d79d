// Package config resolves the link configuration embedded in a firmware
// image and fills in defaults.
package config

import (
	"encoding/json"

	"x52link/errcode"
	"x52link/types"
)

// Defaults shared by host tools and firmware.
const (
	DefaultMaxUpdatesPerSecond = 100
	DefaultRateHistory         = 4
	DefaultRateLogPeriodMs     = 5000
	DefaultUARTBaud            = 115200
)

// EmbeddedConfigLookup allows overriding how configs are resolved.
var EmbeddedConfigLookup = func(device string) ([]byte, bool) {
	b, ok := embeddedConfigs[device]
	return b, ok
}

// Default returns a Pro joystick link on GP2..GP5.
func Default() types.LinkConfig {
	c := types.LinkConfig{
		Variant: types.VariantPro,
		Role:    types.RoleJoystick,
		Pins:    types.PinsConfig{C01: 2, C02: 3, C03: 4, C04: 5},

		MaxUpdatesPerSecond: DefaultMaxUpdatesPerSecond,
	}
	ApplyDefaults(&c)
	return c
}

// ApplyDefaults fills unset fields. Wait times and timing stay zero: the
// engines substitute their own per-variant values. MaxUpdatesPerSecond is
// left alone since zero means unlimited.
func ApplyDefaults(c *types.LinkConfig) {
	if c.Variant == "" {
		c.Variant = types.VariantPro
	}
	if c.Role == "" {
		c.Role = types.RoleJoystick
	}
	if c.Variant == types.VariantStd && c.PulseWaiter == "" {
		c.PulseWaiter = types.PulseWaiterInterrupt
	}
	if c.RateHistory == 0 {
		c.RateHistory = DefaultRateHistory
	}
	if c.RateLogPeriodMs == 0 {
		c.RateLogPeriodMs = DefaultRateLogPeriodMs
	}
	if b := c.Bridge; b != nil && b.Transport == "uart" && b.UART != nil && b.UART.Baud == 0 {
		b.UART.Baud = DefaultUARTBaud
	}
}

// Validate rejects configurations no link can run with.
func Validate(c *types.LinkConfig) error {
	bad := func(msg string) error {
		return &errcode.E{C: errcode.InvalidParams, Op: "config", Msg: msg}
	}
	switch c.Variant {
	case types.VariantPro, types.VariantStd:
	default:
		return bad("variant must be pro or std")
	}
	switch c.Role {
	case types.RoleJoystick, types.RoleThrottle:
	default:
		return bad("role must be joystick or throttle")
	}
	switch c.PulseWaiter {
	case "", types.PulseWaiterInterrupt, types.PulseWaiterPoll:
	default:
		return bad("pulse_waiter must be interrupt or poll")
	}
	p := c.Pins
	seen := map[int]bool{}
	for _, n := range []int{p.C01, p.C02, p.C03, p.C04} {
		if n < 0 {
			return bad("negative pin number")
		}
		if seen[n] {
			return bad("pins must be distinct")
		}
		seen[n] = true
	}
	if c.MaxUpdatesPerSecond < 0 {
		return bad("max_updates_per_second must not be negative")
	}
	if c.Variant == types.VariantPro && c.Timing.JoystickDesyncUnresponsive != 0 &&
		c.Timing.ThrottleTimeout != 0 && c.Timing.JoystickDesyncUnresponsive <= c.Timing.ThrottleTimeout {
		return bad("joystick_desync_unresponsive must exceed throttle_timeout")
	}
	if b := c.Bridge; b != nil {
		switch b.Transport {
		case "":
			return bad("bridge transport is required")
		case "uart":
			if b.UART == nil {
				return bad("uart transport requires uart config")
			}
		case "tcp":
			if b.Address == "" {
				return bad("tcp transport requires an address")
			}
		}
	}
	return nil
}

// Decode parses a JSON LinkConfig, applies defaults and validates it.
func Decode(raw []byte) (types.LinkConfig, error) {
	var c types.LinkConfig
	if err := json.Unmarshal(raw, &c); err != nil {
		return c, &errcode.E{C: errcode.InvalidParams, Op: "config", Msg: "decode", Err: err}
	}
	ApplyDefaults(&c)
	return c, Validate(&c)
}

// Load resolves the embedded config of device.
func Load(device string) (types.LinkConfig, error) {
	raw, ok := EmbeddedConfigLookup(device)
	if !ok || len(raw) == 0 {
		return types.LinkConfig{}, &errcode.E{C: errcode.InvalidParams, Op: "config", Msg: "no embedded config for device: " + device}
	}
	return Decode(raw)
}
