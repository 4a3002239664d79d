//go:build !rp2040 && !rp2350

package link

import (
	"bytes"
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"x52link/errcode"
	"x52link/hal"
	"x52link/types"
	"x52link/x52"
	"x52link/x52/pro"
	"x52link/x52/std"
)

func cablePins(c *hal.Cable) x52.Pins {
	return x52.Pins{C01: c.C01, C02: c.C02, C03: c.C03, C04: c.C04}
}

// runPair runs an emulated joystick (a throttle-role side) and an emulated
// throttle (a joystick-role side) against each other on one cable until
// done reports true.
func runPair(t *testing.T, variant types.Variant, toJoystick, toThrottle *LocalRelay, done func() bool) {
	t.Helper()
	cable := hal.NewCable()
	clk := hal.NewHostClock()
	base := types.LinkConfig{Variant: variant, PollPeriodMicros: 1, WaitMicros: 200000}

	jcfg := base
	jcfg.Role = types.RoleJoystick
	joy, err := NewSide(jcfg, cablePins(cable), clk, toThrottle, nil)
	require.NoError(t, err)

	tcfg := base
	tcfg.Role = types.RoleThrottle
	thr, err := NewSide(tcfg, cablePins(cable), clk, toJoystick, nil)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	var wg sync.WaitGroup
	for _, r := range []*Runner{NewRunner(tcfg, thr, clk, nil), NewRunner(jcfg, joy, clk, nil)} {
		wg.Add(1)
		go func(r *Runner) {
			defer wg.Done()
			assert.NoError(t, r.Run(ctx))
		}(r)
	}
	assert.Eventually(t, done, 5*time.Second, time.Millisecond)
	cancel()
	wg.Wait()
}

func latestEquals(get func() ([]byte, bool), want []byte) func() bool {
	return func() bool {
		p, ok := get()
		return ok && bytes.Equal(p, want)
	}
}

func TestProSidesRelayBothWays(t *testing.T) {
	state := pro.JoystickState{X: 100, Y: 900, Z: 3, POV1: x52.UpLeft, Mode: x52.Mode2, ButtonC: true}
	cfg := pro.JoystickConfig{LEDBrightness: 9, ButtonALED: pro.Red, POV2LED: pro.Off}
	sb, cb := state.Encode(), cfg.Encode()

	// The relay of the emulated joystick carries the state it should send;
	// the relay of the emulated throttle carries the config it should send.
	toJoystick, toThrottle := NewLocalRelay(), NewLocalRelay()
	toJoystick.PublishState(sb.Bytes())
	toThrottle.PublishConfig(cb.Bytes())

	runPair(t, types.VariantPro, toJoystick, toThrottle, func() bool {
		return latestEquals(toThrottle.LatestState, sb.Bytes())() &&
			latestEquals(toJoystick.LatestConfig, cb.Bytes())()
	})
}

func TestStdSidesRelayBothWays(t *testing.T) {
	state := std.JoystickState{X: 2000, Y: 17, Z: 1000, POV2: x52.Left, Mode: x52.Mode3, ButtonT6: true}
	cfg := std.JoystickConfig{LEDBrightness: 33, POV1LEDBlinking: true}
	sb, cb := state.Encode(), cfg.Encode()

	toJoystick, toThrottle := NewLocalRelay(), NewLocalRelay()
	toJoystick.PublishState(sb.Bytes())
	toThrottle.PublishConfig(cb.Bytes())

	runPair(t, types.VariantStd, toJoystick, toThrottle, func() bool {
		return latestEquals(toThrottle.LatestState, sb.Bytes())() &&
			latestEquals(toJoystick.LatestConfig, cb.Bytes())()
	})
}

func TestThrottleSideSendsCenteredStateWithoutRelayedState(t *testing.T) {
	toJoystick, toThrottle := NewLocalRelay(), NewLocalRelay()
	centered := pro.JoystickState{X: pro.CenterX, Y: pro.CenterY, Z: pro.CenterZ}
	want := centered.Encode()

	runPair(t, types.VariantPro, toJoystick, toThrottle, latestEquals(toThrottle.LatestState, want.Bytes()))

	// With no relayed config the emulated throttle sends the default.
	def := pro.DefaultJoystickConfig()
	dcb := def.Encode()
	p, ok := toJoystick.LatestConfig()
	require.True(t, ok)
	assert.Equal(t, dcb.Bytes(), p)
}

func TestNewSideRejectsUnknownVariant(t *testing.T) {
	_, err := NewSide(types.LinkConfig{Variant: "x45", Role: types.RoleJoystick}, x52.Pins{}, hal.NewSimClock(0, 1), NewLocalRelay(), nil)
	assert.Equal(t, errcode.InvalidParams, errcode.Of(err))
}

func TestNewSidePollPulseWaiter(t *testing.T) {
	cable := hal.NewCable()
	cfg := types.LinkConfig{Variant: types.VariantStd, Role: types.RoleJoystick, PulseWaiter: types.PulseWaiterPoll}
	s, err := NewSide(cfg, cablePins(cable), hal.NewSimClock(0, 1), NewLocalRelay(), nil)
	require.NoError(t, err)
	require.NoError(t, s.Setup())

	err = s.Exchange()
	assert.Equal(t, errcode.NoPeer, errcode.Of(err))
}
