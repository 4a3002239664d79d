package pro

import (
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"x52link/x/bitbuf"
	"x52link/x52"
)

func setBits(b bitbuf.Bits) []int {
	var out []int
	for i := 0; i < b.Len(); i++ {
		if b.Bit(i) {
			out = append(out, i)
		}
	}
	return out
}

func span(from, to int) []int {
	var out []int
	for i := from; i <= to; i++ {
		out = append(out, i)
	}
	return out
}

func TestStateFieldOffsets(t *testing.T) {
	cases := []struct {
		name  string
		state JoystickState
		bits  []int
	}{
		{"x", JoystickState{X: MaxX}, append(span(0, 7), 16, 17)},
		{"y", JoystickState{Y: MaxY}, append(span(8, 15), 18, 19)},
		{"z", JoystickState{Z: MaxZ}, append(span(22, 23), span(24, 31)...)},
		{"x high bits only", JoystickState{X: 0x300}, []int{16, 17}},
		{"pov1 down", JoystickState{POV1: x52.Down}, []int{32}},
		{"pov1 right", JoystickState{POV1: x52.Right}, []int{32, 33}},
		{"pov1 down-left", JoystickState{POV1: x52.DownLeft}, []int{35}},
		{"pov2 up", JoystickState{POV2: x52.Up}, []int{36}},
		{"pov2 right", JoystickState{POV2: x52.Right}, []int{37}},
		{"pov2 down", JoystickState{POV2: x52.Down}, []int{38}},
		{"pov2 left", JoystickState{POV2: x52.Left}, []int{39}},
		{"trigger stage 1", JoystickState{TriggerStage1: true}, []int{40}},
		{"fire", JoystickState{ButtonFire: true}, []int{41}},
		{"a", JoystickState{ButtonA: true}, []int{42}},
		{"c", JoystickState{ButtonC: true}, []int{43}},
		{"trigger stage 2", JoystickState{TriggerStage2: true}, []int{44}},
		{"mode1", JoystickState{Mode: x52.Mode1}, []int{45}},
		{"mode2", JoystickState{Mode: x52.Mode2}, []int{46}},
		{"mode3", JoystickState{Mode: x52.Mode3}, []int{47}},
		{"b", JoystickState{ButtonB: true}, []int{48}},
		{"pinkie", JoystickState{PinkieSwitch: true}, []int{49}},
		{"t1", JoystickState{ButtonT1: true}, []int{50}},
		{"t2", JoystickState{ButtonT2: true}, []int{51}},
		{"t3", JoystickState{ButtonT3: true}, []int{52}},
		{"t4", JoystickState{ButtonT4: true}, []int{53}},
		{"t5", JoystickState{ButtonT5: true}, []int{54}},
		{"t6", JoystickState{ButtonT6: true}, []int{55}},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			b := c.state.Encode()
			require.Equal(t, StateBits, b.Len())
			assert.ElementsMatch(t, c.bits, setBits(b))
		})
	}

	var zero JoystickState
	assert.Empty(t, setBits(zero.Encode()))
}

func TestConfigFieldOffsets(t *testing.T) {
	// Fire LED on and every color amber encode to all zeros.
	base := JoystickConfig{ButtonFireLED: true}
	cases := []struct {
		name string
		mut  func(*JoystickConfig)
		bits []int
	}{
		{"brightness", func(c *JoystickConfig) { c.LEDBrightness = MaxLEDBrightness }, span(0, 4)},
		{"pov1 blink", func(c *JoystickConfig) { c.POV1LEDBlinking = true }, []int{5}},
		{"a led", func(c *JoystickConfig) { c.ButtonALED = Off }, []int{6, 7}},
		{"pov2 led", func(c *JoystickConfig) { c.POV2LED = Red }, []int{9}},
		{"fire led off", func(c *JoystickConfig) { c.ButtonFireLED = false }, []int{10}},
		{"b led", func(c *JoystickConfig) { c.ButtonBLED = Green }, []int{11}},
		{"t1t2 led", func(c *JoystickConfig) { c.ButtonT1T2LED = Off }, []int{13, 14}},
		{"t3t4 led", func(c *JoystickConfig) { c.ButtonT3T4LED = Off }, []int{15, 16}},
		{"t5t6 led", func(c *JoystickConfig) { c.ButtonT5T6LED = Off }, []int{17, 18}},
	}
	assert.Empty(t, setBits(base.Encode()))
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			cfg := base
			c.mut(&cfg)
			b := cfg.Encode()
			require.Equal(t, ConfigBits, b.Len())
			assert.ElementsMatch(t, c.bits, setBits(b))
		})
	}
}

var validDirections = []x52.Direction{
	x52.NoDirection, x52.Up, x52.UpRight, x52.Right, x52.DownRight,
	x52.Down, x52.DownLeft, x52.Left, x52.UpLeft,
}

func randomState(r *rand.Rand) JoystickState {
	return JoystickState{
		X:             uint16(r.IntN(MaxX + 1)),
		Y:             uint16(r.IntN(MaxY + 1)),
		Z:             uint16(r.IntN(MaxZ + 1)),
		POV1:          validDirections[r.IntN(len(validDirections))],
		POV2:          x52.Direction(r.IntN(16)),
		Mode:          x52.Mode(r.IntN(4)),
		TriggerStage1: r.IntN(2) == 1,
		TriggerStage2: r.IntN(2) == 1,
		PinkieSwitch:  r.IntN(2) == 1,
		ButtonFire:    r.IntN(2) == 1,
		ButtonA:       r.IntN(2) == 1,
		ButtonB:       r.IntN(2) == 1,
		ButtonC:       r.IntN(2) == 1,
		ButtonT1:      r.IntN(2) == 1,
		ButtonT2:      r.IntN(2) == 1,
		ButtonT3:      r.IntN(2) == 1,
		ButtonT4:      r.IntN(2) == 1,
		ButtonT5:      r.IntN(2) == 1,
		ButtonT6:      r.IntN(2) == 1,
	}
}

func randomConfig(r *rand.Rand) JoystickConfig {
	return JoystickConfig{
		LEDBrightness:   uint8(r.IntN(MaxLEDBrightness + 1)),
		POV1LEDBlinking: r.IntN(2) == 1,
		ButtonFireLED:   r.IntN(2) == 1,
		POV2LED:         LEDColor(r.IntN(4)),
		ButtonALED:      LEDColor(r.IntN(4)),
		ButtonBLED:      LEDColor(r.IntN(4)),
		ButtonT1T2LED:   LEDColor(r.IntN(4)),
		ButtonT3T4LED:   LEDColor(r.IntN(4)),
		ButtonT5T6LED:   LEDColor(r.IntN(4)),
	}
}

func TestRoundTrip(t *testing.T) {
	r := rand.New(rand.NewPCG(52, 1))
	for i := 0; i < 500; i++ {
		s := randomState(r)
		b := s.Encode()
		got, ok := DecodeState(&b)
		require.True(t, ok)
		require.Equal(t, s, got)

		c := randomConfig(r)
		cb := c.Encode()
		gotCfg, ok := DecodeConfig(&cb)
		require.True(t, ok)
		require.Equal(t, c, gotCfg)
	}
}

func TestBytesRoundTrip(t *testing.T) {
	s := JoystickState{X: 700, Y: 12, Z: 1023, POV1: x52.UpLeft, Mode: x52.Mode3, ButtonT4: true}
	b := s.Encode()
	raw := b.Bytes()
	require.Len(t, raw, 7)
	got, ok := StateFromBytes(raw)
	require.True(t, ok)
	assert.Equal(t, s, got)

	_, ok = StateFromBytes(raw[:3])
	assert.False(t, ok)

	cfg := DefaultJoystickConfig()
	cb := cfg.Encode()
	gotCfg, ok := ConfigFromBytes(cb.Bytes())
	require.True(t, ok)
	assert.Equal(t, cfg, gotCfg)
}

func TestHatCodesRotateClockwiseFromDown(t *testing.T) {
	want := map[uint32]x52.Direction{
		0: x52.NoDirection, 1: x52.Down, 2: x52.DownRight, 3: x52.Right, 4: x52.UpRight,
		5: x52.Up, 6: x52.UpLeft, 7: x52.Left, 8: x52.DownLeft,
		9: x52.NoDirection, 15: x52.NoDirection,
	}
	for code, dir := range want {
		b := bitbuf.New(StateBits)
		b.SetUint(32, 4, code)
		s, _ := DecodeState(&b)
		assert.Equal(t, dir, s.POV1, "code %d", code)
	}
}

func TestModeDecoding(t *testing.T) {
	s := JoystickState{Mode: x52.Mode2}
	b := s.Encode()
	got, _ := DecodeState(&b)
	assert.Equal(t, x52.Mode2, got.Mode)

	// Not one-hot: undefined.
	b.SetUint(45, 3, 3)
	got, _ = DecodeState(&b)
	assert.Equal(t, x52.ModeUndefined, got.Mode)

	b.SetUint(45, 3, 0)
	got, _ = DecodeState(&b)
	assert.Equal(t, x52.ModeUndefined, got.Mode)
}

func TestOutOfRangeAxesAreTruncated(t *testing.T) {
	s := JoystickState{X: 1024 + 5}
	assert.Error(t, s.Validate())
	b := s.Encode()
	got, _ := DecodeState(&b)
	assert.Equal(t, uint16(5), got.X)
	assert.NoError(t, (&JoystickState{X: MaxX, Y: MaxY, Z: MaxZ}).Validate())
}

func TestDefaultConfig(t *testing.T) {
	c := DefaultJoystickConfig()
	assert.Equal(t, uint8(31), c.LEDBrightness)
	assert.True(t, c.ButtonFireLED)
	assert.Equal(t, Green, c.ButtonT5T6LED)
}
