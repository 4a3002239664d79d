package pro

import (
	"x52link/errcode"
	"x52link/x/bitbuf"
	"x52link/x52"
)

// Wire widths.
const (
	StateBits  = 56
	ConfigBits = 19
)

// Axis limits of the X52 Pro.
const (
	MaxX    = 1023
	MaxY    = 1023
	MaxZ    = 1023
	CenterX = 512
	CenterY = 512
	CenterZ = 512

	MaxLEDBrightness = 31
)

// LEDColor is the palette of the bicolor button LEDs. The comments show the
// two bits as they appear on the wire, lowest first.
type LEDColor uint8

const (
	Amber LEDColor = 0 // 00
	Green LEDColor = 1 // 10
	Red   LEDColor = 2 // 01
	Off   LEDColor = 3 // 11
)

func (c LEDColor) String() string {
	switch c {
	case Amber:
		return "amber"
	case Green:
		return "green"
	case Red:
		return "red"
	default:
		return "off"
	}
}

// JoystickState is the data the joystick sends through the cable.
// The zero value is all-released, axes at 0, Mode undefined.
type JoystickState struct {
	X uint16 // 0..MaxX, center CenterX
	Y uint16 // 0..MaxY, center CenterY
	Z uint16 // 0..MaxZ, center CenterZ

	POV1 x52.Direction
	POV2 x52.Direction
	Mode x52.Mode

	TriggerStage1 bool
	TriggerStage2 bool
	PinkieSwitch  bool
	ButtonFire    bool
	ButtonA       bool
	ButtonB       bool
	ButtonC       bool
	ButtonT1      bool
	ButtonT2      bool
	ButtonT3      bool
	ButtonT4      bool
	ButtonT5      bool
	ButtonT6      bool
}

// JoystickConfig is the data the throttle sends through the cable.
type JoystickConfig struct {
	LEDBrightness   uint8 // 0..MaxLEDBrightness
	POV1LEDBlinking bool  // blinks about 4 times per second
	ButtonFireLED   bool

	POV2LED       LEDColor
	ButtonALED    LEDColor
	ButtonBLED    LEDColor
	ButtonT1T2LED LEDColor
	ButtonT3T4LED LEDColor
	ButtonT5T6LED LEDColor
}

// DefaultJoystickConfig is full brightness, fire LED on, every bicolor LED
// green.
func DefaultJoystickConfig() JoystickConfig {
	return JoystickConfig{
		LEDBrightness: MaxLEDBrightness,
		ButtonFireLED: true,
		POV2LED:       Green,
		ButtonALED:    Green,
		ButtonBLED:    Green,
		ButtonT1T2LED: Green,
		ButtonT3T4LED: Green,
		ButtonT5T6LED: Green,
	}
}

// Validate reports axis values above their maxima. Encode truncates such
// values silently, so callers that care must clamp first.
func (s *JoystickState) Validate() error {
	switch {
	case s.X > MaxX:
		return &errcode.E{C: errcode.OutOfRange, Op: "pro.state", Msg: "x exceeds 1023"}
	case s.Y > MaxY:
		return &errcode.E{C: errcode.OutOfRange, Op: "pro.state", Msg: "y exceeds 1023"}
	case s.Z > MaxZ:
		return &errcode.E{C: errcode.OutOfRange, Op: "pro.state", Msg: "z exceeds 1023"}
	}
	return nil
}

// pov1Codes maps the 4-bit wire code of the first hat to a Direction:
// clockwise starting from Down.
var pov1Codes = [9]x52.Direction{
	x52.NoDirection,
	x52.Down, x52.DownRight, x52.Right, x52.UpRight,
	x52.Up, x52.UpLeft, x52.Left, x52.DownLeft,
}

// Second hat: one bit per cardinal.
var pov2Bits = [4]struct {
	bit int
	dir x52.Direction
}{{36, x52.Up}, {37, x52.Right}, {38, x52.Down}, {39, x52.Left}}

// Encode packs s into its 56-bit wire layout.
func (s *JoystickState) Encode() bitbuf.Bits {
	b := bitbuf.New(StateBits)

	b.SetUint(0, 8, uint32(s.X))
	b.SetUint(8, 8, uint32(s.Y))
	b.SetUint(24, 8, uint32(s.Z))
	b.SetUint(16, 2, uint32(s.X>>8))
	b.SetUint(18, 2, uint32(s.Y>>8))
	b.SetUint(22, 2, uint32(s.Z>>8))

	var code uint32
	for i, d := range pov1Codes {
		if i > 0 && d == s.POV1 {
			code = uint32(i)
			break
		}
	}
	b.SetUint(32, 4, code)

	for _, p := range pov2Bits {
		b.SetBit(p.bit, s.POV2&p.dir != 0)
	}

	b.SetBit(40, s.TriggerStage1)
	b.SetBit(41, s.ButtonFire)
	b.SetBit(42, s.ButtonA)
	b.SetBit(43, s.ButtonC)
	b.SetBit(44, s.TriggerStage2)
	b.SetBit(45, s.Mode == x52.Mode1)
	b.SetBit(46, s.Mode == x52.Mode2)
	b.SetBit(47, s.Mode == x52.Mode3)
	b.SetBit(48, s.ButtonB)
	b.SetBit(49, s.PinkieSwitch)
	b.SetBit(50, s.ButtonT1)
	b.SetBit(51, s.ButtonT2)
	b.SetBit(52, s.ButtonT3)
	b.SetBit(53, s.ButtonT4)
	b.SetBit(54, s.ButtonT5)
	b.SetBit(55, s.ButtonT6)
	return b
}

// DecodeState unpacks a 56-bit frame. The Pro format has no integrity check,
// so the result is always ok for a buffer of the right length.
func DecodeState(b *bitbuf.Bits) (JoystickState, bool) {
	var s JoystickState
	if b.Len() != StateBits {
		return s, false
	}
	s.X = uint16(b.Uint(0, 8) | b.Uint(16, 2)<<8)
	s.Y = uint16(b.Uint(8, 8) | b.Uint(18, 2)<<8)
	s.Z = uint16(b.Uint(24, 8) | b.Uint(22, 2)<<8)

	if code := b.Uint(32, 4); code < uint32(len(pov1Codes)) {
		s.POV1 = pov1Codes[code]
	}
	for _, p := range pov2Bits {
		if b.Bit(p.bit) {
			s.POV2 |= p.dir
		}
	}

	// One-hot; anything else, including all zeros, is undefined.
	switch b.Uint(45, 3) {
	case 1:
		s.Mode = x52.Mode1
	case 2:
		s.Mode = x52.Mode2
	case 4:
		s.Mode = x52.Mode3
	default:
		s.Mode = x52.ModeUndefined
	}

	s.TriggerStage1 = b.Bit(40)
	s.ButtonFire = b.Bit(41)
	s.ButtonA = b.Bit(42)
	s.ButtonC = b.Bit(43)
	s.TriggerStage2 = b.Bit(44)
	s.ButtonB = b.Bit(48)
	s.PinkieSwitch = b.Bit(49)
	s.ButtonT1 = b.Bit(50)
	s.ButtonT2 = b.Bit(51)
	s.ButtonT3 = b.Bit(52)
	s.ButtonT4 = b.Bit(53)
	s.ButtonT5 = b.Bit(54)
	s.ButtonT6 = b.Bit(55)
	return s, true
}

// Encode packs c into its 19-bit wire layout. The fire LED bit is inverted
// on the wire.
func (c *JoystickConfig) Encode() bitbuf.Bits {
	b := bitbuf.New(ConfigBits)
	b.SetUint(0, 5, uint32(c.LEDBrightness))
	b.SetBit(5, c.POV1LEDBlinking)
	b.SetUint(6, 2, uint32(c.ButtonALED))
	b.SetUint(8, 2, uint32(c.POV2LED))
	b.SetBit(10, !c.ButtonFireLED)
	b.SetUint(11, 2, uint32(c.ButtonBLED))
	b.SetUint(13, 2, uint32(c.ButtonT1T2LED))
	b.SetUint(15, 2, uint32(c.ButtonT3T4LED))
	b.SetUint(17, 2, uint32(c.ButtonT5T6LED))
	return b
}

// DecodeConfig unpacks a 19-bit frame.
func DecodeConfig(b *bitbuf.Bits) (JoystickConfig, bool) {
	var c JoystickConfig
	if b.Len() != ConfigBits {
		return c, false
	}
	c.LEDBrightness = uint8(b.Uint(0, 5))
	c.POV1LEDBlinking = b.Bit(5)
	c.ButtonALED = LEDColor(b.Uint(6, 2))
	c.POV2LED = LEDColor(b.Uint(8, 2))
	c.ButtonFireLED = !b.Bit(10)
	c.ButtonBLED = LEDColor(b.Uint(11, 2))
	c.ButtonT1T2LED = LEDColor(b.Uint(13, 2))
	c.ButtonT3T4LED = LEDColor(b.Uint(15, 2))
	c.ButtonT5T6LED = LEDColor(b.Uint(17, 2))
	return c, true
}

// StateFromBytes decodes a raw state frame as produced by Encode().Bytes().
func StateFromBytes(p []byte) (JoystickState, bool) {
	b, ok := bitbuf.FromBytes(StateBits, p)
	if !ok {
		return JoystickState{}, false
	}
	return DecodeState(&b)
}

// ConfigFromBytes decodes a raw config frame as produced by
// Encode().Bytes().
func ConfigFromBytes(p []byte) (JoystickConfig, bool) {
	b, ok := bitbuf.FromBytes(ConfigBits, p)
	if !ok {
		return JoystickConfig{}, false
	}
	return DecodeConfig(&b)
}
