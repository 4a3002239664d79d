package std

import (
	"x52link/errcode"
	"x52link/x/bitbuf"
	"x52link/x52"
)

// Wire widths. Byte 7 of the state frame is a checksum.
const (
	StateBits  = 64
	ConfigBits = 8

	checksumByte = 7
)

const (
	MaxX    = 2047
	MaxY    = 2047
	MaxZ    = 1023
	CenterX = 1024
	CenterY = 1024
	CenterZ = 512

	MaxLEDBrightness = 127
)

// JoystickState is the data the joystick sends through the cable.
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
	POV1LEDBlinking bool  // blinks about 25 times per second
}

// DefaultJoystickConfig is full brightness without blinking.
func DefaultJoystickConfig() JoystickConfig {
	return JoystickConfig{LEDBrightness: MaxLEDBrightness}
}

// Validate reports values above their maxima.
func (s *JoystickState) Validate() error {
	switch {
	case s.X > MaxX:
		return &errcode.E{C: errcode.OutOfRange, Op: "std.state", Msg: "x exceeds 2047"}
	case s.Y > MaxY:
		return &errcode.E{C: errcode.OutOfRange, Op: "std.state", Msg: "y exceeds 2047"}
	case s.Z > MaxZ:
		return &errcode.E{C: errcode.OutOfRange, Op: "std.state", Msg: "z exceeds 1023"}
	}
	return nil
}

func (c *JoystickConfig) Validate() error {
	if c.LEDBrightness > MaxLEDBrightness {
		return &errcode.E{C: errcode.OutOfRange, Op: "std.config", Msg: "brightness exceeds 127"}
	}
	return nil
}

// First hat, clockwise starting from Up. This differs from the Pro order.
var pov1Codes = [9]x52.Direction{
	x52.NoDirection,
	x52.Up, x52.UpRight, x52.Right, x52.DownRight,
	x52.Down, x52.DownLeft, x52.Left, x52.UpLeft,
}

var pov2Bits = [4]struct {
	bit int
	dir x52.Direction
}{{36, x52.Right}, {37, x52.Down}, {38, x52.Left}, {39, x52.Up}}

// Mode field values at bits 54..55; Mode1 has a bit of its own.
const (
	modeFieldMode2 = 1
	modeFieldMode3 = 2
)

// Encode packs s into its 64-bit wire layout including the checksum.
func (s *JoystickState) Encode() bitbuf.Bits {
	b := bitbuf.New(StateBits)

	b.SetUint(0, 8, uint32(s.X))
	b.SetUint(8, 8, uint32(s.Y))
	b.SetUint(24, 8, uint32(s.Z))
	b.SetUint(16, 3, uint32(s.X>>8))
	b.SetUint(19, 3, uint32(s.Y>>8))
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

	b.SetBit(47, s.Mode == x52.Mode1)
	switch s.Mode {
	case x52.Mode2:
		b.SetUint(54, 2, modeFieldMode2)
	case x52.Mode3:
		b.SetUint(54, 2, modeFieldMode3)
	}

	b.SetBit(40, s.TriggerStage1)
	b.SetBit(41, s.TriggerStage2)
	b.SetBit(42, s.ButtonFire)
	b.SetBit(43, s.ButtonA)
	b.SetBit(44, s.ButtonB)
	b.SetBit(45, s.ButtonC)
	b.SetBit(46, s.PinkieSwitch)
	b.SetBit(48, s.ButtonT1)
	b.SetBit(49, s.ButtonT2)
	b.SetBit(50, s.ButtonT3)
	b.SetBit(51, s.ButtonT4)
	b.SetBit(52, s.ButtonT5)
	b.SetBit(53, s.ButtonT6)

	b.SetByte(checksumByte, Checksum(&b))
	return b
}

// Checksum is the XOR of bytes 0..6.
func Checksum(b *bitbuf.Bits) byte {
	c := b.Byte(0)
	for i := 1; i < checksumByte; i++ {
		c ^= b.Byte(i)
	}
	return c
}

// DecodeState unpacks a 64-bit frame. A checksum mismatch invalidates the
// whole frame: ok is false and the returned state is zero.
func DecodeState(b *bitbuf.Bits) (JoystickState, bool) {
	var s JoystickState
	if b.Len() != StateBits || Checksum(b) != b.Byte(checksumByte) {
		return s, false
	}

	s.X = uint16(b.Uint(0, 8) | b.Uint(16, 3)<<8)
	s.Y = uint16(b.Uint(8, 8) | b.Uint(19, 3)<<8)
	s.Z = uint16(b.Uint(24, 8) | b.Uint(22, 2)<<8)

	if code := b.Uint(32, 4); code < uint32(len(pov1Codes)) {
		s.POV1 = pov1Codes[code]
	}
	for _, p := range pov2Bits {
		if b.Bit(p.bit) {
			s.POV2 |= p.dir
		}
	}

	switch b.Uint(54, 2) {
	case 0:
		if b.Bit(47) {
			s.Mode = x52.Mode1
		}
	case modeFieldMode2:
		s.Mode = x52.Mode2
	case modeFieldMode3:
		s.Mode = x52.Mode3
	}

	s.TriggerStage1 = b.Bit(40)
	s.TriggerStage2 = b.Bit(41)
	s.ButtonFire = b.Bit(42)
	s.ButtonA = b.Bit(43)
	s.ButtonB = b.Bit(44)
	s.ButtonC = b.Bit(45)
	s.PinkieSwitch = b.Bit(46)
	s.ButtonT1 = b.Bit(48)
	s.ButtonT2 = b.Bit(49)
	s.ButtonT3 = b.Bit(50)
	s.ButtonT4 = b.Bit(51)
	s.ButtonT5 = b.Bit(52)
	s.ButtonT6 = b.Bit(53)
	return s, true
}

// Encode packs c into its 8-bit wire layout.
func (c *JoystickConfig) Encode() bitbuf.Bits {
	b := bitbuf.New(ConfigBits)
	b.SetUint(0, 7, uint32(c.LEDBrightness))
	b.SetBit(7, c.POV1LEDBlinking)
	return b
}

// DecodeConfig unpacks an 8-bit frame. There is no integrity check.
func DecodeConfig(b *bitbuf.Bits) (JoystickConfig, bool) {
	if b.Len() != ConfigBits {
		return JoystickConfig{}, false
	}
	return JoystickConfig{
		LEDBrightness:   uint8(b.Uint(0, 7)),
		POV1LEDBlinking: b.Bit(7),
	}, true
}

// StateFromBytes decodes and checksums a raw 8-byte state frame.
func StateFromBytes(p []byte) (JoystickState, bool) {
	b, ok := bitbuf.FromBytes(StateBits, p)
	if !ok {
		return JoystickState{}, false
	}
	return DecodeState(&b)
}

func ConfigFromBytes(p []byte) (JoystickConfig, bool) {
	b, ok := bitbuf.FromBytes(ConfigBits, p)
	if !ok {
		return JoystickConfig{}, false
	}
	return DecodeConfig(&b)
}
