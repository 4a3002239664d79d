// Package bitbuf provides fixed-capacity bit storage with little-endian byte
// and bit order, the foundation of every X52 wire format.
//
// Field value bit i lives at buffer bit start+i, and buffer bit n lives in
// byte n/8 at position n%8. Out-of-range accesses are programming errors and
// panic.
package bitbuf

// MaxBits is the capacity of the widest frame on either wire format.
const MaxBits = 64

// Bits is a value type; the zero value has length 0.
type Bits struct {
	n   int
	buf [MaxBits / 8]byte
}

// New returns a zeroed buffer of n bits.
func New(n int) Bits {
	if n < 0 || n > MaxBits {
		panic("bitbuf: invalid length")
	}
	return Bits{n: n}
}

// FromBytes returns an n-bit buffer initialised from the first ceil(n/8)
// bytes of p. It reports false if p is too short.
func FromBytes(n int, p []byte) (Bits, bool) {
	b := New(n)
	if len(p) < b.NumBytes() {
		return b, false
	}
	copy(b.buf[:b.NumBytes()], p)
	return b, true
}

// Len returns the number of addressable bits.
func (b *Bits) Len() int { return b.n }

// NumBytes returns ceil(Len/8).
func (b *Bits) NumBytes() int { return (b.n + 7) / 8 }

// Bytes returns a copy of the backing bytes.
func (b *Bits) Bytes() []byte {
	out := make([]byte, b.NumBytes())
	copy(out, b.buf[:])
	return out
}

// Bit returns bit i.
func (b *Bits) Bit(i int) bool {
	b.checkBit(i)
	return b.buf[i>>3]&(1<<(i&7)) != 0
}

// SetBit sets bit i to v.
func (b *Bits) SetBit(i int, v bool) {
	b.checkBit(i)
	if v {
		b.buf[i>>3] |= 1 << (i & 7)
	} else {
		b.buf[i>>3] &^= 1 << (i & 7)
	}
}

// Uint reads a width-bit unsigned field starting at bit start.
func (b *Bits) Uint(start, width int) uint32 {
	b.checkField(start, width)
	var v uint32
	for i := 0; i < width; i++ {
		if b.Bit(start + i) {
			v |= 1 << i
		}
	}
	return v
}

// SetUint writes the low width bits of v starting at bit start. Higher bits
// of v are dropped.
func (b *Bits) SetUint(start, width int, v uint32) {
	b.checkField(start, width)
	for i := 0; i < width; i++ {
		b.SetBit(start+i, v&(1<<i) != 0)
	}
}

// Byte returns backing byte i.
func (b *Bits) Byte(i int) byte {
	b.checkByte(i)
	return b.buf[i]
}

// SetByte overwrites backing byte i.
func (b *Bits) SetByte(i int, v byte) {
	b.checkByte(i)
	b.buf[i] = v
}

func (b *Bits) checkBit(i int) {
	if uint(i) >= uint(b.n) {
		panic("bitbuf: bit index out of range")
	}
}

func (b *Bits) checkField(start, width int) {
	if start < 0 || width < 0 || width > 32 || start+width > b.n {
		panic("bitbuf: field out of range")
	}
}

func (b *Bits) checkByte(i int) {
	if uint(i) >= uint(b.NumBytes()) {
		panic("bitbuf: byte index out of range")
	}
}
