// Package hal is the digital-I/O capability set the X52 link runs on:
// pins that can be configured, driven and sampled, an optional falling-edge
// interrupt, and a free-running microsecond clock with a short delay.
package hal

// Pull selects the input bias of a pin.
type Pull uint8

const (
	PullNone Pull = iota
	PullUp
	PullDown
)

// GPIOPin is one digital line.
type GPIOPin interface {
	ConfigureInput(pull Pull) error
	ConfigureOutput(initial bool) error
	Set(level bool)
	Get() bool
	Number() int
}

// Edge selection for IRQ.
type Edge uint8

const (
	EdgeNone Edge = iota
	EdgeRising
	EdgeFalling
	EdgeBoth
)

func (e Edge) String() string {
	switch e {
	case EdgeRising:
		return "rising"
	case EdgeFalling:
		return "falling"
	case EdgeBoth:
		return "both"
	default:
		return "none"
	}
}

// IRQPin extends GPIOPin with interrupts. Handlers run in interrupt context
// on hardware and must not block.
type IRQPin interface {
	GPIOPin
	SetIRQ(edge Edge, handler func()) error
	ClearIRQ() error
}

// Clock is a free-running 32-bit microsecond counter plus a delay with
// sub-millisecond granularity. Micros wraps; compare readings with x/timex.
type Clock interface {
	Micros() uint32
	SleepMicros(us uint32)
}

// PinFactory supplies GPIO pins by the board's numbering scheme.
type PinFactory interface {
	ByNumber(n int) (GPIOPin, bool)
}
