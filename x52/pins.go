package x52

import (
	"x52link/errcode"
	"x52link/hal"
)

// Pins are the four link lines. An engine owns its Pins exclusively for its
// whole lifetime.
type Pins struct {
	C01, C02, C03, C04 hal.GPIOPin
}

// Validate reports a missing line.
func (p Pins) Validate() error {
	if p.C01 == nil || p.C02 == nil || p.C03 == nil || p.C04 == nil {
		return &errcode.E{C: errcode.UnknownPin, Op: "pins", Msg: "all of C01..C04 are required"}
	}
	return nil
}

// PinsByNumber resolves four board pin numbers through f.
func PinsByNumber(f hal.PinFactory, c01, c02, c03, c04 int) (Pins, error) {
	var p Pins
	var ok bool
	for _, b := range []struct {
		dst *hal.GPIOPin
		n   int
	}{{&p.C01, c01}, {&p.C02, c02}, {&p.C03, c03}, {&p.C04, c04}} {
		if *b.dst, ok = f.ByNumber(b.n); !ok {
			return Pins{}, &errcode.E{C: errcode.UnknownPin, Op: "pins"}
		}
	}
	return p, nil
}
