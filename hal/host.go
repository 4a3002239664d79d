//go:build !rp2040 && !rp2350

package hal

import (
	"runtime"
	"sort"
	"sync"
	"time"

	"x52link/x/timex"
)

// ----------------------------- GPIO (host) -----------------------------------

// FakePin implements GPIOPin and IRQPin for host-side tests and simulations.
// IRQ handlers run synchronously inside Set, on the goroutine that caused
// the edge.
type FakePin struct {
	mu      sync.RWMutex
	number  int
	level   bool
	modeOut bool
	irqEdge Edge
	irqFunc func()
}

// NewFakePin returns a low, input-mode pin.
func NewFakePin(n int) *FakePin { return &FakePin{number: n} }

func (p *FakePin) ConfigureInput(_ Pull) error {
	p.mu.Lock()
	p.modeOut = false
	p.mu.Unlock()
	return nil
}

func (p *FakePin) ConfigureOutput(initial bool) error {
	p.mu.Lock()
	p.modeOut = true
	p.mu.Unlock()
	p.Set(initial)
	return nil
}

func (p *FakePin) Set(level bool) {
	p.mu.Lock()
	old := p.level
	p.level = level
	want := irqWanted(p.irqEdge, edgeFrom(old, level))
	irq := p.irqFunc
	p.mu.Unlock()
	if want && irq != nil {
		irq()
	}
}

func (p *FakePin) Get() bool {
	p.mu.RLock()
	v := p.level
	p.mu.RUnlock()
	return v
}

func (p *FakePin) Number() int { return p.number }

// IsOutput reports the last configured direction.
func (p *FakePin) IsOutput() bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.modeOut
}

func (p *FakePin) SetIRQ(edge Edge, handler func()) error {
	p.mu.Lock()
	p.irqEdge = edge
	p.irqFunc = handler
	p.mu.Unlock()
	return nil
}

func (p *FakePin) ClearIRQ() error {
	p.mu.Lock()
	p.irqEdge = EdgeNone
	p.irqFunc = nil
	p.mu.Unlock()
	return nil
}

func edgeFrom(old, new bool) Edge {
	switch {
	case !old && new:
		return EdgeRising
	case old && !new:
		return EdgeFalling
	default:
		return EdgeNone
	}
}

func irqWanted(cfg, seen Edge) bool {
	if seen == EdgeNone {
		return false
	}
	switch cfg {
	case EdgeBoth:
		return true
	default:
		return cfg == seen
	}
}

// HostPinFactory returns stable *FakePin instances per number.
type HostPinFactory struct {
	mu   sync.Mutex
	pins map[int]*FakePin
}

func (f *HostPinFactory) ByNumber(n int) (GPIOPin, bool) {
	return f.Get(n), true
}

// Get exposes the underlying *FakePin, creating it on first use.
func (f *HostPinFactory) Get(n int) *FakePin {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.pins == nil {
		f.pins = make(map[int]*FakePin)
	}
	p, ok := f.pins[n]
	if !ok {
		p = NewFakePin(n)
		f.pins[n] = p
	}
	return p
}

// DefaultPinFactory provides a host GPIO factory.
func DefaultPinFactory() PinFactory { return &HostPinFactory{} }

// Cable is the four-wire connection between the two halves of an X52, with
// the lines named after the joystick PCB labels. Both ends share the same
// FakePins: each line is driven by one side and sampled by the other.
type Cable struct {
	C01, C02, C03, C04 *FakePin
}

func NewCable() *Cable {
	return &Cable{
		C01: NewFakePin(1),
		C02: NewFakePin(2),
		C03: NewFakePin(3),
		C04: NewFakePin(4),
	}
}

// ----------------------------- Clocks (host) ---------------------------------

// HostClock is a wall-clock backed Clock. Short sleeps yield in a loop so
// that a peer goroutine on the same core keeps running; a millisecond or
// more goes to the scheduler.
type HostClock struct{ start time.Time }

func NewHostClock() *HostClock { return &HostClock{start: time.Now()} }

func (c *HostClock) Micros() uint32 { return uint32(time.Since(c.start).Microseconds()) }

func (c *HostClock) SleepMicros(us uint32) {
	if us == 0 {
		runtime.Gosched()
		return
	}
	if us >= 1000 {
		time.Sleep(time.Duration(us) * time.Microsecond)
		return
	}
	dl := timex.After(c.Micros(), us)
	for !timex.Reached(c.Micros(), dl) {
		runtime.Gosched()
	}
}

// SimClock is a virtual microsecond clock for deterministic tests. Every
// Micros call advances time by Step; SleepMicros advances by the requested
// amount. Callbacks registered with At fire, in time order, as soon as the
// clock reaches them.
type SimClock struct {
	mu     sync.Mutex
	now    uint32
	Step   uint32
	events []simEvent
	seq    int
}

type simEvent struct {
	at  uint32
	seq int
	fn  func()
}

// NewSimClock returns a clock starting at start that advances step per read.
// A zero step is coerced to 1 so that poll loops always make progress.
func NewSimClock(start, step uint32) *SimClock {
	if step == 0 {
		step = 1
	}
	return &SimClock{now: start, Step: step}
}

// Now returns the current virtual time without advancing it.
func (c *SimClock) Now() uint32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *SimClock) Micros() uint32 {
	c.advance(c.Step)
	return c.Now()
}

func (c *SimClock) SleepMicros(us uint32) {
	if us == 0 {
		us = 1
	}
	c.advance(us)
}

// At schedules fn to run once the clock reaches t. An event already due runs
// on the next advance.
func (c *SimClock) At(t uint32, fn func()) {
	c.mu.Lock()
	c.seq++
	c.events = append(c.events, simEvent{at: t, seq: c.seq, fn: fn})
	c.mu.Unlock()
}

func (c *SimClock) advance(d uint32) {
	c.mu.Lock()
	c.now += d
	now := c.now
	var due, keep []simEvent
	for _, ev := range c.events {
		if timex.Reached(now, ev.at) {
			due = append(due, ev)
		} else {
			keep = append(keep, ev)
		}
	}
	c.events = keep
	c.mu.Unlock()

	sort.SliceStable(due, func(i, j int) bool {
		if due[i].at != due[j].at {
			return timex.Remaining(due[j].at, due[i].at) < 0
		}
		return due[i].seq < due[j].seq
	})
	for _, ev := range due {
		ev.fn()
	}
}
