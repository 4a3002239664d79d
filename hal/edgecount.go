package hal

import "sync/atomic"

// EdgeCounter counts edges on an IRQPin from its interrupt handler.
// The handler only increments; readers load the counter atomically, so a
// poll loop never observes a torn value.
type EdgeCounter struct {
	n      atomic.Uint32
	cancel func()
}

// Attach registers the counting handler on pin for the given edge. Attaching
// again replaces the previous registration.
func (c *EdgeCounter) Attach(pin IRQPin, edge Edge) error {
	c.Detach()
	if err := pin.SetIRQ(edge, c.onEdge); err != nil {
		return err
	}
	c.cancel = func() { _ = pin.ClearIRQ() }
	return nil
}

// Detach removes the handler if one is registered.
func (c *EdgeCounter) Detach() {
	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}
}

// Count returns the number of edges seen so far. It wraps at 2^32.
func (c *EdgeCounter) Count() uint32 { return c.n.Load() }

// ISR path: must not block.
func (c *EdgeCounter) onEdge() { c.n.Add(1) }
