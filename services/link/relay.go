package link

import "sync"

// Relay carries the raw wire payloads between the two halves of a link.
// Only the latest value of each direction matters; anything older is
// overwritten. *bridge.Service implements it over a byte stream.
type Relay interface {
	PublishState(p []byte)
	LatestState() ([]byte, bool)
	PublishConfig(p []byte)
	LatestConfig() ([]byte, bool)
}

// Mailbox holds the most recent payload put into it.
type Mailbox struct {
	mu     sync.Mutex
	buf    []byte
	set    bool
	seq    uint64
	notify chan struct{}
}

func NewMailbox() *Mailbox {
	return &Mailbox{notify: make(chan struct{}, 1)}
}

// Put replaces the held payload with a copy of p.
func (m *Mailbox) Put(p []byte) {
	m.mu.Lock()
	m.buf = append(m.buf[:0], p...)
	m.set = true
	m.seq++
	m.mu.Unlock()
	select {
	case m.notify <- struct{}{}:
	default:
	}
}

// Get returns a copy of the held payload.
func (m *Mailbox) Get() ([]byte, bool) {
	p, _, ok := m.GetSeq()
	return p, ok
}

// GetSeq also returns the number of Puts so far.
func (m *Mailbox) GetSeq() ([]byte, uint64, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.set {
		return nil, m.seq, false
	}
	return append([]byte(nil), m.buf...), m.seq, true
}

// Changed is signalled after a Put. Several Puts may coalesce into one
// signal.
func (m *Mailbox) Changed() <-chan struct{} { return m.notify }

// LocalRelay joins two sides running in the same process.
type LocalRelay struct {
	State  *Mailbox
	Config *Mailbox
}

func NewLocalRelay() *LocalRelay {
	return &LocalRelay{State: NewMailbox(), Config: NewMailbox()}
}

func (r *LocalRelay) PublishState(p []byte)        { r.State.Put(p) }
func (r *LocalRelay) LatestState() ([]byte, bool)  { return r.State.Get() }
func (r *LocalRelay) PublishConfig(p []byte)       { r.Config.Put(p) }
func (r *LocalRelay) LatestConfig() ([]byte, bool) { return r.Config.Get() }
