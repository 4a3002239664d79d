//go:build !rp2040 && !rp2350

package bridge

import (
	"context"
	"errors"
	"io"
	"net"
	"sync"

	"x52link/types"
)

func init() {
	RegisterTransport("tcp", newTCPTransport)
	RegisterTransport("pipe", newPipeTransport)
}

// ---- tcp ----

// tcpTransport dials Address, or accepts one connection per Open when
// Listen is set.
type tcpTransport struct {
	addr   string
	listen bool
}

func newTCPTransport(cfg types.BridgeConfig) (Transport, error) {
	if cfg.Address == "" {
		return nil, errors.New("tcp transport requires an address")
	}
	return &tcpTransport{addr: cfg.Address, listen: cfg.Listen}, nil
}

func (t *tcpTransport) Open(ctx context.Context) (io.ReadWriteCloser, error) {
	if !t.listen {
		var d net.Dialer
		return d.DialContext(ctx, "tcp", t.addr)
	}
	var lc net.ListenConfig
	ln, err := lc.Listen(ctx, "tcp", t.addr)
	if err != nil {
		return nil, err
	}
	defer ln.Close()
	stop := context.AfterFunc(ctx, func() { _ = ln.Close() })
	defer stop()
	return ln.Accept()
}

func (t *tcpTransport) String() string { return "tcp" }

// ---- pipe ----

// pipeTransport pairs the two Opens of the same Address in one process.
type pipeTransport struct{ name string }

var pipes = struct {
	mu      sync.Mutex
	waiting map[string]*pipeEnd
}{waiting: map[string]*pipeEnd{}}

type pipeEnd struct {
	net.Conn
	name    string
	partner *pipeEnd
}

// Close also withdraws an unclaimed partner so a later Open cannot pair
// with it.
func (p *pipeEnd) Close() error {
	pipes.mu.Lock()
	if pipes.waiting[p.name] == p.partner {
		delete(pipes.waiting, p.name)
	}
	pipes.mu.Unlock()
	return p.Conn.Close()
}

func newPipeTransport(cfg types.BridgeConfig) (Transport, error) {
	return &pipeTransport{name: cfg.Address}, nil
}

func (t *pipeTransport) Open(ctx context.Context) (io.ReadWriteCloser, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	pipes.mu.Lock()
	defer pipes.mu.Unlock()
	if end, ok := pipes.waiting[t.name]; ok {
		delete(pipes.waiting, t.name)
		return end, nil
	}
	a, b := net.Pipe()
	ea := &pipeEnd{Conn: a, name: t.name}
	eb := &pipeEnd{Conn: b, name: t.name, partner: ea}
	ea.partner = eb
	pipes.waiting[t.name] = eb
	return ea, nil
}

func (t *pipeTransport) String() string { return "pipe" }
