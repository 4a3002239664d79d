// Package bridge joins the two halves of a split X52 over a byte stream. It
// carries the latest raw JoystickState payload one way and the latest raw
// JoystickConfig payload the other, and implements link.Relay for the
// local side.
package bridge

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"sync/atomic"
	"time"

	"x52link/services/link"
	"x52link/types"
	"x52link/x52"
)

// -----------------------------------------------------------------------------
// Service
// -----------------------------------------------------------------------------

const (
	defaultHeartbeat = 5 * time.Second
	closeGrace       = 100 * time.Millisecond
)

var (
	errPeerClosed       = errors.New("peer closed the link")
	errHeartbeatTimeout = errors.New("heartbeat timeout")
)

// Service supervises one link at a time. Payloads published before a link
// is up are sent as soon as it is.
type Service struct {
	tag byte
	log x52.Logger

	// OnState, if set, is called on every state change. It must not block.
	OnState func(types.State)

	outState, outConfig *link.Mailbox
	inState, inConfig   *link.Mailbox
	rejected            atomic.Uint64

	cfgCh chan types.BridgeConfig

	mu     sync.Mutex
	curRun context.CancelFunc
	state  types.State
}

// New returns a bridge for the given protocol variant. Frames tagged with
// another variant are dropped.
func New(variant types.Variant, log x52.Logger) *Service {
	return &Service{
		tag:       variantTag(variant),
		log:       log,
		outState:  link.NewMailbox(),
		outConfig: link.NewMailbox(),
		inState:   link.NewMailbox(),
		inConfig:  link.NewMailbox(),
		cfgCh:     make(chan types.BridgeConfig, 1),
	}
}

// Configure (re)starts the link with cfg. Only the latest pending
// configuration is kept.
func (s *Service) Configure(cfg types.BridgeConfig) {
	for {
		select {
		case s.cfgCh <- cfg:
			return
		default:
		}
		select {
		case <-s.cfgCh:
		default:
		}
	}
}

// Run waits for configuration and supervises the link until ctx is
// cancelled.
func (s *Service) Run(ctx context.Context) {
	s.publishState("idle", "awaiting_config", nil)
	for {
		select {
		case <-ctx.Done():
			s.stopCurrent()
			s.publishState("stopped", "cancelled", nil)
			return
		case cfg := <-s.cfgCh:
			s.reconfigure(ctx, cfg)
		}
	}
}

// State returns the last reported state.
func (s *Service) State() types.State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Rejected counts frames dropped for carrying the wrong variant.
func (s *Service) Rejected() uint64 { return s.rejected.Load() }

func (s *Service) stopCurrent() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.curRun != nil {
		s.curRun()
		s.curRun = nil
	}
}

func (s *Service) reconfigure(parent context.Context, cfg types.BridgeConfig) {
	s.mu.Lock()
	if s.curRun != nil {
		s.curRun()
		s.curRun = nil
	}
	ctx, cancel := context.WithCancel(parent)
	s.curRun = cancel
	s.mu.Unlock()

	go s.runLink(ctx, cfg)
}

// ---- link.Relay ----

func (s *Service) PublishState(p []byte)        { s.outState.Put(p) }
func (s *Service) LatestState() ([]byte, bool)  { return s.inState.Get() }
func (s *Service) PublishConfig(p []byte)       { s.outConfig.Put(p) }
func (s *Service) LatestConfig() ([]byte, bool) { return s.inConfig.Get() }

// -----------------------------------------------------------------------------
// Link supervision and I/O
// -----------------------------------------------------------------------------

func (s *Service) runLink(ctx context.Context, cfg types.BridgeConfig) {
	tr, err := newTransport(cfg)
	if err != nil {
		s.publishState("error", "transport_init_failed", err)
		return
	}

	hb := time.Duration(cfg.HeartbeatMs) * time.Millisecond
	if hb <= 0 {
		hb = defaultHeartbeat
	}

	backoff := backoffSeq(250*time.Millisecond, 5*time.Second)
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		rwc, err := tr.Open(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			delay := backoff()
			s.publishState("degraded", "dial_failed_retrying", fmt.Errorf("%v (retry in %s)", err, delay))
			if !sleep(ctx, delay) {
				return
			}
			continue
		}

		s.publishState("up", "link_established", nil)
		err = s.handleLink(ctx, rwc, hb)
		_ = rwc.Close()
		if ctx.Err() != nil {
			return
		}
		delay := backoff()
		s.publishState("degraded", "link_lost_retrying", fmt.Errorf("%v (retry in %s)", err, delay))
		if !sleep(ctx, delay) {
			return
		}
	}
}

// handleLink owns the active link lifetime. It returns nil only when ctx is
// cancelled.
func (s *Service) handleLink(ctx context.Context, rwc io.ReadWriteCloser, hb time.Duration) error {
	rd := newFramedReader(rwc)
	wr := newFramedWriter(rwc)

	var lastRx atomic.Int64
	lastRx.Store(time.Now().UnixNano())

	// The watchdog closes rwc on a silent peer or after cancellation, which
	// also unblocks a stuck write.
	var timedOut atomic.Bool
	done := make(chan struct{})
	defer close(done)
	go func() {
		t := time.NewTicker(hb)
		defer t.Stop()
		for {
			select {
			case <-done:
				return
			case <-ctx.Done():
				sleep(context.Background(), closeGrace)
				_ = rwc.Close()
				return
			case <-t.C:
				if time.Since(time.Unix(0, lastRx.Load())) > 3*hb {
					timedOut.Store(true)
					_ = rwc.Close()
					return
				}
			}
		}
	}()
	fail := func(err error) error {
		switch {
		case ctx.Err() != nil:
			return nil
		case timedOut.Load():
			return errHeartbeatTimeout
		}
		return err
	}

	errCh := make(chan error, 1)
	go func() {
		for {
			f, err := rd.ReadFrame()
			if err != nil {
				errCh <- err
				return
			}
			lastRx.Store(time.Now().UnixNano())
			switch f.Type {
			case framePing:
				if err := wr.WriteFrame(Frame{Type: framePong}); err != nil {
					errCh <- err
					return
				}
			case framePong:
			case frameState, frameConfig:
				s.deliver(f)
			case frameClose:
				errCh <- errPeerClosed
				return
			default:
				x52.Debug(s.log, "bridge: unknown frame", "type", f.Type)
			}
		}
	}()

	// The peer may have missed earlier payloads.
	var sentState, sentConfig uint64
	flush := func(m *link.Mailbox, typ byte, sent *uint64) error {
		p, seq, ok := m.GetSeq()
		if !ok || seq == *sent {
			return nil
		}
		*sent = seq
		return wr.WriteFrame(Frame{Type: typ, Payload: append([]byte{s.tag}, p...)})
	}
	if err := flush(s.outState, frameState, &sentState); err != nil {
		return fail(err)
	}
	if err := flush(s.outConfig, frameConfig, &sentConfig); err != nil {
		return fail(err)
	}

	tick := time.NewTicker(hb)
	defer tick.Stop()

	for {
		var err error
		select {
		case <-ctx.Done():
			// Best-effort close.
			_ = wr.WriteFrame(Frame{Type: frameClose})
			return nil
		case err = <-errCh:
		case <-s.outState.Changed():
			err = flush(s.outState, frameState, &sentState)
		case <-s.outConfig.Changed():
			err = flush(s.outConfig, frameConfig, &sentConfig)
		case <-tick.C:
			err = wr.WriteFrame(Frame{Type: framePing})
		}
		if err != nil {
			return fail(err)
		}
	}
}

func (s *Service) deliver(f Frame) {
	if len(f.Payload) < 2 || f.Payload[0] != s.tag {
		s.rejected.Add(1)
		x52.Debug(s.log, "bridge: rejected payload", "type", f.Type, "len", len(f.Payload))
		return
	}
	if f.Type == frameState {
		s.inState.Put(f.Payload[1:])
	} else {
		s.inConfig.Put(f.Payload[1:])
	}
}

// -----------------------------------------------------------------------------
// Transport registry
// -----------------------------------------------------------------------------

// Transport is a pluggable link dialler/owner.
type Transport interface {
	Open(ctx context.Context) (io.ReadWriteCloser, error)
	String() string
}

type transportFactory func(types.BridgeConfig) (Transport, error)

var (
	regMu     sync.RWMutex
	registry  = map[string]transportFactory{}
	errNoDial = errors.New("UARTDial not implemented")
)

// RegisterTransport allows platform code to add transports.
func RegisterTransport(name string, f transportFactory) {
	regMu.Lock()
	defer regMu.Unlock()
	registry[name] = f
}

func newTransport(cfg types.BridgeConfig) (Transport, error) {
	regMu.RLock()
	f, ok := registry[cfg.Transport]
	regMu.RUnlock()
	if ok {
		return f(cfg)
	}
	switch cfg.Transport {
	case "uart":
		return newUARTTransport(cfg)
	default:
		return nil, fmt.Errorf("unknown transport type: %q", cfg.Transport)
	}
}

// UARTDial is injected by platform code (eg. in main or a tinygo_uart.go).
// It must open and return an io.ReadWriteCloser over the configured UART.
var UARTDial func(ctx context.Context, u types.UARTConfig) (io.ReadWriteCloser, error)

// uartTransport implements Transport via an injected dial function.
type uartTransport struct {
	cfg types.UARTConfig
}

func newUARTTransport(cfg types.BridgeConfig) (Transport, error) {
	if cfg.UART == nil {
		return nil, errors.New("uart transport requires uart config")
	}
	return &uartTransport{cfg: *cfg.UART}, nil
}

func (u *uartTransport) Open(ctx context.Context) (io.ReadWriteCloser, error) {
	if UARTDial == nil {
		return nil, errNoDial
	}
	return UARTDial(ctx, u.cfg)
}

func (u *uartTransport) String() string { return "uart" }

// -----------------------------------------------------------------------------
// Utilities
// -----------------------------------------------------------------------------

func variantTag(v types.Variant) byte {
	switch v {
	case types.VariantPro:
		return tagPro
	case types.VariantStd:
		return tagStd
	default:
		return 0
	}
}

func (s *Service) publishState(level, status string, err error) {
	st := types.State{Level: level, Status: status, TS: time.Now().UnixMilli()}
	if err != nil {
		st.Error = err.Error()
	}
	s.mu.Lock()
	s.state = st
	cb := s.OnState
	s.mu.Unlock()
	x52.Debug(s.log, "bridge: state", "level", level, "status", status)
	if cb != nil {
		cb(st)
	}
}

func backoffSeq(min, max time.Duration) func() time.Duration {
	if min <= 0 {
		min = 100 * time.Millisecond
	}
	if max < min {
		max = min
	}
	var cur = min
	return func() time.Duration {
		d := cur
		cur *= 2
		if cur > max {
			cur = max
		}
		return d
	}
}

func sleep(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
