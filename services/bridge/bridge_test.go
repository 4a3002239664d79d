//go:build !rp2040 && !rp2350

package bridge

import (
	"bytes"
	"context"
	"io"
	"net"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"x52link/types"
)

func startService(t *testing.T, variant types.Variant, cfg types.BridgeConfig) (*Service, <-chan types.State) {
	t.Helper()
	states := make(chan types.State, 64)
	s := New(variant, nil)
	s.OnState = func(st types.State) {
		select {
		case states <- st:
		default:
		}
	}
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go s.Run(ctx)
	s.Configure(cfg)
	return s, states
}

func waitState(t *testing.T, states <-chan types.State, level, status string) types.State {
	t.Helper()
	timer := time.NewTimer(2 * time.Second)
	defer timer.Stop()
	for {
		select {
		case st := <-states:
			if st.Level == level && st.Status == status {
				return st
			}
		case <-timer.C:
			t.Fatalf("no %s/%s state", level, status)
		}
	}
}

func TestRelayBetweenHalves(t *testing.T) {
	cfg := types.BridgeConfig{Transport: "pipe", Address: t.Name()}
	joySide, joyStates := startService(t, types.VariantPro, cfg)
	thrSide, _ := startService(t, types.VariantPro, cfg)

	// Published before the link is up, so it is sent on connect.
	joySide.PublishState([]byte{1, 2, 3, 4, 5, 6, 7})
	waitState(t, joyStates, "up", "link_established")
	thrSide.PublishConfig([]byte{9, 8, 7})

	assert.Eventually(t, func() bool {
		p, ok := thrSide.LatestState()
		return ok && bytes.Equal(p, []byte{1, 2, 3, 4, 5, 6, 7})
	}, 2*time.Second, time.Millisecond)
	assert.Eventually(t, func() bool {
		p, ok := joySide.LatestConfig()
		return ok && bytes.Equal(p, []byte{9, 8, 7})
	}, 2*time.Second, time.Millisecond)

	// Only the latest value survives.
	joySide.PublishState([]byte{0xa})
	joySide.PublishState([]byte{0xb})
	assert.Eventually(t, func() bool {
		p, _ := thrSide.LatestState()
		return bytes.Equal(p, []byte{0xb})
	}, 2*time.Second, time.Millisecond)

	_, ok := thrSide.LatestConfig()
	assert.False(t, ok, "a half never receives its own payloads")
}

func TestVariantMismatchIsRejected(t *testing.T) {
	cfg := types.BridgeConfig{Transport: "pipe", Address: t.Name()}
	pro, _ := startService(t, types.VariantPro, cfg)
	std, _ := startService(t, types.VariantStd, cfg)

	pro.PublishState([]byte{1, 2, 3, 4, 5, 6, 7})
	assert.Eventually(t, func() bool { return std.Rejected() == 1 }, 2*time.Second, time.Millisecond)
	_, ok := std.LatestState()
	assert.False(t, ok)
}

func TestUARTLinkLossIsRetried(t *testing.T) {
	prevDial := UARTDial
	defer func() { UARTDial = prevDial }()
	remotes := make(chan io.ReadWriteCloser, 4)
	UARTDial = func(ctx context.Context, u types.UARTConfig) (io.ReadWriteCloser, error) {
		assert.Equal(t, 115200, u.Baud)
		lc, rc := net.Pipe()
		remotes <- rc
		go remotePeer(rc)
		return lc, nil
	}

	_, states := startService(t, types.VariantPro, types.BridgeConfig{
		Transport: "uart",
		UART:      &types.UARTConfig{Baud: 115200, RxPin: 1, TxPin: 0},
	})
	waitState(t, states, "up", "link_established")

	(<-remotes).Close()
	st := waitState(t, states, "degraded", "link_lost_retrying")
	assert.Contains(t, st.Error, "retry in 250ms")
	waitState(t, states, "up", "link_established")
}

func TestSilentPeerTimesOut(t *testing.T) {
	prevDial := UARTDial
	defer func() { UARTDial = prevDial }()
	UARTDial = func(ctx context.Context, _ types.UARTConfig) (io.ReadWriteCloser, error) {
		lc, rc := net.Pipe()
		go func() { _, _ = io.Copy(io.Discard, rc) }()
		return lc, nil
	}

	_, states := startService(t, types.VariantStd, types.BridgeConfig{
		Transport:   "uart",
		UART:        &types.UARTConfig{Baud: 9600},
		HeartbeatMs: 10,
	})
	st := waitState(t, states, "degraded", "link_lost_retrying")
	assert.True(t, strings.HasPrefix(st.Error, errHeartbeatTimeout.Error()), st.Error)
}

func TestTransportErrors(t *testing.T) {
	_, states := startService(t, types.VariantPro, types.BridgeConfig{Transport: "bogus"})
	waitState(t, states, "error", "transport_init_failed")

	prevDial := UARTDial
	defer func() { UARTDial = prevDial }()
	UARTDial = nil
	_, states = startService(t, types.VariantPro, types.BridgeConfig{Transport: "uart", UART: &types.UARTConfig{}})
	st := waitState(t, states, "degraded", "dial_failed_retrying")
	assert.Contains(t, st.Error, errNoDial.Error())
}

func TestTCPTransport(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := ln.Addr().String()
	require.NoError(t, ln.Close())

	server, serverStates := startService(t, types.VariantStd, types.BridgeConfig{Transport: "tcp", Address: addr, Listen: true})
	client, _ := startService(t, types.VariantStd, types.BridgeConfig{Transport: "tcp", Address: addr})

	waitState(t, serverStates, "up", "link_established")
	client.PublishState([]byte{0, 1, 2, 3, 4, 5, 6, 7})
	assert.Eventually(t, func() bool {
		p, ok := server.LatestState()
		return ok && len(p) == 8
	}, 2*time.Second, time.Millisecond)
}

func TestFrameLayout(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, newFramedWriter(&buf).WriteFrame(Frame{Type: frameState, Payload: []byte{tagPro, 0xff}}))
	assert.Equal(t, []byte{0x20, 0x00, 0x02, 'P', 0xff}, buf.Bytes())

	f, err := newFramedReader(&buf).ReadFrame()
	require.NoError(t, err)
	assert.Equal(t, frameState, f.Type)
}

func TestOversizedFramesAreRefused(t *testing.T) {
	// A garbled header must not make the reader allocate 64KiB.
	r := strings.NewReader("\x20\xff\xff")
	_, err := newFramedReader(r).ReadFrame()
	assert.ErrorIs(t, err, errFrameTooLarge)

	var buf bytes.Buffer
	err = newFramedWriter(&buf).WriteFrame(Frame{Type: frameState, Payload: make([]byte, maxPayload+1)})
	assert.ErrorIs(t, err, errFrameTooLarge)
	assert.Zero(t, buf.Len())

	require.NoError(t, newFramedWriter(&buf).WriteFrame(Frame{Type: frameState, Payload: make([]byte, maxPayload)}))
	f, err := newFramedReader(&buf).ReadFrame()
	require.NoError(t, err)
	assert.Len(t, f.Payload, maxPayload)
}

func TestBackoffSeq(t *testing.T) {
	next := backoffSeq(250*time.Millisecond, 5*time.Second)
	var got []time.Duration
	for i := 0; i < 7; i++ {
		got = append(got, next())
	}
	assert.Equal(t, []time.Duration{
		250 * time.Millisecond, 500 * time.Millisecond, time.Second,
		2 * time.Second, 4 * time.Second, 5 * time.Second, 5 * time.Second,
	}, got)
}

// remotePeer minimally services the framing used by the bridge: it replies
// PONG to PING and drains any payload of other frames. It exits on
// read/write error.
func remotePeer(c io.ReadWriteCloser) {
	defer c.Close()
	hdr := make([]byte, 3)
	buf := make([]byte, 0, 256)
	for {
		if _, err := io.ReadFull(c, hdr); err != nil {
			return
		}
		n := int(hdr[1])<<8 | int(hdr[2])
		if n > 0 {
			if cap(buf) < n {
				buf = make([]byte, n)
			} else {
				buf = buf[:n]
			}
			if _, err := io.ReadFull(c, buf); err != nil {
				return
			}
		}
		if hdr[0] == framePing {
			if _, err := c.Write([]byte{framePong, 0x00, 0x00}); err != nil {
				return
			}
		}
	}
}
