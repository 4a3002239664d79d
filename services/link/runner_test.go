//go:build !rp2040 && !rp2350

package link

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"x52link/errcode"
	"x52link/hal"
	"x52link/types"
)

type fakeSide struct {
	setupErr error
	results  []error
	calls    int
	stop     func() bool
	cancel   context.CancelFunc
}

func (f *fakeSide) Setup() error { return f.setupErr }

func (f *fakeSide) Exchange() error {
	f.calls++
	var err error
	if i := f.calls - 1; i < len(f.results) {
		err = f.results[i]
	}
	if f.stop() {
		f.cancel()
	}
	return err
}

func TestRunnerHonoursBackoff(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	clk := hal.NewSimClock(0, 1)
	side := &fakeSide{
		results: []error{
			errcode.Retry(errcode.NoPeer, "t", 1),
			errcode.Retry(errcode.PeerUnresponsive, "t", 28000),
			nil,
			nil,
		},
		cancel: cancel,
	}
	side.stop = func() bool { return side.calls == 4 }

	r := NewRunner(types.LinkConfig{Variant: types.VariantPro, Role: types.RoleJoystick}, side, clk, nil)
	var idle []uint32
	r.Idle = func(us uint32) {
		idle = append(idle, us)
		clk.SleepMicros(us)
	}
	require.NoError(t, r.Run(ctx))

	assert.Equal(t, []uint32{1, 28000}, idle)
	st := r.Status()
	assert.Equal(t, uint64(2), st.Frames)
	assert.Equal(t, map[string]uint64{"no_peer": 1, "peer_unresponsive": 1}, st.Failures)
	assert.Equal(t, types.LinkUp, st.Link)
	assert.Equal(t, "peer_unresponsive", st.LastError)
	assert.Equal(t, types.VariantPro, st.Variant)
}

func TestRunnerYieldsEveryIteration(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	noPeer := errcode.Retry(errcode.NoPeer, "t", 1)
	side := &fakeSide{
		results: []error{noPeer, noPeer, noPeer, nil, nil, noPeer},
		cancel:  cancel,
	}
	side.stop = func() bool { return side.calls == 6 }

	// No rate limit: nothing else in the loop would give up the CPU.
	r := NewRunner(types.LinkConfig{}, side, hal.NewSimClock(0, 1), nil)
	yields := 0
	r.Yield = func() { yields++ }
	require.NoError(t, r.Run(ctx))

	assert.Equal(t, 6, side.calls)
	assert.Equal(t, 6, yields)
}

func TestRunnerLinkLevels(t *testing.T) {
	r := NewRunner(types.LinkConfig{}, &fakeSide{}, hal.NewSimClock(0, 1), nil)
	assert.Equal(t, types.LinkDown, r.Status().Link)
	r.record(errcode.Retry(errcode.Desync, "t", 23000))
	assert.Equal(t, types.LinkDegraded, r.Status().Link)
	r.record(nil)
	assert.Equal(t, types.LinkUp, r.Status().Link)
	r.record(errcode.Retry(errcode.NoPeer, "t", 1))
	assert.Equal(t, types.LinkDown, r.Status().Link)

	// Snapshots do not share the failure map.
	s := r.Status()
	s.Failures["desync"] = 100
	assert.Equal(t, uint64(1), r.Status().Failures["desync"])
}

func TestRunnerRateLimit(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	clk := hal.NewSimClock(0, 1)
	side := &fakeSide{cancel: cancel}
	side.stop = func() bool { return clk.Now() >= 1_000_000 }

	cfg := types.LinkConfig{MaxUpdatesPerSecond: 100, RateHistory: 4, RateLogPeriodMs: 500}
	r := NewRunner(cfg, side, clk, nil)
	var longest uint32
	r.Idle = func(us uint32) {
		longest = max(longest, us)
		clk.SleepMicros(us)
	}
	require.NoError(t, r.Run(ctx))

	// One second at 100/s plus the initial burst of RateHistory.
	assert.GreaterOrEqual(t, side.calls, 97)
	assert.LessOrEqual(t, side.calls, 100+4)
	assert.LessOrEqual(t, longest, uint32(maxIdleSlice))
	assert.InDelta(t, 100, r.Status().UpdatesPerSec, 5)
}

func TestRunnerSetupFailure(t *testing.T) {
	bad := &errcode.E{C: errcode.UnknownPin, Op: "pins"}
	r := NewRunner(types.LinkConfig{}, &fakeSide{setupErr: bad}, hal.NewSimClock(0, 1), nil)
	err := r.Run(context.Background())
	assert.True(t, errors.Is(err, bad))
	assert.Equal(t, uint64(1), r.Status().Failures["unknown_pin"])
}
