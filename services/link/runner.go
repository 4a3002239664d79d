// Package link runs one half of an X52 link: it drives a frame engine in a
// loop, honours the backoff each failure carries, limits the update rate and
// exchanges payloads with the other half through a Relay.
package link

import (
	"context"
	"runtime"
	"sync"
	"time"

	"x52link/errcode"
	"x52link/hal"
	"x52link/types"
	"x52link/x/mathx"
	"x52link/x/ratex"
	"x52link/x52"
)

// Logger is what the runner logs through. *slog.Logger satisfies it.
type Logger interface {
	x52.Logger
	ratex.Logger
}

// maxIdleSlice bounds a single rate-limit sleep so cancellation is noticed.
const maxIdleSlice = 10000

// Runner loops a Side.
type Runner struct {
	side  Side
	clk   hal.Clock
	limit *ratex.RateLimiter
	rate  *ratex.RateLogger
	log   Logger

	// Idle sleeps between frames. Defaults to the clock's SleepMicros;
	// firmware replaces it with a sleep that lets other goroutines run.
	Idle func(us uint32)
	// Yield runs once per loop iteration. Defaults to runtime.Gosched so an
	// unlimited loop on a cooperative scheduler still lets the bridge run.
	Yield func()

	mu     sync.Mutex
	status types.LinkStatus
}

func NewRunner(cfg types.LinkConfig, side Side, clk hal.Clock, log Logger) *Runner {
	var rl ratex.Logger
	if log != nil {
		rl = log
	}
	r := &Runner{
		side:  side,
		clk:   clk,
		limit: ratex.NewRateLimiter(clk, cfg.MaxUpdatesPerSecond, cfg.RateHistory),
		rate:  ratex.NewRateLogger(clk, cfg.RateLogPeriodMs, rl),
		log:   log,
		status: types.LinkStatus{
			Variant:  cfg.Variant,
			Role:     cfg.Role,
			Link:     types.LinkDown,
			Failures: map[string]uint64{},
		},
	}
	r.Idle = clk.SleepMicros
	r.Yield = runtime.Gosched
	return r
}

// Run sets the side up and exchanges frames until ctx is cancelled. It
// returns early only if Setup fails.
func (r *Runner) Run(ctx context.Context) error {
	if err := r.side.Setup(); err != nil {
		r.record(err)
		return err
	}
	for ctx.Err() == nil {
		r.Yield()
		if wait := r.limit.MicrosTillNextUpdate(); wait > 0 {
			r.Idle(mathx.Min(wait, uint32(maxIdleSlice)))
			continue
		}
		err := r.side.Exchange()
		r.record(err)
		if err != nil {
			r.Idle(errcode.RetryMicros(err))
			continue
		}
		if perSec, ok := r.rate.OnUpdate(); ok {
			r.mu.Lock()
			r.status.UpdatesPerSec = perSec
			r.mu.Unlock()
		}
	}
	return nil
}

func (r *Runner) record(err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s := &r.status
	s.TS = time.Now().UnixMilli()
	if err == nil {
		s.Frames++
		s.Link = types.LinkUp
		return
	}
	code := errcode.Of(err)
	s.Failures[string(code)]++
	s.LastError = err.Error()
	prev := s.Link
	if code == errcode.NoPeer {
		s.Link = types.LinkDown
	} else {
		s.Link = types.LinkDegraded
	}
	if prev != s.Link && r.log != nil {
		r.log.Debug("link: state change", "link", string(s.Link), "err", code)
	}
}

// Status returns a snapshot.
func (r *Runner) Status() types.LinkStatus {
	r.mu.Lock()
	defer r.mu.Unlock()
	s := r.status
	s.Failures = make(map[string]uint64, len(r.status.Failures))
	for k, v := range r.status.Failures {
		s.Failures[k] = v
	}
	return s
}
