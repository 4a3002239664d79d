// Package ratex throttles and measures update loops driven by a free-running
// microsecond counter.
package ratex

import (
	"x52link/x/mathx"
	"x52link/x/timex"
)

// Clock is the counter the helpers read.
type Clock interface{ Micros() uint32 }

// Logger receives the periodic rate report. *slog.Logger satisfies it.
type Logger interface {
	Info(msg string, args ...any)
}

// RateLimiter caps an update loop at a maximum rate. It remembers the
// deadlines of the last few updates so that a late update can be followed
// by an early one without lowering the average rate. More history absorbs
// more jitter at the cost of a little RAM. Up to history updates may run
// back to back, at start and after a late update, so over any window the
// count stays within the rate plus history.
//
// A nil *RateLimiter never limits.
type RateLimiter struct {
	clk    Clock
	one    uint32 // period of one update
	stored uint32 // period of len(due) updates
	due    []uint32
	i      int
}

// NewRateLimiter returns nil if maxPerSecond is not positive.
func NewRateLimiter(clk Clock, maxPerSecond, history int) *RateLimiter {
	if maxPerSecond <= 0 {
		return nil
	}
	if history < 1 {
		history = 1
	}
	max := uint32(maxPerSecond)
	l := &RateLimiter{
		clk:    clk,
		one:    timex.PeriodMicros(max),
		stored: mathx.RoundDiv(uint32(history)*1_000_000, max),
		due:    make([]uint32, history),
	}
	now := clk.Micros()
	for i := range l.due {
		l.due[i] = now
	}
	return l
}

// MicrosTillNextUpdate returns 0 and books an update if one is allowed now;
// otherwise it returns the wait until the next allowed update.
func (l *RateLimiter) MicrosTillNextUpdate() uint32 {
	if l == nil {
		return 0
	}
	now := l.clk.Micros()
	if left := timex.Remaining(now, l.due[l.i]); left > 0 {
		return uint32(left)
	}
	l.due[l.i] = timex.After(now, l.stored)
	l.i = (l.i + 1) % len(l.due)
	// The next slot falls due no later than one period from now.
	if next := timex.After(now, l.one); timex.Remaining(l.due[l.i], next) < 0 {
		l.due[l.i] = next
	}
	return 0
}

// RateLogger counts updates and reports the rate once per period.
type RateLogger struct {
	clk    Clock
	period uint32
	log    Logger
	n      uint32
	prev   uint32
}

func NewRateLogger(clk Clock, periodMillis uint32, log Logger) *RateLogger {
	if periodMillis == 0 {
		periodMillis = 1000
	}
	return &RateLogger{clk: clk, period: periodMillis * 1000, log: log, prev: clk.Micros()}
}

// OnUpdate records one update. When a period has passed it logs and
// returns the measured updates per second with ok set.
func (r *RateLogger) OnUpdate() (perSecond float64, ok bool) {
	r.n++
	now := r.clk.Micros()
	elapsed := timex.Elapsed(now, r.prev)
	if elapsed < r.period {
		return 0, false
	}
	perSecond = float64(r.n) * 1e6 / float64(elapsed)
	if r.log != nil {
		r.log.Info("updates per second", "rate", perSecond)
	}
	r.n = 0
	r.prev = now
	return perSecond, true
}
