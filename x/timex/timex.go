// Package timex holds deadline arithmetic for a free-running 32-bit
// microsecond counter. The counter wraps roughly every 71 minutes, so
// deadlines are never compared directly: the signed distance is tested
// instead.
package timex

// After returns the deadline that lies d microseconds past now.
func After(now, d uint32) uint32 { return now + d }

// Remaining is the signed distance from now to deadline.
// It is <= 0 once the deadline has passed, across a counter wrap as well.
func Remaining(now, deadline uint32) int32 { return int32(deadline - now) }

// Reached reports whether now is at or past deadline.
func Reached(now, deadline uint32) bool { return int32(now-deadline) >= 0 }

// Elapsed returns now-since, valid for spans shorter than half the counter
// range.
func Elapsed(now, since uint32) uint32 { return now - since }

// PeriodMicros returns the rounded period of a rate given in updates per
// second. 0 is coerced to 1 to avoid division by zero.
func PeriodMicros(perSecond uint32) uint32 {
	if perSecond == 0 {
		perSecond = 1
	}
	return (1_000_000 + perSecond/2) / perSecond
}
