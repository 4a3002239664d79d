package errcode

// Code is a stable, log-facing error identifier.
// It is a string newtype, comparable, allocation-free, and implements error.
type Code string

func (c Code) Error() string { return string(c) }

// Canonical codes (short, stable).
const (
	OK            Code = "ok"
	InvalidParams Code = "invalid_params"
	UnknownPin    Code = "unknown_pin"
	Unsupported   Code = "unsupported"
	Timeout       Code = "timeout"

	// Frame exchange failures. Every one of them is retryable.
	NoPeer           Code = "no_peer"
	PeerUnresponsive Code = "peer_unresponsive"
	Desync           Code = "desync"
	ChecksumFailure  Code = "checksum_failure"

	// Advisory only; never returned from a frame exchange.
	OutOfRange Code = "out_of_range"

	Error Code = "error" // generic fallback
)

// E keeps context, a cause and the recommended retry delay.
type E struct {
	C       Code
	Op      string
	Msg     string
	Backoff uint32 // microseconds to wait before retrying
	Err     error
}

func (e *E) Error() string {
	if e.Msg != "" {
		return string(e.C) + ": " + e.Msg
	}
	return string(e.C)
}
func (e *E) Unwrap() error { return e.Err }
func (e *E) Code() Code    { return e.C }

// Retry builds a retryable frame failure.
func Retry(c Code, op string, backoff uint32) *E {
	return &E{C: c, Op: op, Backoff: backoff}
}

// Of extracts a Code from an error, defaulting to Error.
func Of(err error) Code {
	if err == nil {
		return OK
	}
	if c, ok := err.(Code); ok {
		return c
	}
	type coder interface{ Code() Code }
	if x, ok := err.(coder); ok {
		return x.Code()
	}
	return Error
}

// RetryMicros maps an exchange result onto the integer contract used by the
// stock X52 firmware: 0 on success, otherwise the number of microseconds to
// wait before the next attempt (never 0 for a failure).
func RetryMicros(err error) uint32 {
	if err == nil {
		return 0
	}
	type backoffer interface{ RetryAfter() uint32 }
	if b, ok := err.(backoffer); ok {
		if d := b.RetryAfter(); d > 0 {
			return d
		}
	}
	return 1
}

// RetryAfter reports the backoff carried by e.
func (e *E) RetryAfter() uint32 { return e.Backoff }
