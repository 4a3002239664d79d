package x52

// Logger receives advisory diagnostics from the codecs and frame engines:
// range warnings and cycle-indexed traces. *slog.Logger satisfies it.
// Logging never changes control flow or return values.
type Logger interface {
	Debug(msg string, args ...any)
}

// Debug forwards to l if it is set.
func Debug(l Logger, msg string, args ...any) {
	if l != nil {
		l.Debug(msg, args...)
	}
}
