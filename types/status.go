package types

// ------------------------
// Service state
// ------------------------

// State is the coarse state a service reports.
type State struct {
	Level  string `json:"level"`  // "idle", "up", "degraded", "error", "stopped"
	Status string `json:"status"` // short machine string
	Error  string `json:"error,omitempty"`
	TS     int64  `json:"ts_ms"`
}

// Link is the health of a frame loop.
type Link string

const (
	LinkUp       Link = "up"
	LinkDown     Link = "down"
	LinkDegraded Link = "degraded"
)

// LinkStatus is a snapshot of a link runner.
type LinkStatus struct {
	Variant Variant `json:"variant"`
	Role    Role    `json:"role"`
	Link    Link    `json:"link"`

	Frames uint64 `json:"frames"` // successful exchanges
	// Failures by error code, e.g. "no_peer".
	Failures map[string]uint64 `json:"failures,omitempty"`

	LastError     string  `json:"last_error,omitempty"`
	UpdatesPerSec float64 `json:"updates_per_sec"`
	TS            int64   `json:"ts_ms"`
}
