package types

// ------------------------
// Link configuration
// ------------------------

// Variant selects the wire protocol.
type Variant string

const (
	VariantPro Variant = "pro" // X52 Pro
	VariantStd Variant = "std" // X52 (non-Pro)
)

// Role names the real device on the cable, i.e. the one being talked to.
// A "joystick" link impersonates the throttle and polls the joystick.
type Role string

const (
	RoleJoystick Role = "joystick"
	RoleThrottle Role = "throttle"
)

// Pulse waiter strategies for a Std joystick link.
const (
	PulseWaiterInterrupt = "interrupt"
	PulseWaiterPoll      = "poll"
)

// PinsConfig holds board GPIO numbers of the four lines.
type PinsConfig struct {
	C01 int `json:"c01" yaml:"c01" toml:"c01"`
	C02 int `json:"c02" yaml:"c02" toml:"c02"`
	C03 int `json:"c03" yaml:"c03" toml:"c03"`
	C04 int `json:"c04" yaml:"c04" toml:"c04"`
}

// TimingConfig overrides protocol limits in microseconds. Zero keeps the
// variant's default. Fields that a variant does not have are ignored.
type TimingConfig struct {
	ThrottleTimeout            uint32 `json:"throttle_timeout,omitempty" yaml:"throttle_timeout,omitempty" toml:"throttle_timeout,omitempty"`
	JoystickTimeout            uint32 `json:"joystick_timeout,omitempty" yaml:"joystick_timeout,omitempty" toml:"joystick_timeout,omitempty"`
	ThrottleUnresponsive       uint32 `json:"throttle_unresponsive,omitempty" yaml:"throttle_unresponsive,omitempty" toml:"throttle_unresponsive,omitempty"`
	JoystickUnresponsive       uint32 `json:"joystick_unresponsive,omitempty" yaml:"joystick_unresponsive,omitempty" toml:"joystick_unresponsive,omitempty"`
	JoystickDesyncUnresponsive uint32 `json:"joystick_desync_unresponsive,omitempty" yaml:"joystick_desync_unresponsive,omitempty" toml:"joystick_desync_unresponsive,omitempty"` // pro
	FirstPulse                 uint32 `json:"first_pulse,omitempty" yaml:"first_pulse,omitempty" toml:"first_pulse,omitempty"`                                                    // std
	SecondPulse                uint32 `json:"second_pulse,omitempty" yaml:"second_pulse,omitempty" toml:"second_pulse,omitempty"`                                                 // std
}

// LinkConfig describes one half of a link: the real device it drives and
// how the frame loop runs.
type LinkConfig struct {
	Variant Variant    `json:"variant" yaml:"variant" toml:"variant"`
	Role    Role       `json:"role" yaml:"role" toml:"role"`
	Pins    PinsConfig `json:"pins" yaml:"pins" toml:"pins"`

	WaitMicros              uint32 `json:"wait_micros,omitempty" yaml:"wait_micros,omitempty" toml:"wait_micros,omitempty"` // 0: variant default
	BusyWait                bool   `json:"busy_wait" yaml:"busy_wait" toml:"busy_wait"`
	PollPeriodMicros        uint32 `json:"poll_period_micros,omitempty" yaml:"poll_period_micros,omitempty" toml:"poll_period_micros,omitempty"`
	ImprovedDesyncDetection bool   `json:"improved_desync_detection" yaml:"improved_desync_detection" toml:"improved_desync_detection"`
	PulseWaiter             string `json:"pulse_waiter,omitempty" yaml:"pulse_waiter,omitempty" toml:"pulse_waiter,omitempty"`

	MaxUpdatesPerSecond int    `json:"max_updates_per_second" yaml:"max_updates_per_second" toml:"max_updates_per_second"` // 0: unlimited
	RateHistory         int    `json:"rate_history,omitempty" yaml:"rate_history,omitempty" toml:"rate_history,omitempty"`
	RateLogPeriodMs     uint32 `json:"rate_log_period_ms,omitempty" yaml:"rate_log_period_ms,omitempty" toml:"rate_log_period_ms,omitempty"`

	Timing TimingConfig  `json:"timing" yaml:"timing" toml:"timing"`
	Bridge *BridgeConfig `json:"bridge,omitempty" yaml:"bridge,omitempty" toml:"bridge,omitempty"`
}

// ------------------------
// Bridge configuration
// ------------------------

// BridgeConfig selects the byte stream joining the two halves.
type BridgeConfig struct {
	// "uart", "tcp", "pipe" or a name registered with bridge.RegisterTransport.
	Transport string      `json:"transport" yaml:"transport" toml:"transport"`
	UART      *UARTConfig `json:"uart,omitempty" yaml:"uart,omitempty" toml:"uart,omitempty"`
	// host:port for tcp. The "listen" side accepts, the other dials.
	Address string `json:"address,omitempty" yaml:"address,omitempty" toml:"address,omitempty"`
	Listen  bool   `json:"listen,omitempty" yaml:"listen,omitempty" toml:"listen,omitempty"`
	// Ping interval; 0 means 5s.
	HeartbeatMs uint32 `json:"heartbeat_ms,omitempty" yaml:"heartbeat_ms,omitempty" toml:"heartbeat_ms,omitempty"`
}

// UARTConfig carries enough information for an injected TinyGo dialler to
// open the UART.
type UARTConfig struct {
	Baud           int `json:"baud" yaml:"baud" toml:"baud"`
	RxPin          int `json:"rx_pin" yaml:"rx_pin" toml:"rx_pin"` // platform-specific numeric IDs
	TxPin          int `json:"tx_pin" yaml:"tx_pin" toml:"tx_pin"`
	ReadTimeoutMS  int `json:"read_timeout_ms,omitempty" yaml:"read_timeout_ms,omitempty" toml:"read_timeout_ms,omitempty"` // 0 means blocking
	WriteTimeoutMS int `json:"write_timeout_ms,omitempty" yaml:"write_timeout_ms,omitempty" toml:"write_timeout_ms,omitempty"`
}
