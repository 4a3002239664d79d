package config

// -----------------------------------------------------------------------------
// Embedded configuration
//
// Key: device ID (the firmware's build-time device name)
// Val: raw JSON bytes of a types.LinkConfig
// -----------------------------------------------------------------------------

// Half wired to the joystick's cable.
const cfgPicoJoystick = `{
  "variant": "pro",
  "role": "joystick",
  "pins": {"c01": 2, "c02": 3, "c03": 4, "c04": 5},
  "max_updates_per_second": 100,
  "bridge": {
    "transport": "uart",
    "uart": {"baud": 115200, "tx_pin": 0, "rx_pin": 1}
  }
}`

// Half wired to the throttle's cable.
const cfgPicoThrottle = `{
  "variant": "pro",
  "role": "throttle",
  "pins": {"c01": 2, "c02": 3, "c03": 4, "c04": 5},
  "bridge": {
    "transport": "uart",
    "uart": {"baud": 115200, "tx_pin": 0, "rx_pin": 1}
  }
}`

const cfgPicoStdJoystick = `{
  "variant": "std",
  "role": "joystick",
  "pins": {"c01": 2, "c02": 3, "c03": 4, "c04": 5},
  "pulse_waiter": "interrupt",
  "max_updates_per_second": 50,
  "bridge": {
    "transport": "uart",
    "uart": {"baud": 115200, "tx_pin": 0, "rx_pin": 1}
  }
}`

const cfgPicoStdThrottle = `{
  "variant": "std",
  "role": "throttle",
  "pins": {"c01": 2, "c02": 3, "c03": 4, "c04": 5},
  "bridge": {
    "transport": "uart",
    "uart": {"baud": 115200, "tx_pin": 0, "rx_pin": 1}
  }
}`

var embeddedConfigs = map[string][]byte{
	"pico-joystick":     []byte(cfgPicoJoystick),
	"pico-throttle":     []byte(cfgPicoThrottle),
	"pico-std-joystick": []byte(cfgPicoStdJoystick),
	"pico-std-throttle": []byte(cfgPicoStdThrottle),
}
