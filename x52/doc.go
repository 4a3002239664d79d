// Package x52 holds what the two X52 link protocols share: hat Direction and
// rotary Mode values, the Logger hook and the deadline-bounded pin poll.
//
// The link between the joystick and the throttle of a Saitek/Logitech X52
// runs over four lines of the PS/2 style cable. The names below were printed
// on the joystick PCB:
//
//	C01  data output of the throttle   (pin 4 of the PS/2 female socket)
//	C02  clock output of the throttle  (pin 6)
//	C03  data output of the joystick   (pin 2)
//	C04  clock output of the joystick  (pin 1)
//
// Pin 3 is GND and pin 5 is VCC. The X52 Pro (package pro) and the plain
// X52 (package std) use the same pinout with incompatible protocols.
//
// In both protocol packages a JoystickClient takes the place of the
// throttle and talks to a real joystick, and a ThrottleClient takes the place
// of the joystick and talks to a real throttle.
package x52
