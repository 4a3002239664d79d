package x52

// Direction is a hat switch position: a bitwise combination of zero or more
// cardinal flags. Only NoDirection, the cardinals and the four diagonals
// are produced by the codecs.
type Direction uint8

const (
	NoDirection Direction = 0
	Right       Direction = 1
	Down        Direction = 2
	Left        Direction = 4
	Up          Direction = 8
	DownLeft              = Down | Left
	DownRight             = Down | Right
	UpLeft                = Up | Left
	UpRight               = Up | Right
)

// Has reports whether every flag of c is set in d.
func (d Direction) Has(c Direction) bool { return d&c == c }

// Valid reports whether d is a position a physical hat can report.
func (d Direction) Valid() bool {
	switch d {
	case NoDirection, Right, Down, Left, Up, DownLeft, DownRight, UpLeft, UpRight:
		return true
	}
	return false
}

func (d Direction) String() string {
	switch d {
	case NoDirection:
		return "none"
	case Right:
		return "right"
	case Down:
		return "down"
	case Left:
		return "left"
	case Up:
		return "up"
	case DownLeft:
		return "down-left"
	case DownRight:
		return "down-right"
	case UpLeft:
		return "up-left"
	case UpRight:
		return "up-right"
	default:
		return "invalid"
	}
}

// Mode is the position of the rotary mode selector on the joystick.
type Mode uint8

const (
	// ModeUndefined is a legitimate value: the joystick firmware reports it
	// while the selector is between detents.
	ModeUndefined Mode = iota
	Mode1
	Mode2
	Mode3
)

func (m Mode) String() string {
	switch m {
	case Mode1:
		return "mode1"
	case Mode2:
		return "mode2"
	case Mode3:
		return "mode3"
	default:
		return "undefined"
	}
}
