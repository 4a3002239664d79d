package mathx

import "golang.org/x/exp/constraints"

// RoundDiv returns a/b rounded half up. Zero if b is zero.
func RoundDiv[T constraints.Unsigned](a, b T) T {
	if b == 0 {
		return 0
	}
	return (a + b/2) / b
}
