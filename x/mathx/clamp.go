package mathx

import "golang.org/x/exp/constraints"

// Clamp limits v to [lo, hi]. If lo > hi, the bounds are swapped.
func Clamp[T constraints.Ordered](v, lo, hi T) T {
	if hi < lo {
		lo, hi = hi, lo
	}
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Min returns the smaller of a and b.
func Min[T constraints.Ordered](a, b T) T {
	if a < b {
		return a
	}
	return b
}

// Triangle maps step onto a triangle wave that sweeps 0..max..0 once every
// period steps. Used to synthesise moving axes in simulations.
func Triangle[T constraints.Unsigned](step, period, max T) T {
	if period < 2 {
		return 0
	}
	half := period / 2
	p := step % period
	if p >= half {
		p = period - p
	}
	return T(uint64(p) * uint64(max) / uint64(half))
}
