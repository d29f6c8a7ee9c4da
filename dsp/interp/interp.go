package interp

import "math"

// Linear blends x0 and x1 with weight frac in [0, 1]:
//
//	(1-frac)*x0 + frac*x1
func Linear(frac, x0, x1 float64) float64 {
	return (1-frac)*x0 + frac*x1
}

// Split separates a non-negative fractional position into its integer index
// and the fractional remainder in [0, 1).
func Split(pos float64) (int, float64) {
	i := math.Floor(pos)
	return int(i), pos - i
}
