package core

import "math"

const defaultEpsilon = 1e-12

// Clamp limits value to the inclusive range [min, max].
func Clamp(value, min, max float64) float64 {
	if min > max {
		min, max = max, min
	}

	if value < min {
		return min
	}

	if value > max {
		return max
	}

	return value
}

// Map linearly maps value from [inLo, inHi] to [outLo, outHi].
// The result is not clamped. A degenerate input range returns outLo.
func Map(value, inLo, inHi, outLo, outHi float64) float64 {
	if inHi == inLo {
		return outLo
	}

	return outLo + (value-inLo)/(inHi-inLo)*(outHi-outLo)
}

// WrapUnit folds a non-negative phase into [0, 1).
func WrapUnit(phase float64) float64 {
	if phase >= 1 {
		phase -= math.Floor(phase)
	}

	return phase
}

// IsFinite reports whether x is neither NaN nor infinite.
func IsFinite(x float64) bool {
	return !math.IsNaN(x) && !math.IsInf(x, 0)
}

// NearlyEqual reports whether a and b are equal within eps.
func NearlyEqual(a, b, eps float64) bool {
	if eps <= 0 {
		eps = defaultEpsilon
	}

	diff := math.Abs(a - b)
	if diff <= eps {
		return true
	}

	largest := math.Max(math.Abs(a), math.Abs(b))
	if largest == 0 {
		return diff <= eps
	}

	return diff/largest <= eps
}

// LinearPowerToDB converts linear power to dB (10*log10 convention).
// Returns -Inf for zero and NaN for negative values.
func LinearPowerToDB(power float64) float64 {
	if power < 0 {
		return math.NaN()
	}

	if power == 0 {
		return math.Inf(-1)
	}

	return 10 * math.Log10(power)
}
