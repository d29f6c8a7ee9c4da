// Package testutil holds deterministic test signals and tolerance checks
// shared by the package tests.
package testutil

import (
	"math"
	"math/rand"
)

// DeterministicSine generates a sine wave starting at phase 0.
func DeterministicSine(freqHz, sampleRate, amplitude float64, length int) []float64 {
	out := make([]float64, length)
	step := 2 * math.Pi * freqHz / sampleRate
	for i := range out {
		out[i] = amplitude * math.Sin(step*float64(i))
	}
	return out
}

// DeterministicNoise generates white noise in [-amplitude, amplitude) with a
// fixed seed.
func DeterministicNoise(seed int64, amplitude float64, length int) []float64 {
	out := make([]float64, length)
	rng := rand.New(rand.NewSource(seed))
	for i := range out {
		out[i] = (rng.Float64()*2 - 1) * amplitude
	}
	return out
}

// Impulse generates a unit impulse at pos. Out-of-range positions give silence.
func Impulse(length, pos int) []float64 {
	out := make([]float64, length)
	if pos >= 0 && pos < length {
		out[pos] = 1
	}
	return out
}

// Frames interleaves two equal-length channels into stereo frames.
// The shorter channel is zero-padded.
func Frames(left, right []float64) [][2]float64 {
	n := len(left)
	if len(right) > n {
		n = len(right)
	}
	out := make([][2]float64, n)
	for i := range out {
		if i < len(left) {
			out[i][0] = left[i]
		}
		if i < len(right) {
			out[i][1] = right[i]
		}
	}
	return out
}

// Split de-interleaves stereo frames.
func Split(frames [][2]float64) (left, right []float64) {
	left = make([]float64, len(frames))
	right = make([]float64, len(frames))
	for i, f := range frames {
		left[i], right[i] = f[0], f[1]
	}
	return left, right
}
