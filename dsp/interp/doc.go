// Package interp provides interpolation primitives used by delay-based DSP blocks.
//
// [Linear] is the 2-point blend used by the modulated delay read; it is
// written as a weighted sum so that frac == 0 and frac == 1 reproduce the
// neighbouring samples exactly.
package interp
