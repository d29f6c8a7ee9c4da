package modulation

import (
	"math"

	"github.com/cwbudde/algo-chorus/dsp/core"
)

// Modulator is the shared sine LFO that turns a parameter snapshot into the
// left and right delay times for one frame.
//
// The accumulator holds a phase in [0, 1). The left channel reads it
// directly; the right channel reads it shifted by Params.PhaseOffset.
type Modulator struct {
	phase float64
}

// Phase returns the accumulator phase in [0, 1).
func (m *Modulator) Phase() float64 { return m.phase }

// Reset rewinds the accumulator to phase 0.
func (m *Modulator) Reset() { m.phase = 0 }

// Advance evaluates the LFO at the current phase for both channels, moves the
// phase forward by p.Rate/sampleRate and returns the two delay times in
// samples.
func (m *Modulator) Advance(p Params, sampleRate float64) (left, right float64) {
	lfoLeft := math.Sin(2 * math.Pi * m.phase)
	lfoRight := math.Sin(2 * math.Pi * RightPhase(m.phase, p.PhaseOffset))

	m.phase = core.WrapUnit(m.phase + p.Rate/sampleRate)

	lfoLeft *= p.Depth
	lfoRight *= p.Depth

	left = MapDelaySeconds(p.Mode, lfoLeft) * sampleRate
	right = MapDelaySeconds(p.Mode, lfoRight) * sampleRate

	return left, right
}

// RightPhase offsets phase by offset cycles with a single wrap back into
// [0, 1). Both inputs are expected in [0, 1].
func RightPhase(phase, offset float64) float64 {
	r := phase + offset
	if r >= 1 {
		r--
	}

	return r
}

// MapDelaySeconds maps an LFO value in [-1, 1] onto the mode's delay range.
func MapDelaySeconds(mode Mode, lfo float64) float64 {
	lo, hi := mode.DelayRange()
	return core.Map(lfo, -1, 1, lo, hi)
}
