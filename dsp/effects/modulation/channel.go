package modulation

import "github.com/cwbudde/algo-chorus/dsp/delay"

// Channel is one side of the stereo effect: a circular buffer, its feedback
// accumulator, and the dry/wet blend.
type Channel struct {
	line     delay.Line
	feedback float64
}

// resize reallocates (or reuses) the buffer and clears all state.
func (c *Channel) resize(size int) error {
	c.feedback = 0
	return c.line.Resize(size)
}

// Reset clears the buffer and the feedback accumulator.
func (c *Channel) Reset() {
	c.line.Reset()
	c.feedback = 0
}

// Len returns the buffer length in samples.
func (c *Channel) Len() int { return c.line.Len() }

// Feedback returns the value that will be added to the next write.
func (c *Channel) Feedback() float64 { return c.feedback }

// ProcessSample writes input plus feedback, reads delaySamples behind the
// head, updates feedback, advances the head and returns the dry/wet blend.
func (c *Channel) ProcessSample(input, delaySamples float64, p Params) float64 {
	c.line.Write(input + c.feedback)

	wet := c.line.ReadFractional(delaySamples)
	c.feedback = wet * p.Feedback

	c.line.Advance()

	return input*(1-p.DryWet) + wet*p.DryWet
}
